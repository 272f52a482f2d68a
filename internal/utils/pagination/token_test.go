package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	postedAt := time.Date(2023, 5, 15, 14, 30, 45, 123456000, time.UTC)

	token := EncodeToken(postedAt, 42)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedAt, decodedSeq, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.True(t, postedAt.Equal(decodedAt), "Posting time should match after decode")
	assert.Equal(t, int64(42), decodedSeq)

	// Non-UTC input is normalised.
	local := time.Date(2023, 5, 15, 20, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	decodedAt, _, err = DecodeToken(EncodeToken(local, 1))
	assert.NoError(t, err)
	assert.True(t, local.Equal(decodedAt))
}

func TestDecodeTokenError(t *testing.T) {
	_, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	_, _, err = DecodeToken(base64.StdEncoding.EncodeToString([]byte("no-separator")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	_, _, err = DecodeToken(base64.StdEncoding.EncodeToString([]byte("yesterday|1")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "posted_at parse")

	_, _, err = DecodeToken(base64.StdEncoding.EncodeToString([]byte("2023-05-15T00:00:00Z|x")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "seq parse")
}

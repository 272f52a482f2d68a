package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("posting: %w", apperrors.NewValidationError(apperrors.ReasonUnbalanced, "off by %s", "0.01"))

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.True(t, apperrors.IsValidationReason(err, apperrors.ReasonUnbalanced))
	assert.False(t, apperrors.IsValidationReason(err, apperrors.ReasonEmptyJournal))
	assert.Contains(t, err.Error(), "unbalanced: off by 0.01")
}

func TestConfigurationError(t *testing.T) {
	err := apperrors.NewMissingMapKeyError("t1", "ar", "sales")

	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	assert.NotErrorIs(t, err, apperrors.ErrValidation)

	var ce *apperrors.ConfigurationError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, []string{"ar", "sales"}, ce.MissingKeys)
}

func TestConcurrencyError(t *testing.T) {
	cause := errors.New("lock timeout")
	busy := apperrors.NewBusyError("t1:purchase:P1", cause)

	assert.ErrorIs(t, busy, apperrors.ErrConcurrency)
	assert.ErrorIs(t, busy, cause)
	assert.Equal(t, "busy: could not lock t1:purchase:P1: lock timeout", busy.Error())

	timeout := apperrors.NewTimeoutError("doc", nil)
	assert.Equal(t, apperrors.ConcurrencyTimeout, timeout.Kind)
	assert.Equal(t, "timeout: could not lock doc", timeout.Error())
}

func TestAppErrorAndNotFound(t *testing.T) {
	appErr := apperrors.NewAppError(500, "query failed", nil)
	assert.ErrorIs(t, appErr, apperrors.ErrInternal)

	nf := apperrors.NewNotFoundError("journal", "J1")
	assert.ErrorIs(t, nf, apperrors.ErrNotFound)
	assert.Equal(t, `journal "J1": resource not found`, nf.Error())
}

func TestIsExpected(t *testing.T) {
	assert.True(t, apperrors.IsExpected(apperrors.NewBusyError("x", nil)))
	assert.True(t, apperrors.IsExpected(apperrors.NewNotFoundError("journal", "J")))
	assert.True(t, apperrors.IsExpected(apperrors.NewMissingMapKeyError("t", "ar")))
	assert.False(t, apperrors.IsExpected(apperrors.NewAppError(500, "db down", nil)))
	assert.False(t, apperrors.IsExpected(errors.New("boom")))
}

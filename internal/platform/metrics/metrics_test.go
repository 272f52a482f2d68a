package metrics_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/platform/lock"
	"github.com/SscSPs/bizledger/internal/platform/metrics"
)

func TestObservePosting_Outcomes(t *testing.T) {
	m := metrics.New()

	m.ObservePosting("journal", domain.Created, nil)
	m.ObservePosting("journal", domain.AlreadyExisted, nil)
	m.ObservePosting("journal", "", apperrors.NewValidationError(apperrors.ReasonUnbalanced, "off by one"))
	m.ObservePosting("journal", "", apperrors.NewBusyError("doc", nil))

	expected := `
# HELP bizledger_postings_total Ledger postings by kind and outcome.
# TYPE bizledger_postings_total counter
bizledger_postings_total{kind="journal",outcome="ALREADY_EXISTED"} 1
bizledger_postings_total{kind="journal",outcome="CONCURRENCY_ERROR"} 1
bizledger_postings_total{kind="journal",outcome="CREATED"} 1
bizledger_postings_total{kind="journal",outcome="VALIDATION_ERROR"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "bizledger_postings_total"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObservePosting("journal", domain.Created, nil)
		m.SetHealthFindings("t1", domain.CheckNegativeStock, 3)
	})
}

func TestSetHealthFindings(t *testing.T) {
	m := metrics.New()
	m.SetHealthFindings("t1", domain.CheckNegativeStock, 3)
	m.SetHealthFindings("t1", domain.CheckNegativeStock, 1)

	expected := `
# HELP bizledger_health_findings Findings of the last integrity check run per tenant.
# TYPE bizledger_health_findings gauge
bizledger_health_findings{check="negative_stock",tenant="t1"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "bizledger_health_findings"))
}

func TestInstrumentLocker(t *testing.T) {
	m := metrics.New()
	locker := m.InstrumentLocker(lock.NewKeyedMutex(10 * time.Millisecond))
	doc := domain.DocumentRef{TenantID: "t1", RefTable: "purchase", RefID: "P-9"}

	err := locker.WithDocumentLock(context.Background(), doc, func(ctx context.Context) error {
		// A competing owner without the held marker times out.
		return locker.WithDocumentLock(context.Background(), doc, func(context.Context) error { return nil })
	})
	assert.ErrorIs(t, err, apperrors.ErrConcurrency)

	count, err := testutil.GatherAndCount(m.Registry(), "bizledger_document_lock_wait_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",path="/ping",status="204"} 1`)
}

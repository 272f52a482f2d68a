package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/export"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/SscSPs/bizledger/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports and ledger health.
type reportingHandler struct {
	reportingService portssvc.ReportingService
	manifest         *config.ModuleManifest
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService, manifest *config.ModuleManifest) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
		manifest:         manifest,
	}
}

// registerReportingRoutes registers routes related to financial reports
func registerReportingRoutes(rg *gin.RouterGroup, rs portssvc.ReportingService, manifest *config.ModuleManifest) {
	h := newReportingHandler(rs, manifest)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/books/:accountID", h.getBook)
		reportingGroup.GET("/ar-rollup", h.getARRollup)
		reportingGroup.GET("/ar-aging", h.getARAging)
		reportingGroup.GET("/profit-and-loss", h.getProfitAndLoss)
		reportingGroup.GET("/balance-sheet", h.getBalanceSheet)
	}
	rg.GET("/health", h.getHealth)
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Opening balances before period_start, activity through as_of, closing balances and totals
// @Tags reports
// @Produce json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param tenantID path string true "Tenant ID"
// @Param period_start query string true "Period start (YYYY-MM-DD)"
// @Param as_of query string true "Report date (YYYY-MM-DD), inclusive"
// @Param format query string false "json or xlsx" default(json)
// @Success 200 {object} domain.TrialBalanceReport
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /tenants/{tenantID}/reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.TrialBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	report, err := h.reportingService.TrialBalance(c.Request.Context(), tenantID(c), params.PeriodStart, dto.EndOfDay(params.AsOf))
	if err != nil {
		respondError(c, err, "Failed to generate trial balance report")
		return
	}

	logger.Info("Trial balance report generated successfully", slog.Int("row_count", len(report.Rows)))
	if params.Format == "xlsx" {
		var buf bytes.Buffer
		if err := export.WriteTrialBalance(&buf, report); err != nil {
			respondError(c, err, "Failed to export trial balance")
			return
		}
		sendSpreadsheet(c, fmt.Sprintf("trial-balance-%s.xlsx", params.AsOf.Format("2006-01-02")), &buf)
		return
	}
	c.JSON(http.StatusOK, report)
}

// getBook godoc
// @Summary Account book
// @Description Lines of one account in date order with a running balance
// @Tags reports
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param accountID path string true "Account ID"
// @Param from query string true "From date (YYYY-MM-DD)"
// @Param to query string true "To date (YYYY-MM-DD), inclusive"
// @Param cleared query string false "ALL, CLEARED or UNCLEARED" default(ALL)
// @Param format query string false "json or xlsx" default(json)
// @Success 200 {object} domain.BookReport
// @Failure 404 {object} map[string]string "Account not found"
// @Router /tenants/{tenantID}/reports/books/{accountID} [get]
func (h *reportingHandler) getBook(c *gin.Context) {
	var params dto.BookParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	report, err := h.reportingService.Book(c.Request.Context(), tenantID(c), c.Param("accountID"), params.From, dto.EndOfDay(params.To), params.Cleared)
	if err != nil {
		respondError(c, err, "Failed to generate book")
		return
	}

	if params.Format == "xlsx" {
		var buf bytes.Buffer
		if err := export.WriteBook(&buf, report); err != nil {
			respondError(c, err, "Failed to export book")
			return
		}
		sendSpreadsheet(c, fmt.Sprintf("book-%s.xlsx", params.To.Format("2006-01-02")), &buf)
		return
	}
	c.JSON(http.StatusOK, report)
}

// getARRollup godoc
// @Summary Receivables rollup
// @Tags reports
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param customer_id query string false "Restrict to one customer"
// @Success 200 {object} domain.ARRollupReport
// @Failure 422 {object} map[string]string "AR account not mapped"
// @Router /tenants/{tenantID}/reports/ar-rollup [get]
func (h *reportingHandler) getARRollup(c *gin.Context) {
	report, err := h.reportingService.ARRollup(c.Request.Context(), tenantID(c), c.Query("customer_id"))
	if err != nil {
		respondError(c, err, "Failed to generate receivables rollup")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getARAging godoc
// @Summary Receivables aging
// @Tags reports
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param as_of query string true "Aging date (YYYY-MM-DD)"
// @Param terms_days query int false "Credit terms in days" default(0)
// @Success 200 {object} domain.ARAgingReport
// @Router /tenants/{tenantID}/reports/ar-aging [get]
func (h *reportingHandler) getARAging(c *gin.Context) {
	var params dto.ARAgingParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	report, err := h.reportingService.ARAging(c.Request.Context(), tenantID(c), dto.EndOfDay(params.AsOf), params.TermsDays)
	if err != nil {
		respondError(c, err, "Failed to generate receivables aging")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getProfitAndLoss godoc
// @Summary Generate profit and loss report
// @Tags reports
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD), inclusive"
// @Success 200 {object} domain.PAndLReport
// @Router /tenants/{tenantID}/reports/profit-and-loss [get]
func (h *reportingHandler) getProfitAndLoss(c *gin.Context) {
	var params dto.PeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), tenantID(c), params.From, dto.EndOfDay(params.To))
	if err != nil {
		respondError(c, err, "Failed to generate profit and loss report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getBalanceSheet godoc
// @Summary Generate balance sheet report
// @Tags reports
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param as_of query string true "Report date (YYYY-MM-DD)"
// @Success 200 {object} domain.BalanceSheetReport
// @Router /tenants/{tenantID}/reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	var params dto.AsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), tenantID(c), dto.EndOfDay(params.AsOf))
	if err != nil {
		respondError(c, err, "Failed to generate balance sheet")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getHealth godoc
// @Summary Ledger integrity checks
// @Description Reports unbalanced journals, negative stock and unmapped keys. Findings are warnings and are never repaired.
// @Tags reports
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param module query string false "Module whose required keys are checked; all modules when omitted"
// @Success 200 {object} domain.HealthReport
// @Failure 400 {object} map[string]string "Unknown module"
// @Router /tenants/{tenantID}/health [get]
func (h *reportingHandler) getHealth(c *gin.Context) {
	required, err := h.manifest.RequiredKeys(c.Query("module"))
	if err != nil {
		respondBindError(c, err, "module")
		return
	}

	report, err := h.reportingService.RunHealthChecks(c.Request.Context(), tenantID(c), required)
	if err != nil {
		respondError(c, err, "Failed to run health checks")
		return
	}
	c.JSON(http.StatusOK, report)
}

func sendSpreadsheet(c *gin.Context, filename string, buf *bytes.Buffer) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}

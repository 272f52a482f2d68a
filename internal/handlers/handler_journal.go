package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/bizledger/internal/core/domain"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journals.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{
		journalService: js,
	}
}

func registerJournalRoutes(rg *gin.RouterGroup, js portssvc.JournalSvcFacade) {
	h := newJournalHandler(js)

	journals := rg.Group("/journals")
	{
		journals.POST("", h.postJournal)
		journals.GET("", h.listJournals)
		journals.GET("/:journalID", h.getJournal)
		journals.POST("/:journalID/reverse", h.reverseJournal)
	}
	rg.POST("/journal-lines/cleared", h.markLinesCleared)
}

// postStatus is 201 for a new journal and 200 when the idempotency key was already posted.
func postStatus(outcome domain.PostOutcome) int {
	if outcome == domain.Created {
		return http.StatusCreated
	}
	return http.StatusOK
}

// postJournal godoc
// @Summary Post a journal
// @Description Posts a balanced journal once per (refTable, refID, discriminator). Replays return the existing journal.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   journal body dto.PostJournalRequest true "Journal with lines"
// @Success 201 {object} domain.PostResult "Journal created"
// @Success 200 {object} domain.PostResult "Journal already existed"
// @Failure 400 {object} map[string]string "Unbalanced, empty or invalid line"
// @Failure 409 {object} map[string]string "Document busy, retry later"
// @Failure 500 {object} map[string]string "Failed to post journal"
// @Router /tenants/{tenantID}/journals [post]
func (h *journalHandler) postJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PostJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	result, err := h.journalService.PostJournal(c.Request.Context(), tenantID(c), req)
	if err != nil {
		respondError(c, err, "Failed to post journal")
		return
	}

	logger.Info("Journal posted", slog.String("journal_id", result.JournalID), slog.String("outcome", string(result.Outcome)))
	c.JSON(postStatus(result.Outcome), result)
}

// getJournal godoc
// @Summary Get a journal with its lines
// @Tags journals
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   journalID path string true "Journal ID"
// @Success 200 {object} domain.Journal
// @Failure 404 {object} map[string]string "Journal not found"
// @Router /tenants/{tenantID}/journals/{journalID} [get]
func (h *journalHandler) getJournal(c *gin.Context) {
	journal, err := h.journalService.GetJournal(c.Request.Context(), tenantID(c), c.Param("journalID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve journal")
		return
	}
	c.JSON(http.StatusOK, journal)
}

// listJournals godoc
// @Summary List journals
// @Tags journals
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   journal_type query string false "Journal type"
// @Param   from query string false "From date (YYYY-MM-DD)"
// @Param   to query string false "To date (YYYY-MM-DD), inclusive"
// @Param   limit query int false "Page size" default(20)
// @Param   next_token query string false "Token from the previous page"
// @Success 200 {object} dto.ListJournalsResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Router /tenants/{tenantID}/journals [get]
func (h *journalHandler) listJournals(c *gin.Context) {
	var params dto.ListJournalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	journals, nextToken, err := h.journalService.ListJournals(c.Request.Context(), tenantID(c), params)
	if err != nil {
		respondError(c, err, "Failed to list journals")
		return
	}
	if journals == nil {
		journals = []domain.Journal{}
	}
	c.JSON(http.StatusOK, dto.ListJournalsResponse{Journals: journals, NextToken: nextToken})
}

// reverseJournal godoc
// @Summary Reverse a journal
// @Description Posts a mirror journal. Reversing the same journal again returns the first reversal.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   journalID path string true "Journal ID"
// @Param   reversal body dto.ReverseJournalRequest true "Reversal date and memo"
// @Success 201 {object} domain.PostResult
// @Success 200 {object} domain.PostResult
// @Failure 400 {object} map[string]string "Journal is itself a reversal"
// @Failure 404 {object} map[string]string "Journal not found"
// @Router /tenants/{tenantID}/journals/{journalID}/reverse [post]
func (h *journalHandler) reverseJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ReverseJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	journalID := c.Param("journalID")
	result, err := h.journalService.ReverseJournal(c.Request.Context(), tenantID(c), journalID, req)
	if err != nil {
		respondError(c, err, "Failed to reverse journal")
		return
	}

	logger.Info("Journal reversed", slog.String("journal_id", journalID), slog.String("reversal_id", result.JournalID))
	c.JSON(postStatus(result.Outcome), result)
}

// markLinesCleared godoc
// @Summary Set the cleared flag on journal lines
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   lines body dto.ClearLinesRequest true "Line IDs and flag"
// @Success 200 {object} map[string]int64 "Number of lines updated"
// @Router /tenants/{tenantID}/journal-lines/cleared [post]
func (h *journalHandler) markLinesCleared(c *gin.Context) {
	var req dto.ClearLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	updated, err := h.journalService.MarkLinesCleared(c.Request.Context(), tenantID(c), req)
	if err != nil {
		respondError(c, err, "Failed to update lines")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

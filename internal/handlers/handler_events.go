package handlers

import (
	"log/slog"

	"github.com/SscSPs/bizledger/internal/core/domain"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// eventHandler accepts business events from the platform modules and posts them to the ledger.
type eventHandler struct {
	postingService portssvc.PostingSvc
}

func newEventHandler(ps portssvc.PostingSvc) *eventHandler {
	return &eventHandler{postingService: ps}
}

func registerEventRoutes(rg *gin.RouterGroup, ps portssvc.PostingSvc) {
	h := newEventHandler(ps)

	events := rg.Group("/events")
	{
		events.POST("/sales-invoices", h.salesInvoiceIssued)
		events.POST("/purchases/:purchaseID/received", h.purchaseReceived)
		events.POST("/customer-payments", h.customerPaymentReceived)
	}
}

func eventStatus(result *domain.EventPostingResult) int {
	return postStatus(result.Journal.Outcome)
}

// salesInvoiceIssued godoc
// @Summary Post an issued sales invoice
// @Description Posts the AR/revenue/tax/COGS journal and the outbound stock moves. Safe to retry.
// @Tags events
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   invoice body dto.SalesInvoiceIssuedRequest true "Invoice"
// @Success 201 {object} domain.EventPostingResult
// @Success 200 {object} domain.EventPostingResult "Invoice already posted"
// @Failure 400 {object} map[string]string "Invalid invoice"
// @Failure 409 {object} map[string]string "Invoice busy, retry later"
// @Failure 422 {object} map[string]string "Account map incomplete"
// @Router /tenants/{tenantID}/events/sales-invoices [post]
func (h *eventHandler) salesInvoiceIssued(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SalesInvoiceIssuedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	result, err := h.postingService.PostSalesInvoice(c.Request.Context(), tenantID(c), req.ToEvent())
	if err != nil {
		respondError(c, err, "Failed to post sales invoice")
		return
	}

	logger.Info("Sales invoice posted",
		slog.String("invoice_id", req.InvoiceID),
		slog.String("journal_number", result.Journal.JournalNumber),
		slog.String("outcome", string(result.Journal.Outcome)))
	c.JSON(eventStatus(result), result)
}

// purchaseReceived godoc
// @Summary Post a received purchase
// @Description Receives the purchase into stock and posts Dr Inventory / Cr AP for the received value
// @Tags events
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   purchaseID path string true "Purchase ID"
// @Success 201 {object} domain.EventPostingResult
// @Success 200 {object} domain.EventPostingResult
// @Failure 404 {object} map[string]string "Purchase not found"
// @Failure 422 {object} map[string]string "Account map incomplete"
// @Router /tenants/{tenantID}/events/purchases/{purchaseID}/received [post]
func (h *eventHandler) purchaseReceived(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	purchaseID := c.Param("purchaseID")
	result, err := h.postingService.PostPurchaseReceived(c.Request.Context(), tenantID(c), purchaseID)
	if err != nil {
		respondError(c, err, "Failed to post purchase")
		return
	}

	logger.Info("Purchase received", slog.String("purchase_id", purchaseID), slog.String("outcome", string(result.Journal.Outcome)))
	c.JSON(eventStatus(result), result)
}

// customerPaymentReceived godoc
// @Summary Post a customer payment
// @Tags events
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   payment body dto.CustomerPaymentRequest true "Payment"
// @Success 201 {object} domain.EventPostingResult
// @Success 200 {object} domain.EventPostingResult
// @Failure 400 {object} map[string]string "Invalid payment"
// @Failure 422 {object} map[string]string "Account map incomplete"
// @Router /tenants/{tenantID}/events/customer-payments [post]
func (h *eventHandler) customerPaymentReceived(c *gin.Context) {
	var req dto.CustomerPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	result, err := h.postingService.PostCustomerPayment(c.Request.Context(), tenantID(c), req.ToEvent())
	if err != nil {
		respondError(c, err, "Failed to post customer payment")
		return
	}
	c.JSON(eventStatus(result), result)
}

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// stockHandler handles inventory moves and purchase receipts.
type stockHandler struct {
	stockService portssvc.StockSvcFacade
}

func newStockHandler(ss portssvc.StockSvcFacade) *stockHandler {
	return &stockHandler{stockService: ss}
}

func registerStockRoutes(rg *gin.RouterGroup, ss portssvc.StockSvcFacade) {
	h := newStockHandler(ss)

	stock := rg.Group("/stock")
	{
		stock.POST("/moves", h.postMove)
		stock.GET("/on-hand", h.getOnHand)
		stock.GET("/products/:productID/moves", h.listMoves)
	}

	purchases := rg.Group("/purchases")
	{
		purchases.POST("", h.registerPurchase)
		purchases.GET("/:purchaseID", h.getPurchase)
		purchases.POST("/:purchaseID/receipt", h.receivePurchase)
	}
}

// postMove godoc
// @Summary Record a stock move
// @Description Inserts or updates the move identified by (product, refTable, refID, moveType)
// @Tags stock
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   move body dto.PostMoveRequest true "Move"
// @Success 201 {object} domain.MoveResult
// @Success 200 {object} domain.MoveResult "Existing move updated"
// @Failure 400 {object} map[string]string "Invalid quantities"
// @Router /tenants/{tenantID}/stock/moves [post]
func (h *stockHandler) postMove(c *gin.Context) {
	var req dto.PostMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	result, err := h.stockService.PostMove(c.Request.Context(), tenantID(c), req)
	if err != nil {
		respondError(c, err, "Failed to post stock move")
		return
	}
	c.JSON(postStatus(result.Outcome), result)
}

// getOnHand godoc
// @Summary Quantity on hand
// @Description Returns on-hand quantities; repeat product_id or pass a comma list for several products
// @Tags stock
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   product_id query []string true "Product IDs"
// @Success 200 {array} dto.OnHandResponse
// @Router /tenants/{tenantID}/stock/on-hand [get]
func (h *stockHandler) getOnHand(c *gin.Context) {
	var productIDs []string
	for _, raw := range c.QueryArray("product_id") {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				productIDs = append(productIDs, id)
			}
		}
	}
	if len(productIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}

	onHand, err := h.stockService.OnHandMany(c.Request.Context(), tenantID(c), productIDs)
	if err != nil {
		respondError(c, err, "Failed to read on-hand quantities")
		return
	}

	resp := make([]dto.OnHandResponse, 0, len(onHand))
	seen := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		resp = append(resp, dto.OnHandResponse{ProductID: id, OnHand: onHand[id]})
	}
	c.JSON(http.StatusOK, resp)
}

// listMoves godoc
// @Summary List a product's moves
// @Tags stock
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   productID path string true "Product ID"
// @Param   from query string false "From date (YYYY-MM-DD)"
// @Param   to query string false "To date (YYYY-MM-DD), inclusive"
// @Success 200 {array} domain.StockMove
// @Router /tenants/{tenantID}/stock/products/{productID}/moves [get]
func (h *stockHandler) listMoves(c *gin.Context) {
	var params struct {
		From time.Time `form:"from" time_format:"2006-01-02"`
		To   time.Time `form:"to" time_format:"2006-01-02"`
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	var from, to *time.Time
	if !params.From.IsZero() {
		from = &params.From
	}
	if !params.To.IsZero() {
		end := dto.EndOfDay(params.To)
		to = &end
	}

	moves, err := h.stockService.ListMoves(c.Request.Context(), tenantID(c), c.Param("productID"), from, to)
	if err != nil {
		respondError(c, err, "Failed to list stock moves")
		return
	}
	if moves == nil {
		moves = []domain.StockMove{}
	}
	c.JSON(http.StatusOK, moves)
}

// registerPurchase godoc
// @Summary Register a purchase
// @Tags purchases
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   purchase body dto.RegisterPurchaseRequest true "Purchase header and lines"
// @Success 201 {object} domain.Purchase
// @Failure 409 {object} map[string]string "Purchase already registered"
// @Router /tenants/{tenantID}/purchases [post]
func (h *stockHandler) registerPurchase(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RegisterPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	purchase, err := h.stockService.RegisterPurchase(c.Request.Context(), tenantID(c), req)
	if err != nil {
		respondError(c, err, "Failed to register purchase")
		return
	}

	logger.Info("Purchase registered", slog.String("purchase_id", purchase.PurchaseID), slog.Int("lines", len(purchase.Lines)))
	c.JSON(http.StatusCreated, purchase)
}

// getPurchase godoc
// @Summary Get a purchase
// @Tags purchases
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   purchaseID path string true "Purchase ID"
// @Success 200 {object} domain.Purchase
// @Failure 404 {object} map[string]string "Purchase not found"
// @Router /tenants/{tenantID}/purchases/{purchaseID} [get]
func (h *stockHandler) getPurchase(c *gin.Context) {
	purchase, err := h.stockService.GetPurchase(c.Request.Context(), tenantID(c), c.Param("purchaseID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve purchase")
		return
	}
	c.JSON(http.StatusOK, purchase)
}

// receivePurchase godoc
// @Summary Receive a purchase into stock
// @Description Posts one inbound move per valid line and marks the purchase received. No journal is posted.
// @Tags purchases
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   purchaseID path string true "Purchase ID"
// @Success 200 {object} domain.ReceiptResult
// @Failure 404 {object} map[string]string "Purchase not found"
// @Failure 409 {object} map[string]string "Purchase busy, retry later"
// @Router /tenants/{tenantID}/purchases/{purchaseID}/receipt [post]
func (h *stockHandler) receivePurchase(c *gin.Context) {
	result, err := h.stockService.PostPurchaseReceipt(c.Request.Context(), tenantID(c), c.Param("purchaseID"))
	if err != nil {
		respondError(c, err, "Failed to receive purchase")
		return
	}
	c.JSON(http.StatusOK, result)
}

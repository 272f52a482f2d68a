package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/SscSPs/bizledger/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the chart of accounts and the account map.
type accountHandler struct {
	accountService    portssvc.AccountSvcFacade
	accountMapService portssvc.AccountMapSvc
	manifest          *config.ModuleManifest
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade, ams portssvc.AccountMapSvc, manifest *config.ModuleManifest) *accountHandler {
	return &accountHandler{
		accountService:    as,
		accountMapService: ams,
		manifest:          manifest,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, as portssvc.AccountSvcFacade, ams portssvc.AccountMapSvc, manifest *config.ModuleManifest) {
	h := newAccountHandler(as, ams, manifest)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountID", h.getAccount)
	}

	accountMap := rg.Group("/account-map")
	{
		accountMap.GET("", h.listAccountMap)
		accountMap.GET("/missing", h.listMissingKeys)
		accountMap.PUT("/:key", h.setAccountMapEntry)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Adds an account to the tenant's chart of accounts
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Parent account not found"
// @Failure 409 {object} map[string]string "Account code already exists"
// @Failure 500 {object} map[string]string "Failed to create account"
// @Router /tenants/{tenantID}/accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	logger.Info("Received request to create account", slog.String("code", req.Code), slog.String("account_type", string(req.AccountType)))

	newAccount, err := h.accountService.CreateAccount(c.Request.Context(), tenantID(c), req)
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", newAccount.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(newAccount))
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve account"
// @Router /tenants/{tenantID}/accounts/{accountID} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	account, err := h.accountService.GetAccountByID(c.Request.Context(), tenantID(c), c.Param("accountID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Description Lists the tenant's chart of accounts ordered by code
// @Tags accounts
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Success 200 {array} dto.AccountResponse
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Router /tenants/{tenantID}/accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	accounts, err := h.accountService.ListAccounts(c.Request.Context(), tenantID(c))
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponses(accounts))
}

// listAccountMap godoc
// @Summary List account map entries
// @Tags account-map
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Success 200 {array} domain.AccountMapEntry
// @Router /tenants/{tenantID}/account-map [get]
func (h *accountHandler) listAccountMap(c *gin.Context) {
	entries, err := h.accountMapService.ListEntries(c.Request.Context(), tenantID(c))
	if err != nil {
		respondError(c, err, "Failed to list account map")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// setAccountMapEntry godoc
// @Summary Map a logical key to an account
// @Tags account-map
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   key path string true "Logical key, e.g. ar or sales"
// @Param   entry body dto.SetAccountMapEntryRequest true "Target account"
// @Success 200 {object} domain.AccountMapEntry
// @Failure 400 {object} map[string]string "Account inactive or key invalid"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /tenants/{tenantID}/account-map/{key} [put]
func (h *accountHandler) setAccountMapEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SetAccountMapEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	key := c.Param("key")
	entry, err := h.accountMapService.SetEntry(c.Request.Context(), tenantID(c), key, req.AccountID)
	if err != nil {
		respondError(c, err, "Failed to update account map")
		return
	}

	logger.Info("Account map entry set", slog.String("logical_key", key), slog.String("account_id", req.AccountID))
	c.JSON(http.StatusOK, entry)
}

// listMissingKeys godoc
// @Summary List unmapped keys
// @Description Lists the logical keys a module needs that the tenant has not mapped
// @Tags account-map
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   module query string false "Module name; all modules when omitted"
// @Success 200 {array} domain.MissingMapKey
// @Failure 400 {object} map[string]string "Unknown module"
// @Router /tenants/{tenantID}/account-map/missing [get]
func (h *accountHandler) listMissingKeys(c *gin.Context) {
	required, err := h.manifest.RequiredKeys(c.Query("module"))
	if err != nil {
		respondBindError(c, err, "module")
		return
	}

	missing, err := h.accountMapService.ListMissingKeys(c.Request.Context(), tenantID(c), required)
	if err != nil {
		respondError(c, err, "Failed to list missing keys")
		return
	}
	c.JSON(http.StatusOK, missing)
}

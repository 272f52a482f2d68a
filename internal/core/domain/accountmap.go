package domain

// Common logical keys resolved through the account map.
const (
	KeyCash       = "cash"
	KeyBank       = "bank"
	KeyAR         = "ar"
	KeyAP         = "ap"
	KeySales      = "sales"
	KeyTaxPayable = "tax_payable"
	KeyInventory  = "inventory"
	KeyCOGS       = "cogs"
)

// AccountMapEntry binds a tenant's logical key to a concrete ledger account.
type AccountMapEntry struct {
	TenantID   string `json:"tenantID"`
	LogicalKey string `json:"logicalKey"`
	AccountID  string `json:"accountID"`
	AuditFields
}

// MissingMapKey is a required logical key with no entry for the tenant.
type MissingMapKey struct {
	LogicalKey string `json:"logicalKey"`
}

package models

import "time"

// AuditFields mirrors the audit columns shared by ledger tables.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}

// Account represents a row of the accounts table.
type Account struct {
	AccountID       string  `db:"account_id"`
	TenantID        string  `db:"tenant_id"`
	Code            string  `db:"code"`
	Name            string  `db:"name"`
	AccountType     string  `db:"account_type"`
	NormalSide      string  `db:"normal_side"`
	Level           int     `db:"level"`
	ParentAccountID *string `db:"parent_account_id"` // Nullable
	IsActive        bool    `db:"is_active"`
	AuditFields
}

// AccountMapEntry represents a row of the account_map table.
type AccountMapEntry struct {
	TenantID   string `db:"tenant_id"`
	LogicalKey string `db:"logical_key"`
	AccountID  string `db:"account_id"`
	AuditFields
}

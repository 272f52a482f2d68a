package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnbalancedJournal is a posted journal whose lines do not balance.
type UnbalancedJournal struct {
	JournalID     string          `json:"journalID"`
	JournalNumber string          `json:"journalNumber"`
	TotalDebit    decimal.Decimal `json:"totalDebit"`
	TotalCredit   decimal.Decimal `json:"totalCredit"`
	Imbalance     decimal.Decimal `json:"imbalance"`
}

// NegativeStockItem is a product whose on-hand quantity is below zero.
type NegativeStockItem struct {
	ProductID   string          `json:"productID"`
	OnHand      decimal.Decimal `json:"onHand"`
	LastMovedAt time.Time       `json:"lastMovedAt"`
}

// HealthCheck names one ledger integrity check.
type HealthCheck string

const (
	CheckUnbalancedJournals HealthCheck = "unbalanced_journals"
	CheckNegativeStock      HealthCheck = "negative_stock"
	CheckMissingMapKeys     HealthCheck = "missing_account_map_keys"
)

// IntegrityWarning is a diagnostic about existing data. It is reported, never raised.
type IntegrityWarning struct {
	Check   HealthCheck `json:"check"`
	Subject string      `json:"subject"`
	Message string      `json:"message"`
}

// HealthReport bundles all integrity checks for a tenant.
type HealthReport struct {
	TenantID           string              `json:"tenantID"`
	CheckedAt          time.Time           `json:"checkedAt"`
	UnbalancedJournals []UnbalancedJournal `json:"unbalancedJournals"`
	NegativeStock      []NegativeStockItem `json:"negativeStock"`
	MissingKeys        []MissingMapKey     `json:"missingKeys"`
	Warnings           []IntegrityWarning  `json:"warnings"`
}

// Healthy reports whether no check produced a finding.
func (h HealthReport) Healthy() bool {
	return len(h.Warnings) == 0
}

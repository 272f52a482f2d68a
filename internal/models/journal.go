package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Journal represents a row of the journals table.
type Journal struct {
	JournalID        string    `db:"journal_id"`
	Seq              int64     `db:"seq"`
	TenantID         string    `db:"tenant_id"`
	JournalNumber    *string   `db:"journal_number"` // Assigned after the header insert wins
	JournalType      string    `db:"journal_type"`
	PostedAt         time.Time `db:"posted_at"`
	Memo             string    `db:"memo"`
	RefTable         string    `db:"ref_table"`
	RefID            string    `db:"ref_id"`
	RefDiscriminator string    `db:"ref_discriminator"`
	CreatedAt        time.Time `db:"created_at"`
}

// JournalLine represents a row of the journal_lines table.
type JournalLine struct {
	LineID    string          `db:"line_id"`
	JournalID string          `db:"journal_id"`
	TenantID  string          `db:"tenant_id"`
	LineNo    int             `db:"line_no"`
	AccountID string          `db:"account_id"`
	Debit     decimal.Decimal `db:"debit"`
	Credit    decimal.Decimal `db:"credit"`
	RefTable  string          `db:"ref_table"`
	RefID     string          `db:"ref_id"`
	PartyID   string          `db:"party_id"`
	Memo      string          `db:"memo"`
	Cleared   bool            `db:"cleared"`
}

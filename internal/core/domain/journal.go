package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of decimal places amounts and quantities are stored with.
const AmountScale = 4

// MaxAmount is the exclusive upper bound on the magnitude of any amount or quantity.
// Both stores hold it at AmountScale: NUMERIC(20,4) and an int64 scaled by 10^4.
var MaxAmount = decimal.New(1, 14)

// IdempotencyKey identifies "the same business event" within a tenant.
// Discriminator separates multiple postings against one document (e.g. an account or product).
type IdempotencyKey struct {
	RefTable      string `json:"refTable"`
	RefID         string `json:"refID"`
	Discriminator string `json:"discriminator,omitempty"`
}

// Document returns the business document the key belongs to.
func (k IdempotencyKey) Document(tenantID string) DocumentRef {
	return DocumentRef{TenantID: tenantID, RefTable: k.RefTable, RefID: k.RefID}
}

// PostOutcome tells a caller whether a posting created a row or found an existing one.
type PostOutcome string

const (
	Created        PostOutcome = "CREATED"
	AlreadyExisted PostOutcome = "ALREADY_EXISTED"
)

// Journal is one balanced double-entry transaction. It is immutable once posted.
type Journal struct {
	JournalID     string         `json:"journalID"`
	TenantID      string         `json:"tenantID"`
	JournalNumber string         `json:"journalNumber"`
	JournalType   string         `json:"journalType"`
	PostedAt      time.Time      `json:"postedAt"`
	Memo          string         `json:"memo"`
	Key           IdempotencyKey `json:"key"`
	// Seq is the store-assigned insertion order, used to break same-timestamp ties.
	Seq       int64         `json:"seq"`
	Lines     []JournalLine `json:"lines"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Totals returns the debit and credit sums of the journal's lines.
func (j Journal) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range j.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// PostResult is returned by journal posting.
type PostResult struct {
	JournalID     string      `json:"journalID"`
	JournalNumber string      `json:"journalNumber"`
	Outcome       PostOutcome `json:"outcome"`
}

// JournalFilter narrows journal listings.
type JournalFilter struct {
	JournalType string
	From        *time.Time
	To          *time.Time
	Limit       int
	NextToken   *string
}

// DocumentRef names a business document that postings serialize on.
type DocumentRef struct {
	TenantID string
	RefTable string
	RefID    string
}

// String renders the ref as a lock key.
func (d DocumentRef) String() string {
	return d.TenantID + ":" + d.RefTable + ":" + d.RefID
}

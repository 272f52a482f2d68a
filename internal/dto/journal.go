package dto

import (
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one debit-or-credit line in a posting request.
type JournalLineRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Debit     decimal.Decimal `json:"debit" binding:"decimal_gte0"`
	Credit    decimal.Decimal `json:"credit" binding:"decimal_gte0"`
	RefTable  string          `json:"refTable,omitempty" binding:"max=64"`
	RefID     string          `json:"refID,omitempty" binding:"max=128"`
	PartyID   string          `json:"partyID,omitempty" binding:"max=128"`
	Memo      string          `json:"memo,omitempty" binding:"max=500"`
}

// PostJournalRequest defines the data needed to post a journal.
// RefTable, RefID and Discriminator form the idempotency key.
type PostJournalRequest struct {
	JournalType   string               `json:"journalType" binding:"required,max=50"`
	PostedAt      time.Time            `json:"postedAt" binding:"required"`
	Memo          string               `json:"memo" binding:"max=500"`
	RefTable      string               `json:"refTable" binding:"required,max=64"`
	RefID         string               `json:"refID" binding:"required,max=128"`
	Discriminator string               `json:"discriminator" binding:"max=128"`
	Lines         []JournalLineRequest `json:"lines" binding:"dive"`
}

// IdempotencyKey returns the request's key.
func (r PostJournalRequest) IdempotencyKey() domain.IdempotencyKey {
	return domain.IdempotencyKey{RefTable: r.RefTable, RefID: r.RefID, Discriminator: r.Discriminator}
}

// ReverseJournalRequest asks for a mirror journal of an existing one.
type ReverseJournalRequest struct {
	PostedAt time.Time `json:"postedAt" binding:"required"`
	Memo     string    `json:"memo" binding:"max=500"`
}

// ClearLinesRequest flips the reconciliation flag on journal lines.
type ClearLinesRequest struct {
	LineIDs []string `json:"lineIDs" binding:"required,min=1,dive,required"`
	Cleared bool     `json:"cleared"`
}

// ListJournalsParams defines query parameters for listing journals.
type ListJournalsParams struct {
	JournalType string    `form:"journal_type"`
	From        time.Time `form:"from" time_format:"2006-01-02"`
	To          time.Time `form:"to" time_format:"2006-01-02"`
	Limit       int       `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken   *string   `form:"next_token"`
}

// ListJournalsResponse wraps a page of journals.
type ListJournalsResponse struct {
	Journals  []domain.Journal `json:"journals"`
	NextToken *string          `json:"nextToken,omitempty"`
}

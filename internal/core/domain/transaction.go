package domain

import "github.com/shopspring/decimal"

// Side indicates whether an amount sits on the debit or the credit side.
type Side string

const (
	Debit  Side = "DEBIT"
	Credit Side = "CREDIT"
)

// JournalLine is a single debit-or-credit row within a Journal, affecting one account.
// Exactly one of Debit and Credit is non-zero.
type JournalLine struct {
	LineID    string          `json:"lineID"`
	JournalID string          `json:"journalID"`
	LineNo    int             `json:"lineNo"`
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	// RefTable/RefID optionally point at the originating document (e.g. the invoice a payment settles).
	RefTable string `json:"refTable,omitempty"`
	RefID    string `json:"refID,omitempty"`
	PartyID  string `json:"partyID,omitempty"` // customer or supplier
	Memo     string `json:"memo,omitempty"`
	Cleared  bool   `json:"cleared"`
}

// Side returns the side carrying the line's amount.
func (l JournalLine) Side() Side {
	if l.Debit.IsPositive() {
		return Debit
	}
	return Credit
}

// Amount returns the non-zero side's amount.
func (l JournalLine) Amount() decimal.Decimal {
	if l.Debit.IsPositive() {
		return l.Debit
	}
	return l.Credit
}

// SignedFor returns the line's effect on an account with the given normal side.
func (l JournalLine) SignedFor(normal Side) decimal.Decimal {
	if normal == Credit {
		return l.Credit.Sub(l.Debit)
	}
	return l.Debit.Sub(l.Credit)
}

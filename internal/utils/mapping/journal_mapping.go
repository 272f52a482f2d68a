package mapping

import (
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/models"
)

// ToModelJournal converts a domain Journal header to a model Journal
func ToModelJournal(d domain.Journal) models.Journal {
	var number *string
	if d.JournalNumber != "" {
		n := d.JournalNumber
		number = &n
	}
	return models.Journal{
		JournalID:        d.JournalID,
		Seq:              d.Seq,
		TenantID:         d.TenantID,
		JournalNumber:    number,
		JournalType:      d.JournalType,
		PostedAt:         d.PostedAt,
		Memo:             d.Memo,
		RefTable:         d.Key.RefTable,
		RefID:            d.Key.RefID,
		RefDiscriminator: d.Key.Discriminator,
		CreatedAt:        d.CreatedAt,
	}
}

// ToDomainJournal converts a model Journal to a domain Journal without lines
func ToDomainJournal(m models.Journal) domain.Journal {
	number := ""
	if m.JournalNumber != nil {
		number = *m.JournalNumber
	}
	return domain.Journal{
		JournalID:     m.JournalID,
		TenantID:      m.TenantID,
		JournalNumber: number,
		JournalType:   m.JournalType,
		PostedAt:      m.PostedAt,
		Memo:          m.Memo,
		Key: domain.IdempotencyKey{
			RefTable:      m.RefTable,
			RefID:         m.RefID,
			Discriminator: m.RefDiscriminator,
		},
		Seq:       m.Seq,
		CreatedAt: m.CreatedAt,
	}
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine
func ToModelJournalLine(tenantID string, d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:    d.LineID,
		JournalID: d.JournalID,
		TenantID:  tenantID,
		LineNo:    d.LineNo,
		AccountID: d.AccountID,
		Debit:     d.Debit,
		Credit:    d.Credit,
		RefTable:  d.RefTable,
		RefID:     d.RefID,
		PartyID:   d.PartyID,
		Memo:      d.Memo,
		Cleared:   d.Cleared,
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:    m.LineID,
		JournalID: m.JournalID,
		LineNo:    m.LineNo,
		AccountID: m.AccountID,
		Debit:     m.Debit,
		Credit:    m.Credit,
		RefTable:  m.RefTable,
		RefID:     m.RefID,
		PartyID:   m.PartyID,
		Memo:      m.Memo,
		Cleared:   m.Cleared,
	}
}

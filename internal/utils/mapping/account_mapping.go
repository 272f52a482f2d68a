package mapping

import (
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		TenantID:        d.TenantID,
		Code:            d.Code,
		Name:            d.Name,
		AccountType:     string(d.AccountType),
		NormalSide:      string(d.NormalSide),
		Level:           d.Level,
		ParentAccountID: d.ParentAccountID,
		IsActive:        d.IsActive,
		AuditFields:     models.AuditFields{CreatedAt: d.CreatedAt, LastUpdatedAt: d.LastUpdatedAt},
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		TenantID:        m.TenantID,
		Code:            m.Code,
		Name:            m.Name,
		AccountType:     domain.AccountType(m.AccountType),
		NormalSide:      domain.Side(m.NormalSide),
		Level:           m.Level,
		ParentAccountID: m.ParentAccountID,
		IsActive:        m.IsActive,
		AuditFields:     domain.AuditFields{CreatedAt: m.CreatedAt, LastUpdatedAt: m.LastUpdatedAt},
	}
}

// ToDomainAccountMapEntry converts a model AccountMapEntry to a domain AccountMapEntry
func ToDomainAccountMapEntry(m models.AccountMapEntry) domain.AccountMapEntry {
	return domain.AccountMapEntry{
		TenantID:    m.TenantID,
		LogicalKey:  m.LogicalKey,
		AccountID:   m.AccountID,
		AuditFields: domain.AuditFields{CreatedAt: m.CreatedAt, LastUpdatedAt: m.LastUpdatedAt},
	}
}

package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
)

// accountMapService resolves logical posting keys to tenant accounts.
type accountMapService struct {
	BaseService
	mapRepo     portsrepo.AccountMapRepository
	accountRepo portsrepo.AccountReader
}

// NewAccountMapService creates the account map service.
func NewAccountMapService(mapRepo portsrepo.AccountMapRepository, accountRepo portsrepo.AccountReader) portssvc.AccountMapSvc {
	return &accountMapService{mapRepo: mapRepo, accountRepo: accountRepo}
}

var _ portssvc.AccountMapSvc = (*accountMapService)(nil)

func (s *accountMapService) Resolve(ctx context.Context, tenantID, logicalKey string) (string, error) {
	if logicalKey == "" {
		return "", apperrors.NewValidationError(apperrors.ReasonInvalidInput, "logical key is required")
	}
	resolved, err := s.ResolveMany(ctx, tenantID, logicalKey)
	if err != nil {
		return "", err
	}
	return resolved[logicalKey], nil
}

func (s *accountMapService) ResolveMany(ctx context.Context, tenantID string, logicalKeys ...string) (map[string]string, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	keys := uniqueKeys(logicalKeys)
	entries, err := s.mapRepo.FindEntries(ctx, tenantID, keys)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, k := range keys {
		if _, ok := entries[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		cfgErr := apperrors.NewMissingMapKeyError(tenantID, missing...)
		s.LogFailure(ctx, cfgErr, "Account map incomplete", slog.String("tenant_id", tenantID))
		return nil, cfgErr
	}
	return entries, nil
}

// ListMissingKeys returns required keys without an entry, in the order they were required.
func (s *accountMapService) ListMissingKeys(ctx context.Context, tenantID string, requiredKeys []string) ([]domain.MissingMapKey, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	keys := uniqueKeys(requiredKeys)
	entries, err := s.mapRepo.FindEntries(ctx, tenantID, keys)
	if err != nil {
		return nil, err
	}

	missing := []domain.MissingMapKey{}
	for _, k := range keys {
		if _, ok := entries[k]; !ok {
			missing = append(missing, domain.MissingMapKey{LogicalKey: k})
		}
	}
	return missing, nil
}

// SetEntry binds a key to one of the tenant's active accounts.
func (s *accountMapService) SetEntry(ctx context.Context, tenantID, logicalKey, accountID string) (*domain.AccountMapEntry, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	if logicalKey == "" {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "logical key is required")
	}

	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "account %s does not exist for tenant", accountID)
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "account %s is inactive", accountID)
	}

	now := time.Now().UTC()
	entry := domain.AccountMapEntry{
		TenantID:    tenantID,
		LogicalKey:  logicalKey,
		AccountID:   accountID,
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	if err := s.mapRepo.UpsertEntry(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to set account map entry", slog.String("tenant_id", tenantID), slog.String("key", logicalKey))
		return nil, err
	}
	return &entry, nil
}

func (s *accountMapService) ListEntries(ctx context.Context, tenantID string) ([]domain.AccountMapEntry, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	return s.mapRepo.ListEntries(ctx, tenantID)
}

func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

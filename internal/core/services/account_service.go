package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/platform/ids"
)

var (
	ErrParentAccountNotFound = errors.New("parent account not found")
	ErrAccountTooDeep        = fmt.Errorf("account hierarchy deeper than %d levels", domain.MaxAccountLevel)
)

// accountService manages the tenant chart of accounts.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service.
func NewAccountService(repo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: repo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount adds an account. The normal side defaults from the account type and
// the level follows from the parent.
func (s *accountService) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest) (*domain.Account, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	if !req.AccountType.Valid() {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "unknown account type %q", req.AccountType)
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "account code is required")
	}

	normal := req.NormalSide
	if normal == "" {
		normal = req.AccountType.DefaultNormalSide()
	}

	level := 1
	var parentID *string
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, tenantID, *req.ParentAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "%s: %s", ErrParentAccountNotFound, *req.ParentAccountID)
			}
			return nil, err
		}
		level = parent.Level + 1
		if level > domain.MaxAccountLevel {
			return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "%s", ErrAccountTooDeep)
		}
		id := parent.AccountID
		parentID = &id
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:       ids.New(),
		TenantID:        tenantID,
		Code:            code,
		Name:            strings.TrimSpace(req.Name),
		AccountType:     req.AccountType,
		NormalSide:      normal,
		Level:           level,
		ParentAccountID: parentID,
		IsActive:        true,
		AuditFields:     domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogFailure(ctx, err, "Failed to save account", slog.String("tenant_id", tenantID), slog.String("code", code))
		return nil, err
	}

	s.LogInfo(ctx, "Account created", slog.String("tenant_id", tenantID), slog.String("account_id", account.AccountID), slog.String("code", code))
	return &account, nil
}

// GetAccountByID retrieves a tenant's account.
func (s *accountService) GetAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	return s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
}

// ListAccounts returns the tenant's chart of accounts.
func (s *accountService) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	return s.accountRepo.ListAccounts(ctx, tenantID)
}

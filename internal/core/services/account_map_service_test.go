package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountMap_ResolveMissingKeyIsConfigurationError(t *testing.T) {
	ctx := context.Background()
	mapRepo := new(MockAccountMapRepository)
	svc := services.NewAccountMapService(mapRepo, new(MockAccountRepository))

	mapRepo.On("FindEntries", ctx, "acme", []string{"ar", "sales", "tax_payable"}).
		Return(map[string]string{"ar": "acc-ar"}, nil).Once()

	_, err := svc.ResolveMany(ctx, "acme", "ar", "sales", "tax_payable", "ar")

	var cfgErr *apperrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"sales", "tax_payable"}, cfgErr.MissingKeys)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	mapRepo.AssertExpectations(t)
}

func TestAccountMap_Resolve(t *testing.T) {
	ctx := context.Background()
	mapRepo := new(MockAccountMapRepository)
	svc := services.NewAccountMapService(mapRepo, new(MockAccountRepository))

	mapRepo.On("FindEntries", ctx, "acme", []string{"cash"}).Return(map[string]string{"cash": "acc-cash"}, nil).Once()

	id, err := svc.Resolve(ctx, "acme", "cash")
	require.NoError(t, err)
	assert.Equal(t, "acc-cash", id)

	_, err = svc.Resolve(ctx, "acme", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAccountMap_ListMissingKeysKeepsRequiredOrder(t *testing.T) {
	ctx := context.Background()
	mapRepo := new(MockAccountMapRepository)
	svc := services.NewAccountMapService(mapRepo, new(MockAccountRepository))

	mapRepo.On("FindEntries", ctx, "acme", []string{"sales", "ar", "cash"}).
		Return(map[string]string{"ar": "acc-ar"}, nil).Once()

	missing, err := svc.ListMissingKeys(ctx, "acme", []string{"sales", "ar", "cash"})
	require.NoError(t, err)
	assert.Equal(t, []domain.MissingMapKey{{LogicalKey: "sales"}, {LogicalKey: "cash"}}, missing)
}

func TestAccountMap_SetEntryRejectsInactiveAccount(t *testing.T) {
	ctx := context.Background()
	mapRepo := new(MockAccountMapRepository)
	accRepo := new(MockAccountRepository)
	svc := services.NewAccountMapService(mapRepo, accRepo)

	accRepo.On("FindAccountByID", ctx, "acme", "old").Return(&domain.Account{AccountID: "old", IsActive: false}, nil).Once()
	accRepo.On("FindAccountByID", ctx, "acme", "cash").Return(&domain.Account{AccountID: "cash", IsActive: true}, nil).Once()
	mapRepo.On("UpsertEntry", ctx, mock.MatchedBy(func(e domain.AccountMapEntry) bool {
		return e.TenantID == "acme" && e.LogicalKey == "cash" && e.AccountID == "cash"
	})).Return(nil).Once()

	_, err := svc.SetEntry(ctx, "acme", "cash", "old")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	entry, err := svc.SetEntry(ctx, "acme", "cash", "cash")
	require.NoError(t, err)
	assert.Equal(t, "cash", entry.AccountID)
	mapRepo.AssertExpectations(t)
}

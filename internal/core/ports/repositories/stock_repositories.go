package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StockRepository stores the inventory ledger.
type StockRepository interface {
	// UpsertMove inserts a move or, when one exists for (tenant, ref table, ref id, product),
	// updates its quantities and price in place.
	UpsertMove(ctx context.Context, move domain.StockMove) (domain.MoveResult, error)
	// OnHand is a single aggregate over all moves of the product.
	OnHand(ctx context.Context, tenantID, productID string) (decimal.Decimal, error)
	OnHandMany(ctx context.Context, tenantID string, productIDs []string) (map[string]decimal.Decimal, error)
	ListMoves(ctx context.Context, tenantID, productID string, from, to *time.Time) ([]domain.StockMove, error)
}

// PurchaseRepository reads purchase documents and records their receipt.
type PurchaseRepository interface {
	SavePurchase(ctx context.Context, purchase domain.Purchase) error
	FindPurchaseByID(ctx context.Context, tenantID, purchaseID string) (*domain.Purchase, error)
	// FindPurchaseForUpdate loads the header and lines, holding a row lock on the header
	// for the rest of the transaction where the store supports it.
	FindPurchaseForUpdate(ctx context.Context, tenantID, purchaseID string) (*domain.Purchase, error)
	MarkPurchaseReceived(ctx context.Context, tenantID, purchaseID string, at time.Time) error
}

package services

import (
	"context"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/shopspring/decimal"
)

// StockReaderSvc defines inventory queries.
type StockReaderSvc interface {
	OnHand(ctx context.Context, tenantID, productID string) (decimal.Decimal, error)
	OnHandMany(ctx context.Context, tenantID string, productIDs []string) (map[string]decimal.Decimal, error)
	ListMoves(ctx context.Context, tenantID, productID string, from, to *time.Time) ([]domain.StockMove, error)
	GetPurchase(ctx context.Context, tenantID, purchaseID string) (*domain.Purchase, error)
}

// StockWriterSvc defines inventory postings.
type StockWriterSvc interface {
	PostMove(ctx context.Context, tenantID string, req dto.PostMoveRequest) (domain.MoveResult, error)
	// PostPurchaseReceipt posts one move per positive line and marks the purchase received.
	PostPurchaseReceipt(ctx context.Context, tenantID, purchaseID string) (*domain.ReceiptResult, error)
	RegisterPurchase(ctx context.Context, tenantID string, req dto.RegisterPurchaseRequest) (*domain.Purchase, error)
}

// StockSvcFacade combines stock reads and writes.
type StockSvcFacade interface {
	StockReaderSvc
	StockWriterSvc
}

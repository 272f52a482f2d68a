package services

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// PostingSvc turns business events into ledger postings.
// Every operation is idempotent per event and safe to retry after a concurrency error.
type PostingSvc interface {
	PostSalesInvoice(ctx context.Context, tenantID string, event domain.SalesInvoiceEvent) (*domain.EventPostingResult, error)
	PostPurchaseReceived(ctx context.Context, tenantID, purchaseID string) (*domain.EventPostingResult, error)
	PostCustomerPayment(ctx context.Context, tenantID string, event domain.CustomerPaymentEvent) (*domain.EventPostingResult, error)
}

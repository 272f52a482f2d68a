package dto

import (
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostMoveRequest records one inventory movement.
type PostMoveRequest struct {
	ProductID string          `json:"productID" binding:"required,max=128"`
	QtyIn     decimal.Decimal `json:"qtyIn" binding:"decimal_gte0"`
	QtyOut    decimal.Decimal `json:"qtyOut" binding:"decimal_gte0"`
	UnitPrice decimal.Decimal `json:"unitPrice" binding:"decimal_gte0"`
	MoveType  domain.MoveType `json:"moveType" binding:"required"`
	RefTable  string          `json:"refTable" binding:"required,max=64"`
	RefID     string          `json:"refID" binding:"required,max=128"`
	MovedAt   time.Time       `json:"movedAt"` // Optional, defaults to now
}

// PurchaseLineRequest is one line of a purchase registered by the platform.
type PurchaseLineRequest struct {
	ProductID string          `json:"productID" binding:"required,max=128"`
	Qty       decimal.Decimal `json:"qty"`
	UnitPrice decimal.Decimal `json:"unitPrice" binding:"decimal_gte0"`
}

// RegisterPurchaseRequest stores a purchase document so it can later be received.
type RegisterPurchaseRequest struct {
	PurchaseID string                `json:"purchaseID" binding:"required,max=128"`
	SupplierID string                `json:"supplierID" binding:"required,max=128"`
	OrderedAt  time.Time             `json:"orderedAt"`
	Lines      []PurchaseLineRequest `json:"lines" binding:"dive"`
}

// OnHandResponse reports a product's quantity.
type OnHandResponse struct {
	ProductID string          `json:"productID"`
	OnHand    decimal.Decimal `json:"onHand"`
}

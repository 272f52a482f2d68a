package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoveType tags why stock moved.
type MoveType string

const (
	MovePurchaseReceipt MoveType = "PURCHASE_RECEIPT"
	MoveSale            MoveType = "SALE"
	MoveSaleReturn      MoveType = "SALE_RETURN"
	MoveAdjustment      MoveType = "ADJUSTMENT"
	MoveTransferIn      MoveType = "TRANSFER_IN"
	MoveTransferOut     MoveType = "TRANSFER_OUT"
	MoveOpening         MoveType = "OPENING"
)

// StockMove is one row of the append-only inventory ledger.
type StockMove struct {
	MoveID    string          `json:"moveID"`
	TenantID  string          `json:"tenantID"`
	ProductID string          `json:"productID"`
	QtyIn     decimal.Decimal `json:"qtyIn"`
	QtyOut    decimal.Decimal `json:"qtyOut"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	MoveType  MoveType        `json:"moveType"`
	RefTable  string          `json:"refTable"`
	RefID     string          `json:"refID"`
	MovedAt   time.Time       `json:"movedAt"`
	Seq       int64           `json:"seq"`
}

// Net returns QtyIn - QtyOut.
func (m StockMove) Net() decimal.Decimal {
	return m.QtyIn.Sub(m.QtyOut)
}

// MoveResult is returned by stock posting.
type MoveResult struct {
	MoveID    string      `json:"moveID"`
	ProductID string      `json:"productID"`
	Outcome   PostOutcome `json:"outcome"`
}

// PurchaseStatus is the lifecycle state of a purchase header.
type PurchaseStatus string

const (
	PurchaseDraft    PurchaseStatus = "DRAFT"
	PurchaseOrdered  PurchaseStatus = "ORDERED"
	PurchaseReceived PurchaseStatus = "RECEIVED"
)

// Purchase is a supplier purchase document. The platform owns it; the ledger reads it and marks it received.
type Purchase struct {
	PurchaseID string         `json:"purchaseID"`
	TenantID   string         `json:"tenantID"`
	SupplierID string         `json:"supplierID"`
	Status     PurchaseStatus `json:"status"`
	OrderedAt  time.Time      `json:"orderedAt"`
	ReceivedAt *time.Time     `json:"receivedAt,omitempty"`
	Lines      []PurchaseLine `json:"lines"`
}

// PurchaseLine is one product line on a purchase.
type PurchaseLine struct {
	LineID     string          `json:"lineID"`
	PurchaseID string          `json:"purchaseID"`
	ProductID  string          `json:"productID"`
	Qty        decimal.Decimal `json:"qty"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

// ReceiptResult describes the outcome of receiving a purchase.
type ReceiptResult struct {
	PurchaseID      string          `json:"purchaseID"`
	Moves           []MoveResult    `json:"moves"`
	SkippedLineIDs  []string        `json:"skippedLineIDs"`
	AlreadyReceived bool            `json:"alreadyReceived"`
	ReceivedValue   decimal.Decimal `json:"receivedValue"`
}

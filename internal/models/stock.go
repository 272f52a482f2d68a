package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMove represents a row of the stock_moves table.
type StockMove struct {
	MoveID    string          `db:"move_id"`
	Seq       int64           `db:"seq"`
	TenantID  string          `db:"tenant_id"`
	ProductID string          `db:"product_id"`
	QtyIn     decimal.Decimal `db:"qty_in"`
	QtyOut    decimal.Decimal `db:"qty_out"`
	UnitPrice decimal.Decimal `db:"unit_price"`
	MoveType  string          `db:"move_type"`
	RefTable  string          `db:"ref_table"`
	RefID     string          `db:"ref_id"`
	MovedAt   time.Time       `db:"moved_at"`
}

// Purchase represents a row of the purchases table.
type Purchase struct {
	TenantID   string     `db:"tenant_id"`
	PurchaseID string     `db:"purchase_id"`
	SupplierID string     `db:"supplier_id"`
	Status     string     `db:"status"`
	OrderedAt  time.Time  `db:"ordered_at"`
	ReceivedAt *time.Time `db:"received_at"`
}

// PurchaseLine represents a row of the purchase_lines table.
type PurchaseLine struct {
	LineID     string          `db:"line_id"`
	TenantID   string          `db:"tenant_id"`
	PurchaseID string          `db:"purchase_id"`
	LineNo     int             `db:"line_no"`
	ProductID  string          `db:"product_id"`
	Qty        decimal.Decimal `db:"qty"`
	UnitPrice  decimal.Decimal `db:"unit_price"`
}

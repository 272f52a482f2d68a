package mapping

import (
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/models"
)

// ToModelStockMove converts a domain StockMove to a model StockMove
func ToModelStockMove(d domain.StockMove) models.StockMove {
	return models.StockMove{
		MoveID:    d.MoveID,
		Seq:       d.Seq,
		TenantID:  d.TenantID,
		ProductID: d.ProductID,
		QtyIn:     d.QtyIn,
		QtyOut:    d.QtyOut,
		UnitPrice: d.UnitPrice,
		MoveType:  string(d.MoveType),
		RefTable:  d.RefTable,
		RefID:     d.RefID,
		MovedAt:   d.MovedAt,
	}
}

// ToDomainStockMove converts a model StockMove to a domain StockMove
func ToDomainStockMove(m models.StockMove) domain.StockMove {
	return domain.StockMove{
		MoveID:    m.MoveID,
		TenantID:  m.TenantID,
		ProductID: m.ProductID,
		QtyIn:     m.QtyIn,
		QtyOut:    m.QtyOut,
		UnitPrice: m.UnitPrice,
		MoveType:  domain.MoveType(m.MoveType),
		RefTable:  m.RefTable,
		RefID:     m.RefID,
		MovedAt:   m.MovedAt,
		Seq:       m.Seq,
	}
}

// ToDomainPurchase converts a model Purchase and its lines to a domain Purchase
func ToDomainPurchase(m models.Purchase, lines []models.PurchaseLine) domain.Purchase {
	p := domain.Purchase{
		PurchaseID: m.PurchaseID,
		TenantID:   m.TenantID,
		SupplierID: m.SupplierID,
		Status:     domain.PurchaseStatus(m.Status),
		OrderedAt:  m.OrderedAt,
		ReceivedAt: m.ReceivedAt,
		Lines:      make([]domain.PurchaseLine, 0, len(lines)),
	}
	for _, l := range lines {
		p.Lines = append(p.Lines, domain.PurchaseLine{
			LineID:     l.LineID,
			PurchaseID: l.PurchaseID,
			ProductID:  l.ProductID,
			Qty:        l.Qty,
			UnitPrice:  l.UnitPrice,
		})
	}
	return p
}

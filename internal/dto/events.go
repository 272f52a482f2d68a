package dto

import (
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SalesInvoiceLineRequest is one product line on an issued invoice.
type SalesInvoiceLineRequest struct {
	ProductID string          `json:"productID" binding:"required,max=128"`
	Qty       decimal.Decimal `json:"qty" binding:"decimal_gt0"`
	UnitPrice decimal.Decimal `json:"unitPrice" binding:"decimal_gte0"`
	UnitCost  decimal.Decimal `json:"unitCost" binding:"decimal_gte0"`
}

// SalesInvoiceIssuedRequest is the payload of an invoice-issued event.
type SalesInvoiceIssuedRequest struct {
	InvoiceID  string                    `json:"invoiceID" binding:"required,max=128"`
	CustomerID string                    `json:"customerID" binding:"required,max=128"`
	IssuedAt   time.Time                 `json:"issuedAt" binding:"required"`
	Memo       string                    `json:"memo" binding:"max=500"`
	Tax        decimal.Decimal           `json:"tax" binding:"decimal_gte0"`
	Lines      []SalesInvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToEvent converts the request to a domain event.
func (r SalesInvoiceIssuedRequest) ToEvent() domain.SalesInvoiceEvent {
	lines := make([]domain.SalesInvoiceLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, domain.SalesInvoiceLine{
			ProductID: l.ProductID,
			Qty:       l.Qty,
			UnitPrice: l.UnitPrice,
			UnitCost:  l.UnitCost,
		})
	}
	return domain.SalesInvoiceEvent{
		InvoiceID:  r.InvoiceID,
		CustomerID: r.CustomerID,
		IssuedAt:   r.IssuedAt,
		Memo:       r.Memo,
		Lines:      lines,
		Tax:        r.Tax,
	}
}

// CustomerPaymentRequest is the payload of a payment-received event.
type CustomerPaymentRequest struct {
	PaymentID  string          `json:"paymentID" binding:"required,max=128"`
	CustomerID string          `json:"customerID" binding:"required,max=128"`
	InvoiceID  string          `json:"invoiceID" binding:"required,max=128"`
	ReceivedAt time.Time       `json:"receivedAt" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	DepositKey string          `json:"depositKey" binding:"omitempty,oneof=cash bank"`
}

// ToEvent converts the request to a domain event.
func (r CustomerPaymentRequest) ToEvent() domain.CustomerPaymentEvent {
	deposit := r.DepositKey
	if deposit == "" {
		deposit = domain.KeyCash
	}
	return domain.CustomerPaymentEvent{
		PaymentID:  r.PaymentID,
		CustomerID: r.CustomerID,
		InvoiceID:  r.InvoiceID,
		ReceivedAt: r.ReceivedAt,
		Amount:     r.Amount,
		DepositKey: deposit,
	}
}

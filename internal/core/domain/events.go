package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reference tables of the documents the posting orchestrator journals.
const (
	RefSalesInvoice    = "sales_invoice"
	RefPurchase        = "purchase"
	RefCustomerPayment = "customer_payment"
	RefJournalReversal = "journal_reversal"
	RefManual          = "manual"
)

// Journal types written by the posting orchestrator.
const (
	JournalTypeSales    = "SALES"
	JournalTypePurchase = "PURCHASE"
	JournalTypeReceipt  = "RECEIPT"
	JournalTypeReversal = "REVERSAL"
)

// SalesInvoiceLine is one product sold on an invoice.
type SalesInvoiceLine struct {
	ProductID string          `json:"productID"`
	Qty       decimal.Decimal `json:"qty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	// UnitCost drives the COGS/inventory leg. Zero skips the cost leg for the line.
	UnitCost decimal.Decimal `json:"unitCost"`
}

// SalesInvoiceEvent is raised when an invoice is issued.
type SalesInvoiceEvent struct {
	InvoiceID  string             `json:"invoiceID"`
	CustomerID string             `json:"customerID"`
	IssuedAt   time.Time          `json:"issuedAt"`
	Memo       string             `json:"memo"`
	Lines      []SalesInvoiceLine `json:"lines"`
	Tax        decimal.Decimal    `json:"tax"`
}

// Subtotal returns the sum of qty * unit price over all lines.
func (e SalesInvoiceEvent) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Qty.Mul(l.UnitPrice))
	}
	return total
}

// CustomerPaymentEvent is raised when a customer pays against an invoice.
type CustomerPaymentEvent struct {
	PaymentID  string          `json:"paymentID"`
	CustomerID string          `json:"customerID"`
	InvoiceID  string          `json:"invoiceID"`
	ReceivedAt time.Time       `json:"receivedAt"`
	Amount     decimal.Decimal `json:"amount"`
	// DepositKey is the account map key the money lands in, "cash" or "bank".
	DepositKey string `json:"depositKey"`
}

// EventPostingResult reports every ledger effect of one business event.
type EventPostingResult struct {
	Journal PostResult     `json:"journal"`
	Moves   []MoveResult   `json:"moves,omitempty"`
	Receipt *ReceiptResult `json:"receipt,omitempty"`
}

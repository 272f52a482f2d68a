package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/platform/ids"
	"github.com/SscSPs/bizledger/internal/platform/metrics"
	"github.com/SscSPs/bizledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// postingService turns business events into journal and stock postings.
// All keys are resolved before the document is locked, so a missing map entry never leaves a partial write.
type postingService struct {
	BaseService
	tx         portsrepo.TransactionManager
	locker     portsrepo.DocumentLocker
	accountMap portssvc.AccountMapSvc
	journals   *journalService
	stock      *stockService
	metrics    *metrics.Metrics
}

func newPostingService(tx portsrepo.TransactionManager, locker portsrepo.DocumentLocker, accountMap portssvc.AccountMapSvc, journals *journalService, stock *stockService, m *metrics.Metrics) *postingService {
	return &postingService{
		tx:         tx,
		locker:     locker,
		accountMap: accountMap,
		journals:   journals,
		stock:      stock,
		metrics:    m,
	}
}

var _ portssvc.PostingSvc = (*postingService)(nil)

// PostSalesInvoice posts Dr AR / Cr Sales / Cr Tax, the cost leg Dr COGS / Cr Inventory,
// and one stock-out move per product. A replayed invoice returns the first posting untouched.
// An invoice with no value (free samples) writes only its stock moves and the result carries no journal ID.
func (s *postingService) PostSalesInvoice(ctx context.Context, tenantID string, event domain.SalesInvoiceEvent) (*domain.EventPostingResult, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	if err := validateSalesInvoice(event); err != nil {
		return nil, err
	}

	revenue := event.Subtotal().Round(domain.AmountScale)
	tax := event.Tax.Round(domain.AmountScale)
	cost := decimal.Zero
	for _, l := range event.Lines {
		cost = cost.Add(l.Qty.Mul(l.UnitCost))
	}
	cost = cost.Round(domain.AmountScale)

	keys := []string{domain.KeyAR, domain.KeySales}
	if tax.IsPositive() {
		keys = append(keys, domain.KeyTaxPayable)
	}
	if cost.IsPositive() {
		keys = append(keys, domain.KeyInventory, domain.KeyCOGS)
	}
	accounts, err := s.accountMap.ResolveMany(ctx, tenantID, keys...)
	if err != nil {
		s.metrics.ObservePosting("sales_invoice", "", err)
		s.LogFailure(ctx, err, "Sales invoice not posted", slog.String("tenant_id", tenantID), slog.String("ref_id", event.InvoiceID))
		return nil, err
	}

	key := domain.IdempotencyKey{RefTable: domain.RefSalesInvoice, RefID: event.InvoiceID}
	memo := event.Memo
	if memo == "" {
		memo = fmt.Sprintf("Sales invoice %s", event.InvoiceID)
	}
	journal := newJournal(tenantID, domain.JournalTypeSales, event.IssuedAt, memo, key)
	invoiceRef := func(l domain.JournalLine) domain.JournalLine {
		l.RefTable = domain.RefSalesInvoice
		l.RefID = event.InvoiceID
		l.PartyID = event.CustomerID
		return l
	}
	if total := revenue.Add(tax); total.IsPositive() {
		journal.Lines = append(journal.Lines, invoiceRef(domain.JournalLine{AccountID: accounts[domain.KeyAR], Debit: total, Credit: decimal.Zero}))
	}
	if revenue.IsPositive() {
		journal.Lines = append(journal.Lines, domain.JournalLine{AccountID: accounts[domain.KeySales], Debit: decimal.Zero, Credit: revenue})
	}
	if tax.IsPositive() {
		journal.Lines = append(journal.Lines, domain.JournalLine{AccountID: accounts[domain.KeyTaxPayable], Debit: decimal.Zero, Credit: tax})
	}
	if cost.IsPositive() {
		journal.Lines = append(journal.Lines,
			domain.JournalLine{AccountID: accounts[domain.KeyCOGS], Debit: cost, Credit: decimal.Zero},
			domain.JournalLine{AccountID: accounts[domain.KeyInventory], Debit: decimal.Zero, Credit: cost},
		)
	}

	moves := saleMoves(tenantID, event, journal.PostedAt)

	result := &domain.EventPostingResult{}
	err = s.locker.WithDocumentLock(ctx, key.Document(tenantID), func(ctx context.Context) error {
		return s.tx.RunInTx(ctx, func(ctx context.Context) error {
			if len(journal.Lines) == 0 {
				return s.postMovesOnly(ctx, moves, result)
			}
			posted, err := s.journals.insert(ctx, journal)
			if err != nil {
				return err
			}
			result.Journal = posted
			if posted.Outcome == domain.AlreadyExisted {
				return nil
			}
			for _, m := range moves {
				mr, err := s.stock.stockRepo.UpsertMove(ctx, m)
				if err != nil {
					return err
				}
				result.Moves = append(result.Moves, mr)
			}
			return nil
		})
	})
	s.metrics.ObservePosting("sales_invoice", result.Journal.Outcome, err)
	if err != nil {
		s.LogFailure(ctx, err, "Sales invoice not posted", slog.String("tenant_id", tenantID), slog.String("ref_id", event.InvoiceID))
		return nil, err
	}

	s.LogInfo(ctx, "Sales invoice posted",
		slog.String("tenant_id", tenantID),
		slog.String("ref_id", event.InvoiceID),
		slog.String("journal_id", result.Journal.JournalID),
		slog.String("outcome", string(result.Journal.Outcome)))
	return result, nil
}

// postMovesOnly upserts the moves of an invoice that carries no journal.
// The outcome is Created when any move was new.
func (s *postingService) postMovesOnly(ctx context.Context, moves []domain.StockMove, result *domain.EventPostingResult) error {
	result.Journal.Outcome = domain.AlreadyExisted
	for _, m := range moves {
		mr, err := s.stock.stockRepo.UpsertMove(ctx, m)
		if err != nil {
			return err
		}
		if mr.Outcome == domain.Created {
			result.Journal.Outcome = domain.Created
		}
		result.Moves = append(result.Moves, mr)
	}
	return nil
}

func validateSalesInvoice(event domain.SalesInvoiceEvent) error {
	if event.InvoiceID == "" || event.CustomerID == "" {
		return apperrors.NewValidationError(apperrors.ReasonInvalidInput, "invoice and customer are required")
	}
	if len(event.Lines) == 0 {
		return apperrors.NewValidationError(apperrors.ReasonEmptyJournal, "invoice %s has no lines", event.InvoiceID)
	}
	if event.Tax.IsNegative() {
		return apperrors.NewValidationError(apperrors.ReasonInvalidInput, "tax must not be negative")
	}
	if !accounting.InRange(event.Tax) {
		return apperrors.NewValidationError(apperrors.ReasonInvalidLine, "tax must be below %s", domain.MaxAmount.String())
	}
	for i, l := range event.Lines {
		if l.ProductID == "" || !l.Qty.IsPositive() || l.UnitPrice.IsNegative() || l.UnitCost.IsNegative() {
			return apperrors.NewValidationError(apperrors.ReasonInvalidLine, "invoice line %d is invalid", i+1)
		}
		if !accounting.Storable(l.Qty) || !accounting.InRange(l.UnitPrice) || !accounting.InRange(l.UnitCost) {
			return apperrors.NewValidationError(apperrors.ReasonInvalidLine, "invoice line %d: quantity or price out of range", i+1)
		}
	}
	return nil
}

// saleMoves aggregates invoice lines into one stock-out move per product.
func saleMoves(tenantID string, event domain.SalesInvoiceEvent, movedAt time.Time) []domain.StockMove {
	index := make(map[string]int)
	var moves []domain.StockMove
	for _, l := range event.Lines {
		if i, ok := index[l.ProductID]; ok {
			moves[i].QtyOut = moves[i].QtyOut.Add(l.Qty)
			continue
		}
		index[l.ProductID] = len(moves)
		moves = append(moves, domain.StockMove{
			MoveID:    ids.New(),
			TenantID:  tenantID,
			ProductID: l.ProductID,
			QtyIn:     decimal.Zero,
			QtyOut:    l.Qty,
			UnitPrice: l.UnitCost.Round(domain.AmountScale),
			MoveType:  domain.MoveSale,
			RefTable:  domain.RefSalesInvoice,
			RefID:     event.InvoiceID,
			MovedAt:   movedAt,
		})
	}
	return moves
}

// PostPurchaseReceived receives the purchase into stock and posts Dr Inventory / Cr AP for its value.
// Receipt and journal commit together.
func (s *postingService) PostPurchaseReceived(ctx context.Context, tenantID, purchaseID string) (*domain.EventPostingResult, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	if purchaseID == "" {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "purchase is required")
	}
	accounts, err := s.accountMap.ResolveMany(ctx, tenantID, domain.KeyInventory, domain.KeyAP)
	if err != nil {
		s.metrics.ObservePosting("purchase_received", "", err)
		s.LogFailure(ctx, err, "Purchase not posted", slog.String("tenant_id", tenantID), slog.String("ref_id", purchaseID))
		return nil, err
	}

	key := domain.IdempotencyKey{RefTable: domain.RefPurchase, RefID: purchaseID}
	result := &domain.EventPostingResult{}
	err = s.locker.WithDocumentLock(ctx, key.Document(tenantID), func(ctx context.Context) error {
		return s.tx.RunInTx(ctx, func(ctx context.Context) error {
			receipt, purchase, err := s.stock.receiveInTx(ctx, tenantID, purchaseID)
			if err != nil {
				return err
			}
			result.Receipt = receipt
			result.Moves = receipt.Moves
			if !receipt.ReceivedValue.IsPositive() {
				return nil
			}

			postedAt := time.Now()
			if purchase.ReceivedAt != nil {
				postedAt = *purchase.ReceivedAt
			}
			journal := newJournal(tenantID, domain.JournalTypePurchase, postedAt, fmt.Sprintf("Purchase %s received", purchaseID), key)
			journal.Lines = []domain.JournalLine{
				{AccountID: accounts[domain.KeyInventory], Debit: receipt.ReceivedValue, Credit: decimal.Zero},
				{AccountID: accounts[domain.KeyAP], Debit: decimal.Zero, Credit: receipt.ReceivedValue,
					RefTable: domain.RefPurchase, RefID: purchaseID, PartyID: purchase.SupplierID},
			}
			result.Journal, err = s.journals.insert(ctx, journal)
			return err
		})
	})

	outcome := result.Journal.Outcome
	if outcome == "" && result.Receipt != nil {
		outcome = domain.Created
		if result.Receipt.AlreadyReceived {
			outcome = domain.AlreadyExisted
		}
	}
	s.metrics.ObservePosting("purchase_received", outcome, err)
	if err != nil {
		s.LogFailure(ctx, err, "Purchase not posted", slog.String("tenant_id", tenantID), slog.String("ref_id", purchaseID))
		return nil, err
	}

	s.LogInfo(ctx, "Purchase posted",
		slog.String("tenant_id", tenantID),
		slog.String("ref_id", purchaseID),
		slog.Int("moves", len(result.Moves)),
		slog.Bool("already_received", result.Receipt.AlreadyReceived))
	return result, nil
}

// PostCustomerPayment posts Dr cash or bank / Cr AR against the paid invoice.
func (s *postingService) PostCustomerPayment(ctx context.Context, tenantID string, event domain.CustomerPaymentEvent) (*domain.EventPostingResult, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	if event.PaymentID == "" || event.CustomerID == "" || event.InvoiceID == "" {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "payment, customer and invoice are required")
	}
	if !event.Amount.IsPositive() {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidLine, "payment amount must be positive")
	}
	deposit := event.DepositKey
	if deposit == "" {
		deposit = domain.KeyCash
	}
	if deposit != domain.KeyCash && deposit != domain.KeyBank {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "deposit key must be %q or %q", domain.KeyCash, domain.KeyBank)
	}

	accounts, err := s.accountMap.ResolveMany(ctx, tenantID, deposit, domain.KeyAR)
	if err != nil {
		s.metrics.ObservePosting("customer_payment", "", err)
		s.LogFailure(ctx, err, "Customer payment not posted", slog.String("tenant_id", tenantID), slog.String("ref_id", event.PaymentID))
		return nil, err
	}

	key := domain.IdempotencyKey{RefTable: domain.RefCustomerPayment, RefID: event.PaymentID}
	journal := newJournal(tenantID, domain.JournalTypeReceipt, event.ReceivedAt,
		fmt.Sprintf("Payment %s for invoice %s", event.PaymentID, event.InvoiceID), key)
	journal.Lines = []domain.JournalLine{
		{AccountID: accounts[deposit], Debit: event.Amount, Credit: decimal.Zero,
			RefTable: domain.RefCustomerPayment, RefID: event.PaymentID},
		{AccountID: accounts[domain.KeyAR], Debit: decimal.Zero, Credit: event.Amount,
			RefTable: domain.RefSalesInvoice, RefID: event.InvoiceID, PartyID: event.CustomerID},
	}

	posted, err := s.journals.post(ctx, journal)
	if err != nil {
		return nil, err
	}
	return &domain.EventPostingResult{Journal: posted}, nil
}

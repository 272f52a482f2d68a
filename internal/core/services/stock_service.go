package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/platform/ids"
	"github.com/SscSPs/bizledger/internal/platform/metrics"
	"github.com/SscSPs/bizledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// stockService maintains the inventory ledger.
type stockService struct {
	BaseService
	tx           portsrepo.TransactionManager
	locker       portsrepo.DocumentLocker
	stockRepo    portsrepo.StockRepository
	purchaseRepo portsrepo.PurchaseRepository
	metrics      *metrics.Metrics
}

// NewStockService creates a new StockService.
func NewStockService(tx portsrepo.TransactionManager, locker portsrepo.DocumentLocker, stockRepo portsrepo.StockRepository, purchaseRepo portsrepo.PurchaseRepository, m *metrics.Metrics) portssvc.StockSvcFacade {
	return newStockService(tx, locker, stockRepo, purchaseRepo, m)
}

func newStockService(tx portsrepo.TransactionManager, locker portsrepo.DocumentLocker, stockRepo portsrepo.StockRepository, purchaseRepo portsrepo.PurchaseRepository, m *metrics.Metrics) *stockService {
	return &stockService{
		tx:           tx,
		locker:       locker,
		stockRepo:    stockRepo,
		purchaseRepo: purchaseRepo,
		metrics:      m,
	}
}

var _ portssvc.StockSvcFacade = (*stockService)(nil)

// PostMove records a movement, replacing the quantities of an earlier move for the same
// document and product.
func (s *stockService) PostMove(ctx context.Context, tenantID string, req dto.PostMoveRequest) (domain.MoveResult, error) {
	if err := requireTenant(tenantID); err != nil {
		return domain.MoveResult{}, err
	}
	movedAt := req.MovedAt
	if movedAt.IsZero() {
		movedAt = time.Now()
	}
	move := domain.StockMove{
		MoveID:    ids.New(),
		TenantID:  tenantID,
		ProductID: req.ProductID,
		QtyIn:     req.QtyIn,
		QtyOut:    req.QtyOut,
		UnitPrice: req.UnitPrice,
		MoveType:  req.MoveType,
		RefTable:  req.RefTable,
		RefID:     req.RefID,
		MovedAt:   movedAt.UTC(),
	}
	if err := validateMove(move); err != nil {
		return domain.MoveResult{}, err
	}

	var result domain.MoveResult
	doc := domain.DocumentRef{TenantID: tenantID, RefTable: move.RefTable, RefID: move.RefID}
	err := s.locker.WithDocumentLock(ctx, doc, func(ctx context.Context) error {
		var err error
		result, err = s.stockRepo.UpsertMove(ctx, move)
		return err
	})
	s.metrics.ObservePosting("stock_move", result.Outcome, err)
	if err != nil {
		s.LogFailure(ctx, err, "Stock move failed", slog.String("tenant_id", tenantID), slog.String("product_id", move.ProductID))
		return domain.MoveResult{}, err
	}
	return result, nil
}

func validateMove(m domain.StockMove) error {
	switch {
	case m.ProductID == "":
		return apperrors.NewValidationError(apperrors.ReasonInvalidInput, "product is required")
	case m.RefTable == "" || m.RefID == "":
		return apperrors.NewValidationError(apperrors.ReasonInvalidInput, "reference table and id are required")
	case m.MoveType == "":
		return apperrors.NewValidationError(apperrors.ReasonInvalidInput, "move type is required")
	case m.QtyIn.IsNegative() || m.QtyOut.IsNegative() || m.UnitPrice.IsNegative():
		return apperrors.NewValidationError(apperrors.ReasonInvalidInput, "quantities and price must not be negative")
	case !m.QtyIn.IsPositive() && !m.QtyOut.IsPositive():
		return apperrors.NewValidationError(apperrors.ReasonInvalidInput, "move must carry a quantity")
	case !accounting.FitsScale(m.QtyIn) || !accounting.FitsScale(m.QtyOut) || !accounting.FitsScale(m.UnitPrice):
		return apperrors.NewValidationError(apperrors.ReasonInvalidInput, "more than %d decimal places", domain.AmountScale)
	case !accounting.InRange(m.QtyIn) || !accounting.InRange(m.QtyOut) || !accounting.InRange(m.UnitPrice):
		return apperrors.NewValidationError(apperrors.ReasonInvalidLine, "quantities and price must be below %s", domain.MaxAmount.String())
	}
	return nil
}

// PostPurchaseReceipt receives a purchase into stock exactly once.
func (s *stockService) PostPurchaseReceipt(ctx context.Context, tenantID, purchaseID string) (*domain.ReceiptResult, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}

	var result *domain.ReceiptResult
	doc := domain.DocumentRef{TenantID: tenantID, RefTable: domain.RefPurchase, RefID: purchaseID}
	err := s.locker.WithDocumentLock(ctx, doc, func(ctx context.Context) error {
		return s.tx.RunInTx(ctx, func(ctx context.Context) error {
			var err error
			result, _, err = s.receiveInTx(ctx, tenantID, purchaseID)
			return err
		})
	})
	outcome := domain.Created
	if result != nil && result.AlreadyReceived {
		outcome = domain.AlreadyExisted
	}
	s.metrics.ObservePosting("purchase_receipt", outcome, err)
	if err != nil {
		s.LogFailure(ctx, err, "Purchase receipt failed", slog.String("tenant_id", tenantID), slog.String("purchase_id", purchaseID))
		return nil, err
	}

	s.LogInfo(ctx, "Purchase received",
		slog.String("tenant_id", tenantID),
		slog.String("purchase_id", purchaseID),
		slog.Int("moves", len(result.Moves)),
		slog.Bool("already_received", result.AlreadyReceived))
	return result, nil
}

// receiveInTx does the receipt work. ctx must carry a transaction and the purchase lock.
// ReceivedValue is computed from the lines even when the purchase was already received.
func (s *stockService) receiveInTx(ctx context.Context, tenantID, purchaseID string) (*domain.ReceiptResult, *domain.Purchase, error) {
	purchase, err := s.purchaseRepo.FindPurchaseForUpdate(ctx, tenantID, purchaseID)
	if err != nil {
		return nil, nil, err
	}

	result := &domain.ReceiptResult{
		PurchaseID:      purchaseID,
		Moves:           []domain.MoveResult{},
		SkippedLineIDs:  []string{},
		AlreadyReceived: purchase.Status == domain.PurchaseReceived,
		ReceivedValue:   decimal.Zero,
	}

	type receivedQty struct {
		qty   decimal.Decimal
		value decimal.Decimal
	}
	byProduct := make(map[string]*receivedQty)
	var order []string
	for _, l := range purchase.Lines {
		if !l.Qty.IsPositive() || l.UnitPrice.IsNegative() || !accounting.Storable(l.Qty) || !accounting.Storable(l.UnitPrice) {
			result.SkippedLineIDs = append(result.SkippedLineIDs, l.LineID)
			continue
		}
		r, ok := byProduct[l.ProductID]
		if !ok {
			r = &receivedQty{qty: decimal.Zero, value: decimal.Zero}
			byProduct[l.ProductID] = r
			order = append(order, l.ProductID)
		}
		lineValue := l.Qty.Mul(l.UnitPrice)
		r.qty = r.qty.Add(l.Qty)
		r.value = r.value.Add(lineValue)
		result.ReceivedValue = result.ReceivedValue.Add(lineValue)
	}
	result.ReceivedValue = result.ReceivedValue.Round(domain.AmountScale)

	if result.AlreadyReceived {
		return result, purchase, nil
	}

	now := time.Now().UTC()
	for _, productID := range order {
		r := byProduct[productID]
		move := domain.StockMove{
			MoveID:    ids.New(),
			TenantID:  tenantID,
			ProductID: productID,
			QtyIn:     r.qty,
			QtyOut:    decimal.Zero,
			UnitPrice: r.value.Div(r.qty).Round(domain.AmountScale),
			MoveType:  domain.MovePurchaseReceipt,
			RefTable:  domain.RefPurchase,
			RefID:     purchaseID,
			MovedAt:   now,
		}
		mr, err := s.stockRepo.UpsertMove(ctx, move)
		if err != nil {
			return nil, nil, err
		}
		result.Moves = append(result.Moves, mr)
	}

	if err := s.purchaseRepo.MarkPurchaseReceived(ctx, tenantID, purchaseID, now); err != nil {
		return nil, nil, err
	}
	purchase.Status = domain.PurchaseReceived
	purchase.ReceivedAt = &now
	return result, purchase, nil
}

// RegisterPurchase stores a purchase document in the ORDERED state.
func (s *stockService) RegisterPurchase(ctx context.Context, tenantID string, req dto.RegisterPurchaseRequest) (*domain.Purchase, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	orderedAt := req.OrderedAt
	if orderedAt.IsZero() {
		orderedAt = time.Now()
	}
	purchase := domain.Purchase{
		PurchaseID: req.PurchaseID,
		TenantID:   tenantID,
		SupplierID: req.SupplierID,
		Status:     domain.PurchaseOrdered,
		OrderedAt:  orderedAt.UTC(),
		Lines:      make([]domain.PurchaseLine, 0, len(req.Lines)),
	}
	for i, l := range req.Lines {
		if !accounting.Storable(l.Qty) || !accounting.Storable(l.UnitPrice) {
			return nil, apperrors.NewValidationError(apperrors.ReasonInvalidLine,
				"purchase line %d: quantity and price need at most %d decimal places and must be below %s", i+1, domain.AmountScale, domain.MaxAmount.String())
		}
		purchase.Lines = append(purchase.Lines, domain.PurchaseLine{
			LineID:     ids.New(),
			PurchaseID: req.PurchaseID,
			ProductID:  l.ProductID,
			Qty:        l.Qty,
			UnitPrice:  l.UnitPrice,
		})
	}
	if err := s.purchaseRepo.SavePurchase(ctx, purchase); err != nil {
		s.LogFailure(ctx, err, "Failed to register purchase", slog.String("purchase_id", req.PurchaseID))
		return nil, err
	}
	return &purchase, nil
}

func (s *stockService) GetPurchase(ctx context.Context, tenantID, purchaseID string) (*domain.Purchase, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	return s.purchaseRepo.FindPurchaseByID(ctx, tenantID, purchaseID)
}

// OnHand returns the product's quantity as one aggregate over the ledger.
func (s *stockService) OnHand(ctx context.Context, tenantID, productID string) (decimal.Decimal, error) {
	if err := requireTenant(tenantID); err != nil {
		return decimal.Zero, err
	}
	return s.stockRepo.OnHand(ctx, tenantID, productID)
}

// OnHandMany returns on-hand for each product. Products with no moves report zero.
func (s *stockService) OnHandMany(ctx context.Context, tenantID string, productIDs []string) (map[string]decimal.Decimal, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	productIDs = uniqueKeys(productIDs)
	sort.Strings(productIDs)
	found, err := s.stockRepo.OnHandMany(ctx, tenantID, productIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(productIDs))
	for _, id := range productIDs {
		if q, ok := found[id]; ok {
			out[id] = q
		} else {
			out[id] = decimal.Zero
		}
	}
	return out, nil
}

func (s *stockService) ListMoves(ctx context.Context, tenantID, productID string, from, to *time.Time) ([]domain.StockMove, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "from is after to")
	}
	return s.stockRepo.ListMoves(ctx, tenantID, productID, from, to)
}

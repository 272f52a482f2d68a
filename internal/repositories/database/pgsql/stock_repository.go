package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/SscSPs/bizledger/internal/models"
	"github.com/SscSPs/bizledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxStockRepository struct {
	BaseRepository
}

func newPgxStockRepository(pool *pgxpool.Pool) *PgxStockRepository {
	return &PgxStockRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.StockRepository = (*PgxStockRepository)(nil)

// UpsertMove inserts a move, or overwrites quantities and price of the move already
// recorded for the same document and product. xmax = 0 only for a freshly inserted tuple.
func (r *PgxStockRepository) UpsertMove(ctx context.Context, move domain.StockMove) (domain.MoveResult, error) {
	m := mapping.ToModelStockMove(move)
	now := time.Now().UTC()

	var moveID string
	var inserted bool
	err := r.q(ctx).QueryRow(ctx, `
		INSERT INTO stock_moves (move_id, tenant_id, product_id, qty_in, qty_out, unit_price, move_type, ref_table, ref_id, moved_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT ON CONSTRAINT stock_moves_idempotency_key DO UPDATE SET
			qty_in = EXCLUDED.qty_in,
			qty_out = EXCLUDED.qty_out,
			unit_price = EXCLUDED.unit_price,
			move_type = EXCLUDED.move_type,
			moved_at = EXCLUDED.moved_at,
			updated_at = EXCLUDED.updated_at
		RETURNING move_id, (xmax = 0) AS inserted;
	`, m.MoveID, m.TenantID, m.ProductID, m.QtyIn, m.QtyOut, m.UnitPrice, m.MoveType, m.RefTable, m.RefID, m.MovedAt, now).Scan(&moveID, &inserted)
	if err != nil {
		return domain.MoveResult{}, fmt.Errorf("failed to upsert stock move for %s/%s: %w", m.RefTable, m.RefID, mapPgError(err))
	}

	outcome := domain.AlreadyExisted
	if inserted {
		outcome = domain.Created
	}
	return domain.MoveResult{MoveID: moveID, ProductID: m.ProductID, Outcome: outcome}, nil
}

// OnHand sums every move of the product in one aggregate.
func (r *PgxStockRepository) OnHand(ctx context.Context, tenantID, productID string) (decimal.Decimal, error) {
	var qty decimal.Decimal
	err := r.q(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(qty_in - qty_out), 0) FROM stock_moves
		WHERE tenant_id = $1 AND product_id = $2;
	`, tenantID, productID).Scan(&qty)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute on-hand for %s: %w", productID, err)
	}
	return qty, nil
}

// OnHandMany returns on-hand for each product; products without moves report zero.
func (r *PgxStockRepository) OnHandMany(ctx context.Context, tenantID string, productIDs []string) (map[string]decimal.Decimal, error) {
	result := make(map[string]decimal.Decimal, len(productIDs))
	for _, id := range productIDs {
		result[id] = decimal.Zero
	}
	if len(productIDs) == 0 {
		return result, nil
	}

	rows, err := r.q(ctx).Query(ctx, `
		SELECT product_id, SUM(qty_in - qty_out) FROM stock_moves
		WHERE tenant_id = $1 AND product_id = ANY($2)
		GROUP BY product_id;
	`, tenantID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to compute on-hand: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var qty decimal.Decimal
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan on-hand row: %w", err)
		}
		result[id] = qty
	}
	return result, rows.Err()
}

// ListMoves returns the product's moves in movement order.
func (r *PgxStockRepository) ListMoves(ctx context.Context, tenantID, productID string, from, to *time.Time) ([]domain.StockMove, error) {
	query := `
		SELECT move_id, seq, tenant_id, product_id, qty_in, qty_out, unit_price, move_type, ref_table, ref_id, moved_at
		FROM stock_moves WHERE tenant_id = $1 AND product_id = $2`
	args := []any{tenantID, productID}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND moved_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND moved_at <= $%d", len(args))
	}
	query += " ORDER BY moved_at, seq;"

	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock moves: %w", err)
	}
	defer rows.Close()

	moves := []domain.StockMove{}
	for rows.Next() {
		var m models.StockMove
		if err := rows.Scan(&m.MoveID, &m.Seq, &m.TenantID, &m.ProductID, &m.QtyIn, &m.QtyOut, &m.UnitPrice, &m.MoveType, &m.RefTable, &m.RefID, &m.MovedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock move: %w", err)
		}
		moves = append(moves, mapping.ToDomainStockMove(m))
	}
	return moves, rows.Err()
}

type PgxPurchaseRepository struct {
	BaseRepository
}

func newPgxPurchaseRepository(pool *pgxpool.Pool) *PgxPurchaseRepository {
	return &PgxPurchaseRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PurchaseRepository = (*PgxPurchaseRepository)(nil)

// SavePurchase inserts a purchase header and its lines.
func (r *PgxPurchaseRepository) SavePurchase(ctx context.Context, p domain.Purchase) error {
	return r.RunInTx(ctx, func(ctx context.Context) error {
		q := r.q(ctx)
		_, err := q.Exec(ctx, `
			INSERT INTO purchases (tenant_id, purchase_id, supplier_id, status, ordered_at, received_at)
			VALUES ($1, $2, $3, $4, $5, $6);
		`, p.TenantID, p.PurchaseID, p.SupplierID, string(p.Status), p.OrderedAt, p.ReceivedAt)
		if err != nil {
			mapped := mapPgError(err)
			if errors.Is(mapped, apperrors.ErrDuplicate) {
				return fmt.Errorf("%w: purchase %s already exists", apperrors.ErrDuplicate, p.PurchaseID)
			}
			return fmt.Errorf("failed to save purchase %s: %w", p.PurchaseID, mapped)
		}

		for i, line := range p.Lines {
			_, err := q.Exec(ctx, `
				INSERT INTO purchase_lines (line_id, tenant_id, purchase_id, line_no, product_id, qty, unit_price)
				VALUES ($1, $2, $3, $4, $5, $6, $7);
			`, line.LineID, p.TenantID, p.PurchaseID, i+1, line.ProductID, line.Qty, line.UnitPrice)
			if err != nil {
				return fmt.Errorf("failed to save purchase line %s: %w", line.LineID, mapPgError(err))
			}
		}
		return nil
	})
}

// FindPurchaseByID loads a purchase with its lines.
func (r *PgxPurchaseRepository) FindPurchaseByID(ctx context.Context, tenantID, purchaseID string) (*domain.Purchase, error) {
	return r.findPurchase(ctx, tenantID, purchaseID, "")
}

// FindPurchaseForUpdate loads a purchase holding FOR UPDATE on its header. ctx must carry a transaction.
func (r *PgxPurchaseRepository) FindPurchaseForUpdate(ctx context.Context, tenantID, purchaseID string) (*domain.Purchase, error) {
	return r.findPurchase(ctx, tenantID, purchaseID, " FOR UPDATE")
}

func (r *PgxPurchaseRepository) findPurchase(ctx context.Context, tenantID, purchaseID, suffix string) (*domain.Purchase, error) {
	q := r.q(ctx)

	var h models.Purchase
	err := q.QueryRow(ctx, `
		SELECT tenant_id, purchase_id, supplier_id, status, ordered_at, received_at
		FROM purchases WHERE tenant_id = $1 AND purchase_id = $2`+suffix+`;
	`, tenantID, purchaseID).Scan(&h.TenantID, &h.PurchaseID, &h.SupplierID, &h.Status, &h.OrderedAt, &h.ReceivedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("purchase", purchaseID)
		}
		return nil, fmt.Errorf("failed to load purchase %s: %w", purchaseID, mapPgError(err))
	}

	rows, err := q.Query(ctx, `
		SELECT line_id, tenant_id, purchase_id, line_no, product_id, qty, unit_price
		FROM purchase_lines WHERE tenant_id = $1 AND purchase_id = $2 ORDER BY line_no;
	`, tenantID, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines of purchase %s: %w", purchaseID, err)
	}
	defer rows.Close()

	lines := []models.PurchaseLine{}
	for rows.Next() {
		var l models.PurchaseLine
		if err := rows.Scan(&l.LineID, &l.TenantID, &l.PurchaseID, &l.LineNo, &l.ProductID, &l.Qty, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan purchase line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	p := mapping.ToDomainPurchase(h, lines)
	return &p, nil
}

// MarkPurchaseReceived moves the header to RECEIVED.
func (r *PgxPurchaseRepository) MarkPurchaseReceived(ctx context.Context, tenantID, purchaseID string, at time.Time) error {
	tag, err := r.q(ctx).Exec(ctx, `
		UPDATE purchases SET status = 'RECEIVED', received_at = $3
		WHERE tenant_id = $1 AND purchase_id = $2;
	`, tenantID, purchaseID, at)
	if err != nil {
		return fmt.Errorf("failed to mark purchase %s received: %w", purchaseID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("purchase", purchaseID)
	}
	return nil
}

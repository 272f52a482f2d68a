package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/SscSPs/bizledger/internal/models"
	"github.com/SscSPs/bizledger/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

type stockRepository struct {
	BaseRepository
}

var _ portsrepo.StockRepository = (*stockRepository)(nil)

// UpsertMove lets the unique index decide: a skipped insert means the move exists and is overwritten.
func (r *stockRepository) UpsertMove(ctx context.Context, move domain.StockMove) (domain.MoveResult, error) {
	var result domain.MoveResult

	err := r.RunInTx(ctx, func(ctx context.Context) error {
		q := r.q(ctx)
		m := mapping.ToModelStockMove(move)
		now := toMicros(time.Now())
		fixed, err := toFixedAll(m.QtyIn, m.QtyOut, m.UnitPrice)
		if err != nil {
			return fmt.Errorf("stock move for %s/%s: %w", m.RefTable, m.RefID, err)
		}
		qtyIn, qtyOut, unitPrice := fixed[0], fixed[1], fixed[2]

		res, err := q.ExecContext(ctx, `
			INSERT INTO stock_moves (move_id, tenant_id, product_id, qty_in, qty_out, unit_price, move_type, ref_table, ref_id, moved_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (tenant_id, ref_table, ref_id, product_id) DO NOTHING;
		`, m.MoveID, m.TenantID, m.ProductID, qtyIn, qtyOut, unitPrice, m.MoveType, m.RefTable, m.RefID, toMicros(m.MovedAt), now, now)
		if err != nil {
			return fmt.Errorf("failed to insert stock move for %s/%s: %w", m.RefTable, m.RefID, mapSQLiteError(err))
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if inserted == 1 {
			result = domain.MoveResult{MoveID: m.MoveID, ProductID: m.ProductID, Outcome: domain.Created}
			return nil
		}

		if _, err := q.ExecContext(ctx, `
			UPDATE stock_moves SET qty_in = ?, qty_out = ?, unit_price = ?, move_type = ?, moved_at = ?, updated_at = ?
			WHERE tenant_id = ? AND ref_table = ? AND ref_id = ? AND product_id = ?;
		`, qtyIn, qtyOut, unitPrice, m.MoveType, toMicros(m.MovedAt), now,
			m.TenantID, m.RefTable, m.RefID, m.ProductID); err != nil {
			return fmt.Errorf("failed to update stock move for %s/%s: %w", m.RefTable, m.RefID, mapSQLiteError(err))
		}

		var moveID string
		if err := q.QueryRowContext(ctx, `
			SELECT move_id FROM stock_moves
			WHERE tenant_id = ? AND ref_table = ? AND ref_id = ? AND product_id = ?;
		`, m.TenantID, m.RefTable, m.RefID, m.ProductID).Scan(&moveID); err != nil {
			return fmt.Errorf("failed to load existing stock move: %w", err)
		}
		result = domain.MoveResult{MoveID: moveID, ProductID: m.ProductID, Outcome: domain.AlreadyExisted}
		return nil
	})
	return result, err
}

func (r *stockRepository) OnHand(ctx context.Context, tenantID, productID string) (decimal.Decimal, error) {
	var qty int64
	err := r.q(ctx).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(qty_in - qty_out), 0) FROM stock_moves
		WHERE tenant_id = ? AND product_id = ?;
	`, tenantID, productID).Scan(&qty)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute on-hand for %s: %w", productID, err)
	}
	return fromFixed(qty), nil
}

func (r *stockRepository) OnHandMany(ctx context.Context, tenantID string, productIDs []string) (map[string]decimal.Decimal, error) {
	result := make(map[string]decimal.Decimal, len(productIDs))
	for _, id := range productIDs {
		result[id] = decimal.Zero
	}
	if len(productIDs) == 0 {
		return result, nil
	}

	args := append([]any{tenantID}, stringArgs(productIDs)...)
	rows, err := r.q(ctx).QueryContext(ctx, `
		SELECT product_id, SUM(qty_in - qty_out) FROM stock_moves
		WHERE tenant_id = ? AND product_id IN (`+inClause(len(productIDs))+`)
		GROUP BY product_id;
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to compute on-hand: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var qty int64
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan on-hand row: %w", err)
		}
		result[id] = fromFixed(qty)
	}
	return result, rows.Err()
}

func (r *stockRepository) ListMoves(ctx context.Context, tenantID, productID string, from, to *time.Time) ([]domain.StockMove, error) {
	query := `
		SELECT move_id, seq, tenant_id, product_id, qty_in, qty_out, unit_price, move_type, ref_table, ref_id, moved_at
		FROM stock_moves WHERE tenant_id = ? AND product_id = ?`
	args := []any{tenantID, productID}
	if from != nil {
		query += " AND moved_at >= ?"
		args = append(args, toMicros(*from))
	}
	if to != nil {
		query += " AND moved_at <= ?"
		args = append(args, toMicros(*to))
	}
	query += " ORDER BY moved_at, seq;"

	rows, err := r.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock moves: %w", err)
	}
	defer rows.Close()

	moves := []domain.StockMove{}
	for rows.Next() {
		var m models.StockMove
		var qtyIn, qtyOut, price, movedAt int64
		if err := rows.Scan(&m.MoveID, &m.Seq, &m.TenantID, &m.ProductID, &qtyIn, &qtyOut, &price, &m.MoveType, &m.RefTable, &m.RefID, &movedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock move: %w", err)
		}
		m.QtyIn, m.QtyOut, m.UnitPrice = fromFixed(qtyIn), fromFixed(qtyOut), fromFixed(price)
		m.MovedAt = fromMicros(movedAt)
		moves = append(moves, mapping.ToDomainStockMove(m))
	}
	return moves, rows.Err()
}

type purchaseRepository struct {
	BaseRepository
}

var _ portsrepo.PurchaseRepository = (*purchaseRepository)(nil)

func (r *purchaseRepository) SavePurchase(ctx context.Context, p domain.Purchase) error {
	return r.RunInTx(ctx, func(ctx context.Context) error {
		q := r.q(ctx)
		_, err := q.ExecContext(ctx, `
			INSERT INTO purchases (tenant_id, purchase_id, supplier_id, status, ordered_at, received_at)
			VALUES (?, ?, ?, ?, ?, ?);
		`, p.TenantID, p.PurchaseID, p.SupplierID, string(p.Status), toMicros(p.OrderedAt), nullableMicros(p.ReceivedAt))
		if err != nil {
			mapped := mapSQLiteError(err)
			if errors.Is(mapped, apperrors.ErrDuplicate) {
				return fmt.Errorf("%w: purchase %s already exists", apperrors.ErrDuplicate, p.PurchaseID)
			}
			return fmt.Errorf("failed to save purchase %s: %w", p.PurchaseID, mapped)
		}

		for i, line := range p.Lines {
			fixed, err := toFixedAll(line.Qty, line.UnitPrice)
			if err != nil {
				return fmt.Errorf("purchase line %s: %w", line.LineID, err)
			}
			if _, err := q.ExecContext(ctx, `
				INSERT INTO purchase_lines (line_id, tenant_id, purchase_id, line_no, product_id, qty, unit_price)
				VALUES (?, ?, ?, ?, ?, ?, ?);
			`, line.LineID, p.TenantID, p.PurchaseID, i+1, line.ProductID, fixed[0], fixed[1]); err != nil {
				return fmt.Errorf("failed to save purchase line %s: %w", line.LineID, mapSQLiteError(err))
			}
		}
		return nil
	})
}

func (r *purchaseRepository) FindPurchaseByID(ctx context.Context, tenantID, purchaseID string) (*domain.Purchase, error) {
	return r.findPurchase(ctx, tenantID, purchaseID)
}

// FindPurchaseForUpdate relies on the immediate transaction: sqlite holds the
// database write lock from BEGIN, which already excludes other writers.
func (r *purchaseRepository) FindPurchaseForUpdate(ctx context.Context, tenantID, purchaseID string) (*domain.Purchase, error) {
	return r.findPurchase(ctx, tenantID, purchaseID)
}

func (r *purchaseRepository) findPurchase(ctx context.Context, tenantID, purchaseID string) (*domain.Purchase, error) {
	q := r.q(ctx)

	var h models.Purchase
	var orderedAt int64
	var receivedAt sql.NullInt64
	err := q.QueryRowContext(ctx, `
		SELECT tenant_id, purchase_id, supplier_id, status, ordered_at, received_at
		FROM purchases WHERE tenant_id = ? AND purchase_id = ?;
	`, tenantID, purchaseID).Scan(&h.TenantID, &h.PurchaseID, &h.SupplierID, &h.Status, &orderedAt, &receivedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("purchase", purchaseID)
		}
		return nil, fmt.Errorf("failed to load purchase %s: %w", purchaseID, err)
	}
	h.OrderedAt = fromMicros(orderedAt)
	h.ReceivedAt = timeFromNull(receivedAt)

	rows, err := q.QueryContext(ctx, `
		SELECT line_id, tenant_id, purchase_id, line_no, product_id, qty, unit_price
		FROM purchase_lines WHERE tenant_id = ? AND purchase_id = ? ORDER BY line_no;
	`, tenantID, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines of purchase %s: %w", purchaseID, err)
	}
	defer rows.Close()

	lines := []models.PurchaseLine{}
	for rows.Next() {
		var l models.PurchaseLine
		var qty, price int64
		if err := rows.Scan(&l.LineID, &l.TenantID, &l.PurchaseID, &l.LineNo, &l.ProductID, &qty, &price); err != nil {
			return nil, fmt.Errorf("failed to scan purchase line: %w", err)
		}
		l.Qty, l.UnitPrice = fromFixed(qty), fromFixed(price)
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	p := mapping.ToDomainPurchase(h, lines)
	return &p, nil
}

func (r *purchaseRepository) MarkPurchaseReceived(ctx context.Context, tenantID, purchaseID string, at time.Time) error {
	res, err := r.q(ctx).ExecContext(ctx, `
		UPDATE purchases SET status = 'RECEIVED', received_at = ?
		WHERE tenant_id = ? AND purchase_id = ?;
	`, toMicros(at), tenantID, purchaseID)
	if err != nil {
		return fmt.Errorf("failed to mark purchase %s received: %w", purchaseID, mapSQLiteError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewNotFoundError("purchase", purchaseID)
	}
	return nil
}

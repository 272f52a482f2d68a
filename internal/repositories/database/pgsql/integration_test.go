package pgsql

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/platform/ids"
	"github.com/SscSPs/bizledger/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newIntegrationPool connects to BIZLEDGER_TEST_PGSQL_URL and applies migrations.
// Every test runs in its own tenant so a shared database stays usable.
func newIntegrationPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("BIZLEDGER_TEST_PGSQL_URL")
	if url == "" {
		t.Skip("BIZLEDGER_TEST_PGSQL_URL not set")
	}
	require.NoError(t, database.RunMigrations(url, "file://../../../../migrations", slog.Default()))

	pool, err := database.NewPgxPool(context.Background(), url, database.PoolOptions{MaxConns: 16, Ping: true})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func seedAccount(t *testing.T, repo *PgxAccountRepository, tenantID, code string, typ domain.AccountType) string {
	t.Helper()
	now := time.Now().UTC()
	acc := domain.Account{
		AccountID:   ids.New(),
		TenantID:    tenantID,
		Code:        code,
		Name:        code,
		AccountType: typ,
		NormalSide:  typ.DefaultNormalSide(),
		Level:       1,
		IsActive:    true,
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	require.NoError(t, repo.SaveAccount(context.Background(), acc))
	return acc.AccountID
}

func TestIntegration_InsertJournalIsIdempotent(t *testing.T) {
	pool := newIntegrationPool(t)
	ctx := context.Background()
	tenantID := "it-" + ids.New()

	accounts := newPgxAccountRepository(pool)
	ar := seedAccount(t, accounts, tenantID, "1100", domain.Asset)
	sales := seedAccount(t, accounts, tenantID, "4000", domain.Income)

	repo := newPgxJournalRepository(pool)
	newJournal := func() domain.Journal {
		jid := ids.New()
		return domain.Journal{
			JournalID:   jid,
			TenantID:    tenantID,
			JournalType: domain.JournalTypeSales,
			PostedAt:    time.Now().UTC(),
			Key:         domain.IdempotencyKey{RefTable: domain.RefSalesInvoice, RefID: "INV-1"},
			CreatedAt:   time.Now().UTC(),
			Lines: []domain.JournalLine{
				{LineID: ids.New(), JournalID: jid, LineNo: 1, AccountID: ar, Debit: decimal.NewFromInt(100), Credit: decimal.Zero},
				{LineID: ids.New(), JournalID: jid, LineNo: 2, AccountID: sales, Debit: decimal.Zero, Credit: decimal.NewFromInt(100)},
			},
		}
	}

	first, err := repo.InsertJournal(ctx, newJournal())
	require.NoError(t, err)
	assert.Equal(t, domain.Created, first.Outcome)
	assert.Equal(t, "JV-000001", first.JournalNumber)

	second, err := repo.InsertJournal(ctx, newJournal())
	require.NoError(t, err)
	assert.Equal(t, domain.AlreadyExisted, second.Outcome)
	assert.Equal(t, first.JournalID, second.JournalID)

	unbalanced, err := newReportingRepository(pool).UnbalancedJournals(ctx, tenantID)
	require.NoError(t, err)
	assert.Empty(t, unbalanced)
}

func TestIntegration_RowLockerSerializesAndTimesOut(t *testing.T) {
	pool := newIntegrationPool(t)
	ctx := context.Background()
	locker := NewRowLocker(pool, 100*time.Millisecond)
	doc := domain.DocumentRef{TenantID: "it-" + ids.New(), RefTable: domain.RefPurchase, RefID: "P-1"}

	holding := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = locker.WithDocumentLock(ctx, doc, func(ctx context.Context) error {
			close(holding)
			<-release
			return nil
		})
	}()

	<-holding
	err := locker.WithDocumentLock(ctx, doc, func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, apperrors.ErrConcurrency)

	close(release)
	wg.Wait()
	assert.NoError(t, locker.WithDocumentLock(ctx, doc, func(ctx context.Context) error { return nil }))
}

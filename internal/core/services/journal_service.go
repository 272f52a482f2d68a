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
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/platform/ids"
	"github.com/SscSPs/bizledger/internal/platform/metrics"
	"github.com/SscSPs/bizledger/internal/utils/accounting"
)

// journalService posts balanced journals exactly once per idempotency key.
type journalService struct {
	BaseService
	tx          portsrepo.TransactionManager
	locker      portsrepo.DocumentLocker
	journalRepo portsrepo.JournalRepositoryFacade
	accountRepo portsrepo.AccountReader
	metrics     *metrics.Metrics
}

// NewJournalService creates a new JournalService.
func NewJournalService(tx portsrepo.TransactionManager, locker portsrepo.DocumentLocker, journalRepo portsrepo.JournalRepositoryFacade, accountRepo portsrepo.AccountReader, m *metrics.Metrics) portssvc.JournalSvcFacade {
	return newJournalService(tx, locker, journalRepo, accountRepo, m)
}

func newJournalService(tx portsrepo.TransactionManager, locker portsrepo.DocumentLocker, journalRepo portsrepo.JournalRepositoryFacade, accountRepo portsrepo.AccountReader, m *metrics.Metrics) *journalService {
	return &journalService{
		tx:          tx,
		locker:      locker,
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		metrics:     m,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// PostJournal validates the request and posts it under the document lock of its key.
func (s *journalService) PostJournal(ctx context.Context, tenantID string, req dto.PostJournalRequest) (domain.PostResult, error) {
	if err := requireTenant(tenantID); err != nil {
		return domain.PostResult{}, err
	}

	journal := newJournal(tenantID, req.JournalType, req.PostedAt, req.Memo, req.IdempotencyKey())
	for _, l := range req.Lines {
		journal.Lines = append(journal.Lines, domain.JournalLine{
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			RefTable:  l.RefTable,
			RefID:     l.RefID,
			PartyID:   l.PartyID,
			Memo:      l.Memo,
		})
	}

	return s.post(ctx, journal)
}

// post runs the full posting path: structural checks, document lock, transaction.
// Unbalanced or malformed journals are rejected before the lock is requested.
func (s *journalService) post(ctx context.Context, journal domain.Journal) (domain.PostResult, error) {
	numberLines(&journal)
	if err := accounting.ValidateJournalBalance(journal.Lines); err != nil {
		s.metrics.ObservePosting("journal", "", err)
		s.LogFailure(ctx, err, "Journal rejected", slog.String("tenant_id", journal.TenantID), slog.String("ref_id", journal.Key.RefID))
		return domain.PostResult{}, err
	}

	logger := s.GetLogger(ctx).With(
		slog.String("tenant_id", journal.TenantID),
		slog.String("ref_table", journal.Key.RefTable),
		slog.String("ref_id", journal.Key.RefID),
	)

	var result domain.PostResult
	err := s.locker.WithDocumentLock(ctx, journal.Key.Document(journal.TenantID), func(ctx context.Context) error {
		return s.tx.RunInTx(ctx, func(ctx context.Context) error {
			var err error
			result, err = s.insert(ctx, journal)
			return err
		})
	})
	s.metrics.ObservePosting("journal", result.Outcome, err)
	if err != nil {
		s.LogFailure(ctx, err, "Journal posting failed", slog.String("tenant_id", journal.TenantID), slog.String("ref_id", journal.Key.RefID))
		return domain.PostResult{}, err
	}

	logger.Info("Journal posted", slog.String("journal_id", result.JournalID), slog.String("outcome", string(result.Outcome)))
	return result, nil
}

// insert validates and stores a journal. ctx must carry the posting transaction.
func (s *journalService) insert(ctx context.Context, journal domain.Journal) (domain.PostResult, error) {
	if journal.Key.RefTable == "" || journal.Key.RefID == "" {
		return domain.PostResult{}, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "reference table and id are required")
	}
	numberLines(&journal)
	if err := accounting.ValidateJournalBalance(journal.Lines); err != nil {
		return domain.PostResult{}, err
	}
	if err := s.validateAccounts(ctx, journal.TenantID, journal.Lines); err != nil {
		return domain.PostResult{}, err
	}
	return s.journalRepo.InsertJournal(ctx, journal)
}

// validateAccounts rejects lines pointing at accounts the tenant does not own or has deactivated.
func (s *journalService) validateAccounts(ctx context.Context, tenantID string, lines []domain.JournalLine) error {
	accountIDs := make([]string, 0, len(lines))
	for _, l := range lines {
		accountIDs = append(accountIDs, l.AccountID)
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, tenantID, uniqueKeys(accountIDs))
	if err != nil {
		return err
	}
	for _, l := range lines {
		acc, ok := accounts[l.AccountID]
		if !ok {
			return apperrors.NewValidationError(apperrors.ReasonInvalidLine, "line %d: account %s does not exist for tenant", l.LineNo, l.AccountID)
		}
		if !acc.IsActive {
			return apperrors.NewValidationError(apperrors.ReasonInvalidLine, "line %d: account %s is inactive", l.LineNo, l.AccountID)
		}
	}
	return nil
}

func numberLines(journal *domain.Journal) {
	for i := range journal.Lines {
		journal.Lines[i].LineNo = i + 1
		journal.Lines[i].JournalID = journal.JournalID
		if journal.Lines[i].LineID == "" {
			journal.Lines[i].LineID = ids.New()
		}
	}
}

func newJournal(tenantID, journalType string, postedAt time.Time, memo string, key domain.IdempotencyKey) domain.Journal {
	if postedAt.IsZero() {
		postedAt = time.Now()
	}
	if journalType == "" {
		journalType = "GENERAL"
	}
	return domain.Journal{
		JournalID:   ids.New(),
		TenantID:    tenantID,
		JournalType: journalType,
		PostedAt:    postedAt.UTC(),
		Memo:        memo,
		Key:         key,
		CreatedAt:   time.Now().UTC(),
	}
}

// ReverseJournal posts the mirror image of an existing journal, keyed on the original.
func (s *journalService) ReverseJournal(ctx context.Context, tenantID, journalID string, req dto.ReverseJournalRequest) (domain.PostResult, error) {
	if err := requireTenant(tenantID); err != nil {
		return domain.PostResult{}, err
	}
	original, err := s.journalRepo.FindJournalByID(ctx, tenantID, journalID)
	if err != nil {
		return domain.PostResult{}, err
	}
	if original.Key.RefTable == domain.RefJournalReversal {
		return domain.PostResult{}, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "journal %s is itself a reversal", journalID)
	}

	memo := req.Memo
	if memo == "" {
		memo = fmt.Sprintf("Reversal of %s", original.JournalNumber)
	}
	reversal := newJournal(tenantID, domain.JournalTypeReversal, req.PostedAt, memo,
		domain.IdempotencyKey{RefTable: domain.RefJournalReversal, RefID: original.JournalID})
	for _, l := range original.Lines {
		reversal.Lines = append(reversal.Lines, domain.JournalLine{
			AccountID: l.AccountID,
			Debit:     l.Credit,
			Credit:    l.Debit,
			RefTable:  l.RefTable,
			RefID:     l.RefID,
			PartyID:   l.PartyID,
			Memo:      l.Memo,
		})
	}

	return s.post(ctx, reversal)
}

// MarkLinesCleared sets the reconciliation flag used by bank books.
func (s *journalService) MarkLinesCleared(ctx context.Context, tenantID string, req dto.ClearLinesRequest) (int64, error) {
	if err := requireTenant(tenantID); err != nil {
		return 0, err
	}
	if len(req.LineIDs) == 0 {
		return 0, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "no lines given")
	}
	n, err := s.journalRepo.SetLinesCleared(ctx, tenantID, uniqueKeys(req.LineIDs), req.Cleared)
	if err != nil {
		s.LogError(ctx, err, "Failed to update cleared flag", slog.String("tenant_id", tenantID))
		return 0, err
	}
	return n, nil
}

func (s *journalService) GetJournal(ctx context.Context, tenantID, journalID string) (*domain.Journal, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	return s.journalRepo.FindJournalByID(ctx, tenantID, journalID)
}

// ListJournals pages through the tenant's journals in posting order.
func (s *journalService) ListJournals(ctx context.Context, tenantID string, params dto.ListJournalsParams) ([]domain.Journal, *string, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, nil, err
	}
	filter := domain.JournalFilter{
		JournalType: params.JournalType,
		Limit:       params.Limit,
		NextToken:   params.NextToken,
	}
	if !params.From.IsZero() {
		from := params.From.UTC()
		filter.From = &from
	}
	if !params.To.IsZero() {
		to := dto.EndOfDay(params.To).UTC()
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, nil, apperrors.NewValidationError(apperrors.ReasonInvalidInput, "from is after to")
	}
	return s.journalRepo.ListJournals(ctx, tenantID, filter)
}

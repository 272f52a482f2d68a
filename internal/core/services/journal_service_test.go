package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/core/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type JournalServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	journalRepo *MockJournalRepository
	accountRepo *MockAccountRepository
	locker      *MockLocker
	service     portssvc.JournalSvcFacade
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}

func (s *JournalServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.journalRepo = new(MockJournalRepository)
	s.accountRepo = new(MockAccountRepository)
	s.locker = new(MockLocker)
	s.service = services.NewJournalService(passthroughTx{}, s.locker, s.journalRepo, s.accountRepo, nil)
}

func (s *JournalServiceTestSuite) request(debit, credit string) dto.PostJournalRequest {
	return dto.PostJournalRequest{
		JournalType: "GENERAL",
		PostedAt:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		RefTable:    domain.RefManual,
		RefID:       "adj-1",
		Lines: []dto.JournalLineRequest{
			{AccountID: "cash", Debit: decimal.RequireFromString(debit), Credit: decimal.Zero},
			{AccountID: "sales", Debit: decimal.Zero, Credit: decimal.RequireFromString(credit)},
		},
	}
}

func (s *JournalServiceTestSuite) activeAccounts() map[string]domain.Account {
	return map[string]domain.Account{
		"cash":  {AccountID: "cash", TenantID: "acme", IsActive: true},
		"sales": {AccountID: "sales", TenantID: "acme", IsActive: true},
	}
}

func (s *JournalServiceTestSuite) TestPostJournal_Success() {
	doc := domain.DocumentRef{TenantID: "acme", RefTable: domain.RefManual, RefID: "adj-1"}
	s.locker.On("WithDocumentLock", mock.Anything, doc).Return(nil).Once()
	s.accountRepo.On("FindAccountsByIDs", mock.Anything, "acme", []string{"cash", "sales"}).Return(s.activeAccounts(), nil).Once()
	s.journalRepo.On("InsertJournal", mock.Anything, mock.MatchedBy(func(j domain.Journal) bool {
		return j.TenantID == "acme" && len(j.Lines) == 2 &&
			j.Lines[0].LineNo == 1 && j.Lines[1].LineNo == 2 &&
			j.Lines[0].JournalID == j.JournalID && j.Key.RefID == "adj-1"
	})).Return(domain.PostResult{JournalID: "j1", JournalNumber: "JV-000001", Outcome: domain.Created}, nil).Once()

	res, err := s.service.PostJournal(s.ctx, "acme", s.request("100.00", "100"))

	s.Require().NoError(err)
	s.Equal(domain.Created, res.Outcome)
	s.Equal("JV-000001", res.JournalNumber)
	s.locker.AssertExpectations(s.T())
	s.journalRepo.AssertExpectations(s.T())
}

func (s *JournalServiceTestSuite) TestPostJournal_UnbalancedRejectedBeforeLock() {
	_, err := s.service.PostJournal(s.ctx, "acme", s.request("100", "99.99"))

	s.True(apperrors.IsValidationReason(err, apperrors.ReasonUnbalanced))
	s.locker.AssertNotCalled(s.T(), "WithDocumentLock", mock.Anything, mock.Anything)
	s.journalRepo.AssertNotCalled(s.T(), "InsertJournal", mock.Anything, mock.Anything)
}

func (s *JournalServiceTestSuite) TestPostJournal_EmptyJournal() {
	req := s.request("1", "1")
	req.Lines = nil

	_, err := s.service.PostJournal(s.ctx, "acme", req)

	s.True(apperrors.IsValidationReason(err, apperrors.ReasonEmptyJournal))
}

func (s *JournalServiceTestSuite) TestPostJournal_LineWithBothSides() {
	req := s.request("10", "10")
	req.Lines[0].Credit = decimal.NewFromInt(10)

	_, err := s.service.PostJournal(s.ctx, "acme", req)

	s.True(apperrors.IsValidationReason(err, apperrors.ReasonInvalidLine))
}

func (s *JournalServiceTestSuite) TestPostJournal_ForeignOrInactiveAccount() {
	s.locker.On("WithDocumentLock", mock.Anything, mock.Anything).Return(nil)

	// The sales account belongs to another tenant, so the lookup does not return it.
	s.accountRepo.On("FindAccountsByIDs", mock.Anything, "acme", []string{"cash", "sales"}).
		Return(map[string]domain.Account{"cash": {AccountID: "cash", IsActive: true}}, nil).Once()
	_, err := s.service.PostJournal(s.ctx, "acme", s.request("5", "5"))
	s.True(apperrors.IsValidationReason(err, apperrors.ReasonInvalidLine))

	accounts := s.activeAccounts()
	sales := accounts["sales"]
	sales.IsActive = false
	accounts["sales"] = sales
	s.accountRepo.On("FindAccountsByIDs", mock.Anything, "acme", []string{"cash", "sales"}).Return(accounts, nil).Once()
	_, err = s.service.PostJournal(s.ctx, "acme", s.request("5", "5"))
	s.True(apperrors.IsValidationReason(err, apperrors.ReasonInvalidLine))

	s.journalRepo.AssertNotCalled(s.T(), "InsertJournal", mock.Anything, mock.Anything)
}

func (s *JournalServiceTestSuite) TestPostJournal_AlreadyExisted() {
	s.locker.On("WithDocumentLock", mock.Anything, mock.Anything).Return(nil).Once()
	s.accountRepo.On("FindAccountsByIDs", mock.Anything, "acme", mock.Anything).Return(s.activeAccounts(), nil).Once()
	s.journalRepo.On("InsertJournal", mock.Anything, mock.Anything).
		Return(domain.PostResult{JournalID: "j-first", JournalNumber: "JV-000004", Outcome: domain.AlreadyExisted}, nil).Once()

	res, err := s.service.PostJournal(s.ctx, "acme", s.request("1", "1"))

	s.Require().NoError(err)
	s.Equal("j-first", res.JournalID)
	s.Equal(domain.AlreadyExisted, res.Outcome)
}

func (s *JournalServiceTestSuite) TestPostJournal_BusyLockIsReturned() {
	s.locker.On("WithDocumentLock", mock.Anything, mock.Anything).
		Return(apperrors.NewBusyError("acme:manual:adj-1", nil)).Once()

	_, err := s.service.PostJournal(s.ctx, "acme", s.request("1", "1"))

	s.ErrorIs(err, apperrors.ErrConcurrency)
	s.journalRepo.AssertNotCalled(s.T(), "InsertJournal", mock.Anything, mock.Anything)
}

func (s *JournalServiceTestSuite) TestReverseJournal_SwapsSides() {
	original := &domain.Journal{
		JournalID:     "j1",
		TenantID:      "acme",
		JournalNumber: "JV-000001",
		Key:           domain.IdempotencyKey{RefTable: domain.RefManual, RefID: "adj-1"},
		Lines: []domain.JournalLine{
			{AccountID: "cash", Debit: decimal.NewFromInt(7), Credit: decimal.Zero},
			{AccountID: "sales", Debit: decimal.Zero, Credit: decimal.NewFromInt(7)},
		},
	}
	doc := domain.DocumentRef{TenantID: "acme", RefTable: domain.RefJournalReversal, RefID: "j1"}

	s.journalRepo.On("FindJournalByID", s.ctx, "acme", "j1").Return(original, nil).Once()
	s.locker.On("WithDocumentLock", mock.Anything, doc).Return(nil).Once()
	s.accountRepo.On("FindAccountsByIDs", mock.Anything, "acme", mock.Anything).Return(s.activeAccounts(), nil).Once()
	s.journalRepo.On("InsertJournal", mock.Anything, mock.MatchedBy(func(j domain.Journal) bool {
		return j.JournalType == domain.JournalTypeReversal &&
			j.Lines[0].Credit.Equal(decimal.NewFromInt(7)) && j.Lines[0].Debit.IsZero() &&
			j.Lines[1].Debit.Equal(decimal.NewFromInt(7)) && j.Memo == "Reversal of JV-000001"
	})).Return(domain.PostResult{JournalID: "j2", Outcome: domain.Created}, nil).Once()

	res, err := s.service.ReverseJournal(s.ctx, "acme", "j1", dto.ReverseJournalRequest{PostedAt: time.Now()})

	s.Require().NoError(err)
	s.Equal("j2", res.JournalID)
	s.journalRepo.AssertExpectations(s.T())
	s.locker.AssertExpectations(s.T())
}

func (s *JournalServiceTestSuite) TestListJournals_InvalidRange() {
	_, _, err := s.service.ListJournals(s.ctx, "acme", dto.ListJournalsParams{
		From:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		To:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Limit: 10,
	})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *JournalServiceTestSuite) TestListJournals_ToIsEndOfDay() {
	s.journalRepo.On("ListJournals", s.ctx, "acme", mock.MatchedBy(func(f domain.JournalFilter) bool {
		return f.From == nil && f.To != nil && f.To.Hour() == 23 && f.Limit == 5
	})).Return([]domain.Journal{}, "next", nil).Once()

	journals, next, err := s.service.ListJournals(s.ctx, "acme", dto.ListJournalsParams{
		To:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Limit: 5,
	})

	s.Require().NoError(err)
	s.Empty(journals)
	s.Require().NotNil(next)
	s.Equal("next", *next)
}

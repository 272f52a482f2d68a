package services_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/core/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/platform/lock"
	"github.com/SscSPs/bizledger/internal/repositories/database/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const tenant = "acme"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 12, 0, 0, 0, time.UTC)
}

// LedgerTestSuite runs the services against a real SQLite store.
type LedgerTestSuite struct {
	suite.Suite
	ctx      context.Context
	db       *sql.DB
	svc      *portssvc.ServiceContainer
	accounts map[string]string // logical key -> account id
}

func TestLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func (s *LedgerTestSuite) SetupTest() {
	s.ctx = context.Background()
	db, err := sqlite.Open(s.ctx, filepath.Join(s.T().TempDir(), "ledger.db"))
	s.Require().NoError(err)
	s.db = db

	repos := sqlite.NewRepositoryProvider(db, lock.NewKeyedMutex(5*time.Second))
	s.T().Cleanup(repos.Close)
	s.svc = services.NewServiceContainer(repos, nil)

	s.accounts = make(map[string]string)
	chart := []struct {
		key  string
		code string
		typ  domain.AccountType
	}{
		{domain.KeyCash, "1000", domain.Asset},
		{domain.KeyBank, "1010", domain.Asset},
		{domain.KeyAR, "1100", domain.Asset},
		{domain.KeyInventory, "1200", domain.Asset},
		{domain.KeyAP, "2000", domain.Liability},
		{domain.KeyTaxPayable, "2100", domain.Liability},
		{"capital", "3000", domain.Equity},
		{domain.KeySales, "4000", domain.Income},
		{domain.KeyCOGS, "5000", domain.Expense},
	}
	for _, c := range chart {
		acc, err := s.svc.Account.CreateAccount(s.ctx, tenant, dto.CreateAccountRequest{Code: c.code, Name: c.key, AccountType: c.typ})
		s.Require().NoError(err)
		_, err = s.svc.AccountMap.SetEntry(s.ctx, tenant, c.key, acc.AccountID)
		s.Require().NoError(err)
		s.accounts[c.key] = acc.AccountID
	}
}

func (s *LedgerTestSuite) count(query string, args ...any) int {
	var n int
	s.Require().NoError(s.db.QueryRowContext(s.ctx, query, args...).Scan(&n))
	return n
}

func (s *LedgerTestSuite) journalCount(refTable, refID string) int {
	return s.count(`SELECT COUNT(*) FROM journals WHERE tenant_id = ? AND ref_table = ? AND ref_id = ?`, tenant, refTable, refID)
}

func (s *LedgerTestSuite) post(refID string, at time.Time, debitKey, creditKey, amount string) domain.PostResult {
	res, err := s.svc.Journal.PostJournal(s.ctx, tenant, dto.PostJournalRequest{
		JournalType: "GENERAL",
		PostedAt:    at,
		RefTable:    domain.RefManual,
		RefID:       refID,
		Lines: []dto.JournalLineRequest{
			{AccountID: s.accounts[debitKey], Debit: dec(amount), Credit: decimal.Zero},
			{AccountID: s.accounts[creditKey], Debit: decimal.Zero, Credit: dec(amount)},
		},
	})
	s.Require().NoError(err)
	return res
}

func (s *LedgerTestSuite) sale(invoiceID string, qty, price, cost, tax string) domain.SalesInvoiceEvent {
	return domain.SalesInvoiceEvent{
		InvoiceID:  invoiceID,
		CustomerID: "C1",
		IssuedAt:   day(time.March, 5),
		Lines:      []domain.SalesInvoiceLine{{ProductID: "P1", Qty: dec(qty), UnitPrice: dec(price), UnitCost: dec(cost)}},
		Tax:        dec(tax),
	}
}

func (s *LedgerTestSuite) TestSaleExample_PostsOnce() {
	first, err := s.svc.Posting.PostSalesInvoice(s.ctx, tenant, s.sale("INV-1", "1", "100", "0", "0"))
	s.Require().NoError(err)
	s.Equal(domain.Created, first.Journal.Outcome)
	s.Equal("JV-000001", first.Journal.JournalNumber)

	journal, err := s.svc.Journal.GetJournal(s.ctx, tenant, first.Journal.JournalID)
	s.Require().NoError(err)
	s.Require().Len(journal.Lines, 2)
	s.Equal(s.accounts[domain.KeyAR], journal.Lines[0].AccountID)
	s.True(journal.Lines[0].Debit.Equal(dec("100")))
	s.Equal("C1", journal.Lines[0].PartyID)
	s.Equal(s.accounts[domain.KeySales], journal.Lines[1].AccountID)
	s.True(journal.Lines[1].Credit.Equal(dec("100")))

	again, err := s.svc.Posting.PostSalesInvoice(s.ctx, tenant, s.sale("INV-1", "1", "100", "0", "0"))
	s.Require().NoError(err)
	s.Equal(domain.AlreadyExisted, again.Journal.Outcome)
	s.Equal(first.Journal.JournalID, again.Journal.JournalID)
	s.Empty(again.Moves)

	s.Equal(1, s.journalCount(domain.RefSalesInvoice, "INV-1"))
	s.Equal(1, s.count(`SELECT COUNT(*) FROM stock_moves WHERE tenant_id = ? AND ref_id = ?`, tenant, "INV-1"))
	onHand, err := s.svc.Stock.OnHand(s.ctx, tenant, "P1")
	s.Require().NoError(err)
	s.True(onHand.Equal(dec("-1")))
}

func (s *LedgerTestSuite) TestSaleWithTaxAndCost() {
	res, err := s.svc.Posting.PostSalesInvoice(s.ctx, tenant, s.sale("INV-2", "2", "50", "30", "18"))
	s.Require().NoError(err)
	s.Len(res.Moves, 1)

	journal, err := s.svc.Journal.GetJournal(s.ctx, tenant, res.Journal.JournalID)
	s.Require().NoError(err)
	s.Len(journal.Lines, 5)
	debit, credit := journal.Totals()
	s.True(debit.Equal(credit))
	s.True(debit.Equal(dec("178")))
}

func (s *LedgerTestSuite) TestConcurrentSalePostsOnce() {
	const callers = 8
	var wg sync.WaitGroup
	results := make([]*domain.EventPostingResult, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.svc.Posting.PostSalesInvoice(s.ctx, tenant, s.sale("INV-9", "3", "10", "4", "0"))
		}(i)
	}
	wg.Wait()

	created := 0
	for i := 0; i < callers; i++ {
		s.Require().NoError(errs[i])
		if results[i].Journal.Outcome == domain.Created {
			created++
		}
		s.Equal(results[0].Journal.JournalID, results[i].Journal.JournalID)
	}
	s.Equal(1, created)
	s.Equal(1, s.journalCount(domain.RefSalesInvoice, "INV-9"))
	onHand, err := s.svc.Stock.OnHand(s.ctx, tenant, "P1")
	s.Require().NoError(err)
	s.True(onHand.Equal(dec("-3")))
}

func (s *LedgerTestSuite) registerPurchase(id string, lines ...dto.PurchaseLineRequest) {
	_, err := s.svc.Stock.RegisterPurchase(s.ctx, tenant, dto.RegisterPurchaseRequest{
		PurchaseID: id,
		SupplierID: "S1",
		OrderedAt:  day(time.February, 1),
		Lines:      lines,
	})
	s.Require().NoError(err)
}

func (s *LedgerTestSuite) TestConcurrentDoublePurchaseReceipt() {
	s.registerPurchase("PO-1",
		dto.PurchaseLineRequest{ProductID: "A", Qty: dec("5"), UnitPrice: dec("10")},
		dto.PurchaseLineRequest{ProductID: "B", Qty: dec("3"), UnitPrice: dec("10")},
		dto.PurchaseLineRequest{ProductID: "C", Qty: dec("2"), UnitPrice: dec("10")},
	)

	var wg sync.WaitGroup
	results := make([]*domain.EventPostingResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.svc.Posting.PostPurchaseReceived(s.ctx, tenant, "PO-1")
		}(i)
	}
	wg.Wait()

	s.Require().NoError(errs[0])
	s.Require().NoError(errs[1])
	s.NotEqual(results[0].Receipt.AlreadyReceived, results[1].Receipt.AlreadyReceived)
	s.Equal(3, s.count(`SELECT COUNT(*) FROM stock_moves WHERE tenant_id = ? AND ref_table = ? AND ref_id = ?`, tenant, domain.RefPurchase, "PO-1"))
	s.Equal(1, s.journalCount(domain.RefPurchase, "PO-1"))

	stock, err := s.svc.Stock.OnHandMany(s.ctx, tenant, []string{"A", "B", "C"})
	s.Require().NoError(err)
	s.True(stock["A"].Equal(dec("5")))
	s.True(stock["B"].Equal(dec("3")))
	s.True(stock["C"].Equal(dec("2")))

	purchase, err := s.svc.Stock.GetPurchase(s.ctx, tenant, "PO-1")
	s.Require().NoError(err)
	s.Equal(domain.PurchaseReceived, purchase.Status)

	tb, err := s.svc.Reporting.TrialBalance(s.ctx, tenant, day(time.January, 1), time.Now())
	s.Require().NoError(err)
	for _, row := range tb.Rows {
		if row.AccountID == s.accounts[domain.KeyInventory] {
			s.True(row.ClosingDebit.Equal(dec("100")))
		}
	}
}

func (s *LedgerTestSuite) TestPurchaseReceipt_SkipsInvalidLinesAndEmptyPurchase() {
	s.registerPurchase("PO-2",
		dto.PurchaseLineRequest{ProductID: "A", Qty: dec("4"), UnitPrice: dec("2")},
		dto.PurchaseLineRequest{ProductID: "B", Qty: decimal.Zero, UnitPrice: dec("2")},
		dto.PurchaseLineRequest{ProductID: "C", Qty: dec("-1"), UnitPrice: dec("2")},
	)
	res, err := s.svc.Stock.PostPurchaseReceipt(s.ctx, tenant, "PO-2")
	s.Require().NoError(err)
	s.Len(res.Moves, 1)
	s.Len(res.SkippedLineIDs, 2)
	s.True(res.ReceivedValue.Equal(dec("8")))

	s.registerPurchase("PO-3")
	res, err = s.svc.Stock.PostPurchaseReceipt(s.ctx, tenant, "PO-3")
	s.Require().NoError(err)
	s.Empty(res.Moves)
	purchase, err := s.svc.Stock.GetPurchase(s.ctx, tenant, "PO-3")
	s.Require().NoError(err)
	s.Equal(domain.PurchaseReceived, purchase.Status)

	_, err = s.svc.Stock.PostPurchaseReceipt(s.ctx, tenant, "PO-404")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerTestSuite) TestPostMove_UpsertsInPlace() {
	req := dto.PostMoveRequest{
		ProductID: "P9",
		QtyIn:     dec("10"),
		QtyOut:    decimal.Zero,
		UnitPrice: dec("1.5"),
		MoveType:  domain.MoveAdjustment,
		RefTable:  "stock_count",
		RefID:     "SC-1",
	}
	first, err := s.svc.Stock.PostMove(s.ctx, tenant, req)
	s.Require().NoError(err)
	s.Equal(domain.Created, first.Outcome)

	req.QtyIn = dec("12")
	second, err := s.svc.Stock.PostMove(s.ctx, tenant, req)
	s.Require().NoError(err)
	s.Equal(domain.AlreadyExisted, second.Outcome)
	s.Equal(first.MoveID, second.MoveID)

	onHand, err := s.svc.Stock.OnHand(s.ctx, tenant, "P9")
	s.Require().NoError(err)
	s.True(onHand.Equal(dec("12")))

	req.QtyIn = decimal.Zero
	_, err = s.svc.Stock.PostMove(s.ctx, tenant, req)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerTestSuite) TestMissingMapKey_NoWrites() {
	_, err := s.svc.Posting.PostSalesInvoice(s.ctx, "beta", domain.SalesInvoiceEvent{
		InvoiceID:  "INV-1",
		CustomerID: "C1",
		IssuedAt:   day(time.March, 1),
		Lines:      []domain.SalesInvoiceLine{{ProductID: "P1", Qty: dec("1"), UnitPrice: dec("10"), UnitCost: decimal.Zero}},
		Tax:        decimal.Zero,
	})

	var cfgErr *apperrors.ConfigurationError
	s.Require().True(errors.As(err, &cfgErr))
	s.ElementsMatch([]string{domain.KeyAR, domain.KeySales}, cfgErr.MissingKeys)
	s.Equal(0, s.count(`SELECT COUNT(*) FROM journals WHERE tenant_id = ?`, "beta"))
	s.Equal(0, s.count(`SELECT COUNT(*) FROM stock_moves WHERE tenant_id = ?`, "beta"))
}

func (s *LedgerTestSuite) TestPostJournal_AccountOfAnotherTenant() {
	_, err := s.svc.Journal.PostJournal(s.ctx, "beta", dto.PostJournalRequest{
		JournalType: "GENERAL",
		PostedAt:    day(time.March, 1),
		RefTable:    domain.RefManual,
		RefID:       "x",
		Lines: []dto.JournalLineRequest{
			{AccountID: s.accounts[domain.KeyCash], Debit: dec("1"), Credit: decimal.Zero},
			{AccountID: s.accounts[domain.KeySales], Debit: decimal.Zero, Credit: dec("1")},
		},
	})
	s.True(apperrors.IsValidationReason(err, apperrors.ReasonInvalidLine))
}

func (s *LedgerTestSuite) TestTrialBalance_OpeningPeriodClosing() {
	s.post("capital", day(time.January, 10), domain.KeyCash, "capital", "1000")
	s.post("cash-sale", day(time.February, 10), domain.KeyCash, domain.KeySales, "250")
	s.post("overdraw", day(time.February, 11), domain.KeyBank, domain.KeyCash, "0.0001")
	s.post("bank-out", day(time.February, 12), domain.KeyCOGS, domain.KeyBank, "40")

	tb, err := s.svc.Reporting.TrialBalance(s.ctx, tenant, day(time.February, 1), day(time.February, 28))
	s.Require().NoError(err)

	s.True(tb.Totals.ClosingDebit.Equal(tb.Totals.ClosingCredit))
	s.True(tb.Totals.PeriodDebit.Equal(tb.Totals.PeriodCredit))
	s.True(tb.Totals.OpeningDebit.Equal(tb.Totals.OpeningCredit))

	rows := make(map[string]domain.TrialBalanceRow)
	for _, r := range tb.Rows {
		rows[r.AccountID] = r
	}
	cash := rows[s.accounts[domain.KeyCash]]
	s.True(cash.OpeningDebit.Equal(dec("1000")))
	s.True(cash.PeriodDebit.Equal(dec("250")))
	s.True(cash.ClosingDebit.Equal(dec("1249.9999")))
	s.False(cash.Abnormal)

	bank := rows[s.accounts[domain.KeyBank]]
	s.True(bank.ClosingCredit.Equal(dec("39.9999")))
	s.True(bank.ClosingDebit.IsZero())
	s.True(bank.Abnormal)

	_, ok := rows[s.accounts[domain.KeyAP]]
	s.False(ok)

	_, err = s.svc.Reporting.TrialBalance(s.ctx, tenant, day(time.March, 1), day(time.February, 1))
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerTestSuite) TestBook_RunningBalanceAndClearedFilter() {
	s.post("open", day(time.January, 5), domain.KeyBank, "capital", "50")
	same := day(time.February, 3)
	first := s.post("in", same, domain.KeyBank, domain.KeySales, "100")
	s.post("out", same, domain.KeyCOGS, domain.KeyBank, "30")
	s.post("late", day(time.March, 1), domain.KeyBank, domain.KeySales, "5")

	book, err := s.svc.Reporting.Book(s.ctx, tenant, s.accounts[domain.KeyBank], day(time.February, 1), day(time.February, 28), domain.ClearedAll)
	s.Require().NoError(err)
	s.True(book.Opening.Equal(dec("50")))
	s.Require().Len(book.Rows, 2)
	s.True(book.Rows[0].RunningBalance.Equal(dec("150")))
	s.True(book.Rows[1].RunningBalance.Equal(dec("120")))
	s.True(book.Closing.Equal(dec("120")))
	s.True(book.TotalDebit.Equal(dec("100")))
	s.True(book.TotalCredit.Equal(dec("30")))

	journal, err := s.svc.Journal.GetJournal(s.ctx, tenant, first.JournalID)
	s.Require().NoError(err)
	n, err := s.svc.Journal.MarkLinesCleared(s.ctx, tenant, dto.ClearLinesRequest{LineIDs: []string{journal.Lines[0].LineID}, Cleared: true})
	s.Require().NoError(err)
	s.EqualValues(1, n)

	cleared, err := s.svc.Reporting.Book(s.ctx, tenant, s.accounts[domain.KeyBank], day(time.February, 1), day(time.February, 28), domain.ClearedOnly)
	s.Require().NoError(err)
	s.True(cleared.Opening.IsZero())
	s.Require().Len(cleared.Rows, 1)
	s.True(cleared.Rows[0].RunningBalance.Equal(dec("100")))

	_, err = s.svc.Reporting.Book(s.ctx, tenant, "no-such-account", day(time.February, 1), day(time.February, 28), domain.ClearedAll)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerTestSuite) TestBook_CreditNormalAccountSign() {
	s.post("in", day(time.February, 3), domain.KeyBank, domain.KeySales, "100")
	s.post("refund", day(time.February, 4), domain.KeySales, domain.KeyBank, "15")

	book, err := s.svc.Reporting.Book(s.ctx, tenant, s.accounts[domain.KeySales], day(time.February, 1), day(time.February, 28), domain.ClearedAll)
	s.Require().NoError(err)
	s.Equal(domain.Credit, book.NormalSide)
	s.True(book.TotalCredit.Equal(dec("100")))
	s.True(book.TotalDebit.Equal(dec("15")))
	s.Require().Len(book.Rows, 2)
	s.True(book.Rows[0].RunningBalance.Equal(dec("100")))
	s.True(book.Closing.Equal(book.Opening.Add(book.TotalCredit).Sub(book.TotalDebit)))
	s.True(book.Closing.Equal(dec("85")))
}

func (s *LedgerTestSuite) TestPostJournal_RejectsAmountsBeyondLedgerRange() {
	_, err := s.svc.Journal.PostJournal(s.ctx, tenant, dto.PostJournalRequest{
		JournalType: "GENERAL",
		PostedAt:    day(time.March, 1),
		RefTable:    domain.RefManual,
		RefID:       "BIG",
		Lines: []dto.JournalLineRequest{
			{AccountID: s.accounts[domain.KeyCash], Debit: dec("1844674407370960.1616"), Credit: decimal.Zero},
			{AccountID: s.accounts["capital"], Debit: decimal.Zero, Credit: dec("1844674407370960.1616")},
		},
	})
	s.True(apperrors.IsValidationReason(err, apperrors.ReasonInvalidLine), "got %v", err)
	s.Equal(0, s.journalCount(domain.RefManual, "BIG"))

	largest := s.post("LARGEST", day(time.March, 1), domain.KeyCash, "capital", "99999999999999.9999")
	journal, err := s.svc.Journal.GetJournal(s.ctx, tenant, largest.JournalID)
	s.Require().NoError(err)
	s.True(journal.Lines[0].Debit.Equal(dec("99999999999999.9999")), journal.Lines[0].Debit.String())

	tb, err := s.svc.Reporting.TrialBalance(s.ctx, tenant, day(time.January, 1), day(time.March, 31))
	s.Require().NoError(err)
	s.True(tb.Totals.ClosingDebit.Equal(dec("99999999999999.9999")), tb.Totals.ClosingDebit.String())

	_, err = s.svc.Stock.PostMove(s.ctx, tenant, dto.PostMoveRequest{
		ProductID: "P1", QtyIn: dec("100000000000000"), QtyOut: decimal.Zero, UnitPrice: decimal.Zero,
		MoveType: domain.MoveAdjustment, RefTable: "stock_count", RefID: "SC-BIG",
	})
	s.True(apperrors.IsValidationReason(err, apperrors.ReasonInvalidLine), "got %v", err)

	_, err = s.svc.Posting.PostSalesInvoice(s.ctx, tenant, s.sale("INV-BIG", "1", "100000000000000", "0", "0"))
	s.True(apperrors.IsValidationReason(err, apperrors.ReasonInvalidLine), "got %v", err)
	s.Equal(0, s.count(`SELECT COUNT(*) FROM stock_moves WHERE tenant_id = ? AND ref_id = ?`, tenant, "INV-BIG"))
}

func (s *LedgerTestSuite) TestSalesInvoice_ZeroValuePostsStockOnly() {
	first, err := s.svc.Posting.PostSalesInvoice(s.ctx, tenant, s.sale("FREE-1", "3", "0", "0", "0"))
	s.Require().NoError(err)
	s.Equal(domain.Created, first.Journal.Outcome)
	s.Empty(first.Journal.JournalID)
	s.Require().Len(first.Moves, 1)
	s.Equal(0, s.journalCount(domain.RefSalesInvoice, "FREE-1"))

	onHand, err := s.svc.Stock.OnHand(s.ctx, tenant, "P1")
	s.Require().NoError(err)
	s.True(onHand.Equal(dec("-3")), onHand.String())

	again, err := s.svc.Posting.PostSalesInvoice(s.ctx, tenant, s.sale("FREE-1", "3", "0", "0", "0"))
	s.Require().NoError(err)
	s.Equal(domain.AlreadyExisted, again.Journal.Outcome)
	s.Equal(first.Moves[0].MoveID, again.Moves[0].MoveID)

	onHand, err = s.svc.Stock.OnHand(s.ctx, tenant, "P1")
	s.Require().NoError(err)
	s.True(onHand.Equal(dec("-3")), onHand.String())
}

func (s *LedgerTestSuite) TestCustomerPayment_ARRollupAndAging() {
	_, err := s.svc.Posting.PostSalesInvoice(s.ctx, tenant, s.sale("INV-1", "1", "100", "0", "0"))
	s.Require().NoError(err)
	_, err = s.svc.Posting.PostSalesInvoice(s.ctx, tenant, s.sale("INV-2", "2", "25", "0", "0"))
	s.Require().NoError(err)

	payment := domain.CustomerPaymentEvent{
		PaymentID:  "PAY-1",
		CustomerID: "C1",
		InvoiceID:  "INV-1",
		ReceivedAt: day(time.March, 10),
		Amount:     dec("100"),
		DepositKey: domain.KeyBank,
	}
	res, err := s.svc.Posting.PostCustomerPayment(s.ctx, tenant, payment)
	s.Require().NoError(err)
	s.Equal(domain.Created, res.Journal.Outcome)
	res, err = s.svc.Posting.PostCustomerPayment(s.ctx, tenant, payment)
	s.Require().NoError(err)
	s.Equal(domain.AlreadyExisted, res.Journal.Outcome)

	rollup, err := s.svc.Reporting.ARRollup(s.ctx, tenant, "C1")
	s.Require().NoError(err)
	s.Require().Len(rollup.Customers, 1)
	c := rollup.Customers[0]
	s.True(c.Invoiced.Equal(dec("150")))
	s.True(c.Collected.Equal(dec("100")))
	s.True(c.Due.Equal(dec("50")))
	s.Equal(1, c.OpenInvoiceCount)
	s.Len(c.Invoices, 2)

	aging, err := s.svc.Reporting.ARAging(s.ctx, tenant, day(time.March, 25), 0)
	s.Require().NoError(err)
	s.Require().Len(aging.Rows, 1)
	s.True(aging.Rows[0].Days16To30.Equal(dec("50")))
	s.True(aging.Totals.Total.Equal(dec("50")))
}

func (s *LedgerTestSuite) TestProfitAndLossAndBalanceSheet() {
	s.post("capital", day(time.January, 10), domain.KeyCash, "capital", "1000")
	s.post("sale", day(time.February, 10), domain.KeyCash, domain.KeySales, "300")
	s.post("cost", day(time.February, 11), domain.KeyCOGS, domain.KeyCash, "120")

	pl, err := s.svc.Reporting.ProfitAndLoss(s.ctx, tenant, day(time.February, 1), day(time.February, 28))
	s.Require().NoError(err)
	s.True(pl.NetProfit.Equal(dec("180")))
	s.Len(pl.Income, 1)
	s.Len(pl.Expenses, 1)

	bs, err := s.svc.Reporting.BalanceSheet(s.ctx, tenant, day(time.February, 28))
	s.Require().NoError(err)
	s.True(bs.TotalAssets.Equal(dec("1180")))
	s.True(bs.RetainedEarnings.Equal(dec("180")))
	s.True(bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity)))
}

func (s *LedgerTestSuite) TestHealthChecks_ReportBypassedWrites() {
	_, err := s.svc.Posting.PostSalesInvoice(s.ctx, tenant, s.sale("INV-1", "2", "10", "0", "0"))
	s.Require().NoError(err)

	// A journal written around the engine, with a single debit line.
	now := time.Now().UnixMicro()
	_, err = s.db.ExecContext(s.ctx, `
		INSERT INTO journals (journal_id, tenant_id, journal_number, journal_type, posted_at, ref_table, ref_id, created_at)
		VALUES ('rogue', ?, 'JV-999999', 'GENERAL', ?, 'manual', 'rogue', ?)`, tenant, now, now)
	s.Require().NoError(err)
	_, err = s.db.ExecContext(s.ctx, `
		INSERT INTO journal_lines (line_id, journal_id, tenant_id, line_no, account_id, debit, credit)
		VALUES ('rogue-1', 'rogue', ?, 1, ?, 50000, 0)`, tenant, s.accounts[domain.KeyCash])
	s.Require().NoError(err)

	report, err := s.svc.Reporting.RunHealthChecks(s.ctx, tenant, []string{domain.KeyCash, "payroll"})
	s.Require().NoError(err)
	s.False(report.Healthy())

	s.Require().Len(report.UnbalancedJournals, 1)
	s.Equal("rogue", report.UnbalancedJournals[0].JournalID)
	s.True(report.UnbalancedJournals[0].Imbalance.Abs().Equal(dec("5")))

	s.Require().Len(report.NegativeStock, 1)
	s.Equal("P1", report.NegativeStock[0].ProductID)
	s.True(report.NegativeStock[0].OnHand.Equal(dec("-2")))

	s.Equal([]domain.MissingMapKey{{LogicalKey: "payroll"}}, report.MissingKeys)
	s.Len(report.Warnings, 3)

	// Diagnostics never repair.
	s.Equal(1, s.journalCount(domain.RefManual, "rogue"))
}

package accounting

import (
	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ValidateLine checks one journal line: no negative side, exactly one non-zero side,
// and an amount the ledger can store.
func ValidateLine(line domain.JournalLine) error {
	if line.AccountID == "" {
		return apperrors.NewValidationError(apperrors.ReasonInvalidLine, "line %d: account is required", line.LineNo)
	}
	if line.Debit.IsNegative() || line.Credit.IsNegative() {
		return apperrors.NewValidationError(apperrors.ReasonInvalidLine, "line %d: amounts must not be negative", line.LineNo)
	}
	if line.Debit.IsZero() == line.Credit.IsZero() {
		return apperrors.NewValidationError(apperrors.ReasonInvalidLine, "line %d: exactly one of debit and credit must be non-zero", line.LineNo)
	}
	if !FitsScale(line.Debit) || !FitsScale(line.Credit) {
		return apperrors.NewValidationError(apperrors.ReasonInvalidLine, "line %d: amounts carry more than %d decimal places", line.LineNo, domain.AmountScale)
	}
	if !InRange(line.Debit) || !InRange(line.Credit) {
		return apperrors.NewValidationError(apperrors.ReasonInvalidLine, "line %d: amount must be below %s", line.LineNo, domain.MaxAmount.String())
	}
	return nil
}

// ValidateJournalBalance checks that a journal has lines, every line is valid, and debits equal credits exactly.
func ValidateJournalBalance(lines []domain.JournalLine) error {
	if len(lines) == 0 {
		return apperrors.NewValidationError(apperrors.ReasonEmptyJournal, "journal has no lines")
	}

	debits, credits := decimal.Zero, decimal.Zero
	for _, line := range lines {
		if err := ValidateLine(line); err != nil {
			return err
		}
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}

	if !debits.Equal(credits) {
		return apperrors.NewValidationError(apperrors.ReasonUnbalanced,
			"debits sum is %s and credits sum is %s", debits.String(), credits.String())
	}
	return nil
}

// FitsScale reports whether d can be stored without rounding.
func FitsScale(d decimal.Decimal) bool {
	return d.Round(domain.AmountScale).Equal(d)
}

// InRange reports whether |d| is below domain.MaxAmount.
func InRange(d decimal.Decimal) bool {
	return d.Abs().LessThan(domain.MaxAmount)
}

// Storable reports whether d fits the ledger's scale and magnitude.
func Storable(d decimal.Decimal) bool {
	return FitsScale(d) && InRange(d)
}

// SplitNet places a net debit-minus-credit balance on the side it falls on.
// A negative net is a credit balance; nothing is clamped.
func SplitNet(net decimal.Decimal) (debit, credit decimal.Decimal) {
	if net.IsNegative() {
		return decimal.Zero, net.Neg()
	}
	return net, decimal.Zero
}

// Signed returns debit-minus-credit expressed in the account's normal-side sign.
func Signed(debit, credit decimal.Decimal, normal domain.Side) decimal.Decimal {
	if normal == domain.Credit {
		return credit.Sub(debit)
	}
	return debit.Sub(credit)
}

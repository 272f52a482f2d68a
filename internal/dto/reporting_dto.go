package dto

import (
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// TrialBalanceParams defines query parameters for the trial balance.
type TrialBalanceParams struct {
	PeriodStart time.Time `form:"period_start" time_format:"2006-01-02" binding:"required"`
	AsOf        time.Time `form:"as_of" time_format:"2006-01-02" binding:"required"`
	Format      string    `form:"format" binding:"omitempty,oneof=json xlsx"`
}

// BookParams defines query parameters for an account book.
type BookParams struct {
	From    time.Time            `form:"from" time_format:"2006-01-02" binding:"required"`
	To      time.Time            `form:"to" time_format:"2006-01-02" binding:"required"`
	Cleared domain.ClearedFilter `form:"cleared,default=ALL" binding:"oneof=ALL CLEARED UNCLEARED"`
	Format  string               `form:"format" binding:"omitempty,oneof=json xlsx"`
}

// ARAgingParams defines query parameters for receivables aging.
type ARAgingParams struct {
	AsOf      time.Time `form:"as_of" time_format:"2006-01-02" binding:"required"`
	TermsDays int       `form:"terms_days,default=0" binding:"min=0,max=365"`
}

// PeriodParams defines a from/to range.
type PeriodParams struct {
	From time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To   time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
}

// AsOfParams defines a single as-of date.
type AsOfParams struct {
	AsOf time.Time `form:"as_of" time_format:"2006-01-02" binding:"required"`
}

// EndOfDay returns the last representable instant of t's day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).Add(24*time.Hour - time.Microsecond)
}

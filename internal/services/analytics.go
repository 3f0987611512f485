package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finflowhq/finflow-backend/internal/dto"
	"github.com/finflowhq/finflow-backend/internal/errs"
)

// breakdownStore is the aggregation interface over the transaction ledger.
type breakdownStore interface {
	CategoryTotals(ctx context.Context, uid string, from, to time.Time) ([]dto.CategoryTotal, error)
}

type analyticsService struct {
	store    breakdownStore
	clockNow func() time.Time
}

func NewAnalyticsService(store breakdownStore) *analyticsService {
	return &analyticsService{store: store, clockNow: time.Now}
}

// palette cycles across breakdown slices in descending-amount order, so the
// largest category always renders in the first color.
var palette = []string{
	"#4E79A7", "#F28E2B", "#E15759", "#76B7B2", "#59A14F",
	"#EDC948", "#B07AA1", "#FF9DA7", "#9C755F", "#BAB0AC",
}

// CategoryBreakdown aggregates expense magnitudes per category over the
// given window (defaulting to calendar month-to-date). Percentages are
// fractions of the window total and sum to 1 across slices; an empty window
// yields an empty slice list, never a division by zero.
func (s *analyticsService) CategoryBreakdown(ctx context.Context, uid string, startDate, endDate *string) (dto.CategoryBreakdown, error) {
	now := s.clockNow()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now

	if startDate != nil {
		d, err := parseDate("startDate", *startDate)
		if err != nil {
			return dto.CategoryBreakdown{}, err
		}
		from = d
	}
	if endDate != nil {
		d, err := parseDate("endDate", *endDate)
		if err != nil {
			return dto.CategoryBreakdown{}, err
		}
		to = d
	}
	if to.Before(from) {
		return dto.CategoryBreakdown{}, errs.NewFieldValidationError("endDate", "endDate precedes startDate")
	}

	totals, err := s.store.CategoryTotals(ctx, uid, from, to)
	if err != nil {
		return dto.CategoryBreakdown{}, err
	}

	grand := decimal.Zero
	for _, t := range totals {
		grand = grand.Add(t.Total)
	}

	slices := make([]dto.CategorySlice, 0, len(totals))
	for i, t := range totals {
		slice := dto.CategorySlice{
			Category: t.Category,
			Amount:   t.Total,
			Count:    t.Count,
			Color:    palette[i%len(palette)],
		}
		if grand.IsPositive() {
			fraction, _ := t.Total.Div(grand).Float64()
			slice.Percentage = fraction
		}
		slices = append(slices, slice)
	}

	return dto.CategoryBreakdown{
		Categories:  slices,
		TotalAmount: grand,
		DateRange: dto.DateRange{
			StartDate: from.Format(dateLayout),
			EndDate:   to.Format(dateLayout),
		},
	}, nil
}

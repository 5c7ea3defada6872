package budget

import (
	"context"
	"fmt"
	"time"

	"mein-essen/domain"
	"mein-essen/pkg/receipt"

	"github.com/shopspring/decimal"
)

type (
	BudgetService interface {
		GetBudget(ctx context.Context) (domain.BudgetResponse, error)
		CurrentWeek(ctx context.Context) (Week, error)
		Now() time.Time
	}

	// Week is the spend state of the current Monday-aligned week.
	Week struct {
		Start     time.Time
		Limit     decimal.Decimal
		Spent     decimal.Decimal
		Remaining decimal.Decimal
	}

	budgetService struct {
		receiptRepository receipt.ReceiptRepository
		limit             decimal.Decimal
		location          *time.Location
		now               func() time.Time
	}
)

func NewBudgetService(receiptRepository receipt.ReceiptRepository, weeklyLimit decimal.Decimal, location *time.Location) BudgetService {
	if location == nil {
		location = time.Local
	}
	return &budgetService{
		receiptRepository: receiptRepository,
		limit:             weeklyLimit,
		location:          location,
		now:               time.Now,
	}
}

func (s *budgetService) Now() time.Time {
	return s.now().In(s.location)
}

func (s *budgetService) CurrentWeek(ctx context.Context) (Week, error) {
	start := WeekStart(s.Now())

	spent, err := s.receiptRepository.SumTotalsSince(ctx, start)
	if err != nil {
		return Week{}, fmt.Errorf("sum weekly spend: %w", err)
	}
	spent = spent.Round(2)

	return Week{
		Start:     start,
		Limit:     s.limit,
		Spent:     spent,
		Remaining: s.limit.Sub(spent),
	}, nil
}

func (s *budgetService) GetBudget(ctx context.Context) (domain.BudgetResponse, error) {
	week, err := s.CurrentWeek(ctx)
	if err != nil {
		return domain.BudgetResponse{}, err
	}

	return domain.BudgetResponse{
		WeekStart: week.Start,
		Limit:     week.Limit.InexactFloat64(),
		Spent:     week.Spent.InexactFloat64(),
		Remaining: week.Remaining.InexactFloat64(),
	}, nil
}

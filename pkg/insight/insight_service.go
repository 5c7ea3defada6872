package insight

import (
	"context"
	"fmt"
	"strings"

	"mein-essen/domain"
	"mein-essen/entities"
	"mein-essen/pkg/ai"
	"mein-essen/pkg/budget"
	"mein-essen/pkg/receipt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	PantrySize      = 20
	MaxChatMessages = 20

	NoDataAdvice = "No purchases recorded this week yet. Upload a receipt to see where your money goes."
)

type (
	InsightService interface {
		Plan(ctx context.Context, req domain.PlanRequest) (domain.PlanResponse, error)
		Analytics(ctx context.Context) (domain.AnalyticsResponse, error)
		Chat(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error)
	}

	insightService struct {
		receiptRepository receipt.ReceiptRepository
		budgetService     budget.BudgetService
		model             ai.Client
	}
)

func NewInsightService(receiptRepository receipt.ReceiptRepository, budgetService budget.BudgetService, model ai.Client) InsightService {
	return &insightService{
		receiptRepository: receiptRepository,
		budgetService:     budgetService,
		model:             model,
	}
}

func (s *insightService) Plan(ctx context.Context, req domain.PlanRequest) (domain.PlanResponse, error) {
	var (
		week   budget.Week
		pantry []*entities.ReceiptItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		week, err = s.budgetService.CurrentWeek(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		pantry, err = s.receiptRepository.GetRecentItems(gctx, PantrySize)
		if err != nil {
			return fmt.Errorf("load recent items: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.PlanResponse{}, err
	}

	text, err := s.model.Complete(ctx, ai.CompletionRequest{
		Messages:    ai.UserPrompt(PlanPrompt(week, pantry, req.Wishes)),
		Temperature: 0.7,
		MaxTokens:   800,
	})
	if err != nil {
		return domain.PlanResponse{}, err
	}

	return domain.PlanResponse{Plan: strings.TrimSpace(text)}, nil
}

func (s *insightService) Analytics(ctx context.Context) (domain.AnalyticsResponse, error) {
	since := budget.WeekStart(s.budgetService.Now())
	items, err := s.receiptRepository.GetItemsSince(ctx, since)
	if err != nil {
		return domain.AnalyticsResponse{}, fmt.Errorf("load weekly items: %w", err)
	}

	if len(items) == 0 {
		return domain.AnalyticsResponse{Categories: []domain.Category{}, Advice: NoDataAdvice}, nil
	}

	text, err := s.model.Complete(ctx, ai.CompletionRequest{
		System:      analyticsSystem,
		Messages:    ai.UserPrompt(AnalyticsPrompt(items)),
		JSON:        true,
		Temperature: 0.3,
		MaxTokens:   800,
	})
	if err != nil {
		return domain.AnalyticsResponse{}, err
	}

	var result domain.AnalyticsResponse
	if err := ai.DecodeJSON(text, &result); err != nil {
		return domain.AnalyticsResponse{}, err
	}

	if result.Categories == nil {
		result.Categories = []domain.Category{}
	}
	for i := range result.Categories {
		if result.Categories[i].Color == "" {
			result.Categories[i].Color = palette[i%len(palette)]
		}
		result.Categories[i].Value = decimal.NewFromFloat(result.Categories[i].Value).Round(2).InexactFloat64()
	}

	return result, nil
}

func (s *insightService) Chat(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	if len(req.Messages) == 0 {
		return domain.ChatResponse{}, domain.NewClientError("at least one message is required")
	}

	since := budget.MonthStart(s.budgetService.Now())
	items, err := s.receiptRepository.GetItemsSince(ctx, since)
	if err != nil {
		return domain.ChatResponse{}, fmt.Errorf("load monthly items: %w", err)
	}

	messages := req.Messages
	if len(messages) > MaxChatMessages {
		messages = messages[len(messages)-MaxChatMessages:]
	}

	text, err := s.model.Complete(ctx, ai.CompletionRequest{
		System:      ChatSystemPrompt(items),
		Messages:    messages,
		Temperature: 0.5,
		MaxTokens:   600,
	})
	if err != nil {
		return domain.ChatResponse{}, err
	}

	return domain.ChatResponse{Answer: strings.TrimSpace(text)}, nil
}

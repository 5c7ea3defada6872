package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"mein-essen/domain"
	"mein-essen/pkg/budget"
	"mein-essen/pkg/insight"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2/log"
)

const maxMessageLength = 4096

const helpText = "🥦 mein Essen\n\n" +
	"Commands:\n" +
	"/budget - spent and remaining this week\n" +
	"/plan [wishes] - shopping list for tomorrow, e.g. /plan fish, pasta\n" +
	"/analytics - this week's spending by category\n" +
	"Any other text is answered using this month's purchases."

const unauthorizedText = "This chat (id %d) is not allowed to use this bot."

type (
	// Sender is the part of *tgbotapi.BotAPI used to reply.
	Sender interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	}

	BotService interface {
		HandleUpdate(ctx context.Context, update tgbotapi.Update) error
	}

	botService struct {
		sender         Sender
		allowedChats   map[int64]bool
		budgetService  budget.BudgetService
		insightService insight.InsightService
	}
)

// NewBotService answers only the chats in allowedChats; every other chat is
// told its id and nothing else.
func NewBotService(sender Sender, allowedChats []int64, budgetService budget.BudgetService, insightService insight.InsightService) BotService {
	allowed := make(map[int64]bool, len(allowedChats))
	for _, id := range allowedChats {
		allowed[id] = true
	}
	return &botService{
		sender:         sender,
		allowedChats:   allowed,
		budgetService:  budgetService,
		insightService: insightService,
	}
}

func (s *botService) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.Chat == nil || strings.TrimSpace(msg.Text) == "" {
		return nil
	}
	if !s.allowedChats[msg.Chat.ID] {
		log.Warnf("telegram message from unauthorized chat %d", msg.Chat.ID)
		_, err := s.sender.Send(tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf(unauthorizedText, msg.Chat.ID)))
		return err
	}

	reply, err := s.dispatch(ctx, msg)
	if err != nil {
		log.Errorf("telegram command %q failed: %v", msg.Text, err)
		reply = "❌ " + err.Error()
	}

	_, sendErr := s.sender.Send(tgbotapi.NewMessage(msg.Chat.ID, Truncate(reply, maxMessageLength)))
	return sendErr
}

func (s *botService) dispatch(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	if !msg.IsCommand() {
		res, err := s.insightService.Chat(ctx, domain.ChatRequest{
			Messages: []domain.ChatMessage{{Role: domain.RoleUser, Content: strings.TrimSpace(msg.Text)}},
		})
		if err != nil {
			return "", err
		}
		return res.Answer, nil
	}

	switch msg.Command() {
	case "start", "help":
		return helpText, nil

	case "budget":
		res, err := s.budgetService.GetBudget(ctx)
		if err != nil {
			return "", err
		}
		return FormatBudget(res), nil

	case "plan":
		res, err := s.insightService.Plan(ctx, domain.PlanRequest{Wishes: msg.CommandArguments()})
		if err != nil {
			return "", err
		}
		return res.Plan, nil

	case "analytics":
		res, err := s.insightService.Analytics(ctx)
		if err != nil {
			return "", err
		}
		return FormatAnalytics(res), nil

	default:
		return "Unknown command.\n\n" + helpText, nil
	}
}

func FormatBudget(res domain.BudgetResponse) string {
	return fmt.Sprintf("📅 Week from %s\n💶 Limit: €%.2f\n🛒 Spent: €%.2f\n✅ Remaining: €%.2f",
		res.WeekStart.Format("02.01.2006"), res.Limit, res.Spent, res.Remaining)
}

func FormatAnalytics(res domain.AnalyticsResponse) string {
	var b strings.Builder
	b.WriteString("📊 This week\n")
	for _, c := range res.Categories {
		fmt.Fprintf(&b, "• %s: €%.2f\n", c.Name, c.Value)
	}
	if res.Advice != "" {
		b.WriteString("\n💡 " + res.Advice)
	}
	return strings.TrimSpace(b.String())
}

// Truncate cuts s to at most n UTF-16 code units, the unit Telegram counts
// message length in.
func Truncate(s string, n int) string {
	if len(utf16.Encode([]rune(s))) <= n {
		return s
	}

	var b strings.Builder
	used := 0
	for _, r := range s {
		size := utf16.RuneLen(r)
		if size < 0 {
			size = 1
		}
		// keep one unit for the ellipsis
		if used+size > n-1 {
			break
		}
		b.WriteRune(r)
		used += size
	}
	return b.String() + "…"
}

// ParseChatIDs reads a comma separated list of Telegram chat ids.
func ParseChatIDs(list string) ([]int64, error) {
	var ids []int64
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id %q: %w", field, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

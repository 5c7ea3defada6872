package insight

import (
	"fmt"
	"strings"

	"mein-essen/entities"
	"mein-essen/pkg/budget"

	"github.com/shopspring/decimal"
)

const planTemplate = `🛒 Shopping list for tomorrow
1. <item> – <amount> – ~€<price>
...
💶 Estimated total: €<sum>
🍽 Meal ideas: <one line>`

const analyticsSystem = `You are a personal finance assistant analysing grocery purchases.
Group the purchases into at most 6 spending categories (for example Dairy, Meat & Fish, Vegetables & Fruit,
Bakery, Drinks, Sweets & Snacks, Household). Respond ONLY with a JSON object of the form
{"categories":[{"name":"string","value":number,"color":"#RRGGBB"}],"advice":"string"}
where "value" is the euro amount spent in that category and "advice" is one or two sentences of
practical saving advice. Do not include markdown.`

const chatSystem = `You are a friendly assistant that answers questions about the user's grocery spending.
Answer briefly and concretely, using euro amounts from the purchase list when relevant.
If the list does not contain the answer, say so.`

var palette = []string{"#10b981", "#6366f1", "#f59e0b", "#ef4444", "#3b82f6", "#ec4899", "#8b5cf6", "#14b8a6"}

// ItemsBlock renders purchases as one line each followed by the grand total.
func ItemsBlock(items []*entities.ReceiptItem) string {
	var b strings.Builder
	total := decimal.Zero
	for _, item := range items {
		fmt.Fprintf(&b, "- %s: %s × €%s = €%s\n",
			item.Name, item.Quantity.String(), item.Price.StringFixed(2), item.Total.StringFixed(2))
		total = total.Add(item.Total)
	}
	fmt.Fprintf(&b, "Total: €%s", total.StringFixed(2))
	return b.String()
}

func pantryBlock(items []*entities.ReceiptItem) string {
	if len(items) == 0 {
		return "(no purchases recorded yet)"
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- %s (%s)", item.Name, item.Quantity.String()))
	}
	return strings.Join(lines, "\n")
}

func PlanPrompt(week budget.Week, pantry []*entities.ReceiptItem, wishes string) string {
	wishes = strings.TrimSpace(wishes)
	if wishes == "" {
		wishes = "none"
	}

	return fmt.Sprintf(`You plan grocery shopping for one person in Germany.
Weekly budget: €%s. Already spent this week: €%s. Remaining: €%s.
Recently bought (assume most of it is still at home):
%s
Wishes for tomorrow: %s

Draft tomorrow's shopping list. Do not repeat items that were just bought unless they are perishable,
and keep the estimated total well inside the remaining budget. If the remaining budget is zero or
negative, suggest only essentials. Answer in exactly this format and nothing else:
%s`,
		week.Limit.StringFixed(2), week.Spent.StringFixed(2), week.Remaining.StringFixed(2),
		pantryBlock(pantry), wishes, planTemplate)
}

func AnalyticsPrompt(items []*entities.ReceiptItem) string {
	return "Purchases this week:\n" + ItemsBlock(items)
}

func ChatSystemPrompt(items []*entities.ReceiptItem) string {
	purchases := "(no purchases this month)"
	if len(items) > 0 {
		purchases = ItemsBlock(items)
	}
	return chatSystem + "\n\nPurchases this month:\n" + purchases
}

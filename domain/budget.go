package domain

import "time"

var (
	MessageSuccessGetBudget = "budget retrieved successfully"
	MessageFailedGetBudget  = "failed to retrieve budget"
)

type BudgetResponse struct {
	WeekStart time.Time `json:"weekStart"`
	Limit     float64   `json:"limit"`
	Spent     float64   `json:"spent"`
	Remaining float64   `json:"remaining"`
}

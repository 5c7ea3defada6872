package domain

import "errors"

var (
	MessageSuccessPlan      = "shopping plan generated successfully"
	MessageSuccessAnalytics = "analytics generated successfully"
	MessageSuccessChat      = "answer generated successfully"

	MessageFailedPlan      = "failed to generate shopping plan"
	MessageFailedAnalytics = "failed to generate analytics"
	MessageFailedChat      = "failed to generate answer"

	ErrModelEmptyResponse = errors.New("model returned an empty response")
	ErrModelInvalidJSON   = errors.New("model returned invalid JSON")
	ErrModelNotConfigured = errors.New("model provider is not configured")
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type (
	PlanRequest struct {
		Wishes string `json:"wishes" validate:"max=2000"`
	}

	PlanResponse struct {
		Plan string `json:"plan"`
	}

	Category struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
		Color string  `json:"color"`
	}

	AnalyticsResponse struct {
		Categories []Category `json:"categories"`
		Advice     string     `json:"advice"`
	}

	ChatMessage struct {
		Role    string `json:"role" validate:"required,oneof=user assistant"`
		Content string `json:"content" validate:"required,notblank"`
	}

	ChatRequest struct {
		Messages []ChatMessage `json:"messages" validate:"required,min=1,dive"`
	}

	ChatResponse struct {
		Answer string `json:"answer"`
	}
)

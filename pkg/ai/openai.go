package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mein-essen/domain"
)

type openAIClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewOpenAIClient(cfg Config) Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &openAIClient{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *openAIClient) InlineImages() bool { return false }

func (c *openAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]map[string]interface{}, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, map[string]interface{}{"role": domain.RoleSystem, "content": req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, map[string]interface{}{"role": m.Role, "content": m.Content})
	}
	return c.send(ctx, req, messages)
}

func (c *openAIClient) CompleteWithImage(ctx context.Context, req CompletionRequest, image ImageInput) (string, error) {
	url := image.URL
	if url == "" {
		url = DataURL(image.MimeType, image.Data)
	}

	prompt := ""
	for _, m := range req.Messages {
		prompt += m.Content
	}

	messages := []map[string]interface{}{}
	if req.System != "" {
		messages = append(messages, map[string]interface{}{"role": domain.RoleSystem, "content": req.System})
	}
	messages = append(messages, map[string]interface{}{
		"role": domain.RoleUser,
		"content": []map[string]interface{}{
			{"type": "text", "text": prompt},
			{"type": "image_url", "image_url": map[string]interface{}{"url": url}},
		},
	})
	return c.send(ctx, req, messages)
}

func (c *openAIClient) send(ctx context.Context, req CompletionRequest, messages []map[string]interface{}) (string, error) {
	if c.apiKey == "" {
		return "", domain.ErrModelNotConfigured
	}

	requestBody := map[string]interface{}{
		"model":       c.model,
		"messages":    messages,
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		requestBody["max_tokens"] = req.MaxTokens
	}
	if req.JSON {
		requestBody["response_format"] = map[string]string{"type": "json_object"}
	}

	requestJSON, err := json.Marshal(requestBody)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(requestJSON))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai API error: %s - %s", resp.Status, string(bodyBytes))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", err
	}

	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", domain.ErrModelEmptyResponse
	}
	return completion.Choices[0].Message.Content, nil
}

package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mein-essen/domain"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type geminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewGeminiClient(cfg Config) Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = geminiBaseURL
	}
	return &geminiClient{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *geminiClient) InlineImages() bool { return true }

func geminiRole(role string) string {
	if role == domain.RoleAssistant {
		return "model"
	}
	return "user"
}

func (c *geminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	contents := make([]map[string]interface{}, 0, len(req.Messages))
	for _, m := range req.Messages {
		// conversations must open with a user turn
		if len(contents) == 0 && m.Role == domain.RoleAssistant {
			continue
		}
		contents = append(contents, map[string]interface{}{
			"role":  geminiRole(m.Role),
			"parts": []map[string]interface{}{{"text": m.Content}},
		})
	}
	return c.generate(ctx, req, contents)
}

func (c *geminiClient) CompleteWithImage(ctx context.Context, req CompletionRequest, image ImageInput) (string, error) {
	if len(image.Data) == 0 {
		return "", fmt.Errorf("gemini requires inline image data")
	}

	mimeType := image.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	parts := []map[string]interface{}{}
	for _, m := range req.Messages {
		parts = append(parts, map[string]interface{}{"text": m.Content})
	}
	parts = append(parts, map[string]interface{}{
		"inline_data": map[string]interface{}{
			"mime_type": mimeType,
			"data":      base64.StdEncoding.EncodeToString(image.Data),
		},
	})

	contents := []map[string]interface{}{{"role": "user", "parts": parts}}
	return c.generate(ctx, req, contents)
}

func (c *geminiClient) generate(ctx context.Context, req CompletionRequest, contents []map[string]interface{}) (string, error) {
	if c.apiKey == "" || c.model == "" {
		return "", domain.ErrModelNotConfigured
	}

	generationConfig := map[string]interface{}{
		"temperature": req.Temperature,
		"topP":        0.8,
		"topK":        40,
	}
	if req.MaxTokens > 0 {
		generationConfig["maxOutputTokens"] = req.MaxTokens
	}
	if req.JSON {
		generationConfig["responseMimeType"] = "application/json"
	}

	requestBody := map[string]interface{}{
		"contents":         contents,
		"generationConfig": generationConfig,
	}
	if req.System != "" {
		requestBody["systemInstruction"] = map[string]interface{}{
			"parts": []map[string]interface{}{{"text": req.System}},
		}
	}

	requestJSON, err := json.Marshal(requestBody)
	if err != nil {
		return "", err
	}

	geminiURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, geminiURL, bytes.NewReader(requestJSON))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini API error: %s - %s", resp.Status, string(bodyBytes))
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", domain.ErrModelEmptyResponse
	}

	var text strings.Builder
	for _, p := range geminiResp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", domain.ErrModelEmptyResponse
	}
	return text.String(), nil
}

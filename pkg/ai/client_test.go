package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mein-essen/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, status int, reply string, got *map[string]interface{}, r **http.Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		*r = req.Clone(context.Background())
		assert.NoError(t, json.NewDecoder(req.Body).Decode(got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIComplete(t *testing.T) {
	var body map[string]interface{}
	var req *http.Request
	srv := capture(t, http.StatusOK, `{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`, &body, &req)

	client := NewClient(Config{Provider: ProviderOpenAI, APIKey: "sk-test", Model: "gpt-4o", BaseURL: srv.URL + "/", Timeout: time.Second})
	text, err := client.Complete(context.Background(), CompletionRequest{
		System:   "be brief",
		Messages: UserPrompt("hello"),
		JSON:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)

	assert.Equal(t, "/chat/completions", req.URL.Path)
	assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
	assert.Equal(t, "gpt-4o", body["model"])
	assert.Equal(t, map[string]interface{}{"type": "json_object"}, body["response_format"])

	messages := body["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, "hello", messages[1].(map[string]interface{})["content"])
	assert.False(t, client.InlineImages())
}

func TestOpenAIImageByURL(t *testing.T) {
	var body map[string]interface{}
	var req *http.Request
	srv := capture(t, http.StatusOK, `{"choices":[{"message":{"content":"[]"}}]}`, &body, &req)

	client := NewOpenAIClient(Config{APIKey: "k", Model: "gpt-4o", BaseURL: srv.URL, Timeout: time.Second})
	_, err := client.CompleteWithImage(context.Background(), CompletionRequest{Messages: UserPrompt("read")}, ImageInput{URL: "https://cdn/r.jpg"})
	require.NoError(t, err)

	content := body["messages"].([]interface{})[0].(map[string]interface{})["content"].([]interface{})
	require.Len(t, content, 2)
	assert.Equal(t, "read", content[0].(map[string]interface{})["text"])
	imageURL := content[1].(map[string]interface{})["image_url"].(map[string]interface{})
	assert.Equal(t, "https://cdn/r.jpg", imageURL["url"])
}

func TestOpenAIErrors(t *testing.T) {
	var body map[string]interface{}
	var req *http.Request
	srv := capture(t, http.StatusTooManyRequests, `{"error":"slow down"}`, &body, &req)

	client := NewOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second})
	_, err := client.Complete(context.Background(), CompletionRequest{Messages: UserPrompt("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "slow down")

	empty := capture(t, http.StatusOK, `{"choices":[]}`, &body, &req)
	client = NewOpenAIClient(Config{APIKey: "k", BaseURL: empty.URL, Timeout: time.Second})
	_, err = client.Complete(context.Background(), CompletionRequest{Messages: UserPrompt("x")})
	assert.ErrorIs(t, err, domain.ErrModelEmptyResponse)

	unconfigured := NewOpenAIClient(Config{Timeout: time.Second})
	_, err = unconfigured.Complete(context.Background(), CompletionRequest{})
	assert.ErrorIs(t, err, domain.ErrModelNotConfigured)
}

func TestGeminiComplete(t *testing.T) {
	var body map[string]interface{}
	var req *http.Request
	srv := capture(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"Hal"},{"text":"lo"}]}}]}`, &body, &req)

	client := NewClient(Config{Provider: ProviderGemini, APIKey: "g-key", Model: "gemini-1.5-flash", BaseURL: srv.URL, Timeout: time.Second})
	text, err := client.Complete(context.Background(), CompletionRequest{
		System: "context",
		Messages: []domain.ChatMessage{
			{Role: domain.RoleAssistant, Content: "Hi, how can I help?"},
			{Role: domain.RoleUser, Content: "what did I buy?"},
			{Role: domain.RoleAssistant, Content: "milk"},
			{Role: domain.RoleUser, Content: "and?"},
		},
		JSON: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hallo", text)

	assert.Equal(t, "/models/gemini-1.5-flash:generateContent", req.URL.Path)
	assert.Equal(t, "g-key", req.URL.Query().Get("key"))

	contents := body["contents"].([]interface{})
	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].(map[string]interface{})["role"])
	assert.Equal(t, "model", contents[1].(map[string]interface{})["role"])
	assert.NotNil(t, body["systemInstruction"])
	assert.Equal(t, "application/json", body["generationConfig"].(map[string]interface{})["responseMimeType"])
	assert.True(t, client.InlineImages())
}

func TestGeminiImageInline(t *testing.T) {
	var body map[string]interface{}
	var req *http.Request
	srv := capture(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"[]"}]}}]}`, &body, &req)

	client := NewGeminiClient(Config{APIKey: "k", Model: "m", BaseURL: srv.URL, Timeout: time.Second})
	_, err := client.CompleteWithImage(context.Background(), CompletionRequest{Messages: UserPrompt("read")},
		ImageInput{Data: []byte("hi"), MimeType: "image/png"})
	require.NoError(t, err)

	parts := body["contents"].([]interface{})[0].(map[string]interface{})["parts"].([]interface{})
	require.Len(t, parts, 2)
	inline := parts[1].(map[string]interface{})["inline_data"].(map[string]interface{})
	assert.Equal(t, "image/png", inline["mime_type"])
	assert.Equal(t, "aGk=", inline["data"])

	_, err = client.CompleteWithImage(context.Background(), CompletionRequest{}, ImageInput{URL: "https://cdn/r.jpg"})
	assert.Error(t, err)
}

func TestGeminiEmptyCandidates(t *testing.T) {
	var body map[string]interface{}
	var req *http.Request
	srv := capture(t, http.StatusOK, `{"candidates":[]}`, &body, &req)

	client := NewGeminiClient(Config{APIKey: "k", Model: "m", BaseURL: srv.URL, Timeout: time.Second})
	_, err := client.Complete(context.Background(), CompletionRequest{Messages: UserPrompt("x")})
	assert.ErrorIs(t, err, domain.ErrModelEmptyResponse)
}

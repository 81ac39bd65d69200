package chatgpt

import (
	"context"
	"encoding/json"
	"fmt"
	"linerelay/internal/conversation/models"
	"linerelay/pkg/config"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistory struct {
	items []models.HistoryItem
}

func (f *fakeHistory) Window(ctx context.Context, userKey string, limit int) []models.HistoryItem {
	if len(f.items) > limit {
		return f.items[len(f.items)-limit:]
	}
	return f.items
}

func testConfig() *config.Config {
	return &config.Config{
		OpenAIModel:		"gpt-4o",
		HistoryWindow:		10,
		BackendTimeoutSec:	5,
	}
}

func serviceWithServer(t *testing.T, cfg *config.Config, history historyProvider, handler http.HandlerFunc) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	clientCfg := openai.DefaultConfig("test-key")
	clientCfg.BaseURL = server.URL + "/v1"
	return newService(openai.NewClientWithConfig(clientCfg), cfg, history)
}

func completionJSON(content string) string {
	resp := openai.ChatCompletionResponse{
		ID:	"chatcmpl-test",
		Object:	"chat.completion",
		Model:	"gpt-4o",
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: "assistant", Content: content}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestReplyBuildsPromptInOrder(t *testing.T) {
	history := &fakeHistory{items: []models.HistoryItem{
		{Role: "user", Content: "眠れません"},
		{Role: "assistant", Content: "眠れなくてお困りなのですね。"},
	}}

	var got openai.ChatCompletionRequest
	svc := serviceWithServer(t, testConfig(), history, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionJSON("はい。"))
	})

	answer := svc.Reply(context.Background(), "U1", "最近とても忙しいです")

	assert.Equal(t, "はい。", answer)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, CurrentPrompt().Text, got.Messages[0].Content)
	assert.Equal(t, "眠れません", got.Messages[1].Content)
	assert.Equal(t, "眠れなくてお困りなのですね。", got.Messages[2].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[3].Role)
	assert.Equal(t, "最近とても忙しいです", got.Messages[3].Content)
	assert.Equal(t, float32(1), got.Temperature)
	assert.Equal(t, maxReplyTokens, got.MaxTokens)
}

func TestReplyTrimsResponse(t *testing.T) {
	svc := serviceWithServer(t, testConfig(), &fakeHistory{}, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionJSON("  ответ с пробелами  \n"))
	})

	assert.Equal(t, "ответ с пробелами", svc.Reply(context.Background(), "U1", "вопрос"))
}

func TestReplyFallbackOnServerError(t *testing.T) {
	svc := serviceWithServer(t, testConfig(), &fakeHistory{}, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	})

	assert.Equal(t, FallbackText, svc.Reply(context.Background(), "U1", "вопрос"))
}

func TestReplyFallbackOnTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.BackendTimeoutSec = 1

	svc := serviceWithServer(t, cfg, &fakeHistory{}, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	})

	start := time.Now()
	assert.Equal(t, FallbackText, svc.Reply(context.Background(), "U1", "вопрос"))
	assert.Less(t, time.Since(start), 3*time.Second, "таймаут должен сработать раньше ответа")
}

func TestReplyFallbackOnEmptyChoices(t *testing.T) {
	svc := serviceWithServer(t, testConfig(), &fakeHistory{}, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"chatcmpl-test","object":"chat.completion","choices":[]}`)
	})

	assert.Equal(t, FallbackText, svc.Reply(context.Background(), "U1", "вопрос"))
}

func TestReplyStreamConcatenatesFragments(t *testing.T) {
	cfg := testConfig()
	cfg.OpenAIStream = true

	chunks := []string{"こん", "にち", "は。"}
	svc := serviceWithServer(t, cfg, &fakeHistory{}, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range chunks {
			payload, _ := json.Marshal(openai.ChatCompletionStreamResponse{
				ID:	"chatcmpl-test",
				Object:	"chat.completion.chunk",
				Choices: []openai.ChatCompletionStreamChoice{
					{Delta: openai.ChatCompletionStreamChoiceDelta{Content: chunk}},
				},
			})
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	assert.Equal(t, "こんにちは。", svc.Reply(context.Background(), "U1", "挨拶して"))
}

func TestCurrentPromptVersioned(t *testing.T) {
	p := CurrentPrompt()
	assert.NotEmpty(t, p.Version)
	assert.Contains(t, p.Text, "Listen-Back")
}

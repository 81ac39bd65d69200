package chatgpt

import (
	"context"
	"errors"
	"io"
	"linerelay/internal/conversation/models"
	"linerelay/pkg/config"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// FallbackText — единственный ответ, который пользователь видит при любом
// сбое генеративного бэкенда.
const FallbackText = "申し訳ございません。うまくお答えできませんでした。もう一度お試しください。"

const maxReplyTokens = 1024

type historyProvider interface {
	Window(ctx context.Context, userKey string, limit int) []models.HistoryItem
}

type Service struct {
	client	*openai.Client
	history	historyProvider
	model	string
	window	int
	timeout	time.Duration
	stream	bool
}

func NewService(cfg *config.Config, history historyProvider) *Service {
	return newService(openai.NewClient(cfg.OpenAIKey), cfg, history)
}

func newService(client *openai.Client, cfg *config.Config, history historyProvider) *Service {
	return &Service{
		client:		client,
		history:	history,
		model:		cfg.OpenAIModel,
		window:		cfg.HistoryWindow,
		timeout:	time.Duration(cfg.BackendTimeoutSec) * time.Second,
		stream:		cfg.OpenAIStream,
	}
}

// Reply строит промпт из системной инструкции, окна диалога и текущей
// реплики и запрашивает бэкенд. Наружу никогда не возвращает ошибку:
// любой сбой поглощается и заменяется FallbackText.
func (s *Service) Reply(ctx context.Context, userKey string, userText string) string {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:		s.model,
		Messages:	s.buildMessages(ctx, userKey, userText),
		Temperature:	1,
		MaxTokens:	maxReplyTokens,
	}

	var text string
	var err error
	if s.stream {
		text, err = s.completeStream(ctx, req)
	} else {
		text, err = s.complete(ctx, req)
	}
	if err != nil {
		logrus.Errorf("Ошибка при запросе к OpenAI для пользователя %s: %v", userKey, err)
		return FallbackText
	}

	return strings.TrimSpace(text)
}

func (s *Service) buildMessages(ctx context.Context, userKey string, userText string) []openai.ChatCompletionMessage {
	var messages []openai.ChatCompletionMessage

	messages = append(messages, openai.ChatCompletionMessage{
		Role:		openai.ChatMessageRoleSystem,
		Content:	CurrentPrompt().Text,
	})

	for _, item := range s.history.Window(ctx, userKey, s.window) {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:		item.Role,
			Content:	item.Content,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:		openai.ChatMessageRoleUser,
		Content:	userText,
	})

	return messages
}

func (s *Service) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("нет ответа от OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// completeStream склеивает фрагменты в порядке получения; итог
// обрабатывается так же, как обычный полный ответ.
func (s *Service) completeStream(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	stream, err := s.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if len(resp.Choices) > 0 {
			sb.WriteString(resp.Choices[0].Delta.Content)
		}
	}

	if sb.Len() == 0 {
		return "", errors.New("пустой потоковый ответ от OpenAI")
	}
	return sb.String(), nil
}

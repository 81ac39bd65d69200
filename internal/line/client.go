package line

import (
	"fmt"
	"linerelay/pkg/config"
	"net/http"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// Client — тонкая обёртка над LINE SDK: проверка подписи, одноразовый
// ответ по reply-token и push-доставка по идентификатору пользователя.
type Client struct {
	bot *linebot.Client
}

func NewClient(cfg *config.Config) (*Client, error) {
	bot, err := linebot.New(cfg.LineChannelSecret, cfg.LineChannelToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка при инициализации LINE клиента: %w", err)
	}
	return &Client{bot: bot}, nil
}

// ParseRequest проверяет X-Line-Signature и разбирает тело вебхука.
// При неверной подписи возвращает linebot.ErrInvalidSignature.
func (c *Client) ParseRequest(r *http.Request) ([]*linebot.Event, error) {
	return c.bot.ParseRequest(r)
}

func (c *Client) ReplyOnce(replyToken, text string) error {
	if _, err := c.bot.ReplyMessage(replyToken, linebot.NewTextMessage(text)).Do(); err != nil {
		return fmt.Errorf("ошибка при отправке ответа: %w", err)
	}
	return nil
}

func (c *Client) Push(userKey, text string) error {
	if _, err := c.bot.PushMessage(userKey, linebot.NewTextMessage(text)).Do(); err != nil {
		return fmt.Errorf("ошибка при push-отправке: %w", err)
	}
	return nil
}

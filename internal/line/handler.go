package line

import (
	"context"
	"errors"
	"linerelay/internal/dispatch"
	"net/http"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/sirupsen/logrus"
)

type controller interface {
	HandleMessage(ctx context.Context, ev dispatch.InboundEvent)
}

type Handler struct {
	client		*Client
	controller	controller
}

func NewHandler(client *Client, ctrl controller) *Handler {
	return &Handler{
		client:		client,
		controller:	ctrl,
	}
}

// HandleWebhook: подпись проверяется до любых побочных эффектов.
// Неверная подпись — 400 и полный отказ от обработки.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	events, err := h.client.ParseRequest(r)
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			logrus.Warn("Вебхук с неверной подписью отклонён")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		logrus.Errorf("Ошибка при разборе вебхука: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	for _, event := range events {
		if event.Type != linebot.EventTypeMessage {
			continue
		}
		message, ok := event.Message.(*linebot.TextMessage)
		if !ok {
			continue
		}

		var userKey string
		if event.Source != nil {
			userKey = event.Source.UserID
		}

		h.controller.HandleMessage(r.Context(), dispatch.InboundEvent{
			UserKey:	userKey,
			ReplyToken:	event.ReplyToken,
			Text:		message.Text,
		})
	}

	w.WriteHeader(http.StatusOK)
}

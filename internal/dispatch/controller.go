package dispatch

import (
	"context"
	"fmt"
	"linerelay/internal/chatgpt"
	"linerelay/internal/conversation/models"
	"linerelay/internal/gate"
	"linerelay/internal/ingress"
	"linerelay/pkg/config"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	resetPhrase	= "スタート"

	welcomeText		= "頼りにしてくださりありがとうございます。今日はどんなお話をうかがいましょうか？"
	ackText			= "お返事を考えています。少々お待ちください…"
	invalidInputText	= "申し訳ございませんが、メッセージの形式に問題があります。もう一度お試しください。"
	missingUserText		= "エラーが発生しました。"
	internalErrorText	= "申し訳ございません。一時的なエラーが発生しました。しばらくしてから再度お試しください。"
)

const slowThreshold = 5 * time.Second

type InboundEvent struct {
	UserKey		string
	ReplyToken	string
	Text		string
}

type replier interface {
	ReplyOnce(replyToken, text string) error
	Push(userKey, text string) error
}

type gatekeeper interface {
	Decide(ctx context.Context, userKey string) gate.Decision
}

type invoker interface {
	Reply(ctx context.Context, userKey, userText string) string
}

type recordStore interface {
	Append(ctx context.Context, rec models.Record) error
	ResetSession(ctx context.Context, userKey string) error
}

// Controller — конвейер обработки входящего события. Синхронная часть
// ограничена валидацией и подтверждением; всё медленное (биллинг, бэкенд,
// журнал, доставка) уходит в пул.
type Controller struct {
	pool		*Pool
	replier		replier
	gate		gatekeeper
	invoker		invoker
	store		recordStore
	quotaText	string
	slowAfter	time.Duration
	locks		*lockTable
}

func NewController(cfg *config.Config, pool *Pool, rep replier, g gatekeeper, inv invoker, store recordStore) *Controller {
	return &Controller{
		pool:		pool,
		replier:	rep,
		gate:		g,
		invoker:	inv,
		store:		store,
		quotaText: fmt.Sprintf(
			"利用回数の上限に達しました。24時間後に再度お試しください。こちらから回数無制限の有料プランに申し込むこともできます：%s",
			cfg.UpsellURL),
		slowAfter:	slowThreshold,
		locks:		newLockTable(),
	}
}

// HandleMessage выполняет синхронную фазу: санитизация, быстрый путь сброса
// сессии, немедленное подтверждение. Reply-token одноразовый и потребляется
// ровно один раз именно здесь.
func (c *Controller) HandleMessage(ctx context.Context, ev InboundEvent) {
	eventID := uuid.NewString()

	if ev.UserKey == "" {
		logrus.Warnf("[%s] Событие без идентификатора пользователя", eventID)
		c.replyOnce(eventID, ev.ReplyToken, missingUserText)
		return
	}

	clean, err := ingress.Sanitize(ev.Text)
	if err != nil {
		logrus.Warnf("[%s] Отклонён ввод пользователя %s: %v", eventID, ev.UserKey, err)
		c.replyOnce(eventID, ev.ReplyToken, invalidInputText)
		return
	}

	if clean == resetPhrase {
		l := c.locks.acquire(ev.UserKey)
		if err := c.store.ResetSession(ctx, ev.UserKey); err != nil {
			// деградация: сессия продолжится со старым контекстом
			logrus.Errorf("[%s] Ошибка при сбросе сессии %s: %v", eventID, ev.UserKey, err)
		}
		c.locks.release(ev.UserKey, l)
		c.replyOnce(eventID, ev.ReplyToken, welcomeText)
		return
	}

	c.replyOnce(eventID, ev.ReplyToken, ackText)

	received := time.Now()
	c.pool.Submit(func(jobCtx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				logrus.Errorf("[%s] Непредвиденная ошибка при обработке события для %s: %v",
					eventID, ev.UserKey, r)
				if err := c.replier.Push(ev.UserKey, internalErrorText); err != nil {
					logrus.Errorf("[%s] Ошибка при доставке сообщения об ошибке: %v", eventID, err)
				}
			}
		}()
		c.process(jobCtx, eventID, ev.UserKey, clean, received)
	})
}

func (c *Controller) process(ctx context.Context, eventID, userKey, text string, received time.Time) {
	l := c.locks.acquire(userKey)
	defer c.locks.release(userKey, l)

	decision := c.gate.Decide(ctx, userKey)
	prompt := chatgpt.CurrentPrompt()
	now := time.Now()

	// реплика пользователя пишется до обращения к бэкенду
	if err := c.store.Append(ctx, models.Record{
		Timestamp:	now,
		Sender:		models.SenderUser,
		LineID:		userKey,
		StripeID:	decision.BillingRef,
		Message:	text,
		IsActive:	true,
		SysPrompt:	prompt.Version,
	}); err != nil {
		logrus.Errorf("[%s] Ошибка при записи реплики пользователя %s: %v", eventID, userKey, err)
	}

	var answer string
	if decision.Allowed {
		answer = c.invoker.Reply(ctx, userKey, text)
	} else {
		answer = c.quotaText
	}

	// ответ системы пишется до попытки доставки
	if err := c.store.Append(ctx, models.Record{
		Timestamp:	time.Now(),
		Sender:		models.SenderSystem,
		LineID:		userKey,
		StripeID:	decision.BillingRef,
		Message:	answer,
		IsActive:	true,
		SysPrompt:	prompt.Version,
	}); err != nil {
		logrus.Errorf("[%s] Ошибка при записи ответа системы для %s: %v", eventID, userKey, err)
	}

	if err := c.replier.Push(userKey, answer); err != nil {
		// повторного канала доставки нет
		logrus.Errorf("[%s] Ошибка при push-доставке пользователю %s: %v", eventID, userKey, err)
	}

	if elapsed := time.Since(received); elapsed > c.slowAfter {
		logrus.Warnf("[%s] Медленная обработка для %s: %s (решение: %s)",
			eventID, userKey, elapsed, decision.Reason)
	}
}

func (c *Controller) replyOnce(eventID, replyToken, text string) {
	if err := c.replier.ReplyOnce(replyToken, text); err != nil {
		logrus.Errorf("[%s] Ошибка при ответе по reply-token: %v", eventID, err)
	}
}

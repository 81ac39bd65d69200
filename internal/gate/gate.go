package gate

import (
	"context"
	"linerelay/internal/billing"
	"linerelay/pkg/config"
	"time"

	"github.com/sirupsen/logrus"
)

type Reason string

const (
	ReasonOwner		Reason	= "owner"
	ReasonSubscription	Reason	= "subscription"
	ReasonQuota		Reason	= "quota"
	ReasonQuotaExceeded	Reason	= "quota_exceeded"
)

type Decision struct {
	Allowed		bool
	Reason		Reason
	BillingRef	*string
}

type entitlements interface {
	SubscriptionDetails(ctx context.Context, userKey string) (*billing.Entitlement, error)
}

type replyCounter interface {
	CountSystemRepliesSince(ctx context.Context, userKey string, since time.Time) int
}

type Service struct {
	ownerID	string
	limit	int
	billing	entitlements
	counter	replyCounter
}

func NewService(cfg *config.Config, billingSvc entitlements, counter replyCounter) *Service {
	return &Service{
		ownerID:	cfg.OwnerLineID,
		limit:		cfg.DailyFreeLimit,
		billing:	billingSvc,
		counter:	counter,
	}
}

// Decide проверяет право пользователя на сгенерированный ответ:
// владелец — всегда, активная подписка — всегда, иначе скользящее
// окно из limit ответов за последние 24 часа.
func (s *Service) Decide(ctx context.Context, userKey string) Decision {
	if s.ownerID != "" && userKey == s.ownerID {
		return Decision{Allowed: true, Reason: ReasonOwner}
	}

	var billingRef *string
	ent, err := s.billing.SubscriptionDetails(ctx, userKey)
	if err != nil {
		// сбой биллинга трактуем как отсутствие подписки
		logrus.Errorf("Ошибка биллинга для пользователя %s: %v", userKey, err)
	} else if ent != nil {
		ref := ent.CustomerID
		billingRef = &ref
		if ent.Status == billing.StatusActive {
			return Decision{Allowed: true, Reason: ReasonSubscription, BillingRef: billingRef}
		}
	}

	since := time.Now().Add(-24 * time.Hour)
	used := s.counter.CountSystemRepliesSince(ctx, userKey, since)
	if used < s.limit {
		return Decision{Allowed: true, Reason: ReasonQuota, BillingRef: billingRef}
	}

	logrus.Infof("Пользователь %s исчерпал лимит: %d ответов за 24 часа", userKey, used)
	return Decision{Allowed: false, Reason: ReasonQuotaExceeded, BillingRef: billingRef}
}

package billing

import (
	"context"
	"fmt"
	"linerelay/pkg/config"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/subscription"
)

// Entitlement — статус подписки пользователя по данным Stripe.
type Entitlement struct {
	Status		string
	CustomerID	string
}

const StatusActive = string(stripe.SubscriptionStatusActive)

type Service struct {
	priceID	string
	cache	*entitlementCache
	list	func(ctx context.Context) ([]*stripe.Subscription, error)
}

func NewService(cfg *config.Config) *Service {
	stripe.Key = cfg.StripeSecretKey

	return &Service{
		priceID:	cfg.StripePriceID,
		cache:		newEntitlementCache(30 * time.Second),
		list:		listSubscriptions,
	}
}

// SubscriptionDetails ищет активную подписку с нужным тарифом и метаданными
// line_user, равными ключу пользователя. Возвращает nil, если подписки нет.
// Результат (включая отсутствие) кэшируется на короткий срок, чтобы не
// упираться в лимиты Stripe при всплесках трафика.
func (s *Service) SubscriptionDetails(ctx context.Context, userKey string) (*Entitlement, error) {
	if ent, ok := s.cache.get(userKey); ok {
		return ent, nil
	}

	subs, err := s.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить список подписок: %w", err)
	}

	var found *Entitlement
	for _, sub := range subs {
		if !s.matches(sub, userKey) {
			continue
		}
		found = &Entitlement{
			Status:		string(sub.Status),
			CustomerID:	sub.Customer.ID,
		}
		break
	}

	s.cache.put(userKey, found)
	logrus.Debugf("Подписка пользователя %s: %v", userKey, found)
	return found, nil
}

func (s *Service) matches(sub *stripe.Subscription, userKey string) bool {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return false
	}
	price := sub.Items.Data[0].Price
	if price == nil || price.ID != s.priceID {
		return false
	}
	if sub.Customer == nil {
		return false
	}
	return sub.Metadata["line_user"] == userKey
}

func listSubscriptions(ctx context.Context) ([]*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(100)

	var subs []*stripe.Subscription
	iter := subscription.List(params)
	for iter.Next() {
		subs = append(subs, iter.Subscription())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

package conversation

import (
	"context"
	"linerelay/internal/conversation/models"
	"time"

	"github.com/sirupsen/logrus"
)

type store interface {
	Append(ctx context.Context, rec models.Record) error
	Window(ctx context.Context, userKey string, limit int) ([]models.HistoryItem, error)
	ResetSession(ctx context.Context, userKey string) error
	CountSystemRepliesSince(ctx context.Context, userKey string, since time.Time) (int, error)
}

type Service struct {
	repo store
}

func NewService(repo *Repository) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) Append(ctx context.Context, rec models.Record) error {
	logrus.Debugf("Сохранение записи (%s) для пользователя %s", rec.Sender, rec.LineID)
	return s.repo.Append(ctx, rec)
}

// Window при сбое хранилища возвращает пустую историю:
// диалог деградирует до stateless, а не падает.
func (s *Service) Window(ctx context.Context, userKey string, limit int) []models.HistoryItem {
	history, err := s.repo.Window(ctx, userKey, limit)
	if err != nil {
		logrus.Errorf("Ошибка при получении истории пользователя %s: %v", userKey, err)
		return []models.HistoryItem{}
	}
	return history
}

func (s *Service) ResetSession(ctx context.Context, userKey string) error {
	logrus.Debugf("Сброс сессии пользователя %s", userKey)
	return s.repo.ResetSession(ctx, userKey)
}

// CountSystemRepliesSince при сбое возвращает 0 — квота не должна
// блокировать пользователя из-за временной недоступности базы.
func (s *Service) CountSystemRepliesSince(ctx context.Context, userKey string, since time.Time) int {
	count, err := s.repo.CountSystemRepliesSince(ctx, userKey, since)
	if err != nil {
		logrus.Errorf("Ошибка при подсчёте ответов для пользователя %s: %v", userKey, err)
		return 0
	}
	return count
}

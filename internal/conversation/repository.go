package conversation

import (
	"context"
	"fmt"
	"linerelay/internal/conversation/models"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Append(ctx context.Context, rec models.Record) error {
	query := `
		INSERT INTO relay_logs (timestamp, sender, line_id, stripe_id, message, is_active, sys_prompt)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.Timestamp, rec.Sender, rec.LineID, rec.StripeID, rec.Message, rec.IsActive, rec.SysPrompt)
	if err != nil {
		return fmt.Errorf("не удалось сохранить запись диалога: %w", err)
	}

	return nil
}

func (r *Repository) Window(ctx context.Context, userKey string, limit int) ([]models.HistoryItem, error) {
	// id DESC разрешает совпадающие timestamp по порядку вставки
	query := `
		SELECT
			CASE WHEN sender = 'user' THEN 'user' ELSE 'assistant' END AS role,
			message AS content
		FROM relay_logs
		WHERE line_id = $1 AND is_active = TRUE
		ORDER BY timestamp DESC, id DESC
		LIMIT $2
	`

	var recent []models.HistoryItem
	if err := r.db.SelectContext(ctx, &recent, query, userKey, limit); err != nil {
		return nil, fmt.Errorf("не удалось получить историю диалога: %w", err)
	}

	// разворачиваем в хронологический порядок
	history := make([]models.HistoryItem, len(recent))
	for i, item := range recent {
		history[len(recent)-1-i] = item
	}

	return history, nil
}

func (r *Repository) ResetSession(ctx context.Context, userKey string) error {
	query := `
		UPDATE relay_logs SET is_active = FALSE
		WHERE line_id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, userKey); err != nil {
		return fmt.Errorf("не удалось закрыть сессию пользователя: %w", err)
	}

	return nil
}

func (r *Repository) CountSystemRepliesSince(ctx context.Context, userKey string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM relay_logs
		WHERE sender = 'system' AND line_id = $1 AND timestamp > $2
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userKey, since); err != nil {
		return 0, fmt.Errorf("не удалось подсчитать ответы системы: %w", err)
	}

	return count, nil
}

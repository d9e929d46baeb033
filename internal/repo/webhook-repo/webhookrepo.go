package webhookrepo

import (
	"context"
	"errors"

	"github.com/gmarket/backend/internal/domain"
	"github.com/gmarket/backend/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// Insert writes the audit row. The unique (processor, event_id) index makes it
// the idempotency gate: a false return means the event was already delivered.
func (r *Repository) Insert(ctx context.Context, webhook *domain.PaymentWebhook) (bool, error) {
	query := `
		INSERT INTO payment_webhooks (processor, event_id, order_id, status, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (processor, event_id) DO NOTHING
		RETURNING id, received_at
	`
	err := r.db.QueryRow(ctx, query,
		webhook.Processor, webhook.EventID, webhook.OrderID, webhook.Status, webhook.Payload,
	).Scan(&webhook.ID, &webhook.ReceivedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		zap.L().Error("can't save payment webhook", zap.Error(err))
		return false, err
	}
	return true, nil
}

func (r *Repository) MarkProcessed(ctx context.Context, webhookID int) error {
	_, err := r.db.Exec(ctx, "UPDATE payment_webhooks SET processed = TRUE WHERE id = $1", webhookID)
	if err != nil {
		zap.L().Error("can't mark webhook processed", zap.Error(err))
		return err
	}
	return nil
}

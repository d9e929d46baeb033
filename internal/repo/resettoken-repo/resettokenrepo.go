package resettokenrepo

import (
	"context"
	"errors"
	"time"

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

func (r *Repository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, token.UserID, token.Token, token.ExpiresAt).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		zap.L().Error("can't save reset token", zap.Error(err))
		return err
	}
	return nil
}

// Consume deletes the token in the same statement that reads it, so a token
// can be redeemed at most once.
func (r *Repository) Consume(ctx context.Context, token string, now time.Time) (*domain.PasswordResetToken, error) {
	query := `
		DELETE FROM password_reset_tokens
		WHERE token = $1 AND expires_at > $2
		RETURNING id, user_id, token, expires_at, created_at
	`
	var t domain.PasswordResetToken
	err := r.db.QueryRow(ctx, query, token, now).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't consume reset token", zap.Error(err))
		return nil, err
	}
	return &t, nil
}

func (r *Repository) DeleteForUser(ctx context.Context, userID int) error {
	_, err := r.db.Exec(ctx, "DELETE FROM password_reset_tokens WHERE user_id = $1", userID)
	if err != nil {
		zap.L().Error("can't delete reset tokens", zap.Error(err))
		return err
	}
	return nil
}

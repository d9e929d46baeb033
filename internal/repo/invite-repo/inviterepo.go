package inviterepo

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

func (r *Repository) FindByCode(ctx context.Context, code string) (*domain.InviteCode, error) {
	query := `
		SELECT id, code, is_active, max_uses, used_count, expires_at, created_by, created_at
		FROM invite_codes
		WHERE code = $1
	`
	var invite domain.InviteCode
	err := r.db.QueryRow(ctx, query, code).Scan(&invite.ID, &invite.Code, &invite.IsActive, &invite.MaxUses,
		&invite.UsedCount, &invite.ExpiresAt, &invite.CreatedBy, &invite.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find invite code", zap.Error(err))
		return nil, err
	}
	return &invite, nil
}

// ConsumeUse increments the usage counter only while the code is active,
// unexpired and below its cap. A false return means the code lost the race or
// is exhausted.
func (r *Repository) ConsumeUse(ctx context.Context, inviteCodeID int, now time.Time) (bool, error) {
	query := `
		UPDATE invite_codes
		SET used_count = used_count + 1
		WHERE id = $1
		  AND is_active
		  AND (max_uses = 0 OR used_count < max_uses)
		  AND (expires_at IS NULL OR expires_at > $2)
	`
	tag, err := r.db.Exec(ctx, query, inviteCodeID, now)
	if err != nil {
		zap.L().Error("can't consume invite use", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) RecordUsage(ctx context.Context, inviteCodeID, userID int) error {
	query := `
		INSERT INTO invite_usage (invite_code_id, user_id)
		VALUES ($1, $2)
	`
	_, err := r.db.Exec(ctx, query, inviteCodeID, userID)
	if err != nil {
		zap.L().Error("can't record invite usage", zap.Error(err))
		return err
	}
	return nil
}

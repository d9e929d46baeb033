package inviterepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/gmarket/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestRepository_FindByCode(t *testing.T) {
	repo, mock := NewMock(t)
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	query := regexp.QuoteMeta(`
		SELECT id, code, is_active, max_uses, used_count, expires_at, created_by, created_at
		FROM invite_codes
		WHERE code = $1
	`)

	tests := []struct {
		name      string
		code      string
		mockSetup func()
		expectErr bool
		result    *domain.InviteCode
	}{
		{
			name: "Code found",
			code: "WELCOME1",
			mockSetup: func() {
				rows := pgxmock.NewRows([]string{"id", "code", "is_active", "max_uses", "used_count", "expires_at", "created_by", "created_at"}).
					AddRow(1, "WELCOME1", true, 10, 4, (*time.Time)(nil), (*int)(nil), createdAt)
				mock.ExpectQuery(query).
					WithArgs("WELCOME1").
					WillReturnRows(rows)
			},
			result: &domain.InviteCode{
				ID:        1,
				Code:      "WELCOME1",
				IsActive:  true,
				MaxUses:   10,
				UsedCount: 4,
				CreatedAt: createdAt,
			},
		},
		{
			name: "Code not found",
			code: "MISSING",
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs("MISSING").
					WillReturnError(pgx.ErrNoRows)
			},
			result: nil,
		},
		{
			name: "Database error",
			code: "WELCOME1",
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs("WELCOME1").
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByCode(context.Background(), tt.code)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.result, result)
			}
		})
	}
}

func TestRepository_ConsumeUse(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	query := regexp.QuoteMeta(`
		UPDATE invite_codes
		SET used_count = used_count + 1
		WHERE id = $1
		  AND is_active
		  AND (max_uses = 0 OR used_count < max_uses)
		  AND (expires_at IS NULL OR expires_at > $2)
	`)

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		consumed  bool
	}{
		{
			name: "Use consumed",
			mockSetup: func() {
				mock.ExpectExec(query).
					WithArgs(1, now).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			consumed: true,
		},
		{
			name: "Cap reached",
			mockSetup: func() {
				mock.ExpectExec(query).
					WithArgs(1, now).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			consumed: false,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectExec(query).
					WithArgs(1, now).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			consumed, err := repo.ConsumeUse(context.Background(), 1, now)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.consumed, consumed)
			}
		})
	}
}

func TestRepository_RecordUsage(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO invite_usage (invite_code_id, user_id)
		VALUES ($1, $2)
	`)).
		WithArgs(1, 42).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.RecordUsage(context.Background(), 1, 42)
	assert.NoError(t, err)
}

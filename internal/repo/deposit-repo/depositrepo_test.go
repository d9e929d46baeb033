package depositrepo

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

func depositRow(d *domain.Deposit) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "user_id", "order_id", "amount_usd", "currency", "crypto_amount", "exchange_rate",
		"status", "is_active", "pay_address", "transaction_hash", "timeout_at", "admin_confirmed_at", "admin_confirmed_by",
		"created_at", "updated_at",
	}).AddRow(
		d.ID, d.UserID, d.OrderID, d.AmountUSD, d.Currency, d.CryptoAmount, d.ExchangeRate,
		d.Status, d.IsActive, d.PayAddress, d.TransactionHash, d.TimeoutAt, d.AdminConfirmedAt, d.AdminConfirmedBy,
		d.CreatedAt, d.UpdatedAt,
	)
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	deposit := &domain.Deposit{
		UserID:       1,
		OrderID:      "gm-550e8400",
		AmountUSD:    100,
		Currency:     "BTC",
		CryptoAmount: 0.0015,
		ExchangeRate: 65000,
		Status:       "pending",
		IsActive:     true,
		PayAddress:   "bc1qtest",
		TimeoutAt:    now.Add(30 * time.Minute),
	}

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO deposits (user_id, order_id, amount_usd, currency, crypto_amount, exchange_rate, status, is_active, pay_address, timeout_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`)).
		WithArgs(1, "gm-550e8400", 100.0, "BTC", 0.0015, 65000.0, "pending", true, "bc1qtest", now.Add(30*time.Minute)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))

	result, err := repo.Create(context.Background(), deposit)
	assert.NoError(t, err)
	assert.Equal(t, 7, result.ID)
	assert.Equal(t, now, result.CreatedAt)
}

func TestRepository_FindByOrderID(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	deposit := &domain.Deposit{
		ID:           7,
		UserID:       1,
		OrderID:      "gm-550e8400",
		AmountUSD:    100,
		Currency:     "BTC",
		CryptoAmount: 0.0015,
		ExchangeRate: 65000,
		Status:       "pending",
		IsActive:     true,
		PayAddress:   "bc1qtest",
		TimeoutAt:    now.Add(30 * time.Minute),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tests := []struct {
		name      string
		orderID   string
		mockSetup func()
		expectErr bool
		result    *domain.Deposit
	}{
		{
			name:    "Deposit found",
			orderID: "gm-550e8400",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT "+depositColumns+" FROM deposits WHERE order_id = $1")).
					WithArgs("gm-550e8400").
					WillReturnRows(depositRow(deposit))
			},
			expectErr: false,
			result:    deposit,
		},
		{
			name:    "Processor-formatted id matched as plain string",
			orderID: "INV-20250601-42",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT "+depositColumns+" FROM deposits WHERE order_id = $1")).
					WithArgs("INV-20250601-42").
					WillReturnError(pgx.ErrNoRows)
			},
			expectErr: false,
			result:    nil,
		},
		{
			name:    "Deposit not found",
			orderID: "gm-unknown",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT "+depositColumns+" FROM deposits WHERE order_id = $1")).
					WithArgs("gm-unknown").
					WillReturnError(pgx.ErrNoRows)
			},
			expectErr: false,
			result:    nil,
		},
		{
			name:    "Database error",
			orderID: "gm-550e8400",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT "+depositColumns+" FROM deposits WHERE order_id = $1")).
					WithArgs("gm-550e8400").
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
			result:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByOrderID(context.Background(), tt.orderID)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.result, result)
			}
		})
	}
}

func TestRepository_ConfirmIfPending(t *testing.T) {
	repo, mock := NewMock(t)
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	hash := "0xabc"
	adminID := 3

	query := regexp.QuoteMeta(`
		UPDATE deposits
		SET status = 'confirmed', is_active = FALSE,
		    transaction_hash = COALESCE($2, transaction_hash),
		    admin_confirmed_at = $4, admin_confirmed_by = $3, updated_at = $4
		WHERE id = $1 AND status = 'pending'
	`)

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		won       bool
	}{
		{
			name: "Transition won",
			mockSetup: func() {
				mock.ExpectExec(query).
					WithArgs(7, &hash, &adminID, at).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			won: true,
		},
		{
			name: "Already resolved",
			mockSetup: func() {
				mock.ExpectExec(query).
					WithArgs(7, &hash, &adminID, at).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			won: false,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectExec(query).
					WithArgs(7, &hash, &adminID, at).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			won, err := repo.ConfirmIfPending(context.Background(), 7, &hash, &adminID, at)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.won, won)
			}
		})
	}
}

func TestRepository_MarkTimedOutForUser(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE deposits
		SET status = 'timed_out', is_active = FALSE, updated_at = $2
		WHERE user_id = $1 AND status = 'pending' AND timeout_at < $2
	`)).
		WithArgs(1, now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	affected, err := repo.MarkTimedOutForUser(context.Background(), 1, now)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), affected)
}

func TestRepository_ExtendTimeout(t *testing.T) {
	repo, mock := NewMock(t)
	extended := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)

	query := regexp.QuoteMeta(`
		UPDATE deposits
		SET timeout_at = timeout_at + make_interval(secs => $2), updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING timeout_at
	`)

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		result    *time.Time
	}{
		{
			name: "Timeout extended",
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs(7, float64(3600)).
					WillReturnRows(pgxmock.NewRows([]string{"timeout_at"}).AddRow(extended))
			},
			result: &extended,
		},
		{
			name: "Deposit not pending",
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs(7, float64(3600)).
					WillReturnError(pgx.ErrNoRows)
			},
			result: nil,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs(7, float64(3600)).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.ExtendTimeout(context.Background(), 7, time.Hour)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.result, result)
			}
		})
	}
}

func TestRepository_Stats(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'confirmed'),
		       COALESCE(SUM(amount_usd) FILTER (WHERE status = 'confirmed'), 0),
		       COALESCE(SUM(amount_usd) FILTER (WHERE status = 'pending'), 0)
		FROM deposits
	`)).
		WillReturnRows(pgxmock.NewRows([]string{"total", "pending", "confirmed", "confirmed_usd", "pending_usd"}).
			AddRow(10, 3, 5, 1250.0, 300.0))

	stats, err := repo.Stats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, &domain.Stats{
		TotalDeposits:     10,
		PendingDeposits:   3,
		ConfirmedDeposits: 5,
		ConfirmedUSD:      1250,
		PendingUSD:        300,
	}, stats)
}

package depositservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gmarket/backend/internal/domain"
	"github.com/gmarket/backend/internal/pg"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Service, *MockDepositRepo, *MockUserRepo, *MockSettingsRepo, *MockRatesProvider, *pg.MockTXManager, *MockNotifier) {
	ctrl := gomock.NewController(t)
	depositRepo := NewMockDepositRepo(ctrl)
	userRepo := NewMockUserRepo(ctrl)
	settingsRepo := NewMockSettingsRepo(ctrl)
	rates := NewMockRatesProvider(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	notifier := NewMockNotifier(ctrl)

	service := New(depositRepo, userRepo, settingsRepo, rates, txManager, notifier)
	defer ctrl.Finish()
	return service, depositRepo, userRepo, settingsRepo, rates, txManager, notifier
}

func passTx(txManager *pg.MockTXManager) {
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
}

func defaultSettings() *domain.Settings {
	return &domain.Settings{
		ID:                   1,
		MinDepositAmount:     10,
		DepositWindowMinutes: 30,
		EnabledCurrencies:    []string{"BTC", "ETH"},
		PayAddresses:         map[string]string{"BTC": "bc1qtest", "ETH": "0xtest"},
	}
}

func TestCreate(t *testing.T) {
	service, depositRepo, _, settingsRepo, rates, _, notifier := NewMock(t)
	ctx := context.Background()

	tests := []struct {
		name          string
		amount        float64
		currency      string
		prepareMock   func()
		expectedError error
	}{
		{
			name:     "Deposit created",
			amount:   100,
			currency: "BTC",
			prepareMock: func() {
				settingsRepo.EXPECT().Get(ctx).Return(defaultSettings(), nil)
				rates.EXPECT().Rate("BTC").Return(65000.0, nil)
				depositRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(ctx context.Context, d *domain.Deposit) (*domain.Deposit, error) {
					d.ID = 7
					return d, nil
				})
				notifier.EXPECT().DepositCreated(ctx, gomock.Any())
			},
		},
		{
			name:     "Amount below minimum",
			amount:   5,
			currency: "BTC",
			prepareMock: func() {
				settingsRepo.EXPECT().Get(ctx).Return(defaultSettings(), nil)
			},
			expectedError: ErrAmountBelowMinimum,
		},
		{
			name:     "Currency not enabled",
			amount:   100,
			currency: "DOGE",
			prepareMock: func() {
				settingsRepo.EXPECT().Get(ctx).Return(defaultSettings(), nil)
			},
			expectedError: ErrCurrencyNotEnabled,
		},
		{
			name:     "Rate unavailable",
			amount:   100,
			currency: "BTC",
			prepareMock: func() {
				settingsRepo.EXPECT().Get(ctx).Return(defaultSettings(), nil)
				rates.EXPECT().Rate("BTC").Return(0.0, errors.New("no rate"))
			},
			expectedError: ErrRateUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			deposit, err := service.Create(ctx, 1, tt.amount, tt.currency)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, deposit)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, StatusPending, deposit.Status)
				assert.True(t, deposit.IsActive)
				assert.NotEmpty(t, deposit.OrderID)
				assert.Equal(t, "bc1qtest", deposit.PayAddress)
				assert.InDelta(t, 0.00153846, deposit.CryptoAmount, 1e-8)
				assert.WithinDuration(t, time.Now().Add(30*time.Minute), deposit.TimeoutAt, time.Minute)
			}
		})
	}
}

func TestListForUser(t *testing.T) {
	service, depositRepo, _, _, _, _, _ := NewMock(t)
	ctx := context.Background()

	deposits := []domain.Deposit{{ID: 7, UserID: 1, Status: StatusTimedOut}}

	depositRepo.EXPECT().MarkTimedOutForUser(ctx, 1, gomock.Any()).Return(int64(1), nil)
	depositRepo.EXPECT().FindByUserID(ctx, 1).Return(deposits, nil)

	result, err := service.ListForUser(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, deposits, result)
}

func TestGet(t *testing.T) {
	service, depositRepo, _, _, _, _, _ := NewMock(t)
	ctx := context.Background()

	tests := []struct {
		name           string
		prepareMock    func()
		expectedError  error
		expectedStatus string
	}{
		{
			name: "Pending deposit inside its window",
			prepareMock: func() {
				deposit := &domain.Deposit{ID: 7, UserID: 1, Status: StatusPending, TimeoutAt: time.Now().Add(10 * time.Minute)}
				depositRepo.EXPECT().FindByID(ctx, 7).Return(deposit, nil)
			},
			expectedStatus: StatusPending,
		},
		{
			name: "Overdue pending deposit is expired on read",
			prepareMock: func() {
				deposit := &domain.Deposit{ID: 7, UserID: 1, Status: StatusPending, IsActive: true, TimeoutAt: time.Now().Add(-time.Minute)}
				depositRepo.EXPECT().FindByID(ctx, 7).Return(deposit, nil)
				depositRepo.EXPECT().MarkTimedOut(ctx, 7).Return(true, nil)
			},
			expectedStatus: StatusTimedOut,
		},
		{
			name: "Lost expiry race re-reads the row",
			prepareMock: func() {
				deposit := &domain.Deposit{ID: 7, UserID: 1, Status: StatusPending, TimeoutAt: time.Now().Add(-time.Minute)}
				confirmed := &domain.Deposit{ID: 7, UserID: 1, Status: StatusConfirmed}
				depositRepo.EXPECT().FindByID(ctx, 7).Return(deposit, nil)
				depositRepo.EXPECT().MarkTimedOut(ctx, 7).Return(false, nil)
				depositRepo.EXPECT().FindByID(ctx, 7).Return(confirmed, nil)
			},
			expectedStatus: StatusConfirmed,
		},
		{
			name: "Owned by another user",
			prepareMock: func() {
				deposit := &domain.Deposit{ID: 7, UserID: 2, Status: StatusPending}
				depositRepo.EXPECT().FindByID(ctx, 7).Return(deposit, nil)
			},
			expectedError: ErrDepositNotFound,
		},
		{
			name: "Deposit missing",
			prepareMock: func() {
				depositRepo.EXPECT().FindByID(ctx, 7).Return(nil, nil)
			},
			expectedError: ErrDepositNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			deposit, err := service.Get(ctx, 1, 7)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, deposit)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedStatus, deposit.Status)
			}
		})
	}
}

func TestAdminAction_Confirm(t *testing.T) {
	service, depositRepo, userRepo, _, _, txManager, notifier := NewMock(t)
	ctx := context.Background()

	pending := &domain.Deposit{ID: 7, UserID: 1, AmountUSD: 100, Status: StatusPending}
	confirmed := &domain.Deposit{ID: 7, UserID: 1, AmountUSD: 100, Status: StatusConfirmed}

	tests := []struct {
		name          string
		prepareMock   func()
		expectedError error
	}{
		{
			name: "Confirmation credits exactly once",
			prepareMock: func() {
				depositRepo.EXPECT().FindByID(ctx, 7).Return(pending, nil)
				passTx(txManager)
				depositRepo.EXPECT().ConfirmIfPending(ctx, 7, gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
				userRepo.EXPECT().CreditBalance(ctx, 1, 100.0).Return(nil)
				depositRepo.EXPECT().FindByID(ctx, 7).Return(confirmed, nil)
				notifier.EXPECT().DepositConfirmed(ctx, confirmed, "admin")
			},
		},
		{
			name: "Replayed confirmation does not credit",
			prepareMock: func() {
				depositRepo.EXPECT().FindByID(ctx, 7).Return(confirmed, nil)
				passTx(txManager)
				depositRepo.EXPECT().ConfirmIfPending(ctx, 7, gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
			},
			expectedError: ErrDepositNotPending,
		},
		{
			name: "Credit failure rolls the confirmation back",
			prepareMock: func() {
				depositRepo.EXPECT().FindByID(ctx, 7).Return(pending, nil)
				passTx(txManager)
				depositRepo.EXPECT().ConfirmIfPending(ctx, 7, gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
				userRepo.EXPECT().CreditBalance(ctx, 1, 100.0).Return(errors.New("database error"))
			},
			expectedError: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			deposit, err := service.AdminAction(ctx, 3, 7, ActionConfirm, "0xabc")
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
				assert.Nil(t, deposit)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, StatusConfirmed, deposit.Status)
			}
		})
	}
}

func TestAdminAction_Extend(t *testing.T) {
	service, depositRepo, _, _, _, _, _ := NewMock(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pending := &domain.Deposit{ID: 7, UserID: 1, Status: StatusPending, TimeoutAt: base}

	t.Run("Extension adds exactly one hour and keeps pending", func(t *testing.T) {
		extended := base.Add(time.Hour)
		after := &domain.Deposit{ID: 7, UserID: 1, Status: StatusPending, TimeoutAt: extended}

		depositRepo.EXPECT().FindByID(ctx, 7).Return(pending, nil)
		depositRepo.EXPECT().ExtendTimeout(ctx, 7, time.Hour).Return(&extended, nil)
		depositRepo.EXPECT().FindByID(ctx, 7).Return(after, nil)

		deposit, err := service.AdminAction(ctx, 3, 7, ActionExtend, "")
		assert.NoError(t, err)
		assert.Equal(t, StatusPending, deposit.Status)
		assert.Equal(t, base.Add(time.Hour), deposit.TimeoutAt)
	})

	t.Run("Extension of a resolved deposit fails", func(t *testing.T) {
		confirmed := &domain.Deposit{ID: 7, UserID: 1, Status: StatusConfirmed}
		depositRepo.EXPECT().FindByID(ctx, 7).Return(confirmed, nil)
		depositRepo.EXPECT().ExtendTimeout(ctx, 7, time.Hour).Return(nil, nil)

		deposit, err := service.AdminAction(ctx, 3, 7, ActionExtend, "")
		assert.ErrorIs(t, err, ErrDepositNotPending)
		assert.Nil(t, deposit)
	})
}

func TestAdminAction_RejectAndInvalid(t *testing.T) {
	service, depositRepo, _, _, _, _, _ := NewMock(t)
	ctx := context.Background()

	pending := &domain.Deposit{ID: 7, UserID: 1, Status: StatusPending}

	t.Run("Rejection marks failed", func(t *testing.T) {
		failed := &domain.Deposit{ID: 7, UserID: 1, Status: StatusFailed}
		depositRepo.EXPECT().FindByID(ctx, 7).Return(pending, nil)
		depositRepo.EXPECT().UpdateStatusIfPending(ctx, 7, StatusFailed, gomock.Any()).Return(true, nil)
		depositRepo.EXPECT().FindByID(ctx, 7).Return(failed, nil)

		deposit, err := service.AdminAction(ctx, 3, 7, ActionReject, "")
		assert.NoError(t, err)
		assert.Equal(t, StatusFailed, deposit.Status)
	})

	t.Run("Unknown action", func(t *testing.T) {
		depositRepo.EXPECT().FindByID(ctx, 7).Return(pending, nil)

		deposit, err := service.AdminAction(ctx, 3, 7, "escalate", "")
		assert.ErrorIs(t, err, ErrInvalidAction)
		assert.Nil(t, deposit)
	})
}

func TestApplyProcessorStatus(t *testing.T) {
	service, depositRepo, userRepo, _, _, txManager, notifier := NewMock(t)
	ctx := context.Background()

	pending := func() *domain.Deposit {
		return &domain.Deposit{ID: 7, UserID: 1, OrderID: "gm-550e8400", AmountUSD: 100, Status: StatusPending, IsActive: true}
	}
	hash := "0xabc"

	tests := []struct {
		name        string
		status      string
		prepareMock func()
		wantDeposit bool
		wantMutated bool
	}{
		{
			name:   "Confirmation credits the balance",
			status: StatusConfirmed,
			prepareMock: func() {
				depositRepo.EXPECT().FindByOrderID(ctx, "gm-550e8400").Return(pending(), nil)
				passTx(txManager)
				depositRepo.EXPECT().ConfirmIfPending(ctx, 7, &hash, (*int)(nil), gomock.Any()).Return(true, nil)
				userRepo.EXPECT().CreditBalance(ctx, 1, 100.0).Return(nil)
				notifier.EXPECT().DepositConfirmed(ctx, gomock.Any(), "webhook").
					Do(func(_ context.Context, d *domain.Deposit, _ string) {
						assert.Equal(t, StatusConfirmed, d.Status)
						assert.False(t, d.IsActive)
						assert.Equal(t, &hash, d.TransactionHash)
					})
			},
			wantDeposit: true,
			wantMutated: true,
		},
		{
			name:   "Replayed confirmation credits nothing",
			status: StatusConfirmed,
			prepareMock: func() {
				depositRepo.EXPECT().FindByOrderID(ctx, "gm-550e8400").Return(pending(), nil)
				passTx(txManager)
				depositRepo.EXPECT().ConfirmIfPending(ctx, 7, &hash, (*int)(nil), gomock.Any()).Return(false, nil)
			},
			wantDeposit: true,
			wantMutated: false,
		},
		{
			name:   "Processor failure marks failed",
			status: StatusFailed,
			prepareMock: func() {
				depositRepo.EXPECT().FindByOrderID(ctx, "gm-550e8400").Return(pending(), nil)
				depositRepo.EXPECT().UpdateStatusIfPending(ctx, 7, StatusFailed, &hash).Return(true, nil)
			},
			wantDeposit: true,
			wantMutated: true,
		},
		{
			name:   "Unknown order id mutates nothing",
			status: StatusConfirmed,
			prepareMock: func() {
				depositRepo.EXPECT().FindByOrderID(ctx, "gm-550e8400").Return(nil, nil)
			},
			wantDeposit: false,
			wantMutated: false,
		},
		{
			name:   "Unmapped status is an audit-only no-op",
			status: "waiting",
			prepareMock: func() {
				depositRepo.EXPECT().FindByOrderID(ctx, "gm-550e8400").Return(pending(), nil)
			},
			wantDeposit: true,
			wantMutated: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			result, mutated, err := service.ApplyProcessorStatus(ctx, "gm-550e8400", tt.status, &hash)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantMutated, mutated)
			if tt.wantDeposit {
				assert.NotNil(t, result)
			} else {
				assert.Nil(t, result)
			}
		})
	}
}

func TestTimeRemaining(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		deposit  *domain.Deposit
		expected time.Duration
	}{
		{
			name:     "Pending with time left",
			deposit:  &domain.Deposit{Status: StatusPending, TimeoutAt: now.Add(10 * time.Minute)},
			expected: 10 * time.Minute,
		},
		{
			name:     "Pending past deadline",
			deposit:  &domain.Deposit{Status: StatusPending, TimeoutAt: now.Add(-time.Minute)},
			expected: 0,
		},
		{
			name:     "Resolved deposit",
			deposit:  &domain.Deposit{Status: StatusConfirmed, TimeoutAt: now.Add(10 * time.Minute)},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TimeRemaining(tt.deposit, now))
		})
	}
}

func TestUrgency(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		deposit  *domain.Deposit
		expected string
	}{
		{
			name:     "Plenty of time",
			deposit:  &domain.Deposit{Status: StatusPending, TimeoutAt: now.Add(time.Hour)},
			expected: UrgencyNormal,
		},
		{
			name:     "Under fifteen minutes",
			deposit:  &domain.Deposit{Status: StatusPending, TimeoutAt: now.Add(10 * time.Minute)},
			expected: UrgencyWarning,
		},
		{
			name:     "Under five minutes",
			deposit:  &domain.Deposit{Status: StatusPending, TimeoutAt: now.Add(3 * time.Minute)},
			expected: UrgencyCritical,
		},
		{
			name:     "Past deadline",
			deposit:  &domain.Deposit{Status: StatusPending, TimeoutAt: now.Add(-time.Minute)},
			expected: UrgencyExpired,
		},
		{
			name:     "Resolved deposit",
			deposit:  &domain.Deposit{Status: StatusConfirmed, TimeoutAt: now.Add(time.Hour)},
			expected: UrgencyExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Urgency(tt.deposit, now))
		})
	}
}

package adminservice

import (
	"context"
	"errors"
	"testing"

	"github.com/gmarket/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Service, *MockUserRepo, *MockDepositRepo, *MockSettingsRepo) {
	ctrl := gomock.NewController(t)
	userRepo := NewMockUserRepo(ctrl)
	depositRepo := NewMockDepositRepo(ctrl)
	settingsRepo := NewMockSettingsRepo(ctrl)

	service := New(userRepo, depositRepo, settingsRepo)
	defer ctrl.Finish()
	return service, userRepo, depositRepo, settingsRepo
}

func TestStats(t *testing.T) {
	service, userRepo, depositRepo, _ := NewMock(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		prepareMock func()
		expectErr   bool
		expected    *domain.Stats
	}{
		{
			name: "Merged stats",
			prepareMock: func() {
				depositRepo.EXPECT().Stats(ctx).Return(&domain.Stats{
					TotalDeposits:     10,
					PendingDeposits:   3,
					ConfirmedDeposits: 5,
					ConfirmedUSD:      1250,
					PendingUSD:        300,
				}, nil)
				userRepo.EXPECT().CountUsers(ctx).Return(20, 18, nil)
			},
			expected: &domain.Stats{
				TotalUsers:        20,
				ActiveUsers:       18,
				TotalDeposits:     10,
				PendingDeposits:   3,
				ConfirmedDeposits: 5,
				ConfirmedUSD:      1250,
				PendingUSD:        300,
			},
		},
		{
			name: "Deposit stats error",
			prepareMock: func() {
				depositRepo.EXPECT().Stats(ctx).Return(nil, errors.New("database error"))
			},
			expectErr: true,
		},
		{
			name: "User count error",
			prepareMock: func() {
				depositRepo.EXPECT().Stats(ctx).Return(&domain.Stats{}, nil)
				userRepo.EXPECT().CountUsers(ctx).Return(0, 0, errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			stats, err := service.Stats(ctx)
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, stats)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, stats)
			}
		})
	}
}

func TestUsers(t *testing.T) {
	service, userRepo, _, _ := NewMock(t)
	ctx := context.Background()

	users := []domain.User{{ID: 1, Username: "alice"}}

	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{name: "Defaults applied", limit: 0, offset: -5, wantLimit: 50, wantOffset: 0},
		{name: "Limit clamped", limit: 1000, offset: 10, wantLimit: 200, wantOffset: 10},
		{name: "Explicit paging kept", limit: 25, offset: 50, wantLimit: 25, wantOffset: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo.EXPECT().List(ctx, tt.wantLimit, tt.wantOffset).Return(users, nil)

			result, err := service.Users(ctx, tt.limit, tt.offset)
			assert.NoError(t, err)
			assert.Equal(t, users, result)
		})
	}
}

func TestUpdateSettings(t *testing.T) {
	service, _, _, settingsRepo := NewMock(t)
	ctx := context.Background()

	settings := &domain.Settings{MinDepositAmount: 25, DepositWindowMinutes: 45}

	t.Run("Settings updated and re-read", func(t *testing.T) {
		settingsRepo.EXPECT().Update(ctx, settings).Return(nil)
		settingsRepo.EXPECT().Get(ctx).Return(settings, nil)

		result, err := service.UpdateSettings(ctx, settings)
		assert.NoError(t, err)
		assert.Equal(t, settings, result)
	})

	t.Run("Update error", func(t *testing.T) {
		settingsRepo.EXPECT().Update(ctx, settings).Return(errors.New("database error"))

		result, err := service.UpdateSettings(ctx, settings)
		assert.Error(t, err)
		assert.Nil(t, result)
	})
}

package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gmarket/backend/internal/domain"
	"github.com/gmarket/backend/internal/dto"
	"github.com/gmarket/backend/internal/service/depositservice"
	pkgauth "github.com/gmarket/backend/pkg/auth"
	"github.com/gmarket/backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*AdminHandler, *MockService, *MockDepositService) {
	ctrl := gomock.NewController(t)
	adminService := NewMockService(ctrl)
	depositService := NewMockDepositService(ctrl)
	handler := New(adminService, depositService)
	defer ctrl.Finish()
	return handler, adminService, depositService
}

func adminRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	ctx := context.WithValue(req.Context(), pkgauth.UserIDKey, 7)
	return req.WithContext(ctx)
}

func TestConfirmDepositHandler(t *testing.T) {
	handler, _, depositService := NewMock(t)

	hash := "0xabc"
	confirmed := &domain.Deposit{
		ID:              5,
		UserID:          1,
		OrderID:         "DEP-5",
		AmountUSD:       100,
		Currency:        "BTC",
		Status:          depositservice.StatusConfirmed,
		TransactionHash: &hash,
		TimeoutAt:       time.Now().Add(-time.Minute),
	}

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Deposit confirmed",
			body: `{"deposit_id":5,"action":"confirm","transaction_hash":"0xabc"}`,
			prepareMock: func() {
				depositService.EXPECT().
					AdminAction(gomock.Any(), 7, 5, "confirm", "0xabc").
					Return(confirmed, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Deposit already resolved",
			body: `{"deposit_id":5,"action":"confirm"}`,
			prepareMock: func() {
				depositService.EXPECT().
					AdminAction(gomock.Any(), 7, 5, "confirm", "").
					Return(nil, depositservice.ErrDepositNotPending)
			},
			expectedCode:  http.StatusConflict,
			expectedError: depositservice.ErrDepositNotPending.Error(),
		},
		{
			name: "Deposit not found",
			body: `{"deposit_id":99,"action":"reject"}`,
			prepareMock: func() {
				depositService.EXPECT().
					AdminAction(gomock.Any(), 7, 99, "reject", "").
					Return(nil, depositservice.ErrDepositNotFound)
			},
			expectedCode:  http.StatusNotFound,
			expectedError: "Deposit not found",
		},
		{
			name: "Unknown action",
			body: `{"deposit_id":5,"action":"freeze"}`,
			prepareMock: func() {
				depositService.EXPECT().
					AdminAction(gomock.Any(), 7, 5, "freeze", "").
					Return(nil, depositservice.ErrInvalidAction)
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: depositservice.ErrInvalidAction.Error(),
		},
		{
			name:          "Invalid request body",
			body:          `{invalid json`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := adminRequest("POST", "/api/admin/deposits/confirm", tt.body)
			rr := httptest.NewRecorder()

			handler.ConfirmDeposit(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				var resp utils.Response
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Error)
			}
			if tt.expectedCode == http.StatusOK {
				var resp dto.DepositResponseDTO
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, depositservice.StatusConfirmed, resp.Status)
				assert.Equal(t, "0xabc", resp.TransactionHash)
			}
		})
	}
}

func TestPendingDepositsHandler(t *testing.T) {
	handler, _, depositService := NewMock(t)

	t.Run("Pending deposits listed with owners", func(t *testing.T) {
		depositService.EXPECT().PendingDeposits(gomock.Any()).Return([]domain.DepositWithUser{
			{
				Deposit: domain.Deposit{
					ID:        1,
					UserID:    3,
					OrderID:   "DEP-1",
					Status:    depositservice.StatusPending,
					TimeoutAt: time.Now().Add(20 * time.Minute),
				},
				Username: "alice",
				Email:    "alice@example.com",
			},
		}, nil)

		req := adminRequest("GET", "/api/admin/deposits/pending", "")
		rr := httptest.NewRecorder()

		handler.PendingDeposits(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp []dto.PendingDepositResponseDTO
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Len(t, resp, 1)
		assert.Equal(t, "alice", resp[0].Username)
		assert.Equal(t, 3, resp[0].UserID)
		assert.Greater(t, resp[0].TimeRemainingSec, int64(0))
	})

	t.Run("Repository error", func(t *testing.T) {
		depositService.EXPECT().PendingDeposits(gomock.Any()).Return(nil, errors.New("database error"))

		req := adminRequest("GET", "/api/admin/deposits/pending", "")
		rr := httptest.NewRecorder()

		handler.PendingDeposits(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestStatsHandler(t *testing.T) {
	handler, adminService, _ := NewMock(t)

	t.Run("Stats returned", func(t *testing.T) {
		adminService.EXPECT().Stats(gomock.Any()).Return(&domain.Stats{
			TotalUsers:        20,
			ActiveUsers:       18,
			TotalDeposits:     10,
			ConfirmedDeposits: 5,
			ConfirmedUSD:      1250,
		}, nil)

		req := adminRequest("GET", "/api/admin/stats", "")
		rr := httptest.NewRecorder()

		handler.Stats(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp dto.StatsResponseDTO
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, 20, resp.TotalUsers)
		assert.Equal(t, 1250.0, resp.ConfirmedUSD)
	})

	t.Run("Service error", func(t *testing.T) {
		adminService.EXPECT().Stats(gomock.Any()).Return(nil, errors.New("database error"))

		req := adminRequest("GET", "/api/admin/stats", "")
		rr := httptest.NewRecorder()

		handler.Stats(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestUsersHandler(t *testing.T) {
	handler, adminService, _ := NewMock(t)

	t.Run("Query paging forwarded", func(t *testing.T) {
		adminService.EXPECT().Users(gomock.Any(), 25, 50).Return([]domain.User{
			{ID: 1, Username: "alice", Email: "alice@example.com", Role: "user", Status: "active"},
		}, nil)

		req := adminRequest("GET", "/api/admin/users?limit=25&offset=50", "")
		rr := httptest.NewRecorder()

		handler.Users(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp []dto.AdminUserResponseDTO
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Len(t, resp, 1)
		assert.Equal(t, "alice", resp[0].Username)
	})

	t.Run("Missing paging params pass zero values through", func(t *testing.T) {
		adminService.EXPECT().Users(gomock.Any(), 0, 0).Return(nil, nil)

		req := adminRequest("GET", "/api/admin/users", "")
		rr := httptest.NewRecorder()

		handler.Users(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, "[]", rr.Body.String())
	})
}

func TestGetSettingsHandler(t *testing.T) {
	handler, adminService, _ := NewMock(t)

	t.Run("API keys are masked", func(t *testing.T) {
		adminService.EXPECT().GetSettings(gomock.Any()).Return(&domain.Settings{
			MinDepositAmount:     10,
			DepositWindowMinutes: 30,
			EnabledCurrencies:    []string{"BTC", "ETH"},
			PayAddresses:         map[string]string{"BTC": "bc1qexample"},
			NowPaymentsAPIKey:    "np-secret-key-1234",
			CoinbaseAPIKey:       "cb",
		}, nil)

		req := adminRequest("GET", "/api/admin/settings", "")
		rr := httptest.NewRecorder()

		handler.GetSettings(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp dto.SettingsResponseDTO
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "****1234", resp.NowPaymentsAPIKey)
		assert.Equal(t, "****", resp.CoinbaseAPIKey)
		assert.Equal(t, "", resp.BitPayAPIKey)
		assert.Equal(t, []string{"BTC", "ETH"}, resp.EnabledCurrencies)
	})
}

func TestUpdateSettingsHandler(t *testing.T) {
	handler, adminService, _ := NewMock(t)

	current := func() *domain.Settings {
		return &domain.Settings{
			MinDepositAmount:     10,
			DepositWindowMinutes: 30,
			EnabledCurrencies:    []string{"BTC", "ETH"},
			PayAddresses:         map[string]string{"BTC": "bc1qexample"},
		}
	}

	t.Run("Partial update merges into current settings", func(t *testing.T) {
		adminService.EXPECT().GetSettings(gomock.Any()).Return(current(), nil)
		adminService.EXPECT().
			UpdateSettings(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, s *domain.Settings) (*domain.Settings, error) {
				assert.Equal(t, 25.0, s.MinDepositAmount)
				assert.Equal(t, 30, s.DepositWindowMinutes)
				return s, nil
			})

		req := adminRequest("PUT", "/api/admin/settings", `{"min_deposit_amount":25}`)
		rr := httptest.NewRecorder()

		handler.UpdateSettings(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp dto.SettingsResponseDTO
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, 25.0, resp.MinDepositAmount)
	})

	t.Run("Non-positive minimum rejected", func(t *testing.T) {
		adminService.EXPECT().GetSettings(gomock.Any()).Return(current(), nil)

		req := adminRequest("PUT", "/api/admin/settings", `{"min_deposit_amount":-1}`)
		rr := httptest.NewRecorder()

		handler.UpdateSettings(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Non-positive window rejected", func(t *testing.T) {
		adminService.EXPECT().GetSettings(gomock.Any()).Return(current(), nil)

		req := adminRequest("PUT", "/api/admin/settings", `{"deposit_window_minutes":0}`)
		rr := httptest.NewRecorder()

		handler.UpdateSettings(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Invalid request body", func(t *testing.T) {
		req := adminRequest("PUT", "/api/admin/settings", `{invalid`)
		rr := httptest.NewRecorder()

		handler.UpdateSettings(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

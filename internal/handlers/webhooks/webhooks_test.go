package webhooks

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gmarket/backend/internal/dto"
	"github.com/gmarket/backend/internal/service/webhookservice"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*WebhookHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func TestPaymentWebhookHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func(body []byte)
		expectedCode int
		expected     dto.WebhookResponseDTO
	}{
		{
			name: "Matched coinbase event",
			body: `{"id":"evt-1","type":"charge:confirmed","data":{"code":"DEP-1"}}`,
			prepareMock: func(body []byte) {
				service.EXPECT().HandleGeneric(gomock.Any(), body).Return(&webhookservice.Result{
					Processor: webhookservice.ProcessorCoinbase,
					Status:    "confirmed",
					OrderID:   "DEP-1",
					Matched:   true,
					Mutated:   true,
				}, nil)
			},
			expectedCode: http.StatusOK,
			expected: dto.WebhookResponseDTO{
				Processor: webhookservice.ProcessorCoinbase,
				Status:    "confirmed",
				Matched:   true,
			},
		},
		{
			name: "Duplicate delivery acknowledged",
			body: `{"payment_id":123,"payment_status":"finished","order_id":"DEP-1"}`,
			prepareMock: func(body []byte) {
				service.EXPECT().HandleGeneric(gomock.Any(), body).Return(&webhookservice.Result{
					Processor: webhookservice.ProcessorNowPayments,
					Duplicate: true,
				}, nil)
			},
			expectedCode: http.StatusOK,
			expected: dto.WebhookResponseDTO{
				Processor: webhookservice.ProcessorNowPayments,
				Duplicate: true,
			},
		},
		{
			name: "Unknown shape still answers 200",
			body: `{"something":"else"}`,
			prepareMock: func(body []byte) {
				service.EXPECT().HandleGeneric(gomock.Any(), body).Return(&webhookservice.Result{
					Processor: webhookservice.ProcessorUnknown,
				}, nil)
			},
			expectedCode: http.StatusOK,
			expected: dto.WebhookResponseDTO{
				Processor: webhookservice.ProcessorUnknown,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock([]byte(tt.body))

			req := httptest.NewRequest("POST", "/api/webhooks/payment", bytes.NewReader([]byte(tt.body)))
			rr := httptest.NewRecorder()

			handler.PaymentWebhook(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			var resp dto.WebhookResponseDTO
			assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tt.expected, resp)
		})
	}
}

func TestPaymentWebhookHandler_EmptyPayload(t *testing.T) {
	handler, _ := NewMock(t)

	req := httptest.NewRequest("POST", "/api/webhooks/payment", bytes.NewReader(nil))
	rr := httptest.NewRecorder()

	handler.PaymentWebhook(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPaymentWebhookHandler_StorageError(t *testing.T) {
	handler, service := NewMock(t)

	body := []byte(`{"payment_id":123,"payment_status":"finished","order_id":"DEP-1"}`)
	service.EXPECT().HandleGeneric(gomock.Any(), body).Return(nil, errors.New("database error"))

	req := httptest.NewRequest("POST", "/api/webhooks/payment", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.PaymentWebhook(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestNowPaymentsIPNHandler(t *testing.T) {
	handler, service := NewMock(t)

	body := []byte(`{"payment_id":123,"payment_status":"finished","order_id":"DEP-1","actually_paid":0.0015}`)
	service.EXPECT().HandleNowPayments(gomock.Any(), body).Return(&webhookservice.Result{
		Processor: webhookservice.ProcessorNowPayments,
		Status:    "confirmed",
		OrderID:   "DEP-1",
		Matched:   true,
		Mutated:   true,
	}, nil)

	req := httptest.NewRequest("POST", "/api/webhooks/nowpayments", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	handler.NowPaymentsIPN(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp dto.WebhookResponseDTO
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Matched)
	assert.Equal(t, "confirmed", resp.Status)
}

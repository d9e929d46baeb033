package webhookservice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gmarket/backend/internal/domain"
	"github.com/gmarket/backend/internal/service/depositservice"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ProcessorNowPayments = "nowpayments"
	ProcessorCoinbase    = "coinbase"
	ProcessorBitPay      = "bitpay"
	ProcessorUnknown     = "unknown"
)

type WebhookRepo interface {
	Insert(ctx context.Context, webhook *domain.PaymentWebhook) (bool, error)
	MarkProcessed(ctx context.Context, webhookID int) error
}

type Deposits interface {
	ApplyProcessorStatus(ctx context.Context, orderID, status string, transactionHash *string) (*domain.Deposit, bool, error)
}

// Result describes what a webhook delivery did. It is also the response body.
type Result struct {
	Processor string
	Status    string
	OrderID   string
	Matched   bool
	Duplicate bool
	Mutated   bool
}

type Service struct {
	webhookRepo WebhookRepo
	deposits    Deposits
}

func New(webhookRepo WebhookRepo, deposits Deposits) *Service {
	return &Service{
		webhookRepo: webhookRepo,
		deposits:    deposits,
	}
}

type nowPaymentsIPN struct {
	PaymentID     int64   `json:"payment_id"`
	PaymentStatus string  `json:"payment_status"`
	OrderID       string  `json:"order_id"`
	PayAddress    string  `json:"pay_address"`
	PriceAmount   float64 `json:"price_amount"`
	PriceCurrency string  `json:"price_currency"`
	PayAmount     float64 `json:"pay_amount"`
	ActuallyPaid  float64 `json:"actually_paid"`
	PayCurrency   string  `json:"pay_currency"`
	TxHash        string  `json:"payin_hash"`
}

type coinbaseEvent struct {
	Event struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Code     string            `json:"code"`
			Metadata map[string]string `json:"metadata"`
		} `json:"data"`
	} `json:"event"`
}

type bitpayNotification struct {
	Event struct {
		Name string `json:"name"`
	} `json:"event"`
	Data struct {
		ID             string `json:"id"`
		Status         string `json:"status"`
		OrderID        string `json:"orderId"`
		TransactionCur string `json:"transactionCurrency"`
	} `json:"data"`
}

// HandleNowPayments processes the dedicated IPN endpoint.
func (s *Service) HandleNowPayments(ctx context.Context, payload []byte) (*Result, error) {
	var ipn nowPaymentsIPN
	if err := json.Unmarshal(payload, &ipn); err != nil || ipn.PaymentID == 0 {
		return s.auditUnknown(ctx, payload)
	}
	return s.process(ctx, ProcessorNowPayments,
		fmt.Sprintf("%d:%s", ipn.PaymentID, ipn.PaymentStatus),
		ipn.OrderID, ipn.PaymentStatus, ipn.TxHash, payload)
}

// HandleGeneric accepts the shared webhook endpoint and detects the processor
// from the payload shape. Unrecognized shapes are audited and acknowledged
// without touching any deposit.
func (s *Service) HandleGeneric(ctx context.Context, payload []byte) (*Result, error) {
	var ipn nowPaymentsIPN
	if err := json.Unmarshal(payload, &ipn); err == nil && ipn.PaymentID != 0 && ipn.PaymentStatus != "" {
		return s.process(ctx, ProcessorNowPayments,
			fmt.Sprintf("%d:%s", ipn.PaymentID, ipn.PaymentStatus),
			ipn.OrderID, ipn.PaymentStatus, ipn.TxHash, payload)
	}

	var cb coinbaseEvent
	if err := json.Unmarshal(payload, &cb); err == nil && cb.Event.Type != "" {
		orderID := cb.Event.Data.Metadata["order_id"]
		return s.process(ctx, ProcessorCoinbase, cb.Event.ID, orderID, cb.Event.Type, "", payload)
	}

	var bp bitpayNotification
	if err := json.Unmarshal(payload, &bp); err == nil && bp.Data.ID != "" && bp.Data.Status != "" {
		return s.process(ctx, ProcessorBitPay,
			fmt.Sprintf("%s:%s", bp.Data.ID, bp.Data.Status),
			bp.Data.OrderID, bp.Data.Status, "", payload)
	}

	return s.auditUnknown(ctx, payload)
}

func (s *Service) process(ctx context.Context, processor, eventID, orderID, rawStatus, txHash string, payload []byte) (*Result, error) {
	result := &Result{Processor: processor, Status: rawStatus, OrderID: orderID}

	webhook := &domain.PaymentWebhook{
		Processor: processor,
		EventID:   eventID,
		OrderID:   orderID,
		Status:    rawStatus,
		Payload:   payload,
	}
	inserted, err := s.webhookRepo.Insert(ctx, webhook)
	if err != nil {
		return nil, err
	}
	if !inserted {
		zap.L().Info("duplicate webhook delivery ignored",
			zap.String("processor", processor), zap.String("event_id", eventID))
		result.Duplicate = true
		return result, nil
	}

	mapped, actionable := MapProcessorStatus(processor, rawStatus)
	if !actionable || orderID == "" {
		zap.L().Info("webhook acknowledged without transition",
			zap.String("processor", processor), zap.String("status", rawStatus))
		return result, nil
	}

	var hashPtr *string
	if txHash != "" {
		hashPtr = &txHash
	}
	deposit, mutated, err := s.deposits.ApplyProcessorStatus(ctx, orderID, mapped, hashPtr)
	if err != nil {
		return nil, err
	}
	result.Matched = deposit != nil
	result.Mutated = mutated
	if deposit == nil {
		zap.L().Warn("webhook order id did not match any deposit",
			zap.String("processor", processor), zap.String("order_id", orderID))
		return result, nil
	}

	if err := s.webhookRepo.MarkProcessed(ctx, webhook.ID); err != nil {
		zap.L().Error("can't mark webhook processed", zap.Error(err))
	}
	return result, nil
}

func (s *Service) auditUnknown(ctx context.Context, payload []byte) (*Result, error) {
	webhook := &domain.PaymentWebhook{
		Processor: ProcessorUnknown,
		EventID:   uuid.NewString(),
		Payload:   payload,
	}
	if _, err := s.webhookRepo.Insert(ctx, webhook); err != nil {
		return nil, err
	}
	zap.L().Warn("webhook with unrecognized shape audited")
	return &Result{Processor: ProcessorUnknown}, nil
}

// MapProcessorStatus translates a processor's status vocabulary onto the
// deposit state machine. One table for every inbound path, so the admin flow
// and both webhook endpoints can never disagree about the same event.
// The second return is false for statuses that must not trigger a transition.
func MapProcessorStatus(processor, status string) (string, bool) {
	switch processor {
	case ProcessorNowPayments:
		switch strings.ToLower(status) {
		case "finished", "confirmed":
			return depositservice.StatusConfirmed, true
		case "failed", "refunded":
			return depositservice.StatusFailed, true
		case "expired":
			return depositservice.StatusExpired, true
		case "partially_paid":
			return depositservice.StatusPartial, true
		}
	case ProcessorCoinbase:
		switch status {
		case "charge:confirmed", "wallet:payment_request_paid":
			return depositservice.StatusConfirmed, true
		case "charge:failed":
			return depositservice.StatusFailed, true
		}
	case ProcessorBitPay:
		switch strings.ToLower(status) {
		case "confirmed", "complete", "paid":
			return depositservice.StatusConfirmed, true
		case "expired":
			return depositservice.StatusExpired, true
		case "invalid":
			return depositservice.StatusFailed, true
		}
	}
	return "", false
}

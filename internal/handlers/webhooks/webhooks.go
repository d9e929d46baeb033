package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/gmarket/backend/internal/dto"
	"github.com/gmarket/backend/internal/service/webhookservice"
	"github.com/gmarket/backend/pkg/utils"
	"go.uber.org/zap"
)

// Payment processors retry on non-2xx, so every delivery that reaches storage
// is acknowledged with 200 even when nothing matched.

const maxPayloadBytes = 1 << 20

type Service interface {
	HandleNowPayments(ctx context.Context, payload []byte) (*webhookservice.Result, error)
	HandleGeneric(ctx context.Context, payload []byte) (*webhookservice.Result, error)
}

type WebhookHandler struct {
	webhookService Service
}

func New(webhookService Service) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// PaymentWebhook godoc
//
//	@Summary		Shared payment-processor webhook
//	@Description	Accepts callbacks from any supported processor, detected by payload shape
//	@Tags			Webhooks
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	dto.WebhookResponseDTO
//	@Failure		400	{object}	utils.Response	"Unreadable payload"
//	@Router			/api/webhooks/payment [post]
func (h *WebhookHandler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.webhookService.HandleGeneric)
}

// NowPaymentsIPN godoc
//
//	@Summary		NowPayments IPN endpoint
//	@Tags			Webhooks
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	dto.WebhookResponseDTO
//	@Failure		400	{object}	utils.Response	"Unreadable payload"
//	@Router			/api/webhooks/nowpayments [post]
func (h *WebhookHandler) NowPaymentsIPN(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.webhookService.HandleNowPayments)
}

func (h *WebhookHandler) handle(w http.ResponseWriter, r *http.Request, process func(context.Context, []byte) (*webhookservice.Result, error)) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil || len(payload) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Unreadable payload")
		return
	}

	result, err := process(r.Context(), payload)
	if err != nil {
		zap.L().Error("webhook processing failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.WebhookResponseDTO{
		Processor: result.Processor,
		Status:    result.Status,
		Matched:   result.Matched,
		Duplicate: result.Duplicate,
	})
}

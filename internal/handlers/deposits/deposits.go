package deposits

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gmarket/backend/internal/domain"
	"github.com/gmarket/backend/internal/dto"
	"github.com/gmarket/backend/internal/service/depositservice"
	pkgauth "github.com/gmarket/backend/pkg/auth"
	"github.com/gmarket/backend/pkg/utils"
	"github.com/gmarket/backend/pkg/validate"
)

type Service interface {
	Create(ctx context.Context, userID int, amountUSD float64, currency string) (*domain.Deposit, error)
	ListForUser(ctx context.Context, userID int) ([]domain.Deposit, error)
	Get(ctx context.Context, userID, depositID int) (*domain.Deposit, error)
}

type DepositHandler struct {
	depositService Service
}

func New(depositService Service) *DepositHandler {
	return &DepositHandler{
		depositService: depositService,
	}
}

// CreateDeposit godoc
//
//	@Summary		Create a deposit request
//	@Description	Open a crypto deposit for the authenticated user with a payment deadline
//	@Tags			Deposits
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateDepositRequestDTO	true	"Deposit request payload"
//	@Success		200		{object}	dto.DepositResponseDTO
//	@Failure		400		{object}	utils.Response	"Amount below minimum or currency not enabled"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		503		{object}	utils.Response	"Exchange rate unavailable"
//	@Router			/api/deposits [post]
func (h *DepositHandler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(pkgauth.UserIDKey).(int)

	var req dto.CreateDepositRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount <= 0 || !validate.IsCurrencyCode(req.Currency) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid deposit data")
		return
	}

	deposit, err := h.depositService.Create(r.Context(), userID, req.Amount, strings.ToUpper(req.Currency))
	if err != nil {
		switch {
		case errors.Is(err, depositservice.ErrAmountBelowMinimum),
			errors.Is(err, depositservice.ErrCurrencyNotEnabled):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, depositservice.ErrRateUnavailable):
			utils.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ToDepositDTO(deposit, time.Now()))
}

// GetDeposits godoc
//
//	@Summary		List deposits
//	@Description	List the authenticated user's deposits, newest first. Overdue pending deposits are expired before the response is built.
//	@Tags			Deposits
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.DepositResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Router			/api/deposits [get]
func (h *DepositHandler) GetDeposits(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(pkgauth.UserIDKey).(int)

	deposits, err := h.depositService.ListForUser(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch deposits")
		return
	}

	now := time.Now()
	response := make([]dto.DepositResponseDTO, len(deposits))
	for i := range deposits {
		response[i] = ToDepositDTO(&deposits[i], now)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func (h *DepositHandler) GetDeposit(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(pkgauth.UserIDKey).(int)

	depositID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid deposit id")
		return
	}

	deposit, err := h.depositService.Get(r.Context(), userID, depositID)
	if err != nil {
		if errors.Is(err, depositservice.ErrDepositNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Deposit not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ToDepositDTO(deposit, time.Now()))
}

// ToDepositDTO computes the read-time derived fields alongside the stored ones.
func ToDepositDTO(d *domain.Deposit, now time.Time) dto.DepositResponseDTO {
	resp := dto.DepositResponseDTO{
		ID:               d.ID,
		OrderID:          d.OrderID,
		Amount:           d.AmountUSD,
		Currency:         d.Currency,
		CryptoAmount:     d.CryptoAmount,
		ExchangeRate:     d.ExchangeRate,
		Status:           d.Status,
		IsActive:         d.IsActive,
		PayAddress:       d.PayAddress,
		TimeoutAt:        d.TimeoutAt,
		TimeRemainingSec: int64(depositservice.TimeRemaining(d, now).Seconds()),
		Urgency:          depositservice.Urgency(d, now),
		CreatedAt:        d.CreatedAt,
	}
	if d.TransactionHash != nil {
		resp.TransactionHash = *d.TransactionHash
	}
	return resp
}

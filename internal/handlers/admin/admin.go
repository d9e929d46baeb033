package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gmarket/backend/internal/domain"
	"github.com/gmarket/backend/internal/dto"
	depositshandlers "github.com/gmarket/backend/internal/handlers/deposits"
	"github.com/gmarket/backend/internal/service/depositservice"
	pkgauth "github.com/gmarket/backend/pkg/auth"
	"github.com/gmarket/backend/pkg/utils"
)

type DepositService interface {
	AdminAction(ctx context.Context, adminID, depositID int, action, transactionHash string) (*domain.Deposit, error)
	PendingDeposits(ctx context.Context) ([]domain.DepositWithUser, error)
}

type Service interface {
	Stats(ctx context.Context) (*domain.Stats, error)
	Users(ctx context.Context, limit, offset int) ([]domain.User, error)
	GetSettings(ctx context.Context) (*domain.Settings, error)
	UpdateSettings(ctx context.Context, settings *domain.Settings) (*domain.Settings, error)
}

type AdminHandler struct {
	adminService   Service
	depositService DepositService
}

func New(adminService Service, depositService DepositService) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		depositService: depositService,
	}
}

// ConfirmDeposit godoc
//
//	@Summary		Confirm, reject or extend a pending deposit
//	@Description	confirm credits the owner's balance exactly once; reject marks the deposit failed; extend pushes the deadline forward by one hour
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.ConfirmDepositRequestDTO	true	"Action payload"
//	@Success		200		{object}	dto.DepositResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid action"
//	@Failure		403		{object}	utils.Response	"Admin access required"
//	@Failure		404		{object}	utils.Response	"Deposit not found"
//	@Failure		409		{object}	utils.Response	"Deposit is not pending"
//	@Router			/api/admin/deposits/confirm [post]
func (h *AdminHandler) ConfirmDeposit(w http.ResponseWriter, r *http.Request) {
	adminID := r.Context().Value(pkgauth.UserIDKey).(int)

	var req dto.ConfirmDepositRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	deposit, err := h.depositService.AdminAction(r.Context(), adminID, req.DepositID, req.Action, req.TransactionHash)
	if err != nil {
		switch {
		case errors.Is(err, depositservice.ErrDepositNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Deposit not found")
		case errors.Is(err, depositservice.ErrDepositNotPending):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		case errors.Is(err, depositservice.ErrInvalidAction):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, depositshandlers.ToDepositDTO(deposit, time.Now()))
}

// PendingDeposits godoc
//
//	@Summary		List pending deposits across users
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.PendingDepositResponseDTO
//	@Failure		403	{object}	utils.Response	"Admin access required"
//	@Router			/api/admin/deposits/pending [get]
func (h *AdminHandler) PendingDeposits(w http.ResponseWriter, r *http.Request) {
	deposits, err := h.depositService.PendingDeposits(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch pending deposits")
		return
	}

	now := time.Now()
	response := make([]dto.PendingDepositResponseDTO, len(deposits))
	for i := range deposits {
		response[i] = dto.PendingDepositResponseDTO{
			DepositResponseDTO: depositshandlers.ToDepositDTO(&deposits[i].Deposit, now),
			UserID:             deposits[i].UserID,
			Username:           deposits[i].Username,
			Email:              deposits[i].Email,
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Stats(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.StatsResponseDTO{
		TotalUsers:        stats.TotalUsers,
		ActiveUsers:       stats.ActiveUsers,
		TotalDeposits:     stats.TotalDeposits,
		PendingDeposits:   stats.PendingDeposits,
		ConfirmedDeposits: stats.ConfirmedDeposits,
		ConfirmedUSD:      stats.ConfirmedUSD,
		PendingUSD:        stats.PendingUSD,
	})
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, err := h.adminService.Users(r.Context(), limit, offset)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	response := make([]dto.AdminUserResponseDTO, len(users))
	for i, u := range users {
		response[i] = dto.AdminUserResponseDTO{
			ID:          u.ID,
			Username:    u.Username,
			Email:       u.Email,
			Role:        u.Role,
			Status:      u.Status,
			Balance:     u.Balance,
			CreatedAt:   u.CreatedAt,
			LastLoginAt: u.LastLoginAt,
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.adminService.GetSettings(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch settings")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toSettingsDTO(settings))
}

func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateSettingsRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := h.adminService.GetSettings(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch settings")
		return
	}

	if req.MinDepositAmount != nil {
		if *req.MinDepositAmount <= 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Minimum deposit must be positive")
			return
		}
		settings.MinDepositAmount = *req.MinDepositAmount
	}
	if req.DepositWindowMinutes != nil {
		if *req.DepositWindowMinutes <= 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Deposit window must be positive")
			return
		}
		settings.DepositWindowMinutes = *req.DepositWindowMinutes
	}
	if req.EnabledCurrencies != nil {
		settings.EnabledCurrencies = req.EnabledCurrencies
	}
	if req.PayAddresses != nil {
		settings.PayAddresses = req.PayAddresses
	}
	if req.NowPaymentsAPIKey != nil {
		settings.NowPaymentsAPIKey = *req.NowPaymentsAPIKey
	}
	if req.CoinbaseAPIKey != nil {
		settings.CoinbaseAPIKey = *req.CoinbaseAPIKey
	}
	if req.BitPayAPIKey != nil {
		settings.BitPayAPIKey = *req.BitPayAPIKey
	}

	updated, err := h.adminService.UpdateSettings(r.Context(), settings)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toSettingsDTO(updated))
}

func toSettingsDTO(s *domain.Settings) dto.SettingsResponseDTO {
	return dto.SettingsResponseDTO{
		MinDepositAmount:     s.MinDepositAmount,
		DepositWindowMinutes: s.DepositWindowMinutes,
		EnabledCurrencies:    s.EnabledCurrencies,
		PayAddresses:         s.PayAddresses,
		NowPaymentsAPIKey:    maskKey(s.NowPaymentsAPIKey),
		CoinbaseAPIKey:       maskKey(s.CoinbaseAPIKey),
		BitPayAPIKey:         maskKey(s.BitPayAPIKey),
	}
}

// maskKey keeps only the tail of an API key visible. Keys too short
// to have a safe tail are masked entirely.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gmarket/backend/internal/domain"
	"github.com/gmarket/backend/internal/dto"
	"github.com/gmarket/backend/internal/service/authservice"
	pkgauth "github.com/gmarket/backend/pkg/auth"
	"github.com/gmarket/backend/pkg/utils"
	"github.com/gmarket/backend/pkg/validate"
)

type Service interface {
	Register(ctx context.Context, username, email, password, inviteCode, referralCode string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	AdminAuthenticate(ctx context.Context, email, password string) (*domain.User, error)
	GenerateToken(user *domain.User) (string, error)
	Refresh(ctx context.Context, userID int) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error
	GetProfile(ctx context.Context, userID int) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int, username string) (*domain.User, error)
}

type AuthHandler struct {
	authService Service
}

func New(authService Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register godoc
//
//	@Summary		Register a new user
//	@Description	Create an account behind the invite gate and receive a session token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.RegisterRequestDTO	true	"Register request body"
//	@Success		200		{object}	dto.TokenResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		403		{object}	utils.Response	"Invite code invalid or exhausted"
//	@Failure		409		{object}	utils.Response	"Email or username already taken"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validate.IsUsername(req.Username) || !validate.IsEmail(req.Email) || len(req.Password) < 8 || req.InviteCode == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid registration data")
		return
	}

	user, err := h.authService.Register(r.Context(), req.Username, req.Email, req.Password, req.InviteCode, req.ReferralCode)
	if err != nil {
		switch {
		case errors.Is(err, authservice.ErrInviteInvalid), errors.Is(err, authservice.ErrInviteExhausted):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, authservice.ErrEmailTaken), errors.Is(err, authservice.ErrUsernameTaken):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.respondWithToken(w, user)
}

// Login godoc
//
//	@Summary		Authenticate user
//	@Description	Log in with email and password and get a JWT token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.LoginRequestDTO	true	"Login request body"
//	@Success		200		{object}	dto.TokenResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"Invalid credentials"
//	@Failure		403		{object}	utils.Response	"Account disabled"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.authService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondAuthError(w, err)
		return
	}

	h.respondWithToken(w, user)
}

// AdminLogin authenticates like Login but only admits admin accounts.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.authService.AdminAuthenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authservice.ErrNotAdmin) {
			utils.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		respondAuthError(w, err)
		return
	}

	h.respondWithToken(w, user)
}

// Refresh godoc
//
//	@Summary		Refresh session token
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.TokenResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Router			/api/auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(pkgauth.UserIDKey).(int)

	token, err := h.authService.Refresh(r.Context(), userID)
	if err != nil {
		if errors.Is(err, authservice.ErrAccountDisabled) {
			utils.RespondWithError(w, http.StatusForbidden, "Account disabled")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.Header().Set("Authorization", "Bearer "+token)
	utils.RespondWithJSON(w, http.StatusOK, dto.TokenResponseDTO{Token: token})
}

// ForgotPassword always answers 200 so the endpoint can't confirm whether an
// email is registered. The token travels out of band.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{
		Message: "If the account exists, a reset token has been issued",
	})
}

// ResetPassword godoc
//
//	@Summary		Reset password with a single-use token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.ResetPasswordRequestDTO	true	"Reset request body"
//	@Success		200		{object}	utils.Response
//	@Failure		404		{object}	utils.Response	"Token invalid or already used"
//	@Router			/api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.NewPassword) < 8 {
		utils.RespondWithError(w, http.StatusBadRequest, "Password too short")
		return
	}
	if err := h.authService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, authservice.ErrResetTokenInvalid) {
			utils.RespondWithError(w, http.StatusNotFound, "Reset token invalid or expired")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "Password successfully reset"})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(pkgauth.UserIDKey).(int)

	var req dto.ChangePasswordRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.NewPassword) < 8 {
		utils.RespondWithError(w, http.StatusBadRequest, "Password too short")
		return
	}
	if err := h.authService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, authservice.ErrInvalidCredentials) {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "Password successfully changed"})
}

// GetProfile godoc
//
//	@Summary		Get current user profile
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.ProfileResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Router			/api/user/profile [get]
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(pkgauth.UserIDKey).(int)

	user, err := h.authService.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, authservice.ErrUserNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toProfileDTO(user))
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(pkgauth.UserIDKey).(int)

	var req dto.UpdateProfileRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validate.IsUsername(req.Username) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid username")
		return
	}
	user, err := h.authService.UpdateProfile(r.Context(), userID, req.Username)
	if err != nil {
		if errors.Is(err, authservice.ErrUsernameTaken) {
			utils.RespondWithError(w, http.StatusConflict, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toProfileDTO(user))
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, user *domain.User) {
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	w.Header().Set("Authorization", "Bearer "+token)
	utils.RespondWithJSON(w, http.StatusOK, dto.TokenResponseDTO{Token: token})
}

func respondAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authservice.ErrAccountDisabled):
		utils.RespondWithError(w, http.StatusForbidden, "Account disabled")
	case errors.Is(err, authservice.ErrInvalidCredentials):
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func toProfileDTO(user *domain.User) dto.ProfileResponseDTO {
	return dto.ProfileResponseDTO{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Role:         user.Role,
		Status:       user.Status,
		Balance:      user.Balance,
		ReferralCode: user.ReferralCode,
		CreatedAt:    user.CreatedAt,
		LastLoginAt:  user.LastLoginAt,
	}
}

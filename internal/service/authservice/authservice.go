package authservice

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"github.com/gmarket/backend/internal/domain"
	"github.com/gmarket/backend/internal/pg"
	"github.com/gmarket/backend/pkg/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusBanned    = "banned"

	resetTokenTTL = time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrNotAdmin           = errors.New("admin account required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInviteInvalid      = errors.New("invite code invalid or expired")
	ErrInviteExhausted    = errors.New("invite code has no uses left")
	ErrResetTokenInvalid  = errors.New("reset token invalid or expired")
	ErrUserNotFound       = errors.New("user not found")
)

type UserRepo interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	FindByReferralCode(ctx context.Context, code string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, userID int, at time.Time) error
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
	UpdateUsername(ctx context.Context, userID int, username string) error
}

type InviteRepo interface {
	FindByCode(ctx context.Context, code string) (*domain.InviteCode, error)
	ConsumeUse(ctx context.Context, inviteCodeID int, now time.Time) (bool, error)
	RecordUsage(ctx context.Context, inviteCodeID, userID int) error
}

type ResetTokenRepo interface {
	Create(ctx context.Context, token *domain.PasswordResetToken) error
	Consume(ctx context.Context, token string, now time.Time) (*domain.PasswordResetToken, error)
	DeleteForUser(ctx context.Context, userID int) error
}

type Service struct {
	userRepo    UserRepo
	inviteRepo  InviteRepo
	resetRepo   ResetTokenRepo
	txManager   pg.TXManager
	hashService auth.HashServiceInterface
	jwtService  auth.JWTServiceInterface
}

func New(userRepo UserRepo, inviteRepo InviteRepo, resetRepo ResetTokenRepo, txManager pg.TXManager, hashService auth.HashServiceInterface, jwtService auth.JWTServiceInterface) *Service {
	return &Service{
		userRepo:    userRepo,
		inviteRepo:  inviteRepo,
		resetRepo:   resetRepo,
		txManager:   txManager,
		hashService: hashService,
		jwtService:  jwtService,
	}
}

// Register creates an account behind the invite gate. The invite counter is
// consumed with a conditional update inside the same transaction that inserts
// the user, so the cap holds under concurrent registrations.
func (s *Service) Register(ctx context.Context, username, email, password, inviteCode, referralCode string) (*domain.User, error) {
	invite, err := s.inviteRepo.FindByCode(ctx, inviteCode)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if invite == nil || !invite.IsActive || (invite.ExpiresAt != nil && invite.ExpiresAt.Before(now)) {
		return nil, ErrInviteInvalid
	}
	if invite.MaxUses > 0 && invite.UsedCount >= invite.MaxUses {
		return nil, ErrInviteExhausted
	}

	if existing, err := s.userRepo.FindByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		zap.L().Info("email already registered", zap.String("email", email))
		return nil, ErrEmailTaken
	}
	if existing, err := s.userRepo.FindByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		zap.L().Info("username already taken", zap.String("username", username))
		return nil, ErrUsernameTaken
	}

	var referredBy *int
	if referralCode != "" {
		referrer, err := s.userRepo.FindByReferralCode(ctx, referralCode)
		if err != nil {
			return nil, err
		}
		if referrer != nil {
			referredBy = &referrer.ID
		} else {
			zap.L().Info("unknown referral code ignored", zap.String("referral_code", referralCode))
		}
	}

	hashedPassword, err := s.hashService.HashPassword(password)
	if err != nil {
		zap.L().Error("can't hash password", zap.Error(err))
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         RoleUser,
		Status:       StatusActive,
		ReferralCode: mintReferralCode(),
		ReferredBy:   referredBy,
	}

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		ok, err := s.inviteRepo.ConsumeUse(ctx, invite.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInviteExhausted
		}
		if _, err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		return s.inviteRepo.RecordUsage(ctx, invite.ID, user.ID)
	})
	if err != nil {
		zap.L().Error("can't register user", zap.Error(err))
		return nil, err
	}

	zap.L().Info("user successfully registered", zap.String("username", username))
	return user, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if ok := s.hashService.ComparePassword(user.PasswordHash, password); !ok {
		return nil, ErrInvalidCredentials
	}
	if user.Status != StatusActive {
		zap.L().Info("login rejected for disabled account", zap.String("email", email), zap.String("status", user.Status))
		return nil, ErrAccountDisabled
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		zap.L().Error("can't update last login", zap.Error(err))
	}
	zap.L().Info("user successfully authenticated", zap.String("email", email))
	return user, nil
}

func (s *Service) AdminAuthenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user.Role != RoleAdmin {
		return nil, ErrNotAdmin
	}
	return user, nil
}

func (s *Service) GenerateToken(user *domain.User) (string, error) {
	token, err := s.jwtService.GenerateJWT(user.ID, user.Email, user.Role, auth.LoginTokenTTL)
	if err != nil {
		zap.L().Error("can't generate token", zap.Error(err))
		return "", err
	}
	return token, nil
}

// Refresh issues a short-lived token for a still-valid account.
func (s *Service) Refresh(ctx context.Context, userID int) (string, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil || user.Status != StatusActive {
		return "", ErrAccountDisabled
	}
	token, err := s.jwtService.GenerateJWT(user.ID, user.Email, user.Role, auth.RefreshTokenTTL)
	if err != nil {
		zap.L().Error("can't generate refresh token", zap.Error(err))
		return "", err
	}
	return token, nil
}

// ForgotPassword mints a single-use reset token. The returned token is handed
// to the delivery channel, never to the HTTP response. A missing account
// yields an empty token and no error so the endpoint can't be used to probe
// for registered emails.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", nil
	}

	if err := s.resetRepo.DeleteForUser(ctx, user.ID); err != nil {
		return "", err
	}
	token := &domain.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.resetRepo.Create(ctx, token); err != nil {
		return "", err
	}
	return token.Token, nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	consumed, err := s.resetRepo.Consume(ctx, token, time.Now())
	if err != nil {
		return err
	}
	if consumed == nil {
		return ErrResetTokenInvalid
	}

	hashedPassword, err := s.hashService.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, consumed.UserID, hashedPassword)
}

func (s *Service) ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if ok := s.hashService.ComparePassword(user.PasswordHash, oldPassword); !ok {
		return ErrInvalidCredentials
	}

	hashedPassword, err := s.hashService.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, userID, hashedPassword)
}

func (s *Service) GetProfile(ctx context.Context, userID int) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int, username string) (*domain.User, error) {
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != userID {
		return nil, ErrUsernameTaken
	}
	if err := s.userRepo.UpdateUsername(ctx, userID, username); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

const referralAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func mintReferralCode() string {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()[:10]
	}
	for i, b := range buf {
		buf[i] = referralAlphabet[int(b)%len(referralAlphabet)]
	}
	return string(buf)
}

package depositservice

import (
	"context"
	"errors"
	"time"

	"github.com/gmarket/backend/internal/domain"
	"github.com/gmarket/backend/internal/pg"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// StatusPending - deposit created, waiting for funds;
	StatusPending string = "pending"
	// StatusConfirmed - funds arrived, balance credited;
	StatusConfirmed string = "confirmed"
	// StatusFailed - rejected by an admin or reported failed by the processor;
	StatusFailed string = "failed"
	// StatusExpired - processor-side invoice expiry;
	StatusExpired string = "expired"
	// StatusTimedOut - deadline passed without payment;
	StatusTimedOut string = "timed_out"
	// StatusPartial - processor received less than the invoiced amount.
	StatusPartial string = "partial"
)

const (
	ActionConfirm = "confirm"
	ActionReject  = "reject"
	ActionExtend  = "extend"

	// ExtendIncrement is the fixed amount an admin extension pushes the
	// deadline forward. Repeated extensions are allowed.
	ExtendIncrement = time.Hour

	cryptoPrecision = 8
)

const (
	UrgencyExpired  = "expired"
	UrgencyCritical = "critical"
	UrgencyWarning  = "warning"
	UrgencyNormal   = "normal"
)

var (
	ErrAmountBelowMinimum = errors.New("amount below minimum deposit")
	ErrCurrencyNotEnabled = errors.New("currency not enabled")
	ErrRateUnavailable    = errors.New("exchange rate unavailable")
	ErrDepositNotFound    = errors.New("deposit not found")
	ErrDepositNotPending  = errors.New("deposit is not pending")
	ErrInvalidAction      = errors.New("invalid action")
)

type DepositRepo interface {
	Create(ctx context.Context, deposit *domain.Deposit) (*domain.Deposit, error)
	FindByID(ctx context.Context, id int) (*domain.Deposit, error)
	FindByOrderID(ctx context.Context, orderID string) (*domain.Deposit, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.Deposit, error)
	FindPendingWithUsers(ctx context.Context) ([]domain.DepositWithUser, error)
	MarkTimedOutForUser(ctx context.Context, userID int, now time.Time) (int64, error)
	MarkAllTimedOut(ctx context.Context, now time.Time) (int64, error)
	FindExpiredPending(ctx context.Context, now time.Time, limit uint32) ([]domain.Deposit, error)
	MarkTimedOut(ctx context.Context, depositID int) (bool, error)
	ConfirmIfPending(ctx context.Context, depositID int, transactionHash *string, adminID *int, at time.Time) (bool, error)
	UpdateStatusIfPending(ctx context.Context, depositID int, status string, transactionHash *string) (bool, error)
	ExtendTimeout(ctx context.Context, depositID int, by time.Duration) (*time.Time, error)
}

type UserRepo interface {
	CreditBalance(ctx context.Context, userID int, amount float64) error
}

type SettingsRepo interface {
	Get(ctx context.Context) (*domain.Settings, error)
}

type RatesProvider interface {
	Rate(currency string) (float64, error)
}

type Notifier interface {
	DepositCreated(ctx context.Context, deposit *domain.Deposit)
	DepositConfirmed(ctx context.Context, deposit *domain.Deposit, source string)
}

type Service struct {
	depositRepo  DepositRepo
	userRepo     UserRepo
	settingsRepo SettingsRepo
	rates        RatesProvider
	txManager    pg.TXManager
	notifier     Notifier
}

func New(depositRepo DepositRepo, userRepo UserRepo, settingsRepo SettingsRepo, rates RatesProvider, txManager pg.TXManager, notifier Notifier) *Service {
	return &Service{
		depositRepo:  depositRepo,
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		rates:        rates,
		txManager:    txManager,
		notifier:     notifier,
	}
}

func (s *Service) Create(ctx context.Context, userID int, amountUSD float64, currency string) (*domain.Deposit, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if amountUSD < settings.MinDepositAmount {
		return nil, ErrAmountBelowMinimum
	}
	enabled := false
	for _, c := range settings.EnabledCurrencies {
		if c == currency {
			enabled = true
			break
		}
	}
	if !enabled {
		return nil, ErrCurrencyNotEnabled
	}

	rate, err := s.rates.Rate(currency)
	if err != nil || rate <= 0 {
		zap.L().Error("exchange rate unavailable", zap.String("currency", currency), zap.Error(err))
		return nil, ErrRateUnavailable
	}

	cryptoAmount := decimal.NewFromFloat(amountUSD).
		Div(decimal.NewFromFloat(rate)).
		Round(cryptoPrecision)

	now := time.Now()
	deposit := &domain.Deposit{
		UserID:       userID,
		OrderID:      uuid.NewString(),
		AmountUSD:    amountUSD,
		Currency:     currency,
		CryptoAmount: cryptoAmount.InexactFloat64(),
		ExchangeRate: rate,
		Status:       StatusPending,
		IsActive:     true,
		PayAddress:   settings.PayAddresses[currency],
		TimeoutAt:    now.Add(time.Duration(settings.DepositWindowMinutes) * time.Minute),
	}

	if _, err := s.depositRepo.Create(ctx, deposit); err != nil {
		zap.L().Error("can't create deposit", zap.Error(err))
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.DepositCreated(ctx, deposit)
	}

	zap.L().Info("deposit created",
		zap.String("order_id", deposit.OrderID),
		zap.Int("user_id", userID),
		zap.Float64("amount_usd", amountUSD))
	return deposit, nil
}

// ListForUser first expires the user's overdue pending deposits, then returns
// the list. The read carries the timeout transition, as clients depend on
// never seeing a stale pending deposit.
func (s *Service) ListForUser(ctx context.Context, userID int) ([]domain.Deposit, error) {
	swept, err := s.depositRepo.MarkTimedOutForUser(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}
	if swept > 0 {
		zap.L().Info("expired pending deposits on read", zap.Int("user_id", userID), zap.Int64("count", swept))
	}
	return s.depositRepo.FindByUserID(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, depositID int) (*domain.Deposit, error) {
	deposit, err := s.depositRepo.FindByID(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if deposit == nil || deposit.UserID != userID {
		return nil, ErrDepositNotFound
	}

	if deposit.Status == StatusPending && time.Now().After(deposit.TimeoutAt) {
		won, err := s.depositRepo.MarkTimedOut(ctx, deposit.ID)
		if err != nil {
			return nil, err
		}
		if won {
			deposit.Status = StatusTimedOut
			deposit.IsActive = false
		} else if deposit, err = s.depositRepo.FindByID(ctx, depositID); err != nil {
			return nil, err
		}
	}
	return deposit, nil
}

// PendingDeposits returns the admin confirmation queue. Overdue deposits are
// swept out before the query so the queue only holds actionable rows.
func (s *Service) PendingDeposits(ctx context.Context) ([]domain.DepositWithUser, error) {
	if _, err := s.depositRepo.MarkAllTimedOut(ctx, time.Now()); err != nil {
		return nil, err
	}
	return s.depositRepo.FindPendingWithUsers(ctx)
}

// AdminAction applies confirm/reject/extend. Confirmation must win the
// pending-to-confirmed transition before any balance is credited; transition and
// credit commit or roll back together.
func (s *Service) AdminAction(ctx context.Context, adminID, depositID int, action, transactionHash string) (*domain.Deposit, error) {
	deposit, err := s.depositRepo.FindByID(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if deposit == nil {
		return nil, ErrDepositNotFound
	}

	var txHash *string
	if transactionHash != "" {
		txHash = &transactionHash
	}

	switch action {
	case ActionConfirm:
		err = s.txManager.Begin(ctx, func(ctx context.Context) error {
			won, err := s.depositRepo.ConfirmIfPending(ctx, depositID, txHash, &adminID, time.Now())
			if err != nil {
				return err
			}
			if !won {
				return ErrDepositNotPending
			}
			return s.userRepo.CreditBalance(ctx, deposit.UserID, deposit.AmountUSD)
		})
		if err != nil {
			return nil, err
		}
		zap.L().Info("deposit confirmed by admin",
			zap.Int("deposit_id", depositID), zap.Int("admin_id", adminID))

	case ActionReject:
		won, err := s.depositRepo.UpdateStatusIfPending(ctx, depositID, StatusFailed, txHash)
		if err != nil {
			return nil, err
		}
		if !won {
			return nil, ErrDepositNotPending
		}
		zap.L().Info("deposit rejected by admin",
			zap.Int("deposit_id", depositID), zap.Int("admin_id", adminID))

	case ActionExtend:
		newTimeout, err := s.depositRepo.ExtendTimeout(ctx, depositID, ExtendIncrement)
		if err != nil {
			return nil, err
		}
		if newTimeout == nil {
			return nil, ErrDepositNotPending
		}
		zap.L().Info("deposit timeout extended",
			zap.Int("deposit_id", depositID), zap.Time("timeout_at", *newTimeout))

	default:
		return nil, ErrInvalidAction
	}

	updated, err := s.depositRepo.FindByID(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if action == ActionConfirm && s.notifier != nil && updated != nil {
		s.notifier.DepositConfirmed(ctx, updated, "admin")
	}
	return updated, nil
}

// ApplyProcessorStatus reconciles a webhook-reported status with the stored
// deposit. It returns the deposit (nil when the order id is unknown) and
// whether a transition actually ran. Replayed confirmations lose the
// conditional update and never credit twice.
func (s *Service) ApplyProcessorStatus(ctx context.Context, orderID, status string, transactionHash *string) (*domain.Deposit, bool, error) {
	deposit, err := s.depositRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	if deposit == nil {
		return nil, false, nil
	}

	switch status {
	case StatusConfirmed:
		var won bool
		err = s.txManager.Begin(ctx, func(ctx context.Context) error {
			var err error
			won, err = s.depositRepo.ConfirmIfPending(ctx, deposit.ID, transactionHash, nil, time.Now())
			if err != nil {
				return err
			}
			if !won {
				return nil
			}
			return s.userRepo.CreditBalance(ctx, deposit.UserID, deposit.AmountUSD)
		})
		if err != nil {
			return deposit, false, err
		}
		if won {
			// Mirror the committed transition so callers and the
			// notifier see the confirmed state, not the stale read.
			deposit.Status = StatusConfirmed
			deposit.IsActive = false
			if transactionHash != nil {
				deposit.TransactionHash = transactionHash
			}
			zap.L().Info("deposit confirmed by processor", zap.String("order_id", orderID))
			if s.notifier != nil {
				s.notifier.DepositConfirmed(ctx, deposit, "webhook")
			}
		}
		return deposit, won, nil

	case StatusFailed, StatusExpired, StatusPartial:
		won, err := s.depositRepo.UpdateStatusIfPending(ctx, deposit.ID, status, transactionHash)
		if err != nil {
			return deposit, false, err
		}
		if won {
			zap.L().Info("deposit status updated by processor",
				zap.String("order_id", orderID), zap.String("status", status))
		}
		return deposit, won, nil

	default:
		return deposit, false, nil
	}
}

func TimeRemaining(deposit *domain.Deposit, now time.Time) time.Duration {
	if deposit.Status != StatusPending {
		return 0
	}
	remaining := deposit.TimeoutAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func Urgency(deposit *domain.Deposit, now time.Time) string {
	remaining := TimeRemaining(deposit, now)
	switch {
	case deposit.Status != StatusPending || remaining <= 0:
		return UrgencyExpired
	case remaining < 5*time.Minute:
		return UrgencyCritical
	case remaining < 15*time.Minute:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}

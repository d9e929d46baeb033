package settingsrepo

import (
	"context"

	"github.com/gmarket/backend/internal/domain"
	"github.com/gmarket/backend/internal/pg"
	"go.uber.org/zap"
)

// The admin_settings table holds a single row with id = 1.
const settingsID = 1

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Get(ctx context.Context) (*domain.Settings, error) {
	query := `
		SELECT id, min_deposit_amount, deposit_window_minutes, enabled_currencies, pay_addresses,
		       nowpayments_api_key, coinbase_api_key, bitpay_api_key, updated_at
		FROM admin_settings
		WHERE id = $1
	`
	var s domain.Settings
	err := r.db.QueryRow(ctx, query, settingsID).Scan(&s.ID, &s.MinDepositAmount, &s.DepositWindowMinutes,
		&s.EnabledCurrencies, &s.PayAddresses, &s.NowPaymentsAPIKey, &s.CoinbaseAPIKey, &s.BitPayAPIKey, &s.UpdatedAt)
	if err != nil {
		zap.L().Error("can't get settings", zap.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *Repository) Update(ctx context.Context, s *domain.Settings) error {
	query := `
		UPDATE admin_settings
		SET min_deposit_amount = $2, deposit_window_minutes = $3, enabled_currencies = $4, pay_addresses = $5,
		    nowpayments_api_key = $6, coinbase_api_key = $7, bitpay_api_key = $8, updated_at = now()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, settingsID, s.MinDepositAmount, s.DepositWindowMinutes, s.EnabledCurrencies,
		s.PayAddresses, s.NowPaymentsAPIKey, s.CoinbaseAPIKey, s.BitPayAPIKey)
	if err != nil {
		zap.L().Error("can't update settings", zap.Error(err))
		return err
	}
	return nil
}

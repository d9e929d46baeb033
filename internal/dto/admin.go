package dto

import "time"

type ConfirmDepositRequestDTO struct {
	DepositID       int    `json:"deposit_id" validate:"required"`
	Action          string `json:"action" validate:"required,oneof=confirm reject extend" example:"confirm"`
	TransactionHash string `json:"transaction_hash,omitempty"`
}

type PendingDepositResponseDTO struct {
	DepositResponseDTO
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type StatsResponseDTO struct {
	TotalUsers        int     `json:"total_users"`
	ActiveUsers       int     `json:"active_users"`
	TotalDeposits     int     `json:"total_deposits"`
	PendingDeposits   int     `json:"pending_deposits"`
	ConfirmedDeposits int     `json:"confirmed_deposits"`
	ConfirmedUSD      float64 `json:"confirmed_usd"`
	PendingUSD        float64 `json:"pending_usd"`
}

type AdminUserResponseDTO struct {
	ID          int        `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	Balance     float64    `json:"balance"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type SettingsResponseDTO struct {
	MinDepositAmount     float64           `json:"min_deposit_amount"`
	DepositWindowMinutes int               `json:"deposit_window_minutes"`
	EnabledCurrencies    []string          `json:"enabled_currencies"`
	PayAddresses         map[string]string `json:"pay_addresses"`
	// API keys are reported masked, only the tail is shown.
	NowPaymentsAPIKey string `json:"nowpayments_api_key"`
	CoinbaseAPIKey    string `json:"coinbase_api_key"`
	BitPayAPIKey      string `json:"bitpay_api_key"`
}

type UpdateSettingsRequestDTO struct {
	MinDepositAmount     *float64          `json:"min_deposit_amount,omitempty"`
	DepositWindowMinutes *int              `json:"deposit_window_minutes,omitempty"`
	EnabledCurrencies    []string          `json:"enabled_currencies,omitempty"`
	PayAddresses         map[string]string `json:"pay_addresses,omitempty"`
	NowPaymentsAPIKey    *string           `json:"nowpayments_api_key,omitempty"`
	CoinbaseAPIKey       *string           `json:"coinbase_api_key,omitempty"`
	BitPayAPIKey         *string           `json:"bitpay_api_key,omitempty"`
}

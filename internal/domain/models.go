package domain

import "time"

type User struct {
	ID           int        `db:"id"`
	Username     string     `db:"username"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Role         string     `db:"role"`
	Status       string     `db:"status"`
	Balance      float64    `db:"balance"`
	ReferralCode string     `db:"referral_code"`
	ReferredBy   *int       `db:"referred_by"`
	CreatedAt    time.Time  `db:"created_at"`
	LastLoginAt  *time.Time `db:"last_login_at"`
}

type Deposit struct {
	ID               int        `db:"id"`
	UserID           int        `db:"user_id"`
	OrderID          string     `db:"order_id"`
	AmountUSD        float64    `db:"amount_usd"`
	Currency         string     `db:"currency"`
	CryptoAmount     float64    `db:"crypto_amount"`
	ExchangeRate     float64    `db:"exchange_rate"`
	Status           string     `db:"status"`
	IsActive         bool       `db:"is_active"`
	PayAddress       string     `db:"pay_address"`
	TransactionHash  *string    `db:"transaction_hash"`
	TimeoutAt        time.Time  `db:"timeout_at"`
	AdminConfirmedAt *time.Time `db:"admin_confirmed_at"`
	AdminConfirmedBy *int       `db:"admin_confirmed_by"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// DepositWithUser is the admin view of a pending deposit.
type DepositWithUser struct {
	Deposit
	Username string `db:"username"`
	Email    string `db:"email"`
}

type InviteCode struct {
	ID        int        `db:"id"`
	Code      string     `db:"code"`
	IsActive  bool       `db:"is_active"`
	MaxUses   int        `db:"max_uses"`
	UsedCount int        `db:"used_count"`
	ExpiresAt *time.Time `db:"expires_at"`
	CreatedBy *int       `db:"created_by"`
	CreatedAt time.Time  `db:"created_at"`
}

type PaymentWebhook struct {
	ID         int       `db:"id"`
	Processor  string    `db:"processor"`
	EventID    string    `db:"event_id"`
	OrderID    string    `db:"order_id"`
	Status     string    `db:"status"`
	Payload    []byte    `db:"payload"`
	Processed  bool      `db:"processed"`
	ReceivedAt time.Time `db:"received_at"`
}

type PasswordResetToken struct {
	ID        int       `db:"id"`
	UserID    int       `db:"user_id"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// Settings is the singleton admin_settings row.
type Settings struct {
	ID                   int               `db:"id"`
	MinDepositAmount     float64           `db:"min_deposit_amount"`
	DepositWindowMinutes int               `db:"deposit_window_minutes"`
	EnabledCurrencies    []string          `db:"enabled_currencies"`
	PayAddresses         map[string]string `db:"pay_addresses"`
	NowPaymentsAPIKey    string            `db:"nowpayments_api_key"`
	CoinbaseAPIKey       string            `db:"coinbase_api_key"`
	BitPayAPIKey         string            `db:"bitpay_api_key"`
	UpdatedAt            time.Time         `db:"updated_at"`
}

type Stats struct {
	TotalUsers        int     `db:"total_users"`
	ActiveUsers       int     `db:"active_users"`
	TotalDeposits     int     `db:"total_deposits"`
	PendingDeposits   int     `db:"pending_deposits"`
	ConfirmedDeposits int     `db:"confirmed_deposits"`
	ConfirmedUSD      float64 `db:"confirmed_usd"`
	PendingUSD        float64 `db:"pending_usd"`
}

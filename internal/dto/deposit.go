package dto

import "time"

type CreateDepositRequestDTO struct {
	Amount   float64 `json:"amount" example:"100"`
	Currency string  `json:"currency" example:"BTC"`
}

type DepositResponseDTO struct {
	ID               int       `json:"id"`
	OrderID          string    `json:"order_id"`
	Amount           float64   `json:"amount" example:"100"`
	Currency         string    `json:"currency" example:"BTC"`
	CryptoAmount     float64   `json:"crypto_amount" example:"0.00163"`
	ExchangeRate     float64   `json:"exchange_rate" example:"61349.2"`
	Status           string    `json:"status" example:"pending"`
	IsActive         bool      `json:"is_active"`
	PayAddress       string    `json:"pay_address,omitempty"`
	TransactionHash  string    `json:"transaction_hash,omitempty"`
	TimeoutAt        time.Time `json:"timeout_at"`
	TimeRemainingSec int64     `json:"time_remaining_seconds"`
	Urgency          string    `json:"urgency" example:"normal"`
	CreatedAt        time.Time `json:"created_at"`
}

package dto

type WebhookResponseDTO struct {
	Processor string `json:"processor" example:"nowpayments"`
	Status    string `json:"status,omitempty" example:"confirmed"`
	Matched   bool   `json:"matched"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

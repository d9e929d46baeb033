package dto

import "time"

type RegisterRequestDTO struct {
	Username     string `json:"username" validate:"required,min=3,max=32"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	InviteCode   string `json:"invite_code" validate:"required"`
	ReferralCode string `json:"referral_code,omitempty"`
}

type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type TokenResponseDTO struct {
	Token string `json:"token"`
}

type ForgotPasswordRequestDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequestDTO struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type ChangePasswordRequestDTO struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type ProfileResponseDTO struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	Balance      float64    `json:"balance" example:"150.5"`
	ReferralCode string     `json:"referral_code"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

type UpdateProfileRequestDTO struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAndValidateToken(t *testing.T) {
	service := NewJWTService("test-secret")

	tests := []struct {
		name    string
		userID  int
		email   string
		role    string
		ttl     time.Duration
		wantErr error
	}{
		{
			name:   "Valid user token",
			userID: 1,
			email:  "user@example.com",
			role:   "user",
			ttl:    LoginTokenTTL,
		},
		{
			name:   "Valid admin token",
			userID: 2,
			email:  "admin@example.com",
			role:   "admin",
			ttl:    RefreshTokenTTL,
		},
		{
			name:    "Expired token",
			userID:  3,
			email:   "late@example.com",
			role:    "user",
			ttl:     -time.Minute,
			wantErr: ErrTokenExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := service.GenerateJWT(tt.userID, tt.email, tt.role, tt.ttl)
			assert.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := service.ValidateToken(token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, tt.role, claims.Role)
			assert.Equal(t, tt.role == "admin", claims.IsAdmin)
		})
	}
}

func TestValidateToken_Invalid(t *testing.T) {
	service := NewJWTService("test-secret")

	t.Run("Garbage token", func(t *testing.T) {
		_, err := service.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		other := NewJWTService("other-secret")
		token, err := other.GenerateJWT(1, "user@example.com", "user", time.Hour)
		assert.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

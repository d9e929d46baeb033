package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("user@example.com"))
	assert.True(t, IsEmail("first.last+tag@sub.example.org"))
	assert.False(t, IsEmail("not-an-email"))
	assert.False(t, IsEmail("user@"))
	assert.False(t, IsEmail("@example.com"))
}

func TestIsUsername(t *testing.T) {
	assert.True(t, IsUsername("alice"))
	assert.True(t, IsUsername("bob_42"))
	assert.False(t, IsUsername("ab"))
	assert.False(t, IsUsername("has space"))
	assert.False(t, IsUsername("точно-нет"))
}

func TestIsCurrencyCode(t *testing.T) {
	assert.True(t, IsCurrencyCode("BTC"))
	assert.True(t, IsCurrencyCode("usdt"))
	assert.False(t, IsCurrencyCode("B"))
	assert.False(t, IsCurrencyCode("BTC-1"))
}

package validate

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func IsEmail(s string) bool {
	return len(s) <= 254 && emailRe.MatchString(s)
}

func IsUsername(s string) bool {
	if len(s) < 3 || len(s) > 32 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}

// IsCurrencyCode accepts crypto tickers like BTC, ETH, USDT.
func IsCurrencyCode(s string) bool {
	if len(s) < 2 || len(s) > 10 {
		return false
	}
	up := strings.ToUpper(s)
	for _, r := range up {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

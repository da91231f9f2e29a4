// Package pan handles primary account numbers outside of validation:
// normalization, masking for logs, hashing for storage and generation of
// Luhn-valid test numbers.
package pan

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/alovak/cardvault/internal/check"
)

// Normalize strips every non-digit character.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// LastN returns the trailing n characters of s.
func LastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// Mask keeps the first six and last four digits, the rest become '*'.
// Short numbers keep at most the last four.
func Mask(pan string) string {
	cleaned := Normalize(pan)
	n := len(cleaned)
	if n == 0 {
		return ""
	}
	if n <= 4 {
		return strings.Repeat("*", n)
	}
	if n < 10 {
		return strings.Repeat("*", n-4) + cleaned[n-4:]
	}
	return cleaned[:6] + strings.Repeat("*", n-10) + cleaned[n-4:]
}

// BIN returns up to the first six digits.
func BIN(pan string) string {
	if len(pan) > 6 {
		return pan[:6]
	}
	return pan
}

// HashHMAC computes HMAC-SHA256 over a PAN using a secret key (pepper).
// Do not log or persist the input PAN here; callers must sanitize logs separately.
func HashHMAC(pan string, key []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(pan))
	return h.Sum(nil)
}

// Generate returns a random Luhn-valid number of totalLen digits starting with bin.
func Generate(bin string, totalLen int) (string, error) {
	if bin == "" || !check.IsDigits(bin) {
		return "", fmt.Errorf("bin must contain digits only")
	}
	if totalLen < 12 || totalLen > 19 {
		return "", fmt.Errorf("total length must be 12..19")
	}
	fill := totalLen - 1 - len(bin)
	if fill < 0 {
		return "", fmt.Errorf("bin too long: %s", bin)
	}
	digits, err := randomDigits(fill)
	if err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	body := bin + digits
	return body + check.CheckDigit(body), nil
}

// randomDigits uses rejection sampling so that 0-9 are uniformly distributed.
func randomDigits(count int) (string, error) {
	if count <= 0 {
		return "", nil
	}
	const threshold = 250 // 256 - (256 % 10)
	var sb strings.Builder
	sb.Grow(count)
	buf := make([]byte, 64)
	for sb.Len() < count {
		n, err := rand.Read(buf)
		if err != nil {
			return "", err
		}
		for i := 0; i < n && sb.Len() < count; i++ {
			if b := buf[i]; b < threshold {
				sb.WriteByte('0' + (b % 10))
			}
		}
	}
	return sb.String(), nil
}

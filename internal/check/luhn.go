// Package check holds the local card checks: mod-10 checksum, issuer
// detection and security code length rules.
package check

// Luhn reports whether digits pass the mod-10 checksum.
// Starting from the rightmost digit every second digit is doubled, doubled
// values above 9 have 9 subtracted, and the total must be divisible by 10.
// Callers pass digits only; anything else is rejected.
func Luhn(digits string) bool {
	if digits == "" || !IsDigits(digits) {
		return false
	}
	return luhnSum(digits, false)%10 == 0
}

// CheckDigit returns the digit that makes body+digit pass Luhn.
func CheckDigit(body string) string {
	// the check digit is appended, so the rightmost body digit is doubled
	sum := luhnSum(body, true)
	cd := (10 - (sum % 10)) % 10
	return string('0' + byte(cd))
}

func luhnSum(digits string, dbl bool) int {
	sum := 0
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if dbl {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		dbl = !dbl
	}
	return sum
}

// IsDigits reports whether s consists of ASCII digits only.
func IsDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

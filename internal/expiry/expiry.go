package expiry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var defaultLoc = time.UTC

// NormalizeYear turns a 1, 2 or 4 digit year into a full year relative to now.
// One digit resolves inside the current decade, two digits inside the current
// century, four digits are taken literally but must not start with 0.
// Anything else is rejected.
func NormalizeYear(in string, now time.Time) (int, bool) {
	s := strings.TrimSpace(in)
	if s == "" || !isDigits(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	switch len(s) {
	case 1:
		return now.Year()/10*10 + n, true
	case 2:
		return now.Year()/100*100 + n, true
	case 4:
		if n < 1000 {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// ParseMonth accepts an integer month in 1..12.
func ParseMonth(in string) (int, bool) {
	m, err := strconv.Atoi(strings.TrimSpace(in))
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return m, true
}

// EndOfMonth returns the last instant of year/month in loc (UTC when nil).
func EndOfMonth(year, month int, loc *time.Location) (time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("expiry month must be 1..12, got %d", month)
	}
	if year <= 0 {
		return time.Time{}, fmt.Errorf("expiry year must be positive, got %d", year)
	}
	if loc == nil {
		loc = defaultLoc
	}
	// First day of next month
	firstNext := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0)
	return firstNext.Add(-time.Nanosecond), nil
}

// IsExpired reports whether 'at' is strictly after the end of year/month in loc.
// A card is usable through the last day of its expiry month.
func IsExpired(year, month int, at time.Time, loc *time.Location) (bool, error) {
	end, err := EndOfMonth(year, month, loc)
	if err != nil {
		return false, err
	}
	return at.In(end.Location()).After(end), nil
}

// CardFace returns expiry as MM/YY, the way it is embossed on a card.
func CardFace(year, month int) string {
	return fmt.Sprintf("%02d/%02d", month, year%100)
}

// ParseCardFace accepts "MM/YY" or "MMYY" and returns the full year and month.
func ParseCardFace(in string, now time.Time) (year, month int, err error) {
	s := strings.TrimSpace(in)
	s = strings.ReplaceAll(s, "/", "")
	if len(s) != 4 {
		return 0, 0, fmt.Errorf("card face must be MM/YY or MMYY")
	}
	if !isDigits(s) {
		return 0, 0, fmt.Errorf("card face must be digits")
	}
	m, ok := ParseMonth(s[:2])
	if !ok {
		return 0, 0, fmt.Errorf("month must be 01..12")
	}
	y, _ := NormalizeYear(s[2:], now)
	return y, m, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

package payment

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alovak/cardvault/messages"
)

// Config is read by cards and transactions created through a Client. It is
// not modified after the Client is built.
type Config struct {
	// DefaultCurrency is injected into purchase and authorize data that
	// carries no currency.
	DefaultCurrency string
	// AllowedCurrencies always implicitly contains DefaultCurrency.
	AllowedCurrencies []string
	DefaultLanguage   string
	// Location is used for card expiry. UTC when nil.
	Location *time.Location
	// Now is the clock used for year normalization and expiry.
	Now func() time.Time
}

func DefaultConfig() *Config {
	return &Config{
		DefaultCurrency:   "USD",
		AllowedCurrencies: []string{"USD"},
		DefaultLanguage:   messages.DefaultLanguage,
		Location:          time.UTC,
		Now:               time.Now,
	}
}

// FromEnv reads PAYMENT_CURRENCY, PAYMENT_ALLOWED_CURRENCIES (comma
// separated), PAYMENT_LANGUAGE and PAYMENT_EXPIRY_TZ on top of DefaultConfig.
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()
	cfg.DefaultCurrency = strings.ToUpper(getenv("PAYMENT_CURRENCY", cfg.DefaultCurrency))
	cfg.AllowedCurrencies = []string{cfg.DefaultCurrency}
	if v := os.Getenv("PAYMENT_ALLOWED_CURRENCIES"); v != "" {
		cfg.AllowedCurrencies = nil
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cfg.AllowedCurrencies = append(cfg.AllowedCurrencies, strings.ToUpper(c))
			}
		}
	}
	cfg.DefaultLanguage = getenv("PAYMENT_LANGUAGE", cfg.DefaultLanguage)
	if tz := os.Getenv("PAYMENT_EXPIRY_TZ"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("loading expiry timezone: %w", err)
		}
		cfg.Location = loc
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if len(c.DefaultCurrency) != 3 {
		return fmt.Errorf("default currency must be a 3 letter code, got %q", c.DefaultCurrency)
	}
	for _, cur := range c.AllowedCurrencies {
		if len(cur) != 3 {
			return fmt.Errorf("allowed currency must be a 3 letter code, got %q", cur)
		}
	}
	if c.DefaultLanguage != "" && !messages.HasLanguage(c.DefaultLanguage) {
		return fmt.Errorf("no messages for language %q", c.DefaultLanguage)
	}
	return nil
}

// CurrencyAllowed compares case-insensitively against the allowed set and
// the default currency.
func (c *Config) CurrencyAllowed(cur string) bool {
	if strings.EqualFold(cur, c.DefaultCurrency) {
		return true
	}
	for _, a := range c.AllowedCurrencies {
		if strings.EqualFold(cur, a) {
			return true
		}
	}
	return false
}

func (c *Config) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Config) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

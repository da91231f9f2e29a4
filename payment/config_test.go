package payment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "USD", cfg.DefaultCurrency)
	require.Contains(t, cfg.AllowedCurrencies, "USD")
	require.Equal(t, "en_US", cfg.DefaultLanguage)
	require.NoError(t, cfg.Validate())
}

func TestConfig_CurrencyAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowedCurrencies = []string{"EUR"}

	require.True(t, cfg.CurrencyAllowed("EUR"))
	require.True(t, cfg.CurrencyAllowed("eur"))
	// the default currency is always allowed
	require.True(t, cfg.CurrencyAllowed("USD"))
	require.False(t, cfg.CurrencyAllowed("GBP"))
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultCurrency = "US"
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.AllowedCurrencies = []string{"USD", "EURO"}
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.DefaultLanguage = "xx_XX"
	require.Error(t, cfg.Validate())
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PAYMENT_CURRENCY", "eur")
	t.Setenv("PAYMENT_ALLOWED_CURRENCIES", "eur, gbp")
	t.Setenv("PAYMENT_EXPIRY_TZ", "Australia/Sydney")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "EUR", cfg.DefaultCurrency)
	require.Equal(t, []string{"EUR", "GBP"}, cfg.AllowedCurrencies)
	require.Equal(t, "Australia/Sydney", cfg.Location.String())

	t.Setenv("PAYMENT_EXPIRY_TZ", "Nowhere/Special")
	_, err = FromEnv()
	require.Error(t, err)
}

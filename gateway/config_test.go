package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.MerchantKey = "0123456789abcdef01234567"
	cfg.MerchantPassword = "76543210fedcba9876543210"
	cfg.ProcessorToken = "abcdefabcdefabcdefabcdef"
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no base url", func(c *Config) { c.BaseURL = "" }},
		{"no merchant key", func(c *Config) { c.MerchantKey = "" }},
		{"no merchant password", func(c *Config) { c.MerchantPassword = "" }},
		{"no processor token", func(c *Config) { c.ProcessorToken = "" }},
		{"bogus key", func(c *Config) { c.MerchantKey = "bogus" }},
		{"upper case password", func(c *Config) { c.MerchantPassword = "76543210FEDCBA9876543210" }},
		{"short processor token", func(c *Config) { c.ProcessorToken = "123" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GATEWAY_URL", "https://gateway.example.com")
	t.Setenv("GATEWAY_MERCHANT_KEY", "0123456789abcdef01234567")
	t.Setenv("GATEWAY_MERCHANT_PASSWORD", "76543210fedcba9876543210")
	t.Setenv("GATEWAY_PROCESSOR_TOKEN", "abcdefabcdefabcdefabcdef")
	t.Setenv("GATEWAY_TIMEOUT", "3s")

	cfg := FromEnv()
	require.Equal(t, "https://gateway.example.com", cfg.BaseURL)
	require.Equal(t, 3*time.Second, cfg.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestTransactionPath(t *testing.T) {
	c := NewClient(validConfig(), nil, nil)

	require.Equal(t, "/processors/abcdefabcdefabcdefabcdef/purchase", c.transactionPath("purchase"))
	require.Equal(t, "/transactions/abc/capture", c.transactionPath("transactions/abc/capture"))
	require.Equal(t, "/transactions/abc/void", c.transactionPath("/transactions/abc/void"))
}

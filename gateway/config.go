package gateway

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// Config is the transport configuration of Client.
type Config struct {
	BaseURL          string
	MerchantKey      string
	MerchantPassword string
	ProcessorToken   string
	Timeout          time.Duration
}

var credentialPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:9090",
		Timeout: 10 * time.Second,
	}
}

// FromEnv reads GATEWAY_* variables on top of DefaultConfig.
func FromEnv() *Config {
	cfg := DefaultConfig()
	cfg.BaseURL = getenv("GATEWAY_URL", cfg.BaseURL)
	cfg.MerchantKey = os.Getenv("GATEWAY_MERCHANT_KEY")
	cfg.MerchantPassword = os.Getenv("GATEWAY_MERCHANT_PASSWORD")
	cfg.ProcessorToken = os.Getenv("GATEWAY_PROCESSOR_TOKEN")
	if v := os.Getenv("GATEWAY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	return cfg
}

// Validate checks that the base URL is set and that the merchant key,
// merchant password and processor token look like gateway credentials.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("gateway base URL is required")
	}
	creds := []struct {
		name, value string
	}{
		{"merchant key", c.MerchantKey},
		{"merchant password", c.MerchantPassword},
		{"processor token", c.ProcessorToken},
	}
	for _, cr := range creds {
		if cr.value == "" {
			return fmt.Errorf("%s is required", cr.name)
		}
		if !ValidCredential(cr.value) {
			return fmt.Errorf("not a valid %s", cr.name)
		}
	}
	return nil
}

// ValidCredential reports whether s has the shape of a gateway key or token.
func ValidCredential(s string) bool {
	return credentialPattern.MatchString(s)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

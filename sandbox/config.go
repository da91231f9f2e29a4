package sandbox

import (
	"os"
	"strings"
)

// Config is a configuration for the sandbox gateway
type Config struct {
	HTTPAddr string

	// Credentials checked with basic auth. Empty MerchantKey disables the
	// check. ProcessorToken, when set, must match the processor path.
	MerchantKey      string
	MerchantPassword string
	ProcessorToken   string

	// DeclinedNumbers are card numbers whose transactions are declined.
	DeclinedNumbers []string

	// HashKey is the HMAC key for stored card numbers.
	HashKey string

	// RepoBackend is "mem" or "pg". DBDSN is required for pg.
	RepoBackend string
	DBDSN       string
}

func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:        "localhost:9090",
		DeclinedNumbers: []string{"4242424242424242"},
		HashKey:         "dev-secret-pepper",
		RepoBackend:     "mem",
	}
}

// FromEnv reads the sandbox configuration from the environment on top of
// DefaultConfig.
func FromEnv() *Config {
	cfg := DefaultConfig()
	cfg.HTTPAddr = getenv("SANDBOX_ADDR", cfg.HTTPAddr)
	cfg.MerchantKey = os.Getenv("GATEWAY_MERCHANT_KEY")
	cfg.MerchantPassword = os.Getenv("GATEWAY_MERCHANT_PASSWORD")
	cfg.ProcessorToken = os.Getenv("GATEWAY_PROCESSOR_TOKEN")
	if v := os.Getenv("SANDBOX_DECLINED_NUMBERS"); v != "" {
		cfg.DeclinedNumbers = strings.Split(v, ",")
	}
	cfg.HashKey = getenv("PAN_HASH_KEY", cfg.HashKey)
	cfg.RepoBackend = getenv("REPO_BACKEND", cfg.RepoBackend)
	cfg.DBDSN = os.Getenv("DB_DSN")
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

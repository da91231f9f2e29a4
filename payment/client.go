// Package payment models payment cards and transactions on the client side.
//
// Cards are normalized and validated locally, track which fields changed
// since the last successful sync and talk to the gateway only through a
// gateway.Transport. Gateway status codes are translated into per-field
// messages; declined transactions and invalid cards are outcomes, not errors.
//
// A Card or Transaction must not be used from several goroutines at once.
package payment

import (
	"github.com/alovak/cardvault/gateway"
	"github.com/alovak/cardvault/messages"
	"golang.org/x/exp/slog"
)

// Client builds cards and transactions bound to a transport and config.
type Client struct {
	transport gateway.Transport
	cfg       *Config
	logger    *slog.Logger
}

func New(transport gateway.Transport, cfg *Config, logger *slog.Logger) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		transport: transport,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "payment")),
	}
}

// Config returns the client configuration.
func (c *Client) Config() *Config {
	return c.cfg
}

func (c *Client) language() string {
	if c.cfg.DefaultLanguage == "" {
		return messages.DefaultLanguage
	}
	return c.cfg.DefaultLanguage
}

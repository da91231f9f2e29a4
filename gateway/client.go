package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/exp/slog"
)

// Client is the HTTP/JSON Transport.
type Client struct {
	base   string
	cfg    *Config
	http   *http.Client
	logger *slog.Logger
}

var _ Transport = (*Client)(nil)

// NewClient returns a Client for cfg. A nil hc gets a client with cfg.Timeout;
// a nil logger falls back to slog.Default().
func NewClient(cfg *Config, hc *http.Client, logger *slog.Logger) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		cfg:    cfg,
		http:   hc,
		logger: logger.With(slog.String("component", "gateway")),
	}
}

// Config returns a copy of the client configuration.
func (c *Client) Config() Config {
	return *c.cfg
}

func (c *Client) SubmitCard(ctx context.Context, action CardAction, req CardRequest) (*CardResponse, error) {
	if action != ActionCreate && req.Token == "" {
		return nil, fmt.Errorf("%s payment method: token is required", action)
	}
	methodPath := "/payment_methods/" + url.PathEscape(req.Token)

	var (
		method string
		path   string
		body   any
	)
	switch action {
	case ActionCreate:
		method, path, body = http.MethodPost, "/payment_methods", req.Payload
	case ActionLoad:
		method, path = http.MethodGet, methodPath
	case ActionUpdate:
		method, path, body = http.MethodPut, methodPath, req.Payload
	case ActionRetain:
		method, path = http.MethodPost, methodPath+"/retain"
	case ActionRedact:
		method, path = http.MethodPost, methodPath+"/redact"
	default:
		return nil, fmt.Errorf("unsupported payment method action %q", action)
	}

	var resp CardResponse
	if err := c.do(ctx, method, path, body, &resp); err != nil {
		return nil, fmt.Errorf("%s payment method: %w", action, err)
	}
	return &resp, nil
}

func (c *Client) SubmitTransaction(ctx context.Context, req TransactionRequest) (*TransactionResponse, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("transaction path is required")
	}
	var resp TransactionResponse
	if err := c.do(ctx, http.MethodPost, c.transactionPath(req.Path), req.Payload, &resp); err != nil {
		return nil, fmt.Errorf("process transaction: %w", err)
	}
	return &resp, nil
}

// transactionPath runs new operations against the configured processor.
func (c *Client) transactionPath(p string) string {
	p = strings.TrimLeft(p, "/")
	if strings.HasPrefix(p, "transactions/") {
		return "/" + p
	}
	return "/processors/" + url.PathEscape(c.cfg.ProcessorToken) + "/" + p
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.MerchantKey != "" {
		req.SetBasicAuth(c.cfg.MerchantKey, c.cfg.MerchantPassword)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("gateway request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", time.Since(start)),
	)

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(b))
		var er ErrorResponse
		if json.Unmarshal(b, &er) == nil && er.Error != "" {
			msg = er.Error
		}
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

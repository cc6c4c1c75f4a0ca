// Package tokenizer exchanges raw identifiers for vault transform tokens.
package tokenizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"party360/internal/party/models"
	"party360/internal/platform/config"
	dErrors "party360/pkg/domain-errors"
	"party360/pkg/platform/circuit"
	"party360/pkg/platform/sentinel"
)

// ReasonTokenizationFailed is attached to every upstream failure.
const ReasonTokenizationFailed = "TOKENIZATION_FAILED"

const maxResponseBytes = 256 * 1024

// Client calls the transform encode endpoint:
//
//	POST {base}/v1/transform/encode/{role} {"transformation":"ssn","value":"123456789"}
type Client struct {
	baseURL string
	token   string
	role    string
	http    *http.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) {
		if b != nil {
			cl.breaker = b
		}
	}
}

func New(cfg config.TokenizerConfig, opts ...Option) (*Client, error) {
	if !strings.HasPrefix(cfg.BaseURL, "http") {
		return nil, fmt.Errorf("tokenizer base url must be http(s), got %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	role := cfg.Role
	if role == "" {
		role = "ssn"
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		role:    role,
		http:    &http.Client{Timeout: timeout},
		breaker: circuit.New("tokenizer", circuit.WithFailureThreshold(5), circuit.WithCooldown(10*time.Second)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type encodeRequest struct {
	Transformation string `json:"transformation"`
	Value          string `json:"value"`
}

type encodeResponse struct {
	Data struct {
		EncodedValue string `json:"encoded_value"`
	} `json:"data"`
}

// TokenizeSSN returns the deterministic token for ssn. The tenant is passed
// through as X-Tenant-Id.
func (c *Client) TokenizeSSN(ctx context.Context, ssn, tenant string) (string, error) {
	digits, err := models.SSNDigits(ssn)
	if err != nil {
		return "", err
	}
	if !c.breaker.Allow() {
		return "", upstream("tokenizer circuit open", sentinel.ErrUnavailable)
	}

	token, err := c.encode(ctx, digits, tenant)
	if err != nil {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "tokenizer circuit opened", "tenant", tenant)
		}
		c.logger.WarnContext(ctx, "tokenization failed",
			"masked_ssn", models.MaskSSN(digits),
			"tenant", tenant,
			"error", err,
		)
		return "", upstream("unable to tokenize SSN", err)
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "tokenizer circuit closed")
	}
	return token, nil
}

func (c *Client) encode(ctx context.Context, value, tenant string) (string, error) {
	body, err := json.Marshal(encodeRequest{Transformation: c.role, Value: value})
	if err != nil {
		return "", err
	}
	endpoint := c.baseURL + "/v1/transform/encode/" + url.PathEscape(c.role)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	if c.token != "" {
		req.Header.Set("X-Vault-Token", c.token)
	}
	if tenant != "" {
		req.Header.Set("X-Tenant-Id", tenant)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return "", err
	}
	if len(raw) > maxResponseBytes {
		return "", fmt.Errorf("tokenizer response exceeds %d bytes", maxResponseBytes)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return "", fmt.Errorf("%w: tokenizer returned status %d", sentinel.ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tokenizer returned status %d", resp.StatusCode)
	}

	var out encodeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode tokenizer response: %w", err)
	}
	if out.Data.EncodedValue == "" {
		return "", fmt.Errorf("tokenizer returned empty encoded value")
	}
	return out.Data.EncodedValue, nil
}

func upstream(msg string, cause error) error {
	if cause == nil {
		return dErrors.New(dErrors.CodeUpstream, msg).WithReason(ReasonTokenizationFailed)
	}
	return dErrors.Wrap(cause, dErrors.CodeUpstream, msg).WithReason(ReasonTokenizationFailed)
}

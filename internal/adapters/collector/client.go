package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/moolapay/agency-service/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Moola-DataCollection-Service/1.0"
)

// Config carries the static connection settings for the data-collection API.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the external data-collection REST API. Every request
// carries the service API key plus the caller's language and bearer token.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) ListForms(ctx context.Context, language, bearerToken string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/external/forms", nil, language, bearerToken)
}

func (c *Client) SubmitForm(ctx context.Context, formID string, payload []byte, language, bearerToken string) ([]byte, error) {
	path := fmt.Sprintf("/external/forms/%s/submit", url.PathEscape(formID))
	return c.do(ctx, http.MethodPost, path, payload, language, bearerToken)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, language, bearerToken string) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.cfg.BaseURL, "/")+path, body)
	if err != nil {
		return nil, &domain.GatewayError{Kind: domain.GatewayUnknown, Message: err.Error()}
	}

	req.Header.Set("X-API-Key", c.cfg.APIKey)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if language != "" {
		req.Header.Set("Accept-Language", language)
	}
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.GatewayError{Kind: domain.GatewayUnknown, Message: err.Error()}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	return nil, classifyStatus(resp.StatusCode, raw)
}

// classifyTransportError folds connection and deadline failures into
// UNAVAILABLE so the pipeline treats an unreachable upstream uniformly.
func classifyTransportError(err error) *domain.GatewayError {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return &domain.GatewayError{Kind: domain.GatewayUnavailable, Message: "request timed out"}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return &domain.GatewayError{Kind: domain.GatewayUnavailable, Message: "request timed out"}
		}
		return &domain.GatewayError{Kind: domain.GatewayUnavailable, Message: urlErr.Err.Error()}
	}
	return &domain.GatewayError{Kind: domain.GatewayUnknown, Message: err.Error()}
}

func classifyStatus(status int, raw []byte) *domain.GatewayError {
	ge := &domain.GatewayError{Status: status, Message: upstreamMessage(raw)}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		ge.Kind = domain.GatewayAuthFailed
	case http.StatusNotFound:
		ge.Kind = domain.GatewayNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		ge.Kind = domain.GatewayBadRequest
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		ge.Kind = domain.GatewayUnavailable
	default:
		ge.Kind = domain.GatewayUnknown
	}
	return ge
}

// upstreamMessage pulls a human message out of the error body when the
// upstream sent JSON, falling back to the raw text.
func upstreamMessage(raw []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return msg
}

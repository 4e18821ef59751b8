package cyclos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/moolapay/agency-service/internal/domain"
	"github.com/moolapay/agency-service/internal/ports"
)

const defaultTimeout = 10 * time.Second

// Config carries the basic-auth connection settings for the Cyclos core
// banking API.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// Client is the Cyclos REST gateway used for commission payments and the
// agency float-account balance.
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

// ConfirmMemberPayment posts a payment and returns whatever Cyclos sent
// back. The id and pending fields are lifted out when present; callers
// decide what an acceptable response looks like.
func (c *Client) ConfirmMemberPayment(ctx context.Context, req ports.PaymentRequest) (ports.PaymentResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return ports.PaymentResponse{}, &domain.GatewayError{Kind: domain.GatewayUnknown, Message: err.Error()}
	}

	raw, err := c.do(ctx, http.MethodPost, "/rest/payments/confirmMemberPayment", body)
	if err != nil {
		return ports.PaymentResponse{}, err
	}

	resp := ports.PaymentResponse{Raw: map[string]any{}}
	if err := json.Unmarshal(raw, &resp.Raw); err != nil {
		// Non-JSON success bodies are tolerated; the caller sees an empty id.
		return resp, nil
	}
	switch id := resp.Raw["id"].(type) {
	case string:
		resp.ID = id
	case float64:
		resp.ID = strconv.FormatFloat(id, 'f', -1, 64)
	}
	if pending, ok := resp.Raw["pending"].(bool); ok {
		resp.Pending = &pending
	}
	return resp, nil
}

// AccountBalance reads the default account status and returns its available
// balance.
func (c *Client) AccountBalance(ctx context.Context) (float64, error) {
	raw, err := c.do(ctx, http.MethodGet, "/rest/accounts/default/status", nil)
	if err != nil {
		return 0, err
	}

	var parsed struct {
		AvailableBalance json.Number `json:"availableBalance"`
		Balance          json.Number `json:"balance"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return 0, &domain.GatewayError{Kind: domain.GatewayUnknown, Message: "malformed account status response"}
	}
	number := parsed.AvailableBalance
	if number == "" {
		number = parsed.Balance
	}
	balance, err := number.Float64()
	if err != nil {
		return 0, &domain.GatewayError{Kind: domain.GatewayUnknown, Message: "account status response has no balance"}
	}
	return balance, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.cfg.BaseURL, "/")+path, body)
	if err != nil {
		return nil, &domain.GatewayError{Kind: domain.GatewayUnknown, Message: err.Error()}
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
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

	ge := &domain.GatewayError{Status: resp.StatusCode, Message: upstreamMessage(raw)}
	switch resp.StatusCode {
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
	return nil, ge
}

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

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"festival-settlement/config"
	"festival-settlement/internal/core/ports"
	"festival-settlement/pkg/apperror"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// CheckoutClient implements ports.PaymentGateway against the external
// bank-transfer checkout provider. The session is created before any local
// transaction: a failed local commit leaves an orphan session at the
// provider, never broken local state.
type CheckoutClient struct {
	baseURL    string
	returnURL  string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewCheckoutClient creates a checkout client from gateway config.
func NewCheckoutClient(cfg config.GatewayConfig, log zerolog.Logger) *CheckoutClient {
	return &CheckoutClient{
		baseURL:    cfg.BaseURL,
		returnURL:  cfg.ReturnURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// NewCheckoutClientWithHTTP creates a checkout client with an injected HTTP
// client, used in tests.
func NewCheckoutClientWithHTTP(baseURL, returnURL string, httpClient HTTPClient, log zerolog.Logger) *CheckoutClient {
	return &CheckoutClient{
		baseURL:    baseURL,
		returnURL:  returnURL,
		httpClient: httpClient,
		log:        log,
	}
}

type checkoutRequestBody struct {
	OrderID     string `json:"order_id"`
	ReferenceID string `json:"reference_id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	ReturnURL   string `json:"return_url"`
}

type checkoutResponseBody struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// CreateCheckout opens a checkout session for a pending bank-transfer order.
func (c *CheckoutClient) CreateCheckout(ctx context.Context, req ports.CheckoutRequest) (*ports.CheckoutSession, error) {
	body := checkoutRequestBody{
		OrderID:     req.OrderID.String(),
		ReferenceID: req.ReferenceID,
		Amount:      req.Amount,
		Description: req.Description,
		ReturnURL:   c.returnURL,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal checkout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkouts", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build checkout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperror.ErrGatewayUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperror.ErrGatewayUnavailable(fmt.Errorf("checkout returned status %d", resp.StatusCode))
	}

	var out checkoutResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperror.ErrGatewayUnavailable(fmt.Errorf("decode checkout response: %w", err))
	}
	if out.SessionID == "" || out.CheckoutURL == "" {
		return nil, apperror.ErrGatewayUnavailable(fmt.Errorf("checkout response missing session fields"))
	}

	c.log.Info().
		Str("order_id", body.OrderID).
		Str("session_id", out.SessionID).
		Dur("latency", time.Since(start)).
		Msg("checkout session created")

	return &ports.CheckoutSession{
		SessionID:   out.SessionID,
		CheckoutURL: out.CheckoutURL,
	}, nil
}

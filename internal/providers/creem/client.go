package creem

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dreamnest/dreamnest/internal/config"
)

const (
	liveAPIBase = "https://api.creem.io"
	testAPIBase = "https://test-api.creem.io"

	// Test-mode API keys get routed to the sandbox host.
	testKeyPrefix = "creem_test_"
)

var (
	ErrNotConfigured   = errors.New("creem_not_configured")
	ErrRequestFailed   = errors.New("creem_request_failed")
	ErrInvalidResponse = errors.New("creem_response_invalid")
)

// CheckoutSession is the subset of the provider's checkout object the
// application needs to redirect a buyer.
type CheckoutSession struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkout_url"`
	URL         string `json:"url"`
}

type checkoutRequest struct {
	ProductID  string         `json:"product_id"`
	SuccessURL string         `json:"success_url"`
	Metadata   map[string]any `json:"metadata"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	apiKey     string
	apiBase    string
	successURL string
	client     *http.Client
}

func NewClient(cfg config.Config) *Client {
	apiKey := strings.TrimSpace(cfg.CreemAPIKey)

	apiBase := strings.TrimRight(strings.TrimSpace(cfg.CreemAPIBase), "/")
	if apiBase == "" {
		apiBase = liveAPIBase
		if strings.HasPrefix(apiKey, testKeyPrefix) {
			apiBase = testAPIBase
		}
	}

	return &Client{
		apiKey:     apiKey,
		apiBase:    apiBase,
		successURL: cfg.AppURL + "/payment/success",
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateCheckout opens a hosted checkout session for one credit package.
// The metadata round-trips through the provider and comes back on the
// completed-checkout webhook, which is where the award gets its identity.
func (c *Client) CreateCheckout(ctx context.Context, productID, email, packageKey string, credits int64) (*CheckoutSession, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(checkoutRequest{
		ProductID:  productID,
		SuccessURL: c.successURL,
		Metadata: map[string]any{
			"referenceId": email,
			"packageKey":  packageKey,
			"credits":     credits,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/v1/checkouts", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return nil, ErrRequestFailed
		}
		message := strings.TrimSpace(apiErr.Message)
		if message == "" {
			message = strings.TrimSpace(apiErr.Error.Message)
		}
		if message == "" {
			return nil, ErrRequestFailed
		}
		return nil, errors.New(message)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	if session.CheckoutURL == "" {
		session.CheckoutURL = session.URL
	}
	if session.ID == "" || session.CheckoutURL == "" {
		return nil, ErrInvalidResponse
	}
	return &session, nil
}

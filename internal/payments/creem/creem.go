package creem

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/dreamnest/dreamnest/internal/config"
	paymentdomain "github.com/dreamnest/dreamnest/internal/payments/domain"
)

const SignatureHeader = "creem-signature"

// PackageResolver supplies the static packageKey -> credits fallback used
// when event metadata omits the credit amount.
type PackageResolver interface {
	Credits(key string) (int64, bool)
}

type Adapter struct {
	webhookSecret string
	packages      PackageResolver
}

func NewAdapter(cfg config.Config, packages *config.PackageHolder) *Adapter {
	return &Adapter{
		webhookSecret: strings.TrimSpace(cfg.CreemWebhookSecret),
		packages:      packages,
	}
}

// Verify checks the HMAC-SHA256 hex digest of the raw body against the
// signature header. A missing header or an unconfigured secret fails closed.
func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	signature := strings.TrimSpace(headers.Get(SignatureHeader))
	if signature == "" || a.webhookSecret == "" {
		return paymentdomain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(a.webhookSecret))
	_, _ = mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return paymentdomain.ErrInvalidSignature
	}
	return nil
}

type creemEvent struct {
	ID        string          `json:"id"`
	EventType string          `json:"eventType"`
	Type      string          `json:"type"`
	Event     string          `json:"event"`
	Object    json.RawMessage `json:"object"`
	Data      json.RawMessage `json:"data"`
}

type creemCheckout struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	ProductID string         `json:"product_id"`
	Metadata  map[string]any `json:"metadata"`
}

// Parse extracts a completed-checkout event. The provider has shipped
// several payload shapes, so the event type is read from the first of
// eventType, type, event, or data.type that is present, and the checkout
// object from object or data. Anything that is not a creditable completed
// checkout returns ErrEventIgnored.
func (a *Adapter) Parse(ctx context.Context, payload []byte) (*paymentdomain.CheckoutEvent, error) {
	var event creemEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}

	checkout := decodeCheckout(event.Object)
	if checkout == nil {
		checkout = decodeCheckout(event.Data)
	}

	eventType := firstNonEmpty(event.EventType, event.Type, event.Event)
	if eventType == "" && checkout != nil {
		eventType = strings.TrimSpace(checkout.Type)
	}
	if eventType != paymentdomain.EventTypeCheckoutCompleted {
		return nil, paymentdomain.ErrEventIgnored
	}

	checkoutID := event.ID
	metadata := map[string]any{}
	productID := ""
	if checkout != nil {
		if strings.TrimSpace(checkout.ID) != "" {
			checkoutID = checkout.ID
		}
		if checkout.Metadata != nil {
			metadata = checkout.Metadata
		}
		productID = strings.TrimSpace(checkout.ProductID)
	}
	checkoutID = strings.TrimSpace(checkoutID)
	if checkoutID == "" {
		return nil, paymentdomain.ErrEventIgnored
	}

	email := metadataString(metadata, "referenceId")
	packageKey := metadataString(metadata, "packageKey")

	credits := metadataInt(metadata, "credits")
	if credits <= 0 && a.packages != nil {
		if fallback, ok := a.packages.Credits(packageKey); ok {
			credits = fallback
		}
	}
	if email == "" || credits <= 0 {
		// Malformed metadata is unrecoverable; acknowledging stops the
		// provider from retrying forever.
		return nil, paymentdomain.ErrEventIgnored
	}

	if productID == "" {
		productID = packageKey
	}

	return &paymentdomain.CheckoutEvent{
		CheckoutID: checkoutID,
		Email:      email,
		PackageKey: packageKey,
		ProductID:  productID,
		Credits:    credits,
		RawPayload: payload,
	}, nil
}

func decodeCheckout(raw json.RawMessage) *creemCheckout {
	if len(raw) == 0 {
		return nil
	}
	var checkout creemCheckout
	if err := json.Unmarshal(raw, &checkout); err != nil {
		return nil
	}
	return &checkout
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func metadataString(metadata map[string]any, key string) string {
	if v, ok := metadata[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func metadataInt(metadata map[string]any, key string) int64 {
	switch v := metadata[key].(type) {
	case float64:
		return int64(v)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

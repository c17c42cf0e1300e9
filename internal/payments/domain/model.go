package domain

import (
	"context"
	"errors"
	"net/http"
)

const EventTypeCheckoutCompleted = "checkout.completed"

// CheckoutEvent is the canonical completed-checkout event extracted from a
// provider webhook payload.
type CheckoutEvent struct {
	CheckoutID string
	Email      string
	PackageKey string
	ProductID  string
	Credits    int64
	RawPayload []byte
}

// Adapter verifies and parses provider webhook deliveries. Verify works on
// the exact request bytes, never a re-serialized body.
type Adapter interface {
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*CheckoutEvent, error)
}

type Service interface {
	IngestWebhook(ctx context.Context, payload []byte, headers http.Header) error
}

var (
	ErrInvalidSignature      = errors.New("invalid_signature")
	ErrInvalidPayload        = errors.New("invalid_payload")
	ErrEventIgnored          = errors.New("event_ignored")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")
	ErrUnknownUser           = errors.New("unknown_user")
)

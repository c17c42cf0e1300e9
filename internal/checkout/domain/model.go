package domain

import (
	"context"
	"errors"
)

// Session is a provider-hosted checkout the buyer gets redirected to.
type Session struct {
	CheckoutID  string `json:"checkoutId"`
	CheckoutURL string `json:"checkoutUrl"`
	PackageKey  string `json:"packageKey"`
	Credits     int64  `json:"credits"`
}

type Service interface {
	// CreateSession opens a checkout for one credit package on behalf of
	// the signed-in user.
	CreateSession(ctx context.Context, email, packageKey string) (*Session, error)
}

var (
	ErrUnknownPackage      = errors.New("unknown_package")
	ErrProviderUnavailable = errors.New("payments_unavailable")
)

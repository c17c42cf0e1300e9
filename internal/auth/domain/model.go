package domain

import (
	"context"
	"errors"
	"time"
)

// Session is an authenticated browser session backed by a signed token.
type Session struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}

type Service interface {
	// SignInWithGoogle verifies a Google ID token, provisions the user on
	// first sign-in and issues a session token.
	SignInWithGoogle(ctx context.Context, idToken string) (*Session, error)

	// Authenticate resolves a session token back to the user's email.
	Authenticate(ctx context.Context, token string) (string, error)
}

var (
	ErrInvalidIDToken  = errors.New("invalid_id_token")
	ErrInvalidSession  = errors.New("invalid_session")
	ErrAuthUnavailable = errors.New("auth_unavailable")
)

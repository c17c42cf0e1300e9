package domain

import (
	"context"
	"errors"
)

type AwardRequest struct {
	CheckoutID string
	Email      string
	ProductID  string
	Credits    int64
}

type Service interface {
	// EnsureUser returns the user row for an email, creating it with a zero
	// balance on first sign-in.
	EnsureUser(ctx context.Context, email string) (*User, error)

	// Balance reports the spendable balance; unknown users read as zero.
	Balance(ctx context.Context, email string) (int64, error)

	// Award grants credits for one checkout, exactly once per checkout id.
	// A repeat delivery returns ErrOrderAlreadyProcessed with no writes.
	Award(ctx context.Context, req AwardRequest) error

	// Debit atomically decrements the balance, rejecting the operation when
	// the balance cannot cover the cost.
	Debit(ctx context.Context, email string, cost int64) error

	// Refund compensates a debit whose paid action failed afterwards.
	Refund(ctx context.Context, email string, cost int64) error

	// RecordGeneration appends a usage row after a successful paid action.
	RecordGeneration(ctx context.Context, gen *ToolGeneration) error

	// History lists a user's recent generations for one tool, newest first.
	History(ctx context.Context, email, toolName string, limit int) ([]ToolGeneration, error)
}

var (
	ErrInvalidEmail          = errors.New("invalid_email")
	ErrInvalidAmount         = errors.New("invalid_amount")
	ErrUserNotFound          = errors.New("user_not_found")
	ErrInsufficientCredits   = errors.New("insufficient_credits")
	ErrOrderAlreadyProcessed = errors.New("order_already_processed")
)

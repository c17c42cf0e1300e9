package domain

import (
	"context"
	"errors"
	"time"
)

const (
	ToolBabyGenerator = "ai_baby"

	// BabyGenerationCost is debited before the model call and refunded
	// if the call fails.
	BabyGenerationCost int64 = 1
)

type GenerateBabyRequest struct {
	Email    string
	MomImage string
	DadImage string
	Gender   string
}

type GenerationResult struct {
	ImageURL    string    `json:"imageUrl"`
	Gender      string    `json:"gender"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type HistoryEntry struct {
	ImageURL    string    `json:"imageUrl"`
	Gender      string    `json:"gender"`
	CreditsCost int64     `json:"creditsCost"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Service interface {
	// GenerateBaby runs one paid image generation for the signed-in user.
	GenerateBaby(ctx context.Context, req GenerateBabyRequest) (*GenerationResult, error)

	// History lists the user's recent baby generations, newest first.
	History(ctx context.Context, email string, limit int) ([]HistoryEntry, error)
}

var (
	ErrMissingParentImage = errors.New("missing_parent_image")
	ErrInvalidGender      = errors.New("invalid_gender")
	ErrGenerationFailed   = errors.New("generation_failed")
)

package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	InsertUser(ctx context.Context, db *gorm.DB, user *User) (bool, error)
	AddCredits(ctx context.Context, db *gorm.DB, userID snowflake.ID, delta int64) error
	AddCreditsByEmail(ctx context.Context, db *gorm.DB, email string, delta int64) (bool, error)
	DebitCredits(ctx context.Context, db *gorm.DB, email string, cost int64) (bool, error)
	InsertOrder(ctx context.Context, db *gorm.DB, order *CreditOrder) (bool, error)
	FindOrderByCheckoutID(ctx context.Context, db *gorm.DB, checkoutID string) (*CreditOrder, error)
	InsertGeneration(ctx context.Context, db *gorm.DB, gen *ToolGeneration) error
	ListGenerations(ctx context.Context, db *gorm.DB, email, toolName string, limit int) ([]ToolGeneration, error)
}

package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// User owns a spendable credit balance, keyed by the email the auth
// provider reports. Rows are created on first sign-in and never deleted here.
type User struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Email     string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Credits   int64        `gorm:"not null;default:0" json:"credits"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string { return "users" }

const OrderStatusCompleted = "completed"

// CreditOrder is the append-only record of one settled checkout. The unique
// checkout_id constraint is the idempotency boundary for the award flow.
type CreditOrder struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	CheckoutID     string       `gorm:"type:text;not null;uniqueIndex" json:"checkout_id"`
	UserID         snowflake.ID `gorm:"not null;index" json:"user_id"`
	ProductID      string       `gorm:"type:text;not null" json:"product_id"`
	CreditsAwarded int64        `gorm:"not null" json:"credits_awarded"`
	Status         string       `gorm:"type:text;not null" json:"status"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (CreditOrder) TableName() string { return "credit_orders" }

// ToolGeneration records one paid tool invocation and the cost actually
// charged. The email reference is deliberately weak.
type ToolGeneration struct {
	ID          snowflake.ID   `gorm:"primaryKey" json:"id"`
	UserEmail   string         `gorm:"type:text;not null;index" json:"user_email"`
	ToolName    string         `gorm:"type:text;not null;index" json:"tool_name"`
	ResultURL   string         `gorm:"type:text;not null" json:"result_url"`
	Metadata    datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreditsCost int64          `gorm:"not null" json:"credits_cost"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ToolGeneration) TableName() string { return "tool_generations" }

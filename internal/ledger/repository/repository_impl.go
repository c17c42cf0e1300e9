package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/dreamnest/dreamnest/internal/ledger/domain"
	pkgdb "github.com/dreamnest/dreamnest/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repo) InsertUser(ctx context.Context, db *gorm.DB, user *domain.User) (bool, error) {
	res := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(user)
	if res.Error != nil {
		if pkgdb.IsDuplicateKeyErr(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) AddCredits(ctx context.Context, db *gorm.DB, userID snowflake.ID, delta int64) error {
	res := db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		UpdateColumn("credits", gorm.Expr("credits + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *repo) AddCreditsByEmail(ctx context.Context, db *gorm.DB, email string, delta int64) (bool, error) {
	res := db.WithContext(ctx).Model(&domain.User{}).
		Where("email = ?", email).
		UpdateColumn("credits", gorm.Expr("credits + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) DebitCredits(ctx context.Context, db *gorm.DB, email string, cost int64) (bool, error) {
	// The balance guard lives in the WHERE clause so the store, not the
	// handler, arbitrates concurrent debits.
	res := db.WithContext(ctx).Model(&domain.User{}).
		Where("email = ? AND credits >= ?", email, cost).
		UpdateColumn("credits", gorm.Expr("credits - ?", cost))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) InsertOrder(ctx context.Context, db *gorm.DB, order *domain.CreditOrder) (bool, error) {
	res := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "checkout_id"}},
		DoNothing: true,
	}).Create(order)
	if res.Error != nil {
		// Some dialects surface the unique violation instead of honoring
		// the conflict clause. Same outcome: the checkout was seen before.
		if pkgdb.IsDuplicateKeyErr(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindOrderByCheckoutID(ctx context.Context, db *gorm.DB, checkoutID string) (*domain.CreditOrder, error) {
	var order domain.CreditOrder
	err := db.WithContext(ctx).Where("checkout_id = ?", checkoutID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) InsertGeneration(ctx context.Context, db *gorm.DB, gen *domain.ToolGeneration) error {
	return db.WithContext(ctx).Create(gen).Error
}

func (r *repo) ListGenerations(ctx context.Context, db *gorm.DB, email, toolName string, limit int) ([]domain.ToolGeneration, error) {
	var items []domain.ToolGeneration
	err := db.WithContext(ctx).
		Where("user_email = ? AND tool_name = ?", email, toolName).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

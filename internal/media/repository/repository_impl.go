package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dreamnest/dreamnest/internal/media/domain"
	"github.com/dreamnest/dreamnest/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]domain.MediaItem, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&domain.MediaItem{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.MediaItem
	err := db.WithContext(ctx).
		Order("uploaded_at DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.MediaItem, error) {
	var item domain.MediaItem
	err := db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

package service

import (
	"context"
	"encoding/json"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	mediadomain "github.com/dreamnest/dreamnest/internal/media/domain"
	"github.com/dreamnest/dreamnest/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo mediadomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo mediadomain.Repository
}

func NewService(p Params) mediadomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("media.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context, page pagination.Pagination) (*mediadomain.ListResult, error) {
	page = page.Clamp()

	items, total, err := s.repo.List(ctx, s.db, page)
	if err != nil {
		return nil, err
	}

	listItems := make([]mediadomain.ListItem, 0, len(items))
	for _, item := range items {
		listItems = append(listItems, mediadomain.ListItem{
			ID:           item.ID,
			Type:         item.Type,
			ThumbnailURL: item.ThumbnailURL,
			Model:        item.Model,
			Width:        item.Width,
			Height:       item.Height,
		})
	}

	return &mediadomain.ListResult{
		Items:    listItems,
		PageInfo: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*mediadomain.Detail, error) {
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, mediadomain.ErrMediaNotFound
	}

	refs := []string{}
	if len(item.ReferenceImages) > 0 {
		_ = json.Unmarshal(item.ReferenceImages, &refs)
	}

	return &mediadomain.Detail{
		ID:              item.ID,
		Type:            item.Type,
		FullURL:         item.FullURL,
		Model:           item.Model,
		Prompt:          item.Prompt,
		Width:           item.Width,
		Height:          item.Height,
		Duration:        item.Duration,
		ReferenceImages: refs,
	}, nil
}

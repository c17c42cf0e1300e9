package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	mediadomain "github.com/dreamnest/dreamnest/internal/media/domain"
	"github.com/dreamnest/dreamnest/internal/media/repository"
	"github.com/dreamnest/dreamnest/pkg/db/pagination"
)

func newTestService(t *testing.T) mediadomain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every pooled connection to :memory: is its own database.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&mediadomain.MediaItem{}))

	return NewService(Params{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: repository.Provide(),
	})
}

func seedItems(t *testing.T, svc mediadomain.Service, n int) {
	t.Helper()
	s := svc.(*Service)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, s.db.Create(&mediadomain.MediaItem{
			ID:           fmt.Sprintf("img_%03d", i),
			Type:         mediadomain.MediaTypeImage,
			ThumbnailURL: fmt.Sprintf("https://cdn.example/thumb/%d.jpg", i),
			FullURL:      fmt.Sprintf("https://cdn.example/full/%d.jpg", i),
			Model:        "seedream-4.5",
			Prompt:       "a city at night",
			Width:        1200,
			Height:       1600,
			UploadedAt:   base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}
}

func TestListPagination(t *testing.T) {
	svc := newTestService(t)
	seedItems(t, svc, 25)

	first, err := svc.List(context.Background(), pagination.Pagination{Page: 1, Size: 20})
	require.NoError(t, err)
	assert.Len(t, first.Items, 20)
	assert.Equal(t, int64(25), first.PageInfo.Total)
	assert.True(t, first.PageInfo.HasNext)
	// Newest upload first.
	assert.Equal(t, "img_024", first.Items[0].ID)

	second, err := svc.List(context.Background(), pagination.Pagination{Page: 2, Size: 20})
	require.NoError(t, err)
	assert.Len(t, second.Items, 5)
	assert.False(t, second.PageInfo.HasNext)
}

func TestListClampsBadInput(t *testing.T) {
	svc := newTestService(t)
	seedItems(t, svc, 3)

	result, err := svc.List(context.Background(), pagination.Pagination{Page: -1, Size: 0})
	require.NoError(t, err)
	assert.Len(t, result.Items, 3)
	assert.Equal(t, 1, result.PageInfo.Page)
	assert.Equal(t, 20, result.PageInfo.Size)
}

func TestGetDetail(t *testing.T) {
	svc := newTestService(t)
	s := svc.(*Service)
	require.NoError(t, s.db.Create(&mediadomain.MediaItem{
		ID:              "img_1",
		Type:            mediadomain.MediaTypeImage,
		ThumbnailURL:    "https://cdn.example/thumb/1.jpg",
		FullURL:         "https://cdn.example/full/1.jpg",
		Model:           "seedream-4.5",
		Prompt:          "a futuristic cityscape",
		Width:           1200,
		Height:          1600,
		ReferenceImages: []byte(`["https://cdn.example/ref/1.jpg"]`),
		UploadedAt:      time.Now().UTC(),
	}).Error)

	detail, err := svc.Get(context.Background(), "img_1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/full/1.jpg", detail.FullURL)
	assert.Equal(t, "a futuristic cityscape", detail.Prompt)
	assert.Equal(t, []string{"https://cdn.example/ref/1.jpg"}, detail.ReferenceImages)
}

func TestGetUnknownID(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), "img_missing")
	assert.ErrorIs(t, err, mediadomain.ErrMediaNotFound)
}

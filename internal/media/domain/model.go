package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dreamnest/dreamnest/pkg/db/pagination"
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// MediaItem is one gallery entry. IDs are external strings because the
// catalog is seeded from an import pipeline rather than generated here.
type MediaItem struct {
	ID              string         `gorm:"primaryKey;type:text" json:"id"`
	Type            string         `gorm:"type:text;not null" json:"type"`
	ThumbnailURL    string         `gorm:"type:text;not null" json:"thumbnail_url"`
	FullURL         string         `gorm:"type:text;not null" json:"full_url"`
	Model           string         `gorm:"type:text;not null" json:"model"`
	Prompt          string         `gorm:"type:text" json:"prompt"`
	Width           int            `gorm:"not null" json:"width"`
	Height          int            `gorm:"not null" json:"height"`
	Duration        string         `gorm:"type:text" json:"duration,omitempty"`
	ReferenceImages datatypes.JSON `gorm:"type:jsonb" json:"reference_images,omitempty"`
	UploadedAt      time.Time      `gorm:"not null;index;default:CURRENT_TIMESTAMP" json:"uploaded_at"`
}

func (MediaItem) TableName() string { return "media_items" }

// ListItem is the lean projection the gallery grid renders.
type ListItem struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Model        string `json:"model"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

// Detail is the full record the lightbox view renders.
type Detail struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"`
	FullURL         string   `json:"fullUrl"`
	Model           string   `json:"model"`
	Prompt          string   `json:"prompt"`
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	Duration        string   `json:"duration,omitempty"`
	ReferenceImages []string `json:"reference_image"`
}

type ListResult struct {
	Items    []ListItem          `json:"items"`
	PageInfo pagination.PageInfo `json:"-"`
}

type Service interface {
	// List pages through the catalog, newest upload first.
	List(ctx context.Context, page pagination.Pagination) (*ListResult, error)

	// Get returns one item's full detail.
	Get(ctx context.Context, id string) (*Detail, error)
}

type Repository interface {
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]MediaItem, int64, error)
	FindByID(ctx context.Context, db *gorm.DB, id string) (*MediaItem, error)
}

var ErrMediaNotFound = errors.New("media_not_found")

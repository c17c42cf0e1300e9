package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/dreamnest/dreamnest/internal/config"
)

var ErrNotConfigured = errors.New("storage_not_configured")

// ObjectStore persists generated media and streams it back for downloads.
type ObjectStore interface {
	// Upload writes one object and returns its public URL.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Download streams an object. The caller closes the reader.
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

type Client struct {
	log       *zap.Logger
	bucket    *oss.Bucket
	endpoint  string
	bucketRef string
	keyPrefix string
}

// New builds the object store, or an unconfigured stub when the bucket
// credentials are absent so the rest of the app can still run.
func New(p Params) (ObjectStore, error) {
	cfg := p.Config
	if cfg.OSSEndpoint == "" || cfg.OSSAccessKeyID == "" || cfg.OSSAccessKeySecret == "" || cfg.OSSBucket == "" {
		p.Log.Warn("object storage not configured, uploads disabled")
		return &Client{log: p.Log.Named("storage")}, nil
	}

	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKeyID, cfg.OSSAccessKeySecret, oss.Region(cfg.OSSRegion))
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, err
	}

	return &Client{
		log:       p.Log.Named("storage"),
		bucket:    bucket,
		endpoint:  strings.TrimPrefix(strings.TrimPrefix(cfg.OSSEndpoint, "https://"), "http://"),
		bucketRef: cfg.OSSBucket,
		keyPrefix: cfg.OSSKeyPrefix,
	}, nil
}

func (c *Client) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if c.bucket == nil {
		return "", ErrNotConfigured
	}
	key = c.withPrefix(key)

	err := c.bucket.PutObject(key, bytes.NewReader(data),
		oss.ContentType(contentType),
		oss.CacheControl("public, max-age=31536000, immutable"),
		oss.WithContext(ctx),
	)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://%s.%s/%s", c.bucketRef, c.endpoint, key), nil
}

func (c *Client) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if c.bucket == nil {
		return nil, "", ErrNotConfigured
	}

	body, err := c.bucket.GetObject(key, oss.WithContext(ctx))
	if err != nil {
		return nil, "", err
	}

	contentType := "application/octet-stream"
	if meta, err := c.bucket.GetObjectDetailedMeta(key); err == nil {
		if ct := meta.Get("Content-Type"); ct != "" {
			contentType = ct
		}
	}
	return body, contentType, nil
}

func (c *Client) withPrefix(key string) string {
	key = strings.TrimLeft(key, "/")
	if c.keyPrefix == "" {
		return key
	}
	return path.Join(c.keyPrefix, key)
}

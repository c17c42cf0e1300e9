package server

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dreamnest/dreamnest/internal/storage"
)

// Download streams an object out of storage by key, or by media id with an
// optional type=thumb variant. Media ids resolve to full-resolution assets
// via the catalog when the object store has no copy.
func (s *Server) Download(c *gin.Context) {
	key := strings.TrimSpace(c.Query("key"))
	if key != "" {
		s.streamObject(c, key)
		return
	}

	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		AbortWithError(c, newValidationError("key", "invalid_request", "key or id is required"))
		return
	}

	variant := c.DefaultQuery("type", "original")
	objKey := id
	if variant == "thumb" {
		objKey = id + "_thumb"
	}

	body, contentType, err := s.store.Download(c.Request.Context(), objKey)
	if err == nil {
		defer body.Close()
		writeDownloadHeaders(c, objKey, contentType)
		c.DataFromReader(http.StatusOK, -1, contentType, body, nil)
		return
	}

	// No stored object; fall back to the catalog's public URL.
	detail, detailErr := s.mediaSvc.Get(c.Request.Context(), id)
	if detailErr != nil {
		AbortWithError(c, detailErr)
		return
	}
	c.Redirect(http.StatusFound, detail.FullURL)
}

func (s *Server) streamObject(c *gin.Context, key string) {
	body, contentType, err := s.store.Download(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	defer body.Close()

	writeDownloadHeaders(c, key, contentType)
	c.DataFromReader(http.StatusOK, -1, contentType, body, nil)
}

func writeDownloadHeaders(c *gin.Context, key, contentType string) {
	filename := path.Base(key)
	if filename == "" || filename == "." {
		filename = "file"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
}

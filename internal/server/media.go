package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dreamnest/dreamnest/pkg/db/pagination"
)

func (s *Server) ListImages(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, newValidationError("page", "invalid_request", "invalid pagination"))
		return
	}

	result, err := s.mediaSvc.List(c.Request.Context(), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=60, s-maxage=300, stale-while-revalidate=600")
	c.JSON(http.StatusOK, gin.H{
		"items":   result.Items,
		"total":   result.PageInfo.Total,
		"hasNext": result.PageInfo.HasNext,
	})
}

func (s *Server) GetImage(c *gin.Context) {
	detail, err := s.mediaSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=120, s-maxage=600, stale-while-revalidate=1200")
	c.JSON(http.StatusOK, detail)
}

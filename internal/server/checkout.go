package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createCheckoutRequest struct {
	PackageKey string `json:"packageKey"`
}

func (s *Server) CreateCheckout(c *gin.Context) {
	email := currentEmail(c)

	if s.limiter.Enabled() && !s.limiter.AllowCheckout(c.Request.Context(), email) {
		s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), "checkout")
		AbortWithError(c, ErrTooManyRequest)
		return
	}

	var req createCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("packageKey", "invalid_request", "packageKey is required"))
		return
	}

	session, err := s.checkoutSvc.CreateSession(c.Request.Context(), email, req.PackageKey)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

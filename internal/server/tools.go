package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	toolsdomain "github.com/dreamnest/dreamnest/internal/tools/domain"
)

type generateBabyRequest struct {
	MomImage string `json:"momImage"`
	DadImage string `json:"dadImage"`
	Gender   string `json:"gender"`
}

func (s *Server) GenerateBaby(c *gin.Context) {
	email := currentEmail(c)
	ctx := c.Request.Context()

	if s.limiter.Enabled() && !s.limiter.AllowTool(ctx, email) {
		s.obsMetrics.RecordRateLimitDenied(ctx, "tool")
		AbortWithError(c, ErrTooManyRequest)
		return
	}

	lockToken, ok := s.limiter.TryLockTool(ctx, email)
	if !ok {
		AbortWithError(c, ErrTooManyRequest)
		return
	}
	defer s.limiter.UnlockTool(ctx, email, lockToken)

	var req generateBabyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	result, err := s.toolsSvc.GenerateBaby(ctx, toolsdomain.GenerateBabyRequest{
		Email:    email,
		MomImage: req.MomImage,
		DadImage: req.DadImage,
		Gender:   req.Gender,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) BabyHistory(c *gin.Context) {
	email := currentEmail(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := s.toolsSvc.History(c.Request.Context(), email, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) UserCredits(c *gin.Context) {
	email := currentEmail(c)

	credits, err := s.ledgerSvc.Balance(c.Request.Context(), email)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"credits": credits})
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type googleSignInRequest struct {
	IDToken string `json:"idToken"`
}

func (s *Server) GoogleSignIn(c *gin.Context) {
	var req googleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IDToken == "" {
		AbortWithError(c, newValidationError("idToken", "invalid_request", "idToken is required"))
		return
	}

	session, err := s.authSvc.SignInWithGoogle(c.Request.Context(), req.IDToken)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Issue(c, session.Token, session.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{"email": session.Email})
}

func (s *Server) Logout(c *gin.Context) {
	s.sessions.Revoke(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Me(c *gin.Context) {
	email := currentEmail(c)

	credits, err := s.ledgerSvc.Balance(c.Request.Context(), email)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"email": email, "credits": credits})
}

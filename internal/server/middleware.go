package server

import (
	"github.com/gin-gonic/gin"

	"github.com/dreamnest/dreamnest/internal/observability/obsctx"
)

const contextUserEmail = "user_email"

// AuthRequired resolves the session cookie to a user email. Requests
// without a valid session are rejected before the handler runs.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.Token(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		email, err := s.authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.sessions.Revoke(c)
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextUserEmail, email)
		c.Request = c.Request.WithContext(obsctx.WithUserEmail(c.Request.Context(), email))
		c.Next()
	}
}

func currentEmail(c *gin.Context) string {
	email, _ := c.Get(contextUserEmail)
	if str, ok := email.(string); ok {
		return str
	}
	return ""
}

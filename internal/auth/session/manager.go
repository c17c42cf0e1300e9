package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dreamnest/dreamnest/internal/config"
)

// CookieName carries the signed session token. The cookie is always
// HttpOnly; Secure follows deployment config so local sign-in still works
// over plain http.
const CookieName = "dn_session"

// Manager issues and revokes the browser session cookie.
type Manager struct {
	secure bool
}

func NewManager(cfg config.Config) *Manager {
	return &Manager{secure: cfg.AuthCookieSecure}
}

// Token extracts the session token from the request, if one is present.
func (m *Manager) Token(c *gin.Context) (string, bool) {
	raw, err := c.Cookie(CookieName)
	if err != nil || strings.TrimSpace(raw) == "" {
		return "", false
	}
	return raw, true
}

// Issue sets the session cookie, valid until expiresAt.
func (m *Manager) Issue(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, maxAge, "/", "", m.secure, true)
}

// Revoke expires the session cookie immediately.
func (m *Manager) Revoke(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", m.secure, true)
}

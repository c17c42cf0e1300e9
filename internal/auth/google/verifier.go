package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dreamnest/dreamnest/internal/auth/domain"
	"github.com/dreamnest/dreamnest/internal/config"
)

const tokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// Verifier validates Google ID tokens against the tokeninfo endpoint and
// returns the verified email.
type Verifier struct {
	clientID string
	endpoint string
	client   *http.Client
}

func NewVerifier(cfg config.Config) *Verifier {
	return &Verifier{
		clientID: cfg.GoogleClientID,
		endpoint: tokenInfoURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type tokenInfo struct {
	Audience      string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Expires       string `json:"exp"`
}

func (v *Verifier) Verify(ctx context.Context, idToken string) (string, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" || v.clientID == "" {
		return "", domain.ErrInvalidIDToken
	}

	endpoint := v.endpoint + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return "", domain.ErrAuthUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domain.ErrInvalidIDToken
	}

	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", domain.ErrInvalidIDToken
	}
	if info.Audience != v.clientID || info.EmailVerified != "true" || info.Email == "" {
		return "", domain.ErrInvalidIDToken
	}
	return strings.ToLower(info.Email), nil
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	authdomain "github.com/dreamnest/dreamnest/internal/auth/domain"
	"github.com/dreamnest/dreamnest/internal/config"
	ledgerdomain "github.com/dreamnest/dreamnest/internal/ledger/domain"
)

const sessionTTL = 7 * 24 * time.Hour

// IdentityVerifier validates an external ID token and returns the verified
// email address.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (string, error)
}

type Params struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Verifier IdentityVerifier
	Ledger   ledgerdomain.Service
}

type Service struct {
	jwtSecret []byte
	log       *zap.Logger
	verifier  IdentityVerifier
	ledger    ledgerdomain.Service
}

func NewService(p Params) authdomain.Service {
	return &Service{
		jwtSecret: []byte(p.Config.AuthJWTSecret),
		log:       p.Log.Named("auth.service"),
		verifier:  p.Verifier,
		ledger:    p.Ledger,
	}
}

func (s *Service) SignInWithGoogle(ctx context.Context, idToken string) (*authdomain.Session, error) {
	if len(s.jwtSecret) == 0 {
		return nil, authdomain.ErrAuthUnavailable
	}

	email, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.EnsureUser(ctx, email); err != nil {
		s.log.Error("user provisioning failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	expiresAt := time.Now().Add(sessionTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": email,
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	s.log.Info("user signed in", zap.String("email", email))
	return &authdomain.Session{
		Email:     email,
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) Authenticate(ctx context.Context, tokenString string) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", authdomain.ErrAuthUnavailable
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", authdomain.ErrInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", authdomain.ErrInvalidSession
	}
	email, ok := claims["sub"].(string)
	if !ok || email == "" {
		return "", authdomain.ErrInvalidSession
	}
	return email, nil
}

package service

import (
	"context"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	checkoutdomain "github.com/dreamnest/dreamnest/internal/checkout/domain"
	"github.com/dreamnest/dreamnest/internal/config"
	ledgerdomain "github.com/dreamnest/dreamnest/internal/ledger/domain"
	obsmetrics "github.com/dreamnest/dreamnest/internal/observability/metrics"
	provcreem "github.com/dreamnest/dreamnest/internal/providers/creem"
)

// Provider opens hosted checkout sessions at the payment provider.
type Provider interface {
	CreateCheckout(ctx context.Context, productID, email, packageKey string, credits int64) (*provcreem.CheckoutSession, error)
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Packages   *config.PackageHolder
	Provider   Provider
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	packages   *config.PackageHolder
	provider   Provider
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) checkoutdomain.Service {
	return &Service{
		log:        p.Log.Named("checkout.service"),
		packages:   p.Packages,
		provider:   p.Provider,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) CreateSession(ctx context.Context, email, packageKey string) (*checkoutdomain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ledgerdomain.ErrInvalidEmail
	}

	pkg, ok := s.packages.Resolve(packageKey)
	if !ok {
		return nil, checkoutdomain.ErrUnknownPackage
	}

	session, err := s.provider.CreateCheckout(ctx, pkg.ProductID, email, pkg.Key, pkg.Credits)
	if err != nil {
		s.log.Error("checkout session failed",
			zap.String("package_key", pkg.Key),
			zap.Error(err),
		)
		return nil, checkoutdomain.ErrProviderUnavailable
	}

	s.log.Info("checkout session opened",
		zap.String("checkout_id", session.ID),
		zap.String("package_key", pkg.Key),
	)
	s.obsMetrics.RecordCheckoutSession(ctx, pkg.Key)

	return &checkoutdomain.Session{
		CheckoutID:  session.ID,
		CheckoutURL: session.CheckoutURL,
		PackageKey:  pkg.Key,
		Credits:     pkg.Credits,
	}, nil
}

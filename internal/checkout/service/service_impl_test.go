package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	checkoutdomain "github.com/dreamnest/dreamnest/internal/checkout/domain"
	"github.com/dreamnest/dreamnest/internal/config"
	provcreem "github.com/dreamnest/dreamnest/internal/providers/creem"
)

type fakeProvider struct {
	productID  string
	packageKey string
	credits    int64
	err        error
}

func (f *fakeProvider) CreateCheckout(ctx context.Context, productID, email, packageKey string, credits int64) (*provcreem.CheckoutSession, error) {
	f.productID = productID
	f.packageKey = packageKey
	f.credits = credits
	if f.err != nil {
		return nil, f.err
	}
	return &provcreem.CheckoutSession{ID: "chk_1", CheckoutURL: "https://checkout.example/chk_1"}, nil
}

func newTestService(provider Provider) checkoutdomain.Service {
	return NewService(Params{
		Log:      zap.NewNop(),
		Packages: config.NewStaticPackageHolder(config.DefaultCreditPackages()),
		Provider: provider,
	})
}

func TestCreateSession(t *testing.T) {
	provider := &fakeProvider{}
	svc := newTestService(provider)

	session, err := svc.CreateSession(context.Background(), "Alice@Example.com", "growth")
	require.NoError(t, err)

	assert.Equal(t, "chk_1", session.CheckoutID)
	assert.Equal(t, "https://checkout.example/chk_1", session.CheckoutURL)
	assert.Equal(t, "growth", session.PackageKey)
	assert.Equal(t, int64(200), session.Credits)

	assert.Equal(t, "prod_growth_200", provider.productID)
	assert.Equal(t, int64(200), provider.credits)
}

func TestCreateSessionUnknownPackage(t *testing.T) {
	svc := newTestService(&fakeProvider{})

	_, err := svc.CreateSession(context.Background(), "alice@example.com", "mega")
	assert.ErrorIs(t, err, checkoutdomain.ErrUnknownPackage)
}

func TestCreateSessionProviderFailure(t *testing.T) {
	svc := newTestService(&fakeProvider{err: errors.New("boom")})

	_, err := svc.CreateSession(context.Background(), "alice@example.com", "starter")
	assert.ErrorIs(t, err, checkoutdomain.ErrProviderUnavailable)
}

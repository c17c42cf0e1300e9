package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authservice "github.com/dreamnest/dreamnest/internal/auth/service"
	"github.com/dreamnest/dreamnest/internal/auth/session"
	checkoutservice "github.com/dreamnest/dreamnest/internal/checkout/service"
	"github.com/dreamnest/dreamnest/internal/config"
	ledgerdomain "github.com/dreamnest/dreamnest/internal/ledger/domain"
	ledgerrepository "github.com/dreamnest/dreamnest/internal/ledger/repository"
	ledgerservice "github.com/dreamnest/dreamnest/internal/ledger/service"
	mediadomain "github.com/dreamnest/dreamnest/internal/media/domain"
	mediarepository "github.com/dreamnest/dreamnest/internal/media/repository"
	mediaservice "github.com/dreamnest/dreamnest/internal/media/service"
	"github.com/dreamnest/dreamnest/internal/observability"
	"github.com/dreamnest/dreamnest/internal/payments/creem"
	paymentservice "github.com/dreamnest/dreamnest/internal/payments/service"
	provcreem "github.com/dreamnest/dreamnest/internal/providers/creem"
	"github.com/dreamnest/dreamnest/internal/providers/openrouter"
	toolsservice "github.com/dreamnest/dreamnest/internal/tools/service"
)

const (
	testWebhookSecret = "whsec_test"
	testJWTSecret     = "jwt_test_secret"
)

type fakeCheckoutProvider struct {
	err error
}

func (f *fakeCheckoutProvider) CreateCheckout(ctx context.Context, productID, email, packageKey string, credits int64) (*provcreem.CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &provcreem.CheckoutSession{ID: "chk_test", CheckoutURL: "https://checkout.example/chk_test"}, nil
}

type fakeGenerator struct {
	result string
	err    error
}

func (f *fakeGenerator) GenerateImage(ctx context.Context, parts []openrouter.ImagePart) (string, error) {
	return f.result, f.err
}

type fakeStore struct {
	url string
	err error
}

func (f *fakeStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func (f *fakeStore) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return nil, "", errors.New("no object store in tests")
}

type fakeVerifier struct {
	email string
}

func (f *fakeVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	return f.email, nil
}

type testHarness struct {
	server *Server
	ledger ledgerdomain.Service
	db     *gorm.DB
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every pooled connection to :memory: is its own database.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&ledgerdomain.User{},
		&ledgerdomain.CreditOrder{},
		&ledgerdomain.ToolGeneration{},
		&mediadomain.MediaItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	cfg := config.Config{
		CreemWebhookSecret: testWebhookSecret,
		AuthJWTSecret:      testJWTSecret,
	}
	packages := config.NewStaticPackageHolder(config.DefaultCreditPackages())

	ledgerSvc := ledgerservice.NewService(ledgerservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  ledgerrepository.Provide(),
	})

	paymentSvc := paymentservice.NewService(paymentservice.Params{
		Log:     log,
		Adapter: creem.NewAdapter(cfg, packages),
		Ledger:  ledgerSvc,
	})

	authSvc := authservice.NewService(authservice.Params{
		Config:   cfg,
		Log:      log,
		Verifier: &fakeVerifier{email: "alice@example.com"},
		Ledger:   ledgerSvc,
	})

	checkoutSvc := checkoutservice.NewService(checkoutservice.Params{
		Log:      log,
		Packages: packages,
		Provider: &fakeCheckoutProvider{},
	})

	toolsSvc := toolsservice.NewService(toolsservice.Params{
		Log:       log,
		Ledger:    ledgerSvc,
		Generator: &fakeGenerator{result: "data:image/png;base64,aGVsbG8="},
		Store:     &fakeStore{url: "https://bucket.example/baby.png"},
	})

	mediaSvc := mediaservice.NewService(mediaservice.Params{
		DB:   db,
		Log:  log,
		Repo: mediarepository.Provide(),
	})

	srv := NewServer(ServerParams{
		Gin:         NewEngine(observability.Config{}),
		AuthSvc:     authSvc,
		Sessions:    session.NewManager(cfg),
		LedgerSvc:   ledgerSvc,
		PaymentSvc:  paymentSvc,
		CheckoutSvc: checkoutSvc,
		ToolsSvc:    toolsSvc,
		MediaSvc:    mediaSvc,
		Store:       &fakeStore{},
	})

	return &testHarness{server: srv, ledger: ledgerSvc, db: db}
}

func (h *testHarness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.server.Engine().ServeHTTP(rec, req)
	return rec
}

// signIn runs the Google sign-in flow and returns the session cookie.
func (h *testHarness) signIn(t *testing.T) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/google", strings.NewReader(`{"idToken":"stub"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := h.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == session.CookieName {
			return cookie
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func (h *testHarness) balance(t *testing.T, email string) int64 {
	t.Helper()
	credits, err := h.ledger.Balance(context.Background(), email)
	require.NoError(t, err)
	return credits
}

func signPayload(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dreamnest/dreamnest/internal/config"
	ledgerdomain "github.com/dreamnest/dreamnest/internal/ledger/domain"
	"github.com/dreamnest/dreamnest/internal/payments/creem"
	paymentdomain "github.com/dreamnest/dreamnest/internal/payments/domain"
)

const testSecret = "whsec_test"

type fakeLedger struct {
	ledgerdomain.Service

	awards   []ledgerdomain.AwardRequest
	awardErr error
}

func (f *fakeLedger) Award(ctx context.Context, req ledgerdomain.AwardRequest) error {
	f.awards = append(f.awards, req)
	return f.awardErr
}

func newTestService(ledger *fakeLedger) paymentdomain.Service {
	adapter := creem.NewAdapter(
		config.Config{CreemWebhookSecret: testSecret},
		config.NewStaticPackageHolder(config.DefaultCreditPackages()),
	)
	return NewService(Params{
		Log:     zap.NewNop(),
		Adapter: adapter,
		Ledger:  ledger,
	})
}

func signedHeaders(payload []byte) http.Header {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(payload)
	headers := http.Header{}
	headers.Set(creem.SignatureHeader, hex.EncodeToString(mac.Sum(nil)))
	return headers
}

func completedCheckout() []byte {
	return []byte(`{
		"eventType": "checkout.completed",
		"object": {
			"id": "chk_1",
			"product_id": "prod_starter_80",
			"metadata": {"referenceId": "alice@example.com", "packageKey": "starter", "credits": 80}
		}
	}`)
}

func TestIngestWebhookAwards(t *testing.T) {
	ledger := &fakeLedger{}
	svc := newTestService(ledger)

	payload := completedCheckout()
	err := svc.IngestWebhook(context.Background(), payload, signedHeaders(payload))
	require.NoError(t, err)

	require.Len(t, ledger.awards, 1)
	assert.Equal(t, "chk_1", ledger.awards[0].CheckoutID)
	assert.Equal(t, "alice@example.com", ledger.awards[0].Email)
	assert.Equal(t, int64(80), ledger.awards[0].Credits)
}

func TestIngestWebhookRejectsBadSignature(t *testing.T) {
	ledger := &fakeLedger{}
	svc := newTestService(ledger)

	payload := completedCheckout()
	headers := http.Header{}
	headers.Set(creem.SignatureHeader, "deadbeef")

	err := svc.IngestWebhook(context.Background(), payload, headers)
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidSignature)
	assert.Empty(t, ledger.awards, "unverified payload must not reach the ledger")
}

func TestIngestWebhookIgnoresOtherEvents(t *testing.T) {
	ledger := &fakeLedger{}
	svc := newTestService(ledger)

	payload := []byte(`{"eventType": "subscription.created", "object": {"id": "sub_1"}}`)
	err := svc.IngestWebhook(context.Background(), payload, signedHeaders(payload))
	assert.ErrorIs(t, err, paymentdomain.ErrEventIgnored)
	assert.Empty(t, ledger.awards)
}

func TestIngestWebhookMapsLedgerSentinels(t *testing.T) {
	t.Run("duplicate delivery", func(t *testing.T) {
		ledger := &fakeLedger{awardErr: ledgerdomain.ErrOrderAlreadyProcessed}
		svc := newTestService(ledger)

		payload := completedCheckout()
		err := svc.IngestWebhook(context.Background(), payload, signedHeaders(payload))
		assert.ErrorIs(t, err, paymentdomain.ErrEventAlreadyProcessed)
	})

	t.Run("unknown user", func(t *testing.T) {
		ledger := &fakeLedger{awardErr: ledgerdomain.ErrUserNotFound}
		svc := newTestService(ledger)

		payload := completedCheckout()
		err := svc.IngestWebhook(context.Background(), payload, signedHeaders(payload))
		assert.ErrorIs(t, err, paymentdomain.ErrUnknownUser)
	})
}

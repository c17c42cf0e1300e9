package creem

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamnest/dreamnest/internal/config"
	paymentdomain "github.com/dreamnest/dreamnest/internal/payments/domain"
)

func newTestAdapter(secret string) *Adapter {
	return NewAdapter(
		config.Config{CreemWebhookSecret: secret},
		config.NewStaticPackageHolder(config.DefaultCreditPackages()),
	)
}

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerify(t *testing.T) {
	payload := []byte(`{"eventType":"checkout.completed"}`)

	t.Run("valid signature", func(t *testing.T) {
		adapter := newTestAdapter("whsec_test")
		headers := http.Header{}
		headers.Set(SignatureHeader, sign("whsec_test", payload))

		assert.NoError(t, adapter.Verify(context.Background(), payload, headers))
	})

	t.Run("wrong signature", func(t *testing.T) {
		adapter := newTestAdapter("whsec_test")
		headers := http.Header{}
		headers.Set(SignatureHeader, sign("another_secret", payload))

		assert.ErrorIs(t, adapter.Verify(context.Background(), payload, headers), paymentdomain.ErrInvalidSignature)
	})

	t.Run("missing header fails closed", func(t *testing.T) {
		adapter := newTestAdapter("whsec_test")

		assert.ErrorIs(t, adapter.Verify(context.Background(), payload, http.Header{}), paymentdomain.ErrInvalidSignature)
	})

	t.Run("unconfigured secret fails closed", func(t *testing.T) {
		adapter := newTestAdapter("")
		headers := http.Header{}
		headers.Set(SignatureHeader, sign("", payload))

		assert.ErrorIs(t, adapter.Verify(context.Background(), payload, headers), paymentdomain.ErrInvalidSignature)
	})

	t.Run("tampered body", func(t *testing.T) {
		adapter := newTestAdapter("whsec_test")
		headers := http.Header{}
		headers.Set(SignatureHeader, sign("whsec_test", payload))

		assert.ErrorIs(t, adapter.Verify(context.Background(), []byte(`{"eventType":"evil"}`), headers), paymentdomain.ErrInvalidSignature)
	})
}

func TestParseCheckoutCompleted(t *testing.T) {
	adapter := newTestAdapter("whsec_test")

	payload := []byte(`{
		"eventType": "checkout.completed",
		"object": {
			"id": "chk_1",
			"product_id": "prod_starter_80",
			"metadata": {"referenceId": "alice@example.com", "packageKey": "starter", "credits": 80}
		}
	}`)

	event, err := adapter.Parse(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, "chk_1", event.CheckoutID)
	assert.Equal(t, "alice@example.com", event.Email)
	assert.Equal(t, "starter", event.PackageKey)
	assert.Equal(t, "prod_starter_80", event.ProductID)
	assert.Equal(t, int64(80), event.Credits)
}

func TestParseAlternatePayloadShapes(t *testing.T) {
	adapter := newTestAdapter("whsec_test")

	t.Run("type field and data object", func(t *testing.T) {
		payload := []byte(`{
			"type": "checkout.completed",
			"data": {
				"id": "chk_2",
				"metadata": {"referenceId": "bob@example.com", "packageKey": "growth", "credits": 200}
			}
		}`)

		event, err := adapter.Parse(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, "chk_2", event.CheckoutID)
		assert.Equal(t, int64(200), event.Credits)
	})

	t.Run("event type nested on data", func(t *testing.T) {
		payload := []byte(`{
			"data": {
				"id": "chk_3",
				"type": "checkout.completed",
				"metadata": {"referenceId": "bob@example.com", "packageKey": "pro", "credits": 450}
			}
		}`)

		event, err := adapter.Parse(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, "chk_3", event.CheckoutID)
	})

	t.Run("checkout id falls back to event id", func(t *testing.T) {
		payload := []byte(`{
			"id": "evt_9",
			"eventType": "checkout.completed",
			"object": {
				"metadata": {"referenceId": "bob@example.com", "packageKey": "starter", "credits": 80}
			}
		}`)

		event, err := adapter.Parse(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, "evt_9", event.CheckoutID)
	})

	t.Run("credits as string", func(t *testing.T) {
		payload := []byte(`{
			"eventType": "checkout.completed",
			"object": {
				"id": "chk_4",
				"metadata": {"referenceId": "bob@example.com", "packageKey": "starter", "credits": "80"}
			}
		}`)

		event, err := adapter.Parse(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, int64(80), event.Credits)
	})
}

func TestParseCreditsFallbackToPackageTable(t *testing.T) {
	adapter := newTestAdapter("whsec_test")

	payload := []byte(`{
		"eventType": "checkout.completed",
		"object": {
			"id": "chk_5",
			"metadata": {"referenceId": "carol@example.com", "packageKey": "pro"}
		}
	}`)

	event, err := adapter.Parse(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, int64(450), event.Credits)
}

func TestParseIgnoredEvents(t *testing.T) {
	adapter := newTestAdapter("whsec_test")

	cases := map[string]string{
		"other event type": `{"eventType": "subscription.created", "object": {"id": "chk_6"}}`,
		"missing event type": `{"object": {"id": "chk_7", "metadata": {"referenceId": "a@b.com", "credits": 80}}}`,
		"missing reference id": `{"eventType": "checkout.completed", "object": {"id": "chk_8", "metadata": {"packageKey": "starter"}}}`,
		"unknown package and no credits": `{"eventType": "checkout.completed", "object": {"id": "chk_9", "metadata": {"referenceId": "a@b.com", "packageKey": "mega"}}}`,
		"missing checkout id": `{"eventType": "checkout.completed", "object": {"metadata": {"referenceId": "a@b.com", "credits": 80}}}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := adapter.Parse(context.Background(), []byte(payload))
			assert.ErrorIs(t, err, paymentdomain.ErrEventIgnored)
		})
	}
}

func TestParseMalformedPayload(t *testing.T) {
	adapter := newTestAdapter("whsec_test")

	_, err := adapter.Parse(context.Background(), []byte("not json"))
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidPayload)
}

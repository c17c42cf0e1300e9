package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamnest/dreamnest/internal/payments/creem"
)

func checkoutCompletedPayload(checkoutID, email string, credits int64) []byte {
	return []byte(fmt.Sprintf(`{
		"eventType": "checkout.completed",
		"object": {
			"id": %q,
			"product_id": "prod_starter_80",
			"metadata": {"referenceId": %q, "packageKey": "starter", "credits": %d}
		}
	}`, checkoutID, email, credits))
}

func (h *testHarness) postWebhook(payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/creem", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(creem.SignatureHeader, signature)
	}
	return h.do(req)
}

func TestWebhookAwardsCredits(t *testing.T) {
	h := newTestHarness(t)
	_, err := h.ledger.EnsureUser(context.Background(), "alice@example.com")
	require.NoError(t, err)

	payload := checkoutCompletedPayload("chk_1", "alice@example.com", 80)
	rec := h.postWebhook(payload, signPayload(payload))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received": true}`, rec.Body.String())
	assert.Equal(t, int64(80), h.balance(t, "alice@example.com"))
}

func TestWebhookReplayIsNoOp(t *testing.T) {
	h := newTestHarness(t)
	_, err := h.ledger.EnsureUser(context.Background(), "alice@example.com")
	require.NoError(t, err)

	payload := checkoutCompletedPayload("chk_1", "alice@example.com", 80)
	first := h.postWebhook(payload, signPayload(payload))
	require.Equal(t, http.StatusOK, first.Code)

	replay := h.postWebhook(payload, signPayload(payload))
	assert.Equal(t, http.StatusOK, replay.Code)
	assert.Equal(t, int64(80), h.balance(t, "alice@example.com"), "replay must not double-award")
}

func TestWebhookDistinctCheckoutsAccumulate(t *testing.T) {
	h := newTestHarness(t)
	_, err := h.ledger.EnsureUser(context.Background(), "alice@example.com")
	require.NoError(t, err)

	for _, id := range []string{"chk_1", "chk_2"} {
		payload := checkoutCompletedPayload(id, "alice@example.com", 80)
		rec := h.postWebhook(payload, signPayload(payload))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, int64(160), h.balance(t, "alice@example.com"))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h := newTestHarness(t)
	_, err := h.ledger.EnsureUser(context.Background(), "alice@example.com")
	require.NoError(t, err)

	payload := checkoutCompletedPayload("chk_1", "alice@example.com", 80)

	t.Run("wrong signature", func(t *testing.T) {
		rec := h.postWebhook(payload, "deadbeef")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing signature", func(t *testing.T) {
		rec := h.postWebhook(payload, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	assert.Zero(t, h.balance(t, "alice@example.com"), "unverified deliveries must not award")
}

func TestWebhookAcknowledgesUnknownUser(t *testing.T) {
	h := newTestHarness(t)

	payload := checkoutCompletedPayload("chk_1", "nobody@example.com", 80)
	rec := h.postWebhook(payload, signPayload(payload))

	assert.Equal(t, http.StatusOK, rec.Code, "retrying cannot help; acknowledge")
}

func TestWebhookAcknowledgesIgnoredEvents(t *testing.T) {
	h := newTestHarness(t)

	payload := []byte(`{"eventType": "subscription.created", "object": {"id": "sub_1"}}`)
	rec := h.postWebhook(payload, signPayload(payload))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookAcknowledgesMalformedSignedPayload(t *testing.T) {
	h := newTestHarness(t)

	payload := []byte(`{"eventType": "checkout.completed", "object": {"id": "chk_x", "metadata": {}}}`)
	rec := h.postWebhook(payload, signPayload(payload))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookCreditsFallbackToPackageTable(t *testing.T) {
	h := newTestHarness(t)
	_, err := h.ledger.EnsureUser(context.Background(), "alice@example.com")
	require.NoError(t, err)

	payload := []byte(`{
		"eventType": "checkout.completed",
		"object": {
			"id": "chk_pro",
			"metadata": {"referenceId": "alice@example.com", "packageKey": "pro"}
		}
	}`)
	rec := h.postWebhook(payload, signPayload(payload))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(450), h.balance(t, "alice@example.com"))
}

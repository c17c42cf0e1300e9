package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamnest/dreamnest/internal/config"
)

func newServerClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(config.Config{OpenRouterAPIKey: "sk-or-test", OpenRouterModel: "bytedance-seed/seedream-4.5"})
	client.apiBase = srv.URL
	return client
}

func TestGenerateImage(t *testing.T) {
	var captured map[string]any
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-or-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{
					"images": []map[string]any{{
						"image_url": map[string]string{"url": "data:image/png;base64,aGVsbG8="},
					}},
				},
			}},
		})
	})

	result, err := client.GenerateImage(context.Background(), []ImagePart{
		{Text: "blend the two parents"},
		{ImageURL: "data:image/jpeg;base64,bW9t"},
		{ImageURL: "data:image/jpeg;base64,ZGFk"},
	})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", result)

	assert.Equal(t, "bytedance-seed/seedream-4.5", captured["model"])
	assert.Equal(t, []any{"image", "text"}, captured["modalities"])
	messages := captured["messages"].([]any)
	content := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 3)
	assert.Equal(t, "text", content[0].(map[string]any)["type"])
	assert.Equal(t, "image_url", content[1].(map[string]any)["type"])
}

func TestGenerateImageNoImage(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{}}},
		})
	})

	_, err := client.GenerateImage(context.Background(), []ImagePart{{Text: "hi"}})
	assert.ErrorIs(t, err, ErrNoImageReturned)
}

func TestGenerateImageProviderError(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "insufficient provider balance"},
		})
	})

	_, err := client.GenerateImage(context.Background(), []ImagePart{{Text: "hi"}})
	assert.EqualError(t, err, "insufficient provider balance")
}

func TestGenerateImageWithoutAPIKey(t *testing.T) {
	client := NewClient(config.Config{})
	_, err := client.GenerateImage(context.Background(), []ImagePart{{Text: "hi"}})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

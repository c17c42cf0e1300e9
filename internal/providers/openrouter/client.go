package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dreamnest/dreamnest/internal/config"
)

const defaultAPIBase = "https://openrouter.ai/api/v1"

var (
	ErrNotConfigured   = errors.New("openrouter_not_configured")
	ErrRequestFailed   = errors.New("openrouter_request_failed")
	ErrNoImageReturned = errors.New("openrouter_no_image")
)

// ImagePart is one multimodal input: a text instruction or an image,
// passed as a URL or data URL.
type ImagePart struct {
	Text     string
	ImageURL string
}

type chatRequest struct {
	Model      string        `json:"model"`
	Messages   []chatMessage `json:"messages"`
	Modalities []string      `json:"modalities"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Images []struct {
				ImageURL imageURL `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	apiKey  string
	apiBase string
	model   string
	client  *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		apiKey:  strings.TrimSpace(cfg.OpenRouterAPIKey),
		apiBase: defaultAPIBase,
		model:   cfg.OpenRouterModel,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// GenerateImage sends one multimodal chat completion and returns the first
// generated image, usually a base64 data URL.
func (c *Client) GenerateImage(ctx context.Context, parts []ImagePart) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	content := make([]contentPart, 0, len(parts))
	for _, part := range parts {
		if part.ImageURL != "" {
			content = append(content, contentPart{Type: "image_url", ImageURL: &imageURL{URL: part.ImageURL}})
			continue
		}
		content = append(content, contentPart{Type: "text", Text: part.Text})
	}

	body, err := json.Marshal(chatRequest{
		Model:      c.model,
		Messages:   []chatMessage{{Role: "user", Content: content}},
		Modalities: []string{"image", "text"},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Error != nil && strings.TrimSpace(out.Error.Message) != "" {
		return "", errors.New(out.Error.Message)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", ErrRequestFailed
	}

	if len(out.Choices) == 0 || len(out.Choices[0].Message.Images) == 0 {
		return "", ErrNoImageReturned
	}
	result := strings.TrimSpace(out.Choices[0].Message.Images[0].ImageURL.URL)
	if result == "" {
		return "", ErrNoImageReturned
	}
	return result, nil
}

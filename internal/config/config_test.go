package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadAppURL(t *testing.T) {
	t.Setenv("APP_URL", "")
	cfg := Load()
	assert.Equal(t, "http://localhost:3000", cfg.AppURL)

	t.Setenv("APP_URL", "https://dreamnest.example/")
	cfg = Load()
	assert.Equal(t, "https://dreamnest.example", cfg.AppURL)
}

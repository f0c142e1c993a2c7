package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Client.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.Client.RequestTimeout)
	assert.Equal(t, "sessionid", cfg.Client.SessionCookieName)
	assert.Equal(t, "csrftoken", cfg.Client.CSRFCookieName)
	assert.Equal(t, "X-CSRFToken", cfg.Client.CSRFHeader)

	assert.Equal(t, []string{"/dashboard"}, cfg.Routes.ProtectedPrefixes)
	assert.Equal(t, []string{"/login", "/register", "/forgot-password"}, cfg.Routes.AuthPrefixes)
	assert.Equal(t, "/login", cfg.Routes.LoginPath)
	assert.Equal(t, "/dashboard", cfg.Routes.DashboardPath)
	assert.Equal(t, "/", cfg.Routes.HomePath)

	assert.True(t, cfg.Edge.IsDevelopment())
	assert.Equal(t, ":8080", cfg.Edge.Address())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("API_REQUEST_TIMEOUT", "30")
	t.Setenv("PROTECTED_PREFIXES", "/dashboard, /account")
	t.Setenv("APP_ENV", "prod")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.Client.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.Client.RequestTimeout)
	assert.Equal(t, []string{"/dashboard", "/account"}, cfg.Routes.ProtectedPrefixes)
	assert.False(t, cfg.Edge.IsDevelopment())
}

func TestLoadRejectsRelativeBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "localhost:8000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_BASE_URL")
}

func TestGetDurationEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("API_REQUEST_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Client.RequestTimeout)
}

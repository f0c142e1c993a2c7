package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Client  ClientConfig
	Edge    EdgeConfig
	Routes  RoutesConfig
	Billing BillingConfig
}

type ClientConfig struct {
	// Base URL of the REST backend, e.g. https://api.example.com
	APIBaseURL     string
	RequestTimeout time.Duration
	// Session cookie issued by the backend; the client only reads its presence
	SessionCookieName string
	// CSRF cookie whose value is echoed back in the CSRFHeader on mutating calls
	CSRFCookieName string
	CSRFHeader     string
}

type EdgeConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // CORS allowed origins for cookie auth
	// Upstream the gateway proxies allowed requests to
	UpstreamURL string
}

type RoutesConfig struct {
	// Prefixes that require a session cookie before rendering
	ProtectedPrefixes []string
	// Prefixes that bounce already-authenticated users back to the dashboard
	AuthPrefixes  []string
	LoginPath     string
	DashboardPath string
	HomePath      string
}

type BillingConfig struct {
	// Hosted checkout price IDs; an empty ID is a caller error, never sent
	PriceMonthly string
	PriceAnnual  string
}

// Load reads configuration from environment variables.
// Call godotenv.Load() before this if using a .env file.
func Load() (*Config, error) {
	cfg := &Config{
		Client: ClientConfig{
			APIBaseURL:        getEnv("API_BASE_URL", "http://localhost:8000"),
			RequestTimeout:    getDurationEnv("API_REQUEST_TIMEOUT", 10*time.Second),
			SessionCookieName: getEnv("SESSION_COOKIE_NAME", "sessionid"),
			CSRFCookieName:    getEnv("CSRF_COOKIE_NAME", "csrftoken"),
			CSRFHeader:        getEnv("CSRF_HEADER", "X-CSRFToken"),
		},
		Edge: EdgeConfig{
			Port:            getEnv("EDGE_PORT", "8080"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("EDGE_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("EDGE_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("EDGE_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
			UpstreamURL:     getEnv("EDGE_UPSTREAM_URL", "http://localhost:3000"),
		},
		Routes: RoutesConfig{
			ProtectedPrefixes: getSliceEnv("PROTECTED_PREFIXES", []string{"/dashboard"}),
			AuthPrefixes:      getSliceEnv("AUTH_PREFIXES", []string{"/login", "/register", "/forgot-password"}),
			LoginPath:         getEnv("LOGIN_PATH", "/login"),
			DashboardPath:     getEnv("DASHBOARD_PATH", "/dashboard"),
			HomePath:          getEnv("HOME_PATH", "/"),
		},
		Billing: BillingConfig{
			PriceMonthly: getEnv("STRIPE_PRICE_MONTHLY", ""),
			PriceAnnual:  getEnv("STRIPE_PRICE_ANNUAL", ""),
		},
	}

	if !strings.HasPrefix(cfg.Client.APIBaseURL, "http://") && !strings.HasPrefix(cfg.Client.APIBaseURL, "https://") {
		return nil, fmt.Errorf("API_BASE_URL must be an absolute http(s) URL, got %q", cfg.Client.APIBaseURL)
	}

	return cfg, nil
}

// IsDevelopment returns true if the environment is set to dev
func (c *EdgeConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

// Address returns the listen address for the edge gateway
func (c *EdgeConfig) Address() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Split by comma and trim whitespace
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}

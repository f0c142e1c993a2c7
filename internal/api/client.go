package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/launchkit/saas-console/internal/config"
	"github.com/launchkit/saas-console/internal/logging"
)

// Client wraps the REST backend with cookie-based session handling.
// The session and CSRF cookies live in the jar and are only ever written
// by the server; the client reads the CSRF cookie to echo it back in a
// header on mutating requests.
type Client struct {
	baseURL           string
	httpClient        *http.Client
	jar               *cookiejar.Jar
	sessionCookieName string
	csrfCookieName    string
	csrfHeader        string
	logger            *logging.Logger
}

// NewClient creates a client for the configured backend
func NewClient(cfg config.ClientConfig, logger *logging.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
			Jar:     jar,
		},
		jar:               jar,
		sessionCookieName: cfg.SessionCookieName,
		csrfCookieName:    cfg.CSRFCookieName,
		csrfHeader:        cfg.CSRFHeader,
		logger:            logger,
	}, nil
}

// Get performs a GET request and decodes the JSON response into out (if non-nil)
func (c *Client) Get(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// PostJSON performs a POST request with a JSON body. A nil body sends an
// empty request, which several endpoints (logout, cancel, portal) expect.
func (c *Client) PostJSON(ctx context.Context, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, &buf, "application/json")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// PostForm performs a POST request with a form-encoded body
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	// Echo the CSRF cookie on mutating requests; the jar carries the
	// cookie itself, the backend requires the header copy as proof
	if method != http.MethodGet && method != http.MethodHead {
		if token := c.cookieValue(c.csrfCookieName); token != "" {
			req.Header.Set(c.csrfHeader, token)
		}
	}

	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", req.Method, "path", req.URL.Path, "error", err.Error())
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		// Best effort: an unexpected body still yields a usable status error
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		c.logger.Warn("request rejected", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode)
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response from %s: %w", req.URL.Path, err)
		}
	}

	return nil
}

// HasSessionCookie reports whether the jar currently holds the named
// session cookie. Presence is a heuristic only; it says nothing about
// validity or expiry server-side.
func (c *Client) HasSessionCookie() bool {
	return c.cookieValue(c.sessionCookieName) != ""
}

func (c *Client) cookieValue(name string) string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	for _, cookie := range c.jar.Cookies(u) {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchkit/saas-console/internal/config"
	"github.com/launchkit/saas-console/internal/logging"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.ClientConfig{
		APIBaseURL:        srv.URL,
		RequestTimeout:    5 * time.Second,
		SessionCookieName: "sessionid",
		CSRFCookieName:    "csrftoken",
		CSRFHeader:        "X-CSRFToken",
	}
	client, err := NewClient(cfg, logging.NewLoggerTo(io.Discard, true))
	require.NoError(t, err)

	return client, srv
}

func TestCSRFHeaderOnMutatingRequestsOnly(t *testing.T) {
	var gotGetHeader, gotPostHeader string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /seed/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "tok-123", Path: "/"})
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("GET /read/", func(w http.ResponseWriter, r *http.Request) {
		gotGetHeader = r.Header.Get("X-CSRFToken")
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("POST /write/", func(w http.ResponseWriter, r *http.Request) {
		gotPostHeader = r.Header.Get("X-CSRFToken")
		w.Write([]byte(`{}`))
	})

	client, _ := testClient(t, mux)
	ctx := context.Background()

	require.NoError(t, client.Get(ctx, "/seed/", nil))
	require.NoError(t, client.Get(ctx, "/read/", nil))
	require.NoError(t, client.PostJSON(ctx, "/write/", nil, nil))

	assert.Empty(t, gotGetHeader, "GET must not carry the CSRF header")
	assert.Equal(t, "tok-123", gotPostHeader, "POST must echo the CSRF cookie value")
}

func TestPostJSONNilBodySendsEmptyRequest(t *testing.T) {
	var gotBody []byte

	mux := http.NewServeMux()
	mux.HandleFunc("POST /logout/", func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{}`))
	})

	client, _ := testClient(t, mux)
	require.NoError(t, client.PostJSON(context.Background(), "/logout/", nil, nil))
	assert.Empty(t, gotBody)
}

func TestErrorResponsesDecodeIntoAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "Invalid credentials"}`))
	})
	mux.HandleFunc("POST /broken/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>gateway timeout</html>`))
	})

	client, _ := testClient(t, mux)
	ctx := context.Background()

	err := client.PostJSON(ctx, "/login/", nil, nil)
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", ExtractMessage(err, "fallback"))

	// Non-JSON error bodies still yield a usable error with the fallback message
	err = client.PostJSON(ctx, "/broken/", nil, nil)
	require.Error(t, err)
	assert.Equal(t, "fallback", ExtractMessage(err, "fallback"))
}

func TestHasSessionCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "abc", Path: "/"})
		w.Write([]byte(`{}`))
	})

	client, _ := testClient(t, mux)

	assert.False(t, client.HasSessionCookie())
	require.NoError(t, client.PostJSON(context.Background(), "/login/", nil, nil))
	assert.True(t, client.HasSessionCookie())
}

package billing

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchkit/saas-console/internal/api"
	"github.com/launchkit/saas-console/internal/config"
	"github.com/launchkit/saas-console/internal/logging"
)

func newTestStore(t *testing.T, handler http.Handler) *Store {
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
	logger := logging.NewLoggerTo(io.Discard, true)
	client, err := api.NewClient(cfg, logger)
	require.NoError(t, err)

	return NewStore(client, logger)
}

func TestFetchStatusFailureDefaultsToNone(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stripe/status/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	store := newTestStore(t, mux)
	store.FetchStatus(context.Background())

	st := store.Status()
	require.NotNil(t, st)
	assert.False(t, st.HasActiveSubscription)
	assert.Equal(t, StatusNone, st.Status)
	assert.False(t, store.Loading())
}

func TestFetchStatusReplacesStaleState(t *testing.T) {
	healthy := true
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stripe/status/", func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"has_active_subscription": true, "status": "active", "plan_name": "Pro"}`))
	})

	store := newTestStore(t, mux)
	ctx := context.Background()

	store.FetchStatus(ctx)
	require.NotNil(t, store.Status())
	assert.True(t, store.Status().HasActiveSubscription)

	// A failed re-fetch must not leave a stale paid view in place
	healthy = false
	store.FetchStatus(ctx)
	assert.False(t, store.Status().HasActiveSubscription)
	assert.Equal(t, StatusNone, store.Status().Status)
}

func TestCreateCheckoutSession(t *testing.T) {
	var gotPriceID string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /stripe/checkout/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPriceID = r.PostForm.Get("price_id")
		w.Write([]byte(`{"checkout_url": "https://pay.example.com/cs_123"}`))
	})

	store := newTestStore(t, mux)
	redirect, err := store.CreateCheckoutSession(context.Background(), "price_monthly_1")

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/cs_123", redirect.URL)
	assert.Equal(t, "price_monthly_1", gotPriceID)
}

func TestCreateCheckoutSessionRejectsEmptyPriceID(t *testing.T) {
	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("POST /stripe/checkout/", func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write([]byte(`{}`))
	})

	store := newTestStore(t, mux)
	redirect, err := store.CreateCheckoutSession(context.Background(), "")

	assert.ErrorIs(t, err, ErrMissingPriceID)
	assert.Nil(t, redirect)
	assert.False(t, called, "a missing price ID must never reach the network")
}

func TestCancelRefetchesStatusInsteadOfPatching(t *testing.T) {
	canceled := false
	statusCalls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("GET /stripe/status/", func(w http.ResponseWriter, r *http.Request) {
		statusCalls++
		if canceled {
			w.Write([]byte(`{"has_active_subscription": true, "status": "active", "cancel_at_period_end": true}`))
			return
		}
		w.Write([]byte(`{"has_active_subscription": true, "status": "active"}`))
	})
	mux.HandleFunc("POST /stripe/cancel/", func(w http.ResponseWriter, r *http.Request) {
		canceled = true
		w.Write([]byte(`{}`))
	})

	store := newTestStore(t, mux)
	ctx := context.Background()

	store.FetchStatus(ctx)
	require.False(t, store.Status().CancelAtPeriodEnd)

	require.NoError(t, store.CancelSubscription(ctx))

	// The flag reflects the re-fetched server truth, not a local flip
	assert.Equal(t, 2, statusCalls)
	assert.True(t, store.Status().CancelAtPeriodEnd)
}

func TestCancelFailureKeepsCachedStatus(t *testing.T) {
	statusCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stripe/status/", func(w http.ResponseWriter, r *http.Request) {
		statusCalls++
		w.Write([]byte(`{"has_active_subscription": true, "status": "active"}`))
	})
	mux.HandleFunc("POST /stripe/cancel/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "No active subscription"}`))
	})

	store := newTestStore(t, mux)
	ctx := context.Background()

	store.FetchStatus(ctx)
	err := store.CancelSubscription(ctx)

	require.Error(t, err)
	assert.Equal(t, "No active subscription", err.Error())
	assert.Equal(t, 1, statusCalls, "a failed cancel must not trigger a re-fetch")
	assert.True(t, store.Status().HasActiveSubscription)
}

func TestReactivateRefetchesStatus(t *testing.T) {
	reactivated := false
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stripe/status/", func(w http.ResponseWriter, r *http.Request) {
		if reactivated {
			w.Write([]byte(`{"has_active_subscription": true, "status": "active", "cancel_at_period_end": false}`))
			return
		}
		w.Write([]byte(`{"has_active_subscription": true, "status": "active", "cancel_at_period_end": true}`))
	})
	mux.HandleFunc("POST /stripe/reactivate/", func(w http.ResponseWriter, r *http.Request) {
		reactivated = true
		w.Write([]byte(`{}`))
	})

	store := newTestStore(t, mux)
	ctx := context.Background()

	store.FetchStatus(ctx)
	require.True(t, store.Status().CancelAtPeriodEnd)

	require.NoError(t, store.ReactivateSubscription(ctx))
	assert.False(t, store.Status().CancelAtPeriodEnd)
}

func TestSecondActionWhileBusyIsRejected(t *testing.T) {
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("POST /stripe/portal/", func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"url": "https://billing.example.com/p_1"}`))
	})

	store := newTestStore(t, mux)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := store.OpenBillingPortal(ctx)
		done <- err
	}()

	// Wait for the first action to register as in flight
	require.Eventually(t, func() bool {
		return store.CurrentAction() == ActionPortal
	}, time.Second, 5*time.Millisecond)

	_, err := store.CreateCheckoutSession(ctx, "price_monthly_1")
	assert.ErrorIs(t, err, ErrActionInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, Action(""), store.CurrentAction())
}

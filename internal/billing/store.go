package billing

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/launchkit/saas-console/internal/api"
	"github.com/launchkit/saas-console/internal/logging"
)

// Subscription status values the backend reports
const (
	StatusActive   = "active"
	StatusTrialing = "trialing"
	StatusCanceled = "canceled"
	StatusPastDue  = "past_due"
	StatusNone     = "none"
)

const (
	checkoutFallback   = "Failed to create checkout session"
	portalFallback     = "Failed to open billing portal"
	cancelFallback     = "Failed to cancel subscription"
	reactivateFallback = "Failed to reactivate subscription"
)

var (
	// ErrMissingPriceID is a configuration error caught before any
	// network call; callers must pre-validate the price ID
	ErrMissingPriceID = errors.New("no price is configured for this plan")
	// ErrActionInFlight rejects a second billing mutation while one is
	// still running; concurrent mutations must not race from one client
	ErrActionInFlight = errors.New("another billing action is in progress")
)

// Action identifies the billing mutation currently in flight, used by the
// UI to disable the whole action set while one runs
type Action string

const (
	ActionCheckout   Action = "checkout"
	ActionPortal     Action = "portal"
	ActionCancel     Action = "cancel"
	ActionReactivate Action = "reactivate"
)

// Status is the billing state for the current user, fetched independently
// of the identity record
type Status struct {
	HasActiveSubscription bool       `json:"has_active_subscription"`
	Status                string     `json:"status"`
	PlanName              string     `json:"plan_name,omitempty"`
	CurrentPeriodEnd      *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd     bool       `json:"cancel_at_period_end,omitempty"`
	IsTrialing            bool       `json:"is_trialing,omitempty"`
	TrialEnd              *time.Time `json:"trial_end,omitempty"`
}

// Redirect carries the hosted page URL a successful checkout or portal
// call produced; the caller performs the navigation
type Redirect struct {
	URL string
}

// Store holds the subscription state. Mutations never patch the cached
// status locally; server truth is re-fetched instead, since the
// authoritative change may land asynchronously via webhooks.
type Store struct {
	client *api.Client
	logger *logging.Logger

	mu            sync.Mutex
	status        *Status
	loading       bool
	currentAction Action
}

func NewStore(client *api.Client, logger *logging.Logger) *Store {
	return &Store{
		client:  client,
		logger:  logger,
		loading: true,
	}
}

// Status returns a copy of the cached billing state, or nil before the
// first fetch completes
func (s *Store) Status() *Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == nil {
		return nil
	}
	st := *s.status
	return &st
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// CurrentAction returns the billing mutation in flight, empty when idle
func (s *Store) CurrentAction() Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentAction
}

// FetchStatus loads the current subscription state. Any failure resets
// the cache to the conservative "no subscription" default rather than
// keeping stale data; a lapsed view of paid access must not survive a
// failed check.
func (s *Store) FetchStatus(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	var st Status
	if err := s.client.Get(ctx, "/stripe/status/", &st); err != nil {
		s.logger.Debug("subscription status unavailable, defaulting to none", "error", err.Error())
		s.setStatus(&Status{HasActiveSubscription: false, Status: StatusNone})
		return
	}

	s.setStatus(&st)
}

type checkoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

type portalResponse struct {
	URL string `json:"url"`
}

// CreateCheckoutSession starts a hosted checkout for the given price. The
// returned redirect points at the payment page; there is no local success
// state, confirmation arrives via the redirect-back flow plus a status
// re-fetch.
func (s *Store) CreateCheckoutSession(ctx context.Context, priceID string) (*Redirect, error) {
	if priceID == "" {
		return nil, ErrMissingPriceID
	}
	if err := s.begin(ActionCheckout); err != nil {
		return nil, err
	}
	defer s.end()

	form := url.Values{"price_id": {priceID}}
	var resp checkoutResponse
	if err := s.client.PostForm(ctx, "/stripe/checkout/", form, &resp); err != nil {
		return nil, errors.New(api.ExtractMessage(err, checkoutFallback))
	}

	s.logger.Info("checkout session created", "price_id", priceID)
	return &Redirect{URL: resp.CheckoutURL}, nil
}

// OpenBillingPortal requests a hosted self-service portal session
func (s *Store) OpenBillingPortal(ctx context.Context) (*Redirect, error) {
	if err := s.begin(ActionPortal); err != nil {
		return nil, err
	}
	defer s.end()

	var resp portalResponse
	if err := s.client.PostJSON(ctx, "/stripe/portal/", nil, &resp); err != nil {
		return nil, errors.New(api.ExtractMessage(err, portalFallback))
	}

	return &Redirect{URL: resp.URL}, nil
}

// CancelSubscription schedules cancellation at period end, then re-fetches
// status. The cached cancel_at_period_end flag is never flipped locally;
// the server may not have committed the change yet.
func (s *Store) CancelSubscription(ctx context.Context) error {
	if err := s.begin(ActionCancel); err != nil {
		return err
	}
	defer s.end()

	if err := s.client.PostJSON(ctx, "/stripe/cancel/", nil, nil); err != nil {
		return errors.New(api.ExtractMessage(err, cancelFallback))
	}

	s.logger.Info("subscription cancellation requested")
	s.FetchStatus(ctx)
	return nil
}

// ReactivateSubscription undoes a pending cancellation, then re-fetches
// status for the same reason cancel does
func (s *Store) ReactivateSubscription(ctx context.Context) error {
	if err := s.begin(ActionReactivate); err != nil {
		return err
	}
	defer s.end()

	if err := s.client.PostJSON(ctx, "/stripe/reactivate/", nil, nil); err != nil {
		return errors.New(api.ExtractMessage(err, reactivateFallback))
	}

	s.logger.Info("subscription reactivated")
	s.FetchStatus(ctx)
	return nil
}

func (s *Store) begin(a Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentAction != "" {
		return ErrActionInFlight
	}
	s.currentAction = a
	return nil
}

func (s *Store) end() {
	s.mu.Lock()
	s.currentAction = ""
	s.mu.Unlock()
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

func (s *Store) setStatus(st *Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

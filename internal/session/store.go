package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/launchkit/saas-console/internal/api"
	"github.com/launchkit/saas-console/internal/config"
	"github.com/launchkit/saas-console/internal/logging"
	"github.com/launchkit/saas-console/internal/user"
)

// Fallback messages shown when the backend returns no usable error payload
const (
	loginFallback          = "Login failed. Please try again."
	registerFallback       = "Registration failed. Please try again."
	forgotPasswordFallback = "Failed to send reset email. Please try again."
	resetPasswordFallback  = "Failed to reset password. Please try again."
	verifyEmailFallback    = "Failed to verify email."
	changePasswordFallback = "Failed to change password."
	deleteAccountFallback  = "Failed to delete account."
	resendFallback         = "Failed to send verification email. Please try again."
)

var (
	ErrPasswordMismatch = errors.New("new passwords do not match")
	ErrPasswordTooShort = errors.New("new password must be at least 8 characters")
)

// Result reports where the caller should navigate after a successful
// mutation. The store itself never navigates; screens own that.
type Result struct {
	NavigateTo string
}

// Store holds the client-side session state: the cached user record, a
// loading flag for the initial authoritative check, and the last form
// error. One instance is constructed per app session and passed to every
// screen that needs it.
type Store struct {
	client *api.Client
	routes config.RoutesConfig
	logger *logging.Logger

	mu      sync.Mutex
	user    *user.User
	loading bool
	err     string
}

// NewStore creates a session store. It starts in the loading state; call
// Bootstrap to run the authoritative session check.
func NewStore(client *api.Client, routes config.RoutesConfig, logger *logging.Logger) *Store {
	return &Store{
		client:  client,
		routes:  routes,
		logger:  logger,
		loading: true,
	}
}

// User returns a copy of the cached user record, or nil when logged out
func (s *Store) User() *user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Loading reports whether the authoritative session check is still running
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the current form-level error message, empty when none
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ClearError drops the stored error without any network call, used when a
// user dismisses or retries a form
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// Bootstrap runs the mount-time session check: refresh the user, then
// release the loading gate. Protected content must not render before this
// completes.
func (s *Store) Bootstrap(ctx context.Context) {
	s.setLoading(true)
	s.Refresh(ctx)
	s.setLoading(false)
}

// Refresh fetches the identity record. Success replaces the cached user
// wholesale and clears any error; any failure (network, 401) clears the
// user. A failed refresh is a normal logged-out transition, not an error.
func (s *Store) Refresh(ctx context.Context) {
	var u user.User
	if err := s.client.Get(ctx, "/auth/user/", &u); err != nil {
		s.logger.Debug("session refresh found no user", "error", err.Error())
		s.mu.Lock()
		s.user = nil
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.user = &u
	s.err = ""
	s.mu.Unlock()
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type userResponse struct {
	User user.User `json:"user"`
}

// Login authenticates with the backend. On success the user record is
// replaced and the caller is told to navigate to the dashboard. On
// failure the extracted message is stored and returned so the form can
// react either way.
func (s *Store) Login(ctx context.Context, email, password string) (*Result, error) {
	s.beginMutation()
	defer s.setLoading(false)

	var resp userResponse
	if err := s.client.PostJSON(ctx, "/auth/login/", credentialsRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, s.fail("login", err, loginFallback)
	}

	s.setUser(&resp.User)
	s.logger.Info("user logged in", "user_id", resp.User.ID)
	return &Result{NavigateTo: s.routes.DashboardPath}, nil
}

// Register creates an account and signs the new user in. Field-level
// validation messages (email taken, weak password) surface through the
// same extraction precedence as general errors.
func (s *Store) Register(ctx context.Context, email, password, passwordConfirm string) (*Result, error) {
	s.beginMutation()
	defer s.setLoading(false)

	req := registerRequest{Email: email, Password: password, PasswordConfirm: passwordConfirm}
	var resp userResponse
	if err := s.client.PostJSON(ctx, "/auth/register/", req, &resp); err != nil {
		return nil, s.fail("register", err, registerFallback)
	}

	s.setUser(&resp.User)
	s.logger.Info("user registered", "user_id", resp.User.ID)
	return &Result{NavigateTo: s.routes.DashboardPath}, nil
}

// Logout ends the session. Local state is cleared whether or not the
// server call succeeds; the cookie-based session may already be stale and
// logout has to be effective client-side regardless.
func (s *Store) Logout(ctx context.Context) *Result {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.client.PostJSON(ctx, "/auth/logout/", nil, nil); err != nil {
		s.logger.Warn("server logout failed, clearing local session anyway", "error", err.Error())
	}

	s.setUser(nil)
	return &Result{NavigateTo: s.routes.HomePath}
}

// ForgotPassword requests a password reset email
func (s *Store) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if err := s.client.PostJSON(ctx, "/auth/forgot-password/", body, nil); err != nil {
		return errors.New(api.ExtractMessage(err, forgotPasswordFallback))
	}
	return nil
}

// ResetPassword completes a password reset using the emailed token. The
// caller is sent to the login screen afterwards.
func (s *Store) ResetPassword(ctx context.Context, token, password, passwordConfirm string) (*Result, error) {
	body := map[string]string{
		"token":            token,
		"password":         password,
		"password_confirm": passwordConfirm,
	}
	if err := s.client.PostJSON(ctx, "/auth/reset-password/", body, nil); err != nil {
		return nil, errors.New(api.ExtractMessage(err, resetPasswordFallback))
	}
	return &Result{NavigateTo: s.routes.LoginPath}, nil
}

// VerifyEmail confirms the address behind an emailed token, then
// refreshes the cached user so the verified flag is picked up
func (s *Store) VerifyEmail(ctx context.Context, token string) error {
	path := fmt.Sprintf("/auth/verify-email/%s/", url.PathEscape(token))
	if err := s.client.Get(ctx, path, nil); err != nil {
		return errors.New(api.ExtractMessage(err, verifyEmailFallback))
	}
	s.Refresh(ctx)
	return nil
}

// ChangePassword updates the password for the signed-in user. The
// confirmation match and minimum length are checked before any network
// call.
func (s *Store) ChangePassword(ctx context.Context, current, newPassword, newPasswordConfirm string) error {
	if newPassword != newPasswordConfirm {
		return ErrPasswordMismatch
	}
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}

	body := map[string]string{
		"current_password":     current,
		"new_password":         newPassword,
		"new_password_confirm": newPasswordConfirm,
	}
	if err := s.client.PostJSON(ctx, "/auth/change-password/", body, nil); err != nil {
		return errors.New(api.ExtractMessage(err, changePasswordFallback))
	}
	return nil
}

// DeleteAccount permanently deletes the account. On success local state
// is cleared and the caller navigates home; a rejected password surfaces
// as an error and leaves the session untouched.
func (s *Store) DeleteAccount(ctx context.Context, password string) (*Result, error) {
	body := map[string]string{"password": password}
	if err := s.client.PostJSON(ctx, "/auth/delete-account/", body, nil); err != nil {
		return nil, errors.New(api.ExtractMessage(err, deleteAccountFallback))
	}

	s.setUser(nil)
	s.logger.Info("account deleted")
	return &Result{NavigateTo: s.routes.HomePath}, nil
}

// ResendVerification asks the backend to send a fresh verification email
func (s *Store) ResendVerification(ctx context.Context) error {
	if err := s.client.PostJSON(ctx, "/auth/resend-verification/", nil, nil); err != nil {
		return errors.New(api.ExtractMessage(err, resendFallback))
	}
	return nil
}

func (s *Store) beginMutation() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

func (s *Store) setUser(u *user.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// fail extracts a display message, stores it as the current error, and
// returns it so the caller can reject as well
func (s *Store) fail(op string, err error, fallback string) error {
	msg := api.ExtractMessage(err, fallback)
	s.logger.Warn(op+" failed", "error", err.Error())
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
	return errors.New(msg)
}

package banner

import (
	"context"
	"fmt"
	"sync"

	"github.com/launchkit/saas-console/internal/session"
)

// ResendSuccessMessage is the toast shown after a successful resend
const ResendSuccessMessage = "Verification email sent! Check your inbox."

const baseMessage = "Please verify your email address."

// Banner derives the email-verification nudge from session state. It
// performs no fetch of its own. Dismissal is in-memory view state only,
// reset on restart; it is a nag, not a preference, and it never gates
// authorization.
type Banner struct {
	session *session.Store

	mu        sync.Mutex
	dismissed bool
	sending   bool
}

func New(sessionStore *session.Store) *Banner {
	return &Banner{session: sessionStore}
}

// Visible reports whether the nudge should show: a user is loaded, their
// email is unverified, and the banner was not dismissed this session
func (b *Banner) Visible() bool {
	b.mu.Lock()
	dismissed := b.dismissed
	b.mu.Unlock()

	if dismissed {
		return false
	}

	u := b.session.User()
	return u != nil && !u.EmailVerified
}

// Message returns the banner copy. With three or fewer days left in the
// grace period the countdown is spelled out, and day zero becomes a
// same-day warning.
func (b *Banner) Message() string {
	u := b.session.User()
	if u == nil {
		return ""
	}

	msg := baseMessage
	if u.DaysUntilDeletion != nil && *u.DaysUntilDeletion <= 3 {
		switch days := *u.DaysUntilDeletion; days {
		case 0:
			msg += " Your account may be deleted today!"
		case 1:
			msg += " 1 day remaining!"
		default:
			msg += fmt.Sprintf(" %d days remaining!", days)
		}
	}
	return msg
}

// Dismiss hides the banner for the rest of this session
func (b *Banner) Dismiss() {
	b.mu.Lock()
	b.dismissed = true
	b.mu.Unlock()
}

// Sending reports whether a resend request is in flight
func (b *Banner) Sending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sending
}

// Resend asks for a fresh verification email. Failure does not change
// visibility; the user may simply retry.
func (b *Banner) Resend(ctx context.Context) error {
	b.mu.Lock()
	b.sending = true
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.sending = false
		b.mu.Unlock()
	}()

	return b.session.ResendVerification(ctx)
}

package user

import "time"

// User is the client-side copy of the authenticated identity. It is a
// cache of server truth: replaced wholesale on every successful auth
// call, cleared on logout or any fetch failure, never patched field by
// field.
type User struct {
	ID            int64      `json:"id"`
	Email         string     `json:"email"`
	EmailVerified bool       `json:"email_verified"`
	// Set once the address is confirmed; nil while unverified
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	CreatedAt       time.Time  `json:"created_at"`
	// Grace-period countdown, present only while unverified
	DaysUntilDeletion *int `json:"days_until_deletion"`
}

// InGracePeriod reports whether the account has a deletion countdown running
func (u *User) InGracePeriod() bool {
	return !u.EmailVerified && u.DaysUntilDeletion != nil
}

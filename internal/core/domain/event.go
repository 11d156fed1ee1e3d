package domain

import "time"

// AuthEventKind names what happened to an account.
type AuthEventKind string

const (
	EventRegistered   AuthEventKind = "registered"
	EventLoginSuccess AuthEventKind = "login_success"
	EventLoginFailure AuthEventKind = "login_failure"
)

// AuthEvent is one entry of the credential audit trail.
type AuthEvent struct {
	ID        string
	Kind      AuthEventKind
	UserID    int64 // zero when the account was not resolved
	Name      string
	Email     string
	Reason    string // failure reason, empty on success
	Timestamp time.Time
}

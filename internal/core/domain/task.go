package domain

import "errors"

var (
	ErrMissingUserID = errors.New("user id missing")
	ErrUnknownOwner  = errors.New("unknown user")
	// ErrRequestInFlight means another request holding the same
	// Idempotency-Key has not finished yet.
	ErrRequestInFlight = errors.New("request already in progress")
)

// Task is a single todo item owned by exactly one user.
type Task struct {
	ID     int64  `json:"createid"`
	Text   string `json:"text"`
	UserID int64  `json:"-"`
	Status bool   `json:"status"`
}

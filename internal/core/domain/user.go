package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
	// ErrInvalidCredentials replaces both login failures when uniform
	// auth errors are enabled.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User models a registered account. PasswordHash always holds a bcrypt
// digest once Register has returned.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	LoginTime    time.Time `json:"logintime"`
}

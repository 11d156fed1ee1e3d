// Package session keeps the client's login state and mirrors it into a
// key/value Storage so it survives restarts.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Storage keys. The values are plain strings, like browser localStorage.
const (
	KeyIsLoggedIn = "isLoggedIn"
	KeyUserName   = "userName"
	KeyUserID     = "userId"
)

var sessionKeys = []string{KeyIsLoggedIn, KeyUserName, KeyUserID}

// ErrNoUserID is returned by Login when the id is empty. A logged-in state
// without an id could never be restored by Load.
var ErrNoUserID = errors.New("session: empty user id")

// Storage is a string key/value store. GetItem reports ok=false for a
// missing key. RemoveItem of a missing key is not an error.
type Storage interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// State is the client's view of who is logged in. UserID is empty when
// nobody is.
type State struct {
	IsLoggedIn bool
	UserName   string
	UserID     string
}

// Store owns the session State. It is safe for concurrent use within one
// process.
type Store struct {
	mu      sync.Mutex
	storage Storage
	state   State
}

// New returns a Store populated from storage.
func New(ctx context.Context, storage Storage) (*Store, error) {
	s := &Store{storage: storage}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reload re-reads storage and replaces the in-memory state. The state is
// restored only when all three keys are present and isLoggedIn is "true";
// otherwise it is reset to the logged-out default.
func (s *Store) Reload(ctx context.Context) error {
	st, err := load(ctx, s.storage)

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	return err
}

func load(ctx context.Context, storage Storage) (State, error) {
	values := make(map[string]string, len(sessionKeys))
	for _, key := range sessionKeys {
		v, ok, err := storage.GetItem(ctx, key)
		if err != nil {
			return State{}, fmt.Errorf("session: read %s: %w", key, err)
		}
		if !ok {
			return State{}, nil
		}
		values[key] = v
	}

	if values[KeyIsLoggedIn] != "true" || values[KeyUserID] == "" {
		return State{}, nil
	}
	return State{
		IsLoggedIn: true,
		UserName:   values[KeyUserName],
		UserID:     values[KeyUserID],
	}, nil
}

// Login records name and id as the logged-in user. The in-memory state
// changes only after all three keys are written.
func (s *Store) Login(ctx context.Context, name, id string) error {
	if id == "" {
		return ErrNoUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// isLoggedIn goes last so an interrupted write loads as logged out.
	writes := [][2]string{
		{KeyUserID, id},
		{KeyUserName, name},
		{KeyIsLoggedIn, "true"},
	}
	for _, w := range writes {
		if err := s.storage.SetItem(ctx, w[0], w[1]); err != nil {
			return fmt.Errorf("session: write %s: %w", w[0], err)
		}
	}

	s.state = State{IsLoggedIn: true, UserName: name, UserID: id}
	return nil
}

// Logout resets the state and removes every session key. All removals are
// attempted; their errors are joined.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{}

	var errs []error
	for _, key := range sessionKeys {
		if err := s.storage.RemoveItem(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("session: remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

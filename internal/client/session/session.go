// Package session keeps the client's login state on disk and lets callers
// observe sign-in and sign-out transitions.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// User identifies the signed-in account.
type User struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// State is what gets persisted between invocations.
type State struct {
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Session is the mutable login state. Observers registered via Subscribe
// are notified on sign-in and sign-out.
type Session struct {
	mu      sync.Mutex
	path    string
	state   State
	nextSub int
	subs    map[int]func(*User)
}

// Load reads the session file at path. A missing file yields an empty,
// signed-out session.
func Load(path string) (*Session, error) {
	s := &Session{path: path, subs: make(map[int]func(*User))}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}
	return s, nil
}

// Subscribe registers an observer and immediately calls it with the current
// user (nil when signed out). The returned function removes the observer;
// calling it more than once is harmless.
func (s *Session) Subscribe(fn func(*User)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	current := s.state.User
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// CurrentUser returns the signed-in user, or nil.
func (s *Session) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.User
}

// Tokens returns the stored token pair.
func (s *Session) Tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AccessToken, s.state.RefreshToken
}

// SignIn stores the user and tokens, persists the state and notifies
// observers.
func (s *Session) SignIn(user User, accessToken, refreshToken string) error {
	s.mu.Lock()
	s.state = State{User: &user, AccessToken: accessToken, RefreshToken: refreshToken}
	err := s.save()
	subs := s.snapshot()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	for _, fn := range subs {
		fn(&user)
	}
	return nil
}

// SetTokens replaces the token pair after a refresh without touching the
// user, so no observers fire.
func (s *Session) SetTokens(accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AccessToken = accessToken
	s.state.RefreshToken = refreshToken
	return s.save()
}

// SignOut clears the state, persists it and notifies observers with nil.
func (s *Session) SignOut() error {
	s.mu.Lock()
	s.state = State{}
	err := s.save()
	subs := s.snapshot()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	for _, fn := range subs {
		fn(nil)
	}
	return nil
}

// snapshot must be called with the lock held.
func (s *Session) snapshot() []func(*User) {
	subs := make([]func(*User), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

// save must be called with the lock held.
func (s *Session) save() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

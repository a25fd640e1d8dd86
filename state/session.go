package state

import (
	"context"
	"sync"

	"rentadm/api"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (api.UserProfile, error)
}

// Session is the auth slice: who is signed in and whether that is known yet.
type Session struct {
	svc AuthService

	mu            sync.RWMutex
	user          *api.UserProfile
	authenticated bool
	status        Status
	err           string

	onLogout []func()
}

func NewSession(svc AuthService) *Session {
	return &Session{svc: svc, status: StatusIdle}
}

// OnLogout registers a hook that runs after the session is cleared.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	s.onLogout = append(s.onLogout, fn)
	s.mu.Unlock()
}

func (s *Session) Login(ctx context.Context, email, password string) (api.UserProfile, error) {
	s.set(StatusLoading, "")
	if err := s.svc.Login(ctx, email, password); err != nil {
		msg := api.Message(err, "login failed")
		s.set(StatusFailed, msg)
		return api.UserProfile{}, &OpError{Message: msg, Err: err}
	}
	return s.FetchProfile(ctx)
}

// FetchProfile asks the backend who the cookies belong to. A failure leaves
// the session unauthenticated.
func (s *Session) FetchProfile(ctx context.Context) (api.UserProfile, error) {
	s.set(StatusLoading, "")
	profile, err := s.svc.Profile(ctx)
	if err != nil {
		msg := api.Message(err, "failed to fetch user profile")
		s.mu.Lock()
		s.user = nil
		s.authenticated = false
		s.status = StatusFailed
		s.err = msg
		s.mu.Unlock()
		return api.UserProfile{}, &OpError{Message: msg, Err: err}
	}
	s.mu.Lock()
	s.user = &profile
	s.authenticated = true
	s.status = StatusSucceeded
	s.err = ""
	s.mu.Unlock()
	return profile, nil
}

// Restore marks a session as known without a network call.
func (s *Session) Restore(profile api.UserProfile) {
	s.mu.Lock()
	s.user = &profile
	s.authenticated = true
	s.status = StatusSucceeded
	s.mu.Unlock()
}

// Logout clears local state even when the backend call fails.
func (s *Session) Logout(ctx context.Context) error {
	err := s.svc.Logout(ctx)
	s.Expire()
	if err != nil {
		return &OpError{Message: api.Message(err, "logout failed"), Err: err}
	}
	return nil
}

// Expire drops the session without calling the backend, e.g. after a failed
// token refresh.
func (s *Session) Expire() {
	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.status = StatusIdle
	s.err = ""
	hooks := append([]func(){}, s.onLogout...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Session) User() (api.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return api.UserProfile{}, false
	}
	return *s.user, true
}

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Session) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Session) set(status Status, message string) {
	s.mu.Lock()
	s.status = status
	s.err = message
	s.mu.Unlock()
}

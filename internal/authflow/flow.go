// Package authflow tracks multi-step login attempts.
//
// A login starts with a password check and, depending on the account state,
// continues through a forced password reset, two-factor enrollment or a
// two-factor code check before a session token is issued. Each attempt is
// held in memory under an opaque id with a short expiry.
package authflow

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Step identifies the next action required to finish a login attempt.
type Step string

const (
	// StepPassword is the initial state before credentials are verified.
	StepPassword Step = "PASSWORD"
	// StepReset requires the account to set a new password first.
	StepReset Step = "PASSWORD_RESET"
	// StepTwoFactorSetup requires the account to enroll an authenticator.
	StepTwoFactorSetup Step = "2FA_SETUP"
	// StepTwoFactorVerify requires a valid authenticator code.
	StepTwoFactorVerify Step = "2FA_VERIFY"
	// StepDone means the attempt is complete and a session may be issued.
	StepDone Step = "DONE"
)

// DefaultTTL bounds how long a pending attempt stays valid.
const DefaultTTL = 10 * time.Minute

// Attempt is a single in-flight login.
type Attempt struct {
	ID        string
	UserID    uint64
	Email     string
	Step      Step
	ExpiresAt time.Time
}

// Store keeps pending login attempts in memory.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	attempts map[string]*Attempt
}

// NewStore constructs a Store. A non-positive ttl falls back to DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:      ttl,
		attempts: make(map[string]*Attempt),
	}
}

// Begin records a new attempt for the user at the given step and returns it.
func (s *Store) Begin(userID uint64, email string, step Step) *Attempt {
	attempt := &Attempt{
		ID:        uuid.NewString(),
		UserID:    userID,
		Email:     email,
		Step:      step,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Lock()
	s.attempts[attempt.ID] = attempt
	s.sweepLocked(time.Now())
	s.mu.Unlock()
	return attempt
}

// Get returns the attempt for id if it exists and has not expired.
func (s *Store) Get(id string) (*Attempt, bool) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[id]
	if !ok {
		return nil, false
	}
	if now.After(attempt.ExpiresAt) {
		delete(s.attempts, id)
		return nil, false
	}
	copied := *attempt
	return &copied, true
}

// Advance moves the attempt for id to the next step and refreshes its expiry.
func (s *Store) Advance(id string, next Step) (*Attempt, bool) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[id]
	if !ok || now.After(attempt.ExpiresAt) {
		delete(s.attempts, id)
		return nil, false
	}
	attempt.Step = next
	attempt.ExpiresAt = now.Add(s.ttl)
	copied := *attempt
	return &copied, true
}

// Finish removes the attempt for id. Completed and abandoned attempts are
// discarded the same way.
func (s *Store) Finish(id string) {
	s.mu.Lock()
	delete(s.attempts, id)
	s.mu.Unlock()
}

func (s *Store) sweepLocked(now time.Time) {
	for id, attempt := range s.attempts {
		if now.After(attempt.ExpiresAt) {
			delete(s.attempts, id)
		}
	}
}

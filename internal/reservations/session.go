package reservations

import "sync"

// Session tracks which accounts have been verified during a single
// conversation. Verification never carries across sessions: a new
// connection starts with an empty set, and every operation re-checks
// the flag at call time.
type Session struct {
	mu       sync.Mutex
	verified map[string]bool
}

// NewSession creates an unverified session.
func NewSession() *Session {
	return &Session{verified: make(map[string]bool)}
}

// MarkVerified records a successful account verification.
func (s *Session) MarkVerified(accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verified[accountID] = true
}

// Verified reports whether the account was verified in this session.
func (s *Session) Verified(accountID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verified[accountID]
}

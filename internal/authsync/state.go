package authsync

import (
	"sync"

	"github.com/yndnr/handoff-go/internal/recovery"
)

// MemoryState is a LocalState held in memory and updated by the host.
type MemoryState struct {
	mu       sync.RWMutex
	signedIn bool
	method   recovery.AuthMethod
}

// NewMemoryState creates a signed-out state.
func NewMemoryState() *MemoryState {
	return &MemoryState{}
}

// SignIn records a signed-in user and their auth method.
func (s *MemoryState) SignIn(method recovery.AuthMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signedIn = true
	s.method = method
}

// SignOut records that no user is signed in.
func (s *MemoryState) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signedIn = false
	s.method = ""
}

// SignedIn implements LocalState.
func (s *MemoryState) SignedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signedIn
}

// AuthMethod implements LocalState.
func (s *MemoryState) AuthMethod() recovery.AuthMethod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.method
}

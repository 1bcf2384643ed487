package server

import (
	"sync"
	"time"
)

// flowTTL bounds how long a login attempt can sit between the redirect to
// the authorization server and the callback.
const flowTTL = 10 * time.Minute

type pendingFlow struct {
	verifier string
	expires  time.Time
}

// FlowStore holds PKCE verifiers for in-flight login attempts, keyed by the
// state value. A verifier is consumed exactly once; expired entries are
// swept lazily.
type FlowStore struct {
	mu    sync.Mutex
	flows map[string]pendingFlow
	now   func() time.Time
}

// NewFlowStore creates an empty flow store.
func NewFlowStore() *FlowStore {
	return &FlowStore{
		flows: make(map[string]pendingFlow),
		now:   time.Now,
	}
}

// Put stores the verifier for a state value, replacing any previous entry.
func (s *FlowStore) Put(state, verifier string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	s.flows[state] = pendingFlow{
		verifier: verifier,
		expires:  s.now().Add(flowTTL),
	}
}

// Take removes and returns the verifier for a state value.
// Returns false for unknown, already consumed, or expired states.
func (s *FlowStore) Take(state string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flow, ok := s.flows[state]
	if !ok {
		return "", false
	}
	delete(s.flows, state)

	if s.now().After(flow.expires) {
		return "", false
	}
	return flow.verifier, true
}

// sweep drops expired entries. Caller holds the lock.
func (s *FlowStore) sweep() {
	now := s.now()
	for state, flow := range s.flows {
		if now.After(flow.expires) {
			delete(s.flows, state)
		}
	}
}

package services

import (
	"fmt"
	"sync"

	"livecast/internal/core/domain"
)

// sessionState holds the phase of the single active broadcast session
// and enforces the legal transition table. All facade mutations happen
// under the facade's operation lock; reads may come from any goroutine.
type sessionState struct {
	mu      sync.RWMutex
	phase   domain.SessionPhase
	session *domain.Session
}

func newSessionState() *sessionState {
	return &sessionState{phase: domain.PhaseIdle}
}

func (st *sessionState) Phase() domain.SessionPhase {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.phase
}

// Session returns the bound session itself. Callers that mutate it
// must hold the facade's operation lock.
func (st *sessionState) Session() *domain.Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.session
}

// Snapshot returns the current phase and a copy of the bound session,
// so callers never observe in-flight mutations.
func (st *sessionState) Snapshot() (domain.SessionPhase, *domain.Session) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	if st.session == nil {
		return st.phase, nil
	}
	copied := *st.session
	return st.phase, &copied
}

// Begin binds a fresh session and moves idle -> starting.
func (st *sessionState) Begin(session *domain.Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.phase != domain.PhaseIdle {
		return fmt.Errorf("%w: cannot begin in phase %s", domain.ErrAlreadyStreaming, st.phase)
	}

	st.phase = domain.PhaseStarting
	st.session = session
	return nil
}

// To performs a validated phase transition.
func (st *sessionState) To(phase domain.SessionPhase) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if !domain.CanTransition(st.phase, phase) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, st.phase, phase)
	}

	st.phase = phase
	return nil
}

// Reset returns to idle after a terminal phase so a brand-new session
// can begin.
func (st *sessionState) Reset() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.phase != domain.PhaseEnded && st.phase != domain.PhaseError {
		return fmt.Errorf("%w: reset from non-terminal phase %s", domain.ErrInvalidTransition, st.phase)
	}

	st.phase = domain.PhaseIdle
	st.session = nil
	return nil
}

package pos

import (
	"sync"
	"time"

	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"

	"github.com/balcaohq/balcao-backend/pkg/enums"
)

// Registry holds at most one live session per terminal. The map mutex only
// guards membership; each session serializes its own operations.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Start creates a session for the terminal. A terminal with a live session
// must cancel or settle it first.
func (r *Registry) Start(terminalID string, fulfillment enums.FulfillmentType) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[terminalID]; ok && !existing.State().IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "terminal already has an active session")
	}
	session := NewSession(terminalID, fulfillment)
	r.sessions[terminalID] = session
	return session, nil
}

// Get returns the terminal's live session.
func (r *Registry) Get(terminalID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[terminalID]
	if !ok || session.State().IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active session for terminal")
	}
	return session, nil
}

// Remove drops the terminal's session regardless of state.
func (r *Registry) Remove(terminalID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, terminalID)
}

// IdleSessions returns the live sessions whose last activity predates cutoff.
// Terminal-state leftovers are pruned on the way through.
func (r *Registry) IdleSessions(cutoff time.Time) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var idle []*Session
	for terminalID, session := range r.sessions {
		if session.State().IsTerminal() {
			delete(r.sessions, terminalID)
			continue
		}
		if session.LastActive().Before(cutoff) {
			idle = append(idle, session)
		}
	}
	return idle
}

// Len reports the number of registered sessions, live or not.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

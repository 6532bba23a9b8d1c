package server

import "sync"

// registry holds every active session, keyed by session id. It is the sole
// shared mutable state of the relay. Individual operations are atomic; the
// coordinator additionally serializes its read-modify-write sequences with
// its own lock.
type registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]*Session)}
}

func (r *registry) add(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Id] = session
}

func (r *registry) get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	return session, ok
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// snapshot returns the current sessions. Disconnect cleanup iterates over
// this since the registry is keyed by session id, not by participant.
func (r *registry) snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

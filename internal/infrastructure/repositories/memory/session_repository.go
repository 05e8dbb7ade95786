package memory

import (
	"context"
	"fmt"
	"sync"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
)

// MemorySessionRepository keeps the full session history for the
// lifetime of the process. Sessions are never removed; List walks the
// insertion order backwards so the newest session comes first.
type MemorySessionRepository struct {
	sessions map[domain.SessionID]*domain.Session
	order    []domain.SessionID
	mu       sync.RWMutex
}

func NewMemorySessionRepository() ports.SessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[domain.SessionID]*domain.Session),
	}
}

func (r *MemorySessionRepository) Create(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; exists {
		return fmt.Errorf("session already exists: %s", session.ID)
	}

	copied := *session
	r.sessions[session.ID] = &copied
	r.order = append(r.order, session.ID)
	return nil
}

func (r *MemorySessionRepository) GetByID(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[id]
	if !exists {
		return nil, domain.ErrSessionNotFound
	}

	copied := *session
	return &copied, nil
}

func (r *MemorySessionRepository) Update(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; !exists {
		return domain.ErrSessionNotFound
	}

	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *MemorySessionRepository) List(ctx context.Context, limit int) ([]*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*domain.Session, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		if limit > 0 && len(sessions) >= limit {
			break
		}
		copied := *r.sessions[r.order[i]]
		sessions = append(sessions, &copied)
	}

	return sessions, nil
}

package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
)

// MemorySessionRepository holds conversations keyed by id. Entries idle
// for longer than ttl are dropped lazily on access.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]domain.Conversation
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]domain.Conversation),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()
	c, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	clone := c.Clone()
	return &clone, nil
}

func (r *MemorySessionRepository) Save(ctx context.Context, conv domain.Conversation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	conv.UpdatedAt = r.now().UTC()
	r.sessions[conv.ID] = conv.Clone()
	return nil
}

func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *MemorySessionRepository) sweepLocked() {
	if r.ttl <= 0 {
		return
	}
	cutoff := r.now().Add(-r.ttl)
	for id, c := range r.sessions {
		if c.UpdatedAt.Before(cutoff) {
			delete(r.sessions, id)
		}
	}
}

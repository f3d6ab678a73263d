package cart

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidSession is returned for an empty session id.
var ErrInvalidSession = errors.New("cart: invalid session")

// Registry owns one Cart per browsing session. It is created once at startup and
// shared by every consumer so they all observe the same instances.
type Registry struct {
	mu        sync.Mutex
	carts     map[string]*Cart
	persister *Persister
	logger    *zap.Logger
	now       func() time.Time
}

func NewRegistry(persister *Persister, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		carts:     make(map[string]*Cart),
		persister: persister,
		logger:    logger,
		now:       time.Now,
	}
}

// Get returns the cart for sessionID, hydrating it from the store on first use.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Cart, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.carts[sessionID]; ok {
		c.touch()
		return c, nil
	}
	c := Load(ctx, Key(sessionID), r.persister, WithLogger(r.logger), WithClock(r.now))
	r.carts[sessionID] = c
	return c, nil
}

// EvictIdle drops in-memory carts not mutated within maxIdle. Their persisted
// state is kept, so a later Get rehydrates the same collection.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, c := range r.carts {
		if c.LastTouched().Before(cutoff) {
			delete(r.carts, id)
			evicted++
		}
	}
	return evicted
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/stockroom/backend/internal/domain/cart"
)

type cartEntry struct {
	items     []cart.Item
	updatedAt time.Time
	expiresAt time.Time
}

// InMemoryCartStore keeps carts in process memory.
// Suitable for single-instance deployments and tests.
type InMemoryCartStore struct {
	mu        sync.RWMutex
	entries   map[string]cartEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryCartStore creates the store and starts its cleanup loop
func NewInMemoryCartStore(ttl time.Duration) *InMemoryCartStore {
	store := &InMemoryCartStore{
		entries:  make(map[string]cartEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Get returns a copy of the stored cart, or an empty cart
func (s *InMemoryCartStore) Get(_ context.Context, key string) (*cart.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return cart.New(key), nil
	}

	items := make([]cart.Item, len(e.items))
	copy(items, e.items)
	return &cart.Cart{SessionKey: key, Items: items, UpdatedAt: e.updatedAt}, nil
}

// Set stores a copy of the cart and refreshes its expiry
func (s *InMemoryCartStore) Set(ctx context.Context, key string, c *cart.Cart) error {
	if c.IsEmpty() {
		return s.Clear(ctx, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = cartEntry{
		items:     c.Snapshot(),
		updatedAt: c.UpdatedAt,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

// Clear removes the cart stored under key
func (s *InMemoryCartStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryCartStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryCartStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryCartStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Size returns the number of stored carts, expired ones included until cleanup
func (s *InMemoryCartStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ cart.SessionStore = (*InMemoryCartStore)(nil)

package name

import (
	"context"
	"sync"
	"time"
)

// Store exposes the names collection to HTTP handlers.
type Store interface {
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, lastName string) (Record, error)
	// Create inserts or overwrites the record keyed by lastName.
	Create(ctx context.Context, lastName, firstName string) (Record, error)
	// Update refreshes the timestamp and, when firstName is not empty, the first name.
	Update(ctx context.Context, lastName, firstName string) (Record, error)
	Delete(ctx context.Context, lastName string) error
	Ping(ctx context.Context) error
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryClock overrides the source of record timestamps.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// MemoryStore implements Store with an insertion-ordered map.
type MemoryStore struct {
	mu    sync.RWMutex
	now   func() time.Time
	order []string
	items map[string]Record
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied records.
// Seeded records are stamped with the store clock.
func NewMemoryStore(items []Record, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		now:   time.Now,
		order: make([]string, 0, len(items)),
		items: make(map[string]Record, len(items)),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, item := range items {
		s.put(item.LastName, item.FirstName)
	}
	return s
}

// List returns a copy of every record in insertion order.
func (s *MemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]Record, 0, len(s.order))
	for _, key := range s.order {
		records = append(records, s.items[key])
	}
	return records, nil
}

// Get looks up a record by last name.
func (s *MemoryStore) Get(_ context.Context, lastName string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.items[lastName]
	if !ok {
		return Record{}, ErrNotFound
	}
	return record, nil
}

// Create stores a record, replacing any existing one with the same last name.
func (s *MemoryStore) Create(_ context.Context, lastName, firstName string) (Record, error) {
	if lastName == "" {
		return Record{}, ErrLastNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(lastName, firstName), nil
}

// Update modifies an existing record.
func (s *MemoryStore) Update(_ context.Context, lastName, firstName string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.items[lastName]
	if !ok {
		return Record{}, ErrNotFound
	}

	if firstName != "" {
		record.FirstName = firstName
	}
	record.Timestamp = s.now()
	s.items[lastName] = record
	return record, nil
}

// Delete removes a record permanently.
func (s *MemoryStore) Delete(_ context.Context, lastName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[lastName]; !ok {
		return ErrNotFound
	}

	delete(s.items, lastName)
	for i, key := range s.order {
		if key == lastName {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// put must be called with mu held for writing (or before the store is shared).
func (s *MemoryStore) put(lastName, firstName string) Record {
	if _, exists := s.items[lastName]; !exists {
		s.order = append(s.order, lastName)
	}

	record := Record{
		LastName:  lastName,
		FirstName: firstName,
		Timestamp: s.now(),
	}
	s.items[lastName] = record
	return record
}

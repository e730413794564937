// Package sim is a minimal host environment that replays a contact trace into
// per-node observers.
package sim

import (
	"sort"

	"github.com/ethpandaops/dtn-window-stats/internal/buffer"
)

// Store is an in-memory message buffer. A capacity of buffer.Unbounded never
// evicts.
type Store struct {
	capacity int64
	used     int64
	sizes    map[string]int64
	order    []string
}

// NewStore creates an empty store with the given capacity in bytes.
func NewStore(capacity int64) *Store {
	return &Store{
		capacity: capacity,
		sizes:    make(map[string]int64),
	}
}

// Capacity implements buffer.Store.
func (s *Store) Capacity() int64 {
	return s.capacity
}

// FreeCapacity implements buffer.Store.
func (s *Store) FreeCapacity() int64 {
	if s.capacity == buffer.Unbounded {
		return buffer.Unbounded
	}
	return s.capacity - s.used
}

// HeldMessages implements buffer.Store, ordered by arrival.
func (s *Store) HeldMessages() []buffer.Message {
	held := make([]buffer.Message, 0, len(s.order))
	for _, id := range s.order {
		held = append(held, buffer.Message{ID: id, Size: s.sizes[id]})
	}
	return held
}

// Has reports whether id is held.
func (s *Store) Has(id string) bool {
	_, ok := s.sizes[id]
	return ok
}

// Size returns the size of id, or 0 when it is not held.
func (s *Store) Size(id string) int64 {
	return s.sizes[id]
}

// Add stores id, evicting the oldest messages until it fits. It returns the
// evicted identifiers. A message larger than the whole buffer is not stored.
func (s *Store) Add(id string, size int64) (evicted []string, stored bool) {
	if s.Has(id) {
		return nil, true
	}

	if s.capacity != buffer.Unbounded {
		if size > s.capacity {
			return nil, false
		}
		for s.capacity-s.used < size && len(s.order) > 0 {
			oldest := s.order[0]
			s.Remove(oldest)
			evicted = append(evicted, oldest)
		}
	}

	s.sizes[id] = size
	s.order = append(s.order, id)
	s.used += size

	return evicted, true
}

// Remove deletes id and reports whether it was held.
func (s *Store) Remove(id string) bool {
	size, ok := s.sizes[id]
	if !ok {
		return false
	}

	delete(s.sizes, id)
	s.used -= size
	for i, held := range s.order {
		if held == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return true
}

// Len returns the number of held messages.
func (s *Store) Len() int {
	return len(s.order)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package inventory

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore provides in-memory inventory storage for tests and
// development.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Item
}

// NewMemoryStore creates an empty in-memory inventory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Verify interface compliance
var _ Store = (*MemoryStore)(nil)

// Load replaces the store contents.
func (s *MemoryStore) Load(items []Item) {
	s.mu.Lock()
	s.items = append([]Item(nil), items...)
	s.mu.Unlock()
}

// Add appends one item.
func (s *MemoryStore) Add(item Item) {
	s.mu.Lock()
	s.items = append(s.items, item)
	s.mu.Unlock()
}

// SearchDescription returns items whose description contains substr.
func (s *MemoryStore) SearchDescription(ctx context.Context, substr string, inStockOnly bool) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(substr)
	var matched []Item
	for _, item := range s.items {
		if inStockOnly && !item.InStock() {
			continue
		}
		if strings.Contains(strings.ToLower(item.Description), needle) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// SpecCandidates returns items with a verified spec of the given fluid type.
func (s *MemoryStore) SpecCandidates(ctx context.Context, fluidType FluidType) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Item
	for _, item := range s.items {
		if item.Spec == nil || !item.Spec.Verified {
			continue
		}
		if item.Spec.Type == fluidType {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// ByPartNumbers returns items whose part number exactly matches one of the
// given numbers.
func (s *MemoryStore) ByPartNumbers(ctx context.Context, numbers []string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		wanted[n] = struct{}{}
	}

	var matched []Item
	for _, item := range s.items {
		if _, ok := wanted[item.PartNumber]; ok {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

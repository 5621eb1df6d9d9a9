package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/sharedcode/sco"
)

// MapStore is an in-memory sco.MapStore keyed by owner UUID. Entries keep
// insertion order; see SortedMapStore for a key-ordered variant that also
// serves range queries. The plain store deliberately does not carry the
// range methods, so it never passes for a sco.SortedMapStore.
type MapStore[TK comparable, TV comparable] struct {
	mu   sync.Mutex
	rows map[sco.UUID][]sco.KeyValuePair[TK, TV]
	// cmp, when set, keeps each owner's entries in key order. Only the
	// sorted variant sets it.
	cmp sco.ComparerFunc
}

// NewMapStore returns an empty in-memory map store with insertion-ordered entries.
func NewMapStore[TK comparable, TV comparable]() *MapStore[TK, TV] {
	return &MapStore[TK, TV]{rows: map[sco.UUID][]sco.KeyValuePair[TK, TV]{}}
}

// SortedMapStore is the key-ordered in-memory map store. It alone implements
// sco.SortedMapStore.
type SortedMapStore[TK comparable, TV comparable] struct {
	MapStore[TK, TV]
}

// NewSortedMapStore returns an in-memory map store keeping entries in key
// order per the given comparer (sco.DefaultComparer when nil).
func NewSortedMapStore[TK comparable, TV comparable](cmp sco.ComparerFunc) *SortedMapStore[TK, TV] {
	if cmp == nil {
		cmp = sco.DefaultComparer
	}
	s := &SortedMapStore[TK, TV]{}
	s.rows = map[sco.UUID][]sco.KeyValuePair[TK, TV]{}
	s.cmp = cmp
	return s
}

func (s *MapStore[TK, TV]) find(owner sco.UUID, key TK) int {
	for i, kv := range s.rows[owner] {
		if kv.Key == key {
			return i
		}
	}
	return -1
}

func (s *MapStore[TK, TV]) Size(ctx context.Context, owner sco.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows[owner]), nil
}

func (s *MapStore[TK, TV]) ContainsKey(ctx context.Context, owner sco.UUID, key TK) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(owner, key) >= 0, nil
}

func (s *MapStore[TK, TV]) ContainsValue(ctx context.Context, owner sco.UUID, value TV) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kv := range s.rows[owner] {
		if kv.Value == value {
			return true, nil
		}
	}
	return false, nil
}

func (s *MapStore[TK, TV]) Get(ctx context.Context, owner sco.UUID, key TK) (TV, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero TV
	i := s.find(owner, key)
	if i < 0 {
		return zero, false, nil
	}
	return s.rows[owner][i].Value, true, nil
}

func (s *MapStore[TK, TV]) Iterator(ctx context.Context, owner sco.UUID) (sco.Cursor[sco.KeyValuePair[TK, TV]], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newSliceCursor(slices.Clone(s.rows[owner])), nil
}

func (s *MapStore[TK, TV]) Put(ctx context.Context, owner sco.UUID, key TK, value TV) (TV, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero TV
	if i := s.find(owner, key); i >= 0 {
		prev := s.rows[owner][i].Value
		s.rows[owner][i].Value = value
		return prev, true, nil
	}
	kv := sco.KeyValuePair[TK, TV]{Key: key, Value: value}
	row := s.rows[owner]
	if s.cmp != nil {
		i, _ := slices.BinarySearchFunc(row, kv, func(a, b sco.KeyValuePair[TK, TV]) int {
			return s.cmp(a.Key, b.Key)
		})
		row = slices.Insert(row, i, kv)
	} else {
		row = append(row, kv)
	}
	s.rows[owner] = row
	return zero, false, nil
}

func (s *MapStore[TK, TV]) PutAll(ctx context.Context, owner sco.UUID, entries ...sco.KeyValuePair[TK, TV]) error {
	for _, kv := range entries {
		if _, _, err := s.Put(ctx, owner, kv.Key, kv.Value); err != nil {
			return err
		}
	}
	return nil
}

func (s *MapStore[TK, TV]) Remove(ctx context.Context, owner sco.UUID, key TK, allowCascadeDelete bool) (TV, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero TV
	i := s.find(owner, key)
	if i < 0 {
		return zero, false, nil
	}
	prev := s.rows[owner][i].Value
	s.rows[owner] = slices.Delete(s.rows[owner], i, i+1)
	return prev, true, nil
}

func (s *MapStore[TK, TV]) Clear(ctx context.Context, owner sco.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, owner)
	return nil
}

// HeadEntries returns entries with key < toKey.
func (s *SortedMapStore[TK, TV]) HeadEntries(ctx context.Context, owner sco.UUID, toKey TK) ([]sco.KeyValuePair[TK, TV], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sco.KeyValuePair[TK, TV]
	for _, kv := range s.rows[owner] {
		if s.cmp(kv.Key, toKey) >= 0 {
			break
		}
		out = append(out, kv)
	}
	return out, nil
}

// TailEntries returns entries with key >= fromKey.
func (s *SortedMapStore[TK, TV]) TailEntries(ctx context.Context, owner sco.UUID, fromKey TK) ([]sco.KeyValuePair[TK, TV], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sco.KeyValuePair[TK, TV]
	for _, kv := range s.rows[owner] {
		if s.cmp(kv.Key, fromKey) >= 0 {
			out = append(out, kv)
		}
	}
	return out, nil
}

// SubEntries returns entries with fromKey <= key < toKey.
func (s *SortedMapStore[TK, TV]) SubEntries(ctx context.Context, owner sco.UUID, fromKey, toKey TK) ([]sco.KeyValuePair[TK, TV], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sco.KeyValuePair[TK, TV]
	for _, kv := range s.rows[owner] {
		if s.cmp(kv.Key, toKey) >= 0 {
			break
		}
		if s.cmp(kv.Key, fromKey) >= 0 {
			out = append(out, kv)
		}
	}
	return out, nil
}

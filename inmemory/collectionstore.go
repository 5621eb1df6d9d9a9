package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/sharedcode/sco"
)

// CollectionStore is an in-memory sco.CollectionStore keyed by owner UUID.
type CollectionStore[T comparable] struct {
	mu   sync.Mutex
	rows map[sco.UUID][]T
}

// NewCollectionStore returns an empty in-memory collection store.
func NewCollectionStore[T comparable]() *CollectionStore[T] {
	return &CollectionStore[T]{rows: map[sco.UUID][]T{}}
}

func (s *CollectionStore[T]) Size(ctx context.Context, owner sco.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows[owner]), nil
}

func (s *CollectionStore[T]) Contains(ctx context.Context, owner sco.UUID, value T) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.rows[owner], value), nil
}

func (s *CollectionStore[T]) Iterator(ctx context.Context, owner sco.UUID) (sco.Cursor[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newSliceCursor(slices.Clone(s.rows[owner])), nil
}

func (s *CollectionStore[T]) Add(ctx context.Context, owner sco.UUID, values ...T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[owner] = append(s.rows[owner], values...)
	return nil
}

func (s *CollectionStore[T]) Remove(ctx context.Context, owner sco.UUID, value T, allowCascadeDelete bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.rows[owner]
	i := slices.Index(row, value)
	if i < 0 {
		return false, nil
	}
	s.rows[owner] = slices.Delete(row, i, i+1)
	return true, nil
}

func (s *CollectionStore[T]) RemoveAll(ctx context.Context, owner sco.UUID, allowCascadeDelete bool, values ...T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.rows[owner]
	for _, v := range values {
		if i := slices.Index(row, v); i >= 0 {
			row = slices.Delete(row, i, i+1)
		}
	}
	s.rows[owner] = row
	return nil
}

func (s *CollectionStore[T]) Clear(ctx context.Context, owner sco.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, owner)
	return nil
}

package inmemory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/sharedcode/sco"
)

// ListStore is an in-memory sco.ListStore keyed by owner UUID.
type ListStore[T comparable] struct {
	mu   sync.Mutex
	rows map[sco.UUID][]T
}

// NewListStore returns an empty in-memory list store.
func NewListStore[T comparable]() *ListStore[T] {
	return &ListStore[T]{rows: map[sco.UUID][]T{}}
}

func (s *ListStore[T]) Size(ctx context.Context, owner sco.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows[owner]), nil
}

func (s *ListStore[T]) Contains(ctx context.Context, owner sco.UUID, value T) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.rows[owner], value), nil
}

func (s *ListStore[T]) Iterator(ctx context.Context, owner sco.UUID) (sco.Cursor[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newSliceCursor(slices.Clone(s.rows[owner])), nil
}

func (s *ListStore[T]) Add(ctx context.Context, owner sco.UUID, values ...T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[owner] = append(s.rows[owner], values...)
	return nil
}

func (s *ListStore[T]) AddAt(ctx context.Context, owner sco.UUID, index int, values ...T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.rows[owner]
	if index < 0 || index > len(row) {
		return fmt.Errorf("index %d out of range, size %d", index, len(row))
	}
	s.rows[owner] = slices.Insert(row, index, values...)
	return nil
}

func (s *ListStore[T]) Get(ctx context.Context, owner sco.UUID, index int) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	row := s.rows[owner]
	if index < 0 || index >= len(row) {
		return zero, fmt.Errorf("index %d out of range, size %d", index, len(row))
	}
	return row[index], nil
}

func (s *ListStore[T]) IndexOf(ctx context.Context, owner sco.UUID, value T) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Index(s.rows[owner], value), nil
}

func (s *ListStore[T]) LastIndexOf(ctx context.Context, owner sco.UUID, value T) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.rows[owner]
	for i := len(row) - 1; i >= 0; i-- {
		if row[i] == value {
			return i, nil
		}
	}
	return -1, nil
}

func (s *ListStore[T]) Set(ctx context.Context, owner sco.UUID, index int, value T, allowDependentSideEffect bool) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	row := s.rows[owner]
	if index < 0 || index >= len(row) {
		return zero, fmt.Errorf("index %d out of range, size %d", index, len(row))
	}
	prev := row[index]
	row[index] = value
	return prev, nil
}

func (s *ListStore[T]) Remove(ctx context.Context, owner sco.UUID, value T, allowCascadeDelete bool) (bool, error) {
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

func (s *ListStore[T]) RemoveAll(ctx context.Context, owner sco.UUID, allowCascadeDelete bool, values ...T) error {
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

func (s *ListStore[T]) RemoveAt(ctx context.Context, owner sco.UUID, index int) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	row := s.rows[owner]
	if index < 0 || index >= len(row) {
		return zero, fmt.Errorf("index %d out of range, size %d", index, len(row))
	}
	v := row[index]
	s.rows[owner] = slices.Delete(row, index, index+1)
	return v, nil
}

func (s *ListStore[T]) SubList(ctx context.Context, owner sco.UUID, from, to int) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.rows[owner]
	if from < 0 || to > len(row) || from > to {
		return nil, fmt.Errorf("range [%d,%d) out of range, size %d", from, to, len(row))
	}
	return slices.Clone(row[from:to]), nil
}

func (s *ListStore[T]) Clear(ctx context.Context, owner sco.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, owner)
	return nil
}

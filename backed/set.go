package backed

import (
	"context"
	"fmt"

	"github.com/sharedcode/sco"
	"github.com/sharedcode/sco/encoding"
)

// Set is the wrapper of an unordered unique-elements container field.
type Set[T comparable] struct {
	collection[T]
}

// NewSet binds a set wrapper to one field of one owner.
func NewSet[T comparable](opts Options, store sco.CollectionStore[T]) (*Set[T], error) {
	if opts.Descriptor != nil && opts.Descriptor.Shape != sco.SetShape {
		return nil, fmt.Errorf("field %s is not set shaped", opts.Descriptor.Name)
	}
	col, err := newCollection[T](opts, newSetDelegate[T](), store)
	if err != nil {
		return nil, err
	}
	return &Set[T]{collection: col}, nil
}

// Add inserts a value. It reports false when the value was already present.
func (s *Set[T]) Add(ctx context.Context, v T) (bool, error) {
	return s.add(ctx, true, v)
}

// AddAll inserts the absent values as one logical mutation. It reports
// whether the set changed.
func (s *Set[T]) AddAll(ctx context.Context, values ...T) (bool, error) {
	if len(values) == 0 {
		return false, nil
	}
	return s.add(ctx, true, values...)
}

// Remove removes v. It reports false for an absent value or a failed
// store-side removal.
func (s *Set[T]) Remove(ctx context.Context, v T) (bool, error) {
	return s.removeValue(ctx, v, true)
}

// RemoveEx is Remove with cascade delete explicitly controlled.
func (s *Set[T]) RemoveEx(ctx context.Context, v T, allowCascadeDelete bool) (bool, error) {
	return s.removeValue(ctx, v, allowCascadeDelete)
}

// RemoveAll removes every given element that is present.
func (s *Set[T]) RemoveAll(ctx context.Context, values ...T) (bool, error) {
	return s.removeAll(ctx, true, values...)
}

// Clear empties the set.
func (s *Set[T]) Clear(ctx context.Context) error {
	return s.clear(ctx)
}

// Size returns the element count of the complete view.
func (s *Set[T]) Size(ctx context.Context) (int, error) {
	return s.size(ctx)
}

// Contains reports whether v is present.
func (s *Set[T]) Contains(ctx context.Context, v T) (bool, error) {
	return s.contains(ctx, v)
}

// Iterator returns an iterator over the complete view.
func (s *Set[T]) Iterator(ctx context.Context) (*Iterator[T], error) {
	return s.iterator(ctx)
}

// Equals compares size and containment, order-insensitive.
func (s *Set[T]) Equals(ctx context.Context, other []T) (bool, error) {
	return s.equalsUnordered(ctx, other)
}

// Detach returns a plain slice snapshot with no owner or store connection.
func (s *Set[T]) Detach(ctx context.Context) ([]T, error) {
	return s.detach(ctx)
}

// Init performs the bulk value-initialization pass from a supplied collection.
func (s *Set[T]) Init(ctx context.Context, values []T, forInsert bool) error {
	return s.initValues(ctx, values, forInsert)
}

// Unbind releases the owner reference and store handle.
func (s *Set[T]) Unbind() {
	s.unbindAll()
}

// MarshalJSON marshals a detach snapshot of the contents.
func (s *Set[T]) MarshalJSON() ([]byte, error) {
	snap, err := s.detach(context.Background())
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap = []T{}
	}
	return encoding.Marshal(snap)
}

package backed

import (
	"context"
	"fmt"

	"github.com/sharedcode/sco"
	"github.com/sharedcode/sco/encoding"
)

// SortedSet is the wrapper of a comparator-ordered unique-elements container
// field. Ordering comes from the field descriptor's comparer, falling back to
// sco.DefaultComparer.
type SortedSet[T comparable] struct {
	collection[T]
	cmp sco.ComparerFunc
}

// NewSortedSet binds a sorted set wrapper to one field of one owner.
func NewSortedSet[T comparable](opts Options, store sco.CollectionStore[T]) (*SortedSet[T], error) {
	if opts.Descriptor != nil && opts.Descriptor.Shape != sco.SortedSetShape {
		return nil, fmt.Errorf("field %s is not sorted-set shaped", opts.Descriptor.Name)
	}
	var cmp sco.ComparerFunc
	if opts.Descriptor != nil {
		cmp = opts.Descriptor.Comparer
	}
	if cmp == nil {
		cmp = sco.DefaultComparer
	}
	col, err := newCollection[T](opts, newSortedDelegate[T](cmp), store)
	if err != nil {
		return nil, err
	}
	return &SortedSet[T]{collection: col, cmp: cmp}, nil
}

// Add inserts a value at its comparer position. It reports false when the
// value was already present.
func (s *SortedSet[T]) Add(ctx context.Context, v T) (bool, error) {
	return s.add(ctx, true, v)
}

// AddAll inserts the absent values as one logical mutation.
func (s *SortedSet[T]) AddAll(ctx context.Context, values ...T) (bool, error) {
	if len(values) == 0 {
		return false, nil
	}
	return s.add(ctx, true, values...)
}

// Remove removes v. It reports false for an absent value or a failed
// store-side removal.
func (s *SortedSet[T]) Remove(ctx context.Context, v T) (bool, error) {
	return s.removeValue(ctx, v, true)
}

// RemoveEx is Remove with cascade delete explicitly controlled.
func (s *SortedSet[T]) RemoveEx(ctx context.Context, v T, allowCascadeDelete bool) (bool, error) {
	return s.removeValue(ctx, v, allowCascadeDelete)
}

// RemoveAll removes every given element that is present.
func (s *SortedSet[T]) RemoveAll(ctx context.Context, values ...T) (bool, error) {
	return s.removeAll(ctx, true, values...)
}

// Clear empties the set.
func (s *SortedSet[T]) Clear(ctx context.Context) error {
	return s.clear(ctx)
}

// Size returns the element count of the complete view.
func (s *SortedSet[T]) Size(ctx context.Context) (int, error) {
	return s.size(ctx)
}

// Contains reports whether v is present.
func (s *SortedSet[T]) Contains(ctx context.Context, v T) (bool, error) {
	return s.contains(ctx, v)
}

// First returns the smallest element. The second result is false when empty.
func (s *SortedSet[T]) First(ctx context.Context) (T, bool, error) {
	return s.boundary(ctx, 0)
}

// Last returns the largest element. The second result is false when empty.
func (s *SortedSet[T]) Last(ctx context.Context) (T, bool, error) {
	return s.boundary(ctx, -1)
}

func (s *SortedSet[T]) boundary(ctx context.Context, index int) (T, bool, error) {
	var zero T
	snap, err := s.rangeSnapshot(ctx, "First/Last")
	if err != nil {
		return zero, false, err
	}
	if len(snap) == 0 {
		return zero, false, nil
	}
	if index < 0 {
		return snap[len(snap)-1], true, nil
	}
	return snap[index], true, nil
}

// HeadSet returns the elements strictly smaller than to, in order.
func (s *SortedSet[T]) HeadSet(ctx context.Context, to T) ([]T, error) {
	snap, err := s.rangeSnapshot(ctx, "HeadSet")
	if err != nil {
		return nil, err
	}
	var out []T
	for _, v := range snap {
		if s.cmp(v, to) >= 0 {
			break
		}
		out = append(out, v)
	}
	return out, nil
}

// TailSet returns the elements greater than or equal to from, in order.
func (s *SortedSet[T]) TailSet(ctx context.Context, from T) ([]T, error) {
	snap, err := s.rangeSnapshot(ctx, "TailSet")
	if err != nil {
		return nil, err
	}
	var out []T
	for _, v := range snap {
		if s.cmp(v, from) >= 0 {
			out = append(out, v)
		}
	}
	return out, nil
}

// rangeSnapshot serves the shape's range queries from the loaded delegate.
// A pass-through sorted set has no delegate to order by and its collection
// store cannot serve ranges, so the query is a capability error.
func (s *SortedSet[T]) rangeSnapshot(ctx context.Context, op string) ([]T, error) {
	if s.passthrough() {
		return nil, s.rangeError(op)
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.delegate.snapshot(), nil
}

// Iterator returns an iterator over the complete view, in comparer order for
// cached and in-memory modes.
func (s *SortedSet[T]) Iterator(ctx context.Context) (*Iterator[T], error) {
	return s.iterator(ctx)
}

// Equals compares size and containment, order-insensitive.
func (s *SortedSet[T]) Equals(ctx context.Context, other []T) (bool, error) {
	return s.equalsUnordered(ctx, other)
}

// Detach returns a plain slice snapshot in comparer order.
func (s *SortedSet[T]) Detach(ctx context.Context) ([]T, error) {
	return s.detach(ctx)
}

// Init performs the bulk value-initialization pass from a supplied collection.
func (s *SortedSet[T]) Init(ctx context.Context, values []T, forInsert bool) error {
	return s.initValues(ctx, values, forInsert)
}

// Unbind releases the owner reference and store handle.
func (s *SortedSet[T]) Unbind() {
	s.unbindAll()
}

// MarshalJSON marshals a detach snapshot of the contents.
func (s *SortedSet[T]) MarshalJSON() ([]byte, error) {
	snap, err := s.detach(context.Background())
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap = []T{}
	}
	return encoding.Marshal(snap)
}

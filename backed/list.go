package backed

import (
	"context"
	"fmt"

	"github.com/sharedcode/sco"
	"github.com/sharedcode/sco/encoding"
)

// List is the wrapper of an ordered, index-addressable container field.
type List[T comparable] struct {
	collection[T]
}

// NewList binds a list wrapper to one field of one owner. A nil store builds
// a pure in-memory wrapper (serialized or non-persistent fields).
func NewList[T comparable](opts Options, store sco.ListStore[T]) (*List[T], error) {
	if opts.Descriptor != nil && opts.Descriptor.Shape != sco.ListShape {
		return nil, fmt.Errorf("field %s is not list shaped", opts.Descriptor.Name)
	}
	var cs sco.CollectionStore[T]
	if store != nil {
		cs = store
	}
	col, err := newCollection[T](opts, &listDelegate[T]{}, cs)
	if err != nil {
		return nil, err
	}
	return &List[T]{collection: col}, nil
}

// Add appends a value.
func (l *List[T]) Add(ctx context.Context, v T) (bool, error) {
	return l.add(ctx, true, v)
}

// AddAll appends values as one logical mutation.
func (l *List[T]) AddAll(ctx context.Context, values ...T) (bool, error) {
	if len(values) == 0 {
		return false, nil
	}
	return l.add(ctx, true, values...)
}

// AddAt inserts values at index, shifting subsequent elements.
func (l *List[T]) AddAt(ctx context.Context, index int, values ...T) error {
	return l.addAt(ctx, index, values...)
}

// Get returns the element at index.
func (l *List[T]) Get(ctx context.Context, index int) (T, error) {
	return l.get(ctx, index)
}

// Set replaces the element at index and returns the previous element,
// cascading its deletion when the field is dependent.
func (l *List[T]) Set(ctx context.Context, index int, v T) (T, error) {
	return l.setAt(ctx, index, v, true)
}

// SetEx is Set with the dependent-element side effect explicitly controlled.
func (l *List[T]) SetEx(ctx context.Context, index int, v T, allowDependentSideEffect bool) (T, error) {
	return l.setAt(ctx, index, v, allowDependentSideEffect)
}

// Remove removes the first occurrence of v. It reports false for an absent
// value or a failed store-side removal.
func (l *List[T]) Remove(ctx context.Context, v T) (bool, error) {
	return l.removeValue(ctx, v, true)
}

// RemoveEx is Remove with cascade delete explicitly controlled, used when a
// removal merely repositions a value during merge/attach.
func (l *List[T]) RemoveEx(ctx context.Context, v T, allowCascadeDelete bool) (bool, error) {
	return l.removeValue(ctx, v, allowCascadeDelete)
}

// RemoveAt removes and returns the element at index.
func (l *List[T]) RemoveAt(ctx context.Context, index int) (T, error) {
	return l.removeAt(ctx, index)
}

// RemoveAll removes every given element that is present.
func (l *List[T]) RemoveAll(ctx context.Context, values ...T) (bool, error) {
	return l.removeAll(ctx, true, values...)
}

// Clear empties the list.
func (l *List[T]) Clear(ctx context.Context) error {
	return l.clear(ctx)
}

// Size returns the element count of the complete view.
func (l *List[T]) Size(ctx context.Context) (int, error) {
	return l.size(ctx)
}

// Contains reports whether v is present.
func (l *List[T]) Contains(ctx context.Context, v T) (bool, error) {
	return l.contains(ctx, v)
}

// IndexOf returns the first index of v, or -1.
func (l *List[T]) IndexOf(ctx context.Context, v T) (int, error) {
	return l.indexOf(ctx, v)
}

// LastIndexOf returns the last index of v, or -1.
func (l *List[T]) LastIndexOf(ctx context.Context, v T) (int, error) {
	return l.lastIndexOf(ctx, v)
}

// SubList returns the elements in [from, to).
func (l *List[T]) SubList(ctx context.Context, from, to int) ([]T, error) {
	return l.subList(ctx, from, to)
}

// Iterator returns an iterator over the complete view.
func (l *List[T]) Iterator(ctx context.Context) (*Iterator[T], error) {
	return l.iterator(ctx)
}

// Equals compares size and element-wise order against a plain sequence.
func (l *List[T]) Equals(ctx context.Context, other []T) (bool, error) {
	return l.equalsOrdered(ctx, other)
}

// Detach returns a plain slice snapshot with no owner or store connection.
func (l *List[T]) Detach(ctx context.Context) ([]T, error) {
	return l.detach(ctx)
}

// Init performs the bulk value-initialization pass from a supplied sequence.
// With forInsert the store half runs too (queued or immediate).
func (l *List[T]) Init(ctx context.Context, values []T, forInsert bool) error {
	return l.initValues(ctx, values, forInsert)
}

// Unbind releases the owner reference and store handle, leaving the wrapper
// an ordinary in-memory list.
func (l *List[T]) Unbind() {
	l.unbindAll()
}

// MarshalJSON marshals a detach snapshot of the contents.
func (l *List[T]) MarshalJSON() ([]byte, error) {
	snap, err := l.detach(context.Background())
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap = []T{}
	}
	return encoding.Marshal(snap)
}

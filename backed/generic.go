package backed

import (
	"context"

	"github.com/sharedcode/sco"
	"github.com/sharedcode/sco/encoding"
)

// Collection is the generically constructed collection wrapper used when the
// field's concrete shape is not known at binding time. It starts with a
// set-shaped delegate and may reshape once to a list-shaped one at first
// value-initialization, when the supplied source value is ordered. The
// reshape can only happen while the delegate is untouched: before any load
// or mutation.
type Collection[T comparable] struct {
	collection[T]
	reshaped bool
}

// NewCollection binds a generic collection wrapper to one field of one owner.
func NewCollection[T comparable](opts Options, store sco.CollectionStore[T]) (*Collection[T], error) {
	col, err := newCollection[T](opts, newSetDelegate[T](), store)
	if err != nil {
		return nil, err
	}
	return &Collection[T]{collection: col}, nil
}

// Ordered reports whether the current delegate shape maintains element order.
func (c *Collection[T]) Ordered() bool {
	return c.delegate.ordered()
}

// Init performs the bulk value-initialization pass. ordered describes the
// source container; an ordered source reshapes the empty, untouched default
// delegate to a list shape, once.
func (c *Collection[T]) Init(ctx context.Context, values []T, ordered bool, forInsert bool) error {
	if ordered && !c.reshaped && !c.touched && c.delegate.size() == 0 {
		c.delegate = &listDelegate[T]{}
		c.reshaped = true
	}
	return c.initValues(ctx, values, forInsert)
}

// Add inserts a value per the current delegate shape's semantics.
func (c *Collection[T]) Add(ctx context.Context, v T) (bool, error) {
	return c.add(ctx, true, v)
}

// AddAll inserts values as one logical mutation.
func (c *Collection[T]) AddAll(ctx context.Context, values ...T) (bool, error) {
	if len(values) == 0 {
		return false, nil
	}
	return c.add(ctx, true, values...)
}

// Remove removes v.
func (c *Collection[T]) Remove(ctx context.Context, v T) (bool, error) {
	return c.removeValue(ctx, v, true)
}

// RemoveEx is Remove with cascade delete explicitly controlled.
func (c *Collection[T]) RemoveEx(ctx context.Context, v T, allowCascadeDelete bool) (bool, error) {
	return c.removeValue(ctx, v, allowCascadeDelete)
}

// RemoveAll removes every given element that is present.
func (c *Collection[T]) RemoveAll(ctx context.Context, values ...T) (bool, error) {
	return c.removeAll(ctx, true, values...)
}

// Clear empties the collection.
func (c *Collection[T]) Clear(ctx context.Context) error {
	return c.clear(ctx)
}

// Size returns the element count of the complete view.
func (c *Collection[T]) Size(ctx context.Context) (int, error) {
	return c.size(ctx)
}

// Contains reports whether v is present.
func (c *Collection[T]) Contains(ctx context.Context, v T) (bool, error) {
	return c.contains(ctx, v)
}

// Iterator returns an iterator over the complete view.
func (c *Collection[T]) Iterator(ctx context.Context) (*Iterator[T], error) {
	return c.iterator(ctx)
}

// Equals compares against a plain sequence: element-wise when list shaped,
// containment when set shaped.
func (c *Collection[T]) Equals(ctx context.Context, other []T) (bool, error) {
	if c.delegate.ordered() {
		return c.equalsOrdered(ctx, other)
	}
	return c.equalsUnordered(ctx, other)
}

// Detach returns a plain slice snapshot with no owner or store connection.
func (c *Collection[T]) Detach(ctx context.Context) ([]T, error) {
	return c.detach(ctx)
}

// Unbind releases the owner reference and store handle.
func (c *Collection[T]) Unbind() {
	c.unbindAll()
}

// MarshalJSON marshals a detach snapshot of the contents.
func (c *Collection[T]) MarshalJSON() ([]byte, error) {
	snap, err := c.detach(context.Background())
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap = []T{}
	}
	return encoding.Marshal(snap)
}

package backed

import (
	"context"
	"fmt"

	"github.com/sharedcode/sco"
	"github.com/sharedcode/sco/encoding"
)

// Queue is the wrapper of a FIFO container field, a list-backed shape with
// queue accessors. Offer appends at the tail, Poll removes from the head.
type Queue[T comparable] struct {
	collection[T]
}

// NewQueue binds a queue wrapper to one field of one owner.
func NewQueue[T comparable](opts Options, store sco.ListStore[T]) (*Queue[T], error) {
	if opts.Descriptor != nil && opts.Descriptor.Shape != sco.QueueShape {
		return nil, fmt.Errorf("field %s is not queue shaped", opts.Descriptor.Name)
	}
	var cs sco.CollectionStore[T]
	if store != nil {
		cs = store
	}
	col, err := newCollection[T](opts, &listDelegate[T]{}, cs)
	if err != nil {
		return nil, err
	}
	return &Queue[T]{collection: col}, nil
}

// Offer appends a value at the tail.
func (q *Queue[T]) Offer(ctx context.Context, v T) (bool, error) {
	return q.add(ctx, true, v)
}

// Poll removes and returns the head element. The second result is false when
// the queue is empty.
func (q *Queue[T]) Poll(ctx context.Context) (T, bool, error) {
	var zero T
	n, err := q.size(ctx)
	if err != nil {
		return zero, false, err
	}
	if n == 0 {
		return zero, false, nil
	}
	v, err := q.removeAt(ctx, 0)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Peek returns the head element without removing it. The second result is
// false when the queue is empty.
func (q *Queue[T]) Peek(ctx context.Context) (T, bool, error) {
	var zero T
	n, err := q.size(ctx)
	if err != nil {
		return zero, false, err
	}
	if n == 0 {
		return zero, false, nil
	}
	v, err := q.get(ctx, 0)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Remove removes the first occurrence of v.
func (q *Queue[T]) Remove(ctx context.Context, v T) (bool, error) {
	return q.removeValue(ctx, v, true)
}

// RemoveEx is Remove with cascade delete explicitly controlled.
func (q *Queue[T]) RemoveEx(ctx context.Context, v T, allowCascadeDelete bool) (bool, error) {
	return q.removeValue(ctx, v, allowCascadeDelete)
}

// Clear empties the queue.
func (q *Queue[T]) Clear(ctx context.Context) error {
	return q.clear(ctx)
}

// Size returns the element count of the complete view.
func (q *Queue[T]) Size(ctx context.Context) (int, error) {
	return q.size(ctx)
}

// Contains reports whether v is present.
func (q *Queue[T]) Contains(ctx context.Context, v T) (bool, error) {
	return q.contains(ctx, v)
}

// Iterator returns an iterator from head to tail.
func (q *Queue[T]) Iterator(ctx context.Context) (*Iterator[T], error) {
	return q.iterator(ctx)
}

// Equals compares size and element-wise order against a plain sequence.
func (q *Queue[T]) Equals(ctx context.Context, other []T) (bool, error) {
	return q.equalsOrdered(ctx, other)
}

// Detach returns a plain slice snapshot from head to tail.
func (q *Queue[T]) Detach(ctx context.Context) ([]T, error) {
	return q.detach(ctx)
}

// Init performs the bulk value-initialization pass from a supplied sequence.
func (q *Queue[T]) Init(ctx context.Context, values []T, forInsert bool) error {
	return q.initValues(ctx, values, forInsert)
}

// Unbind releases the owner reference and store handle.
func (q *Queue[T]) Unbind() {
	q.unbindAll()
}

// MarshalJSON marshals a detach snapshot of the contents.
func (q *Queue[T]) MarshalJSON() ([]byte, error) {
	snap, err := q.detach(context.Background())
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap = []T{}
	}
	return encoding.Marshal(snap)
}

package inmemory

import "context"

// sliceCursor iterates a snapshot taken when the cursor was created.
type sliceCursor[T any] struct {
	items []T
	pos   int
	cur   T
}

func newSliceCursor[T any](items []T) *sliceCursor[T] {
	return &sliceCursor[T]{items: items}
}

func (c *sliceCursor[T]) Next(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if c.pos >= len(c.items) {
		return false, nil
	}
	c.cur = c.items[c.pos]
	c.pos++
	return true, nil
}

func (c *sliceCursor[T]) Value() T {
	return c.cur
}

func (c *sliceCursor[T]) Close() error {
	return nil
}

package cassandra

import (
	"context"
)

// sliceCursor walks an already-fetched snapshot of decoded elements.
type sliceCursor[T any] struct {
	items []T
	pos   int
}

func newSliceCursor[T any](items []T) *sliceCursor[T] {
	return &sliceCursor[T]{items: items, pos: -1}
}

func (c *sliceCursor[T]) Next(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if c.pos+1 >= len(c.items) {
		return false, nil
	}
	c.pos++
	return true, nil
}

func (c *sliceCursor[T]) Value() T {
	return c.items[c.pos]
}

func (c *sliceCursor[T]) Close() error {
	c.items = nil
	return nil
}

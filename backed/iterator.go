package backed

import (
	"context"
	"fmt"

	"github.com/sharedcode/sco"
)

// Iterator iterates one collection shaped wrapper. In cached and in-memory
// modes it walks a stable snapshot taken at creation; in pass-through mode it
// streams a store cursor without materializing the container.
type Iterator[T comparable] struct {
	col  *collection[T]
	snap []T
	pos  int
	cur  sco.Cursor[T]

	current    T
	hasCurrent bool
}

// Next advances to the next element. It returns false when exhausted.
func (it *Iterator[T]) Next(ctx context.Context) (bool, error) {
	if it.cur != nil {
		ok, err := it.cur.Next(ctx)
		if err != nil || !ok {
			it.hasCurrent = false
			return false, err
		}
		it.current = it.cur.Value()
		it.hasCurrent = true
		return true, nil
	}
	if it.pos >= len(it.snap) {
		it.hasCurrent = false
		return false, nil
	}
	it.current = it.snap[it.pos]
	it.pos++
	it.hasCurrent = true
	return true, nil
}

// Value returns the element at the current position. Only valid after a
// successful Next.
func (it *Iterator[T]) Value() T {
	return it.current
}

// Remove removes the element last returned by Next, routed through the same
// dispatch path as a direct remove (store half, cascade, dirty included).
func (it *Iterator[T]) Remove(ctx context.Context) (bool, error) {
	if !it.hasCurrent {
		return false, fmt.Errorf("no current element to remove")
	}
	it.hasCurrent = false
	return it.col.removeValue(ctx, it.current, true)
}

// Close releases the store cursor in pass-through mode. No-op otherwise.
func (it *Iterator[T]) Close() error {
	if it.cur != nil {
		return it.cur.Close()
	}
	return nil
}

// EntryIterator iterates one map shaped wrapper, entry by entry.
type EntryIterator[TK comparable, TV comparable] struct {
	m    *mapCore[TK, TV]
	snap []sco.KeyValuePair[TK, TV]
	pos  int
	cur  sco.Cursor[sco.KeyValuePair[TK, TV]]

	current    sco.KeyValuePair[TK, TV]
	hasCurrent bool
}

// Next advances to the next entry. It returns false when exhausted.
func (it *EntryIterator[TK, TV]) Next(ctx context.Context) (bool, error) {
	if it.cur != nil {
		ok, err := it.cur.Next(ctx)
		if err != nil || !ok {
			it.hasCurrent = false
			return false, err
		}
		it.current = it.cur.Value()
		it.hasCurrent = true
		return true, nil
	}
	if it.pos >= len(it.snap) {
		it.hasCurrent = false
		return false, nil
	}
	it.current = it.snap[it.pos]
	it.pos++
	it.hasCurrent = true
	return true, nil
}

// Entry returns the entry at the current position. Only valid after a
// successful Next.
func (it *EntryIterator[TK, TV]) Entry() sco.KeyValuePair[TK, TV] {
	return it.current
}

// Remove removes the entry last returned by Next through the same dispatch
// path as a direct key removal.
func (it *EntryIterator[TK, TV]) Remove(ctx context.Context) (bool, error) {
	if !it.hasCurrent {
		return false, fmt.Errorf("no current entry to remove")
	}
	it.hasCurrent = false
	_, removed, err := it.m.removeKey(ctx, it.current.Key, true)
	return removed, err
}

// Close releases the store cursor in pass-through mode. No-op otherwise.
func (it *EntryIterator[TK, TV]) Close() error {
	if it.cur != nil {
		return it.cur.Close()
	}
	return nil
}

package sco

import (
	"context"
)

// Cursor is a streaming iterator over backing store contents. It is the
// uncached pass-through iteration vehicle and must not materialize the
// full container on the store side.
type Cursor[T any] interface {
	// Next advances the cursor. It returns false when exhausted.
	Next(ctx context.Context) (bool, error)
	// Value returns the element at the current position. Only valid after a
	// successful Next.
	Value() T
	// Close releases store-side resources held by the cursor.
	Close() error
}

// CollectionStore is the backing store adapter for unordered collection
// shaped fields. Every call is keyed by the owning object's identity.
// Implementations may raise store-level errors; they never consult or
// mutate the wrapper's delegate.
type CollectionStore[T any] interface {
	Size(ctx context.Context, owner UUID) (int, error)
	Contains(ctx context.Context, owner UUID, value T) (bool, error)
	// Iterator streams the stored elements in store iteration order.
	Iterator(ctx context.Context, owner UUID) (Cursor[T], error)
	Add(ctx context.Context, owner UUID, values ...T) error
	// Remove removes one element. allowCascadeDelete is a pass-through hint for
	// stores that perform their own dependent-object handling; the wrapper-level
	// cascade is driven by the field descriptor regardless.
	Remove(ctx context.Context, owner UUID, value T, allowCascadeDelete bool) (bool, error)
	RemoveAll(ctx context.Context, owner UUID, allowCascadeDelete bool, values ...T) error
	Clear(ctx context.Context, owner UUID) error
}

// ListStore is the backing store adapter for ordered, index-addressable
// shapes (lists and queues).
type ListStore[T any] interface {
	CollectionStore[T]
	Get(ctx context.Context, owner UUID, index int) (T, error)
	IndexOf(ctx context.Context, owner UUID, value T) (int, error)
	LastIndexOf(ctx context.Context, owner UUID, value T) (int, error)
	// AddAt inserts values at the given index, shifting subsequent elements.
	AddAt(ctx context.Context, owner UUID, index int, values ...T) error
	// Set replaces the element at index and returns the previous element.
	// allowDependentSideEffect mirrors Remove's allowCascadeDelete hint.
	Set(ctx context.Context, owner UUID, index int, value T, allowDependentSideEffect bool) (T, error)
	// RemoveAt removes the element at index and returns it.
	RemoveAt(ctx context.Context, owner UUID, index int) (T, error)
	// SubList returns the elements in [from, to).
	SubList(ctx context.Context, owner UUID, from, to int) ([]T, error)
}

// MapStore is the backing store adapter for map shaped fields.
type MapStore[TK comparable, TV any] interface {
	Size(ctx context.Context, owner UUID) (int, error)
	ContainsKey(ctx context.Context, owner UUID, key TK) (bool, error)
	ContainsValue(ctx context.Context, owner UUID, value TV) (bool, error)
	// Get returns the value for key and whether the key was present.
	Get(ctx context.Context, owner UUID, key TK) (TV, bool, error)
	// Iterator streams the stored entries in store iteration order.
	Iterator(ctx context.Context, owner UUID) (Cursor[KeyValuePair[TK, TV]], error)
	// Put upserts one entry and returns the previous value, if any.
	Put(ctx context.Context, owner UUID, key TK, value TV) (TV, bool, error)
	PutAll(ctx context.Context, owner UUID, entries ...KeyValuePair[TK, TV]) error
	// Remove deletes one entry and returns the previous value, if any.
	Remove(ctx context.Context, owner UUID, key TK, allowCascadeDelete bool) (TV, bool, error)
	Clear(ctx context.Context, owner UUID) error
}

// SortedMapStore is an optional capability of MapStore implementations that
// can serve key-range queries store-side. Pass-through sorted maps require
// it; a store lacking the capability yields an UnsupportedRangeQuery error.
type SortedMapStore[TK comparable, TV any] interface {
	MapStore[TK, TV]
	// HeadEntries returns entries with key < toKey, in key order.
	HeadEntries(ctx context.Context, owner UUID, toKey TK) ([]KeyValuePair[TK, TV], error)
	// TailEntries returns entries with key >= fromKey, in key order.
	TailEntries(ctx context.Context, owner UUID, fromKey TK) ([]KeyValuePair[TK, TV], error)
	// SubEntries returns entries with fromKey <= key < toKey, in key order.
	SubEntries(ctx context.Context, owner UUID, fromKey, toKey TK) ([]KeyValuePair[TK, TV], error)
}

package sco

import "fmt"

type ErrorCode int

const (
	Unknown = iota
	// NilNotAllowed signals a nil element, key or value on a field whose descriptor disallows nils.
	NilNotAllowed
	// StoreAddFailure signals a failed store-side add/addAt/setAt; the delegate mutation is kept (not rolled back).
	StoreAddFailure
	// StoreLoadFailure signals a failed backing store iteration during ensureLoaded. Always fatal, never retried.
	StoreLoadFailure
	// UnsupportedRangeQuery signals a range query (sublist, head/tail/sub map) on a
	// pass-through shape whose backing store cannot serve it.
	UnsupportedRangeQuery
	// IndexOutOfRange signals an index argument outside the container's bounds.
	IndexOutOfRange
)

// SCO custom error.
type Error struct {
	Code     ErrorCode
	Err      error
	UserData any
}

func (e Error) Error() string {
	return fmt.Errorf("error code: %d, user data: %v, details: %w", e.Code, e.UserData, e.Err).Error()
}

func (e Error) Unwrap() error {
	return e.Err
}

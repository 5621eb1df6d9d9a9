package sco

import "context"

// StateManager is the owning persistence context of one persistent object.
// The wrappers consume it for dirty marking, auto-commit outside transactions,
// cascade delete, and relationship bookkeeping. Its identity (ID) keys every
// backing store call for the owner's container fields.
type StateManager interface {
	// ID returns the owner's identity, the key of all store calls for its fields.
	ID() UUID
	// MakeDirty marks the field at the given absolute position dirty.
	MakeDirty(fieldNo int)
	// IsTransactionActive reports whether the owner is enlisted in an active transaction.
	IsTransactionActive() bool
	// ProcessNontransactionalUpdate triggers an auto-commit style flush for a
	// mutation performed outside an active transaction.
	ProcessNontransactionalUpdate(ctx context.Context) error
	// DeleteObject deletes a dependent contained object from the datastore (cascade delete).
	DeleteObject(ctx context.Context, value any) error
	// RelationshipManager returns the owner's relationship manager, or nil when
	// the owner does not manage relations.
	RelationshipManager() RelationshipManager
}

// RelationshipManager keeps the inverse side of a bidirectional association consistent.
type RelationshipManager interface {
	RelationAdd(fieldNo int, value any)
	RelationRemove(fieldNo int, value any)
}

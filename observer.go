package sco

import (
	log "log/slog"
)

// Observer receives cross-cutting notifications from the wrappers at three
// extension points: delegate load, mutation success, mutation failure. It is
// diagnostics only and never consulted for control flow.
type Observer interface {
	// Loaded fires after ensureLoaded repopulated a delegate with count elements.
	Loaded(fd *FieldDescriptor, owner UUID, count int)
	// MutationSucceeded fires after the delegate and store halves of a mutation completed.
	MutationSucceeded(fd *FieldDescriptor, owner UUID, kind OperationKind)
	// MutationFailed fires when the store-side half of a mutation failed.
	MutationFailed(fd *FieldDescriptor, owner UUID, kind OperationKind, err error)
}

// LogObserver logs the extension points through the default slog logger.
// Loads and successes at Debug, failures at Warn.
type LogObserver struct{}

func (LogObserver) Loaded(fd *FieldDescriptor, owner UUID, count int) {
	log.Debug("field loaded", "field", fd.Name, "owner", owner.String(), "count", count)
}

func (LogObserver) MutationSucceeded(fd *FieldDescriptor, owner UUID, kind OperationKind) {
	log.Debug("field mutated", "field", fd.Name, "owner", owner.String(), "op", kind.String())
}

func (LogObserver) MutationFailed(fd *FieldDescriptor, owner UUID, kind OperationKind, err error) {
	log.Warn("field mutation failed", "field", fd.Name, "owner", owner.String(), "op", kind.String(), "error", err.Error())
}

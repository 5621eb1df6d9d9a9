package sco

import "context"

// OperationKind tags a deferred operation record with the mutation it carries.
type OperationKind int

const (
	OpAdd OperationKind = iota
	OpAddAt
	OpRemove
	OpRemoveAt
	OpSetAt
	OpClear
	OpPut
	OpPutAll
	OpRemoveKey
)

func (k OperationKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpAddAt:
		return "addAt"
	case OpRemove:
		return "remove"
	case OpRemoveAt:
		return "removeAt"
	case OpSetAt:
		return "setAt"
	case OpClear:
		return "clear"
	case OpPut:
		return "put"
	case OpPutAll:
		return "putAll"
	case OpRemoveKey:
		return "removeKey"
	}
	return "unknown"
}

// IsAdditive reports whether the kind adds or replaces data (store failures of
// additive kinds propagate; removal kinds are downgraded to logged warnings).
func (k OperationKind) IsAdditive() bool {
	switch k {
	case OpAdd, OpAddAt, OpSetAt, OpPut, OpPutAll:
		return true
	}
	return false
}

// Operation is one deferred operation record: a pending container mutation
// enqueued instead of executed when the wrapper runs in queued mode. Kind,
// owner, field and operands describe the mutation; the apply function is
// bound to the wrapper's backing store handle at enqueue time and performs
// the store-side half on replay.
type Operation struct {
	Kind    OperationKind
	Owner   UUID
	FieldNo int
	// Index is the position operand of OpAddAt, OpRemoveAt, and OpSetAt.
	Index int
	// Args carries the element operands (or key then value, for map kinds).
	Args []any

	apply func(ctx context.Context) error
}

// NewOperation builds a record with its store-side replay bound in.
func NewOperation(kind OperationKind, owner UUID, fieldNo int, apply func(ctx context.Context) error) Operation {
	return Operation{
		Kind:    kind,
		Owner:   owner,
		FieldNo: fieldNo,
		apply:   apply,
	}
}

// Apply performs the store-side half of the recorded mutation.
func (o Operation) Apply(ctx context.Context) error {
	if o.apply == nil {
		return nil
	}
	return o.apply(ctx)
}

// OperationQueue is the external, per-field/per-owner ordered log of pending
// mutations. The wrapper's sole obligation is correct, in-call-order
// enqueueing; records sharing owner and field must later be replayed FIFO by
// the surrounding persistence context at a flush boundary. See the queue
// subpackage for a reference implementation.
type OperationQueue interface {
	Enqueue(op Operation)
}

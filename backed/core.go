package backed

import (
	"context"
	"fmt"
	log "log/slog"
	"reflect"

	"github.com/sharedcode/sco"
)

// Options carries the construction-time wiring of a wrapper. The mode flags
// are fixed for the wrapper's lifetime; there is no way to change them later.
type Options struct {
	// Owner is the owning persistence context handle. Nil builds an unbound,
	// purely in-memory wrapper.
	Owner sco.StateManager
	// Descriptor describes the field's shape. Required.
	Descriptor *sco.FieldDescriptor
	// NoCache disables the delegate as a source of truth; every call passes
	// through to the backing store. Requires a store.
	NoCache bool
	// Queue, when set, makes mutators enqueue one deferred operation record
	// instead of calling the store directly. Requires a store.
	Queue sco.OperationQueue
	// Observer receives load/mutation notifications. Defaults to sco.LogObserver.
	Observer sco.Observer
}

// core is the state shared by the collection and map wrapper cores.
type core struct {
	owner    sco.StateManager
	fd       *sco.FieldDescriptor
	useCache bool
	queued   bool
	hasStore bool
	queue    sco.OperationQueue
	observer sco.Observer

	// loaded is the isCacheLoaded flag: true once ensureLoaded repopulated
	// the delegate from the store.
	loaded bool
	// initialising suppresses relationship bookkeeping during the bulk
	// value-initialization pass.
	initialising bool
	// touched blocks the one-time delegate reshape once any load or mutation occurred.
	touched bool
}

func newCore(opts Options, hasStore bool) (core, error) {
	if opts.Descriptor == nil {
		return core{}, fmt.Errorf("field descriptor is required")
	}
	if opts.NoCache && !hasStore {
		return core{}, fmt.Errorf("field %s: pass-through mode requires a backing store", opts.Descriptor.Name)
	}
	if opts.Queue != nil && !hasStore {
		return core{}, fmt.Errorf("field %s: queued mode requires a backing store", opts.Descriptor.Name)
	}
	if opts.Descriptor.SerializedElements && hasStore {
		return core{}, fmt.Errorf("field %s: serialized-elements fields carry no backing store", opts.Descriptor.Name)
	}
	ob := opts.Observer
	if ob == nil {
		ob = sco.LogObserver{}
	}
	return core{
		owner:    opts.Owner,
		fd:       opts.Descriptor,
		useCache: !opts.NoCache,
		queued:   opts.Queue != nil,
		hasStore: hasStore,
		queue:    opts.Queue,
		observer: ob,
	}, nil
}

// Descriptor returns the field descriptor the wrapper is bound to.
func (c *core) Descriptor() *sco.FieldDescriptor {
	return c.fd
}

// IsLoaded reports whether the delegate has been populated from the store.
func (c *core) IsLoaded() bool {
	return c.loaded
}

func (c *core) ownerID() sco.UUID {
	if c.owner == nil {
		return sco.NilUUID
	}
	return c.owner.ID()
}

// passthrough reports whether the wrapper forwards directly to the store.
func (c *core) passthrough() bool {
	return c.hasStore && !c.useCache
}

// unbind releases the owner reference. The store handle release is done by
// the wrapper cores, which own the typed handle.
func (c *core) unbind() {
	c.owner = nil
	c.hasStore = false
	c.queued = false
	c.queue = nil
}

// makeDirty marks the owner's field dirty and triggers the auto-commit hook
// outside an active transaction. It must run only after the store-side half
// of the mutation has been attempted.
func (c *core) makeDirty(ctx context.Context) error {
	if c.owner == nil {
		return nil
	}
	c.owner.MakeDirty(c.fd.FieldNo)
	if !c.owner.IsTransactionActive() {
		return c.owner.ProcessNontransactionalUpdate(ctx)
	}
	return nil
}

// cascadeDelete forwards values that were truly removed from the container to
// the owner's persistence context for deletion. Failures are logged and do not
// undo the removal, which already happened.
func (c *core) cascadeDelete(ctx context.Context, removed ...any) {
	if c.owner == nil {
		return
	}
	for _, v := range removed {
		if isNil(v) {
			continue
		}
		if err := c.owner.DeleteObject(ctx, v); err != nil {
			log.Warn("cascade delete failed", "field", c.fd.Name, "owner", c.ownerID().String(), "error", err.Error())
		}
	}
}

func (c *core) relationAdd(v any) {
	if c.initialising || c.owner == nil || c.fd.Relation != sco.RelationBidirectional {
		return
	}
	if rm := c.owner.RelationshipManager(); rm != nil {
		rm.RelationAdd(c.fd.FieldNo, v)
	}
}

func (c *core) relationRemove(v any) {
	if c.initialising || c.owner == nil || c.fd.Relation != sco.RelationBidirectional {
		return
	}
	if rm := c.owner.RelationshipManager(); rm != nil {
		rm.RelationRemove(c.fd.FieldNo, v)
	}
}

// checkNil rejects a nil operand when the descriptor disallows nils. It runs
// before any mutation is applied anywhere.
func (c *core) checkNil(v any) error {
	if c.fd.AllowNils {
		return nil
	}
	if isNil(v) {
		return sco.Error{
			Code:     sco.NilNotAllowed,
			Err:      fmt.Errorf("field %s does not allow nil", c.fd.Name),
			UserData: c.ownerID(),
		}
	}
	return nil
}

// additiveError wraps a store failure of an additive mutation. The delegate
// change that already happened is kept, not rolled back.
func (c *core) additiveError(kind sco.OperationKind, err error) error {
	c.observer.MutationFailed(c.fd, c.ownerID(), kind, err)
	return sco.Error{
		Code:     sco.StoreAddFailure,
		Err:      fmt.Errorf("store %s on field %s failed: %w", kind.String(), c.fd.Name, err),
		UserData: c.ownerID(),
	}
}

// removalFailure downgrades a store failure of a removal mutation to a logged
// warning; the operation reports best-effort "not removed".
func (c *core) removalFailure(kind sco.OperationKind, err error) {
	c.observer.MutationFailed(c.fd, c.ownerID(), kind, err)
	log.Warn("store removal failed", "field", c.fd.Name, "owner", c.ownerID().String(), "op", kind.String(), "error", err.Error())
}

func (c *core) loadError(err error) error {
	return sco.Error{
		Code:     sco.StoreLoadFailure,
		Err:      fmt.Errorf("loading field %s from store failed: %w", c.fd.Name, err),
		UserData: c.ownerID(),
	}
}

func (c *core) rangeError(op string) error {
	return sco.Error{
		Code:     sco.UnsupportedRangeQuery,
		Err:      fmt.Errorf("%s is not supported by field %s's backing store in pass-through mode", op, c.fd.Name),
		UserData: c.ownerID(),
	}
}

func (c *core) indexError(index, size int) error {
	return sco.Error{
		Code:     sco.IndexOutOfRange,
		Err:      fmt.Errorf("index %d out of range, size %d, field %s", index, size, c.fd.Name),
		UserData: c.ownerID(),
	}
}

// isNil reports whether v is nil or wraps a nil pointer/map/slice/etc.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

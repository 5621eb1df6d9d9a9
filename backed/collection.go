package backed

import (
	"context"

	"github.com/sharedcode/sco"
)

// collection is the shared protocol core of the collection shaped wrappers
// (list, set, sorted set, queue, generic collection). The shape shims embed
// it and export only the operations their shape supports.
type collection[T comparable] struct {
	core
	delegate colDelegate[T]
	store    sco.CollectionStore[T]
	// listStore is the typed view of store when it supports index and range
	// operations. Nil otherwise.
	listStore sco.ListStore[T]
}

func newCollection[T comparable](opts Options, delegate colDelegate[T], store sco.CollectionStore[T]) (collection[T], error) {
	co, err := newCore(opts, store != nil)
	if err != nil {
		return collection[T]{}, err
	}
	ls, _ := store.(sco.ListStore[T])
	return collection[T]{
		core:      co,
		delegate:  delegate,
		store:     store,
		listStore: ls,
	}, nil
}

// ensureLoaded lazily populates the delegate from the backing store: clears
// it, repopulates in store iteration order, and flips the loaded flag. No-op
// when caching is off, the store is absent, or the load already happened.
// A store iteration failure is fatal and propagates; it is never retried.
func (c *collection[T]) ensureLoaded(ctx context.Context) error {
	if !c.useCache || c.loaded || c.store == nil {
		return nil
	}
	c.touched = true
	c.delegate.clear()
	cur, err := c.store.Iterator(ctx, c.ownerID())
	if err != nil {
		return c.loadError(err)
	}
	defer cur.Close()
	for {
		ok, err := cur.Next(ctx)
		if err != nil {
			return c.loadError(err)
		}
		if !ok {
			break
		}
		c.delegate.add(cur.Value())
	}
	c.loaded = true
	c.observer.Loaded(c.fd, c.ownerID(), c.delegate.size())
	return nil
}

// storeApply runs the store-side half of a mutation: the apply function
// directly in immediate mode, or as exactly one deferred operation record in
// queued mode. No-op without a store.
func (c *collection[T]) storeApply(ctx context.Context, kind sco.OperationKind, index int, args []any, apply func(ctx context.Context) error) error {
	if c.store == nil {
		return nil
	}
	if c.queued {
		op := sco.NewOperation(kind, c.ownerID(), c.fd.FieldNo, apply)
		op.Index = index
		op.Args = args
		c.queue.Enqueue(op)
		return nil
	}
	return apply(ctx)
}

func (c *collection[T]) size(ctx context.Context) (int, error) {
	if c.passthrough() {
		return c.store.Size(ctx, c.ownerID())
	}
	if err := c.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	return c.delegate.size(), nil
}

func (c *collection[T]) contains(ctx context.Context, v T) (bool, error) {
	if c.passthrough() {
		return c.store.Contains(ctx, c.ownerID(), v)
	}
	if err := c.ensureLoaded(ctx); err != nil {
		return false, err
	}
	return c.delegate.contains(v), nil
}

// add applies one add/addAll mutation: delegate first, relationship hook,
// then the store half, then dirty. Duplicate-rejecting shapes only forward
// the values actually added so delegate and store stay element-wise equal.
func (c *collection[T]) add(ctx context.Context, markDirty bool, values ...T) (bool, error) {
	for _, v := range values {
		if err := c.checkNil(v); err != nil {
			return false, err
		}
	}
	c.touched = true

	if c.passthrough() {
		added := values
		if c.delegate.unique() {
			// Unique shape: only absent values get added; consult the store.
			added = nil
			for _, v := range values {
				ok, err := c.store.Contains(ctx, c.ownerID(), v)
				if err != nil {
					return false, c.additiveError(sco.OpAdd, err)
				}
				if !ok {
					added = append(added, v)
				}
			}
		}
		if len(added) == 0 {
			return false, nil
		}
		for _, v := range added {
			c.relationAdd(v)
		}
		if err := c.applyAdd(ctx, added); err != nil {
			return false, c.additiveError(sco.OpAdd, err)
		}
		if markDirty {
			if err := c.makeDirty(ctx); err != nil {
				return true, err
			}
		}
		c.observer.MutationSucceeded(c.fd, c.ownerID(), sco.OpAdd)
		return true, nil
	}

	// A unique shape needs the complete view to detect duplicates, and a
	// queued wrapper must load before mutating so the delegate keeps mirroring
	// store plus pending records. Only an immediate-mode append on a
	// duplicate-tolerant ordered shape stays lazy.
	if c.delegate.unique() || c.queued {
		if err := c.ensureLoaded(ctx); err != nil {
			return false, err
		}
	}
	var added []T
	for _, v := range values {
		if c.delegate.add(v) {
			added = append(added, v)
			c.relationAdd(v)
		}
	}
	if len(added) == 0 {
		return false, nil
	}
	if err := c.applyAdd(ctx, added); err != nil {
		return false, c.additiveError(sco.OpAdd, err)
	}
	if markDirty {
		if err := c.makeDirty(ctx); err != nil {
			return true, err
		}
	}
	c.observer.MutationSucceeded(c.fd, c.ownerID(), sco.OpAdd)
	return true, nil
}

func (c *collection[T]) applyAdd(ctx context.Context, added []T) error {
	store, owner := c.store, c.ownerID()
	return c.storeApply(ctx, sco.OpAdd, -1, anySlice(added), func(ctx context.Context) error {
		return store.Add(ctx, owner, added...)
	})
}

// addAt inserts values at index. Index arguments need the complete view, so
// the cached path always loads first.
func (c *collection[T]) addAt(ctx context.Context, index int, values ...T) error {
	for _, v := range values {
		if err := c.checkNil(v); err != nil {
			return err
		}
	}
	c.touched = true

	if c.passthrough() {
		n, err := c.listStore.Size(ctx, c.ownerID())
		if err != nil {
			return c.additiveError(sco.OpAddAt, err)
		}
		if index < 0 || index > n {
			return c.indexError(index, n)
		}
	} else {
		if err := c.ensureLoaded(ctx); err != nil {
			return err
		}
		if index < 0 || index > c.delegate.size() {
			return c.indexError(index, c.delegate.size())
		}
		for i, v := range values {
			c.delegate.insertAt(index+i, v)
		}
	}
	for _, v := range values {
		c.relationAdd(v)
	}
	store, owner := c.listStore, c.ownerID()
	vals := values
	if err := c.storeApply(ctx, sco.OpAddAt, index, anySlice(values), func(ctx context.Context) error {
		return store.AddAt(ctx, owner, index, vals...)
	}); err != nil {
		return c.additiveError(sco.OpAddAt, err)
	}
	if err := c.makeDirty(ctx); err != nil {
		return err
	}
	c.observer.MutationSucceeded(c.fd, c.ownerID(), sco.OpAddAt)
	return nil
}

func (c *collection[T]) get(ctx context.Context, index int) (T, error) {
	var zero T
	if c.passthrough() {
		return c.listStore.Get(ctx, c.ownerID(), index)
	}
	if err := c.ensureLoaded(ctx); err != nil {
		return zero, err
	}
	if index < 0 || index >= c.delegate.size() {
		return zero, c.indexError(index, c.delegate.size())
	}
	return c.delegate.get(index), nil
}

func (c *collection[T]) indexOf(ctx context.Context, v T) (int, error) {
	if c.passthrough() {
		return c.listStore.IndexOf(ctx, c.ownerID(), v)
	}
	if err := c.ensureLoaded(ctx); err != nil {
		return -1, err
	}
	return c.delegate.indexOf(v), nil
}

func (c *collection[T]) lastIndexOf(ctx context.Context, v T) (int, error) {
	if c.passthrough() {
		return c.listStore.LastIndexOf(ctx, c.ownerID(), v)
	}
	if err := c.ensureLoaded(ctx); err != nil {
		return -1, err
	}
	return c.delegate.lastIndexOf(v), nil
}

// setAt replaces the element at index and returns the previous element.
// allowDependentSideEffect gates the cascade delete of the replaced element.
func (c *collection[T]) setAt(ctx context.Context, index int, v T, allowDependentSideEffect bool) (T, error) {
	var zero T
	if err := c.checkNil(v); err != nil {
		return zero, err
	}
	c.touched = true

	var prev T
	if c.passthrough() {
		store, owner := c.listStore, c.ownerID()
		if c.queued {
			if err := c.storeApply(ctx, sco.OpSetAt, index, []any{v}, func(ctx context.Context) error {
				_, err := store.Set(ctx, owner, index, v, allowDependentSideEffect)
				return err
			}); err != nil {
				return zero, c.additiveError(sco.OpSetAt, err)
			}
			// The previous element is unknown until replay.
		} else {
			var err error
			prev, err = store.Set(ctx, owner, index, v, allowDependentSideEffect)
			if err != nil {
				return zero, c.additiveError(sco.OpSetAt, err)
			}
		}
	} else {
		if err := c.ensureLoaded(ctx); err != nil {
			return zero, err
		}
		if index < 0 || index >= c.delegate.size() {
			return zero, c.indexError(index, c.delegate.size())
		}
		prev = c.delegate.setAt(index, v)
		store, owner := c.listStore, c.ownerID()
		if err := c.storeApply(ctx, sco.OpSetAt, index, []any{v}, func(ctx context.Context) error {
			_, err := store.Set(ctx, owner, index, v, allowDependentSideEffect)
			return err
		}); err != nil {
			return zero, c.additiveError(sco.OpSetAt, err)
		}
	}
	c.relationRemove(prev)
	c.relationAdd(v)
	if allowDependentSideEffect && c.fd.DependentElement && prev != v {
		// The replaced element cascades only when truly gone from the container.
		stillThere, err := c.contains(ctx, prev)
		if err == nil && !stillThere {
			c.cascadeDelete(ctx, prev)
		}
	}
	if err := c.makeDirty(ctx); err != nil {
		return prev, err
	}
	c.observer.MutationSucceeded(c.fd, c.ownerID(), sco.OpSetAt)
	return prev, nil
}

// removeValue removes one element. Store failures are downgraded to logged
// warnings and the operation reports best-effort "not removed"; the dirty
// bit still tracks what actually changed in the delegate.
func (c *collection[T]) removeValue(ctx context.Context, v T, allowCascadeDelete bool) (bool, error) {
	c.touched = true

	if c.passthrough() {
		removed, err := c.store.Remove(ctx, c.ownerID(), v, allowCascadeDelete)
		if err != nil {
			c.removalFailure(sco.OpRemove, err)
			return false, nil
		}
		if !removed {
			return false, nil
		}
		c.relationRemove(v)
		if allowCascadeDelete && c.fd.DependentElement {
			c.cascadeDelete(ctx, v)
		}
		if err := c.makeDirty(ctx); err != nil {
			return true, err
		}
		c.observer.MutationSucceeded(c.fd, c.ownerID(), sco.OpRemove)
		return true, nil
	}

	if err := c.ensureLoaded(ctx); err != nil {
		return false, err
	}
	// The removal candidate must be truly present; a requested-but-absent
	// value must not reach the store nor cascade.
	if !c.delegate.removeValue(v) {
		return false, nil
	}
	c.relationRemove(v)
	store, owner := c.store, c.ownerID()
	storeFailed := false
	if err := c.storeApply(ctx, sco.OpRemove, -1, []any{v}, func(ctx context.Context) error {
		_, err := store.Remove(ctx, owner, v, allowCascadeDelete)
		return err
	}); err != nil {
		c.removalFailure(sco.OpRemove, err)
		storeFailed = true
	}
	if allowCascadeDelete && c.fd.DependentElement {
		c.cascadeDelete(ctx, v)
	}
	// Dirty tracks the delegate's true state even when the store half failed.
	if err := c.makeDirty(ctx); err != nil {
		return !storeFailed, err
	}
	if !storeFailed {
		c.observer.MutationSucceeded(c.fd, c.ownerID(), sco.OpRemove)
	}
	return !storeFailed, nil
}

// removeAll removes every given element that is present, as one logical
// mutation with one deferred record in queued mode.
func (c *collection[T]) removeAll(ctx context.Context, allowCascadeDelete bool, values ...T) (bool, error) {
	c.touched = true

	var captured []T
	if c.passthrough() {
		for _, v := range values {
			ok, err := c.store.Contains(ctx, c.ownerID(), v)
			if err != nil {
				c.removalFailure(sco.OpRemove, err)
				return false, nil
			}
			if ok {
				captured = append(captured, v)
			}
		}
	} else {
		if err := c.ensureLoaded(ctx); err != nil {
			return false, err
		}
		for _, v := range values {
			if c.delegate.removeValue(v) {
				captured = append(captured, v)
			}
		}
	}
	if len(captured) == 0 {
		return false, nil
	}
	for _, v := range captured {
		c.relationRemove(v)
	}
	store, owner := c.store, c.ownerID()
	caps := captured
	storeFailed := false
	if err := c.storeApply(ctx, sco.OpRemove, -1, anySlice(captured), func(ctx context.Context) error {
		return store.RemoveAll(ctx, owner, allowCascadeDelete, caps...)
	}); err != nil {
		c.removalFailure(sco.OpRemove, err)
		storeFailed = true
	}
	if allowCascadeDelete && c.fd.DependentElement {
		c.cascadeDelete(ctx, anySlice(captured)...)
	}
	if c.passthrough() && storeFailed {
		return false, nil
	}
	if err := c.makeDirty(ctx); err != nil {
		return !storeFailed, err
	}
	if !storeFailed {
		c.observer.MutationSucceeded(c.fd, c.ownerID(), sco.OpRemove)
	}
	return !storeFailed, nil
}

// removeAt removes the element at index and returns it.
func (c *collection[T]) removeAt(ctx context.Context, index int) (T, error) {
	var zero T
	c.touched = true

	if c.passthrough() {
		v, err := c.listStore.RemoveAt(ctx, c.ownerID(), index)
		if err != nil {
			return zero, err
		}
		c.relationRemove(v)
		if c.fd.DependentElement {
			c.cascadeDelete(ctx, v)
		}
		if err := c.makeDirty(ctx); err != nil {
			return v, err
		}
		c.observer.MutationSucceeded(c.fd, c.ownerID(), sco.OpRemoveAt)
		return v, nil
	}

	if err := c.ensureLoaded(ctx); err != nil {
		return zero, err
	}
	if index < 0 || index >= c.delegate.size() {
		return zero, c.indexError(index, c.delegate.size())
	}
	v := c.delegate.removeAt(index)
	c.relationRemove(v)
	store, owner := c.listStore, c.ownerID()
	storeFailed := false
	if err := c.storeApply(ctx, sco.OpRemoveAt, index, nil, func(ctx context.Context) error {
		_, err := store.RemoveAt(ctx, owner, index)
		return err
	}); err != nil {
		c.removalFailure(sco.OpRemoveAt, err)
		storeFailed = true
	}
	if c.fd.DependentElement {
		c.cascadeDelete(ctx, v)
	}
	if err := c.makeDirty(ctx); err != nil {
		return v, err
	}
	if !storeFailed {
		c.observer.MutationSucceeded(c.fd, c.ownerID(), sco.OpRemoveAt)
	}
	return v, nil
}

// clear empties the container. Removed values are captured from the delegate
// (or store, in pass-through) beforehand when cascade or relationship
// bookkeeping needs them.
func (c *collection[T]) clear(ctx context.Context) error {
	c.touched = true

	var captured []T
	needCaptured := c.fd.Dependent() || c.fd.Relation == sco.RelationBidirectional
	if needCaptured {
		var err error
		captured, err = c.detach(ctx)
		if err != nil {
			return err
		}
	}
	if !c.passthrough() {
		if err := c.ensureLoaded(ctx); err != nil {
			return err
		}
		c.delegate.clear()
	}
	for _, v := range captured {
		c.relationRemove(v)
	}
	store, owner := c.store, c.ownerID()
	if err := c.storeApply(ctx, sco.OpClear, -1, nil, func(ctx context.Context) error {
		return store.Clear(ctx, owner)
	}); err != nil {
		c.removalFailure(sco.OpClear, err)
	}
	if c.fd.Dependent() {
		c.cascadeDelete(ctx, anySlice(captured)...)
	}
	if err := c.makeDirty(ctx); err != nil {
		return err
	}
	c.observer.MutationSucceeded(c.fd, c.ownerID(), sco.OpClear)
	return nil
}

func (c *collection[T]) subList(ctx context.Context, from, to int) ([]T, error) {
	if c.passthrough() {
		return c.listStore.SubList(ctx, c.ownerID(), from, to)
	}
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if from < 0 || to > c.delegate.size() || from > to {
		return nil, c.indexError(from, c.delegate.size())
	}
	out := make([]T, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, c.delegate.get(i))
	}
	return out, nil
}

// iterator returns a stable snapshot iterator in cached/in-memory mode and a
// streaming store cursor in pass-through mode.
func (c *collection[T]) iterator(ctx context.Context) (*Iterator[T], error) {
	if c.passthrough() {
		cur, err := c.store.Iterator(ctx, c.ownerID())
		if err != nil {
			return nil, err
		}
		return &Iterator[T]{col: c, cur: cur}, nil
	}
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return &Iterator[T]{col: c, snap: c.delegate.snapshot()}, nil
}

// detach returns a plain snapshot of the current contents with no live
// connection back to the owner or store.
func (c *collection[T]) detach(ctx context.Context) ([]T, error) {
	if c.passthrough() {
		cur, err := c.store.Iterator(ctx, c.ownerID())
		if err != nil {
			return nil, c.loadError(err)
		}
		defer cur.Close()
		var out []T
		for {
			ok, err := cur.Next(ctx)
			if err != nil {
				return nil, c.loadError(err)
			}
			if !ok {
				return out, nil
			}
			out = append(out, cur.Value())
		}
	}
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return c.delegate.snapshot(), nil
}

// equalsOrdered compares size and element-wise order against a plain sequence.
func (c *collection[T]) equalsOrdered(ctx context.Context, other []T) (bool, error) {
	snap, err := c.detach(ctx)
	if err != nil {
		return false, err
	}
	if len(snap) != len(other) {
		return false, nil
	}
	for i := range snap {
		if snap[i] != other[i] {
			return false, nil
		}
	}
	return true, nil
}

// equalsUnordered compares size and set containment, order-insensitive.
func (c *collection[T]) equalsUnordered(ctx context.Context, other []T) (bool, error) {
	snap, err := c.detach(ctx)
	if err != nil {
		return false, err
	}
	if len(snap) != len(other) {
		return false, nil
	}
	held := make(map[T]struct{}, len(snap))
	for _, v := range snap {
		held[v] = struct{}{}
	}
	for _, v := range other {
		if _, ok := held[v]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// initValues is the bulk value-initialization pass: the delegate is populated
// from a supplied container with relationship bookkeeping suppressed. With
// forInsert, the store half runs too (queued or immediate), in value order.
// No dirty marking; the owner is still being established.
func (c *collection[T]) initValues(ctx context.Context, values []T, forInsert bool) error {
	for _, v := range values {
		if err := c.checkNil(v); err != nil {
			return err
		}
	}
	c.initialising = true
	defer func() { c.initialising = false }()

	var added []T
	if c.passthrough() {
		added = values
	} else {
		c.delegate.clear()
		for _, v := range values {
			if c.delegate.add(v) {
				added = append(added, v)
			}
		}
		c.loaded = true
	}
	c.touched = true
	if forInsert && c.store != nil && len(added) > 0 {
		if err := c.applyAdd(ctx, added); err != nil {
			return c.additiveError(sco.OpAdd, err)
		}
	}
	return nil
}

// unbindAll releases the owner reference and the backing store handle. The
// delegate stays as an ordinary disconnected container.
func (c *collection[T]) unbindAll() {
	c.unbind()
	c.store = nil
	c.listStore = nil
}

func anySlice[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i := range vs {
		out[i] = vs[i]
	}
	return out
}

package backed

import (
	"context"

	"github.com/sharedcode/sco"
)

// mapCore is the shared protocol core of the map shaped wrappers. Map and
// SortedMap embed it and export only what their shape supports.
type mapCore[TK comparable, TV comparable] struct {
	core
	delegate mapDelegate[TK, TV]
	store    sco.MapStore[TK, TV]
	// sortedStore is the typed view of store when it can serve key-range
	// queries store-side. Nil otherwise.
	sortedStore sco.SortedMapStore[TK, TV]
}

func newMapCore[TK comparable, TV comparable](opts Options, delegate mapDelegate[TK, TV], store sco.MapStore[TK, TV]) (mapCore[TK, TV], error) {
	co, err := newCore(opts, store != nil)
	if err != nil {
		return mapCore[TK, TV]{}, err
	}
	ss, _ := store.(sco.SortedMapStore[TK, TV])
	return mapCore[TK, TV]{
		core:        co,
		delegate:    delegate,
		store:       store,
		sortedStore: ss,
	}, nil
}

// ensureLoaded mirrors the collection core's load coordinator for entries.
func (m *mapCore[TK, TV]) ensureLoaded(ctx context.Context) error {
	if !m.useCache || m.loaded || m.store == nil {
		return nil
	}
	m.touched = true
	m.delegate.clear()
	cur, err := m.store.Iterator(ctx, m.ownerID())
	if err != nil {
		return m.loadError(err)
	}
	defer cur.Close()
	for {
		ok, err := cur.Next(ctx)
		if err != nil {
			return m.loadError(err)
		}
		if !ok {
			break
		}
		kv := cur.Value()
		m.delegate.put(kv.Key, kv.Value)
	}
	m.loaded = true
	m.observer.Loaded(m.fd, m.ownerID(), m.delegate.size())
	return nil
}

func (m *mapCore[TK, TV]) storeApply(ctx context.Context, kind sco.OperationKind, args []any, apply func(ctx context.Context) error) error {
	if m.store == nil {
		return nil
	}
	if m.queued {
		op := sco.NewOperation(kind, m.ownerID(), m.fd.FieldNo, apply)
		op.Index = -1
		op.Args = args
		m.queue.Enqueue(op)
		return nil
	}
	return apply(ctx)
}

func (m *mapCore[TK, TV]) size(ctx context.Context) (int, error) {
	if m.passthrough() {
		return m.store.Size(ctx, m.ownerID())
	}
	if err := m.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	return m.delegate.size(), nil
}

func (m *mapCore[TK, TV]) containsKey(ctx context.Context, k TK) (bool, error) {
	if m.passthrough() {
		return m.store.ContainsKey(ctx, m.ownerID(), k)
	}
	if err := m.ensureLoaded(ctx); err != nil {
		return false, err
	}
	return m.delegate.containsKey(k), nil
}

func (m *mapCore[TK, TV]) containsValue(ctx context.Context, v TV) (bool, error) {
	if m.passthrough() {
		return m.store.ContainsValue(ctx, m.ownerID(), v)
	}
	if err := m.ensureLoaded(ctx); err != nil {
		return false, err
	}
	return m.delegate.containsValue(v), nil
}

func (m *mapCore[TK, TV]) get(ctx context.Context, k TK) (TV, bool, error) {
	var zero TV
	if m.passthrough() {
		return m.store.Get(ctx, m.ownerID(), k)
	}
	if err := m.ensureLoaded(ctx); err != nil {
		return zero, false, err
	}
	v, ok := m.delegate.get(k)
	return v, ok, nil
}

// put upserts one entry: delegate first, relationship hooks, store half,
// then dirty. Returns the previous value, if any.
func (m *mapCore[TK, TV]) put(ctx context.Context, k TK, v TV) (TV, bool, error) {
	var zero TV
	if err := m.checkNilKey(k); err != nil {
		return zero, false, err
	}
	if err := m.checkNil(v); err != nil {
		return zero, false, err
	}
	m.touched = true

	var prev TV
	existed := false
	if m.passthrough() {
		store, owner := m.store, m.ownerID()
		if m.queued {
			if err := m.storeApply(ctx, sco.OpPut, []any{k, v}, func(ctx context.Context) error {
				_, _, err := store.Put(ctx, owner, k, v)
				return err
			}); err != nil {
				return zero, false, m.additiveError(sco.OpPut, err)
			}
			// The previous value is unknown until replay.
		} else {
			var err error
			prev, existed, err = store.Put(ctx, owner, k, v)
			if err != nil {
				return zero, false, m.additiveError(sco.OpPut, err)
			}
		}
	} else {
		if err := m.ensureLoaded(ctx); err != nil {
			return zero, false, err
		}
		prev, existed = m.delegate.put(k, v)
		store, owner := m.store, m.ownerID()
		if err := m.storeApply(ctx, sco.OpPut, []any{k, v}, func(ctx context.Context) error {
			_, _, err := store.Put(ctx, owner, k, v)
			return err
		}); err != nil {
			return zero, false, m.additiveError(sco.OpPut, err)
		}
	}
	if existed && prev != v {
		m.relationRemove(prev)
	}
	m.relationAdd(v)
	if err := m.makeDirty(ctx); err != nil {
		return prev, existed, err
	}
	m.observer.MutationSucceeded(m.fd, m.ownerID(), sco.OpPut)
	return prev, existed, nil
}

// putAll upserts the given entries as one logical mutation with one deferred
// record in queued mode.
func (m *mapCore[TK, TV]) putAll(ctx context.Context, entries ...sco.KeyValuePair[TK, TV]) error {
	for _, kv := range entries {
		if err := m.checkNilKey(kv.Key); err != nil {
			return err
		}
		if err := m.checkNil(kv.Value); err != nil {
			return err
		}
	}
	if len(entries) == 0 {
		return nil
	}
	m.touched = true

	if !m.passthrough() {
		if err := m.ensureLoaded(ctx); err != nil {
			return err
		}
		for _, kv := range entries {
			m.delegate.put(kv.Key, kv.Value)
		}
	}
	for _, kv := range entries {
		m.relationAdd(kv.Value)
	}
	store, owner := m.store, m.ownerID()
	ents := entries
	args := make([]any, 0, len(entries)*2)
	for _, kv := range entries {
		args = append(args, kv.Key, kv.Value)
	}
	if err := m.storeApply(ctx, sco.OpPutAll, args, func(ctx context.Context) error {
		return store.PutAll(ctx, owner, ents...)
	}); err != nil {
		return m.additiveError(sco.OpPutAll, err)
	}
	if err := m.makeDirty(ctx); err != nil {
		return err
	}
	m.observer.MutationSucceeded(m.fd, m.ownerID(), sco.OpPutAll)
	return nil
}

// removeKey removes one entry and returns its previous value. Store failures
// are downgraded to logged warnings (best-effort removal).
func (m *mapCore[TK, TV]) removeKey(ctx context.Context, k TK, allowCascadeDelete bool) (TV, bool, error) {
	var zero TV
	m.touched = true

	if m.passthrough() {
		prev, existed, err := m.store.Remove(ctx, m.ownerID(), k, allowCascadeDelete)
		if err != nil {
			m.removalFailure(sco.OpRemoveKey, err)
			return zero, false, nil
		}
		if !existed {
			return zero, false, nil
		}
		m.relationRemove(prev)
		m.cascadeRemoved(ctx, allowCascadeDelete, k, prev)
		if err := m.makeDirty(ctx); err != nil {
			return prev, true, err
		}
		m.observer.MutationSucceeded(m.fd, m.ownerID(), sco.OpRemoveKey)
		return prev, true, nil
	}

	if err := m.ensureLoaded(ctx); err != nil {
		return zero, false, err
	}
	// Only a truly present entry reaches the store or cascades.
	prev, existed := m.delegate.remove(k)
	if !existed {
		return zero, false, nil
	}
	m.relationRemove(prev)
	store, owner := m.store, m.ownerID()
	storeFailed := false
	if err := m.storeApply(ctx, sco.OpRemoveKey, []any{k}, func(ctx context.Context) error {
		_, _, err := store.Remove(ctx, owner, k, allowCascadeDelete)
		return err
	}); err != nil {
		m.removalFailure(sco.OpRemoveKey, err)
		storeFailed = true
	}
	m.cascadeRemoved(ctx, allowCascadeDelete, k, prev)
	if err := m.makeDirty(ctx); err != nil {
		return prev, !storeFailed, err
	}
	if !storeFailed {
		m.observer.MutationSucceeded(m.fd, m.ownerID(), sco.OpRemoveKey)
	}
	return prev, !storeFailed, nil
}

// cascadeRemoved forwards a removed entry's key and/or value for deletion per
// the descriptor's dependent flags.
func (m *mapCore[TK, TV]) cascadeRemoved(ctx context.Context, allowCascadeDelete bool, k TK, v TV) {
	if !allowCascadeDelete {
		return
	}
	if m.fd.DependentKey {
		m.cascadeDelete(ctx, k)
	}
	if m.fd.DependentValue {
		m.cascadeDelete(ctx, v)
	}
}

// clear empties the map, capturing removed entries beforehand when cascade or
// relationship bookkeeping needs them.
func (m *mapCore[TK, TV]) clear(ctx context.Context) error {
	m.touched = true

	var captured []sco.KeyValuePair[TK, TV]
	needCaptured := m.fd.Dependent() || m.fd.Relation == sco.RelationBidirectional
	if needCaptured {
		var err error
		captured, err = m.detachEntries(ctx)
		if err != nil {
			return err
		}
	}
	if !m.passthrough() {
		if err := m.ensureLoaded(ctx); err != nil {
			return err
		}
		m.delegate.clear()
	}
	for _, kv := range captured {
		m.relationRemove(kv.Value)
	}
	store, owner := m.store, m.ownerID()
	if err := m.storeApply(ctx, sco.OpClear, nil, func(ctx context.Context) error {
		return store.Clear(ctx, owner)
	}); err != nil {
		m.removalFailure(sco.OpClear, err)
	}
	for _, kv := range captured {
		m.cascadeRemoved(ctx, true, kv.Key, kv.Value)
	}
	if err := m.makeDirty(ctx); err != nil {
		return err
	}
	m.observer.MutationSucceeded(m.fd, m.ownerID(), sco.OpClear)
	return nil
}

func (m *mapCore[TK, TV]) iterator(ctx context.Context) (*EntryIterator[TK, TV], error) {
	if m.passthrough() {
		cur, err := m.store.Iterator(ctx, m.ownerID())
		if err != nil {
			return nil, err
		}
		return &EntryIterator[TK, TV]{m: m, cur: cur}, nil
	}
	if err := m.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return &EntryIterator[TK, TV]{m: m, snap: m.delegate.entries()}, nil
}

// detachEntries returns a plain snapshot of the current entries.
func (m *mapCore[TK, TV]) detachEntries(ctx context.Context) ([]sco.KeyValuePair[TK, TV], error) {
	if m.passthrough() {
		cur, err := m.store.Iterator(ctx, m.ownerID())
		if err != nil {
			return nil, m.loadError(err)
		}
		defer cur.Close()
		var out []sco.KeyValuePair[TK, TV]
		for {
			ok, err := cur.Next(ctx)
			if err != nil {
				return nil, m.loadError(err)
			}
			if !ok {
				return out, nil
			}
			out = append(out, cur.Value())
		}
	}
	if err := m.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return m.delegate.entries(), nil
}

// detach returns a plain map snapshot with no live owner or store connection.
func (m *mapCore[TK, TV]) detach(ctx context.Context) (map[TK]TV, error) {
	entries, err := m.detachEntries(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[TK]TV, len(entries))
	for _, kv := range entries {
		out[kv.Key] = kv.Value
	}
	return out, nil
}

// equals compares entry sets against a plain map.
func (m *mapCore[TK, TV]) equals(ctx context.Context, other map[TK]TV) (bool, error) {
	entries, err := m.detachEntries(ctx)
	if err != nil {
		return false, err
	}
	if len(entries) != len(other) {
		return false, nil
	}
	for _, kv := range entries {
		ov, ok := other[kv.Key]
		if !ok || ov != kv.Value {
			return false, nil
		}
	}
	return true, nil
}

func (m *mapCore[TK, TV]) keys(ctx context.Context) ([]TK, error) {
	if m.passthrough() {
		entries, err := m.detachEntries(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]TK, 0, len(entries))
		for _, kv := range entries {
			out = append(out, kv.Key)
		}
		return out, nil
	}
	if err := m.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return m.delegate.keys(), nil
}

func (m *mapCore[TK, TV]) values(ctx context.Context) ([]TV, error) {
	entries, err := m.detachEntries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TV, 0, len(entries))
	for _, kv := range entries {
		out = append(out, kv.Value)
	}
	return out, nil
}

// initValues is the map flavor of the bulk value-initialization pass.
func (m *mapCore[TK, TV]) initValues(ctx context.Context, values map[TK]TV, forInsert bool) error {
	entries := make([]sco.KeyValuePair[TK, TV], 0, len(values))
	for k, v := range values {
		if err := m.checkNilKey(k); err != nil {
			return err
		}
		if err := m.checkNil(v); err != nil {
			return err
		}
		entries = append(entries, sco.KeyValuePair[TK, TV]{Key: k, Value: v})
	}
	m.initialising = true
	defer func() { m.initialising = false }()

	if !m.passthrough() {
		m.delegate.clear()
		for _, kv := range entries {
			m.delegate.put(kv.Key, kv.Value)
		}
		m.loaded = true
	}
	m.touched = true
	if forInsert && m.store != nil && len(entries) > 0 {
		store, owner := m.store, m.ownerID()
		ents := entries
		args := make([]any, 0, len(entries)*2)
		for _, kv := range entries {
			args = append(args, kv.Key, kv.Value)
		}
		if err := m.storeApply(ctx, sco.OpPutAll, args, func(ctx context.Context) error {
			return store.PutAll(ctx, owner, ents...)
		}); err != nil {
			return m.additiveError(sco.OpPutAll, err)
		}
	}
	return nil
}

// checkNilKey applies the descriptor's nil policy to key operands.
func (m *mapCore[TK, TV]) checkNilKey(k TK) error {
	return m.checkNil(k)
}

func (m *mapCore[TK, TV]) unbindAll() {
	m.unbind()
	m.store = nil
	m.sortedStore = nil
}

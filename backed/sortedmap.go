package backed

import (
	"context"
	"fmt"

	"github.com/sharedcode/sco"
	"github.com/sharedcode/sco/encoding"
)

// SortedMap is the wrapper of a comparator-ordered key/value container field
// with key-range queries. Ordering comes from the field descriptor's comparer,
// falling back to sco.DefaultComparer.
type SortedMap[TK comparable, TV comparable] struct {
	mapCore[TK, TV]
	cmp sco.ComparerFunc
}

// NewSortedMap binds a sorted map wrapper to one field of one owner.
func NewSortedMap[TK comparable, TV comparable](opts Options, store sco.MapStore[TK, TV]) (*SortedMap[TK, TV], error) {
	if opts.Descriptor != nil && opts.Descriptor.Shape != sco.SortedMapShape {
		return nil, fmt.Errorf("field %s is not sorted-map shaped", opts.Descriptor.Name)
	}
	var cmp sco.ComparerFunc
	if opts.Descriptor != nil {
		cmp = opts.Descriptor.Comparer
	}
	if cmp == nil {
		cmp = sco.DefaultComparer
	}
	mc, err := newMapCore[TK, TV](opts, newSortedMapDelegate[TK, TV](cmp), store)
	if err != nil {
		return nil, err
	}
	return &SortedMap[TK, TV]{mapCore: mc, cmp: cmp}, nil
}

// Put upserts one entry at its comparer key position.
func (m *SortedMap[TK, TV]) Put(ctx context.Context, k TK, v TV) (TV, bool, error) {
	return m.put(ctx, k, v)
}

// PutAll upserts entries as one logical mutation.
func (m *SortedMap[TK, TV]) PutAll(ctx context.Context, entries ...sco.KeyValuePair[TK, TV]) error {
	return m.putAll(ctx, entries...)
}

// Get returns the value for k and whether the key was present.
func (m *SortedMap[TK, TV]) Get(ctx context.Context, k TK) (TV, bool, error) {
	return m.get(ctx, k)
}

// Remove deletes the entry for k and returns its previous value.
func (m *SortedMap[TK, TV]) Remove(ctx context.Context, k TK) (TV, bool, error) {
	return m.removeKey(ctx, k, true)
}

// RemoveEx is Remove with cascade delete explicitly controlled.
func (m *SortedMap[TK, TV]) RemoveEx(ctx context.Context, k TK, allowCascadeDelete bool) (TV, bool, error) {
	return m.removeKey(ctx, k, allowCascadeDelete)
}

// Clear empties the map.
func (m *SortedMap[TK, TV]) Clear(ctx context.Context) error {
	return m.clear(ctx)
}

// Size returns the entry count of the complete view.
func (m *SortedMap[TK, TV]) Size(ctx context.Context) (int, error) {
	return m.size(ctx)
}

// ContainsKey reports whether k is present.
func (m *SortedMap[TK, TV]) ContainsKey(ctx context.Context, k TK) (bool, error) {
	return m.containsKey(ctx, k)
}

// ContainsValue reports whether some entry holds v.
func (m *SortedMap[TK, TV]) ContainsValue(ctx context.Context, v TV) (bool, error) {
	return m.containsValue(ctx, v)
}

// FirstKey returns the smallest key. The second result is false when empty.
func (m *SortedMap[TK, TV]) FirstKey(ctx context.Context) (TK, bool, error) {
	var zero TK
	ks, err := m.orderedKeys(ctx, "FirstKey")
	if err != nil || len(ks) == 0 {
		return zero, false, err
	}
	return ks[0], true, nil
}

// LastKey returns the largest key. The second result is false when empty.
func (m *SortedMap[TK, TV]) LastKey(ctx context.Context) (TK, bool, error) {
	var zero TK
	ks, err := m.orderedKeys(ctx, "LastKey")
	if err != nil || len(ks) == 0 {
		return zero, false, err
	}
	return ks[len(ks)-1], true, nil
}

// HeadMap returns entries with key < to, in key order.
func (m *SortedMap[TK, TV]) HeadMap(ctx context.Context, to TK) ([]sco.KeyValuePair[TK, TV], error) {
	if m.passthrough() {
		if m.sortedStore == nil {
			return nil, m.rangeError("HeadMap")
		}
		return m.sortedStore.HeadEntries(ctx, m.ownerID(), to)
	}
	if err := m.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	var out []sco.KeyValuePair[TK, TV]
	for _, kv := range m.delegate.entries() {
		if m.cmp(kv.Key, to) >= 0 {
			break
		}
		out = append(out, kv)
	}
	return out, nil
}

// TailMap returns entries with key >= from, in key order.
func (m *SortedMap[TK, TV]) TailMap(ctx context.Context, from TK) ([]sco.KeyValuePair[TK, TV], error) {
	if m.passthrough() {
		if m.sortedStore == nil {
			return nil, m.rangeError("TailMap")
		}
		return m.sortedStore.TailEntries(ctx, m.ownerID(), from)
	}
	if err := m.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	var out []sco.KeyValuePair[TK, TV]
	for _, kv := range m.delegate.entries() {
		if m.cmp(kv.Key, from) >= 0 {
			out = append(out, kv)
		}
	}
	return out, nil
}

// SubMap returns entries with from <= key < to, in key order.
func (m *SortedMap[TK, TV]) SubMap(ctx context.Context, from, to TK) ([]sco.KeyValuePair[TK, TV], error) {
	if m.passthrough() {
		if m.sortedStore == nil {
			return nil, m.rangeError("SubMap")
		}
		return m.sortedStore.SubEntries(ctx, m.ownerID(), from, to)
	}
	if err := m.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	var out []sco.KeyValuePair[TK, TV]
	for _, kv := range m.delegate.entries() {
		if m.cmp(kv.Key, to) >= 0 {
			break
		}
		if m.cmp(kv.Key, from) >= 0 {
			out = append(out, kv)
		}
	}
	return out, nil
}

func (m *SortedMap[TK, TV]) orderedKeys(ctx context.Context, op string) ([]TK, error) {
	if m.passthrough() {
		if m.sortedStore == nil {
			return nil, m.rangeError(op)
		}
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

// Keys returns the keys of the complete view, in key order where available.
func (m *SortedMap[TK, TV]) Keys(ctx context.Context) ([]TK, error) {
	return m.keys(ctx)
}

// Values returns the values of the complete view.
func (m *SortedMap[TK, TV]) Values(ctx context.Context) ([]TV, error) {
	return m.values(ctx)
}

// Iterator returns an entry iterator, in key order for cached and in-memory modes.
func (m *SortedMap[TK, TV]) Iterator(ctx context.Context) (*EntryIterator[TK, TV], error) {
	return m.iterator(ctx)
}

// Equals compares entry sets against a plain map.
func (m *SortedMap[TK, TV]) Equals(ctx context.Context, other map[TK]TV) (bool, error) {
	return m.equals(ctx, other)
}

// Detach returns a plain map snapshot with no owner or store connection.
func (m *SortedMap[TK, TV]) Detach(ctx context.Context) (map[TK]TV, error) {
	return m.detach(ctx)
}

// Init performs the bulk value-initialization pass from a supplied map.
func (m *SortedMap[TK, TV]) Init(ctx context.Context, values map[TK]TV, forInsert bool) error {
	return m.initValues(ctx, values, forInsert)
}

// Unbind releases the owner reference and store handle.
func (m *SortedMap[TK, TV]) Unbind() {
	m.unbindAll()
}

// MarshalJSON marshals a detach snapshot of the contents.
func (m *SortedMap[TK, TV]) MarshalJSON() ([]byte, error) {
	snap, err := m.detach(context.Background())
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap = map[TK]TV{}
	}
	return encoding.Marshal(snap)
}

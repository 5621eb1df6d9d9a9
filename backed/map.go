package backed

import (
	"context"
	"fmt"

	"github.com/sharedcode/sco"
	"github.com/sharedcode/sco/encoding"
)

// Map is the wrapper of an unordered key/value container field.
type Map[TK comparable, TV comparable] struct {
	mapCore[TK, TV]
}

// NewMap binds a map wrapper to one field of one owner. A nil store builds a
// pure in-memory wrapper.
func NewMap[TK comparable, TV comparable](opts Options, store sco.MapStore[TK, TV]) (*Map[TK, TV], error) {
	if opts.Descriptor != nil && opts.Descriptor.Shape != sco.MapShape {
		return nil, fmt.Errorf("field %s is not map shaped", opts.Descriptor.Name)
	}
	mc, err := newMapCore[TK, TV](opts, newHashMapDelegate[TK, TV](), store)
	if err != nil {
		return nil, err
	}
	return &Map[TK, TV]{mapCore: mc}, nil
}

// Put upserts one entry and returns the previous value, if any.
func (m *Map[TK, TV]) Put(ctx context.Context, k TK, v TV) (TV, bool, error) {
	return m.put(ctx, k, v)
}

// PutAll upserts entries as one logical mutation.
func (m *Map[TK, TV]) PutAll(ctx context.Context, entries ...sco.KeyValuePair[TK, TV]) error {
	return m.putAll(ctx, entries...)
}

// Get returns the value for k and whether the key was present.
func (m *Map[TK, TV]) Get(ctx context.Context, k TK) (TV, bool, error) {
	return m.get(ctx, k)
}

// Remove deletes the entry for k and returns its previous value. The second
// result is false for an absent key or a failed store-side removal.
func (m *Map[TK, TV]) Remove(ctx context.Context, k TK) (TV, bool, error) {
	return m.removeKey(ctx, k, true)
}

// RemoveEx is Remove with cascade delete explicitly controlled.
func (m *Map[TK, TV]) RemoveEx(ctx context.Context, k TK, allowCascadeDelete bool) (TV, bool, error) {
	return m.removeKey(ctx, k, allowCascadeDelete)
}

// Clear empties the map.
func (m *Map[TK, TV]) Clear(ctx context.Context) error {
	return m.clear(ctx)
}

// Size returns the entry count of the complete view.
func (m *Map[TK, TV]) Size(ctx context.Context) (int, error) {
	return m.size(ctx)
}

// ContainsKey reports whether k is present.
func (m *Map[TK, TV]) ContainsKey(ctx context.Context, k TK) (bool, error) {
	return m.containsKey(ctx, k)
}

// ContainsValue reports whether some entry holds v.
func (m *Map[TK, TV]) ContainsValue(ctx context.Context, v TV) (bool, error) {
	return m.containsValue(ctx, v)
}

// Keys returns the keys of the complete view.
func (m *Map[TK, TV]) Keys(ctx context.Context) ([]TK, error) {
	return m.keys(ctx)
}

// Values returns the values of the complete view.
func (m *Map[TK, TV]) Values(ctx context.Context) ([]TV, error) {
	return m.values(ctx)
}

// Iterator returns an entry iterator over the complete view.
func (m *Map[TK, TV]) Iterator(ctx context.Context) (*EntryIterator[TK, TV], error) {
	return m.iterator(ctx)
}

// Equals compares entry sets against a plain map.
func (m *Map[TK, TV]) Equals(ctx context.Context, other map[TK]TV) (bool, error) {
	return m.equals(ctx, other)
}

// Detach returns a plain map snapshot with no owner or store connection.
func (m *Map[TK, TV]) Detach(ctx context.Context) (map[TK]TV, error) {
	return m.detach(ctx)
}

// Init performs the bulk value-initialization pass from a supplied map.
func (m *Map[TK, TV]) Init(ctx context.Context, values map[TK]TV, forInsert bool) error {
	return m.initValues(ctx, values, forInsert)
}

// Unbind releases the owner reference and store handle.
func (m *Map[TK, TV]) Unbind() {
	m.unbindAll()
}

// MarshalJSON marshals a detach snapshot of the contents.
func (m *Map[TK, TV]) MarshalJSON() ([]byte, error) {
	snap, err := m.detach(context.Background())
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap = map[TK]TV{}
	}
	return encoding.Marshal(snap)
}

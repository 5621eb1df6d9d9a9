package backed

import (
	"slices"

	"github.com/sharedcode/sco"
)

// mapDelegate is the shape policy of the map core.
type mapDelegate[TK comparable, TV comparable] interface {
	ordered() bool
	size() int
	containsKey(k TK) bool
	containsValue(v TV) bool
	get(k TK) (TV, bool)
	// put upserts and returns the previous value, if any.
	put(k TK, v TV) (TV, bool)
	// remove deletes and returns the previous value, if any.
	remove(k TK) (TV, bool)
	clear()
	// entries returns a copy of the contents in iteration order (key order
	// for the sorted delegate, insertion order otherwise).
	entries() []sco.KeyValuePair[TK, TV]
	keys() []TK
}

// hashMapDelegate is the unordered map delegate. Like the set delegate it
// keeps insertion order so snapshots and store replays stay deterministic.
type hashMapDelegate[TK comparable, TV comparable] struct {
	order  []TK
	lookup map[TK]TV
}

func newHashMapDelegate[TK comparable, TV comparable]() *hashMapDelegate[TK, TV] {
	return &hashMapDelegate[TK, TV]{lookup: map[TK]TV{}}
}

func (d *hashMapDelegate[TK, TV]) ordered() bool { return false }
func (d *hashMapDelegate[TK, TV]) size() int     { return len(d.order) }

func (d *hashMapDelegate[TK, TV]) containsKey(k TK) bool {
	_, ok := d.lookup[k]
	return ok
}

func (d *hashMapDelegate[TK, TV]) containsValue(v TV) bool {
	for _, held := range d.lookup {
		if held == v {
			return true
		}
	}
	return false
}

func (d *hashMapDelegate[TK, TV]) get(k TK) (TV, bool) {
	v, ok := d.lookup[k]
	return v, ok
}

func (d *hashMapDelegate[TK, TV]) put(k TK, v TV) (TV, bool) {
	prev, existed := d.lookup[k]
	if !existed {
		d.order = append(d.order, k)
	}
	d.lookup[k] = v
	return prev, existed
}

func (d *hashMapDelegate[TK, TV]) remove(k TK) (TV, bool) {
	prev, existed := d.lookup[k]
	if !existed {
		return prev, false
	}
	delete(d.lookup, k)
	i := slices.Index(d.order, k)
	d.order = slices.Delete(d.order, i, i+1)
	return prev, true
}

func (d *hashMapDelegate[TK, TV]) clear() {
	d.order = nil
	d.lookup = map[TK]TV{}
}

func (d *hashMapDelegate[TK, TV]) entries() []sco.KeyValuePair[TK, TV] {
	out := make([]sco.KeyValuePair[TK, TV], 0, len(d.order))
	for _, k := range d.order {
		out = append(out, sco.KeyValuePair[TK, TV]{Key: k, Value: d.lookup[k]})
	}
	return out
}

func (d *hashMapDelegate[TK, TV]) keys() []TK {
	return slices.Clone(d.order)
}

// sortedMapDelegate keeps keys in comparer order.
type sortedMapDelegate[TK comparable, TV comparable] struct {
	sorted []TK
	lookup map[TK]TV
	cmp    sco.ComparerFunc
}

func newSortedMapDelegate[TK comparable, TV comparable](cmp sco.ComparerFunc) *sortedMapDelegate[TK, TV] {
	if cmp == nil {
		cmp = sco.DefaultComparer
	}
	return &sortedMapDelegate[TK, TV]{lookup: map[TK]TV{}, cmp: cmp}
}

func (d *sortedMapDelegate[TK, TV]) ordered() bool { return true }
func (d *sortedMapDelegate[TK, TV]) size() int     { return len(d.sorted) }

func (d *sortedMapDelegate[TK, TV]) search(k TK) (int, bool) {
	return slices.BinarySearchFunc(d.sorted, k, func(a, b TK) int {
		return d.cmp(a, b)
	})
}

func (d *sortedMapDelegate[TK, TV]) containsKey(k TK) bool {
	_, ok := d.lookup[k]
	return ok
}

func (d *sortedMapDelegate[TK, TV]) containsValue(v TV) bool {
	for _, held := range d.lookup {
		if held == v {
			return true
		}
	}
	return false
}

func (d *sortedMapDelegate[TK, TV]) get(k TK) (TV, bool) {
	v, ok := d.lookup[k]
	return v, ok
}

func (d *sortedMapDelegate[TK, TV]) put(k TK, v TV) (TV, bool) {
	prev, existed := d.lookup[k]
	if !existed {
		i, _ := d.search(k)
		d.sorted = slices.Insert(d.sorted, i, k)
	}
	d.lookup[k] = v
	return prev, existed
}

func (d *sortedMapDelegate[TK, TV]) remove(k TK) (TV, bool) {
	prev, existed := d.lookup[k]
	if !existed {
		return prev, false
	}
	delete(d.lookup, k)
	i, _ := d.search(k)
	d.sorted = slices.Delete(d.sorted, i, i+1)
	return prev, true
}

func (d *sortedMapDelegate[TK, TV]) clear() {
	d.sorted = nil
	d.lookup = map[TK]TV{}
}

func (d *sortedMapDelegate[TK, TV]) entries() []sco.KeyValuePair[TK, TV] {
	out := make([]sco.KeyValuePair[TK, TV], 0, len(d.sorted))
	for _, k := range d.sorted {
		out = append(out, sco.KeyValuePair[TK, TV]{Key: k, Value: d.lookup[k]})
	}
	return out
}

func (d *sortedMapDelegate[TK, TV]) keys() []TK {
	return slices.Clone(d.sorted)
}

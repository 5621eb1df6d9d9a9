package backed

import (
	"slices"

	"github.com/sharedcode/sco"
)

// colDelegate is the shape policy of the collection core: the in-memory
// container mirroring backing store contents. Index-addressed methods are
// only reachable through ordered shapes.
type colDelegate[T comparable] interface {
	ordered() bool
	// unique reports whether the shape rejects duplicate elements. Sorted
	// shapes are ordered and unique at the same time.
	unique() bool
	size() int
	contains(v T) bool
	indexOf(v T) int
	lastIndexOf(v T) int
	get(i int) T
	// add appends (ordered) or inserts (unordered/sorted). It reports false
	// when a uniqueness-enforcing shape already held the value.
	add(v T) bool
	insertAt(i int, v T)
	// setAt replaces the element at i and returns the previous element.
	setAt(i int, v T) T
	removeValue(v T) bool
	removeAt(i int) T
	clear()
	// snapshot returns a copy of the contents in iteration order.
	snapshot() []T
}

// listDelegate is the ordered sequence delegate (lists and queues).
type listDelegate[T comparable] struct {
	items []T
}

func (d *listDelegate[T]) ordered() bool { return true }
func (d *listDelegate[T]) unique() bool  { return false }
func (d *listDelegate[T]) size() int     { return len(d.items) }

func (d *listDelegate[T]) contains(v T) bool {
	return slices.Contains(d.items, v)
}

func (d *listDelegate[T]) indexOf(v T) int {
	return slices.Index(d.items, v)
}

func (d *listDelegate[T]) lastIndexOf(v T) int {
	for i := len(d.items) - 1; i >= 0; i-- {
		if d.items[i] == v {
			return i
		}
	}
	return -1
}

func (d *listDelegate[T]) get(i int) T { return d.items[i] }

func (d *listDelegate[T]) add(v T) bool {
	d.items = append(d.items, v)
	return true
}

func (d *listDelegate[T]) insertAt(i int, v T) {
	d.items = slices.Insert(d.items, i, v)
}

func (d *listDelegate[T]) setAt(i int, v T) T {
	prev := d.items[i]
	d.items[i] = v
	return prev
}

func (d *listDelegate[T]) removeValue(v T) bool {
	i := slices.Index(d.items, v)
	if i < 0 {
		return false
	}
	d.items = slices.Delete(d.items, i, i+1)
	return true
}

func (d *listDelegate[T]) removeAt(i int) T {
	v := d.items[i]
	d.items = slices.Delete(d.items, i, i+1)
	return v
}

func (d *listDelegate[T]) clear() { d.items = nil }

func (d *listDelegate[T]) snapshot() []T {
	return slices.Clone(d.items)
}

// setDelegate is the unordered unique-elements delegate. Iteration order is
// insertion order so that snapshots and store replays stay deterministic.
type setDelegate[T comparable] struct {
	order  []T
	lookup map[T]struct{}
}

func newSetDelegate[T comparable]() *setDelegate[T] {
	return &setDelegate[T]{lookup: map[T]struct{}{}}
}

func (d *setDelegate[T]) ordered() bool { return false }
func (d *setDelegate[T]) unique() bool  { return true }
func (d *setDelegate[T]) size() int     { return len(d.order) }

func (d *setDelegate[T]) contains(v T) bool {
	_, ok := d.lookup[v]
	return ok
}

func (d *setDelegate[T]) indexOf(v T) int       { return -1 }
func (d *setDelegate[T]) lastIndexOf(v T) int   { return -1 }
func (d *setDelegate[T]) get(i int) T           { panic("index access on unordered shape") }
func (d *setDelegate[T]) insertAt(i int, v T)   { panic("index access on unordered shape") }
func (d *setDelegate[T]) setAt(i int, v T) T    { panic("index access on unordered shape") }
func (d *setDelegate[T]) removeAt(i int) T      { panic("index access on unordered shape") }

func (d *setDelegate[T]) add(v T) bool {
	if _, ok := d.lookup[v]; ok {
		return false
	}
	d.lookup[v] = struct{}{}
	d.order = append(d.order, v)
	return true
}

func (d *setDelegate[T]) removeValue(v T) bool {
	if _, ok := d.lookup[v]; !ok {
		return false
	}
	delete(d.lookup, v)
	i := slices.Index(d.order, v)
	d.order = slices.Delete(d.order, i, i+1)
	return true
}

func (d *setDelegate[T]) clear() {
	d.order = nil
	d.lookup = map[T]struct{}{}
}

func (d *setDelegate[T]) snapshot() []T {
	return slices.Clone(d.order)
}

// sortedDelegate keeps unique elements in comparer order.
type sortedDelegate[T comparable] struct {
	items []T
	cmp   sco.ComparerFunc
}

func newSortedDelegate[T comparable](cmp sco.ComparerFunc) *sortedDelegate[T] {
	if cmp == nil {
		cmp = sco.DefaultComparer
	}
	return &sortedDelegate[T]{cmp: cmp}
}

func (d *sortedDelegate[T]) ordered() bool { return true }
func (d *sortedDelegate[T]) unique() bool  { return true }
func (d *sortedDelegate[T]) size() int     { return len(d.items) }

// search returns the insertion point for v and whether v is present.
func (d *sortedDelegate[T]) search(v T) (int, bool) {
	return slices.BinarySearchFunc(d.items, v, func(a, b T) int {
		return d.cmp(a, b)
	})
}

func (d *sortedDelegate[T]) contains(v T) bool {
	_, ok := d.search(v)
	return ok
}

func (d *sortedDelegate[T]) indexOf(v T) int {
	if i, ok := d.search(v); ok {
		return i
	}
	return -1
}

func (d *sortedDelegate[T]) lastIndexOf(v T) int { return d.indexOf(v) }
func (d *sortedDelegate[T]) get(i int) T         { return d.items[i] }

func (d *sortedDelegate[T]) add(v T) bool {
	i, ok := d.search(v)
	if ok {
		return false
	}
	d.items = slices.Insert(d.items, i, v)
	return true
}

// insertAt and setAt would break the sort invariant; the sorted shapes never expose them.
func (d *sortedDelegate[T]) insertAt(i int, v T) { panic("positional insert on sorted shape") }
func (d *sortedDelegate[T]) setAt(i int, v T) T  { panic("positional set on sorted shape") }

func (d *sortedDelegate[T]) removeValue(v T) bool {
	i, ok := d.search(v)
	if !ok {
		return false
	}
	d.items = slices.Delete(d.items, i, i+1)
	return true
}

func (d *sortedDelegate[T]) removeAt(i int) T {
	v := d.items[i]
	d.items = slices.Delete(d.items, i, i+1)
	return v
}

func (d *sortedDelegate[T]) clear() { d.items = nil }

func (d *sortedDelegate[T]) snapshot() []T {
	return slices.Clone(d.items)
}

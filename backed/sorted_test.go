package backed

import (
	"context"
	"errors"
	"testing"

	"github.com/sharedcode/sco"
	"github.com/sharedcode/sco/inmemory"
)

func TestSortedSetKeepsComparerOrder(t *testing.T) {
	ctx := context.Background()
	fd := &sco.FieldDescriptor{Name: "scores", FieldNo: 1, Shape: sco.SortedSetShape}
	s, err := NewSortedSet[int](Options{Owner: newFakeOwner(), Descriptor: fd}, inmemory.NewCollectionStore[int]())
	if err != nil {
		t.Fatalf("NewSortedSet: %v", err)
	}
	for _, v := range []int{30, 10, 40, 20} {
		if ok, err := s.Add(ctx, v); err != nil || !ok {
			t.Fatalf("Add(%d) = %v, %v", v, ok, err)
		}
	}
	if ok, _ := s.Add(ctx, 20); ok {
		t.Fatal("duplicate Add should report false")
	}
	snap, _ := s.Detach(ctx)
	want := []int{10, 20, 30, 40}
	for i := range want {
		if snap[i] != want[i] {
			t.Fatalf("order %v, want %v", snap, want)
		}
	}
	if v, ok, _ := s.First(ctx); !ok || v != 10 {
		t.Fatalf("First = (%d, %v), want (10, true)", v, ok)
	}
	if v, ok, _ := s.Last(ctx); !ok || v != 40 {
		t.Fatalf("Last = (%d, %v), want (40, true)", v, ok)
	}
}

func TestSortedSetCustomComparer(t *testing.T) {
	ctx := context.Background()
	desc := func(x, y any) int {
		return -sco.DefaultComparer(x, y)
	}
	fd := &sco.FieldDescriptor{Name: "scores", FieldNo: 1, Shape: sco.SortedSetShape, Comparer: desc}
	s, err := NewSortedSet[int](Options{Owner: newFakeOwner(), Descriptor: fd}, nil)
	if err != nil {
		t.Fatalf("NewSortedSet: %v", err)
	}
	if _, err := s.AddAll(ctx, 1, 3, 2); err != nil {
		t.Fatalf("AddAll: %v", err)
	}
	snap, _ := s.Detach(ctx)
	want := []int{3, 2, 1}
	for i := range want {
		if snap[i] != want[i] {
			t.Fatalf("order %v, want %v", snap, want)
		}
	}
}

func TestSortedSetRejectsDuplicateAlreadyInStore(t *testing.T) {
	ctx := context.Background()
	owner := newFakeOwner()
	fd := &sco.FieldDescriptor{Name: "tags", FieldNo: 1, Shape: sco.SortedSetShape}
	store := inmemory.NewCollectionStore[string]()
	if err := store.Add(ctx, owner.ID(), "A"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, err := NewSortedSet[string](Options{Owner: owner, Descriptor: fd}, store)
	if err != nil {
		t.Fatalf("NewSortedSet: %v", err)
	}
	// Uniqueness must be checked against the full view, not the unloaded delegate.
	if ok, err := s.Add(ctx, "A"); err != nil || ok {
		t.Fatalf("Add(A) = %v, %v, want false for an element already held", ok, err)
	}
	if n, _ := store.Size(ctx, owner.ID()); n != 1 {
		t.Fatalf("store size after duplicate Add = %d, want 1", n)
	}
	if ok, err := s.Add(ctx, "B"); err != nil || !ok {
		t.Fatalf("Add(B) = %v, %v", ok, err)
	}
	if n, _ := store.Size(ctx, owner.ID()); n != 2 {
		t.Fatalf("store size = %d, want 2", n)
	}
}

func TestSortedSetRangeViews(t *testing.T) {
	ctx := context.Background()
	fd := &sco.FieldDescriptor{Name: "scores", FieldNo: 1, Shape: sco.SortedSetShape}
	s, err := NewSortedSet[int](Options{Owner: newFakeOwner(), Descriptor: fd}, inmemory.NewCollectionStore[int]())
	if err != nil {
		t.Fatalf("NewSortedSet: %v", err)
	}
	if _, err := s.AddAll(ctx, 10, 20, 30, 40); err != nil {
		t.Fatalf("AddAll: %v", err)
	}
	head, err := s.HeadSet(ctx, 30)
	if err != nil || len(head) != 2 || head[0] != 10 || head[1] != 20 {
		t.Fatalf("HeadSet(30) = %v, %v", head, err)
	}
	tail, err := s.TailSet(ctx, 30)
	if err != nil || len(tail) != 2 || tail[0] != 30 {
		t.Fatalf("TailSet(30) = %v, %v", tail, err)
	}
}

func TestSortedSetRangeUnsupportedInPassthrough(t *testing.T) {
	ctx := context.Background()
	fd := &sco.FieldDescriptor{Name: "scores", FieldNo: 1, Shape: sco.SortedSetShape}
	// A plain collection store cannot serve key ranges store-side.
	s, err := NewSortedSet[int](Options{Owner: newFakeOwner(), Descriptor: fd, NoCache: true}, inmemory.NewCollectionStore[int]())
	if err != nil {
		t.Fatalf("NewSortedSet: %v", err)
	}
	_, err = s.HeadSet(ctx, 30)
	if err == nil {
		t.Fatal("HeadSet should fail in pass-through without a range-capable store")
	}
	var e sco.Error
	if !errors.As(err, &e) || e.Code != sco.UnsupportedRangeQuery {
		t.Fatalf("HeadSet error = %v, want UnsupportedRangeQuery", err)
	}
}

func TestSortedMapOrderAndRanges(t *testing.T) {
	ctx := context.Background()
	fd := &sco.FieldDescriptor{Name: "ranked", FieldNo: 1, Shape: sco.SortedMapShape}
	m, err := NewSortedMap[int, string](Options{Owner: newFakeOwner(), Descriptor: fd}, inmemory.NewSortedMapStore[int, string](nil))
	if err != nil {
		t.Fatalf("NewSortedMap: %v", err)
	}
	for _, k := range []int{30, 10, 20} {
		if _, _, err := m.Put(ctx, k, "v"); err != nil {
			t.Fatalf("Put(%d): %v", k, err)
		}
	}
	keys, err := m.Keys(ctx)
	if err != nil || len(keys) != 3 || keys[0] != 10 || keys[2] != 30 {
		t.Fatalf("Keys = %v, %v", keys, err)
	}
	if k, ok, _ := m.FirstKey(ctx); !ok || k != 10 {
		t.Fatalf("FirstKey = (%d, %v), want (10, true)", k, ok)
	}
	if k, ok, _ := m.LastKey(ctx); !ok || k != 30 {
		t.Fatalf("LastKey = (%d, %v), want (30, true)", k, ok)
	}
	head, err := m.HeadMap(ctx, 30)
	if err != nil || len(head) != 2 {
		t.Fatalf("HeadMap(30) = %v, %v", head, err)
	}
	sub, err := m.SubMap(ctx, 10, 30)
	if err != nil || len(sub) != 2 || sub[0].Key != 10 || sub[1].Key != 20 {
		t.Fatalf("SubMap(10,30) = %v, %v", sub, err)
	}
}

func TestSortedMapPassthroughRangesUseSortedStore(t *testing.T) {
	ctx := context.Background()
	owner := newFakeOwner()
	fd := &sco.FieldDescriptor{Name: "ranked", FieldNo: 1, Shape: sco.SortedMapShape}
	store := inmemory.NewSortedMapStore[int, string](nil)
	for _, k := range []int{30, 10, 20} {
		if _, _, err := store.Put(ctx, owner.ID(), k, "v"); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	m, err := NewSortedMap[int, string](Options{Owner: owner, Descriptor: fd, NoCache: true}, store)
	if err != nil {
		t.Fatalf("NewSortedMap: %v", err)
	}
	tail, err := m.TailMap(ctx, 20)
	if err != nil || len(tail) != 2 || tail[0].Key != 20 {
		t.Fatalf("TailMap(20) = %v, %v", tail, err)
	}
	if m.IsLoaded() {
		t.Fatal("pass-through range queries must not load the delegate")
	}
}

func TestSortedMapPassthroughRangeUnsupportedOnPlainStore(t *testing.T) {
	ctx := context.Background()
	fd := &sco.FieldDescriptor{Name: "ranked", FieldNo: 1, Shape: sco.SortedMapShape}
	m, err := NewSortedMap[int, string](Options{Owner: newFakeOwner(), Descriptor: fd, NoCache: true}, inmemory.NewMapStore[int, string]())
	if err != nil {
		t.Fatalf("NewSortedMap: %v", err)
	}
	_, err = m.HeadMap(ctx, 30)
	var e sco.Error
	if err == nil || !errors.As(err, &e) || e.Code != sco.UnsupportedRangeQuery {
		t.Fatalf("HeadMap error = %v, want UnsupportedRangeQuery", err)
	}
}

package backed

import (
	"context"
	"errors"
	"testing"

	"github.com/sharedcode/sco"
	"github.com/sharedcode/sco/inmemory"
)

func listField(no int) *sco.FieldDescriptor {
	return &sco.FieldDescriptor{Name: "items", FieldNo: no, Shape: sco.ListShape}
}

func TestListMutationsKeepDelegateAndStoreEqual(t *testing.T) {
	ctx := context.Background()
	owner := newFakeOwner()
	store := inmemory.NewListStore[string]()
	l, err := NewList(Options{Owner: owner, Descriptor: listField(1)}, store)
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}

	if _, err := l.AddAll(ctx, "a", "b", "c"); err != nil {
		t.Fatalf("AddAll: %v", err)
	}
	if err := l.AddAt(ctx, 1, "x"); err != nil {
		t.Fatalf("AddAt: %v", err)
	}
	if _, err := l.Set(ctx, 0, "z"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, err := l.RemoveAt(ctx, 2); err != nil || v != "b" {
		t.Fatalf("RemoveAt(2) = %q, %v", v, err)
	}
	if ok, err := l.Remove(ctx, "c"); err != nil || !ok {
		t.Fatalf("Remove(c) = %v, %v", ok, err)
	}

	want := []string{"z", "x"}
	if ok, err := l.Equals(ctx, want); err != nil || !ok {
		snap, _ := l.Detach(ctx)
		t.Fatalf("wrapper view %v, want %v (err %v)", snap, want, err)
	}
	// The store must mirror the delegate element for element.
	it, err := store.Iterator(ctx, owner.ID())
	if err != nil {
		t.Fatalf("store Iterator: %v", err)
	}
	defer it.Close()
	var got []string
	for {
		ok, err := it.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, it.Value())
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("store view %v, want %v", got, want)
	}
}

func TestListLazyLoadHappensOnce(t *testing.T) {
	ctx := context.Background()
	owner := newFakeOwner()
	store := inmemory.NewListStore[string]()
	if err := store.Add(ctx, owner.ID(), "a", "b"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	l, err := NewList(Options{Owner: owner, Descriptor: listField(1)}, store)
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	if l.IsLoaded() {
		t.Fatal("delegate should not be loaded before first access")
	}
	if n, err := l.Size(ctx); err != nil || n != 2 {
		t.Fatalf("Size = %d, %v", n, err)
	}
	if !l.IsLoaded() {
		t.Fatal("delegate should be loaded after first access")
	}
	// Store-side writes after the load are invisible to the cached view.
	if err := store.Add(ctx, owner.ID(), "c"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if n, _ := l.Size(ctx); n != 2 {
		t.Fatalf("Size after out-of-band store write = %d, want 2", n)
	}
}

func TestListAppendStaysLazy(t *testing.T) {
	ctx := context.Background()
	owner := newFakeOwner()
	store := inmemory.NewListStore[string]()
	if err := store.Add(ctx, owner.ID(), "seeded"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	l, err := NewList(Options{Owner: owner, Descriptor: listField(1)}, store)
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	// A plain append on an ordered shape must not force the full load.
	if _, err := l.Add(ctx, "tail"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if l.IsLoaded() {
		t.Fatal("append should not trigger the full load")
	}
	if n, _ := l.Size(ctx); n != 2 {
		t.Fatalf("Size = %d, want 2", n)
	}
}

func TestListQueuedAddVisibleBeforeReplay(t *testing.T) {
	ctx := context.Background()
	owner := newFakeOwner()
	q := &recordingQueue{}
	store := inmemory.NewListStore[string]()
	if err := store.Add(ctx, owner.ID(), "seeded"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	l, err := NewList(Options{Owner: owner, Descriptor: listField(1), Queue: q}, store)
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	if _, err := l.Add(ctx, "tail"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// The cached view reflects the mutation ahead of the deferred replay.
	if n, _ := l.Size(ctx); n != 2 {
		t.Fatalf("Size before replay = %d, want 2", n)
	}
	snap, _ := l.Detach(ctx)
	if len(snap) != 2 || snap[0] != "seeded" || snap[1] != "tail" {
		t.Fatalf("Detach = %v, want [seeded tail]", snap)
	}
	if n, _ := store.Size(ctx, owner.ID()); n != 1 {
		t.Fatalf("store size before replay = %d, want 1", n)
	}
	for _, op := range q.ops {
		if err := op.Apply(ctx); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}
	if n, _ := store.Size(ctx, owner.ID()); n != 2 {
		t.Fatalf("store size after replay = %d, want 2", n)
	}
	snap, _ = l.Detach(ctx)
	if len(snap) != 2 || snap[1] != "tail" {
		t.Fatalf("Detach after replay = %v, want [seeded tail]", snap)
	}
}

func TestListIndexErrors(t *testing.T) {
	ctx := context.Background()
	l, err := NewList[string](Options{Owner: newFakeOwner(), Descriptor: listField(1)}, inmemory.NewListStore[string]())
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	if _, err := l.Add(ctx, "a"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := l.Get(ctx, 5); err == nil {
		t.Fatal("Get(5) should fail")
	} else {
		var e sco.Error
		if !errors.As(err, &e) || e.Code != sco.IndexOutOfRange {
			t.Fatalf("Get(5) error = %v, want IndexOutOfRange", err)
		}
	}
	if err := l.AddAt(ctx, 3, "x"); err == nil {
		t.Fatal("AddAt(3) should fail")
	}
	if _, err := l.RemoveAt(ctx, -1); err == nil {
		t.Fatal("RemoveAt(-1) should fail")
	}
}

func TestListDirtyAndAutoCommit(t *testing.T) {
	ctx := context.Background()
	owner := newFakeOwner()
	l, err := NewList[string](Options{Owner: owner, Descriptor: listField(7)}, inmemory.NewListStore[string]())
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	if _, err := l.Add(ctx, "a"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(owner.dirtyFields) != 1 || owner.dirtyFields[0] != 7 {
		t.Fatalf("dirty fields = %v, want [7]", owner.dirtyFields)
	}
	// Outside a transaction every mutation auto-commits.
	if owner.autoCommits != 1 {
		t.Fatalf("auto commits = %d, want 1", owner.autoCommits)
	}
	owner.txActive = true
	if _, err := l.Add(ctx, "b"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if owner.autoCommits != 1 {
		t.Fatalf("auto commits inside tx = %d, want still 1", owner.autoCommits)
	}
	if len(owner.dirtyFields) != 2 {
		t.Fatalf("dirty fields = %v, want two entries", owner.dirtyFields)
	}
}

func TestListNoStoreMode(t *testing.T) {
	ctx := context.Background()
	owner := newFakeOwner()
	l, err := NewList[int](Options{Owner: owner, Descriptor: listField(1)}, nil)
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	if _, err := l.AddAll(ctx, 1, 2, 3); err != nil {
		t.Fatalf("AddAll: %v", err)
	}
	if v, err := l.RemoveAt(ctx, 0); err != nil || v != 1 {
		t.Fatalf("RemoveAt = %d, %v", v, err)
	}
	if ok, _ := l.Equals(ctx, []int{2, 3}); !ok {
		t.Fatal("no-store wrapper should behave as a plain list")
	}
	// Dirty tracking still runs without a store.
	if len(owner.dirtyFields) == 0 {
		t.Fatal("mutations should mark the owner dirty")
	}
}

func TestListSubListAndSearch(t *testing.T) {
	ctx := context.Background()
	l, err := NewList[string](Options{Owner: newFakeOwner(), Descriptor: listField(1)}, inmemory.NewListStore[string]())
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	if _, err := l.AddAll(ctx, "a", "b", "a", "c"); err != nil {
		t.Fatalf("AddAll: %v", err)
	}
	if i, _ := l.IndexOf(ctx, "a"); i != 0 {
		t.Fatalf("IndexOf(a) = %d, want 0", i)
	}
	if i, _ := l.LastIndexOf(ctx, "a"); i != 2 {
		t.Fatalf("LastIndexOf(a) = %d, want 2", i)
	}
	if i, _ := l.IndexOf(ctx, "zz"); i != -1 {
		t.Fatalf("IndexOf(zz) = %d, want -1", i)
	}
	sub, err := l.SubList(ctx, 1, 3)
	if err != nil || len(sub) != 2 || sub[0] != "b" || sub[1] != "a" {
		t.Fatalf("SubList(1,3) = %v, %v", sub, err)
	}
}

func TestListIteratorRemove(t *testing.T) {
	ctx := context.Background()
	owner := newFakeOwner()
	store := inmemory.NewListStore[string]()
	l, err := NewList(Options{Owner: owner, Descriptor: listField(1)}, store)
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	if _, err := l.AddAll(ctx, "a", "b", "c"); err != nil {
		t.Fatalf("AddAll: %v", err)
	}
	it, err := l.Iterator(ctx)
	if err != nil {
		t.Fatalf("Iterator: %v", err)
	}
	for {
		ok, err := it.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		if it.Value() == "b" {
			if ok, err := it.Remove(ctx); err != nil || !ok {
				t.Fatalf("Remove = %v, %v", ok, err)
			}
		}
	}
	it.Close()
	if ok, _ := l.Equals(ctx, []string{"a", "c"}); !ok {
		snap, _ := l.Detach(ctx)
		t.Fatalf("after iterator removal: %v, want [a c]", snap)
	}
	if ok, _ := store.Contains(ctx, owner.ID(), "b"); ok {
		t.Fatal("iterator removal should reach the store")
	}
}

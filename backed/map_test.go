package backed

import (
	"context"
	"testing"

	"github.com/sharedcode/sco"
	"github.com/sharedcode/sco/inmemory"
)

func mapField(no int) *sco.FieldDescriptor {
	return &sco.FieldDescriptor{Name: "attrs", FieldNo: no, Shape: sco.MapShape}
}

func TestMapPutGetRemove(t *testing.T) {
	ctx := context.Background()
	owner := newFakeOwner()
	store := inmemory.NewMapStore[string, int]()
	m, err := NewMap(Options{Owner: owner, Descriptor: mapField(1)}, store)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}

	if _, existed, err := m.Put(ctx, "a", 1); err != nil || existed {
		t.Fatalf("first Put = existed %v, %v", existed, err)
	}
	prev, existed, err := m.Put(ctx, "a", 2)
	if err != nil || !existed || prev != 1 {
		t.Fatalf("second Put = (%d, %v), %v, want (1, true)", prev, existed, err)
	}
	if v, ok, _ := m.Get(ctx, "a"); !ok || v != 2 {
		t.Fatalf("Get = (%d, %v), want (2, true)", v, ok)
	}
	if ok, _ := m.ContainsValue(ctx, 2); !ok {
		t.Fatal("ContainsValue(2) should hold")
	}
	// The store mirrors the upsert.
	if v, ok, _ := store.Get(ctx, owner.ID(), "a"); !ok || v != 2 {
		t.Fatalf("store Get = (%d, %v), want (2, true)", v, ok)
	}

	prev, ok, err := m.Remove(ctx, "a")
	if err != nil || !ok || prev != 2 {
		t.Fatalf("Remove = (%d, %v), %v", prev, ok, err)
	}
	if _, ok, _ := m.Remove(ctx, "a"); ok {
		t.Fatal("second Remove should report false")
	}
	if n, _ := store.Size(ctx, owner.ID()); n != 0 {
		t.Fatalf("store size = %d, want 0", n)
	}
}

func TestMapPutAllAndEquals(t *testing.T) {
	ctx := context.Background()
	m, err := NewMap(Options{Owner: newFakeOwner(), Descriptor: mapField(1)}, inmemory.NewMapStore[string, int]())
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	if err := m.PutAll(ctx,
		sco.KeyValuePair[string, int]{Key: "a", Value: 1},
		sco.KeyValuePair[string, int]{Key: "b", Value: 2},
	); err != nil {
		t.Fatalf("PutAll: %v", err)
	}
	if ok, _ := m.Equals(ctx, map[string]int{"a": 1, "b": 2}); !ok {
		t.Fatal("Equals should hold")
	}
	if ok, _ := m.Equals(ctx, map[string]int{"a": 1, "b": 9}); ok {
		t.Fatal("Equals should reject differing values")
	}
	keys, err := m.Keys(ctx)
	if err != nil || len(keys) != 2 {
		t.Fatalf("Keys = %v, %v", keys, err)
	}
	vals, err := m.Values(ctx)
	if err != nil || len(vals) != 2 {
		t.Fatalf("Values = %v, %v", vals, err)
	}
}

func TestMapQueuedMutationsEnqueueOneRecordEach(t *testing.T) {
	ctx := context.Background()
	owner := newFakeOwner()
	q := &recordingQueue{}
	store := inmemory.NewMapStore[string, int]()
	fd := mapField(9)
	m, err := NewMap(Options{Owner: owner, Descriptor: fd, Queue: q}, store)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	if _, _, err := m.Put(ctx, "a", 1); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := m.PutAll(ctx,
		sco.KeyValuePair[string, int]{Key: "b", Value: 2},
		sco.KeyValuePair[string, int]{Key: "c", Value: 3},
	); err != nil {
		t.Fatalf("PutAll: %v", err)
	}
	if _, _, err := m.Remove(ctx, "a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	kinds := []sco.OperationKind{sco.OpPut, sco.OpPutAll, sco.OpRemoveKey}
	if len(q.ops) != len(kinds) {
		t.Fatalf("enqueued %d records, want %d", len(q.ops), len(kinds))
	}
	for i, k := range kinds {
		if q.ops[i].Kind != k {
			t.Fatalf("record %d kind = %v, want %v", i, q.ops[i].Kind, k)
		}
		if q.ops[i].Owner != owner.ID() || q.ops[i].FieldNo != 9 {
			t.Fatalf("record %d misattributed: %+v", i, q.ops[i])
		}
	}
	// Nothing reached the store yet.
	if n, _ := store.Size(ctx, owner.ID()); n != 0 {
		t.Fatalf("store size before replay = %d, want 0", n)
	}
	for _, op := range q.ops {
		if err := op.Apply(ctx); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}
	if n, _ := store.Size(ctx, owner.ID()); n != 2 {
		t.Fatalf("store size after replay = %d, want 2", n)
	}
	if _, ok, _ := store.Get(ctx, owner.ID(), "a"); ok {
		t.Fatal("replay should have removed key a")
	}
}

// recordingQueue collects records without replaying them.
type recordingQueue struct {
	ops []sco.Operation
}

func (q *recordingQueue) Enqueue(op sco.Operation) {
	q.ops = append(q.ops, op)
}

func TestMapIteratorRemove(t *testing.T) {
	ctx := context.Background()
	owner := newFakeOwner()
	store := inmemory.NewMapStore[string, int]()
	m, err := NewMap(Options{Owner: owner, Descriptor: mapField(1)}, store)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	if _, _, err := m.Put(ctx, "keep", 1); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, _, err := m.Put(ctx, "drop", 2); err != nil {
		t.Fatalf("Put: %v", err)
	}
	it, err := m.Iterator(ctx)
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
		if it.Entry().Key == "drop" {
			if ok, err := it.Remove(ctx); err != nil || !ok {
				t.Fatalf("Remove = %v, %v", ok, err)
			}
		}
	}
	it.Close()
	if ok, _ := m.Equals(ctx, map[string]int{"keep": 1}); !ok {
		snap, _ := m.Detach(ctx)
		t.Fatalf("after iterator removal: %v, want only keep", snap)
	}
	if ok, _ := store.ContainsKey(ctx, owner.ID(), "drop"); ok {
		t.Fatal("iterator removal should reach the store")
	}
}

func TestMapPassthrough(t *testing.T) {
	ctx := context.Background()
	owner := newFakeOwner()
	store := inmemory.NewMapStore[string, int]()
	if _, _, err := store.Put(ctx, owner.ID(), "seeded", 7); err != nil {
		t.Fatalf("seed: %v", err)
	}
	m, err := NewMap(Options{Owner: owner, Descriptor: mapField(1), NoCache: true}, store)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	if v, ok, _ := m.Get(ctx, "seeded"); !ok || v != 7 {
		t.Fatalf("Get = (%d, %v), want (7, true)", v, ok)
	}
	if m.IsLoaded() {
		t.Fatal("pass-through mode never loads the delegate")
	}
	if _, _, err := m.Put(ctx, "x", 1); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n, _ := store.Size(ctx, owner.ID()); n != 2 {
		t.Fatalf("store size = %d, want 2", n)
	}
}

func TestMapInit(t *testing.T) {
	ctx := context.Background()
	owner := newFakeOwner()
	store := inmemory.NewMapStore[string, int]()
	m, err := NewMap(Options{Owner: owner, Descriptor: mapField(1)}, store)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	if err := m.Init(ctx, map[string]int{"a": 1, "b": 2}, true); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if len(owner.dirtyFields) != 0 {
		t.Fatal("value initialization must not mark dirty")
	}
	if n, _ := store.Size(ctx, owner.ID()); n != 2 {
		t.Fatalf("store size = %d, want 2", n)
	}
	if ok, _ := m.Equals(ctx, map[string]int{"a": 1, "b": 2}); !ok {
		t.Fatal("Init should hydrate the delegate")
	}
}

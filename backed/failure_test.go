package backed

import (
	"context"
	"errors"
	"testing"

	"github.com/sharedcode/sco"
	"github.com/sharedcode/sco/inmemory"
)

func TestAdditiveStoreFailurePropagatesWithoutRollback(t *testing.T) {
	ctx := context.Background()
	owner := newFakeOwner()
	store := &flakyStore[string]{inner: inmemory.NewListStore[string](), failAdd: true}
	l, err := NewList[string](Options{Owner: owner, Descriptor: listField(1)}, store)
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	if _, err := l.Size(ctx); err != nil {
		t.Fatalf("Size: %v", err)
	}
	_, err = l.Add(ctx, "a")
	if err == nil {
		t.Fatal("Add should surface the store failure")
	}
	var e sco.Error
	if !errors.As(err, &e) || e.Code != sco.StoreAddFailure {
		t.Fatalf("Add error = %v, want StoreAddFailure", err)
	}
	if !errors.Is(err, errStoreDown) {
		t.Fatal("the cause should stay unwrappable")
	}
	// The delegate keeps the value; no rollback.
	if ok, _ := l.Contains(ctx, "a"); !ok {
		t.Fatal("delegate should keep the value after a store add failure")
	}
}

func TestRemovalStoreFailureIsBestEffort(t *testing.T) {
	ctx := context.Background()
	owner := newFakeOwner()
	inner := inmemory.NewListStore[string]()
	store := &flakyStore[string]{inner: inner}
	l, err := NewList[string](Options{Owner: owner, Descriptor: listField(1)}, store)
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	if _, err := l.Add(ctx, "a"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	dirtyBefore := len(owner.dirtyFields)

	store.failRemove = true
	ok, err := l.Remove(ctx, "a")
	if err != nil {
		t.Fatalf("Remove should not surface the store failure, got %v", err)
	}
	if ok {
		t.Fatal("Remove should report false when the store half failed")
	}
	// The delegate removal stands and dirty still tracks it.
	if present, _ := l.Contains(ctx, "a"); present {
		t.Fatal("delegate removal should not be rolled back")
	}
	if len(owner.dirtyFields) != dirtyBefore+1 {
		t.Fatal("dirty should fire for the delegate change")
	}
	// The store keeps the value, stale.
	if present, _ := inner.Contains(ctx, owner.ID(), "a"); !present {
		t.Fatal("store should keep the value after the failed removal")
	}
}

func TestLoadFailureIsFatalAndNotRetried(t *testing.T) {
	ctx := context.Background()
	owner := newFakeOwner()
	store := &flakyStore[string]{inner: inmemory.NewListStore[string](), failIter: true}
	l, err := NewList[string](Options{Owner: owner, Descriptor: listField(1)}, store)
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	_, err = l.Size(ctx)
	if err == nil {
		t.Fatal("Size should surface the load failure")
	}
	var e sco.Error
	if !errors.As(err, &e) || e.Code != sco.StoreLoadFailure {
		t.Fatalf("Size error = %v, want StoreLoadFailure", err)
	}
	if l.IsLoaded() {
		t.Fatal("a failed load must not mark the delegate loaded")
	}
	// The store recovers; the next access loads.
	store.failIter = false
	if n, err := l.Size(ctx); err != nil || n != 0 {
		t.Fatalf("Size after recovery = %d, %v", n, err)
	}
	if !l.IsLoaded() {
		t.Fatal("recovered access should load")
	}
}

// A custom observer recording mutation failures.
type recordingObserver struct {
	loads     int
	successes []sco.OperationKind
	failures  []sco.OperationKind
}

func (o *recordingObserver) Loaded(fd *sco.FieldDescriptor, owner sco.UUID, count int) {
	o.loads++
}

func (o *recordingObserver) MutationSucceeded(fd *sco.FieldDescriptor, owner sco.UUID, kind sco.OperationKind) {
	o.successes = append(o.successes, kind)
}

func (o *recordingObserver) MutationFailed(fd *sco.FieldDescriptor, owner sco.UUID, kind sco.OperationKind, err error) {
	o.failures = append(o.failures, kind)
}

func TestObserverSeesLoadsAndFailures(t *testing.T) {
	ctx := context.Background()
	ob := &recordingObserver{}
	store := &flakyStore[string]{inner: inmemory.NewListStore[string]()}
	l, err := NewList[string](Options{Owner: newFakeOwner(), Descriptor: listField(1), Observer: ob}, store)
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	if _, err := l.Add(ctx, "a"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := l.Size(ctx); err != nil {
		t.Fatalf("Size: %v", err)
	}
	store.failRemove = true
	if _, err := l.Remove(ctx, "a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if ob.loads != 1 {
		t.Fatalf("loads = %d, want 1", ob.loads)
	}
	if len(ob.successes) == 0 || ob.successes[0] != sco.OpAdd {
		t.Fatalf("successes = %v, want leading add", ob.successes)
	}
	if len(ob.failures) != 1 || ob.failures[0] != sco.OpRemove {
		t.Fatalf("failures = %v, want [remove]", ob.failures)
	}
}

package backed

import (
	"context"
	"errors"

	"github.com/sharedcode/sco"
)

// fakeOwner records every StateManager interaction the wrappers make.
type fakeOwner struct {
	id          sco.UUID
	dirtyFields []int
	autoCommits int
	txActive    bool
	deleted     []any
	relations   *fakeRelations
}

func newFakeOwner() *fakeOwner {
	return &fakeOwner{id: sco.NewUUID()}
}

func (o *fakeOwner) ID() sco.UUID { return o.id }

func (o *fakeOwner) MakeDirty(fieldNo int) {
	o.dirtyFields = append(o.dirtyFields, fieldNo)
}

func (o *fakeOwner) IsTransactionActive() bool { return o.txActive }

func (o *fakeOwner) ProcessNontransactionalUpdate(ctx context.Context) error {
	o.autoCommits++
	return nil
}

func (o *fakeOwner) DeleteObject(ctx context.Context, value any) error {
	o.deleted = append(o.deleted, value)
	return nil
}

func (o *fakeOwner) RelationshipManager() sco.RelationshipManager {
	if o.relations == nil {
		return nil
	}
	return o.relations
}

type relationCall struct {
	fieldNo int
	value   any
}

type fakeRelations struct {
	added   []relationCall
	removed []relationCall
}

func (r *fakeRelations) RelationAdd(fieldNo int, value any) {
	r.added = append(r.added, relationCall{fieldNo: fieldNo, value: value})
}

func (r *fakeRelations) RelationRemove(fieldNo int, value any) {
	r.removed = append(r.removed, relationCall{fieldNo: fieldNo, value: value})
}

var errStoreDown = errors.New("store down")

// flakyStore wraps a real store and fails selected operations on demand.
type flakyStore[T comparable] struct {
	inner      sco.ListStore[T]
	failAdd    bool
	failRemove bool
	failIter   bool
}

func (s *flakyStore[T]) Size(ctx context.Context, owner sco.UUID) (int, error) {
	return s.inner.Size(ctx, owner)
}

func (s *flakyStore[T]) Contains(ctx context.Context, owner sco.UUID, value T) (bool, error) {
	return s.inner.Contains(ctx, owner, value)
}

func (s *flakyStore[T]) Iterator(ctx context.Context, owner sco.UUID) (sco.Cursor[T], error) {
	if s.failIter {
		return nil, errStoreDown
	}
	return s.inner.Iterator(ctx, owner)
}

func (s *flakyStore[T]) Add(ctx context.Context, owner sco.UUID, values ...T) error {
	if s.failAdd {
		return errStoreDown
	}
	return s.inner.Add(ctx, owner, values...)
}

func (s *flakyStore[T]) AddAt(ctx context.Context, owner sco.UUID, index int, values ...T) error {
	if s.failAdd {
		return errStoreDown
	}
	return s.inner.AddAt(ctx, owner, index, values...)
}

func (s *flakyStore[T]) Get(ctx context.Context, owner sco.UUID, index int) (T, error) {
	return s.inner.Get(ctx, owner, index)
}

func (s *flakyStore[T]) IndexOf(ctx context.Context, owner sco.UUID, value T) (int, error) {
	return s.inner.IndexOf(ctx, owner, value)
}

func (s *flakyStore[T]) LastIndexOf(ctx context.Context, owner sco.UUID, value T) (int, error) {
	return s.inner.LastIndexOf(ctx, owner, value)
}

func (s *flakyStore[T]) Set(ctx context.Context, owner sco.UUID, index int, value T, allowDependentSideEffect bool) (T, error) {
	if s.failAdd {
		var zero T
		return zero, errStoreDown
	}
	return s.inner.Set(ctx, owner, index, value, allowDependentSideEffect)
}

func (s *flakyStore[T]) Remove(ctx context.Context, owner sco.UUID, value T, allowCascadeDelete bool) (bool, error) {
	if s.failRemove {
		return false, errStoreDown
	}
	return s.inner.Remove(ctx, owner, value, allowCascadeDelete)
}

func (s *flakyStore[T]) RemoveAll(ctx context.Context, owner sco.UUID, allowCascadeDelete bool, values ...T) error {
	if s.failRemove {
		return errStoreDown
	}
	return s.inner.RemoveAll(ctx, owner, allowCascadeDelete, values...)
}

func (s *flakyStore[T]) RemoveAt(ctx context.Context, owner sco.UUID, index int) (T, error) {
	if s.failRemove {
		var zero T
		return zero, errStoreDown
	}
	return s.inner.RemoveAt(ctx, owner, index)
}

func (s *flakyStore[T]) SubList(ctx context.Context, owner sco.UUID, from, to int) ([]T, error) {
	return s.inner.SubList(ctx, owner, from, to)
}

func (s *flakyStore[T]) Clear(ctx context.Context, owner sco.UUID) error {
	if s.failRemove {
		return errStoreDown
	}
	return s.inner.Clear(ctx, owner)
}

// drain collects an iterator's remaining values.
func drain[T comparable](ctx context.Context, it *Iterator[T]) ([]T, error) {
	defer it.Close()
	var out []T
	for {
		ok, err := it.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, it.Value())
	}
}

package redis

import (
	"context"

	"github.com/sharedcode/sco"
	"github.com/sharedcode/sco/encoding"
)

// CollectionStore persists an unordered unique-elements container field as a
// Redis set, one key per owner. Elements are marshaled with the encoding
// package.
type CollectionStore[T comparable] struct {
	conn    *Connection
	fieldNo int
}

// NewCollectionStore binds a set-backed store to a field number on the
// singleton connection.
func NewCollectionStore[T comparable](fieldNo int) (*CollectionStore[T], error) {
	if connection == nil {
		return nil, errNotOpen()
	}
	return &CollectionStore[T]{conn: connection, fieldNo: fieldNo}, nil
}

func (s *CollectionStore[T]) key(owner sco.UUID) string {
	return fieldKey(s.conn.Options.KeyPrefix, s.fieldNo, owner)
}

func (s *CollectionStore[T]) Size(ctx context.Context, owner sco.UUID) (int, error) {
	n, err := s.conn.Client.SCard(ctx, s.key(owner)).Result()
	return int(n), err
}

func (s *CollectionStore[T]) Contains(ctx context.Context, owner sco.UUID, value T) (bool, error) {
	ba, err := encoding.Marshal(value)
	if err != nil {
		return false, err
	}
	return s.conn.Client.SIsMember(ctx, s.key(owner), ba).Result()
}

func (s *CollectionStore[T]) Iterator(ctx context.Context, owner sco.UUID) (sco.Cursor[T], error) {
	members, err := s.conn.Client.SMembers(ctx, s.key(owner)).Result()
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(members))
	for _, m := range members {
		var v T
		if err := encoding.Unmarshal([]byte(m), &v); err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return newSliceCursor(items), nil
}

func (s *CollectionStore[T]) Add(ctx context.Context, owner sco.UUID, values ...T) error {
	members := make([]any, 0, len(values))
	for _, v := range values {
		ba, err := encoding.Marshal(v)
		if err != nil {
			return err
		}
		members = append(members, ba)
	}
	return s.conn.Client.SAdd(ctx, s.key(owner), members...).Err()
}

func (s *CollectionStore[T]) Remove(ctx context.Context, owner sco.UUID, value T, allowCascadeDelete bool) (bool, error) {
	ba, err := encoding.Marshal(value)
	if err != nil {
		return false, err
	}
	n, err := s.conn.Client.SRem(ctx, s.key(owner), ba).Result()
	return n > 0, err
}

func (s *CollectionStore[T]) RemoveAll(ctx context.Context, owner sco.UUID, allowCascadeDelete bool, values ...T) error {
	members := make([]any, 0, len(values))
	for _, v := range values {
		ba, err := encoding.Marshal(v)
		if err != nil {
			return err
		}
		members = append(members, ba)
	}
	return s.conn.Client.SRem(ctx, s.key(owner), members...).Err()
}

func (s *CollectionStore[T]) Clear(ctx context.Context, owner sco.UUID) error {
	return s.conn.Client.Del(ctx, s.key(owner)).Err()
}

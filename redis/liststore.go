package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sharedcode/sco"
	"github.com/sharedcode/sco/encoding"
)

func errNotOpen() error {
	return fmt.Errorf("Redis connection is not open, 'can't create store")
}

// ListStore persists an ordered container field as a Redis list, one key per
// owner.
type ListStore[T comparable] struct {
	conn    *Connection
	fieldNo int
}

// NewListStore binds a list-backed store to a field number on the singleton
// connection.
func NewListStore[T comparable](fieldNo int) (*ListStore[T], error) {
	if connection == nil {
		return nil, errNotOpen()
	}
	return &ListStore[T]{conn: connection, fieldNo: fieldNo}, nil
}

func (s *ListStore[T]) key(owner sco.UUID) string {
	return fieldKey(s.conn.Options.KeyPrefix, s.fieldNo, owner)
}

func (s *ListStore[T]) encode(values ...T) ([]any, error) {
	out := make([]any, 0, len(values))
	for _, v := range values {
		ba, err := encoding.Marshal(v)
		if err != nil {
			return nil, err
		}
		out = append(out, ba)
	}
	return out, nil
}

func (s *ListStore[T]) Size(ctx context.Context, owner sco.UUID) (int, error) {
	n, err := s.conn.Client.LLen(ctx, s.key(owner)).Result()
	return int(n), err
}

func (s *ListStore[T]) Contains(ctx context.Context, owner sco.UUID, value T) (bool, error) {
	i, err := s.IndexOf(ctx, owner, value)
	return i >= 0, err
}

func (s *ListStore[T]) Iterator(ctx context.Context, owner sco.UUID) (sco.Cursor[T], error) {
	rows, err := s.conn.Client.LRange(ctx, s.key(owner), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(rows))
	for _, r := range rows {
		var v T
		if err := encoding.Unmarshal([]byte(r), &v); err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return newSliceCursor(items), nil
}

func (s *ListStore[T]) Add(ctx context.Context, owner sco.UUID, values ...T) error {
	members, err := s.encode(values...)
	if err != nil {
		return err
	}
	return s.conn.Client.RPush(ctx, s.key(owner), members...).Err()
}

// AddAt inserts at index. Head and tail inserts map to LPUSH/RPUSH; interior
// inserts rewrite the tail of the list under a pipeline.
func (s *ListStore[T]) AddAt(ctx context.Context, owner sco.UUID, index int, values ...T) error {
	members, err := s.encode(values...)
	if err != nil {
		return err
	}
	key := s.key(owner)
	n, err := s.conn.Client.LLen(ctx, key).Result()
	if err != nil {
		return err
	}
	if index < 0 || index > int(n) {
		return fmt.Errorf("index %d out of range, size %d", index, n)
	}
	if index == int(n) {
		return s.conn.Client.RPush(ctx, key, members...).Err()
	}
	if index == 0 {
		// LPUSH reverses, push in reverse order to keep it.
		rev := make([]any, len(members))
		for i, m := range members {
			rev[len(members)-1-i] = m
		}
		return s.conn.Client.LPush(ctx, key, rev...).Err()
	}
	tail, err := s.conn.Client.LRange(ctx, key, int64(index), -1).Result()
	if err != nil {
		return err
	}
	pipe := s.conn.Client.TxPipeline()
	pipe.LTrim(ctx, key, 0, int64(index)-1)
	pipe.RPush(ctx, key, members...)
	for _, t := range tail {
		pipe.RPush(ctx, key, t)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *ListStore[T]) Get(ctx context.Context, owner sco.UUID, index int) (T, error) {
	var v T
	r, err := s.conn.Client.LIndex(ctx, s.key(owner), int64(index)).Result()
	if err == redis.Nil {
		return v, fmt.Errorf("index %d out of range", index)
	}
	if err != nil {
		return v, err
	}
	err = encoding.Unmarshal([]byte(r), &v)
	return v, err
}

func (s *ListStore[T]) IndexOf(ctx context.Context, owner sco.UUID, value T) (int, error) {
	ba, err := encoding.Marshal(value)
	if err != nil {
		return -1, err
	}
	i, err := s.conn.Client.LPos(ctx, s.key(owner), string(ba), redis.LPosArgs{}).Result()
	if err == redis.Nil {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	return int(i), nil
}

func (s *ListStore[T]) LastIndexOf(ctx context.Context, owner sco.UUID, value T) (int, error) {
	ba, err := encoding.Marshal(value)
	if err != nil {
		return -1, err
	}
	i, err := s.conn.Client.LPos(ctx, s.key(owner), string(ba), redis.LPosArgs{Rank: -1}).Result()
	if err == redis.Nil {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	return int(i), nil
}

func (s *ListStore[T]) Set(ctx context.Context, owner sco.UUID, index int, value T, allowDependentSideEffect bool) (T, error) {
	prev, err := s.Get(ctx, owner, index)
	if err != nil {
		return prev, err
	}
	ba, err := encoding.Marshal(value)
	if err != nil {
		return prev, err
	}
	return prev, s.conn.Client.LSet(ctx, s.key(owner), int64(index), ba).Err()
}

func (s *ListStore[T]) Remove(ctx context.Context, owner sco.UUID, value T, allowCascadeDelete bool) (bool, error) {
	ba, err := encoding.Marshal(value)
	if err != nil {
		return false, err
	}
	n, err := s.conn.Client.LRem(ctx, s.key(owner), 1, ba).Result()
	return n > 0, err
}

func (s *ListStore[T]) RemoveAll(ctx context.Context, owner sco.UUID, allowCascadeDelete bool, values ...T) error {
	for _, v := range values {
		if _, err := s.Remove(ctx, owner, v, allowCascadeDelete); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAt overwrites the slot with a unique tombstone then LREMs it, the
// standard Redis index-removal idiom.
func (s *ListStore[T]) RemoveAt(ctx context.Context, owner sco.UUID, index int) (T, error) {
	prev, err := s.Get(ctx, owner, index)
	if err != nil {
		return prev, err
	}
	key := s.key(owner)
	tombstone := "sco-tombstone-" + sco.NewUUID().String()
	if err := s.conn.Client.LSet(ctx, key, int64(index), tombstone).Err(); err != nil {
		return prev, err
	}
	return prev, s.conn.Client.LRem(ctx, key, 1, tombstone).Err()
}

func (s *ListStore[T]) SubList(ctx context.Context, owner sco.UUID, from, to int) ([]T, error) {
	if to <= from {
		return nil, nil
	}
	rows, err := s.conn.Client.LRange(ctx, s.key(owner), int64(from), int64(to)-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		var v T
		if err := encoding.Unmarshal([]byte(r), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *ListStore[T]) Clear(ctx context.Context, owner sco.UUID) error {
	return s.conn.Client.Del(ctx, s.key(owner)).Err()
}

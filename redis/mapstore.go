package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/sharedcode/sco"
	"github.com/sharedcode/sco/encoding"
)

// MapStore persists a map container field as a Redis hash, one key per owner.
// Hash fields carry marshaled keys, hash values marshaled values; entry order
// is not preserved, so this adapter backs hash-map shaped fields only.
type MapStore[TK comparable, TV comparable] struct {
	conn    *Connection
	fieldNo int
}

// NewMapStore binds a hash-backed store to a field number on the singleton
// connection.
func NewMapStore[TK comparable, TV comparable](fieldNo int) (*MapStore[TK, TV], error) {
	if connection == nil {
		return nil, errNotOpen()
	}
	return &MapStore[TK, TV]{conn: connection, fieldNo: fieldNo}, nil
}

func (s *MapStore[TK, TV]) key(owner sco.UUID) string {
	return fieldKey(s.conn.Options.KeyPrefix, s.fieldNo, owner)
}

func (s *MapStore[TK, TV]) hashField(k TK) (string, error) {
	ba, err := encoding.Marshal(k)
	return string(ba), err
}

func (s *MapStore[TK, TV]) Size(ctx context.Context, owner sco.UUID) (int, error) {
	n, err := s.conn.Client.HLen(ctx, s.key(owner)).Result()
	return int(n), err
}

func (s *MapStore[TK, TV]) ContainsKey(ctx context.Context, owner sco.UUID, key TK) (bool, error) {
	f, err := s.hashField(key)
	if err != nil {
		return false, err
	}
	return s.conn.Client.HExists(ctx, s.key(owner), f).Result()
}

func (s *MapStore[TK, TV]) ContainsValue(ctx context.Context, owner sco.UUID, value TV) (bool, error) {
	rows, err := s.conn.Client.HVals(ctx, s.key(owner)).Result()
	if err != nil {
		return false, err
	}
	for _, r := range rows {
		var v TV
		if err := encoding.Unmarshal([]byte(r), &v); err != nil {
			return false, err
		}
		if v == value {
			return true, nil
		}
	}
	return false, nil
}

func (s *MapStore[TK, TV]) Get(ctx context.Context, owner sco.UUID, key TK) (TV, bool, error) {
	var v TV
	f, err := s.hashField(key)
	if err != nil {
		return v, false, err
	}
	r, err := s.conn.Client.HGet(ctx, s.key(owner), f).Result()
	if err == redis.Nil {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}
	err = encoding.Unmarshal([]byte(r), &v)
	return v, err == nil, err
}

func (s *MapStore[TK, TV]) Iterator(ctx context.Context, owner sco.UUID) (sco.Cursor[sco.KeyValuePair[TK, TV]], error) {
	rows, err := s.conn.Client.HGetAll(ctx, s.key(owner)).Result()
	if err != nil {
		return nil, err
	}
	items := make([]sco.KeyValuePair[TK, TV], 0, len(rows))
	for kf, vf := range rows {
		var k TK
		var v TV
		if err := encoding.Unmarshal([]byte(kf), &k); err != nil {
			return nil, err
		}
		if err := encoding.Unmarshal([]byte(vf), &v); err != nil {
			return nil, err
		}
		items = append(items, sco.KeyValuePair[TK, TV]{Key: k, Value: v})
	}
	return newSliceCursor(items), nil
}

func (s *MapStore[TK, TV]) Put(ctx context.Context, owner sco.UUID, key TK, value TV) (TV, bool, error) {
	prev, existed, err := s.Get(ctx, owner, key)
	if err != nil {
		return prev, existed, err
	}
	f, err := s.hashField(key)
	if err != nil {
		return prev, existed, err
	}
	ba, err := encoding.Marshal(value)
	if err != nil {
		return prev, existed, err
	}
	return prev, existed, s.conn.Client.HSet(ctx, s.key(owner), f, ba).Err()
}

func (s *MapStore[TK, TV]) PutAll(ctx context.Context, owner sco.UUID, entries ...sco.KeyValuePair[TK, TV]) error {
	pairs := make([]any, 0, len(entries)*2)
	for _, kv := range entries {
		f, err := s.hashField(kv.Key)
		if err != nil {
			return err
		}
		ba, err := encoding.Marshal(kv.Value)
		if err != nil {
			return err
		}
		pairs = append(pairs, f, ba)
	}
	return s.conn.Client.HSet(ctx, s.key(owner), pairs...).Err()
}

func (s *MapStore[TK, TV]) Remove(ctx context.Context, owner sco.UUID, key TK, allowCascadeDelete bool) (TV, bool, error) {
	prev, existed, err := s.Get(ctx, owner, key)
	if err != nil || !existed {
		return prev, false, err
	}
	f, err := s.hashField(key)
	if err != nil {
		return prev, false, err
	}
	n, err := s.conn.Client.HDel(ctx, s.key(owner), f).Result()
	return prev, n > 0, err
}

func (s *MapStore[TK, TV]) Clear(ctx context.Context, owner sco.UUID) error {
	return s.conn.Client.Del(ctx, s.key(owner)).Err()
}

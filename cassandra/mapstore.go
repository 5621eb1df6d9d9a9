package cassandra

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"

	"github.com/sharedcode/sco"
	"github.com/sharedcode/sco/encoding"
)

// MapStore persists a map container field in the m_entry table, one row per
// entry keyed by owner, field and marshaled key. Rows cluster by marshaled key
// bytes, not comparator order, so this adapter backs hash-map shaped fields.
type MapStore[TK comparable, TV comparable] struct {
	conn    *Connection
	fieldNo int
}

// NewMapStore binds a store to a field number on the singleton connection.
func NewMapStore[TK comparable, TV comparable](fieldNo int) (*MapStore[TK, TV], error) {
	if connection == nil {
		return nil, errNotOpen()
	}
	return &MapStore[TK, TV]{conn: connection, fieldNo: fieldNo}, nil
}

func (s *MapStore[TK, TV]) consistency(c gocql.Consistency) gocql.Consistency {
	if c == gocql.Any {
		return s.conn.Consistency
	}
	return c
}

func (s *MapStore[TK, TV]) Size(ctx context.Context, owner sco.UUID) (int, error) {
	qry := fmt.Sprintf("SELECT COUNT(*) FROM %s.m_entry WHERE owner = ? AND field = ?;", s.conn.Keyspace)
	var n int
	if err := s.conn.Session.Query(qry, gocqlUUID(owner), s.fieldNo).
		Consistency(s.consistency(s.conn.ConsistencyBook.EntryGet)).WithContext(ctx).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *MapStore[TK, TV]) ContainsKey(ctx context.Context, owner sco.UUID, key TK) (bool, error) {
	_, ok, err := s.Get(ctx, owner, key)
	return ok, err
}

func (s *MapStore[TK, TV]) ContainsValue(ctx context.Context, owner sco.UUID, value TV) (bool, error) {
	qry := fmt.Sprintf("SELECT v FROM %s.m_entry WHERE owner = ? AND field = ?;", s.conn.Keyspace)
	iter := s.conn.Session.Query(qry, gocqlUUID(owner), s.fieldNo).
		Consistency(s.consistency(s.conn.ConsistencyBook.EntryGet)).WithContext(ctx).Iter()
	var ba []byte
	for iter.Scan(&ba) {
		var v TV
		if err := encoding.Unmarshal(ba, &v); err != nil {
			iter.Close()
			return false, err
		}
		if v == value {
			iter.Close()
			return true, nil
		}
	}
	return false, iter.Close()
}

func (s *MapStore[TK, TV]) Get(ctx context.Context, owner sco.UUID, key TK) (TV, bool, error) {
	var v TV
	kba, err := encoding.Marshal(key)
	if err != nil {
		return v, false, err
	}
	qry := fmt.Sprintf("SELECT v FROM %s.m_entry WHERE owner = ? AND field = ? AND k = ?;", s.conn.Keyspace)
	var ba []byte
	if err := s.conn.Session.Query(qry, gocqlUUID(owner), s.fieldNo, kba).
		Consistency(s.consistency(s.conn.ConsistencyBook.EntryGet)).WithContext(ctx).Scan(&ba); err != nil {
		if err == gocql.ErrNotFound {
			return v, false, nil
		}
		return v, false, err
	}
	err = encoding.Unmarshal(ba, &v)
	return v, err == nil, err
}

func (s *MapStore[TK, TV]) Iterator(ctx context.Context, owner sco.UUID) (sco.Cursor[sco.KeyValuePair[TK, TV]], error) {
	qry := fmt.Sprintf("SELECT k, v FROM %s.m_entry WHERE owner = ? AND field = ?;", s.conn.Keyspace)
	iter := s.conn.Session.Query(qry, gocqlUUID(owner), s.fieldNo).
		Consistency(s.consistency(s.conn.ConsistencyBook.EntryGet)).WithContext(ctx).Iter()
	var items []sco.KeyValuePair[TK, TV]
	var kba, vba []byte
	for iter.Scan(&kba, &vba) {
		var k TK
		var v TV
		if err := encoding.Unmarshal(kba, &k); err != nil {
			iter.Close()
			return nil, err
		}
		if err := encoding.Unmarshal(vba, &v); err != nil {
			iter.Close()
			return nil, err
		}
		items = append(items, sco.KeyValuePair[TK, TV]{Key: k, Value: v})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return newSliceCursor(items), nil
}

func (s *MapStore[TK, TV]) Put(ctx context.Context, owner sco.UUID, key TK, value TV) (TV, bool, error) {
	prev, existed, err := s.Get(ctx, owner, key)
	if err != nil {
		return prev, existed, err
	}
	kba, err := encoding.Marshal(key)
	if err != nil {
		return prev, existed, err
	}
	vba, err := encoding.Marshal(value)
	if err != nil {
		return prev, existed, err
	}
	qry := fmt.Sprintf("INSERT INTO %s.m_entry (owner, field, k, v) VALUES(?,?,?,?);", s.conn.Keyspace)
	err = s.conn.Session.Query(qry, gocqlUUID(owner), s.fieldNo, kba, vba).
		Consistency(s.consistency(s.conn.ConsistencyBook.EntryPut)).WithContext(ctx).Exec()
	return prev, existed, err
}

func (s *MapStore[TK, TV]) PutAll(ctx context.Context, owner sco.UUID, entries ...sco.KeyValuePair[TK, TV]) error {
	b := s.conn.Session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	b.SetConsistency(s.consistency(s.conn.ConsistencyBook.EntryPut))
	ins := fmt.Sprintf("INSERT INTO %s.m_entry (owner, field, k, v) VALUES(?,?,?,?);", s.conn.Keyspace)
	for _, kv := range entries {
		kba, err := encoding.Marshal(kv.Key)
		if err != nil {
			return err
		}
		vba, err := encoding.Marshal(kv.Value)
		if err != nil {
			return err
		}
		b.Query(ins, gocqlUUID(owner), s.fieldNo, kba, vba)
	}
	return s.conn.Session.ExecuteBatch(b)
}

func (s *MapStore[TK, TV]) Remove(ctx context.Context, owner sco.UUID, key TK, allowCascadeDelete bool) (TV, bool, error) {
	prev, existed, err := s.Get(ctx, owner, key)
	if err != nil || !existed {
		return prev, false, err
	}
	kba, err := encoding.Marshal(key)
	if err != nil {
		return prev, false, err
	}
	qry := fmt.Sprintf("DELETE FROM %s.m_entry WHERE owner = ? AND field = ? AND k = ?;", s.conn.Keyspace)
	err = s.conn.Session.Query(qry, gocqlUUID(owner), s.fieldNo, kba).
		Consistency(s.consistency(s.conn.ConsistencyBook.EntryRemove)).WithContext(ctx).Exec()
	return prev, err == nil, err
}

func (s *MapStore[TK, TV]) Clear(ctx context.Context, owner sco.UUID) error {
	qry := fmt.Sprintf("DELETE FROM %s.m_entry WHERE owner = ? AND field = ?;", s.conn.Keyspace)
	return s.conn.Session.Query(qry, gocqlUUID(owner), s.fieldNo).
		Consistency(s.consistency(s.conn.ConsistencyBook.EntryRemove)).WithContext(ctx).Exec()
}

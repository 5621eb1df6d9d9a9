package cassandra

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gocql/gocql"

	"github.com/sharedcode/sco"
	"github.com/sharedcode/sco/encoding"
)

func errNotOpen() error {
	return fmt.Errorf("Cassandra connection is not open, 'can't create store")
}

func gocqlUUID(id sco.UUID) gocql.UUID {
	return gocql.UUID(id)
}

// ListStore persists an ordered container field in the c_element table, one
// row per element clustered by position. Also serves unordered fields through
// the sco.CollectionStore subset.
type ListStore[T comparable] struct {
	conn    *Connection
	fieldNo int
}

// NewListStore binds a store to a field number on the singleton connection.
func NewListStore[T comparable](fieldNo int) (*ListStore[T], error) {
	if connection == nil {
		return nil, errNotOpen()
	}
	return &ListStore[T]{conn: connection, fieldNo: fieldNo}, nil
}

func (s *ListStore[T]) consistency(c gocql.Consistency) gocql.Consistency {
	if c == gocql.Any {
		return s.conn.Consistency
	}
	return c
}

// readAll fetches the owner's elements in position order.
func (s *ListStore[T]) readAll(ctx context.Context, owner sco.UUID) ([][]byte, error) {
	qry := fmt.Sprintf("SELECT elem FROM %s.c_element WHERE owner = ? AND field = ?;", s.conn.Keyspace)
	iter := s.conn.Session.Query(qry, gocqlUUID(owner), s.fieldNo).
		Consistency(s.consistency(s.conn.ConsistencyBook.ElementGet)).WithContext(ctx).Iter()
	var rows [][]byte
	var ba []byte
	for iter.Scan(&ba) {
		row := make([]byte, len(ba))
		copy(row, ba)
		rows = append(rows, row)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return rows, nil
}

// writeAll replaces the owner's elements with the given rows. Cassandra has no
// positional insert, so index mutations rewrite the partition in one logged
// batch.
func (s *ListStore[T]) writeAll(ctx context.Context, owner sco.UUID, rows [][]byte) error {
	b := s.conn.Session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	b.SetConsistency(s.consistency(s.conn.ConsistencyBook.ElementAdd))
	b.Query(fmt.Sprintf("DELETE FROM %s.c_element WHERE owner = ? AND field = ?;", s.conn.Keyspace), gocqlUUID(owner), s.fieldNo)
	ins := fmt.Sprintf("INSERT INTO %s.c_element (owner, field, pos, elem) VALUES(?,?,?,?);", s.conn.Keyspace)
	for i, row := range rows {
		b.Query(ins, gocqlUUID(owner), s.fieldNo, i, row)
	}
	return s.conn.Session.ExecuteBatch(b)
}

func (s *ListStore[T]) decodeAll(rows [][]byte) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		var v T
		if err := encoding.Unmarshal(row, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *ListStore[T]) Size(ctx context.Context, owner sco.UUID) (int, error) {
	qry := fmt.Sprintf("SELECT COUNT(*) FROM %s.c_element WHERE owner = ? AND field = ?;", s.conn.Keyspace)
	var n int
	if err := s.conn.Session.Query(qry, gocqlUUID(owner), s.fieldNo).
		Consistency(s.consistency(s.conn.ConsistencyBook.ElementGet)).WithContext(ctx).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *ListStore[T]) Contains(ctx context.Context, owner sco.UUID, value T) (bool, error) {
	i, err := s.IndexOf(ctx, owner, value)
	return i >= 0, err
}

func (s *ListStore[T]) Iterator(ctx context.Context, owner sco.UUID) (sco.Cursor[T], error) {
	rows, err := s.readAll(ctx, owner)
	if err != nil {
		return nil, err
	}
	items, err := s.decodeAll(rows)
	if err != nil {
		return nil, err
	}
	return newSliceCursor(items), nil
}

func (s *ListStore[T]) Add(ctx context.Context, owner sco.UUID, values ...T) error {
	n, err := s.Size(ctx, owner)
	if err != nil {
		return err
	}
	b := s.conn.Session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	b.SetConsistency(s.consistency(s.conn.ConsistencyBook.ElementAdd))
	ins := fmt.Sprintf("INSERT INTO %s.c_element (owner, field, pos, elem) VALUES(?,?,?,?);", s.conn.Keyspace)
	for i, v := range values {
		ba, err := encoding.Marshal(v)
		if err != nil {
			return err
		}
		b.Query(ins, gocqlUUID(owner), s.fieldNo, n+i, ba)
	}
	return s.conn.Session.ExecuteBatch(b)
}

func (s *ListStore[T]) AddAt(ctx context.Context, owner sco.UUID, index int, values ...T) error {
	rows, err := s.readAll(ctx, owner)
	if err != nil {
		return err
	}
	if index < 0 || index > len(rows) {
		return fmt.Errorf("index %d out of range, size %d", index, len(rows))
	}
	ins := make([][]byte, 0, len(values))
	for _, v := range values {
		ba, err := encoding.Marshal(v)
		if err != nil {
			return err
		}
		ins = append(ins, ba)
	}
	next := make([][]byte, 0, len(rows)+len(ins))
	next = append(next, rows[:index]...)
	next = append(next, ins...)
	next = append(next, rows[index:]...)
	return s.writeAll(ctx, owner, next)
}

func (s *ListStore[T]) Get(ctx context.Context, owner sco.UUID, index int) (T, error) {
	var v T
	qry := fmt.Sprintf("SELECT elem FROM %s.c_element WHERE owner = ? AND field = ? AND pos = ?;", s.conn.Keyspace)
	var ba []byte
	if err := s.conn.Session.Query(qry, gocqlUUID(owner), s.fieldNo, index).
		Consistency(s.consistency(s.conn.ConsistencyBook.ElementGet)).WithContext(ctx).Scan(&ba); err != nil {
		if err == gocql.ErrNotFound {
			return v, fmt.Errorf("index %d out of range", index)
		}
		return v, err
	}
	err := encoding.Unmarshal(ba, &v)
	return v, err
}

func (s *ListStore[T]) IndexOf(ctx context.Context, owner sco.UUID, value T) (int, error) {
	target, err := encoding.Marshal(value)
	if err != nil {
		return -1, err
	}
	rows, err := s.readAll(ctx, owner)
	if err != nil {
		return -1, err
	}
	for i, row := range rows {
		if bytes.Equal(row, target) {
			return i, nil
		}
	}
	return -1, nil
}

func (s *ListStore[T]) LastIndexOf(ctx context.Context, owner sco.UUID, value T) (int, error) {
	target, err := encoding.Marshal(value)
	if err != nil {
		return -1, err
	}
	rows, err := s.readAll(ctx, owner)
	if err != nil {
		return -1, err
	}
	for i := len(rows) - 1; i >= 0; i-- {
		if bytes.Equal(rows[i], target) {
			return i, nil
		}
	}
	return -1, nil
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
	qry := fmt.Sprintf("UPDATE %s.c_element SET elem = ? WHERE owner = ? AND field = ? AND pos = ?;", s.conn.Keyspace)
	err = s.conn.Session.Query(qry, ba, gocqlUUID(owner), s.fieldNo, index).
		Consistency(s.consistency(s.conn.ConsistencyBook.ElementAdd)).WithContext(ctx).Exec()
	return prev, err
}

func (s *ListStore[T]) Remove(ctx context.Context, owner sco.UUID, value T, allowCascadeDelete bool) (bool, error) {
	i, err := s.IndexOf(ctx, owner, value)
	if err != nil || i < 0 {
		return false, err
	}
	_, err = s.RemoveAt(ctx, owner, i)
	return err == nil, err
}

func (s *ListStore[T]) RemoveAll(ctx context.Context, owner sco.UUID, allowCascadeDelete bool, values ...T) error {
	for _, v := range values {
		if _, err := s.Remove(ctx, owner, v, allowCascadeDelete); err != nil {
			return err
		}
	}
	return nil
}

func (s *ListStore[T]) RemoveAt(ctx context.Context, owner sco.UUID, index int) (T, error) {
	var zero T
	rows, err := s.readAll(ctx, owner)
	if err != nil {
		return zero, err
	}
	if index < 0 || index >= len(rows) {
		return zero, fmt.Errorf("index %d out of range, size %d", index, len(rows))
	}
	var removed T
	if err := encoding.Unmarshal(rows[index], &removed); err != nil {
		return zero, err
	}
	next := append(rows[:index:index], rows[index+1:]...)
	return removed, s.writeAll(ctx, owner, next)
}

func (s *ListStore[T]) SubList(ctx context.Context, owner sco.UUID, from, to int) ([]T, error) {
	if to <= from {
		return nil, nil
	}
	qry := fmt.Sprintf("SELECT elem FROM %s.c_element WHERE owner = ? AND field = ? AND pos >= ? AND pos < ?;", s.conn.Keyspace)
	iter := s.conn.Session.Query(qry, gocqlUUID(owner), s.fieldNo, from, to).
		Consistency(s.consistency(s.conn.ConsistencyBook.ElementGet)).WithContext(ctx).Iter()
	var out []T
	var ba []byte
	for iter.Scan(&ba) {
		var v T
		if err := encoding.Unmarshal(ba, &v); err != nil {
			iter.Close()
			return nil, err
		}
		out = append(out, v)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ListStore[T]) Clear(ctx context.Context, owner sco.UUID) error {
	qry := fmt.Sprintf("DELETE FROM %s.c_element WHERE owner = ? AND field = ?;", s.conn.Keyspace)
	return s.conn.Session.Query(qry, gocqlUUID(owner), s.fieldNo).
		Consistency(s.consistency(s.conn.ConsistencyBook.ElementRemove)).WithContext(ctx).Exec()
}

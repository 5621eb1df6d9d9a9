package sco

import (
	"testing"
	"time"
)

func TestDefaultComparerScalars(t *testing.T) {
	if r := DefaultComparer(1, 2); r >= 0 {
		t.Errorf("ints: expected < 0, got %d", r)
	}
	if r := DefaultComparer(int64(5), int64(5)); r != 0 {
		t.Errorf("int64s: expected 0, got %d", r)
	}
	if r := DefaultComparer(2.5, 1.5); r <= 0 {
		t.Errorf("floats: expected > 0, got %d", r)
	}
	if r := DefaultComparer("a", "b"); r >= 0 {
		t.Errorf("strings: expected < 0, got %d", r)
	}
	if r := DefaultComparer(uint(1), uint(3)); r >= 0 {
		t.Errorf("uints: expected < 0, got %d", r)
	}
}

func TestDefaultComparerTime(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Hour)
	if r := DefaultComparer(now, later); r >= 0 {
		t.Errorf("times: expected < 0, got %d", r)
	}
	if r := DefaultComparer(later, now); r <= 0 {
		t.Errorf("times: expected > 0, got %d", r)
	}
}

func TestDefaultComparerUUID(t *testing.T) {
	a, _ := ParseUUID("00000000-0000-0000-0000-000000000001")
	b, _ := ParseUUID("00000000-0000-0000-0000-000000000002")
	if r := DefaultComparer(a, b); r >= 0 {
		t.Errorf("uuids: expected < 0, got %d", r)
	}
	if r := DefaultComparer(a, a); r != 0 {
		t.Errorf("uuids: expected 0, got %d", r)
	}
}

type rank int

func (r rank) Compare(other any) int {
	o := other.(rank)
	return int(r) - int(o)
}

func TestDefaultComparerComparerInterface(t *testing.T) {
	if r := DefaultComparer(rank(1), rank(9)); r >= 0 {
		t.Errorf("Comparer: expected < 0, got %d", r)
	}
}

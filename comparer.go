package sco

import (
	"cmp"
	"fmt"
	"time"
)

// Comparer specifies how a value compares itself against another value.
// Elements or keys implementing it are ordered through it by DefaultComparer.
type Comparer interface {
	// Compare compares this object with the other and returns -1, 0, or 1.
	Compare(other any) int
}

// DefaultComparer compares two values, handling common built-in types, UUIDs,
// time.Time, Comparer implementations, and finally falling back to string
// comparison. Sorted shapes use it when the field descriptor supplies no comparer.
func DefaultComparer(anyX, anyY any) int {
	if anyX == nil && anyY == nil {
		return 0
	}
	if anyX == nil {
		return -1
	}
	if anyY == nil {
		return 1
	}
	switch x1 := anyX.(type) {
	case int:
		y1, _ := anyY.(int)
		return cmp.Compare(x1, y1)
	case int8:
		y1, _ := anyY.(int8)
		return cmp.Compare(x1, y1)
	case int16:
		y1, _ := anyY.(int16)
		return cmp.Compare(x1, y1)
	case int32:
		y1, _ := anyY.(int32)
		return cmp.Compare(x1, y1)
	case int64:
		y1, _ := anyY.(int64)
		return cmp.Compare(x1, y1)
	case uint:
		y1, _ := anyY.(uint)
		return cmp.Compare(x1, y1)
	case uint8:
		y1, _ := anyY.(uint8)
		return cmp.Compare(x1, y1)
	case uint16:
		y1, _ := anyY.(uint16)
		return cmp.Compare(x1, y1)
	case uint32:
		y1, _ := anyY.(uint32)
		return cmp.Compare(x1, y1)
	case uint64:
		y1, _ := anyY.(uint64)
		return cmp.Compare(x1, y1)
	case float32:
		y1, _ := anyY.(float32)
		return cmp.Compare(x1, y1)
	case float64:
		y1, _ := anyY.(float64)
		return cmp.Compare(x1, y1)
	case string:
		y1, _ := anyY.(string)
		return cmp.Compare(x1, y1)
	case UUID:
		y1, _ := anyY.(UUID)
		return x1.Compare(y1)
	case time.Time:
		y1, _ := anyY.(time.Time)
		return x1.Compare(y1)
	default:
		if cX, ok := anyX.(Comparer); ok {
			return cX.Compare(anyY)
		}
		// Last resort, compare their string values.
		s1 := fmt.Sprintf("%v", anyX)
		s2 := fmt.Sprintf("%v", anyY)
		return cmp.Compare(s1, s2)
	}
}

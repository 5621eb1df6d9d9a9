package sco

// KeyValuePair is a tuple, used by the map-shaped wrappers and store adapters
// to carry one map entry across an API boundary.
type KeyValuePair[TK any, TV any] struct {
	Key   TK
	Value TV
}

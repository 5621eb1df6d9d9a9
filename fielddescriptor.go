package sco

// ShapeKind enumerates the container shapes a persistent field can take.
type ShapeKind int

const (
	// ListShape is an ordered, index-addressable sequence.
	ListShape ShapeKind = iota
	// SetShape is an unordered collection of unique elements.
	SetShape
	// SortedSetShape is a comparator-ordered collection of unique elements.
	SortedSetShape
	// QueueShape is a FIFO sequence (list-backed, with Offer/Poll/Peek accessors).
	QueueShape
	// MapShape is an unordered key/value map.
	MapShape
	// SortedMapShape is a comparator-ordered key/value map supporting range queries.
	SortedMapShape
)

// IsOrdered reports whether the shape maintains a meaningful element order.
func (s ShapeKind) IsOrdered() bool {
	return s != SetShape && s != MapShape
}

// IsMap reports whether the shape is key/value based.
func (s ShapeKind) IsMap() bool {
	return s == MapShape || s == SortedMapShape
}

// RelationKind enumerates how a container field relates its elements to the owner.
type RelationKind int

const (
	// RelationNone means contained values carry no managed relation back to the owner.
	RelationNone RelationKind = iota
	// RelationUnidirectional means the owner references the values one-way.
	RelationUnidirectional
	// RelationBidirectional means add/remove must keep the inverse side consistent
	// through the owner's relationship manager.
	RelationBidirectional
)

// ComparerFunc orders two elements (or map keys). Negative means a < b, zero equal, positive a > b.
type ComparerFunc func(a, b any) int

// FieldDescriptor is the static description of one persistent container field's shape.
// It is owned by the class metadata subsystem, referenced and never mutated here.
// One descriptor instance is shared by every wrapper bound to that field across owners.
type FieldDescriptor struct {
	// Name is the field's short name, used in diagnostics and store key formatting.
	Name string
	// FieldNo is the field's absolute position in the owning class, the argument
	// of MakeDirty and the relationship manager calls.
	FieldNo int
	// Shape selects the container shape and therefore the delegate type.
	Shape ShapeKind
	// AllowNils permits nil elements (or map values). When false, a nil operand is
	// rejected before any mutation is applied anywhere.
	AllowNils bool
	// DependentElement causes removal of an element to also delete it as a persistent object.
	DependentElement bool
	// DependentKey causes removal of a map key to also delete the key object.
	DependentKey bool
	// DependentValue causes removal of a map entry to also delete the value object.
	DependentValue bool
	// Relation selects relationship bookkeeping on add/remove.
	Relation RelationKind
	// Comparer orders elements (SortedSetShape) or keys (SortedMapShape). Optional
	// for other shapes. See the cel subpackage for building one from a CEL expression.
	Comparer ComparerFunc
	// SerializedElements marks a field whose container is persisted as one serialized
	// blob by the surrounding engine. Such fields carry no backing store here; their
	// wrappers run in pure in-memory mode.
	SerializedElements bool
}

// Dependent reports whether any dependent flag is set for the shape.
func (fd *FieldDescriptor) Dependent() bool {
	if fd.Shape.IsMap() {
		return fd.DependentKey || fd.DependentValue
	}
	return fd.DependentElement
}

package record

import "strings"

// ColumnPath is a non-empty dotted sequence of field names descending
// through nested groups (spec.md §4.2).
type ColumnPath struct {
	segments []string
}

// NewColumnPath builds a ColumnPath from already-split segments.
func NewColumnPath(segments ...string) ColumnPath {
	cp := make([]string, len(segments))
	copy(cp, segments)

	return ColumnPath{segments: cp}
}

// ParseColumnPath splits a dotted field path such as "user.address.postcode".
func ParseColumnPath(dotted string) ColumnPath {
	return NewColumnPath(strings.Split(dotted, ".")...)
}

// IsEmpty reports whether the path has no remaining segments.
func (p ColumnPath) IsEmpty() bool {
	return len(p.segments) == 0
}

// Head returns the first segment of the path.
func (p ColumnPath) Head() string {
	if p.IsEmpty() {
		return ""
	}

	return p.segments[0]
}

// Tail returns the path with its head removed.
func (p ColumnPath) Tail() ColumnPath {
	if p.IsEmpty() {
		return p
	}

	return NewColumnPath(p.segments[1:]...)
}

// String renders the path back into dotted form.
func (p ColumnPath) String() string {
	return strings.Join(p.segments, ".")
}

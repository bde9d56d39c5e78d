// Package schema models a columnar schema as a recursive, immutable, tagged
// variant (spec.md §4.1): Primitive, Group, List, and Map. Representing
// schemas as a tagged variant rather than a class hierarchy keeps merging and
// projection (dropping partition columns) a matter of plain slice surgery.
package schema

import "github.com/pkg/errors"

// PhysicalType enumerates the primitive physical storage types a leaf
// SchemaDef can carry.
type PhysicalType int

const (
	Boolean PhysicalType = iota
	Int32
	Int64
	Int96
	Float
	Double
	BinaryType
	FixedByteArray
)

// Flag is a recognized metadata flag. Generated distinguishes schemas
// synthesized from a record's shape from user-specified ones.
type Flag int

const (
	Generated Flag = iota
)

type kind int

const (
	primitiveKind kind = iota
	groupKind
	listKind
	mapKind
)

// NamedDef pairs a field name with its SchemaDef, the concrete named type
// materialization consumers of this package operate on.
type NamedDef struct {
	Name string
	Def  Def
}

// Def is a recursive schema description. It is immutable and structurally
// shareable: every "setter" below returns a new value.
type Def struct {
	kind kind

	// primitive
	physicalType      PhysicalType
	logicalAnnotation string
	byteLength        int

	// group
	fields []NamedDef

	// list
	element *Def

	// map
	key   *Def
	value *Def

	required bool
	metadata map[Flag]bool
}

// Primitive constructs a leaf schema of the given physical type.
func Primitive(physicalType PhysicalType, required bool) Def {
	return Def{kind: primitiveKind, physicalType: physicalType, required: required}
}

// Group constructs a group (struct-like) schema. Fields are deduplicated by
// name, keeping the first occurrence, matching Message.merge semantics used
// when a projection names the same column via multiple paths.
func Group(fields []NamedDef, required bool) Def {
	return Def{kind: groupKind, fields: MergeFields(fields), required: required}
}

// List constructs a list schema wrapping the given element schema, which is
// materialized under the field name "element".
func List(element Def, required bool) Def {
	e := element

	return Def{kind: listKind, element: &e, required: required}
}

// Map constructs a map schema. The key schema must be required; this is
// enforced unconditionally (spec.md §3 invariant: "Map key schema is always
// required").
func Map(key, value Def, required bool) (Def, error) {
	if !key.required {
		return Def{}, errors.New("map key schema must be required")
	}

	k, v := key, value

	return Def{kind: mapKind, key: &k, value: &v, required: required}, nil
}

// MergeFields deduplicates a field slice by name, keeping the first
// occurrence of each name.
func MergeFields(fields []NamedDef) []NamedDef {
	seen := make(map[string]struct{}, len(fields))
	out := make([]NamedDef, 0, len(fields))

	for _, f := range fields {
		if _, ok := seen[f.Name]; ok {
			continue
		}

		seen[f.Name] = struct{}{}
		out = append(out, f)
	}

	return out
}

// Required reports whether this schema's repetition is required (as opposed
// to optional).
func (d Def) Required() bool {
	return d.required
}

// WithRequired returns a copy of d with required set.
func (d Def) WithRequired(required bool) Def {
	d.required = required
	return d
}

// WithLogicalAnnotation returns a copy of d (must be primitive) carrying the
// given logical type annotation (e.g. "UTF8", "TIMESTAMP_MILLIS").
func (d Def) WithLogicalAnnotation(annotation string) Def {
	d.logicalAnnotation = annotation
	return d
}

// LogicalAnnotation returns the primitive's logical annotation, if any.
func (d Def) LogicalAnnotation() string {
	return d.logicalAnnotation
}

// WithByteLength returns a copy of d (must be a FixedByteArray primitive)
// carrying the given fixed byte length.
func (d Def) WithByteLength(n int) Def {
	d.byteLength = n
	return d
}

// ByteLength returns the fixed byte length set via WithByteLength.
func (d Def) ByteLength() int {
	return d.byteLength
}

// WithMetadata returns a copy of d with flag set.
func (d Def) WithMetadata(flag Flag) Def {
	m := make(map[Flag]bool, len(d.metadata)+1)
	for k, v := range d.metadata {
		m[k] = v
	}

	m[flag] = true
	d.metadata = m

	return d
}

// HasMetadata reports whether flag is set on d.
func (d Def) HasMetadata(flag Flag) bool {
	return d.metadata[flag]
}

// IsPrimitive reports whether d is a Primitive variant.
func (d Def) IsPrimitive() bool { return d.kind == primitiveKind }

// IsGroup reports whether d is a Group variant.
func (d Def) IsGroup() bool { return d.kind == groupKind }

// IsList reports whether d is a List variant.
func (d Def) IsList() bool { return d.kind == listKind }

// IsMap reports whether d is a Map variant.
func (d Def) IsMap() bool { return d.kind == mapKind }

// PhysicalType returns the primitive physical type. Only meaningful when
// IsPrimitive.
func (d Def) PhysicalType() PhysicalType { return d.physicalType }

// Fields returns the group's fields in canonical order. Only meaningful when
// IsGroup.
func (d Def) Fields() []NamedDef {
	out := make([]NamedDef, len(d.fields))
	copy(out, d.fields)

	return out
}

// WithFields returns a copy of d (must be a Group) with its fields replaced.
func (d Def) WithFields(fields []NamedDef) Def {
	d.fields = MergeFields(fields)
	return d
}

// Element returns the list's element schema. Only meaningful when IsList.
func (d Def) Element() Def { return *d.element }

// Key returns the map's key schema. Only meaningful when IsMap.
func (d Def) Key() Def { return *d.key }

// Value returns the map's value schema. Only meaningful when IsMap.
func (d Def) Value() Def { return *d.value }

// Materialize pairs d with a field name, producing the concrete named type
// consumers (e.g. internal/columnar/parquet) translate into the underlying
// columnar library's field representation.
func (d Def) Materialize(name string) NamedDef {
	return NamedDef{Name: name, Def: d}
}

// WithoutFields returns a copy of the group schema d with the named fields
// removed, used to project out consumed partition columns. It reports
// whether the result is non-empty.
func (d Def) WithoutFields(names map[string]struct{}) (Def, bool) {
	kept := make([]NamedDef, 0, len(d.fields))

	for _, f := range d.fields {
		if _, drop := names[f.Name]; drop {
			continue
		}

		kept = append(kept, f)
	}

	d.fields = kept

	return d, len(kept) > 0
}

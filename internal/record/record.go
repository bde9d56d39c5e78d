package record

import "github.com/tnt-columnar/rotwriter/internal/rwerrors"

// Record is a field-name-keyed mapping that preserves insertion order (the
// schema defines canonical order; the record obeys it — spec.md §3). Record
// is a persistent value: With and Remove return a new Record rather than
// mutating the receiver.
type Record struct {
	order  []string
	values map[string]Value
}

// New builds an empty Record.
func New() Record {
	return Record{}
}

// Len returns the number of fields in the record.
func (r Record) Len() int {
	return len(r.order)
}

// Get looks up a top-level field by name.
func (r Record) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Fields returns the record's fields in canonical order.
func (r Record) Fields() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)

	return out
}

// With returns a copy of the record with name set to v, appended to the
// field order if it is new.
func (r Record) With(name string, v Value) Record {
	values := make(map[string]Value, len(r.values)+1)
	for k, val := range r.values {
		values[k] = val
	}

	_, existed := values[name]
	values[name] = v

	order := r.order
	if !existed {
		order = make([]string, len(r.order), len(r.order)+1)
		copy(order, r.order)
		order = append(order, name)
	}

	return Record{order: order, values: values}
}

// without returns a copy with name removed from both the map and the order.
func (r Record) without(name string) Record {
	values := make(map[string]Value, len(r.values))

	for k, val := range r.values {
		if k == name {
			continue
		}

		values[k] = val
	}

	order := make([]string, 0, len(r.order))

	for _, k := range r.order {
		if k == name {
			continue
		}

		order = append(order, k)
	}

	return Record{order: order, values: values}
}

// Remove descends path through nested groups and removes the leaf field it
// names, returning the removed value (nil if the leaf did not exist) and the
// resulting record (spec.md §4.2).
func (r Record) Remove(path ColumnPath) (Value, Record, error) {
	if path.IsEmpty() {
		return nil, r, nil
	}

	head := path.Head()
	tail := path.Tail()

	if tail.IsEmpty() {
		v, ok := r.Get(head)
		if !ok {
			return nil, r, nil
		}

		return v, r.without(head), nil
	}

	v, ok := r.Get(head)
	if !ok {
		return nil, r, nil
	}

	group, isGroup := v.(Group)
	if !isGroup {
		return nil, r, rwerrors.NewBadPartition("non-group traversal")
	}

	removed, newGroup, err := group.Record.Remove(tail)
	if err != nil {
		return nil, r, err
	}

	if removed == nil {
		return nil, r, nil
	}

	if newGroup.Len() == 0 {
		return removed, r.without(head), nil
	}

	return removed, r.With(head, Group{Record: newGroup}), nil
}

// Equal reports structural equality between two records, field order
// included.
func (r Record) Equal(other Record) bool {
	if len(r.order) != len(other.order) {
		return false
	}

	for i, name := range r.order {
		if other.order[i] != name {
			return false
		}

		av, _ := r.Get(name)
		bv, _ := other.Get(name)

		if !Equal(av, bv) {
			return false
		}
	}

	return true
}

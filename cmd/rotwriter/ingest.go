package main

import (
	"bufio"
	"encoding/json"
	"io"
	"iter"
	"sort"

	"github.com/pkg/errors"

	"github.com/tnt-columnar/rotwriter/internal/record"
	"github.com/tnt-columnar/rotwriter/internal/schema"
)

// decodeLine turns one flat JSON object into a record.Record, in the
// caller-supplied field order.
func decodeLine(line []byte, order []string) (record.Record, error) {
	var raw map[string]any

	if err := json.Unmarshal(line, &raw); err != nil {
		return record.Record{}, errors.WithMessage(err, "decode JSON line")
	}

	rec := record.New()

	for _, name := range order {
		v, ok := raw[name]
		if !ok {
			rec = rec.With(name, record.Null{})
			continue
		}

		rec = rec.With(name, toValue(v))
	}

	return rec, nil
}

func toValue(v any) record.Value {
	switch tv := v.(type) {
	case nil:
		return record.Null{}
	case bool:
		return record.Boolean(tv)
	case float64:
		return record.Double(tv)
	case string:
		return record.Binary(tv)
	default:
		// Nested objects/arrays are out of scope for the demo ingester; render
		// them as their JSON text so no input line is silently dropped.
		b, _ := json.Marshal(tv)

		return record.Binary(b)
	}
}

// inferSchema builds a flat Group schema from one sample JSON object,
// mapping JSON string/number/bool to the Binary/Double/Boolean physical
// types (spec.md §4.1's Generated flag: a schema synthesized from a
// record's shape rather than user-specified).
func inferSchema(sample map[string]any) (schema.Def, []string) {
	order := make([]string, 0, len(sample))
	for name := range sample {
		order = append(order, name)
	}

	sort.Strings(order)

	fields := make([]schema.NamedDef, 0, len(order))

	for _, name := range order {
		fields = append(fields, inferField(name, sample[name]))
	}

	return schema.Group(fields, true).WithMetadata(schema.Generated), order
}

func inferField(name string, v any) schema.NamedDef {
	var def schema.Def

	switch v.(type) {
	case bool:
		def = schema.Primitive(schema.Boolean, false)
	case float64:
		def = schema.Primitive(schema.Double, false)
	default:
		def = schema.Primitive(schema.BinaryType, false).WithLogicalAnnotation("UTF8")
	}

	return def.Materialize(name)
}

// jsonlRecords returns a lazy sequence over r's newline-delimited JSON
// objects, reusing the field order fixed by the first line's inferred
// schema. Decode errors are reported to onErr and stop iteration.
func jsonlRecords(r io.Reader, order []string, onErr func(error)) iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			rec, err := decodeLine(line, order)
			if err != nil {
				onErr(err)
				return
			}

			if !yield(rec) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			onErr(errors.WithMessage(err, "scan input"))
		}
	}
}

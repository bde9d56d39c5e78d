package parquet

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/pkg/errors"

	"github.com/tnt-columnar/rotwriter/internal/record"
	"github.com/tnt-columnar/rotwriter/internal/schema"
)

// appendValue appends one record.Value to an arrow builder according to
// def, recursing through Group/List/Map the same way the teacher's
// appendValuesToBuilder switches on reflect.Kind for the flat, primitive-only
// case (writer/parquet/parquet.go).
//
//nolint:cyclop
func appendValue(b array.Builder, def schema.Def, v record.Value) error {
	if _, isNull := v.(record.Null); isNull {
		b.AppendNull()
		return nil
	}

	switch {
	case def.IsPrimitive():
		return appendPrimitive(b, def, v)
	case def.IsGroup():
		return appendGroup(b, def, v)
	case def.IsList():
		return appendList(b, def, v)
	case def.IsMap():
		return appendMap(b, def, v)
	default:
		return errors.New("unknown schema variant")
	}
}

//nolint:cyclop
func appendPrimitive(b array.Builder, def schema.Def, v record.Value) error {
	switch def.PhysicalType() {
	case schema.Boolean:
		bv, ok := v.(record.Boolean)
		if !ok {
			return errors.Errorf("expected boolean value, got %T", v)
		}

		b.(*array.BooleanBuilder).Append(bool(bv))
	case schema.Int32:
		iv, ok := v.(record.Int32)
		if !ok {
			return errors.Errorf("expected int32 value, got %T", v)
		}

		b.(*array.Int32Builder).Append(int32(iv))
	case schema.Int64:
		iv, ok := v.(record.Int64)
		if !ok {
			return errors.Errorf("expected int64 value, got %T", v)
		}

		b.(*array.Int64Builder).Append(int64(iv))
	case schema.Int96:
		tv, ok := v.(record.Int96)
		if !ok {
			return errors.Errorf("expected int96 value, got %T", v)
		}

		b.(*array.TimestampBuilder).Append(arrow.Timestamp(int96ToMicros(tv)))
	case schema.Float:
		fv, ok := v.(record.Float)
		if !ok {
			return errors.Errorf("expected float value, got %T", v)
		}

		b.(*array.Float32Builder).Append(float32(fv))
	case schema.Double:
		dv, ok := v.(record.Double)
		if !ok {
			return errors.Errorf("expected double value, got %T", v)
		}

		b.(*array.Float64Builder).Append(float64(dv))
	case schema.BinaryType:
		bv, ok := v.(record.Binary)
		if !ok {
			return errors.Errorf("expected binary value, got %T", v)
		}

		if def.LogicalAnnotation() == "UTF8" {
			b.(*array.StringBuilder).Append(bv.AsString())
		} else {
			b.(*array.BinaryBuilder).Append([]byte(bv))
		}
	case schema.FixedByteArray:
		bv, ok := v.(record.Binary)
		if !ok {
			return errors.Errorf("expected binary value, got %T", v)
		}

		b.(*array.FixedSizeBinaryBuilder).Append([]byte(bv))
	default:
		return errors.Errorf("unknown physical type %v", def.PhysicalType())
	}

	return nil
}

func appendGroup(b array.Builder, def schema.Def, v record.Value) error {
	gv, ok := v.(record.Group)
	if !ok {
		return errors.Errorf("expected group value, got %T", v)
	}

	sb, ok := b.(*array.StructBuilder)
	if !ok {
		return errors.New("builder is not a struct builder")
	}

	sb.Append(true)

	for i, f := range def.Fields() {
		fv, ok := gv.Record.Get(f.Name)
		if !ok {
			fv = record.Null{}
		}

		if err := appendValue(sb.FieldBuilder(i), f.Def, fv); err != nil {
			return errors.WithMessagef(err, "field %q", f.Name)
		}
	}

	return nil
}

func appendList(b array.Builder, def schema.Def, v record.Value) error {
	lv, ok := v.(record.List)
	if !ok {
		return errors.Errorf("expected list value, got %T", v)
	}

	lb, ok := b.(*array.ListBuilder)
	if !ok {
		return errors.New("builder is not a list builder")
	}

	lb.Append(true)

	elemDef := def.Element()
	valueBuilder := lb.ValueBuilder()

	for _, elem := range lv.Values {
		if err := appendValue(valueBuilder, elemDef, elem); err != nil {
			return err
		}
	}

	return nil
}

func appendMap(b array.Builder, def schema.Def, v record.Value) error {
	mv, ok := v.(record.Map)
	if !ok {
		return errors.Errorf("expected map value, got %T", v)
	}

	mb, ok := b.(*array.MapBuilder)
	if !ok {
		return errors.New("builder is not a map builder")
	}

	mb.Append(true)

	keyDef := def.Key()
	valueDef := def.Value()
	keyBuilder := mb.KeyBuilder()
	itemBuilder := mb.ItemBuilder()

	for _, entry := range mv.Entries {
		if err := appendValue(keyBuilder, keyDef, entry.Key); err != nil {
			return err
		}

		if err := appendValue(itemBuilder, valueDef, entry.Value); err != nil {
			return err
		}
	}

	return nil
}

// int96ToMicros treats the first 8 of the 12 INT96 bytes as a little-endian
// microsecond counter. Full Julian-day INT96 decoding is out of scope here;
// callers needing that fidelity should encode through Int64 microseconds
// instead.
func int96ToMicros(v record.Int96) int64 {
	var out int64
	for i := 7; i >= 0; i-- {
		out = out<<8 | int64(v[i])
	}

	return out
}

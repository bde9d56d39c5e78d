package parquet

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/pkg/errors"

	"github.com/tnt-columnar/rotwriter/internal/schema"
)

// toArrowSchema materializes a top-level Group SchemaDef into an
// arrow.Schema, the concrete named type the underlying columnar library
// (apache/arrow-go's pqarrow writer) needs (spec.md §4.1 "materialize a
// named field description"). Grounded on the teacher's
// Writer.generateModelSchema, generalized from the teacher's fixed column
// list to an arbitrary recursive SchemaDef.
func toArrowSchema(def *schema.Def) (*arrow.Schema, error) {
	if !def.IsGroup() {
		return nil, errors.New("root schema must be a group")
	}

	fields, err := toArrowFields(def.Fields())
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, errors.New("schema has no fields after partition removal")
	}

	return arrow.NewSchema(fields, nil), nil
}

func toArrowFields(named []schema.NamedDef) ([]arrow.Field, error) {
	fields := make([]arrow.Field, 0, len(named))

	for _, n := range named {
		f, err := toArrowField(n)
		if err != nil {
			return nil, err
		}

		fields = append(fields, f)
	}

	return fields, nil
}

func toArrowField(named schema.NamedDef) (arrow.Field, error) {
	dt, err := toArrowType(named.Def)
	if err != nil {
		return arrow.Field{}, errors.WithMessagef(err, "field %q", named.Name)
	}

	return arrow.Field{Name: named.Name, Type: dt, Nullable: !named.Def.Required()}, nil
}

//nolint:cyclop
func toArrowType(def schema.Def) (arrow.DataType, error) {
	switch {
	case def.IsPrimitive():
		return primitiveArrowType(def)
	case def.IsGroup():
		fields, err := toArrowFields(def.Fields())
		if err != nil {
			return nil, err
		}

		return arrow.StructOf(fields...), nil
	case def.IsList():
		elemType, err := toArrowType(def.Element())
		if err != nil {
			return nil, err
		}

		return arrow.ListOf(elemType), nil
	case def.IsMap():
		keyType, err := toArrowType(def.Key())
		if err != nil {
			return nil, err
		}

		valueType, err := toArrowType(def.Value())
		if err != nil {
			return nil, err
		}

		return arrow.MapOf(keyType, valueType), nil
	default:
		return nil, errors.New("unknown schema variant")
	}
}

func primitiveArrowType(def schema.Def) (arrow.DataType, error) {
	switch def.PhysicalType() {
	case schema.Boolean:
		return arrow.FixedWidthTypes.Boolean, nil
	case schema.Int32:
		return arrow.PrimitiveTypes.Int32, nil
	case schema.Int64:
		return arrow.PrimitiveTypes.Int64, nil
	case schema.Int96:
		return arrow.FixedWidthTypes.Timestamp_us, nil
	case schema.Float:
		return arrow.PrimitiveTypes.Float32, nil
	case schema.Double:
		return arrow.PrimitiveTypes.Float64, nil
	case schema.BinaryType:
		if def.LogicalAnnotation() == "UTF8" {
			return arrow.BinaryTypes.String, nil
		}

		return arrow.BinaryTypes.Binary, nil
	case schema.FixedByteArray:
		return arrow.FixedSizeBinaryOf(def.ByteLength()), nil
	default:
		return nil, errors.Errorf("unknown physical type %v", def.PhysicalType())
	}
}

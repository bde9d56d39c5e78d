package parquet

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/require"

	"github.com/tnt-columnar/rotwriter/internal/schema"
)

func TestToArrowSchema(t *testing.T) {
	def := schema.Group([]schema.NamedDef{
		schema.Primitive(schema.Int32, true).Materialize("id"),
		schema.Primitive(schema.BinaryType, false).WithLogicalAnnotation("UTF8").Materialize("name"),
		schema.List(schema.Primitive(schema.Double, true), false).Materialize("scores"),
	}, true)

	arrowSchema, err := toArrowSchema(&def)
	require.NoError(t, err)

	require.Equal(t, "id", arrowSchema.Field(0).Name)
	require.Equal(t, arrow.PrimitiveTypes.Int32, arrowSchema.Field(0).Type)
	require.False(t, arrowSchema.Field(0).Nullable)

	require.Equal(t, arrow.BinaryTypes.String, arrowSchema.Field(1).Type)
	require.True(t, arrowSchema.Field(1).Nullable)

	require.Equal(t, arrow.ListOf(arrow.PrimitiveTypes.Float64), arrowSchema.Field(2).Type)
}

func TestToArrowSchemaRejectsNonGroupRoot(t *testing.T) {
	def := schema.Primitive(schema.Int32, true)

	_, err := toArrowSchema(&def)
	require.Error(t, err)
}

func TestToArrowSchemaRejectsEmptyFields(t *testing.T) {
	def := schema.Group(nil, true)

	_, err := toArrowSchema(&def)
	require.Error(t, err)
}

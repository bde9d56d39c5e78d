package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupMergeFieldsDedupesKeepingFirst(t *testing.T) {
	fields := []NamedDef{
		Primitive(Int32, true).Materialize("id"),
		Primitive(BinaryType, false).Materialize("id"),
		Primitive(Boolean, true).Materialize("active"),
	}

	g := Group(fields, true)

	require.Len(t, g.Fields(), 2)
	require.Equal(t, "id", g.Fields()[0].Name)
	require.Equal(t, Int32, g.Fields()[0].Def.PhysicalType())
}

func TestMapRequiresRequiredKey(t *testing.T) {
	_, err := Map(Primitive(BinaryType, false), Primitive(Int32, true), true)
	require.Error(t, err)

	m, err := Map(Primitive(BinaryType, true), Primitive(Int32, true), true)
	require.NoError(t, err)
	require.True(t, m.IsMap())
}

func TestWithoutFieldsProjectsOutNames(t *testing.T) {
	g := Group([]NamedDef{
		Primitive(Int32, true).Materialize("id"),
		Primitive(BinaryType, false).Materialize("color"),
	}, true)

	projected, nonEmpty := g.WithoutFields(map[string]struct{}{"color": {}})

	require.True(t, nonEmpty)
	require.Len(t, projected.Fields(), 1)
	require.Equal(t, "id", projected.Fields()[0].Name)
}

func TestWithoutFieldsReportsEmptyWhenAllDropped(t *testing.T) {
	g := Group([]NamedDef{
		Primitive(Int32, true).Materialize("id"),
	}, true)

	_, nonEmpty := g.WithoutFields(map[string]struct{}{"id": {}})

	require.False(t, nonEmpty)
}

func TestListAndMetadataFlag(t *testing.T) {
	l := List(Primitive(Double, true), false)

	require.True(t, l.IsList())
	require.Equal(t, Double, l.Element().PhysicalType())

	tagged := l.WithMetadata(Generated)
	require.True(t, tagged.HasMetadata(Generated))
	require.False(t, l.HasMetadata(Generated), "WithMetadata must not mutate the receiver")
}

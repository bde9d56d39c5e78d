package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseColumnPath(t *testing.T) {
	p := ParseColumnPath("user.address.zip")

	require.False(t, p.IsEmpty())
	require.Equal(t, "user", p.Head())
	require.Equal(t, "address.zip", p.Tail().String())
	require.Equal(t, "user.address.zip", p.String())
}

func TestColumnPathSingleSegment(t *testing.T) {
	p := ParseColumnPath("color")

	require.Equal(t, "color", p.Head())
	require.True(t, p.Tail().IsEmpty())
}

func TestNewColumnPathFromSegments(t *testing.T) {
	p := NewColumnPath("a", "b")

	require.Equal(t, "a.b", p.String())
}

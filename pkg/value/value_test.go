package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueFloatWidensIntegerTypes(t *testing.T) {
	f, ok := Of(int64(42)).Float()
	require.True(t, ok)
	require.Equal(t, 42.0, f)
}

func TestValueFloatRejectsIncompatibleType(t *testing.T) {
	_, ok := Of("not a number").Float()
	require.False(t, ok)
}

func TestValueArrayWrapsPlainSlice(t *testing.T) {
	vs, ok := Of([]any{1, "two", 3.0}).Array()
	require.True(t, ok)
	require.Len(t, vs, 3)
	s, ok := vs[1].String()
	require.True(t, ok)
	require.Equal(t, "two", s)
}

func TestValueObjectWrapsPlainMap(t *testing.T) {
	rec, ok := Of(map[string]any{"a": 1}).Object()
	require.True(t, ok)
	n, ok := rec.GetInt("a")
	require.True(t, ok)
	require.Equal(t, int64(1), n)
}

func TestRecordGettersReportAbsentKey(t *testing.T) {
	rec := Record{}
	_, ok := rec.GetString("missing")
	require.False(t, ok)
	_, ok = rec.GetBool("missing")
	require.False(t, ok)
	_, ok = rec.GetObject("missing")
	require.False(t, ok)
}

func TestRecordSetAndGetRoundTrip(t *testing.T) {
	rec := Record{}
	rec.Set("name", "metric")
	rec.Set("count", 5)
	rec.Set("nested", Record{"x": Of(1)})

	name, ok := rec.GetString("name")
	require.True(t, ok)
	require.Equal(t, "metric", name)

	nested, ok := rec.GetObject("nested")
	require.True(t, ok)
	x, ok := nested.GetInt("x")
	require.True(t, ok)
	require.Equal(t, int64(1), x)
}

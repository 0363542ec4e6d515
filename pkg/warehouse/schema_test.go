package warehouse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSchemaAssignsSequentialTags(t *testing.T) {
	s := NewSchema("metric", []FieldDef{
		{Name: "name", Type: TypeString},
		{Name: "value", Type: TypeDouble},
		{Name: "tags", Type: TypeBytes},
	})
	require.Len(t, s.Fields, 3)
	require.Equal(t, 1, s.Fields[0].Tag)
	require.Equal(t, 2, s.Fields[1].Tag)
	require.Equal(t, 3, s.Fields[2].Tag)
}

func TestNewSchemaSkipsUnknownTypesWithoutReservingTags(t *testing.T) {
	s := NewSchema("metric", []FieldDef{
		{Name: "name", Type: TypeString},
		{Name: "weird", Type: TypeUnspecified},
		{Name: "value", Type: TypeDouble},
	})
	require.Len(t, s.Fields, 2)
	_, ok := s.Field("weird")
	require.False(t, ok)
	valueField, ok := s.Field("value")
	require.True(t, ok)
	require.Equal(t, 2, valueField.Tag)
}

func TestNewSchemaNestsStructFieldsWithOwnTagSpace(t *testing.T) {
	s := NewSchema("event", []FieldDef{
		{Name: "id", Type: TypeInt64},
		{Name: "labels", Type: TypeStruct, Fields: []FieldDef{
			{Name: "env", Type: TypeString},
			{Name: "team", Type: TypeString},
		}},
	})
	labels, ok := s.Field("labels")
	require.True(t, ok)
	require.Equal(t, 2, labels.Tag)
	require.NotNil(t, labels.Sub)
	env, ok := labels.Sub.Field("env")
	require.True(t, ok)
	require.Equal(t, 1, env.Tag)
}

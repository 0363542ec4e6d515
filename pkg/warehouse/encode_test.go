package warehouse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ClusterCockpit/cc-pipeline/pkg/value"
)

func TestEncodeDropsUnknownRecordKeys(t *testing.T) {
	s := NewSchema("metric", []FieldDef{
		{Name: "name", Type: TypeString},
		{Name: "value", Type: TypeDouble},
	})
	rec := value.Record{}
	rec.Set("name", "cpu_load")
	rec.Set("value", 3.5)
	rec.Set("extra", "ignored")

	out, err := Encode(s, rec)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	// Re-deriving the length by hand: a length-delimited string field plus
	// a fixed64 double field, each carrying a one-byte key.
	require.Len(t, out, 1+1+len("cpu_load")+1+8)
	nameField, _ := s.Field("name")
	valueField, _ := s.Field("value")
	require.Equal(t, 1, nameField.Tag)
	require.Equal(t, 2, valueField.Tag)
}

func TestEncodeOmitsFieldsAbsentFromRecord(t *testing.T) {
	s := NewSchema("metric", []FieldDef{
		{Name: "name", Type: TypeString},
		{Name: "value", Type: TypeDouble},
	})
	rec := value.Record{}
	rec.Set("name", "cpu_load")

	out, err := Encode(s, rec)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	// Decode the single string field back out by hand to confirm no
	// second field was written for the absent "value" key.
	require.Equal(t, byte(1)<<3|wireLengthDelimited, out[0])
	require.Equal(t, byte(len("cpu_load")), out[1])
	require.Len(t, out, 2+len("cpu_load"))
}

func TestEncodeStructField(t *testing.T) {
	s := NewSchema("event", []FieldDef{
		{Name: "id", Type: TypeInt64},
		{Name: "labels", Type: TypeStruct, Fields: []FieldDef{
			{Name: "env", Type: TypeString},
		}},
	})
	labels := value.Record{}
	labels.Set("env", "prod")
	rec := value.Record{}
	rec.Set("id", int64(42))
	rec.Set("labels", labels)

	out, err := Encode(s, rec)
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

func TestEncodeTypeMismatchReturnsEncodeError(t *testing.T) {
	s := NewSchema("metric", []FieldDef{
		{Name: "value", Type: TypeDouble},
	})
	rec := value.Record{}
	rec.Set("value", "not-a-number")

	_, err := Encode(s, rec)
	require.Error(t, err)
	var encErr *EncodeError
	require.ErrorAs(t, err, &encErr)
	require.Equal(t, "value", encErr.Field)
}

func TestEncodeIsDeterministicAcrossRuns(t *testing.T) {
	s := NewSchema("metric", []FieldDef{
		{Name: "a", Type: TypeInt64},
		{Name: "b", Type: TypeInt64},
	})
	rec := value.Record{}
	rec.Set("a", int64(1))
	rec.Set("b", int64(2))

	first, err := Encode(s, rec)
	require.NoError(t, err)
	second, err := Encode(s, rec)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

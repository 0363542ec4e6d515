package dogstatsd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ClusterCockpit/cc-pipeline/pkg/value"
)

func TestDecodeBasicCount(t *testing.T) {
	rec, err := Decode([]byte("foo:1|c"), 0)
	require.NoError(t, err)
	require.Equal(t, "metric", must(rec.GetString("dogstatsd_type")))
	require.Equal(t, "foo", must(rec.GetString("metric")))
	require.Equal(t, "c", must(rec.GetString("type")))
	values, ok := rec.GetArray("values")
	require.True(t, ok)
	require.Len(t, values, 1)
	f, ok := values[0].Float()
	require.True(t, ok)
	require.Equal(t, 1.0, f)
}

func TestDecodeTimeWithSampleRate(t *testing.T) {
	rec, err := Decode([]byte("bar:3.5|ms|@0.5"), 0)
	require.NoError(t, err)
	require.Equal(t, "ms", must(rec.GetString("type")))
	sr, ok := rec.GetFloat("sample_rate")
	require.True(t, ok)
	require.Equal(t, 0.5, sr)
}

func TestDecodeCompletePayloadMultipleValues(t *testing.T) {
	rec, err := Decode([]byte("foo.bar:1.5:2.5:3.5|g|@0.25|#tag1,tag2|c:abcdef"), 0)
	require.NoError(t, err)
	values, ok := rec.GetArray("values")
	require.True(t, ok)
	require.Len(t, values, 3)
	tags, ok := rec.GetArray("tags")
	require.True(t, ok)
	require.Len(t, tags, 2)
	require.Equal(t, "abcdef", must(rec.GetString("container_id")))
}

func TestDecodePayloadWithTag(t *testing.T) {
	rec, err := Decode([]byte("foo:1|c|#onlytag"), 0)
	require.NoError(t, err)
	tags, ok := rec.GetArray("tags")
	require.True(t, ok)
	require.Len(t, tags, 1)
}

func TestDecodePayloadWithContainerID(t *testing.T) {
	rec, err := Decode([]byte("foo:1|c|c:deadbeef"), 0)
	require.NoError(t, err)
	require.Equal(t, "deadbeef", must(rec.GetString("container_id")))
}

func TestDecodeRejectsMissingColon(t *testing.T) {
	_, err := Decode([]byte("foo1|c"), 0)
	require.ErrorIs(t, err, ErrInvalidProtocol)
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	_, err := Decode([]byte("foo:1|z"), 0)
	require.ErrorIs(t, err, ErrInvalidProtocol)
}

func TestDecodeRejectsNonNumericValue(t *testing.T) {
	_, err := Decode([]byte("foo:notanumber|c"), 0)
	require.ErrorIs(t, err, ErrInvalidProtocol)
}

func TestDecodeBasicEvent(t *testing.T) {
	rec, err := Decode([]byte("_e{5,4}:hello|body"), 0)
	require.NoError(t, err)
	require.Equal(t, "event", must(rec.GetString("dogstatsd_type")))
	require.Equal(t, "hello", must(rec.GetString("title")))
	require.Equal(t, "body", must(rec.GetString("text")))
	titleLen, ok := rec.GetInt("title_length")
	require.True(t, ok)
	require.Equal(t, int64(5), titleLen)
}

func TestDecodeCompleteEvent(t *testing.T) {
	rec, err := Decode([]byte("_e{5,4}:hello|body|d:1234|h:myhost|k:aggkey|p:low|s:src|t:warning|#t1,t2|c:container123"), 0)
	require.NoError(t, err)
	ts, ok := rec.GetUint32("timestamp")
	require.True(t, ok)
	require.Equal(t, uint32(1234), ts)
	require.Equal(t, "myhost", must(rec.GetString("hostname")))
	require.Equal(t, "aggkey", must(rec.GetString("aggregation_key")))
	require.Equal(t, "low", must(rec.GetString("priority")))
	require.Equal(t, "src", must(rec.GetString("source")))
	require.Equal(t, "warning", must(rec.GetString("type")))
	tags, ok := rec.GetArray("tags")
	require.True(t, ok)
	require.Len(t, tags, 2)
	require.Equal(t, "container123", must(rec.GetString("container_id")))
}

func TestDecodeEventPreservesDeclaredLengthsVerbatim(t *testing.T) {
	// The declared lengths (99,99) deliberately disagree with the actual
	// title/text byte lengths below; decode must not recompute them.
	rec, err := Decode([]byte("_e{99,99}:hi|lo"), 0)
	require.NoError(t, err)
	titleLen, _ := rec.GetInt("title_length")
	textLen, _ := rec.GetInt("text_length")
	require.Equal(t, int64(99), titleLen)
	require.Equal(t, int64(99), textLen)
	require.Equal(t, "hi", must(rec.GetString("title")))
	require.Equal(t, "lo", must(rec.GetString("text")))
}

func TestDecodeBasicServiceCheck(t *testing.T) {
	rec, err := Decode([]byte("_sc|my.check|0"), 0)
	require.NoError(t, err)
	require.Equal(t, "service_check", must(rec.GetString("dogstatsd_type")))
	require.Equal(t, "my.check", must(rec.GetString("name")))
	status, ok := rec.GetInt("status")
	require.True(t, ok)
	require.Equal(t, int64(0), status)
}

func TestDecodeCompleteServiceCheck(t *testing.T) {
	rec, err := Decode([]byte("_sc|my.check|2|d:1234|h:myhost|#t1,t2|m:failure message|c:container123"), 0)
	require.NoError(t, err)
	status, _ := rec.GetInt("status")
	require.Equal(t, int64(2), status)
	require.Equal(t, "myhost", must(rec.GetString("hostname")))
	require.Equal(t, "failure message", must(rec.GetString("message")))
	require.Equal(t, "container123", must(rec.GetString("container_id")))
}

func TestDecodeRejectsServiceCheckStatusOutOfRange(t *testing.T) {
	_, err := Decode([]byte("_sc|my.check|9"), 0)
	require.ErrorIs(t, err, ErrInvalidProtocol)
}

func TestEncodeMetricRoundTrip(t *testing.T) {
	for _, raw := range []string{
		"foo:1|c",
		"foo.bar:1.5:2.5:3.5|g|@0.25|#tag1,tag2|c:abcdef",
		"bar:3.5|ms|@0.5",
	} {
		rec, err := Decode([]byte(raw), 0)
		require.NoError(t, err)
		out, err := Encode(rec)
		require.NoError(t, err)
		require.Equal(t, raw, string(out))
	}
}

func TestEncodeMetricRendersIntegralFloatsWithoutFraction(t *testing.T) {
	rec := value.Record{}
	rec.Set("dogstatsd_type", "metric")
	rec.Set("metric", "foo")
	rec.Set("values", []any{111.0})
	rec.Set("type", "g")

	out, err := Encode(rec)
	require.NoError(t, err)
	require.Equal(t, "foo:111|g", string(out))
}

func TestEncodeMetricPreservesHighPrecisionFloat(t *testing.T) {
	rec := value.Record{}
	rec.Set("dogstatsd_type", "metric")
	rec.Set("metric", "bench")
	rec.Set("values", []any{1620649445.3351967})
	rec.Set("type", "g")

	out, err := Encode(rec)
	require.NoError(t, err)
	require.Equal(t, "bench:1620649445.3351967|g", string(out))
}

func TestEncodeEventRoundTrip(t *testing.T) {
	raw := "_e{5,4}:hello|body|d:1234|h:myhost|k:aggkey|p:low|s:src|t:warning|#t1,t2|c:container123"
	rec, err := Decode([]byte(raw), 0)
	require.NoError(t, err)
	out, err := Encode(rec)
	require.NoError(t, err)
	require.Equal(t, raw, string(out))
}

func TestEncodeServiceCheckRoundTrip(t *testing.T) {
	raw := "_sc|my.check|2|d:1234|h:myhost|#t1,t2|m:failure message|c:container123"
	rec, err := Decode([]byte(raw), 0)
	require.NoError(t, err)
	out, err := Encode(rec)
	require.NoError(t, err)
	require.Equal(t, raw, string(out))
}

func TestEncodeRejectsUnknownDiscriminator(t *testing.T) {
	rec := value.Record{}
	rec.Set("dogstatsd_type", "bogus")
	_, err := Encode(rec)
	require.ErrorIs(t, err, ErrInvalidProtocol)
}

func TestEncodeMetricRejectsMissingValues(t *testing.T) {
	rec := value.Record{}
	rec.Set("dogstatsd_type", "metric")
	rec.Set("metric", "foo")
	rec.Set("type", "c")
	_, err := Encode(rec)
	require.ErrorIs(t, err, ErrInvalidProtocol)
}

func must[T any](v T, ok bool) T {
	if !ok {
		panic("must: value absent")
	}
	return v
}

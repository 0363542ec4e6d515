package dogstatsd

import (
	"strconv"
	"strings"

	"github.com/ClusterCockpit/cc-pipeline/pkg/value"
)

// Encode renders a decoded record back into DogStatsD wire form. Section
// emission order is fixed per datagram kind and is not derived from map
// iteration order: metric sections emit @, #, c: in that order; event
// sections emit d, h, k, p, s, t, #, c; service-check sections emit d, h,
// #, m, c.
func Encode(rec value.Record) ([]byte, error) {
	typ, ok := rec.GetString("dogstatsd_type")
	if !ok {
		return nil, ErrInvalidProtocol
	}
	switch typ {
	case "metric":
		return encodeMetric(rec)
	case "event":
		return encodeEvent(rec)
	case "service_check":
		return encodeServiceCheck(rec)
	default:
		return nil, ErrInvalidProtocol
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func encodeMetric(rec value.Record) ([]byte, error) {
	name, ok := rec.GetString("metric")
	if !ok {
		return nil, ErrInvalidProtocol
	}
	typ, ok := rec.GetString("type")
	if !ok {
		return nil, ErrInvalidProtocol
	}
	values, ok := rec.GetArray("values")
	if !ok || len(values) == 0 {
		return nil, ErrInvalidProtocol
	}

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte(':')
	for i, v := range values {
		if i > 0 {
			b.WriteByte(':')
		}
		f, ok := v.Float()
		if !ok {
			return nil, ErrInvalidProtocol
		}
		b.WriteString(formatFloat(f))
	}
	b.WriteByte('|')
	b.WriteString(typ)

	if v, present := rec["sample_rate"]; present {
		sr, ok := v.Float()
		if !ok {
			return nil, ErrInvalidProtocol
		}
		b.WriteString("|@")
		b.WriteString(formatFloat(sr))
	}
	if tags, ok := rec.GetArray("tags"); ok {
		joined, err := joinTags(tags)
		if err != nil {
			return nil, err
		}
		b.WriteString("|#")
		b.WriteString(joined)
	}
	if cid, ok := rec.GetString("container_id"); ok {
		b.WriteString("|c:")
		b.WriteString(cid)
	}
	return []byte(b.String()), nil
}

func encodeEvent(rec value.Record) ([]byte, error) {
	title, ok := rec.GetString("title")
	if !ok {
		return nil, ErrInvalidProtocol
	}
	titleLen, ok := rec.GetInt("title_length")
	if !ok {
		return nil, ErrInvalidProtocol
	}
	text, ok := rec.GetString("text")
	if !ok {
		return nil, ErrInvalidProtocol
	}
	textLen, ok := rec.GetInt("text_length")
	if !ok {
		return nil, ErrInvalidProtocol
	}

	var b strings.Builder
	b.WriteString("_e{")
	b.WriteString(strconv.FormatInt(titleLen, 10))
	b.WriteByte(',')
	b.WriteString(strconv.FormatInt(textLen, 10))
	b.WriteString("}:")
	b.WriteString(title)
	b.WriteByte('|')
	b.WriteString(text)

	if v, present := rec["timestamp"]; present {
		ts, ok := v.Uint32()
		if !ok {
			return nil, ErrInvalidProtocol
		}
		b.WriteString("|d:")
		b.WriteString(strconv.FormatUint(uint64(ts), 10))
	}
	if hostname, ok := rec.GetString("hostname"); ok {
		b.WriteString("|h:")
		b.WriteString(hostname)
	}
	if aggKey, ok := rec.GetString("aggregation_key"); ok {
		b.WriteString("|k:")
		b.WriteString(aggKey)
	}
	if priority, ok := rec.GetString("priority"); ok {
		b.WriteString("|p:")
		b.WriteString(priority)
	}
	if source, ok := rec.GetString("source"); ok {
		b.WriteString("|s:")
		b.WriteString(source)
	}
	if evtType, ok := rec.GetString("type"); ok {
		b.WriteString("|t:")
		b.WriteString(evtType)
	}
	if tags, ok := rec.GetArray("tags"); ok {
		joined, err := joinTags(tags)
		if err != nil {
			return nil, err
		}
		b.WriteString("|#")
		b.WriteString(joined)
	}
	if cid, ok := rec.GetString("container_id"); ok {
		b.WriteString("|c:")
		b.WriteString(cid)
	}
	return []byte(b.String()), nil
}

func encodeServiceCheck(rec value.Record) ([]byte, error) {
	name, ok := rec.GetString("name")
	if !ok {
		return nil, ErrInvalidProtocol
	}
	status, ok := rec.GetInt("status")
	if !ok {
		return nil, ErrInvalidProtocol
	}

	var b strings.Builder
	b.WriteString("_sc|")
	b.WriteString(name)
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(status, 10))

	if v, present := rec["timestamp"]; present {
		ts, ok := v.Uint32()
		if !ok {
			return nil, ErrInvalidProtocol
		}
		b.WriteString("|d:")
		b.WriteString(strconv.FormatUint(uint64(ts), 10))
	}
	if hostname, ok := rec.GetString("hostname"); ok {
		b.WriteString("|h:")
		b.WriteString(hostname)
	}
	if tags, ok := rec.GetArray("tags"); ok {
		joined, err := joinTags(tags)
		if err != nil {
			return nil, err
		}
		b.WriteString("|#")
		b.WriteString(joined)
	}
	if message, ok := rec.GetString("message"); ok {
		b.WriteString("|m:")
		b.WriteString(message)
	}
	if cid, ok := rec.GetString("container_id"); ok {
		b.WriteString("|c:")
		b.WriteString(cid)
	}
	return []byte(b.String()), nil
}

func joinTags(tags []value.Value) (string, error) {
	strs := make([]string, len(tags))
	for i, t := range tags {
		s, ok := t.String()
		if !ok {
			return "", ErrInvalidProtocol
		}
		strs[i] = s
	}
	return strings.Join(strs, ","), nil
}

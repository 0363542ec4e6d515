package dogstatsd

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ClusterCockpit/cc-pipeline/pkg/value"
)

// Decode parses one DogStatsD datagram into a schemaless record. Datagrams
// are self-delimited by the transport (one per UDP packet in the canonical
// deployment) and carry no length prefix of their own. ingestNs is carried
// through for callers that want to stamp the resulting Event but is not
// otherwise interpreted by the codec, mirroring the original decoder which
// accepts but ignores it.
func Decode(data []byte, ingestNs int64) (value.Record, error) {
	if len(data) < 2 || !utf8.Valid(data) {
		return nil, ErrInvalidProtocol
	}
	s := string(data)
	switch s[:2] {
	case "_e":
		return decodeEvent(s)
	case "_s":
		return decodeServiceCheck(s)
	default:
		return decodeMetric(s)
	}
}

func decodeMetric(s string) (value.Record, error) {
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return nil, ErrInvalidProtocol
	}
	name := s[:colon]
	rest := s[colon+1:]

	pipe := strings.IndexByte(rest, '|')
	if pipe < 0 {
		return nil, ErrInvalidProtocol
	}
	valuesPart, afterValues := rest[:pipe], rest[pipe+1:]

	valueStrs := strings.Split(valuesPart, ":")
	values := make([]any, len(valueStrs))
	for i, vs := range valueStrs {
		f, err := strconv.ParseFloat(vs, 64)
		if err != nil {
			return nil, ErrInvalidProtocol
		}
		values[i] = f
	}

	var typ, rem string
	switch {
	case strings.HasPrefix(afterValues, "ms"):
		typ, rem = "ms", afterValues[2:]
	case len(afterValues) > 0 && strings.ContainsRune("cdghs", rune(afterValues[0])):
		typ, rem = afterValues[0:1], afterValues[1:]
	default:
		return nil, ErrInvalidProtocol
	}

	m := value.Record{}
	m.Set("dogstatsd_type", "metric")
	m.Set("metric", name)
	m.Set("values", values)
	m.Set("type", typ)

	sections, err := splitOptionalSections(rem)
	if err != nil {
		return nil, err
	}
	for _, section := range sections {
		switch {
		case strings.HasPrefix(section, "@"):
			sr, err := strconv.ParseFloat(section[1:], 64)
			if err != nil {
				return nil, ErrInvalidProtocol
			}
			m.Set("sample_rate", sr)
		case strings.HasPrefix(section, "#"):
			m.Set("tags", strings.Split(section[1:], ","))
		case strings.HasPrefix(section, "c"):
			if len(section) < 2 || section[1] != ':' {
				return nil, ErrInvalidProtocol
			}
			m.Set("container_id", section[2:])
		}
	}
	return m, nil
}

func decodeEvent(s string) (value.Record, error) {
	closeBrace := strings.IndexByte(s, '}')
	if !strings.HasPrefix(s, "_e{") || closeBrace < 0 {
		return nil, ErrInvalidProtocol
	}
	lens := strings.SplitN(s[3:closeBrace], ",", 2)
	if len(lens) != 2 {
		return nil, ErrInvalidProtocol
	}
	titleLen, err := strconv.ParseInt(lens[0], 10, 32)
	if err != nil {
		return nil, ErrInvalidProtocol
	}
	textLen, err := strconv.ParseInt(lens[1], 10, 32)
	if err != nil {
		return nil, ErrInvalidProtocol
	}
	if closeBrace+1 >= len(s) || s[closeBrace+1] != ':' {
		return nil, ErrInvalidProtocol
	}
	afterColon := s[closeBrace+2:]

	titlePipe := strings.IndexByte(afterColon, '|')
	if titlePipe < 0 {
		return nil, ErrInvalidProtocol
	}
	title, afterTitle := afterColon[:titlePipe], afterColon[titlePipe+1:]

	var text, rem string
	if textPipe := strings.IndexByte(afterTitle, '|'); textPipe < 0 {
		text = afterTitle
	} else {
		text, rem = afterTitle[:textPipe], afterTitle[textPipe+1:]
	}

	m := value.Record{}
	m.Set("dogstatsd_type", "event")
	m.Set("title_length", int32(titleLen))
	m.Set("text_length", int32(textLen))
	m.Set("title", title)
	m.Set("text", text)

	for _, section := range strings.Split(rem, "|") {
		switch {
		case section == "":
			continue
		case strings.HasPrefix(section, "d:"):
			ts, err := strconv.ParseUint(section[2:], 10, 32)
			if err != nil {
				return nil, ErrInvalidProtocol
			}
			m.Set("timestamp", uint32(ts))
		case strings.HasPrefix(section, "h:"):
			m.Set("hostname", section[2:])
		case strings.HasPrefix(section, "k:"):
			m.Set("aggregation_key", section[2:])
		case strings.HasPrefix(section, "p:"):
			m.Set("priority", section[2:])
		case strings.HasPrefix(section, "s:"):
			m.Set("source", section[2:])
		case strings.HasPrefix(section, "t:"):
			m.Set("type", section[2:])
		case strings.HasPrefix(section, "#"):
			m.Set("tags", strings.Split(section[1:], ","))
		case strings.HasPrefix(section, "c:"):
			m.Set("container_id", section[2:])
		}
	}
	return m, nil
}

func decodeServiceCheck(s string) (value.Record, error) {
	if !strings.HasPrefix(s, "_sc|") {
		return nil, ErrInvalidProtocol
	}
	rest := s[len("_sc|"):]
	pipe := strings.IndexByte(rest, '|')
	if pipe < 0 {
		return nil, ErrInvalidProtocol
	}
	name, afterName := rest[:pipe], rest[pipe+1:]
	if len(afterName) == 0 || afterName[0] < '0' || afterName[0] > '3' {
		return nil, ErrInvalidProtocol
	}
	status := int64(afterName[0] - '0')

	sections, err := splitOptionalSections(afterName[1:])
	if err != nil {
		return nil, err
	}

	m := value.Record{}
	m.Set("dogstatsd_type", "service_check")
	m.Set("name", name)
	m.Set("status", status)

	for _, section := range sections {
		switch {
		case strings.HasPrefix(section, "d:"):
			ts, err := strconv.ParseUint(section[2:], 10, 32)
			if err != nil {
				return nil, ErrInvalidProtocol
			}
			m.Set("timestamp", uint32(ts))
		case strings.HasPrefix(section, "h:"):
			m.Set("hostname", section[2:])
		case strings.HasPrefix(section, "#"):
			m.Set("tags", strings.Split(section[1:], ","))
		case strings.HasPrefix(section, "m:"):
			m.Set("message", section[2:])
		case strings.HasPrefix(section, "c:"):
			m.Set("container_id", section[2:])
		}
	}
	return m, nil
}

// splitOptionalSections splits the pipe-delimited "|SECTION|SECTION..."
// tail of a datagram. An empty tail yields no sections; a non-empty tail
// that doesn't start with '|' is malformed.
func splitOptionalSections(rem string) ([]string, error) {
	if rem == "" {
		return nil, nil
	}
	if rem[0] != '|' {
		return nil, ErrInvalidProtocol
	}
	return strings.Split(rem[1:], "|"), nil
}

package tsdb

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/influxdata/line-protocol/v2/lineprotocol"
)

// ParsedLine is one decoded line-protocol record.
type ParsedLine struct {
	Measurement string
	Tags        map[string]string
	Fields      map[string]FieldValue
	Time        time.Time
}

// FieldValue is one field's scalar value plus its language-independent
// type tag (the textual tag for the field's value type).
type FieldValue struct {
	Value float64
	Type  string
}

// ParseBatch decodes every line of batchText, in order, skipping and
// logging any line that fails to parse; a parse failure is logged, never
// fails the batch.
func ParseBatch(batchText string) []ParsedLine {
	dec := lineprotocol.NewDecoderWithBytes([]byte(batchText))
	var out []ParsedLine
	for dec.Next() {
		line, err := decodeOneLine(dec)
		if err != nil {
			logParseError(err)
			continue
		}
		out = append(out, line)
	}
	return out
}

func decodeOneLine(dec *lineprotocol.Decoder) (ParsedLine, error) {
	var line ParsedLine

	measurement, err := dec.Measurement()
	if err != nil {
		return line, fmt.Errorf("tsdb: measurement: %w", err)
	}
	line.Measurement = string(measurement)
	line.Tags = make(map[string]string)
	line.Fields = make(map[string]FieldValue)

	for {
		key, val, err := dec.NextTag()
		if err != nil {
			return line, fmt.Errorf("tsdb: tag: %w", err)
		}
		if key == nil {
			break
		}
		line.Tags[string(key)] = string(val)
	}

	for {
		key, val, err := dec.NextField()
		if err != nil {
			return line, fmt.Errorf("tsdb: field: %w", err)
		}
		if key == nil {
			break
		}
		fv, err := decodeFieldValue(val)
		if err != nil {
			return line, fmt.Errorf("tsdb: field %q: %w", string(key), err)
		}
		line.Fields[string(key)] = fv
	}

	t, err := dec.Time(lineprotocol.Nanosecond, time.Time{})
	if err != nil {
		return line, fmt.Errorf("tsdb: time: %w", err)
	}
	line.Time = truncateToSecondPrefix(t)
	return line, nil
}

// decodeFieldValue converts a decoded field to a real number plus its
// type tag. Boolean and string fields are rejected: a sample's value
// must be a real number.
func decodeFieldValue(val lineprotocol.Value) (FieldValue, error) {
	switch val.Kind() {
	case lineprotocol.Float:
		return FieldValue{Value: val.FloatV(), Type: "float"}, nil
	case lineprotocol.Int:
		return FieldValue{Value: float64(val.IntV()), Type: "int"}, nil
	case lineprotocol.Uint:
		return FieldValue{Value: float64(val.UintV()), Type: "int"}, nil
	default:
		return FieldValue{}, fmt.Errorf("unsupported field value kind %s", val.Kind())
	}
}

// truncateToSecondPrefix keeps only the first 10 decimal digits of the
// nanosecond timestamp (seconds since epoch): the value is rendered as a
// decimal string and truncated, rather than divided by 1e9.
func truncateToSecondPrefix(t time.Time) time.Time {
	nanos := t.UnixNano()
	s := strconv.FormatInt(nanos, 10)
	if len(s) > 10 {
		s = s[:10]
	}
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return t.Truncate(time.Second).UTC()
	}
	return time.Unix(secs, 0).UTC()
}

func logParseError(err error) {
	parseErrorLogger(err)
}

// parseErrorLogger is a package-level hook so tests can capture parse-error
// logging without depending on the real log output.
var parseErrorLogger = func(err error) {
	log.Printf("tsdb: skipping unparsable line: %v", err)
}

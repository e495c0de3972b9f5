package linecsv

import (
	"encoding"
	"fmt"
)

// Row is one logical record.
type Row struct {
	// Fields holds the converted values; nil marks an absent field.
	Fields []any
	// Unconverted holds the fields as parsed when Options.UnconvertedFields
	// is set, and is nil otherwise.
	Unconverted []any
	// Headers are the captured headers, shared by every row of a stream.
	Headers []string
	// IsHeader marks the header row returned under Options.ReturnHeaders.
	IsHeader bool
}

// Strings renders the fields as strings, absent fields as "".
func (row *Row) Strings() []string {
	out := make([]string, len(row.Fields))
	for i, f := range row.Fields {
		switch v := f.(type) {
		case nil:
		case string:
			out[i] = v
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

// pipeline applies substitutes and converters to parsed fields.
type pipeline struct {
	converters       []Converter
	headerConverters []Converter
	nilValue         any
	emptyValue       any
}

// convert rewrites fields in place and returns them.
func (p *pipeline) convert(fields []any, line int, headers []string) []any {
	if headers == nil && len(p.converters) == 0 && p.nilValue == nil && p.emptyValue == nil {
		return fields
	}
	for i, f := range fields {
		switch v := f.(type) {
		case nil:
			f = p.nilValue
		case string:
			if v == "" && p.emptyValue != nil {
				f = p.emptyValue
			}
		}
		for _, conv := range p.converters {
			s, ok := f.(string)
			if !ok {
				break
			}
			info := FieldInfo{Index: i, Line: line}
			if i < len(headers) {
				info.Header = headers[i]
			}
			f = conv(s, info)
		}
		fields[i] = f
	}
	return fields
}

// headers runs the header converters; absent headers become "" and
// non-string results are rendered with fmt.Sprint.
func (p *pipeline) headers(raw []any, line int) []string {
	out := make([]string, len(raw))
	for i, f := range raw {
		s, ok := f.(string)
		if !ok {
			continue
		}
		var v any = s
		for _, conv := range p.headerConverters {
			str, ok := v.(string)
			if !ok {
				break
			}
			v = conv(str, FieldInfo{Index: i, Line: line})
		}
		if str, ok := v.(string); ok {
			out[i] = str
		} else {
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

// fieldString coerces an output value to text.
func fieldString(f any) (string, error) {
	switch v := f.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case encoding.TextMarshaler:
		b, err := v.MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}

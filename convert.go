package linecsv

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldInfo describes the field a Converter is applied to.
type FieldInfo struct {
	// Index is the 0-based column.
	Index int
	// Line is the logical row number the field belongs to.
	Line int
	// Header is the column header, or "" when headers are not in use.
	Header string
}

// Converter turns a raw field into a richer value. A converter that cannot
// handle the field returns it unchanged.
type Converter func(field string, info FieldInfo) any

// FieldConverter adapts a converter that does not need FieldInfo.
func FieldConverter(fn func(field string) any) Converter {
	return func(field string, _ FieldInfo) any { return fn(field) }
}

type registryEntry struct {
	fn    Converter
	combo []string
}

// Registry maps converter names to converters or to ordered lists of other
// names. A Registry is owned by its caller and is not safe for concurrent
// registration.
type Registry struct {
	entries map[string]registryEntry
}

// NewRegistry returns a registry holding the built-in field converters:
// integer, float, numeric, date, date_time and all.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]registryEntry)}
	r.Register("integer", FieldConverter(convertInteger))
	r.Register("float", FieldConverter(convertFloat))
	r.RegisterCombo("numeric", "integer", "float")
	r.Register("date", FieldConverter(convertDate))
	r.Register("date_time", FieldConverter(convertDateTime))
	r.RegisterCombo("all", "date_time", "numeric")
	return r
}

// NewHeaderRegistry returns a registry holding the built-in header
// converters: downcase and symbol.
func NewHeaderRegistry() *Registry {
	r := &Registry{entries: make(map[string]registryEntry)}
	r.Register("downcase", FieldConverter(convertDowncase))
	r.Register("symbol", FieldConverter(convertSymbol))
	return r
}

// Register binds name to fn, replacing any previous entry.
func (r *Registry) Register(name string, fn Converter) {
	if r.entries == nil {
		r.entries = make(map[string]registryEntry)
	}
	r.entries[name] = registryEntry{fn: fn}
}

// RegisterCombo binds name to an ordered list of other registered names.
func (r *Registry) RegisterCombo(name string, names ...string) {
	if r.entries == nil {
		r.entries = make(map[string]registryEntry)
	}
	r.entries[name] = registryEntry{combo: append([]string(nil), names...)}
}

// Expand flattens names into converters, expanding combos recursively.
func (r *Registry) Expand(names ...string) ([]Converter, error) {
	var out []Converter
	for _, name := range names {
		var err error
		out, err = r.expand(out, name, nil)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Registry) expand(out []Converter, name string, path []string) ([]Converter, error) {
	for _, seen := range path {
		if seen == name {
			return nil, &ConfigError{
				Option: "converters",
				Reason: fmt.Sprintf("combo cycle %s", strings.Join(append(path, name), " -> ")),
			}
		}
	}
	entry, ok := r.entries[name]
	if !ok {
		return nil, &ConfigError{Option: "converters", Reason: fmt.Sprintf("unknown converter %q", name)}
	}
	if entry.fn != nil {
		return append(out, entry.fn), nil
	}
	path = append(path, name)
	for _, child := range entry.combo {
		var err error
		out, err = r.expand(out, child, path)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func convertInteger(field string) any {
	if n, err := strconv.ParseInt(strings.TrimSpace(field), 0, 64); err == nil {
		return n
	}
	return field
}

func convertFloat(field string) any {
	s := strings.TrimSpace(field)
	f, err := strconv.ParseFloat(s, 64)
	if err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return field
}

var dateLayouts = []string{"2006-01-02", "2006/01/02", "02 Jan 2006", "Jan 2, 2006"}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

func convertDate(field string) any {
	return parseTime(field, dateLayouts)
}

func convertDateTime(field string) any {
	return parseTime(field, dateTimeLayouts)
}

func parseTime(field string, layouts []string) any {
	s := strings.TrimSpace(field)
	if s == "" {
		return field
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return field
}

var (
	symbolStripper = regexp.MustCompile(`[^\p{L}\p{N}\s_]+`)
	symbolSpaces   = regexp.MustCompile(`\s+`)
)

// Casers carry state, so each call builds its own.
func convertDowncase(header string) any {
	return cases.Lower(language.Und).String(header)
}

func convertSymbol(header string) any {
	s := strings.TrimSpace(cases.Lower(language.Und).String(header))
	s = symbolStripper.ReplaceAllString(s, "")
	return symbolSpaces.ReplaceAllString(s, "_")
}

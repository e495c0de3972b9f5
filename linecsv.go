package linecsv

import (
	"io"
	"strings"
)

// Parse reads every row of s.
func Parse(s string, opts Options) ([]*Row, error) {
	r, err := NewReader(strings.NewReader(s), opts)
	if err != nil {
		return nil, err
	}
	return r.ReadAll()
}

// ParseLine returns the first row of s, or nil when s holds no row.
func ParseLine(s string, opts Options) (*Row, error) {
	r, err := NewReader(strings.NewReader(s), opts)
	if err != nil {
		return nil, err
	}
	row, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	return row, err
}

// Generate writes records and returns the composed text.
func Generate(records [][]any, opts Options) (string, error) {
	var sb strings.Builder
	w, err := NewWriter(&sb, opts)
	if err != nil {
		return "", err
	}
	if err := w.WriteAll(records); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// GenerateLine writes a single record and returns it with its row separator.
func GenerateLine(fields []any, opts Options) (string, error) {
	return Generate([][]any{fields}, opts)
}

package linecsv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineSubstitutes(t *testing.T) {
	rows, err := Parse(",\"\",a\n", Options{NilValue: "NULL", EmptyValue: 0})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []any{"NULL", 0, "a"}, rows[0].Fields)
}

func TestPipelineNilValueIsConverted(t *testing.T) {
	rows, err := Parse("1,\n", Options{NilValue: "7", Converters: []string{"integer"}})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(7)}, rows[0].Fields)
}

func TestPipelineShortCircuit(t *testing.T) {
	var seen []string
	toInt := FieldConverter(func(f string) any {
		if f == "one" {
			return 1
		}
		return f
	})
	record := func(f string, _ FieldInfo) any {
		seen = append(seen, f)
		return strings.ToUpper(f)
	}

	rows, err := Parse("one,two\n", Options{ConverterFuncs: []Converter{toInt, record}})
	require.NoError(t, err)
	assert.Equal(t, []any{1, "TWO"}, rows[0].Fields)
	assert.Equal(t, []string{"two"}, seen)
}

func TestPipelineFastPath(t *testing.T) {
	var p pipeline
	fields := []any{"a", nil}
	out := p.convert(fields, 1, nil)
	require.Len(t, out, 2)
	assert.True(t, &out[0] == &fields[0])
	assert.Equal(t, []any{"a", nil}, out)
}

func TestUnconvertedFields(t *testing.T) {
	rows, err := Parse("1,x,\n\n", Options{Converters: []string{"integer"}, UnconvertedFields: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{int64(1), "x", nil}, rows[0].Fields)
	assert.Equal(t, []any{"1", "x", nil}, rows[0].Unconverted)
	assert.Equal(t, []any{}, rows[1].Unconverted)

	rows, err = Parse("1\n", Options{Converters: []string{"integer"}})
	require.NoError(t, err)
	assert.Nil(t, rows[0].Unconverted)
}

func TestRowStrings(t *testing.T) {
	row := &Row{Fields: []any{"a", nil, int64(3), 1.5}}
	assert.Equal(t, []string{"a", "", "3", "1.5"}, row.Strings())
}

func TestHeadersFromFirstRow(t *testing.T) {
	r, err := NewReader(strings.NewReader("name,age\nann,30\nbob,41\n"), Options{
		UseHeaders: true,
		Converters: []string{"integer"},
	})
	require.NoError(t, err)
	assert.Nil(t, r.Headers())

	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"name", "age"}, r.Headers())
	assert.Equal(t, []string{"name", "age"}, rows[0].Headers)
	assert.Equal(t, []any{"ann", int64(30)}, rows[0].Fields)
	assert.False(t, rows[0].IsHeader)
	assert.Equal(t, 3, r.LineNo())
}

func TestReturnHeadersFromFirstRow(t *testing.T) {
	rows, err := Parse("Name,Age\nann,30\n", Options{
		UseHeaders:       true,
		ReturnHeaders:    true,
		HeaderConverters: []string{"downcase"},
		Converters:       []string{"integer"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.True(t, rows[0].IsHeader)
	assert.Equal(t, []any{"Name", "Age"}, rows[0].Fields)
	assert.Equal(t, []string{"name", "age"}, rows[0].Headers)
	assert.Equal(t, []any{"ann", int64(30)}, rows[1].Fields)
}

func TestExplicitHeaders(t *testing.T) {
	rows, err := Parse("1,2\n", Options{Headers: []string{"x", "y"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"x", "y"}, rows[0].Headers)
	assert.Equal(t, []string{"1", "2"}, rows[0].Strings())

	rows, err = Parse("1,2\n", Options{Headers: []string{"x", "y"}, ReturnHeaders: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].IsHeader)
	assert.Equal(t, []any{"x", "y"}, rows[0].Fields)
	assert.False(t, rows[1].IsHeader)
}

func TestHeaderRowString(t *testing.T) {
	r, err := NewReader(strings.NewReader("1;2\n"), Options{ColSep: ";", HeaderRow: "p;\"q;r\""})
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "q;r"}, r.Headers())

	row, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "q;r"}, row.Headers)
	assert.Equal(t, 1, r.LineNo())
}

func TestHeaderConverterNonString(t *testing.T) {
	rows, err := Parse("a,b\n1,2\n", Options{
		UseHeaders: true,
		HeaderConverterFuncs: []Converter{func(h string, info FieldInfo) any {
			return info.Index
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, rows[0].Headers)
}

func TestBlankRowBeforeHeaders(t *testing.T) {
	rows, err := Parse("\nh\nv\n", Options{UseHeaders: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Empty(t, rows[0].Fields)
	assert.Nil(t, rows[0].Headers)
	assert.Equal(t, []string{"h"}, rows[1].Headers)
	assert.Equal(t, []any{"v"}, rows[1].Fields)
}

package linecsv

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func FuzzReaderConsistency(f *testing.F) {
	seeds := []string{
		"",
		"a,b,c\n",
		"a,\"b,b\",c\n",
		"a,\"b\nc\",d\n",
		"\"unterminated\n",
		"a\"b,c\n",
		"one\r\ntwo\r\n",
		"\n\ntrailing,newline\n",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		if len(input) > 1<<12 {
			t.Skip()
		}

		recordsManual, errManual := readRecordsSequential(input)
		recordsAll, errAll := readRecordsAll(input)

		if !sameReaderError(errManual, errAll) {
			t.Fatalf("ReadAll mismatch: errManual=%v errAll=%v input=%q", errManual, errAll, truncateForMessage(input))
		}
		if errManual == nil && !reflect.DeepEqual(recordsManual, recordsAll) {
			t.Fatalf("records mismatch with ReadAll:\nmanual=%v\nreadAll=%v\ninput=%q", recordsManual, recordsAll, truncateForMessage(input))
		}
	})
}

func FuzzWriteParseRoundTrip(f *testing.F) {
	f.Add("a", "b", "c")
	f.Add("a,b", "\"", "")
	f.Add("x\r\ny", "\"\"", ",\"")
	f.Add("", "", "")

	f.Fuzz(func(t *testing.T, a, b, c string) {
		for _, s := range []string{a, b, c} {
			if !utf8.ValidString(s) {
				t.Skip()
			}
		}
		want := []string{a, b, c}

		line, err := GenerateLine([]any{a, b, c}, Options{})
		if err != nil {
			t.Fatalf("GenerateLine(%q) error = %v", want, err)
		}
		rows, err := Parse(line, Options{RowSep: "\n"})
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", line, err)
		}
		if len(rows) != 1 || !reflect.DeepEqual(rows[0].Strings(), want) {
			t.Fatalf("round trip of %q through %q gave %v", want, line, rows)
		}
	})
}

func readRecordsSequential(input string) ([][]string, error) {
	r, err := NewReader(strings.NewReader(input), Options{})
	if err != nil {
		return nil, err
	}

	var out [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, row.Strings())
	}
}

func readRecordsAll(input string) ([][]string, error) {
	rows, err := Parse(input, Options{})
	if err != nil {
		return nil, err
	}
	var out [][]string
	for _, row := range rows {
		out = append(out, row.Strings())
	}
	return out, nil
}

func sameReaderError(a, b error) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	sigA, lineA := readerErrorSignature(a)
	sigB, lineB := readerErrorSignature(b)
	return sigA == sigB && lineA == lineB
}

func readerErrorSignature(err error) (sig string, line int) {
	var perr *ParseError
	if errors.As(err, &perr) {
		return perr.Err.Error(), perr.Line
	}
	return err.Error(), 0
}

func truncateForMessage(s string) string {
	const max = 256
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

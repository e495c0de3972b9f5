package linecsv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

var (
	errNilWriter      = errors.New("linecsv: writer is nil")
	errWriterNoTarget = errors.New("linecsv: writer destination cannot be nil")
	errNoHeaders      = errors.New("linecsv: writing a map requires headers")
)

// Writer emits delimited records. Output is buffered; call Flush when done.
// A Writer is not safe for concurrent use.
type Writer struct {
	dst *bufio.Writer
	out io.Writer
	cfg *config
	// check validates records against the target encoding before they are
	// handed to the streaming encoder in out.
	check *encoding.Encoder

	headers    []string
	emitHeader bool
	lineNo     int

	buf []byte
	err error
}

// NewWriter resolves opts and creates a Writer over w, panicking if w is nil.
// An automatic row separator resolves to "\n".
func NewWriter(w io.Writer, opts Options) (*Writer, error) {
	if w == nil {
		panic(errWriterNoTarget.Error())
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.autoRow {
		cfg.setRowSep(defaultRowSep)
	}

	wr := &Writer{cfg: cfg, buf: make([]byte, 0, 256)}
	explicit, err := cfg.explicitHeaders()
	if err != nil {
		return nil, err
	}
	if explicit != nil {
		wr.headers = cfg.pipe.headers(explicit, 0)
		wr.emitHeader = cfg.writeHeaders
	}
	wr.Reset(w)
	return wr, nil
}

// Reset points the Writer at dst, keeping its configuration and explicit
// headers. The line counter starts over.
func (w *Writer) Reset(dst io.Writer) {
	if w == nil {
		panic(errNilWriter.Error())
	}
	if dst == nil {
		panic(errWriterNoTarget.Error())
	}
	if w.dst == nil {
		w.dst = bufio.NewWriterSize(dst, defaultBufferSize)
	} else {
		w.dst.Reset(dst)
	}
	w.out = w.dst
	w.check = nil
	if enc := outputEncoder(w.cfg.enc, w.cfg.replace); enc != nil {
		w.out = transform.NewWriter(w.dst, enc)
		if !w.cfg.replace {
			w.check = w.cfg.enc.NewEncoder()
		}
	}
	if w.cfg.useHeaders && w.cfg.headerList == nil && w.cfg.headerRow == "" {
		w.headers = nil
	} else if w.headers != nil {
		w.emitHeader = w.cfg.writeHeaders
	}
	w.lineNo = 0
	w.err = nil
}

// Write emits one record terminated by the row separator. Absent fields
// are written as nil.
func (w *Writer) Write(fields []any) error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}

	if w.emitHeader {
		headers := make([]any, len(w.headers))
		for i, h := range w.headers {
			headers[i] = h
		}
		if err := w.writeRecord(headers); err != nil {
			return err
		}
		w.emitHeader = false
	}
	if w.cfg.useHeaders && w.headers == nil {
		headers := make([]string, len(fields))
		for i, f := range fields {
			if f != nil {
				headers[i], _ = fieldString(f)
			}
		}
		w.headers = headers
	}
	return w.writeRecord(fields)
}

// WriteStrings is Write for plain string records.
func (w *Writer) WriteStrings(record []string) error {
	fields := make([]any, len(record))
	for i, s := range record {
		fields[i] = s
	}
	return w.Write(fields)
}

// WriteMap writes the values of m in header order; missing keys are absent.
func (w *Writer) WriteMap(m map[string]any) error {
	if w == nil {
		return errNilWriter
	}
	if w.headers == nil {
		return errNoHeaders
	}
	fields := make([]any, len(w.headers))
	for i, h := range w.headers {
		fields[i] = m[h]
	}
	return w.Write(fields)
}

// WriteAll writes multiple records, stopping at the first error.
func (w *Writer) WriteAll(records [][]any) error {
	if w == nil {
		return errNilWriter
	}
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes pending buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}
	if err := w.dst.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Error reports the first error encountered by the writer.
func (w *Writer) Error() error {
	if w == nil {
		return errNilWriter
	}
	return w.err
}

// LineNo returns the number of records written since the last Reset.
func (w *Writer) LineNo() int { return w.lineNo }

// Headers returns the headers records are written against.
func (w *Writer) Headers() []string { return append([]string(nil), w.headers...) }

func (w *Writer) writeRecord(fields []any) error {
	w.buf = w.buf[:0]
	for i, f := range fields {
		if i > 0 {
			w.buf = append(w.buf, w.cfg.colSep...)
		}
		var err error
		if w.buf, err = w.appendField(w.buf, f); err != nil {
			return fmt.Errorf("linecsv: field %d on line %d: %w", i, w.lineNo+1, err)
		}
	}
	w.buf = append(w.buf, w.cfg.rowSep...)

	if w.check != nil {
		if _, err := w.check.Bytes(w.buf); err != nil {
			return fmt.Errorf("linecsv: encode line %d: %w", w.lineNo+1, err)
		}
	}
	if _, err := w.out.Write(w.buf); err != nil {
		w.err = err
		return err
	}
	w.lineNo++
	return nil
}

func (w *Writer) appendField(buf []byte, f any) ([]byte, error) {
	if f == nil {
		return buf, nil
	}
	field, err := fieldString(f)
	if err != nil {
		return buf, err
	}
	if !w.cfg.forceQuotes && field != "" && !strings.ContainsAny(field, w.cfg.quotable) {
		return append(buf, field...), nil
	}

	quote := w.cfg.quote
	buf = append(buf, quote...)
	for {
		i := strings.Index(field, quote)
		if i < 0 {
			break
		}
		buf = append(buf, field[:i+len(quote)]...)
		buf = append(buf, quote...)
		field = field[i+len(quote):]
	}
	buf = append(buf, field...)
	return append(buf, quote...), nil
}

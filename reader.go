package linecsv

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"slices"
	"strings"
	"unicode/utf8"
)

const defaultBufferSize = 1 << 12 // 4096 bytes

// Reader pulls logical rows from a delimited text source. A Reader is not
// safe for concurrent use.
type Reader struct {
	src    *bufio.Reader
	cfg    *config
	rowSep []byte

	lineNo  int
	line    string
	headers []string
	// explicitHeaders keeps Options.Headers or Options.HeaderRow unconverted.
	explicitHeaders []any
	// emitHeader is set when explicit headers still have to be returned.
	emitHeader bool

	lineBuf  []byte
	raw      []byte
	ext      []byte
	extended bool
}

// NewReader resolves opts and creates a Reader over r, panicking if r is nil.
// When the row separator is left to discovery and r is seekable, a sample of
// r is read and the position restored before NewReader returns.
func NewReader(r io.Reader, opts Options) (*Reader, error) {
	if r == nil {
		panic("linecsv: reader source cannot be nil")
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.autoRow {
		cfg.setRowSep(discoverRowSep(r, cfg.enc, cfg.logger))
	}

	rd := &Reader{
		src:     bufio.NewReaderSize(decodeSource(r, cfg.enc), defaultBufferSize),
		cfg:     cfg,
		rowSep:  []byte(cfg.rowSep),
		lineBuf: make([]byte, 0, 256),
	}

	explicit, err := cfg.explicitHeaders()
	if err != nil {
		return nil, err
	}
	if explicit != nil {
		rd.explicitHeaders = explicit
		rd.headers = cfg.pipe.headers(explicit, 0)
		rd.emitHeader = cfg.returnHeaders
	}
	return rd, nil
}

// Read returns the next logical row, or io.EOF once the source is exhausted.
// Malformed input yields a *ParseError; the Reader should not be used after.
func (r *Reader) Read() (*Row, error) {
	if r.emitHeader {
		r.emitHeader = false
		return r.headerRow(), nil
	}

	var fields []any
	r.extended = false
	r.ext = r.ext[:0]

	for {
		line, err := r.readLine()
		if err != nil {
			return nil, err
		}
		stripped := strings.TrimSuffix(line, r.cfg.rowSep)
		if r.cfg.enc == nil && !utf8.ValidString(stripped) {
			return nil, r.parseError(ErrInvalidByteSequence)
		}

		if len(fields) == 0 && !r.extended && stripped == "" {
			r.lineNo++
			r.line = line
			if r.cfg.skipBlanks {
				continue
			}
			return r.blankRow(), nil
		}

		if r.cfg.skipLines != nil && r.cfg.skipLines.MatchString(line) {
			continue
		}

		if r.extended {
			r.raw = append(r.raw, line...)
		} else {
			r.raw = append(r.raw[:0], line...)
		}

		fields, err = r.splitFields(fields, stripped)
		if err != nil {
			return nil, err
		}

		if r.extended {
			r.ext = append(r.ext[:len(r.ext)-len(r.cfg.colSep)], r.cfg.rowSep...)
			eof, err := r.atEOF()
			if err != nil {
				return nil, err
			}
			if eof {
				return nil, r.parseError(ErrUnclosedQuote)
			}
			if r.cfg.fieldSizeLimit > 0 && utf8.RuneCount(r.ext) >= r.cfg.fieldSizeLimit {
				return nil, r.parseError(ErrFieldSizeExceeded)
			}
			continue
		}

		r.lineNo++
		r.line = string(r.raw)
		return r.finishRow(fields)
	}
}

// ReadAll reads rows until io.EOF and returns them with the first error
// other than io.EOF.
func (r *Reader) ReadAll() (rows []*Row, err error) {
	for {
		row, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// LineNo returns the number of logical rows read so far.
func (r *Reader) LineNo() int { return r.lineNo }

// Line returns the raw text of the last logical row, separators included.
func (r *Reader) Line() string { return r.line }

// RowSep returns the resolved row separator.
func (r *Reader) RowSep() string { return r.cfg.rowSep }

// Headers returns the captured headers, or nil before they are known or
// when headers are not in use.
func (r *Reader) Headers() []string { return slices.Clone(r.headers) }

// splitFields dispatches every segment of a stripped physical line through
// the quoting state machine, appending completed fields.
func (r *Reader) splitFields(fields []any, stripped string) ([]any, error) {
	quote, colSep := r.cfg.quote, r.cfg.colSep

	for _, part := range r.cfg.split(stripped) {
		switch {
		case r.extended:
			if strings.HasSuffix(part, quote) && strings.Count(part, quote)%2 != 0 {
				r.ext = append(r.ext, part[:len(part)-len(quote)]...)
				value := string(r.ext)
				r.ext = r.ext[:0]
				r.extended = false
				if hasStrayQuote(value, quote) {
					return nil, r.parseError(ErrStrayQuote)
				}
				fields = append(fields, strings.ReplaceAll(value, quote+quote, quote))
			} else {
				r.ext = append(r.ext, part...)
				r.ext = append(r.ext, colSep...)
			}
		case strings.HasPrefix(part, quote):
			switch {
			case strings.Count(part, quote)%2 != 0:
				r.ext = append(r.ext[:0], part[len(quote):]...)
				r.ext = append(r.ext, colSep...)
				r.extended = true
			case strings.HasSuffix(part, quote):
				value := part[len(quote) : len(part)-len(quote)]
				if hasStrayQuote(value, quote) {
					return nil, r.parseError(ErrStrayQuote)
				}
				fields = append(fields, strings.ReplaceAll(value, quote+quote, quote))
			case r.cfg.liberal:
				fields = append(fields, part)
			default:
				return nil, r.parseError(ErrStrayQuote)
			}
		case strings.ContainsAny(part, r.cfg.quoteOrNL):
			if strings.ContainsAny(part, "\r\n") {
				return nil, r.parseError(ErrUnquotedNewline)
			}
			if !r.cfg.liberal {
				return nil, r.parseError(ErrIllegalQuoting)
			}
			fields = append(fields, part)
		case part == "":
			fields = append(fields, nil)
		default:
			fields = append(fields, part)
		}
	}
	return fields, nil
}

// hasStrayQuote reports a quote surrounded by non-quote characters on both
// sides, which can be neither an escape nor a field boundary.
func hasStrayQuote(value, quote string) bool {
	for i := strings.Index(value, quote); i >= 0; {
		end := i + len(quote)
		if i > 0 && end < len(value) &&
			!strings.HasSuffix(value[:i], quote) && !strings.HasPrefix(value[end:], quote) {
			return true
		}
		next := strings.Index(value[end:], quote)
		if next < 0 {
			break
		}
		i = end + next
	}
	return false
}

func (r *Reader) finishRow(fields []any) (*Row, error) {
	var unconverted []any
	if r.cfg.unconverted {
		unconverted = slices.Clone(fields)
		if unconverted == nil {
			unconverted = []any{}
		}
	}
	if fields == nil {
		fields = []any{}
	}
	if !r.cfg.useHeaders {
		return &Row{Fields: r.cfg.pipe.convert(fields, r.lineNo, nil), Unconverted: unconverted}, nil
	}

	if r.headers == nil {
		r.headers = r.cfg.pipe.headers(fields, r.lineNo)
		if r.cfg.returnHeaders {
			return &Row{Fields: fields, Unconverted: unconverted, Headers: r.headers, IsHeader: true}, nil
		}
		return r.Read()
	}
	return &Row{
		Fields:      r.cfg.pipe.convert(fields, r.lineNo, r.headers),
		Unconverted: unconverted,
		Headers:     r.headers,
	}, nil
}

func (r *Reader) headerRow() *Row {
	row := &Row{Fields: slices.Clone(r.explicitHeaders), Headers: r.headers, IsHeader: true}
	if r.cfg.unconverted {
		row.Unconverted = []any{}
	}
	return row
}

func (r *Reader) blankRow() *Row {
	row := &Row{Fields: []any{}, Headers: r.headers}
	if r.cfg.unconverted {
		row.Unconverted = []any{}
	}
	return row
}

// readLine returns the next physical line including its row separator, or
// the unterminated remainder at end of input.
func (r *Reader) readLine() (string, error) {
	last := r.rowSep[len(r.rowSep)-1]
	r.lineBuf = r.lineBuf[:0]
	for {
		chunk, err := r.src.ReadSlice(last)
		r.lineBuf = append(r.lineBuf, chunk...)
		switch {
		case err == nil:
			if bytes.HasSuffix(r.lineBuf, r.rowSep) {
				return string(r.lineBuf), nil
			}
		case errors.Is(err, bufio.ErrBufferFull):
		case errors.Is(err, io.EOF):
			if len(r.lineBuf) == 0 {
				return "", io.EOF
			}
			return string(r.lineBuf), nil
		default:
			return "", err
		}
	}
}

func (r *Reader) atEOF() (bool, error) {
	_, err := r.src.Peek(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

func (r *Reader) parseError(err error) error {
	return &ParseError{Line: r.lineNo + 1, Err: err}
}

package linecsv

import (
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/encoding"
)

// config is the resolved, immutable form of Options shared by the hot paths.
type config struct {
	colSep   string
	colSplit *regexp.Regexp
	rowSep   string
	autoRow  bool
	quote    string
	// quoteOrNL holds the characters that make an unquoted field suspicious.
	quoteOrNL string
	// quotable holds the characters that force quoting on output.
	quotable string

	fieldSizeLimit int
	liberal        bool
	forceQuotes    bool
	skipBlanks     bool
	skipLines      Matcher

	pipe        pipeline
	unconverted bool

	useHeaders    bool
	headerList    []string
	headerRow     string
	returnHeaders bool
	writeHeaders  bool

	enc     encoding.Encoding
	replace bool
	logger  *slog.Logger
}

func newConfig(opts Options) (*config, error) {
	o := opts.withDefaults()
	if err := o.validate(); err != nil {
		return nil, err
	}

	enc, err := lookupEncoding(o.Encoding)
	if err != nil {
		return nil, &ConfigError{Option: "encoding", Reason: "unknown encoding", Err: err}
	}

	c := &config{
		colSep:         o.ColSep,
		quote:          o.Quote,
		quoteOrNL:      o.Quote + "\r\n",
		fieldSizeLimit: o.FieldSizeLimit,
		liberal:        o.LiberalParsing,
		forceQuotes:    o.ForceQuotes,
		skipBlanks:     o.SkipBlanks,
		unconverted:    o.UnconvertedFields,
		useHeaders:     o.usesHeaders(),
		headerRow:      o.HeaderRow,
		returnHeaders:  o.ReturnHeaders,
		writeHeaders:   o.WriteHeaders,
		enc:            enc,
		replace:        o.ReplaceUnsupported,
		logger:         o.Logger,
		pipe: pipeline{
			nilValue:   o.NilValue,
			emptyValue: o.EmptyValue,
		},
	}
	if o.Headers != nil {
		c.headerList = append([]string{}, o.Headers...)
	}

	if strings.Trim(o.ColSep, " ") == "" {
		c.colSplit = regexp.MustCompile("(?:" + regexp.QuoteMeta(o.ColSep) + ")+")
	}

	switch {
	case o.SkipLinesMatcher != nil:
		c.skipLines = o.SkipLinesMatcher
	case o.SkipLines != "":
		re, err := regexp.Compile(o.SkipLines)
		if err != nil {
			return nil, &ConfigError{Option: "skip_lines", Reason: "invalid pattern", Err: err}
		}
		c.skipLines = re
	}

	registry := o.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	if c.pipe.converters, err = registry.Expand(o.Converters...); err != nil {
		return nil, err
	}
	c.pipe.converters = append(c.pipe.converters, o.ConverterFuncs...)

	headerRegistry := o.HeaderRegistry
	if headerRegistry == nil {
		headerRegistry = NewHeaderRegistry()
	}
	if c.pipe.headerConverters, err = headerRegistry.Expand(o.HeaderConverters...); err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			cerr.Option = "header_converters"
		}
		return nil, err
	}
	c.pipe.headerConverters = append(c.pipe.headerConverters, o.HeaderConverterFuncs...)

	if o.RowSep == "" || o.RowSep == RowSepAuto {
		c.autoRow = true
	} else {
		c.setRowSep(o.RowSep)
	}
	return c, nil
}

// setRowSep fixes the row separator and derives the output alphabet from it.
// Characters the configured encoding cannot express are left out, so they are
// written without quoting.
func (c *config) setRowSep(sep string) {
	c.rowSep = sep
	c.autoRow = false

	var b strings.Builder
	for _, ch := range "\r\n" + c.colSep + c.quote + sep {
		s := string(ch)
		if strings.Contains(b.String(), s) {
			continue
		}
		if !representable(c.enc, s) {
			c.logger.Debug("character cannot be escaped in target encoding",
				slog.String("char", s))
			continue
		}
		b.WriteString(s)
	}
	c.quotable = b.String()
}

func (c *config) split(line string) []string {
	if c.colSplit != nil {
		return c.colSplit.Split(line, -1)
	}
	return strings.Split(line, c.colSep)
}

// explicitHeaders returns headers given through Options.Headers or
// Options.HeaderRow, or nil when the first row supplies them.
func (c *config) explicitHeaders() ([]any, error) {
	switch {
	case c.headerList != nil:
		out := make([]any, len(c.headerList))
		for i, h := range c.headerList {
			out[i] = h
		}
		return out, nil
	case c.headerRow != "":
		r, err := NewReader(strings.NewReader(c.headerRow), Options{
			ColSep: c.colSep,
			RowSep: c.rowSep,
			Quote:  c.quote,
		})
		if err != nil {
			return nil, err
		}
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return []any{}, nil
		}
		if err != nil {
			return nil, &ConfigError{Option: "header_row", Reason: "cannot parse", Err: err}
		}
		return row.Fields, nil
	}
	return nil, nil
}

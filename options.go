package linecsv

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// RowSepAuto asks the Reader to discover the row separator from the source.
const RowSepAuto = "auto"

// Matcher reports whether a raw physical line is a comment to be skipped.
// *regexp.Regexp satisfies it.
type Matcher interface {
	MatchString(s string) bool
}

// Options configures a Reader or Writer. The zero value reads and writes
// comma separated records with double quotes and an auto-discovered row
// separator. Options are resolved once by NewReader/NewWriter; changing them
// afterwards has no effect on existing instances.
type Options struct {
	// ColSep separates fields. Default ",".
	ColSep string `yaml:"col_sep" validate:"required"`
	// RowSep terminates records. "" or RowSepAuto discovers it from the source.
	RowSep string `yaml:"row_sep"`
	// Quote is the single quote character. Default "\"".
	Quote string `yaml:"quote_char" validate:"len=1"`
	// FieldSizeLimit bounds the characters a quoted field may accumulate
	// across physical lines. Zero disables the limit.
	FieldSizeLimit int `yaml:"field_size_limit" validate:"gte=0"`
	// Encoding names the text encoding of the source and destination
	// (IANA names such as "ISO-8859-1" or "UTF-16LE"). Default UTF-8.
	Encoding string `yaml:"encoding" validate:"omitempty,encoding"`
	// ReplaceUnsupported lets a Writer substitute characters the Encoding
	// cannot represent instead of failing.
	ReplaceUnsupported bool `yaml:"replace_unsupported"`

	// Converters and HeaderConverters name entries of Registry and
	// HeaderRegistry; they run before the ConverterFuncs given directly.
	Converters           []string    `yaml:"converters"`
	HeaderConverters     []string    `yaml:"header_converters"`
	ConverterFuncs       []Converter `yaml:"-" validate:"-"`
	HeaderConverterFuncs []Converter `yaml:"-" validate:"-"`
	// Registry and HeaderRegistry resolve converter names. Nil uses
	// NewRegistry() and NewHeaderRegistry().
	Registry       *Registry `yaml:"-" validate:"-"`
	HeaderRegistry *Registry `yaml:"-" validate:"-"`
	// UnconvertedFields keeps the pre-conversion fields in Row.Unconverted.
	UnconvertedFields bool `yaml:"unconverted_fields"`

	// UseHeaders treats the first row as headers.
	UseHeaders bool `yaml:"headers"`
	// Headers supplies headers directly; the first row is then data.
	Headers []string `yaml:"header_list"`
	// HeaderRow supplies headers as a delimited line parsed with ColSep and Quote.
	HeaderRow string `yaml:"header_row"`
	// ReturnHeaders makes Read return the header row once.
	ReturnHeaders bool `yaml:"return_headers"`
	// WriteHeaders makes the Writer emit Headers or HeaderRow before the first record.
	WriteHeaders bool `yaml:"write_headers"`

	SkipBlanks  bool `yaml:"skip_blanks"`
	ForceQuotes bool `yaml:"force_quotes"`
	// SkipLines is a regular expression; matching physical lines are discarded.
	SkipLines string `yaml:"skip_lines"`
	// SkipLinesMatcher takes precedence over SkipLines.
	SkipLinesMatcher Matcher `yaml:"-" validate:"-"`
	LiberalParsing   bool    `yaml:"liberal_parsing"`

	// NilValue replaces absent fields.
	NilValue any `yaml:"nil_value" validate:"-"`
	// EmptyValue replaces empty fields when non-nil.
	EmptyValue any `yaml:"empty_value" validate:"-"`

	// Logger receives configuration-time debug messages. Nil discards them.
	Logger *slog.Logger `yaml:"-" validate:"-"`
}

// LoadOptions decodes yaml-encoded Options from r. Unknown keys are rejected.
func LoadOptions(r io.Reader) (Options, error) {
	var opts Options
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil {
		if errors.Is(err, io.EOF) {
			return Options{}, nil
		}
		return Options{}, fmt.Errorf("linecsv: decode options: %w", err)
	}
	return opts, nil
}

func (o Options) withDefaults() Options {
	if o.ColSep == "" {
		o.ColSep = ","
	}
	if o.Quote == "" {
		o.Quote = `"`
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

func (o Options) usesHeaders() bool {
	return o.UseHeaders || o.Headers != nil || o.HeaderRow != ""
}

func newOptionsValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("encoding", isKnownEncoding)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func isKnownEncoding(fl validator.FieldLevel) bool {
	_, err := lookupEncoding(fl.Field().String())
	return err == nil
}

// validate checks o after defaults were applied.
func (o Options) validate() error {
	err := newOptionsValidator().Struct(o)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ConfigError{Option: "options", Reason: "validation failed", Err: err}
	}
	fe := verrs[0]
	return &ConfigError{Option: fe.Field(), Reason: validationReason(fe)}
}

func validationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		return fmt.Sprintf("must be exactly %s character", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "encoding":
		return fmt.Sprintf("unknown encoding %q", fe.Value())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

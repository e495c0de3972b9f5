// # linecsv: A Line-Oriented Streaming Reader and Writer for Delimited Text
//
// linecsv reads and writes delimited records one logical row at a time. It splits physical lines on a configurable row separator, joins lines that belong to a quoted field, and reports malformed input with the line it was found on.
//
// # Features
//
// - Row separator discovery (`\r\n`, `\r` or `\n`) by sampling seekable sources, with a `\n` fallback for pipes and standard streams.
// - Quoted fields with doubled-quote escaping, embedded separators and embedded line breaks.
// - Structured errors: `ParseError` wraps `ErrStrayQuote`, `ErrUnclosedQuote`, `ErrFieldSizeExceeded`, `ErrIllegalQuoting`, `ErrUnquotedNewline` and `ErrInvalidByteSequence`; `ConfigError` reports bad options at construction.
// - `FieldSizeLimit` bounds how much an unterminated quoted field may buffer.
// - Optional liberal parsing, comment skipping, blank row skipping and header capture.
// - Converter pipelines built from a caller-owned `Registry` of named converters and combos.
// - Source and destination encodings through golang.org/x/text, and `Options` loadable from yaml.
//
// # Getting Started
//
//	r, err := linecsv.NewReader(file, linecsv.Options{Converters: []string{"numeric"}})
//	if err != nil {
//		return err
//	}
//	for {
//		row, err := r.Read()
//		if err == io.EOF {
//			break
//		}
//		if err != nil {
//			return err
//		}
//		fmt.Println(row.Fields)
//	}
package linecsv

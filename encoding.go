package linecsv

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// lookupEncoding resolves an IANA encoding name. A nil Encoding means the
// native UTF-8 representation, which needs no transcoding.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding %q is not supported", name)
	}
	if enc == unicode.UTF8 {
		return nil, nil
	}
	return enc, nil
}

// decodeSource wraps src so the splitter always sees UTF-8.
func decodeSource(src io.Reader, enc encoding.Encoding) io.Reader {
	if enc == nil {
		return src
	}
	return transform.NewReader(src, enc.NewDecoder())
}

// representable reports whether s can be expressed in enc.
func representable(enc encoding.Encoding, s string) bool {
	if enc == nil {
		return true
	}
	_, err := enc.NewEncoder().String(s)
	return err == nil
}

// outputEncoder returns the encoder applied to composed records, or nil for UTF-8.
func outputEncoder(enc encoding.Encoding, replace bool) *encoding.Encoder {
	if enc == nil {
		return nil
	}
	if replace {
		return encoding.ReplaceUnsupported(enc.NewEncoder())
	}
	return enc.NewEncoder()
}

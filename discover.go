package linecsv

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/text/encoding"
)

const (
	// defaultRowSep is used whenever discovery cannot sample the source.
	defaultRowSep = "\n"
	// discoverChunkSize bounds each read made while sampling for a row separator.
	discoverChunkSize = 1 << 10
)

// discoverRowSep samples src for the first \r\n, \r or \n and restores the
// read position afterwards. A separator inside a quoted field counts too.
// Sources that cannot be rewound get defaultRowSep.
func discoverRowSep(src io.Reader, enc encoding.Encoding, logger *slog.Logger) (sep string) {
	if f, ok := src.(*os.File); ok && (f == os.Stdin || f == os.Stdout || f == os.Stderr) {
		logger.Debug("row separator defaulted for standard stream", slog.String("name", f.Name()))
		return defaultRowSep
	}
	seeker, ok := src.(io.Seeker)
	if !ok {
		logger.Debug("row separator defaulted for non-seekable source")
		return defaultRowSep
	}
	saved, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		logger.Debug("row separator defaulted, position unavailable", slog.Any("error", err))
		return defaultRowSep
	}
	defer func() {
		if _, err := seeker.Seek(saved, io.SeekStart); err != nil {
			logger.Debug("row separator defaulted, position not restored", slog.Any("error", err))
			sep = defaultRowSep
		}
	}()

	sep = sampleRowSep(decodeSource(src, enc))
	if sep == "" {
		logger.Debug("row separator defaulted, none found in sample")
		return defaultRowSep
	}
	logger.Debug("row separator discovered", slog.String("row_sep", sep))
	return sep
}

// sampleRowSep reads r in chunks until a row separator shows up or r is
// exhausted. A chunk ending in \r is extended by one byte to tell \r from \r\n.
func sampleRowSep(r io.Reader) string {
	buf := make([]byte, discoverChunkSize, discoverChunkSize+1)
	for {
		n, err := io.ReadFull(r, buf[:discoverChunkSize])
		if n == 0 {
			return ""
		}
		sample := buf[:n]
		if sample[n-1] == '\r' {
			var next [1]byte
			if m, _ := io.ReadFull(r, next[:]); m == 1 {
				sample = append(sample, next[0])
			}
		}
		if sep := firstRowSep(sample); sep != "" {
			return sep
		}
		if err != nil {
			return ""
		}
	}
}

func firstRowSep(sample []byte) string {
	for i, b := range sample {
		switch b {
		case '\n':
			return "\n"
		case '\r':
			if i+1 < len(sample) && sample[i+1] == '\n' {
				return "\r\n"
			}
			return "\r"
		}
	}
	return ""
}

package loader

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

type Format string

const (
	FormatCSV     Format = "csv"
	FormatExcel   Format = "excel"
	FormatParquet Format = "parquet"
)

type Compression string

const (
	CompressionNone Compression = ""
	CompressionGZ   Compression = ".gz"
	CompressionBZ2  Compression = ".bz2"
	CompressionXZ   Compression = ".xz"
	CompressionZSTD Compression = ".zst"
)

var formatsByExt = map[string]Format{
	".csv":     FormatCSV,
	".xlsx":    FormatExcel,
	".xlsm":    FormatExcel,
	".xls":     FormatExcel,
	".parquet": FormatParquet,
}

// DetectFormat classifies a file by its extension, ignoring case. A trailing
// compression suffix is peeled off first. ok is false for files the loader skips.
func DetectFormat(name string) (format Format, compression Compression, ok bool) {
	lower := strings.ToLower(path.Base(name))
	for _, c := range []Compression{CompressionGZ, CompressionBZ2, CompressionXZ, CompressionZSTD} {
		if strings.HasSuffix(lower, string(c)) {
			compression = c
			lower = strings.TrimSuffix(lower, string(c))
			break
		}
	}
	format, ok = formatsByExt[path.Ext(lower)]
	return format, compression, ok
}

// Extension returns the lowercased extension used to label skipped files.
func Extension(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return "none"
	}
	return strings.TrimPrefix(ext, ".")
}

func decompress(r io.Reader, compression Compression) (io.Reader, func() error, error) {
	switch compression {
	case CompressionNone:
		return r, noopClose, nil
	case CompressionGZ:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("open gzip stream: %w", err)
		}
		return gz, gz.Close, nil
	case CompressionBZ2:
		return bzip2.NewReader(r), noopClose, nil
	case CompressionXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("open xz stream: %w", err)
		}
		return xr, noopClose, nil
	case CompressionZSTD:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("open zstd stream: %w", err)
		}
		return decoder, func() error {
			decoder.Close()
			return nil
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported compression %q", compression)
	}
}

func noopClose() error { return nil }

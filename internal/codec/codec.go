// Package codec implements the dataset encodings the lake speaks: delimited
// text (csv), array-of-records text (json), and columnar binary (parquet).
// It also infers coarse column types for the catalog's advisory schema.
package codec

import (
	"path/filepath"
	"strings"

	"github.com/sucharith-p/personal-data-lake/internal/domain"
)

// Format is a dataset encoding tag.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
)

// Dataset is a parsed tabular payload: ordered columns and row-major values.
// Cell values are one of string, int64, float64, bool, or nil.
type Dataset struct {
	Columns []string
	Rows    [][]interface{}
}

// ParseFormat validates a caller-supplied encoding tag.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatParquet:
		return FormatParquet, nil
	default:
		return "", domain.ErrUnsupportedFormat("unsupported format %q (expected csv, json, or parquet)", s)
	}
}

// FormatForName derives the encoding from a file name's suffix.
func FormatForName(name string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return "", domain.ErrUnsupportedFormat("file %q has no extension to derive a format from", name)
	}
	return ParseFormat(ext)
}

// Encode serializes a dataset in the given format. The schema supplies the
// column type tags the columnar encoding needs; untagged columns encode as
// strings.
func Encode(ds *Dataset, schema map[string]string, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return encodeCSV(ds)
	case FormatJSON:
		return encodeJSON(ds)
	case FormatParquet:
		return encodeParquet(ds, schema)
	default:
		return nil, domain.ErrUnsupportedFormat("unsupported format %q", format)
	}
}

// Decode parses bytes in the given format back into a dataset.
func Decode(data []byte, format Format) (*Dataset, error) {
	switch format {
	case FormatCSV:
		return decodeCSV(data)
	case FormatJSON:
		return decodeJSON(data)
	case FormatParquet:
		return decodeParquet(data)
	default:
		return nil, domain.ErrUnsupportedFormat("unsupported format %q", format)
	}
}

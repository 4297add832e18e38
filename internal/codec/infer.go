package codec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Coarse type tags stored in the catalog's advisory schema.
const (
	TypeInteger  = "integer"
	TypeFloat    = "float"
	TypeBoolean  = "boolean"
	TypeString   = "string"
	TypeDatetime = "datetime"
)

// InferSchema derives a column→type mapping by scanning cell values.
// A column's tag is the narrowest type every non-nil value fits; mixed
// columns widen to string.
func InferSchema(ds *Dataset) map[string]string {
	schema := make(map[string]string, len(ds.Columns))
	for i, col := range ds.Columns {
		schema[col] = inferColumn(ds.Rows, i)
	}
	return schema
}

func inferColumn(rows [][]interface{}, col int) string {
	tag := ""
	for _, row := range rows {
		if col >= len(row) || row[col] == nil {
			continue
		}
		tag = widen(tag, inferValue(row[col]))
		if tag == TypeString {
			break
		}
	}
	if tag == "" {
		return TypeString
	}
	return tag
}

func inferValue(v interface{}) string {
	switch val := v.(type) {
	case int, int32, int64:
		return TypeInteger
	case float32:
		return TypeFloat
	case float64:
		// JSON numbers arrive as float64; keep whole values as integers.
		if val == float64(int64(val)) {
			return TypeInteger
		}
		return TypeFloat
	case bool:
		return TypeBoolean
	case time.Time:
		return TypeDatetime
	case string:
		return inferString(val)
	default:
		return TypeString
	}
}

func inferString(s string) string {
	if s == "" {
		return TypeString
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return TypeInteger
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return TypeFloat
	}
	if s == "true" || s == "false" {
		return TypeBoolean
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"} {
		if _, err := time.Parse(layout, s); err == nil {
			return TypeDatetime
		}
	}
	return TypeString
}

// widen merges two type tags: equal tags keep, integer+float gives float,
// anything else degrades to string.
func widen(a, b string) string {
	switch {
	case a == "" || a == b:
		return b
	case (a == TypeInteger && b == TypeFloat) || (a == TypeFloat && b == TypeInteger):
		return TypeFloat
	default:
		return TypeString
	}
}

// cellString renders a cell for text encodings and for the row→chunk text
// projection used by the embedding backfill.
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// RowText projects one row to the text chunk the semantic index stores:
// the concatenation of its column values.
func RowText(row []interface{}) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = cellString(v)
	}
	return strings.Join(parts, " | ")
}

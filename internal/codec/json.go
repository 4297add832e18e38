package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// encodeJSON writes the dataset as an indented array of records, one object
// per row with fields in column order.
func encodeJSON(ds *Dataset) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("[")
	for r, row := range ds.Rows {
		if r > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  {")
		for c, col := range ds.Columns {
			if c > 0 {
				buf.WriteString(",")
			}
			name, err := json.Marshal(col)
			if err != nil {
				return nil, fmt.Errorf("marshal column name %q: %w", col, err)
			}
			var cell interface{}
			if c < len(row) {
				cell = row[c]
			}
			value, err := json.Marshal(cell)
			if err != nil {
				return nil, fmt.Errorf("marshal cell: %w", err)
			}
			buf.Write(name)
			buf.WriteString(": ")
			buf.Write(value)
		}
		buf.WriteString("}")
	}
	buf.WriteString("\n]\n")
	return buf.Bytes(), nil
}

// decodeJSON parses an array of records. Column order follows the key order
// of the first object; later objects may omit or reorder keys.
func decodeJSON(data []byte) (*Dataset, error) {
	columns, err := jsonColumnOrder(data)
	if err != nil {
		return nil, err
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse json records: %w", err)
	}

	ds := &Dataset{Columns: columns}
	for _, rec := range records {
		row := make([]interface{}, len(columns))
		for i, col := range columns {
			row[i] = normalizeJSONValue(rec[col])
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// jsonColumnOrder walks the tokens of the first object to recover the
// author's field order, which json.Unmarshal into a map would lose.
func jsonColumnOrder(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("parse json: expected an array of records")
	}
	if !dec.More() {
		return nil, nil // empty array
	}
	if _, err := dec.Token(); err != nil { // consume '{'
		return nil, fmt.Errorf("parse json: %w", err)
	}

	var columns []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("parse json: malformed record")
		}
		columns = append(columns, key)

		// Skip the value (may itself be an array or object).
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	}
	return columns, nil
}

// normalizeJSONValue keeps whole numbers as int64 so round-tripping a
// dataset through json does not float-ify its integer columns.
func normalizeJSONValue(v interface{}) interface{} {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return int64(f)
	}
	return v
}

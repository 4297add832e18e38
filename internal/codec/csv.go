package codec

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// encodeCSV writes a header row followed by one line per row.
func encodeCSV(ds *Dataset) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(ds.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i := range record {
			if i < len(row) {
				record[i] = cellString(row[i])
			} else {
				record[i] = ""
			}
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// decodeCSV parses a header row plus data rows, restoring numeric and
// boolean cells from their text form.
func decodeCSV(data []byte) (*Dataset, error) {
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse csv: missing header row")
	}

	ds := &Dataset{Columns: records[0]}
	for _, record := range records[1:] {
		row := make([]interface{}, len(record))
		for i, cell := range record {
			row[i] = reviveCell(cell)
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// reviveCell undoes the stringification of typed values where unambiguous.
func reviveCell(s string) interface{} {
	if s == "" {
		return ""
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if s == "true" {
		return true
	}
	if s == "false" {
		return false
	}
	return s
}

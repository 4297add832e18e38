package codec

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// encodeParquet writes the dataset as a single-row-group parquet file.
// Column types follow the advisory schema tags; untagged columns are
// encoded as strings.
func encodeParquet(ds *Dataset, schema map[string]string) ([]byte, error) {
	fields := make([]arrow.Field, len(ds.Columns))
	for i, col := range ds.Columns {
		fields[i] = arrow.Field{Name: col, Type: arrowType(schema[col]), Nullable: true}
	}
	arrowSchema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, arrowSchema)
	defer builder.Release()

	for _, row := range ds.Rows {
		for i := range ds.Columns {
			var cell interface{}
			if i < len(row) {
				cell = row[i]
			}
			if err := appendCell(builder.Field(i), cell); err != nil {
				return nil, fmt.Errorf("column %q: %w", ds.Columns[i], err)
			}
		}
	}

	rec := builder.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	w, err := pqarrow.NewFileWriter(arrowSchema, &buf, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return nil, fmt.Errorf("create parquet writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("write parquet: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeParquet reads the whole file back into row-major form.
func decodeParquet(data []byte) (*Dataset, error) {
	rdr, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer rdr.Close() //nolint:errcheck

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{BatchSize: 64 * 1024}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	tbl, err := fr.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("read parquet table: %w", err)
	}
	defer tbl.Release()

	numRows := int(tbl.NumRows())
	numCols := int(tbl.NumCols())

	ds := &Dataset{Columns: make([]string, numCols)}
	ds.Rows = make([][]interface{}, numRows)
	for r := range ds.Rows {
		ds.Rows[r] = make([]interface{}, numCols)
	}

	for c := 0; c < numCols; c++ {
		ds.Columns[c] = tbl.Schema().Field(c).Name
		r := 0
		for _, chunk := range tbl.Column(c).Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				ds.Rows[r][c] = arrowValue(chunk, i)
				r++
			}
		}
	}
	return ds, nil
}

func arrowType(tag string) arrow.DataType {
	switch tag {
	case TypeInteger:
		return arrow.PrimitiveTypes.Int64
	case TypeFloat:
		return arrow.PrimitiveTypes.Float64
	case TypeBoolean:
		return arrow.FixedWidthTypes.Boolean
	default:
		// datetime columns travel as RFC3339 strings
		return arrow.BinaryTypes.String
	}
}

// appendCell coerces a cell into the column builder's type.
func appendCell(b array.Builder, v interface{}) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch bld := b.(type) {
	case *array.Int64Builder:
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		bld.Append(n)
	case *array.Float64Builder:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		bld.Append(f)
	case *array.BooleanBuilder:
		t, ok := v.(bool)
		if !ok {
			parsed, err := strconv.ParseBool(cellString(v))
			if err != nil {
				return fmt.Errorf("cannot encode %v as boolean", v)
			}
			t = parsed
		}
		bld.Append(t)
	case *array.StringBuilder:
		bld.Append(cellString(v))
	default:
		return fmt.Errorf("unsupported parquet builder %T", b)
	}
	return nil
}

func arrowValue(a arrow.Array, i int) interface{} {
	if a.IsNull(i) {
		return nil
	}
	switch arr := a.(type) {
	case *array.Int64:
		return arr.Value(i)
	case *array.Float64:
		return arr.Value(i)
	case *array.Boolean:
		return arr.Value(i)
	case *array.String:
		return arr.Value(i)
	default:
		return a.ValueStr(i)
	}
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("cannot encode %T as integer", v)
	}
}

func toFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("cannot encode %T as float", v)
	}
}

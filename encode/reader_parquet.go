package encode

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/arrowbench/banditbench/pipe"
	"github.com/arrowbench/banditbench/types"
)

// ParquetReader is a Source[Row] reading column-oriented Parquet files, a
// third tabular format alongside CSV/ARFF for OpenML-style datasets
// distributed as Parquet. Column order follows the file's schema.
type ParquetReader struct {
	newReader func() (io.ReaderAt, int64, error)
}

var _ pipe.Source[Row] = (*ParquetReader)(nil)

// NewParquetReader builds a ParquetReader. newReader must return a fresh
// ReaderAt and its size on every call.
func NewParquetReader(newReader func() (io.ReaderAt, int64, error)) *ParquetReader {
	return &ParquetReader{newReader: newReader}
}

func (r *ParquetReader) Read() pipe.Iter[Row] {
	ra, size, err := r.newReader()
	if err != nil {
		return &errRowIter{err: fmt.Errorf("parquet: open source: %w", err)}
	}
	file, err := parquet.OpenFile(ra, size)
	if err != nil {
		return &errRowIter{err: fmt.Errorf("parquet: open file: %w", err)}
	}

	schema := file.Schema()
	columns := make([]string, 0)
	for _, f := range schema.Fields() {
		columns = append(columns, f.Name())
	}

	pr := parquet.NewGenericReader[map[string]any](file)
	return &parquetRowIter{reader: pr, columns: columns}
}

type parquetRowIter struct {
	reader  *parquet.GenericReader[map[string]any]
	columns []string
	buf     []map[string]any
	pos     int
	done    bool
}

func (it *parquetRowIter) Next() (Row, bool, error) {
	for {
		if it.pos < len(it.buf) {
			m := it.buf[it.pos]
			it.pos++
			return mapToRow(m, it.columns), true, nil
		}
		if it.done {
			return Row{}, false, nil
		}

		it.buf = make([]map[string]any, 64)
		n, err := it.reader.Read(it.buf)
		it.buf = it.buf[:n]
		it.pos = 0
		if err == io.EOF {
			it.done = true
			_ = it.reader.Close()
			if n == 0 {
				return Row{}, false, nil
			}
			continue
		}
		if err != nil {
			it.done = true
			_ = it.reader.Close()
			return Row{}, false, &types.EnvironmentError{Kind: types.EnvironmentErrorParse, Msg: "malformed parquet row group", Err: err}
		}
	}
}

func mapToRow(m map[string]any, columns []string) Row {
	row := Row{Columns: append([]string(nil), columns...), Values: make([]types.Value, len(columns))}
	for i, c := range columns {
		row.Values[i] = anyToValue(m[c])
	}
	return row
}

func anyToValue(v any) types.Value {
	switch x := v.(type) {
	case nil:
		return types.None()
	case string:
		return types.String(x)
	case float64:
		return types.Number(x)
	case float32:
		return types.Number(float64(x))
	case int64:
		return types.Number(float64(x))
	case int32:
		return types.Number(float64(x))
	case bool:
		if x {
			return types.Number(1)
		}
		return types.Number(0)
	default:
		return types.String(fmt.Sprintf("%v", x))
	}
}

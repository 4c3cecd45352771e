package dataset

import (
	"io"
	"math"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
)

const parquetBatchSize = 512

// readParquet loads a flat parquet file (as written by pandas/pyarrow) into a
// Frame. Byte-array leaves become text columns, every other physical type is
// read as a number.
func readParquet(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, accessError(path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, accessError(path, err)
	}

	pf, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		return nil, accessError(path, errors.Wrap(err, "unable to open parquet file"))
	}

	schema := pf.Schema()
	paths := schema.Columns()
	columns := make([]*column, len(paths))
	frame := newFrame(path)
	for _, p := range paths {
		leaf, ok := schema.Lookup(p...)
		if !ok {
			return nil, accessError(path, errors.Errorf("unresolvable column %s", strings.Join(p, ".")))
		}
		if leaf.MaxRepetitionLevel > 0 {
			return nil, columnError(path, strings.Join(p, "."), errors.New("repeated columns are not supported"))
		}
		c := &column{name: strings.Join(p, "."), numeric: isNumericKind(leaf.Node.Type().Kind())}
		columns[leaf.ColumnIndex] = c
	}
	for _, c := range columns {
		frame.addColumn(c)
	}

	rows := make([]parquet.Row, parquetBatchSize)
	for _, rowGroup := range pf.RowGroups() {
		if err := readRowGroup(rowGroup, rows, columns); err != nil {
			return nil, accessError(path, err)
		}
	}
	return frame, nil
}

func readRowGroup(rowGroup parquet.RowGroup, buf []parquet.Row, columns []*column) error {
	reader := rowGroup.Rows()
	defer reader.Close()

	for {
		n, err := reader.ReadRows(buf)
		for _, row := range buf[:n] {
			for _, value := range row {
				idx := value.Column()
				if idx < 0 || idx >= len(columns) {
					continue
				}
				appendValue(columns[idx], value)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return errors.Wrap(err, "unable to read parquet rows")
		}
		if n == 0 {
			return nil
		}
	}
}

func appendValue(c *column, value parquet.Value) {
	if !c.numeric {
		if value.IsNull() {
			c.text = append(c.text, "")
			return
		}
		if value.Kind() == parquet.Int96 {
			c.text = append(c.text, value.String())
			return
		}
		c.text = append(c.text, string(value.ByteArray()))
		return
	}
	if value.IsNull() {
		c.numbers = append(c.numbers, math.NaN())
		return
	}
	switch value.Kind() {
	case parquet.Boolean:
		if value.Boolean() {
			c.numbers = append(c.numbers, 1)
		} else {
			c.numbers = append(c.numbers, 0)
		}
	case parquet.Int32:
		c.numbers = append(c.numbers, float64(value.Int32()))
	case parquet.Int64:
		c.numbers = append(c.numbers, float64(value.Int64()))
	case parquet.Float:
		c.numbers = append(c.numbers, float64(value.Float()))
	case parquet.Double:
		c.numbers = append(c.numbers, value.Double())
	default:
		c.numbers = append(c.numbers, math.NaN())
	}
}

func isNumericKind(kind parquet.Kind) bool {
	switch kind {
	case parquet.ByteArray, parquet.FixedLenByteArray, parquet.Int96:
		return false
	default:
		return true
	}
}

package dataset

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type column struct {
	name    string
	numeric bool
	text    []string
	numbers []float64
}

func (c *column) len() int {
	if c.numeric {
		return len(c.numbers)
	}
	return len(c.text)
}

// Frame is a column-oriented table read from a single source file. Columns
// keep the order they had in the source.
type Frame struct {
	Source  string
	columns []*column
	index   map[string]int
}

func newFrame(source string) *Frame {
	return &Frame{Source: source, index: map[string]int{}}
}

func (f *Frame) addColumn(c *column) {
	if _, exists := f.index[c.name]; exists {
		return
	}
	f.index[c.name] = len(f.columns)
	f.columns = append(f.columns, c)
}

func (f *Frame) Len() int {
	if len(f.columns) == 0 {
		return 0
	}
	return f.columns[0].len()
}

func (f *Frame) Columns() []string {
	names := make([]string, 0, len(f.columns))
	for _, c := range f.columns {
		names = append(names, c.name)
	}
	return names
}

func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Lookup returns the first of names present in the frame.
func (f *Frame) Lookup(names ...string) (string, bool) {
	for _, name := range names {
		if f.Has(name) {
			return name, true
		}
	}
	return "", false
}

// Float returns a column as numbers. Text columns are parsed; an empty cell
// becomes NaN.
func (f *Frame) Float(name string) ([]float64, error) {
	c, err := f.column(name)
	if err != nil {
		return nil, err
	}
	if c.numeric {
		return c.numbers, nil
	}
	out := make([]float64, len(c.text))
	for i, raw := range c.text {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			out[i] = math.NaN()
			continue
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return nil, columnError(f.Source, name, errors.Wrapf(err, "row %d", i+1))
		}
		out[i] = value
	}
	return out, nil
}

// String returns a column as text. Numeric columns are formatted with the
// shortest representation that round-trips.
func (f *Frame) String(name string) ([]string, error) {
	c, err := f.column(name)
	if err != nil {
		return nil, err
	}
	if !c.numeric {
		return c.text, nil
	}
	out := make([]string, len(c.numbers))
	for i, value := range c.numbers {
		if math.IsNaN(value) {
			continue
		}
		out[i] = strconv.FormatFloat(value, 'f', -1, 64)
	}
	return out, nil
}

func (f *Frame) column(name string) (*column, error) {
	idx, ok := f.index[name]
	if !ok {
		return nil, columnError(f.Source, name, ErrMissingColumn)
	}
	return f.columns[idx], nil
}

// ReadFrame reads a tabular source, picking the decoder from the file
// extension.
func ReadFrame(path string) (*Frame, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return readParquet(path)
	case ".csv":
		return readCSV(path)
	default:
		return nil, accessError(path, errors.Errorf("unsupported file type %q", filepath.Ext(path)))
	}
}

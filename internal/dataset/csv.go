package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

func readCSV(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, accessError(path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, accessError(path, errors.Wrap(err, "unable to read header"))
	}

	frame := newFrame(path)
	columns := make([]*column, len(headers))
	for idx, header := range headers {
		header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		columns[idx] = &column{name: header}
		frame.addColumn(columns[idx])
	}

	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, accessError(path, errors.Wrap(err, "unable to read CSV"))
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" && len(headers) > 1 {
			continue
		}
		for idx, c := range columns {
			c.text = append(c.text, getValue(record, idx))
		}
	}
	return frame, nil
}

func getValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

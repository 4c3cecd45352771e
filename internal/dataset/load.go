package dataset

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Sources struct {
	RFM          string
	CLV          string
	Segments     string
	Transactions string
}

// Load reads every source into a Dataset. The first failure aborts the load
// and is returned as an *AccessError.
func Load(ctx context.Context, src Sources) (*Dataset, error) {
	var ds Dataset
	steps := []struct {
		path string
		read func(*Frame) error
	}{
		{src.RFM, func(f *Frame) (err error) { ds.Metrics, err = metricsFrom(f); return }},
		{src.CLV, func(f *Frame) (err error) { ds.CLV, err = clvFrom(f); return }},
		{src.Segments, func(f *Frame) (err error) { ds.Segments, err = segmentsFrom(f); return }},
		{src.Transactions, func(f *Frame) (err error) { ds.Transactions, err = transactionsFrom(f); return }},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame, err := ReadFrame(step.path)
		if err != nil {
			return nil, err
		}
		if err := step.read(frame); err != nil {
			return nil, err
		}
		log.Debug().
			Str("source", step.path).
			Int("rows", frame.Len()).
			Strs("columns", frame.Columns()).
			Msg("loaded source")
	}
	return &ds, nil
}

func metricsFrom(f *Frame) ([]CustomerMetrics, error) {
	ids := customerIDs(f)
	recency, frequency, monetary, err := rfmColumns(f)
	if err != nil {
		return nil, err
	}
	rows := make([]CustomerMetrics, f.Len())
	for i := range rows {
		rows[i] = CustomerMetrics{
			CustomerID: ids[i],
			Recency:    recency[i],
			Frequency:  frequency[i],
			Monetary:   monetary[i],
		}
	}
	return rows, nil
}

func clvFrom(f *Frame) (CLVTable, error) {
	ids := customerIDs(f)
	table := CLVTable{Rows: make([]CustomerCLV, f.Len())}
	var clv []float64
	if f.Has(ColPredictedCLV) {
		values, err := f.Float(ColPredictedCLV)
		if err != nil {
			return CLVTable{}, err
		}
		clv = values
		table.HasCLV = true
	}
	for i := range table.Rows {
		table.Rows[i].CustomerID = ids[i]
		if clv != nil {
			table.Rows[i].PredictedCLV = clv[i]
		}
	}
	return table, nil
}

func segmentsFrom(f *Frame) (SegmentTable, error) {
	ids := customerIDs(f)
	recency, frequency, monetary, err := rfmColumns(f)
	if err != nil {
		return SegmentTable{}, err
	}
	segments, err := f.String(ColSegment)
	if err != nil {
		return SegmentTable{}, err
	}

	var clusters []float64
	if f.Has(ColCluster) {
		clusters, err = f.Float(ColCluster)
		if err != nil {
			return SegmentTable{}, err
		}
	}

	table := SegmentTable{Rows: make([]SegmentedCustomer, f.Len()), HasCluster: clusters != nil}
	seen := make(map[string]int, f.Len())
	for i := range table.Rows {
		row := SegmentedCustomer{
			CustomerID: ids[i],
			Recency:    recency[i],
			Frequency:  frequency[i],
			Monetary:   monetary[i],
			Segment:    segments[i],
		}
		if clusters != nil {
			cluster, err := clusterID(clusters[i])
			if err != nil {
				return SegmentTable{}, columnError(f.Source, ColCluster, errors.Wrapf(err, "row %d", i+1))
			}
			row.Cluster = cluster
		}
		if row.CustomerID != "" {
			if first, dup := seen[row.CustomerID]; dup {
				return SegmentTable{}, accessError(f.Source, errors.Errorf("customer %s appears in rows %d and %d", row.CustomerID, first+1, i+1))
			}
			seen[row.CustomerID] = i
		}
		table.Rows[i] = row
	}
	return table, nil
}

func transactionsFrom(f *Frame) ([]Transaction, error) {
	ids := customerIDs(f)
	amounts, err := f.Float(ColAmount)
	if err != nil {
		return nil, err
	}
	dates, err := f.String(ColTransactionDate)
	if err != nil {
		return nil, err
	}
	rows := make([]Transaction, f.Len())
	for i := range rows {
		date, err := ParseDate(dates[i])
		if err != nil {
			return nil, columnError(f.Source, ColTransactionDate, errors.Wrapf(err, "row %d", i+1))
		}
		rows[i] = Transaction{CustomerID: ids[i], Amount: amounts[i], Date: date}
	}
	return rows, nil
}

func rfmColumns(f *Frame) (recency, frequency, monetary []float64, err error) {
	if recency, err = f.Float(ColRecency); err != nil {
		return
	}
	if frequency, err = f.Float(ColFrequency); err != nil {
		return
	}
	monetary, err = f.Float(ColMonetary)
	return
}

func customerIDs(f *Frame) []string {
	name, ok := f.Lookup(customerIDColumns...)
	if !ok {
		return make([]string, f.Len())
	}
	ids, err := f.String(name)
	if err != nil {
		return make([]string, f.Len())
	}
	return ids
}

func clusterID(value float64) (int, error) {
	if math.IsNaN(value) || value < 0 || value != math.Trunc(value) {
		return 0, errors.Errorf("invalid cluster id %v", value)
	}
	return int(value), nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04",
	"01/02/2006 15:04",
}

// ParseDate accepts the date and timestamp layouts the transaction ledger has
// been observed to use.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.Errorf("unsupported date format: %s", value)
}

// DateOnly truncates t to its calendar date, keeping the date as written.
func DateOnly(value time.Time) time.Time {
	if value.IsZero() {
		return value
	}
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}

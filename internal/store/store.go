// Package store archives report runs in Postgres.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"ecommerce-clv-report/internal/aggregate"
)

const timeout = 12 * time.Second

var schemaName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type Config struct {
	URL    string
	Schema string
	Tag    string
}

// Run is what gets archived for one report invocation.
type Run struct {
	Summary    aggregate.Summary
	OutputDir  string
	ChartCount int
}

func sanitizeSchema(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.New("db schema is required")
	}
	if !schemaName.MatchString(value) {
		return "", errors.Errorf("invalid schema name: %s", value)
	}
	return value, nil
}

func open(ctx context.Context, cfg Config) (*sql.DB, string, error) {
	schema, err := sanitizeSchema(cfg.Schema)
	if err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, "", errors.New("database URL missing; set CLVREPORT_DB_URL or DATABASE_URL")
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, "", errors.Wrap(err, "open database")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", errors.Wrap(err, "ping database")
	}
	if err := ensureSchema(ctx, db, schema); err != nil {
		_ = db.Close()
		return nil, "", errors.Wrap(err, "ensure schema")
	}
	return db, schema, nil
}

func Init(ctx context.Context, cfg Config) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, schema, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Info().Str("schema", schema).Msg("report archive schema ready")
	return nil
}

// Save stores a run with its segment breakdown and daily timeline in one
// transaction and returns the run id.
func Save(ctx context.Context, cfg Config, run Run) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, schema, err := open(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer db.Close()

	return saveTx(ctx, db, schema, cfg.Tag, run)
}

func saveTx(ctx context.Context, db *sql.DB, schema string, tag string, run Run) (string, error) {
	runID := uuid.New()
	overview := run.Summary.Overview
	rfm := run.Summary.RFM

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s.report_runs (
			id, total_customers, total_transactions, total_revenue,
			first_date, last_date, recency_mean, frequency_mean,
			monetary_mean, monetary_median, chart_count, output_dir, run_tag
		) VALUES (
			$1,$2,$3,$4,
			$5,$6,$7,$8,
			$9,$10,$11,$12,$13
		)`, schema),
		runID,
		overview.Customers,
		overview.Transactions,
		overview.Revenue,
		nullDate(overview.FirstDate),
		nullDate(overview.LastDate),
		rfm.Recency.Mean,
		rfm.Frequency.Mean,
		rfm.Monetary.Mean,
		rfm.Monetary.Median,
		run.ChartCount,
		nullString(run.OutputDir),
		nullString(tag),
	)
	if err != nil {
		return "", errors.Wrap(err, "insert run")
	}

	insertSegmentSQL := fmt.Sprintf(`
		INSERT INTO %s.report_segments (
			id, run_id, position, segment, customers,
			percent, avg_value, total_value
		) VALUES (
			$1,$2,$3,$4,$5,
			$6,$7,$8
		)`, schema)

	for i, entry := range run.Summary.Segments {
		_, err = tx.ExecContext(ctx, insertSegmentSQL,
			uuid.New(),
			runID,
			i,
			entry.Segment,
			entry.Count,
			entry.Percent,
			entry.Mean,
			entry.Total,
		)
		if err != nil {
			return "", errors.Wrapf(err, "insert segment %s", entry.Segment)
		}
	}

	insertDailySQL := fmt.Sprintf(`
		INSERT INTO %s.report_daily (
			run_id, day, revenue, transaction_count
		) VALUES (
			$1,$2,$3,$4
		)`, schema)

	for _, point := range run.Summary.Daily {
		_, err = tx.ExecContext(ctx, insertDailySQL,
			runID,
			point.Date,
			point.Revenue,
			point.Count,
		)
		if err != nil {
			return "", errors.Wrapf(err, "insert daily point %s", point.Date.Format(time.DateOnly))
		}
	}

	if err = tx.Commit(); err != nil {
		return "", errors.Wrap(err, "commit run")
	}
	return runID.String(), nil
}

func ensureSchema(ctx context.Context, db *sql.DB, schema string) error {
	statements := []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.report_runs (
			id uuid PRIMARY KEY,
			total_customers integer NOT NULL,
			total_transactions integer NOT NULL,
			total_revenue numeric(14,2) NOT NULL,
			first_date date,
			last_date date,
			recency_mean numeric(10,2) NOT NULL,
			frequency_mean numeric(10,2) NOT NULL,
			monetary_mean numeric(12,2) NOT NULL,
			monetary_median numeric(12,2) NOT NULL,
			chart_count integer NOT NULL,
			output_dir text,
			run_tag text,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.report_segments (
			id uuid PRIMARY KEY,
			run_id uuid NOT NULL REFERENCES %s.report_runs(id) ON DELETE CASCADE,
			position integer NOT NULL,
			segment text NOT NULL,
			customers integer NOT NULL,
			percent numeric(6,2) NOT NULL,
			avg_value numeric(12,2) NOT NULL,
			total_value numeric(14,2) NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, schema, schema),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.report_daily (
			run_id uuid NOT NULL REFERENCES %s.report_runs(id) ON DELETE CASCADE,
			day date NOT NULL,
			revenue numeric(14,2) NOT NULL,
			transaction_count integer NOT NULL,
			PRIMARY KEY (run_id, day)
		)`, schema, schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_report_segments_run_idx ON %s.report_segments (run_id)`, schema, schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_report_runs_tag_idx ON %s.report_runs (run_tag)`, schema, schema),
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func nullString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullDate(value time.Time) sql.NullTime {
	if value.IsZero() {
		return sql.NullTime{}
	}
	y, m, d := value.Date()
	return sql.NullTime{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

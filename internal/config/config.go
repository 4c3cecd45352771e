// Package config reads the run configuration from the environment, after an
// optional .env file in the working directory.
package config

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const Prefix = "clvreport"

var validate = validator.New()

type Config struct {
	// RFMPath is the per-customer Recency/Frequency/Monetary table.
	RFMPath string `split_words:"true" default:"data/processed/rfm_analysis.parquet"`

	// CLVPath is the per-customer table carrying the optional predicted_clv column.
	CLVPath string `split_words:"true" default:"data/processed/rfm_with_clv.parquet"`

	// SegmentsPath is the per-customer table with Segment and the optional Cluster column.
	SegmentsPath string `split_words:"true" default:"data/processed/segmented_customers.parquet"`

	TransactionsPath string `split_words:"true" default:"data/raw/ecommerce_transactions.csv"`

	OutputDir string `split_words:"true" default:"reports/figures" validate:"required"`

	// SampleSize caps the customers drawn on the RFM scatter plot.
	SampleSize int    `split_words:"true" default:"1000" validate:"gt=0"`
	SampleSeed uint64 `split_words:"true" default:"42"`

	TopN int `split_words:"true" default:"20" validate:"gt=0"`
	DPI  int `envconfig:"DPI" default:"300" validate:"gt=0"`

	// RenderWorkers bounds how many charts render at once. 1 renders sequentially.
	RenderWorkers int `split_words:"true" default:"4" validate:"gt=0"`

	LogLevel string `split_words:"true" default:"info"`
	LogJSON  bool   `envconfig:"LOG_JSON" default:"false"`

	// JSONOut, when set, receives the summary as JSON.
	JSONOut string `envconfig:"JSON_OUT"`

	// DBEnabled archives each run in Postgres at DBURL, which falls back to
	// DATABASE_URL.
	DBEnabled bool   `envconfig:"DB_ENABLED" default:"false"`
	DBURL     string `envconfig:"DB_URL" validate:"required_if=DBEnabled true"`
	DBSchema  string `envconfig:"DB_SCHEMA" default:"clv_report"`
	DBTag     string `envconfig:"DB_TAG"`
}

// Parse loads .env when present, then reads CLVREPORT_* variables. Callers
// apply their overrides and then call Validate.
func Parse() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to load .env file")
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		_ = envconfig.Usage(Prefix, &cfg)
		return nil, errors.Wrap(err, "failed to parse configuration")
	}
	if strings.TrimSpace(cfg.DBURL) == "" {
		cfg.DBURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		for _, field := range fields {
			if field.Field() == "DBURL" {
				return errors.New("database URL missing; set CLVREPORT_DB_URL or DATABASE_URL")
			}
		}
	}
	return errors.Wrap(err, "invalid configuration")
}

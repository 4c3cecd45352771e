package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"ecommerce-clv-report/internal/config"
	"ecommerce-clv-report/internal/logger"
	"ecommerce-clv-report/internal/pipeline"
	"ecommerce-clv-report/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		exitWithError(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "clvreport",
		Usage: "Render customer lifetime value and RFM segmentation charts with a console summary",
		Description: "Reads the RFM, CLV and segmentation tables plus the transaction ledger, " +
			"writes eight numbered PNG charts and prints a summary. Configure with CLVREPORT_* " +
			"environment variables or a .env file; flags override the environment.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "directory for chart images"},
			&cli.StringFlag{Name: "json", Usage: "optional JSON summary output path"},
			&cli.BoolFlag{Name: "db", Usage: "store the run in Postgres (requires CLVREPORT_DB_URL or DATABASE_URL)"},
			&cli.StringFlag{Name: "db-schema", Usage: "Postgres schema for archive tables"},
			&cli.StringFlag{Name: "db-tag", Usage: "optional label for this run"},
		},
		Action: run,
		Commands: []*cli.Command{
			{
				Name:  "init-db",
				Usage: "create the Postgres archive schema and tables",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "db-schema", Usage: "Postgres schema for archive tables"},
				},
				Action: initDB,
			},
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Parse()
	if err != nil {
		return nil, err
	}
	if c.IsSet("output") {
		cfg.OutputDir = c.String("output")
	}
	if c.IsSet("json") {
		cfg.JSONOut = c.String("json")
	}
	if c.Bool("db") {
		cfg.DBEnabled = true
	}
	if c.IsSet("db-schema") {
		cfg.DBSchema = c.String("db-schema")
	}
	if c.IsSet("db-tag") {
		cfg.DBTag = c.String("db-tag")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogJSON); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(c.Context, cfg, c.App.Writer)
	if err != nil {
		return err
	}
	if result.RunID != "" {
		fmt.Fprintf(c.App.Writer, "\nStored report run in Postgres (run_id=%s)\n", result.RunID)
	}
	return nil
}

func initDB(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.DBURL == "" {
		return errors.New("database URL missing; set CLVREPORT_DB_URL or DATABASE_URL")
	}

	err = store.Init(c.Context, store.Config{URL: cfg.DBURL, Schema: cfg.DBSchema})
	if err != nil {
		return err
	}
	log.Info().Str("schema", cfg.DBSchema).Msg("database initialized")
	return nil
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

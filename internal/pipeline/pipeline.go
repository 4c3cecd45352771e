// Package pipeline runs one report: load, aggregate, render and summarize.
package pipeline

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"ecommerce-clv-report/internal/aggregate"
	"ecommerce-clv-report/internal/chart"
	"ecommerce-clv-report/internal/config"
	"ecommerce-clv-report/internal/dataset"
	"ecommerce-clv-report/internal/report"
	"ecommerce-clv-report/internal/store"
)

const totalSteps = 10

type Result struct {
	Summary aggregate.Summary
	Saved   []string
	Skipped []string
	RunID   string
}

type job struct {
	step   int
	title  string
	file   string
	render func() (string, error)
}

// Run executes the full report. Charts are written under cfg.OutputDir and the
// summary is printed to out.
func Run(ctx context.Context, cfg *config.Config, out io.Writer) (*Result, error) {
	stepf(1, "Loading analysis results")
	ds, err := dataset.Load(ctx, dataset.Sources{
		RFM:          cfg.RFMPath,
		CLV:          cfg.CLVPath,
		Segments:     cfg.SegmentsPath,
		Transactions: cfg.TransactionsPath,
	})
	if err != nil {
		return nil, errors.Wrap(err, "load inputs")
	}
	log.Info().
		Int("customers", len(ds.Metrics)).
		Int("transactions", len(ds.Transactions)).
		Msg("loaded inputs")

	counts := aggregate.CountSegments(ds.Segments.Rows).SortedByCount()
	values := aggregate.ValueBySegment(ds.Segments.Rows)
	daily := aggregate.DailyTimeline(ds.Transactions)

	jobs, skipped := plan(cfg, ds, counts, values, daily)
	saved, err := render(ctx, cfg, jobs)
	if err != nil {
		return nil, err
	}

	stepf(totalSteps, "Generating summary statistics")
	summary := aggregate.Summarize(ds, counts, values, daily)
	report.Print(out, summary, cfg.OutputDir, saved)

	result := &Result{Summary: summary, Saved: saved, Skipped: skipped}

	if cfg.JSONOut != "" {
		if err := report.WriteJSON(summary, cfg.JSONOut); err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.JSONOut).Msg("summary JSON saved")
	}

	if cfg.DBEnabled {
		runID, err := store.Save(ctx, store.Config{
			URL:    cfg.DBURL,
			Schema: cfg.DBSchema,
			Tag:    cfg.DBTag,
		}, store.Run{
			Summary:    summary,
			OutputDir:  cfg.OutputDir,
			ChartCount: len(saved),
		})
		if err != nil {
			return nil, errors.Wrap(err, "archive run")
		}
		result.RunID = runID
		log.Info().Str("run_id", runID).Msg("stored report run in Postgres")
	}

	return result, nil
}

// plan lists the charts to render in file order. Charts whose optional input
// column is absent are left out and reported by file name.
func plan(cfg *config.Config, ds *dataset.Dataset, counts aggregate.SegmentCounts, values aggregate.SegmentValues, daily aggregate.Timeline) ([]job, []string) {
	r := chart.NewRenderer(cfg.OutputDir, cfg.DPI)
	segments := ds.Segments.Rows

	jobs := []job{
		{2, "RFM distribution plots", chart.FileRFMDistribution,
			func() (string, error) { return r.RFMDistribution(ds.Metrics) }},
		{3, "RFM segments visualization", chart.FileSegments,
			func() (string, error) { return r.Segments(counts) }},
		{4, "segment characteristics heatmap", chart.FileSegmentCharacteristic,
			func() (string, error) { return r.SegmentCharacteristics(aggregate.StatsBySegment(segments)) }},
		{5, "RFM scatter plot", chart.FileRFMScatter,
			func() (string, error) {
				sample := aggregate.Sample(segments, cfg.SampleSize, aggregate.NewRand(cfg.SampleSeed))
				return r.RFMScatter(sample)
			}},
	}
	var skipped []string

	if clusters, ok := aggregate.Clusters(ds.Segments).Get(); ok {
		jobs = append(jobs, job{6, "K-Means cluster visualization", chart.FileClusters,
			func() (string, error) { return r.Clusters(clusters) }})
	} else {
		skipped = append(skipped, chart.FileClusters)
		logSkip(6, chart.FileClusters, dataset.ColCluster, cfg.SegmentsPath)
	}

	if top, ok := aggregate.TopCustomers(ds.CLV, cfg.TopN).Get(); ok {
		jobs = append(jobs, job{7, "top customers visualization", chart.FileTopCustomers,
			func() (string, error) { return r.TopCustomers(top) }})
	} else {
		skipped = append(skipped, chart.FileTopCustomers)
		logSkip(7, chart.FileTopCustomers, dataset.ColPredictedCLV, cfg.CLVPath)
	}

	jobs = append(jobs,
		job{8, "segment value analysis", chart.FileSegmentValue,
			func() (string, error) { return r.SegmentValue(values) }},
		job{9, "transaction timeline", chart.FileTimeline,
			func() (string, error) { return r.Timeline(daily) }},
	)
	return jobs, skipped
}

// render runs the jobs with at most cfg.RenderWorkers in flight. The first
// failure cancels the jobs not yet started.
func render(ctx context.Context, cfg *config.Config, jobs []job) ([]string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output dir %s", cfg.OutputDir)
	}

	paths := make([]string, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.RenderWorkers)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stepf(j.step, "Creating "+j.title)
			path, err := j.render()
			if err != nil {
				return err
			}
			log.Info().Str("path", path).Msg("saved chart")
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func stepf(step int, title string) {
	log.Info().Msgf("[%d/%d] %s...", step, totalSteps, title)
}

func logSkip(step int, file, column, source string) {
	log.Info().
		Str("chart", file).
		Str("column", column).
		Str("source", source).
		Msgf("[%d/%d] skipped: column not present", step, totalSteps)
}

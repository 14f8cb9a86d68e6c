package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/akamensky/argparse"
	"github.com/google/uuid"

	"github.com/couchcryptid/altimeter-grid-etl/internal/adapter/gcs"
	"github.com/couchcryptid/altimeter-grid-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/altimeter-grid-etl/internal/adapter/kafka"
	"github.com/couchcryptid/altimeter-grid-etl/internal/adapter/ncfile"
	"github.com/couchcryptid/altimeter-grid-etl/internal/adapter/ncwriter"
	"github.com/couchcryptid/altimeter-grid-etl/internal/collocate"
	"github.com/couchcryptid/altimeter-grid-etl/internal/config"
	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
	"github.com/couchcryptid/altimeter-grid-etl/internal/observability"
	"github.com/couchcryptid/altimeter-grid-etl/internal/pipeline"
)

func main() {
	parser := argparse.NewParser("gridsat", "Grids along-track AODN altimeter data onto a regular ocean grid")
	mission := parser.IntPositional(&argparse.Options{
		Default: -1,
		Help:    "mission index, see --list-missions"})
	list := parser.Flag("l", "list-missions", &argparse.Options{
		Help: "print the mission table and exit"})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(2)
	}

	if *list {
		listMissions(os.Stdout)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, logCloser := observability.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, *mission, logger)
	stop()
	if err != nil {
		logger.Error("gridding run failed", "error", err)
		_ = logCloser.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, index int, logger *slog.Logger) error {
	m, err := domain.ResolveMission(index)
	if err != nil {
		return err
	}
	base := logger
	logger = logger.With("mission", m.Name)

	metrics := observability.NewMetrics()
	if cfg.MetricsTextfile != "" {
		defer func() {
			if err := observability.WriteTextfile(cfg.MetricsTextfile); err != nil {
				logger.Warn("write metrics textfile", "path", cfg.MetricsTextfile, "error", err)
			}
		}()
	}

	clock := domain.Clock()
	start := clock.Now()
	grid, err := ncfile.LoadGrid(cfg.GridFile)
	if err != nil {
		return err
	}
	metrics.StageDuration.WithLabelValues("grid").Observe(clock.Since(start).Seconds())
	logger.Info("grid loaded", "path", cfg.GridFile, "grid_points", grid.Len())

	params := collocate.DefaultParams()
	params.TimeWindow = cfg.TimeWindow
	params.Radius = cfg.InfluenceRadius
	params.Neighbours = cfg.Neighbours
	params.Workers = cfg.Workers

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	runID := uuid.NewString()
	p := pipeline.New(
		ncfile.NewTileReader(cfg.DataDir, m),
		collocate.New(grid, params, logger),
		newSink(cfg),
		pipeline.Options{
			RunID:          runID,
			Mission:        m,
			BufferCapacity: cfg.BufferCapacity(),
			QC:             domain.DefaultQCThresholds(m),
			Window:         cfg.DateWindow,
			Bounds:         params.Bounds,
			GridPoints:     grid.Len(),
		},
		base, metrics,
	)

	if cfg.HTTPAddr != "" {
		srvCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		httpadapter.NewServer(cfg.HTTPAddr, p, logger).Serve(srvCtx, cfg.ShutdownTimeout)
	}

	if cfg.GCSBucket != "" {
		up, err := gcs.NewUploader(ctx, cfg.GCSBucket, cfg.GCSPrefix, cfg.GCSCredentialsFile, logger)
		if err != nil {
			return err
		}
		defer closeQuietly(logger, "gcs client", up)
		p.WithUploader(up)
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub := kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer closeQuietly(logger, "kafka publisher", pub)
		p.WithPublisher(pub)
	}

	logger.Info("gridding run starting",
		"run_id", runID, "data_dir", cfg.DataDir, "output_dir", cfg.OutputDir, "format", cfg.OutputFormat,
		"date_min", cfg.DateWindow.Start, "date_max", cfg.DateWindow.End)

	if _, err := p.Run(ctx); err != nil {
		return err
	}
	return nil
}

func newSink(cfg *config.Config) pipeline.Sink {
	if cfg.OutputFormat == config.FormatCDF {
		return ncfile.NewCDFSink(cfg.OutputDir)
	}
	return ncwriter.NewSink(cfg.OutputDir)
}

func closeQuietly(logger *slog.Logger, what string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Warn("close "+what, "error", err)
	}
}

func listMissions(w io.Writer) {
	for _, m := range domain.Missions() {
		fmt.Fprintf(w, "%2d  %-12s %s\n", m.Index, m.Dir, filepath.Join("<data_dir>", m.Dir))
	}
}

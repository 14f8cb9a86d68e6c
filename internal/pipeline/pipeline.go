package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/altimeter-grid-etl/internal/collocate"
	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
	"github.com/couchcryptid/altimeter-grid-etl/internal/observability"
)

// TileSource reads one archive tile.
type TileSource interface {
	ReadTile(key domain.TileKey) domain.TileResult
}

// Collocator grids quality-controlled observations onto the target points.
type Collocator interface {
	Run(ctx context.Context, obs domain.Observations) (domain.Collocated, collocate.Stats, error)
}

// Sink persists the gridded output and returns where it was written.
type Sink interface {
	Write(ctx context.Context, meta domain.OutputMeta, c domain.Collocated) (string, error)
}

// Uploader copies a finished output file somewhere else and returns its URI.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

// Publisher announces a finished run.
type Publisher interface {
	Publish(ctx context.Context, s domain.RunSummary) error
}

// Options configures a single run.
type Options struct {
	RunID          string
	Mission        domain.Mission
	Keys           []domain.TileKey
	BufferCapacity int
	QC             domain.QCThresholds
	Window         domain.DateWindow
	Bounds         domain.Bounds
	GridPoints     int
}

// Pipeline orchestrates ingest, quality control, collocation and output for one mission.
type Pipeline struct {
	tiles      TileSource
	collocator Collocator
	sink       Sink
	uploader   Uploader
	publisher  Publisher
	opts       Options
	logger     *slog.Logger
	metrics    *observability.Metrics
	ready      atomic.Bool

	current   atomic.Pointer[string]
	tilesRead atomic.Int64
	records   atomic.Int64
}

// New creates a Pipeline with the given stages and observability.
func New(tiles TileSource, c Collocator, sink Sink, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if opts.Keys == nil {
		opts.Keys = domain.TileKeys()
	}
	return &Pipeline{
		tiles:      tiles,
		collocator: c,
		sink:       sink,
		opts:       opts,
		logger:     logger.With("mission", opts.Mission.Name, "run_id", opts.RunID),
		metrics:    metrics,
	}
}

// WithUploader sets an optional uploader run after the output is written.
func (p *Pipeline) WithUploader(u Uploader) *Pipeline {
	p.uploader = u
	return p
}

// WithPublisher sets an optional publisher for the run summary.
func (p *Pipeline) WithPublisher(pub Publisher) *Pipeline {
	p.publisher = pub
	return p
}

// CheckReadiness returns nil once a run is in progress.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline is not running")
	}
	return nil
}

// Progress reports the current stage and how far ingest has got.
func (p *Pipeline) Progress() domain.Progress {
	stage := "idle"
	if s := p.current.Load(); s != nil {
		stage = *s
	}
	return domain.Progress{
		RunID:      p.opts.RunID,
		Mission:    p.opts.Mission.Name,
		Stage:      stage,
		TilesRead:  int(p.tilesRead.Load()),
		TilesTotal: len(p.opts.Keys),
		Records:    int(p.records.Load()),
	}
}

// Run grids the mission archive and writes one output file. Nothing is
// written when any stage before output fails or ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) (domain.RunSummary, error) {
	clock := domain.Clock()
	summary := domain.RunSummary{
		RunID:           p.opts.RunID,
		Mission:         p.opts.Mission.Name,
		Tiles:           map[domain.TileStatus]int{},
		GridWaterPoints: p.opts.GridPoints,
		StartedAt:       clock.Now().UTC(),
	}

	p.logger.Info("pipeline started", "tiles", len(p.opts.Keys), "grid_points", p.opts.GridPoints)
	p.metrics.PipelineRunning.Set(1)
	p.ready.Store(true)
	defer func() {
		p.metrics.PipelineRunning.Set(0)
		p.ready.Store(false)
		done := "done"
		p.current.Store(&done)
	}()

	var raw domain.Observations
	err := p.stage("ingest", func() error {
		var err error
		raw, err = p.ingest(ctx, &summary)
		return err
	})
	if err != nil {
		return summary, err
	}
	summary.RawRecords = raw.Len()
	p.metrics.RawRecords.Add(float64(raw.Len()))

	var obs domain.Observations
	err = p.stage("qc", func() error {
		var err error
		obs, err = domain.ApplyQC(raw, p.opts.QC, p.opts.Window)
		return err
	})
	if err != nil {
		return summary, err
	}
	summary.QCRecords = obs.Len()
	p.metrics.QCRecords.Add(float64(obs.Len()))
	p.logger.Info("quality control done", "records", obs.Len(), "raw_records", raw.Len())

	var gridded domain.Collocated
	err = p.stage("collocate", func() error {
		c, stats, err := p.collocator.Run(ctx, obs)
		if err != nil {
			return err
		}
		gridded = c
		summary.HoursTotal = stats.Hours
		summary.HoursSkipped = stats.HoursSkipped
		return nil
	})
	if err != nil {
		return summary, err
	}
	summary.Collocated = gridded.Len()
	p.metrics.HoursProcessed.Add(float64(summary.HoursTotal))
	p.metrics.HoursSkipped.Add(float64(summary.HoursSkipped))
	p.metrics.Collocated.Add(float64(gridded.Len()))

	out := domain.FinalSanity(gridded, p.opts.Bounds)
	summary.OutputRecords = out.Len()
	p.metrics.OutputRecords.Add(float64(out.Len()))

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	err = p.stage("write", func() error {
		path, err := p.sink.Write(ctx, domain.OutputMeta{RunID: p.opts.RunID, Mission: p.opts.Mission}, out)
		if err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		summary.OutputPath = path
		return nil
	})
	if err != nil {
		return summary, err
	}
	p.logger.Info("output written", "path", summary.OutputPath, "records", out.Len())

	if p.uploader != nil {
		err = p.stage("upload", func() error {
			uri, err := p.uploader.Upload(ctx, summary.OutputPath)
			if err != nil {
				return fmt.Errorf("upload output: %w", err)
			}
			summary.OutputURI = uri
			return nil
		})
		if err != nil {
			return summary, err
		}
	}

	summary.FinishedAt = clock.Now().UTC()
	p.logger.Info("pipeline finished", summary.LogArgs()...)

	if p.publisher != nil {
		// The output is already in place; a failed notification does not fail the run.
		_ = p.stage("publish", func() error {
			if err := p.publisher.Publish(ctx, summary); err != nil {
				p.logger.Warn("publish run summary failed", "error", err)
			}
			return nil
		})
	}
	return summary, nil
}

// stage times fn and records it under the stage label.
func (p *Pipeline) stage(name string, fn func() error) error {
	p.current.Store(&name)
	clock := domain.Clock()
	start := clock.Now()
	err := fn()
	p.metrics.StageDuration.WithLabelValues(name).Observe(clock.Since(start).Seconds())
	if err != nil {
		p.logger.Error("stage failed", "stage", name, "error", err)
	}
	return err
}

// ingest walks every tile key and concatenates the usable batches.
func (p *Pipeline) ingest(ctx context.Context, summary *domain.RunSummary) (domain.Observations, error) {
	acc := domain.NewAccumulator(p.opts.BufferCapacity)
	lastLat := 0
	for i, key := range p.opts.Keys {
		if err := ctx.Err(); err != nil {
			return domain.Observations{}, err
		}

		res := p.tiles.ReadTile(key)
		p.tilesRead.Add(1)
		summary.Tiles[res.Status]++
		p.metrics.Tiles.WithLabelValues(string(res.Status)).Inc()

		switch res.Status {
		case domain.TileOK:
			if res.Family != domain.FamilyPreference[0] {
				summary.FamilyFallback++
				p.metrics.FamilyFallbacks.Inc()
				p.logger.Info("wave height family fallback",
					"tile_lat", key.Lat, "tile_lon", key.Lon, "family", res.Family)
			}
			if err := acc.Append(res.Batch); err != nil {
				return domain.Observations{}, fmt.Errorf("tile %s: %w", res.Path, err)
			}
			p.records.Store(int64(acc.Len()))
		case domain.TileAbsent, domain.TileShort:
			p.logger.Debug("tile skipped", "tile_lat", key.Lat, "tile_lon", key.Lon, "status", res.Status)
		case domain.TileMalformed:
			p.logger.Warn("malformed tile skipped",
				"path", res.Path, "tile_lat", key.Lat, "tile_lon", key.Lon, "reason", res.Reason)
		}

		if i == 0 || key.Lat != lastLat {
			lastLat = key.Lat
			p.logger.Debug("ingesting latitude band", "tile_lat", key.Lat, "records", acc.Len())
		}
	}
	p.logger.Info("ingest done", "records", acc.Len(),
		"tiles_ok", summary.Tiles[domain.TileOK], "tiles_malformed", summary.Tiles[domain.TileMalformed])
	return acc.Observations(), nil
}

package collocate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
)

// MinHourSupport is the number of observations an hourly bucket needs
// inside the time window to be gridded.
const MinHourSupport = 3

// Params configures the collocation of observations onto the grid.
type Params struct {
	TimeWindow     float64 // half-window in seconds, strict
	Radius         float64 // metres
	Neighbours     int
	Workers        int
	Bounds         domain.Bounds
	CapacityFactor int // output capacity as a multiple of the input count
}

// DefaultParams returns the parameters of the AODN gridding runs.
func DefaultParams() Params {
	return Params{
		TimeWindow:     1800,
		Radius:         25000,
		Neighbours:     8,
		Workers:        5,
		Bounds:         domain.DefaultBounds(),
		CapacityFactor: 2,
	}
}

// Stats counts hourly buckets seen during a run.
type Stats struct {
	Hours        int
	HoursSkipped int
}

// Collocator maps QC-passed observations onto a fixed grid, one hourly
// bucket at a time.
type Collocator struct {
	grid     domain.Grid
	params   Params
	resample Resampler
	logger   *slog.Logger
}

// New creates a collocator for the grid.
func New(grid domain.Grid, params Params, logger *slog.Logger) *Collocator {
	return &Collocator{
		grid:   grid,
		params: params,
		resample: Resampler{
			Radius:     params.Radius,
			Neighbours: params.Neighbours,
			Workers:    params.Workers,
		},
		logger: logger,
	}
}

// Run grids obs, whose Time column is seconds since 1970. Buckets with fewer
// than MinHourSupport observations inside the window produce nothing. Grid
// points whose calibrated wave height or wind fall outside the plausibility
// bounds are dropped before they reach the output buffer.
func (c *Collocator) Run(ctx context.Context, obs domain.Observations) (domain.Collocated, Stats, error) {
	var stats Stats
	out := domain.NewOutputBuffer(c.params.CapacityFactor * obs.Len())

	order := timeOrder(obs.Time)
	sortedTimes := make([]float64, len(order))
	for i, j := range order {
		sortedTimes[i] = obs.Time[j]
	}

	tmin, tmax := obs.TimeRange()
	for _, hour := range domain.HourlyAxis(tmin, tmax) {
		if err := ctx.Err(); err != nil {
			return domain.Collocated{}, stats, err
		}
		stats.Hours++

		rows := window(order, sortedTimes, hour, c.params.TimeWindow)
		if len(rows) < MinHourSupport {
			stats.HoursSkipped++
			continue
		}

		sub := obs.Select(rows)
		for i, lon := range sub.Lon {
			sub.Lon[i] = domain.NormalizeLon180(lon)
		}

		field, err := c.resample.Resample(ctx, c.grid, sub)
		if err != nil {
			return domain.Collocated{}, stats, fmt.Errorf("resample hour %.0f: %w", hour, err)
		}

		kept := 0
		for i, p := range c.grid.Points {
			if !c.params.Bounds.ValidSWH(field.SWHCal[i]) || !c.params.Bounds.ValidWind(field.Wind[i]) {
				continue
			}
			err := out.Append(domain.CollocatedPoint{
				Time: hour, Lat: p.Lat, Lon: p.Lon,
				SWH: field.SWH[i], SWHStd: field.SWHStd[i], SWHCount: field.SWHCount[i],
				SWHCal: field.SWHCal[i], SWHC: field.SWHC[i],
				Wind: field.Wind[i], WindCal: field.WindCal[i],
			})
			if err != nil {
				return domain.Collocated{}, stats, err
			}
			kept++
		}
		c.logger.Debug("hour gridded", "hour", hour, "records", len(rows), "points", kept)
	}
	return out.Collocated(), stats, nil
}

// timeOrder returns row indices sorted by time. Ties keep input order.
func timeOrder(t []float64) []int {
	order := make([]int, len(t))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return t[order[a]] < t[order[b]] })
	return order
}

// window returns the rows, in input order, whose time lies strictly within
// half of the hour.
func window(order []int, sorted []float64, hour, half float64) []int {
	lo := sort.Search(len(sorted), func(i int) bool { return sorted[i] > hour-half })
	var rows []int
	for i := lo; i < len(sorted) && sorted[i] < hour+half; i++ {
		if math.Abs(sorted[i]-hour) < half {
			rows = append(rows, order[i])
		}
	}
	sort.Ints(rows)
	return rows
}

package collocate

import (
	"context"
	"math"

	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
)

// FillValue is assigned to targets with no neighbour inside the radius.
const FillValue = 0.0

// Field is the gridded result of one hourly bucket, one entry per grid point.
type Field struct {
	SWH      []float64
	SWHStd   []float64
	SWHCount []float64
	SWHCal   []float64
	SWHC     []float64
	Wind     []float64
	WindCal  []float64
}

func newField(n int) Field {
	return Field{
		SWH:      make([]float64, n),
		SWHStd:   make([]float64, n),
		SWHCount: make([]float64, n),
		SWHCal:   make([]float64, n),
		SWHC:     make([]float64, n),
		Wind:     make([]float64, n),
		WindCal:  make([]float64, n),
	}
}

// Resampler spreads observations onto grid points with the triangular
// weight. Grid points are split into contiguous chunks processed by a fixed
// number of workers; each worker writes only its own chunk.
type Resampler struct {
	Radius     float64 // metres
	Neighbours int
	Workers    int
}

// Resample grids every channel of obs, whose longitudes must already be on
// the grid's -180..180 axis.
func (r Resampler) Resample(ctx context.Context, grid domain.Grid, obs domain.Observations) (Field, error) {
	n := grid.Len()
	field := newField(n)
	if n == 0 {
		return field, nil
	}
	ix := NewIndex(obs.Lat, obs.Lon, r.Radius, r.Neighbours)

	workers := max(r.Workers, 1)
	chunk := (n + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			var buf []orb.Pointer
			var nb []Neighbour
			for i := start; i < end; i++ {
				if (i-start)%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				p := grid.Points[i]
				nb, buf = ix.Nearest(p.Lat, p.Lon, buf)
				r.fill(field, i, nb, obs)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Field{}, err
	}
	return field, nil
}

func (r Resampler) fill(f Field, i int, nb []Neighbour, obs domain.Observations) {
	if len(nb) == 0 {
		f.SWH[i], f.SWHCal[i], f.SWHC[i] = FillValue, FillValue, FillValue
		f.Wind[i], f.WindCal[i] = FillValue, FillValue
		f.SWHStd[i] = math.NaN()
		f.SWHCount[i] = 0
		return
	}

	w := make([]float64, len(nb))
	for k, n := range nb {
		w[k] = Weight(n.Distance, r.Radius)
	}
	mean, std := weightedStats(w, nb, obs.SWH)
	f.SWH[i] = mean
	f.SWHStd[i] = std
	f.SWHCount[i] = float64(len(nb))
	f.SWHCal[i] = weightedMean(w, nb, obs.SWHCal)
	f.SWHC[i] = weightedMean(w, nb, obs.SWHC)
	f.Wind[i] = weightedMean(w, nb, obs.Wind)
	f.WindCal[i] = weightedMean(w, nb, obs.WindCal)
}

func weightedMean(w []float64, nb []Neighbour, v []float64) float64 {
	var sw, swx float64
	for k, n := range nb {
		sw += w[k]
		swx += w[k] * v[n.Row]
	}
	return swx / sw
}

// weightedStats returns the weighted mean and the unbiased reliability
// weighted standard deviation sqrt(Σw(x-μ)² / (V1 - V2/V1)). The deviation
// is NaN with fewer than two contributors.
func weightedStats(w []float64, nb []Neighbour, v []float64) (float64, float64) {
	mean := weightedMean(w, nb, v)
	if len(nb) < 2 {
		return mean, math.NaN()
	}
	var v1, v2, ss float64
	for k, n := range nb {
		d := v[n.Row] - mean
		v1 += w[k]
		v2 += w[k] * w[k]
		ss += w[k] * d * d
	}
	return mean, math.Sqrt(ss / (v1 - v2/v1))
}

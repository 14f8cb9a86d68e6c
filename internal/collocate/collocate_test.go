package collocate_test

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/altimeter-grid-etl/internal/collocate"
	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
)

const baseHour = 3600.0 * 277778 // 2001-09-09T02:00:00Z

func TestWeight(t *testing.T) {
	const r = 25000.0
	assert.Equal(t, 1.0, collocate.Weight(0, r))
	assert.InDelta(t, 0.0, collocate.Weight(r, r), 1e-4)
	assert.Equal(t, 0.0, collocate.Weight(3*r, r))

	prev := 1.0
	for d := 0.0; d <= r; d += r / 50 {
		w := collocate.Weight(d, r)
		assert.GreaterOrEqual(t, w, 0.0)
		assert.LessOrEqual(t, w, 1.0)
		assert.LessOrEqual(t, w, prev, "weight must not grow with distance")
		prev = w
	}
}

func TestIndex_NeighbourLimitAndOrder(t *testing.T) {
	var lat, lon []float64
	for i := range 12 {
		lat = append(lat, 10+float64(i)*0.01)
		lon = append(lon, 20)
	}
	ix := collocate.NewIndex(lat, lon, 25000, 8)
	require.Equal(t, 12, ix.Len())

	nb, _ := ix.Nearest(10, 20, nil)
	require.Len(t, nb, 8)
	for k, n := range nb {
		assert.Equal(t, k, n.Row)
		if k > 0 {
			assert.GreaterOrEqual(t, n.Distance, nb[k-1].Distance)
		}
	}
}

func TestIndex_RadiusIsStrict(t *testing.T) {
	ix := collocate.NewIndex([]float64{0, 0.5}, []float64{0, 0}, 25000, 8)
	nb, _ := ix.Nearest(0, 0, nil)
	require.Len(t, nb, 1, "the point 55 km away is beyond the radius")
	assert.Equal(t, 0, nb[0].Row)
	assert.Zero(t, nb[0].Distance)
}

func TestIndex_Antimeridian(t *testing.T) {
	ix := collocate.NewIndex([]float64{0, 0}, []float64{179.95, -170}, 25000, 8)
	nb, _ := ix.Nearest(0, -179.95, nil)
	require.Len(t, nb, 1)
	assert.Equal(t, 0, nb[0].Row)
	assert.InDelta(t, 11132, nb[0].Distance, 50)

	nb, _ = ix.Nearest(0, 179.99, nil)
	require.Len(t, nb, 1)
	assert.Equal(t, 0, nb[0].Row)
}

func TestIndex_AcrossPole(t *testing.T) {
	ix := collocate.NewIndex([]float64{89.95}, []float64{180}, 25000, 8)
	nb, _ := ix.Nearest(89.95, 0, nil)
	require.Len(t, nb, 1)
	assert.InDelta(t, 11132, nb[0].Distance, 50)
}

func obsAt(times, lats, lons []float64) domain.Observations {
	n := len(times)
	col := func(v float64) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = v
		}
		return out
	}
	return domain.Observations{
		Time: times, Lat: lats, Lon: lons,
		SWH: col(2), SWHCal: col(2.1), SWHC: col(1.9),
		Wind: col(8), WindCal: col(8.2),
		Sig0Std: col(0.1), SWHObs: col(20), SWHStd: col(0.2), SWHQC: col(0),
	}
}

func TestResampler_WeightedStatistics(t *testing.T) {
	// Two neighbours: one on the target, one 12.5 km north.
	dLat := 12500 / 6378137.0 * 180 / math.Pi
	obs := obsAt([]float64{baseHour, baseHour}, []float64{0, dLat}, []float64{0, 0})
	obs.SWH = []float64{2, 4}

	grid := domain.Grid{Points: []domain.GridPoint{{Lat: 0, Lon: 0}, {Lat: 5, Lon: 5}}}
	r := collocate.Resampler{Radius: 25000, Neighbours: 8, Workers: 2}
	field, err := r.Resample(context.Background(), grid, obs)
	require.NoError(t, err)

	w1 := collocate.Weight(0, 25000)
	w2 := collocate.Weight(12500, 25000)
	mean := (w1*2 + w2*4) / (w1 + w2)
	v1, v2 := w1+w2, w1*w1+w2*w2
	std := math.Sqrt((w1*(2-mean)*(2-mean) + w2*(4-mean)*(4-mean)) / (v1 - v2/v1))

	assert.InDelta(t, mean, field.SWH[0], 1e-3)
	assert.InDelta(t, std, field.SWHStd[0], 1e-3)
	assert.Equal(t, 2.0, field.SWHCount[0])
	assert.InDelta(t, 2.1, field.SWHCal[0], 1e-9)
	assert.InDelta(t, 8.0, field.Wind[0], 1e-9)

	// No neighbour: fill value, zero count.
	assert.Equal(t, collocate.FillValue, field.SWH[1])
	assert.Equal(t, collocate.FillValue, field.Wind[1])
	assert.Zero(t, field.SWHCount[1])
}

func TestResampler_SingleNeighbourHasNoDeviation(t *testing.T) {
	obs := obsAt([]float64{baseHour}, []float64{0}, []float64{0})
	grid := domain.Grid{Points: []domain.GridPoint{{Lat: 0, Lon: 0}}}
	field, err := collocate.Resampler{Radius: 25000, Neighbours: 8, Workers: 1}.
		Resample(context.Background(), grid, obs)
	require.NoError(t, err)
	assert.Equal(t, 2.0, field.SWH[0])
	assert.True(t, math.IsNaN(field.SWHStd[0]))
	assert.Equal(t, 1.0, field.SWHCount[0])
}

func TestResampler_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	obs := obsAt([]float64{baseHour}, []float64{0}, []float64{0})
	grid := domain.Grid{Points: []domain.GridPoint{{Lat: 0, Lon: 0}}}
	_, err := collocate.Resampler{Radius: 25000, Neighbours: 8, Workers: 1}.Resample(ctx, grid, obs)
	require.ErrorIs(t, err, context.Canceled)
}

// scenarioTrack returns 20 observations 6 minutes apart, clustered within
// about 2 km of (-30, 150).
func scenarioTrack() domain.Observations {
	var times, lats, lons []float64
	for i := range 20 {
		times = append(times, baseHour+float64(i)*360)
		lats = append(lats, -30+float64(i%5)*0.004)
		lons = append(lons, 150+float64(i%4)*0.004)
	}
	return obsAt(times, lats, lons)
}

func TestCollocator_NearAndFarPoints(t *testing.T) {
	near := domain.GridPoint{Lat: -30, Lon: 150}
	far := domain.GridPoint{Lat: -29.55, Lon: 150} // ~50 km north
	grid := domain.Grid{Points: []domain.GridPoint{near, far}}

	c := collocate.New(grid, collocate.DefaultParams(), slog.Default())
	out, stats, err := c.Run(context.Background(), scenarioTrack())
	require.NoError(t, err)

	// Buckets at baseHour (5 records), +1h (9 records) and +2h (4 records)
	// have support; the padding hours do not.
	require.Equal(t, 3, out.Len())
	assert.Equal(t, []float64{baseHour, baseHour + 3600, baseHour + 7200}, out.Time)
	for i := range out.Len() {
		p := out.At(i)
		assert.Equal(t, near, domain.GridPoint{Lat: p.Lat, Lon: p.Lon})
		assert.InDelta(t, 2.0, p.SWH, 1e-9)
		assert.InDelta(t, 2.1, p.SWHCal, 1e-9)
		assert.InDelta(t, 8.2, p.WindCal, 1e-9)
		assert.LessOrEqual(t, p.SWHCount, 8.0)
		assert.GreaterOrEqual(t, p.SWHCount, 3.0)
	}
	assert.Equal(t, 5, stats.Hours)
	assert.Equal(t, 2, stats.HoursSkipped)
}

func TestCollocator_MinimumSupport(t *testing.T) {
	grid := domain.Grid{Points: []domain.GridPoint{{Lat: 0, Lon: 0}}}
	times := []float64{
		baseHour - 60, baseHour + 60, // two records around baseHour
		baseHour + 7200 - 60, baseHour + 7200, baseHour + 7200 + 60,
	}
	obs := obsAt(times, []float64{0, 0, 0, 0, 0}, []float64{0, 0, 0, 0, 0})

	c := collocate.New(grid, collocate.DefaultParams(), slog.Default())
	out, _, err := c.Run(context.Background(), obs)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, baseHour+7200, out.Time[0])
	assert.Equal(t, 3.0, out.SWHCount[0])
}

func TestCollocator_NormalizesLongitude(t *testing.T) {
	grid := domain.Grid{Points: []domain.GridPoint{{Lat: 10, Lon: -100}}}
	obs := obsAt(
		[]float64{baseHour, baseHour, baseHour},
		[]float64{10, 10, 10},
		[]float64{260, 260.01, 259.99},
	)
	out, _, err := collocate.New(grid, collocate.DefaultParams(), slog.Default()).Run(context.Background(), obs)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, -100.0, out.Lon[0])
}

func TestCollocator_DropsImplausibleGridPoints(t *testing.T) {
	grid := domain.Grid{Points: []domain.GridPoint{{Lat: 0, Lon: 0}}}
	obs := obsAt([]float64{baseHour, baseHour, baseHour}, []float64{0, 0, 0}, []float64{0, 0, 0})
	obs.Wind = []float64{70, 70, 70}

	out, stats, err := collocate.New(grid, collocate.DefaultParams(), slog.Default()).Run(context.Background(), obs)
	require.NoError(t, err)
	assert.Zero(t, out.Len())
	assert.Equal(t, 2, stats.HoursSkipped, "only the padding hours lack support")
}

func TestCollocator_OutputCapacity(t *testing.T) {
	points := make([]domain.GridPoint, 10)
	for i := range points {
		points[i] = domain.GridPoint{Lat: 0, Lon: float64(i) * 0.001}
	}
	obs := obsAt([]float64{baseHour, baseHour, baseHour}, []float64{0, 0, 0}, []float64{0, 0, 0})

	_, _, err := collocate.New(domain.Grid{Points: points}, collocate.DefaultParams(), slog.Default()).
		Run(context.Background(), obs)
	require.ErrorIs(t, err, domain.ErrOutputCapacity)
}

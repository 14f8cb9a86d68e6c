//go:build integration

package ncwriter_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/altimeter-grid-etl/internal/adapter/ncfile"
	"github.com/couchcryptid/altimeter-grid-etl/internal/adapter/ncwriter"
	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
)

func TestSink_RoundTrip(t *testing.T) {
	m, err := domain.ResolveMission(0)
	require.NoError(t, err)
	c := domain.Collocated{
		Time: []float64{1e9, 1e9 + 3600, 1e9 + 7200}, Lat: []float64{-30, -29, -28}, Lon: []float64{150, 151, -179},
		SWH: []float64{2, 3, 4}, SWHStd: []float64{0.1, 0.2, math.NaN()}, SWHCount: []float64{4, 5, 1},
		SWHCal: []float64{2.1, 3.1, 4.1}, SWHC: []float64{1.9, 2.9, 3.9},
		Wind: []float64{8, 9, 10}, WindCal: []float64{8.2, 9.2, 10.2},
	}

	path, err := ncwriter.NewSink(t.TempDir()).Write(context.Background(), domain.OutputMeta{RunID: "it", Mission: m}, c)
	require.NoError(t, err)

	out, err := ncfile.ReadOutput(path)
	require.NoError(t, err)
	assert.Empty(t, out.Missing)
	assert.Equal(t, ncfile.History, out.History)
	assert.Equal(t, "m", out.Units["hsk"])
	assert.Equal(t, c.Time, out.Records.Time)
	assert.Equal(t, 3, len(out.Records.WindCal))
	assert.InDelta(t, 10.2, out.Records.WindCal[2], 1e-5)
	assert.True(t, math.IsNaN(out.Records.SWHStd[2]))
}

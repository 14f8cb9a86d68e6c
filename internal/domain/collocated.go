package domain

import (
	"fmt"
	"math"
)

// Collocated holds gridded records as parallel columns, one row per
// (hour, water point) that survived collocation.
type Collocated struct {
	Time     []float64 // seconds since 1970
	Lat      []float64
	Lon      []float64
	SWH      []float64
	SWHStd   []float64
	SWHCount []float64
	SWHCal   []float64
	SWHC     []float64
	Wind     []float64
	WindCal  []float64
}

// Len is the number of records.
func (c Collocated) Len() int {
	return len(c.Time)
}

// CollocatedPoint is one gridded record.
type CollocatedPoint struct {
	Time     float64
	Lat      float64
	Lon      float64
	SWH      float64
	SWHStd   float64
	SWHCount float64
	SWHCal   float64
	SWHC     float64
	Wind     float64
	WindCal  float64
}

// At returns row i.
func (c Collocated) At(i int) CollocatedPoint {
	return CollocatedPoint{
		Time: c.Time[i], Lat: c.Lat[i], Lon: c.Lon[i],
		SWH: c.SWH[i], SWHStd: c.SWHStd[i], SWHCount: c.SWHCount[i],
		SWHCal: c.SWHCal[i], SWHC: c.SWHC[i],
		Wind: c.Wind[i], WindCal: c.WindCal[i],
	}
}

// OutputBuffer accumulates collocated records up to a fixed capacity.
type OutputBuffer struct {
	out      Collocated
	capacity int
}

// NewOutputBuffer sizes the output for capacity records.
func NewOutputBuffer(capacity int) *OutputBuffer {
	return &OutputBuffer{capacity: capacity}
}

// Append adds one record, failing with ErrOutputCapacity when full.
func (b *OutputBuffer) Append(p CollocatedPoint) error {
	if b.out.Len() >= b.capacity {
		return fmt.Errorf("%w: capacity %d", ErrOutputCapacity, b.capacity)
	}
	b.out.Time = append(b.out.Time, p.Time)
	b.out.Lat = append(b.out.Lat, p.Lat)
	b.out.Lon = append(b.out.Lon, p.Lon)
	b.out.SWH = append(b.out.SWH, p.SWH)
	b.out.SWHStd = append(b.out.SWHStd, p.SWHStd)
	b.out.SWHCount = append(b.out.SWHCount, p.SWHCount)
	b.out.SWHCal = append(b.out.SWHCal, p.SWHCal)
	b.out.SWHC = append(b.out.SWHC, p.SWHC)
	b.out.Wind = append(b.out.Wind, p.Wind)
	b.out.WindCal = append(b.out.WindCal, p.WindCal)
	return nil
}

// Len is the number of records appended.
func (b *OutputBuffer) Len() int {
	return b.out.Len()
}

// Collocated returns the appended records. The slices are shared.
func (b *OutputBuffer) Collocated() Collocated {
	return b.out
}

// maskOutside replaces values outside [min, max] with NaN in place.
func maskOutside(v []float64, lo, hi float64) {
	for i, x := range v {
		if x < lo || x > hi {
			v[i] = math.NaN()
		}
	}
}

// FinalSanity re-checks the plausibility bounds channel by channel, marking
// failures as NaN, then keeps rows with a positive time and a non-NaN,
// non-negative primary wave height. The input is not modified.
func FinalSanity(c Collocated, b Bounds) Collocated {
	clone := func(v []float64) []float64 { return append([]float64(nil), v...) }
	swh, swhCal, swhC := clone(c.SWH), clone(c.SWHCal), clone(c.SWHC)
	wind, windCal := clone(c.Wind), clone(c.WindCal)

	maskOutside(swh, b.MinValue, b.MaxSWH)
	maskOutside(swhCal, b.MinValue, b.MaxSWH)
	maskOutside(swhC, b.MinValue, b.MaxSWH)
	maskOutside(wind, b.MinValue, b.MaxWind)
	maskOutside(windCal, b.MinValue, b.MaxWind)

	var out Collocated
	for i := range c.Len() {
		// NaN compares false, so masked primary wave heights are dropped here.
		if !(c.Time[i] > 0 && swh[i] >= 0) {
			continue
		}
		out.Time = append(out.Time, c.Time[i])
		out.Lat = append(out.Lat, c.Lat[i])
		out.Lon = append(out.Lon, c.Lon[i])
		out.SWH = append(out.SWH, swh[i])
		out.SWHStd = append(out.SWHStd, c.SWHStd[i])
		out.SWHCount = append(out.SWHCount, c.SWHCount[i])
		out.SWHCal = append(out.SWHCal, swhCal[i])
		out.SWHC = append(out.SWHC, swhC[i])
		out.Wind = append(out.Wind, wind[i])
		out.WindCal = append(out.WindCal, windCal[i])
	}
	return out
}

package domain

import (
	"fmt"
	"math"
)

// Observations holds altimeter records as parallel columns. Row i of every
// column belongs to the same along-track sample. Order is tile traversal
// order, not time order.
type Observations struct {
	// Time is raw days since 1985 until converted with WithUnixTime.
	Time    []float64
	Lat     []float64
	Lon     []float64
	SWH     []float64 // primary band (Ku or Ka) significant wave height, m
	SWHCal  []float64 // calibrated primary band SWH, m
	SWHC    []float64 // C band SWH, m
	Wind    []float64 // 10 m wind speed, m/s
	WindCal []float64 // calibrated wind speed, m/s
	Sig0Std []float64 // backscatter std-dev, dB
	SWHObs  []float64 // number of high-rate samples behind SWH
	SWHStd  []float64 // SWH std-dev, m
	SWHQC   []float64 // SWH quality flag
}

// Len is the number of records. It trusts Time as the reference column.
func (o Observations) Len() int {
	return len(o.Time)
}

func (o Observations) columns() []struct {
	name string
	data []float64
} {
	return []struct {
		name string
		data []float64
	}{
		{"time", o.Time}, {"lat", o.Lat}, {"lon", o.Lon},
		{"swh", o.SWH}, {"swh_cal", o.SWHCal}, {"swh_c", o.SWHC},
		{"wind", o.Wind}, {"wind_cal", o.WindCal}, {"sig0_std", o.Sig0Std},
		{"swh_num_obs", o.SWHObs}, {"swh_std", o.SWHStd}, {"swh_qc", o.SWHQC},
	}
}

// Validate reports the first column whose length differs from Time.
func (o Observations) Validate() error {
	n := o.Len()
	for _, c := range o.columns() {
		if len(c.data) != n {
			return fmt.Errorf("column %s has %d samples, time has %d", c.name, len(c.data), n)
		}
	}
	return nil
}

// Select returns a new Observations holding the rows at idx, in idx order.
func (o Observations) Select(idx []int) Observations {
	pick := func(src []float64) []float64 {
		out := make([]float64, len(idx))
		for i, j := range idx {
			out[i] = src[j]
		}
		return out
	}
	return Observations{
		Time:    pick(o.Time),
		Lat:     pick(o.Lat),
		Lon:     pick(o.Lon),
		SWH:     pick(o.SWH),
		SWHCal:  pick(o.SWHCal),
		SWHC:    pick(o.SWHC),
		Wind:    pick(o.Wind),
		WindCal: pick(o.WindCal),
		Sig0Std: pick(o.Sig0Std),
		SWHObs:  pick(o.SWHObs),
		SWHStd:  pick(o.SWHStd),
		SWHQC:   pick(o.SWHQC),
	}
}

// WithUnixTime returns a copy whose Time column is seconds since 1970.
func (o Observations) WithUnixTime() Observations {
	t := make([]float64, len(o.Time))
	for i, d := range o.Time {
		t[i] = DaysToUnix(d)
	}
	o.Time = t
	return o
}

// TimeRange returns the minimum and maximum of Time. Both are NaN when empty.
func (o Observations) TimeRange() (float64, float64) {
	lo, hi := math.NaN(), math.NaN()
	for i, t := range o.Time {
		if i == 0 || t < lo {
			lo = t
		}
		if i == 0 || t > hi {
			hi = t
		}
	}
	return lo, hi
}

// Accumulator collects tile batches into one set of columns up to a fixed
// record capacity. It is owned by a single goroutine.
type Accumulator struct {
	obs      Observations
	capacity int
}

// NewAccumulator creates an empty accumulator that accepts up to capacity records.
func NewAccumulator(capacity int) *Accumulator {
	return &Accumulator{capacity: capacity}
}

// CapacityForPower returns 10^power, the buffer size for a buffer power.
func CapacityForPower(power int) int {
	c := 1
	for range power {
		c *= 10
	}
	return c
}

// Append copies a validated batch at the write cursor. It fails without
// modifying the buffers when the batch is malformed or would overflow.
func (a *Accumulator) Append(batch Observations) error {
	if err := batch.Validate(); err != nil {
		return err
	}
	if a.Len()+batch.Len() > a.capacity {
		return fmt.Errorf("%w: %d records buffered, %d incoming, capacity %d",
			ErrBufferCapacity, a.Len(), batch.Len(), a.capacity)
	}
	a.obs.Time = append(a.obs.Time, batch.Time...)
	a.obs.Lat = append(a.obs.Lat, batch.Lat...)
	a.obs.Lon = append(a.obs.Lon, batch.Lon...)
	a.obs.SWH = append(a.obs.SWH, batch.SWH...)
	a.obs.SWHCal = append(a.obs.SWHCal, batch.SWHCal...)
	a.obs.SWHC = append(a.obs.SWHC, batch.SWHC...)
	a.obs.Wind = append(a.obs.Wind, batch.Wind...)
	a.obs.WindCal = append(a.obs.WindCal, batch.WindCal...)
	a.obs.Sig0Std = append(a.obs.Sig0Std, batch.Sig0Std...)
	a.obs.SWHObs = append(a.obs.SWHObs, batch.SWHObs...)
	a.obs.SWHStd = append(a.obs.SWHStd, batch.SWHStd...)
	a.obs.SWHQC = append(a.obs.SWHQC, batch.SWHQC...)
	return nil
}

// Len is the write cursor: the number of records buffered so far.
func (a *Accumulator) Len() int {
	return a.obs.Len()
}

// Capacity is the maximum number of records the accumulator accepts.
func (a *Accumulator) Capacity() int {
	return a.capacity
}

// Observations returns the buffered records. The slices are shared.
func (a *Accumulator) Observations() Observations {
	return a.obs
}

package domain

import "fmt"

// Bounds are the plausibility limits shared by QC and the final sanity filter.
type Bounds struct {
	MinValue float64 // exclusive lower bound for wave height and wind
	MaxSWH   float64 // m
	MaxWind  float64 // m/s
}

// DefaultBounds returns the limits used by the AODN gridding runs.
func DefaultBounds() Bounds {
	return Bounds{MinValue: 0.01, MaxSWH: 20, MaxWind: 60}
}

// ValidSWH reports whether v lies strictly inside (MinValue, MaxSWH).
func (b Bounds) ValidSWH(v float64) bool {
	return v > b.MinValue && v < b.MaxSWH
}

// ValidWind reports whether v lies strictly inside (MinValue, MaxWind).
func (b Bounds) ValidWind(v float64) bool {
	return v > b.MinValue && v < b.MaxWind
}

// QCThresholds holds the per-record quality limits.
type QCThresholds struct {
	MaxSWHStd  float64
	MaxSig0Std float64
	MaxSWHQC   float64
	// MinSWHObs comes from the mission table.
	MinSWHObs float64
	Bounds    Bounds
}

// DefaultQCThresholds returns the standard limits for a mission.
func DefaultQCThresholds(m Mission) QCThresholds {
	return QCThresholds{
		MaxSWHStd:  1.5,
		MaxSig0Std: 0.8,
		MaxSWHQC:   2.0,
		MinSWHObs:  m.MinSWHObs,
		Bounds:     DefaultBounds(),
	}
}

// MinQCRecords is the smallest QC-passed record count worth collocating.
const MinQCRecords = 11

// Passes reports whether record i satisfies every threshold and lies inside
// the date window, given in raw days-since-1985. NaN fields never pass.
func (q QCThresholds) Passes(o Observations, i int, dayMin, dayMax float64) bool {
	return o.SWHStd[i] <= q.MaxSWHStd &&
		o.Sig0Std[i] <= q.MaxSig0Std &&
		o.SWHObs[i] >= q.MinSWHObs &&
		o.SWHQC[i] <= q.MaxSWHQC &&
		q.Bounds.ValidSWH(o.SWH[i]) &&
		q.Bounds.ValidWind(o.Wind[i]) &&
		o.Time[i] >= dayMin && o.Time[i] <= dayMax
}

// QualityFilter returns the indices of records passing QC inside the window.
func QualityFilter(o Observations, q QCThresholds, w DateWindow) []int {
	dayMin, dayMax := w.Days()
	idx := make([]int, 0, o.Len()/2)
	for i := range o.Len() {
		if q.Passes(o, i, dayMin, dayMax) {
			idx = append(idx, i)
		}
	}
	return idx
}

// ApplyQC filters o and converts the survivors to seconds since 1970. It
// fails with ErrNoQCRecords when fewer than MinQCRecords pass.
func ApplyQC(o Observations, q QCThresholds, w DateWindow) (Observations, error) {
	idx := QualityFilter(o, q, w)
	if len(idx) < MinQCRecords {
		return Observations{}, fmt.Errorf("%w: %d of %d records passed", ErrNoQCRecords, len(idx), o.Len())
	}
	return o.Select(idx).WithUnixTime(), nil
}

package domain

import "math"

// HourSeconds is the spacing of the collocation time axis.
const HourSeconds = 3600.0

// HourlyAxis builds the hourly timestamps (seconds since 1970) covering
// [tmin, tmax] with one hour of padding on each side: it starts one hour
// before the hour floor of tmin and ends one hour after the hour ceiling of
// tmax, both inclusive. Empty for an inverted or NaN range.
func HourlyAxis(tmin, tmax float64) []float64 {
	if math.IsNaN(tmin) || math.IsNaN(tmax) || tmax < tmin {
		return nil
	}
	start := math.Floor(tmin/HourSeconds)*HourSeconds - HourSeconds
	end := math.Ceil(tmax/HourSeconds)*HourSeconds + HourSeconds
	n := int(math.Round((end-start)/HourSeconds)) + 1
	axis := make([]float64, n)
	for i := range axis {
		axis[i] = start + float64(i)*HourSeconds
	}
	return axis
}

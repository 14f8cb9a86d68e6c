package domain

import (
	"fmt"
	"sort"
)

// GridPoint is a target water point, longitude on the -180..180 axis.
type GridPoint struct {
	Lat float64
	Lon float64
}

// Grid is the ordered set of water points observations are collocated onto.
type Grid struct {
	Points []GridPoint
}

// Len is the number of water points.
func (g Grid) Len() int {
	return len(g.Points)
}

// NormalizeLon180 maps a 0..360 longitude onto -180..180. Values up to and
// including 180 are left as they are.
func NormalizeLon180(lon float64) float64 {
	if lon > 180 {
		return lon - 360
	}
	return lon
}

// NewGrid extracts the water points of a mask grid. mask is indexed
// [lat][lon] with positive values marking water. Longitudes are shifted to
// -180..180 and columns reordered to ascending longitude, so points come out
// latitude-major in ascending shifted longitude.
func NewGrid(lats, lons []float64, mask [][]float64) (Grid, error) {
	if len(mask) != len(lats) {
		return Grid{}, fmt.Errorf("mask has %d rows, latitude has %d values", len(mask), len(lats))
	}

	shifted := make([]float64, len(lons))
	order := make([]int, len(lons))
	for j, lon := range lons {
		shifted[j] = NormalizeLon180(lon)
		order[j] = j
	}
	sort.SliceStable(order, func(a, b int) bool { return shifted[order[a]] < shifted[order[b]] })

	var points []GridPoint
	for i, lat := range lats {
		row := mask[i]
		if len(row) != len(lons) {
			return Grid{}, fmt.Errorf("mask row %d has %d columns, longitude has %d values", i, len(row), len(lons))
		}
		for _, j := range order {
			if row[j] > 0 {
				points = append(points, GridPoint{Lat: lat, Lon: shifted[j]})
			}
		}
	}
	return Grid{Points: points}, nil
}

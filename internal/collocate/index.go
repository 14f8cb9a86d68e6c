package collocate

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/quadtree"
)

var worldBound = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// sample is an observation position stored in the quadtree.
type sample struct {
	pos orb.Point
	row int
}

func (s sample) Point() orb.Point { return s.pos }

// Neighbour is an observation row contributing to a target point.
type Neighbour struct {
	Row      int
	Distance float64 // metres
}

// Index answers radius-limited k-nearest queries over one hour of
// observations. Queries are safe for concurrent use once built.
type Index struct {
	tree   *quadtree.Quadtree
	radius float64
	limit  int
	size   int
}

// NewIndex builds an index over the given positions, longitudes on the
// -180..180 axis. Positions outside the world bound are ignored.
func NewIndex(lat, lon []float64, radius float64, limit int) *Index {
	ix := &Index{tree: quadtree.New(worldBound), radius: radius, limit: limit}
	for i := range lat {
		if err := ix.tree.Add(sample{pos: orb.Point{lon[i], lat[i]}, row: i}); err == nil {
			ix.size++
		}
	}
	return ix
}

// Len is the number of indexed observations.
func (ix *Index) Len() int { return ix.size }

// Nearest returns up to the neighbour limit of observations strictly inside
// the influence radius of (lat, lon), closest first. buf is scratch space for
// the candidate scan and is returned for reuse.
func (ix *Index) Nearest(lat, lon float64, buf []orb.Pointer) ([]Neighbour, []orb.Pointer) {
	target := orb.Point{lon, lat}
	var out []Neighbour
	for _, b := range searchBounds(lat, lon, ix.radius) {
		buf = ix.tree.InBound(buf, b)
		for _, p := range buf {
			s := p.(sample)
			if d := geo.DistanceHaversine(target, s.pos); d < ix.radius {
				out = append(out, Neighbour{Row: s.row, Distance: d})
			}
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Distance != out[b].Distance {
			return out[a].Distance < out[b].Distance
		}
		return out[a].Row < out[b].Row
	})
	if ix.limit > 0 && len(out) > ix.limit {
		out = out[:ix.limit]
	}
	return out, buf
}

// searchBounds returns the lat/lon boxes that enclose the spherical cap of
// the given radius around (lat, lon). Boxes are split at the antimeridian and
// widened to every longitude when the cap reaches a pole.
func searchBounds(lat, lon, radius float64) []orb.Bound {
	delta := radius / orb.EarthRadius
	dLat := delta * 180 / math.Pi
	latMin, latMax := lat-dLat, lat+dLat
	if latMin <= -90 || latMax >= 90 {
		return []orb.Bound{{
			Min: orb.Point{-180, math.Max(latMin, -90)},
			Max: orb.Point{180, math.Min(latMax, 90)},
		}}
	}

	dLon := 180.0
	if s := math.Sin(delta) / math.Cos(lat*math.Pi/180); s < 1 {
		dLon = math.Asin(s) * 180 / math.Pi
	}
	lonMin, lonMax := lon-dLon, lon+dLon
	switch {
	case dLon >= 180:
		return []orb.Bound{{Min: orb.Point{-180, latMin}, Max: orb.Point{180, latMax}}}
	case lonMin < -180:
		return []orb.Bound{
			{Min: orb.Point{-180, latMin}, Max: orb.Point{lonMax, latMax}},
			{Min: orb.Point{lonMin + 360, latMin}, Max: orb.Point{180, latMax}},
		}
	case lonMax > 180:
		return []orb.Bound{
			{Min: orb.Point{lonMin, latMin}, Max: orb.Point{180, latMax}},
			{Min: orb.Point{-180, latMin}, Max: orb.Point{lonMax - 360, latMax}},
		}
	}
	return []orb.Bound{{Min: orb.Point{lonMin, latMin}, Max: orb.Point{lonMax, latMax}}}
}

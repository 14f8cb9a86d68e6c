package domain

import (
	"fmt"
	"math"
)

// Mission describes one altimeter mission as named by the AODN archive.
type Mission struct {
	Index int
	// Dir is the directory token used by the fetch tool, e.g. "JASON3".
	Dir string
	// Name is the mission token embedded in tile file names, e.g. "JASON-3".
	Name string
	// MinSWHObs is the minimum number of high-rate samples behind a 1 Hz
	// SWH value. -Inf disables the check (GEOSAT does not report it).
	MinSWHObs float64
}

var missions = []Mission{
	{Index: 0, Dir: "JASON3", Name: "JASON-3", MinSWHObs: 17},
	{Index: 1, Dir: "JASON2", Name: "JASON-2", MinSWHObs: 17},
	{Index: 2, Dir: "CRYOSAT2", Name: "CRYOSAT-2", MinSWHObs: 17},
	{Index: 3, Dir: "JASON1", Name: "JASON-1", MinSWHObs: 17},
	{Index: 4, Dir: "HY2", Name: "HY-2", MinSWHObs: 17},
	{Index: 5, Dir: "SARAL", Name: "SARAL", MinSWHObs: 17},
	{Index: 6, Dir: "SENTINEL3A", Name: "SENTINEL-3A", MinSWHObs: 17},
	{Index: 7, Dir: "ENVISAT", Name: "ENVISAT", MinSWHObs: 17},
	{Index: 8, Dir: "ERS1", Name: "ERS-1", MinSWHObs: 17},
	{Index: 9, Dir: "ERS2", Name: "ERS-2", MinSWHObs: 17},
	{Index: 10, Dir: "GEOSAT", Name: "GEOSAT", MinSWHObs: math.Inf(-1)},
	{Index: 11, Dir: "GFO", Name: "GFO", MinSWHObs: 3},
	{Index: 12, Dir: "TOPEX", Name: "TOPEX", MinSWHObs: 7},
	{Index: 13, Dir: "SENTINEL3B", Name: "SENTINEL-3B", MinSWHObs: 17},
}

// Missions returns a copy of the static mission table in index order.
func Missions() []Mission {
	out := make([]Mission, len(missions))
	copy(out, missions)
	return out
}

// ResolveMission looks up a mission by its run index.
func ResolveMission(index int) (Mission, error) {
	if index < 0 || index >= len(missions) {
		return Mission{}, fmt.Errorf("%w: index %d, valid range 0..%d", ErrUnknownMission, index, len(missions)-1)
	}
	return missions[index], nil
}

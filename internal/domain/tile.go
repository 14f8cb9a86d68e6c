package domain

import (
	"fmt"
	"path/filepath"
)

// Tile bands cover the globe in 1° steps, both ends inclusive, on the
// archive's 0..360 longitude axis.
const (
	TileLatMin = -90
	TileLatMax = 90
	TileLonMin = 0
	TileLonMax = 360
)

// MinTileSamples is the number of TIME samples a tile must exceed to be read.
const MinTileSamples = 10

// TileKey identifies one 1°×1° archive tile.
type TileKey struct {
	Lat int
	Lon int
}

// TileKeys returns every tile in traversal order: latitude-major, both
// bands ascending.
func TileKeys() []TileKey {
	keys := make([]TileKey, 0, (TileLatMax-TileLatMin+1)*(TileLonMax-TileLonMin+1))
	for lat := TileLatMin; lat <= TileLatMax; lat++ {
		for lon := TileLonMin; lon <= TileLonMax; lon++ {
			keys = append(keys, TileKey{Lat: lat, Lon: lon})
		}
	}
	return keys
}

// FileName returns the canonical AODN file name of the tile for a mission.
func (k TileKey) FileName(m Mission) string {
	hem := "N"
	lat := k.Lat
	if lat < 0 {
		hem = "S"
		lat = -lat
	}
	return fmt.Sprintf("IMOS_SRS-Surface-Waves_MW_%s_FV02_%03d%s-%03dE-DM00.nc", m.Name, lat, hem, k.Lon)
}

// Path joins the data directory, mission directory and file name.
func (k TileKey) Path(dataDir string, m Mission) string {
	return filepath.Join(dataDir, m.Dir, k.FileName(m))
}

// TileStatus is the outcome of reading one tile.
type TileStatus string

const (
	TileOK        TileStatus = "ok"
	TileAbsent    TileStatus = "absent"
	TileShort     TileStatus = "short"
	TileMalformed TileStatus = "malformed"
)

// Family is a wave-height channel family, named by its band token.
type Family string

const (
	FamilyKu Family = "KU"
	FamilyKa Family = "KA"
)

// FamilyPreference is the order in which families are probed in a tile.
var FamilyPreference = []Family{FamilyKu, FamilyKa}

// TileResult is the structured outcome of one tile read.
type TileResult struct {
	Key    TileKey
	Path   string
	Status TileStatus
	// Family is set for TileOK results.
	Family Family
	// Reason explains non-OK outcomes.
	Reason string
	Batch  Observations
}

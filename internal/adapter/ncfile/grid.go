package ncfile

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf"

	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
)

// Grid file variable names.
const (
	GridVarLat  = "latitude"
	GridVarLon  = "longitude"
	GridVarMask = "mask"
)

// LoadGrid reads a grid-info file and returns its water points.
func LoadGrid(path string) (domain.Grid, error) {
	g, err := netcdf.Open(path)
	if err != nil {
		return domain.Grid{}, fmt.Errorf("open grid %s: %w", path, err)
	}
	defer g.Close()

	lats, err := readFloats(g, GridVarLat)
	if err != nil {
		return domain.Grid{}, err
	}
	lons, err := readFloats(g, GridVarLon)
	if err != nil {
		return domain.Grid{}, err
	}
	mask, err := readFloats2D(g, GridVarMask)
	if err != nil {
		return domain.Grid{}, err
	}

	grid, err := domain.NewGrid(lats, lons, mask)
	if err != nil {
		return domain.Grid{}, fmt.Errorf("grid %s: %w", path, err)
	}
	return grid, nil
}

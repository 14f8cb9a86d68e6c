package ncfile

import (
	"fmt"
	"math"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/util"

	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
)

// TileFillValue marks missing samples in tiles written by WriteTile. It is
// declared through missing_value, the writer reserves _FillValue.
const TileFillValue float32 = 9.96921e36

// Column is one named tile variable.
type Column struct {
	Name   string
	Values []float64
}

// WriteTile writes obs as an AODN-style tile using the given family. NaN
// samples are stored as TileFillValue.
func WriteTile(path string, f domain.Family, obs domain.Observations) error {
	fv := VarsFor(f)
	return WriteColumns(path, []Column{
		{VarTime, obs.Time},
		{VarLat, obs.Lat},
		{VarLon, obs.Lon},
		{VarSWHC, obs.SWHC},
		{VarWind, obs.Wind},
		{VarWindCal, obs.WindCal},
		{fv.SWH, obs.SWH},
		{fv.SWHCal, obs.SWHCal},
		{fv.Sig0Std, obs.Sig0Std},
		{fv.SWHObs, obs.SWHObs},
		{fv.SWHStd, obs.SWHStd},
		{fv.SWHQC, obs.SWHQC},
	})
}

// WriteColumns writes arbitrary 1-D tile variables. Columns as long as the
// first share the TIME dimension; any other length gets a dimension of its
// own, which is how a malformed tile looks to the reader.
func WriteColumns(path string, cols []Column) error {
	w, err := netcdf.OpenWriter(path, netcdf.KindCDF)
	if err != nil {
		return fmt.Errorf("create tile %s: %w", path, err)
	}
	n := -1
	if len(cols) > 0 {
		n = len(cols[0].Values)
	}
	for _, col := range cols {
		dim := VarTime
		if len(col.Values) != n {
			dim = col.Name + "_N"
		}
		var (
			values any
			attrs  *util.OrderedMap
		)
		if col.Name == VarTime {
			values = append([]float64{}, col.Values...)
			attrs, err = util.NewOrderedMap([]string{"units"}, map[string]any{"units": "days since 1985-01-01 00:00:00 UTC"})
		} else {
			v := make([]float32, len(col.Values))
			for i, x := range col.Values {
				if math.IsNaN(x) {
					v[i] = TileFillValue
				} else {
					v[i] = float32(x)
				}
			}
			values = v
			attrs, err = util.NewOrderedMap([]string{"missing_value"}, map[string]any{"missing_value": TileFillValue})
		}
		if err != nil {
			_ = w.Close()
			return err
		}
		if err := w.AddVar(col.Name, api.Variable{Values: values, Dimensions: []string{dim}, Attributes: attrs}); err != nil {
			_ = w.Close()
			return fmt.Errorf("add %s: %w", col.Name, err)
		}
	}
	return w.Close()
}

// WriteGrid writes a grid-info file with a [latitude][longitude] mask.
func WriteGrid(path string, lats, lons []float64, mask [][]float64) error {
	w, err := netcdf.OpenWriter(path, netcdf.KindCDF)
	if err != nil {
		return fmt.Errorf("create grid %s: %w", path, err)
	}
	m := make([][]float32, len(mask))
	for i, row := range mask {
		m[i] = Float32s(row)
	}
	vars := []struct {
		name string
		v    api.Variable
	}{
		{GridVarLat, api.Variable{Values: Float32s(lats), Dimensions: []string{GridVarLat}}},
		{GridVarLon, api.Variable{Values: Float32s(lons), Dimensions: []string{GridVarLon}}},
		{GridVarMask, api.Variable{Values: m, Dimensions: []string{GridVarLat, GridVarLon}}},
	}
	for _, v := range vars {
		if err := w.AddVar(v.name, v.v); err != nil {
			_ = w.Close()
			return fmt.Errorf("add %s: %w", v.name, err)
		}
	}
	return w.Close()
}

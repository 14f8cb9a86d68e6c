package ncfile

import (
	"fmt"
	"slices"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
)

// Tile variable names shared by both wave-height families.
const (
	VarTime    = "TIME"
	VarLat     = "LATITUDE"
	VarLon     = "LONGITUDE"
	VarSWHC    = "SWH_C"
	VarWind    = "WSPD"
	VarWindCal = "WSPD_CAL"
)

// FamilyVars names the channels of one wave-height family.
type FamilyVars struct {
	SWH     string
	SWHCal  string
	Sig0Std string
	SWHObs  string
	SWHStd  string
	SWHQC   string
}

// VarsFor returns the variable names of a family, e.g. SWH_KU_CAL.
func VarsFor(f domain.Family) FamilyVars {
	band := string(f)
	return FamilyVars{
		SWH:     "SWH_" + band,
		SWHCal:  "SWH_" + band + "_CAL",
		Sig0Std: "SIG0_" + band + "_std_dev",
		SWHObs:  "SWH_" + band + "_num_obs",
		SWHStd:  "SWH_" + band + "_std_dev",
		SWHQC:   "SWH_" + band + "_quality_control",
	}
}

func (fv FamilyVars) names() []string {
	return []string{fv.SWH, fv.SWHCal, fv.Sig0Std, fv.SWHObs, fv.SWHStd, fv.SWHQC}
}

// TileReader reads AODN along-track tiles for one mission.
type TileReader struct {
	dataDir string
	mission domain.Mission
}

// NewTileReader creates a reader rooted at dataDir.
func NewTileReader(dataDir string, m domain.Mission) *TileReader {
	return &TileReader{dataDir: dataDir, mission: m}
}

// ReadTile opens and decodes one tile. It never fails: every problem is
// reported through the result status. A file that cannot be opened is
// absent; one that opens but cannot be decoded is malformed.
func (r *TileReader) ReadTile(key domain.TileKey) domain.TileResult {
	res := domain.TileResult{Key: key, Path: key.Path(r.dataDir, r.mission)}

	g, err := netcdf.Open(res.Path)
	if err != nil {
		res.Status = domain.TileAbsent
		res.Reason = err.Error()
		return res
	}
	defer g.Close()

	t, err := readFloats(g, VarTime)
	if err != nil {
		res.Status = domain.TileMalformed
		res.Reason = err.Error()
		return res
	}
	if len(t) <= domain.MinTileSamples {
		res.Status = domain.TileShort
		res.Reason = fmt.Sprintf("%d samples", len(t))
		return res
	}

	family, ok := probeFamily(g)
	if !ok {
		res.Status = domain.TileMalformed
		res.Reason = "no wave height family present"
		return res
	}

	batch, err := readBatch(g, t, VarsFor(family))
	if err != nil {
		res.Status = domain.TileMalformed
		res.Reason = err.Error()
		return res
	}
	if err := batch.Validate(); err != nil {
		res.Status = domain.TileMalformed
		res.Reason = err.Error()
		return res
	}

	res.Status = domain.TileOK
	res.Family = family
	res.Batch = batch
	return res
}

// probeFamily returns the first family in preference order whose variables
// are all present.
func probeFamily(g api.Group) (domain.Family, bool) {
	present := g.ListVariables()
	for _, f := range domain.FamilyPreference {
		complete := true
		for _, name := range VarsFor(f).names() {
			if !slices.Contains(present, name) {
				complete = false
				break
			}
		}
		if complete {
			return f, true
		}
	}
	return "", false
}

func readBatch(g api.Group, t []float64, fv FamilyVars) (domain.Observations, error) {
	obs := domain.Observations{Time: t}
	targets := []struct {
		name string
		dst  *[]float64
	}{
		{VarLat, &obs.Lat},
		{VarLon, &obs.Lon},
		{VarSWHC, &obs.SWHC},
		{VarWind, &obs.Wind},
		{VarWindCal, &obs.WindCal},
		{fv.SWH, &obs.SWH},
		{fv.SWHCal, &obs.SWHCal},
		{fv.Sig0Std, &obs.Sig0Std},
		{fv.SWHObs, &obs.SWHObs},
		{fv.SWHStd, &obs.SWHStd},
		{fv.SWHQC, &obs.SWHQC},
	}
	for _, tg := range targets {
		v, err := readFloats(g, tg.name)
		if err != nil {
			return domain.Observations{}, err
		}
		*tg.dst = v
	}
	return obs, nil
}

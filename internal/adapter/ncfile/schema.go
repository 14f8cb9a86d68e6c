package ncfile

import (
	"fmt"

	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
)

// DimTime is the record dimension of the gridded output.
const DimTime = "time"

// History is the global history attribute of every gridded output.
const History = "AODN Altimeter data on regular grid."

// OutputVar describes one variable of the gridded output file.
type OutputVar struct {
	Name   string
	Units  string
	Double bool // stored as float64, otherwise float32
	Column func(domain.Collocated) []float64
}

// OutputVars lists the output variables in file order.
var OutputVars = []OutputVar{
	{Name: "latitude", Units: "degrees_north", Column: func(c domain.Collocated) []float64 { return c.Lat }},
	{Name: "longitude", Units: "degrees_east", Column: func(c domain.Collocated) []float64 { return c.Lon }},
	{Name: "stime", Units: "seconds since 1970-01-01 00:00:00", Double: true, Column: func(c domain.Collocated) []float64 { return c.Time }},
	{Name: "hsk", Units: "m", Column: func(c domain.Collocated) []float64 { return c.SWH }},
	{Name: "stdhsk", Units: "m", Column: func(c domain.Collocated) []float64 { return c.SWHStd }},
	{Name: "counthsk", Units: "1", Column: func(c domain.Collocated) []float64 { return c.SWHCount }},
	{Name: "hskcal", Units: "m", Column: func(c domain.Collocated) []float64 { return c.SWHCal }},
	{Name: "hsc", Units: "m", Column: func(c domain.Collocated) []float64 { return c.SWHC }},
	{Name: "wnd", Units: "m/s", Column: func(c domain.Collocated) []float64 { return c.Wind }},
	{Name: "wndcal", Units: "m/s", Column: func(c domain.Collocated) []float64 { return c.WindCal }},
}

// OutputFileName is the gridded output name for a mission.
func OutputFileName(m domain.Mission) string {
	return fmt.Sprintf("AltimeterGridded_%s.nc", m.Dir)
}

// Float32s narrows a column for single-precision storage.
func Float32s(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

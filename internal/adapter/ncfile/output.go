package ncfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/util"

	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
)

// GlobalAttrs returns the global attributes of an output file in file order.
func GlobalAttrs(meta domain.OutputMeta) ([]string, map[string]any) {
	return []string{"history", "mission", "run_id"}, map[string]any{
		"history": History,
		"mission": meta.Mission.Name,
		"run_id":  meta.RunID,
	}
}

// CDFSink writes gridded output as a classic netCDF file with the pure-Go
// writer. The time dimension has a fixed length.
type CDFSink struct {
	dir string
}

// NewCDFSink creates a sink writing into dir.
func NewCDFSink(dir string) *CDFSink {
	return &CDFSink{dir: dir}
}

// Write stores c and returns the output path. The file is assembled under a
// temporary name and renamed into place, replacing any previous output.
func (s *CDFSink) Write(_ context.Context, meta domain.OutputMeta, c domain.Collocated) (string, error) {
	path := filepath.Join(s.dir, OutputFileName(meta.Mission))
	tmp := path + ".tmp"

	if err := writeCDF(tmp, meta, c); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename output: %w", err)
	}
	return path, nil
}

func writeCDF(path string, meta domain.OutputMeta, c domain.Collocated) error {
	w, err := netcdf.OpenWriter(path, netcdf.KindCDF)
	if err != nil {
		return fmt.Errorf("create output %s: %w", path, err)
	}

	keys, vals := GlobalAttrs(meta)
	global, err := util.NewOrderedMap(keys, vals)
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("global attributes: %w", err)
	}
	if err := w.AddAttributes(global); err != nil {
		_ = w.Close()
		return fmt.Errorf("global attributes: %w", err)
	}

	for _, ov := range OutputVars {
		attrs, err := util.NewOrderedMap([]string{"units"}, map[string]any{"units": ov.Units})
		if err != nil {
			_ = w.Close()
			return fmt.Errorf("attributes of %s: %w", ov.Name, err)
		}
		var values any
		if ov.Double {
			values = append([]float64{}, ov.Column(c)...)
		} else {
			values = Float32s(ov.Column(c))
		}
		if err := w.AddVar(ov.Name, api.Variable{
			Values:     values,
			Dimensions: []string{DimTime},
			Attributes: attrs,
		}); err != nil {
			_ = w.Close()
			return fmt.Errorf("add %s: %w", ov.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}

// Output is a gridded file read back for validation.
type Output struct {
	Records domain.Collocated
	Units   map[string]string
	History string
	// Missing lists required variables absent from the file.
	Missing []string
}

// ReadOutput reads a gridded output file written by either sink.
func ReadOutput(path string) (Output, error) {
	g, err := netcdf.Open(path)
	if err != nil {
		return Output{}, fmt.Errorf("open output %s: %w", path, err)
	}
	defer g.Close()

	out := Output{Units: map[string]string{}}
	out.History, _ = attrString(g.Attributes(), "history")

	cols := map[string]*[]float64{
		"latitude": &out.Records.Lat, "longitude": &out.Records.Lon, "stime": &out.Records.Time,
		"hsk": &out.Records.SWH, "stdhsk": &out.Records.SWHStd, "counthsk": &out.Records.SWHCount,
		"hskcal": &out.Records.SWHCal, "hsc": &out.Records.SWHC,
		"wnd": &out.Records.Wind, "wndcal": &out.Records.WindCal,
	}
	for _, ov := range OutputVars {
		v, err := g.GetVariable(ov.Name)
		if err != nil {
			out.Missing = append(out.Missing, ov.Name)
			continue
		}
		if u, ok := attrString(v.Attributes, "units"); ok {
			out.Units[ov.Name] = u
		}
		vals, err := toFloat64s(v.Values)
		if err != nil {
			return Output{}, fmt.Errorf("read %s: %w", ov.Name, err)
		}
		*cols[ov.Name] = vals
	}
	return out, nil
}

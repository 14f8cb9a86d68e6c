// Package ncwriter writes gridded output as netCDF-4 through libnetcdf, with
// an unlimited time dimension. It needs cgo and the netCDF C library; the
// pure-Go classic sink in ncfile covers builds without them.
package ncwriter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fhs/go-netcdf/netcdf"

	"github.com/couchcryptid/altimeter-grid-etl/internal/adapter/ncfile"
	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
)

// Sink writes netCDF-4 gridded output files into a directory.
type Sink struct {
	dir string
}

// NewSink creates a sink writing into dir.
func NewSink(dir string) *Sink {
	return &Sink{dir: dir}
}

// Write stores c and returns the output path, replacing any previous file.
func (s *Sink) Write(_ context.Context, meta domain.OutputMeta, c domain.Collocated) (string, error) {
	path := filepath.Join(s.dir, ncfile.OutputFileName(meta.Mission))
	tmp := path + ".tmp"
	if err := write(tmp, meta, c); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename output: %w", err)
	}
	return path, nil
}

func write(path string, meta domain.OutputMeta, c domain.Collocated) (err error) {
	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("create output %s: %w", path, err)
	}
	defer func() {
		if cerr := ds.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output %s: %w", path, cerr)
		}
	}()

	// Length 0 defines the unlimited dimension.
	dim, err := ds.AddDim(ncfile.DimTime, 0)
	if err != nil {
		return fmt.Errorf("define time: %w", err)
	}

	keys, vals := ncfile.GlobalAttrs(meta)
	for _, k := range keys {
		if err := putText(ds.Attr(k), vals[k].(string)); err != nil {
			return fmt.Errorf("global attribute %s: %w", k, err)
		}
	}

	vars := make([]netcdf.Var, len(ncfile.OutputVars))
	for i, ov := range ncfile.OutputVars {
		t := netcdf.FLOAT
		if ov.Double {
			t = netcdf.DOUBLE
		}
		v, err := ds.AddVar(ov.Name, t, []netcdf.Dim{dim})
		if err != nil {
			return fmt.Errorf("define %s: %w", ov.Name, err)
		}
		if err := putText(v.Attr("units"), ov.Units); err != nil {
			return fmt.Errorf("units of %s: %w", ov.Name, err)
		}
		vars[i] = v
	}
	if err := ds.EndDef(); err != nil {
		return fmt.Errorf("end define mode: %w", err)
	}

	n := uint64(c.Len())
	if n == 0 {
		return nil
	}
	// Writing the last record grows the unlimited dimension so that every
	// variable can then be filled with one hyperslab.
	last := []uint64{n - 1}
	first := ncfile.OutputVars[0]
	if err := vars[0].WriteFloat32At(last, float32(first.Column(c)[n-1])); err != nil {
		return fmt.Errorf("extend time: %w", err)
	}

	start, count := []uint64{0}, []uint64{n}
	for i, ov := range ncfile.OutputVars {
		col := ov.Column(c)
		if ov.Double {
			err = vars[i].WriteFloat64Slice(col, start, count)
		} else {
			err = vars[i].WriteFloat32Slice(ncfile.Float32s(col), start, count)
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", ov.Name, err)
		}
	}
	return nil
}

func putText(a netcdf.Attr, s string) error {
	if s == "" {
		return nil
	}
	return a.WriteBytes([]byte(s))
}

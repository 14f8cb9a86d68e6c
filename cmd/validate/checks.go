package main

import (
	"fmt"
	"math"
	"slices"

	"github.com/couchcryptid/altimeter-grid-etl/internal/adapter/ncfile"
	"github.com/couchcryptid/altimeter-grid-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func validate(out ncfile.Output, b domain.Bounds) []*phase {
	schema := validateSchema(out)
	shape := validateShape(out.Records)
	if !shape.passed() {
		// Row checks index every column and need equal lengths.
		return []*phase{schema, shape}
	}
	return []*phase{
		schema,
		shape,
		validateTimeAxis(out.Records),
		validateCounts(out.Records),
		validateValues(out.Records, b),
	}
}

func validateSchema(out ncfile.Output) *phase {
	p := &phase{name: "Variables and units"}
	for _, name := range out.Missing {
		p.errorf("missing variable %s", name)
	}
	for _, ov := range ncfile.OutputVars {
		got, ok := out.Units[ov.Name]
		switch {
		case !ok && !slices.Contains(out.Missing, ov.Name):
			p.errorf("%s: no units attribute", ov.Name)
		case ok && got != ov.Units:
			p.errorf("%s: units %q, want %q", ov.Name, got, ov.Units)
		}
	}
	return p
}

func validateShape(c domain.Collocated) *phase {
	p := &phase{name: "Column lengths"}
	n := c.Len()
	for _, col := range columns(c) {
		if len(col.values) != n {
			p.errorf("%s has %d values, stime has %d", col.name, len(col.values), n)
		}
	}
	return p
}

func validateTimeAxis(c domain.Collocated) *phase {
	p := &phase{name: "Hourly time axis"}
	for i, t := range c.Time {
		switch {
		case !(t > 0):
			p.errorf("row %d: stime %v is not positive", i, t)
		case math.Mod(t, domain.HourSeconds) != 0:
			p.errorf("row %d: stime %.0f is not on the hour", i, t)
		}
	}
	return p
}

func validateCounts(c domain.Collocated) *phase {
	p := &phase{name: "Neighbour counts"}
	for i, n := range c.SWHCount {
		if !(n >= 1) {
			p.errorf("row %d: counthsk %v, want >= 1", i, n)
		}
	}
	return p
}

func validateValues(c domain.Collocated, b domain.Bounds) *phase {
	p := &phase{name: "Value plausibility"}
	check := func(name string, v []float64, hi float64) {
		for i, x := range v {
			if !math.IsNaN(x) && (x < b.MinValue || x > hi) {
				p.errorf("row %d: %s %.3f outside [%.2f, %.0f]", i, name, x, b.MinValue, hi)
			}
		}
	}
	for i, x := range c.SWH {
		if math.IsNaN(x) {
			p.errorf("row %d: hsk is NaN", i)
		}
	}
	check("hsk", c.SWH, b.MaxSWH)
	check("hskcal", c.SWHCal, b.MaxSWH)
	check("hsc", c.SWHC, b.MaxSWH)
	check("wnd", c.Wind, b.MaxWind)
	check("wndcal", c.WindCal, b.MaxWind)
	return p
}

type column struct {
	name   string
	values []float64
}

func columns(c domain.Collocated) []column {
	return []column{
		{"latitude", c.Lat}, {"longitude", c.Lon},
		{"hsk", c.SWH}, {"stdhsk", c.SWHStd}, {"counthsk", c.SWHCount},
		{"hskcal", c.SWHCal}, {"hsc", c.SWHC},
		{"wnd", c.Wind}, {"wndcal", c.WindCal},
	}
}

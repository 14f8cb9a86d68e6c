package ncfile

import (
	"fmt"
	"math"
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// readFloats reads a 1-D numeric variable as float64, applying CF
// conventions: _FillValue and missing_value samples become NaN, then
// scale_factor and add_offset are applied.
func readFloats(g api.Group, name string) ([]float64, error) {
	v, err := g.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	raw, err := toFloat64s(v.Values)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	decodeCF(raw, v.Attributes)
	return raw, nil
}

// readFloats2D reads a 2-D numeric variable row by row, without decoding.
func readFloats2D(g api.Group, name string) ([][]float64, error) {
	v, err := g.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	rv := reflect.ValueOf(v.Values)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("read %s: expected 2-D array, got %T", name, v.Values)
	}
	out := make([][]float64, rv.Len())
	for i := range out {
		row, err := toFloat64s(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("read %s row %d: %w", name, i, err)
		}
		out[i] = row
	}
	return out, nil
}

func toFloat64s(values any) ([]float64, error) {
	switch v := values.(type) {
	case []float64:
		return append([]float64(nil), v...), nil
	case []float32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	}

	rv := reflect.ValueOf(values)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("expected 1-D array, got %T", values)
	}
	out := make([]float64, rv.Len())
	for i := range out {
		x, ok := scalar(rv.Index(i))
		if !ok {
			return nil, fmt.Errorf("unsupported element type %s", rv.Type().Elem())
		}
		out[i] = x
	}
	return out, nil
}

func scalar(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return float64(v.Int()), true
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		return float64(v.Uint()), true
	}
	return 0, false
}

// attrFloat returns a numeric attribute, scalar or single-element array.
func attrFloat(attrs api.AttributeMap, key string) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	val, ok := attrs.Get(key)
	if !ok {
		return 0, false
	}
	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.Slice {
		if rv.Len() != 1 {
			return 0, false
		}
		rv = rv.Index(0)
	}
	return scalar(rv)
}

// attrString returns a text attribute.
func attrString(attrs api.AttributeMap, key string) (string, bool) {
	if attrs == nil {
		return "", false
	}
	val, ok := attrs.Get(key)
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

func decodeCF(v []float64, attrs api.AttributeMap) {
	for _, key := range []string{"_FillValue", "missing_value"} {
		fill, ok := attrFloat(attrs, key)
		if !ok {
			continue
		}
		for i, x := range v {
			if x == fill || (math.IsNaN(fill) && math.IsNaN(x)) {
				v[i] = math.NaN()
			}
		}
	}

	scale, hasScale := attrFloat(attrs, "scale_factor")
	offset, hasOffset := attrFloat(attrs, "add_offset")
	if !hasScale && !hasOffset {
		return
	}
	if !hasScale {
		scale = 1
	}
	for i, x := range v {
		v[i] = x*scale + offset
	}
}

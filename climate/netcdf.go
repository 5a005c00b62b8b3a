package climate

import (
	"fmt"
	"math"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/invertedv/study"
)

// The rasters follow the gridMET layout: coordinate variables lat, lon, and
// day (days since the 1900 epoch), and one packed data variable indexed
// [day][lat][lon] with scale_factor/add_offset/_FillValue attributes.

var ncEpoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// ReadGrid reads one raster file into memory, unpacking the data variable.
func ReadGrid(fileName, ncVar string) (*Grid, error) {
	nc, e := netcdf.Open(fileName)
	if e != nil {
		return nil, fmt.Errorf("raster %s: %w", fileName, e)
	}
	defer nc.Close()

	lats, e := coordValues(nc, "lat")
	if e != nil {
		return nil, fmt.Errorf("raster %s: %w", fileName, e)
	}

	lons, e := coordValues(nc, "lon")
	if e != nil {
		return nil, fmt.Errorf("raster %s: %w", fileName, e)
	}

	dayNums, e := coordValues(nc, "day")
	if e != nil {
		return nil, fmt.Errorf("raster %s: %w", fileName, e)
	}

	days := make([]time.Time, len(dayNums))
	for ind, d := range dayNums {
		days[ind] = ncEpoch.AddDate(0, 0, int(d))
	}

	vr, e := nc.GetVariable(ncVar)
	if e != nil {
		return nil, fmt.Errorf("raster %s: variable %s: %w", fileName, ncVar, e)
	}

	scale := attrFloat(vr, "scale_factor", 1)
	offset := attrFloat(vr, "add_offset", 0)
	fill, hasFill := attrValue(vr, "_FillValue")

	data, e := unpack(vr.Values, scale, offset, fill, hasFill)
	if e != nil {
		return nil, fmt.Errorf("raster %s: variable %s: %w", fileName, ncVar, e)
	}

	if len(data) != len(days) {
		return nil, fmt.Errorf("raster %s: %d day slices for %d days", fileName, len(data), len(days))
	}

	return &Grid{Lats: lats, Lons: lons, Days: days, Data: data}, nil
}

func coordValues(nc api.Group, name string) ([]float64, error) {
	vr, e := nc.GetVariable(name)
	if e != nil {
		return nil, fmt.Errorf("coordinate %s: %w", name, e)
	}

	switch x := vr.Values.(type) {
	case []float64:
		return x, nil
	case []float32:
		out := make([]float64, len(x))
		for ind, v := range x {
			out[ind] = float64(v)
		}

		return out, nil
	case []int32:
		out := make([]float64, len(x))
		for ind, v := range x {
			out[ind] = float64(v)
		}

		return out, nil
	}

	return nil, fmt.Errorf("coordinate %s: unsupported type %T", name, vr.Values)
}

func attrValue(vr *api.Variable, name string) (float64, bool) {
	if vr.Attributes == nil {
		return 0, false
	}

	raw, has := vr.Attributes.Get(name)
	if !has {
		return 0, false
	}

	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int32:
		return float64(v), true
	case int16:
		return float64(v), true
	case []float64:
		if len(v) > 0 {
			return v[0], true
		}
	case []float32:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	case []int16:
		if len(v) > 0 {
			return float64(v[0]), true
		}
	}

	return 0, false
}

func attrFloat(vr *api.Variable, name string, dflt float64) float64 {
	if v, has := attrValue(vr, name); has {
		return v
	}

	return dflt
}

// unpack converts the raw [day][lat][lon] array to float64, applying the
// packing transform and mapping fill values to Missing.
func unpack(values any, scale, offset, fill float64, hasFill bool) ([][][]float64, error) {
	cell := func(raw float64) float64 {
		if hasFill && raw == fill {
			return study.Missing
		}

		v := raw*scale + offset
		if math.IsInf(v, 0) {
			return study.Missing
		}

		return v
	}

	switch x := values.(type) {
	case [][][]float64:
		out := make([][][]float64, len(x))
		for d := range x {
			out[d] = make([][]float64, len(x[d]))
			for i := range x[d] {
				out[d][i] = make([]float64, len(x[d][i]))
				for j, raw := range x[d][i] {
					out[d][i][j] = cell(raw)
				}
			}
		}

		return out, nil
	case [][][]float32:
		out := make([][][]float64, len(x))
		for d := range x {
			out[d] = make([][]float64, len(x[d]))
			for i := range x[d] {
				out[d][i] = make([]float64, len(x[d][i]))
				for j, raw := range x[d][i] {
					out[d][i][j] = cell(float64(raw))
				}
			}
		}

		return out, nil
	case [][][]int16:
		out := make([][][]float64, len(x))
		for d := range x {
			out[d] = make([][]float64, len(x[d]))
			for i := range x[d] {
				out[d][i] = make([]float64, len(x[d][i]))
				for j, raw := range x[d][i] {
					out[d][i][j] = cell(float64(raw))
				}
			}
		}

		return out, nil
	}

	return nil, fmt.Errorf("unsupported raster type %T", values)
}

// Package climate aggregates gridded daily meteorology to county polygons:
// annual, summer (Jun 1 - Aug 31), and winter (Dec 1 of the prior year -
// end of February) means for maximum air temperature, maximum relative
// humidity, and specific humidity. A raster cell belongs to the county its
// centroid falls in. A few independent cities are too small to contain any
// centroid; those get the record of a named containing county, from a
// curated list, never inferred geometrically.
package climate

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/paulmach/orb"

	"github.com/invertedv/study"
	"github.com/invertedv/study/geo"
)

// Variable describes one raster source.
type Variable struct {
	// Name keys the output columns: cl_<Name>_mean, _summer, _winter.
	Name string

	// NCVar is the variable name inside the raster file.
	NCVar string
}

// Variables are the three meteorology sources.
var Variables = []Variable{
	{Name: "tmmx", NCVar: "air_temperature"},
	{Name: "rmax", NCVar: "relative_humidity"},
	{Name: "sph", NCVar: "specific_humidity"},
}

// containmentPairs maps each too-small independent city to the county whose
// polygon contains it: Covington in Alleghany, Poquoson in York, Falls
// Church in Fairfax, Bedford city in Bedford county.
var containmentPairs = map[string]string{
	"51580": "51005",
	"51678": "51163",
	"51610": "51059",
	"51515": "51019",
}

// Grid is one variable's raster: daily values on a fixed lat/lon mesh.
type Grid struct {
	Lats []float64
	Lons []float64
	Days []time.Time

	// Data is indexed [day][lat][lon]; missing cells are NaN.
	Data [][][]float64
}

// Load reads the target- and prior-year rasters for every variable and
// builds the nine-column climate table.
func Load(cfg *study.Config, counties []geo.County) (*study.Table, error) {
	var out *study.Table

	// cell assignment is geometry-only, shared across variables
	var cells *cellIndex

	for _, vr := range Variables {
		cur, e := ReadGrid(cfg.Path("climate", fmt.Sprintf("%s_%d.nc", vr.Name, cfg.Year)), vr.NCVar)
		if e != nil {
			return nil, e
		}

		prior, e := ReadGrid(cfg.Path("climate", fmt.Sprintf("%s_%d.nc", vr.Name, cfg.Year-1)), vr.NCVar)
		if e != nil {
			return nil, e
		}

		if cells == nil {
			cells = assignCells(cur.Lats, cur.Lons, counties)
			log.Printf("climate: %d of %d raster cells fall in a county", cells.assigned, len(cur.Lats)*len(cur.Lons))
		}

		t, e := Aggregate(vr, cur, prior, cells, cfg.Year)
		if e != nil {
			return nil, e
		}

		if out == nil {
			out = t
			continue
		}

		if out, e = study.LeftJoin(out, t, study.KeyFIPS); e != nil {
			return nil, e
		}
	}

	fill := &study.ContainmentCopy{Pairs: containmentPairs}
	if e := fill.Fill(out, nil); e != nil {
		return nil, fmt.Errorf("climate: %w", e)
	}

	return out, nil
}

// cellIndex maps raster cells to the county containing their centroid.
type cellIndex struct {
	// fips[i][j] is "" when cell (lat i, lon j) is outside every county.
	fips [][]string

	assigned int
}

func assignCells(lats, lons []float64, counties []geo.County) *cellIndex {
	ci := &cellIndex{fips: make([][]string, len(lats))}

	for i := range lats {
		ci.fips[i] = make([]string, len(lons))
		for j := range lons {
			f := geo.FindCounty(counties, orb.Point{lons[j], lats[i]})
			ci.fips[i][j] = f
			if f != "" {
				ci.assigned++
			}
		}
	}

	return ci
}

// window selects the days of one aggregate.
type window struct {
	suffix string
	from   time.Time
	to     time.Time
}

func windows(year int) []window {
	feb := 28
	if isLeap(year) {
		feb = 29
	}

	return []window{
		{suffix: "mean",
			from: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)},
		{suffix: "summer",
			from: time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(year, 8, 31, 0, 0, 0, 0, time.UTC)},
		{suffix: "winter",
			from: time.Date(year-1, 12, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(year, 2, feb, 0, 0, 0, 0, time.UTC)},
	}
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Aggregate reduces one variable's two grids to per-county window means.
// The winter window is the only consumer of the prior-year grid.
func Aggregate(vr Variable, cur, prior *Grid, cells *cellIndex, year int) (*study.Table, error) {
	sums := make(map[string]map[string]float64)
	ns := make(map[string]map[string]int)

	add := func(g *Grid, w window) {
		for d, day := range g.Days {
			if day.Before(w.from) || day.After(w.to) {
				continue
			}

			for i := range g.Lats {
				for j := range g.Lons {
					f := cells.fips[i][j]
					if f == "" {
						continue
					}

					v := g.Data[d][i][j]
					if study.IsMissing(v) {
						continue
					}

					if sums[f] == nil {
						sums[f] = make(map[string]float64)
						ns[f] = make(map[string]int)
					}

					sums[f][w.suffix] += v
					ns[f][w.suffix]++
				}
			}
		}
	}

	for _, w := range windows(year) {
		add(cur, w)
		add(prior, w)
	}

	fips := make([]string, 0, len(sums))
	for f := range sums {
		fips = append(fips, f)
	}
	sort.Strings(fips)

	key, _ := study.NewColumn(study.KeyFIPS, fips)
	out, e := study.NewTable(key)
	if e != nil {
		return nil, e
	}

	for _, w := range windows(year) {
		x := make([]float64, len(fips))
		for ind, f := range fips {
			x[ind] = study.Missing
			if n := ns[f][w.suffix]; n > 0 {
				x[ind] = sums[f][w.suffix] / float64(n)
			}
		}

		c, ec := study.NewColumn(fmt.Sprintf("cl_%s_%s", vr.Name, w.suffix), x)
		if ec != nil {
			return nil, ec
		}

		if e := out.AppendColumn(c); e != nil {
			return nil, e
		}
	}

	return out, nil
}

// Package exposure turns gridded PM2.5 point estimates into county-level
// annual means. Grid sites are joined to their coordinates by site code,
// assigned to counties point-in-polygon, and averaged per FIPS. Counties
// containing no grid site get no row; that gap is a true missing reported
// downstream, never imputed.
package exposure

import (
	"fmt"
	"log"
	"sort"

	"github.com/paulmach/orb"

	"github.com/invertedv/study"
	"github.com/invertedv/study/geo"
)

// ColPM25 is the output column.
const ColPM25 = "pm25"

// Site is one grid point after the coordinate join.
type Site struct {
	Code  string
	Point orb.Point
	PM25  float64
}

// Load reads the estimate and coordinate files for the study year and
// aggregates them over the county set.
func Load(cfg *study.Config, counties []geo.County) (*study.Table, error) {
	sites, e := readSites(
		cfg.Path("exposure", fmt.Sprintf("pm25_%d.csv", cfg.Year)),
		cfg.Path("exposure", "grid_sites.csv"),
	)
	if e != nil {
		return nil, e
	}

	return Aggregate(sites, counties)
}

// readSites joins the per-year estimates to the site coordinate table by
// site code. Estimates with no coordinate entry are dropped.
func readSites(valueFile, coordFile string) ([]Site, error) {
	coords, e := study.ReadCSV(coordFile, 0)
	if e != nil {
		return nil, fmt.Errorf("site coordinates: %w", e)
	}

	for _, cName := range []string{"lon", "lat"} {
		if e := study.FloatColumn(coords, cName); e != nil {
			return nil, e
		}
	}

	codes, e := coords.Strings("site")
	if e != nil {
		return nil, e
	}

	lon, _ := coords.Floats("lon")
	lat, _ := coords.Floats("lat")

	at := make(map[string]orb.Point, len(codes))
	for ind, code := range codes {
		at[code] = orb.Point{lon[ind], lat[ind]}
	}

	vals, e := study.ReadCSV(valueFile, 0)
	if e != nil {
		return nil, fmt.Errorf("estimates: %w", e)
	}

	if e := study.FloatColumn(vals, ColPM25); e != nil {
		return nil, e
	}

	vCodes, e := vals.Strings("site")
	if e != nil {
		return nil, e
	}

	pm, _ := vals.Floats(ColPM25)

	var (
		sites    []Site
		unplaced int
	)

	for ind, code := range vCodes {
		pt, ok := at[code]
		if !ok {
			unplaced++
			continue
		}

		sites = append(sites, Site{Code: code, Point: pt, PM25: pm[ind]})
	}

	if unplaced > 0 {
		log.Printf("exposure: %d sites with no coordinate entry dropped", unplaced)
	}

	return sites, nil
}

// Aggregate assigns sites to counties and averages PM2.5 per FIPS. Sites
// falling outside every county polygon are dropped.
func Aggregate(sites []Site, counties []geo.County) (*study.Table, error) {
	var (
		keys []string
		vals []float64

		outside int
	)

	for _, s := range sites {
		f := geo.FindCounty(counties, s.Point)
		if f == "" {
			outside++
			continue
		}

		keys = append(keys, f)
		vals = append(vals, s.PM25)
	}

	means := study.GroupMeans(keys, vals)

	fips := make([]string, 0, len(means))
	for f := range means {
		fips = append(fips, f)
	}
	sort.Strings(fips)

	pm := make([]float64, len(fips))
	for ind, f := range fips {
		pm[ind] = means[f]
	}

	log.Printf("exposure: %d sites in %d counties, %d outside any county", len(sites)-outside, len(fips), outside)

	key, _ := study.NewColumn(study.KeyFIPS, fips)
	val, _ := study.NewColumn(ColPM25, pm)

	return study.NewTable(key, val)
}

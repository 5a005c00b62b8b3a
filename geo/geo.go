// Package geo loads the county boundary shapefile and derives the study's
// county universe: every other source is measured against the FIPS codes and
// polygons produced here.
package geo

import (
	"fmt"
	"log"
	"sort"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/invertedv/study"
)

// Excluded lists the state codes outside the contiguous US: Alaska, Hawaii,
// and the territories.
var Excluded = map[string]bool{
	"02": true, "15": true, "60": true, "66": true, "69": true,
	"72": true, "78": true,
}

// sqMilesPerSqMeter converts the shapefile's land area to square miles.
const sqMilesPerSqMeter = 3.861021585e-7

// County is one polygon of the boundary file, after the contiguous filter.
type County struct {
	FIPS string
	Name string

	// Area is land area in square miles.
	Area float64

	Boundary orb.MultiPolygon
	Bound    orb.Bound
}

// Contains reports whether pt falls inside the county boundary, with a
// bounding-box prescreen.
func (cty *County) Contains(pt orb.Point) bool {
	if !cty.Bound.Contains(pt) {
		return false
	}

	return planar.MultiPolygonContains(cty.Boundary, pt)
}

// Load reads the boundary shapefile under the data root and returns the
// filtered county set.
func Load(cfg *study.Config) ([]County, error) {
	fileName := cfg.Path("geography", fmt.Sprintf("tl_%d_us_county10.shp", cfg.Year))

	r, e := shp.Open(fileName)
	if e != nil {
		return nil, fmt.Errorf("boundary shapefile: %w", e)
	}
	defer func() { _ = r.Close() }()

	var stateAt, countyAt, nameAt, areaAt = -1, -1, -1, -1
	for ind, fld := range r.Fields() {
		switch fld.String() {
		case "STATEFP10":
			stateAt = ind
		case "COUNTYFP10":
			countyAt = ind
		case "NAME10":
			nameAt = ind
		case "ALAND10":
			areaAt = ind
		}
	}

	if stateAt < 0 || countyAt < 0 || nameAt < 0 || areaAt < 0 {
		return nil, fmt.Errorf("%s: missing state/county/name/area attributes", fileName)
	}

	var (
		counties []County
		dropped  int
	)

	for r.Next() {
		row, shape := r.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			return nil, fmt.Errorf("%s row %d: not a polygon", fileName, row)
		}

		state := padCode(r.ReadAttribute(row, stateAt), 2)
		if Excluded[state] {
			dropped++
			continue
		}

		var area float64
		if _, e := fmt.Sscan(r.ReadAttribute(row, areaAt), &area); e != nil {
			return nil, fmt.Errorf("%s row %d: bad area: %w", fileName, row, e)
		}

		boundary := toMultiPolygon(poly)
		counties = append(counties, County{
			FIPS:     state + padCode(r.ReadAttribute(row, countyAt), 3),
			Name:     r.ReadAttribute(row, nameAt),
			Area:     area * sqMilesPerSqMeter,
			Boundary: boundary,
			Bound:    boundary.Bound(),
		})
	}

	if e := checkUnique(counties); e != nil {
		return nil, e
	}

	log.Printf("geography: %d counties kept, %d non-contiguous polygons dropped", len(counties), dropped)

	return counties, nil
}

// Universe returns the sorted FIPS codes of the county set.
func Universe(counties []County) []string {
	out := make([]string, len(counties))
	for ind := range counties {
		out[ind] = counties[ind].FIPS
	}

	sort.Strings(out)

	return out
}

// Table renders the county set as fips/name/area, sorted by fips.
func Table(counties []County) (*study.Table, error) {
	sorted := append([]County(nil), counties...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FIPS < sorted[j].FIPS })

	fips := make([]string, len(sorted))
	names := make([]string, len(sorted))
	areas := make([]float64, len(sorted))
	for ind := range sorted {
		fips[ind] = sorted[ind].FIPS
		names[ind] = sorted[ind].Name
		areas[ind] = sorted[ind].Area
	}

	key, _ := study.NewColumn(study.KeyFIPS, fips)
	nm, _ := study.NewColumn("name", names)
	ar, _ := study.NewColumn("area", areas)

	return study.NewTable(key, nm, ar)
}

// FindCounty returns the FIPS of the county containing pt, or "" if none
// does.
func FindCounty(counties []County, pt orb.Point) string {
	for ind := range counties {
		if counties[ind].Contains(pt) {
			return counties[ind].FIPS
		}
	}

	return ""
}

func checkUnique(counties []County) error {
	seen := make(map[string]bool, len(counties))
	for ind := range counties {
		f := counties[ind].FIPS
		if len(f) != 5 {
			return fmt.Errorf("bad FIPS %q", f)
		}

		if seen[f] {
			return fmt.Errorf("duplicate FIPS %s in boundary file", f)
		}

		seen[f] = true
	}

	return nil
}

// toMultiPolygon splits the shapefile parts into rings. Shapefile outer
// rings run clockwise; counterclockwise rings are holes in the polygon they
// follow.
func toMultiPolygon(poly *shp.Polygon) orb.MultiPolygon {
	var out orb.MultiPolygon

	for part := 0; part < int(poly.NumParts); part++ {
		start := poly.Parts[part]
		end := int32(len(poly.Points))
		if part+1 < int(poly.NumParts) {
			end = poly.Parts[part+1]
		}

		ring := make(orb.Ring, 0, end-start)
		for at := start; at < end; at++ {
			ring = append(ring, orb.Point{poly.Points[at].X, poly.Points[at].Y})
		}

		if ring.Orientation() == orb.CW || len(out) == 0 {
			out = append(out, orb.Polygon{ring})
			continue
		}

		out[len(out)-1] = append(out[len(out)-1], ring)
	}

	return out
}

func padCode(code string, width int) string {
	for len(code) < width {
		code = "0" + code
	}

	return code
}

// Package claims aggregates the synthetic beneficiary extract to county
// outcomes. The extract is keyed by a legacy SSA county code, not FIPS; a
// crosswalk maps one to the other, and beneficiaries with no crosswalk entry
// are dropped. Counties with no claims at all are filled with the state
// median of each output field.
package claims

import (
	"fmt"
	"log"
	"sort"
	"strconv"

	"github.com/invertedv/study"
)

// Fields are the six output columns, all subject to the state-median fill.
var Fields = []string{
	"oc_mortality", "oc_mean_age",
	"oc_pct_female", "oc_pct_white", "oc_pct_black", "oc_pct_hispanic",
}

// Beneficiary codebook values.
const (
	sexFemale    = 2
	raceWhite    = 1
	raceBlack    = 2
	raceHispanic = 5
)

// Beneficiary is one extract row after column selection.
type Beneficiary struct {
	// SSACode is the legacy 5-digit regional code (2-digit state + 3-digit
	// county), distinct from FIPS.
	SSACode string

	BirthYear int
	Died      bool
	Sex       int
	Race      int
}

// Load reads the year partition of the extract, remaps it through the
// crosswalk, aggregates per county, and fills missing counties.
func Load(cfg *study.Config, universe []string) (*study.Table, error) {
	bens, e := readPartition(cfg.Path("claims", strconv.Itoa(cfg.Year)))
	if e != nil {
		return nil, e
	}

	xwalk, e := ReadCrosswalk(cfg.Path("claims", "ssa_fips_crosswalk.csv"))
	if e != nil {
		return nil, e
	}

	t, e := Aggregate(bens, xwalk, cfg.Year)
	if e != nil {
		return nil, e
	}

	fill := &study.StateMedian{Fields: Fields}
	if e := fill.Fill(t, universe); e != nil {
		return nil, fmt.Errorf("claims: %w", e)
	}

	return t, nil
}

// ReadCrosswalk reads the ssacd -> fipsco mapping.
func ReadCrosswalk(fileName string) (map[string]string, error) {
	t, e := study.ReadCSV(fileName, 0)
	if e != nil {
		return nil, fmt.Errorf("crosswalk: %w", e)
	}

	ssa, e := t.Strings("ssacd")
	if e != nil {
		return nil, fmt.Errorf("crosswalk: %w", e)
	}

	fips, e := t.Strings("fipsco")
	if e != nil {
		return nil, fmt.Errorf("crosswalk: %w", e)
	}

	out := make(map[string]string, len(ssa))
	for ind := range ssa {
		out[ssa[ind]] = fips[ind]
	}

	return out, nil
}

// Aggregate computes the six fields per FIPS as group-wise proportions and
// means over beneficiaries.
func Aggregate(bens []Beneficiary, xwalk map[string]string, year int) (*study.Table, error) {
	var (
		keys []string
		died []bool
		fem  []bool
		wht  []bool
		blk  []bool
		hsp  []bool
		age  []float64

		unmatched int
	)

	for _, b := range bens {
		f, ok := xwalk[b.SSACode]
		if !ok {
			unmatched++
			continue
		}

		keys = append(keys, f)
		died = append(died, b.Died)
		fem = append(fem, b.Sex == sexFemale)
		wht = append(wht, b.Race == raceWhite)
		blk = append(blk, b.Race == raceBlack)
		hsp = append(hsp, b.Race == raceHispanic)

		a := study.Missing
		if b.BirthYear > 0 {
			a = float64(year - b.BirthYear)
		}
		age = append(age, a)
	}

	if unmatched > 0 {
		log.Printf("claims: %d beneficiaries with no crosswalk entry dropped", unmatched)
	}

	props := map[string]map[string]float64{
		"oc_mortality":    study.GroupProportions(keys, died),
		"oc_pct_female":   study.GroupProportions(keys, fem),
		"oc_pct_white":    study.GroupProportions(keys, wht),
		"oc_pct_black":    study.GroupProportions(keys, blk),
		"oc_pct_hispanic": study.GroupProportions(keys, hsp),
	}

	ages := study.GroupMeans(keys, age)

	seen := make(map[string]bool)
	for _, k := range keys {
		seen[k] = true
	}

	fips := make([]string, 0, len(seen))
	for f := range seen {
		fips = append(fips, f)
	}
	sort.Strings(fips)

	key, _ := study.NewColumn(study.KeyFIPS, fips)
	out, e := study.NewTable(key)
	if e != nil {
		return nil, e
	}

	for _, cName := range Fields {
		x := make([]float64, len(fips))
		for ind, f := range fips {
			if cName == "oc_mean_age" {
				v, ok := ages[f]
				if !ok {
					v = study.Missing
				}

				x[ind] = v
				continue
			}

			x[ind] = props[cName][f]
		}

		c, ec := study.NewColumn(cName, x)
		if ec != nil {
			return nil, ec
		}

		if e := out.AppendColumn(c); e != nil {
			return nil, e
		}
	}

	return out, nil
}

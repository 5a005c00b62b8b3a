// Package survey extracts county-level health behaviors from the telephone
// survey microdata: mean BMI and smoking-category percentages. Counties with
// no respondents at all are filled by drawing from a normal distribution fit
// to the other counties in the same state, one draw per field.
package survey

import (
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/kshedden/datareader"

	"github.com/invertedv/study"
)

// Source columns, per the survey codebook.
const (
	colState  = "_STATE"
	colCounty = "CTYCODE"
	colBMI    = "_BMI4"
	colSmoker = "_SMOKER3"

	// bmiSentinel marks a refused answer; it is data-entry shorthand, not a
	// body mass index.
	bmiSentinel = 9999

	// bmiScale: the composite BMI field carries two implied decimals.
	bmiScale = 100.0
)

// Smoking status codes from the codebook.
const (
	smokeEveryday = 1
	smokeSomedays = 2
	smokeFormer   = 3
	smokeNever    = 4
)

// Fields are the six output columns, all subject to the state-normal fill.
var Fields = []string{
	"bh_mean_bmi",
	"bh_smoke_current", "bh_smoke_somedays", "bh_smoke_former",
	"bh_smoke_never", "bh_nonsmoker",
}

// Respondent is one survey answer after field selection.
type Respondent struct {
	FIPS string

	// BMI is Missing when refused or absent.
	BMI float64

	// Smoker is 0 when status is unknown.
	Smoker int
}

// Load reads the survey extract for the study year, tabulates it per county,
// and fills counties with no respondents.
func Load(cfg *study.Config, universe []string) (*study.Table, error) {
	recs, e := readExtract(cfg.Path("survey", fmt.Sprintf("brfss_%d.sas7bdat", cfg.Year)))
	if e != nil {
		return nil, e
	}

	t, e := Tabulate(recs)
	if e != nil {
		return nil, e
	}

	fill := &study.StateNormal{Fields: Fields, Src: cfg.Src()}
	if e := fill.Fill(t, universe); e != nil {
		return nil, fmt.Errorf("survey: %w", e)
	}

	return t, nil
}

// readExtract pulls the four relevant columns out of the SAS extract.
// Respondents with no county code are dropped: they cannot be placed.
func readExtract(fileName string) ([]Respondent, error) {
	f, e := os.Open(fileName)
	if e != nil {
		return nil, fmt.Errorf("survey extract: %w", e)
	}
	defer func() { _ = f.Close() }()

	rdr, e := datareader.NewSAS7BDATReader(f)
	if e != nil {
		return nil, fmt.Errorf("survey extract: %w", e)
	}

	at := make(map[string]int)
	for ind, cName := range rdr.ColumnNames() {
		at[cName] = ind
	}

	for _, cName := range []string{colState, colCounty, colBMI, colSmoker} {
		if _, ok := at[cName]; !ok {
			return nil, fmt.Errorf("survey extract: no column %s", cName)
		}
	}

	chunk, e := rdr.Read(-1)
	if e != nil {
		return nil, fmt.Errorf("survey extract: %w", e)
	}

	state, stMiss, e := chunk[at[colState]].AsFloat64Slice()
	if e != nil {
		return nil, e
	}

	county, ctyMiss, e := chunk[at[colCounty]].AsFloat64Slice()
	if e != nil {
		return nil, e
	}

	bmi, bmiMiss, e := chunk[at[colBMI]].AsFloat64Slice()
	if e != nil {
		return nil, e
	}

	smoker, smkMiss, e := chunk[at[colSmoker]].AsFloat64Slice()
	if e != nil {
		return nil, e
	}

	var (
		recs     []Respondent
		unplaced int
	)

	for ind := range state {
		if stMiss[ind] || ctyMiss[ind] || county[ind] <= 0 {
			unplaced++
			continue
		}

		r := Respondent{
			FIPS: fmt.Sprintf("%02d%03d", int(state[ind]), int(county[ind])),
			BMI:  study.Missing,
		}

		if !bmiMiss[ind] && bmi[ind] != bmiSentinel {
			r.BMI = bmi[ind] / bmiScale
		}

		if !smkMiss[ind] {
			r.Smoker = int(smoker[ind])
		}

		recs = append(recs, r)
	}

	log.Printf("survey: %d respondents read, %d without a county code dropped", len(recs), unplaced)

	return recs, nil
}

// Tabulate computes the six fields per county: mean BMI over non-refused
// answers and each smoking category's share of respondents with a known
// status.
func Tabulate(recs []Respondent) (*study.Table, error) {
	var (
		bmiKeys []string
		bmiVals []float64
	)

	smokeKeys := []string{}
	hits := map[string][]bool{
		"bh_smoke_current":  {},
		"bh_smoke_somedays": {},
		"bh_smoke_former":   {},
		"bh_smoke_never":    {},
		"bh_nonsmoker":      {},
	}

	for _, r := range recs {
		bmiKeys = append(bmiKeys, r.FIPS)
		bmiVals = append(bmiVals, r.BMI)

		if r.Smoker < smokeEveryday || r.Smoker > smokeNever {
			continue
		}

		smokeKeys = append(smokeKeys, r.FIPS)
		hits["bh_smoke_current"] = append(hits["bh_smoke_current"], r.Smoker == smokeEveryday)
		hits["bh_smoke_somedays"] = append(hits["bh_smoke_somedays"], r.Smoker == smokeSomedays)
		hits["bh_smoke_former"] = append(hits["bh_smoke_former"], r.Smoker == smokeFormer)
		hits["bh_smoke_never"] = append(hits["bh_smoke_never"], r.Smoker == smokeNever)
		hits["bh_nonsmoker"] = append(hits["bh_nonsmoker"], r.Smoker == smokeFormer || r.Smoker == smokeNever)
	}

	means := study.GroupMeans(bmiKeys, bmiVals)

	props := make(map[string]map[string]float64)
	for cName, h := range hits {
		props[cName] = study.GroupProportions(smokeKeys, h)
	}

	// county set: anyone with at least one usable answer
	seen := make(map[string]bool)
	for _, k := range bmiKeys {
		seen[k] = true
	}

	fips := make([]string, 0, len(seen))
	for f := range seen {
		fips = append(fips, f)
	}
	sort.Strings(fips)

	cols := make(map[string][]float64)
	for _, cName := range Fields {
		cols[cName] = make([]float64, len(fips))
	}

	for ind, f := range fips {
		v, ok := means[f]
		if !ok {
			v = study.Missing
		}
		cols["bh_mean_bmi"][ind] = v

		for cName := range props {
			pv, okp := props[cName][f]
			if !okp {
				pv = study.Missing
			}

			cols[cName][ind] = pv * 100
		}
	}

	key, _ := study.NewColumn(study.KeyFIPS, fips)
	out, e := study.NewTable(key)
	if e != nil {
		return nil, e
	}

	for _, cName := range Fields {
		c, ec := study.NewColumn(cName, cols[cName])
		if ec != nil {
			return nil, ec
		}

		if e := out.AppendColumn(c); e != nil {
			return nil, e
		}
	}

	return out, nil
}

// Package census pulls the ACS 5-year county estimates and derives the
// study's demographic and economic fields: population, racial/ethnic shares,
// education, poverty, income, housing, and population density. Remaining NA
// estimates are zero-filled before derivation, except the one fully-missing
// Texas county, which is patched afterward from its named neighbors.
package census

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/invertedv/study"
)

// FIPSLoving is the near-zero-population Texas county the API returns no
// usable estimates for.
const FIPSLoving = "48301"

// lovingNeighbors are the four in-state neighbors averaged to patch it:
// Culberson, Reeves, Ward, Winkler.
var lovingNeighbors = []string{"48109", "48389", "48475", "48495"}

// imputedFields are the nine already-derived fields the neighbor mean fills.
var imputedFields = []string{
	"cs_poverty", "cs_hispanic", "cs_black", "cs_white", "cs_native",
	"cs_asian", "cs_other", "cs_ed_below_highschool", "cs_household_income",
}

// csColumns is the output column order.
var csColumns = []string{
	"cs_poverty", "cs_hispanic", "cs_black", "cs_white", "cs_native",
	"cs_asian", "cs_other", "cs_ed_below_highschool",
	"cs_household_income", "cs_house_value", "cs_pct_owner_occ",
	"cs_total_population", "cs_area", "cs_population_density",
	"cs_log_total_population", "cs_log_population_density",
}

const defaultBaseURL = "https://api.census.gov/data"

// sentinel floor: the API encodes suppressed estimates as large negative
// values.
const suppressed = -100000.0

// Client queries the census API.
type Client struct {
	BaseURL string
	Key     string
	HTTP    *http.Client
}

func NewClient(key string) *Client {
	return &Client{BaseURL: defaultBaseURL, Key: key, HTTP: http.DefaultClient}
}

// Fetch pulls vars for every county in every state, returning
// fips -> variable -> estimate. Suppressed and null estimates come back
// Missing.
func (cl *Client) Fetch(year int, vars []string) (map[string]map[string]float64, error) {
	q := url.Values{}
	q.Set("get", strings.Join(vars, ","))
	q.Set("for", "county:*")
	q.Set("in", "state:*")
	if cl.Key != "" {
		q.Set("key", cl.Key)
	}

	reqURL := fmt.Sprintf("%s/%d/acs/acs5?%s", cl.BaseURL, year, q.Encode())

	resp, e := cl.HTTP.Get(reqURL)
	if e != nil {
		return nil, fmt.Errorf("census API: %w", e)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("census API: status %d: %s", resp.StatusCode, body)
	}

	// The API answers with an array of string arrays, header row first,
	// state and county codes in the last two positions.
	var rows [][]*string
	if e := json.NewDecoder(resp.Body).Decode(&rows); e != nil {
		return nil, fmt.Errorf("census API: %w", e)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("census API: empty response")
	}

	header := rows[0]
	stateAt, countyAt := -1, -1
	at := make(map[int]string)
	for ind, h := range header {
		if h == nil {
			continue
		}

		switch *h {
		case "state":
			stateAt = ind
		case "county":
			countyAt = ind
		default:
			at[ind] = *h
		}
	}

	if stateAt < 0 || countyAt < 0 {
		return nil, fmt.Errorf("census API: no state/county columns")
	}

	out := make(map[string]map[string]float64, len(rows)-1)
	for _, row := range rows[1:] {
		if row[stateAt] == nil || row[countyAt] == nil {
			continue
		}

		fips := *row[stateAt] + *row[countyAt]
		est := make(map[string]float64, len(at))
		for ind, vName := range at {
			est[vName] = parseEstimate(row[ind])
		}

		out[fips] = est
	}

	return out, nil
}

func parseEstimate(s *string) float64 {
	if s == nil || *s == "" {
		return study.Missing
	}

	v, e := strconv.ParseFloat(*s, 64)
	if e != nil || v <= suppressed {
		return study.Missing
	}

	return v
}

// Load fetches the raw estimates and derives the census table over the
// geography universe. geoTable supplies the land area joined into the
// density fields; the API's area is never used.
func Load(cfg *study.Config, geoTable *study.Table) (*study.Table, error) {
	raw, e := NewClient(cfg.CensusKey).Fetch(cfg.Year, allVariables())
	if e != nil {
		return nil, e
	}

	return Derive(raw, geoTable)
}

// Derive builds the cs_ fields from raw estimates for every county in
// geoTable, zero-filling missing estimates first, then patching the Loving
// County gap from its neighbors.
func Derive(raw map[string]map[string]float64, geoTable *study.Table) (*study.Table, error) {
	fips, e := geoTable.Key()
	if e != nil {
		return nil, e
	}

	area, e := geoTable.Floats("area")
	if e != nil {
		return nil, e
	}

	cols := make(map[string][]float64, len(csColumns))
	for _, cName := range csColumns {
		cols[cName] = make([]float64, len(fips))
	}

	missingRows := 0
	for ind, f := range fips {
		est, ok := raw[f]
		if !ok {
			missingRows++
			est = map[string]float64{}
		}

		// zero-fill before any derivation
		get := func(vName string) float64 {
			v, okv := est[vName]
			if !okv || study.IsMissing(v) {
				return 0
			}

			return v
		}

		pop := get(varTotalPop)

		hisp := safeShare(get(varHispanic), pop)
		blk := safeShare(get(varBlack), pop)
		wht := safeShare(get(varWhite), pop)
		ntv := safeShare(get(varNative), pop)
		asn := safeShare(get(varAsian), pop)

		cols["cs_total_population"][ind] = pop
		cols["cs_hispanic"][ind] = hisp
		cols["cs_black"][ind] = blk
		cols["cs_white"][ind] = wht
		cols["cs_native"][ind] = ntv
		cols["cs_asian"][ind] = asn
		cols["cs_other"][ind] = otherShare(hisp, blk, wht, ntv, asn)

		belowHS := 0.0
		for _, vName := range edMaleBelowHS {
			belowHS += get(vName)
		}
		for _, vName := range edFemaleBelowHS {
			belowHS += get(vName)
		}

		cols["cs_ed_below_highschool"][ind] = safeShare(belowHS, get(varEdTotal))
		cols["cs_poverty"][ind] = safeShare(get(varPovBelow), get(varPovTotal))
		cols["cs_household_income"][ind] = get(varHouseholdIncome)
		cols["cs_house_value"][ind] = get(varHouseValue)
		cols["cs_pct_owner_occ"][ind] = safeShare(get(varTenureOwner), get(varTenureTotal))

		cols["cs_area"][ind] = area[ind]

		density := study.Missing
		if !study.IsMissing(area[ind]) && area[ind] > 0 {
			density = pop / area[ind]
		}

		cols["cs_population_density"][ind] = density
		cols["cs_log_total_population"][ind] = study.Log10OrMissing(pop)
		cols["cs_log_population_density"][ind] = study.Log10OrMissing(density)
	}

	if missingRows > 0 {
		log.Printf("census: %d counties absent from API response, zero-filled", missingRows)
	}

	key, _ := study.NewColumn(study.KeyFIPS, append([]string(nil), fips...))
	out, e := study.NewTable(key)
	if e != nil {
		return nil, e
	}

	for _, cName := range csColumns {
		c, ec := study.NewColumn(cName, cols[cName])
		if ec != nil {
			return nil, ec
		}

		if e := out.AppendColumn(c); e != nil {
			return nil, e
		}
	}

	fill := &study.NeighborMean{
		Target:      FIPSLoving,
		Neighbors:   lovingNeighbors,
		Fields:      imputedFields,
		FloorFields: []string{"cs_household_income"},
	}

	if e := fill.Fill(out, fips); e != nil {
		return nil, fmt.Errorf("census: %w", e)
	}

	return out, nil
}

func safeShare(num, denom float64) float64 {
	if denom <= 0 || study.IsMissing(num) || study.IsMissing(denom) {
		return study.Missing
	}

	return num / denom
}

// otherShare absorbs rounding and category gaps; it is clamped at zero so
// the six shares sum to at least the five named ones and never exceed 1 by
// more than rounding.
func otherShare(shares ...float64) float64 {
	sum := 0.0
	for _, s := range shares {
		if study.IsMissing(s) {
			return study.Missing
		}

		sum += s
	}

	return math.Max(0, 1-sum)
}

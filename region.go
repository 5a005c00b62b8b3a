package study

import "fmt"

// Region is one of the four census regions partitioning the contiguous US.
type Region string

const (
	Northeast Region = "NORTHEAST"
	South     Region = "SOUTH"
	Midwest   Region = "MIDWEST"
	West      Region = "WEST"
)

// statePostal maps 2-character state FIPS prefixes to postal codes for the
// 49 contiguous jurisdictions (48 states + DC).
var statePostal = map[string]string{
	"01": "AL", "04": "AZ", "05": "AR", "06": "CA", "08": "CO",
	"09": "CT", "10": "DE", "11": "DC", "12": "FL", "13": "GA",
	"16": "ID", "17": "IL", "18": "IN", "19": "IA", "20": "KS",
	"21": "KY", "22": "LA", "23": "ME", "24": "MD", "25": "MA",
	"26": "MI", "27": "MN", "28": "MS", "29": "MO", "30": "MT",
	"31": "NE", "32": "NV", "33": "NH", "34": "NJ", "35": "NM",
	"36": "NY", "37": "NC", "38": "ND", "39": "OH", "40": "OK",
	"41": "OR", "42": "PA", "44": "RI", "45": "SC", "46": "SD",
	"47": "TN", "48": "TX", "49": "UT", "50": "VT", "51": "VA",
	"53": "WA", "54": "WV", "55": "WI", "56": "WY",
}

// stateRegion is the fixed, hand-authored partition of the contiguous
// jurisdictions into census regions.
var stateRegion = map[string]Region{
	"CT": Northeast, "ME": Northeast, "MA": Northeast, "NH": Northeast,
	"NJ": Northeast, "NY": Northeast, "PA": Northeast, "RI": Northeast,
	"VT": Northeast,

	"IA": Midwest, "IL": Midwest, "IN": Midwest, "KS": Midwest,
	"MI": Midwest, "MN": Midwest, "MO": Midwest, "ND": Midwest,
	"NE": Midwest, "OH": Midwest, "SD": Midwest, "WI": Midwest,

	"AL": South, "AR": South, "DC": South, "DE": South, "FL": South,
	"GA": South, "KY": South, "LA": South, "MD": South, "MS": South,
	"NC": South, "OK": South, "SC": South, "TN": South, "TX": South,
	"VA": South, "WV": South,

	"AZ": West, "CA": West, "CO": West, "ID": West, "MT": West,
	"NM": West, "NV": West, "OR": West, "UT": West, "WA": West,
	"WY": West,
}

// PostalCode returns the postal code for a county FIPS code.
func PostalCode(fips string) (string, error) {
	pc, ok := statePostal[StateOf(fips)]
	if !ok {
		return "", fmt.Errorf("no postal code for state prefix %q", StateOf(fips))
	}

	return pc, nil
}

// RegionOf returns the census region for a county FIPS code.
func RegionOf(fips string) (Region, error) {
	pc, e := PostalCode(fips)
	if e != nil {
		return "", e
	}

	return stateRegion[pc], nil
}

// RegionTable builds a fips -> (state, region) table for the given universe.
func RegionTable(universe []string) (*Table, error) {
	states := make([]string, len(universe))
	regions := make([]string, len(universe))

	for ind, f := range universe {
		pc, e := PostalCode(f)
		if e != nil {
			return nil, e
		}

		states[ind] = pc
		regions[ind] = string(stateRegion[pc])
	}

	key, _ := NewColumn(KeyFIPS, append([]string(nil), universe...))
	st, _ := NewColumn("state", states)
	rg, _ := NewColumn("region", regions)

	return NewTable(key, st, rg)
}

package census

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invertedv/study"
)

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "county:*", r.URL.Query().Get("for"))
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		fmt.Fprint(w, `[["B01003_001E","B19013_001E","state","county"],
			["100","40000","48","109"],
			["55",null,"48","389"],
			["-666666666","1","48","475"]]`)
	}))
	defer srv.Close()

	cl := &Client{BaseURL: srv.URL, Key: "secret", HTTP: srv.Client()}

	raw, e := cl.Fetch(2010, []string{"B01003_001E", "B19013_001E"})
	require.Nil(t, e)
	require.Equal(t, 3, len(raw))

	assert.Equal(t, 100.0, raw["48109"]["B01003_001E"])
	assert.Equal(t, 40000.0, raw["48109"]["B19013_001E"])

	// null and suppression sentinels come back missing
	assert.True(t, study.IsMissing(raw["48389"]["B19013_001E"]))
	assert.True(t, study.IsMissing(raw["48475"]["B01003_001E"]))
}

func TestClientFetch_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no key", http.StatusForbidden)
	}))
	defer srv.Close()

	cl := &Client{BaseURL: srv.URL, HTTP: srv.Client()}

	_, e := cl.Fetch(2010, []string{"B01003_001E"})
	assert.NotNil(t, e)
}

// testGeoTable builds Loving County plus its four neighbors, 10 sq mi each.
func testGeoTable(t *testing.T) *study.Table {
	fips := []string{"48109", "48301", "48389", "48475", "48495"}
	names := []string{"Culberson", "Loving", "Reeves", "Ward", "Winkler"}
	area := []float64{10, 10, 10, 10, 10}

	key, e := study.NewColumn(study.KeyFIPS, fips)
	require.Nil(t, e)
	nm, e := study.NewColumn("name", names)
	require.Nil(t, e)
	ar, e := study.NewColumn("area", area)
	require.Nil(t, e)

	tbl, e := study.NewTable(key, nm, ar)
	require.Nil(t, e)

	out, e := tbl.KeepColumns(study.KeyFIPS, "area")
	require.Nil(t, e)

	return out
}

func neighborEstimates(income float64) map[string]float64 {
	return map[string]float64{
		varTotalPop: 100, varHispanic: 10, varWhite: 50, varBlack: 20,
		varNative: 5, varAsian: 5,
		varEdTotal: 80, "B15002_003E": 4, "B15002_020E": 4,
		varPovTotal: 100, varPovBelow: 10,
		varHouseholdIncome: income, varHouseValue: 90000,
		varTenureTotal: 40, varTenureOwner: 30,
	}
}

func TestDerive(t *testing.T) {
	raw := map[string]map[string]float64{
		"48109": neighborEstimates(40001),
		"48389": neighborEstimates(40002),
		"48475": neighborEstimates(40002),
		"48495": neighborEstimates(40001),
		// 48301 absent: the known Loving County gap
	}

	tbl, e := Derive(raw, testGeoTable(t))
	require.Nil(t, e)
	require.Equal(t, 5, tbl.RowCount())

	indx, e := tbl.RowIndex(study.KeyFIPS)
	require.Nil(t, e)

	shareCols := []string{"cs_hispanic", "cs_black", "cs_white", "cs_native", "cs_asian", "cs_other"}

	for _, f := range []string{"48109", "48389", "48475", "48495"} {
		sum := 0.0
		for _, cName := range shareCols {
			x, ex := tbl.Floats(cName)
			require.Nil(t, ex)
			sum += x[indx[f]]
		}

		assert.InDelta(t, 1.0, sum, 1e-9, f)
	}

	oth, _ := tbl.Floats("cs_other")
	for _, v := range oth {
		assert.GreaterOrEqual(t, v, 0.0)
	}

	// education: (4+4)/80
	ed, _ := tbl.Floats("cs_ed_below_highschool")
	assert.InDelta(t, 0.1, ed[indx["48109"]], 1e-12)

	// density and logs come from the geography area, not the API
	dens, _ := tbl.Floats("cs_population_density")
	assert.InDelta(t, 10.0, dens[indx["48109"]], 1e-12)

	lp, _ := tbl.Floats("cs_log_total_population")
	assert.InDelta(t, 2.0, lp[indx["48109"]], 1e-12)

	// Loving County: nine fields equal the neighbor means, income floored
	pov, _ := tbl.Floats("cs_poverty")
	assert.InDelta(t, 0.1, pov[indx["48301"]], 1e-12)

	inc, _ := tbl.Floats("cs_household_income")
	assert.Equal(t, 40001.0, inc[indx["48301"]])

	hsp, _ := tbl.Floats("cs_hispanic")
	assert.InDelta(t, 0.1, hsp[indx["48301"]], 1e-12)

	// zero-filled population leaves the log fields missing, not -Inf
	lp301 := lp[indx["48301"]]
	assert.True(t, study.IsMissing(lp301))
}

func TestAllVariables(t *testing.T) {
	vars := allVariables()

	seen := make(map[string]bool)
	for _, v := range vars {
		assert.False(t, seen[v], v)
		seen[v] = true
	}

	// the request must stay within the API's 50-variable limit
	assert.LessOrEqual(t, len(vars), 50)
}

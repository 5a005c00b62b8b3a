package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invertedv/study"
)

func col(t *testing.T, name string, data any) *study.Column {
	c, e := study.NewColumn(name, data)
	require.Nil(t, e)

	return c
}

func TestCompile(t *testing.T) {
	geoTable, e := study.NewTable(
		col(t, study.KeyFIPS, []string{"01001", "01003", "36001"}),
		col(t, "name", []string{"Autauga", "Baldwin", "Albany"}),
		col(t, "area", []float64{594, 1590, 523}))
	require.Nil(t, e)

	// exposure has a gap: no monitoring site landed in 01003
	expT, e := study.NewTable(
		col(t, study.KeyFIPS, []string{"01001", "36001"}),
		col(t, "pm25", []float64{11.5, 9.2}))
	require.Nil(t, e)

	svyT, e := study.NewTable(
		col(t, study.KeyFIPS, []string{"36001", "01001", "01003"}),
		col(t, "bh_mean_bmi", []float64{26, 28, 27}))
	require.Nil(t, e)

	out, e := Compile(geoTable, expT, svyT)
	require.Nil(t, e)

	// one row per county in the geography, sorted
	key, _ := out.Key()
	assert.Equal(t, []string{"01001", "01003", "36001"}, key)

	assert.Equal(t,
		[]string{study.KeyFIPS, "name", "area", "pm25", "bh_mean_bmi", "state", "region"},
		out.ColumnNames())

	// the exposure gap survives as a missing value, not a dropped row
	pm, _ := out.Floats("pm25")
	assert.Equal(t, 11.5, pm[0])
	assert.True(t, study.IsMissing(pm[1]))
	assert.Equal(t, 9.2, pm[2])

	// join realigns sources keyed in a different order
	bmi, _ := out.Floats("bh_mean_bmi")
	assert.Equal(t, []float64{28, 27, 26}, bmi)

	st, _ := out.Strings("state")
	assert.Equal(t, []string{"AL", "AL", "NY"}, st)

	rg, _ := out.Strings("region")
	assert.Equal(t, []string{"SOUTH", "SOUTH", "NORTHEAST"}, rg)
}

func TestCompile_ExtraSourceCounty(t *testing.T) {
	geoTable, e := study.NewTable(
		col(t, study.KeyFIPS, []string{"01001"}),
		col(t, "area", []float64{594}))
	require.Nil(t, e)

	// a source row outside the geography universe is dropped by the join
	expT, e := study.NewTable(
		col(t, study.KeyFIPS, []string{"01001", "72001"}),
		col(t, "pm25", []float64{11.5, 7}))
	require.Nil(t, e)

	out, e := Compile(geoTable, expT)
	require.Nil(t, e)

	require.Equal(t, 1, out.RowCount())

	pm, _ := out.Floats("pm25")
	assert.Equal(t, []float64{11.5}, pm)
}

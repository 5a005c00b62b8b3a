package study

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
)

func imputeTable(t *testing.T) *Table {
	// two Alabama counties, one Georgia county
	key := mustCol(t, KeyFIPS, []string{"01001", "01003", "13001"})
	x := mustCol(t, "x", []float64{1, 3, 10})
	y := mustCol(t, "y", []float64{2, 6, 20})

	tbl, e := NewTable(key, x, y)
	assert.Nil(t, e)

	return tbl
}

func TestStateMedian(t *testing.T) {
	tbl := imputeTable(t)
	universe := []string{"01001", "01003", "01005", "13001"}

	fill := &StateMedian{Fields: []string{"x", "y"}}
	assert.Nil(t, fill.Fill(tbl, universe))
	assert.Equal(t, 4, tbl.RowCount())

	indx, _ := tbl.RowIndex(KeyFIPS)
	x, _ := tbl.Floats("x")
	y, _ := tbl.Floats("y")

	// median over the other two Alabama counties
	assert.Equal(t, 2.0, x[indx["01005"]])
	assert.Equal(t, 4.0, y[indx["01005"]])
}

func TestStateNormal(t *testing.T) {
	universe := []string{"01001", "01003", "01005", "13001"}

	tbl := imputeTable(t)
	fill := &StateNormal{Fields: []string{"x", "y"}, Src: rand.NewSource(17)}
	assert.Nil(t, fill.Fill(tbl, universe))
	assert.Equal(t, 4, tbl.RowCount())

	indx, _ := tbl.RowIndex(KeyFIPS)
	x, _ := tbl.Floats("x")
	assert.False(t, IsMissing(x[indx["01005"]]))

	// same seed, same draws
	tbl2 := imputeTable(t)
	fill2 := &StateNormal{Fields: []string{"x", "y"}, Src: rand.NewSource(17)}
	assert.Nil(t, fill2.Fill(tbl2, universe))

	x2, _ := tbl2.Floats("x")
	y, _ := tbl.Floats("y")
	y2, _ := tbl2.Floats("y")
	assert.Equal(t, x[indx["01005"]], x2[indx["01005"]])
	assert.Equal(t, y[indx["01005"]], y2[indx["01005"]])
}

func TestStateNormal_Degenerate(t *testing.T) {
	// Georgia has a single observed county: the draw collapses to its value.
	tbl := imputeTable(t)
	universe := []string{"01001", "01003", "13001", "13003"}

	fill := &StateNormal{Fields: []string{"x"}, Src: rand.NewSource(1)}
	assert.Nil(t, fill.Fill(tbl, universe))

	indx, _ := tbl.RowIndex(KeyFIPS)
	x, _ := tbl.Floats("x")
	assert.Equal(t, 10.0, x[indx["13003"]])
}

func TestContainmentCopy(t *testing.T) {
	key := mustCol(t, KeyFIPS, []string{"51005", "51163", "51059", "51019", "51700"})
	x := mustCol(t, "x", []float64{1, 2, 3, 4, 5})
	tbl, e := NewTable(key, x)
	assert.Nil(t, e)

	pairs := map[string]string{
		"51580": "51005",
		"51678": "51163",
		"51610": "51059",
		"51515": "51019",
	}

	fill := &ContainmentCopy{Pairs: pairs}
	assert.Nil(t, fill.Fill(tbl, nil))

	// exactly four new rows, nothing removed
	assert.Equal(t, 9, tbl.RowCount())

	indx, _ := tbl.RowIndex(KeyFIPS)
	xv, _ := tbl.Floats("x")
	for tgt, src := range pairs {
		assert.Equal(t, xv[indx[src]], xv[indx[tgt]])
	}

	// a missing source is an error
	bad := &ContainmentCopy{Pairs: map[string]string{"51999": "51998"}}
	assert.NotNil(t, bad.Fill(tbl, nil))
}

func TestNeighborMean(t *testing.T) {
	key := mustCol(t, KeyFIPS, []string{"48109", "48389", "48475", "48495", "48301"})
	pov := mustCol(t, "pov", []float64{0.1, 0.2, 0.3, 0.4, Missing})
	inc := mustCol(t, "inc", []float64{40001, 40002, 40002, 40001, Missing})
	tbl, e := NewTable(key, pov, inc)
	assert.Nil(t, e)

	fill := &NeighborMean{
		Target:      "48301",
		Neighbors:   []string{"48109", "48389", "48475", "48495"},
		Fields:      []string{"pov", "inc"},
		FloorFields: []string{"inc"},
	}
	assert.Nil(t, fill.Fill(tbl, nil))

	indx, _ := tbl.RowIndex(KeyFIPS)
	povX, _ := tbl.Floats("pov")
	incX, _ := tbl.Floats("inc")

	assert.InDelta(t, 0.25, povX[indx["48301"]], 1e-12)

	// mean is 40001.5: floored after averaging
	assert.Equal(t, 40001.0, incX[indx["48301"]])

	// no rows added: the county was present, just missing
	assert.Equal(t, 5, tbl.RowCount())
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, "48", StateOf("48301"))
	assert.Equal(t, "", StateOf("4"))
}

func TestLog10OrMissing(t *testing.T) {
	assert.Equal(t, 2.0, Log10OrMissing(100))
	assert.True(t, math.IsNaN(Log10OrMissing(0)))
	assert.True(t, math.IsNaN(Log10OrMissing(-5)))
	assert.True(t, math.IsNaN(Log10OrMissing(Missing)))
}

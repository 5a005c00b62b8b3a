package study

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeTestTable(t *testing.T) *Table {
	key, e := NewColumn(KeyFIPS, []string{"01001", "01003", "04005"})
	assert.Nil(t, e)

	x, e := NewColumn("x", []float64{1, 2, 3})
	assert.Nil(t, e)

	nm, e := NewColumn("name", []string{"a", "b", "c"})
	assert.Nil(t, e)

	tbl, e := NewTable(key, x, nm)
	assert.Nil(t, e)

	return tbl
}

func TestTable_Column(t *testing.T) {
	tbl := makeTestTable(t)

	x, e := tbl.Floats("x")
	assert.Nil(t, e)
	assert.ElementsMatch(t, []float64{1, 2, 3}, x)

	key, e := tbl.Key()
	assert.Nil(t, e)
	assert.Equal(t, []string{"01001", "01003", "04005"}, key)

	_, e = tbl.Column("nope")
	assert.NotNil(t, e)

	// wrong-type accessor
	_, e = tbl.Floats("name")
	assert.NotNil(t, e)
}

func TestTable_AppendColumn(t *testing.T) {
	tbl := makeTestTable(t)

	y, _ := NewColumn("y", []float64{4, 5, 6})
	assert.Nil(t, tbl.AppendColumn(y))
	assert.Equal(t, 4, tbl.ColumnCount())

	// duplicate name
	y2, _ := NewColumn("y", []float64{4, 5, 6})
	assert.NotNil(t, tbl.AppendColumn(y2))

	// length mismatch
	short, _ := NewColumn("short", []float64{1})
	assert.NotNil(t, tbl.AppendColumn(short))
}

func TestTable_DropKeep(t *testing.T) {
	tbl := makeTestTable(t)

	assert.Nil(t, tbl.DropColumns("name"))
	assert.Equal(t, []string{KeyFIPS, "x"}, tbl.ColumnNames())
	assert.NotNil(t, tbl.DropColumns("name"))

	sub, e := makeTestTable(t).KeepColumns(KeyFIPS, "x")
	assert.Nil(t, e)
	assert.Equal(t, []string{KeyFIPS, "x"}, sub.ColumnNames())

	_, e = tbl.KeepColumns("nope")
	assert.NotNil(t, e)
}

func TestTable_Sort(t *testing.T) {
	key, _ := NewColumn(KeyFIPS, []string{"04005", "01001", "01003"})
	x, _ := NewColumn("x", []float64{3, 1, 2})
	tbl, e := NewTable(key, x)
	assert.Nil(t, e)

	assert.Nil(t, tbl.Sort(KeyFIPS))

	sorted, _ := tbl.Key()
	assert.Equal(t, []string{"01001", "01003", "04005"}, sorted)

	xs, _ := tbl.Floats("x")
	assert.Equal(t, []float64{1, 2, 3}, xs)
}

func TestTable_RowIndex(t *testing.T) {
	tbl := makeTestTable(t)

	indx, e := tbl.RowIndex(KeyFIPS)
	assert.Nil(t, e)
	assert.Equal(t, 1, indx["01003"])

	// duplicate keys are rejected
	key, _ := NewColumn(KeyFIPS, []string{"01001", "01001"})
	x, _ := NewColumn("x", []float64{1, 2})
	dup, _ := NewTable(key, x)

	_, e = dup.RowIndex(KeyFIPS)
	assert.NotNil(t, e)
}

func TestTable_AppendRows(t *testing.T) {
	tbl := makeTestTable(t)
	add := makeTestTable(t)

	assert.Nil(t, tbl.AppendRows(add))
	assert.Equal(t, 6, tbl.RowCount())

	bad, _ := tbl.KeepColumns(KeyFIPS, "x")
	assert.NotNil(t, tbl.AppendRows(bad))
}

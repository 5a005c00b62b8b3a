package study

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeftJoin(t *testing.T) {
	lKey, _ := NewColumn(KeyFIPS, []string{"01001", "01003", "04005"})
	lVal, _ := NewColumn("x", []float64{1, 2, 3})
	left, _ := NewTable(lKey, lVal)

	rKey, _ := NewColumn(KeyFIPS, []string{"04005", "01001"})
	rVal, _ := NewColumn("y", []float64{30, 10})
	rStr, _ := NewColumn("tag", []string{"c", "a"})
	right, _ := NewTable(rKey, rVal, rStr)

	out, e := LeftJoin(left, right, KeyFIPS)
	assert.Nil(t, e)
	assert.Equal(t, 3, out.RowCount())

	y, _ := out.Floats("y")
	assert.Equal(t, 10.0, y[0])
	assert.True(t, math.IsNaN(y[1]))
	assert.Equal(t, 30.0, y[2])

	tag, _ := out.Strings("tag")
	assert.Equal(t, []string{"a", "", "c"}, tag)

	// the inputs are not mutated
	assert.Equal(t, 2, left.ColumnCount())
}

func TestLeftJoin_DuplicateKey(t *testing.T) {
	lKey, _ := NewColumn(KeyFIPS, []string{"01001"})
	lVal, _ := NewColumn("x", []float64{1})
	left, _ := NewTable(lKey, lVal)

	rKey, _ := NewColumn(KeyFIPS, []string{"01001", "01001"})
	rVal, _ := NewColumn("y", []float64{10, 20})
	right, _ := NewTable(rKey, rVal)

	_, e := LeftJoin(left, right, KeyFIPS)
	assert.NotNil(t, e)
}

func TestLeftJoin_NameCollision(t *testing.T) {
	lKey, _ := NewColumn(KeyFIPS, []string{"01001"})
	lVal, _ := NewColumn("x", []float64{1})
	left, _ := NewTable(lKey, lVal)

	rKey, _ := NewColumn(KeyFIPS, []string{"01001"})
	rVal, _ := NewColumn("x", []float64{10})
	right, _ := NewTable(rKey, rVal)

	_, e := LeftJoin(left, right, KeyFIPS)
	assert.NotNil(t, e)
}

func TestReduce(t *testing.T) {
	base, _ := NewTable(mustCol(t, KeyFIPS, []string{"01001", "01003"}))

	t1, _ := NewTable(
		mustCol(t, KeyFIPS, []string{"01001", "01003"}),
		mustCol(t, "a", []float64{1, 2}))
	t2, _ := NewTable(
		mustCol(t, KeyFIPS, []string{"01003"}),
		mustCol(t, "b", []float64{20}))

	out, e := Reduce(base, KeyFIPS, t1, t2)
	assert.Nil(t, e)
	assert.Equal(t, []string{KeyFIPS, "a", "b"}, out.ColumnNames())

	b, _ := out.Floats("b")
	assert.True(t, IsMissing(b[0]))
	assert.Equal(t, 20.0, b[1])
}

func mustCol(t *testing.T, name string, data any) *Column {
	c, e := NewColumn(name, data)
	assert.Nil(t, e)

	return c
}

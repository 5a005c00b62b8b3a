package study

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialectTable(t *testing.T) *Table {
	tbl, e := NewTable(
		mustCol(t, KeyFIPS, []string{"01001"}),
		mustCol(t, "pm25", []float64{9.5}),
		mustCol(t, "n", []int{3}))
	require.Nil(t, e)

	return tbl
}

func TestDialectClickHouse(t *testing.T) {
	tbl := dialectTable(t)
	dlct := DialectClickHouse()

	assert.Equal(t,
		"CREATE TABLE study (fips String, pm25 Nullable(Float64), n Int64) ENGINE = MergeTree ORDER BY (fips)",
		dlct.CreateSQL("study", tbl))

	assert.Equal(t,
		"INSERT INTO study (fips, pm25, n) VALUES (?, ?, ?)",
		dlct.InsertSQL("study", tbl))
}

func TestDialectPostgres(t *testing.T) {
	tbl := dialectTable(t)
	dlct := DialectPostgres()

	assert.Equal(t,
		"CREATE TABLE study (fips TEXT, pm25 DOUBLE PRECISION, n BIGINT)",
		dlct.CreateSQL("study", tbl))

	assert.Equal(t,
		"INSERT INTO study (fips, pm25, n) VALUES ($1, $2, $3)",
		dlct.InsertSQL("study", tbl))
}

package study

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionPartition(t *testing.T) {
	// 48 states + DC, every one in exactly one region
	assert.Equal(t, 49, len(statePostal))
	assert.Equal(t, 49, len(stateRegion))

	counts := make(map[Region]int)
	for _, pc := range statePostal {
		r, ok := stateRegion[pc]
		require.True(t, ok, pc)
		counts[r]++
	}

	assert.Equal(t, 9, counts[Northeast])
	assert.Equal(t, 12, counts[Midwest])
	assert.Equal(t, 17, counts[South])
	assert.Equal(t, 11, counts[West])
}

func TestRegionOf(t *testing.T) {
	r, e := RegionOf("48301")
	assert.Nil(t, e)
	assert.Equal(t, South, r)

	r, e = RegionOf("06037")
	assert.Nil(t, e)
	assert.Equal(t, West, r)

	// Alaska is excluded from the universe
	_, e = RegionOf("02013")
	assert.NotNil(t, e)
}

func TestRegionTable(t *testing.T) {
	tbl, e := RegionTable([]string{"01001", "36001"})
	require.Nil(t, e)

	st, _ := tbl.Strings("state")
	assert.Equal(t, []string{"AL", "NY"}, st)

	rg, _ := tbl.Strings("region")
	assert.Equal(t, []string{string(South), string(Northeast)}, rg)
}

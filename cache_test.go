package study

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()

	tbl, e := NewTable(
		mustCol(t, KeyFIPS, []string{"01001", "01003"}),
		mustCol(t, "x", []float64{1, Missing}),
		mustCol(t, "n", []int{7, 8}),
		mustCol(t, "name", []string{"a", "b"}))
	require.Nil(t, e)

	require.Nil(t, SaveCache(dir, "exposure", 2010, tbl))

	back, ok := LoadCache(dir, "exposure", 2010)
	require.True(t, ok)
	assert.Equal(t, tbl.ColumnNames(), back.ColumnNames())

	x, _ := back.Floats("x")
	assert.Equal(t, 1.0, x[0])
	assert.True(t, IsMissing(x[1]))

	// wrong year is a miss
	_, ok = LoadCache(dir, "exposure", 2011)
	assert.False(t, ok)
}

func TestCached(t *testing.T) {
	cfg := &Config{CacheDir: t.TempDir(), Year: 2010}

	builds := 0
	build := func() (*Table, error) {
		builds++
		return NewTable(
			mustCol(t, KeyFIPS, []string{"01001"}),
			mustCol(t, "x", []float64{1}))
	}

	_, e := Cached(cfg, "census", build)
	require.Nil(t, e)

	_, e = Cached(cfg, "census", build)
	require.Nil(t, e)
	assert.Equal(t, 1, builds)

	cfg.Refresh = true
	_, e = Cached(cfg, "census", build)
	require.Nil(t, e)
	assert.Equal(t, 2, builds)

	// errors pass through and are not cached
	_, e = Cached(cfg, "broken", func() (*Table, error) { return nil, fmt.Errorf("boom") })
	assert.NotNil(t, e)
}

package study

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Loader outputs are memoized to disk so repeated runs skip recomputation.
// The cache is keyed by loader name and year, assumes a single writer, and
// is a pure performance layer: clearing it never changes results (up to the
// randomly imputed fields).

type tablePayload struct {
	Names []string
	Types []DataTypes

	Floats  map[string][]float64
	Ints    map[string][]int
	Strings map[string][]string
}

func cachePath(cacheDir, name string, year int) string {
	return filepath.Join(cacheDir, fmt.Sprintf("%s_%d.gob.gz", name, year))
}

// SaveCache writes t under the (name, year) key.
func SaveCache(cacheDir, name string, year int, t *Table) error {
	if e := os.MkdirAll(cacheDir, 0o755); e != nil {
		return e
	}

	pay := tablePayload{
		Floats:  make(map[string][]float64),
		Ints:    make(map[string][]int),
		Strings: make(map[string][]string),
	}

	for _, cName := range t.ColumnNames() {
		c, _ := t.Column(cName)
		pay.Names = append(pay.Names, cName)
		pay.Types = append(pay.Types, c.DataType())

		switch c.DataType() {
		case DTfloat:
			pay.Floats[cName] = c.Data().AsFloat()
		case DTint:
			pay.Ints[cName] = c.Data().AsInt()
		case DTstring:
			pay.Strings[cName] = c.Data().AsString()
		}
	}

	f, e := os.Create(cachePath(cacheDir, name, year))
	if e != nil {
		return e
	}
	defer func() { _ = f.Close() }()

	zw := gzip.NewWriter(f)
	if e := gob.NewEncoder(zw).Encode(&pay); e != nil {
		return e
	}

	return zw.Close()
}

// LoadCache reads the table cached under (name, year); ok is false on a miss.
func LoadCache(cacheDir, name string, year int) (t *Table, ok bool) {
	f, e := os.Open(cachePath(cacheDir, name, year))
	if e != nil {
		return nil, false
	}
	defer func() { _ = f.Close() }()

	zr, e := gzip.NewReader(f)
	if e != nil {
		return nil, false
	}
	defer func() { _ = zr.Close() }()

	var pay tablePayload
	if e := gob.NewDecoder(zr).Decode(&pay); e != nil {
		log.Printf("cache %s_%d unreadable, rebuilding: %v", name, year, e)
		return nil, false
	}

	var cols []*Column
	for ind, cName := range pay.Names {
		var (
			c  *Column
			ec error
		)

		switch pay.Types[ind] {
		case DTfloat:
			c, ec = NewColumn(cName, pay.Floats[cName])
		case DTint:
			c, ec = NewColumn(cName, pay.Ints[cName])
		case DTstring:
			c, ec = NewColumn(cName, pay.Strings[cName])
		default:
			ec = fmt.Errorf("bad cached type %v", pay.Types[ind])
		}

		if ec != nil {
			return nil, false
		}

		cols = append(cols, c)
	}

	out, e := NewTable(cols...)
	if e != nil {
		return nil, false
	}

	return out, true
}

// Cached wraps a loader: hit the cache, or build and store.
func Cached(cfg *Config, name string, build func() (*Table, error)) (*Table, error) {
	if cfg.CacheDir != "" && !cfg.Refresh {
		if t, ok := LoadCache(cfg.CacheDir, name, cfg.Year); ok {
			log.Printf("%s: cache hit (%d rows)", name, t.RowCount())
			return t, nil
		}
	}

	t, e := build()
	if e != nil {
		return nil, e
	}

	if cfg.CacheDir != "" {
		if e := SaveCache(cfg.CacheDir, name, cfg.Year, t); e != nil {
			log.Printf("%s: cache save failed: %v", name, e)
		}
	}

	return t, nil
}

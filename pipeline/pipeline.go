// Package pipeline runs the loaders and compiles their tables into the final
// county study table. The geography universe seeds the join chain, so every
// county appears exactly once; sources with structurally missing counties
// leave true gaps.
package pipeline

import (
	"fmt"
	"log"

	"github.com/invertedv/study"
	"github.com/invertedv/study/census"
	"github.com/invertedv/study/claims"
	"github.com/invertedv/study/climate"
	"github.com/invertedv/study/exposure"
	"github.com/invertedv/study/geo"
	"github.com/invertedv/study/survey"
)

// universe2010 is the contiguous-US county count after the 7 excluded
// jurisdictions.
const universe2010 = 3109

// Build runs every loader (through the disk cache) and compiles the final
// table.
func Build(cfg *study.Config) (*study.Table, error) {
	counties, e := geo.Load(cfg)
	if e != nil {
		return nil, fmt.Errorf("geography: %w", e)
	}

	if cfg.Year == 2010 && len(counties) != universe2010 {
		log.Printf("geography: expected %d counties for 2010, got %d", universe2010, len(counties))
	}

	geoTable, e := geo.Table(counties)
	if e != nil {
		return nil, fmt.Errorf("geography: %w", e)
	}

	universe := geo.Universe(counties)

	expT, e := study.Cached(cfg, "exposure", func() (*study.Table, error) {
		return exposure.Load(cfg, counties)
	})
	if e != nil {
		return nil, fmt.Errorf("exposure: %w", e)
	}

	cenT, e := study.Cached(cfg, "census", func() (*study.Table, error) {
		return census.Load(cfg, geoTable)
	})
	if e != nil {
		return nil, fmt.Errorf("census: %w", e)
	}

	svyT, e := study.Cached(cfg, "survey", func() (*study.Table, error) {
		return survey.Load(cfg, universe)
	})
	if e != nil {
		return nil, fmt.Errorf("survey: %w", e)
	}

	climT, e := study.Cached(cfg, "climate", func() (*study.Table, error) {
		return climate.Load(cfg, counties)
	})
	if e != nil {
		return nil, fmt.Errorf("climate: %w", e)
	}

	clmT, e := study.Cached(cfg, "claims", func() (*study.Table, error) {
		return claims.Load(cfg, universe)
	})
	if e != nil {
		return nil, fmt.Errorf("claims: %w", e)
	}

	return Compile(geoTable, expT, cenT, svyT, climT, clmT)
}

// Compile left-joins the source tables onto the geography universe and adds
// the state/region lookup.
func Compile(geoTable *study.Table, sources ...*study.Table) (*study.Table, error) {
	out, e := study.Reduce(geoTable, study.KeyFIPS, sources...)
	if e != nil {
		return nil, fmt.Errorf("compile: %w", e)
	}

	universe, e := out.Key()
	if e != nil {
		return nil, e
	}

	regions, e := study.RegionTable(universe)
	if e != nil {
		return nil, fmt.Errorf("region lookup: %w", e)
	}

	if out, e = study.LeftJoin(out, regions, study.KeyFIPS); e != nil {
		return nil, fmt.Errorf("region join: %w", e)
	}

	if e := out.Sort(study.KeyFIPS); e != nil {
		return nil, e
	}

	log.Printf("compiled study table: %d rows, %d columns", out.RowCount(), out.ColumnCount())

	return out, nil
}

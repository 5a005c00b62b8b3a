package study

import (
	"fmt"
	"log"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Each source patches its missing counties with its own statistical rule.
// The rules are deliberately not unified: a Filler names one rule and applies
// it to one loader's table. Counties already present are never touched.

// Filler fills values for counties a source is missing.
type Filler interface {
	// Name identifies the strategy in logs.
	Name() string

	// Fill adds or patches rows of t so every county in universe it is
	// responsible for is covered. t is keyed by fips.
	Fill(t *Table, universe []string) error
}

// StateOf returns the 2-character state prefix of a FIPS code.
func StateOf(fips string) string {
	if len(fips) < 2 {
		return ""
	}

	return fips[:2]
}

// appendMissingRow adds a row with the given fips and missing values
// everywhere else, returning its index.
func appendMissingRow(t *Table, fips string) (int, error) {
	for _, cName := range t.ColumnNames() {
		c, _ := t.Column(cName)

		add := MakeVector(c.DataType(), 1)
		if cName == KeyFIPS {
			add.SetElement(fips, 0)
		} else {
			add.SetElement(missingElement(c.DataType()), 0)
		}

		if e := c.Data().Append(add); e != nil {
			return 0, e
		}
	}

	return t.RowCount() - 1, nil
}

// missingCounties lists the universe members absent from t's key.
func missingCounties(t *Table, universe []string) ([]string, error) {
	indx, e := t.RowIndex(KeyFIPS)
	if e != nil {
		return nil, e
	}

	var gaps []string
	for _, f := range universe {
		if _, ok := indx[f]; !ok {
			gaps = append(gaps, f)
		}
	}

	return gaps, nil
}

// *********** StateMedian ***********

// StateMedian fills each field of a missing county with the median of that
// field over the other counties in the same state.
type StateMedian struct {
	Fields []string
}

func (sm *StateMedian) Name() string { return "state median" }

func (sm *StateMedian) Fill(t *Table, universe []string) error {
	gaps, e := missingCounties(t, universe)
	if e != nil {
		return e
	}

	key, e := t.Key()
	if e != nil {
		return e
	}

	// state -> field -> median, computed over the pre-fill rows
	medians := make(map[string]map[string]float64)
	for _, fld := range sm.Fields {
		x, ex := t.Floats(fld)
		if ex != nil {
			return ex
		}

		byState := make(map[string][]float64)
		for ind, f := range key {
			byState[StateOf(f)] = append(byState[StateOf(f)], x[ind])
		}

		for st, vals := range byState {
			if medians[st] == nil {
				medians[st] = make(map[string]float64)
			}

			medians[st][fld] = Median(vals)
		}
	}

	for _, f := range gaps {
		row, ea := appendMissingRow(t, f)
		if ea != nil {
			return ea
		}

		st := StateOf(f)
		for _, fld := range sm.Fields {
			c, _ := t.Column(fld)
			if m, ok := medians[st]; ok {
				c.Data().SetElement(m[fld], row)
			}
		}

		log.Printf("%s: filled %s by %s", f, sm.Fields, sm.Name())
	}

	return nil
}

// *********** StateNormal ***********

// StateNormal fills each field of a missing county with one draw from a
// normal distribution fit to the other counties in the same state. With a
// single observed county the draw collapses to that county's value; with
// none, the fit falls back to all observed counties nationally.
type StateNormal struct {
	Fields []string

	// Src drives the draws. Nil means an unseeded (non-reproducible) source.
	Src rand.Source
}

func (sn *StateNormal) Name() string { return "state normal draw" }

func (sn *StateNormal) Fill(t *Table, universe []string) error {
	gaps, e := missingCounties(t, universe)
	if e != nil {
		return e
	}

	key, e := t.Key()
	if e != nil {
		return e
	}

	type fit struct{ mu, sigma float64 }

	fits := make(map[string]map[string]fit)
	national := make(map[string]fit)

	for _, fld := range sn.Fields {
		x, ex := t.Floats(fld)
		if ex != nil {
			return ex
		}

		byState := make(map[string][]float64)
		for ind, f := range key {
			byState[StateOf(f)] = append(byState[StateOf(f)], x[ind])
		}

		for st, vals := range byState {
			if fits[st] == nil {
				fits[st] = make(map[string]fit)
			}

			mu, sigma, n := MeanStd(vals)
			if n < 2 {
				log.Printf("state %s has %d observed counties for %s, degenerate fit", st, n, fld)
			}

			fits[st][fld] = fit{mu: mu, sigma: sigma}
		}

		mu, sigma, _ := MeanStd(x)
		national[fld] = fit{mu: mu, sigma: sigma}
	}

	for _, f := range gaps {
		row, ea := appendMissingRow(t, f)
		if ea != nil {
			return ea
		}

		for _, fld := range sn.Fields {
			fi, ok := fits[StateOf(f)][fld]
			if !ok || IsMissing(fi.mu) {
				fi = national[fld]
			}

			c, _ := t.Column(fld)
			c.Data().SetElement(sn.draw(fi.mu, fi.sigma), row)
		}

		log.Printf("%s: filled %s by %s", f, sn.Fields, sn.Name())
	}

	return nil
}

func (sn *StateNormal) draw(mu, sigma float64) float64 {
	if IsMissing(mu) {
		return Missing
	}

	if sigma == 0 {
		return mu
	}

	return distuv.Normal{Mu: mu, Sigma: sigma, Src: sn.Src}.Rand()
}

// *********** ContainmentCopy ***********

// ContainmentCopy duplicates a named source county's row under a target
// county's FIPS. The pairs are a curated correction list for counties too
// small to contain any raster cell centroid; they are never inferred
// geometrically.
type ContainmentCopy struct {
	// Pairs maps target FIPS -> source FIPS.
	Pairs map[string]string
}

func (cc *ContainmentCopy) Name() string { return "containment copy" }

func (cc *ContainmentCopy) Fill(t *Table, universe []string) error {
	indx, e := t.RowIndex(KeyFIPS)
	if e != nil {
		return e
	}

	for tgt, src := range cc.Pairs {
		if _, ok := indx[tgt]; ok {
			continue
		}

		srcRow, ok := indx[src]
		if !ok {
			return fmt.Errorf("containment source %s for %s not in table", src, tgt)
		}

		row, ea := appendMissingRow(t, tgt)
		if ea != nil {
			return ea
		}

		for _, cName := range t.ColumnNames() {
			if cName == KeyFIPS {
				continue
			}

			c, _ := t.Column(cName)
			c.Data().SetElement(c.Data().Element(srcRow), row)
		}

		log.Printf("%s: copied from containing county %s", tgt, src)
	}

	return nil
}

// *********** NeighborMean ***********

// NeighborMean patches one county's fields with the arithmetic mean of the
// already-derived values of named neighboring counties. Fields listed in
// FloorFields are floored to an integer after averaging.
type NeighborMean struct {
	Target      string
	Neighbors   []string
	Fields      []string
	FloorFields []string
}

func (nm *NeighborMean) Name() string { return "neighbor mean" }

func (nm *NeighborMean) Fill(t *Table, _ []string) error {
	indx, e := t.RowIndex(KeyFIPS)
	if e != nil {
		return e
	}

	row, ok := indx[nm.Target]
	if !ok {
		var ea error
		if row, ea = appendMissingRow(t, nm.Target); ea != nil {
			return ea
		}
	}

	for _, fld := range nm.Fields {
		x, ex := t.Floats(fld)
		if ex != nil {
			return ex
		}

		var vals []float64
		for _, nb := range nm.Neighbors {
			nbRow, okn := indx[nb]
			if !okn {
				return fmt.Errorf("neighbor %s of %s not in table", nb, nm.Target)
			}

			vals = append(vals, x[nbRow])
		}

		v := Mean(vals)
		if hasString(nm.FloorFields, fld) && !IsMissing(v) {
			v = math.Floor(v)
		}

		x[row] = v
	}

	log.Printf("%s: filled %s by %s of %s", nm.Target, nm.Fields, nm.Name(), nm.Neighbors)

	return nil
}

func hasString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}

	return false
}

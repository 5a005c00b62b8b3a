// Package study builds a county-level analysis table for the contiguous
// United States. The root package holds the column-oriented Table the
// loaders produce, the join and group-by operations that combine them, the
// missing-county imputation strategies, and the CSV/database savers.
package study

import (
	"fmt"
	"sort"
)

// KeyFIPS is the name of the join key column present in every loader output:
// the 5-character FIPS county code (2-character state + 3-character county).
const KeyFIPS = "fips"

// Column is one named column of a Table.
type Column struct {
	name string
	vec  *Vector
}

func NewColumn(name string, data any) (*Column, error) {
	vec, e := NewVector(data)
	if e != nil {
		return nil, fmt.Errorf("column %s: %w", name, e)
	}

	return &Column{name: name, vec: vec}, nil
}

// Name returns the column name, renaming first if reNameTo is non-empty.
func (c *Column) Name(reNameTo string) string {
	if reNameTo != "" {
		c.name = reNameTo
	}

	return c.name
}

func (c *Column) DataType() DataTypes {
	return c.vec.VectorType()
}

func (c *Column) Len() int {
	return c.vec.Len()
}

func (c *Column) Data() *Vector {
	return c.vec
}

func (c *Column) Copy() *Column {
	return &Column{name: c.name, vec: c.vec.Copy()}
}

// Table is an ordered set of equal-length columns.
type Table struct {
	cols []*Column
}

func NewTable(cols ...*Column) (*Table, error) {
	if cols == nil {
		return nil, fmt.Errorf("no columns in NewTable")
	}

	t := &Table{}
	for ind := 0; ind < len(cols); ind++ {
		if e := t.AppendColumn(cols[ind]); e != nil {
			return nil, e
		}
	}

	return t, nil
}

func (t *Table) RowCount() int {
	if len(t.cols) == 0 {
		return 0
	}

	return t.cols[0].Len()
}

func (t *Table) ColumnCount() int {
	return len(t.cols)
}

func (t *Table) ColumnNames() []string {
	var names []string
	for _, c := range t.cols {
		names = append(names, c.Name(""))
	}

	return names
}

func (t *Table) Column(colName string) (*Column, error) {
	for _, c := range t.cols {
		if c.Name("") == colName {
			return c, nil
		}
	}

	return nil, fmt.Errorf("column %s not found", colName)
}

func (t *Table) HasColumn(colName string) bool {
	_, e := t.Column(colName)
	return e == nil
}

// Floats returns the data of a float column.
func (t *Table) Floats(colName string) ([]float64, error) {
	c, e := t.Column(colName)
	if e != nil {
		return nil, e
	}

	if c.DataType() != DTfloat {
		return nil, fmt.Errorf("column %s is %s, not %s", colName, c.DataType(), DTfloat)
	}

	return c.Data().AsFloat(), nil
}

// Strings returns the data of a string column.
func (t *Table) Strings(colName string) ([]string, error) {
	c, e := t.Column(colName)
	if e != nil {
		return nil, e
	}

	if c.DataType() != DTstring {
		return nil, fmt.Errorf("column %s is %s, not %s", colName, c.DataType(), DTstring)
	}

	return c.Data().AsString(), nil
}

// Key returns the fips column.
func (t *Table) Key() ([]string, error) {
	return t.Strings(KeyFIPS)
}

func (t *Table) AppendColumn(col *Column) error {
	if t.HasColumn(col.Name("")) {
		return fmt.Errorf("duplicate column name: %s", col.Name(""))
	}

	if len(t.cols) > 0 && col.Len() != t.RowCount() {
		return fmt.Errorf("length mismatch: table - %d, append col %s - %d", t.RowCount(), col.Name(""), col.Len())
	}

	t.cols = append(t.cols, col)

	return nil
}

func (t *Table) DropColumns(colNames ...string) error {
	for _, cName := range colNames {
		at := -1
		for ind, c := range t.cols {
			if c.Name("") == cName {
				at = ind
				break
			}
		}

		if at < 0 {
			return fmt.Errorf("column %s not found", cName)
		}

		if len(t.cols) == 1 {
			t.cols = nil
			return fmt.Errorf("no columns left")
		}

		t.cols = append(t.cols[:at], t.cols[at+1:]...)
	}

	return nil
}

// KeepColumns returns a new table with just colNames, in that order. Columns
// are shared, not copied.
func (t *Table) KeepColumns(colNames ...string) (*Table, error) {
	var keep []*Column
	for ind := 0; ind < len(colNames); ind++ {
		c, e := t.Column(colNames[ind])
		if e != nil {
			return nil, e
		}

		keep = append(keep, c)
	}

	return NewTable(keep...)
}

func (t *Table) Copy() *Table {
	out := &Table{}
	for _, c := range t.cols {
		out.cols = append(out.cols, c.Copy())
	}

	return out
}

// AppendRows appends the rows of add to t. The tables must have identical
// column names and types, in the same order.
func (t *Table) AppendRows(add *Table) error {
	if add.ColumnCount() != t.ColumnCount() {
		return fmt.Errorf("column count mismatch: %d vs %d", t.ColumnCount(), add.ColumnCount())
	}

	for ind, c := range t.cols {
		ca := add.cols[ind]
		if ca.Name("") != c.Name("") {
			return fmt.Errorf("column mismatch: %s vs %s", c.Name(""), ca.Name(""))
		}

		if e := c.Data().Append(ca.Data()); e != nil {
			return fmt.Errorf("column %s: %w", c.Name(""), e)
		}
	}

	return nil
}

// Subset returns a new table holding rows, in order.
func (t *Table) Subset(rows []int) (*Table, error) {
	out := &Table{}
	for _, c := range t.cols {
		nc := &Column{name: c.Name(""), vec: c.Data().Subset(rows)}
		if e := out.AppendColumn(nc); e != nil {
			return nil, e
		}
	}

	return out, nil
}

// Sort sorts the table rows in place by a string key column, ascending.
func (t *Table) Sort(keyCol string) error {
	key, e := t.Strings(keyCol)
	if e != nil {
		return e
	}

	order := make([]int, len(key))
	for ind := range order {
		order[ind] = ind
	}

	sort.SliceStable(order, func(i, j int) bool { return key[order[i]] < key[order[j]] })

	for _, c := range t.cols {
		c.vec = c.vec.Subset(order)
	}

	return nil
}

// RowIndex maps key values to row numbers. It fails if the key column has
// duplicates: a table with duplicate keys would silently fan out joins.
func (t *Table) RowIndex(keyCol string) (map[string]int, error) {
	key, e := t.Strings(keyCol)
	if e != nil {
		return nil, e
	}

	indx := make(map[string]int, len(key))
	for ind, k := range key {
		if _, dup := indx[k]; dup {
			return nil, fmt.Errorf("duplicate key %s in column %s", k, keyCol)
		}

		indx[k] = ind
	}

	return indx, nil
}

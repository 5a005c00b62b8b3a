package study

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// All code moving tables to and from delimited files is here.

const (
	// FloatFormat renders float columns on save.
	FloatFormat = "%.6g"

	// MissingText is written for missing values and read back as Missing.
	MissingText = "NA"
)

// SaveCSV writes the table with a header row. Missing floats become
// MissingText.
func SaveCSV(t *Table, fileName string) error {
	f, e := os.Create(fileName)
	if e != nil {
		return e
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)

	if e := w.Write(t.ColumnNames()); e != nil {
		return e
	}

	rec := make([]string, t.ColumnCount())
	for row := 0; row < t.RowCount(); row++ {
		for ind, cName := range t.ColumnNames() {
			c, _ := t.Column(cName)

			switch c.DataType() {
			case DTfloat:
				v := c.Data().AsFloat()[row]
				if IsMissing(v) {
					rec[ind] = MissingText
					continue
				}

				rec[ind] = fmt.Sprintf(FloatFormat, v)
			case DTint:
				rec[ind] = strconv.Itoa(c.Data().AsInt()[row])
			case DTstring:
				rec[ind] = c.Data().AsString()[row]
			}
		}

		if e := w.Write(rec); e != nil {
			return e
		}
	}

	w.Flush()

	return w.Error()
}

// ReadCSV reads a headered delimited file into string columns. Callers that
// need numerics convert with FloatColumn.
func ReadCSV(fileName string, sep rune) (*Table, error) {
	f, e := os.Open(fileName)
	if e != nil {
		return nil, e
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	if sep != 0 {
		r.Comma = sep
	}

	recs, e := r.ReadAll()
	if e != nil {
		return nil, e
	}

	if len(recs) < 2 {
		return nil, fmt.Errorf("%s: no data rows", fileName)
	}

	header := recs[0]
	var cols []*Column
	for ind := 0; ind < len(header); ind++ {
		data := make([]string, len(recs)-1)
		for row := 1; row < len(recs); row++ {
			data[row-1] = recs[row][ind]
		}

		c, ec := NewColumn(header[ind], data)
		if ec != nil {
			return nil, ec
		}

		cols = append(cols, c)
	}

	return NewTable(cols...)
}

// FloatColumn converts a string column in place to float. MissingText and
// empty cells become Missing.
func FloatColumn(t *Table, colName string) error {
	s, e := t.Strings(colName)
	if e != nil {
		return e
	}

	x := make([]float64, len(s))
	for ind, v := range s {
		if v == "" || v == MissingText {
			x[ind] = Missing
			continue
		}

		f, ef := strconv.ParseFloat(v, 64)
		if ef != nil {
			return fmt.Errorf("column %s row %d: %w", colName, ind, ef)
		}

		x[ind] = f
	}

	c, _ := t.Column(colName)
	vec, _ := NewVector(x)
	c.vec = vec

	return nil
}

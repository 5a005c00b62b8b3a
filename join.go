package study

import "fmt"

// LeftJoin joins right onto left by the string column keyCol. Every left row
// survives; unmatched rows get missing values in the right-hand columns.
// Duplicate keys on the right are an error, not a fan-out.
func LeftJoin(left, right *Table, keyCol string) (*Table, error) {
	leftKey, e := left.Strings(keyCol)
	if e != nil {
		return nil, fmt.Errorf("left table: %w", e)
	}

	rIndx, e := right.RowIndex(keyCol)
	if e != nil {
		return nil, fmt.Errorf("right table: %w", e)
	}

	out := left.Copy()

	for _, rName := range right.ColumnNames() {
		if rName == keyCol {
			continue
		}

		if out.HasColumn(rName) {
			return nil, fmt.Errorf("column %s present in both tables", rName)
		}

		rCol, _ := right.Column(rName)
		vec := MakeVector(rCol.DataType(), len(leftKey))

		for ind, k := range leftKey {
			if rRow, ok := rIndx[k]; ok {
				vec.SetElement(rCol.Data().Element(rRow), ind)
				continue
			}

			vec.SetElement(missingElement(rCol.DataType()), ind)
		}

		if e := out.AppendColumn(&Column{name: rName, vec: vec}); e != nil {
			return nil, e
		}
	}

	return out, nil
}

// Reduce folds tables onto base with successive left joins on keyCol.
func Reduce(base *Table, keyCol string, tables ...*Table) (*Table, error) {
	out := base
	for ind := 0; ind < len(tables); ind++ {
		var e error
		if out, e = LeftJoin(out, tables[ind], keyCol); e != nil {
			return nil, fmt.Errorf("join %d of %d: %w", ind+1, len(tables), e)
		}
	}

	return out, nil
}

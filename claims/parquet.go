package claims

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/file"
)

// The extract is a columnar on-disk store partitioned by year: one directory
// of parquet files per year.

// Extract columns.
const (
	colState  = "SP_STATE_CODE"
	colCounty = "BENE_COUNTY_CD"
	colBirth  = "BENE_BIRTH_DT"
	colDeath  = "BENE_DEATH_DT"
	colSex    = "BENE_SEX_IDENT_CD"
	colRace   = "BENE_RACE_CD"
)

// readPartition reads every parquet file in one year directory.
func readPartition(dir string) ([]Beneficiary, error) {
	names, e := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if e != nil {
		return nil, e
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("no parquet files in %s", dir)
	}

	var bens []Beneficiary
	for _, fileName := range names {
		add, ea := readFile(fileName)
		if ea != nil {
			return nil, ea
		}

		bens = append(bens, add...)
	}

	log.Printf("claims: %d beneficiaries from %d files", len(bens), len(names))

	return bens, nil
}

func readFile(fileName string) ([]Beneficiary, error) {
	pf, e := file.OpenParquetFile(fileName, false)
	if e != nil {
		return nil, fmt.Errorf("claims %s: %w", fileName, e)
	}
	defer func() { _ = pf.Close() }()

	var bens []Beneficiary
	for rgIdx := 0; rgIdx < pf.NumRowGroups(); rgIdx++ {
		add, ea := readRowGroup(pf, rgIdx)
		if ea != nil {
			return nil, fmt.Errorf("claims %s row group %d: %w", fileName, rgIdx, ea)
		}

		bens = append(bens, add...)
	}

	return bens, nil
}

func readRowGroup(pf *file.Reader, rgIdx int) ([]Beneficiary, error) {
	rg := pf.RowGroup(rgIdx)
	numRows := int(rg.NumRows())
	if numRows == 0 {
		return nil, nil
	}

	schema := pf.MetaData().Schema
	at := make(map[string]int)
	for ind := 0; ind < schema.NumColumns(); ind++ {
		at[schema.Column(ind).Name()] = ind
	}

	for _, cName := range []string{colState, colCounty, colBirth, colDeath, colSex, colRace} {
		if _, ok := at[cName]; !ok {
			return nil, fmt.Errorf("no column %s", cName)
		}
	}

	state, e := readStringColumn(rg, at[colState], numRows)
	if e != nil {
		return nil, e
	}

	county, e := readStringColumn(rg, at[colCounty], numRows)
	if e != nil {
		return nil, e
	}

	birth, e := readIntColumn(rg, at[colBirth], numRows)
	if e != nil {
		return nil, e
	}

	death, e := readIntColumn(rg, at[colDeath], numRows)
	if e != nil {
		return nil, e
	}

	sex, e := readIntColumn(rg, at[colSex], numRows)
	if e != nil {
		return nil, e
	}

	race, e := readIntColumn(rg, at[colRace], numRows)
	if e != nil {
		return nil, e
	}

	bens := make([]Beneficiary, numRows)
	for ind := 0; ind < numRows; ind++ {
		bens[ind] = Beneficiary{
			SSACode:   padCode(state[ind], 2) + padCode(county[ind], 3),
			BirthYear: yearOf(birth[ind]),
			Died:      death[ind] > 0,
			Sex:       int(sex[ind]),
			Race:      int(race[ind]),
		}
	}

	return bens, nil
}

// yearOf extracts the year of a YYYYMMDD integer date, 0 when absent.
func yearOf(dt int64) int {
	if dt <= 0 {
		return 0
	}

	y := int(dt / 10000)
	if y < 1800 || y > time.Now().Year() {
		return 0
	}

	return y
}

func padCode(code string, width int) string {
	for len(code) < width {
		code = "0" + code
	}

	return code
}

func readStringColumn(rg *file.RowGroupReader, colIdx, numRows int) ([]string, error) {
	col, e := rg.Column(colIdx)
	if e != nil {
		return nil, e
	}

	rdr, ok := col.(*file.ByteArrayColumnChunkReader)
	if !ok {
		return nil, fmt.Errorf("column %d is %T, want byte array", colIdx, col)
	}

	out := make([]string, 0, numRows)
	values := make([]parquet.ByteArray, 8192)
	defLevels := make([]int16, 8192)

	for {
		n, _, e := rdr.ReadBatch(int64(len(values)), values, defLevels, nil)
		if e != nil {
			return nil, e
		}

		if n == 0 {
			break
		}

		// values holds only the non-null entries
		vIdx := 0
		for ind := 0; ind < int(n); ind++ {
			if defLevels[ind] > 0 {
				out = append(out, string(values[vIdx]))
				vIdx++
				continue
			}

			out = append(out, "")
		}
	}

	return out, nil
}

func readIntColumn(rg *file.RowGroupReader, colIdx, numRows int) ([]int64, error) {
	col, e := rg.Column(colIdx)
	if e != nil {
		return nil, e
	}

	rdr, ok := col.(*file.Int64ColumnChunkReader)
	if !ok {
		return nil, fmt.Errorf("column %d is %T, want int64", colIdx, col)
	}

	out := make([]int64, 0, numRows)
	values := make([]int64, 8192)
	defLevels := make([]int16, 8192)

	for {
		n, _, e := rdr.ReadBatch(int64(len(values)), values, defLevels, nil)
		if e != nil {
			return nil, e
		}

		if n == 0 {
			break
		}

		vIdx := 0
		for ind := 0; ind < int(n); ind++ {
			if defLevels[ind] > 0 {
				out = append(out, values[vIdx])
				vIdx++
				continue
			}

			out = append(out, 0)
		}
	}

	return out, nil
}

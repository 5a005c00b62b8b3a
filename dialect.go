package study

import (
	"database/sql"
	"fmt"
	"strings"
)

// All code interacting with a database is here. The final table can land in
// ClickHouse or Postgres; a Dialect renders the DDL and placeholder styles
// each backend wants.

type Dialect struct {
	name string

	dropIf       string
	createSuffix string

	typeFor     func(dt DataTypes) string
	placeholder func(pos int) string
}

func (dlct *Dialect) Name() string { return dlct.name }

func DialectClickHouse() *Dialect {
	return &Dialect{
		name:         "clickhouse",
		dropIf:       "DROP TABLE IF EXISTS %s",
		createSuffix: "ENGINE = MergeTree ORDER BY (fips)",
		typeFor: func(dt DataTypes) string {
			switch dt {
			case DTfloat:
				return "Nullable(Float64)"
			case DTint:
				return "Int64"
			default:
				return "String"
			}
		},
		placeholder: func(int) string { return "?" },
	}
}

func DialectPostgres() *Dialect {
	return &Dialect{
		name:   "postgres",
		dropIf: "DROP TABLE IF EXISTS %s",
		typeFor: func(dt DataTypes) string {
			switch dt {
			case DTfloat:
				return "DOUBLE PRECISION"
			case DTint:
				return "BIGINT"
			default:
				return "TEXT"
			}
		},
		placeholder: func(pos int) string { return fmt.Sprintf("$%d", pos) },
	}
}

// CreateSQL renders the CREATE TABLE statement for t.
func (dlct *Dialect) CreateSQL(tableName string, t *Table) string {
	var fields []string
	for _, cName := range t.ColumnNames() {
		c, _ := t.Column(cName)
		fields = append(fields, fmt.Sprintf("%s %s", cName, dlct.typeFor(c.DataType())))
	}

	create := fmt.Sprintf("CREATE TABLE %s (%s)", tableName, strings.Join(fields, ", "))
	if dlct.createSuffix != "" {
		create += " " + dlct.createSuffix
	}

	return create
}

// InsertSQL renders the row-insert statement for t.
func (dlct *Dialect) InsertSQL(tableName string, t *Table) string {
	var phs []string
	for ind := range t.ColumnNames() {
		phs = append(phs, dlct.placeholder(ind+1))
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableName, strings.Join(t.ColumnNames(), ", "), strings.Join(phs, ", "))
}

// SaveSQL drops, creates, and fills tableName from t in one transaction.
// Missing floats are stored as NULL.
func SaveSQL(db *sql.DB, dlct *Dialect, tableName string, t *Table) error {
	if _, e := db.Exec(fmt.Sprintf(dlct.dropIf, tableName)); e != nil {
		return fmt.Errorf("drop %s: %w", tableName, e)
	}

	if _, e := db.Exec(dlct.CreateSQL(tableName, t)); e != nil {
		return fmt.Errorf("create %s: %w", tableName, e)
	}

	tx, e := db.Begin()
	if e != nil {
		return e
	}

	stmt, e := tx.Prepare(dlct.InsertSQL(tableName, t))
	if e != nil {
		_ = tx.Rollback()
		return e
	}

	for row := 0; row < t.RowCount(); row++ {
		args := make([]any, t.ColumnCount())
		for ind, cName := range t.ColumnNames() {
			c, _ := t.Column(cName)

			if c.DataType() == DTfloat {
				v := c.Data().AsFloat()[row]
				if IsMissing(v) {
					args[ind] = nil
					continue
				}

				args[ind] = v
				continue
			}

			args[ind] = c.Data().Element(row)
		}

		if _, e := stmt.Exec(args...); e != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert row %d: %w", row, e)
		}
	}

	return tx.Commit()
}

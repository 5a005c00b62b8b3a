// Command countystudy builds the county-level study table and writes it to
// a CSV file, a database table, or both.
//
// Usage:
//
//	countystudy -data /path/to/data -out study.csv
//	countystudy -data /path/to/data -db clickhouse://localhost:9000/econ -table study2010
//
// The census API credential comes from the CENSUS_API_KEY environment
// variable.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"strings"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/jackc/pgx/stdlib"

	"github.com/invertedv/study"
	"github.com/invertedv/study/pipeline"
)

func main() {
	var (
		dataDir   = flag.String("data", "", "root directory of the source data")
		cacheDir  = flag.String("cache", "", "loader cache directory (default <data>/cache, \"off\" disables)")
		outFile   = flag.String("out", "", "CSV output path")
		dbDSN     = flag.String("db", "", "database DSN (clickhouse:// or postgres://)")
		tableName = flag.String("table", "study", "database table name")
		year      = flag.Int("year", 2010, "study year")
		seed      = flag.Uint64("seed", 0, "seed for random imputation draws (0 = unseeded)")
		refresh   = flag.Bool("refresh", false, "ignore cached loader outputs")
	)
	flag.Parse()

	if *outFile == "" && *dbDSN == "" {
		log.Fatalln("nothing to do: give -out and/or -db")
	}

	cfg, e := study.NewConfig(*dataDir, *year)
	if e != nil {
		log.Fatalln(e)
	}

	cfg.Seed = *seed
	cfg.Refresh = *refresh

	switch *cacheDir {
	case "":
	case "off":
		cfg.CacheDir = ""
	default:
		cfg.CacheDir = *cacheDir
	}

	t, e := pipeline.Build(cfg)
	if e != nil {
		log.Fatalln(e)
	}

	if *outFile != "" {
		if e := study.SaveCSV(t, *outFile); e != nil {
			log.Fatalln(e)
		}

		log.Printf("wrote %s", *outFile)
	}

	if *dbDSN != "" {
		if e := saveDB(t, *dbDSN, *tableName); e != nil {
			log.Fatalln(e)
		}

		log.Printf("wrote table %s", *tableName)
	}
}

func saveDB(t *study.Table, dsn, tableName string) error {
	var (
		driver string
		dlct   *study.Dialect
	)

	switch {
	case strings.HasPrefix(dsn, "clickhouse://"):
		driver, dlct = "clickhouse", study.DialectClickHouse()
	case strings.HasPrefix(dsn, "postgres://"):
		driver, dlct = "pgx", study.DialectPostgres()
	default:
		return fmt.Errorf("unrecognized DSN %q", dsn)
	}

	db, e := sql.Open(driver, dsn)
	if e != nil {
		return e
	}
	defer func() { _ = db.Close() }()

	return study.SaveSQL(db, dlct, tableName, t)
}

package study

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/exp/rand"
)

// CensusKeyEnv is the environment variable consulted when Config.CensusKey
// is empty.
const CensusKeyEnv = "CENSUS_API_KEY"

// Config carries the run-wide settings. It is built once and passed
// explicitly to every loader; nothing reads the environment after NewConfig.
type Config struct {
	// DataDir is the root under which all source files live.
	DataDir string

	// CacheDir holds memoized loader outputs. Empty disables caching.
	CacheDir string

	// Year is the study year.
	Year int

	// CensusKey authenticates against the census API.
	CensusKey string

	// Seed drives the random imputation draws. Zero leaves the draws
	// unseeded and non-reproducible.
	Seed uint64

	// Refresh forces loaders to ignore cached outputs.
	Refresh bool
}

func NewConfig(dataDir string, year int) (*Config, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("no data directory")
	}

	if _, e := os.Stat(dataDir); e != nil {
		return nil, fmt.Errorf("data directory: %w", e)
	}

	return &Config{
		DataDir:   dataDir,
		CacheDir:  filepath.Join(dataDir, "cache"),
		Year:      year,
		CensusKey: os.Getenv(CensusKeyEnv),
	}, nil
}

// Path joins elem onto the data root.
func (cfg *Config) Path(elem ...string) string {
	return filepath.Join(append([]string{cfg.DataDir}, elem...)...)
}

// Src returns the random source for imputation draws, nil when unseeded.
func (cfg *Config) Src() rand.Source {
	if cfg.Seed == 0 {
		return nil
	}

	return rand.NewSource(cfg.Seed)
}

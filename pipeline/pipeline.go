// Package pipeline runs the full congestion pricing audit: resolve a year of
// TLC trip files, scan them once through the shared plan, join daily counts
// with precipitation, and write the five audit tables as CSV.
package pipeline

import (
	"log"

	"github.com/pkg/errors"

	"github.com/nycaudit/caudit"
	"github.com/nycaudit/caudit/aggregate"
	"github.com/nycaudit/caudit/fetch"
	"github.com/nycaudit/caudit/parquet"
	"github.com/nycaudit/caudit/sink"
	"github.com/nycaudit/caudit/tlc"
	"github.com/nycaudit/caudit/weather"
)

// Main holds the options for one audit run.
type Main struct {
	Year       int    `help:"Calendar year to audit."`
	BaseURL    string `help:"Base URL of the TLC trip record files."`
	WeatherURL string `help:"Base URL of the weather archive API."`
	CacheDir   string `help:"Directory for mirrored source files."`
	OutputDir  string `help:"Directory the audit tables are written to."`
}

// NewMain returns a Main with default options.
func NewMain() *Main {
	return &Main{
		Year:       2025,
		BaseURL:    tlc.DefaultBaseURL,
		WeatherURL: weather.DefaultBaseURL,
		CacheDir:   ".caudit",
		OutputDir:  "audit",
	}
}

// Run executes the audit end to end. The four trip tables are written even
// when the weather fetch fails; the elasticity table needs both sides, so a
// weather failure surfaces after the trip tables are safely on disk.
func (m *Main) Run() error {
	fetcher, err := fetch.NewFetcher(m.CacheDir, fetch.DefaultPolicy())
	if err != nil {
		return errors.Wrap(err, "opening fetcher")
	}
	defer fetcher.Close()

	resolver := &tlc.Resolver{BaseURL: m.BaseURL, Year: m.Year, Fetcher: fetcher}
	fs := resolver.Resolve()
	if fs.Empty() {
		return errors.Errorf("no trip files available for %d, nothing to audit", m.Year)
	}

	client := weather.NewClient(fetcher)
	client.BaseURL = m.WeatherURL
	days, werr := client.Daily(m.Year)
	if werr != nil {
		log.Printf("fetching weather for %d: %v - continuing without the elasticity table", m.Year, werr)
	}

	if err := m.process(fs, days); err != nil {
		return err
	}
	return errors.Wrap(werr, "fetching weather")
}

// process scans the resolved files once and writes every table it can build.
func (m *Main) process(fs tlc.FileSet, days []weather.Day) error {
	zones := caudit.CongestionZones()
	ghosts := aggregate.NewGhostCounter()
	leakage := aggregate.NewLeakage(zones)
	velocity := aggregate.NewVelocity(zones)
	economics := aggregate.NewEconomics()
	daily := aggregate.NewDailyCounts()

	plan := caudit.NewPlan().
		Derive(caudit.Derive).
		Classify(caudit.Ghost).
		ToGhost(ghosts).
		ToClean(leakage, velocity, economics, daily)

	total := 0
	for _, f := range []struct {
		paths []string
		class parquet.ClassSchema
	}{
		{fs.Yellow, parquet.Yellow},
		{fs.Green, parquet.Green},
	} {
		for _, path := range f.paths {
			n, err := scanFile(plan, path, f.class)
			if err != nil {
				return err
			}
			total += n
		}
	}
	log.Printf("scanned %d trips", total)

	tables := []caudit.Table{
		ghosts.Table(),
		leakage.Table(),
		velocity.Table(),
		economics.Table(),
	}
	if len(days) > 0 {
		elasticity, err := aggregate.WeatherElasticity(daily, days)
		if err != nil {
			return err
		}
		tables = append(tables, elasticity)
	}
	return sink.Write(m.OutputDir, tables)
}

// scanFile feeds one source file through the plan. A schema mismatch fails
// only that file; the rest of the year still gets audited.
func scanFile(plan *caudit.Plan, path string, class parquet.ClassSchema) (int, error) {
	src, err := parquet.NewSource(path, class)
	if err != nil {
		if serr, ok := errors.Cause(err).(*parquet.SchemaError); ok {
			log.Printf("skipping %s: %v", path, serr)
			return 0, nil
		}
		return 0, errors.Wrapf(err, "opening %s", path)
	}
	defer src.Close()

	n, err := plan.Run(src)
	if err != nil {
		return n, errors.Wrapf(err, "scanning %s", path)
	}
	return n, nil
}

// Package tlc resolves the monthly TLC trip record files for a calendar
// year. Remote files are mirrored locally through a fetch.Fetcher; months
// that are not published (December often lags) or fail to download are
// omitted from the resolved set rather than failing the run.
package tlc

import (
	"fmt"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/nycaudit/caudit/fetch"
)

// DefaultBaseURL is the TLC trip record CDN.
const DefaultBaseURL = "https://d37ci6vzurychx.cloudfront.net/trip-data"

// Class is a TLC vehicle class.
type Class string

// The two vehicle classes with known layouts.
const (
	Yellow Class = "yellow"
	Green  Class = "green"
)

// Fetcher mirrors a remote source locally. Satisfied by *fetch.Fetcher.
type Fetcher interface {
	FetchAs(rawurl, name string, ttl time.Duration) (string, error)
}

// FileSet is the resolved local paths per vehicle class. Either slice may be
// empty; the unifier copes.
type FileSet struct {
	Yellow []string
	Green  []string
}

// Empty reports whether no source file resolved at all.
func (fs FileSet) Empty() bool {
	return len(fs.Yellow) == 0 && len(fs.Green) == 0
}

// Resolver locates the per-month, per-class source files for one year.
type Resolver struct {
	BaseURL string
	Year    int
	Fetcher Fetcher
}

// Resolve mirrors every available month for both classes and returns the
// local paths. Trip files are immutable so they are fetched with no cache
// expiry. Absent months are logged and skipped.
func (r *Resolver) Resolve() FileSet {
	base := r.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	var fs FileSet
	for month := 1; month <= 12; month++ {
		for _, class := range []Class{Yellow, Green} {
			name := fmt.Sprintf("%s_tripdata_%d-%02d.parquet", class, r.Year, month)
			path, err := r.Fetcher.FetchAs(base+"/"+name, name, 0)
			if errors.Cause(err) == fetch.ErrNotFound {
				log.Printf("%s not published, skipping month", name)
				continue
			}
			if err != nil {
				log.Printf("fetching %s: %v - continuing without it", name, err)
				continue
			}
			switch class {
			case Yellow:
				fs.Yellow = append(fs.Yellow, path)
			case Green:
				fs.Green = append(fs.Green, path)
			}
		}
	}
	return fs
}

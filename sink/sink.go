// Package sink writes audit tables out as CSV files, one file per table.
package sink

import (
	"encoding/csv"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/nycaudit/caudit"
)

// Write writes each table to <dir>/<name>.csv, creating dir if needed and
// overwriting any previous run's files. Tables are written independently: a
// failure on one is logged and does not stop the others, but Write still
// returns an error naming the first table that failed.
func Write(dir string, tables []caudit.Table) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	var firstErr error
	for _, tbl := range tables {
		path := filepath.Join(dir, tbl.Name+".csv")
		if err := writeTable(path, tbl); err != nil {
			log.Printf("writing %s: %v", path, err)
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "writing table %s", tbl.Name)
			}
		}
	}
	return firstErr
}

func writeTable(path string, tbl caudit.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(tbl.Columns); err != nil {
		return errors.Wrap(err, "writing header")
	}
	if err := w.WriteAll(tbl.Rows); err != nil {
		return errors.Wrap(err, "writing rows")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "flushing")
	}
	return errors.Wrap(f.Close(), "closing file")
}

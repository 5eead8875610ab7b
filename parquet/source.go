// Package parquet reads TLC monthly trip files and projects them onto the
// unified trip schema. The two vehicle classes differ only in their timestamp
// column names; each class's projection is validated against the file's
// parquet schema up front, so a layout mismatch is a SchemaError at open time
// rather than a silent coercion somewhere in the scan.
package parquet

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/pkg/errors"

	"github.com/nycaudit/caudit"
)

// ClassSchema names the class-specific timestamp columns. Everything else on
// the unified schema shares its name across both classes.
type ClassSchema struct {
	Pickup  string
	Dropoff string
}

// The two known vehicle class layouts.
var (
	Yellow = ClassSchema{Pickup: "tpep_pickup_datetime", Dropoff: "tpep_dropoff_datetime"}
	Green  = ClassSchema{Pickup: "lpep_pickup_datetime", Dropoff: "lpep_dropoff_datetime"}
)

// columns is the projection in unified-schema order.
func (cs ClassSchema) columns() []string {
	return []string{
		cs.Pickup,
		cs.Dropoff,
		"PULocationID",
		"DOLocationID",
		"trip_distance",
		"fare_amount",
		"total_amount",
		"congestion_surcharge",
		"VendorID",
	}
}

// SchemaError means a source file's columns do not match the expected class
// layout. It is fatal for that file and distinct from transient fetch
// failures.
type SchemaError struct {
	File    string
	Problem string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema mismatch in %s: %s", e.File, e.Problem)
}

// Source reads one parquet file as unified trips. Not safe for concurrent
// use; the pipeline scans files one at a time.
type Source struct {
	path  string
	class ClassSchema
	pf    *file.Reader
	rr    pqarrow.RecordReader

	buf []caudit.Trip
	i   int
}

// BatchSize is the arrow record batch size for parquet reads.
const BatchSize = 64 * 1024

// NewSource opens path and validates that every projected column exists with
// a usable type. The returned source yields rows in file order.
func NewSource(path string, class ClassSchema) (*Source, error) {
	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{BatchSize: BatchSize}, memory.DefaultAllocator)
	if err != nil {
		pf.Close()
		return nil, errors.Wrapf(err, "reading %s as arrow", path)
	}
	sc, err := fr.Schema()
	if err != nil {
		pf.Close()
		return nil, errors.Wrapf(err, "getting schema of %s", path)
	}

	indices, serr := projectionIndices(sc, class, path)
	if serr != nil {
		pf.Close()
		return nil, serr
	}

	rr, err := fr.GetRecordReader(context.Background(), indices, nil)
	if err != nil {
		pf.Close()
		return nil, errors.Wrapf(err, "getting record reader for %s", path)
	}
	return &Source{path: path, class: class, pf: pf, rr: rr}, nil
}

// projectionIndices resolves and type-checks the projected columns, returning
// their field indices in the file schema.
func projectionIndices(sc *arrow.Schema, class ClassSchema, path string) ([]int, *SchemaError) {
	var missing, badType []string
	indices := make([]int, 0, len(class.columns()))
	for _, name := range class.columns() {
		idxs := sc.FieldIndices(name)
		if len(idxs) == 0 {
			missing = append(missing, name)
			continue
		}
		f := sc.Field(idxs[0])
		switch name {
		case class.Pickup, class.Dropoff:
			if f.Type.ID() != arrow.TIMESTAMP {
				badType = append(badType, fmt.Sprintf("%s is %s, want timestamp", name, f.Type))
			}
		default:
			if !numericType(f.Type.ID()) {
				badType = append(badType, fmt.Sprintf("%s is %s, want numeric", name, f.Type))
			}
		}
		indices = append(indices, idxs[0])
	}
	if len(missing) > 0 {
		return nil, &SchemaError{File: path, Problem: "missing columns " + strings.Join(missing, ", ")}
	}
	if len(badType) > 0 {
		return nil, &SchemaError{File: path, Problem: strings.Join(badType, "; ")}
	}
	return indices, nil
}

func numericType(id arrow.Type) bool {
	switch id {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64,
		arrow.FLOAT32, arrow.FLOAT64:
		return true
	}
	return false
}

// Record returns the next unified trip, or io.EOF when the file is
// exhausted.
func (s *Source) Record() (caudit.Trip, error) {
	for s.i >= len(s.buf) {
		if !s.rr.Next() {
			if err := s.rr.Err(); err != nil && err != io.EOF {
				return caudit.Trip{}, errors.Wrapf(err, "reading %s", s.path)
			}
			return caudit.Trip{}, io.EOF
		}
		trips, err := recordTrips(s.rr.Record(), s.class)
		if err != nil {
			return caudit.Trip{}, errors.Wrapf(err, "decoding %s", s.path)
		}
		s.buf, s.i = trips, 0
	}
	t := s.buf[s.i]
	s.i++
	return t, nil
}

// Close releases the underlying readers.
func (s *Source) Close() error {
	if s.rr != nil {
		s.rr.Release()
	}
	return s.pf.Close()
}

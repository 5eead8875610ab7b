package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	pq "github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/nycaudit/caudit/parquet"
	"github.com/nycaudit/caudit/tlc"
	"github.com/nycaudit/caudit/weather"
)

type tripRow struct {
	pu, do            time.Time
	puLoc, doLoc      int32
	dist, fare, total float64
	surcharge         float64
	vendor            int64
}

func mustWriteTripFile(t *testing.T, dir, name string, class parquet.ClassSchema, rows []tripRow) string {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: class.Pickup, Type: &arrow.TimestampType{Unit: arrow.Microsecond}},
		{Name: class.Dropoff, Type: &arrow.TimestampType{Unit: arrow.Microsecond}},
		{Name: "PULocationID", Type: arrow.PrimitiveTypes.Int32},
		{Name: "DOLocationID", Type: arrow.PrimitiveTypes.Int32},
		{Name: "trip_distance", Type: arrow.PrimitiveTypes.Float64},
		{Name: "fare_amount", Type: arrow.PrimitiveTypes.Float64},
		{Name: "total_amount", Type: arrow.PrimitiveTypes.Float64},
		{Name: "congestion_surcharge", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "VendorID", Type: arrow.PrimitiveTypes.Int64},
	}, nil)

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	for _, r := range rows {
		b.Field(0).(*array.TimestampBuilder).Append(arrow.Timestamp(r.pu.UnixMicro()))
		b.Field(1).(*array.TimestampBuilder).Append(arrow.Timestamp(r.do.UnixMicro()))
		b.Field(2).(*array.Int32Builder).Append(r.puLoc)
		b.Field(3).(*array.Int32Builder).Append(r.doLoc)
		b.Field(4).(*array.Float64Builder).Append(r.dist)
		b.Field(5).(*array.Float64Builder).Append(r.fare)
		b.Field(6).(*array.Float64Builder).Append(r.total)
		b.Field(7).(*array.Float64Builder).Append(r.surcharge)
		b.Field(8).(*array.Int64Builder).Append(r.vendor)
	}
	rec := b.NewRecord()
	defer rec.Release()
	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	path := filepath.Join(dir, name)
	w, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer w.Close()
	if err := pqarrow.WriteTable(tbl, w, 1024, pq.NewWriterProperties(), pqarrow.DefaultWriterProps()); err != nil {
		t.Fatalf("writing parquet: %v", err)
	}
	return path
}

func mustReadCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return rows
}

func TestProcessEndToEnd(t *testing.T) {
	dir := t.TempDir()
	// 2025-01-15 is a Wednesday.
	pu := time.Date(2025, 1, 15, 8, 4, 0, 0, time.UTC)

	ypath := mustWriteTripFile(t, dir, "yellow_tripdata_2025-01.parquet", parquet.Yellow, []tripRow{
		// Clean, starts in the priced district: feeds velocity and economics.
		{pu: pu, do: pu.Add(9 * time.Minute), puLoc: 161, doLoc: 162, dist: 2.1, fare: 12, total: 17.4, surcharge: 2.5, vendor: 2},
		// Ghost: 30 miles in 9 minutes.
		{pu: pu, do: pu.Add(9 * time.Minute), puLoc: 161, doLoc: 162, dist: 30, fare: 80, total: 95, surcharge: 2.5, vendor: 2},
	})
	gpath := mustWriteTripFile(t, dir, "green_tripdata_2025-01.parquet", parquet.Green, []tripRow{
		// Clean inbound crossing with no surcharge: leakage.
		{pu: pu.Add(24 * time.Hour), do: pu.Add(24*time.Hour + 15*time.Minute), puLoc: 7, doLoc: 161, dist: 3.0, fare: 14, total: 16, surcharge: 0, vendor: 1},
	})

	m := NewMain()
	m.OutputDir = filepath.Join(dir, "out")
	fs := tlc.FileSet{Yellow: []string{ypath}, Green: []string{gpath}}
	days := []weather.Day{
		{Date: "2025-01-15", PrecipitationMM: 0},
		{Date: "2025-01-16", PrecipitationMM: 8.2},
	}

	if err := m.process(fs, days); err != nil {
		t.Fatalf("processing: %v", err)
	}

	ghost := mustReadCSV(t, filepath.Join(m.OutputDir, "ghost_audit.csv"))
	if len(ghost) != 2 || ghost[1][0] != "2" || ghost[1][1] != "1" {
		t.Errorf("ghost_audit: %v", ghost)
	}

	leakage := mustReadCSV(t, filepath.Join(m.OutputDir, "leakage_audit.csv"))
	if len(leakage) != 2 || leakage[1][0] != "7" || leakage[1][2] != "1" {
		t.Errorf("leakage_audit: %v", leakage)
	}

	velocity := mustReadCSV(t, filepath.Join(m.OutputDir, "velocity_heatmap.csv"))
	// Only the clean in-district trip counts: 2.1 miles over 9 minutes is
	// 14 mph, on Wednesday (weekday 3) hour 8.
	if len(velocity) != 2 || velocity[1][0] != "3" || velocity[1][1] != "8" || velocity[1][2] != "14" {
		t.Errorf("velocity_heatmap: %v", velocity)
	}

	economics := mustReadCSV(t, filepath.Join(m.OutputDir, "economics.csv"))
	if len(economics) != 2 || economics[1][0] != "2025-01-01" {
		t.Errorf("economics: %v", economics)
	}

	elasticity := mustReadCSV(t, filepath.Join(m.OutputDir, "weather_elasticity.csv"))
	want := [][]string{
		{"date", "precipitation_mm", "trip_count"},
		{"2025-01-15", "0", "1"},
		{"2025-01-16", "8.2", "1"},
	}
	if len(elasticity) != 3 {
		t.Fatalf("weather_elasticity: %v", elasticity)
	}
	for i := range want {
		for j := range want[i] {
			if elasticity[i][j] != want[i][j] {
				t.Errorf("weather_elasticity[%d][%d]: got %q, want %q", i, j, elasticity[i][j], want[i][j])
			}
		}
	}
}

func TestProcessSkipsSchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	pu := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)

	// A green-layout file misfiled as yellow is skipped; the good file still
	// gets audited.
	bad := mustWriteTripFile(t, dir, "bad.parquet", parquet.Green, []tripRow{
		{pu: pu, do: pu.Add(time.Minute), puLoc: 1, doLoc: 2, dist: 0.5, fare: 5, total: 6, vendor: 1},
	})
	good := mustWriteTripFile(t, dir, "good.parquet", parquet.Yellow, []tripRow{
		{pu: pu, do: pu.Add(9 * time.Minute), puLoc: 161, doLoc: 162, dist: 2.1, fare: 12, total: 17, surcharge: 2.5, vendor: 2},
	})

	m := NewMain()
	m.OutputDir = filepath.Join(dir, "out")
	fs := tlc.FileSet{Yellow: []string{bad, good}}

	if err := m.process(fs, nil); err != nil {
		t.Fatalf("processing: %v", err)
	}
	velocity := mustReadCSV(t, filepath.Join(m.OutputDir, "velocity_heatmap.csv"))
	if len(velocity) != 2 {
		t.Errorf("velocity_heatmap: %v", velocity)
	}
	// No weather, no elasticity table.
	if _, err := os.Stat(filepath.Join(m.OutputDir, "weather_elasticity.csv")); !os.IsNotExist(err) {
		t.Errorf("weather_elasticity.csv should not exist without weather data")
	}
}

func TestRunNoSources(t *testing.T) {
	dir := t.TempDir()
	m := NewMain()
	m.BaseURL = filepath.Join(dir, "empty")
	m.WeatherURL = filepath.Join(dir, "empty")
	m.CacheDir = filepath.Join(dir, "cache")
	m.OutputDir = filepath.Join(dir, "out")

	err := m.Run()
	if err == nil {
		t.Fatal("expected an error with no resolvable trip files")
	}
	if _, serr := os.Stat(m.OutputDir); !os.IsNotExist(serr) {
		t.Errorf("nothing should have been written, but output dir exists")
	}
}

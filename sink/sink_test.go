package sink_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nycaudit/caudit"
	"github.com/nycaudit/caudit/sink"
)

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	tables := []caudit.Table{
		{
			Name:    "ghost_audit",
			Columns: []string{"vendor_id", "count"},
			Rows:    [][]string{{"1", "12"}, {"2", "7"}},
		},
		{
			Name:    "economics",
			Columns: []string{"month", "avg_surcharge", "avg_tip_amt"},
		},
	}

	if err := sink.Write(dir, tables); err != nil {
		t.Fatalf("writing tables: %v", err)
	}

	got := mustRead(t, filepath.Join(dir, "ghost_audit.csv"))
	want := "vendor_id,count\n1,12\n2,7\n"
	if got != want {
		t.Fatalf("ghost_audit.csv: got %q, want %q", got, want)
	}

	// A zero-row table still gets a file with its header.
	got = mustRead(t, filepath.Join(dir, "economics.csv"))
	want = "month,avg_surcharge,avg_tip_amt\n"
	if got != want {
		t.Fatalf("economics.csv: got %q, want %q", got, want)
	}
}

func TestWriteOverwrites(t *testing.T) {
	dir := t.TempDir()
	tbl := caudit.Table{Name: "ghost_audit", Columns: []string{"vendor_id", "count"}}

	stale := filepath.Join(dir, "ghost_audit.csv")
	if err := os.WriteFile(stale, []byte("old,contents\n9,9\n"), 0644); err != nil {
		t.Fatalf("seeding stale file: %v", err)
	}

	if err := sink.Write(dir, []caudit.Table{tbl}); err != nil {
		t.Fatalf("writing tables: %v", err)
	}
	if got := mustRead(t, stale); got != "vendor_id,count\n" {
		t.Fatalf("stale file not overwritten: %q", got)
	}
}

func TestWriteIndependentFailures(t *testing.T) {
	dir := t.TempDir()
	// A directory squatting on the first table's path makes os.Create fail
	// for that table only.
	if err := os.Mkdir(filepath.Join(dir, "ghost_audit.csv"), 0755); err != nil {
		t.Fatalf("seeding blocker: %v", err)
	}

	tables := []caudit.Table{
		{Name: "ghost_audit", Columns: []string{"vendor_id", "count"}},
		{Name: "leakage_audit", Columns: []string{"pickup_loc", "total_trips", "missing_surcharge_count"}},
	}

	err := sink.Write(dir, tables)
	if err == nil {
		t.Fatal("expected an error for the blocked table")
	}
	// The healthy table must have been written anyway.
	if got := mustRead(t, filepath.Join(dir, "leakage_audit.csv")); got == "" {
		t.Fatal("leakage_audit.csv missing after sibling failure")
	}
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(b)
}

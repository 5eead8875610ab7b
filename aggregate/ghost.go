// Package aggregate holds the reducers the scan fans out to. Each reducer is
// independent, order-insensitive, and carries its own filter; none reads
// another's output. Tables come out with deterministic row order so reruns
// over the same input diff clean.
package aggregate

import (
	"sort"

	"github.com/nycaudit/caudit"
)

// GhostCounter tallies ghost trips per vendor. Nothing but the vendor id is
// retained from a ghost row.
type GhostCounter struct {
	counts map[int]int
}

// NewGhostCounter returns an empty counter.
func NewGhostCounter() *GhostCounter {
	return &GhostCounter{counts: map[int]int{}}
}

// Add implements caudit.Reducer.
func (g *GhostCounter) Add(t caudit.Trip) {
	g.counts[t.VendorID]++
}

// Table materializes the ghost_audit table, vendors ascending.
func (g *GhostCounter) Table() caudit.Table {
	vendors := make([]int, 0, len(g.counts))
	for v := range g.counts {
		vendors = append(vendors, v)
	}
	sort.Ints(vendors)

	tbl := caudit.Table{Name: "ghost_audit", Columns: []string{"vendor_id", "count"}}
	for _, v := range vendors {
		tbl.Rows = append(tbl.Rows, []string{caudit.FormatInt(v), caudit.FormatInt(g.counts[v])})
	}
	return tbl
}

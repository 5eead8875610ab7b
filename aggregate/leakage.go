package aggregate

import (
	"sort"

	"github.com/nycaudit/caudit"
)

// LeakageTopN is how many origin zones the leakage table keeps.
const LeakageTopN = 10

// Leakage finds surcharge leakage: trips that start outside the priced
// district, end inside it, and record a $0 congestion surcharge. The zero
// comparison is exact - surcharge was null-coalesced to 0.0 at ingestion, so
// unpaid means exactly zero.
type Leakage struct {
	zones    caudit.ZoneSet
	byPickup map[int]*leakCount
}

type leakCount struct {
	total   int
	missing int
}

// NewLeakage returns a leakage reducer over the given priced-district zones.
func NewLeakage(zones caudit.ZoneSet) *Leakage {
	return &Leakage{zones: zones, byPickup: map[int]*leakCount{}}
}

// Add implements caudit.Reducer, counting only inbound crossings.
func (l *Leakage) Add(t caudit.Trip) {
	if l.zones.Contains(t.PickupLoc) || !l.zones.Contains(t.DropoffLoc) {
		return
	}
	c := l.byPickup[t.PickupLoc]
	if c == nil {
		c = &leakCount{}
		l.byPickup[t.PickupLoc] = c
	}
	c.total++
	if t.Surcharge == 0.0 {
		c.missing++
	}
}

// Table materializes leakage_audit: missing-surcharge count descending, ties
// broken by pickup zone ascending (a stated policy - the ranking is stable
// across runs), truncated to the top 10.
func (l *Leakage) Table() caudit.Table {
	zones := make([]int, 0, len(l.byPickup))
	for z := range l.byPickup {
		zones = append(zones, z)
	}
	sort.Slice(zones, func(i, j int) bool {
		mi, mj := l.byPickup[zones[i]].missing, l.byPickup[zones[j]].missing
		if mi != mj {
			return mi > mj
		}
		return zones[i] < zones[j]
	})
	if len(zones) > LeakageTopN {
		zones = zones[:LeakageTopN]
	}

	tbl := caudit.Table{Name: "leakage_audit", Columns: []string{"pickup_loc", "total_trips", "missing_surcharge_count"}}
	for _, z := range zones {
		c := l.byPickup[z]
		tbl.Rows = append(tbl.Rows, []string{
			caudit.FormatInt(z), caudit.FormatInt(c.total), caudit.FormatInt(c.missing),
		})
	}
	return tbl
}

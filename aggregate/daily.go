package aggregate

import (
	"sort"

	"github.com/nycaudit/caudit"
)

// DailyCounts counts clean trips per pickup date. It exists to feed the
// weather join and is not written out on its own.
type DailyCounts struct {
	counts map[string]int
}

// NewDailyCounts returns an empty daily counter.
func NewDailyCounts() *DailyCounts {
	return &DailyCounts{counts: map[string]int{}}
}

// Add implements caudit.Reducer.
func (d *DailyCounts) Add(t caudit.Trip) {
	d.counts[t.Date]++
}

// Days returns the (date, count) pairs in date order. Dates are already in
// the normalized yyyy-mm-dd layout, so lexical order is chronological.
func (d *DailyCounts) Days() (dates []string, counts []int) {
	dates = make([]string, 0, len(d.counts))
	for day := range d.counts {
		dates = append(dates, day)
	}
	sort.Strings(dates)
	counts = make([]int, len(dates))
	for i, day := range dates {
		counts[i] = d.counts[day]
	}
	return dates, counts
}

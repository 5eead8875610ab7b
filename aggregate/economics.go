package aggregate

import (
	"sort"

	"github.com/nycaudit/caudit"
)

// Economics buckets every clean trip to the first day of its month and
// averages the congestion surcharge next to a tip approximation.
//
// The tip figure is total_amount - fare_amount, which also includes tolls and
// taxes; the TLC files have no reliable tip column across both classes, so
// this is an approximation, not a true tip field.
type Economics struct {
	months map[string]*ecoAcc
}

type ecoAcc struct {
	surcharge float64
	tip       float64
	n         int
}

// NewEconomics returns an empty economics reducer.
func NewEconomics() *Economics {
	return &Economics{months: map[string]*ecoAcc{}}
}

// Add implements caudit.Reducer. No filter: every clean trip counts.
func (e *Economics) Add(t caudit.Trip) {
	key := t.MonthKey()
	c := e.months[key]
	if c == nil {
		c = &ecoAcc{}
		e.months[key] = c
	}
	c.surcharge += t.Surcharge
	c.tip += t.TotalAmount - t.Fare
	c.n++
}

// Table materializes economics, months ascending.
func (e *Economics) Table() caudit.Table {
	months := make([]string, 0, len(e.months))
	for m := range e.months {
		months = append(months, m)
	}
	sort.Strings(months)

	tbl := caudit.Table{Name: "economics", Columns: []string{"month", "avg_surcharge", "avg_tip_amt"}}
	for _, m := range months {
		c := e.months[m]
		n := float64(c.n)
		tbl.Rows = append(tbl.Rows, []string{
			m, caudit.FormatFloat(c.surcharge / n), caudit.FormatFloat(c.tip / n),
		})
	}
	return tbl
}

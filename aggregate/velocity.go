package aggregate

import (
	"math"
	"sort"

	"github.com/nycaudit/caudit"
)

// Velocity computes mean speed by (weekday, hour) for trips that start
// inside the priced district.
type Velocity struct {
	zones caudit.ZoneSet
	cells map[[2]int]*meanAcc
}

type meanAcc struct {
	sum float64
	n   int
}

// NewVelocity returns a velocity reducer over the given zones.
func NewVelocity(zones caudit.ZoneSet) *Velocity {
	return &Velocity{zones: zones, cells: map[[2]int]*meanAcc{}}
}

// Add implements caudit.Reducer. The clean stream can't contain non-finite
// speeds (zero durations were classified ghost), but a mean poisoned by one
// Inf is unrecoverable, so it is checked here anyway.
func (v *Velocity) Add(t caudit.Trip) {
	if !v.zones.Contains(t.PickupLoc) {
		return
	}
	if math.IsInf(t.SpeedMPH, 0) || math.IsNaN(t.SpeedMPH) {
		return
	}
	key := [2]int{t.Weekday, t.Hour}
	c := v.cells[key]
	if c == nil {
		c = &meanAcc{}
		v.cells[key] = c
	}
	c.sum += t.SpeedMPH
	c.n++
}

// Table materializes velocity_heatmap, weekday then hour ascending.
func (v *Velocity) Table() caudit.Table {
	keys := make([][2]int, 0, len(v.cells))
	for k := range v.cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	tbl := caudit.Table{Name: "velocity_heatmap", Columns: []string{"weekday", "hour", "avg_speed"}}
	for _, k := range keys {
		c := v.cells[k]
		tbl.Rows = append(tbl.Rows, []string{
			caudit.FormatInt(k[0]), caudit.FormatInt(k[1]), caudit.FormatFloat(c.sum / float64(c.n)),
		})
	}
	return tbl
}

package caudit

import (
	"math"
	"time"
)

// DateLayout is the normalized calendar-date representation used everywhere a
// date acts as a key (daily counts, the weather join). Keeping both join
// sides on this one layout is what prevents the classic date-vs-datetime key
// mismatch.
const DateLayout = "2006-01-02"

// Trip is one trip record on the unified schema. The vehicle class (yellow or
// green) is consumed during projection and not retained. Surcharge has
// already been null-coalesced to 0.0 by the source, so exact comparison with
// zero is well defined downstream.
type Trip struct {
	PickupTime  time.Time
	DropoffTime time.Time
	PickupLoc   int
	DropoffLoc  int
	Distance    float64 // miles
	Fare        float64 // may be negative for corrections
	TotalAmount float64
	Surcharge   float64 // congestion surcharge, null -> 0.0
	VendorID    int

	// Derived fields, filled in by Derive and never overwritten.
	DurationMin float64
	Date        string // DateLayout
	Hour        int    // [0,23]
	Weekday     int    // 1=Monday .. 7=Sunday
	SpeedMPH    float64
}

// Derive fills in the derived columns from the unified ones. It is pure and
// row-wise: nonsensical values (negative duration, absurd speed) pass through
// untouched for the classifier to deal with. A zero duration makes the speed
// undefined; it is pinned to +Inf so that the impossible-speed branch of the
// ghost predicate catches it instead of a NaN slipping past every comparison.
func Derive(t *Trip) {
	t.DurationMin = t.DropoffTime.Sub(t.PickupTime).Minutes()
	t.Date = t.PickupTime.Format(DateLayout)
	t.Hour = t.PickupTime.Hour()
	t.Weekday = isoWeekday(t.PickupTime.Weekday())
	if t.DurationMin == 0 {
		t.SpeedMPH = math.Inf(1)
	} else {
		t.SpeedMPH = t.Distance / (t.DurationMin / 60)
	}
}

// Ghost reports whether a derived trip is physically implausible: faster than
// 65mph, a >$20 fare for under a minute, or a positive fare for zero
// distance. Negative durations are only caught indirectly, via the speed they
// produce, which preserves the original audit's behavior.
func Ghost(t *Trip) bool {
	return t.SpeedMPH > 65 ||
		(t.DurationMin < 1 && t.Fare > 20) ||
		(t.Distance == 0 && t.Fare > 0)
}

// isoWeekday converts Go's Sunday-based weekday to the 1=Monday..7=Sunday
// numbering the velocity table reports.
func isoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

// MonthKey buckets a trip to the first day of its pickup month, formatted
// with DateLayout. Used by the economics reducer.
func (t *Trip) MonthKey() string {
	return time.Date(t.PickupTime.Year(), t.PickupTime.Month(), 1, 0, 0, 0, 0, t.PickupTime.Location()).Format(DateLayout)
}

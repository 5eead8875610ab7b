package parquet

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/pkg/errors"

	"github.com/nycaudit/caudit"
)

// recordTrips decodes one arrow record batch into unified trips. Column
// positions are resolved by name from the batch schema, never by order, and
// the class-specific timestamp names were normalized away when the reader was
// built, so this works identically for both classes. A null
// congestion_surcharge is coalesced to 0.0 here, before anything downstream
// can read it.
func recordTrips(rec arrow.Record, class ClassSchema) ([]caudit.Trip, error) {
	cols := map[string]arrow.Array{}
	for i, f := range rec.Schema().Fields() {
		cols[f.Name] = rec.Column(i)
	}
	col := func(name string) (arrow.Array, error) {
		c, ok := cols[name]
		if !ok {
			return nil, errors.Errorf("column %s vanished from record batch", name)
		}
		return c, nil
	}

	var err error
	get := func(name string) arrow.Array {
		if err != nil {
			return nil
		}
		var c arrow.Array
		c, err = col(name)
		return c
	}
	pickup := get(class.Pickup)
	dropoff := get(class.Dropoff)
	puLoc := get("PULocationID")
	doLoc := get("DOLocationID")
	dist := get("trip_distance")
	fare := get("fare_amount")
	total := get("total_amount")
	surcharge := get("congestion_surcharge")
	vendor := get("VendorID")
	if err != nil {
		return nil, err
	}

	n := int(rec.NumRows())
	trips := make([]caudit.Trip, 0, n)
	for i := 0; i < n; i++ {
		var t caudit.Trip
		if t.PickupTime, err = timeAt(pickup, i); err != nil {
			return nil, errors.Wrap(err, class.Pickup)
		}
		if t.DropoffTime, err = timeAt(dropoff, i); err != nil {
			return nil, errors.Wrap(err, class.Dropoff)
		}
		if t.PickupLoc, err = intAt(puLoc, i); err != nil {
			return nil, errors.Wrap(err, "PULocationID")
		}
		if t.DropoffLoc, err = intAt(doLoc, i); err != nil {
			return nil, errors.Wrap(err, "DOLocationID")
		}
		if t.Distance, err = floatAt(dist, i); err != nil {
			return nil, errors.Wrap(err, "trip_distance")
		}
		if t.Fare, err = floatAt(fare, i); err != nil {
			return nil, errors.Wrap(err, "fare_amount")
		}
		if t.TotalAmount, err = floatAt(total, i); err != nil {
			return nil, errors.Wrap(err, "total_amount")
		}
		if t.Surcharge, err = floatAt(surcharge, i); err != nil {
			return nil, errors.Wrap(err, "congestion_surcharge")
		}
		if t.VendorID, err = intAt(vendor, i); err != nil {
			return nil, errors.Wrap(err, "VendorID")
		}
		trips = append(trips, t)
	}
	return trips, nil
}

// timeAt reads a timestamp cell as a time.Time in UTC. TLC files carry naive
// local timestamps; they are treated uniformly, which is all the calendar
// bucketing needs.
func timeAt(col arrow.Array, i int) (time.Time, error) {
	ts, ok := col.(*array.Timestamp)
	if !ok {
		return time.Time{}, errors.Errorf("cell is %T, want timestamp", col)
	}
	if ts.IsNull(i) {
		return time.Time{}, nil
	}
	typ := ts.DataType().(*arrow.TimestampType)
	return ts.Value(i).ToTime(typ.Unit), nil
}

// intAt reads an integer-valued cell, tolerating the width drift across TLC
// vintages (int32 vs int64, occasionally float). Nulls read as 0.
func intAt(col arrow.Array, i int) (int, error) {
	if col.IsNull(i) {
		return 0, nil
	}
	switch c := col.(type) {
	case *array.Int64:
		return int(c.Value(i)), nil
	case *array.Int32:
		return int(c.Value(i)), nil
	case *array.Int16:
		return int(c.Value(i)), nil
	case *array.Int8:
		return int(c.Value(i)), nil
	case *array.Uint64:
		return int(c.Value(i)), nil
	case *array.Uint32:
		return int(c.Value(i)), nil
	case *array.Float64:
		return int(c.Value(i)), nil
	}
	return 0, errors.Errorf("cell is %T, want integer", col)
}

// floatAt reads a float-valued cell. Nulls read as 0.0, which is the
// coalescing the unified schema promises for congestion_surcharge.
func floatAt(col arrow.Array, i int) (float64, error) {
	if col.IsNull(i) {
		return 0, nil
	}
	switch c := col.(type) {
	case *array.Float64:
		return c.Value(i), nil
	case *array.Float32:
		return float64(c.Value(i)), nil
	case *array.Int64:
		return float64(c.Value(i)), nil
	case *array.Int32:
		return float64(c.Value(i)), nil
	}
	return 0, errors.Errorf("cell is %T, want float", col)
}

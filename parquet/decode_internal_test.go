package parquet

import (
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

func TestRecordTrips(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "lpep_pickup_datetime", Type: &arrow.TimestampType{Unit: arrow.Microsecond}},
		{Name: "lpep_dropoff_datetime", Type: &arrow.TimestampType{Unit: arrow.Microsecond}},
		{Name: "PULocationID", Type: arrow.PrimitiveTypes.Int32},
		{Name: "DOLocationID", Type: arrow.PrimitiveTypes.Int64},
		{Name: "trip_distance", Type: arrow.PrimitiveTypes.Float64},
		{Name: "fare_amount", Type: arrow.PrimitiveTypes.Float64},
		{Name: "total_amount", Type: arrow.PrimitiveTypes.Float64},
		{Name: "congestion_surcharge", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "VendorID", Type: arrow.PrimitiveTypes.Int64},
	}, nil)

	pu := time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC)
	do := pu.Add(11 * time.Minute)

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	b.Field(0).(*array.TimestampBuilder).AppendValues([]arrow.Timestamp{
		arrow.Timestamp(pu.UnixMicro()), arrow.Timestamp(pu.UnixMicro()),
	}, nil)
	b.Field(1).(*array.TimestampBuilder).AppendValues([]arrow.Timestamp{
		arrow.Timestamp(do.UnixMicro()), arrow.Timestamp(do.UnixMicro()),
	}, nil)
	b.Field(2).(*array.Int32Builder).AppendValues([]int32{7, 140}, nil)
	b.Field(3).(*array.Int64Builder).AppendValues([]int64{161, 239}, nil)
	b.Field(4).(*array.Float64Builder).AppendValues([]float64{2.4, 1.1}, nil)
	b.Field(5).(*array.Float64Builder).AppendValues([]float64{13.5, 7.2}, nil)
	b.Field(6).(*array.Float64Builder).AppendValues([]float64{19.1, 11.0}, nil)
	sb := b.Field(7).(*array.Float64Builder)
	sb.Append(2.5)
	sb.AppendNull()
	b.Field(8).(*array.Int64Builder).AppendValues([]int64{2, 1}, nil)

	rec := b.NewRecord()
	defer rec.Release()

	trips, err := recordTrips(rec, Green)
	if err != nil {
		t.Fatalf("decoding record: %v", err)
	}
	if len(trips) != 2 {
		t.Fatalf("got %d trips, want 2", len(trips))
	}
	first := trips[0]
	if !first.PickupTime.Equal(pu) || !first.DropoffTime.Equal(do) {
		t.Errorf("timestamps %v/%v, want %v/%v", first.PickupTime, first.DropoffTime, pu, do)
	}
	if first.PickupLoc != 7 || first.DropoffLoc != 161 {
		t.Errorf("locations %d/%d", first.PickupLoc, first.DropoffLoc)
	}
	if first.Surcharge != 2.5 {
		t.Errorf("surcharge %v, want 2.5", first.Surcharge)
	}
	// Null surcharge coalesces to exactly 0.0.
	if trips[1].Surcharge != 0.0 {
		t.Errorf("null surcharge read as %v, want 0", trips[1].Surcharge)
	}
	if trips[1].VendorID != 1 {
		t.Errorf("vendor %d, want 1", trips[1].VendorID)
	}
}

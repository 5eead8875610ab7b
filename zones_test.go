package caudit_test

import (
	"testing"

	"github.com/nycaudit/caudit"
)

func TestCongestionZones(t *testing.T) {
	z := caudit.CongestionZones()
	if z.Len() != 54 {
		t.Fatalf("zone set has %d entries, want 54", z.Len())
	}
	// 161 is Midtown Center, squarely inside the district; 7 is Astoria.
	if !z.Contains(161) {
		t.Error("zone 161 should be in the congestion set")
	}
	if z.Contains(7) {
		t.Error("zone 7 should not be in the congestion set")
	}
}

func TestNewZoneSet(t *testing.T) {
	z := caudit.NewZoneSet(1, 2, 2, 3)
	if z.Len() != 3 {
		t.Fatalf("len %d, want 3", z.Len())
	}
	if !z.Contains(2) || z.Contains(4) {
		t.Error("membership wrong")
	}
}

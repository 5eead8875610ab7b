package caudit

// ZoneSet is an immutable set of TLC zone identifiers. It is built once at
// process start and passed explicitly to everything that filters on it;
// nothing in the pipeline mutates or shadows it.
type ZoneSet map[int]struct{}

// NewZoneSet builds a ZoneSet from zone ids.
func NewZoneSet(ids ...int) ZoneSet {
	z := make(ZoneSet, len(ids))
	for _, id := range ids {
		z[id] = struct{}{}
	}
	return z
}

// Contains reports whether id is in the set.
func (z ZoneSet) Contains(id int) bool {
	_, ok := z[id]
	return ok
}

// Len returns the number of zones in the set.
func (z ZoneSet) Len() int { return len(z) }

// CongestionZones returns the Manhattan zones south of 60th St that make up
// the priced district.
func CongestionZones() ZoneSet {
	return NewZoneSet(
		12, 13, 43, 45, 48, 50, 68, 79, 87, 88, 90, 100, 107, 113, 114, 116, 120,
		125, 137, 140, 141, 142, 143, 144, 148, 151, 158, 161, 162, 163, 164, 166,
		170, 186, 209, 211, 224, 229, 230, 231, 232, 233, 234, 236, 237, 238, 239,
		243, 244, 246, 249, 261, 262, 263,
	)
}

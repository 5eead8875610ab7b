package caudit

import "strconv"

// Table is one materialized output: a name (which becomes the file name), a
// header, and string-rendered rows. Small by construction - every table here
// is an aggregate, not trip-level data.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// FormatInt renders an integer cell.
func FormatInt(v int) string { return strconv.Itoa(v) }

// FormatFloat renders a float cell with the shortest exact representation.
func FormatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

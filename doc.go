// caudit audits a year of NYC congestion pricing against the TLC trip record
// data. It pulls the monthly yellow and green trip files, projects both onto
// one logical schema, derives per-trip physics (duration, speed, calendar
// buckets), splits off physically impossible "ghost" trips, and reduces the
// remainder into five small audit tables:
//
// 1. ghost_audit
//
//	How many impossible records each vendor's meter system produced. A trip
//	is impossible when it moves faster than 65mph, charges more than $20 for
//	under a minute, or charges anything at all for zero distance.
//
// 2. leakage_audit
//
//	Trips that cross into the priced district without originating there and
//	record a $0 congestion surcharge - the toll that should have been
//	collected but wasn't, ranked by origin zone.
//
// 3. velocity_heatmap
//
//	Mean speed inside the priced district by weekday and hour, the basic
//	"did the toll speed up traffic" picture.
//
// 4. economics
//
//	Monthly mean surcharge next to a monthly tip approximation
//	(total_amount - fare), for the driver-income side of the audit.
//
// 5. weather_elasticity
//
//	Daily trip volume joined with daily precipitation, for correlating
//	ridership against rain.
//
// The scan is deferred: a Plan accumulates derive and classify stages and all
// reducers, and each source file is read exactly once no matter how many
// tables are produced. Missing source months reduce the input set rather than
// failing the run.
//
// Sub-packages hold the moving parts: tlc resolves and mirrors the monthly
// source files, fetch is the cached retrying downloader shared with the
// weather client, parquet turns the columnar files into unified trips,
// aggregate holds the reducers and the weather join, sink writes the tables,
// and render is the read-only viewer.
package caudit

package aggregate

import (
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"

	"github.com/nycaudit/caudit"
	"github.com/nycaudit/caudit/weather"
)

// WeatherElasticity inner-joins daily clean-trip counts with daily
// precipitation on the date key. Both sides carry dates in the normalized
// yyyy-mm-dd string layout, so the join key never suffers a type mismatch.
// Days present on only one side drop out, which is what we want: a day with
// trips but no weather observation can't say anything about elasticity.
func WeatherElasticity(daily *DailyCounts, days []weather.Day) (caudit.Table, error) {
	tbl := caudit.Table{Name: "weather_elasticity", Columns: []string{"date", "precipitation_mm", "trip_count"}}

	dates, counts := daily.Days()
	if len(dates) == 0 || len(days) == 0 {
		return tbl, nil
	}

	wDates := make([]string, len(days))
	wPrecip := make([]float64, len(days))
	for i, d := range days {
		wDates[i] = d.Date
		wPrecip[i] = d.PrecipitationMM
	}

	wdf := dataframe.New(
		series.New(wDates, series.String, "date"),
		series.New(wPrecip, series.Float, "precipitation_mm"),
	)
	tdf := dataframe.New(
		series.New(dates, series.String, "date"),
		series.New(counts, series.Int, "trip_count"),
	)

	joined := wdf.InnerJoin(tdf, "date")
	if joined.Err != nil {
		return tbl, errors.Wrap(joined.Err, "joining weather onto daily counts")
	}

	jDates := joined.Col("date").Records()
	jPrecip := joined.Col("precipitation_mm").Float()
	jCounts, err := joined.Col("trip_count").Int()
	if err != nil {
		return tbl, errors.Wrap(err, "reading joined trip counts")
	}

	type row struct {
		date   string
		precip float64
		count  int
	}
	rows := make([]row, len(jDates))
	for i := range jDates {
		rows[i] = row{date: jDates[i], precip: jPrecip[i], count: jCounts[i]}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].date < rows[j].date })

	for _, r := range rows {
		tbl.Rows = append(tbl.Rows, []string{
			r.date, caudit.FormatFloat(r.precip), caudit.FormatInt(r.count),
		})
	}
	return tbl, nil
}

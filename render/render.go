// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package render presents the audit tables from a finished pipeline run. It
// is strictly read-only: it never fetches, scans, or rewrites anything.
package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Tables is the full set of audit tables a pipeline run produces, in display
// order. The elasticity table is optional; runs without weather data omit it.
var Tables = []string{
	"ghost_audit",
	"leakage_audit",
	"velocity_heatmap",
	"economics",
	"weather_elasticity",
}

// Main holds the options for rendering one run's output.
type Main struct {
	Dir string `help:"Directory holding the audit tables."`

	Out io.Writer
}

// NewMain returns a Main reading the default output directory and writing to
// stdout.
func NewMain() *Main {
	return &Main{Dir: "audit", Out: os.Stdout}
}

// Run loads and prints every audit table, then the rain elasticity figure. A
// missing required table means the pipeline has not produced output here, and
// the error says so instead of surfacing a raw file error. An existing table
// with zero rows is a valid result (no ghosts is good news) and renders as a
// bare header.
func (m *Main) Run() error {
	for _, name := range Tables {
		path := filepath.Join(m.Dir, name+".csv")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if name == "weather_elasticity" {
				fmt.Fprintf(m.Out, "== %s ==\n(not produced; the run had no weather data)\n\n", name)
				continue
			}
			return errors.Errorf("%s not found in %s - run the audit pipeline first", name+".csv", m.Dir)
		}
		records, err := readTable(path)
		if err != nil {
			return err
		}
		if len(records) <= 1 {
			// A header with no rows is a real result, but gota refuses to
			// load it, so it is printed directly.
			fmt.Fprintf(m.Out, "== %s ==\n%s\n(no rows)\n\n", name, strings.Join(records[0], ","))
			if name == "weather_elasticity" {
				fmt.Fprintln(m.Out, "rain elasticity: not enough joined days to correlate")
			}
			continue
		}
		df := dataframe.LoadRecords(records)
		if df.Err != nil {
			return errors.Wrapf(df.Err, "loading %s", path)
		}
		fmt.Fprintf(m.Out, "== %s ==\n%v\n", name, df)
		if name == "weather_elasticity" {
			printElasticity(m.Out, df)
		}
	}
	return nil
}

func readTable(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if len(records) == 0 {
		return nil, errors.Errorf("%s has no header row", path)
	}
	return records, nil
}

// printElasticity prints the Pearson correlation between daily precipitation
// and trip volume. Fewer than two joined days leaves the correlation
// undefined, which is reported rather than printed as NaN.
func printElasticity(w io.Writer, df dataframe.DataFrame) {
	if df.Nrow() < 2 {
		fmt.Fprintln(w, "rain elasticity: not enough joined days to correlate")
		return
	}
	precip := df.Col("precipitation_mm").Float()
	counts := df.Col("trip_count").Float()
	r := stat.Correlation(precip, counts, nil)
	fmt.Fprintf(w, "rain elasticity (Pearson r): %.3f\n", r)
}

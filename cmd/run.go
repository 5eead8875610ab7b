package cmd

import (
	"io"
	"log"
	"time"

	"github.com/nycaudit/caudit/pipeline"
	"github.com/nycaudit/caudit/tlc"
	"github.com/nycaudit/caudit/weather"
	"github.com/spf13/cobra"
)

// RunMain is wrapped by NewRunCommand. It is exported for testing purposes.
var RunMain *pipeline.Main

// NewRunCommand wraps pipeline.Main with cobra.Command for use from a CLI.
func NewRunCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	RunMain = pipeline.NewMain()
	runCommand := &cobra.Command{
		Use:   "run",
		Short: "Run the congestion pricing audit for one year.",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			err := RunMain.Run()
			if err != nil {
				return err
			}
			log.Println("Done: ", time.Since(start))
			return nil
		},
	}
	flags := runCommand.Flags()
	flags.IntVarP(&RunMain.Year, "year", "y", RunMain.Year, "Calendar year to audit.")
	flags.StringVar(&RunMain.BaseURL, "base-url", tlc.DefaultBaseURL, "Base URL of the TLC trip record files.")
	flags.StringVar(&RunMain.WeatherURL, "weather-url", weather.DefaultBaseURL, "Base URL of the weather archive API.")
	flags.StringVar(&RunMain.CacheDir, "cache-dir", RunMain.CacheDir, "Directory for mirrored source files.")
	flags.StringVarP(&RunMain.OutputDir, "output-dir", "o", RunMain.OutputDir, "Directory the audit tables are written to.")

	return runCommand
}

func init() {
	subcommandFns["run"] = NewRunCommand
}

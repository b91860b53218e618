package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ngmaloney/swellwatch/internal/app"
)

var (
	tideStation string
	tideAt      string
)

var tideCmd = &cobra.Command{
	Use:   "tide",
	Short: "Show the interpolated tide at a CO-OPS station",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.TideOptions{StationID: tideStation}
		if tideAt != "" {
			at, err := time.Parse(time.RFC3339, tideAt)
			if err != nil {
				return fmt.Errorf("--at must be RFC3339: %w", err)
			}
			opts.At = at
		}
		return getApp().Tide(cmd.Context(), opts)
	},
}

func init() {
	tideCmd.Flags().StringVar(&tideStation, "station", "", "CO-OPS station id (e.g. 8443970)")
	tideCmd.Flags().StringVar(&tideAt, "at", "", "Query time, RFC3339 (default now)")
	_ = tideCmd.MarkFlagRequired("station")
}

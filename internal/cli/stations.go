package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ngmaloney/swellwatch/internal/app"
	"github.com/ngmaloney/swellwatch/internal/circular"
)

var (
	provisionForce     bool
	provisionShapefile string

	nearestOpts app.NearestOptions

	rankLat, rankLon  float64
	rankExposureStart float64
	rankExposureEnd   float64
	rankLimit         int
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Download NOAA station metadata into the local catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Provision(cmd.Context(), app.ProvisionOptions{
			Force:     provisionForce,
			Shapefile: provisionShapefile,
		})
	},
}

var nearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "List the reference stations closest to a point",
	RunE: func(cmd *cobra.Command, args []string) error {
		if nearestOpts.Limit < 0 {
			return fmt.Errorf("--limit must not be negative")
		}
		return getApp().Nearest(cmd.Context(), nearestOpts)
	},
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Recommend stations for a spot, weighing distance and exposure",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.RankOptions{Lat: rankLat, Lon: rankLon, Limit: rankLimit}

		startSet := cmd.Flags().Changed("exposure-start")
		endSet := cmd.Flags().Changed("exposure-end")
		if startSet != endSet {
			return fmt.Errorf("--exposure-start and --exposure-end must be given together")
		}
		if startSet {
			arc, err := circular.New(rankExposureStart, rankExposureEnd)
			if err != nil {
				return err
			}
			opts.Exposure = &arc
		}
		return getApp().Rank(cmd.Context(), opts)
	},
}

func init() {
	provisionCmd.Flags().BoolVar(&provisionForce, "force", false, "Rebuild the catalog even if it exists")
	provisionCmd.Flags().StringVar(&provisionShapefile, "shapefile", "", "Also export the catalog to this .shp file")

	nearestCmd.Flags().Float64Var(&nearestOpts.Lat, "lat", 0, "Latitude in decimal degrees")
	nearestCmd.Flags().Float64Var(&nearestOpts.Lon, "lon", 0, "Longitude in decimal degrees")
	nearestCmd.Flags().StringVar(&nearestOpts.Kind, "kind", "", "Station kind: buoy, tide, or empty for any")
	nearestCmd.Flags().IntVar(&nearestOpts.Limit, "limit", 5, "Maximum stations to list (0 for all)")
	nearestCmd.Flags().Float64Var(&nearestOpts.MaxMiles, "max-miles", 0, "Search radius in miles (default SEARCH_RADIUS_MILES)")
	_ = nearestCmd.MarkFlagRequired("lat")
	_ = nearestCmd.MarkFlagRequired("lon")

	rankCmd.Flags().Float64Var(&rankLat, "lat", 0, "Latitude in decimal degrees")
	rankCmd.Flags().Float64Var(&rankLon, "lon", 0, "Longitude in decimal degrees")
	rankCmd.Flags().Float64Var(&rankExposureStart, "exposure-start", 0, "Start of the arc the spot faces, degrees")
	rankCmd.Flags().Float64Var(&rankExposureEnd, "exposure-end", 0, "End of the arc the spot faces, degrees")
	rankCmd.Flags().IntVar(&rankLimit, "limit", 5, "Maximum stations to list (0 for all)")
	_ = rankCmd.MarkFlagRequired("lat")
	_ = rankCmd.MarkFlagRequired("lon")
}

package cmd

import (
	"fmt"
	"os"

	"github.com/encodeous/quadrant/geo"
	"github.com/spf13/cobra"
)

var quadkeyCmd = &cobra.Command{
	Use:     "quadkey",
	Aliases: []string{"qk"},
	Short:   "Prints the quadkey of a position, and whether a region contains it",
	Run: func(cmd *cobra.Command, args []string) {
		lat, _ := cmd.Flags().GetFloat64("lat")
		lon, _ := cmd.Flags().GetFloat64("lon")
		zoom, _ := cmd.Flags().GetInt("zoom")
		if zoom < 1 || zoom > geo.MaxProjectionZoom {
			fmt.Printf("zoom must be between 1 and %d\n", geo.MaxProjectionZoom)
			os.Exit(-1)
		}
		qk := geo.LatLonToQuadkey(lat, lon, zoom)
		fmt.Println(qk)

		region, _ := cmd.Flags().GetStringSlice("region")
		if len(region) == 0 {
			return
		}
		qt, errs := geo.ParseQuadtree(region)
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "skipping:", err)
		}
		fmt.Printf("in region: %t\n", qt.Contains(qk))
	},
	GroupID: "qd",
}

func init() {
	rootCmd.AddCommand(quadkeyCmd)
	quadkeyCmd.Flags().Float64("lat", 0, "latitude in degrees")
	quadkeyCmd.Flags().Float64("lon", 0, "longitude in degrees")
	quadkeyCmd.Flags().IntP("zoom", "z", 18, "zoom level")
	quadkeyCmd.Flags().StringSliceP("region", "r", nil, "comma separated quadkeys")
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

const DefaultConfigPath = "quadrant.yaml"

var configPath = DefaultConfigPath

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quadrant",
	Short: "Quadrant ITS Gateway Node",
	Long: `Quadrant is a V2X gateway node.
It listens to CAM, DENM, CPM, MAPEM and SPATEM messages on an MQTT broker, keeps track of its region of responsibility and republishes what it analyses under its own identity.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "init",
		Title: "Initialize Quadrant",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "qd",
		Title: "Quadrant Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", configPath, "node config")
}

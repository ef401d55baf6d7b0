package cmd

import (
	"fmt"
	"os"

	"github.com/encodeous/quadrant/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new [source_uuid]",
	Short: "Create a node configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := state.DefaultConfig()
		if len(args) == 1 {
			err := state.NameValidator(args[0])
			if err != nil {
				fmt.Printf("Invalid name: %s\n", args[0])
				os.Exit(-1)
			}
			cfg.Mobility.SourceUUID = args[0]
		}
		if id, _ := cmd.Flags().GetUint32("station"); id != 0 {
			cfg.Mobility.StationId = id
		}
		cfg.Broker.Url = cmd.Flag("broker").Value.String()
		cfg.Geo.Prefix = cmd.Flag("prefix").Value.String()
		if err := state.ConfigValidator(cfg); err != nil {
			panic(err)
		}

		out, err := yaml.Marshal(cfg)
		if err != nil {
			panic(err)
		}

		outPath := cmd.Flag("output").Value.String()
		if _, err := os.Stat(outPath); err == nil {
			if force, _ := cmd.Flags().GetBool("force"); !force {
				fmt.Printf("%s already exists, use --force to overwrite it\n", outPath)
				os.Exit(-1)
			}
		}
		err = os.WriteFile(outPath, out, 0600)
		if err != nil {
			panic(err)
		}
	},
	GroupID: "init",
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringP("output", "o", DefaultConfigPath, "config output file path")
	newCmd.Flags().String("broker", state.DefaultConfig().Broker.Url, "broker url")
	newCmd.Flags().String("prefix", state.DefaultConfig().Geo.Prefix, "route prefix")
	newCmd.Flags().Uint32("station", 0, "station id")
	newCmd.Flags().BoolP("force", "f", false, "overwrite an existing file")
}

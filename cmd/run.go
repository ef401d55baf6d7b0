package cmd

import (
	"log/slog"

	"github.com/encodeous/quadrant/analysis"
	"github.com/encodeous/quadrant/core"
	"github.com/encodeous/quadrant/state"
	"github.com/spf13/cobra"
)

// loadConfig reads and validates the node config, applying command line overrides.
func loadConfig(cmd *cobra.Command) (*state.Cfg, error) {
	cfg, err := state.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("json") {
		cfg.Log.Json, _ = cmd.Flags().GetBool("json")
	}
	if cmd.Flags().Changed("log") {
		cfg.Log.Path, _ = cmd.Flags().GetString("log")
	}
	if cmd.Flags().Changed("debug-addr") {
		cfg.Debug.Addr, _ = cmd.Flags().GetString("debug-addr")
	}
	if err := state.ConfigValidator(cfg); err != nil {
		return nil, err
	}
	if _, err := analysis.Lookup(cfg.Pipeline.Analyzer); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run quadrant",
	Long:  `This will connect to the configured broker and run the node until interrupted. A lost connection is retried after the configured backoff.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			panic(err)
		}

		level := slog.LevelInfo
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			level = slog.LevelDebug
		}

		err = core.Start(cfg, level)
		if err != nil {
			panic(err)
		}
	},
	GroupID: "qd",
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().Bool("json", false, "Log as JSON")
	runCmd.Flags().String("log", "", "Also write logs to this file")
	runCmd.Flags().String("debug-addr", "", "Serve metrics, inspect and traces on this address")
}

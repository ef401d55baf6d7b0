package cmd

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validates the node config and prints it with defaults applied",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			panic(err)
		}

		cfgYaml, err := yaml.Marshal(cfg)
		if err != nil {
			panic(err)
		}

		fmt.Println("Config is valid")
		fmt.Println(string(cfgYaml))
	},
	GroupID: "qd",
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

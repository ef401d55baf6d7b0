package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/encodeous/quadrant/core"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect <debug address>",
	Aliases: []string{"i"},
	Short:   "Inspects the current state of a running node",
	Long: `Prints the identity, region and message counters of a running node.
With --traces it follows the monitor instead, one line per message received or sent, until interrupted.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if follow, _ := cmd.Flags().GetBool("traces"); follow {
			kinds, _ := cmd.Flags().GetStringSlice("kind")
			asJson, _ := cmd.Flags().GetBool("json")
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			enc := json.NewEncoder(os.Stdout)
			err := core.TraceGet(ctx, args[0], kinds, func(t core.Trace) error {
				if asJson {
					return enc.Encode(t)
				}
				_, err := fmt.Println(formatTrace(t))
				return err
			})
			if err != nil {
				fmt.Println("Error:", err.Error())
			}
			return
		}

		result, err := core.InspectGet(args[0])
		if err != nil {
			fmt.Println("Error:", err.Error())
			return
		}
		fmt.Print(result)
	},
	GroupID: "qd",
}

func formatTrace(t core.Trace) string {
	return fmt.Sprintf("%s %-8s %-4s %-24s %s %v",
		t.At.Format("15:04:05.000"), t.Direction, t.Kind, t.Counterpart, t.Topic, t.Fields)
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolP("traces", "t", false, "follow message traces")
	inspectCmd.Flags().StringSliceP("kind", "k", nil, "only follow these kinds (cam,denm,cpm,map,spat,info)")
	inspectCmd.Flags().Bool("json", false, "print traces as JSON lines")
}

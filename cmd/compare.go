package main

import (
	"github.com/spf13/cobra"
)

var (
	comparePeers   []string
	compareMetric  string
	compareDataset string
)

var compareCmd = &cobra.Command{
	Use:   "compare <bank>",
	Short: "Compare a bank against peers on a standard metric",
	Long:  "Pulls call-report history for the bank and each peer and ranks them on the chosen metric. With --dataset, the series comes from an uploaded dataset instead of the FDIC API.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer env.close()

		if compareDataset != "" {
			return printJSON(env.engine.CompareBanksDataset(cmd.Context(), args[0], comparePeers, compareMetric, compareDataset))
		}
		return printJSON(env.engine.CompareBanks(cmd.Context(), args[0], comparePeers, compareMetric))
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringSliceVar(&comparePeers, "peers", nil, "peer banks to compare against")
	compareCmd.Flags().StringVar(&compareMetric, "metric", "ROA", "metric to rank on (ROA, ROE, NIM, Efficiency Ratio, ...)")
	compareCmd.Flags().StringVar(&compareDataset, "dataset", "", "dataset id or name to compare from instead of live data")
}

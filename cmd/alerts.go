package main

import (
	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts <bank>",
	Short: "Check a bank's latest call report against regulatory thresholds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer env.close()

		return printJSON(env.engine.MonitorAlerts(cmd.Context(), args[0]))
	},
}

func init() {
	rootCmd.AddCommand(alertsCmd)
}

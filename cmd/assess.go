package main

import (
	"github.com/spf13/cobra"
)

var assessCmd = &cobra.Command{
	Use:   "assess <bank>",
	Short: "Score a bank's risk profile from its latest call report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer env.close()

		return printJSON(env.engine.AssessRisk(cmd.Context(), args[0]))
	},
}

func init() {
	rootCmd.AddCommand(assessCmd)
}

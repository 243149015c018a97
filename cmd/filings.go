package main

import (
	"github.com/spf13/cobra"
)

var filingsForm string

var filingsCmd = &cobra.Command{
	Use:   "filings <bank>",
	Short: "List recent SEC filings for a bank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer env.close()

		return printJSON(env.engine.SearchFilings(cmd.Context(), args[0], filingsForm))
	},
}

func init() {
	rootCmd.AddCommand(filingsCmd)
	filingsCmd.Flags().StringVar(&filingsForm, "form", "10-K", "form type to list (10-K, 10-Q, 8-K)")
}

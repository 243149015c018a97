package main

import (
	"github.com/spf13/cobra"
)

var (
	topLimit          int
	financialQuarters int
)

var banksCmd = &cobra.Command{
	Use:   "banks",
	Short: "Look up institutions in the FDIC registry",
}

var banksTopCmd = &cobra.Command{
	Use:   "top",
	Short: "List the largest active banks by total assets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer env.close()

		return printJSON(env.engine.TopBanks(cmd.Context(), topLimit))
	},
}

var banksResolveCmd = &cobra.Command{
	Use:   "resolve <name>",
	Short: "Resolve a bank name to its FDIC certificate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer env.close()

		return printJSON(env.engine.ResolveBank(cmd.Context(), args[0]))
	},
}

var banksFinancialsCmd = &cobra.Command{
	Use:   "financials <name>",
	Short: "Fetch a bank's most recent call-report records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer env.close()

		return printJSON(env.engine.BankFinancials(cmd.Context(), args[0], financialQuarters))
	},
}

var banksSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search SEC-registered companies by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer env.close()

		return printJSON(env.engine.SearchBanks(cmd.Context(), args[0]))
	},
}

func init() {
	rootCmd.AddCommand(banksCmd)
	banksCmd.AddCommand(banksTopCmd, banksResolveCmd, banksFinancialsCmd, banksSearchCmd)
	banksTopCmd.Flags().IntVar(&topLimit, "limit", 10, "number of banks to return")
	banksFinancialsCmd.Flags().IntVar(&financialQuarters, "quarters", 8, "number of quarters to fetch")
}

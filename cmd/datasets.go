package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var datasetName string

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Manage uploaded metric datasets",
}

var datasetsImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import a CSV of bank metrics by quarter",
	Long:  "The CSV needs Bank and Metric columns followed by one column per quarter (Q1 2025, 2025-Q1, and similar headers are accepted). Values may carry %, $, and thousands separators.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer env.close()

		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrapf(err, "open %s", args[0])
		}
		defer f.Close()

		name := datasetName
		if name == "" {
			name = args[0]
		}
		return printJSON(env.engine.ImportDataset(cmd.Context(), f, name))
	},
}

var datasetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported datasets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer env.close()

		return printJSON(env.engine.ListDatasets(cmd.Context()))
	},
}

var datasetsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an imported dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer env.close()

		if env.store == nil {
			return eris.New("no dataset store configured")
		}
		return env.store.DeleteDataset(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
	datasetsCmd.AddCommand(datasetsImportCmd, datasetsListCmd, datasetsDeleteCmd)
	datasetsImportCmd.Flags().StringVar(&datasetName, "name", "", "name for the dataset (defaults to the file name)")
}

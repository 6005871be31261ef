package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	importapp "github.com/stockroom/backend/internal/application/import"
)

var importCmd = &cobra.Command{
	Use:       "import products FILE",
	Short:     "Load products from a CSV file",
	Long:      "import reads a CSV file, using either the product export headers or the canonical column names, and creates one product per valid row.",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"products"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] != "products" {
			return fmt.Errorf("invalid argument %q for %q", args[0], cmd.CommandPath())
		}
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()

		var opts importapp.ImportOptions
		opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
		opts.CreateCategories, _ = cmd.Flags().GetBool("create-categories")
		opts.Delimiter, _ = cmd.Flags().GetString("delimiter")

		a, err := bootApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		result, err := a.imports.Import(a.context(cmd), f, opts)
		if err != nil {
			return describeError(err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
		if result.ErrorRows > 0 {
			return fmt.Errorf("%d of %d rows were rejected", result.ErrorRows, result.TotalRows)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().Bool("dry-run", false, "Validate the file without saving anything")
	importCmd.Flags().Bool("create-categories", false, "Create categories that do not exist yet")
	importCmd.Flags().String("delimiter", ",", `Field delimiter: ",", ";" or "tab"`)
}

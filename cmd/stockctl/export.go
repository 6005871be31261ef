package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	reportapp "github.com/stockroom/backend/internal/application/report"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:       "export [products|orders]",
	Short:     "Export the catalog or the order history",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"products", "orders"},
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("format")
		format, ok := reportapp.ParseFormat(raw)
		if !ok {
			return fmt.Errorf("unsupported format %q: use csv or xlsx", raw)
		}

		a, err := bootApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		ctx := a.context(cmd)
		var file *reportapp.File
		switch args[0] {
		case "products":
			file, err = a.exports.ExportProducts(ctx, format)
		case "orders":
			file, err = a.exports.ExportOrders(ctx, format)
		}
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = file.Filename
		}
		if err := os.WriteFile(out, file.Data, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		a.log.Info("Export written", zap.String("path", out), zap.Int("bytes", len(file.Data)))
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "csv", "Output format (csv, xlsx)")
	exportCmd.Flags().StringP("out", "o", "", "Output path; defaults to a timestamped file name")
}

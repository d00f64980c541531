package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/pele/internal/adapters/importer"
	"github.com/okian/pele/pkg/logger"
)

func importCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Convert third-party exports to canonical CSV",
	}
	cmd.AddCommand(importFBrefCmd(a))
	return cmd
}

func importFBrefCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "fbref <export.csv>",
		Short: "Convert an FBref season-aggregate export (two-row header)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer in.Close()

			var n int
			convert := func(w io.Writer) error {
				n, err = importer.ConvertFBref(in, w)
				return err
			}
			if output == "" {
				if err := convert(cmd.OutOrStdout()); err != nil {
					return err
				}
			} else if err := writeOutput(output, convert); err != nil {
				return err
			}
			a.log.Info(cmd.Context(), "converted fbref export",
				logger.String("input", args[0]),
				logger.String("output", output),
				logger.Int("records", n),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "canonical CSV to write (default: stdout)")
	return cmd
}

package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/pele/internal/adapters/importer"
	"github.com/okian/pele/internal/sample"
	"github.com/okian/pele/pkg/logger"
)

func sampleCmd(a *app) *cobra.Command {
	var (
		cfg    sample.Config
		output string
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate deterministic synthetic match records as canonical CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			records, err := sample.Generate(ctx, cfg)
			if err != nil {
				return err
			}
			write := func(w io.Writer) error { return importer.WriteCanonical(w, records) }
			if output == "" {
				return write(cmd.OutOrStdout())
			}
			if err := writeOutput(output, write); err != nil {
				return err
			}
			a.log.Info(ctx, "wrote sample records",
				logger.String("output", output),
				logger.Int("records", len(records)),
			)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&cfg.Players, "players", 40, "number of players")
	fl.IntVar(&cfg.Matches, "matches", 10, "matches per season")
	fl.Int64Var(&cfg.Seed, "seed", 1, "random seed")
	fl.StringSliceVar(&cfg.Seasons, "seasons", nil, "season labels (default 2023-2024,2024-2025)")
	fl.StringSliceVar(&cfg.Teams, "teams", nil, "team ids")
	fl.StringVarP(&output, "output", "o", "", "CSV file to write (default: stdout)")
	return cmd
}

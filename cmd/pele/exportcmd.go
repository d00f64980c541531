package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/pele/internal/adapters/export"
	"github.com/okian/pele/pkg/logger"
)

func exportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export scored output for other consumers",
	}
	cmd.AddCommand(exportWebCmd(a))
	return cmd
}

func exportWebCmd(a *app) *cobra.Command {
	var (
		ef  engineFlags
		dir string
	)
	cmd := &cobra.Command{
		Use:   "web",
		Short: "Write players.json and filters.json for the web app",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ef.apply(cmd, a.cfg); err != nil {
				return err
			}
			res, err := a.run(cmd.Context())
			if err != nil {
				return err
			}
			if err := export.WriteWeb(dir, res.Players, a.cfg.RoundDigits); err != nil {
				return err
			}
			a.log.Info(cmd.Context(), "wrote web data",
				logger.String("dir", dir),
				logger.Int("players", len(res.Players)),
			)
			return nil
		},
	}
	ef.register(cmd)
	cmd.Flags().StringVarP(&dir, "dir", "d", "web/public/data", "output directory")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/pele/internal/adapters/export"
	"github.com/okian/pele/internal/domain/model"
	"github.com/okian/pele/internal/domain/pele"
	"github.com/okian/pele/pkg/logger"
)

func scoreCmd(a *app) *cobra.Command {
	var (
		ef     engineFlags
		output string
		top    int
		digits int
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score match records and write the ranked output",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ef.apply(cmd, a.cfg); err != nil {
				return err
			}
			if cmd.Flags().Changed("digits") {
				a.cfg.RoundDigits = digits
			}
			res, err := a.run(cmd.Context())
			if err != nil {
				return err
			}
			players := res.Players
			if top > 0 && top < len(players) {
				players = players[:top]
			}

			switch strings.ToLower(filepath.Ext(output)) {
			case "":
				return writeTable(cmd.OutOrStdout(), res, players, a.cfg.RoundDigits)
			case ".csv":
				return writeOutput(output, func(w io.Writer) error { return export.WriteCSV(w, players, a.cfg.RoundDigits) })
			case ".json":
				return writeOutput(output, func(w io.Writer) error { return export.WriteJSON(w, players, a.cfg.RoundDigits) })
			default:
				return fmt.Errorf("output %q: want .csv or .json", output)
			}
		},
	}
	ef.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.csv or .json); prints a table when empty")
	cmd.Flags().IntVar(&top, "top", 0, "keep only the best N rows")
	cmd.Flags().IntVar(&digits, "digits", 3, "decimal places in output")
	return cmd
}

// run loads the configured input and scores it.
func (a *app) run(ctx context.Context) (*pele.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	src, err := fileSource(a.cfg)
	if err != nil {
		return nil, err
	}
	records, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	engine, err := pele.New(engineOptions(a.cfg)...)
	if err != nil {
		return nil, err
	}
	res, err := engine.Run(records)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		a.log.Warn(ctx, w.Message, logger.String("kind", string(w.Kind)), logger.String("key", w.Key))
	}
	a.log.Info(ctx, "scored records",
		logger.String("source", src.Name()),
		logger.Int("records", len(records)),
		logger.Int("groups", len(res.Players)),
	)
	return res, nil
}

func writeOutput(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeTable(out io.Writer, res *pele.Result, players []model.ScoredPlayer, digits int) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	head := "#\tplayer\tseason\tteam\tmin\toc\tdc\tmult\tpele_raw"
	if res.Standardized {
		head += "\tpele_100"
	}
	fmt.Fprintln(tw, head+"\t")
	num := func(v float64) string { return strconv.FormatFloat(export.Round(v, digits), 'f', digits, 64) }
	for i := range players {
		p := &players[i]
		name := p.PlayerName
		if name == "" {
			name = p.Key.PlayerID
		}
		line := strings.Join([]string{
			strconv.Itoa(i + 1), name, p.Key.Season, p.Team(),
			num(p.Minutes), num(p.OC), num(p.DC), num(p.MinMult), num(p.PeleRaw),
		}, "\t")
		if p.Pele100 != nil {
			line += "\t" + num(*p.Pele100)
		}
		fmt.Fprintln(tw, line+"\t")
	}
	return tw.Flush()
}

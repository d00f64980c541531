// Package export writes scored players for downstream consumers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/okian/pele/internal/domain/model"
)

// File names written by WriteWeb.
const (
	PlayersFile = "players.json"
	FiltersFile = "filters.json"
)

// Round rounds v to digits decimals. Negative digits leave v unchanged.
func Round(v float64, digits int) float64 {
	if digits < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}

// Rounded returns the ordered output fields with floats rounded.
func Rounded(p *model.ScoredPlayer, digits int) []model.Field {
	fields := p.Fields()
	for i, f := range fields {
		if v, ok := f.Value.(float64); ok {
			fields[i].Value = Round(v, digits)
		}
	}
	return fields
}

type row []model.Field

func (r row) MarshalJSON() ([]byte, error) { return model.MarshalFields(r) }

// Rows converts players to ordered, rounded JSON objects.
func Rows(players []model.ScoredPlayer, digits int) []json.Marshaler {
	out := make([]json.Marshaler, len(players))
	for i := range players {
		out[i] = row(Rounded(&players[i], digits))
	}
	return out
}

// WriteJSON writes players as a JSON array.
func WriteJSON(w io.Writer, players []model.ScoredPlayer, digits int) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(Rows(players, digits)); err != nil {
		return fmt.Errorf("encode players: %w", err)
	}
	return nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// WriteCSV writes players with a header row. pele_100 is included when the
// first player carries it.
func WriteCSV(w io.Writer, players []model.ScoredPlayer, digits int) error {
	standardized := len(players) > 0 && players[0].Pele100 != nil
	cw := csv.NewWriter(w)
	if err := cw.Write(model.Columns(standardized)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range players {
		fields := Rounded(&players[i], digits)
		rec := make([]string, len(fields))
		for j, f := range fields {
			rec[j] = formatValue(f.Value)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// WriteWeb writes players.json and filters.json into dir for the web app.
func WriteWeb(dir string, players []model.ScoredPlayer, digits int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := writeFile(filepath.Join(dir, PlayersFile), func(w io.Writer) error {
		return WriteJSON(w, players, digits)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, FiltersFile), func(w io.Writer) error {
		return json.NewEncoder(w).Encode(model.BuildFilters(players))
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/okian/pele/internal/domain/model"
)

// fbrefColumns maps canonical stats to source headers, qualified names first.
var fbrefColumns = map[model.Stat][]string{
	model.NPGoals:              {"Performance|G-PK", "G-PK"},
	model.PenaltyGoals:         {"Performance|PK", "PK"},
	model.Assists:              {"Performance|Ast", "Ast"},
	model.XG:                   {"Expected|xG", "xG"},
	model.XA:                   {"Expected|xAG", "xAG"},
	model.KeyPasses:            {"KP"},
	model.ProgressivePasses:    {"PrgP"},
	model.ProgressiveCarries:   {"PrgC"},
	model.SuccessfulDribbles:   {"Take-Ons|Succ"},
	model.Shots:                {"Standard|Sh", "Sh"},
	model.ShotsOnTarget:        {"Standard|SoT", "SoT"},
	model.PassesIntoFinalThird: {"1/3"},
	model.ProgressiveReceives:  {"PrgR"},
	model.Tackles:              {"Tackles|Tkl"},
	model.Interceptions:        {"Int"},
	model.Blocks:               {"Blocks|Blocks"},
	model.TacklesDefThird:      {"Tackles|Def 3rd"},
	model.TacklesMidThird:      {"Tackles|Mid 3rd"},
	model.TacklesAttThird:      {"Tackles|Att 3rd"},
	model.AerialsWon:           {"Aerial Duels|Won"},
}

var (
	fbrefPlayer    = []string{"Player"}
	fbrefPlayerID  = []string{"-additional|-9999", "-additional"}
	fbrefMinutes   = []string{"Playing Time|Min", "Min"}
	fbrefPassPct   = []string{"Total|Cmp%", "Cmp%"}
	fbrefDribAtt   = []string{"Take-Ons|Att"}
	fbrefDribPct   = []string{"Take-Ons|Succ%"}
	fbrefDispossed = []string{"Carries|Dis"}
	fbrefMiscontr  = []string{"Carries|Mis"}
	fbrefSeason    = []string{"Season"}
	fbrefTeam      = []string{"Team"}
)

type fbrefTable struct {
	cols map[string]int
	row  []string
}

func nextNonEmpty(cr *csv.Reader) ([]string, error) {
	for {
		row, err := cr.Read()
		if err != nil {
			return nil, err
		}
		if !blankRow(row) {
			return row, nil
		}
	}
}

// joinHeaders combines the group row and the column row as "group|column".
func joinHeaders(top, sub []string) map[string]int {
	n := max(len(top), len(sub))
	cols := make(map[string]int, n)
	at := func(r []string, i int) string {
		if i < len(r) {
			return strings.TrimSpace(r[i])
		}
		return ""
	}
	for i := 0; i < n; i++ {
		h1, h2 := at(top, i), at(sub, i)
		var name string
		switch {
		case h1 != "" && h2 != "":
			name = h1 + "|" + h2
		case h1 != "":
			name = h1
		default:
			name = h2
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

// pick returns the first non-empty cell among names.
func (t *fbrefTable) pick(names []string) string {
	for _, n := range names {
		i, ok := t.cols[n]
		if !ok || i >= len(t.row) {
			continue
		}
		if v := strings.TrimSpace(t.row[i]); v != "" {
			return v
		}
	}
	return ""
}

// num reads a numeric cell; blanks and non-numeric values read as 0.
func (t *fbrefTable) num(names []string) float64 {
	v := t.pick(names)
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ReadFBref parses an FBref season-aggregate export with its two header rows.
// Each data row becomes one record with match id season_agg_<n>; rows
// without a player are skipped.
func ReadFBref(in io.Reader) ([]model.MatchRecord, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	top, err := nextNonEmpty(cr)
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	sub, err := nextNonEmpty(cr)
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: second header row", ErrMissingHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	t := &fbrefTable{cols: joinHeaders(top, sub)}

	var out []model.MatchRecord
	for idx := 0; ; idx++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", idx, err)
		}
		if blankRow(row) {
			continue
		}
		t.row = row
		rec := t.record(idx)
		if rec.PlayerID == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (t *fbrefTable) record(idx int) model.MatchRecord {
	name := t.pick(fbrefPlayer)
	id := t.pick(fbrefPlayerID)
	if id == "" {
		id = name
	}
	rec := model.MatchRecord{
		PlayerID:   id,
		PlayerName: name,
		MatchID:    fmt.Sprintf("season_agg_%d", idx),
		Season:     t.pick(fbrefSeason),
		TeamID:     t.pick(fbrefTeam),
		Minutes:    t.num(fbrefMinutes),
	}
	for s, names := range fbrefColumns {
		rec.Counts[s] = t.num(names)
	}
	rec.Counts[model.Turnovers] = t.num(fbrefDispossed) + t.num(fbrefMiscontr)
	rec.PassCompletion = model.Share{Pct: t.num(fbrefPassPct)}
	rec.DribbleSuccess = model.Share{
		Pct:       t.num(fbrefDribPct),
		Made:      rec.Counts[model.SuccessfulDribbles],
		Attempted: t.num(fbrefDribAtt),
		Counted:   true,
	}
	return rec
}

// ConvertFBref rewrites an FBref export as canonical CSV and returns the
// number of records written.
func ConvertFBref(in io.Reader, out io.Writer) (int, error) {
	records, err := ReadFBref(in)
	if err != nil {
		return 0, err
	}
	if err := WriteCanonical(out, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

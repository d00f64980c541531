// Package importer reads match records from tabular exports.
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
	"github.com/okian/pele/internal/domain/pele"
)

// Canonical column names.
const (
	colPlayerName      = "player_name"
	colSeason          = "season"
	colTeam            = "team_id"
	colDribbleSuccess  = "dribble_success_pct"
	colDribbleAttempts = "dribble_attempts"
	colPassesCompleted = "passes_completed"
	colPassesAttempted = "passes_attempted"
	colPlayerID        = "player_id"
	colMatchID         = "match_id"
	colMinutes         = "minutes"
	colPassCompletion  = "pass_completion_pct"
)

// CanonicalColumns is the column order written by WriteCanonical.
var CanonicalColumns = []string{
	colPlayerID, colPlayerName, colMatchID, colMinutes,
	"np_goals", "penalty_goals", "assists", "xg", "xa", "key_passes",
	"progressive_passes", "progressive_carries", "successful_dribbles", "turnovers",
	"tackles", "interceptions", "blocks", "aerials_won",
	"shots", "shots_on_target", colPassCompletion, "passes_into_final_third",
	"progressive_receives", "tackles_def_third", "tackles_mid_third", "tackles_att_third",
	colDribbleSuccess, colDribbleAttempts,
	colSeason, colTeam,
	colPassesCompleted, colPassesAttempted,
}

// RequiredColumns lists the columns every canonical input must carry.
func RequiredColumns() []string {
	cols := []string{colPlayerID, colMatchID, colMinutes, colPassCompletion}
	for _, s := range model.Stats() {
		cols = append(cols, s.String())
	}
	return cols
}

type header map[string]int

func readHeader(cr *csv.Reader) (header, error) {
	row, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h := make(header, len(row))
	for i, name := range row {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	return h, nil
}

func (h header) cell(row []string, col string) (string, bool) {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return "", ok
	}
	return strings.TrimSpace(row[i]), true
}

type rowReader struct {
	h    header
	row  []string
	line int
	id   string
}

func (r *rowReader) fail(col, reason string) error {
	return &pele.SchemaError{Field: col, Row: r.line, Key: r.id, Reason: reason}
}

func (r *rowReader) required(col string) (float64, error) {
	v, _ := r.h.cell(r.row, col)
	if v == "" {
		return 0, r.fail(col, "required value is empty")
	}
	return r.parse(col, v)
}

// optional returns the value and whether the cell carried one.
func (r *rowReader) optional(col string) (float64, bool, error) {
	v, _ := r.h.cell(r.row, col)
	if v == "" {
		return 0, false, nil
	}
	f, err := r.parse(col, v)
	return f, err == nil, err
}

func (r *rowReader) parse(col, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, r.fail(col, fmt.Sprintf("not a number: %q", v))
	}
	return f, nil
}

// ReadCanonical parses a CSV with the canonical header. A missing required
// column or an empty or non-numeric required cell fails with a
// *pele.SchemaError whose Row is the 1-based line number.
func ReadCanonical(in io.Reader) ([]model.MatchRecord, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	for _, col := range RequiredColumns() {
		if _, ok := h[col]; !ok {
			return nil, &pele.SchemaError{Field: col, Row: 1, Reason: "missing column"}
		}
	}

	var out []model.MatchRecord
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if blankRow(row) {
			continue
		}
		rec, err := parseCanonicalRow(&rowReader{h: h, row: row, line: line})
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseCanonicalRow(r *rowReader) (model.MatchRecord, error) {
	var rec model.MatchRecord
	rec.PlayerID, _ = r.h.cell(r.row, colPlayerID)
	r.id = rec.PlayerID
	if rec.PlayerID == "" {
		return rec, r.fail(colPlayerID, "required value is empty")
	}
	rec.MatchID, _ = r.h.cell(r.row, colMatchID)
	if rec.MatchID == "" {
		return rec, r.fail(colMatchID, "required value is empty")
	}
	rec.PlayerName, _ = r.h.cell(r.row, colPlayerName)
	rec.Season, _ = r.h.cell(r.row, colSeason)
	rec.TeamID, _ = r.h.cell(r.row, colTeam)

	var err error
	if rec.Minutes, err = r.required(colMinutes); err != nil {
		return rec, err
	}
	for _, s := range model.Stats() {
		if rec.Counts[s], err = r.required(s.String()); err != nil {
			return rec, err
		}
	}

	pct, err := r.required(colPassCompletion)
	if err != nil {
		return rec, err
	}
	rec.PassCompletion.Pct = pct
	made, okMade, err := r.optional(colPassesCompleted)
	if err != nil {
		return rec, err
	}
	att, okAtt, err := r.optional(colPassesAttempted)
	if err != nil {
		return rec, err
	}
	if okMade && okAtt {
		rec.PassCompletion = model.Share{Pct: pct, Made: made, Attempted: att, Counted: true}
	}

	dpct, _, err := r.optional(colDribbleSuccess)
	if err != nil {
		return rec, err
	}
	rec.DribbleSuccess.Pct = dpct
	datt, okDatt, err := r.optional(colDribbleAttempts)
	if err != nil {
		return rec, err
	}
	if okDatt {
		rec.DribbleSuccess = model.Share{
			Pct:       dpct,
			Made:      rec.Counts[model.SuccessfulDribbles],
			Attempted: datt,
			Counted:   true,
		}
	}
	return rec, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCanonical writes records as canonical CSV.
func WriteCanonical(out io.Writer, records []model.MatchRecord) error {
	w := csv.NewWriter(out)
	if err := w.Write(CanonicalColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range records {
		if err := w.Write(canonicalRow(&records[i])); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func canonicalRow(r *model.MatchRecord) []string {
	row := make([]string, 0, len(CanonicalColumns))
	for _, col := range CanonicalColumns {
		var v string
		switch col {
		case colPlayerID:
			v = r.PlayerID
		case colPlayerName:
			v = r.PlayerName
		case colMatchID:
			v = r.MatchID
		case colSeason:
			v = r.Season
		case colTeam:
			v = r.TeamID
		case colMinutes:
			v = formatFloat(r.Minutes)
		case colPassCompletion:
			v = formatFloat(r.PassCompletion.Pct)
		case colDribbleSuccess:
			v = formatFloat(r.DribbleSuccess.Pct)
		case colDribbleAttempts:
			if r.DribbleSuccess.Counted {
				v = formatFloat(r.DribbleSuccess.Attempted)
			}
		case colPassesCompleted:
			if r.PassCompletion.Counted {
				v = formatFloat(r.PassCompletion.Made)
			}
		case colPassesAttempted:
			if r.PassCompletion.Counted {
				v = formatFloat(r.PassCompletion.Attempted)
			}
		default:
			if s, ok := model.StatByName(col); ok {
				v = formatFloat(r.Counts[s])
			}
		}
		row = append(row, v)
	}
	return row
}

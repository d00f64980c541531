package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/pele/internal/domain/model"
	"github.com/okian/pele/internal/domain/pele"
)

// Object is one record keyed by canonical column name. Values are JSON
// numbers, numeric strings, strings for identity columns, or null.
type Object map[string]json.RawMessage

// ReadJSON parses a JSON array of canonical objects.
func ReadJSON(in io.Reader) ([]model.MatchRecord, error) {
	var objs []Object
	dec := json.NewDecoder(in)
	if err := dec.Decode(&objs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyInput
		}
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return DecodeRecords(objs)
}

// DecodeRecords converts canonical objects into records with the same rules
// as ReadCanonical. SchemaError.Row is the 0-based object index.
func DecodeRecords(objs []Object) ([]model.MatchRecord, error) {
	out := make([]model.MatchRecord, 0, len(objs))
	for i, obj := range objs {
		h := make(header, len(obj))
		row := make([]string, 0, len(obj))
		for k, raw := range obj {
			v, err := cellText(raw)
			if err != nil {
				return nil, &pele.SchemaError{Field: k, Row: i, Reason: err.Error()}
			}
			h[strings.ToLower(strings.TrimSpace(k))] = len(row)
			row = append(row, v)
		}
		for _, col := range RequiredColumns() {
			if _, ok := h[col]; !ok {
				return nil, &pele.SchemaError{Field: col, Row: i, Reason: "missing column"}
			}
		}
		rec, err := parseCanonicalRow(&rowReader{h: h, row: row, line: i})
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func cellText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
		return "", nil
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case raw[0] == '{', raw[0] == '[', raw[0] == 't', raw[0] == 'f':
		return "", fmt.Errorf("unsupported value %s", raw)
	default:
		return string(raw), nil
	}
}

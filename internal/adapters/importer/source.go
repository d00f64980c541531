package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/pele/internal/domain/model"
)

// Format names an input layout.
type Format string

// Supported input formats.
const (
	FormatCanonical Format = "canonical"
	FormatFBref     Format = "fbref"
	FormatJSON      Format = "json"
)

// ParseFormat resolves a format name, defaulting to canonical.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCanonical:
		return FormatCanonical, nil
	case FormatFBref:
		return FormatFBref, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Read parses in according to f.
func Read(in io.Reader, f Format) ([]model.MatchRecord, error) {
	switch f {
	case FormatCanonical, "":
		return ReadCanonical(in)
	case FormatFBref:
		return ReadFBref(in)
	case FormatJSON:
		return ReadJSON(in)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// FileSource loads records from a file on every call, so edits to the file
// show up on the next recompute.
type FileSource struct {
	Path   string
	Format Format
}

// Load reads and parses the file.
func (s FileSource) Load(ctx context.Context) ([]model.MatchRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	records, err := Read(f, s.Format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return records, nil
}

// Name describes the source for logs.
func (s FileSource) Name() string { return string(s.Format) + ":" + s.Path }

package io

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/matzehuels/stackweight/pkg/errors"
	"github.com/matzehuels/stackweight/pkg/weight"
)

// Output formats for weighted edges.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Header is the CSV header row.
var Header = []string{"repo", "parent", "weight"}

// ValidateFormat checks that format is a supported edge format.
func ValidateFormat(format string) error {
	switch format {
	case FormatCSV, FormatJSON:
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: csv, json)", format)
	}
}

// FormatWeight renders a weight with the shortest representation that
// parses back to the same float64.
func FormatWeight(w float64) string {
	return strconv.FormatFloat(w, 'g', -1, 64)
}

// WriteCSV writes edges as CSV with a "repo,parent,weight" header.
func WriteCSV(edges []weight.Edge, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range edges {
		if err := cw.Write([]string{e.Repo, e.Parent, FormatWeight(e.Weight)}); err != nil {
			return fmt.Errorf("write row %s->%s: %w", e.Repo, e.Parent, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes edges as an indented JSON array of
// {"repo","parent","weight"} objects.
func WriteJSON(edges []weight.Edge, w io.Writer) error {
	if edges == nil {
		edges = []weight.Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(edges); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Encode writes edges in the given format.
func Encode(edges []weight.Edge, format string, w io.Writer) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}
	if format == FormatJSON {
		return WriteJSON(edges, w)
	}
	return WriteCSV(edges, w)
}

// Marshal renders edges in the given format into memory.
func Marshal(edges []weight.Edge, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(edges, format, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Export renders edges fully in memory and then writes them to path in one
// step, so a failed run never leaves a partial file behind.
func Export(edges []weight.Edge, format, path string) error {
	data, err := Marshal(edges, format)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place. Parent directories are created as needed.
func WriteFileAtomic(path string, data []byte) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

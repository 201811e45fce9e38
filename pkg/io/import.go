package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/stackweight/pkg/errors"
	"github.com/matzehuels/stackweight/pkg/weight"
)

// ReadCSV decodes weighted edges from CSV.
//
// The first row must be a header naming the "repo", "parent" and "weight"
// columns in any order; extra columns are ignored. Malformed rows or weights
// yield an INVALID_FORMAT error naming the line.
func ReadCSV(r io.Reader) ([]weight.Edge, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "empty CSV: missing header")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read header")
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	idx := make([]int, len(Header))
	for i, name := range Header {
		c, ok := cols[name]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "CSV header missing %q column", name)
		}
		idx[i] = c
	}

	var edges []weight.Edge
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read CSV")
		}
		line, _ := cr.FieldPos(0)
		for _, c := range idx {
			if c >= len(rec) {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: expected at least %d fields, got %d", line, c+1, len(rec))
			}
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(rec[idx[2]]), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: invalid weight %q", line, rec[idx[2]])
		}
		edges = append(edges, weight.Edge{Repo: rec[idx[0]], Parent: rec[idx[1]], Weight: w})
	}
	return edges, nil
}

// ReadJSON decodes weighted edges from a JSON array.
func ReadJSON(r io.Reader) ([]weight.Edge, error) {
	var edges []weight.Edge
	if err := json.NewDecoder(r).Decode(&edges); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode edges")
	}
	return edges, nil
}

// Decode reads edges in the given format.
func Decode(format string, r io.Reader) ([]weight.Edge, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	if format == FormatJSON {
		return ReadJSON(r)
	}
	return ReadCSV(r)
}

// Import reads an edge file, picking the format from its extension
// (".json" is JSON, anything else CSV).
func Import(path string) ([]weight.Edge, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(FormatFromPath(path), f)
}

// FormatFromPath infers an edge format from a file extension.
func FormatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatCSV
}

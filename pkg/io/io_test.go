package io

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/stackweight/pkg/errors"
	"github.com/matzehuels/stackweight/pkg/graph"
	"github.com/matzehuels/stackweight/pkg/weight"
)

var sample = []weight.Edge{
	{Repo: "A", Parent: "ethereum", Weight: 0.5},
	{Repo: "B", Parent: "ethereum", Weight: 0.5},
	{Repo: "x", Parent: "A", Weight: 1.0 / 3},
	{Repo: "y,z", Parent: "A", Weight: 0.1},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(sample[:2], &buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "repo,parent,weight\nA,ethereum,0.5\nB,ethereum,0.5\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteCSV =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(nil, &buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if got := buf.String(); got != "repo,parent,weight\n" {
		t.Errorf("WriteCSV(nil) = %q, want header only", got)
	}
}

func TestFormatWeight(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.5, "0.5"},
		{1, "1"},
		{0.2, "0.2"},
		{1.0 / 3, "0.3333333333333333"},
		{0.4, "0.4"},
	}
	for _, tt := range tests {
		if got := FormatWeight(tt.in); got != tt.want {
			t.Errorf("FormatWeight(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(sample, &buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(got) != len(sample) {
		t.Fatalf("got %d edges, want %d", len(got), len(sample))
	}
	for i := range sample {
		if got[i] != sample[i] {
			t.Errorf("edge %d = %+v, want %+v", i, got[i], sample[i])
		}
	}
}

func TestReadCSVReorderedHeader(t *testing.T) {
	in := "weight,extra,parent,repo\n0.25,foo,A,x\n"
	got, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	want := weight.Edge{Repo: "x", Parent: "A", Weight: 0.25}
	if len(got) != 1 || got[0] != want {
		t.Errorf("ReadCSV = %+v, want [%+v]", got, want)
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"missing column", "repo,parent\nA,B\n"},
		{"bad weight", "repo,parent,weight\nA,B,heavy\n"},
		{"short row", "repo,parent,weight\nA,B\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFormat)
			}
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sample, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"repo": "A"`) {
		t.Errorf("JSON missing repo field:\n%s", buf.String())
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	for i := range sample {
		if got[i] != sample[i] {
			t.Errorf("edge %d = %+v, want %+v", i, got[i], sample[i])
		}
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(nil, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("WriteJSON(nil) = %q, want []", got)
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{FormatCSV, FormatJSON} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) = %v", f, err)
		}
	}
	err := ValidateFormat("xml")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat(xml) = %v, want INVALID_FORMAT", err)
	}
	if _, err := Marshal(sample, "xml"); err == nil {
		t.Error("Marshal with bad format should fail")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"out.csv":    FormatCSV,
		"out.json":   FormatJSON,
		"OUT.JSON":   FormatJSON,
		"weights":    FormatCSV,
		"dir/a.b.js": FormatCSV,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"nested/out.csv", "out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Export(sample, FormatFromPath(path), path); err != nil {
				t.Fatalf("Export: %v", err)
			}
			got, err := Import(path)
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			if len(got) != len(sample) {
				t.Errorf("got %d edges, want %d", len(got), len(sample))
			}
		})
	}
}

func TestExportFailureKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := os.WriteFile(path, []byte("previous"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Export(sample, "xml", path); err == nil {
		t.Fatal("expected error")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "previous" {
		t.Errorf("file = %q, want untouched", data)
	}
}

func TestWriteFileAtomicNoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	if err := WriteFileAtomic(path, []byte("a")); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("b")); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
	data, _ := os.ReadFile(path)
	if string(data) != "b" {
		t.Errorf("content = %q, want b", data)
	}
}

func TestImportMissing(t *testing.T) {
	_, err := Import(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Import(missing) = %v, want FILE_NOT_FOUND", err)
	}
}

const pairwiseGraph = `{
	"nodes": [
		{"id": "B", "level": 1, "name": "beta"},
		{"id": "A", "level": 1},
		{"id": "x", "level": 2, "stars": 10},
		{"id": "ethereum"}
	],
	"links": [
		{"source": "A", "target": "x"},
		{"source": "x", "target": "A"},
		{"source": "A", "target": "x"}
	]
}`

func TestBuildPairwise(t *testing.T) {
	g, err := graph.ReadGraph(strings.NewReader(pairwiseGraph))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	p := BuildPairwise(g)

	if len(p.Categories) != 2 || p.Categories[0] != "B" || p.Categories[1] != "A" {
		t.Errorf("Categories = %v, want [B A]", p.Categories)
	}
	if got := p.Projects["A"]; len(got) != 2 || got[0] != "x" || got[1] != "x" {
		t.Errorf("Projects[A] = %v, want [x x]", got)
	}
	if got, ok := p.Projects["B"]; !ok || len(got) != 0 {
		t.Errorf("Projects[B] = %v (present %v), want empty list", got, ok)
	}
	if _, ok := p.Projects["x"]; ok {
		t.Error("non-seed x should not be a category")
	}
	if len(p.Metadata) != 4 {
		t.Errorf("Metadata has %d entries, want 4", len(p.Metadata))
	}
	if _, ok := p.Metadata["A"]["level"]; ok {
		t.Error("metadata should not carry level")
	}
	if p.Metadata["B"]["name"] != "beta" || p.Metadata["B"]["id"] != "B" {
		t.Errorf("Metadata[B] = %v", p.Metadata["B"])
	}
}

func TestBuildPairwiseSkipsSelfLinks(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{{ID: "A", Level: graph.LevelSeed}, {ID: "x", Level: graph.LevelDependency}},
		Links: []graph.Link{{Source: "A", Target: "A"}, {Source: "A", Target: "x"}},
	}
	p := BuildPairwise(g)
	if got := p.Projects["A"]; len(got) != 1 || got[0] != "x" {
		t.Errorf("Projects[A] = %v, want [x]", got)
	}
}

func TestExportPairwise(t *testing.T) {
	g, err := graph.ReadGraph(strings.NewReader(pairwiseGraph))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	dir := filepath.Join(t.TempDir(), "api")
	paths, err := ExportPairwise(BuildPairwise(g), dir)
	if err != nil {
		t.Fatalf("ExportPairwise: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("got %d paths, want 3", len(paths))
	}

	data, err := os.ReadFile(filepath.Join(dir, ProjectsFile))
	if err != nil {
		t.Fatal(err)
	}
	var projects map[string][]string
	if err := json.Unmarshal(data, &projects); err != nil {
		t.Fatalf("decode %s: %v", ProjectsFile, err)
	}
	if len(projects["B"]) != 0 || projects["B"] == nil {
		t.Errorf("B projects = %v, want []", projects["B"])
	}

	data, err = os.ReadFile(filepath.Join(dir, CategoriesFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "[\n    \"B\"") {
		t.Errorf("categories not 4-space indented:\n%s", data)
	}
}

package io

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/matzehuels/stackweight/pkg/graph"
)

// File names written by [ExportPairwise].
const (
	CategoriesFile = "get1stLevelCategoryList.json"
	ProjectsFile   = "getProjectsForCategory.json"
	MetadataFile   = "getProjectMetadata.json"
)

// Pairwise holds the static payloads served to pairwise-comparison frontends.
type Pairwise struct {
	// Categories lists seed ids in declaration order.
	Categories []string `json:"categories"`
	// Projects maps each seed to its link targets in link order. Repeated
	// links repeat the target.
	Projects map[string][]string `json:"projects"`
	// Metadata maps every node id to its record without the level field.
	Metadata map[string]map[string]any `json:"metadata"`
}

// BuildPairwise derives the pairwise payloads from g.
func BuildPairwise(g *graph.Graph) *Pairwise {
	h := graph.NewHierarchy(g)
	p := &Pairwise{
		Categories: append([]string{}, h.Seeds()...),
		Projects:   make(map[string][]string, h.SeedCount()),
		Metadata:   make(map[string]map[string]any, g.NodeCount()),
	}
	for _, seed := range h.Seeds() {
		p.Projects[seed] = append([]string{}, h.Targets(seed)...)
	}
	for _, n := range g.Nodes {
		p.Metadata[n.ID] = n.Record()
	}
	return p
}

// Files returns the file name to JSON payload mapping, rendered in memory.
func (p *Pairwise) Files() (map[string][]byte, error) {
	payloads := map[string]any{
		CategoriesFile: p.Categories,
		ProjectsFile:   p.Projects,
		MetadataFile:   p.Metadata,
	}
	out := make(map[string][]byte, len(payloads))
	for name, v := range payloads {
		data, err := json.MarshalIndent(v, "", "    ")
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		out[name] = append(data, '\n')
	}
	return out, nil
}

// ExportPairwise writes the three pairwise files into dir and returns their
// paths in a stable order. All payloads are encoded before any file is
// written.
func ExportPairwise(p *Pairwise, dir string) ([]string, error) {
	files, err := p.Files()
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, name := range []string{CategoriesFile, ProjectsFile, MetadataFile} {
		path := filepath.Join(dir, name)
		if err := WriteFileAtomic(path, files[name]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

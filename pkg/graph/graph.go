package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/matzehuels/stackweight/pkg/errors"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a Graph to canonical JSON bytes.
// Node objects have sorted keys, so equal graphs marshal to equal bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a Graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *Graph, path string) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteGraph writes a Graph as JSON to an io.Writer.
func WriteGraph(g *Graph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// ReadGraphFile reads a JSON file and returns the decoded Graph.
// A missing file yields an error with code FILE_NOT_FOUND; malformed
// content yields STRUCTURAL_ERROR.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a node-link JSON graph from an io.Reader.
//
// The input must be an object with a "nodes" array and a "links" array
// ("edges" is accepted as an alias):
//
//	{
//	  "nodes": [{"id": "a", "level": 1}, {"id": "b", "level": 2}],
//	  "links": [{"source": "a", "target": "b"}]
//	}
//
// ReadGraph returns a STRUCTURAL_ERROR if:
//   - The JSON is malformed
//   - The "nodes" or "links" key is missing
//   - A node has no string "id", or a "level" that is not an integer
//   - A link has no string "source" or "target"
//   - Two nodes share an ID
//
// Links may reference IDs that are not declared as nodes; the weighting step
// ignores links whose source is not a seed.
func ReadGraph(r io.Reader) (*Graph, error) {
	return readGraphFrom(r)
}

// UnmarshalGraph decodes JSON bytes into a Graph. See [ReadGraph].
func UnmarshalGraph(data []byte) (*Graph, error) {
	return readGraphFrom(bytes.NewReader(data))
}

// =============================================================================
// Internal Implementation
// =============================================================================

type rawObject = map[string]json.RawMessage

func writeGraphTo(g *Graph, w io.Writer) error {
	type link struct {
		Source string `json:"source"`
		Target string `json:"target"`
	}
	out := struct {
		Nodes []map[string]any `json:"nodes"`
		Links []link           `json:"links"`
	}{
		Nodes: make([]map[string]any, len(g.Nodes)),
		Links: make([]link, len(g.Links)),
	}

	for i, n := range g.Nodes {
		obj := n.Record()
		if n.Level != LevelNone {
			obj[keyLevel] = n.Level
		}
		out.Nodes[i] = obj
	}
	for i, l := range g.Links {
		out.Links[i] = link{Source: l.Source, Target: l.Target}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (*Graph, error) {
	var top rawObject
	if err := json.NewDecoder(r).Decode(&top); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStructural, err, "decode graph")
	}

	rawNodes, err := requireArray(top, keyNodes)
	if err != nil {
		return nil, err
	}
	linkKey := keyLinks
	if _, ok := top[keyLinks]; !ok {
		if _, ok := top[keyEdges]; ok {
			linkKey = keyEdges
		}
	}
	rawLinks, err := requireArray(top, linkKey)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		Nodes: make([]Node, 0, len(rawNodes)),
		Links: make([]Link, 0, len(rawLinks)),
	}

	seen := make(map[string]struct{}, len(rawNodes))
	for i, obj := range rawNodes {
		n, err := decodeNode(obj)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStructural, err, "node %d", i)
		}
		if _, dup := seen[n.ID]; dup {
			return nil, errors.Structural("duplicate node id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
		g.Nodes = append(g.Nodes, n)
	}

	for i, obj := range rawLinks {
		l, err := decodeLink(obj)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStructural, err, "%s %d", linkKey, i)
		}
		g.Links = append(g.Links, l)
	}

	return g, nil
}

// requireArray extracts a required array of objects from top.
func requireArray(top rawObject, key string) ([]rawObject, error) {
	raw, ok := top[key]
	if !ok || isNull(raw) {
		return nil, errors.Structural("missing %q key", key)
	}
	var out []rawObject
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStructural, err, "%q must be an array of objects", key)
	}
	return out, nil
}

func decodeNode(obj rawObject) (Node, error) {
	if obj == nil {
		return Node{}, fmt.Errorf("node must be an object")
	}
	id, err := requireString(obj, keyID)
	if err != nil {
		return Node{}, err
	}
	if err := errors.ValidateNodeID(id); err != nil {
		return Node{}, err
	}

	n := Node{ID: id}
	if raw, ok := obj[keyLevel]; ok && !isNull(raw) {
		level, err := decodeLevel(raw)
		if err != nil {
			return Node{}, fmt.Errorf("node %q: %w", id, err)
		}
		n.Level = level
	}

	for k, raw := range obj {
		if k == keyID || k == keyLevel {
			continue
		}
		v, err := decodeValue(raw)
		if err != nil {
			return Node{}, fmt.Errorf("node %q: field %q: %w", id, k, err)
		}
		if n.Meta == nil {
			n.Meta = make(map[string]any, len(obj))
		}
		n.Meta[k] = v
	}
	return n, nil
}

func decodeLink(obj rawObject) (Link, error) {
	if obj == nil {
		return Link{}, fmt.Errorf("link must be an object")
	}
	src, err := requireString(obj, keySource)
	if err != nil {
		return Link{}, err
	}
	dst, err := requireString(obj, keyTarget)
	if err != nil {
		return Link{}, err
	}
	return Link{Source: src, Target: dst}, nil
}

func requireString(obj rawObject, key string) (string, error) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return "", fmt.Errorf("missing %q", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%q must be a string", key)
	}
	return s, nil
}

// decodeLevel accepts integral JSON numbers, including forms like 1.0 that
// dataframe exports produce.
func decodeLevel(raw json.RawMessage) (int, error) {
	var num json.Number
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte(`"`)) {
		return 0, fmt.Errorf("%q must be a number", keyLevel)
	}
	if err := json.Unmarshal(raw, &num); err != nil {
		return 0, fmt.Errorf("%q must be a number", keyLevel)
	}
	i, err := num.Int64()
	if err != nil {
		f, ferr := num.Float64()
		if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%q must be an integer, got %s", keyLevel, num)
		}
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("%q out of range, got %s", keyLevel, num)
		}
		i = int64(f)
	}
	if int64(int(i)) != i {
		return 0, fmt.Errorf("%q out of range, got %s", keyLevel, num)
	}
	return int(i), nil
}

// decodeValue decodes arbitrary metadata, keeping numbers as json.Number so
// they re-encode without precision loss.
func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

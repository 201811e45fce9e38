package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stackweight/pkg/errors"
	"github.com/matzehuels/stackweight/pkg/graph"
	"github.com/matzehuels/stackweight/pkg/render"
	"github.com/matzehuels/stackweight/pkg/weight"
)

// Output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// Formats lists the supported output formats.
var Formats = []string{FormatDOT, FormatSVG, FormatPNG, FormatPDF}

// Layout directions.
const (
	LayoutTB = "TB"
	LayoutLR = "LR"
)

// Options configures diagram generation.
type Options struct {
	// Root is the sentinel drawn at the top. Empty means graph.DefaultRoot.
	Root string
	// Layout is the Graphviz rankdir, LayoutTB (default) or LayoutLR.
	Layout string
	// Links adds a clickable URL to nodes whose ID is an http(s) URL.
	Links bool
}

// ValidateFormat checks that format is one of [Formats].
func ValidateFormat(format string) error {
	for _, f := range Formats {
		if f == format {
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(Formats, ", "))
}

// node kinds, used for styling.
const (
	kindRoot = iota
	kindSeed
	kindDependency
)

// ToDOT converts weighted edges to Graphviz DOT. Funding flows downward:
// each edge is drawn parent → repo and labeled with its weight, with pen
// width growing with the weight. Self-loops stay self-loops.
func ToDOT(edges []weight.Edge, opts Options) string {
	root := opts.Root
	if root == "" {
		root = graph.DefaultRoot
	}
	rankdir := LayoutTB
	if opts.Layout == LayoutLR {
		rankdir = LayoutLR
	}

	order, kinds := classify(edges, root)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=11, color=\"#555555\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range order {
		attrs := fmtAttrs(id, kinds[id], opts.Links)
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q, penwidth=%s];\n",
			e.Parent, e.Repo, fmtWeight(e.Weight), strconv.FormatFloat(penWidth(e.Weight), 'f', 2, 64))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// classify returns node IDs in first-seen order and their kinds. The root
// comes first whenever it appears.
func classify(edges []weight.Edge, root string) ([]string, map[string]int) {
	kinds := make(map[string]int)
	var order []string
	add := func(id string, kind int) {
		if prev, ok := kinds[id]; ok {
			if kind < prev {
				kinds[id] = kind
			}
			return
		}
		kinds[id] = kind
		order = append(order, id)
	}

	for _, e := range edges {
		if e.Parent == root {
			add(root, kindRoot)
			add(e.Repo, kindSeed)
		}
	}
	for _, e := range edges {
		if e.Parent == root {
			continue
		}
		add(e.Parent, kindSeed)
		add(e.Repo, kindDependency)
	}
	return order, kinds
}

func fmtAttrs(id string, kind int, links bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", Label(id))}
	switch kind {
	case kindRoot:
		attrs = append(attrs, "shape=doubleoctagon", "fillcolor=\"#e8eaf6\"")
	case kindSeed:
		attrs = append(attrs, "fillcolor=\"#fff8e1\"")
	}
	if links && errors.ValidateURL(id) == nil {
		attrs = append(attrs, fmt.Sprintf("URL=%q", id), "target=\"_blank\"")
	}
	return attrs
}

// Label shortens a repository URL to "owner/name" for display. Other IDs
// are returned unchanged.
func Label(id string) string {
	for _, prefix := range []string{"https://github.com/", "http://github.com/", "https://gitlab.com/"} {
		if rest, ok := strings.CutPrefix(id, prefix); ok && rest != "" {
			return strings.TrimSuffix(rest, "/")
		}
	}
	return id
}

func fmtWeight(w float64) string {
	return strconv.FormatFloat(w, 'g', 3, 64)
}

// penWidth maps a weight in [0, 1] to a stroke width in [1, 5].
func penWidth(w float64) float64 {
	switch {
	case w < 0:
		w = 0
	case w > 1:
		w = 1
	}
	return 1 + 4*w
}

// Render produces the diagram in the given format.
func Render(ctx context.Context, edges []weight.Edge, format string, opts Options) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	dot := ToDOT(edges, opts)
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatPNG:
		return RenderPNG(ctx, dot, 2.0)
	case FormatPDF:
		return RenderPDF(ctx, dot)
	default:
		return RenderSVG(ctx, dot)
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized <svg> tag with one sized in
// pixels from the viewBox, so the diagram scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}

// Package nodelink draws weighted funding edges as node-link diagrams.
//
// The root sentinel sits at the top, seeds below it and dependencies below
// their seeds. Every edge points from the funding parent to the receiving
// repository and carries its weight as a label; thicker strokes mean larger
// shares.
//
//	dot := nodelink.ToDOT(edges, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [Render] picks the output by format name: "dot" returns the Graphviz
// source, "svg" renders in-process with [github.com/goccy/go-graphviz], and
// "png" or "pdf" additionally need rsvg-convert from librsvg.
package nodelink

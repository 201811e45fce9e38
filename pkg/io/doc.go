// Package io provides file formats for weighted funding edges.
//
// # Edge Formats
//
// Edges produced by [weight.Assign] are written as CSV or JSON. The CSV form
// has a fixed header row:
//
//	repo,parent,weight
//	A,ethereum,0.5
//	x,A,0.4
//
// The JSON form is an array of objects with the same three fields:
//
//	[{"repo": "A", "parent": "ethereum", "weight": 0.5}]
//
// Weights are written with the shortest representation that round-trips to
// the same float64, so reading an exported file yields the same values.
//
// # Writing
//
// [Export] renders the complete output in memory before touching the
// destination, then replaces the file atomically. A failed run leaves any
// previous file untouched. [Encode] writes to any io.Writer.
//
// # Reading
//
// [Import] and [Decode] read edges back, mainly so that [weight.Validate] can
// audit a file produced elsewhere. CSV input must carry a header naming the
// repo, parent and weight columns.
//
// # Pairwise Export
//
// [BuildPairwise] and [ExportPairwise] derive the three static JSON files used
// by pairwise-comparison frontends from a hierarchy graph: the list of seed
// categories, the projects linked from each category, and per-node metadata.
//
// [weight.Assign]: github.com/matzehuels/stackweight/pkg/weight.Assign
// [weight.Validate]: github.com/matzehuels/stackweight/pkg/weight.Validate
package io

// Package graph provides the input graph model for stackweight.
//
// The input is a node-link JSON document describing a two-level hierarchy:
// seed repositories (level 1) and their dependencies (level 2). Seeds hang
// off a fixed root sentinel, [DefaultRoot] ("ethereum"), which does not
// appear in the graph itself.
//
// # Format
//
//	{
//	  "nodes": [
//	    {"id": "https://github.com/ethereum/go-ethereum", "level": 1},
//	    {"id": "https://github.com/golang/snappy", "level": 2, "stars": 1500}
//	  ],
//	  "links": [
//	    {"source": "https://github.com/ethereum/go-ethereum",
//	     "target": "https://github.com/golang/snappy"}
//	  ]
//	}
//
// "edges" is accepted in place of "links". Node keys other than "id" and
// "level" are kept in [Node.Meta] and survive a [WriteGraph] round trip.
//
// # Core Types
//
//   - [Graph], [Node], [Link]: the decoded document
//   - [Hierarchy]: seed index (seeds, unique children, raw link targets)
//
// Malformed input yields errors with code STRUCTURAL_ERROR from
// github.com/matzehuels/stackweight/pkg/errors.
//
// # Concurrency
//
// Graph and Hierarchy values are safe for concurrent reads but not
// concurrent writes.
package graph

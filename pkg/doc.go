// Package pkg provides the core libraries for Stackweight dependency weighting.
//
// # Overview
//
// Stackweight turns a two-level dependency graph into a weighted edge table.
// Level 1 nodes are seed projects, level 2 nodes are the repositories they
// depend on. Every seed hangs off a single root sentinel ("ethereum" by
// default), and every parent hands out a budget of at most 1.0 to its
// children. Downstream funding and ranking tools consume the table.
//
// # Architecture
//
// The data flow through Stackweight:
//
//	node-link JSON graph
//	         ↓
//	    [graph] package (decode + seed/child hierarchy)
//	         ↓
//	    [weight] package (policy even | half | selfloop, budget audit)
//	         ↓
//	    [io] package (CSV / JSON edge tables, pairwise payloads)
//
// [pipeline] runs the three steps with a result cache in front and is shared
// by the CLI and the HTTP server in [api].
//
// # Quick Start
//
//	g, _ := graph.ReadGraphFile("graph.json")
//	edges, _ := weight.Assign(g, weight.Options{Policy: weight.PolicySelfLoop})
//	report := weight.Validate(edges, 0)
//	_ = io.WriteCSV(edges, os.Stdout)
//	fmt.Println("within budget:", report.OK())
//
// # Main Packages
//
// ## Core Domain Logic
//
// [graph] - Node-link graph decoding with strict structural checks, and the
// seed → children hierarchy the policies work on.
//
// [weight] - The three weighting policies and the per-parent budget
// validator.
//
// [io] - Edge table encoding (CSV with a repo,parent,weight header, or JSON),
// atomic file writes, and the pairwise-comparison frontend export.
//
// ## Visualization
//
// [render/nodelink] - Graphviz diagrams of a weighted edge table, edges
// labeled and sized by weight.
//
// [render] - SVG to PDF/PNG conversion.
//
// ## Infrastructure
//
// [pipeline] - load → weigh → validate with caching keyed by the graph hash
// and the weighting options.
//
// [cache] - Cache backends: FileCache (CLI), MemoryCache (server), RedisCache
// (shared between server replicas), NullCache.
//
// [api] - HTTP API over the pipeline.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// [errors] - Coded errors shared by every layer.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/weight/...     # Specific package
//	go test -run Example ./...   # Examples only
//
// Redis tests run only when STACKWEIGHT_TEST_REDIS names a server.
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/stackweight/pkg/graph
// [weight]: https://pkg.go.dev/github.com/matzehuels/stackweight/pkg/weight
// [io]: https://pkg.go.dev/github.com/matzehuels/stackweight/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/stackweight/pkg/render/nodelink
// [render]: https://pkg.go.dev/github.com/matzehuels/stackweight/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stackweight/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/stackweight/pkg/cache
// [api]: https://pkg.go.dev/github.com/matzehuels/stackweight/pkg/api
// [observability]: https://pkg.go.dev/github.com/matzehuels/stackweight/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/stackweight/pkg/errors
package pkg

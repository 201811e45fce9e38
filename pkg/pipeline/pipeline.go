// Package pipeline runs the load → weigh → validate flow shared by the CLI
// and the API server.
//
// Both entry points build [Options], hand them to a [Runner] and format the
// [Result]. The Runner owns caching: weight tables are keyed by the SHA-256
// of the input graph bytes plus the weighting options, so re-running an
// unchanged graph is a cache read.
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:  "graph.json",
//	    Policy: "selfloop",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d edges, ok=%v\n", len(result.Edges), result.Report.OK())
package pipeline

import (
	"time"

	"github.com/matzehuels/stackweight/pkg/cache"
	"github.com/matzehuels/stackweight/pkg/errors"
	edgeio "github.com/matzehuels/stackweight/pkg/io"
	"github.com/matzehuels/stackweight/pkg/weight"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultFormat is the default edge output format.
const DefaultFormat = edgeio.FormatCSV

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run. Exactly one of Input and Graph must
// be set.
type Options struct {
	// Input is the path of a node-link JSON graph file.
	Input string `json:"input,omitempty"`
	// Graph is a node-link JSON document, used instead of Input.
	Graph []byte `json:"-"`

	Policy string  `json:"policy,omitempty"`
	Root   string  `json:"root,omitempty"`
	Retain float64 `json:"retain,omitempty"`

	// Epsilon is the budget tolerance of the validation step.
	Epsilon float64 `json:"epsilon,omitempty"`

	// Format is the encoding of Result.Output: "csv" or "json".
	Format string `json:"format,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	weight    weight.Options
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Edges are the weighted edges in emission order.
	Edges []weight.Edge
	// Report is the budget audit of Edges.
	Report weight.Report
	// Output is Edges encoded in Options.Format.
	Output []byte
	// GraphHash is the SHA-256 of the input graph bytes.
	GraphHash string
	// Policy is the canonical name of the policy that ran.
	Policy weight.Policy
	// Stats contains timing and size information.
	Stats Stats
	// CacheHit reports whether Edges came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics. Graph counts are zero on a
// cache hit, since the graph is never decoded.
type Stats struct {
	NodeCount    int           `json:"nodes"`
	LinkCount    int           `json:"links"`
	SeedCount    int           `json:"seeds"`
	EdgeCount    int           `json:"edges"`
	LoadTime     time.Duration `json:"load_time"`
	WeighTime    time.Duration `json:"weigh_time"`
	ValidateTime time.Duration `json:"validate_time"`
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and fills defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	switch {
	case o.Input == "" && o.Graph == nil:
		return errors.New(errors.ErrCodeInvalidInput, "input graph is required")
	case o.Input != "" && o.Graph != nil:
		return errors.New(errors.ErrCodeInvalidInput, "input path and inline graph are mutually exclusive")
	}
	if o.Input != "" {
		if err := errors.ValidatePath(o.Input); err != nil {
			return err
		}
	}

	w, err := o.WeightOptions()
	if err != nil {
		return err
	}
	o.weight = w
	o.Policy = w.Policy.String()
	o.Root = w.Root
	o.Retain = w.Retain

	if o.Epsilon <= 0 {
		o.Epsilon = weight.DefaultEpsilon
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if err := edgeio.ValidateFormat(o.Format); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// WeightOptions returns the validated weighting options.
func (o *Options) WeightOptions() (weight.Options, error) {
	w := weight.Options{
		Policy: weight.Policy(o.Policy),
		Root:   o.Root,
		Retain: o.Retain,
	}
	if err := w.Validate(); err != nil {
		return weight.Options{}, err
	}
	return w, nil
}

// WeightsKeyOpts returns cache key options for the weighting step. Retain
// only affects the self-loop policy, so it is left out for the others.
func (o *Options) WeightsKeyOpts() cache.WeightsKeyOpts {
	k := cache.WeightsKeyOpts{Policy: o.Policy, Root: o.Root}
	if o.Policy == weight.PolicySelfLoop.String() {
		k.Retain = o.Retain
	}
	return k
}

// source names the input for logs and hooks.
func (o *Options) source() string {
	if o.Input != "" {
		return o.Input
	}
	return "request"
}

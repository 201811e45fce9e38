package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackweight/pkg/cache"
	"github.com/matzehuels/stackweight/pkg/errors"
	"github.com/matzehuels/stackweight/pkg/graph"
	edgeio "github.com/matzehuels/stackweight/pkg/io"
	"github.com/matzehuels/stackweight/pkg/observability"
	"github.com/matzehuels/stackweight/pkg/render/nodelink"
	"github.com/matzehuels/stackweight/pkg/weight"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger, so one Runner
// can serve concurrent requests with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer means [cache.DefaultKeyer], a nil
// cache disables caching and a nil logger means log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute loads the graph, assigns weights, validates the budgets and
// encodes the edges in opts.Format.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	loadStart := time.Now()
	data, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result := &Result{
		GraphHash: cache.Hash(data),
		Policy:    opts.weight.Policy,
	}
	result.Stats.LoadTime = time.Since(loadStart)

	weighStart := time.Now()
	edges, hit, err := r.WeighWithCacheInfo(ctx, data, result.GraphHash, opts, &result.Stats)
	if err != nil {
		return nil, err
	}
	result.Edges = edges
	result.CacheHit = hit
	result.Stats.EdgeCount = len(edges)
	result.Stats.WeighTime = time.Since(weighStart)

	r.Logger.Info("assigned weights",
		"policy", opts.Policy,
		"edges", len(edges),
		"cached", hit,
		"duration", result.Stats.WeighTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	validateStart := time.Now()
	result.Report = r.Validate(ctx, edges, opts.Epsilon)
	result.Stats.ValidateTime = time.Since(validateStart)
	for _, v := range result.Report.Violations {
		r.Logger.Warn("parent exceeds budget", "parent", v.Parent, "total", v.Total)
	}

	out, err := edgeio.Marshal(edges, opts.Format)
	if err != nil {
		return nil, err
	}
	result.Output = out
	return result, nil
}

// Load returns the raw graph bytes from opts.Graph or the opts.Input file.
func (r *Runner) Load(ctx context.Context, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Graph != nil {
		return opts.Graph, nil
	}
	data, err := os.ReadFile(opts.Input)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph file not found: %s", opts.Input)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", opts.Input, err)
	}
	return data, nil
}

// WeighWithCacheInfo assigns weights for the graph in data, consulting the
// cache first. stats, if non-nil, receives graph counts on a miss.
func (r *Runner) WeighWithCacheInfo(ctx context.Context, data []byte, graphHash string, opts Options, stats *Stats) ([]weight.Edge, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	key := r.Keyer.WeightsKey(graphHash, opts.WeightsKeyOpts())

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if edges, err := edgeio.ReadJSON(bytes.NewReader(cached)); err == nil {
				observability.Cache().OnCacheHit(ctx, "weights")
				return edges, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "weights")
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.source())
	start := time.Now()
	g, err := graph.UnmarshalGraph(data)
	hooks.OnLoadComplete(ctx, opts.source(), countNodes(g), countLinks(g), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	h := graph.NewHierarchy(g)
	if stats != nil {
		stats.NodeCount = g.NodeCount()
		stats.LinkCount = g.LinkCount()
		stats.SeedCount = h.SeedCount()
	}
	r.Logger.Debug("loaded graph",
		"nodes", g.NodeCount(),
		"links", g.LinkCount(),
		"seeds", h.SeedCount())

	hooks.OnWeighStart(ctx, opts.Policy, h.SeedCount())
	start = time.Now()
	edges, err := weight.AssignHierarchy(h, opts.weight)
	hooks.OnWeighComplete(ctx, opts.Policy, len(edges), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if encoded, err := edgeio.Marshal(edges, edgeio.FormatJSON); err == nil {
		if err := r.Cache.Set(ctx, key, encoded, cache.TTLWeights); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "weights", len(encoded))
		}
	}
	return edges, false, nil
}

// Validate audits the per-parent budgets of edges.
func (r *Runner) Validate(ctx context.Context, edges []weight.Edge, epsilon float64) weight.Report {
	start := time.Now()
	report := weight.Validate(edges, epsilon)
	observability.Pipeline().OnValidate(ctx, len(report.Totals), len(report.Violations), time.Since(start))
	return report
}

// RenderWithCacheInfo draws edges as a node-link diagram, caching the
// artifact by the hash of the edges.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, edges []weight.Edge, format string, opts nodelink.Options) ([]byte, bool, error) {
	if err := nodelink.ValidateFormat(format); err != nil {
		return nil, false, err
	}
	encoded, err := edgeio.Marshal(edges, edgeio.FormatJSON)
	if err != nil {
		return nil, false, fmt.Errorf("serialize edges for cache key: %w", err)
	}
	key := r.Keyer.ArtifactKey(cache.Hash(encoded), cache.ArtifactKeyOpts{
		Format: format,
		Layout: opts.Layout,
		Root:   opts.Root,
		Links:  opts.Links,
	})

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	data, err := nodelink.Render(ctx, edges, format, opts)
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return data, false, nil
}

// Render is RenderWithCacheInfo without the cache hit flag.
func (r *Runner) Render(ctx context.Context, edges []weight.Edge, format string, opts nodelink.Options) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, edges, format, opts)
	return data, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func countNodes(g *graph.Graph) int {
	if g == nil {
		return 0
	}
	return g.NodeCount()
}

func countLinks(g *graph.Graph) int {
	if g == nil {
		return 0
	}
	return g.LinkCount()
}

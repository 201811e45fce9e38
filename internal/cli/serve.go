package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackweight/pkg/api"
	"github.com/matzehuels/stackweight/pkg/buildinfo"
	"github.com/matzehuels/stackweight/pkg/cache"
	"github.com/matzehuels/stackweight/pkg/observability"
	"github.com/matzehuels/stackweight/pkg/pipeline"
	"github.com/matzehuels/stackweight/pkg/weight"
)

// shutdownTimeout bounds how long in-flight requests may finish after a
// signal.
const shutdownTimeout = 10 * time.Second

type serveOpts struct {
	addr      string
	redisAddr string
	cacheSize int
	maxBody   int64
	timeout   time.Duration
	policy    string
	root      string
	retain    float64
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve weight assignment over HTTP",
		Long: `Serve runs the HTTP API:

  GET  /healthz       liveness probe
  GET  /version       build information
  POST /v1/weights    graph in, weighted edges out (?policy=&root=&retain=&format=)
  POST /v1/validate   weighted edges in, budget report out
  POST /v1/render     graph in, diagram out (?format=svg|dot|png|pdf)
  POST /v1/pairwise   graph in, pairwise-frontend payloads out

Results are cached in memory, or in redis when --redis-addr is set so that
several replicas share one cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "redis address or URL for a shared cache")
	cmd.Flags().IntVar(&opts.cacheSize, "cache-size", 0, "in-memory cache entries (default 1024)")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", 0, "maximum request body in bytes (default 32 MiB)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (default 60s)")
	cmd.Flags().StringVarP(&opts.policy, "policy", "p", "", "default policy for requests without ?policy")
	cmd.Flags().StringVar(&opts.root, "root", "", "default root sentinel")
	cmd.Flags().Float64Var(&opts.retain, "retain", 0, "default self-loop share")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	defaults := weight.Options{
		Policy: weight.Policy(pick(opts.policy, c.config.Policy)),
		Root:   pick(opts.root, c.config.Root),
		Retain: pickFloat(opts.retain, c.config.Retain),
	}
	if err := defaults.Validate(); err != nil {
		return err
	}

	store, err := c.serverCache(ctx, opts)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(store, cache.NewScopedKeyer(nil, buildinfo.Version), logger)
	defer runner.Close()

	hooks := observability.NewLogHooks(logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	maxBody := opts.maxBody
	if maxBody == 0 {
		maxBody = c.config.Server.MaxBodyBytes
	}
	timeout := opts.timeout
	if timeout == 0 {
		timeout = c.config.Server.Timeout
	}
	srv := api.New(api.Config{
		Addr:         pick(opts.addr, c.config.Server.Addr),
		MaxBodyBytes: maxBody,
		Timeout:      timeout,
		Defaults:     defaults,
	}, runner, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	logger.Info("listening", "addr", srv.Addr(), "policy", defaults.Policy, "root", defaults.Root)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// serverCache picks redis when an address is configured, an LRU otherwise.
func (c *CLI) serverCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	addr := pick(opts.redisAddr, c.config.Redis.Addr)
	if addr == "" {
		size := opts.cacheSize
		if size == 0 {
			size = c.config.Server.CacheSize
		}
		loggerFromContext(ctx).Debug("result cache", "kind", "memory", "size", size)
		return cache.NewMemoryCache(size)
	}

	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     addr,
		Password: c.config.Redis.Password,
		DB:       c.config.Redis.DB,
		Prefix:   c.config.Redis.Prefix,
	})
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Debug("result cache", "kind", "redis", "addr", addr)
	return rc, nil
}

package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, failures at
// error level. It implements all three hook interfaces.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to l, or to log.Default() if l is nil.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{Logger: l}
}

func (h *LogHooks) OnLoadStart(_ context.Context, source string) {
	h.Logger.Debug("loading graph", "source", source)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, source string, nodes, links int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Error("load failed", "source", source, "err", err)
		return
	}
	h.Logger.Debug("loaded graph", "source", source, "nodes", nodes, "links", links, "duration", d)
}

func (h *LogHooks) OnWeighStart(_ context.Context, policy string, seeds int) {
	h.Logger.Debug("assigning weights", "policy", policy, "seeds", seeds)
}

func (h *LogHooks) OnWeighComplete(_ context.Context, policy string, edges int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Error("weighting failed", "policy", policy, "err", err)
		return
	}
	h.Logger.Debug("assigned weights", "policy", policy, "edges", edges, "duration", d)
}

func (h *LogHooks) OnValidate(_ context.Context, parents, violations int, d time.Duration) {
	h.Logger.Debug("validated budgets", "parents", parents, "violations", violations, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.Logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.Logger.Info("response", "method", method, "route", route, "status", status, "duration", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)

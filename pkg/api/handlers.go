package api

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/stackweight/pkg/buildinfo"
	"github.com/matzehuels/stackweight/pkg/errors"
	"github.com/matzehuels/stackweight/pkg/graph"
	edgeio "github.com/matzehuels/stackweight/pkg/io"
	"github.com/matzehuels/stackweight/pkg/pipeline"
	"github.com/matzehuels/stackweight/pkg/render/nodelink"
	"github.com/matzehuels/stackweight/pkg/weight"
)

// weightsResponse is the JSON body of POST /v1/weights.
type weightsResponse struct {
	Policy    weight.Policy  `json:"policy"`
	Root      string         `json:"root"`
	GraphHash string         `json:"graph_hash"`
	Cached    bool           `json:"cached"`
	Edges     []weight.Edge  `json:"edges"`
	Report    weight.Report  `json:"report"`
	Stats     pipeline.Stats `json:"stats"`
}

// validateResponse is the JSON body of POST /v1/validate.
type validateResponse struct {
	OK         bool               `json:"ok"`
	Totals     map[string]float64 `json:"totals"`
	Violations []weight.Violation `json:"violations"`
}

var diagramTypes = map[string]string{
	nodelink.FormatSVG: "image/svg+xml",
	nodelink.FormatDOT: "text/vnd.graphviz; charset=utf-8",
	nodelink.FormatPNG: "image/png",
	nodelink.FormatPDF: "application/pdf",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleWeights(w http.ResponseWriter, r *http.Request) {
	format := edgeio.FormatJSON
	if strings.Contains(r.Header.Get("Accept"), "text/csv") {
		format = edgeio.FormatCSV
	}
	opts, err := s.pipelineOptions(r, format)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	setCacheHeader(w, res.CacheHit)
	if opts.Format == edgeio.FormatCSV {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Output)
		return
	}

	edges := res.Edges
	if edges == nil {
		edges = []weight.Edge{}
	}
	writeJSON(w, http.StatusOK, weightsResponse{
		Policy:    res.Policy,
		Root:      opts.Root,
		GraphHash: res.GraphHash,
		Cached:    res.CacheHit,
		Edges:     edges,
		Report:    res.Report,
		Stats:     res.Stats,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = edgeio.FormatJSON
		if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); strings.HasSuffix(mt, "csv") {
			format = edgeio.FormatCSV
		}
	}
	epsilon, err := parseFloat(q.Get("epsilon"), "epsilon")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	edges, err := edgeio.Decode(format, bytes.NewReader(body))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	report := s.runner.Validate(r.Context(), edges, epsilon)

	resp := validateResponse{OK: report.OK(), Totals: report.Totals, Violations: report.Violations}
	if resp.Violations == nil {
		resp.Violations = []weight.Violation{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = nodelink.FormatSVG
	}
	if err := nodelink.ValidateFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}
	links, err := parseBool(q.Get("links"), "links")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	// Edges are always produced as JSON here; format names the diagram.
	q.Del("format")
	r.URL.RawQuery = q.Encode()
	opts, err := s.pipelineOptions(r, edgeio.FormatJSON)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data, hit, err := s.runner.RenderWithCacheInfo(r.Context(), res.Edges, format, nodelink.Options{
		Root:   opts.Root,
		Layout: strings.ToUpper(q.Get("layout")),
		Links:  links,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	w.Header().Set("Content-Type", diagramTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handlePairwise(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	g, err := graph.UnmarshalGraph(body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, edgeio.BuildPairwise(g))
}

// pipelineOptions reads the graph body and the weighting query parameters,
// falling back to the server defaults.
func (s *Server) pipelineOptions(r *http.Request, defaultFormat string) (pipeline.Options, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return pipeline.Options{}, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "request body must be a node-link graph")
	}

	q := r.URL.Query()
	opts := pipeline.Options{
		Graph:  body,
		Policy: q.Get("policy"),
		Root:   q.Get("root"),
		Format: q.Get("format"),
	}
	if opts.Policy == "" {
		opts.Policy = s.cfg.Defaults.Policy.String()
	}
	if opts.Root == "" {
		opts.Root = s.cfg.Defaults.Root
	}
	if opts.Format == "" {
		opts.Format = defaultFormat
	}
	if opts.Retain, err = parseFloat(q.Get("retain"), "retain"); err != nil {
		return pipeline.Options{}, err
	}
	if opts.Retain == 0 {
		opts.Retain = s.cfg.Defaults.Retain
	}
	if opts.Refresh, err = parseBool(q.Get("refresh"), "refresh"); err != nil {
		return pipeline.Options{}, err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// fail logs server-side failures and writes the error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if _, status := classify(err); status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
	}
	writeError(w, r, err)
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
}

func parseFloat(v, name string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Configuration("invalid %s %q: not a number", name, v)
	}
	return f, nil
}

func parseBool(v, name string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Configuration("invalid %s %q: not a boolean", name, v)
	}
	return b, nil
}

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackweight/pkg/cache"
	"github.com/matzehuels/stackweight/pkg/errors"
	"github.com/matzehuels/stackweight/pkg/pipeline"
	"github.com/matzehuels/stackweight/pkg/weight"
)

const testGraph = `{
	"nodes": [
		{"id": "A", "level": 1},
		{"id": "B", "level": 1},
		{"id": "x", "level": 2},
		{"id": "y", "level": 2}
	],
	"links": [
		{"source": "A", "target": "x"},
		{"source": "A", "target": "y"}
	]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := cache.NewMemoryCache(32)
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(Config{MaxBodyBytes: 1 << 16}, pipeline.NewRunner(c, nil, logger), logger)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, contentType, strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthAndVersion(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
	if id := resp.Header.Get(RequestIDHeader); id == "" {
		t.Error("missing request ID header")
	}

	resp, err = http.Get(ts.URL + "/version")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	info := decode[map[string]string](t, resp)
	if info["version"] == "" {
		t.Errorf("version response = %v", info)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	ts := newTestServer(t)
	const id = "0b8f8e0a-6d3b-4f55-9c39-3a7f0c5d6e21"

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("request ID = %q, want %q", got, id)
	}

	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if got := resp2.Header.Get(RequestIDHeader); got == "not-a-uuid" || got == "" {
		t.Errorf("invalid request ID should be replaced, got %q", got)
	}
}

func TestWeightsJSON(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/v1/weights?policy=selfloop", "application/json", testGraph)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Cache") != "MISS" {
		t.Errorf("X-Cache = %q, want MISS", resp.Header.Get("X-Cache"))
	}
	body := decode[weightsResponse](t, resp)
	if body.Policy != weight.PolicySelfLoop || body.Root != "ethereum" {
		t.Errorf("policy/root = %v/%v", body.Policy, body.Root)
	}
	if len(body.Edges) != 6 {
		t.Errorf("got %d edges, want 6", len(body.Edges))
	}
	if !body.Report.OK() {
		t.Errorf("violations: %+v", body.Report.Violations)
	}

	again := post(t, ts.URL+"/v1/weights?policy=c", "application/json", testGraph)
	if again.Header.Get("X-Cache") != "HIT" {
		t.Errorf("repeat request X-Cache = %q, want HIT", again.Header.Get("X-Cache"))
	}
}

func TestWeightsCSV(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/v1/weights?policy=even&format=csv&root=optimism", "application/json", testGraph)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(data), "repo,parent,weight\nA,optimism,0.5\n") {
		t.Errorf("body =\n%s", data)
	}
}

func TestWeightsAcceptCSV(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/v1/weights?policy=half", strings.NewReader(testGraph))
	req.Header.Set("Accept", "text/csv")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(data), "repo,parent,weight\n") {
		t.Errorf("body =\n%s", data)
	}
}

func TestWeightsErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		query  string
		body   string
		status int
		code   errors.Code
	}{
		{"unknown policy", "?policy=d", testGraph, 400, errors.ErrCodeConfiguration},
		{"bad retain", "?policy=selfloop&retain=abc", testGraph, 400, errors.ErrCodeConfiguration},
		{"retain out of range", "?policy=selfloop&retain=1", testGraph, 400, errors.ErrCodeConfiguration},
		{"missing links", "", `{"nodes": []}`, 400, errors.ErrCodeStructural},
		{"not json", "", `nope`, 400, errors.ErrCodeStructural},
		{"empty body", "", ``, 400, errors.ErrCodeInvalidInput},
		{"bad format", "?format=xml", testGraph, 400, errors.ErrCodeInvalidFormat},
		{"too large", "", `{"nodes": [], "links": [], "pad": "` + strings.Repeat("x", 1<<16) + `"}`, 413, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/weights"+tt.query, "application/json", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			e := decode[errorResponse](t, resp)
			if e.Code != tt.code {
				t.Errorf("code = %v, want %v (%s)", e.Code, tt.code, e.Error)
			}
			if e.RequestID == "" {
				t.Error("error response missing request ID")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	ts := newTestServer(t)

	csv := "repo,parent,weight\nx,A,0.5\ny,A,0.6\nz,B,1\n"
	resp := post(t, ts.URL+"/v1/validate", "text/csv", csv)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[validateResponse](t, resp)
	if body.OK {
		t.Error("expected violations")
	}
	if len(body.Violations) != 1 || body.Violations[0].Parent != "A" {
		t.Errorf("violations = %+v", body.Violations)
	}

	jsonEdges := `[{"repo": "x", "parent": "A", "weight": 1}]`
	ok := decode[validateResponse](t, post(t, ts.URL+"/v1/validate", "application/json", jsonEdges))
	if !ok.OK || ok.Violations == nil {
		t.Errorf("clean table: %+v", ok)
	}

	bad := post(t, ts.URL+"/v1/validate?format=csv", "text/plain", "repo,parent\nx,A\n")
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed CSV status = %d", bad.StatusCode)
	}
}

func TestRenderDOT(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/v1/render?format=dot&policy=half&layout=lr", "application/json", testGraph)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"rankdir=LR", `"ethereum" -> "A"`, `"A" -> "x"`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("DOT missing %q:\n%s", want, data)
		}
	}

	bad := post(t, ts.URL+"/v1/render?format=gif", "application/json", testGraph)
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("bad format status = %d", bad.StatusCode)
	}
}

func TestPairwise(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/v1/pairwise", "application/json", testGraph)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[struct {
		Categories []string            `json:"categories"`
		Projects   map[string][]string `json:"projects"`
	}](t, resp)
	if strings.Join(body.Categories, ",") != "A,B" {
		t.Errorf("categories = %v", body.Categories)
	}
	if strings.Join(body.Projects["A"], ",") != "x,y" {
		t.Errorf("projects[A] = %v", body.Projects["A"])
	}
}

func TestRoutingErrors(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown route status = %d", resp.StatusCode)
	}

	resp2, err := http.Get(ts.URL + "/v1/weights")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/weights status = %d", resp2.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/v1/weights", nil)
	req.Header.Set("Origin", "https://example.org")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://example.org" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[errors.Code]int{
		errors.ErrCodeStructural:    400,
		errors.ErrCodeConfiguration: 400,
		errors.ErrCodeOverBudget:    422,
		errors.ErrCodeFileNotFound:  404,
		errors.ErrCodeTimeout:       504,
		errors.ErrCodeInternal:      500,
		"":                          500,
	}
	for code, want := range tests {
		if got := statusFor(code); got != want {
			t.Errorf("statusFor(%q) = %d, want %d", code, got, want)
		}
	}
}

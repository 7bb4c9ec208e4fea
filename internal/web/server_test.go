package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/pscan/internal/history"
	"github.com/harrison/pscan/internal/logger"
	"github.com/harrison/pscan/internal/scan"
	"github.com/harrison/pscan/internal/snapshot"
)

// newTestServer scans a fixture tree (param0 in {a,b,c} x param1 in
// {0,1,2} minus (c,2)) and returns a ready server.
func newTestServer(t *testing.T, withHistory bool) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	for _, p0 := range []string{"a", "b", "c"} {
		for _, p1 := range []string{"0", "1", "2"} {
			if p0 == "c" && p1 == "2" {
				continue
			}
			dir := filepath.Join(root, "param0_"+p0, "param1_"+p1)
			require.NoError(t, os.MkdirAll(dir, 0755))
			require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte(p0+p1), 0644))
		}
	}

	scanner, err := scan.New(`param0_(?P<param0>[^/]+)/param1_(?P<param1>[^/]+)/file\.txt`, root)
	require.NoError(t, err)
	holder, err := snapshot.NewHolder(context.Background(), scanner)
	require.NoError(t, err)

	var hist *history.Store
	if withHistory {
		hist, err = history.Open(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { hist.Close() })
	}

	return New(holder, hist, logger.NewConsole(nil, "info")), root
}

func getJSON(t *testing.T, srv *Server, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w
}

func TestHandleParams(t *testing.T) {
	srv, _ := newTestServer(t, false)

	var body struct {
		Params  []string `json:"params"`
		Records int      `json:"records"`
	}
	w := getJSON(t, srv, "/api/params", &body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"param0", "param1"}, body.Params)
	assert.Equal(t, 8, body.Records)
}

func TestHandleOptionsCrossFilter(t *testing.T) {
	srv, _ := newTestServer(t, false)

	state := url.QueryEscape(`{"param0":"c"}`)
	var body struct {
		Options map[string][]string `json:"options"`
	}
	w := getJSON(t, srv, "/api/options?state="+state, &body)

	require.Equal(t, http.StatusOK, w.Code)
	// param1 is filtered by param0=c; (c,2) does not exist.
	assert.Equal(t, []string{"0", "1"}, body.Options["param1"])
	// param0's own choice is excluded from its filter, so all values
	// stay selectable.
	assert.Equal(t, []string{"a", "b", "c"}, body.Options["param0"])
}

func TestHandleOptionsBadJSON(t *testing.T) {
	srv, _ := newTestServer(t, false)
	w := getJSON(t, srv, "/api/options?state=not-json", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleOptionsUnknownParam(t *testing.T) {
	srv, _ := newTestServer(t, false)
	state := url.QueryEscape(`{"bogus":"1"}`)
	w := getJSON(t, srv, "/api/options?state="+state, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "bogus")
}

func TestHandleFileResolves(t *testing.T) {
	srv, root := newTestServer(t, false)

	sel := url.QueryEscape(`{"param0":"a","param1":"0"}`)
	var body struct {
		Path    string `json:"path"`
		Preview struct {
			Kind    string `json:"kind"`
			Content string `json:"content"`
		} `json:"preview"`
	}
	w := getJSON(t, srv, "/api/file?selection="+sel, &body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, filepath.Join(root, "param0_a", "param1_0", "file.txt"), body.Path)
	assert.Equal(t, "text", body.Preview.Kind)
	assert.Equal(t, "a0", body.Preview.Content)
}

func TestHandleFileErrors(t *testing.T) {
	srv, _ := newTestServer(t, false)

	tests := []struct {
		name       string
		selection  string
		wantStatus int
	}{
		{name: "no match", selection: `{"param0":"c","param1":"2"}`, wantStatus: http.StatusNotFound},
		{name: "incomplete", selection: `{"param0":"a"}`, wantStatus: http.StatusBadRequest},
		{name: "unknown param", selection: `{"param0":"a","param1":"0","x":"y"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := getJSON(t, srv, "/api/file?selection="+url.QueryEscape(tt.selection), nil)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandleFileRecordsHistory(t *testing.T) {
	srv, _ := newTestServer(t, true)

	sel := url.QueryEscape(`{"param0":"b","param1":"1"}`)
	w := getJSON(t, srv, "/api/file?selection="+sel, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Resolutions []struct {
			Path      string            `json:"Path"`
			Selection map[string]string `json:"Selection"`
		} `json:"resolutions"`
	}
	w = getJSON(t, srv, "/api/history", &body)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, body.Resolutions, 1)
	assert.Equal(t, "b", body.Resolutions[0].Selection["param0"])
}

func TestHandleRefresh(t *testing.T) {
	srv, root := newTestServer(t, false)

	// Add a new file and rescan through the API.
	dir := filepath.Join(root, "param0_c", "param1_2")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte("c2"), 0644))

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Records int `json:"records"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 9, body.Records)
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t, false)

	var body struct {
		SnapshotID string `json:"snapshot_id"`
		Records    int    `json:"records"`
	}
	w := getJSON(t, srv, "/healthz", &body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, body.SnapshotID)
	assert.Equal(t, 8, body.Records)
}

func TestHandleUIAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, false)

	w := getJSON(t, srv, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<title>pscan</title>")

	// The "/" request above already incremented the counter, so the
	// scrape must show it.
	w = getJSON(t, srv, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "pscan_http_requests_total"))
}

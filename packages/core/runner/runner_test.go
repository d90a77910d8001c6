package runner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/abdul-hamid-achik/adminspec/packages/core/parser"
	"github.com/abdul-hamid-achik/adminspec/packages/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dashboardHTML = `<html><body>
<ul class="sidebar-menu">
  <li><a href="/admin/dashboard">Dashboard</a></li>
  <li class="treeview">
    <a href="#"><span>Analytics</span></a>
    <ul class="treeview-menu"><li><a href="/admin/reports">Reports</a></li></ul>
  </li>
</ul>
<div class="content-wrapper">
  <div class="alert alert-success fade in">Item "Acme" has been successfully created.</div>
</div>
</body></html>`

func adminServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		switch r.URL.Path {
		case "/admin/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/api/page":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"content": "<ul class=\"sidebar-menu\"><li><a href=\"/x\">Dashboard</a></li></ul>"}`))
		default:
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(dashboardHTML))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func writeCheckFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "admin.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewRunner(t *testing.T) {
	t.Run("with nil config", func(t *testing.T) {
		r := NewRunner(nil)
		assert.NotNil(t, r)
		assert.NotNil(t, r.loader)
		assert.NotNil(t, r.snapshots)
		assert.NotEmpty(t, r.RunID())
	})

	t.Run("with custom config", func(t *testing.T) {
		cfg := &Config{
			Environment: "test",
			Verbose:     true,
			Parallel:    true,
			Concurrency: 10,
		}
		r := NewRunner(cfg)
		assert.NotNil(t, r)
		assert.Equal(t, "test", r.config.Environment)
		assert.True(t, r.config.Verbose)
	})
}

func TestRunner_RunFile(t *testing.T) {
	server := adminServer(t, nil)

	content := `name: Admin smoke
variables:
  baseUrl: ` + server.URL + `
pages:
  - name: dashboard
    source: "{{baseUrl}}/admin/dashboard"
    checks:
      - menuExists
      - menuItemInGroupExists: { item: Reports, group: Analytics }
      - menuItemsEqual: ["Dashboard", {"Analytics": ["Reports"]}]
      - flashSuccessExists: "successfully created"
`
	path := writeCheckFile(t, t.TempDir(), content)

	r := NewRunner(&Config{})
	result, err := r.RunFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "Admin smoke", result.Name)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.Results, 1)

	page := result.Results[0]
	assert.True(t, page.Passed)
	assert.Equal(t, server.URL+"/admin/dashboard", page.Source)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Len(t, page.Checks, 4)
	assert.Empty(t, page.FailedChecks())
}

func TestRunner_RunFile_WithFailingCheck(t *testing.T) {
	server := adminServer(t, nil)

	content := `pages:
  - name: dashboard
    source: ` + server.URL + `/admin/dashboard
    checks:
      - menuItemExists: Reports
      - menuItemInGroupExists: { item: Reports, group: Dashboards }
`
	path := writeCheckFile(t, t.TempDir(), content)

	result, err := NewRunner(&Config{}).RunFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Passed)
	assert.Equal(t, 1, result.Failed)

	failed := result.Results[0].FailedChecks()
	require.Len(t, failed, 1)
	assert.Equal(t, `menu group "Dashboards" has no item "Reports"`, failed[0].Message)
}

func TestRunner_RunFile_LoadError(t *testing.T) {
	server := adminServer(t, nil)

	content := `pages:
  - name: gone
    source: ` + server.URL + `/admin/missing
    checks:
      - menuExists
`
	path := writeCheckFile(t, t.TempDir(), content)

	result, err := NewRunner(&Config{}).RunFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	require.Error(t, result.Results[0].Error)
	assert.Contains(t, result.Results[0].Error.Error(), "status 404")
	assert.Empty(t, result.Results[0].Checks)
}

func TestRunner_RunFile_ParseError(t *testing.T) {
	path := writeCheckFile(t, t.TempDir(), "pages:\n  - name: x\n    source: a.html\n    checks:\n      - nope\n")

	_, err := NewRunner(&Config{}).RunFile(context.Background(), path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing file")
	var validation *parser.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestRunner_RunFile_LocalSourceAndScope(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pages"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pages", "dashboard.html"), []byte(dashboardHTML), 0644))

	content := `pages:
  - name: scoped
    source: pages/dashboard.html
    scope: "//div[@class='content-wrapper']"
    checks:
      - menuNotExists
      - flashSuccessExists: Acme
  - name: bad scope
    source: pages/dashboard.html
    scope: "//section"
    checks:
      - menuExists
`
	path := writeCheckFile(t, dir, content)

	result, err := NewRunner(&Config{}).RunFile(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	assert.True(t, result.Results[0].Passed, "%v", result.Results[0].FailedChecks())
	assert.False(t, result.Results[1].Passed)
	assert.ErrorContains(t, result.Results[1].Error, `scope "//section"`)
}

func TestRunner_RunFile_JSONPath(t *testing.T) {
	server := adminServer(t, nil)

	content := `pages:
  - name: api
    source: ` + server.URL + `/api/page
    jsonPath: content
    checks:
      - menuItemsEqual: ["Dashboard"]
`
	path := writeCheckFile(t, t.TempDir(), content)

	result, err := NewRunner(&Config{}).RunFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed)
}

func TestRunner_Variables(t *testing.T) {
	server := adminServer(t, nil)

	content := `variables:
  item: Reports
pages:
  - name: dashboard
    source: "{{host}}/admin/dashboard"
    checks:
      - menuItemInGroupExists: { item: "{{item}}", group: "{{group}}" }
`
	path := writeCheckFile(t, t.TempDir(), content)

	var warnings []string
	r := NewRunner(&Config{
		Variables: map[string]any{"host": server.URL, "group": "Analytics"},
		WarnFunc: func(format string, args ...any) {
			warnings = append(warnings, format)
		},
	})
	result, err := r.RunFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed, "%v", result.Results[0].FailedChecks())
	assert.Empty(t, warnings)
}

func TestRunner_RunFile_WithSkip(t *testing.T) {
	var hits int32
	server := adminServer(t, &hits)

	content := `pages:
  - name: skipped
    source: ` + server.URL + `/admin/dashboard
    skip: "menu is being redesigned"
    checks:
      - menuExists
`
	path := writeCheckFile(t, t.TempDir(), content)

	result, err := NewRunner(&Config{}).RunFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Passed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 1, result.Skipped)
	assert.True(t, result.Results[0].Skipped)
	assert.Equal(t, "menu is being redesigned", result.Results[0].SkipReason)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestRunner_Only(t *testing.T) {
	server := adminServer(t, nil)

	content := `pages:
  - name: first
    source: ` + server.URL + `/admin/dashboard
  - name: focused
    source: ` + server.URL + `/admin/dashboard
    only: true
`
	path := writeCheckFile(t, t.TempDir(), content)

	result, err := NewRunner(&Config{}).RunFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "filtered out", result.Results[0].SkipReason)
}

func TestRunner_NameFilter(t *testing.T) {
	server := adminServer(t, nil)

	content := `pages:
  - name: user list
    source: ` + server.URL + `/admin/dashboard
  - name: user edit
    source: ` + server.URL + `/admin/dashboard
  - name: company list
    source: ` + server.URL + `/admin/dashboard
`
	path := writeCheckFile(t, t.TempDir(), content)

	result, err := NewRunner(&Config{NameFilter: "user*"}).RunFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 1, result.Skipped)
}

func TestRunner_TagsFilter(t *testing.T) {
	server := adminServer(t, nil)

	content := `pages:
  - name: smoke
    source: ` + server.URL + `/admin/dashboard
    tags: [smoke, menu]
  - name: forms
    source: ` + server.URL + `/admin/dashboard
    tags: [forms]
`
	path := writeCheckFile(t, t.TempDir(), content)

	result, err := NewRunner(&Config{TagsFilter: []string{"smoke"}}).RunFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Skipped)
}

func TestRunner_Bail(t *testing.T) {
	var hits int32
	server := adminServer(t, &hits)

	content := `pages:
  - name: first
    source: ` + server.URL + `/admin/missing
  - name: second
    source: ` + server.URL + `/admin/dashboard
`
	path := writeCheckFile(t, t.TempDir(), content)

	result, err := NewRunner(&Config{Bail: true}).RunFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits)) // Should stop after first failure
}

func TestRunner_DryRun(t *testing.T) {
	var hits int32
	server := adminServer(t, &hits)

	content := `pages:
  - name: dashboard
    source: ` + server.URL + `/admin/dashboard
`
	path := writeCheckFile(t, t.TempDir(), content)

	result, err := NewRunner(&Config{DryRun: true}).RunFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "dry run", result.Results[0].SkipReason)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestRunner_Parallel(t *testing.T) {
	var hits int32
	server := adminServer(t, &hits)

	content := `pages:
  - name: p1
    source: ` + server.URL + `/admin/dashboard
    checks: [menuExists]
  - name: p2
    source: ` + server.URL + `/admin/dashboard
    checks: [menuExists]
  - name: p3
    source: ` + server.URL + `/admin/missing
  - name: p4
    source: ` + server.URL + `/admin/dashboard
    checks: [menuExists]
`
	path := writeCheckFile(t, t.TempDir(), content)

	result, err := NewRunner(&Config{Parallel: true, Concurrency: 2}).RunFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 3, result.Passed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, int32(4), atomic.LoadInt32(&hits))

	names := make([]string, 0, len(result.Results))
	for _, pr := range result.Results {
		names = append(names, pr.Name)
	}
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, names, "results keep file order")
}

func TestRunner_ParallelBail(t *testing.T) {
	server := adminServer(t, nil)

	content := `pages:
  - name: first
    source: ` + server.URL + `/admin/missing
  - name: second
    source: ` + server.URL + `/admin/dashboard
`
	path := writeCheckFile(t, t.TempDir(), content)

	result, err := NewRunner(&Config{Parallel: true, Concurrency: 1, Bail: true}).RunFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	require.True(t, result.Results[1].Skipped)
	assert.Equal(t, "skipped after failure (--bail)", result.Results[1].SkipReason)
}

func TestRunner_Cancelled(t *testing.T) {
	var hits int32
	server := adminServer(t, &hits)

	content := `pages:
  - name: first
    source: ` + server.URL + `/admin/dashboard
  - name: second
    source: ` + server.URL + `/admin/dashboard
`
	path := writeCheckFile(t, t.TempDir(), content)

	for _, parallel := range []bool{false, true} {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := NewRunner(&Config{Parallel: parallel, Bail: true}).RunFile(ctx, path)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Skipped, "parallel=%v", parallel)
		for _, pr := range result.Results {
			assert.Equal(t, "run cancelled", pr.SkipReason, "parallel=%v", parallel)
		}
	}
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestRunner_MenuSnapshot(t *testing.T) {
	server := adminServer(t, nil)
	dir := t.TempDir()

	content := `pages:
  - name: dashboard
    source: ` + server.URL + `/admin/dashboard
    checks:
      - menuSnapshot: sidebar
`
	path := writeCheckFile(t, dir, content)

	result, err := NewRunner(&Config{}).RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed, "no snapshot yet")

	result, err = NewRunner(&Config{UpdateSnapshots: true}).RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed)
	assert.FileExists(t, snapshot.FilePath(path))

	result, err = NewRunner(&Config{}).RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed)
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		expected bool
	}{
		{"exact match", "testName", true},
		{"prefix match", "test*", true},
		{"suffix match", "*Name", true},
		{"contains match", "*stNa*", true},
		{"no match", "other*", false},
		{"empty pattern", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name+" - "+tt.pattern, func(t *testing.T) {
			result := matchesPattern("testName", tt.pattern)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestHasAnyTag(t *testing.T) {
	tests := []struct {
		tags     []string
		filters  []string
		expected bool
	}{
		{[]string{"smoke", "api"}, []string{"smoke"}, true},
		{[]string{"smoke", "api"}, []string{"integration"}, false},
		{[]string{"smoke", "api"}, []string{"smoke", "integration"}, true},
		{[]string{}, []string{"smoke"}, false},
		{[]string{"smoke"}, []string{}, false},
	}

	for _, tt := range tests {
		result := hasAnyTag(tt.tags, tt.filters)
		assert.Equal(t, tt.expected, result)
	}
}

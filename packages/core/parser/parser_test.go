package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/adminspec/packages/sonata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smokeFile = `name: Admin smoke
variables:
  baseUrl: http://localhost:8000
  retries: 3
pages:
  - name: dashboard
    source: "{{baseUrl}}/admin/dashboard"
    tags: [smoke, menu]
    checks:
      - menuExists
      - menuItemExists: Reports
      - menuItemInGroupExists: { item: Reports, group: Analytics }
      - menuItemsEqual: ["Dashboard", {"Analytics": ["Reports"]}]
  - name: user edit
    source: fixtures/user_edit.html
    scope: "//form"
    skip: "form redesign in progress"
    checks:
      - textFieldValueEquals: { label: Name, value: John }
      - numberFieldValueEquals: { label: Age, value: 42 }
      - selectFieldValueEquals: { label: Country, value: "" }
      - multiSelectFieldValuesEqual: { label: Tags, values: [1, 2] }
      - subAdminTableRowCount: { label: Addresses, count: 2, within: "//div[@id='tab_1']" }
      - flashErrorCount: 0
`

func TestParse_CheckFile(t *testing.T) {
	file, err := Parse(smokeFile, "smoke.yaml")
	require.NoError(t, err)

	assert.Equal(t, "Admin smoke", file.Name)
	require.Len(t, file.Variables, 2)
	assert.Equal(t, "baseUrl", file.Variables[0].Name)
	assert.Equal(t, "http://localhost:8000", file.Variables[0].Value)
	assert.Equal(t, "3", file.Variables[1].Value)

	require.Len(t, file.Pages, 2)

	dashboard := file.Pages[0]
	assert.Equal(t, "dashboard", dashboard.Name)
	assert.Equal(t, "{{baseUrl}}/admin/dashboard", dashboard.Source)
	assert.Equal(t, []string{"smoke", "menu"}, dashboard.Tags)
	assert.Equal(t, 6, dashboard.Line)
	require.Len(t, dashboard.Checks, 4)

	assert.Equal(t, KindMenuExists, dashboard.Checks[0].Kind)
	assert.Empty(t, dashboard.Checks[0].Args.Set)

	assert.Equal(t, KindMenuItemExists, dashboard.Checks[1].Kind)
	assert.Equal(t, "Reports", dashboard.Checks[1].Args.Item)
	assert.Equal(t, 11, dashboard.Checks[1].Line)

	inGroup := dashboard.Checks[2].Args
	assert.Equal(t, "Reports", inGroup.Item)
	assert.Equal(t, "Analytics", inGroup.Group)

	assert.Equal(t,
		sonata.Menu{sonata.Leaf("Dashboard"), sonata.NewGroup("Analytics", sonata.Leaf("Reports"))},
		dashboard.Checks[3].Args.Menu)

	edit := file.Pages[1]
	assert.Equal(t, "//form", edit.Scope)
	assert.Equal(t, "form redesign in progress", edit.Skip)
	require.Len(t, edit.Checks, 6)
	assert.Equal(t, "42", edit.Checks[1].Args.Value)
	assert.True(t, edit.Checks[2].Args.Has("value"))
	assert.Equal(t, "", edit.Checks[2].Args.Value)
	assert.Equal(t, []string{"1", "2"}, edit.Checks[3].Args.Values)
	assert.Equal(t, 2, edit.Checks[4].Args.Count)
	assert.Equal(t, "//div[@id='tab_1']", edit.Checks[4].Args.Within)
	assert.Equal(t, KindFlashErrorCount, edit.Checks[5].Kind)
	assert.True(t, edit.Checks[5].Args.Has("count"))
}

func TestParse_SemanticErrors(t *testing.T) {
	tests := []struct {
		name    string
		checks  string
		message string
	}{
		{
			name:    "unknown kind",
			checks:  "      - menuItemExist: Reports",
			message: `unknown check kind "menuItemExist"`,
		},
		{
			name:    "missing argument",
			checks:  "      - menuItemInGroupExists: { item: Reports }",
			message: `menuItemInGroupExists: missing required argument "group"`,
		},
		{
			name:    "unused argument",
			checks:  "      - menuItemExists: { item: Reports, label: X }",
			message: `menuItemExists: argument "label" is not used by this check`,
		},
		{
			name:    "shorthand without primary",
			checks:  "      - selectOptionExists: Status",
			message: "selectOptionExists takes named arguments (label, option)",
		},
		{
			name:    "bad menu",
			checks:  "      - menuItemsEqual: { menu: [[\"A\"]] }",
			message: "expected menu label or group",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "pages:\n  - name: p\n    source: p.html\n    checks:\n" + tt.checks + "\n"
			_, err := Parse(input, "checks.yaml")
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.NotEmpty(t, verr.Problems)
			assert.Equal(t, 5, verr.Problems[0].Line)
			assert.Contains(t, err.Error(), tt.message)
			assert.Contains(t, err.Error(), "checks.yaml:5:")
		})
	}
}

func TestParse_DuplicatePageNames(t *testing.T) {
	input := `pages:
  - name: list
    source: a.html
  - name: list
    source: b.html
`
	_, err := Parse(input, "dup.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `dup.yaml:4:5: duplicate page name "list"`)
}

func TestParse_SchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
		line  int
	}{
		{
			name:  "missing pages",
			input: "name: nothing\n",
			field: "pages",
			line:  1,
		},
		{
			name:  "unknown page key",
			input: "pages:\n  - name: p\n    source: p.html\n    url: http://x\n",
			field: "pages.0",
			line:  2,
		},
		{
			name:  "page without source",
			input: "pages:\n  - name: p\n    checks: []\n",
			field: "source",
			line:  2,
		},
		{
			name:  "negative count",
			input: "pages:\n  - name: p\n    source: p.html\n    checks:\n      - flashErrorCount: { count: -1 }\n",
			field: "pages.0.checks.0",
			line:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, "schema.yaml")
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.NotEmpty(t, verr.Problems)
			assert.Contains(t, err.Error(), tt.field)

			lines := make([]int, len(verr.Problems))
			for i, p := range verr.Problems {
				lines[i] = p.Line
			}
			assert.Contains(t, lines, tt.line)
		})
	}
}

func TestParse_YAMLSyntaxError(t *testing.T) {
	_, err := Parse("pages:\n  - name: [unclosed\n", "broken.yaml")
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "broken.yaml", perr.File)
	assert.Positive(t, perr.Line)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse("", "empty.yaml")
	assert.ErrorContains(t, err, "empty check file")
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smoke.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smokeFile), 0644))

	file, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, file.Path)
	assert.Len(t, file.Pages, 2)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCheck_String(t *testing.T) {
	file, err := Parse(smokeFile, "smoke.yaml")
	require.NoError(t, err)

	checks := file.Pages[0].Checks
	assert.Equal(t, "menuExists()", checks[0].String())
	assert.Equal(t, `menuItemInGroupExists(item="Reports", group="Analytics")`, checks[2].String())
	assert.Equal(t, "menuItemsEqual(menu=3 entries)", checks[3].String())

	edit := file.Pages[1].Checks
	assert.Equal(t, `multiSelectFieldValuesEqual(label="Tags", values=["1", "2"])`, edit[3].String())
	assert.Equal(t, `subAdminTableRowCount(label="Addresses", count=2, within="//div[@id='tab_1']")`, edit[4].String())
}

func TestKinds(t *testing.T) {
	names := KindNames()
	assert.Contains(t, names, "menuItemsEqual")
	assert.IsIncreasing(t, names)

	for kind, spec := range Kinds {
		assert.NotEmpty(t, spec.Description, kind)
		if spec.Primary != "" {
			assert.Contains(t, spec.Required, spec.Primary, kind)
		}
	}
}

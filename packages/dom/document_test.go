package dom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><body>
<div id="main">
  <ul class="list">
    <li><a href="/a">  First
       item </a></li>
    <li><a href="/b">Second</a></li>
  </ul>
  <input type="text" value="  spaced   value ">
</div>
<div id="other"><a href="/c">Outside</a></div>
</body></html>`

func parseSample(t *testing.T) *Document {
	t.Helper()
	doc, err := ParseString(samplePage)
	require.NoError(t, err)
	return doc
}

func TestDocument_XPath(t *testing.T) {
	doc := parseSample(t)

	nodes, err := doc.XPath("//ul[@class='list']/li/a")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "First item", Text(nodes[0]))
	assert.Equal(t, "/b", Attr(nodes[1], "href"))
}

func TestDocument_XPath_Invalid(t *testing.T) {
	doc := parseSample(t)

	_, err := doc.XPath("//ul[")
	assert.Error(t, err)
}

func TestDocument_XPath_NestedMatchesAreUnique(t *testing.T) {
	doc, err := ParseString(`<ul>
  <li><a>Top</a>
    <ul>
      <li><a>Middle</a>
        <ul><li><a>Deep</a></li></ul>
      </li>
    </ul>
  </li>
  <li><a>Last</a></li>
</ul>`)
	require.NoError(t, err)

	nodes, err := doc.XPath("//li//a")
	require.NoError(t, err)

	var labels []string
	for _, n := range nodes {
		labels = append(labels, Text(n))
	}
	assert.Equal(t, []string{"Top", "Middle", "Deep", "Last"}, labels)

	count, err := doc.Count("//li//a[normalize-space()='Deep']")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	values, err := parseSample(t).XPath("//a/@href")
	require.NoError(t, err)
	assert.Len(t, values, 3)
}

func TestDocument_Scope(t *testing.T) {
	doc := parseSample(t)

	t.Run("relative paths stay inside the scope", func(t *testing.T) {
		main, err := doc.Scope("//div[@id='main']")
		require.NoError(t, err)

		count, err := main.Count(".//a")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("missing scope", func(t *testing.T) {
		_, err := doc.Scope("//section")
		assert.Error(t, err)
	})
}

func TestDocument_First(t *testing.T) {
	doc := parseSample(t)

	n, err := doc.First("//table")
	require.NoError(t, err)
	assert.Nil(t, n)

	n, err = doc.First("//a")
	require.NoError(t, err)
	assert.Equal(t, "/a", Attr(n, "href"))
}

func TestDocument_EvaluateString(t *testing.T) {
	doc := parseSample(t)

	tests := []struct {
		name     string
		expr     string
		expected string
	}{
		{name: "normalize attribute", expr: "normalize-space(//input/@value)", expected: "spaced value"},
		{name: "count", expr: "count(//li)", expected: "2"},
		{name: "boolean", expr: "boolean(//table)", expected: "false"},
		{name: "missing node", expr: "normalize-space(//textarea)", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := doc.EvaluateString(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDocument_CSS(t *testing.T) {
	doc := parseSample(t)

	nodes, err := doc.CSS("ul.list > li")
	require.NoError(t, err)
	assert.Len(t, nodes, 2)

	_, err = doc.CSS("ul[")
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(samplePage), 0644))

	doc, err := ParseFile(path)
	require.NoError(t, err)
	assert.Contains(t, doc.HTML(), "Outside")

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

func TestHasAttr(t *testing.T) {
	doc, err := ParseString(`<input type="checkbox" checked>`)
	require.NoError(t, err)

	n, err := doc.First("//input")
	require.NoError(t, err)
	assert.True(t, HasAttr(n, "checked"))
	assert.False(t, HasAttr(n, "disabled"))
	assert.False(t, HasAttr(nil, "checked"))
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{in: "plain", expected: "'plain'"},
		{in: "Founder's", expected: `"Founder's"`},
		{in: `say "hi"`, expected: `'say "hi"'`},
		{in: `it's "x"`, expected: `concat('it', "'", 's "x"')`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, Literal(tt.in))
		})
	}
}

func TestLiteral_MatchesDocumentText(t *testing.T) {
	doc, err := ParseString(`<p>it's "quoted"</p>`)
	require.NoError(t, err)

	count, err := doc.Count("//p[normalize-space()=" + Literal(`it's "quoted"`) + "]")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNormalizeSpace(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeSpace("  a \n\t b   c "))
	assert.Equal(t, "", NormalizeSpace(" \n "))
}

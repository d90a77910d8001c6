package dom

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// Document is a queryable HTML tree rooted at a single node.
type Document struct {
	root *html.Node
}

func Parse(r io.Reader) (*Document, error) {
	root, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return &Document{root: root}, nil
}

func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

func ParseBytes(b []byte) (*Document, error) {
	return Parse(bytes.NewReader(b))
}

func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// FromNode returns a Document rooted at n. Relative expressions evaluated
// on it only see n and its descendants.
func FromNode(n *html.Node) *Document {
	return &Document{root: n}
}

func (d *Document) Root() *html.Node {
	return d.root
}

// XPath returns all nodes matching expr, in document order.
func (d *Document) XPath(expr string) ([]*html.Node, error) {
	nodes, err := htmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	return uniqueInDocumentOrder(nodes), nil
}

// uniqueInDocumentOrder turns the engine's match list into a node-set.
// htmlquery yields a node once per path that reaches it, so //li//a returns
// a nested link once for every enclosing li.
func uniqueInDocumentOrder(nodes []*html.Node) []*html.Node {
	if len(nodes) < 2 {
		return nodes
	}

	seen := make(map[*html.Node]struct{}, len(nodes))
	out := nodes[:0:0]
	for _, n := range nodes {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) < 2 {
		return out
	}

	top := out[0]
	for top.Parent != nil {
		top = top.Parent
	}
	position := make(map[*html.Node]int, len(out))
	i := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if _, ok := seen[n]; ok {
			position[n] = i
		}
		i++
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(top)
	// attribute matches are detached copies; keep the engine's order
	if len(position) != len(out) {
		return out
	}

	sort.SliceStable(out, func(a, b int) bool {
		return position[out[a]] < position[out[b]]
	})
	return out
}

// First returns the first node matching expr, or nil when nothing matches.
func (d *Document) First(expr string) (*html.Node, error) {
	nodes, err := d.XPath(expr)
	if err != nil || len(nodes) == 0 {
		return nil, err
	}
	return nodes[0], nil
}

func (d *Document) Count(expr string) (int, error) {
	nodes, err := d.XPath(expr)
	if err != nil {
		return 0, err
	}
	return len(nodes), nil
}

// Scope narrows the document to the first node matching expr.
func (d *Document) Scope(expr string) (*Document, error) {
	n, err := d.First(expr)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("no element matches %q", expr)
	}
	return FromNode(n), nil
}

// Evaluate runs a scalar XPath expression (normalize-space, count, boolean
// tests) and returns the engine's raw result.
func (d *Document) Evaluate(expr string) (any, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	return compiled.Evaluate(htmlquery.CreateXPathNavigator(d.root)), nil
}

// EvaluateString is Evaluate with the result converted to a string the way
// XPath's string() function would.
func (d *Document) EvaluateString(expr string) (string, error) {
	v, err := d.Evaluate(expr)
	if err != nil {
		return "", err
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	case *xpath.NodeIterator:
		if val.MoveNext() {
			return val.Current().Value(), nil
		}
		return "", nil
	default:
		return fmt.Sprintf("%v", val), nil
	}
}

// CSS returns the descendants of the root matching selector.
func (d *Document) CSS(selector string) ([]*html.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return goquery.NewDocumentFromNode(d.root).FindMatcher(sel).Nodes, nil
}

// HTML renders the root node and its children.
func (d *Document) HTML() string {
	return htmlquery.OutputHTML(d.root, true)
}

// Text returns the text content of n with whitespace normalized.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	return NormalizeSpace(htmlquery.InnerText(n))
}

// Attr returns the value of attribute name on n, or "" when absent.
func Attr(n *html.Node, name string) string {
	if n == nil {
		return ""
	}
	return htmlquery.SelectAttr(n, name)
}

func HasAttr(n *html.Node, name string) bool {
	if n == nil {
		return false
	}
	return htmlquery.ExistsAttr(n, name)
}

// NormalizeSpace trims s and collapses internal whitespace runs to a single
// space, matching XPath normalize-space().
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Literal quotes s as an XPath string literal. Strings holding both quote
// characters are built with concat().
func Literal(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if p != "" {
			quoted = append(quoted, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

package sonata

import (
	"github.com/abdul-hamid-achik/adminspec/packages/dom"
	"github.com/stretchr/testify/assert"
	"golang.org/x/net/html"
)

// TestingT is where failures are reported. *testing.T satisfies it.
type TestingT = assert.TestingT

// fromScope starts a lookup at the context node itself, so a document
// scoped to the form or the sidebar list still matches that element.
const fromScope = "descendant-or-self::"

type tHelper interface {
	Helper()
}

func helper(t TestingT) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
}

// query runs expr and reports an engine error as a failure.
func query(t TestingT, doc *dom.Document, expr string) ([]*html.Node, bool) {
	helper(t)
	nodes, err := doc.XPath(expr)
	if err != nil {
		return nil, assert.Fail(t, err.Error())
	}
	return nodes, true
}

// assertCount fails unless expr matches exactly want nodes.
func assertCount(t TestingT, doc *dom.Document, want int, expr, msg string) bool {
	helper(t)
	nodes, ok := query(t, doc, expr)
	if !ok {
		return false
	}
	return assert.Equal(t, want, len(nodes), msg)
}

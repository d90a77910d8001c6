package sonata

import (
	"fmt"

	"github.com/abdul-hamid-achik/adminspec/packages/dom"
)

func batchActionXPath(title string) string {
	return ".//select[@name='action']/option[normalize-space()=" + dom.Literal(title) + "]"
}

// AssertBatchActionExists asserts that the batch action selector of a list
// page offers title.
func AssertBatchActionExists(t TestingT, doc *dom.Document, title string) bool {
	helper(t)
	return assertCount(t, doc, 1, batchActionXPath(title),
		fmt.Sprintf("there is no batch action %q on the page", title))
}

func AssertBatchActionNotExists(t TestingT, doc *dom.Document, title string) bool {
	helper(t)
	return assertCount(t, doc, 0, batchActionXPath(title),
		fmt.Sprintf("there is a batch action %q on the page", title))
}

// BatchActions lists the titles offered by the batch action selector.
func BatchActions(doc *dom.Document) ([]string, error) {
	nodes, err := doc.XPath(".//select[@name='action']/option")
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(nodes))
	for _, n := range nodes {
		titles = append(titles, dom.Text(n))
	}
	return titles, nil
}

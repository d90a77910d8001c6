package sonata

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/adminspec/packages/dom"
	"github.com/stretchr/testify/assert"
)

const tabLabelsContainerXPath = "ul[contains(@class, 'nav-tabs')]"

func tabLabelXPath(label string) string {
	return tabLabelsContainerXPath + "/li//a[normalize-space()=" + dom.Literal(label) + "]"
}

func tabPaneXPath(paneID string) string {
	return tabLabelsContainerXPath + "/following-sibling::div" +
		"/descendant-or-self::div[contains(@class, 'tab-pane') and @id=" + dom.Literal(paneID) + "]"
}

// AssertTabExists asserts that doc has a tab labelled label together with
// the pane the label points to. doc should be scoped to the element holding
// both the nav-tabs list and the tab panes.
func AssertTabExists(t TestingT, doc *dom.Document, label string) bool {
	helper(t)
	if !AssertTabLabelExists(t, doc, label) {
		return false
	}
	return AssertTabPaneExists(t, doc, label)
}

func AssertTabNotExists(t TestingT, doc *dom.Document, label string) bool {
	helper(t)
	return AssertTabLabelNotExists(t, doc, label)
}

func AssertTabLabelExists(t TestingT, doc *dom.Document, label string) bool {
	helper(t)
	return assertCount(t, doc, 1, ".//"+tabLabelXPath(label),
		fmt.Sprintf("tab with label %q not found", label))
}

func AssertTabLabelNotExists(t TestingT, doc *dom.Document, label string) bool {
	helper(t)
	return assertCount(t, doc, 0, ".//"+tabLabelXPath(label),
		fmt.Sprintf("tab with label %q found", label))
}

// AssertTabPaneExists follows the href of the tab labelled label and
// asserts that the matching tab pane exists.
func AssertTabPaneExists(t TestingT, doc *dom.Document, label string) bool {
	helper(t)

	links, ok := query(t, doc, ".//"+tabLabelXPath(label))
	if !ok {
		return false
	}
	if len(links) == 0 {
		return assert.Fail(t, fmt.Sprintf("tab with label %q not found", label))
	}

	paneID := strings.TrimPrefix(dom.Attr(links[0], "href"), "#")

	return assertCount(t, doc, 1, ".//"+tabPaneXPath(paneID),
		fmt.Sprintf("pane for tab with label %q not found", label))
}

// TabLabels returns the labels of every tab in doc, in document order.
func TabLabels(doc *dom.Document) ([]string, error) {
	links, err := doc.XPath(".//" + tabLabelsContainerXPath + "/li//a")
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(links))
	for _, link := range links {
		labels = append(labels, dom.Text(link))
	}
	return labels, nil
}

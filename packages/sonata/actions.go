package sonata

import (
	"fmt"

	"github.com/abdul-hamid-achik/adminspec/packages/dom"
)

func actionButtonXPath(title string) string {
	return ".//a[contains(@class, 'sonata-action-element') and normalize-space()=" + dom.Literal(title) + "]"
}

// AssertActionButtonExists asserts that the "Actions" menu of a list or
// edit page offers exactly one entry titled title.
func AssertActionButtonExists(t TestingT, doc *dom.Document, title string) bool {
	helper(t)
	return assertCount(t, doc, 1, actionButtonXPath(title),
		fmt.Sprintf("there is no action %q on the page", title))
}

func AssertActionButtonNotExists(t TestingT, doc *dom.Document, title string) bool {
	helper(t)
	return assertCount(t, doc, 0, actionButtonXPath(title),
		fmt.Sprintf("there is an action %q on the page", title))
}

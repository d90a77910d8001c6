package sonata

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/adminspec/packages/dom"
	"github.com/stretchr/testify/assert"
	"golang.org/x/net/html"
)

const fieldContainerXPath = "div[contains(@class, 'sonata-ba-field')]"

func formFieldLabelXPath(label string) string {
	return `form//div[contains(@class, "form-group")]` +
		"/label[contains(@class, 'control-label') and normalize-space()=" + dom.Literal(label) + "]"
}

func formFieldXPath(label, input string) string {
	return formFieldLabelXPath(label) + "/following-sibling::" + fieldContainerXPath + "//" + input
}

func formTextFieldXPath(label string) string {
	return formFieldXPath(label, "input[@type='text' and contains(@class, 'form-control')]")
}

func formNumberFieldXPath(label string) string {
	return formFieldXPath(label, "input[@type='number' and contains(@class, 'form-control')]")
}

func formTextareaFieldXPath(label string) string {
	return formFieldXPath(label, "textarea[contains(@class, 'form-control')]")
}

func formFileFieldXPath(label string) string {
	return formFieldXPath(label, "input[@type='file']")
}

func formSelectFieldXPath(label string) string {
	return formFieldXPath(label, "select[contains(@class, 'form-control')]")
}

// Autocomplete selects carry no distinguishing class, so any select in the
// field container matches.
func formAutocompleteFieldXPath(label string) string {
	return formFieldXPath(label, "select")
}

func formCheckboxFieldXPath(label string) string {
	return "form//" + fieldContainerXPath +
		"//label/span[contains(@class, 'control-label__text') and normalize-space()=" + dom.Literal(label) + "]" +
		"/preceding-sibling::input[@type='checkbox']"
}

func formActionButtonXPath(title string) string {
	container := ".//div[contains(@class, 'sonata-ba-form-actions')]"
	text := "normalize-space()=" + dom.Literal(title)
	return "(" + container + "/button[@type='submit' and " + text + "] | " + container + "/a[" + text + "])"
}

func fieldNotFound(label string) string {
	return fmt.Sprintf("field with label %q not found", label)
}

func valueMismatch(label string) string {
	return fmt.Sprintf("the value in the input field %q does not match what is expected", label)
}

// AssertFormTextFieldExists asserts that the form has exactly one text
// input labelled label.
func AssertFormTextFieldExists(t TestingT, doc *dom.Document, label string) bool {
	helper(t)
	return assertCount(t, doc, 1, fromScope+formTextFieldXPath(label), fieldNotFound(label))
}

// AssertFormTextFieldValueEquals asserts that the text input labelled label
// holds expected once whitespace is normalized.
func AssertFormTextFieldValueEquals(t TestingT, doc *dom.Document, label, expected string) bool {
	helper(t)
	if !AssertFormTextFieldExists(t, doc, label) {
		return false
	}
	return assertNormalizedEquals(t, doc, fromScope+formTextFieldXPath(label)+"/@value", expected, valueMismatch(label))
}

func AssertFormNumberFieldExists(t TestingT, doc *dom.Document, label string) bool {
	helper(t)
	return assertCount(t, doc, 1, fromScope+formNumberFieldXPath(label), fieldNotFound(label))
}

func AssertFormNumberFieldValueEquals(t TestingT, doc *dom.Document, label, expected string) bool {
	helper(t)
	if !AssertFormNumberFieldExists(t, doc, label) {
		return false
	}
	return assertNormalizedEquals(t, doc, fromScope+formNumberFieldXPath(label)+"/@value", expected, valueMismatch(label))
}

func AssertFormTextareaFieldExists(t TestingT, doc *dom.Document, label string) bool {
	helper(t)
	return assertCount(t, doc, 1, fromScope+formTextareaFieldXPath(label), fieldNotFound(label))
}

func AssertFormTextareaFieldValueEquals(t TestingT, doc *dom.Document, label, expected string) bool {
	helper(t)
	if !AssertFormTextareaFieldExists(t, doc, label) {
		return false
	}
	return assertNormalizedEquals(t, doc, fromScope+formTextareaFieldXPath(label), expected, valueMismatch(label))
}

func assertNormalizedEquals(t TestingT, doc *dom.Document, expr, expected, msg string) bool {
	helper(t)
	actual, err := doc.EvaluateString("normalize-space(" + expr + ")")
	if err != nil {
		return assert.Fail(t, err.Error())
	}
	return assert.Equal(t, expected, actual, msg)
}

func AssertFormCheckboxFieldExists(t TestingT, doc *dom.Document, label string) bool {
	helper(t)
	return assertCount(t, doc, 1, fromScope+formCheckboxFieldXPath(label), fieldNotFound(label))
}

// AssertFormCheckboxFieldChecked asserts that the checkbox labelled label
// exists and carries the checked attribute.
func AssertFormCheckboxFieldChecked(t TestingT, doc *dom.Document, label string) bool {
	helper(t)
	box, ok := singleNode(t, doc, fromScope+formCheckboxFieldXPath(label), fieldNotFound(label))
	if !ok {
		return false
	}
	return assert.True(t, dom.HasAttr(box, "checked"), fmt.Sprintf("field with label %q is not checked", label))
}

func AssertFormCheckboxFieldUnchecked(t TestingT, doc *dom.Document, label string) bool {
	helper(t)
	box, ok := singleNode(t, doc, fromScope+formCheckboxFieldXPath(label), fieldNotFound(label))
	if !ok {
		return false
	}
	return assert.False(t, dom.HasAttr(box, "checked"), fmt.Sprintf("field with label %q is checked", label))
}

func singleNode(t TestingT, doc *dom.Document, expr, msg string) (*html.Node, bool) {
	helper(t)
	nodes, ok := query(t, doc, expr)
	if !ok {
		return nil, false
	}
	if !assert.Equal(t, 1, len(nodes), msg) {
		return nil, false
	}
	return nodes[0], true
}

func AssertFormFileFieldExists(t TestingT, doc *dom.Document, label string) bool {
	helper(t)
	return assertCount(t, doc, 1, fromScope+formFileFieldXPath(label),
		fmt.Sprintf("file field with label %q not found", label))
}

func AssertFormSelectFieldExists(t TestingT, doc *dom.Document, label string) bool {
	helper(t)
	return assertCount(t, doc, 1, fromScope+formSelectFieldXPath(label), fieldNotFound(label))
}

// AssertFormSelectOptionExists asserts that the select labelled label
// offers an option titled option.
func AssertFormSelectOptionExists(t TestingT, doc *dom.Document, label, option string) bool {
	helper(t)
	expr := fromScope + formSelectFieldXPath(label) + "/option[normalize-space()=" + dom.Literal(option) + "]"
	return assertCount(t, doc, 1, expr,
		fmt.Sprintf("value %q in the field with label %q not found", option, label))
}

// AssertFormSelectFieldValueEquals asserts the selected value of the select
// labelled label. An empty expected value accepts either a single selected
// option with an empty value or no selection at all.
func AssertFormSelectFieldValueEquals(t TestingT, doc *dom.Document, label, expected string) bool {
	helper(t)
	msg := fmt.Sprintf("field with label %q and value %q not found", label, expected)

	values, ok := selectedValues(t, doc, fromScope+formSelectFieldXPath(label), label)
	if !ok {
		return false
	}

	if expected == "" && len(values) != 1 {
		return assert.Empty(t, values, msg)
	}

	actual := ""
	if len(values) > 0 {
		actual = values[0]
	}
	return assert.Equal(t, expected, actual, msg)
}

func AssertFormMultiSelectFieldExists(t TestingT, doc *dom.Document, label string) bool {
	helper(t)
	return assertCount(t, doc, 1, fromScope+formAutocompleteFieldXPath(label), fieldNotFound(label))
}

// AssertFormMultiSelectFieldValuesEqual asserts that the autocomplete select
// labelled label has exactly the expected values selected, in any order.
// The failure names both missing and unexpected values.
func AssertFormMultiSelectFieldValuesEqual(t TestingT, doc *dom.Document, label string, expected []string) bool {
	helper(t)

	values, ok := selectedValues(t, doc, fromScope+formAutocompleteFieldXPath(label), label)
	if !ok {
		return false
	}

	notFound := difference(expected, values)
	extraFound := difference(values, expected)

	var problems []string
	if len(notFound) > 0 {
		problems = append(problems, fmt.Sprintf("no values %s found", formatValues(notFound)))
	}
	if len(extraFound) > 0 {
		problems = append(problems, fmt.Sprintf("extra values %s found", formatValues(extraFound)))
	}

	msg := fmt.Sprintf("in the field with label %q %s", label, strings.Join(problems, " and "))
	return assert.True(t, len(problems) == 0, msg)
}

// selectedValues returns the trimmed values of the selected options of the
// first select matching expr.
func selectedValues(t TestingT, doc *dom.Document, expr, label string) ([]string, bool) {
	helper(t)
	nodes, ok := query(t, doc, expr)
	if !ok {
		return nil, false
	}
	if len(nodes) == 0 {
		return nil, assert.Fail(t, fieldNotFound(label))
	}

	values, err := SelectedOptionValues(dom.FromNode(nodes[0]))
	if err != nil {
		return nil, assert.Fail(t, err.Error())
	}
	return values, true
}

// SelectedOptionValues returns the trimmed values of the selected options
// inside sel.
func SelectedOptionValues(sel *dom.Document) ([]string, error) {
	options, err := sel.CSS("option[selected]")
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(options))
	for _, o := range options {
		values = append(values, strings.TrimSpace(dom.Attr(o, "value")))
	}
	return values, nil
}

// difference returns the entries of a missing from b, keeping a's order.
func difference(a, b []string) []string {
	seen := make(map[string]bool, len(b))
	for _, v := range b {
		seen[v] = true
	}
	var out []string
	for _, v := range a {
		if !seen[v] {
			out = append(out, v)
		}
	}
	return out
}

func formatValues(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}

// AssertFormActionButtonExists asserts that the create/edit form offers the
// action button (submit button or link) titled title.
func AssertFormActionButtonExists(t TestingT, doc *dom.Document, title string) bool {
	helper(t)
	return assertCount(t, doc, 1, formActionButtonXPath(title),
		fmt.Sprintf("there is no button %q on the form", title))
}

func AssertFormActionButtonNotExists(t TestingT, doc *dom.Document, title string) bool {
	helper(t)
	return assertCount(t, doc, 0, formActionButtonXPath(title),
		fmt.Sprintf("there is a button %q on the form", title))
}

// AssertFormFieldContainsError asserts that the field labelled label shows
// an error message containing message.
func AssertFormFieldContainsError(t TestingT, doc *dom.Document, label, message string) bool {
	helper(t)
	expr := fromScope + formFieldLabelXPath(label) + "/following-sibling::" + fieldContainerXPath +
		"//div[contains(@class, 'sonata-ba-field-error-messages')]"

	container, ok := singleNode(t, doc, expr, fmt.Sprintf("could not uniquely find field %q with errors", label))
	if !ok {
		return false
	}
	return assert.Contains(t, dom.Text(container), message, "the error is not equal to the expected")
}

// SubAdminTable scopes doc to the embedded sub-admin table below the field
// labelled title.
func SubAdminTable(doc *dom.Document, title string) (*dom.Document, error) {
	table, err := doc.First(fromScope + formFieldLabelXPath(title) + "/following-sibling::div//table[contains(@class, 'table')]")
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, fmt.Errorf("table %q not found", title)
	}
	return dom.FromNode(table), nil
}

// AssertSubAdminTableRowCount asserts the number of body rows of the
// sub-admin table titled title.
func AssertSubAdminTableRowCount(t TestingT, doc *dom.Document, title string, expected int) bool {
	helper(t)
	table, err := SubAdminTable(doc, title)
	if err != nil {
		return assert.Fail(t, err.Error())
	}
	return assertCount(t, table, expected, "./tbody/tr",
		fmt.Sprintf("unexpected number of rows in table %q", title))
}

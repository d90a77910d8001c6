package assertions

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/adminspec/packages/core/parser"
	"github.com/abdul-hamid-achik/adminspec/packages/dom"
	"github.com/abdul-hamid-achik/adminspec/packages/snapshot"
	"github.com/abdul-hamid-achik/adminspec/packages/sonata"
)

type Result struct {
	Passed  bool
	Kind    string
	Check   string // one-line rendering, e.g. menuItemExists(item="Reports")
	Message string
	Detail  string
	Line    int

	// Set by menu checks.
	Expected any
	Actual   any
}

type Evaluator struct {
	doc       *dom.Document
	checkFile string // Path to the check file (for snapshots)
	pageName  string // Name of the current page (for snapshots)
	snapshots *snapshot.Manager
}

// EvaluatorOption is a functional option for configuring an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithCheckFile sets the check file path for menu snapshots.
func WithCheckFile(path string) EvaluatorOption {
	return func(e *Evaluator) {
		e.checkFile = path
	}
}

// WithPageName sets the page name for menu snapshots.
func WithPageName(name string) EvaluatorOption {
	return func(e *Evaluator) {
		e.pageName = name
	}
}

// WithSnapshots sets the manager menuSnapshot checks compare against.
func WithSnapshots(m *snapshot.Manager) EvaluatorOption {
	return func(e *Evaluator) {
		e.snapshots = m
	}
}

func NewEvaluator(doc *dom.Document, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{doc: doc}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs one check against the page. A check with a within
// argument only sees the first element that expression matches.
func (e *Evaluator) Evaluate(check *parser.Check) *Result {
	result := &Result{
		Kind:  string(check.Kind),
		Check: check.String(),
		Line:  check.Line,
	}

	doc := e.doc
	if check.Args.Within != "" {
		scoped, err := doc.Scope(check.Args.Within)
		if err != nil {
			result.Message = fmt.Sprintf("within %q: %v", check.Args.Within, err)
			return result
		}
		doc = scoped
	}

	rec := &recorder{}
	passed, err := e.dispatch(rec, doc, check, result)
	if err != nil {
		result.Message = err.Error()
		return result
	}

	result.Passed = passed && !rec.failed
	if !result.Passed && len(rec.failures) > 0 {
		result.Message = rec.failures[0].message
		result.Detail = rec.failures[0].detail
	}
	return result
}

// EvaluateAll runs every check in order.
func (e *Evaluator) EvaluateAll(checks []*parser.Check) []*Result {
	results := make([]*Result, 0, len(checks))
	for _, c := range checks {
		results = append(results, e.Evaluate(c))
	}
	return results
}

func (e *Evaluator) dispatch(t sonata.TestingT, doc *dom.Document, check *parser.Check, result *Result) (bool, error) {
	a := check.Args

	switch check.Kind {
	case parser.KindMenuExists:
		return sonata.AssertMenuExists(t, doc), nil
	case parser.KindMenuNotExists:
		return sonata.AssertMenuNotExists(t, doc), nil
	case parser.KindMenuItemExists:
		return sonata.AssertMenuItemExists(t, doc, a.Item), nil
	case parser.KindMenuItemNotExists:
		return sonata.AssertMenuItemNotExists(t, doc, a.Item), nil
	case parser.KindMenuItemInGroupExists:
		return sonata.AssertMenuItemInGroupExists(t, doc, a.Item, a.Group), nil
	case parser.KindMenuItemInGroupNotExists:
		return sonata.AssertMenuItemInGroupNotExists(t, doc, a.Item, a.Group), nil
	case parser.KindMenuItemsEqual:
		result.Expected = a.Menu
		if actual, err := sonata.SidebarMenu(doc); err == nil {
			result.Actual = actual
		}
		return sonata.AssertMenuItemsEqual(t, doc, a.Menu), nil
	case parser.KindMenuSnapshot:
		return e.menuSnapshot(doc, a.Name, result)

	case parser.KindTabExists:
		return sonata.AssertTabExists(t, doc, a.Tab), nil
	case parser.KindTabNotExists:
		return sonata.AssertTabNotExists(t, doc, a.Tab), nil
	case parser.KindTabLabelExists:
		return sonata.AssertTabLabelExists(t, doc, a.Tab), nil
	case parser.KindTabLabelNotExists:
		return sonata.AssertTabLabelNotExists(t, doc, a.Tab), nil
	case parser.KindTabPaneExists:
		return sonata.AssertTabPaneExists(t, doc, a.Tab), nil

	case parser.KindTextFieldExists:
		return sonata.AssertFormTextFieldExists(t, doc, a.Label), nil
	case parser.KindTextFieldValueEquals:
		return sonata.AssertFormTextFieldValueEquals(t, doc, a.Label, a.Value), nil
	case parser.KindNumberFieldExists:
		return sonata.AssertFormNumberFieldExists(t, doc, a.Label), nil
	case parser.KindNumberFieldValueEquals:
		return sonata.AssertFormNumberFieldValueEquals(t, doc, a.Label, a.Value), nil
	case parser.KindTextareaFieldExists:
		return sonata.AssertFormTextareaFieldExists(t, doc, a.Label), nil
	case parser.KindTextareaFieldValueEquals:
		return sonata.AssertFormTextareaFieldValueEquals(t, doc, a.Label, a.Value), nil
	case parser.KindCheckboxFieldExists:
		return sonata.AssertFormCheckboxFieldExists(t, doc, a.Label), nil
	case parser.KindCheckboxFieldChecked:
		return sonata.AssertFormCheckboxFieldChecked(t, doc, a.Label), nil
	case parser.KindCheckboxFieldUnchecked:
		return sonata.AssertFormCheckboxFieldUnchecked(t, doc, a.Label), nil
	case parser.KindFileFieldExists:
		return sonata.AssertFormFileFieldExists(t, doc, a.Label), nil
	case parser.KindSelectFieldExists:
		return sonata.AssertFormSelectFieldExists(t, doc, a.Label), nil
	case parser.KindSelectOptionExists:
		return sonata.AssertFormSelectOptionExists(t, doc, a.Label, a.Option), nil
	case parser.KindSelectFieldValueEquals:
		return sonata.AssertFormSelectFieldValueEquals(t, doc, a.Label, a.Value), nil
	case parser.KindMultiSelectFieldExists:
		return sonata.AssertFormMultiSelectFieldExists(t, doc, a.Label), nil
	case parser.KindMultiSelectFieldValuesEqual:
		return sonata.AssertFormMultiSelectFieldValuesEqual(t, doc, a.Label, a.Values), nil
	case parser.KindFormActionButtonExists:
		return sonata.AssertFormActionButtonExists(t, doc, a.Action), nil
	case parser.KindFormActionButtonNotExists:
		return sonata.AssertFormActionButtonNotExists(t, doc, a.Action), nil
	case parser.KindFieldContainsError:
		return sonata.AssertFormFieldContainsError(t, doc, a.Label, a.Error), nil
	case parser.KindSubAdminTableRowCount:
		return sonata.AssertSubAdminTableRowCount(t, doc, a.Label, a.Count), nil

	case parser.KindFlashSuccessExists:
		return sonata.AssertFlashSuccessExists(t, doc, a.Message), nil
	case parser.KindFlashErrorExists:
		return sonata.AssertFlashErrorExists(t, doc, a.Message), nil
	case parser.KindFlashWarningExists:
		return sonata.AssertFlashWarningExists(t, doc, a.Message), nil
	case parser.KindFlashErrorCount:
		return sonata.AssertFlashErrorCount(t, doc, a.Count), nil

	case parser.KindActionButtonExists:
		return sonata.AssertActionButtonExists(t, doc, a.Action), nil
	case parser.KindActionButtonNotExists:
		return sonata.AssertActionButtonNotExists(t, doc, a.Action), nil
	case parser.KindBatchActionExists:
		return sonata.AssertBatchActionExists(t, doc, a.Action), nil
	case parser.KindBatchActionNotExists:
		return sonata.AssertBatchActionNotExists(t, doc, a.Action), nil
	}

	return false, fmt.Errorf("unknown check kind %q", check.Kind)
}

func (e *Evaluator) menuSnapshot(doc *dom.Document, name string, result *Result) (bool, error) {
	if e.snapshots == nil {
		return false, fmt.Errorf("menu snapshots are not enabled")
	}

	menu, err := sonata.SidebarMenu(doc)
	if err != nil {
		return false, fmt.Errorf("cannot read menu: %w", err)
	}

	res := e.snapshots.Compare(e.checkFile, e.pageName, name, menu)
	result.Expected = res.Expected
	result.Actual = res.Actual
	if !res.Passed {
		result.Message = res.Message
		result.Detail = res.Diff
	}
	return res.Passed, nil
}

type failure struct {
	message string
	detail  string
}

// recorder is the sonata.TestingT checks report to. It keeps the failure
// text of each assertion without the call stack.
type recorder struct {
	failed   bool
	failures []failure
}

func (r *recorder) Errorf(format string, args ...any) {
	r.failed = true
	r.failures = append(r.failures, parseFailure(fmt.Sprintf(format, args...)))
}

var (
	labelLine        = regexp.MustCompile(`^\t([A-Z][A-Za-z ]*):\s*\t(.*)$`)
	continuationLine = regexp.MustCompile(`^\t +\t(.*)$`)
)

// parseFailure splits testify's labelled failure output. The helper's own
// message becomes the summary and the assertion text the detail; when the
// helper gave no message the assertion text is the summary.
func parseFailure(out string) failure {
	sections := map[string][]string{}
	current := ""
	for _, line := range strings.Split(out, "\n") {
		if m := labelLine.FindStringSubmatch(line); m != nil {
			current = m[1]
			sections[current] = append(sections[current], m[2])
			continue
		}
		if m := continuationLine.FindStringSubmatch(line); m != nil && current != "" {
			sections[current] = append(sections[current], m[1])
		}
	}

	errText := strings.TrimSpace(strings.Join(sections["Error"], "\n"))
	msgText := strings.TrimSpace(strings.Join(sections["Messages"], "\n"))

	switch {
	case msgText != "":
		return failure{message: msgText, detail: errText}
	case errText != "":
		return failure{message: errText}
	default:
		return failure{message: strings.TrimSpace(out)}
	}
}

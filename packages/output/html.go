package output

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/adminspec/packages/core/runner"
)

//go:embed report.html.tmpl
var htmlTemplate string

// HTMLOutput represents the complete HTML output structure
type HTMLOutput struct {
	Version        string
	RunID          string
	Summary        HTMLSummary
	Pages          []HTMLPage
	Duration       float64
	Time           string
	PassedPercent  float64
	FailedPercent  float64
	SkippedPercent float64
}

// HTMLSummary represents the page summary for HTML output
type HTMLSummary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// HTMLPage represents a single page result for HTML output
type HTMLPage struct {
	Name        string
	File        string
	URL         string
	StatusCode  int
	Passed      bool
	Skipped     bool
	SkipReason  string
	Duration    float64
	Error       string
	StatusClass string
	Checks      []HTMLCheck
}

// HTMLCheck represents a check result for HTML output
type HTMLCheck struct {
	Check   string
	Line    int
	Passed  bool
	Message string
	Detail  string
}

// HTMLFormatter formats results as a standalone HTML report
type HTMLFormatter struct {
	writer  io.Writer
	runID   string
	pages   []HTMLPage
	version string
}

// HTMLOption is a functional option for HTMLFormatter
type HTMLOption func(*HTMLFormatter)

// NewHTMLFormatter creates a new HTML formatter
func NewHTMLFormatter(opts ...HTMLOption) *HTMLFormatter {
	f := &HTMLFormatter{
		writer: os.Stdout,
		pages:  make([]HTMLPage, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// HTMLWithWriter sets the output writer
func HTMLWithWriter(w io.Writer) HTMLOption {
	return func(f *HTMLFormatter) {
		f.writer = w
	}
}

func HTMLWithRunID(id string) HTMLOption {
	return func(f *HTMLFormatter) {
		f.runID = id
	}
}

// FormatResult accumulates the pages of a check file
func (f *HTMLFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		p := HTMLPage{
			Name:       r.Name,
			File:       result.File,
			URL:        r.URL,
			StatusCode: r.StatusCode,
			Passed:     r.Passed,
			Skipped:    r.Skipped,
			Duration:   float64(r.Duration.Milliseconds()),
		}

		switch {
		case r.Skipped:
			p.StatusClass = "skipped"
		case r.Passed:
			p.StatusClass = "passed"
		default:
			p.StatusClass = "failed"
		}

		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			p.SkipReason = r.SkipReason
		}

		if r.Error != nil {
			p.Error = r.Error.Error()
		}

		for _, c := range r.Checks {
			p.Checks = append(p.Checks, HTMLCheck{
				Check:   c.Check,
				Line:    c.Line,
				Passed:  c.Passed,
				Message: c.Message,
				Detail:  c.Detail,
			})
		}

		f.pages = append(f.pages, p)
	}
}

// FormatError handles errors (no-op for HTML, errors are in page results)
func (f *HTMLFormatter) FormatError(err error) {
	// Errors are included in individual page results
}

// FormatHeader captures the version for the HTML report
func (f *HTMLFormatter) FormatHeader(version string) {
	f.version = version
}

// Flush writes the accumulated HTML output
func (f *HTMLFormatter) Flush(totalDuration time.Duration) error {
	var passed, failed, skipped int
	for _, p := range f.pages {
		switch {
		case p.Skipped:
			skipped++
		case p.Passed:
			passed++
		default:
			failed++
		}
	}

	total := len(f.pages)
	var passedPct, failedPct, skippedPct float64
	if total > 0 {
		passedPct = float64(passed) / float64(total) * 100
		failedPct = float64(failed) / float64(total) * 100
		skippedPct = float64(skipped) / float64(total) * 100
	}

	output := HTMLOutput{
		Version: f.version,
		RunID:   f.runID,
		Summary: HTMLSummary{
			Total:   total,
			Passed:  passed,
			Failed:  failed,
			Skipped: skipped,
		},
		Pages:          f.pages,
		Duration:       float64(totalDuration.Milliseconds()),
		Time:           time.Now().Format("2006-01-02 15:04:05"),
		PassedPercent:  passedPct,
		FailedPercent:  failedPct,
		SkippedPercent: skippedPct,
	}

	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse HTML template: %w", err)
	}

	return tmpl.Execute(f.writer, output)
}

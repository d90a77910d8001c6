package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/adminspec/packages/core/runner"
	"github.com/google/uuid"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	RunID    string      `json:"runId"`
	Summary  JSONSummary `json:"summary"`
	Pages    []JSONPage  `json:"pages"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

// JSONSummary counts pages by outcome, and checks across all pages
type JSONSummary struct {
	Total        int `json:"total"`
	Passed       int `json:"passed"`
	Failed       int `json:"failed"`
	Skipped      int `json:"skipped"`
	Checks       int `json:"checks"`
	ChecksFailed int `json:"checksFailed"`
}

// JSONPage represents a single page result
type JSONPage struct {
	Name       string      `json:"name"`
	File       string      `json:"file"`
	Source     string      `json:"source,omitempty"`
	URL        string      `json:"url,omitempty"`
	StatusCode int         `json:"statusCode,omitempty"`
	Passed     bool        `json:"passed"`
	Skipped    bool        `json:"skipped,omitempty"`
	SkipReason string      `json:"skipReason,omitempty"`
	Duration   float64     `json:"duration"`
	Error      string      `json:"error,omitempty"`
	Checks     []JSONCheck `json:"checks,omitempty"`
}

// JSONCheck represents a check result
type JSONCheck struct {
	Kind     string `json:"kind"`
	Check    string `json:"check"`
	Line     int    `json:"line,omitempty"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Expected any    `json:"expected,omitempty"`
	Actual   any    `json:"actual,omitempty"`
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	writer io.Writer
	runID  string
	pages  []JSONPage
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
		pages:  make([]JSONPage, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.runID == "" {
		f.runID = uuid.NewString()
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

// JSONWithRunID sets the run id reported in the output. Without it a fresh
// one is generated.
func JSONWithRunID(id string) JSONOption {
	return func(f *JSONFormatter) {
		f.runID = id
	}
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		p := JSONPage{
			Name:       r.Name,
			File:       result.File,
			Source:     r.Source,
			URL:        r.URL,
			StatusCode: r.StatusCode,
			Passed:     r.Passed,
			Skipped:    r.Skipped,
			Duration:   float64(r.Duration.Milliseconds()),
		}

		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			p.SkipReason = r.SkipReason
		}

		if r.Error != nil {
			p.Error = r.Error.Error()
		}

		if len(r.Checks) > 0 {
			p.Checks = make([]JSONCheck, len(r.Checks))
			for i, c := range r.Checks {
				p.Checks[i] = JSONCheck{
					Kind:     c.Kind,
					Check:    c.Check,
					Line:     c.Line,
					Passed:   c.Passed,
					Message:  c.Message,
					Detail:   c.Detail,
					Expected: c.Expected,
					Actual:   c.Actual,
				}
			}
		}

		f.pages = append(f.pages, p)
	}
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors are included in individual page results
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	summary := JSONSummary{Total: len(f.pages)}
	for _, p := range f.pages {
		switch {
		case p.Skipped:
			summary.Skipped++
		case p.Passed:
			summary.Passed++
		default:
			summary.Failed++
		}
		for _, c := range p.Checks {
			summary.Checks++
			if !c.Passed {
				summary.ChecksFailed++
			}
		}
	}

	output := JSONOutput{
		RunID:    f.runID,
		Summary:  summary,
		Pages:    f.pages,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/adminspec/packages/core/runner"
	"gopkg.in/yaml.v3"
)

// TAPFormatter formats results in TAP (Test Anything Protocol) version 13,
// one test point per page. Failing pages carry a YAML diagnostic block.
type TAPFormatter struct {
	writer io.Writer
	points []tapPoint
}

type tapPoint struct {
	name       string
	passed     bool
	skipped    bool
	skipReason string
	diagnostic *tapDiagnostic
}

type tapDiagnostic struct {
	Message    string       `yaml:"message,omitempty"`
	Severity   string       `yaml:"severity"`
	Source     string       `yaml:"source,omitempty"`
	DurationMS int64        `yaml:"duration_ms"`
	Failures   []tapFailure `yaml:"failures,omitempty"`
}

type tapFailure struct {
	Check   string `yaml:"check"`
	Line    int    `yaml:"line,omitempty"`
	Message string `yaml:"message"`
	Detail  string `yaml:"detail,omitempty"`
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{writer: os.Stdout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

func (f *TAPFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		point := tapPoint{
			name:       r.Name,
			passed:     r.Passed,
			skipped:    r.Skipped,
			skipReason: r.SkipReason,
		}

		switch {
		case r.Skipped || r.Passed:
		case r.Error != nil:
			point.diagnostic = &tapDiagnostic{
				Message:    r.Error.Error(),
				Severity:   "error",
				Source:     r.Source,
				DurationMS: r.Duration.Milliseconds(),
			}
		default:
			d := &tapDiagnostic{
				Severity:   "fail",
				Source:     r.Source,
				DurationMS: r.Duration.Milliseconds(),
			}
			for _, c := range r.FailedChecks() {
				d.Failures = append(d.Failures, tapFailure{
					Check:   c.Check,
					Line:    c.Line,
					Message: c.Message,
					Detail:  c.Detail,
				})
			}
			point.diagnostic = d
		}

		f.points = append(f.points, point)
	}
}

// FormatError is a no-op; load errors are reported on their test point.
func (f *TAPFormatter) FormatError(err error) {}

func (f *TAPFormatter) FormatHeader(version string) {}

// Flush writes the plan and every test point collected so far.
func (f *TAPFormatter) Flush(totalDuration time.Duration) error {
	fmt.Fprintf(f.writer, "TAP version 13\n")
	fmt.Fprintf(f.writer, "1..%d\n", len(f.points))

	for i, p := range f.points {
		n := i + 1
		switch {
		case p.skipped:
			reason := p.skipReason
			if reason == "" {
				reason = "SKIP"
			}
			fmt.Fprintf(f.writer, "ok %d - %s # SKIP %s\n", n, p.name, reason)
		case p.passed:
			fmt.Fprintf(f.writer, "ok %d - %s\n", n, p.name)
		default:
			fmt.Fprintf(f.writer, "not ok %d - %s\n", n, p.name)
			if err := f.writeDiagnostic(p.diagnostic); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(f.writer, "# time %s\n", totalDuration.Round(time.Millisecond))
	return nil
}

// writeDiagnostic writes d as a YAML block indented two spaces below its
// test point.
func (f *TAPFormatter) writeDiagnostic(d *tapDiagnostic) error {
	if d == nil {
		return nil
	}
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding tap diagnostic: %w", err)
	}
	fmt.Fprintf(f.writer, "  ---\n%s\n  ...\n", indent(string(data), "  "))
	return nil
}

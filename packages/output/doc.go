// Package output provides formatters for displaying run results.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output with a run id
//   - JUnit: JUnit XML format for CI integration, one testcase per page
//   - TAP: Test Anything Protocol format
//   - HTML: Standalone report page
//
// Each formatter implements the Formatter interface and can optionally
// implement Flushable for formats that accumulate results before output.
package output

// Package runner executes adminspec check files.
//
// It provides functionality for:
//   - Loading every page of a check file from a URL or a local file
//   - Filtering pages by name, tag, only and skip
//   - Parallel page loading with configurable concurrency
//   - Variable resolution in sources, scopes and check arguments
//   - Evaluating each page's checks and collecting the results
package runner

// Package cmd implements the adminspec CLI commands using Cobra.
//
// Available commands:
//   - run: Run the checks in check files against their pages
//   - validate: Check file syntax and check arguments without loading pages
//   - list: Display the pages and checks defined in files
//   - inspect: Show the menu, tabs, flashes and batch actions of one page
//   - init: Create a config file and an example check file
//   - version: Show adminspec version information
//   - completion: Generate shell completion scripts
//
// Commands report failures through exit codes (see exitcodes.go), so they
// can gate CI pipelines.
package cmd

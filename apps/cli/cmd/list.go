package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/adminspec/packages/core/parser"
	"github.com/spf13/cobra"
)

var listChecksFlag bool

var listCmd = &cobra.Command{
	Use:   "list <file|directory>...",
	Short: "List the pages in check files",
	Long: `List the pages defined in check files, with their sources and tags.

Examples:
  adminspec list checks/dashboard.yaml
  adminspec list checks/ --checks`,
	Args: minArgs(1),
	RunE: listCommand,
}

func init() {
	listCmd.Flags().BoolVarP(&listChecksFlag, "checks", "c", false, "Also list the checks of every page")
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return exitErr(ExitUsageError, err)
	}

	if len(files) == 0 {
		return exitErr(ExitUsageError, errNoChecks)
	}

	for _, file := range files {
		f, err := parser.ParseFile(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error parsing %s: %v\n", file, err)
			continue
		}

		title := file
		if f.Name != "" {
			title = fmt.Sprintf("%s (%s)", file, f.Name)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s:\n", title)
		for _, p := range f.Pages {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s  %s\n", p.Name, p.Source)
			if len(p.Tags) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "    tags: %s\n", strings.Join(p.Tags, ", "))
			}
			if p.Skip != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "    skip: %s\n", p.Skip)
			}
			if listChecksFlag {
				for _, c := range p.Checks {
					fmt.Fprintf(cmd.OutOrStdout(), "    %d: %s\n", c.Line, c)
				}
			}
		}
	}

	return nil
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/adminspec/packages/core/parser"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>...",
	Short: "Validate check files without loading any page",
	Long: `Validate check files against the check file schema and the known
check kinds, without loading any page.

Examples:
  adminspec validate checks/dashboard.yaml
  adminspec validate checks/`,
	Args: minArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return exitErr(ExitUsageError, err)
	}

	if len(files) == 0 {
		return exitErr(ExitUsageError, errNoChecks)
	}

	invalid := 0
	for _, file := range files {
		f, err := parser.ParseFile(file)
		if err != nil {
			invalid++
			var validationErr *parser.ValidationError
			if errors.As(err, &validationErr) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Invalid: %s (%d problems)\n", file, len(validationErr.Problems))
				for _, p := range validationErr.Problems {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", p)
				}
				continue
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
			continue
		}

		checks := 0
		for _, p := range f.Pages {
			checks += len(p.Checks)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s (%d pages, %d checks)\n", file, len(f.Pages), checks)
	}

	if invalid > 0 {
		return exitErr(ExitParseError, fmt.Errorf("validation failed: %d of %d files invalid", invalid, len(files)))
	}

	return nil
}

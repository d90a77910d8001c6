package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/abdul-hamid-achik/adminspec/packages/core/parser"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "adminspec version %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "Built: %s\n", buildTime)
		fmt.Fprintf(cmd.OutOrStdout(), "Go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		if versionKindsFlag {
			fmt.Fprintf(cmd.OutOrStdout(), "Check kinds:\n  %s\n", strings.Join(parser.KindNames(), "\n  "))
		}
	},
}

var versionKindsFlag bool

func init() {
	versionCmd.Flags().BoolVar(&versionKindsFlag, "kinds", false, "Also list the check kinds this version understands")
}

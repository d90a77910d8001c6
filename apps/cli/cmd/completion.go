package cmd

import (
	"sort"

	"github.com/abdul-hamid-achik/adminspec/packages/core/config"
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for adminspec.

To load completions:

Bash:
  $ source <(adminspec completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ adminspec completion bash > /etc/bash_completion.d/adminspec
  # macOS:
  $ adminspec completion bash > $(brew --prefix)/etc/bash_completion.d/adminspec

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ adminspec completion zsh > "${fpath[1]}/_adminspec"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ adminspec completion fish | source

  # To load completions for each session, execute once:
  $ adminspec completion fish > ~/.config/fish/completions/adminspec.fish

PowerShell:
  PS> adminspec completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> adminspec completion powershell > adminspec.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)

	_ = runCmd.RegisterFlagCompletionFunc("output", fixedCompletion("console", "json", "junit", "tap", "html"))
	_ = runCmd.RegisterFlagCompletionFunc("env", completeEnvironments)
	_ = runCmd.RegisterFlagCompletionFunc("config", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	checkFiles := func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	}
	runCmd.ValidArgsFunction = checkFiles
	validateCmd.ValidArgsFunction = checkFiles
	listCmd.ValidArgsFunction = checkFiles
}

func fixedCompletion(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeEnvironments offers the environments of the project config.
func completeEnvironments(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names := make([]string, 0, len(cfg.Environments))
	for name := range cfg.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, cobra.ShellCompDirectiveNoFileComp
}

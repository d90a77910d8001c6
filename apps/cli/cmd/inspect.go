package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/adminspec/packages/dom"
	"github.com/abdul-hamid-achik/adminspec/packages/page"
	"github.com/abdul-hamid-achik/adminspec/packages/sonata"
	"github.com/fatih/color"
	"github.com/jaytaylor/html2text"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	inspectJSONPathFlag string
	inspectScopeFlag    string
	inspectTextFlag     bool
	inspectYAMLFlag     bool
	inspectTimeoutFlag  time.Duration
	inspectInsecureFlag bool
	inspectNoColorFlag  bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <url|file>",
	Short: "Show what adminspec sees on a page",
	Long: `Load a page and print what the checks would see: the sidebar menu
tree, tab labels, flash messages and batch actions.

Use --yaml to print the menu as a menuItemsEqual check ready to paste into a
check file, and --text for a plain text rendering of the page.

Examples:
  adminspec inspect http://localhost:8000/admin/dashboard
  adminspec inspect saved/user-edit.html --scope "//form"
  adminspec inspect http://localhost:8000/admin/dashboard --yaml`,
	Args: func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(1)(cmd, args); err != nil {
			return exitErr(ExitUsageError, err)
		}
		return nil
	},
	RunE: inspectCommand,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectJSONPathFlag, "json-path", "", "Take the HTML from this path of a JSON response")
	inspectCmd.Flags().StringVar(&inspectScopeFlag, "scope", "", "Only inspect the part of the page matching this XPath")
	inspectCmd.Flags().BoolVar(&inspectTextFlag, "text", false, "Also print the page as plain text")
	inspectCmd.Flags().BoolVar(&inspectYAMLFlag, "yaml", false, "Print only the menu, as a menuItemsEqual check")
	inspectCmd.Flags().DurationVar(&inspectTimeoutFlag, "timeout", page.DefaultTimeout, "Page load timeout")
	inspectCmd.Flags().BoolVarP(&inspectInsecureFlag, "insecure", "k", false, "Disable SSL certificate validation")
	inspectCmd.Flags().BoolVar(&inspectNoColorFlag, "no-color", getEnvBool("ADMINSPEC_NO_COLOR", false), "Disable colored output (env: ADMINSPEC_NO_COLOR)")
}

func inspectCommand(cmd *cobra.Command, args []string) error {
	if inspectNoColorFlag {
		color.NoColor = true
	}

	loader := page.NewLoader(
		page.WithTimeout(inspectTimeoutFlag),
		page.WithValidateSSL(!inspectInsecureFlag),
	)
	p, err := loader.Load(cmd.Context(), args[0], inspectJSONPathFlag)
	if err != nil {
		return exitErr(ExitNetworkError, err)
	}

	doc := p.Doc
	if inspectScopeFlag != "" {
		doc, err = doc.Scope(inspectScopeFlag)
		if err != nil {
			return usageErr("scope %q: %w", inspectScopeFlag, err)
		}
	}

	out := cmd.OutOrStdout()
	if inspectYAMLFlag {
		return printMenuCheck(out, doc)
	}

	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(out, "%s %s", bold("Page:"), p.URL)
	if p.StatusCode != 0 {
		fmt.Fprintf(out, " (status %d)", p.StatusCode)
	}
	fmt.Fprintf(out, " %s\n", faint(fmt.Sprintf("%dms", p.Duration.Milliseconds())))

	fmt.Fprintf(out, "\n%s\n", bold("Menu:"))
	menu, err := sonata.SidebarMenu(doc)
	var malformed *sonata.MalformedMenuError
	switch {
	case errors.Is(err, sonata.ErrMenuNotFound):
		fmt.Fprintf(out, "  %s\n", faint("(no sidebar menu)"))
	case errors.As(err, &malformed):
		fmt.Fprintf(out, "  %s\n", color.RedString(malformed.Error()))
	case err != nil:
		return err
	case len(menu) == 0:
		fmt.Fprintf(out, "  %s\n", faint("(empty)"))
	default:
		fmt.Fprintf(out, "%s\n", indent(menu.String(), "  "))
	}

	tabs, err := sonata.TabLabels(doc)
	if err != nil {
		return err
	}
	printList(out, "Tabs:", tabs)

	for _, kind := range []sonata.FlashKind{sonata.FlashSuccess, sonata.FlashError, sonata.FlashWarning} {
		messages, err := sonata.FlashMessages(doc, kind)
		if err != nil {
			return err
		}
		if len(messages) > 0 {
			printList(out, fmt.Sprintf("Flash %s:", kind), messages)
		}
	}

	actions, err := sonata.BatchActions(doc)
	if err != nil {
		return err
	}
	printList(out, "Batch actions:", actions)

	if inspectTextFlag {
		text, err := html2text.FromHTMLNode(doc.Root(), html2text.Options{PrettyTables: true, OmitLinks: true})
		if err != nil {
			return fmt.Errorf("rendering text: %w", err)
		}
		fmt.Fprintf(out, "\n%s\n%s\n", bold("Text:"), text)
	}

	return nil
}

func printList(out io.Writer, title string, items []string) {
	fmt.Fprintf(out, "\n%s\n", color.New(color.Bold).Sprint(title))
	if len(items) == 0 {
		fmt.Fprintf(out, "  %s\n", color.New(color.Faint).Sprint("(none)"))
		return
	}
	for _, item := range items {
		fmt.Fprintf(out, "  - %s\n", item)
	}
}

// printMenuCheck writes the extracted menu as a check entry.
func printMenuCheck(out io.Writer, doc *dom.Document) error {
	menu, err := sonata.SidebarMenu(doc)
	if err != nil {
		return err
	}

	check := []map[string]map[string]sonata.Menu{
		{"menuItemsEqual": {"menu": menu}},
	}
	data, err := yaml.Marshal(check)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/adminspec/packages/core/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new adminspec project",
	Long: `Initialize a new adminspec project in the current directory.

This creates:
  - adminspec.yaml                 - Configuration file with environments
  - checks/dashboard.yaml          - Example check file
  - checks/pages/dashboard.html    - Saved page the example runs against

Examples:
  adminspec init
  adminspec init --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, config.ConfigFilenames[0])
	exampleFile := filepath.Join(cwd, "checks", "dashboard.yaml")
	pageFile := filepath.Join(cwd, "checks", "pages", "dashboard.html")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile, pageFile} {
			if _, err := os.Stat(f); err == nil {
				return usageErr("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.DefaultEnvironment = config.DefaultEnvironment
	cfg.Headers = map[string]string{
		"Accept-Language": "en",
	}
	cfg.Environments = map[string]map[string]any{
		"dev": {
			"baseUrl": "http://localhost:8000",
		},
		"staging": {
			"baseUrl": "https://staging.example.com",
		},
	}

	configYAML, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFile, configYAML, 0644); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.MkdirAll(filepath.Dir(pageFile), 0755); err != nil {
		return fmt.Errorf("failed to create checks directory: %w", err)
	}

	if err := os.WriteFile(exampleFile, []byte(exampleChecks), 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	if err := os.WriteFile(pageFile, []byte(examplePage), 0644); err != nil {
		return fmt.Errorf("failed to create example page: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", pageFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nadminspec project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'adminspec run checks/' to execute the example checks.\n")

	return nil
}

const exampleChecks = `name: Dashboard
pages:
  - name: dashboard (saved copy)
    source: pages/dashboard.html
    tags: [smoke]
    checks:
      - menuExists
      - menuItemExists: Users
      - menuItemInGroupExists: { item: Reports, group: Analytics }
      - menuItemsEqual:
          menu:
            - Dashboard
            - Users
            - Analytics: [Reports, Exports]
      - tabLabelExists: { tab: General }
      - flashSuccessExists: { message: "saved" }
      - batchActionExists: { action: Delete }

  - name: dashboard (live)
    source: "{{baseUrl}}/admin/dashboard"
    tags: [live]
    skip: start the admin on {{baseUrl}} and remove this line
    checks:
      - menuSnapshot: dashboard
`

const examplePage = `<!DOCTYPE html>
<html>
<body>
<aside class="main-sidebar">
  <ul class="sidebar-menu">
    <li><a href="/admin/dashboard">Dashboard</a></li>
    <li><a href="/admin/user/list">Users</a></li>
    <li class="treeview">
      <a href="#">Analytics</a>
      <ul class="treeview-menu">
        <li><a href="/admin/report/list">Reports</a></li>
        <li><a href="/admin/export/list">Exports</a></li>
      </ul>
    </li>
  </ul>
</aside>
<div class="content-wrapper">
  <div class="alert alert-success fade in">Settings saved.</div>
  <ul class="nav nav-tabs">
    <li class="active"><a href="#tab_general" data-toggle="tab">General</a></li>
  </ul>
  <div class="tab-content">
    <div class="tab-pane active" id="tab_general"></div>
  </div>
  <select name="action">
    <option value="delete">Delete</option>
  </select>
</div>
</body>
</html>
`

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/adminspec/packages/core/config"
	"github.com/abdul-hamid-achik/adminspec/packages/core/env"
	"github.com/abdul-hamid-achik/adminspec/packages/core/runner"
	"github.com/abdul-hamid-achik/adminspec/packages/output"
	"github.com/abdul-hamid-achik/adminspec/packages/snapshot"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>...",
	Short: "Run checks against admin pages",
	Long: `Run the checks defined in adminspec YAML files.

Examples:
  adminspec run checks/dashboard.yaml
  adminspec run checks/ --env staging
  adminspec run checks/ --tags smoke --parallel
  adminspec run checks/users.yaml --name "user*" -v
  adminspec run checks/ --output junit --output-file report.xml
  adminspec run checks/ --update-snapshots`,
	Args: minArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond

	// VariableEnvPrefix marks process environment variables exposed to check files
	VariableEnvPrefix = "ADMINSPEC_VAR_"
)

var (
	envFlag         string
	envFileFlag     string
	configFlag      string
	nameFlag        string
	tagsFlag        string
	verboseFlag     int
	quietFlag       bool
	noColorFlag     bool
	outputFlag      string
	outputFileFlag  string
	bailFlag        bool
	timeoutFlag     string
	dryRunFlag      bool
	parallelFlag    bool
	concurrencyFlag int
	watchFlag       bool
	proxyFlag       string
	insecureFlag    bool
	rateLimitFlag   float64
	userAgentFlag   string

	updateSnapshotsFlag bool
)

// flagEnv maps run flags to the environment variable that can set them.
var flagEnv = map[string]string{
	"env":         "ADMINSPEC_ENV",
	"env-file":    "ADMINSPEC_ENV_FILE",
	"config":      "ADMINSPEC_CONFIG",
	"tags":        "ADMINSPEC_TAGS",
	"quiet":       "ADMINSPEC_QUIET",
	"no-color":    "ADMINSPEC_NO_COLOR",
	"output":      "ADMINSPEC_OUTPUT",
	"output-file": "ADMINSPEC_OUTPUT_FILE",
	"bail":        "ADMINSPEC_BAIL",
	"timeout":     "ADMINSPEC_TIMEOUT",
	"parallel":    "ADMINSPEC_PARALLEL",
	"concurrency": "ADMINSPEC_CONCURRENCY",
	"proxy":       "ADMINSPEC_PROXY",
	"insecure":    "ADMINSPEC_INSECURE",
	"rate-limit":  "ADMINSPEC_RATE_LIMIT",
	"user-agent":  "ADMINSPEC_USER_AGENT",
}

func init() {
	// Core flags
	runCmd.Flags().StringVarP(&envFlag, "env", "e", getEnvString("ADMINSPEC_ENV", ""), "Environment to use (default from config, else dev) (env: ADMINSPEC_ENV)")
	runCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("ADMINSPEC_ENV_FILE", ""), "Comma-separated .env files for variable interpolation (env: ADMINSPEC_ENV_FILE)")
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("ADMINSPEC_CONFIG", ""), "Path to config file (env: ADMINSPEC_CONFIG)")
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only pages matching name pattern (* wildcards)")
	runCmd.Flags().StringVarP(&tagsFlag, "tags", "t", getEnvString("ADMINSPEC_TAGS", ""), "Run only pages with specified tags (comma-separated) (env: ADMINSPEC_TAGS)")

	// Output flags
	runCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output: page sources, passed checks and failure details")
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", getEnvBool("ADMINSPEC_QUIET", false), "Suppress console output, only the exit code reports the result (env: ADMINSPEC_QUIET)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("ADMINSPEC_NO_COLOR", false), "Disable colored output (env: ADMINSPEC_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("ADMINSPEC_OUTPUT", "console"), "Output format: console, json, junit, tap, html (env: ADMINSPEC_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("ADMINSPEC_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: ADMINSPEC_OUTPUT_FILE)")

	// Execution flags
	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("ADMINSPEC_BAIL", false), "Stop on first failing page (env: ADMINSPEC_BAIL)")
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("ADMINSPEC_TIMEOUT", "30s"), "Page load timeout (e.g., 30s, 1m) (env: ADMINSPEC_TIMEOUT)")
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Parse and list pages without loading them")
	runCmd.Flags().BoolVarP(&parallelFlag, "parallel", "p", getEnvBool("ADMINSPEC_PARALLEL", false), "Load pages of a file in parallel (env: ADMINSPEC_PARALLEL)")
	runCmd.Flags().IntVar(&concurrencyFlag, "concurrency", getEnvInt("ADMINSPEC_CONCURRENCY", runner.DefaultConcurrency), "Number of pages loaded at once in parallel mode (env: ADMINSPEC_CONCURRENCY)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch check files and local pages for changes and re-run")

	// Network flags
	runCmd.Flags().StringVar(&proxyFlag, "proxy", getEnvString("ADMINSPEC_PROXY", ""), "Proxy URL for page requests (env: ADMINSPEC_PROXY)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("ADMINSPEC_INSECURE", false), "Disable SSL certificate validation (env: ADMINSPEC_INSECURE)")
	runCmd.Flags().Float64Var(&rateLimitFlag, "rate-limit", getEnvFloat("ADMINSPEC_RATE_LIMIT", 0), "Maximum page requests per second, 0 for no limit (env: ADMINSPEC_RATE_LIMIT)")
	runCmd.Flags().StringVar(&userAgentFlag, "user-agent", getEnvString("ADMINSPEC_USER_AGENT", ""), "User-Agent header for page requests (env: ADMINSPEC_USER_AGENT)")

	// Snapshot flags
	runCmd.Flags().BoolVar(&updateSnapshotsFlag, "update-snapshots", false, "Write menu snapshots instead of comparing")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// flagSet reports whether a flag was given on the command line or through
// its environment variable, so that it overrides the config file.
func flagSet(cmd *cobra.Command, name string) bool {
	if cmd.Flags().Changed(name) {
		return true
	}
	key, ok := flagEnv[name]
	return ok && os.Getenv(key) != ""
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// newFormatter builds the formatter for format. runID is stamped on reports
// that carry one.
func newFormatter(format string, w io.Writer, runID string, verbose, noColor bool) (Formatter, error) {
	switch strings.ToLower(format) {
	case "json":
		return output.NewJSONFormatter(output.JSONWithWriter(w), output.JSONWithRunID(runID)), nil
	case "junit":
		return output.NewJUnitFormatter(output.JUnitWithWriter(w), output.JUnitWithRunID(runID)), nil
	case "tap":
		return output.NewTAPFormatter(output.TAPWithWriter(w)), nil
	case "html":
		return output.NewHTMLFormatter(output.HTMLWithWriter(w), output.HTMLWithRunID(runID)), nil
	case "console", "":
		return output.NewConsoleFormatter(
			output.WithWriter(w),
			output.WithVerbose(verbose),
			output.WithNoColor(noColor),
		), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use console, json, junit, tap or html)", format)
	}
}

// flagConfig collects the settings given as flags, to be merged over the
// config file.
func flagConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}

	if flagSet(cmd, "timeout") {
		timeout, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err)
		}
		if timeout <= 0 {
			return nil, fmt.Errorf("timeout must be positive, got %s", timeoutFlag)
		}
		cfg.Timeout = int(timeout.Milliseconds())
	}
	if flagSet(cmd, "concurrency") {
		if concurrencyFlag <= 0 {
			return nil, fmt.Errorf("concurrency must be positive, got %d", concurrencyFlag)
		}
		cfg.Concurrency = concurrencyFlag
	}
	if flagSet(cmd, "rate-limit") {
		if rateLimitFlag < 0 {
			return nil, fmt.Errorf("rate limit must not be negative, got %g", rateLimitFlag)
		}
		cfg.RateLimit = rateLimitFlag
	}
	if flagSet(cmd, "env") {
		cfg.DefaultEnvironment = envFlag
	}
	if flagSet(cmd, "proxy") {
		cfg.Proxy = proxyFlag
	}
	if flagSet(cmd, "user-agent") {
		cfg.UserAgent = userAgentFlag
	}
	if flagSet(cmd, "insecure") && insecureFlag {
		cfg.ValidateSSL = config.BoolPtr(false)
	}
	if flagSet(cmd, "parallel") {
		cfg.Parallel = config.BoolPtr(parallelFlag)
	}
	if flagSet(cmd, "bail") {
		cfg.Bail = config.BoolPtr(bailFlag)
	}
	if flagSet(cmd, "no-color") {
		cfg.NoColor = config.BoolPtr(noColorFlag)
	}
	return cfg, nil
}

// loadVariables layers the configured environment, .env files and
// ADMINSPEC_VAR_* process variables, later sources winning.
func loadVariables(settings *config.Config) (map[string]any, error) {
	environment := env.LoadEnvironment(settings.Environment(), settings.Environments)

	var dotenv map[string]any
	if envFileFlag != "" {
		var paths []string
		for _, p := range strings.Split(envFileFlag, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
		var err error
		dotenv, err = env.LoadDotEnvFiles(paths...)
		if err != nil {
			return nil, err
		}
	}

	return env.MergeVariables(environment.Variables, dotenv, env.LoadSystemEnv(VariableEnvPrefix)), nil
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// runSummary totals one pass over all check files.
type runSummary struct {
	passed      int
	failed      int
	skipped     int
	checkFailed int
	loadFailed  int
	parseFailed int
	duration    time.Duration
}

func (s runSummary) exitCode() int {
	switch {
	case s.parseFailed > 0:
		return ExitParseError
	case s.checkFailed > 0:
		return ExitCheckFailure
	case s.loadFailed > 0:
		return ExitNetworkError
	case s.failed > 0:
		return ExitCheckFailure
	default:
		return ExitSuccess
	}
}

func runCommand(cmd *cobra.Command, args []string) error {
	overrides, err := flagConfig(cmd)
	if err != nil {
		return exitErr(ExitUsageError, err)
	}

	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return exitErr(ExitConfigError, fmt.Errorf("loading config: %w", err))
	}
	settings := fileConfig.Merge(overrides)

	variables, err := loadVariables(settings)
	if err != nil {
		return exitErr(ExitConfigError, err)
	}

	files, err := collectFiles(args)
	if err != nil {
		return exitErr(ExitUsageError, err)
	}
	if len(files) == 0 {
		return exitErr(ExitUsageError, errNoChecks)
	}

	cfg := &runner.Config{
		Environment:     settings.Environment(),
		Variables:       variables,
		Verbose:         verboseFlag > 0,
		Timeout:         settings.TimeoutDuration(),
		UserAgent:       settings.UserAgent,
		Headers:         settings.Headers,
		Cookies:         settings.Cookies,
		Proxy:           settings.Proxy,
		Insecure:        !settings.GetValidateSSL(),
		RateLimit:       settings.RateLimit,
		Bail:            settings.GetBail(),
		NameFilter:      nameFlag,
		TagsFilter:      splitTags(tagsFlag),
		Parallel:        settings.GetParallel(),
		Concurrency:     settings.Concurrency,
		UpdateSnapshots: updateSnapshotsFlag,
		DryRun:          dryRunFlag,
		WarnFunc:        func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
		},
	}

	var out io.Writer = cmd.OutOrStdout()
	if outputFileFlag != "" {
		f, err := os.Create(outputFileFlag)
		if err != nil {
			return usageErr("cannot create output file: %w", err)
		}
		defer f.Close()
		out = f
	} else if quietFlag && strings.ToLower(outputFlag) == "console" {
		out = io.Discard
	}
	noColor := settings.GetNoColor() || outputFileFlag != ""

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// runTests makes a fresh runner and formatter per pass so that watch
	// mode reruns get their own run id and report.
	runTests := func() (runSummary, error) {
		r := runner.NewRunner(cfg)
		formatter, err := newFormatter(outputFlag, out, r.RunID(), verboseFlag > 0, noColor)
		if err != nil {
			return runSummary{}, exitErr(ExitUsageError, err)
		}
		formatter.FormatHeader(version)

		var sum runSummary
		start := time.Now()
		for _, file := range files {
			if ctx.Err() != nil {
				break
			}

			result, err := r.RunFile(ctx, file)
			if err != nil {
				formatter.FormatError(err)
				if _, console := formatter.(*output.ConsoleFormatter); !console {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s:\n%v\n", file, err)
				}
				sum.parseFailed++
				if cfg.Bail {
					break
				}
				continue
			}

			formatter.FormatResult(result)
			sum.passed += result.Passed
			sum.failed += result.Failed
			sum.skipped += result.Skipped
			for _, pr := range result.Results {
				switch {
				case pr.Error != nil:
					sum.loadFailed++
				case len(pr.FailedChecks()) > 0:
					sum.checkFailed++
				}
			}

			if cfg.Bail && result.Failed > 0 {
				break
			}
		}
		sum.duration = time.Since(start)

		if flushable, ok := formatter.(Flushable); ok {
			if err := flushable.Flush(sum.duration); err != nil {
				return sum, fmt.Errorf("error writing output: %w", err)
			}
		}
		return sum, nil
	}

	sum, err := runTests()
	if err != nil {
		return err
	}

	if !watchFlag {
		if code := sum.exitCode(); code != ExitSuccess {
			return exitErr(code, nil)
		}
		return nil
	}

	return watch(ctx, cmd, args, files, func() {
		if _, err := runTests(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	})
}

// watch re-runs rerun whenever a check file or a local page next to one is
// written, until ctx is cancelled.
func watch(ctx context.Context, cmd *cobra.Command, args, files []string, rerun func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to watch %s: %v\n", dir, err)
			}
			watchedDirs[dir] = true
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			_ = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() && d.Name() == snapshot.SnapshotDir {
					return filepath.SkipDir
				}
				if d.IsDir() && !watchedDirs[path] {
					_ = watcher.Add(path)
					watchedDirs[path] = true
				}
				return nil
			})
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	// Debounce timer for rapid file changes
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !isCheckFile(event.Name) && !isPageFile(event.Name) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running checks...\n\n", name)
				rerun()
				fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watcher error: %v\n", err)
		}
	}
}

// collectFiles expands directories into the check files below them, in
// lexical order. Files named on the command line are kept whatever their
// extension.
func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == snapshot.SnapshotDir {
					return filepath.SkipDir
				}
				return nil
			}
			if isCheckFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// isCheckFile reports whether path looks like a check file. Project config
// files share the extension and are excluded.
func isCheckFile(path string) bool {
	ext := filepath.Ext(path)
	if ext != ".yaml" && ext != ".yml" {
		return false
	}
	base := filepath.Base(path)
	for _, name := range config.ConfigFilenames {
		if base == name {
			return false
		}
	}
	return true
}

func isPageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm" || ext == ".json"
}

var errNoChecks = errors.New("no check files found")

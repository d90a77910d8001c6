package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/adminspec/packages/assertions"
	"github.com/abdul-hamid-achik/adminspec/packages/builtin"
	"github.com/abdul-hamid-achik/adminspec/packages/core/env"
	"github.com/abdul-hamid-achik/adminspec/packages/core/parser"
	"github.com/abdul-hamid-achik/adminspec/packages/page"
	"github.com/abdul-hamid-achik/adminspec/packages/snapshot"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultConcurrency is the default number of pages loaded at once in parallel mode
	DefaultConcurrency = 5

	skipFiltered  = "filtered out"
	skipBail      = "skipped after failure (--bail)"
	skipCancelled = "run cancelled"
	skipDryRun    = "dry run"
)

type Runner struct {
	loader    *page.Loader
	funcs     *builtin.Registry
	snapshots *snapshot.Manager
	config    *Config
}

type Config struct {
	Environment     string
	Variables       map[string]any
	Verbose         bool
	Timeout         time.Duration
	UserAgent       string
	Headers         map[string]string
	Cookies         map[string]string
	Proxy           string
	Insecure        bool
	RateLimit       float64
	Bail            bool
	NameFilter      string
	TagsFilter      []string
	Parallel        bool
	Concurrency     int
	UpdateSnapshots bool
	DryRun          bool
	WarnFunc        env.WarnFunc
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}

	loaderOpts := []page.Option{
		page.WithHeaders(cfg.Headers),
		page.WithCookies(cfg.Cookies),
		page.WithValidateSSL(!cfg.Insecure),
		page.WithRateLimit(cfg.RateLimit),
	}
	if cfg.Timeout > 0 {
		loaderOpts = append(loaderOpts, page.WithTimeout(cfg.Timeout))
	}
	if cfg.UserAgent != "" {
		loaderOpts = append(loaderOpts, page.WithUserAgent(cfg.UserAgent))
	}
	if cfg.Proxy != "" {
		loaderOpts = append(loaderOpts, page.WithProxy(cfg.Proxy))
	}

	return &Runner{
		loader:    page.NewLoader(loaderOpts...),
		funcs:     builtin.NewRegistry(),
		snapshots: snapshot.NewManager(cfg.UpdateSnapshots),
		config:    cfg,
	}
}

// RunID identifies this run; it is also what {{runId()}} expands to.
func (r *Runner) RunID() string {
	return r.funcs.RunID()
}

type RunResult struct {
	File     string
	Name     string
	Results  []*PageResult
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
}

type PageResult struct {
	Name       string
	Source     string
	URL        string
	StatusCode int
	Passed     bool
	Skipped    bool
	SkipReason string
	Duration   time.Duration
	Checks     []*assertions.Result
	Error      error
}

// FailedChecks returns the checks of the page that did not pass.
func (p *PageResult) FailedChecks() []*assertions.Result {
	var failed []*assertions.Result
	for _, c := range p.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

func (r *Runner) RunFile(ctx context.Context, path string) (*RunResult, error) {
	file, err := parser.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}
	return r.Run(ctx, file)
}

// Run executes an already parsed check file. Relative page sources are read
// from the directory of file.Path.
func (r *Runner) Run(ctx context.Context, file *parser.File) (*RunResult, error) {
	resolver := env.NewResolverWithFuncs(r.funcs)
	resolver.SetWarnFunc(r.config.WarnFunc)
	resolver.SetVariables(r.config.Variables)

	for _, v := range file.Variables {
		resolver.SetVariable(v.Name, resolver.Resolve(v.Value))
	}

	return r.runPages(ctx, file, resolver), nil
}

func (r *Runner) runPages(ctx context.Context, file *parser.File, resolver *env.Resolver) *RunResult {
	start := time.Now()
	result := &RunResult{
		File: file.Path,
		Name: file.Name,
	}

	hasOnly := false
	for _, p := range file.Pages {
		if p.Only {
			hasOnly = true
			break
		}
	}

	results := make([]*PageResult, len(file.Pages))
	var runnable []int
	for i, p := range file.Pages {
		switch {
		case !r.shouldRun(p, hasOnly):
			results[i] = skipped(p, skipFiltered)
		case p.Skip != "":
			results[i] = skipped(p, p.Skip)
		case r.config.DryRun:
			results[i] = skipped(p, skipDryRun)
		default:
			runnable = append(runnable, i)
		}
	}

	if r.config.Parallel {
		r.runParallel(ctx, file, resolver, runnable, results)
	} else {
		r.runSequential(ctx, file, resolver, runnable, results)
	}

	for _, pr := range results {
		result.Results = append(result.Results, pr)
		switch {
		case pr.Skipped:
			result.Skipped++
		case pr.Passed:
			result.Passed++
		default:
			result.Failed++
		}
	}

	result.Duration = time.Since(start)
	return result
}

func (r *Runner) runSequential(ctx context.Context, file *parser.File, resolver *env.Resolver, runnable []int, results []*PageResult) {
	bailed := false
	for _, i := range runnable {
		p := file.Pages[i]
		if bailed {
			results[i] = skipped(p, skipBail)
			continue
		}
		if ctx.Err() != nil {
			results[i] = skipped(p, skipCancelled)
			continue
		}
		results[i] = r.runPage(ctx, file, p, resolver)
		if !results[i].Passed && r.config.Bail {
			bailed = true
		}
	}
}

var errBail = errors.New("bail")

// runParallel loads up to Concurrency pages at once. With Bail the first
// failure cancels the pages still waiting to start.
func (r *Runner) runParallel(ctx context.Context, file *parser.File, resolver *env.Resolver, runnable []int, results []*PageResult) {
	concurrency := r.config.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	for _, i := range runnable {
		i, p := i, file.Pages[i]
		g.Go(func() error {
			if gctx.Err() != nil {
				reason := skipCancelled
				if errors.Is(context.Cause(gctx), errBail) {
					reason = skipBail
				}
				mu.Lock()
				results[i] = skipped(p, reason)
				mu.Unlock()
				return nil
			}

			pr := r.runPage(gctx, file, p, resolver)
			mu.Lock()
			results[i] = pr
			mu.Unlock()

			if !pr.Passed && r.config.Bail {
				return errBail
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Runner) runPage(ctx context.Context, file *parser.File, p *parser.Page, resolver *env.Resolver) *PageResult {
	result := &PageResult{Name: p.Name}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	result.Source = resolver.Resolve(p.Source)
	source := page.ResolveSource(result.Source, filepath.Dir(file.Path))

	loaded, err := r.loader.Load(ctx, source, resolver.Resolve(p.JSONPath))
	if err != nil {
		result.Error = err
		return result
	}
	result.URL = loaded.URL
	result.StatusCode = loaded.StatusCode

	doc := loaded.Doc
	if p.Scope != "" {
		scope := resolver.Resolve(p.Scope)
		doc, err = doc.Scope(scope)
		if err != nil {
			result.Error = fmt.Errorf("scope %q: %w", scope, err)
			return result
		}
	}

	evaluator := assertions.NewEvaluator(doc,
		assertions.WithCheckFile(file.Path),
		assertions.WithPageName(p.Name),
		assertions.WithSnapshots(r.snapshots),
	)

	result.Passed = true
	for _, c := range p.Checks {
		res := evaluator.Evaluate(resolveCheck(c, resolver))
		result.Checks = append(result.Checks, res)
		if !res.Passed {
			result.Passed = false
		}
	}
	return result
}

// resolveCheck returns a copy of c with placeholders in its text arguments
// substituted. Menu labels are taken literally.
func resolveCheck(c *parser.Check, resolver *env.Resolver) *parser.Check {
	out := *c
	a := &out.Args
	for _, field := range []*string{
		&a.Item, &a.Group, &a.Tab, &a.Label, &a.Value, &a.Option,
		&a.Action, &a.Message, &a.Error, &a.Name, &a.Within,
	} {
		*field = resolver.Resolve(*field)
	}
	a.Values = resolver.ResolveAll(c.Args.Values)
	return &out
}

func skipped(p *parser.Page, reason string) *PageResult {
	return &PageResult{
		Name:       p.Name,
		Source:     p.Source,
		Skipped:    true,
		SkipReason: reason,
	}
}

func (r *Runner) shouldRun(p *parser.Page, hasOnly bool) bool {
	if hasOnly && !p.Only {
		return false
	}

	if r.config.NameFilter != "" && !matchesPattern(p.Name, r.config.NameFilter) {
		return false
	}

	if len(r.config.TagsFilter) > 0 && !hasAnyTag(p.Tags, r.config.TagsFilter) {
		return false
	}

	return true
}

// matchesPattern supports a leading and/or trailing * wildcard.
func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	prefix := strings.HasSuffix(pattern, "*")
	suffix := strings.HasPrefix(pattern, "*")
	core := strings.TrimSuffix(strings.TrimPrefix(pattern, "*"), "*")

	switch {
	case prefix && suffix:
		return strings.Contains(name, core)
	case suffix:
		return strings.HasSuffix(name, core)
	case prefix:
		return strings.HasPrefix(name, core)
	default:
		return name == pattern
	}
}

func hasAnyTag(tags []string, filters []string) bool {
	for _, filter := range filters {
		for _, tag := range tags {
			if tag == filter {
				return true
			}
		}
	}
	return false
}

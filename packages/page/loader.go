package page

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	neturl "net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/adminspec/packages/dom"
	"github.com/gocolly/colly/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default request timeout for URL sources
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is sent when no user agent is configured
	DefaultUserAgent = "adminspec"
)

// ErrNotHTML is returned when a JSON path resolves to a non-string value.
var ErrNotHTML = errors.New("json path does not hold an html string")

// Page is a loaded and parsed page.
type Page struct {
	Source     string
	URL        string
	StatusCode int
	Body       []byte
	Doc        *dom.Document
	Duration   time.Duration
}

type Loader struct {
	timeout     time.Duration
	userAgent   string
	headers     map[string]string
	cookies     map[string]string
	proxyURL    string
	validateSSL bool
	baseDir     string
	limiter     *rate.Limiter

	transportOnce sync.Once
	transport     *http.Transport
	transportErr  error
}

type Option func(*Loader)

func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		headers:     make(map[string]string),
		cookies:     make(map[string]string),
		validateSSL: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(l *Loader) {
		if ua != "" {
			l.userAgent = ua
		}
	}
}

// WithHeaders adds headers sent with every URL request
func WithHeaders(headers map[string]string) Option {
	return func(l *Loader) {
		for k, v := range headers {
			l.headers[k] = v
		}
	}
}

// WithCookies adds cookies sent with every URL request, typically a session
// cookie for a logged-in admin user
func WithCookies(cookies map[string]string) Option {
	return func(l *Loader) {
		for k, v := range cookies {
			l.cookies[k] = v
		}
	}
}

func WithProxy(proxyURL string) Option {
	return func(l *Loader) {
		l.proxyURL = proxyURL
	}
}

func WithValidateSSL(validate bool) Option {
	return func(l *Loader) {
		l.validateSSL = validate
	}
}

// WithBaseDir sets the directory relative file sources are resolved against
func WithBaseDir(dir string) Option {
	return func(l *Loader) {
		l.baseDir = dir
	}
}

// WithRateLimit caps URL fetches at perSecond requests per second across
// all concurrent loads. Zero disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(l *Loader) {
		if perSecond > 0 {
			l.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// IsURL reports whether source is fetched over http(s).
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load fetches or reads source and parses it. When jsonPath is set the body
// is treated as JSON and the HTML is taken from that path.
func (l *Loader) Load(ctx context.Context, source, jsonPath string) (*Page, error) {
	start := time.Now()

	var (
		p   *Page
		err error
	)
	if IsURL(source) {
		p, err = l.fetch(ctx, source)
	} else {
		p, err = l.readFile(source)
	}
	if err != nil {
		return nil, err
	}

	body := p.Body
	if jsonPath != "" {
		body, err = extractJSON(body, jsonPath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
	}

	p.Doc, err = dom.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	p.Duration = time.Since(start)
	return p, nil
}

// ResolveSource makes a relative file source relative to baseDir. URLs and
// absolute paths are returned unchanged.
func ResolveSource(source, baseDir string) string {
	if IsURL(source) || baseDir == "" {
		return source
	}
	path := strings.TrimPrefix(source, "file://")
	if filepath.IsAbs(path) {
		return source
	}
	return filepath.Join(baseDir, path)
}

func (l *Loader) readFile(source string) (*Page, error) {
	path := strings.TrimPrefix(ResolveSource(source, l.baseDir), "file://")

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}
	return &Page{Source: source, URL: "file://" + path, Body: body}, nil
}

func (l *Loader) fetch(ctx context.Context, url string) (*Page, error) {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	c, err := l.collector(ctx, url)
	if err != nil {
		return nil, err
	}

	p := &Page{Source: url}
	var fetchErr error

	c.OnRequest(func(r *colly.Request) {
		for k, v := range l.headers {
			r.Headers.Set(k, v)
		}
	})
	c.OnResponse(func(r *colly.Response) {
		p.URL = r.Request.URL.String()
		p.StatusCode = r.StatusCode
		p.Body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("fetching %s: status %d: %w", url, r.StatusCode, err)
			return
		}
		fetchErr = fmt.Errorf("fetching %s: %w", url, err)
	})

	if err := c.Visit(url); err != nil && fetchErr == nil {
		fetchErr = fmt.Errorf("fetching %s: %w", url, err)
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	return p, nil
}

// collector builds a fresh synchronous collector per load so concurrent
// loads never share callbacks. The transport is shared.
func (l *Loader) collector(ctx context.Context, url string) (*colly.Collector, error) {
	c := colly.NewCollector(
		colly.UserAgent(l.userAgent),
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	transport, err := l.sharedTransport()
	if err != nil {
		return nil, err
	}
	c.WithTransport(transport)
	c.SetRequestTimeout(l.timeout)

	if len(l.cookies) > 0 {
		cookies := make([]*http.Cookie, 0, len(l.cookies))
		for name, value := range l.cookies {
			cookies = append(cookies, &http.Cookie{Name: name, Value: value})
		}
		if err := c.SetCookies(url, cookies); err != nil {
			return nil, fmt.Errorf("setting cookies: %w", err)
		}
	}
	return c, nil
}

func (l *Loader) sharedTransport() (*http.Transport, error) {
	l.transportOnce.Do(func() {
		t := &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}
		if !l.validateSSL {
			t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		if l.proxyURL != "" {
			proxy, err := neturl.Parse(l.proxyURL)
			if err != nil {
				l.transportErr = fmt.Errorf("invalid proxy %q: %w", l.proxyURL, err)
				return
			}
			t.Proxy = http.ProxyURL(proxy)
		}
		l.transport = t
	})
	return l.transport, l.transportErr
}

func extractJSON(body []byte, path string) ([]byte, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("body is not valid json")
	}
	result := gjson.GetBytes(body, path)
	if !result.Exists() {
		return nil, fmt.Errorf("json path %q not found", path)
	}
	if result.Type != gjson.String {
		return nil, fmt.Errorf("json path %q: %w", path, ErrNotHTML)
	}
	return []byte(result.String()), nil
}

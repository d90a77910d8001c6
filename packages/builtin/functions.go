package builtin

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Func func(args []string) any

type Registry struct {
	funcs map[string]Func
	runID string
	now   func() time.Time
}

func NewRegistry() *Registry {
	r := &Registry{
		funcs: make(map[string]Func),
		runID: uuid.New().String(),
		now:   time.Now,
	}
	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	r.funcs["now"] = func(_ []string) any { return r.now().UTC().Format(time.RFC3339) }
	r.funcs["date"] = r.funcDate
	r.funcs["timestamp"] = func(_ []string) any { return r.now().Unix() }
	r.funcs["runId"] = func(_ []string) any { return r.runID }
	r.funcs["urlEncode"] = unary(url.QueryEscape)
	r.funcs["urlDecode"] = unary(func(s string) string {
		decoded, err := url.QueryUnescape(s)
		if err != nil {
			return s
		}
		return decoded
	})
	r.funcs["base64"] = unary(func(s string) string {
		return base64.StdEncoding.EncodeToString([]byte(s))
	})
	r.funcs["lower"] = unary(strings.ToLower)
	r.funcs["upper"] = unary(strings.ToUpper)
	r.funcs["trim"] = unary(strings.TrimSpace)
}

func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// RunID is the value runId() returns.
func (r *Registry) RunID() string {
	return r.runID
}

var funcCallPattern = regexp.MustCompile(`^(\w+)\((.*)\)$`)

// Call evaluates expr, e.g. `date("02.01.2006")`. It reports false when expr
// is not a call to a registered function.
func (r *Registry) Call(expr string) (any, bool) {
	m := funcCallPattern.FindStringSubmatch(expr)
	if m == nil {
		return nil, false
	}

	fn, ok := r.funcs[m[1]]
	if !ok {
		return nil, false
	}

	var args []string
	if strings.TrimSpace(m[2]) != "" {
		args = splitArgs(m[2])
	}
	return fn(args), true
}

// splitArgs splits a comma separated argument list. Single or double quotes
// protect commas and are removed.
func splitArgs(s string) []string {
	var (
		args    []string
		current strings.Builder
		quote   byte
	)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote == 0 && (ch == '"' || ch == '\''):
			quote = ch
		case quote != 0 && ch == quote:
			quote = 0
		case quote == 0 && ch == ',':
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	return append(args, strings.TrimSpace(current.String()))
}

func unary(fn func(string) string) Func {
	return func(args []string) any {
		if len(args) < 1 {
			return ""
		}
		return fn(args[0])
	}
}

func (r *Registry) funcDate(args []string) any {
	layout := "2006-01-02"
	if len(args) >= 1 && args[0] != "" {
		layout = args[0]
	}
	t := r.now().UTC()
	if len(args) >= 2 {
		if days, err := strconv.Atoi(args[1]); err == nil {
			t = t.AddDate(0, 0, days)
		}
	}
	return t.Format(layout)
}

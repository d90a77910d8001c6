package builtin

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedRegistry() *Registry {
	r := NewRegistry()
	r.now = func() time.Time {
		return time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)
	}
	return r
}

func TestRegistry_Call(t *testing.T) {
	r := fixedRegistry()

	tests := []struct {
		expr     string
		expected any
	}{
		{expr: "now()", expected: "2024-03-09T14:30:00Z"},
		{expr: "date()", expected: "2024-03-09"},
		{expr: `date("02.01.2006")`, expected: "09.03.2024"},
		{expr: `date("2006-01-02", -1)`, expected: "2024-03-08"},
		{expr: "timestamp()", expected: int64(1709994600)},
		{expr: `urlEncode("a b&c")`, expected: "a+b%26c"},
		{expr: `urlDecode("a+b%26c")`, expected: "a b&c"},
		{expr: `base64("admin:secret")`, expected: "YWRtaW46c2VjcmV0"},
		{expr: `lower("Reports")`, expected: "reports"},
		{expr: `upper('a, b')`, expected: "A, B"},
		{expr: `trim("  x ")`, expected: "x"},
		{expr: "base64()", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, ok := r.Call(tt.expr)
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRegistry_CallUnknown(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Call("nope()")
	assert.False(t, ok)

	_, ok = r.Call("not a call")
	assert.False(t, ok)
}

func TestRegistry_RunID(t *testing.T) {
	r := NewRegistry()

	first, ok := r.Call("runId()")
	require.True(t, ok)
	second, _ := r.Call("runId()")

	assert.Equal(t, first, second)
	assert.Equal(t, r.RunID(), first)
	_, err := uuid.Parse(r.RunID())
	assert.NoError(t, err)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register("admin", func(args []string) any { return "/admin/" + args[0] })

	got, ok := r.Call(`admin("dashboard")`)
	require.True(t, ok)
	assert.Equal(t, "/admin/dashboard", got)
}

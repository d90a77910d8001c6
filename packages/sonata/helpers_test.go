package sonata

import (
	"fmt"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/adminspec/packages/dom"
	"github.com/stretchr/testify/require"
)

// mockT records failures instead of failing the running test.
type mockT struct {
	messages []string
}

func (m *mockT) Errorf(format string, args ...any) {
	m.messages = append(m.messages, fmt.Sprintf(format, args...))
}

func (m *mockT) Failed() bool {
	return len(m.messages) > 0
}

func (m *mockT) Output() string {
	return strings.Join(m.messages, "\n")
}

func parse(t *testing.T, page string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	return doc
}

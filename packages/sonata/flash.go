package sonata

import (
	"fmt"
	"regexp"

	"github.com/abdul-hamid-achik/adminspec/packages/dom"
	"github.com/stretchr/testify/assert"
)

// FlashKind is the severity of a flash message.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashWarning FlashKind = "warning"
)

func (k FlashKind) selector() string {
	return fmt.Sprintf(`div[class="alert alert-%s fade in"]`, k)
}

// FlashMessages returns the normalized text of every flash message of the
// given kind, in document order.
func FlashMessages(doc *dom.Document, kind FlashKind) ([]string, error) {
	nodes, err := doc.CSS(kind.selector())
	if err != nil {
		return nil, err
	}
	messages := make([]string, 0, len(nodes))
	for _, n := range nodes {
		messages = append(messages, dom.Text(n))
	}
	return messages, nil
}

// AssertFlashSuccessExists asserts that at least one success message is
// shown and that one of them matches the regular expression pattern.
func AssertFlashSuccessExists(t TestingT, doc *dom.Document, pattern string) bool {
	helper(t)
	return assertFlashExists(t, doc, FlashSuccess, pattern)
}

func AssertFlashErrorExists(t TestingT, doc *dom.Document, pattern string) bool {
	helper(t)
	return assertFlashExists(t, doc, FlashError, pattern)
}

func AssertFlashWarningExists(t TestingT, doc *dom.Document, pattern string) bool {
	helper(t)
	return assertFlashExists(t, doc, FlashWarning, pattern)
}

func assertFlashExists(t TestingT, doc *dom.Document, kind FlashKind, pattern string) bool {
	helper(t)

	re, err := regexp.Compile(pattern)
	if err != nil {
		return assert.Fail(t, fmt.Sprintf("invalid message pattern %q: %v", pattern, err))
	}

	messages, err := FlashMessages(doc, kind)
	if err != nil {
		return assert.Fail(t, err.Error())
	}
	if !assert.NotEmpty(t, messages, fmt.Sprintf("no %s messages on the page", kind)) {
		return false
	}

	for _, m := range messages {
		if re.MatchString(m) {
			return true
		}
	}
	return assert.Fail(t, fmt.Sprintf("%s flash messages do not contain text %q", kind, pattern),
		fmt.Sprintf("messages on the page: %q", messages))
}

// AssertFlashErrorCount asserts the number of error flash messages.
func AssertFlashErrorCount(t TestingT, doc *dom.Document, expected int) bool {
	helper(t)
	messages, err := FlashMessages(doc, FlashError)
	if err != nil {
		return assert.Fail(t, err.Error())
	}
	return assert.Len(t, messages, expected, "unexpected number of error messages")
}

package parser

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/adminspec/packages/sonata"
)

type File struct {
	Path      string
	Name      string
	Variables []*Variable
	Pages     []*Page
}

type Variable struct {
	Name  string
	Value string
	Line  int
}

type Page struct {
	Name        string
	Description string
	Source      string
	Tags        []string
	Scope       string
	JSONPath    string
	Skip        string
	Only        bool
	Checks      []*Check
	Line        int
}

// CheckKind names one assertion, such as menuItemExists.
type CheckKind string

type Check struct {
	Kind CheckKind
	Args Args
	Line int
}

// Args holds every argument a check kind can take. Which ones are used
// depends on the kind; Set records the ones written in the file.
type Args struct {
	Item    string      `yaml:"item"`
	Group   string      `yaml:"group"`
	Tab     string      `yaml:"tab"`
	Label   string      `yaml:"label"`
	Value   string      `yaml:"value"`
	Values  []string    `yaml:"values"`
	Option  string      `yaml:"option"`
	Action  string      `yaml:"action"`
	Message string      `yaml:"message"`
	Error   string      `yaml:"error"`
	Count   int         `yaml:"count"`
	Menu    sonata.Menu `yaml:"menu"`
	Name    string      `yaml:"name"`
	Within  string      `yaml:"within"`

	Set map[string]bool `yaml:"-"`
}

// Has reports whether the argument was written in the check file.
func (a Args) Has(name string) bool {
	return a.Set[name]
}

// String renders the check on one line, e.g.
// menuItemInGroupExists(item="Reports", group="Analytics").
func (c *Check) String() string {
	spec, ok := Kinds[c.Kind]
	if !ok {
		return string(c.Kind)
	}

	var parts []string
	names := append(append([]string{}, spec.Required...), spec.Optional...)
	names = append(names, "within")
	for _, name := range names {
		if !c.Args.Has(name) {
			continue
		}
		parts = append(parts, name+"="+c.Args.format(name))
	}
	return fmt.Sprintf("%s(%s)", c.Kind, strings.Join(parts, ", "))
}

func (a Args) format(name string) string {
	switch name {
	case "values":
		quoted := make([]string, len(a.Values))
		for i, v := range a.Values {
			quoted[i] = fmt.Sprintf("%q", v)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	case "count":
		return fmt.Sprintf("%d", a.Count)
	case "menu":
		return fmt.Sprintf("%d entries", len(a.Menu.Flatten()))
	default:
		return fmt.Sprintf("%q", a.Text(name))
	}
}

// Text returns the string argument called name, or "" for arguments that
// are not strings.
func (a Args) Text(name string) string {
	switch name {
	case "item":
		return a.Item
	case "group":
		return a.Group
	case "tab":
		return a.Tab
	case "label":
		return a.Label
	case "value":
		return a.Value
	case "option":
		return a.Option
	case "action":
		return a.Action
	case "message":
		return a.Message
	case "error":
		return a.Error
	case "name":
		return a.Name
	case "within":
		return a.Within
	default:
		return ""
	}
}

type ParseError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ValidationError collects every problem found in a check file.
type ValidationError struct {
	File     string
	Problems []*ParseError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return strings.Join(msgs, "\n")
}

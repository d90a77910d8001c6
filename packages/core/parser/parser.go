package parser

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var yamlLineRe = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

func ParseFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(content), path)
}

// Parse reads a check file. filename is only used in error positions.
func Parse(input, filename string) (*File, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(input), &root); err != nil {
		return nil, yamlError(filename, err)
	}
	if len(root.Content) == 0 {
		return nil, &ParseError{File: filename, Line: 1, Column: 1, Message: "empty check file"}
	}
	doc := root.Content[0]

	if problems := validateSchema(doc, filename); len(problems) > 0 {
		return nil, &ValidationError{File: filename, Problems: problems}
	}

	p := &parser{file: filename}
	file := p.parseFile(doc)
	if len(p.problems) > 0 {
		sort.SliceStable(p.problems, func(i, j int) bool {
			return p.problems[i].Line < p.problems[j].Line
		})
		return nil, &ValidationError{File: filename, Problems: p.problems}
	}
	return file, nil
}

func yamlError(filename string, err error) error {
	if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
		line, _ := strconv.Atoi(m[1])
		return &ParseError{File: filename, Line: line, Column: 1, Message: m[2]}
	}
	return &ParseError{File: filename, Line: 1, Column: 1, Message: err.Error()}
}

type parser struct {
	file     string
	problems []*ParseError
}

func (p *parser) errorf(node *yaml.Node, format string, args ...any) {
	p.problems = append(p.problems, &ParseError{
		File:    p.file,
		Line:    node.Line,
		Column:  node.Column,
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *parser) parseFile(doc *yaml.Node) *File {
	file := &File{Path: p.file}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		switch key.Value {
		case "name":
			file.Name = val.Value
		case "variables":
			for j := 0; j+1 < len(val.Content); j += 2 {
				file.Variables = append(file.Variables, &Variable{
					Name:  val.Content[j].Value,
					Value: val.Content[j+1].Value,
					Line:  val.Content[j].Line,
				})
			}
		case "pages":
			seen := make(map[string]bool)
			for _, node := range val.Content {
				page := p.parsePage(node)
				if page == nil {
					continue
				}
				if seen[page.Name] {
					p.errorf(node, "duplicate page name %q", page.Name)
				}
				seen[page.Name] = true
				file.Pages = append(file.Pages, page)
			}
		}
	}
	return file
}

type rawPage struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Source      string      `yaml:"source"`
	Tags        []string    `yaml:"tags"`
	Scope       string      `yaml:"scope"`
	JSONPath    string      `yaml:"jsonPath"`
	Skip        string      `yaml:"skip"`
	Only        bool        `yaml:"only"`
	Checks      []yaml.Node `yaml:"checks"`
}

func (p *parser) parsePage(node *yaml.Node) *Page {
	var raw rawPage
	if err := node.Decode(&raw); err != nil {
		p.errorf(node, "invalid page: %v", err)
		return nil
	}

	page := &Page{
		Name:        raw.Name,
		Description: raw.Description,
		Source:      raw.Source,
		Tags:        raw.Tags,
		Scope:       raw.Scope,
		JSONPath:    raw.JSONPath,
		Skip:        raw.Skip,
		Only:        raw.Only,
		Line:        node.Line,
	}
	for i := range raw.Checks {
		if check := p.parseCheck(&raw.Checks[i]); check != nil {
			page.Checks = append(page.Checks, check)
		}
	}
	return page
}

// parseCheck accepts three forms:
//
//	- menuExists
//	- menuItemExists: Reports
//	- menuItemInGroupExists: { item: Reports, group: Analytics }
func (p *parser) parseCheck(node *yaml.Node) *Check {
	check := &Check{Line: node.Line}

	var argsNode *yaml.Node
	switch node.Kind {
	case yaml.ScalarNode:
		check.Kind = CheckKind(node.Value)
	case yaml.MappingNode:
		check.Kind = CheckKind(node.Content[0].Value)
		argsNode = node.Content[1]
	default:
		p.errorf(node, "check must be a kind name or a single-key mapping")
		return nil
	}

	spec, ok := Kinds[check.Kind]
	if !ok {
		p.errorf(node, "unknown check kind %q", check.Kind)
		return nil
	}

	if argsNode != nil && !isNull(argsNode) {
		if argsNode.Kind != yaml.MappingNode {
			if spec.Primary == "" {
				p.errorf(argsNode, "%s takes named arguments (%s)", check.Kind, strings.Join(spec.Required, ", "))
				return nil
			}
			argsNode = &yaml.Node{
				Kind: yaml.MappingNode,
				Tag:  "!!map",
				Line: argsNode.Line,
				Content: []*yaml.Node{
					{Kind: yaml.ScalarNode, Tag: "!!str", Value: spec.Primary, Line: argsNode.Line},
					argsNode,
				},
			}
		}

		if err := argsNode.Decode(&check.Args); err != nil {
			p.errorf(argsNode, "%s: %v", check.Kind, err)
			return nil
		}
		check.Args.Set = make(map[string]bool, len(argsNode.Content)/2)
		for i := 0; i < len(argsNode.Content); i += 2 {
			check.Args.Set[argsNode.Content[i].Value] = true
		}
	}

	p.checkArgs(node, check, spec)
	return check
}

func (p *parser) checkArgs(node *yaml.Node, check *Check, spec KindSpec) {
	for _, name := range spec.Required {
		if !check.Args.Has(name) {
			p.errorf(node, "%s: missing required argument %q", check.Kind, name)
		}
	}

	allowed := map[string]bool{"within": true}
	for _, name := range spec.Required {
		allowed[name] = true
	}
	for _, name := range spec.Optional {
		allowed[name] = true
	}

	var unused []string
	for name := range check.Args.Set {
		if !allowed[name] {
			unused = append(unused, name)
		}
	}
	sort.Strings(unused)
	for _, name := range unused {
		p.errorf(node, "%s: argument %q is not used by this check", check.Kind, name)
	}
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}

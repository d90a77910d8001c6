package parser

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

// Schema returns the JSON Schema check files are validated against.
func Schema() []byte {
	return schemaJSON
}

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

func validateSchema(doc *yaml.Node, filename string) []*ParseError {
	problem := func(line int, format string, args ...any) []*ParseError {
		return []*ParseError{{File: filename, Line: line, Column: 1, Message: fmt.Sprintf(format, args...)}}
	}

	var data any
	if err := doc.Decode(&data); err != nil {
		return problem(doc.Line, "%v", err)
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return problem(doc.Line, "check file must use string keys: %v", err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return problem(1, "loading schema: %v", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(jsonData))
	if err != nil {
		return problem(1, "schema validation error: %v", err)
	}
	if result.Valid() {
		return nil
	}

	var problems []*ParseError
	seen := make(map[string]bool)
	for _, desc := range result.Errors() {
		node := nodeAt(doc, desc.Field())
		msg := desc.Field() + ": " + desc.Description()
		key := strconv.Itoa(node.Line) + msg
		if seen[key] {
			continue
		}
		seen[key] = true
		problems = append(problems, &ParseError{
			File:    filename,
			Line:    node.Line,
			Column:  node.Column,
			Message: msg,
		})
	}
	return problems
}

// nodeAt follows a schema error field path such as "pages.0.checks.2" into
// the YAML tree and returns the deepest node it reaches.
func nodeAt(doc *yaml.Node, field string) *yaml.Node {
	node := doc
	if field == "" || field == "(root)" {
		return node
	}

	for _, part := range strings.Split(field, ".") {
		var next *yaml.Node
		switch node.Kind {
		case yaml.MappingNode:
			for i := 0; i+1 < len(node.Content); i += 2 {
				if node.Content[i].Value == part {
					next = node.Content[i+1]
					break
				}
			}
		case yaml.SequenceNode:
			if i, err := strconv.Atoi(part); err == nil && i >= 0 && i < len(node.Content) {
				next = node.Content[i]
			}
		}
		if next == nil {
			return node
		}
		node = next
	}
	return node
}

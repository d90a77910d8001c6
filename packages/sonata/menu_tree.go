package sonata

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// MenuNode is either a Leaf or a Group.
type MenuNode interface {
	Label() string
	isMenuNode()
}

// Leaf is a menu entry without sub-items.
type Leaf string

func (l Leaf) Label() string { return string(l) }
func (Leaf) isMenuNode()     {}

// Group is a menu entry with an ordered list of sub-items.
type Group struct {
	Name  string
	Items Menu
}

func NewGroup(name string, items ...MenuNode) Group {
	return Group{Name: name, Items: Menu(items)}
}

func (g Group) Label() string { return g.Name }
func (Group) isMenuNode()     {}

// Menu is an ordered sequence of menu entries.
//
// In YAML and JSON a menu is a list of strings (leaves) and single-key
// mappings from a group label to its own list:
//
//	["Dashboard", {"Reports": ["Sales", "Stock"]}, "Settings"]
type Menu []MenuNode

// Flatten returns every label, groups included, in pre-order.
func (m Menu) Flatten() []string {
	labels := make([]string, 0, len(m))
	for _, node := range m {
		labels = append(labels, node.Label())
		if g, ok := node.(Group); ok {
			labels = append(labels, g.Items.Flatten()...)
		}
	}
	return labels
}

// canonical returns a copy with siblings sorted at every level, so two
// menus holding the same entries compare equal whatever their order.
func (m Menu) canonical() Menu {
	out := make(Menu, 0, len(m))
	for _, node := range m {
		switch n := node.(type) {
		case Leaf:
			out = append(out, n)
		case Group:
			out = append(out, Group{Name: n.Name, Items: n.Items.canonical()})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Label() != out[j].Label() {
			return out[i].Label() < out[j].Label()
		}
		gi, iGroup := out[i].(Group)
		gj, jGroup := out[j].(Group)
		if iGroup && jGroup {
			return gi.Items.String() < gj.Items.String()
		}
		return !iGroup && jGroup
	})
	return out
}

// String renders the menu as an indented tree, groups marked with "+".
func (m Menu) String() string {
	var sb strings.Builder
	m.write(&sb, 0)
	return strings.TrimSuffix(sb.String(), "\n")
}

func (m Menu) write(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, node := range m {
		switch n := node.(type) {
		case Leaf:
			fmt.Fprintf(sb, "%s- %s\n", indent, string(n))
		case Group:
			fmt.Fprintf(sb, "%s+ %s\n", indent, n.Name)
			n.Items.write(sb, depth+1)
		}
	}
}

// Value converts the menu to its plain list form.
func (m Menu) Value() []any {
	out := make([]any, 0, len(m))
	for _, node := range m {
		switch n := node.(type) {
		case Leaf:
			out = append(out, string(n))
		case Group:
			out = append(out, map[string]any{n.Name: n.Items.Value()})
		}
	}
	return out
}

// ParseMenu builds a Menu from its plain list form, as produced by
// decoding JSON or YAML into an interface value.
func ParseMenu(v any) (Menu, error) {
	if v == nil {
		return Menu{}, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("menu must be a list, got %T", v)
	}

	menu := make(Menu, 0, len(list))
	for i, entry := range list {
		switch e := entry.(type) {
		case string:
			menu = append(menu, Leaf(e))
		case map[string]any:
			if len(e) != 1 {
				return nil, fmt.Errorf("menu entry #%d: group must have exactly one label, got %d", i+1, len(e))
			}
			for name, children := range e {
				items, err := ParseMenu(children)
				if err != nil {
					return nil, fmt.Errorf("menu group %q: %w", name, err)
				}
				menu = append(menu, Group{Name: name, Items: items})
			}
		default:
			return nil, fmt.Errorf("menu entry #%d: expected label or group, got %T", i+1, entry)
		}
	}
	return menu, nil
}

func (m Menu) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Value())
}

func (m *Menu) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseMenu(v)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Menu) MarshalYAML() (any, error) {
	return m.Value(), nil
}

// UnmarshalYAML reads the node tree directly so that a mapping holding
// several groups keeps them in the order they were written.
func (m *Menu) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := menuFromYAML(node)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func menuFromYAML(node *yaml.Node) (Menu, error) {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}

	switch {
	case node.Kind == yaml.ScalarNode && node.Tag == "!!null":
		return Menu{}, nil
	case node.Kind != yaml.SequenceNode:
		return nil, fmt.Errorf("line %d: menu must be a list", node.Line)
	}

	menu := make(Menu, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind == yaml.AliasNode {
			item = item.Alias
		}
		switch item.Kind {
		case yaml.ScalarNode:
			menu = append(menu, Leaf(item.Value))
		case yaml.MappingNode:
			for i := 0; i+1 < len(item.Content); i += 2 {
				name := item.Content[i].Value
				children, err := menuFromYAML(item.Content[i+1])
				if err != nil {
					return nil, fmt.Errorf("menu group %q: %w", name, err)
				}
				menu = append(menu, Group{Name: name, Items: children})
			}
		default:
			return nil, fmt.Errorf("line %d: expected menu label or group", item.Line)
		}
	}
	return menu, nil
}

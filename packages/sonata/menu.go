package sonata

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/adminspec/packages/dom"
	"github.com/stretchr/testify/assert"
)

const menuXPath = `ul[contains(concat(' ', normalize-space(@class), ' '), ' sidebar-menu ')]`

// ErrMenuNotFound is returned by SidebarMenu when the page has no sidebar.
var ErrMenuNotFound = errors.New("sidebar menu not found")

// MalformedMenuError reports a menu item without a label link. Path holds
// the labels of the enclosing groups and Index the item's position among
// its siblings.
type MalformedMenuError struct {
	Path  []string
	Index int
}

func (e *MalformedMenuError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("menu item #%d has no label link", e.Index+1)
	}
	return fmt.Sprintf("menu item #%d under %q has no label link", e.Index+1, strings.Join(e.Path, " > "))
}

func menuItemXPath(item string) string {
	return "li//a[normalize-space()=" + dom.Literal(item) + "]"
}

func menuGroupMenuXPath(group string) string {
	return "li[contains(@class, 'treeview')]//a[normalize-space()=" + dom.Literal(group) + "]" +
		"/following-sibling::ul[contains(@class, 'treeview-menu')]"
}

func menuItemInGroupXPath(group, item string) string {
	return fromScope + menuXPath + "//" + menuGroupMenuXPath(group) + "//" + menuItemXPath(item)
}

// AssertMenuExists asserts that the page has exactly one sidebar menu.
func AssertMenuExists(t TestingT, doc *dom.Document) bool {
	helper(t)
	return assertCount(t, doc, 1, fromScope+menuXPath, "menu not found on the page")
}

func AssertMenuNotExists(t TestingT, doc *dom.Document) bool {
	helper(t)
	return assertCount(t, doc, 0, fromScope+menuXPath, "menu is present on the page")
}

// AssertMenuItemExists asserts that the sidebar menu has exactly one item
// labelled item, at any depth.
func AssertMenuItemExists(t TestingT, doc *dom.Document, item string) bool {
	helper(t)
	return assertCount(t, doc, 1, fromScope+menuXPath+"//"+menuItemXPath(item),
		fmt.Sprintf("there is no %q item in the menu", item))
}

func AssertMenuItemNotExists(t TestingT, doc *dom.Document, item string) bool {
	helper(t)
	return assertCount(t, doc, 0, fromScope+menuXPath+"//"+menuItemXPath(item),
		fmt.Sprintf("the menu has a %q item", item))
}

// AssertMenuItemInGroupExists asserts that item is listed inside the
// collapsible group labelled group.
func AssertMenuItemInGroupExists(t TestingT, doc *dom.Document, item, group string) bool {
	helper(t)
	return assertCount(t, doc, 1, menuItemInGroupXPath(group, item),
		fmt.Sprintf("menu group %q has no item %q", group, item))
}

func AssertMenuItemInGroupNotExists(t TestingT, doc *dom.Document, item, group string) bool {
	helper(t)
	return assertCount(t, doc, 0, menuItemInGroupXPath(group, item),
		fmt.Sprintf("menu group %q has item %q", group, item))
}

// AssertMenuItemsEqual asserts that the sidebar menu holds exactly the
// expected hierarchy. Content and sibling order are checked separately so a
// reordered menu is reported as an order mismatch rather than a content one.
func AssertMenuItemsEqual(t TestingT, doc *dom.Document, expected Menu) bool {
	helper(t)

	actual, err := SidebarMenu(doc)
	if err != nil {
		return assert.Fail(t, fmt.Sprintf("cannot read menu: %v", err))
	}

	contentOK := assert.Equal(t, expected.canonical(), actual.canonical(),
		fmt.Sprintf("menu items do not match\nexpected:\n%s\nactual:\n%s", expected, actual))

	orderOK := assert.Equal(t, expected.Flatten(), actual.Flatten(), "menu item order does not match")

	return contentOK && orderOK
}

// SidebarMenu locates the sidebar menu in doc and extracts its hierarchy.
func SidebarMenu(doc *dom.Document) (Menu, error) {
	list, err := doc.First(fromScope + menuXPath)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, ErrMenuNotFound
	}
	return ExtractMenu(dom.FromNode(list))
}

// ExtractMenu walks a <ul> of menu items and returns the labels in document
// order. Items with a nested list become groups, even when that list is
// empty; items without a label link fail with *MalformedMenuError.
func ExtractMenu(list *dom.Document) (Menu, error) {
	return extractMenu(list, nil)
}

func extractMenu(list *dom.Document, path []string) (Menu, error) {
	items, err := list.XPath("./li")
	if err != nil {
		return nil, err
	}

	menu := make(Menu, 0, len(items))
	for i, li := range items {
		item := dom.FromNode(li)

		link, err := item.First("./a")
		if err != nil {
			return nil, err
		}
		if link == nil {
			return nil, &MalformedMenuError{Path: path, Index: i}
		}
		label := dom.Text(link)

		sub, err := item.First("./ul")
		if err != nil {
			return nil, err
		}
		if sub == nil {
			menu = append(menu, Leaf(label))
			continue
		}

		// full slice expression so sibling groups never share a backing array
		children, err := extractMenu(dom.FromNode(sub), append(path[:len(path):len(path)], label))
		if err != nil {
			return nil, err
		}
		menu = append(menu, Group{Name: label, Items: children})
	}
	return menu, nil
}

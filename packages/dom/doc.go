// Package dom wraps the HTML query engines used by adminspec.
//
// A Document is a parsed HTML tree, or a sub-tree of one, that can be
// queried with:
//   - XPath node-set expressions (antchfx/htmlquery)
//   - XPath scalar expressions such as normalize-space(...) (antchfx/xpath)
//   - CSS selectors (goquery + cascadia)
//
// Expressions are evaluated relative to the document root, so helpers that
// want to stay inside a scoped sub-tree must use relative paths (".//a").
package dom

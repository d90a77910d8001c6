// Package sonata provides assertions for pages rendered with the
// SonataAdminBundle conventions.
//
// Helpers take a TestingT (a *testing.T works), a *dom.Document and the
// labels to look for, and report failures through testify the same way
// assert.Equal does. Each returns true when the assertion held.
//
// Covered areas:
//   - Sidebar menu: presence, items, items inside groups, full hierarchy
//   - Tabs: labels and their panes
//   - Forms: text/number/textarea/checkbox/file/select fields, field
//     errors, form action buttons, embedded sub-admin tables
//   - Flash messages: success, error and warning alerts
//   - List page actions and batch actions
//
// Form and tab helpers search below the document root, so pass a document
// scoped to the form or tab container when a page holds several of them.
package sonata

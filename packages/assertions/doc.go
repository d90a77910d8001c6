// Package assertions evaluates the checks of a check file against a parsed
// admin page.
//
// Each check kind maps onto one helper of package sonata:
//   - Menu checks (menuExists, menuItemInGroupExists, menuItemsEqual, menuSnapshot)
//   - Tab checks (tabExists, tabLabelExists, tabPaneExists)
//   - Form field checks (textFieldValueEquals, checkboxFieldChecked, multiSelectFieldValuesEqual)
//   - Flash message checks (flashSuccessExists, flashErrorCount)
//   - List page checks (actionButtonExists, batchActionExists)
//
// A check may narrow the page with a within XPath expression before it runs.
package assertions

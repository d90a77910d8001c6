package parser

import "sort"

// KindSpec describes the arguments of a check kind. Primary is the argument
// a scalar shorthand such as "menuItemExists: Reports" fills in.
type KindSpec struct {
	Required    []string
	Optional    []string
	Primary     string
	Description string
}

const (
	KindMenuExists               CheckKind = "menuExists"
	KindMenuNotExists            CheckKind = "menuNotExists"
	KindMenuItemExists           CheckKind = "menuItemExists"
	KindMenuItemNotExists        CheckKind = "menuItemNotExists"
	KindMenuItemInGroupExists    CheckKind = "menuItemInGroupExists"
	KindMenuItemInGroupNotExists CheckKind = "menuItemInGroupNotExists"
	KindMenuItemsEqual           CheckKind = "menuItemsEqual"
	KindMenuSnapshot             CheckKind = "menuSnapshot"

	KindTabExists         CheckKind = "tabExists"
	KindTabNotExists      CheckKind = "tabNotExists"
	KindTabLabelExists    CheckKind = "tabLabelExists"
	KindTabLabelNotExists CheckKind = "tabLabelNotExists"
	KindTabPaneExists     CheckKind = "tabPaneExists"

	KindTextFieldExists             CheckKind = "textFieldExists"
	KindTextFieldValueEquals        CheckKind = "textFieldValueEquals"
	KindNumberFieldExists           CheckKind = "numberFieldExists"
	KindNumberFieldValueEquals      CheckKind = "numberFieldValueEquals"
	KindTextareaFieldExists         CheckKind = "textareaFieldExists"
	KindTextareaFieldValueEquals    CheckKind = "textareaFieldValueEquals"
	KindCheckboxFieldExists         CheckKind = "checkboxFieldExists"
	KindCheckboxFieldChecked        CheckKind = "checkboxFieldChecked"
	KindCheckboxFieldUnchecked      CheckKind = "checkboxFieldUnchecked"
	KindFileFieldExists             CheckKind = "fileFieldExists"
	KindSelectFieldExists           CheckKind = "selectFieldExists"
	KindSelectOptionExists          CheckKind = "selectOptionExists"
	KindSelectFieldValueEquals      CheckKind = "selectFieldValueEquals"
	KindMultiSelectFieldExists      CheckKind = "multiSelectFieldExists"
	KindMultiSelectFieldValuesEqual CheckKind = "multiSelectFieldValuesEqual"
	KindFormActionButtonExists      CheckKind = "formActionButtonExists"
	KindFormActionButtonNotExists   CheckKind = "formActionButtonNotExists"
	KindFieldContainsError          CheckKind = "fieldContainsError"
	KindSubAdminTableRowCount       CheckKind = "subAdminTableRowCount"

	KindFlashSuccessExists CheckKind = "flashSuccessExists"
	KindFlashErrorExists   CheckKind = "flashErrorExists"
	KindFlashWarningExists CheckKind = "flashWarningExists"
	KindFlashErrorCount    CheckKind = "flashErrorCount"

	KindActionButtonExists    CheckKind = "actionButtonExists"
	KindActionButtonNotExists CheckKind = "actionButtonNotExists"
	KindBatchActionExists     CheckKind = "batchActionExists"
	KindBatchActionNotExists  CheckKind = "batchActionNotExists"
)

func label(desc string) KindSpec {
	return KindSpec{Required: []string{"label"}, Primary: "label", Description: desc}
}

func labelValue(desc string) KindSpec {
	return KindSpec{Required: []string{"label", "value"}, Description: desc}
}

func tab(desc string) KindSpec {
	return KindSpec{Required: []string{"tab"}, Primary: "tab", Description: desc}
}

func action(desc string) KindSpec {
	return KindSpec{Required: []string{"action"}, Primary: "action", Description: desc}
}

func message(desc string) KindSpec {
	return KindSpec{Required: []string{"message"}, Primary: "message", Description: desc}
}

// Kinds lists every check kind a check file may use.
var Kinds = map[CheckKind]KindSpec{
	KindMenuExists:               {Description: "the sidebar menu is on the page"},
	KindMenuNotExists:            {Description: "the page has no sidebar menu"},
	KindMenuItemExists:           {Required: []string{"item"}, Primary: "item", Description: "the menu has the item"},
	KindMenuItemNotExists:        {Required: []string{"item"}, Primary: "item", Description: "the menu lacks the item"},
	KindMenuItemInGroupExists:    {Required: []string{"item", "group"}, Description: "the item is listed in the group"},
	KindMenuItemInGroupNotExists: {Required: []string{"item", "group"}, Description: "the item is not listed in the group"},
	KindMenuItemsEqual:           {Required: []string{"menu"}, Primary: "menu", Description: "the menu holds exactly this hierarchy, in order"},
	KindMenuSnapshot:             {Required: []string{"name"}, Primary: "name", Description: "the menu matches the stored snapshot"},

	KindTabExists:         tab("the tab and its pane exist"),
	KindTabNotExists:      tab("there is no such tab"),
	KindTabLabelExists:    tab("the tab label exists"),
	KindTabLabelNotExists: tab("there is no such tab label"),
	KindTabPaneExists:     tab("the pane of the tab exists"),

	KindTextFieldExists:          label("the text field exists"),
	KindTextFieldValueEquals:     labelValue("the text field holds the value"),
	KindNumberFieldExists:        label("the number field exists"),
	KindNumberFieldValueEquals:   labelValue("the number field holds the value"),
	KindTextareaFieldExists:      label("the textarea exists"),
	KindTextareaFieldValueEquals: labelValue("the textarea holds the value"),
	KindCheckboxFieldExists:      label("the checkbox exists"),
	KindCheckboxFieldChecked:     label("the checkbox is checked"),
	KindCheckboxFieldUnchecked:   label("the checkbox is not checked"),
	KindFileFieldExists:          label("the file field exists"),
	KindSelectFieldExists:        label("the select exists"),
	KindSelectOptionExists:       {Required: []string{"label", "option"}, Description: "the select offers the option"},
	KindSelectFieldValueEquals:   labelValue("the select has the value selected"),
	KindMultiSelectFieldExists:   label("the autocomplete select exists"),
	KindMultiSelectFieldValuesEqual: {
		Required:    []string{"label", "values"},
		Description: "the autocomplete select has exactly these values selected",
	},
	KindFormActionButtonExists:    action("the form has the action button"),
	KindFormActionButtonNotExists: action("the form lacks the action button"),
	KindFieldContainsError:        {Required: []string{"label", "error"}, Description: "the field shows the error"},
	KindSubAdminTableRowCount:     {Required: []string{"label", "count"}, Description: "the embedded table has that many rows"},

	KindFlashSuccessExists: message("a success flash matches the pattern"),
	KindFlashErrorExists:   message("an error flash matches the pattern"),
	KindFlashWarningExists: message("a warning flash matches the pattern"),
	KindFlashErrorCount:    {Required: []string{"count"}, Primary: "count", Description: "the number of error flashes"},

	KindActionButtonExists:    action("the actions menu has the entry"),
	KindActionButtonNotExists: action("the actions menu lacks the entry"),
	KindBatchActionExists:     action("the batch actions include the entry"),
	KindBatchActionNotExists:  action("the batch actions lack the entry"),
}

// KindNames returns every kind name, sorted.
func KindNames() []string {
	names := make([]string, 0, len(Kinds))
	for k := range Kinds {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return names
}

package model

import "strings"

// ControlTypes maps step-file control type names to compact role codes.
var ControlTypes = map[string]string{
	"APPBAR":       "appbar",
	"BUTTON":       "btn",
	"CALENDAR":     "calendar",
	"CHECKBOX":     "chk",
	"COMBOBOX":     "combo",
	"CUSTOM":       "custom",
	"DATAGRID":     "grid",
	"DATAITEM":     "dataitem",
	"DOCUMENT":     "doc",
	"EDIT":         "input",
	"GROUP":        "group",
	"HEADER":       "header",
	"HEADERITEM":   "headeritem",
	"HYPERLINK":    "lnk",
	"IMAGE":        "img",
	"LIST":         "list",
	"LISTITEM":     "listitem",
	"MENU":         "menu",
	"MENUBAR":      "menubar",
	"MENUITEM":     "menuitem",
	"NONE":         "none",
	"PANE":         "pane",
	"PROGRESSBAR":  "progress",
	"RADIOBUTTON":  "radio",
	"SCROLLBAR":    "scrollbar",
	"SEMANTICZOOM": "zoom",
	"SEPARATOR":    "sep",
	"SLIDER":       "slider",
	"SPINNER":      "spinner",
	"SPLITBUTTON":  "splitbtn",
	"STATUSBAR":    "status",
	"TAB":          "tab",
	"TABITEM":      "tabitem",
	"TABLE":        "table",
	"TEXT":         "txt",
	"THUMB":        "thumb",
	"TITLEBAR":     "titlebar",
	"TOOLBAR":      "toolbar",
	"TOOLTIP":      "tooltip",
	"TREE":         "tree",
	"TREEITEM":     "treeitem",
	"WINDOW":       "window",
}

// Role codes the finder and actions refer to directly.
const (
	RoleWindow   = "window"
	RolePane     = "pane"
	RoleCheckBox = "chk"
	RoleDesktop  = "desktop"
)

// MapControlType converts a control type name (case-insensitive) to its
// role code.
func MapControlType(name string) (string, bool) {
	role, ok := ControlTypes[strings.ToUpper(strings.TrimSpace(name))]
	return role, ok
}

// ControlTypeName is the inverse of MapControlType. Unknown roles are returned
// upper-cased.
func ControlTypeName(role string) string {
	for name, r := range ControlTypes {
		if r == role {
			return name
		}
	}
	return strings.ToUpper(role)
}

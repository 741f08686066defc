package model

// FlatElement is an element with a path breadcrumb instead of children.
type FlatElement struct {
	ID          int    `yaml:"i"             json:"i"`
	Role        string `yaml:"r"             json:"r"`
	Title       string `yaml:"t,omitempty"   json:"t,omitempty"`
	Identifier  string `yaml:"id,omitempty"  json:"id,omitempty"`
	Value       string `yaml:"v,omitempty"   json:"v,omitempty"`
	Description string `yaml:"d,omitempty"   json:"d,omitempty"`
	Bounds      [4]int `yaml:"b"             json:"b"`
	Enabled     *bool  `yaml:"e,omitempty"   json:"e,omitempty"`
	Selected    bool   `yaml:"s,omitempty"   json:"s,omitempty"`
	Path        string `yaml:"p,omitempty"   json:"p,omitempty"`
}

// FlattenElements converts a tree of elements into a flat list in document
// order. Each element gets a path of role codes joined with " > ".
func FlattenElements(elements []Element) []FlatElement {
	var result []FlatElement
	for _, el := range elements {
		flattenRecursive(el, "", &result)
	}
	return result
}

// Flatten converts a single element into its flat form without descending.
func Flatten(el Element, path string) FlatElement {
	return FlatElement{
		ID:          el.ID,
		Role:        el.Role,
		Title:       el.Title,
		Identifier:  el.Identifier,
		Value:       el.Value,
		Description: el.Description,
		Bounds:      el.Bounds,
		Enabled:     el.Enabled,
		Selected:    el.Selected,
		Path:        path,
	}
}

func flattenRecursive(el Element, parentPath string, result *[]FlatElement) {
	currentPath := el.Role
	if parentPath != "" {
		currentPath = parentPath + " > " + el.Role
	}
	*result = append(*result, Flatten(el, currentPath))

	for _, child := range el.Children {
		flattenRecursive(child, currentPath, result)
	}
}

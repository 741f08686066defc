package model

// Element is a node of the accessibility tree.
type Element struct {
	ID          int       `yaml:"i"            json:"i"`            // Stable node ID within one tree read
	Role        string    `yaml:"r"            json:"r"`            // Compact control type code
	Title       string    `yaml:"t,omitempty"  json:"t,omitempty"`  // Name property
	Identifier  string    `yaml:"id,omitempty" json:"id,omitempty"` // Automation ID
	Value       string    `yaml:"v,omitempty"  json:"v,omitempty"`  // Current value
	Description string    `yaml:"d,omitempty"  json:"d,omitempty"`  // Help text
	Bounds      [4]int    `yaml:"b"            json:"b"`            // [x, y, width, height] in device pixels
	Focused     bool      `yaml:"f,omitempty"  json:"f,omitempty"`
	Enabled     *bool     `yaml:"e,omitempty"  json:"e,omitempty"` // nil or true = enabled
	Selected    bool      `yaml:"s,omitempty"  json:"s,omitempty"` // Toggle state for check boxes and switches
	Children    []Element `yaml:"c,omitempty"  json:"c,omitempty"`
	Actions     []string  `yaml:"a,omitempty"  json:"a,omitempty"`
}

// IsEnabled reports whether the element accepts input.
func (e Element) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

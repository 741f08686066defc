// Package output renders command results as YAML or JSON.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/desktop-runner/internal/element"
	"github.com/mj1618/desktop-runner/internal/model"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yaml" or "json".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported format: %s (use yaml or json)", s)
}

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// ReadResult is the output of the `read` command.
type ReadResult struct {
	Window   string          `yaml:"window,omitempty" json:"window,omitempty"`
	TS       int64           `yaml:"ts"               json:"ts"`
	Elements []model.Element `yaml:"elements"         json:"elements"`
}

// ReadFlatResult is the output of `read --flat`.
type ReadFlatResult struct {
	Window   string              `yaml:"window,omitempty" json:"window,omitempty"`
	TS       int64               `yaml:"ts"               json:"ts"`
	Elements []model.FlatElement `yaml:"elements"         json:"elements"`
}

// FindResult is the output of the `find` command.
type FindResult struct {
	Locator  string        `yaml:"locator"  json:"locator"`
	Count    int           `yaml:"count"    json:"count"`
	Elements []ElementInfo `yaml:"elements" json:"elements"`
}

// ElementInfo describes a located element.
type ElementInfo struct {
	Kind   string `yaml:"kind"             json:"kind"`
	Bounds [4]int `yaml:"bounds"           json:"bounds"`
	ID     int    `yaml:"id,omitempty"     json:"id,omitempty"`
	Role   string `yaml:"role,omitempty"   json:"role,omitempty"`
	Name   string `yaml:"name,omitempty"   json:"name,omitempty"`
	Value  string `yaml:"value,omitempty"  json:"value,omitempty"`
}

// Describe summarizes el. Tree nodes include their accessibility properties.
func Describe(el element.Element) ElementInfo {
	info := ElementInfo{Kind: "region", Bounds: el.Bounds().Array()}
	if n, ok := el.(*element.Node); ok {
		src := n.Source()
		info.Kind = "node"
		info.ID = src.ID
		info.Role = model.ControlTypeName(src.Role)
		info.Name = src.Title
		info.Value = src.Value
	}
	return info
}

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	return Fprint(os.Stdout, v)
}

// Sprint serializes v in the current output format.
func Sprint(v interface{}) (string, error) {
	var buf bytes.Buffer
	if err := Fprint(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Fprint serializes v to w in the current output format.
func Fprint(w io.Writer, v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		if PrettyOutput {
			return PrintPrettyJSON(w, v)
		}
		return PrintJSON(w, v)
	case FormatYAML:
		return PrintYAML(w, v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// PrintJSON writes v as compact single-line JSON.
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// PrintPrettyJSON writes v as indented JSON.
func PrintPrettyJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// PrintYAML writes v as YAML.
func PrintYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}

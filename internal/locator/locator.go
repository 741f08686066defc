// Package locator describes how to find an element: a kind plus two
// kind-dependent parameters.
package locator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mj1618/desktop-runner/internal/model"
)

// Kind selects the search strategy and backend.
type Kind int

const (
	ByName Kind = iota
	ByID
	ByText
	ByValue
	ByPartialName
	ByPartialID
	ByPartialText
	ByPartialValue
	ByImage
	ByLocation
	ByOCR
)

var kindNames = map[Kind]string{
	ByName:         "NAME",
	ByID:           "ID",
	ByText:         "TEXT",
	ByValue:        "VALUE",
	ByPartialName:  "PARTIALNAME",
	ByPartialID:    "PARTIALID",
	ByPartialText:  "PARTIALTEXT",
	ByPartialValue: "PARTIALVALUE",
	ByImage:        "IMAGE",
	ByLocation:     "LOCATION",
	ByOCR:          "OCR",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a step-file kind name (case-insensitive) to a Kind.
func ParseKind(s string) (Kind, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == upper {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown locator kind %q", s)
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	return []Kind{ByName, ByID, ByText, ByValue, ByPartialName, ByPartialID,
		ByPartialText, ByPartialValue, ByImage, ByLocation, ByOCR}
}

// IsTree reports whether the kind is answered by the accessibility tree.
func (k Kind) IsTree() bool {
	return k <= ByPartialValue
}

// IsPartial reports whether the kind matches by substring.
func (k Kind) IsPartial() bool {
	return k >= ByPartialName && k <= ByPartialValue
}

// Property is the element property a tree kind compares against.
type Property int

const (
	PropName Property = iota
	PropID
	PropText
	PropValue
)

// Property returns the compared property. Only meaningful for tree kinds.
func (k Kind) Property() Property {
	switch k {
	case ByID, ByPartialID:
		return PropID
	case ByText, ByPartialText:
		return PropText
	case ByValue, ByPartialValue:
		return PropValue
	default:
		return PropName
	}
}

// Get reads the property from a tree element: name is the title, id the
// automation ID, text the help text and value the current value.
func (p Property) Get(el model.Element) string {
	switch p {
	case PropID:
		return el.Identifier
	case PropText:
		return el.Description
	case PropValue:
		return el.Value
	default:
		return el.Title
	}
}

// Screen is the search-region sentinel meaning the whole screen.
const Screen = "SCREEN"

// Spec is an immutable element locator.
//
// Tree kinds: Param1 is a control type name, Param2 the property value.
// IMAGE: Param1 is the search-region image or SCREEN, Param2 the target image.
// OCR: Param1 is the search-region image or SCREEN, Param2 the text.
// LOCATION: Param1 and Param2 are integer x and y.
type Spec struct {
	Kind   Kind   `yaml:"kind"   json:"kind"`
	Param1 string `yaml:"param1" json:"param1"`
	Param2 string `yaml:"param2" json:"param2"`
}

// New returns a Spec without validation.
func New(kind Kind, param1, param2 string) Spec {
	return Spec{Kind: kind, Param1: param1, Param2: param2}
}

// Parse builds and validates a Spec from step-file strings.
func Parse(kind, param1, param2 string) (Spec, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return Spec{}, err
	}
	s := New(k, param1, param2)
	if err := s.Validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

// Validate checks the parameters are well-formed for the kind.
func (s Spec) Validate() error {
	switch {
	case s.Kind.IsTree():
		if _, ok := model.MapControlType(s.Param1); !ok {
			return fmt.Errorf("%s: unknown control type %q", s.Kind, s.Param1)
		}
	case s.Kind == ByLocation:
		if _, _, err := s.Point(); err != nil {
			return err
		}
	case s.Kind == ByImage || s.Kind == ByOCR:
		if strings.TrimSpace(s.Param1) == "" || strings.TrimSpace(s.Param2) == "" {
			return fmt.Errorf("%s: both search region and target are required", s.Kind)
		}
	default:
		return fmt.Errorf("unknown locator kind %d", int(s.Kind))
	}
	return nil
}

// Role returns the role code for a tree kind's control type.
func (s Spec) Role() string {
	role, _ := model.MapControlType(s.Param1)
	return role
}

// WholeScreen reports whether an IMAGE or OCR search covers the full screen.
func (s Spec) WholeScreen() bool {
	return strings.EqualFold(strings.TrimSpace(s.Param1), Screen)
}

// Point parses a LOCATION spec's coordinates.
func (s Spec) Point() (int, int, error) {
	x, err := strconv.Atoi(strings.TrimSpace(s.Param1))
	if err != nil {
		return 0, 0, fmt.Errorf("LOCATION: invalid x %q", s.Param1)
	}
	y, err := strconv.Atoi(strings.TrimSpace(s.Param2))
	if err != nil {
		return 0, 0, fmt.Errorf("LOCATION: invalid y %q", s.Param2)
	}
	return x, y, nil
}

// String renders the spec the way step reports label it: "NAME - BUTTON - OK".
func (s Spec) String() string {
	return fmt.Sprintf("%s - %s - %s", s.Kind, s.Param1, s.Param2)
}

package model

import (
	"fmt"
	"sort"
)

// ChangeType is the kind of difference between two reads of a tree.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
	ChangeChanged ChangeType = "changed"
)

// Change is one difference between two reads.
type Change struct {
	Type    ChangeType           `yaml:"type"              json:"type"`
	Path    string               `yaml:"p"                 json:"p"`
	Role    string               `yaml:"r"                 json:"r"`
	Title   string               `yaml:"t,omitempty"       json:"t,omitempty"`
	Fields  map[string][2]string `yaml:"changes,omitempty" json:"changes,omitempty"`
	Element *FlatElement         `yaml:"el,omitempty"      json:"el,omitempty"`
}

// identity keys an element independently of its traversal index, which
// shifts whenever anything earlier in the tree appears or disappears. The
// nth occurrence of the same path, role and label is treated as the same
// element.
type identity struct {
	path, role, label string
	n                 int
}

func label(el FlatElement) string {
	if el.Identifier != "" {
		return "#" + el.Identifier
	}
	return el.Title
}

func index(elements []FlatElement) (map[identity]FlatElement, []identity) {
	seen := make(map[identity]int)
	byKey := make(map[identity]FlatElement, len(elements))
	order := make([]identity, 0, len(elements))
	for _, el := range elements {
		k := identity{path: el.Path, role: el.Role, label: label(el)}
		k.n = seen[k]
		seen[identity{path: k.path, role: k.role, label: k.label}]++
		byKey[k] = el
		order = append(order, k)
	}
	return byKey, order
}

// DiffElements compares two flattened reads. Added and changed elements are
// reported in the order of curr, followed by removals in the order of prev.
func DiffElements(prev, curr []FlatElement) []Change {
	prevByKey, prevOrder := index(prev)
	currByKey, currOrder := index(curr)

	var changes []Change
	for _, k := range currOrder {
		el := currByKey[k]
		old, ok := prevByKey[k]
		if !ok {
			cp := el
			changes = append(changes, Change{Type: ChangeAdded, Path: el.Path, Role: el.Role, Title: el.Title, Element: &cp})
			continue
		}
		if fields := diffFields(old, el); fields != nil {
			changes = append(changes, Change{Type: ChangeChanged, Path: el.Path, Role: el.Role, Title: el.Title, Fields: fields})
		}
	}
	for _, k := range prevOrder {
		if _, ok := currByKey[k]; !ok {
			el := prevByKey[k]
			changes = append(changes, Change{Type: ChangeRemoved, Path: el.Path, Role: el.Role, Title: el.Title})
		}
	}
	return changes
}

// CountChanges tallies changes by type.
func CountChanges(changes []Change) map[ChangeType]int {
	counts := make(map[ChangeType]int, 3)
	for _, c := range changes {
		counts[c.Type]++
	}
	return counts
}

func diffFields(prev, curr FlatElement) map[string][2]string {
	diffs := make(map[string][2]string)
	set := func(key, a, b string) {
		if a != b {
			diffs[key] = [2]string{a, b}
		}
	}
	set("t", prev.Title, curr.Title)
	set("v", prev.Value, curr.Value)
	set("d", prev.Description, curr.Description)
	set("b", fmt.Sprint(prev.Bounds), fmt.Sprint(curr.Bounds))
	set("e", fmt.Sprint(enabled(prev)), fmt.Sprint(enabled(curr)))
	set("s", fmt.Sprint(prev.Selected), fmt.Sprint(curr.Selected))
	if len(diffs) == 0 {
		return nil
	}
	return diffs
}

func enabled(el FlatElement) bool { return el.Enabled == nil || *el.Enabled }

// ChangedKeys returns the field codes of a changed element in sorted order.
func (c Change) ChangedKeys() []string {
	keys := make([]string, 0, len(c.Fields))
	for k := range c.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Snapshot is a captured desktop: the screen size plus every top-level
// window with its element subtree. It is the file format replayed by the
// snapshot reader and written by `read --save`.
type Snapshot struct {
	Screen  [2]int           `yaml:"screen,omitempty" json:"screen,omitempty"` // [width, height]
	Windows []SnapshotWindow `yaml:"windows"          json:"windows"`
}

// SnapshotWindow is a top-level window and the process that owns it.
type SnapshotWindow struct {
	App     string `yaml:"app,omitempty" json:"app,omitempty"`
	PID     int    `yaml:"pid,omitempty" json:"pid,omitempty"`
	Element `yaml:",inline"`
}

// Elements returns the window roots in order.
func (s *Snapshot) Elements() []Element {
	out := make([]Element, len(s.Windows))
	for i, w := range s.Windows {
		out[i] = w.Element
	}
	return out
}

// AssignIDs numbers every element in document order starting at 1.
func (s *Snapshot) AssignIDs() {
	next := 1
	for i := range s.Windows {
		assignIDs(&s.Windows[i].Element, &next)
	}
}

func assignIDs(el *Element, next *int) {
	el.ID = *next
	*next++
	for i := range el.Children {
		assignIDs(&el.Children[i], next)
	}
}

// LoadSnapshot reads a snapshot file. JSON is accepted as a subset of YAML.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", path, err)
	}
	snap.AssignIDs()
	return &snap, nil
}

// SaveSnapshot writes a snapshot file as YAML.
func SaveSnapshot(path string, snap *Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

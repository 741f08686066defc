package platform

import (
	"fmt"
	"strings"
)

// keyNames lists the key names accepted by shortcut steps. Values are the
// canonical names passed to Inputter.KeyCombo.
var keyNames = map[string]string{
	"control": "ctrl", "ctrl": "ctrl",
	"alt": "alt", "shift": "shift",
	"tab": "tab", "enter": "enter", "space": "space",
	"backspace": "backspace", "delete": "delete", "escape": "esc", "esc": "esc",
	"up": "up", "down": "down", "left": "left", "right": "right",
	"pageup": "pageup", "pagedown": "pagedown", "home": "home", "end": "end",
	"cmd": "cmd", "win": "cmd",
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		keyNames[string(c)] = string(c)
	}
	for c := '0'; c <= '9'; c++ {
		keyNames[string(c)] = string(c)
	}
	for i := 1; i <= 12; i++ {
		name := fmt.Sprintf("f%d", i)
		keyNames[name] = name
	}
}

// Modifiers is the set of keys released by ReleaseKeys implementations.
var Modifiers = []string{"ctrl", "alt", "shift", "cmd"}

// NormalizeKey maps a user key name (case-insensitive) to its canonical name.
func NormalizeKey(name string) (string, error) {
	key, ok := keyNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("unknown key %q", name)
	}
	return key, nil
}

// NormalizeKeys normalizes every name, failing on the first unknown key.
func NormalizeKeys(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, n := range names {
		k, err := NormalizeKey(n)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

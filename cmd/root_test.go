package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{"run", "validate", "actions", "find", "read", "serve"}
	found := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}
	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

func TestHelp_TreeLocatorsNeedSnapshot(t *testing.T) {
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		if !strings.Contains(c.Long, "--snapshot") {
			t.Errorf("%s help should say tree locators need --snapshot", c.Name())
		}
	}
}

const snapshotYAML = `screen: [800, 600]
windows:
  - app: Notes
    r: window
    t: Notes
    b: [0, 0, 800, 600]
    c:
      - r: btn
        t: OK
        b: [10, 300, 60, 20]
      - r: input
        t: Username
        b: [10, 10, 100, 20]
      - r: input
        t: UserAge
        b: [10, 40, 100, 20]
`

// execute runs the root command with args and returns what it printed to
// stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DESKTOP_RUNNER_FINDER_FIND_WAIT", "200ms")
	t.Setenv("DESKTOP_RUNNER_RUNNER_REDUCED_TIMEOUT", "50ms")
	t.Setenv("DESKTOP_RUNNER_RUNNER_STEP_DELAY", "0s")
	t.Setenv("DESKTOP_RUNNER_LOGGER_LEVEL", "error")

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	rootCmd.SetArgs(args)
	runErr := rootCmd.Execute()
	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String(), runErr
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCommand_Snapshot(t *testing.T) {
	snap := writeFile(t, "desk.yaml", snapshotYAML)
	steps := writeFile(t, "steps.yaml", "- [focusWindow, Notes]\n- [click, name, BUTTON, OK]\n")

	out, err := execute(t, "run", steps, "--snapshot", snap, "--format", "yaml")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	var report struct {
		OK        bool `yaml:"ok"`
		Completed int  `yaml:"completed"`
	}
	if err := yaml.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, out)
	}
	if !report.OK || report.Completed != 2 {
		t.Errorf("report = %+v, want ok with 2 completed", report)
	}
}

func TestRunCommand_FailureExitsWithError(t *testing.T) {
	snap := writeFile(t, "desk.yaml", snapshotYAML)
	steps := writeFile(t, "steps.yaml", "- [click, name, BUTTON, Missing]\n")

	out, err := execute(t, "run", steps, "--snapshot", snap, "--format", "json")
	if err == nil {
		t.Fatal("expected error for failed step")
	}
	if !strings.Contains(out, `"retried":true`) {
		t.Errorf("expected retried step in output, got:\n%s", out)
	}
}

func TestValidateCommand(t *testing.T) {
	snap := writeFile(t, "desk.yaml", snapshotYAML)
	bad := writeFile(t, "bad.yaml", "- [click, name]\n")

	out, err := execute(t, "validate", bad, "--snapshot", snap, "--format", "yaml")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(out, "takes 3 arguments, got 2") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestFindCommand_All(t *testing.T) {
	snap := writeFile(t, "desk.yaml", snapshotYAML)

	out, err := execute(t, "find", "partialname", "EDIT", "User", "--all", "--snapshot", snap, "--format", "yaml")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !strings.Contains(out, "count: 2") {
		t.Errorf("expected two matches, got:\n%s", out)
	}
}

func TestActionsCommand(t *testing.T) {
	out, err := execute(t, "actions", "--format", "yaml")
	if err != nil {
		t.Fatalf("actions: %v", err)
	}
	for _, want := range []string{"usage: click <locator> <param1> <param2>", "name: waitToDisplay"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestReadCommand_SaveRoundTrip(t *testing.T) {
	snap := writeFile(t, "desk.yaml", snapshotYAML)
	saved := filepath.Join(t.TempDir(), "copy.yaml")

	if _, err := execute(t, "read", "--save", saved, "--snapshot", snap); err != nil {
		t.Fatalf("read --save: %v", err)
	}
	out, err := execute(t, "read", "--flat", "--snapshot", saved, "--format", "yaml", "--save", "", "--diff", "")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(out, "p: window > btn") {
		t.Errorf("expected flattened button, got:\n%s", out)
	}
}

func TestReadCommand_Diff(t *testing.T) {
	snap := writeFile(t, "desk.yaml", snapshotYAML)
	changed := strings.Replace(snapshotYAML, "t: UserAge", "t: UserAge\n        v: \"42\"", 1)
	before := writeFile(t, "before.yaml", changed)

	out, err := execute(t, "read", "--diff", before, "--save", "", "--snapshot", snap, "--format", "yaml")
	if err != nil {
		t.Fatalf("read --diff: %v", err)
	}
	for _, want := range []string{"changed: 1", "added: 0", "removed: 0", "type: changed"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

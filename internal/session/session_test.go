package session

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"

	"github.com/mj1618/desktop-runner/internal/actions"
	"github.com/mj1618/desktop-runner/internal/config"
	"github.com/mj1618/desktop-runner/internal/locator"
	"github.com/mj1618/desktop-runner/internal/model"
	"github.com/mj1618/desktop-runner/internal/platform"
	"github.com/mj1618/desktop-runner/internal/platform/platformtest"
	"github.com/mj1618/desktop-runner/internal/runner"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Finder.FindWait = 100 * time.Millisecond
	cfg.Finder.MaxWait = 200 * time.Millisecond
	cfg.Finder.PollInterval = 10 * time.Millisecond
	cfg.Runner.ReducedTimeout = 20 * time.Millisecond
	cfg.Runner.StepDelay = 0
	cfg.Images.Dir = t.TempDir()
	return cfg
}

func newSession(t *testing.T) (*Session, *platformtest.Fakes) {
	f := platformtest.New()
	f.Reader.Windows = []model.Element{
		{ID: 1, Role: "window", Title: "Form", Bounds: [4]int{0, 0, 400, 300}, Children: []model.Element{
			{ID: 2, Role: "input", Title: "Username", Bounds: [4]int{10, 10, 100, 20}},
			{ID: 3, Role: "input", Title: "UserAge", Bounds: [4]int{10, 40, 100, 20}},
			{ID: 4, Role: "input", Title: "Email", Bounds: [4]int{10, 70, 100, 20}},
		}},
	}
	return New(testConfig(t), f.Provider, zaptest.NewLogger(t)), f
}

func TestRun_ReportsEachStep(t *testing.T) {
	s, f := newSession(t)

	report, err := s.Run(context.Background(), []runner.Step{
		runner.NewStep("write", "name", "EDIT", "Username", "bob"),
		runner.NewStep("click", "name", "EDIT", "Nope"),
	})
	require.Error(t, err)
	assert.False(t, report.OK)
	assert.Equal(t, 2, report.Steps)
	assert.Equal(t, 1, report.Completed)
	require.Len(t, report.Results, 2)
	assert.True(t, report.Results[0].OK)
	assert.True(t, report.Results[1].Retried)
	assert.Contains(t, f.Inputter.Recorded(), "type bob")
	assert.Equal(t, 1, f.Launcher.CloseAllCount())
}

func TestFind_PartialNameInTreeOrder(t *testing.T) {
	s, _ := newSession(t)
	spec, err := locator.Parse("PARTIALNAME", "EDIT", "User")
	require.NoError(t, err)

	found, err := s.Find(context.Background(), spec, true)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, 10, found[0].Bounds().Y)
	assert.Equal(t, 40, found[1].Bounds().Y)

	one, err := s.Find(context.Background(), spec, false)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestValidate_ConfigurationAndImages(t *testing.T) {
	s, _ := newSession(t)

	err := s.Validate([]runner.Step{runner.NewStep("clickk", "name", "BUTTON", "OK")})
	assert.ErrorIs(t, err, actions.ErrConfiguration)

	f, err := os.Create(filepath.Join(s.Config.Images.Dir, "dialog.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 4, 4))))
	require.NoError(t, f.Close())

	steps := []runner.Step{
		{Action: "click", Args: []string{"IMAGE", "dialog", "ok"}, Line: 1},
		{Action: "click", Args: []string{"OCR", "SCREEN", "Submit"}, Line: 2},
		{Action: "click", Args: []string{"OCR", "panel", "Submit"}, Line: 3},
		{Action: "click", Args: []string{"IMAGE", "SCREEN", "dialog.png"}, Line: 4},
	}
	err = s.Validate(steps)
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), `line 1: click - dialog - ok: image "ok"`)
	assert.Contains(t, errs[1].Error(), `line 3:`)
}

func TestNewProvider_Snapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk.yaml")
	snap := &model.Snapshot{Windows: []model.SnapshotWindow{{App: "Notes", Element: model.Element{Role: "window", Title: "Notes"}}}}
	require.NoError(t, model.SaveSnapshot(path, snap))

	p, err := NewProvider(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, p.Reader)
	windows, err := p.Reader.ReadElements(platform.ReadOptions{})
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, "Notes", windows[0].Title)

	_, err = NewProvider(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestStepsDir(t *testing.T) {
	assert.Equal(t, ".", StepsDir("-"))
	assert.Equal(t, filepath.Join("a", "b"), StepsDir(filepath.Join("a", "b", "steps.yaml")))
}

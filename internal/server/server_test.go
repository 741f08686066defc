package server

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/mj1618/desktop-runner/internal/config"
	"github.com/mj1618/desktop-runner/internal/model"
	"github.com/mj1618/desktop-runner/internal/platform"
	"github.com/mj1618/desktop-runner/internal/platform/platformtest"
	"github.com/mj1618/desktop-runner/internal/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newServer(t *testing.T) (*Server, *platformtest.Fakes) {
	t.Helper()
	f := platformtest.New()
	f.Reader.Windows = []model.Element{
		{ID: 1, Role: "window", Title: "Form", Bounds: [4]int{0, 0, 400, 300}, Children: []model.Element{
			{ID: 2, Role: "input", Title: "Username", Bounds: [4]int{10, 10, 100, 20}},
			{ID: 3, Role: "input", Title: "UserAge", Bounds: [4]int{10, 40, 100, 20}},
			{ID: 4, Role: "input", Title: "Email", Bounds: [4]int{10, 70, 100, 20}},
			{ID: 5, Role: "btn", Title: "OK", Bounds: [4]int{10, 100, 60, 20}},
		}},
	}
	cfg := config.NewDefaultConfig()
	cfg.Finder.FindWait = 100 * time.Millisecond
	cfg.Finder.PollInterval = 10 * time.Millisecond
	cfg.Runner.ReducedTimeout = 20 * time.Millisecond
	cfg.Runner.StepDelay = 0
	sess := session.New(cfg, f.Provider, zaptest.NewLogger(t))
	return New(sess, Config{Transport: "stdio", CacheTTL: time.Minute}, zaptest.NewLogger(t)), f
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text, res.IsError
	case *mcp.TextContent:
		return c.Text, res.IsError
	}
	t.Fatalf("unexpected content %T", res.Content[0])
	return "", false
}

func TestRunSteps(t *testing.T) {
	s, f := newServer(t)

	text, isErr := call(t, s.handleRunSteps, map[string]interface{}{"steps": "- [click, name, BUTTON, OK]\n"})
	assert.False(t, isErr, text)
	assert.Contains(t, text, "ok: true")
	assert.Contains(t, f.Inputter.Recorded(), "click 15,115 left x1")

	text, isErr = call(t, s.handleRunSteps, map[string]interface{}{"steps": "- [click, name, BUTTON, Missing]\n"})
	assert.True(t, isErr)
	assert.Contains(t, text, "retried: true")
	assert.Equal(t, 2, f.Launcher.CloseAllCount())
}

func TestRunSteps_BadInput(t *testing.T) {
	s, _ := newServer(t)

	text, isErr := call(t, s.handleRunSteps, map[string]interface{}{})
	assert.True(t, isErr)
	assert.Contains(t, text, "steps parameter is required")

	text, isErr = call(t, s.handleValidateSteps, map[string]interface{}{"steps": "- [click, name]\n"})
	assert.True(t, isErr)
	assert.Contains(t, text, `action "click" takes 3 arguments, got 2`)

	text, isErr = call(t, s.handleValidateSteps, map[string]interface{}{"steps": "- [clear]\n"})
	assert.False(t, isErr, text)
}

func TestFind(t *testing.T) {
	s, _ := newServer(t)

	text, isErr := call(t, s.handleFind, map[string]interface{}{
		"kind": "PARTIALNAME", "param1": "EDIT", "param2": "User", "all": true,
	})
	assert.False(t, isErr, text)
	assert.Contains(t, text, "count: 2")
	assert.Contains(t, text, "name: Username")
	assert.Contains(t, text, "name: UserAge")
	assert.NotContains(t, text, "Email")

	text, isErr = call(t, s.handleFind, map[string]interface{}{"kind": "BOGUS", "param1": "a", "param2": "b"})
	assert.True(t, isErr)
	assert.Contains(t, text, "unknown locator kind")
}

func TestRead_CachedUntilStepsRun(t *testing.T) {
	s, f := newServer(t)

	text, isErr := call(t, s.handleRead, map[string]interface{}{})
	assert.False(t, isErr, text)
	assert.Contains(t, text, "t: Form")
	_, _ = call(t, s.handleRead, map[string]interface{}{})
	assert.Equal(t, 1, f.Reader.ReadCount())
	assert.Equal(t, 1, s.cache.Len())

	_, _ = call(t, s.handleRunSteps, map[string]interface{}{"steps": "- [clear]\n"})
	assert.Zero(t, s.cache.Len())

	text, _ = call(t, s.handleRead, map[string]interface{}{"flat": true})
	assert.Contains(t, text, "p: window > input")
}

func TestListActionsAndReset(t *testing.T) {
	s, _ := newServer(t)

	text, _ := call(t, s.handleListActions, nil)
	assert.Contains(t, text, "click <locator> <param1> <param2>\n")
	assert.Contains(t, text, "shortcut <key1> <key2> <key3>\n")

	_, isErr := call(t, s.handleRunSteps, map[string]interface{}{"steps": "- [focusWindow, Form]\n"})
	require.False(t, isErr)
	assert.False(t, s.session.Finder.Context().RootSearch)

	_, _ = call(t, s.handleResetSession, nil)
	assert.True(t, s.session.Finder.Context().RootSearch)
	windows, _ := s.session.Finder.Cached()
	assert.Zero(t, windows)
}

func TestTreeCache_TTL(t *testing.T) {
	reader := &platformtest.Reader{Windows: []model.Element{{ID: 1, Role: "window"}}}
	c := NewTreeCache(time.Second)
	now := time.Unix(100, 0)
	c.now = func() time.Time { return now }

	_, err := c.ReadElements(reader, platform.ReadOptions{})
	require.NoError(t, err)
	_, _ = c.ReadElements(reader, platform.ReadOptions{})
	assert.Equal(t, 1, reader.ReadCount())

	now = now.Add(2 * time.Second)
	_, _ = c.ReadElements(reader, platform.ReadOptions{})
	assert.Equal(t, 2, reader.ReadCount())

	off := NewTreeCache(0)
	_, _ = off.ReadElements(reader, platform.ReadOptions{})
	_, _ = off.ReadElements(reader, platform.ReadOptions{})
	assert.Equal(t, 4, reader.ReadCount())
	assert.Zero(t, off.Len())
}

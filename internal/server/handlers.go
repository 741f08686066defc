package server

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mj1618/desktop-runner/internal/locator"
	"github.com/mj1618/desktop-runner/internal/model"
	"github.com/mj1618/desktop-runner/internal/output"
	"github.com/mj1618/desktop-runner/internal/platform"
	"github.com/mj1618/desktop-runner/internal/runner"
)

func toolText(v interface{}, isError bool) *mcp.CallToolResult {
	text, err := output.Sprint(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	if isError {
		return mcp.NewToolResultError(text)
	}
	return mcp.NewToolResultText(text)
}

func stringParam(params map[string]interface{}, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

func intParam(params map[string]interface{}, key string, def int) int {
	if v, ok := params[key].(float64); ok {
		return int(v)
	}
	return def
}

func boolParam(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}

func parseStepsParam(params map[string]interface{}) ([]runner.Step, *mcp.CallToolResult) {
	src := stringParam(params, "steps", "")
	if strings.TrimSpace(src) == "" {
		return nil, mcp.NewToolResultError("steps parameter is required")
	}
	steps, err := runner.ParseSteps(strings.NewReader(src))
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return steps, nil
}

func (s *Server) handleRunSteps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	steps, errResult := parseStepsParam(request.GetArguments())
	if errResult != nil {
		return errResult, nil
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	defer s.cache.InvalidateAll()

	report, err := s.session.Run(ctx, steps)
	return toolText(report, err != nil), nil
}

func (s *Server) handleValidateSteps(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	steps, errResult := parseStepsParam(request.GetArguments())
	if errResult != nil {
		return errResult, nil
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	if err := s.session.Validate(steps); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("ok: true\n"), nil
}

func (s *Server) handleFind(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	spec, err := locator.Parse(
		stringParam(params, "kind", ""),
		stringParam(params, "param1", ""),
		stringParam(params, "param2", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	all := boolParam(params, "all", false)

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	found, err := s.session.Find(ctx, spec, all)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result := output.FindResult{Locator: spec.String(), Count: len(found), Elements: []output.ElementInfo{}}
	for _, el := range found {
		result.Elements = append(result.Elements, output.Describe(el))
	}
	return toolText(result, false), nil
}

func (s *Server) handleRead(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	opts := platform.ReadOptions{
		Window: stringParam(params, "window", ""),
		Depth:  intParam(params, "depth", 0),
	}
	flat := boolParam(params, "flat", false)

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	reader := s.session.Provider.Reader
	if reader == nil {
		return mcp.NewToolResultError("reader not available on this platform"), nil
	}
	elements, err := s.cache.ReadElements(reader, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ts := time.Now().Unix()
	if flat {
		return toolText(output.ReadFlatResult{Window: opts.Window, TS: ts, Elements: model.FlattenElements(elements)}, false), nil
	}
	return toolText(output.ReadResult{Window: opts.Window, TS: ts, Elements: elements}, false), nil
}

func (s *Server) handleListActions(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	var usages []string
	for _, d := range s.session.Registry.Descriptors() {
		usages = append(usages, d.Usage())
	}
	return mcp.NewToolResultText(strings.Join(usages, "\n") + "\n"), nil
}

func (s *Server) handleResetSession(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	s.session.Finder.Context().Reset()
	s.session.Finder.InvalidateAll()
	s.cache.InvalidateAll()
	return mcp.NewToolResultText("ok: true\n"), nil
}

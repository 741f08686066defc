package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/desktop-runner/internal/element"
	"github.com/mj1618/desktop-runner/internal/model"
)

func sampleRead() ReadResult {
	return ReadResult{
		Window: "Editor",
		TS:     1707500000,
		Elements: []model.Element{
			{ID: 1, Role: "btn", Title: "OK", Bounds: [4]int{10, 20, 100, 30}},
		},
	}
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintYAML(&buf, sampleRead()); err != nil {
		t.Fatal(err)
	}
	if bytes.Count(buf.Bytes(), []byte("\n")) <= 1 {
		t.Errorf("YAML output should be multi-line, got:\n%s", buf.String())
	}

	var decoded ReadResult
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.Window != "Editor" {
		t.Errorf("window: got %q, want %q", decoded.Window, "Editor")
	}
	if len(decoded.Elements) != 1 {
		t.Errorf("elements: got %d, want 1", len(decoded.Elements))
	}
}

func TestPrintJSON_CompactAndPretty(t *testing.T) {
	var compact, pretty bytes.Buffer
	if err := PrintJSON(&compact, sampleRead()); err != nil {
		t.Fatal(err)
	}
	if err := PrintPrettyJSON(&pretty, sampleRead()); err != nil {
		t.Fatal(err)
	}
	if n := bytes.Count(compact.Bytes(), []byte("\n")); n != 1 {
		t.Errorf("compact output should be single line, got %d lines", n)
	}
	if bytes.Count(pretty.Bytes(), []byte("\n")) <= 1 {
		t.Errorf("pretty output should be multi-line, got:\n%s", pretty.String())
	}
	var decoded ReadResult
	if err := json.Unmarshal(compact.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
}

func TestSprint_FollowsOutputFormat(t *testing.T) {
	defer func(f Format) { OutputFormat = f }(OutputFormat)

	OutputFormat = FormatJSON
	s, err := Sprint(map[string]int{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	if s != "{\"a\":1}\n" {
		t.Errorf("json: got %q", s)
	}

	OutputFormat = FormatYAML
	s, err = Sprint(map[string]int{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	if s != "a: 1\n" {
		t.Errorf("yaml: got %q", s)
	}

	OutputFormat = "xml"
	if _, err := Sprint(1); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestReadResult_OmitEmpty(t *testing.T) {
	data, err := yaml.Marshal(ReadResult{TS: 123, Elements: []model.Element{}})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["window"]; ok {
		t.Error("empty window should be omitted")
	}
	if _, ok := m["ts"]; !ok {
		t.Error("ts should always be present")
	}
}

func TestDescribe(t *testing.T) {
	node := element.NewNode(model.Element{ID: 4, Role: "btn", Title: "OK", Value: "v", Bounds: [4]int{1, 2, 3, 4}}, 100, nil)
	got := Describe(node)
	want := ElementInfo{Kind: "node", Bounds: [4]int{1, 2, 3, 4}, ID: 4, Role: "BUTTON", Name: "OK", Value: "v"}
	if got != want {
		t.Errorf("Describe(node) = %+v, want %+v", got, want)
	}

	region := element.NewRegion(element.Rect{X: 5, Y: 6, Width: 7, Height: 8}, nil)
	if got := Describe(region); got != (ElementInfo{Kind: "region", Bounds: [4]int{5, 6, 7, 8}}) {
		t.Errorf("Describe(region) = %+v", got)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %v, %v", f, err)
	}
	if _, err := ParseFormat("agent"); err == nil {
		t.Error("expected error for agent")
	}
}

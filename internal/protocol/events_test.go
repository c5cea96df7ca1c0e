package protocol

import (
	"testing"
)

func TestNormalizeExit(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		succeeded bool
	}{
		{name: "zero code", raw: `{"type":"exit","code":0}`, succeeded: true},
		{name: "nonzero code", raw: `{"type":"exit","code":1}`, succeeded: false},
		{name: "missing code", raw: `{"type":"exit"}`, succeeded: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := Normalize([]byte(tc.raw))
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			done, ok := ev.(Complete)
			if !ok {
				t.Fatalf("Normalize() = %T, want Complete", ev)
			}
			if done.Succeeded != tc.succeeded {
				t.Fatalf("Succeeded = %v, want %v", done.Succeeded, tc.succeeded)
			}
		})
	}
}

func TestNormalizeAssistantConcatenatesTextParts(t *testing.T) {
	raw := `{"type":"assistant","message":{"content":[` +
		`{"type":"text","text":"Hello "},` +
		`{"type":"tool_use","name":"grep"},` +
		`{"type":"text","text":"world"}]}}`

	ev, err := Normalize([]byte(raw))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	content, ok := ev.(Content)
	if !ok {
		t.Fatalf("Normalize() = %T, want Content", ev)
	}
	if content.Text != "Hello world" {
		t.Fatalf("Text = %q, want %q", content.Text, "Hello world")
	}
}

func TestNormalizeAssistantTextWinsOverTools(t *testing.T) {
	// A text part, even an empty one, suppresses co-occurring tool parts.
	raw := `{"type":"assistant","message":{"content":[` +
		`{"type":"tool_use","name":"bash"},` +
		`{"type":"text","text":""}]}}`

	ev, err := Normalize([]byte(raw))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if _, ok := ev.(Content); !ok {
		t.Fatalf("Normalize() = %T, want Content", ev)
	}
}

func TestNormalizeAssistantToolStartOrder(t *testing.T) {
	raw := `{"type":"assistant","message":{"content":[` +
		`{"type":"tool_use","name":"read_file"},` +
		`{"type":"tool_use","name":"bash"}]}}`

	ev, err := Normalize([]byte(raw))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	start, ok := ev.(ToolStart)
	if !ok {
		t.Fatalf("Normalize() = %T, want ToolStart", ev)
	}
	if len(start.Tools) != 2 || start.Tools[0] != "read_file" || start.Tools[1] != "bash" {
		t.Fatalf("Tools = %v, want [read_file bash]", start.Tools)
	}
}

func TestNormalizeToolOutput(t *testing.T) {
	ev, err := Normalize([]byte(`{"type":"tool_output","output":{"lines":3}}`))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	result, ok := ev.(ToolResult)
	if !ok {
		t.Fatalf("Normalize() = %T, want ToolResult", ev)
	}
	if string(result.Output) != `{"lines":3}` {
		t.Fatalf("Output = %s, want raw output field", result.Output)
	}
}

func TestNormalizeError(t *testing.T) {
	ev, err := Normalize([]byte(`{"type":"error","error":"boom"}`))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	fail, ok := ev.(ErrorEvent)
	if !ok {
		t.Fatalf("Normalize() = %T, want ErrorEvent", ev)
	}
	if fail.Message != "boom" {
		t.Fatalf("Message = %q, want %q", fail.Message, "boom")
	}
}

func TestNormalizeIgnoresUnrecognized(t *testing.T) {
	tests := []string{
		`{"type":"system","subtype":"init"}`,
		`{"type":"assistant"}`,
		`{"type":"assistant","message":{"content":[]}}`,
		`{"type":"assistant","message":{"content":[{"type":"thinking"}]}}`,
		`{"other":"shape"}`,
	}
	for _, raw := range tests {
		ev, err := Normalize([]byte(raw))
		if err != nil {
			t.Fatalf("Normalize(%s) error = %v", raw, err)
		}
		if ev != nil {
			t.Fatalf("Normalize(%s) = %#v, want nil", raw, ev)
		}
	}
}

func TestNormalizeMalformedJSON(t *testing.T) {
	if _, err := Normalize([]byte(`{`)); err == nil {
		t.Fatalf("Normalize() error = nil, want parse error")
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		ev   any
		want string
	}{
		{Content{}, "content"},
		{ToolStart{}, "tool_start"},
		{ToolResult{}, "tool_result"},
		{ErrorEvent{}, "error"},
		{Complete{}, "complete"},
		{nil, "unknown"},
	}
	for _, tc := range tests {
		if got := Kind(tc.ev); got != tc.want {
			t.Fatalf("Kind(%T) = %q, want %q", tc.ev, got, tc.want)
		}
	}
}

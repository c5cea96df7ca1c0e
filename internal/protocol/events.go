package protocol

import (
	"encoding/json"
	"fmt"
)

// RawEvent is one JSON object emitted by the task backend. The schema is
// backend-owned; only the fields below are understood, everything else is
// ignored.
type RawEvent struct {
	Type    string          `json:"type"`
	Message *RawMessage     `json:"message,omitempty"`
	Output  json.RawMessage `json:"output,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    *int            `json:"code,omitempty"`
}

type RawMessage struct {
	Content []ContentPart `json:"content"`
}

type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	Name string `json:"name,omitempty"`
}

// Canonical events produced by Normalize. Exactly one of these (or nothing)
// comes out of each raw backend event.

// Content is an incremental text fragment to append to the reply.
type Content struct {
	Text string
}

// ToolStart announces one or more named sub-operations, in start order.
type ToolStart struct {
	Tools []string
}

// ToolResult carries a sub-operation's output. Accepted but currently not
// rendered.
type ToolResult struct {
	Output json.RawMessage
}

// ErrorEvent is an unrecoverable task failure reported by the backend.
type ErrorEvent struct {
	Message string
}

// Complete is the terminal success/failure marker.
type Complete struct {
	Succeeded bool
}

// Normalize maps one raw backend event onto at most one canonical event.
// Unrecognized event types yield (nil, nil). When an assistant event carries
// both text and tool_use parts, text wins and the tool parts are dropped;
// that matches the backend's observed behavior.
func Normalize(data []byte) (any, error) {
	var raw RawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("backend event parse: %w", err)
	}

	switch raw.Type {
	case "assistant":
		if raw.Message == nil {
			return nil, nil
		}
		var (
			text    string
			hasText bool
			tools   []string
		)
		for _, part := range raw.Message.Content {
			switch part.Type {
			case "text":
				text += part.Text
				hasText = true
			case "tool_use":
				tools = append(tools, part.Name)
			}
		}
		if hasText {
			return Content{Text: text}, nil
		}
		if len(tools) > 0 {
			return ToolStart{Tools: tools}, nil
		}
		return nil, nil
	case "tool_output":
		return ToolResult{Output: raw.Output}, nil
	case "error":
		return ErrorEvent{Message: raw.Error}, nil
	case "exit":
		return Complete{Succeeded: raw.Code != nil && *raw.Code == 0}, nil
	default:
		return nil, nil
	}
}

// Kind names a canonical event for logging and metrics labels.
func Kind(ev any) string {
	switch ev.(type) {
	case Content:
		return "content"
	case ToolStart:
		return "tool_start"
	case ToolResult:
		return "tool_result"
	case ErrorEvent:
		return "error"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

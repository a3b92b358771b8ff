package domain

// StreamEventType enumerates the events a chat turn emits while streaming.
type StreamEventType string

const (
	EventTextDelta  StreamEventType = "text-delta"
	EventToolCall   StreamEventType = "tool-call"
	EventToolResult StreamEventType = "tool-result"
	EventFinish     StreamEventType = "finish"
	EventError      StreamEventType = "error"
)

// StreamEvent is one element of the per-turn event stream relayed to the
// client as it arrives. Exactly one terminal event (finish or error) closes
// a turn.
type StreamEvent struct {
	Type StreamEventType `json:"type"`

	// text-delta
	Text string `json:"text,omitempty"`

	// tool-call / tool-result
	ToolName string         `json:"toolName,omitempty"`
	ToolArgs map[string]any `json:"toolArgs,omitempty"`
	Result   map[string]any `json:"result,omitempty"`

	// finish
	MessageID string `json:"messageId,omitempty"`

	// error
	ErrorKind    string `json:"errorKind,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

func TextDeltaEvent(text string) StreamEvent {
	return StreamEvent{Type: EventTextDelta, Text: text}
}

func ToolCallEvent(name string, args map[string]any) StreamEvent {
	return StreamEvent{Type: EventToolCall, ToolName: name, ToolArgs: args}
}

func ToolResultEvent(name string, result map[string]any) StreamEvent {
	return StreamEvent{Type: EventToolResult, ToolName: name, Result: result}
}

func FinishEvent(messageID string) StreamEvent {
	return StreamEvent{Type: EventFinish, MessageID: messageID}
}

func ErrorEvent(kind, message string) StreamEvent {
	return StreamEvent{Type: EventError, ErrorKind: kind, ErrorMessage: message}
}

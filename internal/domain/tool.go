package domain

// ToolName is the closed set of capabilities the model may invoke mid-turn.
// Dispatch is keyed on this enum rather than free-form strings so an
// unregistered name is a hard error instead of a silent no-op.
type ToolName string

const (
	ToolSearchWeb      ToolName = "searchWeb"
	ToolGenerateLesson ToolName = "generateLesson"
)

func (n ToolName) Known() bool {
	return n == ToolSearchWeb || n == ToolGenerateLesson
}

// ToolSpec is the provider-neutral declaration of a tool: its identifier, a
// model-facing description, and a JSON-schema parameter object. Providers
// translate the schema into their SDK's native type.
type ToolSpec struct {
	Name        ToolName
	Description string
	Parameters  map[string]any
}

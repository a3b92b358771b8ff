package tool

import (
	"context"

	"github.com/finpal/finpal-go/internal/domain"
)

// GenerateLessonTool is a pure structuring call: it packages the
// model-supplied fields into the lesson payload the client later asks the
// materializer to persist. Cross-field validation (quiz vs questions) happens
// at materialization, not here.
type GenerateLessonTool struct{}

func NewGenerateLessonTool() *GenerateLessonTool {
	return &GenerateLessonTool{}
}

func (t *GenerateLessonTool) Spec() domain.ToolSpec {
	return domain.ToolSpec{
		Name:        domain.ToolGenerateLesson,
		Description: "Generate a structured lesson (flashcard or quiz) based on the current conversation topic. Use this when the user wants to save what they learned or practice with a quiz.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"topic": map[string]any{
					"type":        "string",
					"description": "The financial topic to create a lesson about",
				},
				"type": map[string]any{
					"type":        "string",
					"enum":        []string{"flashcard", "quiz"},
					"description": "Type of lesson to generate",
				},
				"content": map[string]any{
					"type":        "string",
					"description": "The main content or explanation for the flashcard",
				},
				"questions": map[string]any{
					"type":        "array",
					"description": "Quiz questions if type is quiz",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"question":      map[string]any{"type": "string"},
							"options":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
							"correctAnswer": map[string]any{"type": "number"},
							"explanation":   map[string]any{"type": "string"},
						},
						"required": []string{"question", "options", "correctAnswer", "explanation"},
					},
				},
			},
			"required": []string{"topic", "type", "content"},
		},
	}
}

func (t *GenerateLessonTool) Execute(_ context.Context, args map[string]any) (map[string]any, error) {
	lesson := map[string]any{
		"topic":   args["topic"],
		"type":    args["type"],
		"content": args["content"],
	}
	if questions, ok := args["questions"]; ok {
		lesson["questions"] = questions
	}

	return map[string]any{
		"success": true,
		"lesson":  lesson,
	}, nil
}

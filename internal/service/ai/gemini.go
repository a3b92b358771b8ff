package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/finpal/finpal-go/internal/constants"
	"github.com/finpal/finpal-go/internal/domain"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiProvider streams chat turns through the Gemini API with function
// declarations for the registered tools.
type GeminiProvider struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func NewGeminiProvider(client *genai.Client, model string, logger *zap.Logger) *GeminiProvider {
	return &GeminiProvider{
		client: client,
		model:  model,
		logger: logger,
	}
}

func (p *GeminiProvider) Name() string {
	return "Gemini"
}

func (p *GeminiProvider) Model() string {
	return p.model
}

func (p *GeminiProvider) StreamTurn(ctx context.Context, req StreamRequest, emit EmitFunc) error {
	if p.client == nil {
		return fmt.Errorf("gemini client not initialized")
	}

	maxSteps := req.MaxSteps
	if maxSteps <= 0 {
		maxSteps = constants.ChatConfig.MaxSteps
	}

	contents := historyToGenai(req.Messages)
	tools := specsToGenai(req)

	for step := 0; step < maxSteps; step++ {
		config := p.generateConfig(req.System)
		// The last permitted step runs without tools so the turn always
		// closes with a textual response instead of another invocation.
		if step < maxSteps-1 {
			config.Tools = tools
		}

		var calls []*genai.FunctionCall
		var modelParts []*genai.Part

		for resp, err := range p.client.Models.GenerateContentStream(ctx, p.model, contents, config) {
			if err != nil {
				p.logger.Error("Gemini stream failed", zap.Error(err), zap.Int("step", step))
				return err
			}
			if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				continue
			}
			for _, part := range resp.Candidates[0].Content.Parts {
				if part == nil {
					continue
				}
				if part.Text != "" {
					emit(domain.TextDeltaEvent(part.Text))
				}
				if part.FunctionCall != nil {
					calls = append(calls, part.FunctionCall)
				}
				modelParts = append(modelParts, part)
			}
		}

		if len(calls) == 0 {
			return nil
		}

		if len(modelParts) > 0 {
			contents = append(contents, genai.NewContentFromParts(modelParts, genai.RoleModel))
		}

		// Sequential dispatch, in arrival order. Tool failures are fed back
		// to the model as data, never raised out of the turn.
		responseParts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			emit(domain.ToolCallEvent(call.Name, call.Args))

			output, err := req.Tools.Execute(ctx, domain.ToolName(call.Name), call.Args)
			if err != nil {
				p.logger.Warn("Tool execution failed",
					zap.String("tool", call.Name),
					zap.Error(err),
				)
				output = map[string]any{"error": err.Error()}
			}

			emit(domain.ToolResultEvent(call.Name, output))
			responseParts = append(responseParts, genai.NewPartFromFunctionResponse(call.Name, output))
		}
		contents = append(contents, genai.NewContentFromParts(responseParts, genai.RoleUser))
	}

	return nil
}

func (p *GeminiProvider) Ping(ctx context.Context) bool {
	if p.client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	temp := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: 10,
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, []*genai.Content{
		genai.NewContentFromText("ping", genai.RoleUser),
	}, config)
	if err != nil {
		p.logger.Debug("Gemini ping failed", zap.Error(err))
		return false
	}

	return len(resp.Candidates) > 0
}

func (p *GeminiProvider) generateConfig(system string) *genai.GenerateContentConfig {
	temperature := constants.ChatConfig.Temperature
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       &temperature,
		MaxOutputTokens:   constants.ChatConfig.MaxOutputTokens,
	}
}

func historyToGenai(messages []domain.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		var role genai.Role = genai.RoleUser
		if m.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return contents
}

func specsToGenai(req StreamRequest) []*genai.Tool {
	specs := req.Tools.Specs()
	if len(specs) == 0 {
		return nil
	}

	declarations := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, spec := range specs {
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        string(spec.Name),
			Description: spec.Description,
			Parameters:  schemaToGenai(spec.Parameters),
		})
	}

	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

// schemaToGenai translates the provider-neutral JSON-schema map into the
// genai schema type. Only the subset the tool declarations use is covered.
func schemaToGenai(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}

	out := &genai.Schema{}

	if t, ok := schema["type"].(string); ok {
		switch t {
		case "object":
			out.Type = genai.TypeObject
		case "string":
			out.Type = genai.TypeString
		case "number":
			out.Type = genai.TypeNumber
		case "integer":
			out.Type = genai.TypeInteger
		case "boolean":
			out.Type = genai.TypeBoolean
		case "array":
			out.Type = genai.TypeArray
		}
	}

	if desc, ok := schema["description"].(string); ok {
		out.Description = desc
	}

	if props, ok := schema["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if sub, ok := raw.(map[string]any); ok {
				out.Properties[name] = schemaToGenai(sub)
			}
		}
	}

	if items, ok := schema["items"].(map[string]any); ok {
		out.Items = schemaToGenai(items)
	}

	if required, ok := schema["required"].([]string); ok {
		out.Required = required
	}

	if enum, ok := schema["enum"].([]string); ok {
		out.Enum = enum
	}

	return out
}

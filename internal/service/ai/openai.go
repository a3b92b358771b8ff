package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/finpal/finpal-go/internal/constants"
	"github.com/finpal/finpal-go/internal/domain"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

// OpenAIProvider is the fallback chat provider: streamed chat completions
// with tool-call accumulation.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewOpenAIProvider(apiKey, model string, logger *zap.Logger) *OpenAIProvider {
	if apiKey == "" {
		return nil
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client: &client,
		model:  model,
		logger: logger,
	}
}

func (p *OpenAIProvider) Name() string {
	return "OpenAI"
}

func (p *OpenAIProvider) Model() string {
	return p.model
}

func (p *OpenAIProvider) StreamTurn(ctx context.Context, req StreamRequest, emit EmitFunc) error {
	if p.client == nil {
		return fmt.Errorf("OpenAI client not initialized")
	}

	maxSteps := req.MaxSteps
	if maxSteps <= 0 {
		maxSteps = constants.ChatConfig.MaxSteps
	}

	messages := historyToOpenAI(req.System, req.Messages)
	tools := specsToOpenAI(req)

	for step := 0; step < maxSteps; step++ {
		params := openai.ChatCompletionNewParams{
			Model:               p.chatModel(),
			Messages:            messages,
			MaxCompletionTokens: openai.Int(int64(constants.ChatConfig.MaxOutputTokens)),
			Temperature:         openai.Float(float64(constants.ChatConfig.Temperature)),
		}
		// Withhold tools on the last permitted step to force a final answer.
		if step < maxSteps-1 {
			params.Tools = tools
		}

		stream := p.client.Chat.Completions.NewStreaming(ctx, params)
		acc := openai.ChatCompletionAccumulator{}

		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				emit(domain.TextDeltaEvent(chunk.Choices[0].Delta.Content))
			}
		}
		if err := stream.Err(); err != nil {
			p.logger.Error("OpenAI stream failed", zap.Error(err), zap.Int("step", step))
			return err
		}
		if len(acc.Choices) == 0 {
			return fmt.Errorf("no choices in OpenAI response")
		}

		message := acc.Choices[0].Message
		if len(message.ToolCalls) == 0 {
			return nil
		}

		messages = append(messages, message.ToParam())

		for _, call := range message.ToolCalls {
			var args map[string]any
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				p.logger.Warn("Failed to decode tool arguments",
					zap.String("tool", call.Function.Name),
					zap.Error(err),
				)
				args = map[string]any{}
			}

			emit(domain.ToolCallEvent(call.Function.Name, args))

			output, err := req.Tools.Execute(ctx, domain.ToolName(call.Function.Name), args)
			if err != nil {
				p.logger.Warn("Tool execution failed",
					zap.String("tool", call.Function.Name),
					zap.Error(err),
				)
				output = map[string]any{"error": err.Error()}
			}

			emit(domain.ToolResultEvent(call.Function.Name, output))

			payload, err := json.Marshal(output)
			if err != nil {
				payload = []byte(`{"error":"failed to encode tool result"}`)
			}
			messages = append(messages, openai.ToolMessage(string(payload), call.ID))
		}
	}

	return nil
}

func (p *OpenAIProvider) Ping(ctx context.Context) bool {
	if p.client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.chatModel(),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("ping"),
		},
		MaxCompletionTokens: openai.Int(10),
	})
	if err != nil {
		p.logger.Debug("OpenAI ping failed", zap.Error(err))
		return false
	}

	return len(resp.Choices) > 0
}

func (p *OpenAIProvider) chatModel() openai.ChatModel {
	switch p.model {
	case "gpt-4o":
		return openai.ChatModelGPT4o
	case "gpt-4o-mini":
		return openai.ChatModelGPT4oMini
	case "gpt-4.1":
		return openai.ChatModelGPT4_1
	case "gpt-4.1-mini":
		return openai.ChatModelGPT4_1Mini
	case "gpt-5":
		return openai.ChatModelGPT5
	case "gpt-5-mini":
		return openai.ChatModelGPT5Mini
	default:
		return openai.ChatModelGPT4oMini
	}
}

func historyToOpenAI(system string, messages []domain.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	out = append(out, openai.SystemMessage(system))
	for _, m := range messages {
		if m.Role == domain.RoleAssistant {
			out = append(out, openai.AssistantMessage(m.Content))
		} else {
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func specsToOpenAI(req StreamRequest) []openai.ChatCompletionToolUnionParam {
	specs := req.Tools.Specs()
	if len(specs) == 0 {
		return nil
	}

	tools := make([]openai.ChatCompletionToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        string(spec.Name),
			Description: openai.String(spec.Description),
			Parameters:  shared.FunctionParameters(spec.Parameters),
		}))
	}
	return tools
}

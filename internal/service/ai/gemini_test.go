package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/finpal/finpal-go/internal/domain"
	"github.com/finpal/finpal-go/internal/tool"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// scriptedTool records dispatch order and returns a canned result or error.
type scriptedTool struct {
	name   domain.ToolName
	result map[string]any
	err    error

	mu  sync.Mutex
	log *[]string
}

func (s *scriptedTool) Spec() domain.ToolSpec {
	return domain.ToolSpec{
		Name:        s.name,
		Description: "scripted",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string"},
			},
		},
	}
}

func (s *scriptedTool) Execute(_ context.Context, _ map[string]any) (map[string]any, error) {
	s.mu.Lock()
	*s.log = append(*s.log, string(s.name))
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

// requestLog captures, per upstream request, whether tools were declared and
// the raw body.
type requestLog struct {
	mu        sync.Mutex
	toolsSent []bool
	bodies    []string
}

func (l *requestLog) record(body []byte) {
	var decoded map[string]any
	_ = json.Unmarshal(body, &decoded)
	_, hasTools := decoded["tools"]

	l.mu.Lock()
	l.toolsSent = append(l.toolsSent, hasTools)
	l.bodies = append(l.bodies, string(body))
	l.mu.Unlock()
}

func (l *requestLog) snapshot() ([]bool, []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]bool(nil), l.toolsSent...), append([]string(nil), l.bodies...)
}

const (
	geminiTextPayload = `{"candidates":[{"content":{"role":"model","parts":[{"text":"All done."}]}}]}`

	geminiSearchCallPayload = `{"candidates":[{"content":{"role":"model","parts":[{"functionCall":{"name":"searchWeb","args":{"query":"romance scams"}}}]}}]}`

	geminiTwoCallsPayload = `{"candidates":[{"content":{"role":"model","parts":[{"functionCall":{"name":"searchWeb","args":{"query":"romance scams"}}},{"functionCall":{"name":"generateLesson","args":{"topic":"Romance scams"}}}]}}]}`
)

func writeGeminiSSE(w http.ResponseWriter, payload string) {
	w.Header().Set("Content-Type", "text/event-stream")
	fmt.Fprintf(w, "data: %s\r\n\r\n", payload)
}

func newGeminiTestProvider(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: server.URL},
	})
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}

	return NewGeminiProvider(client, "gemini-2.0-flash", zap.NewNop())
}

func newScriptedRegistry(t *testing.T, tools ...tool.Tool) *tool.Registry {
	t.Helper()
	registry := tool.NewRegistry()
	for _, tl := range tools {
		if err := registry.Register(tl); err != nil {
			t.Fatalf("failed to register tool: %v", err)
		}
	}
	return registry
}

func TestGeminiDispatchesToolCallsInArrivalOrder(t *testing.T) {
	log := &requestLog{}
	var requests int
	var mu sync.Mutex

	provider := newGeminiTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		log.record(body)

		mu.Lock()
		requests++
		first := requests == 1
		mu.Unlock()

		if first {
			writeGeminiSSE(w, geminiTwoCallsPayload)
		} else {
			writeGeminiSSE(w, geminiTextPayload)
		}
	})

	var dispatched []string
	registry := newScriptedRegistry(t,
		&scriptedTool{name: domain.ToolSearchWeb, result: map[string]any{"answer": "stay alert"}, log: &dispatched},
		&scriptedTool{name: domain.ToolGenerateLesson, result: map[string]any{"topic": "Romance scams"}, log: &dispatched},
	)

	var events []domain.StreamEvent
	err := provider.StreamTurn(context.Background(), StreamRequest{
		System:   "You are a helper.",
		Messages: []domain.ChatMessage{{Role: domain.RoleUser, Content: "Tell me about scams"}},
		Tools:    registry,
		MaxSteps: 5,
	}, func(e domain.StreamEvent) { events = append(events, e) })
	if err != nil {
		t.Fatalf("StreamTurn returned error: %v", err)
	}

	if len(dispatched) != 2 || dispatched[0] != "searchWeb" || dispatched[1] != "generateLesson" {
		t.Errorf("dispatch order = %v, want [searchWeb generateLesson]", dispatched)
	}

	wantTypes := []domain.StreamEventType{
		domain.EventToolCall, domain.EventToolResult,
		domain.EventToolCall, domain.EventToolResult,
		domain.EventTextDelta,
	}
	if len(events) != len(wantTypes) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(wantTypes), events)
	}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Errorf("event %d type = %s, want %s", i, events[i].Type, want)
		}
	}
	if events[0].ToolName != "searchWeb" || events[2].ToolName != "generateLesson" {
		t.Errorf("tool-call names = %s, %s", events[0].ToolName, events[2].ToolName)
	}

	toolsSent, _ := log.snapshot()
	if len(toolsSent) != 2 || !toolsSent[0] || !toolsSent[1] {
		t.Errorf("tools declared per request = %v, want [true true]", toolsSent)
	}
}

func TestGeminiStopsAtStepBoundAndWithholdsTools(t *testing.T) {
	log := &requestLog{}

	// The model keeps calling the tool whenever tools are declared, so only
	// the final tool-less step can close the turn.
	provider := newGeminiTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		log.record(body)

		var decoded map[string]any
		_ = json.Unmarshal(body, &decoded)
		if _, hasTools := decoded["tools"]; hasTools {
			writeGeminiSSE(w, geminiSearchCallPayload)
		} else {
			writeGeminiSSE(w, geminiTextPayload)
		}
	})

	var dispatched []string
	registry := newScriptedRegistry(t,
		&scriptedTool{name: domain.ToolSearchWeb, result: map[string]any{"answer": "stay alert"}, log: &dispatched},
	)

	var finalText strings.Builder
	err := provider.StreamTurn(context.Background(), StreamRequest{
		System:   "You are a helper.",
		Messages: []domain.ChatMessage{{Role: domain.RoleUser, Content: "Tell me about scams"}},
		Tools:    registry,
		MaxSteps: 3,
	}, func(e domain.StreamEvent) {
		if e.Type == domain.EventTextDelta {
			finalText.WriteString(e.Text)
		}
	})
	if err != nil {
		t.Fatalf("StreamTurn returned error: %v", err)
	}

	toolsSent, _ := log.snapshot()
	if len(toolsSent) != 3 {
		t.Fatalf("got %d requests, want 3", len(toolsSent))
	}
	if !toolsSent[0] || !toolsSent[1] || toolsSent[2] {
		t.Errorf("tools declared per request = %v, want [true true false]", toolsSent)
	}
	if len(dispatched) != 2 {
		t.Errorf("tool dispatched %d times, want 2", len(dispatched))
	}
	if finalText.String() != "All done." {
		t.Errorf("final text = %q", finalText.String())
	}
}

func TestGeminiFeedsToolFailureBackAsData(t *testing.T) {
	log := &requestLog{}
	var requests int
	var mu sync.Mutex

	provider := newGeminiTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		log.record(body)

		mu.Lock()
		requests++
		first := requests == 1
		mu.Unlock()

		if first {
			writeGeminiSSE(w, geminiSearchCallPayload)
		} else {
			writeGeminiSSE(w, geminiTextPayload)
		}
	})

	var dispatched []string
	registry := newScriptedRegistry(t,
		&scriptedTool{name: domain.ToolSearchWeb, err: errors.New("search service exploded"), log: &dispatched},
	)

	var events []domain.StreamEvent
	err := provider.StreamTurn(context.Background(), StreamRequest{
		System:   "You are a helper.",
		Messages: []domain.ChatMessage{{Role: domain.RoleUser, Content: "Tell me about scams"}},
		Tools:    registry,
		MaxSteps: 5,
	}, func(e domain.StreamEvent) { events = append(events, e) })
	if err != nil {
		t.Fatalf("tool failure must not abort the turn, got: %v", err)
	}

	var result *domain.StreamEvent
	for i := range events {
		if events[i].Type == domain.EventToolResult {
			result = &events[i]
			break
		}
	}
	if result == nil {
		t.Fatal("no tool-result event emitted")
	}
	if result.Result["error"] != "search service exploded" {
		t.Errorf("tool-result error = %v", result.Result["error"])
	}

	_, bodies := log.snapshot()
	if len(bodies) < 2 {
		t.Fatalf("got %d requests, want 2", len(bodies))
	}
	if !strings.Contains(bodies[1], "search service exploded") {
		t.Error("failure payload was not fed back to the model")
	}
}

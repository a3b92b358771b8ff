package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"sync"
	"text/template"

	"github.com/finpal/finpal-go/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type TemplateName string

const (
	TemplateSystemPrompt TemplateName = "system_prompt.tmpl"
)

// PromptBuilder renders system instructions from embedded templates.
// Parsed templates are cached after first use.
type PromptBuilder struct {
	mu        sync.RWMutex
	templates map[TemplateName]*template.Template
}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		templates: make(map[TemplateName]*template.Template),
	}
}

type systemPromptVars struct {
	Persona             string
	Name                string
	Age                 int
	Country             domain.Country
	Language            domain.Language
	LanguageInstruction string
	Advisor             domain.Advisor
}

// BuildSystemPrompt composes persona, profile summary, language directive and
// the fixed pedagogical guidelines into one instruction block. Unknown advisor
// or language values degrade to the documented defaults; the only error path
// is a broken embedded template.
func (pb *PromptBuilder) BuildSystemPrompt(profile *domain.UserProfile) (string, error) {
	if profile == nil {
		return "", fmt.Errorf("profile is required to build a system prompt")
	}

	return pb.Render(TemplateSystemPrompt, systemPromptVars{
		Persona:             personaFor(profile.Advisor),
		Name:                profile.Name,
		Age:                 profile.Age,
		Country:             profile.Country,
		Language:            profile.Language,
		LanguageInstruction: languageInstructionFor(profile.Language),
		Advisor:             ResolveAdvisor(profile.Advisor),
	})
}

func (pb *PromptBuilder) Render(name TemplateName, data any) (string, error) {
	tmpl, err := pb.getTemplate(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}

	return buf.String(), nil
}

func (pb *PromptBuilder) getTemplate(name TemplateName) (*template.Template, error) {
	pb.mu.RLock()
	if tmpl, ok := pb.templates[name]; ok {
		pb.mu.RUnlock()
		return tmpl, nil
	}
	pb.mu.RUnlock()

	filename := filepath.ToSlash(filepath.Join("templates", string(name)))
	content, err := templateFS.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("load prompt template %s: %w", name, err)
	}

	tmpl, err := template.New(string(name)).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}

	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.templates[name] = tmpl

	return tmpl, nil
}

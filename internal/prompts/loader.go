// Package prompts holds the embedded prompt templates and renders them with
// {{name}} placeholder substitution.
package prompts

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed *.md
var promptFS embed.FS

// Template names.
const (
	ReviewerSystem      = "reviewer_system"
	MetaReviewerSystem  = "meta_reviewer_system"
	ExtendedForm        = "extended_form"
	ShortForm           = "short_form"
	ReviewFormat        = "review_format"
	CallResponseSection = "call_response_section"
	CallContext         = "call_context"
	Proposal            = "proposal"
	Reflection          = "reflection"
	FewShotIntro        = "fewshot_intro"
	IdeagenTurn         = "ideagen_turn"
	IdeagenSynthesis    = "ideagen_synthesis"
)

// PromptTemplate represents a prompt template with metadata
type PromptTemplate struct {
	Name    string
	Content string
}

// PromptLoader handles loading and rendering prompt templates
type PromptLoader struct {
	templates map[string]*PromptTemplate
}

var (
	defaultOnce   sync.Once
	defaultLoader *PromptLoader
	defaultErr    error
)

// Default returns the process-wide loader over the embedded templates.
func Default() (*PromptLoader, error) {
	defaultOnce.Do(func() {
		defaultLoader, defaultErr = NewPromptLoader()
	})
	return defaultLoader, defaultErr
}

// NewPromptLoader creates a new prompt loader
func NewPromptLoader() (*PromptLoader, error) {
	loader := &PromptLoader{
		templates: make(map[string]*PromptTemplate),
	}
	if err := loader.loadTemplates(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}
	return loader, nil
}

func (p *PromptLoader) loadTemplates() error {
	entries, err := promptFS.ReadDir(".")
	if err != nil {
		return fmt.Errorf("failed to read prompts directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		content, err := promptFS.ReadFile(entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read prompt file %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), ".md")
		p.templates[name] = &PromptTemplate{Name: name, Content: string(content)}
	}
	return nil
}

// GetPrompt returns a prompt template by name
func (p *PromptLoader) GetPrompt(name string) (*PromptTemplate, error) {
	template, exists := p.templates[name]
	if !exists {
		return nil, fmt.Errorf("prompt template '%s' not found", name)
	}
	return template, nil
}

// RenderPrompt substitutes {{key}} placeholders in a single pass, so values
// that happen to contain placeholder syntax are left as written.
func (p *PromptLoader) RenderPrompt(name string, variables map[string]string) (string, error) {
	template, err := p.GetPrompt(name)
	if err != nil {
		return "", err
	}
	if len(variables) == 0 {
		return template.Content, nil
	}

	pairs := make([]string, 0, len(variables)*2)
	for key, value := range variables {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template.Content), nil
}

// ListPrompts returns all available prompt template names, sorted.
func (p *PromptLoader) ListPrompts() []string {
	names := make([]string, 0, len(p.templates))
	for name := range p.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

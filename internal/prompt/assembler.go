// Package prompt assembles the final generation prompt: a fixed instruction
// template with the composed context, recent history, and the user's message
// interpolated in. Assembly is deterministic string substitution — all
// retrieval and ranking decisions happen before this point.
package prompt

import (
	"strings"

	"github.com/54b3r/shopsense-go/internal/catalog"
)

// Prompt is the fully assembled request handed to the generator.
type Prompt struct {
	// System is the instruction text with context interpolated.
	System string
	// User is the raw user message, passed as the user turn.
	User string
	// Settings carries the model name and sampling parameters to use.
	Settings catalog.ModelSettings
}

// Assembler interpolates context into the instruction template.
type Assembler struct {
	template string
}

// NewAssembler returns an assembler using template, or DefaultTemplate when
// template is empty.
func NewAssembler(template string) *Assembler {
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate
	}
	return &Assembler{template: template}
}

// Assemble builds the prompt for one request. A non-empty
// settings.SystemPrompt replaces the built-in template for this call; the
// placeholders work the same either way. strict appends the post-validation
// addendum used on the single regeneration attempt.
func (a *Assembler) Assemble(contextText, history, userMessage string, settings catalog.ModelSettings, strict bool) Prompt {
	tpl := a.template
	if strings.TrimSpace(settings.SystemPrompt) != "" {
		tpl = settings.SystemPrompt
	}
	if strict {
		tpl += StrictAddendum
	}

	if strings.TrimSpace(contextText) == "" {
		contextText = "(không có dữ liệu phù hợp)"
	}
	if strings.TrimSpace(history) == "" {
		history = "(chưa có hội thoại trước đó)"
	}

	system := strings.NewReplacer(
		"{{context}}", contextText,
		"{{history}}", history,
		"{{message}}", userMessage,
	).Replace(tpl)

	return Prompt{
		System:   system,
		User:     userMessage,
		Settings: settings,
	}
}

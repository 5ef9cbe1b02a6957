package service

import (
	"fmt"
	"strings"

	"inlineai.app/relay/common/llm"
	"inlineai.app/relay/internal/model"
)

const (
	structuredChangeSchemaName = "structured_change"
	screenshotNotAvailable     = "Not available"
)

var structuredChangeSchema = llm.GenerateSchema[model.StructuredChange]()

const structuringSystemPrompt = `You are a senior front-end engineer preparing a change request for a coding agent.
Turn a visitor's free-text request about one element of a web page into a precise, actionable spec.`

// StructuringPrompt embeds the request context and the raw description.
// screenshotURL may be empty, in which case the prompt says so explicitly.
func StructuringPrompt(in model.ChangeRequestInput, screenshotURL string) string {
	if screenshotURL == "" {
		screenshotURL = screenshotNotAvailable
	}

	var b strings.Builder
	b.WriteString("## Context\n")
	fmt.Fprintf(&b, "- **Page URL**: %s\n", in.URL)
	fmt.Fprintf(&b, "- **Locator**: `%s`\n", in.Locator)
	fmt.Fprintf(&b, "- **Viewport**: %s×%s\n", formatDimension(in.Viewport.Width), formatDimension(in.Viewport.Height))
	fmt.Fprintf(&b, "- **Screenshot**: %s\n", screenshotURL)
	b.WriteString("\n## User's Request\n\"\"\"\n")
	b.WriteString(in.Description)
	b.WriteString("\n\"\"\"\n\n")
	b.WriteString(`## Instructions
Normalize this into a precise, actionable spec:

1. **scope**: Name the component or section (e.g. "Pricing card header", "Hero CTA")
2. **expectedChange**: Specific edits (copy changes, CSS adjustments, etc.)
3. **acceptanceCriteria**: 3-5 testable bullets suitable for a PR checklist
4. **riskNotes**: Potential side effects (layout shifts, accessibility, mobile); empty list if none
5. **estimatedComplexity**: trivial | low | medium | high, or null when it cannot be judged

Focus on:
- Precise CSS or component names when possible
- Measurable criteria (e.g. "font-size increased to 24px", not just "bigger")
- Accessibility implications
- Mobile and responsive considerations`)

	return b.String()
}

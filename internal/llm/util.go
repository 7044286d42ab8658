// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip a potential language identifier on the first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}

// CleanYAMLBlock removes markdown code fence wrappers from YAML responses.
// Handles ```yaml ... ``` as well as bare ``` ... ``` fences, including
// responses with explanatory text before the fence. The unwrapped body is
// returned with leading and trailing whitespace trimmed.
func CleanYAMLBlock(text string) string {
	if !strings.Contains(text, "```") {
		return strings.TrimSpace(text)
	}

	// Prefer the segment following an explicit ```yaml marker, otherwise
	// take whatever follows the first bare fence.
	var body string
	if idx := strings.LastIndex(text, "```yaml"); idx >= 0 {
		body = text[idx+len("```yaml"):]
	} else {
		idx := strings.Index(text, "```")
		body = text[idx+len("```"):]
		// Drop a language tag immediately after the opening fence
		if nl := strings.Index(body, "\n"); nl >= 0 {
			firstLine := strings.TrimSpace(body[:nl])
			if firstLine != "" && len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, ":") {
				body = body[nl+1:]
			}
		}
	}

	// Cut at the closing fence if present
	if idx := strings.Index(body, "```"); idx >= 0 {
		body = body[:idx]
	}

	return strings.TrimSpace(body)
}

package adapter

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// renderFrontmatterMarkdown serializes fields as a YAML frontmatter
// block via a real YAML encoder (never string concatenation, per spec
// section 4.5), followed by body and a trailing Calvin footer marker.
// A nil or empty fields map produces no frontmatter block at all.
func renderFrontmatterMarkdown(fields map[string]any, body, footer string) ([]byte, error) {
	var buf bytes.Buffer

	if len(fields) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(fields); err != nil {
			return nil, fmt.Errorf("encoding frontmatter: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("closing frontmatter encoder: %w", err)
		}
		fm := buf.String()
		buf.Reset()
		buf.WriteString("---\n")
		buf.WriteString(fm)
		buf.WriteString("---\n\n")
	}

	buf.WriteString(body)
	if buf.Len() > 0 && buf.Bytes()[buf.Len()-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString("\n")
	buf.WriteString(footer)
	buf.WriteString("\n")

	return buf.Bytes(), nil
}

// commandFrontmatterFields builds the frontmatter map shared by the
// command-style outputs (claude-code, codex, and cursor's mirrored
// commands/): description, allowed-tools, and argument-hint derived
// from the asset's declared arguments.
func commandFrontmatterFields(description string, allowedTools []string, argumentHint string) map[string]any {
	fields := map[string]any{"description": description}
	if len(allowedTools) > 0 {
		fields["allowed-tools"] = allowedTools
	}
	if argumentHint != "" {
		fields["argument-hint"] = argumentHint
	}
	return fields
}

func argumentHintFrom(names []string) string {
	var hint string
	for i, n := range names {
		if i > 0 {
			hint += " "
		}
		hint += "<" + n + ">"
	}
	return hint
}

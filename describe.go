// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package yangcheck

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/defenseunicorns/yangcheck/schema"
)

// Describe renders a markdown overview of m (identity, description and tree diagram)
//
// When styled is false the raw markdown is returned
func Describe(m *schema.Module, styled bool) (string, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", m.Name)
	sb.WriteString("| | |\n| --- | --- |\n")
	fmt.Fprintf(&sb, "| namespace | `%s` |\n", m.Namespace)
	fmt.Fprintf(&sb, "| prefix | `%s` |\n", m.Prefix)
	if m.Revision != "" {
		fmt.Fprintf(&sb, "| revision | %s |\n", m.Revision)
	}
	sb.WriteString("\n")

	if desc := strings.TrimSpace(m.Description); desc != "" {
		sb.WriteString(desc)
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Tree\n\n```\n")
	if err := schema.WriteTree(&sb, m); err != nil {
		return "", err
	}
	sb.WriteString("```\n")

	md := sb.String()
	if !styled {
		return md, nil
	}

	style := glamour.WithAutoStyle()
	if termenv.EnvNoColor() {
		style = glamour.WithStandardStyle("notty")
	}

	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		return "", err
	}

	return r.Render(md)
}

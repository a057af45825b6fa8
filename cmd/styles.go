// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// DefaultStyles returns the log styles of every yangcheck binary.
func DefaultStyles() *log.Styles {
	styles := log.DefaultStyles()

	// https://github.com/charmbracelet/vhs/blob/main/themes.json
	styles.Levels[log.DebugLevel] = styles.Levels[log.DebugLevel].Foreground(blue)
	styles.Levels[log.InfoLevel] = styles.Levels[log.InfoLevel].Foreground(lipgloss.AdaptiveColor{
		Light: "#007197", // tokyonight-day cyan
		Dark:  "#7dcfff", // tokyonight cyan
	})
	styles.Levels[log.WarnLevel] = styles.Levels[log.WarnLevel].Foreground(lipgloss.AdaptiveColor{
		Light: "#8c6c3e", // tokyonight-day amber/yellow
		Dark:  "#e0af68", // tokyonight amber/yellow
	})
	styles.Levels[log.ErrorLevel] = styles.Levels[log.ErrorLevel].Foreground(red)
	styles.Levels[log.FatalLevel] = styles.Levels[log.FatalLevel].Foreground(lipgloss.AdaptiveColor{
		Light: "#9854f1", // tokyonight-day magenta
		Dark:  "#bb9af7", // tokyonight magenta
	})

	// the failing file and the cause stand out in a diagnostic line
	styles.Keys["err"] = lipgloss.NewStyle().Foreground(red)
	styles.Values["err"] = lipgloss.NewStyle().Bold(true)
	styles.Keys["path"] = FaintStyle
	styles.Values["path"] = Green

	return styles
}

var (
	red = lipgloss.AdaptiveColor{
		Light: "#f52a65", // tokyonight-day red
		Dark:  "#f7768e", // tokyonight red
	}
	blue = lipgloss.AdaptiveColor{
		Light: "#2e7de9", // tokyonight-day blue
		Dark:  "#7aa2f7", // tokyonight blue
	}

	// FaintStyle dims tree connectors and flags of non-configuration nodes
	FaintStyle = lipgloss.NewStyle().Faint(true)

	// Green marks configuration nodes
	Green = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{
		Light: "#587539", // tokyonight-day green
		Dark:  "#9ece6a", // tokyonight green
	})

	// Blue marks type names
	Blue = lipgloss.NewStyle().Foreground(blue)
)

// StyleTree colorizes a tree diagram line by line, leaving headers and blank lines alone
func StyleTree(tree string) string {
	lines := strings.Split(tree, "\n")
	for i, line := range lines {
		lines[i] = styleTreeLine(line)
	}
	return strings.Join(lines, "\n")
}

func styleTreeLine(line string) string {
	at := strings.Index(line, "+--")
	if at < 0 {
		return line
	}
	connector, rest := line[:at+3], line[at+3:]

	var sb strings.Builder
	sb.WriteString(FaintStyle.Render(connector))

	// cases have no flags
	if flags, node, ok := strings.Cut(rest, " "); ok && len(flags) == 2 {
		if flags == "rw" {
			sb.WriteString(Green.Render(flags))
		} else {
			sb.WriteString(FaintStyle.Render(flags))
		}
		sb.WriteString(" ")
		rest = node
	}

	// the type column follows at least two spaces
	if gap := strings.Index(rest, "  "); gap >= 0 {
		typ := strings.TrimLeft(rest[gap:], " ")
		sb.WriteString(rest[:len(rest)-len(typ)])
		sb.WriteString(Blue.Render(typ))
		return sb.String()
	}

	sb.WriteString(rest)
	return sb.String()
}

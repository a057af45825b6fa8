// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package yangcheck

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/defenseunicorns/yangcheck/data"
)

// Examiner renders a validated data tree
type Examiner struct {
	Out          io.Writer
	Format       data.Format
	WithDefaults data.WithDefaults
	// Highlight colorizes the dump, callers set it when Out is a terminal
	Highlight bool
}

// Examine renders the whole tree into memory, then writes "dumping input as <format>:" followed by the rendering
//
// The rendering is dropped if it fails, nothing is written to Out in that case
func (ex *Examiner) Examine(ctx context.Context, tree *data.Tree) error {
	logger := log.FromContext(ctx)

	format := ex.Format
	if format == "" {
		format = data.DefaultFormat
	}
	opts := data.PrintOptions{WithDefaults: ex.WithDefaults}

	var buf bytes.Buffer
	var err error
	switch format {
	case data.FormatXML:
		err = data.WriteXML(&buf, tree, opts)
	case data.FormatJSON:
		err = data.WriteJSON(&buf, tree, opts)
	case data.FormatYAML:
		err = data.WriteYAML(&buf, tree, opts)
	default:
		err = fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		logger.Error("failed to print data tree", "format", format, "err", err)
		return err
	}

	dump := buf.String()
	if ex.Highlight {
		dump = highlight(logger, dump, string(format))
	}

	if _, err := fmt.Fprintf(ex.Out, "dumping input as %s:\n%s", format, dump); err != nil {
		logger.Error("failed to write data tree", "format", format, "err", err)
		return err
	}

	return nil
}

// highlight colorizes text with chroma, returning it unchanged when colors are disabled or highlighting fails
func highlight(logger *log.Logger, text, lang string) string {
	if termenv.EnvNoColor() {
		return text
	}

	style := "tokyonight-day"
	if lipgloss.HasDarkBackground() {
		style = "tokyonight-moon"
	}

	var buf strings.Builder
	if err := quick.Highlight(&buf, text, lang, "terminal256", style); err != nil {
		logger.Debugf("failed to highlight: %v", err)
		return text
	}

	out := buf.String()
	if strings.HasSuffix(text, "\n") && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

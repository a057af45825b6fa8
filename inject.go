// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package yangcheck

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/defenseunicorns/yangcheck/schema"
)

// InjectSuffix is appended to the draft path to name the output file
const InjectSuffix = ".withyang"

// directive matches a whole line such as "YANG-MODULE ietf-foo.yang" or "YANG-DATA ietf-foo.yang example.json"
var directive = regexp.MustCompile(`^ *YANG-(?P<kind>[A-Z]+) +(?P<module>[^ ]+) *(?P<file>[^ ]*)$`)

// Directive kinds
const (
	DirectiveModule = "MODULE"
	DirectiveData   = "DATA"
	DirectiveTree   = "TREE"
)

// InjectOptions configures Inject
type InjectOptions struct {
	// Now dates module file names that carry no revision, defaults to time.Now
	Now func() time.Time
	// Trees receives a copy of every tree diagram
	Trees io.Writer
}

// Inject expands the YANG directives of a markdown draft and writes the result next to it with InjectSuffix
//
//	YANG-MODULE <module.yang>         the module between <CODE BEGINS> and <CODE ENDS> markers
//	YANG-DATA <module.yang> <file>    the content of file
//	YANG-TREE <module.yang>           the tree diagram of the module
//
// Other lines are copied with trailing whitespace removed. Nothing is written when a directive fails.
func Inject(ctx context.Context, fsys afero.Fs, draftPath string, opts InjectOptions) (string, error) {
	logger := log.FromContext(ctx)

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	draft, err := afero.ReadFile(fsys, draftPath)
	if err != nil {
		logger.Error("failed to read draft", "path", draftPath, "err", err)
		return "", reported(KindUsageOrLoad, err)
	}

	var out bytes.Buffer
	for i, line := range draftLines(string(draft)) {
		lineNo := i + 1
		line = strings.TrimRightFunc(line, unicode.IsSpace)

		m := directive.FindStringSubmatch(line)
		if m == nil {
			out.WriteString(line + "\n")
			continue
		}
		kind := m[directive.SubexpIndex("kind")]
		module := m[directive.SubexpIndex("module")]
		file := m[directive.SubexpIndex("file")]

		switch kind {
		case DirectiveData:
			if file == "" {
				err := fmt.Errorf("no input data file on line %d", lineNo)
				logger.Error("failed to inject data", "line", lineNo, "err", err)
				return "", reported(KindExamine, err)
			}
			if err := copyFile(fsys, &out, file); err != nil {
				logger.Error("failed to inject data", "line", lineNo, "path", file, "err", err)
				return "", reported(KindDataRead, err)
			}

		case DirectiveModule:
			fmt.Fprintf(&out, "<CODE BEGINS> file %s\n", codeFileName(module, now()))
			if err := copyFile(fsys, &out, module); err != nil {
				logger.Error("failed to inject module", "line", lineNo, "path", module, "err", err)
				return "", reported(KindDataRead, err)
			}
			if !bytes.HasSuffix(out.Bytes(), []byte("\n")) {
				out.WriteByte('\n')
			}
			out.WriteString("<CODE ENDS>\n")

		case DirectiveTree:
			logger.Info("running tree dump", "module", module)
			tree, err := moduleTree(ctx, fsys, module)
			if err != nil {
				return "", err
			}
			if opts.Trees != nil {
				if _, err := io.WriteString(opts.Trees, tree); err != nil {
					return "", reported(KindExamine, err)
				}
			}
			out.WriteString(tree)

		default:
			logger.Warn("dropping unknown directive", "line", lineNo, "directive", "YANG-"+kind)
		}
	}

	outPath := draftPath + InjectSuffix
	if err := afero.WriteFile(fsys, outPath, out.Bytes(), 0o644); err != nil {
		logger.Error("failed to write draft", "path", outPath, "err", err)
		return "", reported(KindExamine, err)
	}

	return outPath, nil
}

func draftLines(draft string) []string {
	if draft == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(draft, "\n"), "\n")
}

// codeFileName names a module file for a <CODE BEGINS> marker, adding the date when the name has no revision
func codeFileName(path string, now time.Time) string {
	name := filepath.Base(path)
	if strings.Contains(name, "@") || !strings.HasSuffix(name, ".yang") {
		return name
	}
	return strings.TrimSuffix(name, ".yang") + now.Format("@2006-01-02") + ".yang"
}

func copyFile(fsys afero.Fs, w io.Writer, path string) error {
	f, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}

// moduleTree compiles the module at path the way the checker does and returns its tree diagram
func moduleTree(ctx context.Context, fsys afero.Fs, path string) (string, error) {
	c, err := schema.Load(ctx, fsys, path)
	if err != nil {
		return "", reported(KindUsageOrLoad, err)
	}
	defer c.Close()

	var sb strings.Builder
	for _, m := range c.Loaded() {
		if err := schema.WriteTree(&sb, m); err != nil {
			return "", reported(KindExamine, err)
		}
	}
	return sb.String(), nil
}

// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openconfig/goyang/pkg/yang"
	"github.com/spf13/afero"
)

// candidate is a YANG source file that may satisfy an import or include
type candidate struct {
	path     string
	revision string
}

// fileIndex maps module names to the candidate files found in the search locations
//
// Candidates from the search directory come before candidates from the working directory
type fileIndex struct {
	byName map[string][]candidate
}

type dependency struct {
	name     string
	revision string
}

// resolve parses every module and submodule m depends on that c does not know about yet
func (c *Context) resolve(m *yang.Module, seen map[string]bool) error {
	deps := make([]dependency, 0, len(m.Import)+len(m.Include))
	for _, i := range m.Import {
		deps = append(deps, dependency{name: i.Name, revision: valueName(i.RevisionDate)})
	}
	for _, i := range m.Include {
		deps = append(deps, dependency{name: i.Name, revision: valueName(i.RevisionDate)})
	}

	for _, dep := range deps {
		if seen[dep.name] {
			continue
		}
		seen[dep.name] = true

		next := c.known(dep)
		if next == nil {
			p, err := c.find(dep)
			if err != nil {
				return fmt.Errorf("%s: %w", m.Name, err)
			}

			data, err := afero.ReadFile(c.fsys, p)
			if err != nil {
				return fmt.Errorf("%s: %w", m.Name, err)
			}

			if err := c.ms.Parse(string(data), p); err != nil {
				return err
			}

			if next = c.known(dep); next == nil {
				return fmt.Errorf("%s: %s does not define %q", m.Name, p, dep.name)
			}
		}

		if err := c.resolve(next, seen); err != nil {
			return err
		}
	}

	return nil
}

// known returns the parsed module or submodule satisfying dep, or nil
func (c *Context) known(dep dependency) *yang.Module {
	key := dep.name
	if dep.revision != "" {
		key = dep.name + "@" + dep.revision
	}
	if m := c.ms.Modules[key]; m != nil {
		return m
	}
	if m := c.ms.SubModules[key]; m != nil {
		return m
	}
	return nil
}

// find locates the source file for dep
//
// An exact revision match is required when dep names one, otherwise the latest revision wins
func (c *Context) find(dep dependency) (string, error) {
	if c.index == nil {
		idx, err := c.buildIndex()
		if err != nil {
			return "", err
		}
		c.index = idx
	}

	candidates := c.index.byName[dep.name]
	if len(candidates) == 0 {
		return "", fmt.Errorf("module %q not found in %q or the working directory", dep.name, c.searchDir)
	}

	var best *candidate
	for i := range candidates {
		cand := &candidates[i]
		if dep.revision != "" {
			if cand.revision == dep.revision {
				return cand.path, nil
			}
			continue
		}
		if best == nil || cand.revision > best.revision {
			best = cand
		}
	}

	if best == nil {
		// fall back to an unversioned file name and let processing verify the revision
		for _, cand := range candidates {
			if cand.revision == "" {
				return cand.path, nil
			}
		}
		return "", fmt.Errorf("module %q revision %s not found", dep.name, dep.revision)
	}

	return best.path, nil
}

func (c *Context) buildIndex() (*fileIndex, error) {
	idx := &fileIndex{byName: map[string][]candidate{}}

	if c.searchDir != "" {
		err := afero.Walk(c.fsys, c.searchDir, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			idx.add(p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk search directory %q: %w", c.searchDir, err)
		}
	}

	entries, err := afero.ReadDir(c.fsys, ".")
	if err != nil {
		return idx, nil //nolint:nilerr // an unreadable working directory only removes candidates
	}
	for _, fi := range entries {
		if !fi.IsDir() {
			idx.add(fi.Name())
		}
	}

	return idx, nil
}

func (idx *fileIndex) add(p string) {
	base := filepath.Base(p)
	if filepath.Ext(base) != ".yang" {
		return
	}
	stem := strings.TrimSuffix(base, ".yang")
	name, revision, _ := strings.Cut(stem, "@")
	for _, existing := range idx.byName[name] {
		if filepath.Clean(existing.path) == filepath.Clean(p) {
			return
		}
	}
	idx.byName[name] = append(idx.byName[name], candidate{path: p, revision: revision})
}

func valueName(v *yang.Value) string {
	if v == nil {
		return ""
	}
	return v.Name
}

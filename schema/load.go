// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package schema

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// Load creates a context over DefaultSearchDir and compiles the module at path into it
//
// Every loaded module is implemented and no yang library module is generated.
// Failures are logged once here and no context is returned
func Load(ctx context.Context, fsys afero.Fs, path string) (*Context, error) {
	logger := log.FromContext(ctx)

	opts := AllImplemented | NoYangLibrary
	c, err := NewContext(fsys, DefaultSearchDir, opts)
	if err != nil {
		logger.Error("failed to create schema context", "search-dir", DefaultSearchDir, "options", fmt.Sprintf("0x%x", uint(opts)), "err", err)
		return nil, fmt.Errorf("failed to create schema context: %w", err)
	}

	m, err := c.LoadFile(path)
	if err != nil {
		logger.Error("failed to compile schema", "format", "yang", "path", path, "err", err)
		_ = c.Close()
		return nil, fmt.Errorf("failed to compile %s: %w", path, err)
	}

	logger.Debug("compiled schema", "module", m.Name, "revision", m.Revision, "namespace", m.Namespace, "modules", len(c.modules))
	for _, dep := range c.Modules() {
		if dep.Name != m.Name {
			logger.Debug("resolved module", "module", dep.Name, "revision", dep.Revision)
		}
	}

	return c, nil
}

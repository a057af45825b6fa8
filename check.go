// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package yangcheck validates JSON instance data against a YANG schema and prints the result
package yangcheck

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/defenseunicorns/yangcheck/data"
	"github.com/defenseunicorns/yangcheck/schema"
)

// CheckOptions configures a check
type CheckOptions struct {
	Format       data.Format
	WithDefaults data.WithDefaults
	Highlight    bool
}

// Check loads the schema at schemaPath, reads the configuration data at dataPath against it and prints the tree to out
//
// Every failure is logged where it happens and returned as an *Error carrying its kind
func Check(ctx context.Context, fsys afero.Fs, out io.Writer, schemaPath, dataPath string, opts CheckOptions) error {
	logger := log.FromContext(ctx)

	c, err := schema.Load(ctx, fsys, schemaPath)
	if err != nil {
		return reported(KindUsageOrLoad, err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn("failed to close schema context", "err", err)
		}
	}()

	tree, err := data.ReadFile(ctx, c, fsys, dataPath, data.ParseConfig)
	if err != nil {
		return reported(KindDataRead, err)
	}
	defer tree.Free()

	if _, err := fmt.Fprintf(out, "read data file %s successfully\n", dataPath); err != nil {
		logger.Error("failed to write confirmation", "err", err)
		return reported(KindExamine, err)
	}

	ex := &Examiner{
		Out:          out,
		Format:       opts.Format,
		WithDefaults: opts.WithDefaults,
		Highlight:    opts.Highlight,
	}
	if err := ex.Examine(ctx, tree); err != nil {
		return reported(KindExamine, err)
	}

	return nil
}

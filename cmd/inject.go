// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/defenseunicorns/yangcheck"
	"github.com/defenseunicorns/yangcheck/config"
)

// NewInjectCmd creates the command expanding YANG directives in a markdown draft
func NewInjectCmd() *cobra.Command {
	level := config.DefaultLogLevel

	cmd := &cobra.Command{
		Use:   "yangcheck-inject <draft.md>",
		Short: "Inject YANG modules, data files and tree diagrams into a markdown draft",
		Long: `Expand the YANG-MODULE, YANG-DATA and YANG-TREE lines of a markdown draft and
write the result to <draft.md>.withyang.

Tree diagrams are also printed to stdout. Imported and included modules are
looked up in ./modules, then in the current directory.`,
		Example: `
# draft-example.md:
#   YANG-MODULE example.yang
#   YANG-DATA example.yang example.json
#   YANG-TREE example.yang
yangcheck-inject draft-example.md
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return yangcheck.UsageError(fmt.Errorf("usage: %s", cmd.UseLine()))
			}
			return nil
		},
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			l, err := level.Level()
			if err != nil {
				return err
			}
			log.FromContext(cmd.Context()).SetLevel(l)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yangcheck.Inject(cmd.Context(), afero.NewOsFs(), args[0], yangcheck.InjectOptions{
				Trees: cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			log.FromContext(cmd.Context()).Debug("wrote draft", "path", out)
			return nil
		},
	}

	cmd.Flags().VarP(&level, "log-level", "l", "Set log level")

	return cmd
}

// InjectMain executes the inject command
func InjectMain() int {
	return execute(NewInjectCmd())
}

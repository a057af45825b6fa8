// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/defenseunicorns/yangcheck"
	"github.com/defenseunicorns/yangcheck/config"
	"github.com/defenseunicorns/yangcheck/schema"
)

// NewTreeCmd creates the command printing the tree diagram of a YANG module
func NewTreeCmd() *cobra.Command {
	var (
		level    = config.DefaultLogLevel
		describe bool
	)

	cmd := &cobra.Command{
		Use:   "yangcheck-tree <schema-file>",
		Short: "Print the RFC 8340 tree diagram of a YANG module",
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
			ctx := cmd.Context()

			c, err := schema.Load(ctx, afero.NewOsFs(), args[0])
			if err != nil {
				return &yangcheck.Error{Kind: yangcheck.KindUsageOrLoad, Err: err, Reported: true}
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			styled := isTerminal(cmd) && !termenv.EnvNoColor()
			for _, m := range c.Loaded() {
				if !describe {
					var sb strings.Builder
					if err := schema.WriteTree(&sb, m); err != nil {
						return err
					}
					tree := sb.String()
					if styled {
						tree = StyleTree(tree)
					}
					fmt.Fprint(out, tree)
					continue
				}

				md, err := yangcheck.Describe(m, isTerminal(cmd))
				if err != nil {
					return err
				}
				fmt.Fprint(out, md)
			}
			return nil
		},
	}

	cmd.Flags().VarP(&level, "log-level", "l", "Set log level")
	cmd.Flags().BoolVar(&describe, "describe", false, "Render the module description and tree as markdown")

	return cmd
}

// TreeMain executes the tree command
func TreeMain() int {
	return execute(NewTreeCmd())
}

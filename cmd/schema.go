// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	configv0 "github.com/defenseunicorns/yangcheck/config/v0"
)

// NewSchemaCmd creates the command printing the JSON schema of the config file
func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "yangcheck-schema",
		Short:         "Print the JSON schema of the yangcheck config file",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := json.MarshalIndent(configv0.Schema(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}

// SchemaMain executes the schema command
func SchemaMain() int {
	return execute(NewSchemaCmd())
}

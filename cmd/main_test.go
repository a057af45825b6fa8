// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package cmd_test

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/defenseunicorns/yangcheck/cmd"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"yangcheck": func() {
			code := cmd.Main()
			os.Exit(code)
		},
		"yangcheck-tree": func() {
			code := cmd.TreeMain()
			os.Exit(code)
		},
		"yangcheck-inject": func() {
			code := cmd.InjectMain()
			os.Exit(code)
		},
		"yangcheck-schema": func() {
			code := cmd.SchemaMain()
			os.Exit(code)
		},
	})
}

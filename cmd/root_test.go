// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package cmd_test

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defenseunicorns/yangcheck"
	"github.com/defenseunicorns/yangcheck/cmd"
)

func TestE2E(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: filepath.Join("..", "testdata"),
		Setup: func(env *testscript.Env) error {
			env.Setenv("NO_COLOR", "true")
			env.Setenv("HOME", filepath.Join(env.WorkDir, "home"))
			return nil
		},
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"exits": exits,
		},
		RequireUniqueNames: true,
		// UpdateScripts:      true,
	})
}

// exits runs a command and checks its exit code, the code is compared as the byte the OS reports
//
//	exits <code> <command> [args...]
func exits(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! exits")
	}
	if len(args) < 2 {
		ts.Fatalf("usage: exits <code> <command> [args...]")
	}

	want, err := strconv.Atoi(args[0])
	ts.Check(err)

	err = ts.Exec(args[1], args[2:]...)
	if err == nil {
		ts.Fatalf("%s exited 0, expected %d", args[1], want)
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		ts.Fatalf("%s: %v", args[1], err)
	}
	if got := exitErr.ExitCode(); uint8(got) != uint8(want) {
		ts.Fatalf("%s exited %d (%d), expected %d", args[1], got, int8(got), want)
	}
}

func TestParseExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil",
			expected: 0,
		},
		{
			name:     "plain error",
			err:      errors.New("unknown flag: --nope"),
			expected: -1,
		},
		{
			name:     "usage",
			err:      yangcheck.UsageError(errors.New("usage: yangcheck <schema-file> <data-file>")),
			expected: -1,
		},
		{
			name:     "data read",
			err:      &yangcheck.Error{Kind: yangcheck.KindDataRead, Err: errors.New("no data nodes found")},
			expected: -2,
		},
		{
			name:     "examine",
			err:      &yangcheck.Error{Kind: yangcheck.KindExamine, Err: errors.New("short write")},
			expected: -4,
		},
		{
			name:     "wrapped kind",
			err:      fmt.Errorf("outer: %w", &yangcheck.Error{Kind: yangcheck.KindDataRead, Err: errors.New("inner")}),
			expected: -2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cmd.ParseExitCode(tt.err))
		})
	}
}

func TestRootCmdFlags(t *testing.T) {
	root := cmd.NewRootCmd()

	for flag, def := range map[string]string{
		"log-level":     "info",
		"with-defaults": "trim",
		"output-format": "xml",
		"version":       "false",
		"config":        "${HOME}/.yangcheck/config.yaml",
	} {
		f := root.Flags().Lookup(flag)
		require.NotNil(t, f, flag)
		assert.Equal(t, def, f.DefValue, flag)
	}

	assert.Equal(t, "l", root.Flags().Lookup("log-level").Shorthand)
	assert.Equal(t, "o", root.Flags().Lookup("output-format").Shorthand)
	assert.Equal(t, "V", root.Flags().Lookup("version").Shorthand)

	require.NoError(t, root.Flags().Set("output-format", "yaml"))
	require.Error(t, root.Flags().Set("output-format", "toml"))
	require.Error(t, root.Flags().Set("with-defaults", "sometimes"))
}

func TestRootCmdArgs(t *testing.T) {
	root := cmd.NewRootCmd()

	for _, args := range [][]string{nil, {"a.yang"}, {"a.yang", "b.json", "c.json"}} {
		err := root.Args(root, args)
		require.Error(t, err)
		kind, ok := yangcheck.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, yangcheck.KindUsageOrLoad, kind)
		assert.Contains(t, err.Error(), "usage: yangcheck <schema-file> <data-file>")
	}

	require.NoError(t, root.Args(root, []string{"a.yang", "b.json"}))
}

// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package config

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/invopop/jsonschema"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel(t *testing.T) {
	t.Run("available levels", func(t *testing.T) {
		levels := AvailableLogLevels()
		assert.Equal(t, []string{"debug", "info", "warn", "error", "fatal"}, levels)
		assert.Contains(t, levels, string(DefaultLogLevel))
	})

	t.Run("pflag value interface", func(t *testing.T) {
		lvl := DefaultLogLevel
		assert.Equal(t, "info", lvl.String())
		assert.Equal(t, "string", lvl.Type())

		require.NoError(t, lvl.Set("debug"))
		assert.Equal(t, LogLevel("debug"), lvl)

		require.NoError(t, lvl.Set("WARN"))
		assert.Equal(t, LogLevel("warn"), lvl)

		err := lvl.Set("loud")
		require.EqualError(t, err, "invalid log level: loud")
		assert.Equal(t, LogLevel("warn"), lvl, "level should remain unchanged after invalid set")

		var flagValue pflag.Value = &lvl
		assert.NotNil(t, flagValue)
	})

	t.Run("level", func(t *testing.T) {
		l, err := LogLevel("error").Level()
		require.NoError(t, err)
		assert.Equal(t, log.ErrorLevel, l)

		_, err = LogLevel("nope").Level()
		require.Error(t, err)
	})

	t.Run("json schema", func(t *testing.T) {
		s := &jsonschema.Schema{}
		LogLevel("").JSONSchemaExtend(s)
		assert.Equal(t, "string", s.Type)
		assert.Len(t, s.Enum, 5)
		assert.NotEmpty(t, s.Description)
	})
}

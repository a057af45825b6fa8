// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package config

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/invopop/jsonschema"
	"github.com/spf13/pflag"
)

// LogLevel is the name of a log level
type LogLevel string

var _ pflag.Value = (*LogLevel)(nil)

// DefaultLogLevel is the log level used when none is specified
const DefaultLogLevel LogLevel = "info"

// AvailableLogLevels returns a list of available log levels
func AvailableLogLevels() []string {
	return []string{
		log.DebugLevel.String(),
		log.InfoLevel.String(),
		log.WarnLevel.String(),
		log.ErrorLevel.String(),
		log.FatalLevel.String(),
	}
}

// Level returns the parsed log level
func (l LogLevel) Level() (log.Level, error) {
	return log.ParseLevel(string(l))
}

// String implements the pflag.Value and fmt.Stringer interfaces
func (l *LogLevel) String() string {
	return string(*l)
}

// Set implements the pflag.Value interface
func (l *LogLevel) Set(value string) error {
	lvl, err := log.ParseLevel(value)
	if err != nil {
		return fmt.Errorf("invalid log level: %s", value)
	}
	*l = LogLevel(lvl.String())
	return nil
}

// Type implements the pflag.Value interface
func (l *LogLevel) Type() string {
	return "string"
}

// JSONSchemaExtend extends the JSON schema for LogLevel
func (LogLevel) JSONSchemaExtend(schema *jsonschema.Schema) {
	schema.Type = "string"
	all := []any{}
	for _, lvl := range AvailableLogLevels() {
		all = append(all, lvl)
	}
	schema.Enum = all
	schema.Description = "Minimum level of log messages"
}

// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package data

import (
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/pflag"

	"github.com/defenseunicorns/yangcheck/schema"
)

// WithDefaults selects how nodes holding schema default values are printed (RFC 6243)
type WithDefaults string

var _ pflag.Value = (*WithDefaults)(nil)

const (
	// WithDefaultsTrim omits every node whose value equals its schema default
	WithDefaultsTrim WithDefaults = "trim"
	// WithDefaultsExplicit omits nodes created from schema defaults, keeping explicitly set ones
	WithDefaultsExplicit WithDefaults = "explicit"
	// WithDefaultsReportAll prints every node
	WithDefaultsReportAll WithDefaults = "report-all"
	// WithDefaultsReportAllTagged prints every node, marking default values
	WithDefaultsReportAllTagged WithDefaults = "report-all-tagged"
	// DefaultWithDefaults is the mode used when none is specified
	DefaultWithDefaults WithDefaults = WithDefaultsTrim
)

// AvailableWithDefaults returns a list of available with-defaults modes
func AvailableWithDefaults() []string {
	return []string{
		string(WithDefaultsTrim),
		string(WithDefaultsExplicit),
		string(WithDefaultsReportAll),
		string(WithDefaultsReportAllTagged),
	}
}

// String implements the pflag.Value and fmt.Stringer interfaces
func (wd *WithDefaults) String() string {
	return string(*wd)
}

// Set implements the pflag.Value interface
func (wd *WithDefaults) Set(value string) error {
	switch value {
	case string(WithDefaultsTrim):
		*wd = WithDefaultsTrim
	case string(WithDefaultsExplicit):
		*wd = WithDefaultsExplicit
	case string(WithDefaultsReportAll):
		*wd = WithDefaultsReportAll
	case string(WithDefaultsReportAllTagged):
		*wd = WithDefaultsReportAllTagged
	default:
		return fmt.Errorf("invalid with-defaults mode: %s", value)
	}
	return nil
}

// Type implements the pflag.Value interface
func (wd *WithDefaults) Type() string {
	return "string"
}

// JSONSchemaExtend extends the JSON schema for WithDefaults
func (WithDefaults) JSONSchemaExtend(schema *jsonschema.Schema) {
	schema.Type = "string"
	all := []any{}
	for _, wd := range AvailableWithDefaults() {
		all = append(all, wd)
	}
	schema.Enum = all
	schema.Description = "How nodes holding schema default values are printed"
}

// Format is a data tree output format
type Format string

var _ pflag.Value = (*Format)(nil)

const (
	// FormatXML prints the tree as XML
	FormatXML Format = "xml"
	// FormatJSON prints the tree as RFC 7951 JSON
	FormatJSON Format = "json"
	// FormatYAML prints the tree as YAML shaped like the JSON encoding
	FormatYAML Format = "yaml"
	// DefaultFormat is the format used when none is specified
	DefaultFormat Format = FormatXML
)

// AvailableFormats returns a list of available output formats
func AvailableFormats() []string {
	return []string{
		string(FormatXML),
		string(FormatJSON),
		string(FormatYAML),
	}
}

// String implements the pflag.Value and fmt.Stringer interfaces
func (f *Format) String() string {
	return string(*f)
}

// Set implements the pflag.Value interface
func (f *Format) Set(value string) error {
	switch value {
	case string(FormatXML):
		*f = FormatXML
	case string(FormatJSON):
		*f = FormatJSON
	case string(FormatYAML):
		*f = FormatYAML
	default:
		return fmt.Errorf("invalid output format: %s", value)
	}
	return nil
}

// Type implements the pflag.Value interface
func (f *Format) Type() string {
	return "string"
}

// JSONSchemaExtend extends the JSON schema for Format
func (Format) JSONSchemaExtend(schema *jsonschema.Schema) {
	schema.Type = "string"
	all := []any{}
	for _, f := range AvailableFormats() {
		all = append(all, f)
	}
	schema.Enum = all
	schema.Description = "Output format of the data dump"
}

// PrintOptions configures the printers
type PrintOptions struct {
	WithDefaults WithDefaults
	// Shrink disables indentation and newlines
	Shrink bool
}

func (o PrintOptions) mode() WithDefaults {
	if o.WithDefaults == "" {
		return DefaultWithDefaults
	}
	return o.WithDefaults
}

func (o PrintOptions) reportAll() bool {
	m := o.mode()
	return m == WithDefaultsReportAll || m == WithDefaultsReportAllTagged
}

// tagged reports whether n gets a default marker
func (o PrintOptions) tagged(n *Node) bool {
	return o.mode() == WithDefaultsReportAllTagged && n.Default
}

// printable filters n according to the with-defaults mode
func (o PrintOptions) printable(n *Node) bool {
	switch {
	case n.Schema.IsLeaf() || n.Schema.IsLeafList():
		switch o.mode() {
		case WithDefaultsTrim:
			return !n.Default
		case WithDefaultsExplicit:
			return !n.Implicit
		default:
			return true
		}
	case n.Schema.IsContainer() && !schema.IsPresence(n.Schema):
		if o.reportAll() {
			return true
		}
		if !n.Implicit && o.mode() == WithDefaultsExplicit {
			return true
		}
		for _, c := range n.Children {
			if o.printable(c) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// visible returns the printable nodes of nodes
func (o PrintOptions) visible(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if o.printable(n) {
			out = append(out, n)
		}
	}
	return out
}

func checkTree(t *Tree) error {
	if t == nil {
		return fmt.Errorf("data tree is nil")
	}
	if t.Released() {
		return ErrTreeReleased
	}
	return nil
}

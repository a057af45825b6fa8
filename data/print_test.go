// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package data

import (
	"bytes"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDefaultsFlag(t *testing.T) {
	var wd WithDefaults
	assert.Equal(t, "string", wd.Type())

	for _, mode := range AvailableWithDefaults() {
		require.NoError(t, wd.Set(mode))
		assert.Equal(t, mode, wd.String())
	}

	require.EqualError(t, wd.Set("report-some"), "invalid with-defaults mode: report-some")
	assert.Equal(t, WithDefaultsReportAllTagged, wd)
}

func TestFormatFlag(t *testing.T) {
	var f Format
	assert.Equal(t, "string", f.Type())

	for _, format := range AvailableFormats() {
		require.NoError(t, f.Set(format))
		assert.Equal(t, format, f.String())
	}

	require.EqualError(t, f.Set("toml"), "invalid output format: toml")
	assert.Equal(t, FormatYAML, f)
}

func TestWriteXMLWithDefaults(t *testing.T) {
	c := newContext(t, exampleModule)

	tree, err := parse(t, c, `{"example:settings":{"name":"abc","level":50}}`)
	require.NoError(t, err)
	defer tree.Free()

	tests := []struct {
		mode     WithDefaults
		expected string
	}{
		{
			mode: "",
			expected: `<settings xmlns="urn:example">
  <name>abc</name>
</settings>
`,
		},
		{
			mode: WithDefaultsTrim,
			expected: `<settings xmlns="urn:example">
  <name>abc</name>
</settings>
`,
		},
		{
			mode: WithDefaultsExplicit,
			expected: `<settings xmlns="urn:example">
  <name>abc</name>
  <level>50</level>
</settings>
`,
		},
		{
			mode: WithDefaultsReportAll,
			expected: `<settings xmlns="urn:example">
  <name>abc</name>
  <level>50</level>
  <enabled>true</enabled>
</settings>
<transport xmlns="urn:example">
  <tcp-port>80</tcp-port>
</transport>
`,
		},
		{
			mode: WithDefaultsReportAllTagged,
			expected: `<settings xmlns="urn:example">
  <name>abc</name>
  <level xmlns:wd="urn:ietf:params:xml:ns:netconf:default:1.0" wd:default="true">50</level>
  <enabled xmlns:wd="urn:ietf:params:xml:ns:netconf:default:1.0" wd:default="true">true</enabled>
</settings>
<transport xmlns="urn:example">
  <tcp-port xmlns:wd="urn:ietf:params:xml:ns:netconf:default:1.0" wd:default="true">80</tcp-port>
</transport>
`,
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteXML(&buf, tree, PrintOptions{WithDefaults: tt.mode}))
			assert.Equal(t, tt.expected, buf.String())
		})
	}

	t.Run("shrink", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteXML(&buf, tree, PrintOptions{Shrink: true}))
		assert.Equal(t, `<settings xmlns="urn:example"><name>abc</name></settings>`, buf.String())
	})
}

const richDocument = `{
  "example:settings": {
    "name": "abc",
    "level": 50,
    "flag": [null],
    "pet": "puppy",
    "perms": "write read",
    "big": "12",
    "ratio": 2.5,
    "tags": ["x", "y"],
    "extra": {"a": 1, "b": [1, 2]}
  },
  "example:group": [{"name": "admins"}]
}`

func TestWriteXML(t *testing.T) {
	c := newContext(t, exampleModule)

	tree, err := parse(t, c, richDocument)
	require.NoError(t, err)
	defer tree.Free()

	var buf bytes.Buffer
	require.NoError(t, WriteXML(&buf, tree, PrintOptions{}))
	assert.Equal(t, `<settings xmlns="urn:example">
  <name>abc</name>
  <flag/>
  <pet>puppy</pet>
  <perms>read write</perms>
  <big>12</big>
  <ratio>2.5</ratio>
  <tags>x</tags>
  <tags>y</tags>
  <extra>
    <a>1</a>
    <b>1</b>
    <b>2</b>
  </extra>
</settings>
<group xmlns="urn:example">
  <name>admins</name>
</group>
`, buf.String())
}

func TestWriteJSON(t *testing.T) {
	c := newContext(t, exampleModule)

	tree, err := parse(t, c, richDocument)
	require.NoError(t, err)
	defer tree.Free()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, tree, PrintOptions{}))
	assert.Equal(t, `{
  "example:settings": {
    "name": "abc",
    "flag": [
      null
    ],
    "pet": "example:puppy",
    "perms": "read write",
    "big": "12",
    "ratio": "2.5",
    "tags": [
      "x",
      "y"
    ],
    "extra": {
      "a": 1,
      "b": [
        1,
        2
      ]
    }
  },
  "example:group": [
    {
      "name": "admins"
    }
  ]
}
`, buf.String())

	// the output is itself valid input
	again, err := parse(t, c, buf.String())
	require.NoError(t, err)
	again.Free()

	t.Run("tagged", func(t *testing.T) {
		small, err := parse(t, c, `{"example:settings":{"name":"abc","level":50,"tags":["x"]}}`)
		require.NoError(t, err)
		defer small.Free()

		var buf bytes.Buffer
		require.NoError(t, WriteJSON(&buf, small, PrintOptions{WithDefaults: WithDefaultsReportAllTagged, Shrink: true}))
		assert.JSONEq(t, `{
  "example:settings": {
    "name": "abc",
    "level": 50,
    "@level": {"ietf-netconf-with-defaults:default": true},
    "tags": ["x"],
    "@tags": [null],
    "enabled": true,
    "@enabled": {"ietf-netconf-with-defaults:default": true}
  },
  "example:transport": {
    "tcp-port": 80,
    "@tcp-port": {"ietf-netconf-with-defaults:default": true}
  }
}`, buf.String())
	})
}

func TestWriteYAML(t *testing.T) {
	c := newContext(t, exampleModule)

	tree, err := parse(t, c, richDocument)
	require.NoError(t, err)
	defer tree.Free()

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, tree, PrintOptions{WithDefaults: WithDefaultsReportAll}))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	settings, ok := doc["example:settings"].(map[string]any)
	require.True(t, ok, "settings should be a mapping:\n%s", buf.String())
	assert.Equal(t, "abc", settings["name"])
	assert.Equal(t, []any{"x", "y"}, settings["tags"])
	assert.Equal(t, true, settings["enabled"])
	assert.Contains(t, settings, "level")
	assert.Contains(t, settings, "extra")
	assert.Contains(t, doc, "example:transport")
	assert.Regexp(t, `(?m)^    - x$`, buf.String())
}

func TestWriteReleasedTree(t *testing.T) {
	c := newContext(t, exampleModule)

	tree, err := parse(t, c, `{"example:settings":{"name":"abc"}}`)
	require.NoError(t, err)
	tree.Free()

	var buf bytes.Buffer
	require.ErrorIs(t, WriteXML(&buf, tree, PrintOptions{}), ErrTreeReleased)
	require.ErrorIs(t, WriteJSON(&buf, tree, PrintOptions{}), ErrTreeReleased)
	require.ErrorIs(t, WriteYAML(&buf, tree, PrintOptions{}), ErrTreeReleased)
	assert.Empty(t, buf.String())

	require.EqualError(t, WriteXML(&buf, nil, PrintOptions{}), "data tree is nil")
}

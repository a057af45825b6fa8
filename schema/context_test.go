// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package schema

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workspace returns a filesystem rooted at a temporary directory holding files
func workspace(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewBasePathFs(afero.NewOsFs(), t.TempDir())
	for name, content := range files {
		require.NoError(t, fsys.MkdirAll(filepath.Dir(name), 0o755))
		require.NoError(t, afero.WriteFile(fsys, name, []byte(content), 0o644))
	}
	return fsys
}

const typesModule = `module example-types {
  namespace "urn:example:types";
  prefix et;

  revision 2024-01-01;

  identity transport;
  identity tcp { base transport; }

  typedef port-number {
    type uint16 { range "1..65535"; }
  }
}`

const typesModuleOld = `module example-types {
  namespace "urn:example:types-old";
  prefix et;

  revision 2020-01-01;

  typedef port-number { type uint16; }
}`

const networkModule = `module network {
  yang-version 1.1;
  namespace "urn:example:network";
  prefix net;

  import example-types { prefix et; }
  include network-sub;

  description "Network services.";

  container services {
    leaf port { type et:port-number; }
  }
}`

const networkSubmodule = `submodule network-sub {
  yang-version 1.1;
  belongs-to network { prefix net; }

  leaf banner { type string; }
}`

func TestNewContext(t *testing.T) {
	t.Run("missing search directory is ignored", func(t *testing.T) {
		c, err := NewContext(workspace(t, nil), DefaultSearchDir, AllImplemented|NoYangLibrary)
		require.NoError(t, err)
		assert.Empty(t, c.Modules())
	})

	t.Run("search directory that is a file", func(t *testing.T) {
		fsys := workspace(t, map[string]string{"modules": "not a directory"})
		_, err := NewContext(fsys, DefaultSearchDir, AllImplemented|NoYangLibrary)
		require.ErrorContains(t, err, "not a directory")
	})

	t.Run("yang library is not supported", func(t *testing.T) {
		_, err := NewContext(workspace(t, nil), DefaultSearchDir, AllImplemented)
		require.ErrorIs(t, err, ErrYangLibraryUnsupported)
	})

	t.Run("nil filesystem", func(t *testing.T) {
		_, err := NewContext(nil, DefaultSearchDir, NoYangLibrary)
		require.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("imports and includes from the search directory", func(t *testing.T) {
		fsys := workspace(t, map[string]string{
			"network.yang":                              networkModule,
			"modules/example-types@2024-01-01.yang":     typesModule,
			"modules/old/example-types@2020-01-01.yang": typesModuleOld,
			"modules/network-sub.yang":                  networkSubmodule,
		})

		c, err := NewContext(fsys, DefaultSearchDir, AllImplemented|NoYangLibrary)
		require.NoError(t, err)

		m, err := c.LoadFile("network.yang")
		require.NoError(t, err)
		assert.Equal(t, "network", m.Name)
		assert.Equal(t, "urn:example:network", m.Namespace)
		assert.Equal(t, "net", m.Prefix)
		assert.Equal(t, "Network services.", m.Description)
		assert.True(t, m.Implemented)

		// the latest revision wins
		types := c.Module("example-types")
		require.NotNil(t, types)
		assert.Equal(t, "urn:example:types", types.Namespace)
		assert.Equal(t, "2024-01-01", types.Revision)
		assert.True(t, types.Implemented)

		assert.Equal(t, types, c.ModuleByNamespace("urn:example:types"))
		assert.Equal(t, "urn:example:network", c.Namespace("network"))
		assert.Empty(t, c.Namespace("nope"))

		names := []string{}
		for _, mod := range c.Modules() {
			names = append(names, mod.Name)
		}
		assert.Equal(t, []string{"network", "example-types"}, names)
		require.Len(t, c.Loaded(), 1)
		assert.Equal(t, "network", c.Loaded()[0].Name)

		// nodes from the submodule belong to the including module
		banner := c.FindTopLevel("network", "banner")
		require.NotNil(t, banner)
		assert.Equal(t, "network", EntryModule(banner))
		assert.NotNil(t, c.FindTopLevel("network", "services"))
		assert.Nil(t, c.FindTopLevel("network", "nope"))
		assert.Nil(t, c.FindTopLevel("example-types", "services"))
	})

	t.Run("imports fall back to the working directory", func(t *testing.T) {
		fsys := workspace(t, map[string]string{
			"network.yang":       networkModule,
			"example-types.yang": typesModule,
			"network-sub.yang":   networkSubmodule,
		})

		c, err := NewContext(fsys, DefaultSearchDir, AllImplemented|NoYangLibrary)
		require.NoError(t, err)
		_, err = c.LoadFile("network.yang")
		require.NoError(t, err)
		assert.NotNil(t, c.Module("example-types"))
	})

	t.Run("a requested revision must match", func(t *testing.T) {
		fsys := workspace(t, map[string]string{
			"pinned.yang": `module pinned {
  namespace "urn:example:pinned";
  prefix p;
  import example-types { prefix et; revision-date 2020-01-01; }
  leaf port { type et:port-number; }
}`,
			"modules/example-types@2024-01-01.yang": typesModule,
			"modules/example-types@2020-01-01.yang": typesModuleOld,
		})

		c, err := NewContext(fsys, DefaultSearchDir, AllImplemented|NoYangLibrary)
		require.NoError(t, err)
		_, err = c.LoadFile("pinned.yang")
		require.NoError(t, err)
		assert.Equal(t, "urn:example:types-old", c.Namespace("example-types"))
	})

	t.Run("without all implemented only the loaded module is implemented", func(t *testing.T) {
		fsys := workspace(t, map[string]string{
			"network.yang":               networkModule,
			"modules/example-types.yang": typesModule,
			"modules/network-sub.yang":   networkSubmodule,
		})

		c, err := NewContext(fsys, DefaultSearchDir, NoYangLibrary)
		require.NoError(t, err)
		_, err = c.LoadFile("network.yang")
		require.NoError(t, err)

		require.Len(t, c.Modules(), 1)
		require.NotNil(t, c.Module("example-types"))
		assert.False(t, c.Module("example-types").Implemented)
	})

	tests := []struct {
		name      string
		files     map[string]string
		path      string
		expectErr string
	}{
		{
			name:      "missing file",
			path:      "missing.yang",
			expectErr: "missing.yang",
		},
		{
			name:      "syntax error",
			files:     map[string]string{"broken.yang": "module broken {\n  namespace \"urn:b\";\n  prefix b\n}"},
			path:      "broken.yang",
			expectErr: "broken.yang",
		},
		{
			name:      "submodule",
			files:     map[string]string{"network-sub.yang": networkSubmodule},
			path:      "network-sub.yang",
			expectErr: `expected a module, got submodule "network-sub"`,
		},
		{
			name:      "unresolved import",
			files:     map[string]string{"network.yang": networkModule},
			path:      "network.yang",
			expectErr: `module "example-types" not found`,
		},
		{
			name: "unknown type",
			files: map[string]string{"bad.yang": `module bad {
  namespace "urn:example:bad";
  prefix b;
  leaf x { type no-such-type; }
}`},
			path:      "bad.yang",
			expectErr: "no-such-type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContext(workspace(t, tt.files), DefaultSearchDir, AllImplemented|NoYangLibrary)
			require.NoError(t, err)

			m, err := c.LoadFile(tt.path)
			require.ErrorContains(t, err, tt.expectErr)
			assert.Nil(t, m)
		})
	}

	t.Run("loading a module twice", func(t *testing.T) {
		fsys := workspace(t, map[string]string{"types.yang": typesModule})
		c, err := NewContext(fsys, DefaultSearchDir, AllImplemented|NoYangLibrary)
		require.NoError(t, err)
		_, err = c.LoadFile("types.yang")
		require.NoError(t, err)
		_, err = c.LoadFile("types.yang")
		require.ErrorContains(t, err, "already loaded")
	})
}

func TestContextLifecycle(t *testing.T) {
	fsys := workspace(t, map[string]string{"types.yang": typesModule})
	c, err := NewContext(fsys, DefaultSearchDir, AllImplemented|NoYangLibrary)
	require.NoError(t, err)

	require.NoError(t, c.Retain())
	require.ErrorIs(t, c.Close(), ErrContextInUse)

	c.Release()
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	require.ErrorIs(t, c.Retain(), ErrContextClosed)
	_, err = c.LoadFile("types.yang")
	require.ErrorIs(t, err, ErrContextClosed)
}

func TestLoad(t *testing.T) {
	ctx := log.WithContext(context.Background(), log.New(io.Discard))

	fsys := workspace(t, map[string]string{"types.yang": typesModule})
	c, err := Load(ctx, fsys, "types.yang")
	require.NoError(t, err)
	require.NotNil(t, c.Module("example-types"))
	require.NoError(t, c.Close())

	c, err = Load(ctx, fsys, "missing.yang")
	require.ErrorContains(t, err, "failed to compile missing.yang")
	assert.Nil(t, c)

	fsys = workspace(t, map[string]string{"types.yang": typesModule, "modules": "file"})
	c, err = Load(ctx, fsys, "types.yang")
	require.ErrorContains(t, err, "failed to create schema context")
	assert.Nil(t, c)
}

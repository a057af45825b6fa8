// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteTree(t *testing.T) {
	fsys := workspace(t, map[string]string{
		"example.yang": `module example {
  yang-version 1.1;
  namespace "urn:example";
  prefix ex;

  container interfaces {
    list interface {
      key "name";
      leaf name { type string; }
      leaf mtu { type uint16; }
      leaf-list tags { type string; }
      leaf parent { type leafref { path "../../interface/name"; } }
      choice address {
        case v4 { leaf ipv4 { type string; } }
        case v6 { leaf ipv6 { type string; } }
      }
    }
  }
  container tracing {
    presence "enables tracing";
    leaf level { type uint8; mandatory true; }
  }
  leaf counter { type uint64; config false; }

  rpc reboot {
    input { leaf delay { type uint32; } }
  }
  notification restarted {
    leaf reason { type string; }
  }
}`,
	})

	c, err := NewContext(fsys, DefaultSearchDir, AllImplemented|NoYangLibrary)
	require.NoError(t, err)
	m, err := c.LoadFile("example.yang")
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, WriteTree(&sb, m))

	expected := `module: example
  +--ro counter?      uint64
  +--rw interfaces
  |  +--rw interface* [name]
  |     +--rw (address)?
  |     |  +--:(v4)
  |     |  |  +--rw ipv4?    string
  |     |  +--:(v6)
  |     |     +--rw ipv6?    string
  |     +--rw mtu?          uint16
  |     +--rw name          string
  |     +--rw parent?       -> ../../interface/name
  |     +--rw tags*         string
  +--rw tracing!
     +--rw level    uint8

  rpcs:
    +---x reboot
       +---w input
          +---w delay?    uint32

  notifications:
    +---n restarted
       +--ro reason?    string
`
	require.Equal(t, expected, sb.String())

	require.Error(t, WriteTree(&sb, nil))
}

func TestWriteTreeAugment(t *testing.T) {
	fsys := workspace(t, map[string]string{
		"modules/base.yang": `module base {
  namespace "urn:example:base";
  prefix b;

  typedef port { type uint16; }

  container top {
    leaf name { type string; }
  }
}`,
		"aug.yang": `module aug {
  namespace "urn:example:aug";
  prefix a;

  import base { prefix b; }

  leaf local { type b:port; }

  augment "/b:top" {
    leaf extra { type b:port; }
  }
}`,
	})

	c, err := NewContext(fsys, DefaultSearchDir, AllImplemented|NoYangLibrary)
	require.NoError(t, err)
	m, err := c.LoadFile("aug.yang")
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, WriteTree(&sb, m))

	expected := `module: aug
  +--rw local?    b:port

  augment /b:top:
    +--rw extra?    b:port
`
	require.Equal(t, expected, sb.String())
}

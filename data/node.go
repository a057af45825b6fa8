// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package data provides instance data trees validated against a schema context
package data

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/openconfig/goyang/pkg/yang"

	"github.com/defenseunicorns/yangcheck/schema"
)

// ErrTreeReleased is returned when using a tree after Free
var ErrTreeReleased = errors.New("data tree has been released")

// Node is a single instance of a schema node
type Node struct {
	Schema *yang.Entry
	// Module is the module whose namespace the node is in
	Module   string
	Parent   *Node
	Children []*Node

	// Value is the canonical value of a leaf or leaf-list instance
	//
	// identityref values are always module qualified (module:identity)
	Value string
	// Raw holds the JSON text of an anydata or anyxml node
	Raw json.RawMessage

	// Implicit nodes were created from schema defaults, not read from the document
	Implicit bool
	// Default is set when the value of a leaf equals its schema default
	Default bool

	kind yang.TypeKind
}

// Name returns the schema node name
func (n *Node) Name() string {
	return n.Schema.Name
}

// ValueKind returns the built-in type the value was validated as, resolving unions and leafrefs
func (n *Node) ValueKind() yang.TypeKind {
	return n.kind
}

// Path returns the data path of n, qualifying names where the module changes and adding list keys
func (n *Node) Path() string {
	var parts []string
	for cur := n; cur != nil; cur = cur.Parent {
		parts = append(parts, cur.segment())
	}

	var sb strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		sb.WriteString("/")
		sb.WriteString(parts[i])
	}
	return sb.String()
}

func (n *Node) segment() string {
	name := n.Schema.Name
	if n.Parent == nil || n.Parent.Module != n.Module {
		name = n.Module + ":" + name
	}

	if !n.Schema.IsList() {
		return name
	}

	var sb strings.Builder
	sb.WriteString(name)
	for _, key := range schema.Keys(n.Schema) {
		if k := n.Child(key); k != nil {
			sb.WriteString("[" + key + "='" + k.Value + "']")
		}
	}
	return sb.String()
}

// Child returns the first child named name, or nil
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Schema.Name == name {
			return c
		}
	}
	return nil
}

// Walk calls fn for n and every descendant in document order, stopping at the first error
func (n *Node) Walk(fn func(*Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Tree is a forest of top-level data nodes validated against a schema context
//
// The context must outlive the tree, Free releases the tree's hold on it
type Tree struct {
	Roots []*Node

	ctx      *schema.Context
	released bool
}

// Context returns the schema context the tree was validated against
func (t *Tree) Context() *schema.Context {
	return t.ctx
}

// Free releases the tree, it is safe to call more than once
func (t *Tree) Free() {
	if t == nil || t.released {
		return
	}
	t.released = true
	t.Roots = nil
	if t.ctx != nil {
		t.ctx.Release()
	}
}

// Released reports whether Free has been called
func (t *Tree) Released() bool {
	return t.released
}

// Count returns the number of nodes in the tree, implicit nodes included
func (t *Tree) Count() int {
	count := 0
	for _, root := range t.Roots {
		_ = root.Walk(func(*Node) error {
			count++
			return nil
		})
	}
	return count
}

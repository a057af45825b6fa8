// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/openconfig/goyang/pkg/yang"
	"github.com/spf13/afero"

	"github.com/defenseunicorns/yangcheck/schema"
)

// ParseOptions configures how instance data is read
type ParseOptions uint

const (
	// ParseConfig reads configuration data only, rejecting state data, rpcs, actions and notifications
	ParseConfig ParseOptions = 1 << iota
)

type reader struct {
	c     *schema.Context
	opts  ParseOptions
	typer *typer
	errs  *ValidationError

	explicit int
	leafrefs []*Node
}

// Parse reads an RFC 7951 JSON document into a tree validated against c
//
// Every violation is reported at once as a *ValidationError
func Parse(ctx context.Context, c *schema.Context, r io.Reader, opts ParseOptions) (*Tree, error) {
	if c == nil {
		return nil, errors.New("schema context is nil")
	}

	doc, err := decodeJSON(r)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if doc.kind != jsonObject {
		return nil, fmt.Errorf("invalid JSON: top-level value must be an object, got %s", doc.kind)
	}

	if err := c.Retain(); err != nil {
		return nil, err
	}
	tree := &Tree{ctx: c}

	rd := &reader{
		c:     c,
		opts:  opts,
		typer: newTyper(log.FromContext(ctx)),
		errs:  &ValidationError{},
	}

	rd.document(tree, doc)
	rd.complete(tree)

	if err := rd.errs.errorOrNil(); err != nil {
		tree.Free()
		return nil, err
	}

	if rd.explicit == 0 {
		tree.Free()
		return nil, ErrNoData
	}

	return tree, nil
}

// ReadFile reads the JSON document at path
//
// Failures are logged once here and no tree is returned
func ReadFile(ctx context.Context, c *schema.Context, fsys afero.Fs, path string, opts ParseOptions) (*Tree, error) {
	logger := log.FromContext(ctx)

	f, err := fsys.Open(path)
	if err != nil {
		logger.Error("failed to open data file", "path", path, "err", err)
		return nil, err
	}
	defer f.Close()

	tree, err := Parse(ctx, c, f, opts)
	if err != nil {
		logger.Error("failed to parse data file", "format", "json", "options", opts, "path", path, "err", err)
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	logger.Debug("parsed data file", "path", path, "nodes", tree.Count())

	return tree, nil
}

// String implements fmt.Stringer
func (o ParseOptions) String() string {
	if o&ParseConfig != 0 {
		return "config"
	}
	return "none"
}

func (rd *reader) config() bool {
	return rd.opts&ParseConfig != 0
}

func (rd *reader) document(tree *Tree, doc *jsonValue) {
	for _, m := range doc.members {
		if strings.HasPrefix(m.name, "@") {
			continue
		}

		mod, name, ok := strings.Cut(m.name, ":")
		if !ok {
			rd.errs.append("/"+m.name, "top-level member names must be qualified with a module name")
			continue
		}

		module := rd.c.Module(mod)
		if module == nil || !module.Implemented {
			rd.errs.append("/"+m.name, "module %q is not implemented in the schema context", mod)
			continue
		}

		e := rd.c.FindTopLevel(mod, name)
		if e == nil {
			rd.errs.append("/"+m.name, "unknown element %q", name)
			continue
		}

		rd.member(nil, e, mod, m.value, &tree.Roots)
	}
}

// object reads the members of a JSON object into the children of n
func (rd *reader) object(n *Node, v *jsonValue) {
	for _, m := range v.members {
		if strings.HasPrefix(m.name, "@") {
			continue
		}

		mod, name, ok := strings.Cut(m.name, ":")
		if !ok {
			mod, name = n.Module, m.name
		}

		e := schema.FindDataChild(n.Schema, name)
		if e == nil || schema.EntryModule(e) != mod {
			rd.errs.append(n.Path()+"/"+m.name, "unknown element %q", m.name)
			continue
		}

		rd.member(n, e, mod, m.value, &n.Children)
	}
}

func (rd *reader) member(parent *Node, e *yang.Entry, module string, v *jsonValue, siblings *[]*Node) {
	path := childPath(parent, module, e.Name)

	if schema.IsOperation(e) {
		rd.errs.append(path, "%q is an rpc, action or notification and cannot appear in instance data", e.Name)
		return
	}
	if rd.config() && e.ReadOnly() {
		rd.errs.append(path, "state data node %q is not allowed in configuration data", e.Name)
		return
	}

	for _, sib := range *siblings {
		if sib.Schema == e {
			rd.errs.append(path, "%q is encoded more than once", e.Name)
			return
		}
	}

	newNode := func() *Node {
		rd.explicit++
		return &Node{Schema: e, Module: module, Parent: parent}
	}

	switch {
	case e.IsList():
		if v.kind != jsonArray {
			rd.errs.append(path, "list %q must be encoded as an array, got %s", e.Name, v.kind)
			return
		}
		for _, item := range v.items {
			if item.kind != jsonObject {
				rd.errs.append(path, "list entries must be objects, got %s", item.kind)
				continue
			}
			n := newNode()
			rd.object(n, item)
			rd.orderKeys(n)
			*siblings = append(*siblings, n)
		}

	case e.IsLeafList():
		if v.kind != jsonArray {
			rd.errs.append(path, "leaf-list %q must be encoded as an array, got %s", e.Name, v.kind)
			return
		}
		for _, item := range v.items {
			n := newNode()
			if !rd.value(n, path, item) {
				continue
			}
			*siblings = append(*siblings, n)
		}

	case e.IsLeaf():
		n := newNode()
		if !rd.value(n, path, v) {
			return
		}
		*siblings = append(*siblings, n)

	case e.Kind == yang.AnyDataEntry || e.Kind == yang.AnyXMLEntry:
		if !rd.anydata(path, e, v) {
			return
		}
		n := newNode()
		n.Raw = v.raw
		*siblings = append(*siblings, n)

	case e.IsDir():
		if v.kind != jsonObject {
			rd.errs.append(path, "container %q must be encoded as an object, got %s", e.Name, v.kind)
			return
		}
		n := newNode()
		rd.object(n, v)
		*siblings = append(*siblings, n)

	default:
		rd.errs.append(path, "unsupported schema node %q", e.Name)
	}
}

// value validates a leaf or leaf-list instance and stores its canonical value in n
func (rd *reader) value(n *Node, path string, v *jsonValue) bool {
	s := scalar{kind: v.kind, text: v.text, empty: v.isEmptyLeaf()}
	if !s.empty && (v.kind == jsonObject || v.kind == jsonArray || v.kind == jsonNull) {
		rd.errs.append(path, "invalid value for %q: expected a scalar, got %s", n.Schema.Name, v.kind)
		return false
	}

	val, kind, err := rd.typer.canonical(n.Schema, n.Schema.Type, s, 0)
	if err != nil {
		rd.errs.append(path, "invalid value for %q: %v", n.Schema.Name, err)
		return false
	}

	n.Value = val
	n.kind = kind

	if n.Schema.IsLeaf() && !schema.IsKey(n.Schema) {
		if def, ok := rd.defaultValue(n.Schema); ok && len(def) == 1 && def[0] == val {
			n.Default = true
		}
	}

	if n.Schema.Type.Kind == yang.Yleafref && !n.Schema.Type.OptionalInstance {
		rd.leafrefs = append(rd.leafrefs, n)
	}

	return true
}

// defaultValue returns the canonical default values of e
func (rd *reader) defaultValue(e *yang.Entry) ([]string, bool) {
	defs := schema.Defaults(e)
	if len(defs) == 0 || e.Type == nil {
		return nil, false
	}

	out := make([]string, 0, len(defs))
	for _, d := range defs {
		val, _, err := rd.typer.canonical(e, e.Type, scalar{text: d, lexical: true}, 0)
		if err != nil {
			return nil, false
		}
		out = append(out, val)
	}
	return out, true
}

// orderKeys moves the key leaves of a list entry to the front in key order
func (rd *reader) orderKeys(n *Node) {
	keys := schema.Keys(n.Schema)
	if len(keys) == 0 {
		return
	}

	ordered := make([]*Node, 0, len(n.Children))
	for _, key := range keys {
		k := n.Child(key)
		if k == nil {
			rd.errs.append(n.Path(), "list entry is missing key %q", key)
			continue
		}
		ordered = append(ordered, k)
	}
	for _, c := range n.Children {
		if !schema.IsKey(c.Schema) {
			ordered = append(ordered, c)
		}
	}
	n.Children = ordered
}

func childPath(parent *Node, module, name string) string {
	if parent == nil {
		return "/" + module + ":" + name
	}
	if parent.Module != module {
		return parent.Path() + "/" + module + ":" + name
	}
	return parent.Path() + "/" + name
}

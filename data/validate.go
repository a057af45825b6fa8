// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package data

import (
	"slices"
	"strings"

	"github.com/openconfig/goyang/pkg/yang"

	"github.com/defenseunicorns/yangcheck/schema"
)

// complete materializes schema defaults and checks every constraint that spans more than one node
func (rd *reader) complete(tree *Tree) {
	for _, m := range rd.c.Modules() {
		rd.children(nil, m.Entry, m.Name, &tree.Roots)
	}

	for _, n := range rd.leafrefs {
		rd.requireInstance(tree, n)
	}
}

// children checks the schema children of dir against the instances in list
//
// parent is nil for top-level nodes, dir is then the module entry
func (rd *reader) children(parent *Node, dir *yang.Entry, module string, list *[]*Node) {
	for _, name := range sortedChildNames(dir) {
		rd.entry(parent, dir.Dir[name], module, list)
	}
}

func (rd *reader) skip(e *yang.Entry) bool {
	return schema.IsOperation(e) || (rd.config() && e.ReadOnly())
}

func (rd *reader) entry(parent *Node, e *yang.Entry, module string, list *[]*Node) {
	if rd.skip(e) {
		return
	}

	if e.IsChoice() {
		rd.choice(parent, e, module, list)
		return
	}

	mod := schema.EntryModule(e)
	if mod == "" {
		mod = module
	}
	path := childPath(parent, mod, e.Name)
	instances := instancesOf(*list, e)

	switch {
	case e.IsList():
		rd.cardinality(path, e, len(instances))
		rd.uniqueKeys(path, e, instances)
		rd.uniqueStatements(path, e, instances)
		for _, n := range instances {
			rd.children(n, n.Schema, n.Module, &n.Children)
		}

	case e.IsLeafList():
		rd.cardinality(path, e, len(instances))
		if rd.config() {
			seen := map[string]bool{}
			for _, n := range instances {
				if seen[n.Value] {
					rd.errs.append(path, "duplicate leaf-list value %q", n.Value)
				}
				seen[n.Value] = true
			}
		}
		if len(instances) == 0 && !schema.HasWhen(e) {
			if defs, ok := rd.defaultValue(e); ok {
				for _, d := range defs {
					n := rd.implicit(parent, e, mod, d)
					n.Default = true
					*list = append(*list, n)
				}
			}
		}

	case e.IsLeaf():
		if len(instances) > 0 || schema.IsKey(e) || schema.HasWhen(e) {
			return
		}
		if schema.IsMandatory(e) {
			rd.errs.append(path, "mandatory node %q is missing", e.Name)
			return
		}
		if defs, ok := rd.defaultValue(e); ok && len(defs) == 1 {
			n := rd.implicit(parent, e, mod, defs[0])
			n.Default = true
			*list = append(*list, n)
		}

	case e.Kind == yang.AnyDataEntry || e.Kind == yang.AnyXMLEntry:
		if len(instances) == 0 && schema.IsMandatory(e) && !schema.HasWhen(e) {
			rd.errs.append(path, "mandatory node %q is missing", e.Name)
		}

	case e.IsContainer():
		if len(instances) > 0 {
			for _, n := range instances {
				rd.children(n, n.Schema, n.Module, &n.Children)
			}
			return
		}
		if schema.IsPresence(e) || schema.HasWhen(e) {
			return
		}
		// a non-presence container exists whenever its parent does
		n := &Node{Schema: e, Module: mod, Parent: parent, Implicit: true}
		rd.children(n, e, mod, &n.Children)
		if len(n.Children) > 0 {
			*list = append(*list, n)
		}
	}
}

// choice checks that at most one case of e has instances, descending into the active or default case
func (rd *reader) choice(parent *Node, e *yang.Entry, module string, list *[]*Node) {
	var active []*yang.Entry
	for _, name := range sortedChildNames(e) {
		c := e.Dir[name]
		if slices.ContainsFunc(*list, func(n *Node) bool { return within(n.Schema, c) }) {
			active = append(active, c)
		}
	}

	path := "/" + module + ":" + e.Name
	if parent != nil {
		path = parent.Path() + "/" + e.Name
	}

	switch len(active) {
	case 0:
		if schema.HasWhen(e) {
			return
		}
		if schema.IsMandatory(e) {
			rd.errs.append(path, "mandatory choice %q has no case with data", e.Name)
			return
		}
		defs := schema.Defaults(e)
		if len(defs) == 0 {
			return
		}
		if c := e.Dir[defs[0]]; c != nil {
			rd.caseEntries(parent, c, module, list)
		}
	case 1:
		rd.caseEntries(parent, active[0], module, list)
	default:
		names := make([]string, 0, len(active))
		for _, c := range active {
			names = append(names, c.Name)
		}
		rd.errs.append(path, "data from more than one case of choice %q (%s)", e.Name, strings.Join(names, ", "))
	}
}

// caseEntries descends into a case, or into a shorthand case node
func (rd *reader) caseEntries(parent *Node, c *yang.Entry, module string, list *[]*Node) {
	if c.IsCase() {
		rd.children(parent, c, module, list)
		return
	}
	rd.entry(parent, c, module, list)
}

func (rd *reader) implicit(parent *Node, e *yang.Entry, module, value string) *Node {
	n := &Node{Schema: e, Module: module, Parent: parent, Value: value, Implicit: true}
	if e.Type != nil {
		if _, kind, err := rd.typer.canonical(e, e.Type, scalar{text: value, lexical: true}, 0); err == nil {
			n.kind = kind
		}
	}
	return n
}

func (rd *reader) cardinality(path string, e *yang.Entry, count int) {
	if e.ListAttr == nil || schema.HasWhen(e) {
		return
	}
	if uint64(count) < e.ListAttr.MinElements {
		rd.errs.append(path, "%q has %d instances, min-elements is %d", e.Name, count, e.ListAttr.MinElements)
	}
	if e.ListAttr.MaxElements > 0 && uint64(count) > e.ListAttr.MaxElements {
		rd.errs.append(path, "%q has %d instances, max-elements is %d", e.Name, count, e.ListAttr.MaxElements)
	}
}

func (rd *reader) uniqueKeys(path string, e *yang.Entry, instances []*Node) {
	keys := schema.Keys(e)
	if len(keys) == 0 {
		return
	}

	seen := map[string]bool{}
	for _, n := range instances {
		values := make([]string, 0, len(keys))
		for _, key := range keys {
			if k := n.Child(key); k != nil {
				values = append(values, k.Value)
			}
		}
		if len(values) != len(keys) {
			continue
		}
		id := strings.Join(values, "\x00")
		if seen[id] {
			rd.errs.append(path, "duplicate list entry with key %s", strings.Join(values, ", "))
		}
		seen[id] = true
	}
}

// uniqueStatements checks the unique constraints of list e
func (rd *reader) uniqueStatements(path string, e *yang.Entry, instances []*Node) {
	l, ok := e.Node.(*yang.List)
	if !ok {
		return
	}

	for _, u := range l.Unique {
		if u == nil {
			continue
		}
		fields := strings.Fields(u.Name)
		seen := map[string]bool{}
		for _, n := range instances {
			values := make([]string, 0, len(fields))
			for _, field := range fields {
				if v, ok := descendantValue(n, field); ok {
					values = append(values, v)
				}
			}
			// entries missing any of the leaves do not take part
			if len(values) != len(fields) {
				continue
			}
			id := strings.Join(values, "\x00")
			if seen[id] {
				rd.errs.append(path, "unique constraint %q violated by %s", u.Name, strings.Join(values, ", "))
			}
			seen[id] = true
		}
	}
}

// requireInstance checks that a leafref value exists among the instances its path selects
//
// a nil node in the walk stands for the document root
func (rd *reader) requireInstance(tree *Tree, n *Node) {
	steps, absolute := splitPath(n.Schema.Type.Path)

	cur := []*Node{n}
	if absolute {
		cur = []*Node{nil}
	}

	for _, step := range steps {
		var next []*Node
		switch step {
		case ".":
			next = cur
		case "..":
			for _, c := range cur {
				if c == nil {
					next = append(next, nil)
					continue
				}
				next = append(next, c.Parent)
			}
			// siblings share a parent
			next = slices.Compact(next)
		default:
			for _, c := range cur {
				children := tree.Roots
				if c != nil {
					children = c.Children
				}
				for _, child := range children {
					if child.Schema.Name == step {
						next = append(next, child)
					}
				}
			}
		}
		cur = next
	}

	for _, c := range cur {
		if c != nil && c.Value == n.Value {
			return
		}
	}
	rd.errs.append(n.Path(), "leafref value %q has no matching instance at %s", n.Value, n.Schema.Type.Path)
}

// descendantValue follows a descendant schema node id (a/b/c) through the first matching instances
func descendantValue(n *Node, path string) (string, bool) {
	steps, _ := splitPath(path)
	cur := n
	for _, step := range steps {
		cur = cur.Child(step)
		if cur == nil {
			return "", false
		}
	}
	return cur.Value, true
}

// instancesOf returns the nodes in list that are instances of e
func instancesOf(list []*Node, e *yang.Entry) []*Node {
	var out []*Node
	for _, n := range list {
		if n.Schema == e {
			out = append(out, n)
		}
	}
	return out
}

// within reports whether data node schema e sits inside the choice or case c
func within(e, c *yang.Entry) bool {
	if e == c {
		return true
	}
	for p := e.Parent; p != nil && schema.IsSchemaOnly(p); p = p.Parent {
		if p == c {
			return true
		}
	}
	return false
}

func sortedChildNames(e *yang.Entry) []string {
	names := make([]string, 0, len(e.Dir))
	for name := range e.Dir {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package schema

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/openconfig/goyang/pkg/yang"
)

// WriteTree writes an RFC 8340 style tree diagram of m
//
// Siblings are sorted by name
func WriteTree(w io.Writer, m *Module) error {
	if m == nil || m.Entry == nil {
		return fmt.Errorf("module is nil")
	}

	tw := &treeWriter{w: w}
	tw.printf("module: %s\n", m.Name)

	var data, rpcs, notifications []*yang.Entry
	for _, name := range sortedNames(m.Entry) {
		child := m.Entry.Dir[name]
		switch {
		case child.RPC != nil:
			rpcs = append(rpcs, child)
		case child.Kind == yang.NotificationEntry:
			notifications = append(notifications, child)
		default:
			data = append(data, child)
		}
	}

	tw.siblings(data, "  ")
	for _, a := range augments(m) {
		tw.printf("\n  augment %s:\n", a.Name)
		var children []*yang.Entry
		for _, name := range sortedNames(a) {
			children = append(children, a.Dir[name])
		}
		tw.siblings(children, "    ")
	}
	if len(rpcs) > 0 {
		tw.printf("\n  rpcs:\n")
		tw.siblings(rpcs, "    ")
	}
	if len(notifications) > 0 {
		tw.printf("\n  notifications:\n")
		tw.siblings(notifications, "    ")
	}

	return tw.err
}

type treeWriter struct {
	w   io.Writer
	err error
}

func (tw *treeWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

func (tw *treeWriter) siblings(entries []*yang.Entry, prefix string) {
	width := 0
	for _, e := range entries {
		width = max(width, len(label(e)))
	}

	for i, e := range entries {
		last := i == len(entries)-1
		tw.entry(e, prefix, width, last)
	}
}

func (tw *treeWriter) entry(e *yang.Entry, prefix string, width int, last bool) {
	l := label(e)
	line := prefix + "+--" + flags(e) + " " + l
	if e.IsCase() {
		line = prefix + "+--" + l
	}
	if typ := typeLabel(e); typ != "" {
		line += strings.Repeat(" ", width-len(l)+4) + typ
	}
	tw.printf("%s\n", strings.TrimRight(line, " "))

	next := prefix + "|  "
	if last {
		next = prefix + "   "
	}

	var children []*yang.Entry
	switch {
	case e.RPC != nil:
		if e.RPC.Input != nil {
			children = append(children, e.RPC.Input)
		}
		if e.RPC.Output != nil {
			children = append(children, e.RPC.Output)
		}
	case e.Dir != nil:
		for _, name := range sortedNames(e) {
			children = append(children, e.Dir[name])
		}
	}
	tw.siblings(children, next)
}

func label(e *yang.Entry) string {
	switch {
	case e.IsChoice():
		if e.Mandatory != yang.TSTrue {
			return "(" + e.Name + ")?"
		}
		return "(" + e.Name + ")"
	case e.IsCase():
		return ":(" + e.Name + ")"
	case e.IsList():
		if e.Key != "" {
			return e.Name + "* [" + e.Key + "]"
		}
		return e.Name + "*"
	case e.IsLeafList():
		return e.Name + "*"
	case e.IsContainer() && IsPresence(e):
		return e.Name + "!"
	case e.IsLeaf() && e.Mandatory != yang.TSTrue && !IsKey(e):
		return e.Name + "?"
	default:
		return e.Name
	}
}

func flags(e *yang.Entry) string {
	switch {
	case e.RPC != nil:
		return "-x"
	case e.Kind == yang.NotificationEntry:
		return "-n"
	}

	// parameters take the flags of the operation they belong to
	for p := e; p != nil; p = p.Parent {
		switch p.Kind {
		case yang.InputEntry:
			return "-w"
		case yang.OutputEntry, yang.NotificationEntry:
			return "ro"
		}
	}

	if e.ReadOnly() {
		return "ro"
	}
	return "rw"
}

// typeLabel returns the type of a leaf as written in the module, keeping the prefix of imported typedefs
func typeLabel(e *yang.Entry) string {
	if e.Type == nil || !(e.IsLeaf() || e.IsLeafList()) {
		return ""
	}
	if e.Type.Kind == yang.Yleafref {
		return "-> " + e.Type.Path
	}

	var written *yang.Type
	switch n := e.Node.(type) {
	case *yang.Leaf:
		written = n.Type
	case *yang.LeafList:
		written = n.Type
	}
	if written != nil && written.Name != "" {
		return written.Name
	}
	return e.Type.Name
}

// augments returns the augment statements of m that target another module, in path order
func augments(m *Module) []*yang.Entry {
	var out []*yang.Entry
	for _, a := range m.Entry.Augments {
		if a == nil || len(a.Dir) == 0 {
			continue
		}
		first, _, _ := strings.Cut(strings.TrimPrefix(a.Name, "/"), "/")
		if prefix, _, ok := strings.Cut(first, ":"); ok && prefix == m.Prefix {
			continue
		}
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *yang.Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func sortedNames(e *yang.Entry) []string {
	names := make([]string, 0, len(e.Dir))
	for name := range e.Dir {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

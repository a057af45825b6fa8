// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package schema

import (
	"slices"
	"strings"

	"github.com/openconfig/goyang/pkg/yang"
)

// IsPresence reports whether e is a presence container
func IsPresence(e *yang.Entry) bool {
	c, ok := e.Node.(*yang.Container)
	return ok && c.Presence != nil
}

// Keys returns the key leaf names of list e in declaration order
func Keys(e *yang.Entry) []string {
	return strings.Fields(e.Key)
}

// IsKey reports whether e is a key leaf of its parent list
func IsKey(e *yang.Entry) bool {
	p := DataParent(e)
	if p == nil || !p.IsList() {
		return false
	}
	return slices.Contains(Keys(p), e.Name)
}

// IsSchemaOnly reports whether e is a choice or case, which never appear in instance data
func IsSchemaOnly(e *yang.Entry) bool {
	return e.IsChoice() || e.IsCase()
}

// IsOperation reports whether e is an rpc, action or notification
func IsOperation(e *yang.Entry) bool {
	return e.RPC != nil || e.Kind == yang.NotificationEntry || e.Kind == yang.InputEntry || e.Kind == yang.OutputEntry
}

// DataParent returns the closest ancestor of e that can appear in instance data, skipping choices and cases
func DataParent(e *yang.Entry) *yang.Entry {
	p := e.Parent
	for p != nil && IsSchemaOnly(p) {
		p = p.Parent
	}
	return p
}

// DataChildren returns the children of e that can appear in instance data, descending through choices and cases
//
// Children are sorted by name at every level
func DataChildren(e *yang.Entry) []*yang.Entry {
	var out []*yang.Entry
	for _, name := range sortedNames(e) {
		child := e.Dir[name]
		if IsSchemaOnly(child) {
			out = append(out, DataChildren(child)...)
			continue
		}
		out = append(out, child)
	}
	return out
}

// FindDataChild returns the child of e named name that can appear in instance data, or nil
func FindDataChild(e *yang.Entry, name string) *yang.Entry {
	if e == nil || e.Dir == nil {
		return nil
	}
	if child, ok := e.Dir[name]; ok && !IsSchemaOnly(child) {
		return child
	}
	for _, child := range e.Dir {
		if IsSchemaOnly(child) {
			if found := FindDataChild(child, name); found != nil {
				return found
			}
		}
	}
	return nil
}

// EntryModule returns the name of the module whose namespace e is instantiated in
func EntryModule(e *yang.Entry) string {
	if name, err := e.InstantiatingModule(); err == nil && name != "" {
		return name
	}
	if e.Node != nil {
		return ModuleName(e.Node)
	}
	return ""
}

// Defaults returns the lexical default values of e, falling back to the default of its type
//
// For a choice this is the name of its default case
func Defaults(e *yang.Entry) []string {
	if len(e.Default) > 0 {
		return e.Default
	}
	if e.IsChoice() || e.Type == nil {
		return nil
	}
	if e.Type.HasDefault {
		return []string{e.Type.Default}
	}
	return nil
}

// HasWhen reports whether e is guarded by a when expression
func HasWhen(e *yang.Entry) bool {
	_, ok := e.GetWhenXPath()
	return ok
}

// IsMandatory reports whether e is a mandatory leaf, anydata or choice
func IsMandatory(e *yang.Entry) bool {
	return e.Mandatory == yang.TSTrue
}

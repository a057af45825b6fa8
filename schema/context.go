// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package schema provides the YANG schema context used to validate instance data
package schema

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/openconfig/goyang/pkg/yang"
	"github.com/spf13/afero"
)

// DefaultSearchDir is the directory consulted for imported and included modules
//
// It is relative to the process working directory, not to the schema file
const DefaultSearchDir = "./modules"

// Options configures a Context
type Options uint

const (
	// AllImplemented marks every loaded module as implemented, including modules that were only loaded to satisfy an import
	AllImplemented Options = 1 << iota
	// NoYangLibrary skips generating the ietf-yang-library meta-schema module
	NoYangLibrary
)

var (
	// ErrYangLibraryUnsupported is returned when a context is requested with a generated yang library
	ErrYangLibraryUnsupported = errors.New("generating ietf-yang-library is not supported, NoYangLibrary must be set")
	// ErrContextInUse is returned when closing a context that still backs live data trees
	ErrContextInUse = errors.New("schema context still backs live data trees")
	// ErrContextClosed is returned when using a context after Close
	ErrContextClosed = errors.New("schema context is closed")
)

// Module is a compiled module owned by a Context
type Module struct {
	Name        string
	Namespace   string
	Prefix      string
	Revision    string
	Description string
	// Implemented modules may contribute top-level data nodes
	Implemented bool
	Entry       *yang.Entry
}

// Context is a set of compiled YANG modules
//
// A Context is not safe for concurrent use
type Context struct {
	fsys      afero.Fs
	searchDir string
	opts      Options

	ms       *yang.Modules
	modules  []*Module
	byName   map[string]*Module
	explicit map[string]bool
	index    *fileIndex

	trees  int
	closed bool
}

// NewContext creates an empty schema context
//
// A search directory that does not exist is ignored, one that exists but is not a directory is an error
func NewContext(fsys afero.Fs, searchDir string, opts Options) (*Context, error) {
	if fsys == nil {
		return nil, errors.New("filesystem is nil")
	}

	if opts&NoYangLibrary == 0 {
		return nil, ErrYangLibraryUnsupported
	}

	if searchDir != "" {
		fi, err := fsys.Stat(searchDir)
		switch {
		case err == nil && !fi.IsDir():
			return nil, fmt.Errorf("unable to use search directory %q: not a directory", searchDir)
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("unable to use search directory %q: %w", searchDir, err)
		case err != nil:
			searchDir = ""
		}
	}

	return &Context{
		fsys:      fsys,
		searchDir: searchDir,
		opts:      opts,
		ms:        yang.NewModules(),
		byName:    map[string]*Module{},
		explicit:  map[string]bool{},
	}, nil
}

// LoadFile compiles the YANG module at path into c, resolving its imports and includes
func (c *Context) LoadFile(path string) (*Module, error) {
	if c.closed {
		return nil, ErrContextClosed
	}

	data, err := afero.ReadFile(c.fsys, path)
	if err != nil {
		return nil, err
	}

	name, keyword, err := header(string(data), path)
	if err != nil {
		return nil, err
	}
	if keyword != "module" {
		return nil, fmt.Errorf("%s: expected a module, got %s %q", path, keyword, name)
	}
	if c.ms.Modules[name] != nil {
		return nil, fmt.Errorf("%s: module %q is already loaded", path, name)
	}

	if err := c.ms.Parse(string(data), path); err != nil {
		return nil, err
	}

	m := c.ms.Modules[name]
	if m == nil {
		return nil, fmt.Errorf("%s: module %q was not registered after parsing", path, name)
	}

	if err := c.resolve(m, map[string]bool{name: true}); err != nil {
		return nil, err
	}

	if errs := c.ms.Process(); len(errs) > 0 {
		return nil, inline(errs)
	}

	c.explicit[name] = true

	if err := c.register(name); err != nil {
		return nil, err
	}

	return c.byName[name], nil
}

// register records every processed module that c does not know about yet, the explicitly loaded one first
func (c *Context) register(first string) error {
	names := make([]string, 0, len(c.ms.Modules))
	for key := range c.ms.Modules {
		if strings.Contains(key, "@") || c.byName[key] != nil || key == first {
			continue
		}
		names = append(names, key)
	}
	slices.Sort(names)
	if c.byName[first] == nil {
		names = append([]string{first}, names...)
	}

	for _, name := range names {
		m := c.ms.Modules[name]
		e := yang.ToEntry(m)
		if errs := e.GetErrors(); len(errs) > 0 {
			return inline(errs)
		}

		mod := &Module{
			Name:        m.Name,
			Revision:    m.Current(),
			Implemented: c.explicit[name] || c.opts&AllImplemented != 0,
			Entry:       e,
		}
		if m.Namespace != nil {
			mod.Namespace = m.Namespace.Name
		}
		if m.Prefix != nil {
			mod.Prefix = m.Prefix.Name
		}
		if m.Description != nil {
			mod.Description = m.Description.Name
		}

		c.modules = append(c.modules, mod)
		c.byName[name] = mod
	}

	return nil
}

// Modules returns the implemented modules in load order
func (c *Context) Modules() []*Module {
	mods := make([]*Module, 0, len(c.modules))
	for _, m := range c.modules {
		if m.Implemented {
			mods = append(mods, m)
		}
	}
	return mods
}

// Loaded returns the modules compiled with LoadFile in load order, without their dependencies
func (c *Context) Loaded() []*Module {
	mods := make([]*Module, 0, len(c.explicit))
	for _, m := range c.modules {
		if c.explicit[m.Name] {
			mods = append(mods, m)
		}
	}
	return mods
}

// Module returns the compiled module with the given name, or nil
func (c *Context) Module(name string) *Module {
	return c.byName[name]
}

// ModuleByNamespace returns the compiled module with the given XML namespace, or nil
func (c *Context) ModuleByNamespace(ns string) *Module {
	for _, m := range c.modules {
		if m.Namespace == ns {
			return m
		}
	}
	return nil
}

// Namespace returns the XML namespace of the named module, or an empty string
func (c *Context) Namespace(module string) string {
	if m := c.byName[module]; m != nil {
		return m.Namespace
	}
	return ""
}

// FindTopLevel returns the top-level data node name of the named module, or nil
func (c *Context) FindTopLevel(module, name string) *yang.Entry {
	m := c.byName[module]
	if m == nil || m.Entry == nil {
		return nil
	}
	e := FindDataChild(m.Entry, name)
	if e == nil || EntryModule(e) != module {
		return nil
	}
	return e
}

// Retain records a data tree that was validated against c
func (c *Context) Retain() error {
	if c.closed {
		return ErrContextClosed
	}
	c.trees++
	return nil
}

// Release drops a data tree recorded by Retain
func (c *Context) Release() {
	if c.trees > 0 {
		c.trees--
	}
}

// Close releases the module set
//
// Closing a context that still backs data trees fails, closing twice is a no-op
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	if c.trees > 0 {
		return fmt.Errorf("%w (%d)", ErrContextInUse, c.trees)
	}
	c.closed = true
	c.ms = nil
	c.modules = nil
	c.byName = nil
	c.index = nil
	return nil
}

// ModuleName returns the name of the module that defines n, following belongs-to for submodules
func ModuleName(n yang.Node) string {
	m := yang.RootNode(n)
	if m == nil {
		return ""
	}
	if m.BelongsTo != nil {
		return m.BelongsTo.Name
	}
	return m.Name
}

func header(data, path string) (name, keyword string, _ error) {
	ss, err := yang.Parse(data, path)
	if err != nil {
		return "", "", err
	}
	if len(ss) != 1 {
		return "", "", fmt.Errorf("%s: expected exactly one top-level statement, got %d", path, len(ss))
	}
	return ss[0].Argument, ss[0].Keyword, nil
}

// inline aggregates errors into a single error that renders on one line
func inline(errs []error) error {
	return &multierror.Error{
		Errors:      errs,
		ErrorFormat: inlineFormat,
	}
}

func inlineFormat(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

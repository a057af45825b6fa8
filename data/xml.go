// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package data

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/openconfig/goyang/pkg/yang"
)

// WithDefaultsNamespace is the namespace of the wd:default attribute
const WithDefaultsNamespace = "urn:ietf:params:xml:ns:netconf:default:1.0"

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// WriteXML prints t as XML, declaring the module namespace on every top-level element and wherever the module changes
//
// Nothing is written to w when printing fails
func WriteXML(w io.Writer, t *Tree, opts PrintOptions) error {
	if err := checkTree(t); err != nil {
		return err
	}

	xw := &xmlWriter{t: t, opts: opts}
	for _, n := range opts.visible(t.Roots) {
		if err := xw.node(n, "", 0); err != nil {
			return err
		}
	}

	_, err := w.Write(xw.buf.Bytes())
	return err
}

type xmlWriter struct {
	t    *Tree
	opts PrintOptions
	buf  bytes.Buffer
}

type xmlAttr struct {
	name, value string
}

func (xw *xmlWriter) indent(depth int) {
	if !xw.opts.Shrink {
		xw.buf.WriteString(strings.Repeat("  ", depth))
	}
}

func (xw *xmlWriter) newline() {
	if !xw.opts.Shrink {
		xw.buf.WriteByte('\n')
	}
}

func (xw *xmlWriter) open(name string, attrs []xmlAttr, depth int, empty bool) {
	xw.indent(depth)
	xw.buf.WriteString("<" + name)
	for _, a := range attrs {
		xw.buf.WriteString(" " + a.name + `="` + attrEscaper.Replace(a.value) + `"`)
	}
	if empty {
		xw.buf.WriteString("/>")
		xw.newline()
		return
	}
	xw.buf.WriteString(">")
}

func (xw *xmlWriter) close(name string, depth int) {
	xw.indent(depth)
	xw.buf.WriteString("</" + name + ">")
	xw.newline()
}

func (xw *xmlWriter) namespace(module string) (string, error) {
	ns := xw.t.ctx.Namespace(module)
	if ns == "" {
		return "", fmt.Errorf("no XML namespace for module %q", module)
	}
	return ns, nil
}

func (xw *xmlWriter) node(n *Node, parentModule string, depth int) error {
	var attrs []xmlAttr
	if n.Module != parentModule {
		ns, err := xw.namespace(n.Module)
		if err != nil {
			return err
		}
		attrs = append(attrs, xmlAttr{"xmlns", ns})
	}
	name := n.Schema.Name

	switch {
	case n.Schema.IsLeaf() || n.Schema.IsLeafList():
		text, extra, err := xw.value(n)
		if err != nil {
			return fmt.Errorf("%s: %w", n.Path(), err)
		}
		attrs = append(attrs, extra...)
		if xw.opts.tagged(n) {
			attrs = append(attrs, xmlAttr{"xmlns:wd", WithDefaultsNamespace}, xmlAttr{"wd:default", "true"})
		}
		if text == "" {
			xw.open(name, attrs, depth, true)
			return nil
		}
		xw.open(name, attrs, depth, false)
		xw.buf.WriteString(textEscaper.Replace(text))
		xw.buf.WriteString("</" + name + ">")
		xw.newline()
		return nil

	case n.Schema.Kind == yang.AnyDataEntry || n.Schema.Kind == yang.AnyXMLEntry:
		v, err := decodeJSON(bytes.NewReader(n.Raw))
		if err != nil {
			return fmt.Errorf("%s: %w", n.Path(), err)
		}
		return xw.anydata(name, attrs, v, depth)

	default:
		children := xw.opts.visible(n.Children)
		if len(children) == 0 {
			xw.open(name, attrs, depth, true)
			return nil
		}
		xw.open(name, attrs, depth, false)
		xw.newline()
		for _, c := range children {
			if err := xw.node(c, n.Module, depth+1); err != nil {
				return err
			}
		}
		xw.close(name, depth)
		return nil
	}
}

// value returns the XML text of a leaf value and the namespace declarations it needs
func (xw *xmlWriter) value(n *Node) (string, []xmlAttr, error) {
	switch n.kind {
	case yang.Yidentityref:
		mod, id, ok := strings.Cut(n.Value, ":")
		if !ok || mod == n.Module {
			return id, nil, nil
		}
		m := xw.t.ctx.Module(mod)
		if m == nil || m.Namespace == "" {
			return "", nil, fmt.Errorf("no XML namespace for module %q", mod)
		}
		return m.Prefix + ":" + id, []xmlAttr{{"xmlns:" + m.Prefix, m.Namespace}}, nil
	case yang.YinstanceIdentifier:
		return xw.instanceIdentifier(n.Value)
	default:
		return n.Value, nil, nil
	}
}

// instanceIdentifier rewrites the module names of a JSON encoded instance-identifier to declared prefixes
func (xw *xmlWriter) instanceIdentifier(v string) (string, []xmlAttr, error) {
	var (
		sb       strings.Builder
		attrs    []xmlAttr
		declared = map[string]bool{}
		quote    rune
	)

	for i := 0; i < len(v); i++ {
		ch := rune(v[i])
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			sb.WriteRune(ch)
			continue
		}

		switch ch {
		case '\'', '"':
			quote = ch
			sb.WriteRune(ch)
			continue
		case '/', '[':
			sb.WriteRune(ch)
			end := strings.IndexAny(v[i+1:], ":/[]='\"")
			if end < 0 || v[i+1+end] != ':' {
				continue
			}
			mod := v[i+1 : i+1+end]
			m := xw.t.ctx.Module(mod)
			if m == nil || m.Namespace == "" {
				return "", nil, fmt.Errorf("no XML namespace for module %q", mod)
			}
			if !declared[mod] {
				declared[mod] = true
				attrs = append(attrs, xmlAttr{"xmlns:" + m.Prefix, m.Namespace})
			}
			sb.WriteString(m.Prefix + ":")
			i += end + 1
			continue
		}
		sb.WriteRune(ch)
	}

	return sb.String(), attrs, nil
}

// anydata prints a JSON value as XML elements, objects become child elements and arrays repeat their element
func (xw *xmlWriter) anydata(name string, attrs []xmlAttr, v *jsonValue, depth int) error {
	switch v.kind {
	case jsonObject:
		if len(v.members) == 0 {
			xw.open(name, attrs, depth, true)
			return nil
		}
		xw.open(name, attrs, depth, false)
		xw.newline()
		for _, m := range v.members {
			if strings.HasPrefix(m.name, "@") {
				continue
			}
			var childAttrs []xmlAttr
			child := m.name
			if mod, local, ok := strings.Cut(m.name, ":"); ok {
				ns, err := xw.namespace(mod)
				if err != nil {
					return err
				}
				child = local
				childAttrs = append(childAttrs, xmlAttr{"xmlns", ns})
			}
			items := []*jsonValue{m.value}
			if m.value.kind == jsonArray && !m.value.isEmptyLeaf() {
				items = m.value.items
			}
			for _, item := range items {
				if err := xw.anydata(child, childAttrs, item, depth+1); err != nil {
					return err
				}
			}
		}
		xw.close(name, depth)
	case jsonNull:
		xw.open(name, attrs, depth, true)
	case jsonArray:
		if v.isEmptyLeaf() {
			xw.open(name, attrs, depth, true)
			return nil
		}
		for _, item := range v.items {
			if err := xw.anydata(name, attrs, item, depth); err != nil {
				return err
			}
		}
	default:
		if v.text == "" {
			xw.open(name, attrs, depth, true)
			return nil
		}
		xw.open(name, attrs, depth, false)
		xw.buf.WriteString(textEscaper.Replace(v.text))
		xw.buf.WriteString("</" + name + ">")
		xw.newline()
	}
	return nil
}

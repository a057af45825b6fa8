// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package data

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/openconfig/goyang/pkg/yang"
	"github.com/spf13/cast"
)

// WithDefaultsModule qualifies the default annotation in JSON and YAML output
const WithDefaultsModule = "ietf-netconf-with-defaults"

// WriteJSON prints t as RFC 7951 JSON
//
// Nothing is written to w when printing fails
func WriteJSON(w io.Writer, t *Tree, opts PrintOptions) error {
	doc, err := document(t, opts, false)
	if err != nil {
		return err
	}

	var compact bytes.Buffer
	if err := encodeJSON(&compact, doc); err != nil {
		return err
	}

	if opts.Shrink {
		_, err := w.Write(compact.Bytes())
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err = w.Write(out.Bytes())
	return err
}

// WriteYAML prints t as YAML with the same shape as the JSON encoding
//
// Nothing is written to w when printing fails
func WriteYAML(w io.Writer, t *Tree, opts PrintOptions) error {
	doc, err := document(t, opts, true)
	if err != nil {
		return err
	}

	encodeOpts := []yaml.EncodeOption{yaml.Indent(2), yaml.IndentSequence(true)}
	if opts.Shrink {
		encodeOpts = append(encodeOpts, yaml.Flow(true))
	}

	b, err := yaml.MarshalWithOptions(doc, encodeOpts...)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// document builds the ordered RFC 7951 object for t
func document(t *Tree, opts PrintOptions, forYAML bool) (yaml.MapSlice, error) {
	if err := checkTree(t); err != nil {
		return nil, err
	}
	b := &builder{opts: opts, forYAML: forYAML}
	return b.object(opts.visible(t.Roots), "")
}

type builder struct {
	opts    PrintOptions
	forYAML bool
}

// object groups list and leaf-list instances under a single member at the position of the first instance
func (b *builder) object(nodes []*Node, parentModule string) (yaml.MapSlice, error) {
	var (
		out   yaml.MapSlice
		index = map[*yang.Entry]int{}
		tags  = map[*yang.Entry]int{}
	)

	for _, n := range nodes {
		name := n.Schema.Name
		if n.Module != parentModule {
			name = n.Module + ":" + name
		}

		v, err := b.value(n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.Path(), err)
		}

		if !n.Schema.IsList() && !n.Schema.IsLeafList() {
			out = append(out, yaml.MapItem{Key: name, Value: v})
			if b.opts.tagged(n) {
				out = append(out, yaml.MapItem{Key: "@" + name, Value: defaultTag()})
			}
			continue
		}

		i, ok := index[n.Schema]
		if !ok {
			i = len(out)
			index[n.Schema] = i
			out = append(out, yaml.MapItem{Key: name, Value: []any{}})
		}
		out[i].Value = append(out[i].Value.([]any), v)

		if !n.Schema.IsLeafList() || b.opts.mode() != WithDefaultsReportAllTagged {
			continue
		}
		j, ok := tags[n.Schema]
		if !ok {
			j = len(out)
			tags[n.Schema] = j
			out = append(out, yaml.MapItem{Key: "@" + name, Value: []any{}})
		}
		var tag any
		if n.Default {
			tag = defaultTag()
		}
		out[j].Value = append(out[j].Value.([]any), tag)
	}

	return out, nil
}

func defaultTag() yaml.MapSlice {
	return yaml.MapSlice{{Key: WithDefaultsModule + ":default", Value: true}}
}

func (b *builder) value(n *Node) (any, error) {
	switch {
	case n.Schema.IsLeaf() || n.Schema.IsLeafList():
		return b.scalar(n)
	case n.Schema.Kind == yang.AnyDataEntry || n.Schema.Kind == yang.AnyXMLEntry:
		if !b.forYAML {
			return n.Raw, nil
		}
		var v any
		if err := yaml.UnmarshalWithOptions(n.Raw, &v, yaml.UseOrderedMap()); err != nil {
			return nil, err
		}
		return v, nil
	default:
		obj, err := b.object(b.opts.visible(n.Children), n.Module)
		if err != nil {
			return nil, err
		}
		if obj == nil {
			obj = yaml.MapSlice{}
		}
		return obj, nil
	}
}

// scalar encodes a leaf value, 64-bit numbers and decimal64 stay strings as RFC 7951 requires
func (b *builder) scalar(n *Node) (any, error) {
	switch n.kind {
	case yang.Yint8, yang.Yint16, yang.Yint32:
		return cast.ToInt64E(n.Value)
	case yang.Yuint8, yang.Yuint16, yang.Yuint32:
		return cast.ToUint64E(n.Value)
	case yang.Ybool:
		return cast.ToBoolE(n.Value)
	case yang.Yempty:
		return []any{nil}, nil
	default:
		return n.Value, nil
	}
}

// encodeJSON writes v compactly, keeping member order
func encodeJSON(buf *bytes.Buffer, v any) error {
	switch v := v.(type) {
	case yaml.MapSlice:
		buf.WriteByte('{')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(cast.ToString(item.Key))
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := encodeJSON(buf, item.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case json.RawMessage:
		return json.Compact(buf, v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}

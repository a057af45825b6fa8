// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package data

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/spf13/cast"
)

type jsonKind int

const (
	jsonObject jsonKind = iota
	jsonArray
	jsonString
	jsonNumber
	jsonBool
	jsonNull
)

func (k jsonKind) String() string {
	switch k {
	case jsonObject:
		return "object"
	case jsonArray:
		return "array"
	case jsonString:
		return "string"
	case jsonNumber:
		return "number"
	case jsonBool:
		return "boolean"
	default:
		return "null"
	}
}

type jsonMember struct {
	name  string
	value *jsonValue
}

// jsonValue is a decoded JSON value that keeps member order and the JSON type of scalars
type jsonValue struct {
	kind    jsonKind
	text    string
	members []jsonMember
	items   []*jsonValue
	raw     json.RawMessage
}

// isEmptyLeaf reports whether v is [null], the encoding of a leaf of type empty
func (v *jsonValue) isEmptyLeaf() bool {
	return v.kind == jsonArray && len(v.items) == 1 && v.items[0].kind == jsonNull
}

func decodeJSON(r io.Reader) (*jsonValue, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	// the decoder would replace invalid sequences with U+FFFD
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("invalid UTF-8 at offset %d", invalidUTF8(data))
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := readJSON(dec, data)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after the top-level value at offset %d", dec.InputOffset())
	}

	return v, nil
}

func readJSON(dec *json.Decoder, data []byte) (*jsonValue, error) {
	start := dec.InputOffset()

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			v := &jsonValue{kind: jsonObject}
			seen := map[string]bool{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected an object member name at offset %d", dec.InputOffset())
				}
				if seen[key] {
					return nil, fmt.Errorf("duplicate member %q at offset %d", key, dec.InputOffset())
				}
				seen[key] = true

				member, err := readJSON(dec, data)
				if err != nil {
					return nil, err
				}
				v.members = append(v.members, jsonMember{name: key, value: member})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			v.raw = rawSlice(data, start, dec.InputOffset())
			return v, nil
		case '[':
			v := &jsonValue{kind: jsonArray}
			for dec.More() {
				item, err := readJSON(dec, data)
				if err != nil {
					return nil, err
				}
				v.items = append(v.items, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			v.raw = rawSlice(data, start, dec.InputOffset())
			return v, nil
		default:
			return nil, fmt.Errorf("unexpected %q at offset %d", t.String(), dec.InputOffset())
		}
	case nil:
		return &jsonValue{kind: jsonNull, raw: json.RawMessage("null")}, nil
	}

	text, err := cast.ToStringE(tok)
	if err != nil {
		return nil, err
	}

	v := &jsonValue{text: text, raw: rawSlice(data, start, dec.InputOffset())}
	switch tok.(type) {
	case string:
		v.kind = jsonString
	case json.Number:
		v.kind = jsonNumber
	case bool:
		v.kind = jsonBool
	}
	return v, nil
}

// rawSlice returns the JSON text between two decoder offsets, skipping separators the decoder had not consumed yet
func rawSlice(data []byte, start, end int64) json.RawMessage {
	if start < 0 || end > int64(len(data)) || start >= end {
		return nil
	}
	b := data[start:end]
	for len(b) > 0 && (b[0] == ',' || b[0] == ':' || b[0] == ' ' || b[0] == '\n' || b[0] == '\t' || b[0] == '\r') {
		b = b[1:]
	}
	return json.RawMessage(b)
}

// invalidUTF8 returns the offset of the first byte of data that does not start a valid UTF-8 sequence
func invalidUTF8(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

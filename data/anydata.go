// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package data

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/openconfig/goyang/pkg/yang"
)

// anydata checks that the content v of anydata or anyxml node e can be printed in every output format
func (rd *reader) anydata(path string, e *yang.Entry, v *jsonValue) bool {
	if e.Kind == yang.AnyDataEntry && v.kind != jsonObject {
		rd.errs.append(path, "anydata %q must be encoded as an object, got %s", e.Name, v.kind)
		return false
	}

	before := rd.errs.len()
	rd.anyValue(path, v)
	return rd.errs.len() == before
}

func (rd *reader) anyValue(path string, v *jsonValue) {
	switch v.kind {
	case jsonObject:
		for _, m := range v.members {
			if strings.HasPrefix(m.name, "@") {
				continue
			}
			memberPath := path + "/" + m.name

			local := m.name
			if mod, name, ok := strings.Cut(m.name, ":"); ok {
				if rd.c.Namespace(mod) == "" {
					rd.errs.append(memberPath, "module %q is not in the schema context", mod)
					continue
				}
				local = name
			}
			if !isXMLName(local) {
				rd.errs.append(memberPath, "%q is not a valid element name", local)
				continue
			}

			rd.anyValue(memberPath, m.value)
		}
	case jsonArray:
		for _, item := range v.items {
			rd.anyValue(path, item)
		}
	case jsonString:
		if err := checkChars(v.text); err != nil {
			rd.errs.append(path, "invalid anydata value: %v", err)
		}
	}
}

// isXMLName reports whether name is usable as an unprefixed XML element name
func isXMLName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || r == '.' || unicode.IsDigit(r)):
		default:
			return false
		}
	}
	return true
}

// checkChars rejects characters outside the YANG character set (RFC 7950, section 9.4)
func checkChars(s string) error {
	for i, r := range s {
		if !isYANGChar(r) {
			return fmt.Errorf("character %U at byte %d is not allowed", r, i)
		}
	}
	return nil
}

func isYANGChar(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r < 0x20:
		return false
	case r >= 0xD800 && r <= 0xDFFF:
		return false
	case r >= 0xFDD0 && r <= 0xFDEF:
		return false
	case r&0xFFFE == 0xFFFE:
		return false
	}
	return r <= utf8.MaxRune
}

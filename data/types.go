// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package data

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/openconfig/goyang/pkg/yang"

	"github.com/defenseunicorns/yangcheck/schema"
)

// maxLeafrefDepth bounds leafref chains (a leafref pointing to a leafref ...)
const maxLeafrefDepth = 8

// scalar is a leaf value waiting to be validated
type scalar struct {
	kind jsonKind
	text string
	// lexical values come from the schema (defaults), JSON typing rules do not apply
	lexical bool
	// empty marks the [null] encoding of the empty type
	empty bool
}

// typer validates and canonicalizes leaf values
type typer struct {
	logger   *log.Logger
	patterns map[string]*regexp.Regexp
}

func newTyper(logger *log.Logger) *typer {
	return &typer{logger: logger, patterns: map[string]*regexp.Regexp{}}
}

// canonical validates s against t, returning the canonical value and the built-in type that accepted it
func (ty *typer) canonical(e *yang.Entry, t *yang.YangType, s scalar, depth int) (string, yang.TypeKind, error) {
	if t == nil {
		return "", yang.Ynone, errors.New("node has no type")
	}

	if s.empty && t.Kind != yang.Yempty && t.Kind != yang.Yunion && t.Kind != yang.Yleafref {
		return "", t.Kind, fmt.Errorf("[null] is only valid for the empty type, not %s", t.Name)
	}

	switch t.Kind {
	case yang.Yint8, yang.Yint16, yang.Yint32, yang.Yint64:
		if err := expect(s, jsonNumber, jsonString); err != nil {
			return "", t.Kind, err
		}
		i, err := strconv.ParseInt(s.text, 10, intBits(t.Kind))
		if err != nil {
			return "", t.Kind, fmt.Errorf("invalid %s value %q", t.Kind, s.text)
		}
		if !inRange(t.Range, yang.FromInt(i)) {
			return "", t.Kind, fmt.Errorf("value %d is out of range %s", i, t.Range)
		}
		return strconv.FormatInt(i, 10), t.Kind, nil

	case yang.Yuint8, yang.Yuint16, yang.Yuint32, yang.Yuint64:
		if err := expect(s, jsonNumber, jsonString); err != nil {
			return "", t.Kind, err
		}
		u, err := strconv.ParseUint(strings.TrimPrefix(s.text, "+"), 10, intBits(t.Kind))
		if err != nil {
			return "", t.Kind, fmt.Errorf("invalid %s value %q", t.Kind, s.text)
		}
		if !inRange(t.Range, yang.FromUint(u)) {
			return "", t.Kind, fmt.Errorf("value %d is out of range %s", u, t.Range)
		}
		return strconv.FormatUint(u, 10), t.Kind, nil

	case yang.Ydecimal64:
		if err := expect(s, jsonNumber, jsonString); err != nil {
			return "", t.Kind, err
		}
		n, err := yang.ParseDecimal(s.text, uint8(t.FractionDigits))
		if err != nil {
			return "", t.Kind, fmt.Errorf("invalid decimal64 value %q: %w", s.text, err)
		}
		if !inRange(t.Range, n) {
			return "", t.Kind, fmt.Errorf("value %s is out of range %s", s.text, t.Range)
		}
		return canonicalDecimal(s.text), t.Kind, nil

	case yang.Ystring:
		if err := expect(s, jsonString); err != nil {
			return "", t.Kind, err
		}
		if err := checkChars(s.text); err != nil {
			return "", t.Kind, err
		}
		if !inRange(t.Length, yang.FromUint(uint64(utf8.RuneCountInString(s.text)))) {
			return "", t.Kind, fmt.Errorf("length of %q is out of range %s", s.text, t.Length)
		}
		for _, p := range t.Pattern {
			re := ty.pattern(p)
			if re != nil && !re.MatchString(s.text) {
				return "", t.Kind, fmt.Errorf("%q does not match pattern %q", s.text, p)
			}
		}
		return s.text, t.Kind, nil

	case yang.Ybinary:
		if err := expect(s, jsonString); err != nil {
			return "", t.Kind, err
		}
		b, err := base64.StdEncoding.DecodeString(s.text)
		if err != nil {
			return "", t.Kind, fmt.Errorf("invalid base64 value: %w", err)
		}
		if !inRange(t.Length, yang.FromUint(uint64(len(b)))) {
			return "", t.Kind, fmt.Errorf("binary length %d is out of range %s", len(b), t.Length)
		}
		return base64.StdEncoding.EncodeToString(b), t.Kind, nil

	case yang.Ybool:
		if err := expect(s, jsonBool); err != nil {
			return "", t.Kind, err
		}
		if s.text != "true" && s.text != "false" {
			return "", t.Kind, fmt.Errorf("invalid boolean value %q", s.text)
		}
		return s.text, t.Kind, nil

	case yang.Yempty:
		if !s.empty {
			return "", t.Kind, errors.New("a leaf of type empty must be encoded as [null]")
		}
		return "", t.Kind, nil

	case yang.Yenum:
		if err := expect(s, jsonString); err != nil {
			return "", t.Kind, err
		}
		if t.Enum == nil || !t.Enum.IsDefined(s.text) {
			return "", t.Kind, fmt.Errorf("%q is not a valid enum value", s.text)
		}
		return s.text, t.Kind, nil

	case yang.Ybits:
		if err := expect(s, jsonString); err != nil {
			return "", t.Kind, err
		}
		return canonicalBits(t, s.text)

	case yang.Yidentityref:
		if err := expect(s, jsonString); err != nil {
			return "", t.Kind, err
		}
		v, err := identity(e, t, s)
		return v, t.Kind, err

	case yang.YinstanceIdentifier:
		if err := expect(s, jsonString); err != nil {
			return "", t.Kind, err
		}
		if !strings.HasPrefix(s.text, "/") {
			return "", t.Kind, fmt.Errorf("instance-identifier %q is not an absolute path", s.text)
		}
		if err := checkChars(s.text); err != nil {
			return "", t.Kind, err
		}
		return s.text, t.Kind, nil

	case yang.Yleafref:
		if depth >= maxLeafrefDepth {
			return "", t.Kind, fmt.Errorf("leafref chain is deeper than %d", maxLeafrefDepth)
		}
		target := leafrefTarget(e, t.Path)
		if target == nil {
			return "", t.Kind, fmt.Errorf("leafref path %q does not resolve to a leaf", t.Path)
		}
		return ty.canonical(target, target.Type, s, depth+1)

	case yang.Yunion:
		var errs []string
		for _, member := range t.Type {
			v, kind, err := ty.canonical(e, member, s, depth)
			if err == nil {
				return v, kind, nil
			}
			errs = append(errs, err.Error())
		}
		return "", t.Kind, fmt.Errorf("%q does not match any member of union %s (%s)", s.text, t.Name, strings.Join(errs, ", "))

	default:
		return "", t.Kind, fmt.Errorf("unsupported type %s", t.Kind)
	}
}

func (ty *typer) pattern(p string) *regexp.Regexp {
	if re, ok := ty.patterns[p]; ok {
		return re
	}
	// patterns RE2 cannot express are skipped rather than rejecting every value
	re, err := regexp.Compile("^(?:" + p + ")$")
	if err != nil {
		ty.logger.Debug("skipping pattern", "pattern", p, "err", err)
		re = nil
	}
	ty.patterns[p] = re
	return re
}

func expect(s scalar, kinds ...jsonKind) error {
	if s.lexical {
		return nil
	}
	if s.empty {
		return errors.New("[null] is only valid for the empty type")
	}
	if slices.Contains(kinds, s.kind) {
		return nil
	}
	return fmt.Errorf("expected a JSON %s, got %s", kinds[0], s.kind)
}

func intBits(kind yang.TypeKind) int {
	switch kind {
	case yang.Yint8, yang.Yuint8:
		return 8
	case yang.Yint16, yang.Yuint16:
		return 16
	case yang.Yint32, yang.Yuint32:
		return 32
	default:
		return 64
	}
}

func inRange(r yang.YangRange, n yang.Number) bool {
	if len(r) == 0 {
		return true
	}
	for _, yr := range r {
		if !n.Less(yr.Min) && !yr.Max.Less(n) {
			return true
		}
	}
	return false
}

// canonicalDecimal strips leading zeros of the integer part and trailing zeros of the fraction, keeping one digit on each side
func canonicalDecimal(s string) string {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimLeft(s, "+-")

	intPart, frac, _ := strings.Cut(s, ".")
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		frac = "0"
	}

	if neg && (intPart != "0" || frac != "0") {
		return "-" + intPart + "." + frac
	}
	return intPart + "." + frac
}

func canonicalBits(t *yang.YangType, text string) (string, yang.TypeKind, error) {
	names := strings.Fields(text)
	seen := map[string]bool{}
	for _, name := range names {
		if t.Bit == nil || !t.Bit.IsDefined(name) {
			return "", t.Kind, fmt.Errorf("%q is not a valid bit", name)
		}
		if seen[name] {
			return "", t.Kind, fmt.Errorf("bit %q is set more than once", name)
		}
		seen[name] = true
	}
	slices.SortFunc(names, func(a, b string) int {
		va, vb := t.Bit.Value(a), t.Bit.Value(b)
		switch {
		case va < vb:
			return -1
		case va > vb:
			return 1
		default:
			return 0
		}
	})
	return strings.Join(names, " "), t.Kind, nil
}

// identity resolves an identityref value to module:identity
//
// Instance values may omit the module only when the identity is defined in the leaf's own module,
// schema defaults carry a prefix that is matched by identity name only
func identity(e *yang.Entry, t *yang.YangType, s scalar) (string, error) {
	if t.IdentityBase == nil {
		return "", errors.New("identityref has no base")
	}

	qualifier, name, ok := strings.Cut(s.text, ":")
	if !ok {
		qualifier, name = "", s.text
	}

	for _, id := range derived(t.IdentityBase) {
		if id.Name != name {
			continue
		}
		mod := schema.ModuleName(id)
		switch {
		case s.lexical:
		case qualifier == "" && mod != schema.EntryModule(e):
			continue
		case qualifier != "" && qualifier != mod:
			continue
		}
		return mod + ":" + id.Name, nil
	}

	return "", fmt.Errorf("%q is not derived from identity %q", s.text, t.IdentityBase.Name)
}

// derived returns every identity derived from base, directly or not
func derived(base *yang.Identity) []*yang.Identity {
	var out []*yang.Identity
	seen := map[*yang.Identity]bool{}
	var walk func(*yang.Identity)
	walk = func(id *yang.Identity) {
		for _, v := range id.Values {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
			walk(v)
		}
	}
	walk(base)
	return out
}

// leafrefTarget resolves a leafref path on the schema tree, ignoring predicates and prefixes
func leafrefTarget(e *yang.Entry, path string) *yang.Entry {
	steps, absolute := splitPath(path)

	cur := e
	if absolute {
		root := e
		for root.Parent != nil {
			root = root.Parent
		}
		if len(steps) == 0 {
			return nil
		}
		cur = schema.FindDataChild(root, steps[0])
		if cur == nil {
			cur = findTopLevel(root, steps[0])
		}
		steps = steps[1:]
	}

	for _, step := range steps {
		if cur == nil {
			return nil
		}
		switch step {
		case ".":
		case "..":
			cur = schema.DataParent(cur)
		default:
			cur = schema.FindDataChild(cur, step)
		}
	}

	if cur == nil || !(cur.IsLeaf() || cur.IsLeafList()) {
		return nil
	}
	return cur
}

// findTopLevel looks for a top-level node in every module known to the module set of root
func findTopLevel(root *yang.Entry, name string) *yang.Entry {
	if root.Node == nil {
		return nil
	}
	m := yang.RootNode(root.Node)
	if m == nil || m.Modules == nil {
		return nil
	}
	for key, mod := range m.Modules.Modules {
		if strings.Contains(key, "@") {
			continue
		}
		if found := schema.FindDataChild(yang.ToEntry(mod), name); found != nil {
			return found
		}
	}
	return nil
}

// splitPath strips predicates and prefixes from a path expression and splits it into steps
func splitPath(path string) ([]string, bool) {
	var sb strings.Builder
	depth := 0
	for _, r := range path {
		switch {
		case r == '[':
			depth++
		case r == ']':
			depth--
		case depth == 0 && r != ' ' && r != '\t' && r != '\n':
			sb.WriteRune(r)
		}
	}

	stripped := sb.String()
	absolute := strings.HasPrefix(stripped, "/")

	var steps []string
	for _, part := range strings.Split(strings.Trim(stripped, "/"), "/") {
		if part == "" {
			continue
		}
		if _, local, ok := strings.Cut(part, ":"); ok {
			part = local
		}
		steps = append(steps, part)
	}
	return steps, absolute
}

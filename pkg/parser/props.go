package parser

import (
	"strings"

	verrors "github.com/van-dev/van/internal/errors"
)

// PropDef is one prop declaration from defineProps({ ... }).
type PropDef struct {
	// Name is the declared prop name.
	Name string

	// PropType is the declared type identifier (String, Number, ...), or
	// empty when none was given.
	PropType string

	// Required reports whether the object form carried required: true.
	Required bool
}

// ParseDefineProps locates a single defineProps({ ... }) call and parses the
// object literal. Each entry is either `name: Type` or
// `name: { type: Type, required: bool, default: ... }`; unknown keys are
// ignored. Duplicate prop names are an error.
func ParseDefineProps(script string) ([]PropDef, error) {
	start := strings.Index(script, "defineProps(")
	if start < 0 {
		return nil, nil
	}
	rest := script[start+len("defineProps("):]

	inner, ok := balancedBraces(rest)
	if !ok {
		return nil, nil
	}
	if strings.TrimSpace(inner) == "" {
		return nil, nil
	}

	var props []PropDef
	seen := make(map[string]bool)

	for _, entry := range splitTopLevel(inner) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		colon := strings.IndexByte(entry, ':')
		if colon < 0 {
			continue
		}
		name := strings.Trim(strings.TrimSpace(entry[:colon]), `'"`)
		value := strings.TrimSpace(entry[colon+1:])
		if seen[name] {
			return nil, verrors.New(verrors.CategoryParse, "duplicate prop name %q", name)
		}
		seen[name] = true

		if strings.HasPrefix(value, "{") {
			props = append(props, parsePropObject(name, value))
			continue
		}
		props = append(props, PropDef{Name: name, PropType: value})
	}

	return props, nil
}

// parsePropObject parses the `{ type: T, required: bool, ... }` form.
func parsePropObject(name, value string) PropDef {
	inner := strings.TrimSpace(value)
	inner = strings.TrimPrefix(inner, "{")
	inner = strings.TrimSuffix(inner, "}")

	def := PropDef{Name: name}
	for _, part := range splitTopLevel(inner) {
		part = strings.TrimSpace(part)
		colon := strings.IndexByte(part, ':')
		if colon < 0 {
			continue
		}
		key := strings.TrimSpace(part[:colon])
		val := strings.TrimSpace(part[colon+1:])
		switch key {
		case "type":
			def.PropType = val
		case "required":
			def.Required = val == "true"
		}
	}
	return def
}

// balancedBraces returns the content between the leading `{` and its
// matching `}`.
func balancedBraces(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return "", false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[1:i], true
			}
		}
	}
	return "", false
}

// splitTopLevel splits on commas outside nested { } blocks.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if tail := s[start:]; strings.TrimSpace(tail) != "" {
		parts = append(parts, tail)
	}
	return parts
}

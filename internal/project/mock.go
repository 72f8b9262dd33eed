package project

import (
	"encoding/json"
	"html"
	"strconv"
	"strings"

	verrors "github.com/van-dev/van/internal/errors"
)

// ParseMockJSON decodes a mock data document. The top level must be a JSON
// object.
func ParseMockJSON(s string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(s), &data); err != nil {
		return nil, verrors.Wrap(verrors.CategoryEnvelope, err, "parsing mock data")
	}
	return data, nil
}

// InterpolateMock fills {{ expr }} placeholders whose dotted path resolves
// to a scalar in data. Resolved values are HTML-escaped; the {{{ expr }}}
// form inserts the raw value. Unresolvable placeholders are preserved so
// client-side signals can still claim them. This pass runs on the host
// only; the compiler core never touches data.
func InterpolateMock(htmlSrc string, data map[string]any) string {
	if len(data) == 0 {
		return htmlSrc
	}

	var b strings.Builder
	b.Grow(len(htmlSrc))
	rest := htmlSrc
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			break
		}

		if strings.HasPrefix(rest[open:], "{{{") {
			closing := strings.Index(rest[open:], "}}}")
			if closing < 0 {
				break
			}
			expr := strings.TrimSpace(rest[open+3 : open+closing])
			end := open + closing + 3
			if value, ok := lookupScalar(data, expr); ok {
				b.WriteString(rest[:open])
				b.WriteString(value)
			} else {
				b.WriteString(rest[:end])
			}
			rest = rest[end:]
			continue
		}

		closing := strings.Index(rest[open:], "}}")
		if closing < 0 {
			break
		}
		expr := strings.TrimSpace(rest[open+2 : open+closing])
		end := open + closing + 2
		if value, ok := lookupScalar(data, expr); ok {
			b.WriteString(rest[:open])
			b.WriteString(html.EscapeString(value))
		} else {
			b.WriteString(rest[:end])
		}
		rest = rest[end:]
	}
	b.WriteString(rest)
	return b.String()
}

// lookupScalar resolves a dotted path like user.name or items.0.title to a
// formatted scalar. Objects, arrays, and missing keys report false.
func lookupScalar(data map[string]any, expr string) (string, bool) {
	if expr == "" {
		return "", false
	}
	var current any = data
	for _, part := range strings.Split(expr, ".") {
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[part]
			if !ok {
				return "", false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(v) {
				return "", false
			}
			current = v[idx]
		default:
			return "", false
		}
	}
	return formatScalar(current)
}

func formatScalar(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	case nil:
		return "", true
	default:
		return "", false
	}
}

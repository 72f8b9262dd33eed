// Package scope derives component scope ids and applies them to HTML
// fragments and CSS rules.
package scope

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// skipTags never receive a scope class: slot and template are virtual tags
// replaced during resolution, the rest are structural or head tags.
var skipTags = map[string]bool{
	"slot":     true,
	"template": true,
	"html":     true,
	"head":     true,
	"body":     true,
	"meta":     true,
	"link":     true,
	"title":    true,
	"script":   true,
	"style":    true,
	"base":     true,
	"noscript": true,
}

// Unscoped reports whether a tag is excluded from scope classes.
func Unscoped(tag string) bool {
	return skipTags[strings.ToLower(tag)]
}

// ID derives the scope id for a normalized component path: "v-" plus the
// first 8 hex digits of the path's xxhash64 (default seed). The hash choice
// is part of the output contract; identical paths yield identical ids across
// runs and platforms.
func ID(path string) string {
	return "v-" + Hash(path)
}

// Hash returns the first 8 hex digits of the xxhash64 of content. Used for
// asset file names.
func Hash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))[:8]
}

// AddClass merges id into the class attribute of every opening tag in the
// HTML fragment, creating the attribute when absent. Closing tags, comments,
// structural tags, and any tag named in componentTags are left untouched.
// The operation is idempotent: a tag already carrying id is not changed.
func AddClass(html, id string, componentTags ...string) string {
	var b strings.Builder
	b.Grow(len(html) + len(id)*10)
	rest := html

	for {
		lt := strings.Index(rest, "<")
		if lt < 0 {
			break
		}
		b.WriteString(rest[:lt])
		rest = rest[lt:]

		if strings.HasPrefix(rest, "</") || strings.HasPrefix(rest, "<!") {
			gt := strings.Index(rest, ">")
			if gt < 0 {
				b.WriteString(rest)
				return b.String()
			}
			b.WriteString(rest[:gt+1])
			rest = rest[gt+1:]
			continue
		}

		gt := strings.Index(rest, ">")
		if gt < 0 {
			b.WriteString(rest)
			return b.String()
		}

		name := tagNameAt(rest[1:gt])
		if skipTags[strings.ToLower(name)] || isComponentTag(name, componentTags) {
			b.WriteString(rest[:gt+1])
			rest = rest[gt+1:]
			continue
		}

		tag := rest[:gt]
		selfClosing := strings.HasSuffix(strings.TrimRight(tag, " \t\n"), "/")

		if classIdx := strings.Index(tag, `class="`); classIdx >= 0 {
			afterQuote := classIdx + len(`class="`)
			endQuote := strings.Index(tag[afterQuote:], `"`)
			if endQuote < 0 {
				b.WriteString(rest[:gt+1])
			} else if hasClassToken(tag[afterQuote:afterQuote+endQuote], id) {
				b.WriteString(rest[:gt+1])
			} else {
				insert := afterQuote + endQuote
				b.WriteString(rest[:insert])
				b.WriteByte(' ')
				b.WriteString(id)
				b.WriteString(rest[insert : gt+1])
			}
		} else if selfClosing {
			slash := strings.LastIndexByte(tag, '/')
			b.WriteString(rest[:slash])
			// <h1/> has no whitespace before the slash.
			if c := tag[slash-1]; c != ' ' && c != '\t' && c != '\n' && c != '\r' {
				b.WriteByte(' ')
			}
			b.WriteString(`class="`)
			b.WriteString(id)
			b.WriteString(`" `)
			b.WriteString(rest[slash : gt+1])
		} else {
			b.WriteString(rest[:gt])
			b.WriteString(` class="`)
			b.WriteString(id)
			b.WriteString(`">`)
		}

		rest = rest[gt+1:]
	}

	b.WriteString(rest)
	return b.String()
}

func tagNameAt(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' {
			continue
		}
		return s[:i]
	}
	return s
}

func isComponentTag(name string, tags []string) bool {
	for _, t := range tags {
		if strings.EqualFold(name, t) {
			return true
		}
	}
	return false
}

func hasClassToken(classes, id string) bool {
	for _, c := range strings.Fields(classes) {
		if c == id {
			return true
		}
	}
	return false
}

// CSS appends "."+id as a compound selector to the last simple selector of
// every rule. Selectors starting with :root, html, or body pass through
// unchanged; at-rules pass through, with media/supports/container bodies
// recursed into.
func CSS(css, id string) string {
	var b strings.Builder
	b.Grow(len(css) + len(id)*8)

	i := 0
	for i < len(css) {
		brace := strings.IndexByte(css[i:], '{')
		semi := strings.IndexByte(css[i:], ';')

		// Statement at-rules (@import, @charset) end at a semicolon before
		// any block opens.
		if semi >= 0 && (brace < 0 || semi < brace) && strings.HasPrefix(strings.TrimSpace(css[i:i+semi]), "@") {
			b.WriteString(css[i : i+semi+1])
			i += semi + 1
			continue
		}
		if brace < 0 {
			b.WriteString(css[i:])
			break
		}

		selector := css[i : i+brace]
		body, after, ok := balancedBlock(css, i+brace)
		if !ok {
			b.WriteString(css[i:])
			break
		}

		trimmed := strings.TrimSpace(selector)
		lead := selector[:len(selector)-len(strings.TrimLeft(selector, " \t\n\r"))]
		b.WriteString(lead)

		switch {
		case strings.HasPrefix(trimmed, "@"):
			b.WriteString(trimmed)
			b.WriteString(" {")
			if recursiveAtRule(trimmed) {
				b.WriteString(CSS(body, id))
			} else {
				b.WriteString(body)
			}
			b.WriteString("}")
		default:
			parts := strings.Split(trimmed, ",")
			for j, p := range parts {
				if j > 0 {
					b.WriteString(", ")
				}
				b.WriteString(scopeSelector(strings.TrimSpace(p), id))
			}
			b.WriteString(" {")
			b.WriteString(body)
			b.WriteString("}")
		}

		i = after
	}

	return b.String()
}

// balancedBlock reads the { } block starting at css[open] and returns its
// inner content and the index just past the closing brace.
func balancedBlock(css string, open int) (string, int, bool) {
	depth := 0
	for i := open; i < len(css); i++ {
		switch css[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return css[open+1 : i], i + 1, true
			}
		}
	}
	return "", 0, false
}

// recursiveAtRule reports whether the at-rule nests full rules that should
// themselves be scoped.
func recursiveAtRule(selector string) bool {
	for _, name := range []string{"@media", "@supports", "@container"} {
		if strings.HasPrefix(selector, name) {
			return true
		}
	}
	return false
}

// scopeSelector inserts "."+id before any pseudo-class or pseudo-element at
// the end of one selector: ".demo a:hover" becomes ".demo a.{id}:hover".
func scopeSelector(selector, id string) string {
	if selector == "" {
		return selector
	}
	if strings.HasPrefix(selector, ":root") || globalElement(selector) {
		return selector
	}

	lastStart := strings.LastIndexAny(selector, " >+~") + 1
	last := selector[lastStart:]

	if colon := pseudoStart(last); colon >= 0 {
		at := lastStart + colon
		return selector[:at] + "." + id + selector[at:]
	}
	return selector + "." + id
}

// pseudoStart returns the index of the first colon outside attribute
// brackets, or -1. A colon inside [href^="http:"] is attribute text, not a
// pseudo boundary.
func pseudoStart(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ':':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// globalElement reports whether the selector's first simple selector is the
// html or body element.
func globalElement(selector string) bool {
	for _, name := range []string{"html", "body"} {
		if selector == name {
			return true
		}
		if strings.HasPrefix(selector, name) {
			next := selector[len(name)]
			if next == ' ' || next == '>' || next == '+' || next == '~' || next == ':' || next == '.' || next == '[' {
				return true
			}
		}
	}
	return false
}

package parser

import (
	"strings"

	verrors "github.com/van-dev/van/internal/errors"
)

// VanBlock is the parsed representation of one component file. Absent blocks
// are empty strings.
type VanBlock struct {
	// Template is the HTML fragment from the <template> block.
	Template string

	// ScriptSetup is the client script from <script setup>.
	ScriptSetup string

	// ScriptServer is the server-side script from a <script> block without
	// the setup attribute. It is carried as text and never emitted.
	ScriptServer string

	// Style is the CSS from the <style> block.
	Style string

	// StyleScoped reports whether the style block carried the scoped
	// attribute.
	StyleScoped bool

	// Props are the defineProps declarations, in textual order.
	Props []PropDef

	// Imports are the .van component imports from the setup script.
	Imports []VanImport

	// ScriptImports are the non-.van imports from the setup script.
	ScriptImports []ScriptImport
}

// ParseBlocks extracts the template, script, and style blocks from a .van
// source file and parses the setup script's imports and props. An empty
// source yields an empty block. Unbalanced block tags and duplicate prop
// names are errors; other malformed input is tolerated.
func ParseBlocks(source string) (*VanBlock, error) {
	b := &VanBlock{}
	var haveTemplate, haveSetup, haveServer, haveStyle bool

	i := 0
	for i < len(source) {
		lt := strings.Index(source[i:], "<")
		if lt < 0 {
			break
		}
		i += lt
		rest := source[i:]

		// Top-level comments and directives are skipped whole.
		if strings.HasPrefix(rest, "<!--") {
			end := strings.Index(rest, "-->")
			if end < 0 {
				break
			}
			i += end + 3
			continue
		}
		if strings.HasPrefix(rest, "</") {
			name := tagName(rest[2:])
			if name == "template" || name == "script" || name == "style" {
				return nil, verrors.New(verrors.CategoryParse, "unbalanced closing tag </%s>", name)
			}
			gt := strings.Index(rest, ">")
			if gt < 0 {
				break
			}
			i += gt + 1
			continue
		}

		name := tagName(rest[1:])
		if name != "template" && name != "script" && name != "style" {
			gt := strings.Index(rest, ">")
			if gt < 0 {
				break
			}
			i += gt + 1
			continue
		}

		gt := strings.Index(rest, ">")
		if gt < 0 {
			break
		}
		attrs := rest[1+len(name) : gt]
		contentStart := gt + 1

		contentEnd, after, err := findBlockEnd(rest, contentStart, name)
		if err != nil {
			return nil, err
		}
		content := strings.TrimSpace(rest[contentStart:contentEnd])

		switch name {
		case "template":
			if !haveTemplate {
				b.Template = content
				haveTemplate = true
			}
		case "script":
			if hasAttr(attrs, "setup") {
				if !haveSetup {
					b.ScriptSetup = content
					haveSetup = true
				}
			} else {
				if !haveServer {
					b.ScriptServer = content
					haveServer = true
				}
			}
		case "style":
			if !haveStyle {
				b.Style = content
				b.StyleScoped = hasAttr(attrs, "scoped")
				haveStyle = true
			}
		}

		i += after
	}

	if b.ScriptSetup != "" {
		b.Imports = ParseImports(b.ScriptSetup)
		b.ScriptImports = ParseScriptImports(b.ScriptSetup)
		props, err := ParseDefineProps(b.ScriptSetup)
		if err != nil {
			return nil, err
		}
		b.Props = props
	}

	return b, nil
}

// findBlockEnd scans s from start for the closing tag matching an already
// consumed opener of the given name, tracking nested same-name tags. Inside
// template blocks, comments and CDATA sections are opaque. Returns the
// content end offset and the offset just past the closing tag.
func findBlockEnd(s string, start int, name string) (int, int, error) {
	open := "<" + name
	closing := "</" + name
	depth := 1

	j := start
	for j < len(s) {
		lt := strings.Index(s[j:], "<")
		if lt < 0 {
			break
		}
		j += lt
		r := s[j:]

		if name == "template" {
			if strings.HasPrefix(r, "<!--") {
				end := strings.Index(r, "-->")
				if end < 0 {
					break
				}
				j += end + 3
				continue
			}
			if strings.HasPrefix(r, "<![CDATA[") {
				end := strings.Index(r, "]]>")
				if end < 0 {
					break
				}
				j += end + 3
				continue
			}
		}

		if strings.HasPrefix(r, closing) && tagBoundary(r, len(closing)) {
			gt := strings.Index(r, ">")
			if gt < 0 {
				break
			}
			depth--
			if depth == 0 {
				return j, j + gt + 1, nil
			}
			j += gt + 1
			continue
		}
		if strings.HasPrefix(r, open) && tagBoundary(r, len(open)) {
			gt := strings.Index(r, ">")
			if gt < 0 {
				break
			}
			if !strings.HasSuffix(strings.TrimSpace(r[:gt]), "/") {
				depth++
			}
			j += gt + 1
			continue
		}
		j++
	}

	return 0, 0, verrors.New(verrors.CategoryParse, "missing closing </%s> tag", name)
}

// tagBoundary reports whether the byte at offset n in s terminates a tag
// name (whitespace, '>', '/', '#', or end of input).
func tagBoundary(s string, n int) bool {
	if n >= len(s) {
		return true
	}
	switch s[n] {
	case ' ', '\t', '\n', '\r', '>', '/', '#':
		return true
	}
	return false
}

// tagName returns the lower-cased tag name at the start of s.
func tagName(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' {
			continue
		}
		return strings.ToLower(s[:i])
	}
	return strings.ToLower(s)
}

// hasAttr reports whether the attribute string of an opening tag contains
// the named attribute, by presence only.
func hasAttr(attrs, name string) bool {
	for _, f := range strings.Fields(attrs) {
		f = strings.TrimSuffix(f, "/")
		if f == name {
			return true
		}
		if eq := strings.IndexByte(f, '='); eq >= 0 && f[:eq] == name {
			return true
		}
	}
	return false
}

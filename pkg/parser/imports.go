package parser

import (
	"regexp"
	"strings"
)

// VanImport is a component import from a setup script.
type VanImport struct {
	// PascalName is the imported identifier, e.g. DefaultLayout.
	PascalName string

	// KebabTag is the tag form of PascalName, e.g. default-layout.
	KebabTag string

	// Path is the importer-relative source path, e.g. ../layouts/default.van.
	Path string
}

// ScriptImport is a non-.van import preserved as raw text.
type ScriptImport struct {
	// Raw is the full import statement.
	Raw string

	// IsTypeOnly reports an `import type { ... }` statement.
	IsTypeOnly bool

	// Path is the module path.
	Path string
}

var (
	componentImportRe = regexp.MustCompile(`(?m)^[ \t]*import\s+(\w+)\s+from\s+['"]([^'"]+\.van)['"]`)
	scriptImportRe    = regexp.MustCompile(`(?m)^[ \t]*(import\s+(?:type\s+)?.*?\s+from\s+['"]([^'"]+\.(?:ts|js|tsx|jsx))['"].*)`)
	typeOnlyRe        = regexp.MustCompile(`^import\s+type\s`)
)

// ParseImports extracts `import X from './path.van'` statements from a setup
// script. X must begin with an upper-case ASCII letter; lower-case
// identifiers are reclassified as script imports. Both relative paths and
// scoped package paths (@scope/pkg/file.van) are accepted.
func ParseImports(script string) []VanImport {
	var imports []VanImport
	for _, m := range componentImportRe.FindAllStringSubmatch(script, -1) {
		name, path := m[1], m[2]
		if name[0] < 'A' || name[0] > 'Z' {
			continue
		}
		imports = append(imports, VanImport{
			PascalName: name,
			KebabTag:   pascalToKebab(name),
			Path:       path,
		})
	}
	return imports
}

// ParseScriptImports extracts non-.van imports (.ts/.js/.tsx/.jsx) from a
// setup script, plus any .van import whose identifier is not upper-case
// initial. Bare module specifiers are skipped.
func ParseScriptImports(script string) []ScriptImport {
	var imports []ScriptImport
	for _, m := range scriptImportRe.FindAllStringSubmatch(script, -1) {
		raw := strings.TrimSpace(m[1])
		imports = append(imports, ScriptImport{
			Raw:        raw,
			IsTypeOnly: typeOnlyRe.MatchString(raw),
			Path:       m[2],
		})
	}
	for _, m := range componentImportRe.FindAllStringSubmatch(script, -1) {
		name := m[1]
		if name[0] >= 'A' && name[0] <= 'Z' {
			continue
		}
		raw := strings.TrimSpace(m[0])
		imports = append(imports, ScriptImport{Raw: raw, Path: m[2]})
	}
	return imports
}

// pascalToKebab converts DefaultLayout to default-layout. A dash is inserted
// before every upper-case letter except the first.
func pascalToKebab(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, ch := range s {
		if ch >= 'A' && ch <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(ch + ('a' - 'A'))
		} else {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

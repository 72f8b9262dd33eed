package compiler

import (
	"regexp"
	"strings"

	verrors "github.com/van-dev/van/internal/errors"
	"github.com/van-dev/van/pkg/parser"
	"github.com/van-dev/van/pkg/scope"
)

// Options configures rendering and document assembly.
type Options struct {
	// AssetPrefix enables separated-assets mode: CSS and JS are returned as
	// named assets and linked from the document using this URL prefix.
	AssetPrefix string

	// Debug adds HTML comments at component and slot boundaries.
	Debug bool

	// FileOrigins maps file paths to labels shown in debug comments.
	FileOrigins map[string]string
}

// SignalModule pairs a component's setup script with the rendered fragment
// of its first instance, for signal generation.
type SignalModule struct {
	// Path is the component's normalized path.
	Path string

	// ScopeID labels the component's root elements in the output.
	ScopeID string

	// ScriptSetup is the component's client script.
	ScriptSetup string

	// Fragment is the component's rendered HTML, slots included.
	Fragment string

	// Imports are the setup script's non-.van module imports.
	Imports []parser.ScriptImport
}

// RenderPage renders the entry component of a resolved graph. It returns the
// body HTML, the collected component styles in first-render order, and one
// signal module per component with a setup script.
func RenderPage(g *Graph, opts Options) (string, []string, []*SignalModule, error) {
	r := &pageRenderer{
		graph:      g,
		opts:       opts,
		styleSeen:  make(map[string]bool),
		moduleSeen: make(map[string]bool),
	}
	html, err := r.renderComponent(g.Entry, nil, nil)
	if err != nil {
		return "", nil, nil, err
	}
	return html, r.styles, r.modules, nil
}

type pageRenderer struct {
	graph      *Graph
	opts       Options
	styles     []string
	styleSeen  map[string]bool
	modules    []*SignalModule
	moduleSeen map[string]bool
}

// propBinding is one attribute on a component tag: a dynamic expression
// (:name / v-bind:name) or a static literal.
type propBinding struct {
	Expr    string
	Dynamic bool
}

// renderComponent renders one component instance: scope classes, prop
// substitution, component expansion, then distribution of the caller's slot
// content. Styles and signal modules are collected on first render.
func (r *pageRenderer) renderComponent(path string, bindings map[string]propBinding, slots map[string]string) (string, error) {
	block := r.graph.Components[path]

	template := block.Template
	if template == "" {
		template = "<p>No template block found.</p>"
	}
	template = stripClientDirectives(template)

	id := scope.ID(path)
	if block.StyleScoped || block.ScriptSetup != "" {
		template = scope.AddClass(template, id, kebabTags(block)...)
	}

	template = substituteProps(template, block, bindings)

	html, err := r.expandComponents(template, path, block)
	if err != nil {
		return "", err
	}

	html = distributeSlots(html, slots, r.opts.Debug)

	if block.Style != "" && !r.styleSeen[path] {
		r.styleSeen[path] = true
		if block.StyleScoped {
			r.styles = append(r.styles, scope.CSS(block.Style, id))
		} else {
			r.styles = append(r.styles, block.Style)
		}
	}

	if block.ScriptSetup != "" && !r.moduleSeen[path] {
		r.moduleSeen[path] = true
		r.modules = append(r.modules, &SignalModule{
			Path:        path,
			ScopeID:     id,
			ScriptSetup: block.ScriptSetup,
			Fragment:    html,
			Imports:     block.ScriptImports,
		})
	}

	return html, nil
}

// maxExpansions bounds one fragment's component expansions. A callee whose
// template literally contains its caller's imported tag would otherwise be
// re-matched and re-expanded forever.
const maxExpansions = 1000

// expandComponents repeatedly replaces the earliest component tag in the
// fragment with its rendered content until none remain. The owner's imports
// decide which tags are components.
func (r *pageRenderer) expandComponents(fragment, ownerPath string, ownerBlock *parser.VanBlock) (string, error) {
	for n := 0; ; n++ {
		tag := findComponentTag(fragment, ownerBlock.Imports)
		if tag == nil {
			return fragment, nil
		}
		if n >= maxExpansions {
			return "", verrors.New(verrors.CategoryResolve, "component expansion limit of %d exceeded, <%s> keeps reappearing", maxExpansions, tag.imp.KebabTag).
				WithPath(ownerPath)
		}

		childPath := ResolvePath(ownerPath, tag.imp.Path)
		childBlock := r.graph.Components[childPath]
		bindings := parseBindings(tag.attrs)

		for _, p := range childBlock.Props {
			if p.Required {
				if _, ok := bindings[p.Name]; !ok {
					return "", verrors.New(verrors.CategoryProps, "missing required prop %q for component %s", p.Name, childPath).
						WithImporter(ownerPath)
				}
			}
		}

		slots, err := r.parseSlots(tag.children, ownerPath, ownerBlock)
		if err != nil {
			return "", err
		}

		childHTML, err := r.renderComponent(childPath, bindings, slots)
		if err != nil {
			return "", err
		}

		if r.opts.Debug {
			label := childPath
			if origin := r.opts.FileOrigins[childPath]; origin != "" {
				label += " (" + origin + ")"
			}
			childHTML = "<!-- [Component " + tag.imp.PascalName + "] " + label + " -->" +
				childHTML +
				"<!-- [/Component " + tag.imp.PascalName + "] -->"
		}

		fragment = fragment[:tag.start] + childHTML + fragment[tag.end:]
	}
}

// tagMatch locates one component tag occurrence in a fragment.
type tagMatch struct {
	imp      parser.VanImport
	attrs    string
	children string
	start    int
	end      int
}

// findComponentTag returns the earliest component tag in the fragment, or
// nil. Scanning by position keeps expansion order deterministic.
func findComponentTag(fragment string, imports []parser.VanImport) *tagMatch {
	var best *tagMatch
	for _, imp := range imports {
		if m := extractComponentTag(fragment, imp); m != nil {
			if best == nil || m.start < best.start {
				best = m
			}
		}
	}
	return best
}

// extractComponentTag finds the first self-closing or paired occurrence of
// the import's kebab tag. The character after the tag name must terminate it
// (whitespace, /, or >), so hello does not match hello-card.
func extractComponentTag(fragment string, imp parser.VanImport) *tagMatch {
	open := "<" + imp.KebabTag
	from := 0
	for {
		idx := strings.Index(fragment[from:], open)
		if idx < 0 {
			return nil
		}
		start := from + idx
		after := start + len(open)
		if after < len(fragment) {
			switch fragment[after] {
			case ' ', '\t', '\n', '\r', '/', '>':
			default:
				from = after
				continue
			}
		}

		rest := fragment[start:]
		gt := strings.Index(rest, ">")
		if gt < 0 {
			return nil
		}

		if strings.HasSuffix(strings.TrimRight(rest[:gt], " \t\n"), "/") {
			attrs := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest[len(open):gt]), "/"))
			return &tagMatch{
				imp:   imp,
				attrs: attrs,
				start: start,
				end:   start + gt + 1,
			}
		}

		contentStart := start + gt + 1
		closePos := findMatchingClose(fragment[contentStart:], imp.KebabTag)
		if closePos < 0 {
			return nil
		}
		closeTag := "</" + imp.KebabTag + ">"
		return &tagMatch{
			imp:      imp,
			attrs:    strings.TrimSpace(rest[len(open):gt]),
			children: fragment[contentStart : contentStart+closePos],
			start:    start,
			end:      contentStart + closePos + len(closeTag),
		}
	}
}

// findMatchingClose returns the offset of the closing tag matching an
// already consumed opener, tracking nested same-name tags.
func findMatchingClose(html, tagName string) int {
	open := "<" + tagName
	closing := "</" + tagName + ">"
	depth := 0
	pos := 0
	for pos < len(html) {
		if strings.HasPrefix(html[pos:], closing) {
			if depth == 0 {
				return pos
			}
			depth--
			pos += len(closing)
			continue
		}
		if strings.HasPrefix(html[pos:], open) {
			after := pos + len(open)
			if after < len(html) {
				switch html[after] {
				case ' ', '\t', '\n', '>', '/':
					if !selfClosingAt(html, pos) {
						depth++
					}
				}
			}
			pos += len(open)
			continue
		}
		pos++
	}
	return -1
}

func selfClosingAt(html string, pos int) bool {
	gt := strings.Index(html[pos:], ">")
	if gt < 0 {
		return false
	}
	return strings.HasSuffix(strings.TrimRight(html[pos:pos+gt], " \t\n"), "/")
}

// parseBindings splits a component tag's attribute text into prop bindings.
// :name and v-bind:name values are dynamic expressions; plain attributes are
// static literals; directives are not props.
func parseBindings(attrs string) map[string]propBinding {
	bindings := make(map[string]propBinding)
	i := 0
	for i < len(attrs) {
		for i < len(attrs) && isSpace(attrs[i]) {
			i++
		}
		if i >= len(attrs) {
			break
		}
		nameStart := i
		for i < len(attrs) && attrs[i] != '=' && !isSpace(attrs[i]) {
			i++
		}
		name := attrs[nameStart:i]

		value := ""
		hasValue := false
		if i < len(attrs) && attrs[i] == '=' {
			i++
			if i < len(attrs) && (attrs[i] == '"' || attrs[i] == '\'') {
				q := attrs[i]
				i++
				valueStart := i
				for i < len(attrs) && attrs[i] != q {
					i++
				}
				value = attrs[valueStart:i]
				if i < len(attrs) {
					i++
				}
			} else {
				valueStart := i
				for i < len(attrs) && !isSpace(attrs[i]) {
					i++
				}
				value = attrs[valueStart:i]
			}
			hasValue = true
		}

		switch {
		case strings.HasPrefix(name, ":"):
			bindings[name[1:]] = propBinding{Expr: value, Dynamic: true}
		case strings.HasPrefix(name, "v-bind:"):
			bindings[name[len("v-bind:"):]] = propBinding{Expr: value, Dynamic: true}
		case strings.HasPrefix(name, "@"), strings.HasPrefix(name, "v-"):
			// directive, not a prop
		case name != "" && hasValue:
			bindings[name] = propBinding{Expr: value}
		}
	}
	return bindings
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// substituteProps replaces {{ name }} occurrences whose name is a declared,
// bound prop: dynamic bindings become the caller's expression wrapped in
// {{ }}, static bindings become the literal. Everything else is preserved
// byte for byte.
func substituteProps(template string, block *parser.VanBlock, bindings map[string]propBinding) string {
	if len(block.Props) == 0 || len(bindings) == 0 {
		return template
	}
	declared := make(map[string]bool, len(block.Props))
	for _, p := range block.Props {
		declared[p.Name] = true
	}

	var b strings.Builder
	b.Grow(len(template))
	rest := template
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			break
		}
		closeRel := strings.Index(rest[open+2:], "}}")
		if closeRel < 0 {
			break
		}
		end := open + 2 + closeRel + 2
		expr := strings.TrimSpace(rest[open+2 : open+2+closeRel])

		if declared[expr] {
			if bind, ok := bindings[expr]; ok {
				b.WriteString(rest[:open])
				if bind.Dynamic {
					b.WriteString("{{ ")
					b.WriteString(bind.Expr)
					b.WriteString(" }}")
				} else {
					b.WriteString(bind.Expr)
				}
				rest = rest[end:]
				continue
			}
		}
		b.WriteString(rest[:end])
		rest = rest[end:]
	}
	b.WriteString(rest)
	return b.String()
}

var namedSlotTemplateRe = regexp.MustCompile(`<template\s+(?:#|v-slot:)(\w+)\s*>`)

// parseSlots partitions a component tag's children into named slot blocks
// and default content. Component tags inside the default content are
// expanded in the caller's import context.
func (r *pageRenderer) parseSlots(children, ownerPath string, ownerBlock *parser.VanBlock) (map[string]string, error) {
	slots := make(map[string]string)
	var defaultParts []string
	rest := children

	for {
		loc := namedSlotTemplateRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			if t := strings.TrimSpace(rest); t != "" {
				defaultParts = append(defaultParts, t)
			}
			break
		}
		name := rest[loc[2]:loc[3]]
		if before := strings.TrimSpace(rest[:loc[0]]); before != "" {
			defaultParts = append(defaultParts, before)
		}
		after := rest[loc[1]:]
		if pos := strings.Index(after, "</template>"); pos >= 0 {
			slots[name] = strings.TrimSpace(after[:pos])
			rest = after[pos+len("</template>"):]
		} else {
			slots[name] = strings.TrimSpace(after)
			rest = ""
		}
	}

	if len(defaultParts) > 0 {
		content, err := r.expandComponents(strings.Join(defaultParts, "\n"), ownerPath, ownerBlock)
		if err != nil {
			return nil, err
		}
		slots["default"] = content
	}

	return slots, nil
}

var (
	namedSlotFallbackRe = regexp.MustCompile(`(?s)<slot\s+name="(\w+)"\s*>(.*?)</slot>`)
	namedSlotSelfRe     = regexp.MustCompile(`<slot\s+name="(\w+)"\s*/>`)
	defaultSlotSelfRe   = regexp.MustCompile(`<slot\s*/>`)
	defaultSlotRe       = regexp.MustCompile(`(?s)<slot\s*>(.*?)</slot>`)
)

// distributeSlots replaces <slot> elements in a rendered component with the
// caller's slot content, falling back to the slot's own children when the
// caller provided none.
func distributeSlots(html string, slots map[string]string, debug bool) string {
	out := namedSlotFallbackRe.ReplaceAllStringFunc(html, func(m string) string {
		sub := namedSlotFallbackRe.FindStringSubmatch(m)
		content, provided := slots[sub[1]]
		if !provided {
			content = strings.TrimSpace(sub[2])
		}
		return slotBoundary(sub[1], content, debug && provided)
	})
	out = namedSlotSelfRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := namedSlotSelfRe.FindStringSubmatch(m)
		content, provided := slots[sub[1]]
		return slotBoundary(sub[1], content, debug && provided)
	})
	out = defaultSlotSelfRe.ReplaceAllStringFunc(out, func(string) string {
		content, provided := slots["default"]
		return slotBoundary("default", content, debug && provided)
	})
	out = defaultSlotRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := defaultSlotRe.FindStringSubmatch(m)
		content, provided := slots["default"]
		if !provided {
			content = strings.TrimSpace(sub[1])
		}
		return slotBoundary("default", content, debug && provided)
	})
	return out
}

func slotBoundary(name, content string, debug bool) string {
	if !debug {
		return content
	}
	return "<!-- [slot " + name + "] -->" + content + "<!-- [/slot " + name + "] -->"
}

var (
	transitionOpenRe  = regexp.MustCompile(`(?i)<transition(\s[^>]*)?>`)
	transitionCloseRe = regexp.MustCompile(`(?i)</transition\s*>`)
	vElseIfAttrRe     = regexp.MustCompile(`\s+v-else-if="[^"]*"`)
	vElseAttrRe       = regexp.MustCompile(`\s+v-else([\s/>])`)
)

// stripClientDirectives removes template constructs that have no server
// rendering: <transition> wrappers vanish leaving their children in place
// (so they never take a scope class or a DOM path slot), and v-else /
// v-else-if attributes are dropped from output markup.
func stripClientDirectives(template string) string {
	template = transitionOpenRe.ReplaceAllString(template, "")
	template = transitionCloseRe.ReplaceAllString(template, "")
	template = vElseIfAttrRe.ReplaceAllString(template, "")
	template = vElseAttrRe.ReplaceAllString(template, "$1")
	return template
}

// kebabTags lists the component tag names of a block's imports, for
// exclusion from scope-class application.
func kebabTags(block *parser.VanBlock) []string {
	tags := make([]string, len(block.Imports))
	for i, imp := range block.Imports {
		tags[i] = imp.KebabTag
	}
	return tags
}

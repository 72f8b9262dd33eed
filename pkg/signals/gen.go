package signals

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Module is a non-.van script import resolved by the compiler, inlined
// ahead of the component code so its declarations are in scope.
type Module struct {
	Path   string
	Source string
}

// Input describes one component's client wiring job.
type Input struct {
	// ScopeID is the scope class shared by every element of the fragment.
	ScopeID string
	// Script is the raw <script setup> content.
	Script string
	// Fragment is the component's final rendered HTML.
	Fragment string
	// Modules are the resolved .ts/.js imports, in import order.
	Modules []Module
}

var importLineRe = regexp.MustCompile(`(?m)^[ \t]*import\s+.*$\n?`)

// Generate emits the component's client script: an IIFE that locates each
// instance root by scope class, creates its signals, and wires every
// template binding through effects. Returns "" when the script declares no
// reactive state.
func Generate(in Input) (string, error) {
	a, err := Analyze(in.Script)
	if err != nil {
		return "", err
	}
	if len(a.Signals) == 0 && len(a.Computeds) == 0 {
		return "", nil
	}

	reactive := a.ReactiveNames()
	walked, rootCount := Walk(in.Fragment, in.ScopeID)
	bindings := filterBindings(walked, a, reactive)
	if rootCount == 0 {
		rootCount = 1
	}

	var b strings.Builder
	b.WriteString("(function() {\n")
	b.WriteString("  var V = Van;\n")

	for _, m := range in.Modules {
		b.WriteString("  // " + m.Path + "\n")
		b.WriteString(indentLines(inlineModule(m.Source), "  "))
	}

	// Instance roots: classed elements with no classed ancestor, grouped
	// per instance when the template has several top-level roots. The
	// grouping mirrors the walker's root numbering.
	fmt.Fprintf(&b, "  var _list = document.querySelectorAll('.%s');\n", in.ScopeID)
	b.WriteString("  var _roots = [];\n")
	b.WriteString("  for (var _i = 0; _i < _list.length; _i++) {\n")
	fmt.Fprintf(&b, "    if (!_list[_i].parentElement || !_list[_i].parentElement.closest('.%s')) _roots.push(_list[_i]);\n", in.ScopeID)
	b.WriteString("  }\n")
	b.WriteString("  var _groups = [];\n")
	fmt.Fprintf(&b, "  for (var _n = 0; _n + %d <= _roots.length; _n += %d) _groups.push(_roots.slice(_n, _n + %d));\n", rootCount, rootCount, rootCount)
	b.WriteString("  _groups.forEach(function(_g) {\n")

	for _, s := range a.Signals {
		init := s.Initial
		if init == "" {
			init = "undefined"
		}
		fmt.Fprintf(&b, "    var %s = V.signal(%s);\n", s.Name, init)
	}
	for _, c := range a.Computeds {
		body := transformExpr(c.Body, reactive)
		if c.Block {
			fmt.Fprintf(&b, "    var %s = V.computed(function() { %s });\n", c.Name, body)
		} else {
			fmt.Fprintf(&b, "    var %s = V.computed(function() { return %s; });\n", c.Name, body)
		}
	}
	for _, f := range a.Functions {
		fmt.Fprintf(&b, "    function %s(%s) { %s }\n", f.Name, f.Params, transformExpr(f.Body, reactive))
	}

	vars := emitPathVars(&b, bindings)
	emitBindings(&b, bindings, a, reactive, vars)

	for _, w := range a.Watches {
		if !isIdent(w.Source) || !containsName(reactive, w.Source) {
			continue
		}
		fmt.Fprintf(&b, "    V.watch(%s, function(%s) { %s });\n", w.Source, w.Params, transformExpr(w.Body, reactive))
	}

	b.WriteString("  });\n")
	b.WriteString("})();\n")
	return b.String(), nil
}

// filterBindings drops bindings whose expression cannot be wired: effects
// must reference reactive state, events must reach a declared function or
// reactive state, and v-model targets must be signals.
func filterBindings(bindings []Binding, a *Analysis, reactive []string) []Binding {
	out := bindings[:0]
	for _, bd := range bindings {
		switch bd.Kind {
		case BindEvent:
			name := strings.TrimSuffix(strings.TrimSpace(bd.Expr), "()")
			if a.HasFunction(name) || isReactive(bd.Expr, reactive) {
				out = append(out, bd)
			}
		case BindTemplate:
			if templateIsReactive(bd.Expr, reactive) {
				out = append(out, bd)
			}
		case BindModel:
			if isIdent(strings.TrimSpace(bd.Expr)) && containsName(reactive, strings.TrimSpace(bd.Expr)) {
				out = append(out, bd)
			}
		default:
			if isReactive(bd.Expr, reactive) {
				out = append(out, bd)
			}
		}
	}
	return out
}

// emitPathVars declares one root var per referenced scope root and one
// element var per distinct binding path, walking children from the root.
// Returns the var name per root-and-path key.
func emitPathVars(b *strings.Builder, bindings []Binding) map[string]string {
	vars := map[string]string{}

	rootSeen := map[int]bool{}
	var rootOrder []int
	for _, bd := range bindings {
		if !rootSeen[bd.Root] {
			rootSeen[bd.Root] = true
			rootOrder = append(rootOrder, bd.Root)
		}
	}
	sort.Ints(rootOrder)
	for _, r := range rootOrder {
		name := fmt.Sprintf("_r%d", r)
		fmt.Fprintf(b, "    var %s = _g[%d];\n", name, r)
		vars[elemKey(r, nil)] = name
	}

	type elemRef struct {
		root int
		path []int
	}
	need := map[string]elemRef{}
	for _, bd := range bindings {
		// Every ancestor prefix is needed to reach the node.
		for i := 1; i <= len(bd.Path); i++ {
			p := bd.Path[:i]
			need[elemKey(bd.Root, p)] = elemRef{root: bd.Root, path: clonePath(p)}
		}
	}

	keys := make([]string, 0, len(need))
	for k := range need {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, c := need[keys[i]], need[keys[j]]
		if a.root != c.root {
			return a.root < c.root
		}
		return pathLess(a.path, c.path)
	})

	for i, k := range keys {
		ref := need[k]
		parent := vars[elemKey(ref.root, ref.path[:len(ref.path)-1])]
		name := fmt.Sprintf("_e%d", i)
		fmt.Fprintf(b, "    var %s = %s.children[%d];\n", name, parent, ref.path[len(ref.path)-1])
		vars[k] = name
	}
	return vars
}

func elemKey(root int, p []int) string {
	return fmt.Sprintf("%d/%s", root, pathKey(p))
}

func emitBindings(b *strings.Builder, bindings []Binding, a *Analysis, reactive []string, vars map[string]string) {
	// Listeners first so effects observe a fully wired node.
	for _, bd := range bindings {
		if bd.Kind != BindEvent {
			continue
		}
		el := vars[elemKey(bd.Root, bd.Path)]
		handler := strings.TrimSpace(bd.Expr)
		name := strings.TrimSuffix(handler, "()")
		if isIdent(name) && a.HasFunction(name) {
			fmt.Fprintf(b, "    %s.addEventListener('%s', %s);\n", el, bd.Name, name)
			continue
		}
		fmt.Fprintf(b, "    %s.addEventListener('%s', function($event) { %s; });\n", el, bd.Name, transformExpr(handler, reactive))
	}

	for _, bd := range bindings {
		el := vars[elemKey(bd.Root, bd.Path)]
		switch bd.Kind {
		case BindTemplate:
			fmt.Fprintf(b, "    V.effect(function() { %s.textContent = %s; });\n", el, templateToJSExpr(bd.Expr, reactive))
		case BindText:
			fmt.Fprintf(b, "    V.effect(function() { %s.textContent = %s; });\n", el, transformExpr(bd.Expr, reactive))
		case BindShow, BindIf:
			fmt.Fprintf(b, "    V.effect(function() { %s.style.display = (%s) ? '' : 'none'; });\n", el, transformExpr(bd.Expr, reactive))
		case BindHTML:
			fmt.Fprintf(b, "    V.effect(function() { %s.innerHTML = %s; });\n", el, transformExpr(bd.Expr, reactive))
		case BindClass:
			emitClassBinding(b, el, bd.Expr, reactive)
		case BindStyle:
			emitStyleBinding(b, el, bd.Expr, reactive)
		case BindModel:
			name := strings.TrimSpace(bd.Expr)
			fmt.Fprintf(b, "    V.effect(function() { %s.value = %s.value; });\n", el, name)
			fmt.Fprintf(b, "    %s.addEventListener('input', function($event) { %s.value = $event.target.value; });\n", el, name)
		case BindAttr:
			fmt.Fprintf(b, "    V.effect(function() { %s.setAttribute('%s', %s); });\n", el, bd.Name, transformExpr(bd.Expr, reactive))
		}
	}
}

// emitClassBinding handles object and array :class forms. Each object entry
// becomes a classList.toggle effect so static classes survive.
func emitClassBinding(b *strings.Builder, el, expr string, reactive []string) {
	expr = strings.TrimSpace(expr)
	switch {
	case strings.HasPrefix(expr, "{"):
		for _, e := range parseObjectEntries(expr) {
			fmt.Fprintf(b, "    V.effect(function() { %s.classList.toggle('%s', !!(%s)); });\n", el, e.key, transformExpr(e.value, reactive))
		}
	case strings.HasPrefix(expr, "["):
		end := matchingDelim(expr, 0, '[', ']')
		if end < 0 {
			return
		}
		for _, item := range splitArgs(expr[1:end]) {
			item = strings.TrimSpace(item)
			if name, ok := unquote(item); ok {
				fmt.Fprintf(b, "    %s.classList.add('%s');\n", el, name)
				continue
			}
			if strings.HasPrefix(item, "{") {
				for _, e := range parseObjectEntries(item) {
					fmt.Fprintf(b, "    V.effect(function() { %s.classList.toggle('%s', !!(%s)); });\n", el, e.key, transformExpr(e.value, reactive))
				}
			}
		}
	}
}

func emitStyleBinding(b *strings.Builder, el, expr string, reactive []string) {
	expr = strings.TrimSpace(expr)
	if !strings.HasPrefix(expr, "{") {
		return
	}
	for _, e := range parseObjectEntries(expr) {
		if isIdent(e.key) {
			fmt.Fprintf(b, "    V.effect(function() { %s.style.%s = %s; });\n", el, e.key, transformExpr(e.value, reactive))
		} else {
			fmt.Fprintf(b, "    V.effect(function() { %s.style['%s'] = %s; });\n", el, e.key, transformExpr(e.value, reactive))
		}
	}
}

type objectEntry struct {
	key   string
	value string
}

// parseObjectEntries splits `{ key: value, 'k-2': v2 }` at the top level.
func parseObjectEntries(expr string) []objectEntry {
	end := matchingDelim(expr, 0, '{', '}')
	if end < 0 {
		return nil
	}
	var entries []objectEntry
	for _, part := range splitArgs(expr[1:end]) {
		colon := topLevelColon(part)
		if colon < 0 {
			continue
		}
		key := strings.TrimSpace(part[:colon])
		if q, ok := unquote(key); ok {
			key = q
		}
		if key == "" {
			continue
		}
		entries = append(entries, objectEntry{key: key, value: strings.TrimSpace(part[colon+1:])})
	}
	return entries
}

// topLevelColon finds the key separator, skipping ternaries inside values by
// taking the first colon outside brackets and strings.
func topLevelColon(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'' || c == '"':
			q := c
			i++
			for i < len(s) && s[i] != q {
				if s[i] == '\\' {
					i++
				}
				i++
			}
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == ':' && depth == 0:
			return i
		}
	}
	return -1
}

func unquote(s string) (string, bool) {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1], true
	}
	return "", false
}

// transformExpr rewrites bare reactive names to .value accesses. Existing
// .value accesses are preserved, and property accesses like obj.count are
// left alone.
func transformExpr(expr string, reactive []string) string {
	// The marker holds the place of accesses that are already .value so the
	// bare-name pass cannot double-wrap them.
	const keep = "\x00\x01\x00"
	for _, name := range reactive {
		expr = replaceWord(expr, name+".value", keep)
		expr = replaceWord(expr, name, name+".value")
		expr = strings.ReplaceAll(expr, keep, name+".value")
	}
	return expr
}

// replaceWord replaces whole-word occurrences of old: the match must not be
// preceded by an identifier character or a dot, nor followed by an
// identifier character.
func replaceWord(s, old, new string) string {
	var sb strings.Builder
	i := 0
	for i < len(s) {
		j := strings.Index(s[i:], old)
		if j < 0 {
			sb.WriteString(s[i:])
			break
		}
		at := i + j
		end := at + len(old)
		prevOK := at == 0 || (!isIdentChar(s[at-1]) && s[at-1] != '.')
		nextOK := end >= len(s) || !isIdentChar(s[end])
		sb.WriteString(s[i:at])
		if prevOK && nextOK {
			sb.WriteString(new)
		} else {
			sb.WriteString(old)
		}
		i = end
	}
	return sb.String()
}

// templateToJSExpr converts text with {{ expr }} parts into a concatenation
// of string literals and transformed expressions.
func templateToJSExpr(text string, reactive []string) string {
	var parts []string
	for len(text) > 0 {
		open := strings.Index(text, "{{")
		if open < 0 {
			if lit := jsStringLiteral(text); lit != "''" {
				parts = append(parts, lit)
			}
			break
		}
		closing := strings.Index(text[open:], "}}")
		if closing < 0 {
			if lit := jsStringLiteral(text); lit != "''" {
				parts = append(parts, lit)
			}
			break
		}
		if open > 0 {
			parts = append(parts, jsStringLiteral(text[:open]))
		}
		expr := strings.TrimSpace(text[open+2 : open+closing])
		if expr != "" {
			parts = append(parts, "("+transformExpr(expr, reactive)+")")
		}
		text = text[open+closing+2:]
	}
	if len(parts) == 0 {
		return "''"
	}
	return strings.Join(parts, " + ")
}

func jsStringLiteral(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "'", "\\'", "\n", "\\n", "\r", "\\r", "\t", "\\t")
	return "'" + r.Replace(s) + "'"
}

// templateIsReactive reports whether any {{ expr }} part references a
// reactive name.
func templateIsReactive(text string, reactive []string) bool {
	for {
		open := strings.Index(text, "{{")
		if open < 0 {
			return false
		}
		closing := strings.Index(text[open:], "}}")
		if closing < 0 {
			return false
		}
		if isReactive(text[open+2:open+closing], reactive) {
			return true
		}
		text = text[open+closing+2:]
	}
}

// isReactive reports whether expr mentions any reactive name as a whole
// word not preceded by a dot.
func isReactive(expr string, reactive []string) bool {
	for _, name := range reactive {
		if replaceWord(expr, name, "\x00") != expr {
			return true
		}
	}
	return false
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}

// inlineModule prepares imported script source for direct inlining: import
// lines are dropped and export keywords removed so declarations land in the
// enclosing scope.
func inlineModule(src string) string {
	src = importLineRe.ReplaceAllString(src, "")
	src = strings.ReplaceAll(src, "export default ", "")
	src = strings.ReplaceAll(src, "export ", "")
	return strings.TrimSpace(src) + "\n"
}

func indentLines(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	var sb strings.Builder
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(prefix)
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	return sb.String()
}

func pathKey(p []int) string {
	if len(p) == 0 {
		return ""
	}
	parts := make([]string, len(p))
	for i, n := range p {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ".")
}

func pathLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

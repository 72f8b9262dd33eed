package signals

import (
	"strings"
)

// BindingKind classifies how a DOM node is wired to reactive state.
type BindingKind int

const (
	// BindTemplate updates textContent from a text node with {{ }} parts.
	BindTemplate BindingKind = iota
	// BindText updates textContent from a v-text expression.
	BindText
	// BindEvent attaches an event listener.
	BindEvent
	// BindShow toggles style.display from v-show.
	BindShow
	// BindIf toggles style.display from v-if.
	BindIf
	// BindHTML updates innerHTML from v-html.
	BindHTML
	// BindClass toggles class names from :class.
	BindClass
	// BindStyle sets inline style properties from :style.
	BindStyle
	// BindModel two-way binds an input value from v-model.
	BindModel
	// BindAttr sets an attribute from a :name binding.
	BindAttr
)

// Binding ties one template position to a reactive expression. Path holds
// element-child indices from the binding's scope root; an empty path is
// the root itself.
type Binding struct {
	Kind BindingKind
	// Root is the index of the scope root the path is anchored on, in
	// document order.
	Root int
	Path []int
	// Name is the event or attribute name for BindEvent and BindAttr.
	Name string
	Expr string
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Walk parses the rendered fragment and collects candidate bindings with
// paths anchored on the scope roots: every element carrying scopeID in its
// class whose ancestors do not. The same rule selects instance roots in the
// generated script, so path origins and runtime anchors always agree.
// Returns the bindings and the number of roots the template has; elements
// without the class carry no bindings. Expressions are not validated here.
func Walk(fragment, scopeID string) ([]Binding, int) {
	roots := findScopeRoots(parseFragment(fragment), scopeID)
	var out []Binding
	for i, root := range roots {
		collectBindings(root, i, nil, &out)
	}
	return out, len(roots)
}

// findScopeRoots returns, in document order, the elements carrying the
// scope class that have no classed ancestor. Descent stops at a root:
// classed elements inside it belong to the same instance.
func findScopeRoots(nodes []*htmlNode, scopeID string) []*htmlNode {
	var roots []*htmlNode
	for _, n := range nodes {
		if !n.elem {
			continue
		}
		if hasClassToken(n, scopeID) {
			roots = append(roots, n)
			continue
		}
		roots = append(roots, findScopeRoots(n.children, scopeID)...)
	}
	return roots
}

func hasClassToken(n *htmlNode, id string) bool {
	for _, a := range n.attrs {
		if a.name != "class" {
			continue
		}
		for _, c := range strings.Fields(a.value) {
			if c == id {
				return true
			}
		}
	}
	return false
}

func collectBindings(el *htmlNode, root int, path []int, out *[]Binding) {
	for _, a := range el.attrs {
		b, ok := classifyAttr(a)
		if !ok {
			continue
		}
		b.Root = root
		b.Path = clonePath(path)
		*out = append(*out, b)
	}

	if text, ok := textOnlyContent(el); ok && strings.Contains(text, "{{") {
		*out = append(*out, Binding{Kind: BindTemplate, Root: root, Path: clonePath(path), Expr: text})
	}

	idx := 0
	for _, child := range el.children {
		if !child.elem {
			continue
		}
		collectBindings(child, root, append(path, idx), out)
		idx++
	}
}

func classifyAttr(a htmlAttr) (Binding, bool) {
	switch {
	case strings.HasPrefix(a.name, "@"):
		return Binding{Kind: BindEvent, Name: a.name[1:], Expr: a.value}, true
	case strings.HasPrefix(a.name, "v-on:"):
		return Binding{Kind: BindEvent, Name: a.name[5:], Expr: a.value}, true
	case a.name == "v-show":
		return Binding{Kind: BindShow, Expr: a.value}, true
	case a.name == "v-if":
		return Binding{Kind: BindIf, Expr: a.value}, true
	case a.name == "v-html":
		return Binding{Kind: BindHTML, Expr: a.value}, true
	case a.name == "v-text":
		return Binding{Kind: BindText, Expr: a.value}, true
	case a.name == "v-model":
		return Binding{Kind: BindModel, Expr: a.value}, true
	case a.name == ":class" || a.name == "v-bind:class":
		return Binding{Kind: BindClass, Expr: a.value}, true
	case a.name == ":style" || a.name == "v-bind:style":
		return Binding{Kind: BindStyle, Expr: a.value}, true
	case strings.HasPrefix(a.name, ":"):
		return Binding{Kind: BindAttr, Name: a.name[1:], Expr: a.value}, true
	case strings.HasPrefix(a.name, "v-bind:"):
		return Binding{Kind: BindAttr, Name: a.name[7:], Expr: a.value}, true
	}
	return Binding{}, false
}

// textOnlyContent returns the joined text when the element has no element
// children (comments are ignored).
func textOnlyContent(el *htmlNode) (string, bool) {
	var sb strings.Builder
	for _, c := range el.children {
		if c.elem {
			return "", false
		}
		sb.WriteString(c.text)
	}
	s := strings.TrimSpace(sb.String())
	return s, s != ""
}

func clonePath(path []int) []int {
	out := make([]int, len(path))
	copy(out, path)
	return out
}

type htmlNode struct {
	elem     bool
	tag      string
	attrs    []htmlAttr
	text     string
	children []*htmlNode
}

type htmlAttr struct {
	name  string
	value string
}

// parseFragment is a minimal positional HTML reader. It only needs to agree
// with the browser on which children are elements; malformed markup degrades
// to text rather than erroring.
func parseFragment(html string) []*htmlNode {
	nodes, _ := parseNodes(html, 0, "")
	return nodes
}

// parseNodes reads sibling nodes until EOF or the closing tag of parent.
// Returns the nodes and the position just past the consumed input.
func parseNodes(s string, pos int, parent string) ([]*htmlNode, int) {
	var nodes []*htmlNode
	textStart := pos

	flush := func(end int) {
		if end > textStart {
			nodes = append(nodes, &htmlNode{text: s[textStart:end]})
		}
	}

	for pos < len(s) {
		if s[pos] != '<' {
			pos++
			continue
		}
		if strings.HasPrefix(s[pos:], "<!--") {
			flush(pos)
			end := strings.Index(s[pos:], "-->")
			if end < 0 {
				return nodes, len(s)
			}
			pos += end + 3
			textStart = pos
			continue
		}
		if strings.HasPrefix(s[pos:], "</") {
			flush(pos)
			nameEnd := pos + 2
			for nameEnd < len(s) && isTagNameChar(s[nameEnd]) {
				nameEnd++
			}
			name := s[pos+2 : nameEnd]
			close := strings.IndexByte(s[nameEnd:], '>')
			after := len(s)
			if close >= 0 {
				after = nameEnd + close + 1
			}
			if parent != "" && strings.EqualFold(name, parent) {
				return nodes, after
			}
			// Stray close tag: drop it and keep scanning.
			pos = after
			textStart = pos
			continue
		}
		if pos+1 < len(s) && isTagNameStart(s[pos+1]) {
			flush(pos)
			node, next := parseElement(s, pos)
			if node == nil {
				pos++
				continue
			}
			nodes = append(nodes, node)
			pos = next
			textStart = pos
			continue
		}
		pos++
	}
	flush(len(s))
	return nodes, len(s)
}

func parseElement(s string, pos int) (*htmlNode, int) {
	nameStart := pos + 1
	nameEnd := nameStart
	for nameEnd < len(s) && isTagNameChar(s[nameEnd]) {
		nameEnd++
	}
	node := &htmlNode{elem: true, tag: strings.ToLower(s[nameStart:nameEnd])}

	attrs, after, selfClosing, ok := parseAttrs(s, nameEnd)
	if !ok {
		return nil, pos
	}
	node.attrs = attrs

	if selfClosing || voidElements[node.tag] {
		return node, after
	}

	// Raw text elements: no child parsing.
	if node.tag == "script" || node.tag == "style" {
		closeTag := "</" + node.tag
		idx := strings.Index(strings.ToLower(s[after:]), closeTag)
		if idx < 0 {
			node.children = []*htmlNode{{text: s[after:]}}
			return node, len(s)
		}
		node.children = []*htmlNode{{text: s[after : after+idx]}}
		end := after + idx
		if gt := strings.IndexByte(s[end:], '>'); gt >= 0 {
			end += gt + 1
		} else {
			end = len(s)
		}
		return node, end
	}

	children, next := parseNodes(s, after, node.tag)
	node.children = children
	return node, next
}

// parseAttrs reads attributes until the closing > of an open tag.
func parseAttrs(s string, pos int) (attrs []htmlAttr, after int, selfClosing, ok bool) {
	for pos < len(s) {
		for pos < len(s) && isSpaceByte(s[pos]) {
			pos++
		}
		if pos >= len(s) {
			return nil, pos, false, false
		}
		if s[pos] == '>' {
			return attrs, pos + 1, false, true
		}
		if s[pos] == '/' {
			pos++
			if pos < len(s) && s[pos] == '>' {
				return attrs, pos + 1, true, true
			}
			continue
		}

		nameStart := pos
		for pos < len(s) && !isSpaceByte(s[pos]) && s[pos] != '=' && s[pos] != '>' && s[pos] != '/' {
			pos++
		}
		name := s[nameStart:pos]
		if name == "" {
			pos++
			continue
		}
		for pos < len(s) && isSpaceByte(s[pos]) {
			pos++
		}
		if pos >= len(s) || s[pos] != '=' {
			attrs = append(attrs, htmlAttr{name: name})
			continue
		}
		pos++
		for pos < len(s) && isSpaceByte(s[pos]) {
			pos++
		}
		if pos >= len(s) {
			return nil, pos, false, false
		}
		if s[pos] == '"' || s[pos] == '\'' {
			quote := s[pos]
			pos++
			valStart := pos
			for pos < len(s) && s[pos] != quote {
				pos++
			}
			if pos >= len(s) {
				return nil, pos, false, false
			}
			attrs = append(attrs, htmlAttr{name: name, value: s[valStart:pos]})
			pos++
			continue
		}
		valStart := pos
		for pos < len(s) && !isSpaceByte(s[pos]) && s[pos] != '>' {
			pos++
		}
		attrs = append(attrs, htmlAttr{name: name, value: s[valStart:pos]})
	}
	return nil, pos, false, false
}

func isTagNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isTagNameChar(c byte) bool {
	return isTagNameStart(c) || (c >= '0' && c <= '9') || c == '-' || c == ':'
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

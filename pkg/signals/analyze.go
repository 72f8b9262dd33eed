package signals

import (
	"strings"

	verrors "github.com/van-dev/van/internal/errors"
)

// SignalDecl is a reactive reference: `const x = ref(v)` or a top-level
// mutable `let x = v`.
type SignalDecl struct {
	Name    string
	Initial string
}

// ComputedDecl is a derived reference: `const x = computed(() => e)`.
type ComputedDecl struct {
	Name string
	Body string
	// Block reports a `() => { ... }` body rather than a bare expression.
	Block bool
}

// FunctionDecl is a top-level `function name(params) { body }`.
type FunctionDecl struct {
	Name   string
	Params string
	Body   string
}

// WatchDecl is a `watch(source, fn)` observer.
type WatchDecl struct {
	Source string
	Params string
	Body   string
}

// Analysis holds the reactive declarations extracted from a setup script.
type Analysis struct {
	Signals   []SignalDecl
	Computeds []ComputedDecl
	Functions []FunctionDecl
	Watches   []WatchDecl
}

// ReactiveNames lists signal and computed names in declaration order.
func (a *Analysis) ReactiveNames() []string {
	names := make([]string, 0, len(a.Signals)+len(a.Computeds))
	for _, s := range a.Signals {
		names = append(names, s.Name)
	}
	for _, c := range a.Computeds {
		names = append(names, c.Name)
	}
	return names
}

// HasFunction reports whether name is a declared top-level function.
func (a *Analysis) HasFunction(name string) bool {
	for _, f := range a.Functions {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Analyze scans a setup script for reactive declarations. Only unbalanced
// delimiters inside an identified ref/computed/watch call are errors; any
// other pattern is skipped.
func Analyze(script string) (*Analysis, error) {
	a := &Analysis{}
	s := &scanner{src: script}

	for !s.eof() {
		c := s.src[s.pos]
		switch {
		case c == '\'' || c == '"':
			s.skipString(c)
		case c == '`':
			s.skipTemplateLiteral()
		case c == '/' && s.peekAt(1) == '/':
			s.skipLine()
		case c == '/' && s.peekAt(1) == '*':
			s.skipBlockComment()
		case c == '(' || c == '[' || c == '{':
			s.depth++
			s.pos++
		case c == ')' || c == ']' || c == '}':
			s.depth--
			s.pos++
		case s.depth == 0 && isIdentStart(c) && s.atWordStart():
			word := s.peekWord()
			var err error
			switch word {
			case "const":
				err = s.scanConst(a)
			case "let":
				s.scanLet(a)
			case "function":
				s.scanFunction(a)
			case "watch":
				err = s.scanWatch(a)
			default:
				s.skipWord()
			}
			if err != nil {
				return nil, err
			}
		default:
			s.pos++
		}
	}

	return a, nil
}

type scanner struct {
	src   string
	pos   int
	depth int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peekAt(n int) byte {
	if s.pos+n >= len(s.src) {
		return 0
	}
	return s.src[s.pos+n]
}

func (s *scanner) atWordStart() bool {
	return s.pos == 0 || !isIdentChar(s.src[s.pos-1])
}

func (s *scanner) peekWord() string {
	end := s.pos
	for end < len(s.src) && isIdentChar(s.src[end]) {
		end++
	}
	return s.src[s.pos:end]
}

func (s *scanner) skipWord() {
	for !s.eof() && isIdentChar(s.src[s.pos]) {
		s.pos++
	}
}

func (s *scanner) skipSpace() {
	for !s.eof() {
		switch s.src[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *scanner) skipString(quote byte) {
	s.pos++
	for !s.eof() {
		c := s.src[s.pos]
		if c == '\\' {
			s.pos += 2
			continue
		}
		s.pos++
		if c == quote {
			return
		}
	}
}

// skipTemplateLiteral consumes a backtick string, recursing into ${ }
// interpolations.
func (s *scanner) skipTemplateLiteral() {
	s.pos++
	for !s.eof() {
		c := s.src[s.pos]
		switch {
		case c == '\\':
			s.pos += 2
		case c == '`':
			s.pos++
			return
		case c == '$' && s.peekAt(1) == '{':
			s.pos += 2
			depth := 1
			for !s.eof() && depth > 0 {
				switch s.src[s.pos] {
				case '{':
					depth++
				case '}':
					depth--
				case '\'', '"':
					s.skipString(s.src[s.pos])
					continue
				case '`':
					s.skipTemplateLiteral()
					continue
				}
				s.pos++
			}
		default:
			s.pos++
		}
	}
}

func (s *scanner) skipLine() {
	for !s.eof() && s.src[s.pos] != '\n' {
		s.pos++
	}
}

func (s *scanner) skipBlockComment() {
	s.pos += 2
	for !s.eof() {
		if s.src[s.pos] == '*' && s.peekAt(1) == '/' {
			s.pos += 2
			return
		}
		s.pos++
	}
}

// readBalanced consumes a delimited section starting at the current open
// delimiter and returns the inner content. String literals, template
// literals, and comments inside are opaque.
func (s *scanner) readBalanced(open, closing byte) (string, bool) {
	if s.eof() || s.src[s.pos] != open {
		return "", false
	}
	start := s.pos + 1
	depth := 0
	for !s.eof() {
		c := s.src[s.pos]
		switch {
		case c == '\'' || c == '"':
			s.skipString(c)
			continue
		case c == '`':
			s.skipTemplateLiteral()
			continue
		case c == '/' && s.peekAt(1) == '/':
			s.skipLine()
			continue
		case c == '/' && s.peekAt(1) == '*':
			s.skipBlockComment()
			continue
		case c == open:
			depth++
		case c == closing:
			depth--
			if depth == 0 {
				inner := s.src[start:s.pos]
				s.pos++
				return inner, true
			}
		}
		s.pos++
	}
	return "", false
}

// scanConst handles `const name = ref(v)` and `const name = computed(fn)`.
// Other const declarations are skipped.
func (s *scanner) scanConst(a *Analysis) error {
	s.skipWord() // const
	s.skipSpace()
	name := s.peekWord()
	s.skipWord()
	if name == "" {
		return nil
	}
	s.skipSpace()
	if s.eof() || s.src[s.pos] != '=' {
		return nil
	}
	s.pos++
	s.skipSpace()

	call := s.peekWord()
	switch call {
	case "ref":
		s.skipWord()
		if s.eof() || s.src[s.pos] != '(' {
			return nil
		}
		inner, ok := s.readBalanced('(', ')')
		if !ok {
			return verrors.New(verrors.CategoryParse, "unbalanced delimiters in ref() for %s", name)
		}
		a.Signals = append(a.Signals, SignalDecl{Name: name, Initial: strings.TrimSpace(inner)})
	case "computed":
		s.skipWord()
		if s.eof() || s.src[s.pos] != '(' {
			return nil
		}
		inner, ok := s.readBalanced('(', ')')
		if !ok {
			return verrors.New(verrors.CategoryParse, "unbalanced delimiters in computed() for %s", name)
		}
		body, block, ok := parseArrowBody(inner)
		if !ok {
			return nil
		}
		a.Computeds = append(a.Computeds, ComputedDecl{Name: name, Body: body, Block: block})
	}
	return nil
}

// scanLet handles top-level `let name = initial`; the initial value runs to
// the end of the statement.
func (s *scanner) scanLet(a *Analysis) {
	s.skipWord() // let
	s.skipSpace()
	name := s.peekWord()
	s.skipWord()
	if name == "" {
		return
	}
	s.skipSpace()
	if s.eof() || s.src[s.pos] != '=' || s.peekAt(1) == '=' {
		return
	}
	s.pos++

	start := s.pos
	depth := 0
	for !s.eof() {
		c := s.src[s.pos]
		switch {
		case c == '\'' || c == '"':
			s.skipString(c)
			continue
		case c == '`':
			s.skipTemplateLiteral()
			continue
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case (c == ';' || c == '\n') && depth == 0:
			a.Signals = append(a.Signals, SignalDecl{Name: name, Initial: strings.TrimSpace(s.src[start:s.pos])})
			return
		}
		s.pos++
	}
	a.Signals = append(a.Signals, SignalDecl{Name: name, Initial: strings.TrimSpace(s.src[start:])})
}

// scanFunction handles top-level `function name(params) { body }`.
func (s *scanner) scanFunction(a *Analysis) {
	s.skipWord() // function
	s.skipSpace()
	name := s.peekWord()
	s.skipWord()
	if name == "" {
		return
	}
	s.skipSpace()
	params, ok := s.readBalanced('(', ')')
	if !ok {
		s.pos = len(s.src)
		return
	}
	s.skipSpace()
	body, ok := s.readBalanced('{', '}')
	if !ok {
		s.pos = len(s.src)
		return
	}
	a.Functions = append(a.Functions, FunctionDecl{
		Name:   name,
		Params: strings.TrimSpace(params),
		Body:   strings.TrimSpace(body),
	})
}

// scanWatch handles top-level `watch(source, fn)`.
func (s *scanner) scanWatch(a *Analysis) error {
	s.skipWord() // watch
	s.skipSpace()
	if s.eof() || s.src[s.pos] != '(' {
		return nil
	}
	inner, ok := s.readBalanced('(', ')')
	if !ok {
		return verrors.New(verrors.CategoryParse, "unbalanced delimiters in watch()")
	}

	args := splitArgs(inner)
	if len(args) < 2 {
		return nil
	}
	source := strings.TrimSpace(args[0])
	callback := strings.TrimSpace(strings.Join(args[1:], ","))

	params, body, ok := parseCallback(callback)
	if !ok {
		return nil
	}
	a.Watches = append(a.Watches, WatchDecl{Source: source, Params: params, Body: body})
	return nil
}

// parseArrowBody parses `() => expr` or `() => { body }` from a computed
// call's argument.
func parseArrowBody(arg string) (body string, block, ok bool) {
	rest := strings.TrimSpace(arg)
	if !strings.HasPrefix(rest, "(") {
		return "", false, false
	}
	closeIdx := matchingDelim(rest, 0, '(', ')')
	if closeIdx < 0 {
		return "", false, false
	}
	rest = strings.TrimSpace(rest[closeIdx+1:])
	if !strings.HasPrefix(rest, "=>") {
		return "", false, false
	}
	rest = strings.TrimSpace(rest[2:])
	if strings.HasPrefix(rest, "{") {
		closeIdx = matchingDelim(rest, 0, '{', '}')
		if closeIdx < 0 {
			return "", false, false
		}
		return strings.TrimSpace(rest[1:closeIdx]), true, true
	}
	return rest, false, true
}

// parseCallback parses `function(params) { body }`, `(params) => { body }`,
// `(params) => expr`, or `param => expr` callback shapes.
func parseCallback(cb string) (params, body string, ok bool) {
	if strings.HasPrefix(cb, "function") {
		rest := strings.TrimSpace(strings.TrimPrefix(cb, "function"))
		open := strings.IndexByte(rest, '(')
		if open != 0 {
			return "", "", false
		}
		closeIdx := matchingDelim(rest, 0, '(', ')')
		if closeIdx < 0 {
			return "", "", false
		}
		params = strings.TrimSpace(rest[1:closeIdx])
		rest = strings.TrimSpace(rest[closeIdx+1:])
		if !strings.HasPrefix(rest, "{") {
			return "", "", false
		}
		end := matchingDelim(rest, 0, '{', '}')
		if end < 0 {
			return "", "", false
		}
		return params, strings.TrimSpace(rest[1:end]), true
	}

	if strings.HasPrefix(cb, "(") {
		closeIdx := matchingDelim(cb, 0, '(', ')')
		if closeIdx < 0 {
			return "", "", false
		}
		params = strings.TrimSpace(cb[1:closeIdx])
		rest := strings.TrimSpace(cb[closeIdx+1:])
		if !strings.HasPrefix(rest, "=>") {
			return "", "", false
		}
		rest = strings.TrimSpace(rest[2:])
		if strings.HasPrefix(rest, "{") {
			end := matchingDelim(rest, 0, '{', '}')
			if end < 0 {
				return "", "", false
			}
			return params, strings.TrimSpace(rest[1:end]), true
		}
		return params, rest, true
	}

	// Single bare parameter: `v => body`
	arrow := strings.Index(cb, "=>")
	if arrow < 0 {
		return "", "", false
	}
	params = strings.TrimSpace(cb[:arrow])
	rest := strings.TrimSpace(cb[arrow+2:])
	if strings.HasPrefix(rest, "{") {
		end := matchingDelim(rest, 0, '{', '}')
		if end < 0 {
			return "", "", false
		}
		return params, strings.TrimSpace(rest[1:end]), true
	}
	return params, rest, true
}

// matchingDelim returns the index of the delimiter matching the opener at
// s[start], or -1. String-aware.
func matchingDelim(s string, start int, open, closing byte) int {
	depth := 0
	i := start
	for i < len(s) {
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
		case c == open:
			depth++
		case c == closing:
			depth--
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

// splitArgs splits call arguments on top-level commas, respecting strings
// and all bracket kinds.
func splitArgs(s string) []string {
	var args []string
	depth := 0
	start := 0
	i := 0
	for i < len(s) {
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
		case c == ',' && depth == 0:
			args = append(args, s[start:i])
			start = i + 1
		}
		i++
	}
	if strings.TrimSpace(s[start:]) != "" {
		args = append(args, s[start:])
	}
	return args
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

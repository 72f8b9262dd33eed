package scope

import (
	"strings"
	"testing"
)

func TestIDDeterministic(t *testing.T) {
	id1 := ID("components/hello.van")
	id2 := ID("components/hello.van")
	if id1 != id2 {
		t.Errorf("same path produced different ids: %q vs %q", id1, id2)
	}
	if !strings.HasPrefix(id1, "v-") || len(id1) != 10 {
		t.Errorf("got id %q, want v- plus 8 hex digits", id1)
	}
	if id3 := ID("components/other.van"); id3 == id1 {
		t.Errorf("different paths produced the same id %q", id1)
	}
}

func TestHashLength(t *testing.T) {
	h := Hash("body { margin: 0 }")
	if len(h) != 8 {
		t.Errorf("got hash %q, want 8 hex digits", h)
	}
	for _, c := range h {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("non-hex digit %q in %q", c, h)
		}
	}
}

func TestAddClass(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "existing class merged",
			html: `<div class="card"><h1>Title</h1><p>Text</p></div>`,
			want: `<div class="card a1b2c3d4"><h1 class="a1b2c3d4">Title</h1><p class="a1b2c3d4">Text</p></div>`,
		},
		{
			name: "class created",
			html: `<div><h1>Title</h1></div>`,
			want: `<div class="a1b2c3d4"><h1 class="a1b2c3d4">Title</h1></div>`,
		},
		{
			name: "self closing",
			html: `<div><img src="x.png" /><br /></div>`,
			want: `<div class="a1b2c3d4"><img src="x.png" class="a1b2c3d4" /><br class="a1b2c3d4" /></div>`,
		},
		{
			name: "self closing without space",
			html: `<h1/>`,
			want: `<h1 class="a1b2c3d4" />`,
		},
		{
			name: "self closing with attribute no space",
			html: `<img src="x.png"/>`,
			want: `<img src="x.png" class="a1b2c3d4" />`,
		},
		{
			name: "comments untouched",
			html: `<!-- comment --><div>Hi</div>`,
			want: `<!-- comment --><div class="a1b2c3d4">Hi</div>`,
		},
		{
			name: "slot skipped",
			html: `<div><slot /><slot name="x">fallback</slot></div>`,
			want: `<div class="a1b2c3d4"><slot /><slot name="x">fallback</slot></div>`,
		},
		{
			name: "structural tags skipped",
			html: `<html><head><meta charset="UTF-8" /></head><body><nav class="x">Hi</nav></body></html>`,
			want: `<html><head><meta charset="UTF-8" /></head><body><nav class="x a1b2c3d4">Hi</nav></body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddClass(tt.html, "a1b2c3d4"); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestAddClassIdempotent(t *testing.T) {
	htmls := []string{
		`<div class="card"><h1>Title</h1></div>`,
		`<div><img src="x.png" /></div>`,
		`<ul><li>a</li><li>b</li></ul>`,
	}
	for _, html := range htmls {
		once := AddClass(html, "a1b2c3d4")
		twice := AddClass(once, "a1b2c3d4")
		if once != twice {
			t.Errorf("not idempotent:\nonce  %q\ntwice %q", once, twice)
		}
	}
}

func TestAddClassSkipsComponentTags(t *testing.T) {
	html := `<div><hello-card name="x"></hello-card><p>t</p></div>`
	got := AddClass(html, "a1b2c3d4", "hello-card")
	want := `<div class="a1b2c3d4"><hello-card name="x"></hello-card><p class="a1b2c3d4">t</p></div>`
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestCSS(t *testing.T) {
	tests := []struct {
		name string
		css  string
		want string
	}{
		{
			name: "single selector",
			css:  ".card { border: 1px solid; }",
			want: ".card.a1b2c3d4 { border: 1px solid; }",
		},
		{
			name: "comma selectors",
			css:  ".card, .box { border: 1px solid; }",
			want: ".card.a1b2c3d4, .box.a1b2c3d4 { border: 1px solid; }",
		},
		{
			name: "descendant selector",
			css:  ".card h1 { color: navy; }",
			want: ".card h1.a1b2c3d4 { color: navy; }",
		},
		{
			name: "pseudo class",
			css:  ".demo-list a:hover { text-decoration: underline; }",
			want: ".demo-list a.a1b2c3d4:hover { text-decoration: underline; }",
		},
		{
			name: "pseudo element",
			css:  ".item::before { content: '-'; }",
			want: ".item.a1b2c3d4::before { content: '-'; }",
		},
		{
			name: "bare element",
			css:  "h1 { font-size: 2rem; }",
			want: "h1.a1b2c3d4 { font-size: 2rem; }",
		},
		{
			name: "colon inside attribute selector",
			css:  `a[href^="http:"] { color: teal; }`,
			want: `a[href^="http:"].a1b2c3d4 { color: teal; }`,
		},
		{
			name: "attribute selector then pseudo",
			css:  `a[href^="http:"]:hover { color: navy; }`,
			want: `a[href^="http:"].a1b2c3d4:hover { color: navy; }`,
		},
		{
			name: "root passthrough",
			css:  ":root { --accent: teal; }",
			want: ":root { --accent: teal; }",
		},
		{
			name: "body passthrough",
			css:  "body { margin: 0; }",
			want: "body { margin: 0; }",
		},
		{
			name: "html descendant passthrough",
			css:  "html.dark { background: black; }",
			want: "html.dark { background: black; }",
		},
		{
			name: "media recursion",
			css:  "@media (max-width: 600px) { .card { padding: 4px; } }",
			want: "@media (max-width: 600px) { .card.a1b2c3d4 { padding: 4px; } }",
		},
		{
			name: "keyframes passthrough",
			css:  "@keyframes spin { from { transform: none; } to { transform: rotate(1turn); } }",
			want: "@keyframes spin { from { transform: none; } to { transform: rotate(1turn); } }",
		},
		{
			name: "import statement passthrough",
			css:  "@import url(base.css);\n.card { color: red; }",
			want: "@import url(base.css);\n.card.a1b2c3d4 { color: red; }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CSS(tt.css, "a1b2c3d4"); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestCSSMultipleRules(t *testing.T) {
	css := ".card { border: 1px solid; }\nh1 { color: navy; }"
	got := CSS(css, "a1b2c3d4")
	if !strings.Contains(got, ".card.a1b2c3d4 { border: 1px solid; }") {
		t.Errorf("first rule not scoped: %q", got)
	}
	if !strings.Contains(got, "h1.a1b2c3d4 { color: navy; }") {
		t.Errorf("second rule not scoped: %q", got)
	}
}

func TestCSSEveryRuleScoped(t *testing.T) {
	css := `
.card { border: 1px solid; }
.card h1, .card h2 { margin: 0; }
a:hover { color: navy; }
@media (min-width: 800px) { .wide { display: flex; } }
`
	got := CSS(css, "a1b2c3d4")
	for _, line := range strings.Split(got, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "@") || strings.HasPrefix(line, "}") {
			continue
		}
		if !strings.Contains(line, ".a1b2c3d4") {
			t.Errorf("rule without scope class: %q", line)
		}
	}
}

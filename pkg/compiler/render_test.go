package compiler

import (
	"strings"
	"testing"

	"github.com/van-dev/van/pkg/scope"
)

func mustRender(t *testing.T, entry string, files map[string]string, opts Options) (string, []string, []*SignalModule) {
	t.Helper()
	g, err := Resolve(entry, files)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	html, styles, modules, err := RenderPage(g, opts)
	if err != nil {
		t.Fatalf("RenderPage returned error: %v", err)
	}
	return html, styles, modules
}

func TestRenderStaticProp(t *testing.T) {
	files := map[string]string{
		"pages/index.van": vanSource(`<div><hello-card name="Ada" /></div>`,
			"import HelloCard from '../components/hello-card.van'"),
		"components/hello-card.van": vanSource(`<div class="card">Hello, {{ name }}!</div>`,
			"const props = defineProps({ name: String })"),
	}
	html, _, _ := mustRender(t, "pages/index.van", files, Options{})

	if !strings.Contains(html, "Hello, Ada!") {
		t.Errorf("static prop not substituted:\n%s", html)
	}
	if strings.Contains(html, "<hello-card") {
		t.Errorf("component tag not expanded:\n%s", html)
	}
	if !strings.Contains(html, scope.ID("components/hello-card.van")) {
		t.Errorf("component scope class missing:\n%s", html)
	}
}

func TestRenderDynamicPropStaysPlaceholder(t *testing.T) {
	files := map[string]string{
		"index.van": vanSource(`<div><hello-card :name="user.name" /></div>`,
			"import HelloCard from './hello-card.van'"),
		"hello-card.van": vanSource(`<p>Hello, {{ name }}!</p>`,
			"const props = defineProps({ name: String })"),
	}
	html, _, _ := mustRender(t, "index.van", files, Options{})

	if !strings.Contains(html, "Hello, {{ user.name }}!") {
		t.Errorf("dynamic prop must remain a placeholder with the caller's expression:\n%s", html)
	}
}

func TestRenderUndeclaredPlaceholderPreserved(t *testing.T) {
	files := map[string]string{
		"index.van": vanSource(`<div><hello-card name="Ada" /></div>`,
			"import HelloCard from './hello-card.van'"),
		"hello-card.van": vanSource(`<p>{{ name }} has {{ count }} items</p>`,
			"const props = defineProps({ name: String })"),
	}
	html, _, _ := mustRender(t, "index.van", files, Options{})

	if !strings.Contains(html, "Ada has {{ count }} items") {
		t.Errorf("undeclared placeholder must be preserved byte for byte:\n%s", html)
	}
}

func TestRenderMissingRequiredProp(t *testing.T) {
	files := map[string]string{
		"index.van": vanSource(`<div><hello-card /></div>`,
			"import HelloCard from './hello-card.van'"),
		"hello-card.van": vanSource(`<p>{{ name }}</p>`,
			"const props = defineProps({ name: { type: String, required: true } })"),
	}
	g, err := Resolve("index.van", files)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	_, _, _, err = RenderPage(g, Options{})
	if err == nil {
		t.Fatal("expected missing required prop error")
	}
	if !strings.Contains(err.Error(), `missing required prop "name"`) {
		t.Errorf("error = %v", err)
	}
}

func TestRenderNestedComponents(t *testing.T) {
	files := map[string]string{
		"index.van": vanSource(`<main><outer-box /></main>`,
			"import OuterBox from './outer.van'"),
		"outer.van": vanSource(`<div class="outer"><inner-bit label="deep" /></div>`,
			"import InnerBit from './inner.van'"),
		"inner.van": vanSource(`<span>{{ label }}</span>`,
			"const props = defineProps({ label: String })"),
	}
	html, _, _ := mustRender(t, "index.van", files, Options{})

	if !strings.Contains(html, "<span>deep</span>") {
		t.Errorf("nested component not rendered:\n%s", html)
	}
}

func TestRenderSlots(t *testing.T) {
	files := map[string]string{
		"index.van": vanSource("<app-layout>\n<template #header><h1>Title</h1></template>\n<p>Body</p>\n</app-layout>",
			"import AppLayout from './layout.van'"),
		"layout.van": vanSource(`<div class="layout"><header><slot name="header">Default Header</slot></header><main><slot /></main></div>`, ""),
	}
	html, _, _ := mustRender(t, "index.van", files, Options{})

	if strings.Contains(html, "<slot") {
		t.Errorf("slot elements must not survive rendering:\n%s", html)
	}
	if !strings.Contains(html, "Title</h1>") {
		t.Errorf("named slot content missing:\n%s", html)
	}
	if !strings.Contains(html, "Body</p>") {
		t.Errorf("default slot content missing:\n%s", html)
	}
	if strings.Contains(html, "Default Header") {
		t.Errorf("fallback must not render when the slot is provided:\n%s", html)
	}
}

func TestRenderSlotFallback(t *testing.T) {
	files := map[string]string{
		"index.van": vanSource(`<app-layout></app-layout>`,
			"import AppLayout from './layout.van'"),
		"layout.van": vanSource(`<div><header><slot name="header">Default Header</slot></header></div>`, ""),
	}
	html, _, _ := mustRender(t, "index.van", files, Options{})

	if !strings.Contains(html, "Default Header") {
		t.Errorf("fallback content missing:\n%s", html)
	}
}

func TestRenderDebugComments(t *testing.T) {
	files := map[string]string{
		"index.van": vanSource("<app-layout>\n<template #header><h1>T</h1></template>\n</app-layout>",
			"import AppLayout from './layout.van'"),
		"layout.van": vanSource(`<div><slot name="header"></slot><slot name="side"></slot></div>`, ""),
	}
	opts := Options{Debug: true, FileOrigins: map[string]string{"layout.van": "src/layout.van"}}
	html, _, _ := mustRender(t, "index.van", files, opts)

	if !strings.Contains(html, "<!-- [Component AppLayout] layout.van (src/layout.van) -->") {
		t.Errorf("component open comment missing:\n%s", html)
	}
	if !strings.Contains(html, "<!-- [/Component AppLayout] -->") {
		t.Errorf("component close comment missing:\n%s", html)
	}
	if !strings.Contains(html, "<!-- [slot header] -->") {
		t.Errorf("provided slot comment missing:\n%s", html)
	}
	if strings.Contains(html, "<!-- [slot side] -->") {
		t.Errorf("unprovided slot must not get a comment:\n%s", html)
	}
}

func TestRenderMissingTemplate(t *testing.T) {
	files := map[string]string{
		"index.van": "<script setup>\nconst x = ref(1)\n</script>\n",
	}
	html, _, _ := mustRender(t, "index.van", files, Options{})

	if !strings.Contains(html, "No template block found.</p>") {
		t.Errorf("missing template placeholder absent:\n%s", html)
	}
}

func TestRenderStyles(t *testing.T) {
	files := map[string]string{
		"index.van": "<template>\n<div><card-box /><card-box /></div>\n</template>\n" +
			"<script setup>\nimport CardBox from './card.van'\n</script>\n" +
			"<style>\nbody { margin: 0; }\n</style>\n",
		"card.van": "<template>\n<div class=\"card\">x</div>\n</template>\n" +
			"<style scoped>\n.card { color: red; }\n</style>\n",
	}
	_, styles, _ := mustRender(t, "index.van", files, Options{})

	if len(styles) != 2 {
		t.Fatalf("expected 2 styles (duplicate use deduped), got %d", len(styles))
	}
	// Children render before their caller finishes, so their styles come first.
	if !strings.Contains(styles[0], scope.ID("card.van")) {
		t.Errorf("scoped style must carry the scope class:\n%s", styles[0])
	}
	if !strings.Contains(styles[1], "body { margin: 0; }") {
		t.Errorf("unscoped style must pass through:\n%s", styles[1])
	}
}

func TestRenderSignalModules(t *testing.T) {
	files := map[string]string{
		"index.van": vanSource(`<div><p>{{ count }}</p></div>`, "const count = ref(0)"),
	}
	html, _, modules := mustRender(t, "index.van", files, Options{})

	if len(modules) != 1 {
		t.Fatalf("expected 1 signal module, got %d", len(modules))
	}
	m := modules[0]
	if m.Path != "index.van" || m.ScopeID != scope.ID("index.van") {
		t.Errorf("module = %+v", m)
	}
	if m.Fragment != html {
		t.Error("module fragment must be the component's final rendered HTML")
	}
	if !strings.Contains(m.ScriptSetup, "ref(0)") {
		t.Errorf("script setup = %q", m.ScriptSetup)
	}
}

func TestRenderDeterministic(t *testing.T) {
	files := map[string]string{
		"index.van": vanSource(`<div><a-part /><b-part /><a-part /></div>`,
			"import APart from './a.van'\nimport BPart from './b.van'"),
		"a.van": vanSource(`<i>a</i>`, ""),
		"b.van": vanSource(`<b>b</b>`, ""),
	}
	first, _, _ := mustRender(t, "index.van", files, Options{})
	for i := 0; i < 5; i++ {
		again, _, _ := mustRender(t, "index.van", files, Options{})
		if again != first {
			t.Fatal("rendering must be byte deterministic")
		}
	}
	if idx := strings.Index(first, "<i>a</i>"); idx < 0 || idx > strings.Index(first, "<b>b</b>") {
		t.Errorf("expansion order wrong:\n%s", first)
	}
}

func TestRenderExpansionBounded(t *testing.T) {
	// b.van's template literally contains the tag a.van imports it as, so
	// every expansion reintroduces a match. The loop must stop with an error
	// instead of growing the fragment forever.
	files := map[string]string{
		"a.van": vanSource(`<div><b-comp /></div>`,
			"import BComp from './b.van'"),
		"b.van": vanSource(`<section><b-comp /></section>`, ""),
	}
	g, err := Resolve("a.van", files)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	_, _, _, err = RenderPage(g, Options{})
	if err == nil {
		t.Fatal("expected expansion limit error")
	}
	if !strings.Contains(err.Error(), "expansion limit") {
		t.Errorf("error = %v", err)
	}
}

func TestRenderSelfClosingTagGetsScopeClass(t *testing.T) {
	files := map[string]string{
		"page.van": "<template><h1/></template>\n<style scoped>\nh1 { color: red }\n</style>\n",
	}
	html, styles, _ := mustRender(t, "page.van", files, Options{})

	id := scope.ID("page.van")
	if !strings.Contains(html, `<h1 class="`+id+`" />`) {
		t.Errorf("self-closing tag missing scope class:\n%s", html)
	}
	if len(styles) != 1 || !strings.Contains(styles[0], "h1."+id) {
		t.Errorf("styles = %v", styles)
	}
}

func TestRenderTransitionWrapperStripped(t *testing.T) {
	files := map[string]string{
		"page.van": vanSource(`<div><transition name="fade"><p v-show="open">hi</p></transition></div>`,
			"const open = ref(true)"),
	}
	html, _, modules := mustRender(t, "page.van", files, Options{})

	if strings.Contains(strings.ToLower(html), "<transition") || strings.Contains(strings.ToLower(html), "</transition>") {
		t.Errorf("transition wrapper must not reach the output:\n%s", html)
	}
	if !strings.Contains(html, `v-show="open"`) {
		t.Errorf("wrapped element lost:\n%s", html)
	}
	if len(modules) != 1 || strings.Contains(strings.ToLower(modules[0].Fragment), "<transition") {
		t.Errorf("signal fragment still contains the wrapper: %+v", modules)
	}
}

func TestRenderElseAttributesStripped(t *testing.T) {
	files := map[string]string{
		"page.van": vanSource(`<div><p v-if="open">a</p><p v-else-if="alt">b</p><p v-else>c</p></div>`,
			"const open = ref(true)\nconst alt = ref(false)"),
	}
	html, _, _ := mustRender(t, "page.van", files, Options{})

	if strings.Contains(html, "v-else") {
		t.Errorf("v-else attributes must be stripped:\n%s", html)
	}
	if !strings.Contains(html, `v-if="open"`) {
		t.Errorf("v-if must survive:\n%s", html)
	}
}

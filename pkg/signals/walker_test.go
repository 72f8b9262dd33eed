package signals

import (
	"reflect"
	"testing"
)

func findBinding(bindings []Binding, kind BindingKind) (Binding, bool) {
	for _, b := range bindings {
		if b.Kind == kind {
			return b, true
		}
	}
	return Binding{}, false
}

func TestWalkCounter(t *testing.T) {
	fragment := `<div class="v-abcd1234"><button class="v-abcd1234" @click="increment">+</button><p class="v-abcd1234">{{ count }}</p></div>`
	bindings, roots := Walk(fragment, "v-abcd1234")
	if roots != 1 {
		t.Fatalf("roots = %d, want 1", roots)
	}
	if len(bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d: %+v", len(bindings), bindings)
	}

	ev, ok := findBinding(bindings, BindEvent)
	if !ok {
		t.Fatal("missing event binding")
	}
	if ev.Name != "click" || ev.Expr != "increment" || !reflect.DeepEqual(ev.Path, []int{0}) {
		t.Errorf("event binding = %+v", ev)
	}

	tmpl, ok := findBinding(bindings, BindTemplate)
	if !ok {
		t.Fatal("missing template binding")
	}
	if tmpl.Expr != "{{ count }}" || !reflect.DeepEqual(tmpl.Path, []int{1}) {
		t.Errorf("template binding = %+v", tmpl)
	}
}

func TestWalkRootBinding(t *testing.T) {
	bindings, roots := Walk(`<div v-show="open" class="panel v-11aa22bb">content</div>`, "v-11aa22bb")
	if roots != 1 {
		t.Fatalf("roots = %d, want 1", roots)
	}
	if len(bindings) != 1 {
		t.Fatalf("expected 1 binding, got %d", len(bindings))
	}
	b := bindings[0]
	if b.Kind != BindShow || b.Expr != "open" || b.Root != 0 || len(b.Path) != 0 {
		t.Errorf("binding = %+v", b)
	}
}

func TestWalkVoidElementsDoNotNest(t *testing.T) {
	bindings, _ := Walk(`<div class="v-0f0f0f0f"><img src="a.png"><p>{{ label }}</p></div>`, "v-0f0f0f0f")
	tmpl, ok := findBinding(bindings, BindTemplate)
	if !ok {
		t.Fatal("missing template binding")
	}
	if !reflect.DeepEqual(tmpl.Path, []int{1}) {
		t.Errorf("path = %v, want [1]", tmpl.Path)
	}
}

func TestWalkCommentsAndTextDoNotShiftIndices(t *testing.T) {
	bindings, _ := Walk(`<div class="v-3c3c3c3c">leading text<!-- note --><p>{{ a }}</p><span>{{ b }}</span></div>`, "v-3c3c3c3c")
	if len(bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(bindings))
	}
	if !reflect.DeepEqual(bindings[0].Path, []int{0}) {
		t.Errorf("first path = %v", bindings[0].Path)
	}
	if !reflect.DeepEqual(bindings[1].Path, []int{1}) {
		t.Errorf("second path = %v", bindings[1].Path)
	}
}

func TestWalkMixedChildrenSkipParentText(t *testing.T) {
	bindings, _ := Walk(`<div class="v-5e5e5e5e">Count: <span>{{ n }}</span></div>`, "v-5e5e5e5e")
	if len(bindings) != 1 {
		t.Fatalf("expected 1 binding, got %d: %+v", len(bindings), bindings)
	}
	b := bindings[0]
	if b.Kind != BindTemplate || b.Expr != "{{ n }}" || !reflect.DeepEqual(b.Path, []int{0}) {
		t.Errorf("binding = %+v", b)
	}
}

func TestWalkDirectives(t *testing.T) {
	fragment := `<form class="v-7d7d7d7d"><input v-model="text" :disabled="busy"><p v-html="raw"></p>` +
		`<span v-text="label"></span><div :class="{ active: isOn }" :style="{ color: tint }"></div></form>`
	bindings, _ := Walk(fragment, "v-7d7d7d7d")

	kinds := map[BindingKind]int{}
	for _, b := range bindings {
		kinds[b.Kind]++
	}
	for _, want := range []BindingKind{BindModel, BindAttr, BindHTML, BindText, BindClass, BindStyle} {
		if kinds[want] != 1 {
			t.Errorf("kind %d count = %d, want 1 (bindings: %+v)", want, kinds[want], bindings)
		}
	}

	attr, _ := findBinding(bindings, BindAttr)
	if attr.Name != "disabled" || attr.Expr != "busy" {
		t.Errorf("attr binding = %+v", attr)
	}
}

func TestWalkDeepPaths(t *testing.T) {
	fragment := `<div class="v-9b9b9b9b"><section><h1>title</h1><p>{{ deep }}</p></section></div>`
	bindings, _ := Walk(fragment, "v-9b9b9b9b")
	if len(bindings) != 1 {
		t.Fatalf("expected 1 binding, got %d", len(bindings))
	}
	if !reflect.DeepEqual(bindings[0].Path, []int{0, 1}) {
		t.Errorf("path = %v, want [0 1]", bindings[0].Path)
	}
}

func TestWalkFullDocumentAnchorsOnClassedElement(t *testing.T) {
	// html and body never receive the scope class, so a full document
	// anchors on the first classed content element.
	fragment := `<html><head><title>T</title></head><body><main class="v-d0c0d0c0"><p class="v-d0c0d0c0">{{ count }}</p></main></body></html>`
	bindings, roots := Walk(fragment, "v-d0c0d0c0")
	if roots != 1 {
		t.Fatalf("roots = %d, want 1", roots)
	}
	if len(bindings) != 1 {
		t.Fatalf("expected 1 binding, got %d: %+v", len(bindings), bindings)
	}
	if bindings[0].Root != 0 || !reflect.DeepEqual(bindings[0].Path, []int{0}) {
		t.Errorf("binding = %+v", bindings[0])
	}
}

func TestWalkNoClassedElement(t *testing.T) {
	bindings, roots := Walk("just text {{ x }}", "v-e1e1e1e1")
	if roots != 0 || bindings != nil {
		t.Errorf("expected no roots and nil bindings, got %d, %+v", roots, bindings)
	}
}

func TestWalkContentOutsideRootsIgnored(t *testing.T) {
	bindings, roots := Walk(`<div class="v-f2f2f2f2"><p>{{ a }}</p></div><aside>{{ outside }}</aside>`, "v-f2f2f2f2")
	if roots != 1 {
		t.Fatalf("roots = %d, want 1", roots)
	}
	if len(bindings) != 1 {
		t.Fatalf("expected 1 binding, got %d: %+v", len(bindings), bindings)
	}
	if bindings[0].Expr != "{{ a }}" {
		t.Errorf("binding = %+v", bindings[0])
	}
}

func TestWalkMultipleRoots(t *testing.T) {
	fragment := `<div class="v-a5a5a5a5">{{ count }}</div><span class="v-a5a5a5a5">{{ label }}</span>`
	bindings, roots := Walk(fragment, "v-a5a5a5a5")
	if roots != 2 {
		t.Fatalf("roots = %d, want 2", roots)
	}
	if len(bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d: %+v", len(bindings), bindings)
	}
	if bindings[0].Root != 0 || bindings[0].Expr != "{{ count }}" {
		t.Errorf("first binding = %+v", bindings[0])
	}
	if bindings[1].Root != 1 || bindings[1].Expr != "{{ label }}" {
		t.Errorf("second binding = %+v", bindings[1])
	}
}

func TestWalkSkipsForeignScopeSubtree(t *testing.T) {
	// An expanded child component precedes this component's own element; its
	// elements carry the child's scope class and must not become roots here.
	fragment := `<div class="v-child567"><p class="v-child567">card</p></div><p class="v-self9999">{{ count }}</p>`
	bindings, roots := Walk(fragment, "v-self9999")
	if roots != 1 {
		t.Fatalf("roots = %d, want 1", roots)
	}
	if len(bindings) != 1 {
		t.Fatalf("expected 1 binding, got %d: %+v", len(bindings), bindings)
	}
	b := bindings[0]
	if b.Root != 0 || b.Expr != "{{ count }}" || len(b.Path) != 0 {
		t.Errorf("binding = %+v", b)
	}
}

func TestWalkNestedClassedElementsShareRoot(t *testing.T) {
	fragment := `<div class="v-b4b4b4b4"><p class="v-b4b4b4b4">{{ n }}</p></div>`
	bindings, roots := Walk(fragment, "v-b4b4b4b4")
	if roots != 1 {
		t.Fatalf("roots = %d, want 1 (nested classed element is not a root)", roots)
	}
	if len(bindings) != 1 || !reflect.DeepEqual(bindings[0].Path, []int{0}) {
		t.Errorf("bindings = %+v", bindings)
	}
}

package signals

import (
	"strings"
	"testing"
)

func TestAnalyzeRefs(t *testing.T) {
	a, err := Analyze("const count = ref(0)\nconst name = ref('hello')\n")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(a.Signals) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(a.Signals))
	}
	if a.Signals[0].Name != "count" || a.Signals[0].Initial != "0" {
		t.Errorf("signal 0 = %+v", a.Signals[0])
	}
	if a.Signals[1].Name != "name" || a.Signals[1].Initial != "'hello'" {
		t.Errorf("signal 1 = %+v", a.Signals[1])
	}
}

func TestAnalyzeComputed(t *testing.T) {
	a, err := Analyze("const count = ref(1)\nconst doubled = computed(() => count * 2)\n")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(a.Computeds) != 1 {
		t.Fatalf("expected 1 computed, got %d", len(a.Computeds))
	}
	c := a.Computeds[0]
	if c.Name != "doubled" || c.Body != "count * 2" || c.Block {
		t.Errorf("computed = %+v", c)
	}
}

func TestAnalyzeComputedBlockBody(t *testing.T) {
	a, err := Analyze("const total = computed(() => { return a + b; })\n")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(a.Computeds) != 1 {
		t.Fatalf("expected 1 computed, got %d", len(a.Computeds))
	}
	c := a.Computeds[0]
	if !c.Block || c.Body != "return a + b;" {
		t.Errorf("computed = %+v", c)
	}
}

func TestAnalyzeFunction(t *testing.T) {
	a, err := Analyze("const count = ref(0)\nfunction increment() { count++ }\n")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(a.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(a.Functions))
	}
	f := a.Functions[0]
	if f.Name != "increment" || f.Params != "" || f.Body != "count++" {
		t.Errorf("function = %+v", f)
	}
}

func TestAnalyzeFunctionNestedBraces(t *testing.T) {
	a, err := Analyze("function toggle(flag) { if (flag) { open() } else { close() } }\n")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(a.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(a.Functions))
	}
	f := a.Functions[0]
	if f.Params != "flag" {
		t.Errorf("params = %q", f.Params)
	}
	if f.Body != "if (flag) { open() } else { close() }" {
		t.Errorf("body = %q", f.Body)
	}
}

func TestAnalyzeWatch(t *testing.T) {
	tests := []struct {
		name   string
		script string
		source string
		params string
		body   string
	}{
		{
			name:   "arrow",
			script: "watch(count, (newVal, oldVal) => { console.log(newVal) })",
			source: "count",
			params: "newVal, oldVal",
			body:   "console.log(newVal)",
		},
		{
			name:   "function keyword",
			script: "watch(count, function(n) { log(n) })",
			source: "count",
			params: "n",
			body:   "log(n)",
		},
		{
			name:   "bare parameter",
			script: "watch(count, n => log(n))",
			source: "count",
			params: "n",
			body:   "log(n)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Analyze(tt.script)
			if err != nil {
				t.Fatalf("Analyze returned error: %v", err)
			}
			if len(a.Watches) != 1 {
				t.Fatalf("expected 1 watch, got %d", len(a.Watches))
			}
			w := a.Watches[0]
			if w.Source != tt.source || w.Params != tt.params || w.Body != tt.body {
				t.Errorf("watch = %+v", w)
			}
		})
	}
}

func TestAnalyzeLet(t *testing.T) {
	a, err := Analyze("let message = 'hello'\nlet total = 1 + 2;\n")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(a.Signals) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(a.Signals))
	}
	if a.Signals[0].Name != "message" || a.Signals[0].Initial != "'hello'" {
		t.Errorf("signal 0 = %+v", a.Signals[0])
	}
	if a.Signals[1].Name != "total" || a.Signals[1].Initial != "1 + 2" {
		t.Errorf("signal 1 = %+v", a.Signals[1])
	}
}

func TestAnalyzeSkipsNestedDeclarations(t *testing.T) {
	script := "function setup() { const inner = ref(1) }\nif (x) { let hidden = 2 }\n"
	a, err := Analyze(script)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(a.Signals) != 0 {
		t.Errorf("expected no signals, got %+v", a.Signals)
	}
}

func TestAnalyzeSkipsCommentsAndStrings(t *testing.T) {
	script := "// const fake = ref(1)\n/* const other = ref(2) */\nconst s = ref('a(b')\n"
	a, err := Analyze(script)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(a.Signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(a.Signals))
	}
	if a.Signals[0].Initial != "'a(b'" {
		t.Errorf("initial = %q", a.Signals[0].Initial)
	}
}

func TestAnalyzeTemplateLiteralInitial(t *testing.T) {
	a, err := Analyze("const greeting = ref(`hi ${user})`)\n")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(a.Signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(a.Signals))
	}
	if a.Signals[0].Initial != "`hi ${user})`" {
		t.Errorf("initial = %q", a.Signals[0].Initial)
	}
}

func TestAnalyzeUnbalancedRef(t *testing.T) {
	_, err := Analyze("const count = ref((1 + 2\n")
	if err == nil {
		t.Fatal("expected error for unbalanced ref call")
	}
	if !strings.Contains(err.Error(), "unbalanced") {
		t.Errorf("error = %v", err)
	}
	if !strings.Contains(err.Error(), "count") {
		t.Errorf("error should name the declaration: %v", err)
	}
}

func TestAnalyzeUnbalancedWatch(t *testing.T) {
	_, err := Analyze("watch(count, (v) => { v\n")
	if err == nil {
		t.Fatal("expected error for unbalanced watch call")
	}
	if !strings.Contains(err.Error(), "unbalanced") {
		t.Errorf("error = %v", err)
	}
}

func TestReactiveNames(t *testing.T) {
	a, err := Analyze("const count = ref(0)\nlet msg = 'x'\nconst d = computed(() => count * 2)\n")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	got := a.ReactiveNames()
	want := []string{"count", "msg", "d"}
	if len(got) != len(want) {
		t.Fatalf("names = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

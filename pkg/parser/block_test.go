package parser

import (
	"strings"
	"testing"
)

func TestParseBlocksBasic(t *testing.T) {
	source := `
<script setup lang="ts">
import Hello from './hello.van'
</script>

<template>
  <div>Hello {{ name }}</div>
</template>

<style scoped>
.hello { color: red; }
</style>
`
	b, err := ParseBlocks(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(b.Template, "Hello {{ name }}") {
		t.Errorf("template missing interpolation: %q", b.Template)
	}
	if !strings.Contains(b.ScriptSetup, "import Hello") {
		t.Errorf("script setup missing import: %q", b.ScriptSetup)
	}
	if !strings.Contains(b.Style, "color: red") {
		t.Errorf("style missing rule: %q", b.Style)
	}
	if !b.StyleScoped {
		t.Errorf("style should be scoped")
	}
	if b.ScriptServer != "" {
		t.Errorf("unexpected server script: %q", b.ScriptServer)
	}
	if len(b.Imports) != 1 || b.Imports[0].KebabTag != "hello" {
		t.Errorf("got imports %v, want one hello import", b.Imports)
	}
}

func TestParseBlocksServerScript(t *testing.T) {
	source := `
<template>
  <div></div>
</template>

<script setup lang="ts">
// client code
</script>

<script server>
// server code
</script>
`
	b, err := ParseBlocks(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Template == "" {
		t.Errorf("template not extracted")
	}
	if !strings.Contains(b.ScriptSetup, "client code") {
		t.Errorf("got script setup %q", b.ScriptSetup)
	}
	if !strings.Contains(b.ScriptServer, "server code") {
		t.Errorf("got script server %q", b.ScriptServer)
	}
}

func TestParseBlocksEmpty(t *testing.T) {
	b, err := ParseBlocks("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Template != "" || b.ScriptSetup != "" || b.ScriptServer != "" || b.Style != "" {
		t.Errorf("empty source should yield empty block, got %+v", b)
	}
}

func TestParseBlocksNestedTemplateSlots(t *testing.T) {
	source := `
<template>
  <default-layout>
    <template #title>{{ title }}</template>
    <h1>Welcome</h1>
  </default-layout>
</template>

<script setup lang="ts">
import DefaultLayout from '../layouts/default.van'
</script>
`
	b, err := ParseBlocks(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"<default-layout>", "</default-layout>", "<template #title>", "<h1>Welcome</h1>"} {
		if !strings.Contains(b.Template, want) {
			t.Errorf("template missing %q: %q", want, b.Template)
		}
	}
}

func TestParseBlocksCommentedTags(t *testing.T) {
	source := `
<template>
  <!-- </template> inside a comment must not close the block -->
  <p>kept</p>
</template>
`
	b, err := ParseBlocks(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(b.Template, "<p>kept</p>") {
		t.Errorf("got template %q", b.Template)
	}
}

func TestParseBlocksUnbalanced(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"missing close", "<template><div>hi</div>"},
		{"stray close", "</style>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseBlocks(tt.source); err == nil {
				t.Errorf("expected error for %q", tt.source)
			}
		})
	}
}

func TestParseBlocksStyleScopedDetection(t *testing.T) {
	tests := []struct {
		name   string
		source string
		scoped bool
	}{
		{"scoped", "<template><div>Hi</div></template>\n<style scoped>\n.card { color: red; }\n</style>", true},
		{"unscoped", "<template><div>Hi</div></template>\n<style>\n.card { color: blue; }\n</style>", false},
		{"scoped with lang", "<template><div>Hi</div></template>\n<style scoped lang=\"css\">\nh1 { font-size: 2rem; }\n</style>", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBlocks(tt.source)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.StyleScoped != tt.scoped {
				t.Errorf("got scoped=%v, want %v", b.StyleScoped, tt.scoped)
			}
		})
	}
}

func TestParseBlocksIncludesProps(t *testing.T) {
	source := `
<script setup lang="ts">
defineProps({ title: String, count: Number })
</script>

<template>
  <h1>{{ title }}</h1>
</template>
`
	b, err := ParseBlocks(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Props) != 2 {
		t.Fatalf("got %d props, want 2", len(b.Props))
	}
	if b.Props[0].Name != "title" || b.Props[1].Name != "count" {
		t.Errorf("got props %v", b.Props)
	}
}

func TestParseBlocksDuplicateProps(t *testing.T) {
	source := `
<script setup>
defineProps({ title: String, title: Number })
</script>
<template><div/></template>
`
	if _, err := ParseBlocks(source); err == nil {
		t.Errorf("expected duplicate prop error")
	}
}

func TestParseBlocksIgnoresUnknownBlocks(t *testing.T) {
	source := `
<docs>free text</docs>
<template><div>Hi</div></template>
`
	b, err := ParseBlocks(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(b.Template, "<div>Hi</div>") {
		t.Errorf("got template %q", b.Template)
	}
}

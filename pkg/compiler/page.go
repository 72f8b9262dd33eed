package compiler

import (
	"strings"

	verrors "github.com/van-dev/van/internal/errors"
	"github.com/van-dev/van/pkg/scope"
	"github.com/van-dev/van/pkg/signals"
)

// Result is a compiled page: the final document and, in separated-assets
// mode, the named CSS/JS files it references.
type Result struct {
	HTML   string
	Assets map[string]string
}

// Compile runs the full pipeline: resolve the component graph, render the
// entry page, generate client scripts, and assemble the document. With an
// AssetPrefix the styles and scripts become content-addressed assets linked
// from the document; otherwise they are inlined.
func Compile(entryPath string, files map[string]string, opts Options) (*Result, error) {
	g, err := Resolve(entryPath, files)
	if err != nil {
		return nil, err
	}

	html, styles, modules, err := RenderPage(g, opts)
	if err != nil {
		return nil, err
	}

	css := strings.TrimSpace(strings.Join(styles, "\n\n"))
	js, err := buildScripts(modules, files)
	if err != nil {
		return nil, err
	}

	res := &Result{Assets: make(map[string]string)}
	if opts.AssetPrefix != "" {
		prefix := opts.AssetPrefix
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		if css != "" {
			name := "van-" + scope.Hash(css) + ".css"
			res.Assets[name] = css
			html = injectIntoHead(html, `<link rel="stylesheet" href="`+prefix+name+`">`)
		}
		if js != "" {
			name := "van-" + scope.Hash(js) + ".js"
			res.Assets[name] = js
			html = injectBeforeBodyClose(html, `<script src="`+prefix+name+`"></script>`)
		}
	} else {
		if css != "" {
			html = injectIntoHead(html, "<style>\n"+css+"\n</style>")
		}
		if js != "" {
			html = injectBeforeBodyClose(html, "<script>\n"+js+"</script>")
		}
	}

	res.HTML = html
	return res, nil
}

// buildScripts generates per-component wiring and prepends the runtime when
// any component produced one.
func buildScripts(modules []*SignalModule, files map[string]string) (string, error) {
	var parts []string
	for _, m := range modules {
		var deps []signals.Module
		for _, imp := range m.Imports {
			if imp.IsTypeOnly {
				continue
			}
			path := ResolvePath(m.Path, imp.Path)
			src, ok := files[path]
			if !ok {
				// Unresolvable script imports are dropped with the import
				// line; the browser cannot load them from a virtual map.
				continue
			}
			deps = append(deps, signals.Module{Path: imp.Path, Source: src})
		}

		script, err := signals.Generate(signals.Input{
			ScopeID:  m.ScopeID,
			Script:   m.ScriptSetup,
			Fragment: m.Fragment,
			Modules:  deps,
		})
		if err != nil {
			if ve, ok := err.(*verrors.VanError); ok {
				return "", ve.WithPath(m.Path)
			}
			return "", err
		}
		if script != "" {
			parts = append(parts, script)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return signals.Runtime() + "\n" + strings.Join(parts, "\n"), nil
}

// injectIntoHead places the snippet before </head>. Fragments without a
// head get it prepended so styles still apply before the content.
func injectIntoHead(html, snippet string) string {
	if idx := indexFold(html, "</head>"); idx >= 0 {
		return html[:idx] + snippet + "\n" + html[idx:]
	}
	return snippet + "\n" + html
}

// injectBeforeBodyClose places the snippet before </body>, or appends it
// for fragments.
func injectBeforeBodyClose(html, snippet string) string {
	if idx := indexFold(html, "</body>"); idx >= 0 {
		return html[:idx] + snippet + "\n" + html[idx:]
	}
	return html + "\n" + snippet
}

func indexFold(s, sub string) int {
	return strings.Index(strings.ToLower(s), sub)
}

package compiler

import (
	"strings"

	verrors "github.com/van-dev/van/internal/errors"
	"github.com/van-dev/van/pkg/parser"
)

// MaxDepth is the import recursion bound, counting the entry as depth 1.
const MaxDepth = 10

// Graph is the resolved component graph: every transitively imported
// component keyed by normalized path, plus a stable depth-first pre-order.
type Graph struct {
	// Entry is the normalized entry path.
	Entry string

	// Components maps normalized paths to parsed blocks.
	Components map[string]*parser.VanBlock

	// Order lists paths in depth-first pre-order by import appearance.
	Order []string
}

// Resolve parses the entry file and every transitively imported component.
// Missing files, import cycles, and graphs deeper than MaxDepth are fatal.
func Resolve(entryPath string, files map[string]string) (*Graph, error) {
	g := &Graph{
		Entry:      normalizePath(entryPath),
		Components: make(map[string]*parser.VanBlock),
	}
	r := &resolver{graph: g, files: files, onStack: make(map[string]bool)}
	if err := r.visit(g.Entry, "", 1); err != nil {
		return nil, err
	}
	return g, nil
}

type resolver struct {
	graph   *Graph
	files   map[string]string
	onStack map[string]bool
	stack   []string
}

func (r *resolver) visit(path, importer string, depth int) error {
	if r.onStack[path] {
		return verrors.New(verrors.CategoryResolve, "import cycle detected: %s", strings.Join(cycleChain(r.stack, path), " -> "))
	}
	if _, ok := r.graph.Components[path]; ok {
		return nil
	}
	if depth > MaxDepth {
		return verrors.New(verrors.CategoryResolve, "import depth exceeded maximum of %d", MaxDepth).
			WithPath(path).WithImporter(importer).WithDepth(depth)
	}

	source, ok := r.files[path]
	if !ok {
		if importer == "" {
			return verrors.New(verrors.CategoryResolve, "entry file not found").WithPath(path)
		}
		return verrors.New(verrors.CategoryResolve, "component not found").WithPath(path).WithImporter(importer)
	}

	block, err := parser.ParseBlocks(source)
	if err != nil {
		if ve, ok := err.(*verrors.VanError); ok {
			return ve.WithPath(path)
		}
		return err
	}

	r.graph.Components[path] = block
	r.graph.Order = append(r.graph.Order, path)

	r.onStack[path] = true
	r.stack = append(r.stack, path)
	for _, imp := range block.Imports {
		child := ResolvePath(path, imp.Path)
		if err := r.visit(child, path, depth+1); err != nil {
			return err
		}
	}
	r.stack = r.stack[:len(r.stack)-1]
	delete(r.onStack, path)

	return nil
}

// cycleChain returns the descent stack from the first occurrence of path,
// closed with path itself.
func cycleChain(stack []string, path string) []string {
	for i, p := range stack {
		if p == path {
			chain := make([]string, 0, len(stack)-i+1)
			chain = append(chain, stack[i:]...)
			return append(chain, path)
		}
	}
	return []string{path, path}
}

// ResolvePath resolves an import path against the importing file's path
// using POSIX semantics. Paths starting with @ reference packages and are
// returned as-is.
func ResolvePath(currentFile, importPath string) string {
	if strings.HasPrefix(importPath, "@") {
		return importPath
	}
	dir := ""
	if pos := strings.LastIndexByte(currentFile, '/'); pos >= 0 {
		dir = currentFile[:pos]
	}
	if dir == "" {
		return normalizePath(importPath)
	}
	return normalizePath(dir + "/" + importPath)
}

// normalizePath resolves . and .. segments and drops empty ones.
func normalizePath(path string) string {
	var parts []string
	for _, part := range strings.Split(path, "/") {
		switch part {
		case ".", "":
		case "..":
			if len(parts) > 0 {
				parts = parts[:len(parts)-1]
			}
		default:
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "/")
}

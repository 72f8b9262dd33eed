package project

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/van-dev/van/internal/config"
	verrors "github.com/van-dev/van/internal/errors"
)

// sourceExts are the extensions collected into the virtual file map.
var sourceExts = map[string]bool{
	".van": true,
	".ts":  true,
	".tsx": true,
	".js":  true,
	".jsx": true,
	".css": true,
}

// Project is a loaded source tree.
type Project struct {
	Config *config.Config

	// Files maps POSIX paths relative to the src directory to contents.
	Files map[string]string

	// Origins maps the same keys to on-disk paths, for debug comments and
	// error reporting.
	Origins map[string]string
}

// Collect reads every source file under the project's src directory. Keys
// use forward slashes regardless of platform so they match import paths.
func Collect(cfg *config.Config) (*Project, error) {
	p := &Project{
		Config:  cfg,
		Files:   make(map[string]string),
		Origins: make(map[string]string),
	}

	root := cfg.SrcPath()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !sourceExts[filepath.Ext(path)] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		p.Files[key] = string(data)
		p.Origins[key] = path
		return nil
	})
	if err != nil {
		return nil, verrors.Wrap(verrors.CategoryConfig, err, "collecting sources from %s", root)
	}

	return p, nil
}

// PageEntries lists the .van files under the pages directory, as virtual
// file keys, sorted for stable build order.
func (p *Project) PageEntries() []string {
	prefix := p.pagesPrefix()
	var entries []string
	for key := range p.Files {
		if !strings.HasSuffix(key, ".van") {
			continue
		}
		if prefix == "" || strings.HasPrefix(key, prefix) {
			entries = append(entries, key)
		}
	}
	sort.Strings(entries)
	return entries
}

// PageName derives the output page name for an entry: pages/about.van
// becomes about.html, nested dirs are preserved.
func (p *Project) PageName(entry string) string {
	name := strings.TrimPrefix(entry, p.pagesPrefix())
	return strings.TrimSuffix(name, ".van") + ".html"
}

// pagesPrefix is the pages directory relative to src, with a trailing
// slash, or "" when pages is the src root.
func (p *Project) pagesPrefix() string {
	rel, err := filepath.Rel(p.Config.SrcPath(), p.Config.PagesPath())
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel) + "/"
}

// MockFor loads mock data for a page entry from the project's mock
// directory: mock/<page>.json when present, mock/index.json otherwise.
// A missing mock directory is not an error; it returns nil data.
func (p *Project) MockFor(entry string) (map[string]any, error) {
	mockDir := filepath.Join(p.Config.Dir(), "mock")
	page := strings.TrimSuffix(strings.TrimPrefix(entry, p.pagesPrefix()), ".van")

	for _, name := range []string{page + ".json", "index.json"} {
		data, err := os.ReadFile(filepath.Join(mockDir, filepath.FromSlash(name)))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, verrors.Wrap(verrors.CategoryConfig, err, "reading mock data %s", name)
		}
		return ParseMockJSON(string(data))
	}
	return nil, nil
}

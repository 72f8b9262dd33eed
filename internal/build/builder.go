package build

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/van-dev/van/internal/config"
	verrors "github.com/van-dev/van/internal/errors"
	"github.com/van-dev/van/internal/project"
	"github.com/van-dev/van/pkg/compiler"
)

// PageResult describes one built page.
type PageResult struct {
	// Entry is the source page, relative to src.
	Entry string

	// Output is the written HTML file, relative to the output directory.
	Output string

	// Assets are the asset file names the page references.
	Assets []string
}

// Result contains the build output.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// OutputDir is the absolute output directory.
	OutputDir string

	// Pages are the built pages in entry order.
	Pages []PageResult

	// AssetCount is the number of distinct asset files written.
	AssetCount int
}

// Options configures the builder.
type Options struct {
	// Clean removes the output directory before building.
	Clean bool

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Builder performs production builds.
type Builder struct {
	config  *config.Config
	options Options
}

// New creates a builder for the given project config.
func New(cfg *config.Config, options Options) *Builder {
	return &Builder{config: cfg, options: options}
}

// Build compiles every page entry and writes the static site. Pages land
// under <output>/<name>/, assets under <output>/<name>/assets/, matching
// the default asset URL prefix "/<name>/assets".
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()

	siteDir := filepath.Join(b.config.OutputPath(), b.config.Name)
	assetDir := filepath.Join(siteDir, "assets")

	if b.options.Clean {
		b.progress("Cleaning output directory...")
		if err := os.RemoveAll(b.config.OutputPath()); err != nil {
			return nil, verrors.Wrap(verrors.CategoryConfig, err, "cleaning %s", b.config.OutputPath())
		}
	}
	if err := os.MkdirAll(assetDir, 0o755); err != nil {
		return nil, verrors.Wrap(verrors.CategoryConfig, err, "creating %s", assetDir)
	}

	b.progress("Collecting sources...")
	p, err := project.Collect(b.config)
	if err != nil {
		return nil, err
	}
	entries := p.PageEntries()
	if len(entries) == 0 {
		return nil, verrors.New(verrors.CategoryConfig, "no .van pages found under %s", b.config.PagesPath())
	}

	result := &Result{OutputDir: b.config.OutputPath()}
	written := make(map[string]bool)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.progress("Building " + entry + "...")

		compiled, err := compiler.Compile(entry, p.Files, compiler.Options{
			AssetPrefix: b.config.AssetPrefix(),
			Debug:       b.config.Build.Debug,
			FileOrigins: p.Origins,
		})
		if err != nil {
			return nil, err
		}

		html := compiled.HTML
		mock, err := p.MockFor(entry)
		if err != nil {
			return nil, err
		}
		if mock != nil {
			html = project.InterpolateMock(html, mock)
		}

		page := PageResult{Entry: entry, Output: p.PageName(entry)}
		outPath := filepath.Join(siteDir, filepath.FromSlash(page.Output))
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return nil, verrors.Wrap(verrors.CategoryConfig, err, "creating directory for %s", page.Output)
		}
		if err := os.WriteFile(outPath, []byte(html), 0o644); err != nil {
			return nil, verrors.Wrap(verrors.CategoryConfig, err, "writing %s", page.Output)
		}

		for name, content := range compiled.Assets {
			page.Assets = append(page.Assets, name)
			if written[name] {
				continue
			}
			if err := os.WriteFile(filepath.Join(assetDir, name), []byte(content), 0o644); err != nil {
				return nil, verrors.Wrap(verrors.CategoryConfig, err, "writing asset %s", name)
			}
			written[name] = true
		}
		sort.Strings(page.Assets)

		result.Pages = append(result.Pages, page)
	}

	result.AssetCount = len(written)
	result.Duration = time.Since(start)
	return result, nil
}

func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/van-dev/van/internal/build"
	"github.com/van-dev/van/internal/config"
)

func buildCmd() *cobra.Command {
	var (
		clean bool
		debug bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the static production output",
		Long: `Build every page under the pages directory into static HTML with
separated, content-addressed CSS and JS assets.

Output lands under <output>/<name>/ so the default asset prefix
"/<name>/assets" resolves when the output directory is served as the
site root.

Examples:
  van build
  van build --clean
  van build --debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(clean, debug)
		},
	}

	cmd.Flags().BoolVar(&clean, "clean", false, "Remove the output directory first")
	cmd.Flags().BoolVar(&debug, "debug", false, "Keep component boundary comments in output")

	return cmd
}

func runBuild(clean, debug bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}
	if debug {
		cfg.Build.Debug = true
	}

	printBanner()
	fmt.Println("  build")
	fmt.Println()

	builder := build.New(cfg, build.Options{
		Clean:      clean,
		OnProgress: func(step string) { info(step) },
	})

	result, err := builder.Build(context.Background())
	if err != nil {
		return err
	}

	fmt.Println()
	for _, page := range result.Pages {
		success("%s → %s", page.Entry, page.Output)
	}
	success("%d pages, %d assets in %s", len(result.Pages), result.AssetCount, result.Duration.Round(1000000))
	info("output: %s", result.OutputDir)
	return nil
}

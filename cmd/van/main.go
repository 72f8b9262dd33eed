package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/van-dev/van/pkg/protocol"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ╦┌─┐┌┐┌
  ╚╗╔╝├─┤│││
   ╚╝ ┴ ┴┘└┘
`

func main() {
	var daemon bool

	rootCmd := &cobra.Command{
		Use:   "van",
		Short: "Compile .van single-file components to HTML and reactive JS",
		Long: `Van compiles Vue-style single-file components into server-renderable
HTML and client-side signal wiring.

Invoked without a subcommand it speaks the JSON compile envelope: one
request object on stdin, one response object on stdout. With --daemon it
processes one request per input line until stdin closes, which lets a
host process keep a single compiler alive across many pages.

Examples:
  van < request.json
  van --daemon
  van dev
  van build`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if daemon {
				return protocol.RunDaemon(os.Stdin, os.Stdout, protocol.Compile)
			}
			return protocol.RunOnce(os.Stdin, os.Stdout, protocol.Compile)
		},
	}

	rootCmd.Flags().BoolVar(&daemon, "daemon", false, "Process one JSON request per stdin line")

	rootCmd.AddCommand(
		devCmd(),
		buildCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the Van ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

const usage = `llmjobs records LLM completions as queryable jobs.

Usage:
  llmjobs serve [flags]

Commands:
  serve    Start the HTTP server
  help     Show this help message

Run "llmjobs serve --help" for serve flags.`

// Execute runs the CLI dispatcher with the provided arguments.
func Execute(ctx context.Context, args []string) error {
	return execute(ctx, args, os.Stdout)
}

func execute(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return printUsage(out)
	}

	switch args[0] {
	case "serve":
		return serve(ctx, args[1:])
	case "help", "-h", "--help":
		return printUsage(out)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
	}
}

func printUsage(out io.Writer) error {
	fmt.Fprintln(out, strings.TrimSpace(usage))
	return nil
}

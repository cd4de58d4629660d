package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, env *cliEnv, args []string) error
}

// cliEnv carries the streams every command writes to.
type cliEnv struct {
	stdout io.Writer
	stderr io.Writer
}

var commands = []command{
	{name: "serve", summary: "serve the form over HTTP", run: runServe},
	{name: "fill", summary: "fill the form in the terminal and print the payload", run: runFill},
	{name: "render", summary: "render the form as HTML", run: runRender},
	{name: "export", summary: "write the schema as JSON or YAML", run: runExport},
	{name: "lint", summary: "check schema documents for problems", run: runLint},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], &cliEnv{stdout: os.Stdout, stderr: os.Stderr}))
}

func run(ctx context.Context, args []string, env *cliEnv) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(env.stderr)
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	for _, cmd := range commands {
		if cmd.name != args[0] {
			continue
		}
		err := cmd.run(ctx, env, args[1:])
		switch {
		case err == nil:
			return 0
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, errUsage):
			return 2
		default:
			fmt.Fprintf(env.stderr, "%s: %v\n", cmd.name, err)
			return 1
		}
	}

	fmt.Fprintf(env.stderr, "unknown command %q\n\n", args[0])
	usage(env.stderr)
	return 2
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s <command> [flags]\n\nCommands:\n", filepath.Base(os.Args[0]))
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintf(w, "\nRun '%s <command> -h' for command flags.\n", filepath.Base(os.Args[0]))
}

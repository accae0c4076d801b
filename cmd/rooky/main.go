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

	"github.com/pkg/profile"
	"go.uber.org/zap"

	"github.com/park285/rooky/internal/obslog"
)

const usage = `usage: rooky [-profile cpu|mem] <command> [flags] [args]

commands:
  parse      re-emit games from PGN input in normalized form
  positions  print the FEN of every position reached
  classify   name the opening of each game
  info       print players, result, termination, time control and country
  play       append moves (SAN or UCI) to a game and print it
  import     store games from a file, lichess or chess.com
  list       list stored games
  show       print a stored game
  delete     remove a stored game
`

var errUsage = errors.New("usage")

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "rooky: logger: %v\n", err)
	}
	defer obslog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	obslog.Sync()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rooky", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	prof := fs.String("profile", "", "write a cpu or mem profile")
	profDir := fs.String("profile-dir", ".", "directory for profile output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	switch *prof {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(filepath.Clean(*profDir)), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(filepath.Clean(*profDir)), profile.Quiet).Stop()
	default:
		fmt.Fprintf(stderr, "rooky: unknown profile %q\n", *prof)
		return 2
	}

	env := &cmdEnv{stdin: stdin, stdout: stdout, stderr: stderr}
	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "rooky: unknown command %q\n", name)
		fs.Usage()
		return 2
	}
	if err := cmd(ctx, env, rest); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			return 2
		}
		obslog.L().Error("command_failed", zap.String("command", name), zap.Error(err))
		fmt.Fprintf(stderr, "rooky %s: %v\n", name, err)
		return 1
	}
	return 0
}

// Command menulet-pick shows lines read from stdin in the menu daemon and
// prints the one the user selects.
//
// Usage:
//
//	ls | menulet-pick
//	menulet-pick -words "'first option' second third"
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	menulet "github.com/Paranoid-AF/menulet"
	"github.com/Paranoid-AF/menulet/wire"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

// run returns the exit status so deferred cleanup happens before exit.
func run(args []string, stdin io.Reader, stdout io.Writer) int {
	fs := flag.NewFlagSet("menulet-pick", flag.ContinueOnError)
	address := fs.String("address", "", "daemon address (host:port or unix:/path)")
	dialectName := fs.String("dialect", "", "wire dialect: keydata or tagged")
	matcherName := fs.String("matcher", "", "daemon matcher: none or fuzzy")
	words := fs.String("words", "", "take options from a shell-quoted string instead of stdin")
	verbose := fs.Bool("verbose", false, "log every message to stderr")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(stdout, "menulet-pick", Version)
		return 0
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := menulet.LoadConfig()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		cfg = menulet.DefaultConfig()
	}

	var options []string
	if *words != "" {
		options, err = splitWords(*words)
	} else {
		options, err = readOptions(stdin)
	}
	if err != nil {
		slog.Error("failed to read options", "error", err)
		return 2
	}

	if *address == "" {
		*address = menulet.ResolveAddress(cfg)
	}
	if *dialectName == "" {
		*dialectName = menulet.ResolveDialect(cfg)
	}
	if *matcherName == "" {
		*matcherName = cfg.Pick.Matcher
	}
	dialect, err := wire.DialectByName(*dialectName)
	if err != nil {
		slog.Error("invalid options", "error", err)
		return 2
	}
	matcher, err := menulet.ParseMatcher(*matcherName)
	if err != nil {
		slog.Error("invalid options", "error", err)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), menulet.DialTimeout(cfg))
	conn, err := wire.Dial(ctx, *address, dialect)
	cancel()
	if err != nil {
		slog.Error("failed to connect", "address", *address, "error", err)
		return 1
	}
	defer conn.Close()

	choice, ok, err := pick(conn, options, matcher)
	if err != nil {
		slog.Error("pick failed", "error", err)
		return 1
	}
	if !ok {
		return 1
	}
	fmt.Fprintln(stdout, choice)
	return 0
}

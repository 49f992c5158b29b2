// Command menulet-calc is a calculator driven by the menu daemon.
// Each line typed into the daemon's input field is evaluated as an
// expression; submitting an empty selection keeps the result and opens a
// new line, and selecting a row prints its result and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	menulet "github.com/Paranoid-AF/menulet"
	"github.com/Paranoid-AF/menulet/evaluate"
	"github.com/Paranoid-AF/menulet/ledger"
	"github.com/Paranoid-AF/menulet/session"
	"github.com/Paranoid-AF/menulet/wire"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type flags struct {
	address string
	dialect string
	matcher string
	verbose bool
	version bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run returns the exit status so deferred cleanup happens before exit.
func run(args []string, stdout io.Writer) int {
	var f flags
	fs := flag.NewFlagSet("menulet-calc", flag.ContinueOnError)
	fs.StringVar(&f.address, "address", "", "daemon address (host:port or unix:/path)")
	fs.StringVar(&f.dialect, "dialect", "", "wire dialect: keydata or tagged")
	fs.StringVar(&f.matcher, "matcher", "", "daemon matcher: none or fuzzy")
	fs.BoolVar(&f.verbose, "verbose", false, "log every message to stderr")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if f.version {
		fmt.Fprintln(stdout, "menulet-calc", Version)
		return 0
	}

	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := menulet.LoadConfig()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		cfg = menulet.DefaultConfig()
	}
	for _, w := range menulet.ValidateConfig(cfg) {
		slog.Warn("config", "warning", w)
	}

	opts, err := resolveOptions(cfg, f)
	if err != nil {
		slog.Error("invalid options", "error", err)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), menulet.DialTimeout(cfg))
	conn, err := wire.Dial(ctx, opts.address, opts.dialect)
	cancel()
	if err != nil {
		slog.Error("failed to connect", "address", opts.address, "error", err)
		return 1
	}
	defer conn.Close()

	// Closing the connection on a signal makes the session return.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		slog.Info("shutting down")
		conn.Close()
	}()

	eval := evaluate.New(menulet.CacheTTL(cfg))
	defer eval.Close()

	sess := session.New(conn, eval, session.Options{
		Registration: opts.registration,
		SendStop:     menulet.SendStopEnabled(cfg),
	})
	out, err := sess.Run()
	if err != nil {
		slog.Error("session failed", "error", err)
		return 1
	}
	if out.Cancelled {
		return 1
	}
	fmt.Fprintln(stdout, ledger.FormatResult(out.Result))
	return 0
}

type options struct {
	address      string
	dialect      wire.Dialect
	registration menulet.Registration
}

// resolveOptions merges flags over env over the config file.
func resolveOptions(cfg *menulet.Config, f flags) (options, error) {
	var opts options

	opts.address = menulet.ResolveAddress(cfg)
	if f.address != "" {
		opts.address = f.address
	}

	dialectName := menulet.ResolveDialect(cfg)
	if f.dialect != "" {
		dialectName = f.dialect
	}
	dialect, err := wire.DialectByName(dialectName)
	if err != nil {
		return opts, err
	}
	opts.dialect = dialect

	matcherName := cfg.Calc.Matcher
	if f.matcher != "" {
		matcherName = f.matcher
	}
	matcher, err := menulet.ParseMatcher(matcherName)
	if err != nil {
		return opts, err
	}

	mask, err := menulet.ParseSubscription(cfg.Calc.Subscribe)
	if err != nil {
		return opts, err
	}

	opts.registration = menulet.Registration{
		SubscribeTo:     mask,
		ProtocolVersion: menulet.ProtocolVersion,
		Matcher:         matcher,
	}
	return opts, nil
}

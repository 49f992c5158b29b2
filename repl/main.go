// Command menulet-repl runs the calculator session in a local terminal,
// without a menu daemon. It is useful for trying expressions and for
// checking how the history renders.
//
// Usage:
//
//	./menulet-repl              # interactive
//	echo '2+2' | ./menulet-repl # scripted
package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	menulet "github.com/Paranoid-AF/menulet"
	"github.com/Paranoid-AF/menulet/evaluate"
	"github.com/Paranoid-AF/menulet/session"
)

const prompt = "> "

func main() {
	cfg, err := menulet.LoadConfig()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		cfg = menulet.DefaultConfig()
	}

	eval := evaluate.New(menulet.CacheTTL(cfg))
	defer eval.Close()

	readLine, out, restore, err := openInput()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer restore()

	d := &driver{machine: session.NewMachine(eval, nil), out: out}
	fmt.Fprintf(out, "menulet repl\n")
	fmt.Fprintf(out, "\ncommands:\n")
	fmt.Fprintf(out, "  <expr>     evaluate, _N refers to row N\n")
	fmt.Fprintf(out, "  (empty)    keep the result, start a new row\n")
	fmt.Fprintf(out, "  :pick N    print row N and exit\n")
	fmt.Fprintf(out, "  :quit      exit\n\n")
	d.render()

	for {
		text, err := readLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(out, "read error: %v\n", err)
			break
		}
		if d.line(text) {
			break
		}
	}
}

// openInput returns a line reader over stdin. On a terminal it switches to
// raw mode and uses a line editor that also translates output newlines.
func openInput() (readLine func() (string, error), out io.Writer, restore func(), err error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		scanner := bufio.NewScanner(os.Stdin)
		readLine = func() (string, error) {
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return "", err
				}
				return "", io.EOF
			}
			return scanner.Text(), nil
		}
		return readLine, os.Stdout, func() {}, nil
	}

	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("raw mode: %w", err)
	}
	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, prompt)
	return t.ReadLine, t, func() { term.Restore(fd, old) }, nil
}

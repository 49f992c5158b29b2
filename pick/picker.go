package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"mvdan.cc/sh/v3/shell"

	menulet "github.com/Paranoid-AF/menulet"
	"github.com/Paranoid-AF/menulet/wire"
)

const maxOptionBytes = 1 << 20

// readOptions returns one option per input line with surrounding whitespace removed.
func readOptions(r io.Reader) ([]string, error) {
	var options []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxOptionBytes)
	for scanner.Scan() {
		options = append(options, strings.TrimSpace(scanner.Text()))
	}
	return options, scanner.Err()
}

// splitWords splits a shell-quoted string into options, expanding
// environment variables the way a shell would.
func splitWords(s string) ([]string, error) {
	return shell.Fields(s, os.Getenv)
}

// pick shows options once and waits for a single selection.
// ok is false when the user dismissed the menu without choosing.
func pick(conn *wire.Conn, options []string, matcher menulet.Matcher) (choice string, ok bool, err error) {
	id, err := conn.Register(menulet.Registration{
		SubscribeTo:     menulet.SubscribeSelect,
		ProtocolVersion: menulet.ProtocolVersion,
		Matcher:         matcher,
	})
	if err != nil {
		return "", false, fmt.Errorf("register: %w", err)
	}
	slog.Info("registered", "client_id", id)

	choices := make([]menulet.Choice, len(options))
	for i, opt := range options {
		choices[i] = menulet.Choice{Text: opt, ID: i}
	}
	if err := conn.SetChoices(choices); err != nil {
		return "", false, fmt.Errorf("set choices: %w", err)
	}

	ev, err := conn.Receive()
	if err != nil {
		return "", false, fmt.Errorf("receive: %w", err)
	}
	switch ev.Kind {
	case menulet.EventSelect:
		idx, ok, err := ev.Index()
		if err != nil {
			return "", false, fmt.Errorf("%w: %v", wire.ErrProtocol, err)
		}
		if !ok {
			return "", false, nil
		}
		if idx < 0 || idx >= len(options) {
			return "", false, fmt.Errorf("%w: select %d out of range [0, %d)", wire.ErrProtocol, idx, len(options))
		}
		return options[idx], true, nil
	case menulet.EventWindowClosed:
		return "", false, nil
	}
	return "", false, fmt.Errorf("%w: unexpected event %q", wire.ErrProtocol, ev.Kind)
}

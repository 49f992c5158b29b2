package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	menulet "github.com/Paranoid-AF/menulet"
	"github.com/Paranoid-AF/menulet/ledger"
	"github.com/Paranoid-AF/menulet/session"
)

// driver stands in for the daemon: it turns typed lines into the events a
// daemon would send and prints the choice rows it would display.
type driver struct {
	machine *session.Machine
	out     io.Writer
}

// eventFor maps one typed line to a daemon event.
//
//	:q, :quit   window_closed
//	:pick N     select N
//	(empty)     select with no index
//	anything    input_change
func eventFor(line string) (menulet.Event, error) {
	switch {
	case line == ":q" || line == ":quit":
		return menulet.Event{Kind: menulet.EventWindowClosed}, nil
	case strings.HasPrefix(line, ":pick "):
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, ":pick ")))
		if err != nil {
			return menulet.Event{}, fmt.Errorf("bad index: %w", err)
		}
		return menulet.Event{Kind: menulet.EventSelect, Data: json.RawMessage(strconv.Itoa(n))}, nil
	case line == "":
		return menulet.Event{Kind: menulet.EventSelect, Data: json.RawMessage("null")}, nil
	}
	data, err := json.Marshal(line)
	if err != nil {
		return menulet.Event{}, err
	}
	return menulet.Event{Kind: menulet.EventInputChange, Data: data}, nil
}

// line handles one typed line and reports whether the session ended.
func (d *driver) line(text string) (done bool) {
	ev, err := eventFor(text)
	if err != nil {
		fmt.Fprintf(d.out, "error: %v\n", err)
		return false
	}

	step, err := d.machine.Handle(ev)
	if err != nil {
		fmt.Fprintf(d.out, "error: %v\n", err)
		return false
	}
	if step.Cancelled {
		return true
	}
	if step.Done {
		fmt.Fprintln(d.out, ledger.FormatResult(step.Result))
		return true
	}
	d.render()
	return false
}

func (d *driver) render() {
	for _, c := range d.machine.Choices() {
		fmt.Fprintf(d.out, "  %s\n", c.Text)
	}
	fmt.Fprintln(d.out)
}

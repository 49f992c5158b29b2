// Package session runs the calculator client: it turns daemon events into an
// evolving computation history and re-renders the choice list after each one.
package session

import (
	"fmt"
	"log/slog"

	menulet "github.com/Paranoid-AF/menulet"
	"github.com/Paranoid-AF/menulet/ledger"
	"github.com/Paranoid-AF/menulet/wire"
)

// Evaluator computes the value of typed input.
type Evaluator interface {
	Evaluate(text string, bindings map[string]any) (any, error)
}

// Step is the outcome of handling one event.
type Step struct {
	// ClearInput asks the caller to empty the daemon's input field.
	ClearInput bool
	// Done ends the session. With Cancelled unset, Index and Result hold the selection.
	Done      bool
	Cancelled bool
	Index     int
	Result    ledger.Result
}

// Machine is the session state: a ledger mutated by events. It does no I/O.
type Machine struct {
	ledger *ledger.Ledger
	eval   Evaluator
	log    *slog.Logger
}

// NewMachine starts a machine with a fresh ledger.
func NewMachine(eval Evaluator, log *slog.Logger) *Machine {
	if log == nil {
		log = slog.Default()
	}
	return &Machine{ledger: ledger.New(), eval: eval, log: log}
}

// Ledger exposes the history for inspection.
func (m *Machine) Ledger() *ledger.Ledger {
	return m.ledger
}

// Choices projects the current history as daemon choice rows.
func (m *Machine) Choices() []menulet.Choice {
	return ledger.Project(m.ledger)
}

// Handle applies one daemon event.
func (m *Machine) Handle(ev menulet.Event) (Step, error) {
	switch ev.Kind {
	case menulet.EventSelect:
		idx, ok, err := ev.Index()
		if err != nil {
			return Step{}, fmt.Errorf("%w: %v", wire.ErrProtocol, err)
		}
		if !ok {
			return m.clear(), nil
		}
		return m.selectEntry(idx)

	case menulet.EventInputChange:
		text, err := ev.Text()
		if err != nil {
			return Step{}, fmt.Errorf("%w: %v", wire.ErrProtocol, err)
		}
		m.inputChange(text)
		return Step{}, nil

	case menulet.EventCursorMove:
		return Step{}, nil

	case menulet.EventWindowClosed:
		return Step{Done: true, Cancelled: true}, nil
	}
	return Step{}, fmt.Errorf("%w: unexpected event %q", wire.ErrProtocol, ev.Kind)
}

// clear opens a new entry once the current one has a result.
func (m *Machine) clear() Step {
	if err := m.ledger.Advance(); err != nil {
		return Step{}
	}
	m.log.Debug("advanced", "entries", m.ledger.Len())
	return Step{ClearInput: true}
}

func (m *Machine) selectEntry(idx int) (Step, error) {
	e, ok := m.ledger.EntryAt(idx)
	if !ok {
		return Step{}, fmt.Errorf("%w: select %d out of range [0, %d)", wire.ErrProtocol, idx, m.ledger.Len())
	}
	return Step{Done: true, Index: idx, Result: e.Result}, nil
}

// inputChange re-evaluates the current entry. Success replaces the entry
// whole; failure only updates its input and staleness.
func (m *Machine) inputChange(text string) {
	cur := m.ledger.Current()
	cur.Broken = false

	v, err := m.eval.Evaluate(text, m.ledger.PriorBindings())
	if err == nil {
		m.ledger.Replace(ledger.Entry{Input: ledger.TextInput(text), Result: ledger.ValueOf(v)})
		return
	}

	m.log.Debug("evaluation failed", "error", err)
	if text == "" {
		cur.Input = ledger.NoInput()
		return
	}
	cur.Input = ledger.TextInput(text)
	if !cur.Result.IsPending() {
		cur.Broken = true
	}
}

// Package ledger holds the calculator's computation history and renders it
// as daemon choice rows.
package ledger

import (
	"errors"
	"strconv"
)

// ErrPending is returned by Advance while the current entry has no result.
var ErrPending = errors.New("current entry has no result yet")

// Input is the text typed for an entry, or nothing.
type Input struct {
	text string
	set  bool
}

// NoInput is the input of a fresh entry or of one whose text was cleared.
func NoInput() Input { return Input{} }

// TextInput wraps typed text.
func TextInput(s string) Input { return Input{text: s, set: true} }

// Text returns the typed text and whether any was set.
func (i Input) Text() (string, bool) { return i.text, i.set }

// Result is a computed value, or pending when nothing has been computed.
type Result struct {
	value any
	set   bool
}

// Pending is the result of an entry that has never evaluated successfully.
func Pending() Result { return Result{} }

// ValueOf wraps a computed value. nil is a valid value.
func ValueOf(v any) Result { return Result{value: v, set: true} }

// Value returns the computed value and whether one exists.
func (r Result) Value() (any, bool) { return r.value, r.set }

// IsPending reports whether nothing has been computed.
func (r Result) IsPending() bool { return !r.set }

// Entry is one position in the history.
type Entry struct {
	Input  Input
	Result Result
	// Broken marks an entry whose input was edited after its result was
	// computed and no longer evaluates. Never set while Result is pending.
	Broken bool
}

// Empty returns a fresh entry with no input and no result.
func Empty() Entry {
	return Entry{Input: NoInput(), Result: Pending()}
}

// Ledger is the ordered history of one session. It always holds at least one
// entry, and only the last entry is mutable.
type Ledger struct {
	entries []Entry
}

// New returns a ledger holding a single empty entry.
func New() *Ledger {
	return &Ledger{entries: []Entry{Empty()}}
}

// Len returns the number of entries, including the current one.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Current returns the last entry for in-place updates.
// The pointer is invalidated by Advance.
func (l *Ledger) Current() *Entry {
	return &l.entries[len(l.entries)-1]
}

// Replace swaps the current entry for e as a whole.
func (l *Ledger) Replace(e Entry) {
	l.entries[len(l.entries)-1] = e
}

// Advance freezes the current entry and opens a new empty one.
func (l *Ledger) Advance() error {
	if l.Current().Result.IsPending() {
		return ErrPending
	}
	l.entries = append(l.entries, Empty())
	return nil
}

// PriorBindings maps back-reference names (_0, _1, ...) to the results of
// every entry before the current one.
func (l *Ledger) PriorBindings() map[string]any {
	bindings := make(map[string]any, len(l.entries)-1)
	for i, e := range l.entries[:len(l.entries)-1] {
		if v, ok := e.Result.Value(); ok {
			bindings[BindingName(i)] = v
		}
	}
	return bindings
}

// BindingName returns the back-reference name of position i.
func BindingName(i int) string {
	return "_" + strconv.Itoa(i)
}

// EntryAt returns the entry at index i.
func (l *Ledger) EntryAt(i int) (Entry, bool) {
	if i < 0 || i >= len(l.entries) {
		return Entry{}, false
	}
	return l.entries[i], true
}

// Entries returns a copy of the history, oldest first.
func (l *Ledger) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

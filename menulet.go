// Package menulet defines the message types exchanged with a menu daemon.
// Messages are JSON-encoded and sent over a TCP or Unix socket, one per line.
package menulet

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ProtocolVersion is the daemon protocol version this client speaks.
const ProtocolVersion = 0

// Subscription is a bitmask of event classes a client asks the daemon to deliver.
type Subscription uint8

const (
	SubscribeSelect       Subscription = 1 << iota // select events
	SubscribeCursorMove                            // cursor_move events
	SubscribeInputChange                           // input_change events
	SubscribeWindowClosed                          // window_closed events
)

var subscriptionNames = map[string]Subscription{
	"select":        SubscribeSelect,
	"cursor_move":   SubscribeCursorMove,
	"input_change":  SubscribeInputChange,
	"window_closed": SubscribeWindowClosed,
}

// ParseSubscription combines event class names into a bitmask.
func ParseSubscription(names []string) (Subscription, error) {
	var mask Subscription
	for _, name := range names {
		bit, ok := subscriptionNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown event class %q", name)
		}
		mask |= bit
	}
	return mask, nil
}

// Has reports whether every bit of other is set in s.
func (s Subscription) Has(other Subscription) bool {
	return s&other == other
}

// Matcher names the filtering strategy the daemon applies to typed input.
type Matcher string

const (
	MatcherNone  Matcher = "none"
	MatcherFuzzy Matcher = "fuzzy"
)

// ParseMatcher validates a matcher name.
func ParseMatcher(s string) (Matcher, error) {
	switch m := Matcher(s); m {
	case MatcherNone, MatcherFuzzy:
		return m, nil
	}
	return "", fmt.Errorf("unknown matcher %q", s)
}

// Registration is the first message a client sends after connecting.
type Registration struct {
	// SubscribeTo selects the events the daemon will forward.
	SubscribeTo Subscription `json:"subscribe_to"`
	// ProtocolVersion is the client's protocol version.
	ProtocolVersion int `json:"protocol_version"`
	// Matcher is the daemon-side filtering strategy. Empty leaves the daemon default.
	Matcher Matcher `json:"matcher,omitempty"`
}

// Choice is one selectable row shown by the daemon.
type Choice struct {
	// Text is the line displayed to the user.
	Text string `json:"text"`
	// ID is echoed back by the daemon in select events.
	ID int `json:"id"`
	// Priority orders rows when the daemon does not filter; lower sorts first.
	// nil leaves the daemon default.
	Priority *int `json:"priority,omitempty"`
}

// ChoiceSet is the payload of a set_choices request.
type ChoiceSet struct {
	Options []Choice `json:"options"`
	// Selected is the highlighted row, nil for the daemon default.
	Selected *int `json:"selected,omitempty"`
}

// EventKind identifies a message sent by the daemon.
type EventKind string

const (
	EventBusy         EventKind = "busy"
	EventRegistered   EventKind = "registered"
	EventServerTooOld EventKind = "server_too_old"
	EventSelect       EventKind = "select"
	EventCursorMove   EventKind = "cursor_move"
	EventInputChange  EventKind = "input_change"
	EventWindowClosed EventKind = "window_closed"
)

// ErrNoData is returned when an event payload is required but absent.
var ErrNoData = errors.New("event has no data")

// Event is one decoded daemon message. Data holds the raw payload, if any.
type Event struct {
	Kind EventKind
	Data json.RawMessage
}

// HasData reports whether the event carries a non-null payload.
func (e Event) HasData() bool {
	return len(e.Data) > 0 && string(e.Data) != "null"
}

// Index returns the choice id of a select or cursor_move event.
// ok is false when the payload is null (a select that clears the input).
func (e Event) Index() (idx int, ok bool, err error) {
	if !e.HasData() {
		return 0, false, nil
	}
	if err := json.Unmarshal(e.Data, &idx); err != nil {
		return 0, false, fmt.Errorf("%s index: %w", e.Kind, err)
	}
	return idx, true, nil
}

// Text returns the payload of an input_change event.
func (e Event) Text() (string, error) {
	if !e.HasData() {
		return "", fmt.Errorf("%s: %w", e.Kind, ErrNoData)
	}
	var s string
	if err := json.Unmarshal(e.Data, &s); err != nil {
		return "", fmt.Errorf("%s text: %w", e.Kind, err)
	}
	return s, nil
}

// Int returns an integer payload, such as a registered client id.
func (e Event) Int() (int, error) {
	if !e.HasData() {
		return 0, fmt.Errorf("%s: %w", e.Kind, ErrNoData)
	}
	var n int
	if err := json.Unmarshal(e.Data, &n); err != nil {
		return 0, fmt.Errorf("%s: %w", e.Kind, err)
	}
	return n, nil
}

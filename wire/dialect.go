package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	menulet "github.com/Paranoid-AF/menulet"
)

// Dialect encodes client requests and decodes daemon events for one
// envelope convention. Encoders return values ready for json.Marshal.
type Dialect interface {
	Name() string
	Registration(reg menulet.Registration) any
	SetChoices(set menulet.ChoiceSet) any
	SetInput(text string) any
	Stop() any
	Decode(line []byte) (menulet.Event, error)
}

// Dialect names accepted by DialectByName.
const (
	KeyDataName = "keydata"
	TaggedName  = "tagged"
)

// DialectByName returns the dialect registered under name.
func DialectByName(name string) (Dialect, error) {
	switch name {
	case KeyDataName, "":
		return KeyData{}, nil
	case TaggedName:
		return Tagged{}, nil
	}
	return nil, fmt.Errorf("unknown dialect %q", name)
}

// KeyData is the protocol version 0 envelope:
// every message is {"key": <tag>, "data": <payload>}.
type KeyData struct{}

type keyed struct {
	Key  string `json:"key"`
	Data any    `json:"data"`
}

type bareKey struct {
	Key string `json:"key"`
}

func (KeyData) Name() string { return KeyDataName }

func (KeyData) Registration(reg menulet.Registration) any { return reg }

func (KeyData) SetChoices(set menulet.ChoiceSet) any {
	if set.Options == nil {
		set.Options = []menulet.Choice{}
	}
	return keyed{Key: "set_choices", Data: set}
}

func (KeyData) SetInput(text string) any { return keyed{Key: "set_input", Data: text} }

func (KeyData) Stop() any { return bareKey{Key: "stop"} }

func (KeyData) Decode(line []byte) (menulet.Event, error) {
	var env struct {
		Key  string          `json:"key"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(line, &env); err != nil {
		return menulet.Event{}, err
	}
	if env.Key == "" {
		return menulet.Event{}, errors.New(`missing "key"`)
	}
	return menulet.Event{Kind: menulet.EventKind(env.Key), Data: env.Data}, nil
}

// Tagged is the externally tagged convention: unit variants are bare
// strings ("Busy") and the rest are single-key objects ({"Select": 2}).
type Tagged struct{}

var taggedKinds = map[string]menulet.EventKind{
	"Busy":         menulet.EventBusy,
	"Registered":   menulet.EventRegistered,
	"ServerTooOld": menulet.EventServerTooOld,
	"Select":       menulet.EventSelect,
	"CursorMove":   menulet.EventCursorMove,
	"InputChange":  menulet.EventInputChange,
	"WindowClosed": menulet.EventWindowClosed,
}

type taggedRegistration struct {
	SubscribeTo     menulet.Subscription `json:"subscribe_to"`
	ProtocolVersion int                  `json:"protocol_version"`
	Matcher         string               `json:"matcher,omitempty"`
}

func (Tagged) Name() string { return TaggedName }

// taggedSubscriptions are the bits a tagged daemon accepts. It always reports
// window closes and rejects a registration carrying the window-closed bit.
const taggedSubscriptions = menulet.SubscribeSelect | menulet.SubscribeCursorMove | menulet.SubscribeInputChange

func (Tagged) Registration(reg menulet.Registration) any {
	matcher := string(reg.Matcher)
	if matcher != "" {
		matcher = strings.ToUpper(matcher[:1]) + matcher[1:]
	}
	return taggedRegistration{
		SubscribeTo:     reg.SubscribeTo & taggedSubscriptions,
		ProtocolVersion: reg.ProtocolVersion,
		Matcher:         matcher,
	}
}

func (Tagged) SetChoices(set menulet.ChoiceSet) any {
	if set.Options == nil {
		set.Options = []menulet.Choice{}
	}
	return map[string]menulet.ChoiceSet{"SetChoices": set}
}

func (Tagged) SetInput(text string) any { return map[string]string{"SetInput": text} }

func (Tagged) Stop() any { return "Stop" }

func (Tagged) Decode(line []byte) (menulet.Event, error) {
	line = bytes.TrimSpace(line)
	if len(line) > 0 && line[0] == '"' {
		var name string
		if err := json.Unmarshal(line, &name); err != nil {
			return menulet.Event{}, err
		}
		return menulet.Event{Kind: taggedKind(name)}, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(line, &obj); err != nil {
		return menulet.Event{}, err
	}
	if len(obj) != 1 {
		return menulet.Event{}, fmt.Errorf("expected exactly one variant tag, got %d", len(obj))
	}
	for name, data := range obj {
		return menulet.Event{Kind: taggedKind(name), Data: data}, nil
	}
	panic("unreachable")
}

func taggedKind(name string) menulet.EventKind {
	if kind, ok := taggedKinds[name]; ok {
		return kind
	}
	return menulet.EventKind(name)
}

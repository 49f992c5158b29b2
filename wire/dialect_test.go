package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	menulet "github.com/Paranoid-AF/menulet"
)

func marshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestDialectByName(t *testing.T) {
	d, err := DialectByName("")
	require.NoError(t, err)
	assert.Equal(t, KeyDataName, d.Name())

	d, err = DialectByName("tagged")
	require.NoError(t, err)
	assert.Equal(t, TaggedName, d.Name())

	_, err = DialectByName("xml")
	assert.Error(t, err)
}

func TestKeyDataEncode(t *testing.T) {
	d := KeyData{}
	reg := menulet.Registration{SubscribeTo: 0b1101, Matcher: menulet.MatcherNone}
	assert.JSONEq(t, `{"subscribe_to":13,"protocol_version":0,"matcher":"none"}`, marshal(t, d.Registration(reg)))
	assert.JSONEq(t, `{"key":"set_input","data":""}`, marshal(t, d.SetInput("")))
	assert.JSONEq(t, `{"key":"stop"}`, marshal(t, d.Stop()))
}

func TestKeyDataDecode(t *testing.T) {
	tests := []struct {
		line string
		kind menulet.EventKind
		data string
	}{
		{`{"key":"busy"}`, menulet.EventBusy, ""},
		{`{"key":"ack","data":7}`, "ack", "7"},
		{`{"key":"select","data":null}`, menulet.EventSelect, "null"},
		{`{"key":"select","data":2}`, menulet.EventSelect, "2"},
		{`{"key":"input_change","data":"_0*10"}`, menulet.EventInputChange, `"_0*10"`},
		{`{"key":"window_closed"}`, menulet.EventWindowClosed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			ev, err := KeyData{}.Decode([]byte(tt.line))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, ev.Kind)
			assert.Equal(t, tt.data, string(ev.Data))
		})
	}
}

func TestKeyDataDecodeErrors(t *testing.T) {
	for _, line := range []string{`{"data":1}`, `[1]`, `nope`} {
		_, err := KeyData{}.Decode([]byte(line))
		assert.Error(t, err, line)
	}
}

func TestTaggedEncode(t *testing.T) {
	d := Tagged{}
	reg := menulet.Registration{SubscribeTo: menulet.SubscribeSelect, Matcher: menulet.MatcherFuzzy}
	assert.JSONEq(t, `{"subscribe_to":1,"protocol_version":0,"matcher":"Fuzzy"}`, marshal(t, d.Registration(reg)))
	assert.JSONEq(t, `{"subscribe_to":1,"protocol_version":0}`, marshal(t, d.Registration(menulet.Registration{SubscribeTo: 1})))
	all := menulet.SubscribeSelect | menulet.SubscribeInputChange | menulet.SubscribeWindowClosed
	assert.JSONEq(t, `{"subscribe_to":5,"protocol_version":0}`, marshal(t, d.Registration(menulet.Registration{SubscribeTo: all})))
	assert.Equal(t, `"Stop"`, marshal(t, d.Stop()))
	assert.JSONEq(t, `{"SetInput":""}`, marshal(t, d.SetInput("")))
	assert.JSONEq(t, `{"SetChoices":{"options":[{"text":"a","id":0}]}}`,
		marshal(t, d.SetChoices(menulet.ChoiceSet{Options: []menulet.Choice{{Text: "a"}}})))
}

func TestTaggedDecode(t *testing.T) {
	tests := []struct {
		line string
		kind menulet.EventKind
		data string
	}{
		{`"Busy"`, menulet.EventBusy, ""},
		{`{"Registered":7}`, menulet.EventRegistered, "7"},
		{`{"ServerTooOld":0}`, menulet.EventServerTooOld, "0"},
		{`{"Select":null}`, menulet.EventSelect, "null"},
		{`{"Select":3}`, menulet.EventSelect, "3"},
		{`{"CursorMove":1}`, menulet.EventCursorMove, "1"},
		{`{"InputChange":"1+1"}`, menulet.EventInputChange, `"1+1"`},
		{` "WindowClosed" `, menulet.EventWindowClosed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			ev, err := Tagged{}.Decode([]byte(tt.line))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, ev.Kind)
			assert.Equal(t, tt.data, string(ev.Data))
		})
	}
}

func TestTaggedDecodeErrors(t *testing.T) {
	for _, line := range []string{`{}`, `{"Select":1,"CursorMove":2}`, `null`, `"unterminated`} {
		_, err := Tagged{}.Decode([]byte(line))
		assert.Error(t, err, line)
	}
}

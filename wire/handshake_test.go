package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	menulet "github.com/Paranoid-AF/menulet"
)

var calcRegistration = menulet.Registration{
	SubscribeTo: menulet.SubscribeSelect | menulet.SubscribeInputChange | menulet.SubscribeWindowClosed,
	Matcher:     menulet.MatcherNone,
}

func TestRegisterDirectReply(t *testing.T) {
	c, fd := newPipe(t, KeyData{})
	fd.reply(`{"key":"ack","data":7}`)

	id, err := c.Register(calcRegistration)
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	lines := fd.received(c)
	require.Len(t, lines, 1)
	assert.JSONEq(t, `{"subscribe_to":13,"protocol_version":0,"matcher":"none"}`, lines[0])
}

func TestRegisterSkipsBusy(t *testing.T) {
	c, fd := newPipe(t, KeyData{})
	fd.reply(`{"key":"busy"}`, `{"key":"ack","data":7}`)

	id, err := c.Register(calcRegistration)
	require.NoError(t, err)
	assert.Equal(t, 7, id)
}

func TestRegisterSkipsBusyOnlyOnce(t *testing.T) {
	c, fd := newPipe(t, KeyData{})
	fd.reply(`{"key":"busy"}`, `{"key":"busy"}`)

	_, err := c.Register(calcRegistration)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestRegisterTagged(t *testing.T) {
	c, fd := newPipe(t, Tagged{})
	fd.reply(`"Busy"`, `{"Registered":3}`)

	id, err := c.Register(calcRegistration)
	require.NoError(t, err)
	assert.Equal(t, 3, id)
}

func TestRegisterServerTooOld(t *testing.T) {
	c, fd := newPipe(t, Tagged{})
	fd.reply(`{"ServerTooOld":0}`)

	_, err := c.Register(calcRegistration)
	assert.ErrorIs(t, err, ErrServerTooOld)
	var tooOld *ServerTooOldError
	require.ErrorAs(t, err, &tooOld)
	assert.Equal(t, 0, tooOld.Supported)
}

func TestRegisterConnectionClosed(t *testing.T) {
	c, fd := newPipe(t, KeyData{})
	fd.conn.Close()

	_, err := c.Register(calcRegistration)
	assert.Error(t, err)
}

package main

import (
	"bufio"
	"bytes"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	menulet "github.com/Paranoid-AF/menulet"
	"github.com/Paranoid-AF/menulet/wire"
)

// startDaemon serves one scripted client over TCP and records its lines.
func startDaemon(t *testing.T, replies ...string) (addr string, received func() []string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	var (
		mu    sync.Mutex
		lines []string
		done  = make(chan struct{})
	)
	go func() {
		defer close(done)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		scanner := bufio.NewScanner(conn)
		next := 0
		for scanner.Scan() {
			mu.Lock()
			lines = append(lines, scanner.Text())
			n := len(lines)
			mu.Unlock()
			// reply to the registration with everything but the last reply,
			// and to set_choices with the last one
			switch {
			case n == 1:
				for ; next < len(replies)-1; next++ {
					conn.Write([]byte(replies[next] + "\n"))
				}
			case n == 2 && next < len(replies):
				conn.Write([]byte(replies[next] + "\n"))
				next++
			}
		}
	}()

	return ln.Addr().String(), func() []string {
		<-done
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), lines...)
	}
}

func dial(t *testing.T, addr string) *wire.Conn {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	return wire.NewConn(c, wire.KeyData{})
}

func TestPickSelectsOption(t *testing.T) {
	addr, received := startDaemon(t, `{"key":"busy"}`, `{"key":"registered","data":4}`, `{"key":"select","data":1}`)
	conn := dial(t, addr)

	choice, ok, err := pick(conn, []string{"alpha", "beta", "gamma"}, menulet.MatcherFuzzy)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "beta", choice)

	conn.Close()
	lines := received()
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"subscribe_to":1,"protocol_version":0,"matcher":"fuzzy"}`, lines[0])
	assert.JSONEq(t, `{"key":"set_choices","data":{"options":[
		{"text":"alpha","id":0},{"text":"beta","id":1},{"text":"gamma","id":2}]}}`, lines[1])
}

func TestPickDismissed(t *testing.T) {
	for _, reply := range []string{`{"key":"select","data":null}`, `{"key":"window_closed"}`} {
		t.Run(reply, func(t *testing.T) {
			addr, _ := startDaemon(t, `{"key":"registered","data":0}`, reply)
			conn := dial(t, addr)
			defer conn.Close()

			_, ok, err := pick(conn, []string{"a"}, menulet.MatcherFuzzy)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestPickOutOfRange(t *testing.T) {
	addr, _ := startDaemon(t, `{"key":"registered","data":0}`, `{"key":"select","data":5}`)
	conn := dial(t, addr)
	defer conn.Close()

	_, _, err := pick(conn, []string{"a"}, menulet.MatcherFuzzy)
	assert.ErrorIs(t, err, wire.ErrProtocol)
}

func TestReadOptionsTrims(t *testing.T) {
	options, err := readOptions(strings.NewReader("  one \ntwo\n\nthree"))
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "", "three"}, options)
}

func TestSplitWords(t *testing.T) {
	t.Setenv("MENULET_TEST_WORD", "expanded")
	words, err := splitWords(`'first option' second "$MENULET_TEST_WORD"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"first option", "second", "expanded"}, words)
}

func TestSplitWordsUnterminatedQuote(t *testing.T) {
	_, err := splitWords(`'open`)
	assert.Error(t, err)
}

func TestRunPrintsChoice(t *testing.T) {
	t.Setenv("MENULET_CONFIG_DIR", t.TempDir())
	t.Setenv("MENULET_DIALECT", "")
	addr, received := startDaemon(t, `{"key":"registered","data":2}`, `{"key":"select","data":0}`)

	var out bytes.Buffer
	code := run([]string{"-address", addr}, strings.NewReader("left\nright\n"), &out)
	assert.Equal(t, 0, code)
	assert.Equal(t, "left\n", out.String())
	// the connection is closed on return, so the daemon sees EOF
	assert.Len(t, received(), 2)
}

func TestRunExitStatus(t *testing.T) {
	t.Setenv("MENULET_CONFIG_DIR", t.TempDir())
	t.Setenv("MENULET_DIALECT", "")

	var out bytes.Buffer
	assert.Equal(t, 0, run([]string{"-version"}, strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "menulet-pick")
	assert.Equal(t, 2, run([]string{"-dialect", "xml", "-words", "a"}, strings.NewReader(""), &out))

	addr, _ := startDaemon(t, `{"key":"registered","data":2}`, `{"key":"window_closed"}`)
	assert.Equal(t, 1, run([]string{"-address", addr, "-words", "a b"}, strings.NewReader(""), &out))
}

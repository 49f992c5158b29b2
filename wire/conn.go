// Package wire implements the newline-delimited JSON transport spoken with
// the menu daemon: line framing, envelope dialects and the registration handshake.
package wire

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"

	menulet "github.com/Paranoid-AF/menulet"
)

// Conn is one client connection to the daemon. It is not safe for concurrent use.
type Conn struct {
	rwc     io.ReadWriteCloser
	r       *bufio.Reader
	dialect Dialect
	log     *slog.Logger
}

// NewConn wraps an established stream.
func NewConn(rwc io.ReadWriteCloser, dialect Dialect) *Conn {
	return &Conn{
		rwc:     rwc,
		r:       bufio.NewReader(rwc),
		dialect: dialect,
		log:     slog.Default(),
	}
}

// Dial connects to address, which is host:port for TCP or unix:/path for a Unix socket.
func Dial(ctx context.Context, address string, dialect Dialect) (*Conn, error) {
	network, addr := splitAddress(address)
	var d net.Dialer
	nc, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	return NewConn(nc, dialect), nil
}

func splitAddress(address string) (network, addr string) {
	if path, ok := strings.CutPrefix(address, "unix:"); ok {
		return "unix", path
	}
	if path, ok := strings.CutPrefix(address, "tcp:"); ok {
		return "tcp", path
	}
	return "tcp", address
}

// WithLogger sets the logger used for per-message debug output.
func (c *Conn) WithLogger(l *slog.Logger) *Conn {
	c.log = l
	return c
}

// Dialect returns the envelope convention in use.
func (c *Conn) Dialect() Dialect {
	return c.dialect
}

// Close closes the underlying stream.
func (c *Conn) Close() error {
	return c.rwc.Close()
}

// Send writes v as a single JSON line.
func (c *Conn) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	c.log.Debug("send", "data", string(data))

	if _, err := c.rwc.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ReadLine blocks until one full line arrives and returns it without the terminator.
func (c *Conn) ReadLine() ([]byte, error) {
	line, err := c.r.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("read: %w", err)
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

// Receive reads and decodes the next daemon event.
func (c *Conn) Receive() (menulet.Event, error) {
	line, err := c.ReadLine()
	if err != nil {
		return menulet.Event{}, err
	}

	c.log.Debug("recv", "data", string(line))

	ev, err := c.dialect.Decode(line)
	if err != nil {
		return menulet.Event{}, fmt.Errorf("%w: %q: %v", ErrMalformed, line, err)
	}
	return ev, nil
}

// Register performs the subscription handshake and returns the client id.
func (c *Conn) Register(reg menulet.Registration) (int, error) {
	return Register(c, reg)
}

// SetChoices replaces the daemon's list of choices.
func (c *Conn) SetChoices(choices []menulet.Choice) error {
	return c.Send(c.dialect.SetChoices(menulet.ChoiceSet{Options: choices}))
}

// SetInput replaces the content of the daemon's input field.
func (c *Conn) SetInput(text string) error {
	return c.Send(c.dialect.SetInput(text))
}

// Stop asks the daemon to close the window.
func (c *Conn) Stop() error {
	return c.Send(c.dialect.Stop())
}

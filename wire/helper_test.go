package wire

import (
	"bufio"
	"net"
	"sync"
	"testing"
)

// fakeDaemon is the far end of a net.Pipe. It records every line the client
// writes and replies with scripted lines.
type fakeDaemon struct {
	conn net.Conn
	done chan struct{}

	mu    sync.Mutex
	lines []string
}

func newPipe(t *testing.T, dialect Dialect) (*Conn, *fakeDaemon) {
	t.Helper()
	client, server := net.Pipe()
	fd := &fakeDaemon{conn: server, done: make(chan struct{})}
	go func() {
		defer close(fd.done)
		scanner := bufio.NewScanner(server)
		for scanner.Scan() {
			fd.mu.Lock()
			fd.lines = append(fd.lines, scanner.Text())
			fd.mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return NewConn(client, dialect), fd
}

// reply writes lines in order from a separate goroutine, each blocking until read.
func (fd *fakeDaemon) reply(lines ...string) {
	go func() {
		for _, l := range lines {
			if _, err := fd.conn.Write([]byte(l + "\n")); err != nil {
				return
			}
		}
	}()
}

// received closes the client side's peer and returns all recorded lines.
func (fd *fakeDaemon) received(c *Conn) []string {
	c.Close()
	<-fd.done
	fd.mu.Lock()
	defer fd.mu.Unlock()
	return append([]string(nil), fd.lines...)
}

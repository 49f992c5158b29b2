package wire

import (
	"fmt"

	menulet "github.com/Paranoid-AF/menulet"
)

// Register sends reg and waits for the daemon to assign a client id.
// A busy notice may precede the registration reply; it is skipped once.
func Register(c *Conn, reg menulet.Registration) (int, error) {
	if err := c.Send(c.dialect.Registration(reg)); err != nil {
		return 0, fmt.Errorf("send registration: %w", err)
	}

	reply, err := c.Receive()
	if err != nil {
		return 0, fmt.Errorf("registration reply: %w", err)
	}
	if reply.Kind == menulet.EventBusy {
		c.log.Info("daemon busy, waiting for registration")
		reply, err = c.Receive()
		if err != nil {
			return 0, fmt.Errorf("registration reply: %w", err)
		}
	}

	if reply.Kind == menulet.EventServerTooOld {
		supported, err := reply.Int()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		return 0, &ServerTooOldError{Supported: supported}
	}

	id, err := reply.Int()
	if err != nil {
		return 0, fmt.Errorf("%w: registration reply %q carries no client id: %v", ErrProtocol, reply.Kind, err)
	}
	return id, nil
}

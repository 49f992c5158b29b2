package session

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	menulet "github.com/Paranoid-AF/menulet"
	"github.com/Paranoid-AF/menulet/ledger"
)

// Transport is the daemon connection as seen by a session.
type Transport interface {
	Register(reg menulet.Registration) (int, error)
	SetChoices(choices []menulet.Choice) error
	SetInput(text string) error
	Stop() error
	Receive() (menulet.Event, error)
}

// Options configures a Session.
type Options struct {
	Registration menulet.Registration
	// SendStop sends a best-effort stop notice when the window is closed.
	SendStop bool
	Logger   *slog.Logger
}

// Outcome is how a session ended.
type Outcome struct {
	ClientID  int
	Cancelled bool
	Index     int
	Result    ledger.Result
}

// Session owns one daemon connection and the machine driven by it.
type Session struct {
	id      string
	conn    Transport
	machine *Machine
	opts    Options
	log     *slog.Logger
}

// New creates a session over conn.
func New(conn Transport, eval Evaluator, opts Options) *Session {
	id := uuid.Must(uuid.NewV7()).String()
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("session", id)
	return &Session{
		id:      id,
		conn:    conn,
		machine: NewMachine(eval, log),
		opts:    opts,
		log:     log,
	}
}

// ID returns the session's correlation id.
func (s *Session) ID() string {
	return s.id
}

// Machine returns the session state.
func (s *Session) Machine() *Machine {
	return s.machine
}

// Run registers with the daemon and processes events until a choice is
// selected or the window is closed. Transport and protocol errors are fatal.
func (s *Session) Run() (Outcome, error) {
	clientID, err := s.conn.Register(s.opts.Registration)
	if err != nil {
		return Outcome{}, fmt.Errorf("register: %w", err)
	}
	s.log = s.log.With("client_id", clientID)
	s.log.Info("registered")

	for {
		if err := s.conn.SetChoices(s.machine.Choices()); err != nil {
			return Outcome{}, fmt.Errorf("set choices: %w", err)
		}

		ev, err := s.conn.Receive()
		if err != nil {
			return Outcome{}, fmt.Errorf("receive: %w", err)
		}

		step, err := s.machine.Handle(ev)
		if err != nil {
			return Outcome{}, err
		}

		if step.Cancelled {
			s.log.Info("window closed")
			if s.opts.SendStop {
				if err := s.conn.Stop(); err != nil {
					s.log.Debug("stop not delivered", "error", err)
				}
			}
			return Outcome{ClientID: clientID, Cancelled: true}, nil
		}
		if step.Done {
			s.log.Info("selected", "index", step.Index)
			return Outcome{ClientID: clientID, Index: step.Index, Result: step.Result}, nil
		}
		if step.ClearInput {
			if err := s.conn.SetInput(""); err != nil {
				return Outcome{}, fmt.Errorf("clear input: %w", err)
			}
		}
	}
}

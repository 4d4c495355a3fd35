// Package mediator consumes the cross-process channel in the GUI process and
// routes each message to its handler on the GUI thread.
package mediator

import (
	"errors"
	"fmt"

	"fontra-pak/internal/bridge"
	"fontra-pak/internal/channel"
	"fontra-pak/internal/logger"
)

var ErrUnknownAction = errors.New("unknown action")

// Action is the closed set of requests the server process may send.
type Action int

const (
	ActionUnknown Action = iota
	ActionExportAs
)

func ParseAction(name string) Action {
	switch name {
	case bridge.ActionExportAs:
		return ActionExportAs
	}
	return ActionUnknown
}

func (a Action) String() string {
	switch a {
	case ActionExportAs:
		return bridge.ActionExportAs
	}
	return "unknown"
}

type Receiver interface {
	Receive() (channel.Message, error)
}

type Scheduler interface {
	Schedule(fn func()) string
}

// Handlers run on the GUI thread.
type Handlers struct {
	ExportAs func(path string, options map[string]interface{})
}

type Mediator struct {
	rx        Receiver
	scheduler Scheduler
	handlers  Handlers
	logger    logger.Logger
	done      chan struct{}
	err       error
}

func New(rx Receiver, scheduler Scheduler, handlers Handlers, log logger.Logger) *Mediator {
	return &Mediator{
		rx:        rx,
		scheduler: scheduler,
		handlers:  handlers,
		logger:    log,
		done:      make(chan struct{}),
	}
}

// Start runs the receive loop on its own goroutine.
func (m *Mediator) Start() {
	go m.Run()
}

// Done is closed when the receive loop has exited.
func (m *Mediator) Done() <-chan struct{} {
	return m.done
}

// Err returns why the loop ended; nil for an orderly close. Valid after Done.
func (m *Mediator) Err() error {
	<-m.done
	return m.err
}

// Run blocks receiving messages until the channel is closed. Nothing is
// dispatched after the sentinel.
func (m *Mediator) Run() error {
	m.err = m.receive()
	close(m.done)
	return m.err
}

func (m *Mediator) receive() error {
	for {
		msg, err := m.rx.Receive()
		if errors.Is(err, channel.ErrClosed) {
			m.logger.Info("Mediator", "channel closed", nil)
			return nil
		}
		if err != nil {
			m.logger.Error("Mediator", err, nil)
			return err
		}

		if err := m.route(msg); err != nil {
			m.logger.Error("Mediator", err, map[string]interface{}{
				"action": msg.Action,
				"path":   msg.Path,
			})
		}
	}
}

func (m *Mediator) route(msg channel.Message) error {
	action := ParseAction(msg.Action)
	m.logger.Debug("Mediator", "message received", map[string]interface{}{
		"action": action.String(),
		"path":   msg.Path,
	})

	switch action {
	case ActionExportAs:
		if m.handlers.ExportAs == nil {
			return fmt.Errorf("no handler for %s", action)
		}
		path, options := msg.Path, msg.Options
		m.scheduler.Schedule(func() {
			m.handlers.ExportAs(path, options)
		})
		return nil
	default:
		return fmt.Errorf("%w %q", ErrUnknownAction, msg.Action)
	}
}

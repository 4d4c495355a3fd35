package app

import (
	"time"

	"fontra-pak/internal/dispatch"
	"fontra-pak/internal/export"
	"fontra-pak/internal/gui"
	"fontra-pak/internal/logger"
	"fontra-pak/internal/mediator"
	"fontra-pak/internal/server"
	"fontra-pak/internal/shutdown"
)

const mediatorDrainTimeout = 2 * time.Second

// Lifecycle owns the shutdown order: GUI state is saved first, then exports
// are interrupted, the server stopped, its last messages drained, and the
// dispatcher closed.
type Lifecycle struct {
	manager *shutdown.Manager
	logger  logger.Logger
}

func NewLifecycle(d *dispatch.Dispatcher, proc *server.Process, med *mediator.Mediator,
	exports *export.Coordinator, gm *gui.Manager, log logger.Logger) *Lifecycle {
	m := shutdown.NewManager(log)

	m.Register("dispatcher", d)
	m.Register("mediator", shutdown.Func(func() {
		select {
		case <-med.Done():
		case <-time.After(mediatorDrainTimeout):
			log.Warning("Lifecycle", "mediator still receiving", nil)
		}
	}))
	m.Register("server", proc)
	m.Register("exports", exports)
	m.Register("gui", gm)

	return &Lifecycle{manager: m, logger: log}
}

func (l *Lifecycle) Listen() {
	l.manager.Listen()
}

func (l *Lifecycle) Done() <-chan struct{} {
	return l.manager.Done()
}

func (l *Lifecycle) Shutdown() {
	l.manager.Shutdown()
}

// Package dispatch runs callbacks from any goroutine on the GUI thread.
package dispatch

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"fontra-pak/internal/logger"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// Poster hands a function to the GUI event loop without waiting for it.
// fyne.Do is the production poster.
type Poster func(fn func())

type pendingCallback struct {
	fn func()
}

// Dispatcher keeps scheduled callbacks keyed by a random identifier until the
// GUI thread consumes them. Callbacks are posted by a single pump goroutine,
// so they run in the order Schedule was called and the poster is never
// invoked from the GUI thread itself; a callback may call Schedule again.
type Dispatcher struct {
	post   Poster
	logger logger.Logger

	mu      sync.Mutex
	pending map[string]pendingCallback
	queue   *linkedlistqueue.Queue
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

func New(post Poster, log logger.Logger) *Dispatcher {
	d := &Dispatcher{
		post:    post,
		logger:  log,
		pending: make(map[string]pendingCallback),
		queue:   linkedlistqueue.New(),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go d.pump()
	return d
}

// Schedule arranges for fn to run exactly once on the GUI thread and returns
// the identifier it is pending under. After Close it returns "" and drops fn.
func (d *Dispatcher) Schedule(fn func()) string {
	id := newID()

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warning("Dispatcher", "schedule after close dropped", nil)
		return ""
	}
	d.pending[id] = pendingCallback{fn: fn}
	d.queue.Enqueue(id)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return id
}

// Pending reports how many callbacks have not run yet.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Close stops the pump. Callbacks already handed to the poster still run.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	dropped := d.queue.Size()
	d.mu.Unlock()

	close(d.done)
	if dropped > 0 {
		d.logger.Warning("Dispatcher", "closed with queued callbacks", map[string]interface{}{
			"dropped": dropped,
		})
	}
}

// Shutdown implements shutdown.Shutdownable.
func (d *Dispatcher) Shutdown() {
	d.Close()
}

func (d *Dispatcher) pump() {
	for {
		select {
		case <-d.wake:
		case <-d.done:
			return
		}

		for {
			d.mu.Lock()
			next, ok := d.queue.Dequeue()
			if d.closed || !ok {
				d.mu.Unlock()
				break
			}
			d.mu.Unlock()

			id := next.(string)
			d.post(func() { d.deliver(id) })
		}
	}
}

// deliver runs on the GUI thread. A missing identifier means it was already
// consumed, which is a broken invariant.
func (d *Dispatcher) deliver(id string) {
	d.mu.Lock()
	cb, ok := d.pending[id]
	delete(d.pending, id)
	d.mu.Unlock()

	if !ok {
		panic("dispatch: callback " + id + " delivered twice")
	}
	cb.fn()
}

func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("dispatch: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}

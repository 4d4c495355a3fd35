package export

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"fontra-pak/internal/backend"
	"fontra-pak/internal/logger"
)

// Job is one export-as operation, from destination picking to cleanup.
type Job struct {
	ID      string
	Source  string
	Dest    string
	Format  backend.Format
	LogPath string

	proc     Process
	progress Progress
	logger   logger.Logger

	mu        sync.Mutex
	state     State
	outcome   State
	cancelled atomic.Bool
	// settled is taken by whoever reports the exit: finish on the GUI
	// thread, or the coordinator once the GUI can no longer run it.
	settled atomic.Bool
	// watched is set once a watcher goroutine owns the child
	watched atomic.Bool

	// set by the watcher before exited is closed
	waitCode int
	waitErr  error
	exited   chan struct{}

	// set before done is closed
	exitCode int
	message  string
	detail   string

	cleanupOnce sync.Once
	cleanupErr  error
	done        chan struct{}
}

func newJob(id, source string, format backend.Format, log logger.Logger) *Job {
	return &Job{
		logger: log,
		ID:     id,
		Source: source,
		Format: format,
		state:  Idle,
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// transition panics on a move the state machine does not allow; a job never
// re-enters Running.
func (j *Job) transition(to State) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !canTransition(j.state, to) {
		panic(fmt.Sprintf("export job %s: invalid transition %s -> %s", j.ID, j.state, to))
	}
	j.state = to
	if to.Terminal() {
		j.outcome = to
	}
}

// Outcome returns Succeeded, Failed or Cancelled once the job got there, and
// Idle before that or if the destination picker was dismissed.
func (j *Job) Outcome() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.outcome
}

// Cancel interrupts the child process. Only the first call while Running has
// an effect; the cancel action is disabled right away because the child may
// take a while to exit. It must be called on the GUI thread.
func (j *Job) Cancel() {
	if j.interrupt() && j.progress != nil {
		j.progress.DisableCancel()
	}
}

// interrupt marks the job cancelled and signals the child. It touches no UI
// and may be called from any goroutine. It reports whether it sent the signal.
func (j *Job) interrupt() bool {
	if j.State() != Running || j.cancelled.Swap(true) {
		return false
	}
	if err := j.proc.Interrupt(); err != nil {
		// the watcher still reports whatever exit status follows
		j.logger.Error("ExportJob", err, map[string]interface{}{"job": j.ID})
	}
	return true
}

func (j *Job) claim() bool {
	return j.settled.CompareAndSwap(false, true)
}

// Cancelled reports whether Cancel took effect.
func (j *Job) Cancelled() bool {
	return j.cancelled.Load()
}

// Done is closed once the job reached Closed.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Failure returns the short message and full detail of a failed job.
func (j *Job) Failure() (message, detail string) {
	return j.message, j.detail
}

func (j *Job) ExitCode() int {
	return j.exitCode
}

// cleanup removes the temporary log file. It runs at most once.
func (j *Job) cleanup() error {
	j.cleanupOnce.Do(func() {
		if j.LogPath == "" {
			return
		}
		if err := os.Remove(j.LogPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			j.cleanupErr = err
		}
	})
	return j.cleanupErr
}

// Package export runs font exports in isolated child processes and reports
// their outcome back on the GUI thread.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fontra-pak/internal/backend"
	"fontra-pak/internal/logger"
	"fontra-pak/internal/workflow"
)

// Scheduler runs a callback on the GUI thread.
type Scheduler interface {
	Schedule(fn func()) string
}

// UI is the GUI side of an export. All methods are called on the GUI thread.
type UI interface {
	// ChooseDestination asks for the export location; done receives ok=false
	// when the user dismissed the picker.
	ChooseDestination(source string, format backend.Format, done func(dest string, ok bool))
	ShowProgress(title string, cancel func()) Progress
	ShowFailure(message, detail string)
}

// Progress is an indicator with a Cancel action.
type Progress interface {
	DisableCancel()
	Dismiss()
}

type Coordinator struct {
	launcher  Launcher
	ui        UI
	scheduler Scheduler
	logger    logger.Logger
	tempDir   string

	// exitTimeout bounds how long Shutdown waits for running children
	exitTimeout time.Duration

	mu         sync.Mutex
	jobs       map[string]*Job
	seq        atomic.Int64
	onFinished func(*Job)
	closing    atomic.Bool
}

const DefaultExitTimeout = 5 * time.Second

func NewCoordinator(launcher Launcher, ui UI, scheduler Scheduler, log logger.Logger) *Coordinator {
	return &Coordinator{
		launcher:  launcher,
		ui:        ui,
		scheduler: scheduler,
		logger:    log,
		jobs:      make(map[string]*Job),

		exitTimeout: DefaultExitTimeout,
	}
}

// SetTempDir sets where log files are created; empty means os.TempDir.
func (c *Coordinator) SetTempDir(dir string) {
	c.tempDir = dir
}

// OnFinished registers fn to run on the GUI thread after each job closed.
func (c *Coordinator) OnFinished(fn func(*Job)) {
	c.onFinished = fn
}

// ExportAs handles an export request from the server: it opens the
// destination picker and starts the export once a destination is confirmed.
// It must be called on the GUI thread.
func (c *Coordinator) ExportAs(source string, options map[string]interface{}) *Job {
	format, err := formatOption(options)
	if err != nil {
		c.logger.Error("ExportCoordinator", err, map[string]interface{}{"source": source})
		c.ui.ShowFailure("Cannot export "+filepath.Base(source), err.Error())
		return nil
	}

	job := c.newJob(source, format)
	job.transition(DialogOpen)
	c.logger.Debug("ExportCoordinator", "choosing destination", map[string]interface{}{
		"job":    job.ID,
		"format": string(format),
	})

	c.ui.ChooseDestination(source, format, func(dest string, ok bool) {
		if !ok {
			c.logger.Debug("ExportCoordinator", "export dismissed", map[string]interface{}{"job": job.ID})
			c.release(job)
			return
		}
		c.run(job, dest)
	})
	return job
}

// Start exports without asking for a destination.
func (c *Coordinator) Start(req workflow.Request) *Job {
	job := c.newJob(req.Source, req.Format)
	job.transition(DialogOpen)
	c.run(job, req.Dest)
	return job
}

// Running returns the number of jobs not yet closed.
func (c *Coordinator) Running() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.jobs)
}

// Shutdown interrupts all running exports and waits, up to the exit timeout,
// for their children to exit. Jobs whose result can no longer be reported on
// the GUI thread are closed here and their logs removed. It may be called
// from any goroutine.
func (c *Coordinator) Shutdown() {
	c.closing.Store(true)

	c.mu.Lock()
	jobs := make([]*Job, 0, len(c.jobs))
	for _, j := range c.jobs {
		jobs = append(jobs, j)
	}
	c.mu.Unlock()

	for _, j := range jobs {
		if j.interrupt() {
			c.scheduler.Schedule(func() {
				if j.progress != nil {
					j.progress.DisableCancel()
				}
			})
		}
	}

	deadline := time.After(c.exitTimeout)
	for _, j := range jobs {
		if !j.watched.Load() {
			continue
		}
		select {
		case <-j.exited:
		case <-deadline:
			c.logger.Warning("ExportCoordinator", "export still running at shutdown", map[string]interface{}{
				"job": j.ID,
				"log": j.LogPath,
			})
			return
		}
		if j.claim() {
			c.abandon(j)
		}
	}
}

func (c *Coordinator) newJob(source string, format backend.Format) *Job {
	id := strconv.FormatInt(c.seq.Add(1), 10)
	job := newJob(id, source, format, c.logger)

	c.mu.Lock()
	c.jobs[id] = job
	c.mu.Unlock()
	return job
}

func (c *Coordinator) run(job *Job, dest string) {
	job.Dest = job.Format.WithExtension(dest)
	if c.closing.Load() {
		c.release(job)
		return
	}

	logFile, err := os.CreateTemp(c.tempDir, "fontra-pak-export-*.log")
	if err != nil {
		c.fail(job, "Could not prepare the export", err.Error())
		return
	}
	job.LogPath = logFile.Name()
	logFile.Close()

	proc, err := c.launcher.Launch(workflow.Request{Source: job.Source, Dest: job.Dest, Format: job.Format}, job.LogPath)
	if err != nil {
		c.fail(job, "Could not start the export", err.Error())
		return
	}
	job.proc = proc
	job.transition(Running)

	c.logger.Info("ExportCoordinator", "export started", map[string]interface{}{
		"job":    job.ID,
		"source": job.Source,
		"dest":   job.Dest,
		"format": string(job.Format),
		"log":    job.LogPath,
	})

	job.progress = c.ui.ShowProgress(fmt.Sprintf("Exporting %s", filepath.Base(job.Dest)), job.Cancel)

	job.watched.Store(true)
	go c.watch(job)
}

// watch blocks off the GUI thread until the child exits. When the result
// can no longer reach the GUI thread the job is closed right here.
func (c *Coordinator) watch(job *Job) {
	defer close(job.exited)

	code, err := job.proc.Wait()
	job.waitCode, job.waitErr = code, err

	if !c.closing.Load() {
		id := c.scheduler.Schedule(func() {
			if job.claim() {
				c.finish(job, code, err)
			}
		})
		if id != "" {
			return
		}
	}
	if job.claim() {
		c.abandon(job)
	}
}

func (c *Coordinator) finish(job *Job, code int, waitErr error) {
	defer c.release(job)

	job.exitCode = code
	if job.progress != nil {
		job.progress.Dismiss()
	}

	switch outcomeOf(job, code, waitErr) {
	case Succeeded:
		job.transition(Succeeded)
		c.logger.Info("ExportCoordinator", "export succeeded", map[string]interface{}{
			"job":  job.ID,
			"dest": job.Dest,
		})
	case Cancelled:
		job.transition(Cancelled)
		c.logger.Info("ExportCoordinator", "export cancelled", map[string]interface{}{
			"job":       job.ID,
			"exit_code": code,
		})
	default:
		job.transition(Failed)
		message, detail := readFailure(job.LogPath, code, waitErr)
		job.message, job.detail = message, detail
		c.logger.Warning("ExportCoordinator", "export failed", map[string]interface{}{
			"job":       job.ID,
			"exit_code": code,
			"message":   message,
		})
		c.ui.ShowFailure(message, detail)
	}
}

// abandon closes a job without touching the GUI: the outcome is recorded and
// logged, the temporary log removed. OnFinished is not called.
func (c *Coordinator) abandon(job *Job) {
	job.exitCode = job.waitCode
	outcome := outcomeOf(job, job.waitCode, job.waitErr)
	if outcome == Failed {
		job.message, job.detail = readFailure(job.LogPath, job.waitCode, job.waitErr)
	}
	job.transition(outcome)
	c.logger.Info("ExportCoordinator", "export closed without GUI", map[string]interface{}{
		"job":       job.ID,
		"outcome":   outcome.String(),
		"exit_code": job.waitCode,
	})
	c.settle(job)
}

func outcomeOf(job *Job, code int, waitErr error) State {
	switch {
	case code == 0 && waitErr == nil:
		return Succeeded
	case job.Cancelled():
		return Cancelled
	}
	return Failed
}

// fail reports a job that never got a running child process.
func (c *Coordinator) fail(job *Job, message, detail string) {
	defer c.release(job)

	job.transition(Failed)
	job.message, job.detail = message, detail
	c.logger.Error("ExportCoordinator", fmt.Errorf("%s: %s", message, detail), map[string]interface{}{"job": job.ID})
	c.ui.ShowFailure(message, detail)
}

// release frees the job's resources; it runs even if reporting panicked.
func (c *Coordinator) release(job *Job) {
	c.settle(job)
	if c.onFinished != nil {
		c.onFinished(job)
	}
}

func (c *Coordinator) settle(job *Job) {
	if err := job.cleanup(); err != nil {
		c.logger.Error("ExportCoordinator", err, map[string]interface{}{"job": job.ID, "log": job.LogPath})
	}
	job.transition(Closed)

	c.mu.Lock()
	delete(c.jobs, job.ID)
	c.mu.Unlock()

	close(job.done)
}

// readFailure extracts the last non-empty log line as the short message and
// the whole log as detail.
func readFailure(logPath string, code int, waitErr error) (message, detail string) {
	fallback := fmt.Sprintf("Export failed with exit code %d", code)
	if waitErr != nil {
		fallback = "Export failed: " + waitErr.Error()
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		return fallback, fmt.Sprintf("could not read export log: %v", err)
	}
	detail = string(data)
	if line := lastNonEmptyLine(detail); line != "" {
		return line, detail
	}
	return fallback, detail
}

func lastNonEmptyLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

func formatOption(options map[string]interface{}) (backend.Format, error) {
	raw, ok := options["format"]
	if !ok {
		return "", fmt.Errorf("export request has no format")
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("export format must be a string, got %T", raw)
	}
	return backend.ParseFormat(s)
}

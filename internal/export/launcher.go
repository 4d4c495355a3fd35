package export

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"fontra-pak/internal/workflow"
)

// Process is a running export child.
type Process interface {
	// Wait blocks until the process exits and returns its exit code. err is
	// only set when the exit status could not be obtained.
	Wait() (code int, err error)
	// Interrupt asks the process to stop. It may take arbitrarily long to exit.
	Interrupt() error
}

// Launcher starts export child processes.
type Launcher interface {
	Launch(req workflow.Request, logPath string) (Process, error)
}

// ExecLauncher runs Executable with Args followed by the positional
// arguments (source, destination, format, log file).
type ExecLauncher struct {
	Executable string
	Args       []string
	Env        []string
}

// SelfLauncher re-runs the current executable's export subcommand.
func SelfLauncher() (*ExecLauncher, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	return &ExecLauncher{Executable: exe, Args: []string{"export"}}, nil
}

func (l *ExecLauncher) Launch(req workflow.Request, logPath string) (Process, error) {
	args := append(append([]string{}, l.Args...), req.Source, req.Dest, string(req.Format), logPath)
	cmd := exec.Command(l.Executable, args...)
	cmd.Env = append(os.Environ(), l.Env...)

	// The child's descriptors 1 and 2 point at the log, so runtime panics and
	// output from native libraries are kept for the failure report.
	logFile, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open export log: %w", err)
	}
	defer logFile.Close()
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start export process: %w", err)
	}
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// -1 when terminated by a signal
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// Interrupt sends os.Interrupt, falling back to Kill where interrupts cannot
// be delivered (Windows).
func (p *execProcess) Interrupt() error {
	if err := p.cmd.Process.Signal(os.Interrupt); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return nil
		}
		return p.cmd.Process.Kill()
	}
	return nil
}

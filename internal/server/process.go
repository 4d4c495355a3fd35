// Package server launches and supervises the project server child process.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"fontra-pak/internal/channel"
	"fontra-pak/internal/logger"
)

const terminateGrace = 5 * time.Second

// Options describe how to start the server process.
type Options struct {
	Executable string
	// Args precede the serve arguments; used to re-exec a test binary.
	Args   []string
	Env    []string
	Port   int
	Output io.Writer
}

type Process struct {
	Port  int
	Token string

	cmd      *exec.Cmd
	receiver *channel.Receiver
	logger   logger.Logger
	exited   chan struct{}
	waitErr  error
	stopOnce sync.Once
}

// Start spawns "serve" with the write end of a fresh channel inherited as
// fd 3. The returned Process owns the read end.
func Start(opts Options, log logger.Logger) (*Process, error) {
	token, err := NewVersionToken()
	if err != nil {
		return nil, err
	}

	rx, wr, err := channel.Pipe()
	if err != nil {
		return nil, err
	}

	args := append(append([]string{}, opts.Args...),
		"serve",
		"--port", strconv.Itoa(opts.Port),
		"--version-token", token,
	)
	cmd := exec.Command(opts.Executable, args...)
	cmd.Env = opts.Env
	cmd.ExtraFiles = []*os.File{wr}
	if opts.Output != nil {
		cmd.Stdout = opts.Output
		cmd.Stderr = opts.Output
	}

	if err := cmd.Start(); err != nil {
		wr.Close()
		rx.Close()
		return nil, fmt.Errorf("start server: %w", err)
	}
	// The child holds its own copy; ours must go so EOF reaches the reader.
	wr.Close()

	p := &Process{
		Port:     opts.Port,
		Token:    token,
		cmd:      cmd,
		receiver: rx,
		logger:   log,
		exited:   make(chan struct{}),
	}
	go func() {
		p.waitErr = cmd.Wait()
		close(p.exited)
	}()

	log.Info("ServerProcess", "server started", map[string]interface{}{
		"pid":  cmd.Process.Pid,
		"port": opts.Port,
	})
	return p, nil
}

// Receiver is the GUI end of the cross-process channel.
func (p *Process) Receiver() *channel.Receiver {
	return p.receiver
}

func (p *Process) Addr() string {
	return net.JoinHostPort("localhost", strconv.Itoa(p.Port))
}

// Exited is closed once the child has been reaped.
func (p *Process) Exited() <-chan struct{} {
	return p.exited
}

// WaitReady polls until the server accepts connections.
func (p *Process) WaitReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var dialer net.Dialer
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		conn, err := dialer.DialContext(ctx, "tcp", p.Addr())
		if err == nil {
			conn.Close()
			return nil
		}
		select {
		case <-p.exited:
			return fmt.Errorf("server exited before accepting connections: %v", p.waitErr)
		case <-ctx.Done():
			return fmt.Errorf("server not ready on %s: %w", p.Addr(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// Shutdown interrupts the child, kills it after a grace period and closes
// the receiving end of the channel.
func (p *Process) Shutdown() {
	p.stopOnce.Do(func() {
		if err := p.cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
			p.cmd.Process.Kill()
		}
		select {
		case <-p.exited:
		case <-time.After(terminateGrace):
			p.logger.Warning("ServerProcess", "server did not stop, killing", nil)
			p.cmd.Process.Kill()
			<-p.exited
		}
		p.receiver.Close()
		p.logger.Info("ServerProcess", "server stopped", nil)
	})
}

// NewVersionToken returns a random token the server echoes back so the
// frontend can detect a stale page after a restart.
func NewVersionToken() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate version token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

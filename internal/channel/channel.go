// Package channel carries discrete messages from the server process to the GUI
// process over an inherited pipe.
//
// Messages are encoded as one JSON document per line. Closing the sending side
// writes a sentinel frame; the receiving side reports ErrClosed for it and for
// a plain end of stream, so a crashed sender also terminates the consumer.
package channel

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// InheritedFD is the descriptor number the write end occupies in the server
// process (first entry of exec.Cmd.ExtraFiles).
const InheritedFD = 3

var ErrClosed = errors.New("channel closed")

// Message is one request from the server process to the GUI process.
type Message struct {
	Action  string                 `json:"action"`
	Path    string                 `json:"path"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type frame struct {
	Message
	Close bool `json:"close,omitempty"`
}

// Sender appends messages to the tail of the channel. Send queues in memory
// and returns at once; a single writer goroutine drains the queue into the
// pipe, so a slow consumer never blocks the producer. Sender is safe for
// concurrent use; ordering is per calling goroutine.
type Sender struct {
	w   io.WriteCloser
	enc *json.Encoder

	mu      sync.Mutex
	cond    *sync.Cond
	queue   *linkedlistqueue.Queue
	closed  bool
	err     error
	flushed chan struct{}
}

func NewSender(w io.WriteCloser) *Sender {
	s := &Sender{
		w:       w,
		enc:     json.NewEncoder(w),
		queue:   linkedlistqueue.New(),
		flushed: make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.writeLoop()
	return s
}

// Send returns the first write error seen so far, if any. Sending after Close
// is a programming error and panics.
func (s *Sender) Send(msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		panic("channel: send after close")
	}
	if s.err != nil {
		return s.err
	}
	s.queue.Enqueue(frame{Message: msg})
	s.cond.Signal()
	return nil
}

// Close queues the sentinel, waits until everything queued has been written
// and releases the write end. Calling it more than once is harmless.
func (s *Sender) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.queue.Enqueue(frame{Close: true})
		s.cond.Signal()
	}
	s.mu.Unlock()

	<-s.flushed

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Sender) writeLoop() {
	defer close(s.flushed)
	for {
		s.mu.Lock()
		for s.queue.Empty() {
			s.cond.Wait()
		}
		v, _ := s.queue.Dequeue()
		f := v.(frame)
		failed := s.err != nil
		s.mu.Unlock()

		var err error
		if !failed {
			if err = s.enc.Encode(f); err != nil {
				err = fmt.Errorf("channel send %q: %w", f.Action, err)
			}
		}

		if f.Close {
			closeErr := s.w.Close()
			s.mu.Lock()
			if s.err == nil {
				s.err = err
			}
			if s.err == nil {
				s.err = closeErr
			}
			s.mu.Unlock()
			return
		}
		if err != nil {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
		}
	}
}

// Receiver is the single consumer of a channel.
type Receiver struct {
	r    io.ReadCloser
	dec  *json.Decoder
	done bool
}

func NewReceiver(r io.ReadCloser) *Receiver {
	return &Receiver{r: r, dec: json.NewDecoder(bufio.NewReader(r))}
}

// Receive blocks until a message arrives. It returns ErrClosed once the
// sentinel was read or the stream ended, and keeps returning it afterwards.
func (r *Receiver) Receive() (Message, error) {
	if r.done {
		return Message{}, ErrClosed
	}

	var f frame
	if err := r.dec.Decode(&f); err != nil {
		r.done = true
		if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
			return Message{}, ErrClosed
		}
		return Message{}, fmt.Errorf("channel receive: %w", err)
	}
	if f.Close {
		r.done = true
		return Message{}, ErrClosed
	}
	return f.Message, nil
}

// Close releases the read end, which unblocks a pending Receive.
func (r *Receiver) Close() error {
	return r.r.Close()
}

// Pipe creates an OS pipe. The returned file is the write end, meant to be
// handed to a child process through exec.Cmd.ExtraFiles; the parent should
// close its copy once the child has started.
func Pipe() (*Receiver, *os.File, error) {
	rd, wr, err := os.Pipe()
	if err != nil {
		return nil, nil, fmt.Errorf("create channel pipe: %w", err)
	}
	return NewReceiver(rd), wr, nil
}

// Inherited opens the write end passed in by the parent process.
func Inherited() (*Sender, error) {
	f := os.NewFile(uintptr(InheritedFD), "fontra-pak-channel")
	if f == nil {
		return nil, fmt.Errorf("channel descriptor %d not inherited", InheritedFD)
	}
	if _, err := f.Stat(); err != nil {
		return nil, fmt.Errorf("channel descriptor %d: %w", InheritedFD, err)
	}
	return NewSender(f), nil
}

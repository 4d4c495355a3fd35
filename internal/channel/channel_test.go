package channel

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIFOOrdering(t *testing.T) {
	for _, n := range []int{0, 1, 7, 500} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			rx, wr, err := Pipe()
			require.NoError(t, err)
			defer rx.Close()

			tx := NewSender(wr)
			go func() {
				for i := 0; i < n; i++ {
					_ = tx.Send(Message{
						Action:  "exportAs",
						Path:    fmt.Sprintf("/fonts/%d.designspace", i),
						Options: map[string]interface{}{"format": "ttf"},
					})
				}
				_ = tx.Close()
			}()

			var got []string
			for {
				msg, err := rx.Receive()
				if err == ErrClosed {
					break
				}
				require.NoError(t, err)
				got = append(got, msg.Path)
			}

			require.Len(t, got, n)
			for i, path := range got {
				assert.Equal(t, fmt.Sprintf("/fonts/%d.designspace", i), path)
			}
		})
	}
}

func TestOptionsSurviveTheWire(t *testing.T) {
	rx, wr, err := Pipe()
	require.NoError(t, err)
	defer rx.Close()

	tx := NewSender(wr)
	go func() {
		_ = tx.Send(Message{Action: "exportAs", Path: "/a b/Font.ufo", Options: map[string]interface{}{"format": "otf"}})
		_ = tx.Close()
	}()

	msg, err := rx.Receive()
	require.NoError(t, err)
	assert.Equal(t, "exportAs", msg.Action)
	assert.Equal(t, "/a b/Font.ufo", msg.Path)
	assert.Equal(t, "otf", msg.Options["format"])
}

func TestSentinelIsSticky(t *testing.T) {
	rx, wr, err := Pipe()
	require.NoError(t, err)
	defer rx.Close()

	tx := NewSender(wr)
	require.NoError(t, tx.Close())
	require.NoError(t, tx.Close())

	_, err = rx.Receive()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = rx.Receive()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestEndOfStreamWithoutSentinel(t *testing.T) {
	rx, wr, err := Pipe()
	require.NoError(t, err)
	defer rx.Close()

	// a crashed sender never writes the sentinel
	require.NoError(t, wr.Close())

	_, err = rx.Receive()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSendAfterClosePanics(t *testing.T) {
	pr, pw := io.Pipe()
	defer pr.Close()
	go func() { _, _ = io.Copy(io.Discard, pr) }()

	tx := NewSender(pw)
	require.NoError(t, tx.Close())

	assert.Panics(t, func() {
		_ = tx.Send(Message{Action: "exportAs"})
	})
}

func TestCorruptStreamReportsError(t *testing.T) {
	pr, pw := io.Pipe()
	rx := NewReceiver(pr)
	go func() {
		_, _ = pw.Write([]byte("{not json\n"))
		_ = pw.Close()
	}()

	_, err := rx.Receive()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrClosed)

	_, err = rx.Receive()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSendDoesNotWaitForConsumer(t *testing.T) {
	rx, wr, err := Pipe()
	require.NoError(t, err)
	defer rx.Close()

	tx := NewSender(wr)
	long := strings.Repeat("x", 1024)

	// far more than a pipe buffer holds, with nobody reading yet
	for i := 0; i < 2000; i++ {
		require.NoError(t, tx.Send(Message{Action: "exportAs", Path: long}))
	}

	closed := make(chan error, 1)
	go func() { closed <- tx.Close() }()

	n := 0
	for {
		_, err := rx.Receive()
		if err == ErrClosed {
			break
		}
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 2000, n)
	assert.NoError(t, <-closed)
}

func TestWriteErrorIsReported(t *testing.T) {
	pr, pw := io.Pipe()
	require.NoError(t, pr.Close())

	tx := NewSender(pw)
	_ = tx.Send(Message{Action: "exportAs"})
	assert.Error(t, tx.Close())
}

func TestConcurrentSendersKeepTheirOwnOrder(t *testing.T) {
	rx, wr, err := Pipe()
	require.NoError(t, err)
	defer rx.Close()

	tx := NewSender(wr)
	const senders, each = 4, 100
	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			for i := 0; i < each; i++ {
				_ = tx.Send(Message{Action: "exportAs", Path: fmt.Sprintf("/fonts/%d/%d.ufo", s, i)})
			}
		}(s)
	}
	go func() {
		wg.Wait()
		_ = tx.Close()
	}()

	next := make([]int, senders)
	total := 0
	for {
		msg, err := rx.Receive()
		if err == ErrClosed {
			break
		}
		require.NoError(t, err)
		var s, i int
		_, err = fmt.Sscanf(msg.Path, "/fonts/%d/%d.ufo", &s, &i)
		require.NoError(t, err)
		assert.Equal(t, next[s], i, "sender %d out of order", s)
		next[s] = i + 1
		total++
	}
	assert.Equal(t, senders*each, total)
}

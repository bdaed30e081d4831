// Package rec records microphone audio to WAV files.
//
// A Session owns one capture-to-file lifecycle. Start spawns a dedicated
// capture goroutine that opens the default input device, streams
// device-native samples through the normalizer into a mono S16 WAV file,
// and reports readiness before Start returns. Stop signals the goroutine,
// waits for the stream to be torn down and the file finalized, and returns
// the finished recording's duration and size.
package rec

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

const (
	filenameLayout  = "2006-01-02_15-04-05"
	createdAtLayout = "2006-01-02T15:04:05Z"

	// DefaultReadyTimeout bounds the startup handshake. Device drivers can
	// hang while being configured; without a bound Start would hang with
	// them.
	DefaultReadyTimeout = 10 * time.Second
)

// FinishedRecording describes a finalized, closed recording file.
// DurationSec and SizeBytes are computed only after the encoder has been
// finalized, never from a file still open for writing.
type FinishedRecording struct {
	Filename    string  `json:"filename"`
	CreatedAt   string  `json:"created_at"`
	DurationSec float64 `json:"duration_sec"`
	SizeBytes   int64   `json:"size_bytes"`
}

type outcome struct {
	rec FinishedRecording
	err error
}

// Session is the handle for an active recording. It is created by Start
// and consumed by Stop; a second Stop returns ErrNotRecording.
type Session struct {
	filename  string
	createdAt string

	stop    chan struct{}
	done    chan outcome
	stopped atomic.Bool
}

// Options tunes Start. The zero value selects the platform backend and the
// default handshake timeout.
type Options struct {
	Backend      Backend
	ReadyTimeout time.Duration
}

// Start begins capturing from the default input device into a new WAV file
// under dir, creating dir if needed. It returns only after the capture
// goroutine reports that the stream is running; a failed start leaves no
// partial file and no running goroutine.
func Start(dir string) (*Session, error) {
	return StartWith(dir, Options{})
}

// StartWith is Start with an explicit backend and handshake timeout.
func StartWith(dir string, opts Options) (*Session, error) {
	backend := opts.Backend
	if backend == nil {
		backend = DefaultBackend()
	}
	timeout := opts.ReadyTimeout
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create recordings dir: %w", err)
	}

	now := time.Now()
	filename := now.Format(filenameLayout) + ".wav"
	createdAt := now.UTC().Format(createdAtLayout)
	path := filepath.Join(dir, filename)

	s := &Session{
		filename:  filename,
		createdAt: createdAt,
		stop:      make(chan struct{}),
		done:      make(chan outcome, 1),
	}
	ready := make(chan error, 1)

	go capture(backend, path, s.stop, ready, s.done, filename, createdAt)

	select {
	case err := <-ready:
		if err != nil {
			// The goroutine has already exited; nothing to join.
			return nil, err
		}
		return s, nil
	case <-time.After(timeout):
		// Ask a late-arriving worker to tear itself down, and reap
		// whatever it produces: a start that failed must leave no file
		// behind, even one the worker finalizes after we gave up on it.
		close(s.stop)
		s.stopped.Store(true)
		go func() {
			if err := <-ready; err != nil {
				// The worker failed before capturing; its own failure
				// paths clean up the file.
				return
			}
			<-s.done
			os.Remove(path)
		}()
		return nil, ErrStartTimeout
	}
}

// Filename returns the recording's file name (timestamp stem plus ".wav").
func (s *Session) Filename() string { return s.filename }

// CreatedAt returns the session creation time, UTC, RFC3339 with Z.
func (s *Session) CreatedAt() string { return s.createdAt }

// Stop ends the capture: the stream is torn down, the file finalized, and
// the finished recording returned. Stop consumes the session; a second call
// returns ErrNotRecording.
func (s *Session) Stop() (FinishedRecording, error) {
	if s.stopped.Swap(true) {
		return FinishedRecording{}, ErrNotRecording
	}
	close(s.stop)
	out := <-s.done
	return out.rec, out.err
}

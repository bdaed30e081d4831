package rec

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"kiklet/internal/pcm"
	"kiklet/internal/wav"
)

// sink is the write side shared between the control path and the real-time
// data callback. A nil writer means the recording has been finalized; any
// write attempt after that is a silent no-op, which covers the at-most-one
// callback invocation that can still be in flight when teardown begins.
type sink struct {
	mu      sync.Mutex
	w       *wav.Writer
	samples atomic.Uint64
	dropped atomic.Uint64
}

// dataFunc returns the real-time data callback for the device's native
// format, or ErrUnsupportedFormat. One generic body handles all formats;
// only the decoder and normalizer differ.
func (s *sink) dataFunc(format pcm.Format, channels int) (func([]byte), error) {
	if channels < 1 {
		channels = 1
	}
	switch format {
	case pcm.FormatS16:
		return blockWriter(s, channels, pcm.DecodeS16, pcm.FromS16), nil
	case pcm.FormatU16:
		return blockWriter(s, channels, pcm.DecodeU16, pcm.FromU16), nil
	case pcm.FormatF32:
		return blockWriter(s, channels, pcm.DecodeF32, pcm.FromF32), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// blockWriter down-mixes an interleaved block to mono by taking the first
// sample of every frame, normalizes, and writes. It must never block the
// audio thread: a contended or finalized writer drops the block, and
// per-sample write failures are tolerated (the counter just does not
// advance for that sample).
func blockWriter[T pcm.Native](s *sink, channels int, decode func([]byte) T, norm func(T) int16) func([]byte) {
	width := sampleWidth[T]()
	step := width * channels
	return func(raw []byte) {
		if !s.mu.TryLock() {
			s.dropped.Add(1)
			return
		}
		defer s.mu.Unlock()
		if s.w == nil {
			return
		}
		for off := 0; off+width <= len(raw); off += step {
			if err := s.w.WriteSample(norm(decode(raw[off : off+width]))); err == nil {
				s.samples.Add(1)
			}
		}
	}
}

func sampleWidth[T pcm.Native]() int {
	var zero T
	switch any(zero).(type) {
	case float32:
		return 4
	default:
		return 2
	}
}

// finalize closes the writer exactly once and empties the slot so late
// callbacks become no-ops. Safe to call when already finalized.
func (s *sink) finalize() error {
	s.mu.Lock()
	w := s.w
	s.w = nil
	s.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}

// capture is the body of the device capture goroutine. It owns the stream
// and the output file for the whole session. The startup handshake goes
// over ready (buffered, sent exactly once); the final result goes over done
// (buffered, sent exactly once unless start failed).
func capture(backend Backend, path string, stop <-chan struct{}, ready chan<- error, done chan<- outcome, filename, createdAt string) {
	readySent := false
	defer func() {
		if r := recover(); r != nil {
			if !readySent {
				ready <- fmt.Errorf("%w: %v", ErrWorkerInit, r)
				return
			}
			done <- outcome{err: fmt.Errorf("%w: %v", ErrWorkerPanicked, r)}
		}
	}()

	stream, err := backend.Open()
	if err != nil {
		readySent = true
		ready <- err
		return
	}
	info := stream.Info()

	snk := &sink{}
	onData, err := snk.dataFunc(info.Format, info.Channels)
	if err != nil {
		stream.Close()
		readySent = true
		ready <- err
		return
	}

	w, err := wav.NewWriter(path, info.SampleRate, 1)
	if err != nil {
		stream.Close()
		readySent = true
		ready <- err
		return
	}
	snk.w = w

	if err := stream.Start(onData); err != nil {
		stream.Close()
		_ = w.Close()
		os.Remove(path)
		readySent = true
		ready <- err
		return
	}

	slog.Debug("capture started",
		"file", filename,
		"sample_rate", info.SampleRate,
		"channels", info.Channels,
		"format", info.Format)

	readySent = true
	ready <- nil

	<-stop

	// Tear the stream down before finalizing; finalize must never run
	// concurrently with a live data callback.
	stream.Close()

	samples := snk.samples.Load()
	var durationSec float64
	if info.SampleRate != 0 {
		durationSec = float64(samples) / float64(info.SampleRate)
	}
	if n := snk.dropped.Load(); n > 0 {
		slog.Warn("capture dropped blocks under writer contention", "file", filename, "blocks", n)
	}

	if err := snk.finalize(); err != nil {
		done <- outcome{err: fmt.Errorf("finalize recording: %w", err)}
		return
	}

	st, err := os.Stat(path)
	if err != nil {
		done <- outcome{err: fmt.Errorf("stat finished recording: %w", err)}
		return
	}

	done <- outcome{rec: FinishedRecording{
		Filename:    filename,
		CreatedAt:   createdAt,
		DurationSec: durationSec,
		SizeBytes:   st.Size(),
	}}
}

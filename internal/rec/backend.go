package rec

import "kiklet/internal/pcm"

// StreamInfo reports the native configuration the device was opened with.
type StreamInfo struct {
	SampleRate uint32
	Channels   int
	Format     pcm.Format
}

// Stream is one open capture stream on an input device. Start installs the
// data callback and begins delivering raw interleaved sample blocks; Close
// tears the stream down and disables the callback. After Close returns no
// further onData calls are made.
type Stream interface {
	Info() StreamInfo
	Start(onData func(block []byte)) error
	Close()
}

// Backend opens capture streams on some audio host. The default backend
// talks to the platform's audio layer; tests substitute their own.
type Backend interface {
	Open() (Stream, error)
}

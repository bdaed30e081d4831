// Package wav writes and inspects PCM WAV files. Only 16-bit signed
// integer PCM is supported; that is the canonical capture encoding.
package wav

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const headerSize = 44

// Writer writes a PCM S16LE WAV file with a correct RIFF header.
// Sizes are written as placeholders and patched on Close.
type Writer struct {
	file       *os.File
	buf        *bufio.Writer
	sampleRate uint32
	channels   uint16
	dataSize   uint32
	closed     bool
}

// NewWriter creates the parent directory if needed, opens path for writing
// and emits the WAV header with placeholder sizes.
func NewWriter(path string, sampleRate uint32, channels uint16) (*Writer, error) {
	if channels == 0 {
		return nil, fmt.Errorf("wav: channel count must be at least 1")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("wav: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wav: create file: %w", err)
	}
	w := &Writer{
		file:       f,
		buf:        bufio.NewWriterSize(f, 1<<20),
		sampleRate: sampleRate,
		channels:   channels,
	}
	if err := w.writeHeader(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader() error {
	const bitsPerSample = 16
	byteRate := w.sampleRate * uint32(w.channels) * bitsPerSample / 8
	blockAlign := w.channels * bitsPerSample / 8

	if _, err := w.buf.WriteString("RIFF"); err != nil {
		return err
	}
	// ChunkSize placeholder (36 + data size)
	if err := binary.Write(w.buf, binary.LittleEndian, uint32(0)); err != nil {
		return err
	}
	if _, err := w.buf.WriteString("WAVE"); err != nil {
		return err
	}
	if _, err := w.buf.WriteString("fmt "); err != nil {
		return err
	}
	for _, v := range []any{
		uint32(16), // fmt chunk size for PCM
		uint16(1),  // AudioFormat PCM
		w.channels,
		w.sampleRate,
		byteRate,
		blockAlign,
		uint16(bitsPerSample),
	} {
		if err := binary.Write(w.buf, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if _, err := w.buf.WriteString("data"); err != nil {
		return err
	}
	// data size placeholder
	if err := binary.Write(w.buf, binary.LittleEndian, uint32(0)); err != nil {
		return err
	}
	return w.buf.Flush()
}

// WriteSample appends one canonical S16LE sample.
func (w *Writer) WriteSample(s int16) error {
	if w.closed {
		return io.ErrClosedPipe
	}
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(s))
	n, err := w.buf.Write(b[:])
	w.dataSize += uint32(n)
	return err
}

// Frames returns the number of sample frames written so far.
func (w *Writer) Frames() uint64 {
	return uint64(w.dataSize) / 2 / uint64(w.channels)
}

// Flush forces buffered data to disk.
func (w *Writer) Flush() error {
	if w.closed {
		return nil
	}
	return w.buf.Flush()
}

// Close patches the RIFF header sizes and closes the file. The first call
// finalizes; later calls are no-ops.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	if _, err := w.file.Seek(4, io.SeekStart); err != nil {
		w.file.Close()
		return err
	}
	if err := binary.Write(w.file, binary.LittleEndian, uint32(36)+w.dataSize); err != nil {
		w.file.Close()
		return err
	}
	if _, err := w.file.Seek(40, io.SeekStart); err != nil {
		w.file.Close()
		return err
	}
	if err := binary.Write(w.file, binary.LittleEndian, w.dataSize); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

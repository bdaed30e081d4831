package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Info describes the format and length of an existing WAV file.
type Info struct {
	SampleRate    uint32
	Channels      uint16
	BitsPerSample uint16
	Frames        uint64
}

// Duration returns the playback length in seconds, 0 for a zero sample rate.
func (i Info) Duration() float64 {
	if i.SampleRate == 0 {
		return 0
	}
	return float64(i.Frames) / float64(i.SampleRate)
}

// ReadInfo parses the RIFF header of the file at path. It walks the chunk
// list rather than assuming a fixed layout, so files with extra chunks
// (LIST, fact) still parse.
func ReadInfo(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	var riff [12]byte
	if _, err := io.ReadFull(f, riff[:]); err != nil {
		return Info{}, fmt.Errorf("wav: read RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Info{}, fmt.Errorf("wav: %s is not a RIFF/WAVE file", path)
	}

	var info Info
	var haveFmt bool
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(f, hdr[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return Info{}, fmt.Errorf("wav: read chunk header: %w", err)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			var fmtChunk [16]byte
			if size < 16 {
				return Info{}, fmt.Errorf("wav: fmt chunk too small (%d bytes)", size)
			}
			if _, err := io.ReadFull(f, fmtChunk[:]); err != nil {
				return Info{}, fmt.Errorf("wav: read fmt chunk: %w", err)
			}
			info.Channels = binary.LittleEndian.Uint16(fmtChunk[2:4])
			info.SampleRate = binary.LittleEndian.Uint32(fmtChunk[4:8])
			info.BitsPerSample = binary.LittleEndian.Uint16(fmtChunk[14:16])
			haveFmt = true
			if size > 16 {
				if _, err := f.Seek(int64(size-16), io.SeekCurrent); err != nil {
					return Info{}, err
				}
			}
		case "data":
			if !haveFmt {
				return Info{}, fmt.Errorf("wav: data chunk before fmt chunk")
			}
			bytesPerFrame := uint64(info.Channels) * uint64(info.BitsPerSample) / 8
			if bytesPerFrame > 0 {
				info.Frames = uint64(size) / bytesPerFrame
			}
			return info, nil
		default:
			// Skip unknown chunks; sizes are padded to even byte counts.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := f.Seek(skip, io.SeekCurrent); err != nil {
				return Info{}, err
			}
		}
	}
	if !haveFmt {
		return Info{}, fmt.Errorf("wav: no fmt chunk in %s", path)
	}
	return Info{}, fmt.Errorf("wav: no data chunk in %s", path)
}

// Package pcm converts device-native samples to the canonical storage
// representation: signed 16-bit little-endian PCM.
package pcm

import (
	"encoding/binary"
	"math"
)

// Format identifies a device-native sample representation.
type Format int

const (
	FormatUnknown Format = iota
	FormatS16
	FormatU16
	FormatF32
)

func (f Format) String() string {
	switch f {
	case FormatS16:
		return "s16"
	case FormatU16:
		return "u16"
	case FormatF32:
		return "f32"
	default:
		return "unknown"
	}
}

// Width returns the size of one sample in bytes, or 0 for unknown formats.
func Width(f Format) int {
	switch f {
	case FormatS16, FormatU16:
		return 2
	case FormatF32:
		return 4
	default:
		return 0
	}
}

// Native is the set of hardware sample types a capture stream can deliver.
type Native interface {
	~int16 | ~uint16 | ~float32
}

// FromF32 clamps s to [-1, 1] and scales to the full signed 16-bit range.
// Devices occasionally report slightly over unity; those values clamp
// rather than wrap. Negative values scale by 32768 so -1.0 reaches the
// canonical minimum. NaN maps to 0: the conversion must stay fully
// defined on the real-time path.
func FromF32(s float32) int16 {
	if s != s {
		return 0
	}
	if s >= 1.0 {
		return math.MaxInt16
	}
	if s <= -1.0 {
		return math.MinInt16
	}
	if s < 0 {
		return int16(s * 32768)
	}
	return int16(s * 32767)
}

// FromU16 re-centers an unsigned sample so [0, 65535] maps onto
// [-32768, 32767].
func FromU16(s uint16) int16 {
	return int16(int32(s) - 32768)
}

// FromS16 is the identity; signed 16-bit input is already canonical.
func FromS16(s int16) int16 { return s }

// DecodeS16 reads one little-endian signed 16-bit sample.
func DecodeS16(b []byte) int16 {
	return int16(binary.LittleEndian.Uint16(b))
}

// DecodeU16 reads one little-endian unsigned 16-bit sample.
func DecodeU16(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

// DecodeF32 reads one little-endian IEEE-754 32-bit sample.
func DecodeF32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

package pcm

import (
	"math"
	"testing"
)

func TestFromF32Range(t *testing.T) {
	cases := []struct {
		in   float32
		want int16
	}{
		{0, 0},
		{1.0, math.MaxInt16},
		{-1.0, math.MinInt16},
		{0.5, 16383},
		{-0.5, -16384},
	}
	for _, c := range cases {
		if got := FromF32(c.in); got != c.want {
			t.Errorf("FromF32(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFromF32ClampsOutOfRange(t *testing.T) {
	if got := FromF32(1.5); got != math.MaxInt16 {
		t.Errorf("FromF32(1.5) = %d, want %d", got, math.MaxInt16)
	}
	if got := FromF32(-2.0); got != math.MinInt16 {
		t.Errorf("FromF32(-2.0) = %d, want %d", got, math.MinInt16)
	}
	if got := FromF32(float32(math.Inf(1))); got != math.MaxInt16 {
		t.Errorf("FromF32(+Inf) = %d, want %d", got, math.MaxInt16)
	}
	if got := FromF32(float32(math.NaN())); got != 0 {
		t.Errorf("FromF32(NaN) = %d, want 0", got)
	}
}

func TestFromU16(t *testing.T) {
	cases := []struct {
		in   uint16
		want int16
	}{
		{0, math.MinInt16},
		{65535, math.MaxInt16},
		{32768, 0},
		{32769, 1},
		{32767, -1},
	}
	for _, c := range cases {
		if got := FromU16(c.in); got != c.want {
			t.Errorf("FromU16(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFromS16Identity(t *testing.T) {
	for _, s := range []int16{math.MinInt16, -1, 0, 1, math.MaxInt16} {
		if got := FromS16(s); got != s {
			t.Errorf("FromS16(%d) = %d", s, got)
		}
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	if got := DecodeS16([]byte{0xFF, 0x7F}); got != math.MaxInt16 {
		t.Errorf("DecodeS16 = %d", got)
	}
	if got := DecodeU16([]byte{0x00, 0x80}); got != 32768 {
		t.Errorf("DecodeU16 = %d", got)
	}
	if got := DecodeF32([]byte{0x00, 0x00, 0x80, 0x3F}); got != 1.0 {
		t.Errorf("DecodeF32 = %v", got)
	}
}

func TestWidth(t *testing.T) {
	if Width(FormatS16) != 2 || Width(FormatU16) != 2 || Width(FormatF32) != 4 {
		t.Error("unexpected sample widths")
	}
	if Width(FormatUnknown) != 0 {
		t.Error("unknown format should have zero width")
	}
}

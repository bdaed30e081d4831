package rec

import (
	"fmt"
	"log/slog"

	"github.com/gen2brain/malgo"

	"kiklet/internal/pcm"
)

// malgoBackend opens the default capture device through miniaudio.
type malgoBackend struct{}

// DefaultBackend returns the platform audio backend.
func DefaultBackend() Backend { return malgoBackend{} }

type malgoStream struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	info   StreamInfo
	onData func([]byte)
}

func (malgoBackend) Open() (Stream, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		slog.Debug("miniaudio", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceConfig, err)
	}

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		teardownCtx(ctx)
		return nil, fmt.Errorf("%w: %v", ErrDeviceConfig, err)
	}
	if len(infos) == 0 {
		teardownCtx(ctx)
		return nil, ErrNoInputDevice
	}

	s := &malgoStream{ctx: ctx}

	// Zero format/channels/rate ask miniaudio for the device's native
	// configuration; the normalizer handles the conversion to S16.
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatUnknown
	deviceConfig.Capture.Channels = 0
	deviceConfig.SampleRate = 0

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSample []byte, frameCount uint32) {
			if s.onData != nil {
				s.onData(pInputSample)
			}
		},
	}

	dev, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		teardownCtx(ctx)
		return nil, fmt.Errorf("%w: %v", ErrBuildStream, err)
	}
	s.device = dev
	s.info = StreamInfo{
		SampleRate: dev.SampleRate(),
		Channels:   int(dev.CaptureChannels()),
		Format:     fromMalgoFormat(dev.CaptureFormat()),
	}
	return s, nil
}

func (s *malgoStream) Info() StreamInfo { return s.info }

func (s *malgoStream) Start(onData func([]byte)) error {
	s.onData = onData
	if err := s.device.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrPlayStream, err)
	}
	return nil
}

// Close stops the device before uninitializing, so the data callback is
// disabled by the time this returns.
func (s *malgoStream) Close() {
	if s.device != nil {
		_ = s.device.Stop()
		s.device.Uninit()
		s.device = nil
	}
	if s.ctx != nil {
		teardownCtx(s.ctx)
		s.ctx = nil
	}
}

func teardownCtx(ctx *malgo.AllocatedContext) {
	_ = ctx.Uninit()
	ctx.Free()
}

func fromMalgoFormat(f malgo.FormatType) pcm.Format {
	switch f {
	case malgo.FormatS16:
		return pcm.FormatS16
	case malgo.FormatF32:
		return pcm.FormatF32
	default:
		// miniaudio has no unsigned 16-bit format; U16 only appears on
		// hosts that expose it directly.
		return pcm.FormatUnknown
	}
}

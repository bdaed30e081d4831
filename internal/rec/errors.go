package rec

import "errors"

// Device and stream errors carry the underlying cause wrapped alongside the
// sentinel, so callers can both branch on the category (errors.Is) and show
// the specific cause.
var (
	ErrNoInputDevice     = errors.New("no default input device available")
	ErrDeviceConfig      = errors.New("failed to query default input config")
	ErrBuildStream       = errors.New("failed to build input stream")
	ErrPlayStream        = errors.New("failed to start input stream")
	ErrUnsupportedFormat = errors.New("unsupported input sample format")

	// Coordination errors. The internal cause (channel disconnect, panic)
	// is not actionable by the caller, so each case collapses to one error.
	ErrWorkerInit     = errors.New("recording worker failed to initialize")
	ErrWorkerPanicked = errors.New("recording worker panicked")
	ErrStartTimeout   = errors.New("timed out waiting for recording worker to start")
	ErrNotRecording   = errors.New("not recording")
)

package audio

import "fmt"

// Device is one row of the input-device catalog. The catalog keeps every
// device the host reports, output-only ones included, so that an explicit
// index addresses the same position the `devices` listing shows.
type Device struct {
	Index            int
	Name             string
	HostAPI          string
	MaxInputChannels int
}

// Input reports whether the device has at least one usable input channel.
func (d Device) Input() bool {
	return d.MaxInputChannels > 0
}

// Format selects the element type of the capture callback.
type Format string

const (
	FormatFloat32 Format = "f32"
	FormatInt16   Format = "i16"
)

// ParseFormat validates a configured sample format. Anything but the two
// supported formats is a configuration error, caught before streaming.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatFloat32, FormatInt16:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported sample format %q (want f32 or i16)", s)
	}
}

// StreamConfig fixes the capture parameters for one stream.
type StreamConfig struct {
	SampleRate      int
	Channels        int
	FramesPerBuffer int
	Format          Format
}

// FrameHandler consumes one captured buffer. It is invoked on the audio
// subsystem's thread at hardware cadence and must not block.
type FrameHandler interface {
	ProcessFloat32(samples []float32)
	ProcessInt16(samples []int16)
}

// Backend abstracts the host audio subsystem so the app layer can be tested
// without hardware.
type Backend interface {
	Devices() ([]Device, error)
	Open(dev Device, cfg StreamConfig, h FrameHandler) (Stream, error)
	Close() error
}

// Stream is an open capture stream.
type Stream interface {
	Start() error
	Stop() error
	Close() error
}

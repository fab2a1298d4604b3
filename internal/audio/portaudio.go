package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

type portAudioBackend struct{}

// New initializes PortAudio and returns the live backend. Close tears the
// library back down.
func New() (Backend, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &portAudioBackend{}, nil
}

func (b *portAudioBackend) Devices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for i, info := range infos {
		d := Device{
			Index:            i,
			Name:             info.Name,
			MaxInputChannels: info.MaxInputChannels,
		}
		if info.HostApi != nil {
			d.HostAPI = info.HostApi.Name
		}
		devices = append(devices, d)
	}
	return devices, nil
}

func (b *portAudioBackend) Open(dev Device, cfg StreamConfig, h FrameHandler) (Stream, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	if dev.Index < 0 || dev.Index >= len(infos) {
		return nil, fmt.Errorf("device index %d out of range", dev.Index)
	}
	info := infos[dev.Index]

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: cfg.Channels,
			Latency:  info.DefaultLowInputLatency,
		},
		SampleRate:      float64(cfg.SampleRate),
		FramesPerBuffer: cfg.FramesPerBuffer,
	}

	// The callback's slice type fixes the sample format PortAudio delivers.
	var stream *portaudio.Stream
	switch cfg.Format {
	case FormatFloat32:
		stream, err = portaudio.OpenStream(params, func(in []float32) {
			h.ProcessFloat32(in)
		})
	case FormatInt16:
		stream, err = portaudio.OpenStream(params, func(in []int16) {
			h.ProcessInt16(in)
		})
	default:
		return nil, fmt.Errorf("unsupported sample format %q", cfg.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}
	return stream, nil
}

func (b *portAudioBackend) Close() error {
	return portaudio.Terminate()
}

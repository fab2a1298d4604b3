package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/petems/audiocast/internal/audio"
	"github.com/petems/audiocast/internal/config"
	"github.com/petems/audiocast/internal/control"
	"github.com/petems/audiocast/internal/pipeline"
	"github.com/petems/audiocast/internal/volume"
)

// Wire parameters of the audio link. The server consumes raw interleaved
// little-endian int16 PCM at this rate and channel count.
const (
	SampleRate      = 48000
	Channels        = 2
	FramesPerBuffer = 512
	ServerAudioPort = 8080
)

type Config struct {
	Backend audio.Backend
	Sender  pipeline.Sender
	Config  *config.Config
	Logger  zerolog.Logger
}

// App wires the capture stream, the sample pipeline and the control
// listener together for the lifetime of one streaming run.
type App struct {
	backend audio.Backend
	sender  pipeline.Sender
	cfg     *config.Config
	log     zerolog.Logger
	vol     *volume.State
}

func New(cfg Config) *App {
	return &App{
		backend: cfg.Backend,
		sender:  cfg.Sender,
		cfg:     cfg.Config,
		log:     cfg.Logger,
		vol:     volume.New(float32(cfg.Config.Volume)),
	}
}

// Volume exposes the shared gain, mainly for tests.
func (a *App) Volume() *volume.State {
	return a.vol
}

// ListDevices returns the input-capable part of the device catalog.
func (a *App) ListDevices() ([]audio.Device, error) {
	devices, err := a.backend.Devices()
	if err != nil {
		return nil, err
	}
	inputs := make([]audio.Device, 0, len(devices))
	for _, d := range devices {
		if d.Input() {
			inputs = append(inputs, d)
		}
	}
	return inputs, nil
}

// Run selects a device, starts the control listener and streams until ctx
// is cancelled. Setup failures are returned; once streaming, the only exit
// is cancellation.
func (a *App) Run(ctx context.Context) error {
	format, err := audio.ParseFormat(a.cfg.Format)
	if err != nil {
		return err
	}

	devices, err := a.backend.Devices()
	if err != nil {
		return fmt.Errorf("failed to enumerate devices: %w", err)
	}

	dev, ok := audio.Select(devices, a.cfg.Criteria())
	if !ok {
		return errors.New("no suitable input device found")
	}
	a.log.Info().Str("device", dev.Name).Str("host_api", dev.HostAPI).Msg("Using audio input")

	listener, err := control.NewListener(a.cfg.ControlPort, a.vol, a.log)
	if err != nil {
		return err
	}
	go listener.Run(ctx)

	stream, err := a.backend.Open(dev, audio.StreamConfig{
		SampleRate:      SampleRate,
		Channels:        Channels,
		FramesPerBuffer: FramesPerBuffer,
		Format:          format,
	}, pipeline.New(a.vol, a.sender))
	if err != nil {
		return fmt.Errorf("failed to open capture stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start capture stream: %w", err)
	}

	a.log.Info().Msg("Streaming... press Ctrl+C to stop")

	<-ctx.Done()

	// Cooperative stop: in-flight callbacks finish before Stop returns.
	if err := stream.Stop(); err != nil {
		a.log.Error().Err(err).Msg("Failed to stop capture stream")
	}
	a.log.Info().Msg("Shutting down")
	return nil
}

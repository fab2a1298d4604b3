package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/petems/audiocast/internal/app"
	"github.com/petems/audiocast/internal/audio"
	"github.com/petems/audiocast/internal/config"
	"github.com/petems/audiocast/internal/logging"
	"github.com/petems/audiocast/internal/permissions"
	"github.com/petems/audiocast/internal/transport"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "audiocast",
	Short: "Captures system audio and streams it over UDP",
	Long: `audiocast captures audio from a local input device (preferring
loopback devices like Stereo Mix or BlackHole), converts it to 16-bit
little-endian PCM and streams it as UDP datagrams to a server, while
listening on a control port for volume updates pushed by that server.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log := loadConfig(cmd)

		// macOS requires explicit microphone approval before capture works
		if err := permissions.EnsurePermissions(); err != nil {
			log.Fatal().Err(err).Msg("Required permissions not granted")
		}

		backend, err := audio.New()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize audio")
		}
		defer backend.Close()

		sender, err := transport.Dial(fmt.Sprintf("%s:%d", cfg.Server, app.ServerAudioPort), log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to server")
		}
		defer sender.Close()
		log.Info().Stringer("server", sender.RemoteAddr()).Msg("Audio stream connected")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		application := app.New(app.Config{
			Backend: backend,
			Sender:  sender,
			Config:  cfg,
			Logger:  log,
		})

		if err := application.Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("Streaming failed")
		}
	},
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available audio input devices and exit",
	Run: func(cmd *cobra.Command, args []string) {
		_, log := loadConfig(cmd)

		backend, err := audio.New()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize audio")
		}
		defer backend.Close()

		devices, err := backend.Devices()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to enumerate devices")
		}

		fmt.Println("Available Audio Input Devices:")
		for _, d := range devices {
			if d.Input() {
				fmt.Printf("  [%d] %s (Host: %s)\n", d.Index, d.Name, d.HostAPI)
			}
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("audiocast %s\n", Version)
		fmt.Printf("Commit: %s\n", Commit)
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file path")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error)")

	rootCmd.Flags().String("server", "", "Server IP address for the audio stream")
	rootCmd.Flags().Float64("volume", 1.0, "Initial client-side volume (0.0 to 1.0)")
	rootCmd.Flags().Int("control-port", 0, "Port to listen on for server control messages")
	rootCmd.Flags().Int("device-index", -1, "Index of the audio input device to use")
	rootCmd.Flags().String("device-name", "", "Name of the audio input device to use")
	rootCmd.Flags().String("format", "", "Capture sample format (f32 or i16)")
}

// loadConfig layers flag values over the config file and validates the
// result. Fatal on anything invalid: bad configuration must never reach
// stream setup.
func loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Server, _ = flags.GetString("server")
	}
	if flags.Changed("volume") {
		cfg.Volume, _ = flags.GetFloat64("volume")
	}
	if flags.Changed("control-port") {
		cfg.ControlPort, _ = flags.GetInt("control-port")
	}
	if flags.Changed("device-index") {
		cfg.Device.Index, _ = flags.GetInt("device-index")
	}
	if flags.Changed("device-name") {
		cfg.Device.Name, _ = flags.GetString("device-name")
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	log := logging.NewWithLevel(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	return cfg, log
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

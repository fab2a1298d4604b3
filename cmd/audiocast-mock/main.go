package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/hajimehoshi/go-mp3"
	"github.com/spf13/cobra"

	"github.com/petems/audiocast/internal/app"
	"github.com/petems/audiocast/internal/logging"
)

// chunkSize matches the client's datagram size so the server accepts the
// packets as regular stream traffic.
const chunkSize = app.FramesPerBuffer * app.Channels * 2

var rootCmd = &cobra.Command{
	Use:   "audiocast-mock <file.mp3>",
	Short: "Streams a decoded MP3 file to an audiocast server",
	Long: `audiocast-mock decodes an MP3 file to 16-bit little-endian PCM and
streams it to the server in client-sized datagrams at real-time pacing.
Useful for exercising a server without capture hardware.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		server, _ := cmd.Flags().GetString("server")
		logLevel, _ := cmd.Flags().GetString("log-level")
		log := logging.NewWithLevel(logLevel)

		file, err := os.Open(args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open audio file")
		}
		defer file.Close()

		decoder, err := mp3.NewDecoder(file)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to decode MP3 file")
		}

		raddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", server, app.ServerAudioPort))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to resolve server address")
		}
		conn, err := net.DialUDP("udp", nil, raddr)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to dial server")
		}
		defer conn.Close()

		log.Info().
			Stringer("server", raddr).
			Int("sample_rate", decoder.SampleRate()).
			Msg("Streaming decoded audio")

		// go-mp3 always yields interleaved stereo int16, so one chunk covers
		// chunkSize / (channels * 2) frames of the decoder's sample rate.
		frames := chunkSize / (app.Channels * 2)
		pace := time.Second * time.Duration(frames) / time.Duration(decoder.SampleRate())

		ticker := time.NewTicker(pace)
		defer ticker.Stop()

		chunk := make([]byte, chunkSize)
		for {
			n, err := io.ReadFull(decoder, chunk)
			if err == io.EOF {
				break
			}
			if err != nil && err != io.ErrUnexpectedEOF {
				log.Fatal().Err(err).Msg("Failed to read decoded audio")
			}
			// Pad the tail so the last datagram is still full-sized.
			for i := n; i < chunkSize; i++ {
				chunk[i] = 0
			}

			if _, err := conn.Write(chunk); err != nil {
				log.Warn().Err(err).Msg("Failed to send chunk")
			}

			if err == io.ErrUnexpectedEOF {
				break
			}
			<-ticker.C
		}
		log.Info().Msg("Finished streaming audio file")
	},
}

func init() {
	rootCmd.Flags().String("server", "127.0.0.1", "Server IP address for the audio stream")
	rootCmd.Flags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

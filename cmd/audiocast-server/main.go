package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/petems/audiocast/internal/app"
	"github.com/petems/audiocast/internal/logging"
)

// packetSize is one client datagram: a full buffer of interleaved stereo
// int16 samples.
const packetSize = app.FramesPerBuffer * app.Channels * 2

var rootCmd = &cobra.Command{
	Use:   "audiocast-server",
	Short: "Receives an audiocast PCM stream and plays it back",
	Long: `audiocast-server listens for the client's UDP PCM stream and plays
it on the default output device. With --client-control-addr it also reads
volume values from stdin and pushes them to the client's control port.`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")
		volume, _ := cmd.Flags().GetFloat64("volume")
		controlAddr, _ := cmd.Flags().GetString("client-control-addr")
		logLevel, _ := cmd.Flags().GetString("log-level")

		log := logging.NewWithLevel(logLevel)

		if !(volume >= 0.0 && volume <= 1.0) {
			log.Fatal().Float64("volume", volume).Msg("Server volume must be between 0.0 and 1.0")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := serve(ctx, port, volume, controlAddr, log); err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	},
}

func init() {
	rootCmd.Flags().Int("port", app.ServerAudioPort, "Port to listen on for the audio stream")
	rootCmd.Flags().Float64("volume", 1.0, "Server-side volume adjustment (0.0 to 1.0)")
	rootCmd.Flags().String("client-control-addr", "", "Client address (IP:Port) for sending volume control messages")
	rootCmd.Flags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
}

func serve(ctx context.Context, port int, volume float64, controlAddr string, log zerolog.Logger) error {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		return fmt.Errorf("failed to listen on audio port %d: %w", port, err)
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	log.Info().Int("port", port).Float64("volume", volume).Msg("Listening for audio stream")

	if controlAddr != "" {
		go sendControlFromStdin(ctx, controlAddr, log)
	}

	// Fixed-capacity queue between the receive loop and playback: drop on
	// full, play silence on empty. No reordering, no adaptive sizing.
	packets := make(chan []byte, 64)
	go receive(ctx, conn, packets, log)

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	outputBuffer := make([]int16, app.FramesPerBuffer*app.Channels)
	stream, err := portaudio.OpenDefaultStream(0, app.Channels, app.SampleRate, app.FramesPerBuffer, outputBuffer)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	defer stream.Stop()

	silence := make([]byte, packetSize)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Shutting down")
			return nil
		case packet := <-packets:
			playPacket(stream, outputBuffer, packet, volume, log)
		default:
			playPacket(stream, outputBuffer, silence, volume, log)
		}
	}
}

func receive(ctx context.Context, conn *net.UDPConn, packets chan<- []byte, log zerolog.Logger) {
	for {
		buf := make([]byte, packetSize+1)
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Warn().Err(err).Msg("Audio receive error")
			continue
		}
		if n != packetSize {
			log.Debug().Int("len", n).Msg("Discarding packet of unexpected size")
			continue
		}
		select {
		case packets <- buf[:n]:
		default:
			log.Debug().Msg("Packet queue full, dropping")
		}
	}
}

func playPacket(stream *portaudio.Stream, out []int16, packet []byte, volume float64, log zerolog.Logger) {
	for i := range out {
		sample := int16(binary.LittleEndian.Uint16(packet[2*i:]))
		out[i] = int16(float64(sample) * volume)
	}
	if err := stream.Write(); err != nil {
		log.Debug().Err(err).Msg("Output stream write error")
	}
}

// sendControlFromStdin reads volume values from stdin and sends each as an
// 8-byte little-endian float64 control datagram to the client.
func sendControlFromStdin(ctx context.Context, addr string, log zerolog.Logger) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		log.Error().Err(err).Msg("Invalid client control address")
		return
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		log.Error().Err(err).Msg("Failed to dial client control address")
		return
	}
	defer conn.Close()

	fmt.Printf("Enter new client volume (0.0-1.0) and press Enter:\n")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		volume, err := strconv.ParseFloat(input, 64)
		if err != nil || volume < 0.0 || volume > 1.0 {
			fmt.Println("Invalid input. Please enter a number between 0.0 and 1.0.")
			continue
		}

		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(volume))
		if _, err := conn.Write(buf); err != nil {
			log.Error().Err(err).Msg("Failed to send volume control")
			continue
		}
		log.Info().Float64("volume", volume).Msg("Sent client volume")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package control

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net"

	"github.com/rs/zerolog"

	"github.com/petems/audiocast/internal/volume"
)

// wireSize is the exact payload length of a control datagram: one
// little-endian IEEE-754 float64.
const wireSize = 8

// Listener receives volume-control datagrams from the server and applies
// them to the shared volume state. Malformed or out-of-range payloads are
// dropped without touching the state; socket errors keep the loop running.
type Listener struct {
	conn *net.UDPConn
	vol  *volume.State
	log  zerolog.Logger
}

// NewListener binds the control socket on 0.0.0.0:port. Port 0 picks an
// ephemeral port, which the tests rely on.
func NewListener(port int, vol *volume.State, log zerolog.Logger) (*Listener, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: port})
	if err != nil {
		return nil, fmt.Errorf("failed to bind control port %d: %w", port, err)
	}
	return &Listener{conn: conn, vol: vol, log: log}, nil
}

// LocalAddr returns the bound address.
func (l *Listener) LocalAddr() net.Addr {
	return l.conn.LocalAddr()
}

// Run receives datagrams until ctx is cancelled or the socket is closed.
func (l *Listener) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		l.conn.Close()
	}()

	l.log.Info().Stringer("addr", l.conn.LocalAddr()).Msg("Control listener started")

	buf := make([]byte, 64)
	for {
		n, _, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			l.log.Warn().Err(err).Msg("Control receive error")
			continue
		}
		l.apply(buf[:n])
	}
}

func (l *Listener) apply(p []byte) {
	if len(p) != wireSize {
		l.log.Debug().Int("len", len(p)).Msg("Discarding malformed control datagram")
		return
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(p))
	if !(v >= 0 && v <= 1) {
		l.log.Warn().Float64("volume", v).Msg("Rejecting out-of-range volume")
		return
	}
	// float64 to float32 rounds to nearest even, the Go conversion default.
	l.vol.Set(float32(v))
	l.log.Info().Float64("volume", v).Msg("Volume updated")
}

func (l *Listener) Close() error {
	return l.conn.Close()
}

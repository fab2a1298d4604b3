package transport

import (
	"fmt"
	"net"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// UDPSender streams datagrams to a fixed remote endpoint, best-effort: a
// failed write drops the frame with no retry, no queue and no error back to
// the caller. That keeps the capture callback free of network backpressure.
type UDPSender struct {
	conn    *net.UDPConn
	log     zerolog.Logger
	dropped atomic.Uint64
}

// Dial connects a UDP socket to addr (host:port).
func Dial(addr string, log zerolog.Logger) (*UDPSender, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &UDPSender{conn: conn, log: log}, nil
}

// Send transmits one datagram. Errors are swallowed by contract.
func (s *UDPSender) Send(p []byte) {
	if _, err := s.conn.Write(p); err != nil {
		n := s.dropped.Add(1)
		s.log.Debug().Err(err).Uint64("dropped", n).Msg("Dropped audio frame")
	}
}

// Dropped reports how many frames failed to send since startup.
func (s *UDPSender) Dropped() uint64 {
	return s.dropped.Load()
}

// RemoteAddr returns the connected endpoint.
func (s *UDPSender) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

func (s *UDPSender) Close() error {
	return s.conn.Close()
}

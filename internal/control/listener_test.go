package control

import (
	"context"
	"encoding/binary"
	"math"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/audiocast/internal/volume"
)

func startListener(t *testing.T, vol *volume.State) (*Listener, *net.UDPConn, func()) {
	t.Helper()

	l, err := NewListener(0, vol, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewListener failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(ctx)
	}()

	conn, err := net.DialUDP("udp", nil, &net.UDPAddr{
		IP:   net.IPv4(127, 0, 0, 1),
		Port: l.LocalAddr().(*net.UDPAddr).Port,
	})
	if err != nil {
		t.Fatalf("failed to dial listener: %v", err)
	}

	stop := func() {
		conn.Close()
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("listener did not stop after cancel")
		}
	}
	return l, conn, stop
}

func encodeVolume(v float64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	return buf
}

func waitForVolume(t *testing.T, vol *volume.State, want float32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if vol.Get() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("volume = %f, want %f", vol.Get(), want)
}

func TestValidDatagramUpdatesVolume(t *testing.T) {
	vol := volume.New(1.0)
	_, conn, stop := startListener(t, vol)
	defer stop()

	if _, err := conn.Write(encodeVolume(0.42)); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	waitForVolume(t, vol, float32(0.42))
}

func TestShortDatagramIsDiscarded(t *testing.T) {
	vol := volume.New(1.0)
	_, conn, stop := startListener(t, vol)
	defer stop()

	if _, err := conn.Write(encodeVolume(0.42)[:7]); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	// A valid datagram after the malformed one proves it was processed
	// and the short one dropped.
	if _, err := conn.Write(encodeVolume(0.25)); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	waitForVolume(t, vol, 0.25)
}

func TestOutOfRangeVolumeIsRejected(t *testing.T) {
	vol := volume.New(0.5)
	_, conn, stop := startListener(t, vol)
	defer stop()

	for _, v := range []float64{1.5, -0.1, math.NaN()} {
		if _, err := conn.Write(encodeVolume(v)); err != nil {
			t.Fatalf("send failed: %v", err)
		}
	}
	if _, err := conn.Write(encodeVolume(0.75)); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	waitForVolume(t, vol, 0.75)
}

func TestApplyGates(t *testing.T) {
	vol := volume.New(0.5)
	l := &Listener{vol: vol, log: zerolog.Nop()}

	l.apply([]byte{1, 2, 3})
	if vol.Get() != 0.5 {
		t.Fatalf("short payload changed volume to %f", vol.Get())
	}

	l.apply(encodeVolume(2.0))
	if vol.Get() != 0.5 {
		t.Fatalf("out-of-range payload changed volume to %f", vol.Get())
	}

	l.apply(encodeVolume(0.0))
	if vol.Get() != 0.0 {
		t.Fatalf("boundary 0.0 not applied, volume = %f", vol.Get())
	}

	l.apply(encodeVolume(1.0))
	if vol.Get() != 1.0 {
		t.Fatalf("boundary 1.0 not applied, volume = %f", vol.Get())
	}
}

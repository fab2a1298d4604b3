package pipeline

import (
	"encoding/binary"
	"math"

	"github.com/petems/audiocast/internal/volume"
)

// Sender delivers one encoded PCM frame buffer. Implementations must not
// block: the pipeline runs on the audio callback thread.
type Sender interface {
	Send(p []byte)
}

// Pipeline turns a captured sample buffer into a little-endian 16-bit PCM
// datagram: snapshot the gain, scale, clamp, quantize, pack. Sample order
// (including channel interleave) is preserved.
type Pipeline struct {
	vol *volume.State
	out Sender

	// Reused across callbacks so steady-state processing does not allocate.
	buf []byte
}

func New(vol *volume.State, out Sender) *Pipeline {
	return &Pipeline{vol: vol, out: out}
}

// ProcessFloat32 encodes one callback's worth of float32 samples in [-1, 1]
// and hands the result to the sender. Empty input sends nothing.
func (p *Pipeline) ProcessFloat32(samples []float32) {
	if len(samples) == 0 {
		return
	}
	vol := p.vol.Get()
	buf := p.frame(len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(quantize(s, vol)))
	}
	p.out.Send(buf)
}

// ProcessInt16 encodes one callback's worth of native int16 samples.
func (p *Pipeline) ProcessInt16(samples []int16) {
	if len(samples) == 0 {
		return
	}
	vol := p.vol.Get()
	buf := p.frame(len(samples))
	for i, s := range samples {
		q := quantize(float32(s)/math.MaxInt16, vol)
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(q))
	}
	p.out.Send(buf)
}

func (p *Pipeline) frame(samples int) []byte {
	need := 2 * samples
	if cap(p.buf) < need {
		p.buf = make([]byte, need)
	}
	return p.buf[:need]
}

// quantize applies the gain, clamps to [-1, 1] and truncates to the signed
// 16-bit range, matching the wire contract of one sample.
func quantize(s, vol float32) int16 {
	v := s * vol
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(v * math.MaxInt16)
}
